package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"strings"

	"github.com/google/uuid"

	"github.com/centralelevate/elevate/internal/client"
	"github.com/centralelevate/elevate/internal/panel"
	"github.com/centralelevate/elevate/internal/product"
)

// backend is the API surface the CLI drives. *client.Client implements it.
type backend interface {
	panel.Store
	Me(ctx context.Context) (*client.Me, error)
	Refresh(ctx context.Context) (int, error)
}

// app carries the CLI's streams and connection settings.
type app struct {
	apiURL string
	apiKey string
	yes    bool

	in     *bufio.Reader
	out    io.Writer
	errOut io.Writer

	dial    func(apiURL, apiKey string) backend
	open    func(url string) error
	alerted bool
}

func newApp(in io.Reader, out, errOut io.Writer) *app {
	return &app{
		in:     bufio.NewReader(in),
		out:    out,
		errOut: errOut,
		dial: func(apiURL, apiKey string) backend {
			return client.New(apiURL, apiKey)
		},
		open: openBrowser,
	}
}

// connect resolves the signed-in user and returns a mounted controller.
func (a *app) connect(ctx context.Context) (*panel.Controller, backend, error) {
	if strings.TrimSpace(a.apiKey) == "" {
		return nil, nil, errors.New("no API key: set ELEVATE_API_KEY or pass --api-key")
	}

	be := a.dial(a.apiURL, a.apiKey)
	me, err := be.Me(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("resolving user: %w", err)
	}

	session := panel.Session{User: &panel.User{ID: me.ID, Name: me.Name, OriginalRole: me.Role}}
	ctrl := panel.NewController(be, session, panel.ControllerOptions{
		Alerter:   panel.AlertFunc(a.alert),
		Confirmer: panel.ConfirmFunc(a.confirm),
		Opener:    panel.OpenFunc(a.open),
	})
	if err := ctrl.Mount(ctx); err != nil {
		return nil, nil, err
	}
	return ctrl, be, nil
}

// find looks a product up by full ID or unique ID prefix.
func (a *app) find(ctrl *panel.Controller, ref string) (product.Product, error) {
	if id, err := uuid.Parse(ref); err == nil {
		if p, ok := ctrl.Find(id); ok {
			return p, nil
		}
		return product.Product{}, fmt.Errorf("product %s not found", ref)
	}

	var matches []product.Product
	for _, p := range ctrl.Products() {
		if strings.HasPrefix(p.ID.String(), strings.ToLower(ref)) {
			matches = append(matches, p)
		}
	}
	switch len(matches) {
	case 0:
		return product.Product{}, fmt.Errorf("product %s not found", ref)
	case 1:
		return matches[0], nil
	}
	return product.Product{}, fmt.Errorf("product prefix %q is ambiguous", ref)
}

func (a *app) alert(message string) {
	a.alerted = true
	fmt.Fprintln(a.errOut, "error:", message)
}

func (a *app) confirm(prompt string) bool {
	if a.yes {
		return true
	}
	fmt.Fprintf(a.out, "%s [y/N] ", prompt)
	line, err := a.in.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

// report prints err unless an alert already showed it.
func (a *app) report(err error) {
	if err == nil || a.alerted || errors.Is(err, panel.ErrCanceled) {
		return
	}
	fmt.Fprintln(a.errOut, "error:", panel.UserMessage(err))
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}
