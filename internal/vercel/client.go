// Package vercel reads deployment state from the Vercel REST API and keeps
// the catalog's deployment status columns current.
package vercel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/centralelevate/elevate/internal/product"
)

// ErrNoDeployments is returned when a project has never been deployed.
var ErrNoDeployments = errors.New("project has no deployments")

// Deployment is the latest known deployment of a project.
type Deployment struct {
	ID        string
	State     product.DeploymentStatus
	CreatedAt time.Time
}

// Client calls the Vercel API with a bearer token.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a Client for the given API base URL.
func NewClient(baseURL, token string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type deploymentsResponse struct {
	Deployments []struct {
		UID        string `json:"uid"`
		State      string `json:"state"`
		ReadyState string `json:"readyState"`
		Created    int64  `json:"created"`
	} `json:"deployments"`
}

type apiError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// LatestDeployment returns the most recent deployment of projectID.
// teamID may be empty for personal projects.
func (c *Client) LatestDeployment(ctx context.Context, projectID, teamID string) (*Deployment, error) {
	q := url.Values{}
	q.Set("projectId", projectID)
	q.Set("limit", "1")
	if teamID != "" {
		q.Set("teamId", teamID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v6/deployments?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building deployments request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting deployments: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("reading deployments response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("vercel api %d %s: %s", resp.StatusCode, apiErr.Error.Code, apiErr.Error.Message)
		}
		return nil, fmt.Errorf("vercel api returned status %d", resp.StatusCode)
	}

	var out deploymentsResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decoding deployments response: %w", err)
	}
	if len(out.Deployments) == 0 {
		return nil, ErrNoDeployments
	}

	d := out.Deployments[0]
	state := d.State
	if state == "" {
		state = d.ReadyState
	}

	return &Deployment{
		ID:        d.UID,
		State:     product.ParseDeploymentStatus(state),
		CreatedAt: time.UnixMilli(d.Created).UTC(),
	}, nil
}
