package panel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/centralelevate/elevate/internal/product"
)

// SuccessCloseDelay is how long a form shows success before closing.
const SuccessCloseDelay = 1500 * time.Millisecond

// ControllerOptions wires the user-facing collaborators. Nil fields get
// defaults: alerts are logged, confirmations are refused and URLs are not opened.
type ControllerOptions struct {
	Alerter   Alerter
	Confirmer Confirmer
	Opener    Opener
	// CloseDelay overrides SuccessCloseDelay for forms opened by the controller.
	CloseDelay time.Duration
}

// Controller holds the product list, the filter and the per-product loading
// tokens. It is safe for concurrent use; a second action on a product that
// already has one in flight fails with ErrBusy without reaching the store.
type Controller struct {
	store     Store
	alerter   Alerter
	confirmer Confirmer
	opener    Opener
	delay     time.Duration

	mu        sync.Mutex
	session   Session
	filter    Filter
	products  []product.Product
	loading   map[uuid.UUID]bool
	reloadSeq uint64
	reloading int
	closed    bool
}

// NewController creates a Controller for session. Call Mount to load the list.
func NewController(store Store, session Session, opts ControllerOptions) *Controller {
	c := &Controller{
		store:     store,
		alerter:   opts.Alerter,
		confirmer: opts.Confirmer,
		opener:    opts.Opener,
		delay:     opts.CloseDelay,
		session:   session,
		loading:   make(map[uuid.UUID]bool),
	}
	if c.alerter == nil {
		c.alerter = AlertFunc(func(msg string) { slog.Warn("panel alert", "message", msg) })
	}
	if c.confirmer == nil {
		c.confirmer = ConfirmFunc(func(string) bool { return false })
	}
	if c.opener == nil {
		c.opener = OpenFunc(func(string) error { return nil })
	}
	if c.delay <= 0 {
		c.delay = SuccessCloseDelay
	}
	return c
}

// Mount performs the initial load.
func (c *Controller) Mount(ctx context.Context) error {
	return c.Reload(ctx)
}

// Reload replaces the product list with a fresh snapshot from the store.
// Only the most recent reload is applied; older responses are dropped.
func (c *Controller) Reload(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.reloadSeq++
	seq := c.reloadSeq
	c.reloading++
	c.mu.Unlock()

	products, err := c.store.LoadAll(ctx)

	c.mu.Lock()
	c.reloading--
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if seq != c.reloadSeq {
		c.mu.Unlock()
		return nil
	}
	if err == nil {
		c.products = products
	}
	c.mu.Unlock()

	if err != nil {
		return c.fail("load products", err)
	}
	return nil
}

// SetSession swaps the signed-in user. The list is reloaded when the user's
// identity changes; a role change alone only updates the gates.
func (c *Controller) SetSession(ctx context.Context, s Session) error {
	c.mu.Lock()
	changed := !sameUser(c.session, s)
	c.session = s
	c.mu.Unlock()

	if !changed {
		return nil
	}
	return c.Reload(ctx)
}

// Session returns the current session.
func (c *Controller) Session() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// SetFilter changes the filter mode.
func (c *Controller) SetFilter(f Filter) {
	c.mu.Lock()
	c.filter = f
	c.mu.Unlock()
}

// Filter returns the filter mode.
func (c *Controller) Filter() Filter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter
}

// Products returns the full snapshot.
func (c *Controller) Products() []product.Product {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.products)
}

// Visible returns the products that pass the current filter.
func (c *Controller) Visible() []product.Product {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter.Apply(c.products)
}

// Find returns the product with the given id from the snapshot.
func (c *Controller) Find(id uuid.UUID) (product.Product, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range c.products {
		if p.ID == id {
			return p, true
		}
	}
	return product.Product{}, false
}

// IsLoading reports whether an action on id is in flight.
func (c *Controller) IsLoading(id uuid.UUID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading[id]
}

// IsReloading reports whether a list reload is in flight.
func (c *Controller) IsReloading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reloading > 0
}

// ToggleStar flips p's star through the store and reloads. The local star
// state only changes once the store confirms.
func (c *Controller) ToggleStar(ctx context.Context, p product.Product) error {
	if err := c.acquire(p.ID); err != nil {
		return err
	}
	defer c.release(p.ID)

	starred := !p.IsStarred
	if _, err := c.store.Update(ctx, p.ID, product.UpdateFields{IsStarred: &starred}); err != nil {
		if c.isClosed() {
			return ErrClosed
		}
		return c.fail("update product", err)
	}

	return c.reloadAfterMutation(ctx)
}

// DeleteProduct asks for confirmation, then deletes p and reloads.
func (c *Controller) DeleteProduct(ctx context.Context, p product.Product) error {
	if err := c.check(p.ID); err != nil {
		return err
	}

	if !c.confirmer.Confirm(fmt.Sprintf("Delete %q? This cannot be undone.", p.Name)) {
		return ErrCanceled
	}

	if err := c.acquire(p.ID); err != nil {
		return err
	}
	defer c.release(p.ID)

	if err := c.store.Delete(ctx, p.ID); err != nil {
		if c.isClosed() {
			return ErrClosed
		}
		return c.fail("delete product", err)
	}

	return c.reloadAfterMutation(ctx)
}

// EditProduct opens a form populated from p. Saving sends every draft field
// as a partial update while holding p's loading token.
func (c *Controller) EditProduct(p product.Product) (*Form, error) {
	if err := c.check(p.ID); err != nil {
		return nil, err
	}

	id := p.ID
	save := func(ctx context.Context, d product.Draft) error {
		if err := c.acquire(id); err != nil {
			return err
		}
		defer c.release(id)

		if _, err := c.store.Update(ctx, id, d.ToUpdate()); err != nil {
			return err
		}
		// Reload alerts its own failure; the save has already landed.
		_ = c.Reload(ctx)
		return nil
	}

	return newForm(ModeEdit, &id, product.DraftOf(p), save, c.store.UploadImage, c.delay), nil
}

// NewProduct opens a blank create form.
func (c *Controller) NewProduct() (*Form, error) {
	if !c.Session().Elevated() {
		return nil, ErrReadOnly
	}

	save := func(ctx context.Context, d product.Draft) error {
		if _, err := c.store.Create(ctx, d); err != nil {
			return err
		}
		_ = c.Reload(ctx)
		return nil
	}

	return newForm(ModeCreate, nil, product.Draft{}, save, c.store.UploadImage, c.delay), nil
}

// OpenExternal opens url. Empty URLs are ignored.
func (c *Controller) OpenExternal(url string) error {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil
	}
	if err := c.opener.Open(url); err != nil {
		return c.fail("open link", err)
	}
	return nil
}

// Close discards the controller. Responses that arrive afterwards are ignored.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

// check gates a product action on the role and the loading token without
// taking the token.
func (c *Controller) check(id uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if !c.session.Elevated() {
		return ErrReadOnly
	}
	if c.loading[id] {
		return ErrBusy
	}
	return nil
}

func (c *Controller) acquire(id uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if !c.session.Elevated() {
		return ErrReadOnly
	}
	if c.loading[id] {
		return ErrBusy
	}
	c.loading[id] = true
	return nil
}

func (c *Controller) release(id uuid.UUID) {
	c.mu.Lock()
	delete(c.loading, id)
	c.mu.Unlock()
}

func (c *Controller) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// reloadAfterMutation reloads; a failure is alerted but the mutation stands.
func (c *Controller) reloadAfterMutation(ctx context.Context) error {
	if err := c.Reload(ctx); errors.Is(err, ErrClosed) {
		return ErrClosed
	}
	return nil
}

// fail alerts the user and returns the wrapped error.
func (c *Controller) fail(op string, err error) error {
	ce := &CollaboratorError{Op: op, Err: err}
	c.alerter.Alert(ce.Message())
	return ce
}
