// Package panel is the admin panel core: the product list controller, the
// create/edit form, breadcrumbs, deployment badges and card actions. It holds
// no rendering code; front-ends drive it and render its state.
package panel

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/centralelevate/elevate/internal/product"
)

// Store owns the product list and its mutations.
type Store interface {
	LoadAll(ctx context.Context) ([]product.Product, error)
	Create(ctx context.Context, d product.Draft) (*product.Product, error)
	Update(ctx context.Context, id uuid.UUID, fields product.UpdateFields) (*product.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	UploadImage(ctx context.Context, filename string, r io.Reader, productID *uuid.UUID) (string, error)
}

// Alerter shows a user-visible error.
type Alerter interface {
	Alert(message string)
}

// Confirmer asks the user to confirm a destructive action.
type Confirmer interface {
	Confirm(prompt string) bool
}

// Opener opens a URL in a new browsing context.
type Opener interface {
	Open(url string) error
}

// AlertFunc adapts a function to Alerter.
type AlertFunc func(message string)

func (f AlertFunc) Alert(message string) { f(message) }

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// OpenFunc adapts a function to Opener.
type OpenFunc func(url string) error

func (f OpenFunc) Open(url string) error { return f(url) }
