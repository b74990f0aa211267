package panel_test

import (
	"context"
	"io"
	"sync"

	"github.com/google/uuid"

	"github.com/centralelevate/elevate/internal/auth"
	"github.com/centralelevate/elevate/internal/panel"
	"github.com/centralelevate/elevate/internal/product"
)

// fakeStore is an in-memory panel.Store. Function fields override the
// default behaviour; every call is counted.
type fakeStore struct {
	mu       sync.Mutex
	products []product.Product
	calls    map[string]int

	loadAllFn func(ctx context.Context) ([]product.Product, error)
	createFn  func(ctx context.Context, d product.Draft) (*product.Product, error)
	updateFn  func(ctx context.Context, id uuid.UUID, f product.UpdateFields) (*product.Product, error)
	deleteFn  func(ctx context.Context, id uuid.UUID) error
	uploadFn  func(ctx context.Context, filename string, r io.Reader, productID *uuid.UUID) (string, error)
}

func newFakeStore(products ...product.Product) *fakeStore {
	return &fakeStore{products: products, calls: make(map[string]int)}
}

func (s *fakeStore) count(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

func (s *fakeStore) record(op string) {
	s.mu.Lock()
	s.calls[op]++
	s.mu.Unlock()
}

func (s *fakeStore) LoadAll(ctx context.Context) ([]product.Product, error) {
	s.record("load")
	if s.loadAllFn != nil {
		return s.loadAllFn(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]product.Product(nil), s.products...), nil
}

func (s *fakeStore) Create(ctx context.Context, d product.Draft) (*product.Product, error) {
	s.record("create")
	if s.createFn != nil {
		return s.createFn(ctx, d)
	}
	p := product.NewFromDraft(d)
	p.ID = uuid.New()
	s.mu.Lock()
	s.products = append([]product.Product{*p}, s.products...)
	s.mu.Unlock()
	return p, nil
}

func (s *fakeStore) Update(ctx context.Context, id uuid.UUID, f product.UpdateFields) (*product.Product, error) {
	s.record("update")
	if s.updateFn != nil {
		return s.updateFn(ctx, id, f)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.products {
		if s.products[i].ID == id {
			f.Apply(&s.products[i])
			p := s.products[i]
			return &p, nil
		}
	}
	return nil, product.ErrNotFound
}

func (s *fakeStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.record("delete")
	if s.deleteFn != nil {
		return s.deleteFn(ctx, id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.products {
		if s.products[i].ID == id {
			s.products = append(s.products[:i], s.products[i+1:]...)
			return nil
		}
	}
	return product.ErrNotFound
}

func (s *fakeStore) UploadImage(ctx context.Context, filename string, r io.Reader, productID *uuid.UUID) (string, error) {
	s.record("upload")
	if s.uploadFn != nil {
		return s.uploadFn(ctx, filename, r, productID)
	}
	return "https://cdn.example.com/" + filename, nil
}

// alerts collects alert messages.
type alerts struct {
	mu   sync.Mutex
	msgs []string
}

func (a *alerts) Alert(msg string) {
	a.mu.Lock()
	a.msgs = append(a.msgs, msg)
	a.mu.Unlock()
}

func (a *alerts) all() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.msgs...)
}

func adminSession() panel.Session {
	return panel.Session{User: &panel.User{ID: uuid.New(), Name: "root", OriginalRole: auth.ElevatedRole}}
}

func viewerSession() panel.Session {
	return panel.Session{User: &panel.User{ID: uuid.New(), Name: "guest", OriginalRole: auth.ViewerRole}}
}

func sample(name string, starred bool) product.Product {
	return product.Product{ID: uuid.New(), Name: name, Features: []string{}, IsStarred: starred}
}
