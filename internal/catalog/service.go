// Package catalog is the product store: it owns the product list and every
// mutation on it, keeping the cached snapshot and the event stream in step
// with the repository.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/centralelevate/elevate/internal/events"
	"github.com/centralelevate/elevate/internal/product"
	"github.com/centralelevate/elevate/internal/storage"
)

// snapshotKey caches the full product list.
const snapshotKey = "products:all"

// ErrInvalidName is returned when a product name is empty after trimming.
var ErrInvalidName = errors.New("product name is required")

// ErrDuplicateFeature is returned when a feature list repeats an entry.
var ErrDuplicateFeature = errors.New("features must not contain duplicates")

// ErrImageTooLarge is returned for uploads above the configured limit.
var ErrImageTooLarge = errors.New("image is too large")

// Cache stores the product list snapshot.
type Cache interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
	Invalidate(ctx context.Context, key string) error
}

// Publisher emits product change events.
type Publisher interface {
	Publish(evt events.Event) error
}

// Options tunes a Service.
type Options struct {
	CacheTTL      time.Duration
	MaxImageBytes int64
}

// Service implements the product store operations.
type Service struct {
	repo   product.Repository
	cache  Cache
	events Publisher
	images storage.Storage
	opts   Options
}

// NewService creates a new catalog Service.
func NewService(repo product.Repository, cache Cache, pub Publisher, images storage.Storage, opts Options) *Service {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = time.Minute
	}
	if opts.MaxImageBytes <= 0 {
		opts.MaxImageBytes = 5 << 20
	}
	return &Service{
		repo:   repo,
		cache:  cache,
		events: pub,
		images: images,
		opts:   opts,
	}
}

// LoadAll returns the full product list, from the snapshot cache when warm.
func (s *Service) LoadAll(ctx context.Context) ([]product.Product, error) {
	if data, err := s.cache.Get(ctx, snapshotKey); err == nil {
		var products []product.Product
		if err := json.Unmarshal(data, &products); err == nil {
			return products, nil
		}
		slog.Warn("discarding unreadable product snapshot", "error", err)
	}

	products, err := s.repo.List(ctx, product.ListFilter{})
	if err != nil {
		return nil, fmt.Errorf("loading products: %w", err)
	}

	if data, err := json.Marshal(products); err == nil {
		if err := s.cache.Set(ctx, snapshotKey, data, s.opts.CacheTTL); err != nil {
			slog.Warn("failed to cache product snapshot", "error", err)
		}
	}

	return products, nil
}

// List bypasses the snapshot and queries the repository with a filter.
func (s *Service) List(ctx context.Context, filter product.ListFilter) ([]product.Product, error) {
	products, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return products, nil
}

// Get returns a single product.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*product.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// Create inserts a product built from the draft.
func (s *Service) Create(ctx context.Context, d product.Draft) (*product.Product, error) {
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		return nil, ErrInvalidName
	}
	if hasDuplicate(d.Features) {
		return nil, ErrDuplicateFeature
	}

	p := product.NewFromDraft(d)
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("creating product: %w", err)
	}

	s.afterMutation(ctx, events.ProductCreated, p.ID, p)
	return p, nil
}

// Update applies a partial update and returns the merged product.
func (s *Service) Update(ctx context.Context, id uuid.UUID, fields product.UpdateFields) (*product.Product, error) {
	if fields.Name != nil {
		name := strings.TrimSpace(*fields.Name)
		if name == "" {
			return nil, ErrInvalidName
		}
		fields.Name = &name
	}
	if fields.Features != nil && hasDuplicate(*fields.Features) {
		return nil, ErrDuplicateFeature
	}

	p, err := s.repo.Update(ctx, id, fields)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("updating product: %w", err)
	}

	s.afterMutation(ctx, events.ProductUpdated, p.ID, p)
	return p, nil
}

// Delete removes a product.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, product.ErrNotFound) {
			return err
		}
		return fmt.Errorf("deleting product: %w", err)
	}

	s.afterMutation(ctx, events.ProductDeleted, id, nil)
	return nil
}

// UploadImage stores an image and returns its hosted URL. When productID is
// set the product must exist, but its row is left alone: the URL only reaches
// the product when the caller saves it.
func (s *Service) UploadImage(ctx context.Context, r io.Reader, in storage.PutInput, productID *uuid.UUID) (string, error) {
	if !storage.IsImageContentType(in.ContentType) {
		return "", storage.ErrUnsupportedType
	}
	if in.Size > s.opts.MaxImageBytes {
		return "", ErrImageTooLarge
	}

	if productID != nil {
		if _, err := s.repo.GetByID(ctx, *productID); err != nil {
			return "", err
		}
	}

	lr := &limitedReader{r: r, remaining: s.opts.MaxImageBytes}
	res, err := s.images.Put(ctx, lr, in)
	if err != nil {
		if lr.exceeded {
			return "", ErrImageTooLarge
		}
		return "", fmt.Errorf("storing image: %w", err)
	}

	slog.Info("product image stored", "key", res.Key, "productId", productID)
	return res.URL, nil
}

// afterMutation drops the snapshot and publishes the event. Neither failure
// fails the mutation.
func (s *Service) afterMutation(ctx context.Context, eventType string, id uuid.UUID, p *product.Product) {
	if err := s.cache.Invalidate(ctx, snapshotKey); err != nil {
		slog.Warn("failed to invalidate product snapshot", "error", err)
	}
	if err := s.events.Publish(events.Event{Type: eventType, ProductID: id, Product: p}); err != nil {
		slog.Warn("failed to publish product event", "type", eventType, "id", id, "error", err)
	}
}

func hasDuplicate(features []string) bool {
	seen := make(map[string]bool, len(features))
	for _, f := range features {
		if seen[f] {
			return true
		}
		seen[f] = true
	}
	return false
}

// limitedReader fails once more than remaining bytes are read.
type limitedReader struct {
	r         io.Reader
	remaining int64
	exceeded  bool
}

func (l *limitedReader) Read(p []byte) (int, error) {
	n, err := l.r.Read(p)
	l.remaining -= int64(n)
	if l.remaining < 0 {
		l.exceeded = true
		return n, ErrImageTooLarge
	}
	return n, err
}
