package vercel

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/centralelevate/elevate/internal/product"
)

// DeploymentSource reports the latest deployment of a project.
type DeploymentSource interface {
	LatestDeployment(ctx context.Context, projectID, teamID string) (*Deployment, error)
}

// ProductStore is the catalog surface the syncer reads and writes.
type ProductStore interface {
	List(ctx context.Context, filter product.ListFilter) ([]product.Product, error)
	Update(ctx context.Context, id uuid.UUID, fields product.UpdateFields) (*product.Product, error)
}

// Syncer polls linked products and copies their deployment state into the catalog.
type Syncer struct {
	store    ProductStore
	source   DeploymentSource
	interval time.Duration
	mu       sync.Mutex
}

// NewSyncer creates a new Syncer.
func NewSyncer(store ProductStore, source DeploymentSource, interval time.Duration) *Syncer {
	return &Syncer{
		store:    store,
		source:   source,
		interval: interval,
	}
}

// Start runs SyncOnce on every tick. It blocks until ctx is cancelled.
func (s *Syncer) Start(ctx context.Context) {
	slog.Info("deployment syncer started", "interval", s.interval.String())
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.SyncOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("deployment syncer stopped")
			return
		case <-ticker.C:
			s.SyncOnce(ctx)
		}
	}
}

// SyncOnce refreshes every product with a deployment project id and returns
// how many products changed. Concurrent calls are serialized.
func (s *Syncer) SyncOnce(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.store.List(ctx, product.ListFilter{LinkedOnly: true})
	if err != nil {
		slog.Error("syncer: failed to list linked products", "error", err)
		return 0
	}

	changed := 0
	for i := range products {
		if ctx.Err() != nil {
			return changed
		}
		if s.syncOne(ctx, &products[i]) {
			changed++
		}
	}
	return changed
}

func (s *Syncer) syncOne(ctx context.Context, p *product.Product) bool {
	if !p.HasDeploymentIntegration() {
		return false
	}

	d, err := s.source.LatestDeployment(ctx, p.VercelProjectID, p.VercelTeamID)
	if err != nil {
		if errors.Is(err, ErrNoDeployments) {
			return false
		}
		slog.Warn("syncer: failed to fetch deployment",
			"product", p.Name,
			"project", p.VercelProjectID,
			"error", err,
		)
		return false
	}

	sameTime := p.VercelLastDeployment != nil && p.VercelLastDeployment.Equal(d.CreatedAt)
	if p.VercelDeploymentStatus == d.State && sameTime {
		return false
	}

	status := d.State
	created := d.CreatedAt
	_, err = s.store.Update(ctx, p.ID, product.UpdateFields{
		VercelDeploymentStatus: &status,
		VercelLastDeployment:   &created,
	})
	if err != nil {
		slog.Error("syncer: failed to update deployment status",
			"product", p.Name,
			"error", err,
		)
		return false
	}

	slog.Info("syncer: deployment status changed",
		"product", p.Name,
		"from", p.VercelDeploymentStatus.String(),
		"to", status.String(),
	)
	return true
}
