package api_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/centralelevate/elevate/internal/api"
	"github.com/centralelevate/elevate/internal/auth"
	"github.com/centralelevate/elevate/internal/cache"
	"github.com/centralelevate/elevate/internal/catalog"
	"github.com/centralelevate/elevate/internal/client"
	"github.com/centralelevate/elevate/internal/events"
	"github.com/centralelevate/elevate/internal/panel"
	"github.com/centralelevate/elevate/internal/product"
	"github.com/centralelevate/elevate/internal/storage"
)

// memProductRepo is an in-memory product.Repository.
type memProductRepo struct {
	mu       sync.Mutex
	products []product.Product
	updates  int
}

func (m *memProductRepo) Create(_ context.Context, p *product.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = uuid.New()
	p.CreatedAt = time.Now().UTC()
	p.UpdatedAt = p.CreatedAt
	m.products = append(m.products, *p)
	return nil
}

func (m *memProductRepo) GetByID(_ context.Context, id uuid.UUID) (*product.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.products {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, product.ErrNotFound
}

func (m *memProductRepo) List(_ context.Context, _ product.ListFilter) ([]product.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]product.Product(nil), m.products...), nil
}

func (m *memProductRepo) Update(_ context.Context, id uuid.UUID, fields product.UpdateFields) (*product.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.products {
		if m.products[i].ID == id {
			m.updates++
			fields.Apply(&m.products[i])
			p := m.products[i]
			return &p, nil
		}
	}
	return nil, product.ErrNotFound
}

func (m *memProductRepo) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.products {
		if m.products[i].ID == id {
			m.products = append(m.products[:i], m.products[i+1:]...)
			return nil
		}
	}
	return product.ErrNotFound
}

func (m *memProductRepo) get(t *testing.T, id uuid.UUID) product.Product {
	t.Helper()
	p, err := m.GetByID(context.Background(), id)
	require.NoError(t, err)
	return *p
}

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 32)...)

// newLocalStack serves the real router over a catalog backed by local storage
// with the default root-relative upload URLs.
func newLocalStack(t *testing.T) (*httptest.Server, *memProductRepo) {
	t.Helper()

	dir := t.TempDir()
	repo := &memProductRepo{}
	svc := catalog.NewService(repo, cache.Nop{}, events.Nop{}, storage.NewLocal(dir, "/uploads"), catalog.Options{
		MaxImageBytes: 1 << 20,
	})

	authn := stubAuthenticator{
		adminKey: {UserID: uuid.New(), UserName: "admin", Role: auth.ElevatedRole},
	}
	srv := httptest.NewServer(api.NewRouter(api.RouterDeps{
		DBPinger:        noopPinger{},
		Version:         "test",
		Authenticator:   authn,
		UserIssuer:      auth.NewService(noopUserRepo{}, 4),
		UserRepo:        noopUserRepo{},
		Products:        svc,
		MaxImageBytes:   1 << 20,
		UploadDir:       dir,
		UploadURLPrefix: "/uploads",
	}))
	t.Cleanup(srv.Close)
	return srv, repo
}

func newAdminController(t *testing.T, srv *httptest.Server) *panel.Controller {
	t.Helper()
	c := client.New(srv.URL, adminKey)
	ctrl := panel.NewController(c, panel.Session{
		User: &panel.User{ID: uuid.New(), Name: "admin", OriginalRole: auth.ElevatedRole},
	}, panel.ControllerOptions{})
	require.NoError(t, ctrl.Mount(context.Background()))
	t.Cleanup(ctrl.Close)
	return ctrl
}

func TestUploadFlow_CreateWithLocalImage(t *testing.T) {
	srv, repo := newLocalStack(t)
	ctrl := newAdminController(t, srv)
	ctx := context.Background()

	form, err := ctrl.NewProduct()
	require.NoError(t, err)
	defer form.Close()

	form.SetName("Nexus")
	require.NoError(t, form.UploadImage(ctx, "logo.png", bytes.NewReader(pngBytes)))
	imageURL := form.Preview()
	require.True(t, strings.HasPrefix(imageURL, "/uploads/"), "got %q", imageURL)

	require.NoError(t, form.Submit(ctx), form.Error())

	require.Len(t, repo.products, 1)
	assert.Equal(t, imageURL, repo.products[0].ImageURL)

	resp, err := http.Get(srv.URL + imageURL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, pngBytes, body)
}

func TestUploadFlow_EditCancelKeepsStoredImage(t *testing.T) {
	srv, repo := newLocalStack(t)
	ctx := context.Background()

	p := product.NewFromDraft(product.Draft{Name: "Nexus", ImageURL: "https://cdn.example.com/old.png"})
	require.NoError(t, repo.Create(ctx, p))
	ctrl := newAdminController(t, srv)

	form, err := ctrl.EditProduct(repo.get(t, p.ID))
	require.NoError(t, err)
	require.NoError(t, form.UploadImage(ctx, "new.png", bytes.NewReader(pngBytes)))
	assert.NotEqual(t, "https://cdn.example.com/old.png", form.Preview())
	form.Close()

	assert.Equal(t, "https://cdn.example.com/old.png", repo.get(t, p.ID).ImageURL)
	assert.Zero(t, repo.updates)
}

func TestUploadFlow_EditSubmitSavesLocalImage(t *testing.T) {
	srv, repo := newLocalStack(t)
	ctx := context.Background()

	p := product.NewFromDraft(product.Draft{Name: "Nexus"})
	require.NoError(t, repo.Create(ctx, p))
	ctrl := newAdminController(t, srv)

	form, err := ctrl.EditProduct(repo.get(t, p.ID))
	require.NoError(t, err)
	defer form.Close()
	require.NoError(t, form.UploadImage(ctx, "new.png", bytes.NewReader(pngBytes)))
	uploaded := form.Preview()

	require.NoError(t, form.Submit(ctx), form.Error())
	assert.Equal(t, uploaded, repo.get(t, p.ID).ImageURL)

	// A later save resends the stored relative URL and must still validate.
	form2, err := ctrl.EditProduct(repo.get(t, p.ID))
	require.NoError(t, err)
	defer form2.Close()
	form2.SetCurrentStatus("GA")
	require.NoError(t, form2.Submit(ctx), form2.Error())
	assert.Equal(t, "GA", repo.get(t, p.ID).CurrentStatus)
	assert.Equal(t, uploaded, repo.get(t, p.ID).ImageURL)
}
