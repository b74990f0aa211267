package client_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/centralelevate/elevate/internal/api/response"
	"github.com/centralelevate/elevate/internal/client"
	"github.com/centralelevate/elevate/internal/product"
)

func newServer(t *testing.T, h http.HandlerFunc) *client.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return client.New(srv.URL+"/", "elv_test")
}

func TestClient_LoadAll(t *testing.T) {
	id := uuid.New()
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/products", r.URL.Path)
		assert.Equal(t, "elv_test", r.Header.Get("X-API-Key"))
		response.SuccessList(w, http.StatusOK, []product.Product{
			{ID: id, Name: "Nexus", IsStarred: true, VercelDeploymentStatus: product.StatusReady},
		}, 1, "", "r1")
	})

	products, err := c.LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, id, products[0].ID)
	assert.True(t, products[0].IsStarred)
	assert.Equal(t, product.StatusReady, products[0].VercelDeploymentStatus)
}

func TestClient_ListStarred(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "starred", r.URL.Query().Get("filter"))
		response.SuccessList(w, http.StatusOK, []product.Product{}, 0, "starred", "r1")
	})

	products, err := c.List(context.Background(), "starred")
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestClient_UpdateSendsOnlySetFields(t *testing.T) {
	id := uuid.New()
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/products/"+id.String(), r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]interface{}{"isStarred": true}, body)

		response.Success(w, http.StatusOK, product.Product{ID: id, IsStarred: true}, "r1")
	})

	starred := true
	p, err := c.Update(context.Background(), id, product.UpdateFields{IsStarred: &starred})
	require.NoError(t, err)
	assert.True(t, p.IsStarred)
}

func TestClient_Create(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		var d product.Draft
		require.NoError(t, json.NewDecoder(r.Body).Decode(&d))
		assert.Equal(t, "Nexus", d.Name)
		p := product.NewFromDraft(d)
		p.ID = uuid.New()
		response.Success(w, http.StatusCreated, p, "r1")
	})

	p, err := c.Create(context.Background(), product.Draft{Name: "Nexus", Features: []string{"SSO"}})
	require.NoError(t, err)
	assert.Equal(t, "Nexus", p.Name)
	assert.Equal(t, []string{"SSO"}, p.Features)
}

func TestClient_Delete(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		response.NoContent(w)
	})

	assert.NoError(t, c.Delete(context.Background(), uuid.New()))
}

func TestClient_ErrorEnvelope(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		response.Err(w, http.StatusForbidden, "FORBIDDEN", "Insufficient permissions", "r1")
	})

	err := c.Delete(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, client.IsStatus(err, http.StatusForbidden))

	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "FORBIDDEN", apiErr.Code)
	assert.Equal(t, "Insufficient permissions", err.Error())
}

func TestClient_ValidationDetailsBecomeMessage(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed",
			[]client.FieldError{{Field: "name", Message: "name is required"}}, "r1")
	})

	_, err := c.Create(context.Background(), product.Draft{})
	require.Error(t, err)
	assert.Equal(t, "name is required", err.Error())
}

func TestClient_NonJSONError(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	})

	_, err := c.LoadAll(context.Background())
	assert.True(t, client.IsStatus(err, http.StatusBadGateway))
	assert.Equal(t, "request failed with status 502", err.Error())
}

func TestClient_UploadImage(t *testing.T) {
	productID := uuid.New()
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, productID.String(), r.FormValue("productId"))

		f, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "logo.png", header.Filename)
		assert.Equal(t, "img", string(data))

		response.Success(w, http.StatusCreated, map[string]string{"url": "https://cdn.example.com/logo.png"}, "r1")
	})

	url, err := c.UploadImage(context.Background(), "logo.png", strings.NewReader("img"), &productID)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/logo.png", url)
}

func TestClient_MeAndRefresh(t *testing.T) {
	id := uuid.New()
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/me":
			response.Success(w, http.StatusOK, map[string]interface{}{
				"id": id, "name": "root", "role": "super_admin", "elevated": true,
			}, "r1")
		case "/products/refresh":
			response.Success(w, http.StatusOK, map[string]interface{}{"enabled": true, "updated": 4}, "r1")
		default:
			http.NotFound(w, r)
		}
	})

	me, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, id, me.ID)
	assert.True(t, me.Elevated)

	n, err := c.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}
