// Package client talks to the elevate HTTP API. It is the store the operator
// CLI hands to the panel controller.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/centralelevate/elevate/internal/product"
)

// APIError is a non-2xx response decoded from the error envelope.
type APIError struct {
	Status  int
	Code    string
	Message string
	Details []FieldError
}

// FieldError mirrors the server's validation detail.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if len(e.Details) > 0 {
		parts := make([]string, 0, len(e.Details))
		for _, d := range e.Details {
			parts = append(parts, d.Message)
		}
		return strings.Join(parts, "; ")
	}
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

// IsStatus reports whether err is an APIError with the given HTTP status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// Me is the identity behind the configured API key.
type Me struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Role     string    `json:"role"`
	Elevated bool      `json:"elevated"`
}

// Client calls the elevate API with an X-API-Key header.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a Client for the API at baseURL.
func New(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string       `json:"code"`
		Message string       `json:"message"`
		Details []FieldError `json:"details"`
	} `json:"error"`
}

// Me returns the calling identity.
func (c *Client) Me(ctx context.Context) (*Me, error) {
	var me Me
	if err := c.do(ctx, http.MethodGet, "/me", nil, "", &me); err != nil {
		return nil, err
	}
	return &me, nil
}

// LoadAll returns every product, starred first then newest.
func (c *Client) LoadAll(ctx context.Context) ([]product.Product, error) {
	return c.List(ctx, "")
}

// List returns products narrowed by filter ("", "starred" or "linked").
func (c *Client) List(ctx context.Context, filter string) ([]product.Product, error) {
	path := "/products"
	if filter != "" {
		path += "?filter=" + url.QueryEscape(filter)
	}
	var products []product.Product
	if err := c.do(ctx, http.MethodGet, path, nil, "", &products); err != nil {
		return nil, err
	}
	return products, nil
}

// Get returns a single product.
func (c *Client) Get(ctx context.Context, id uuid.UUID) (*product.Product, error) {
	var p product.Product
	if err := c.do(ctx, http.MethodGet, "/products/"+id.String(), nil, "", &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a product.
func (c *Client) Create(ctx context.Context, d product.Draft) (*product.Product, error) {
	body, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("encoding draft: %w", err)
	}
	var p product.Product
	if err := c.do(ctx, http.MethodPost, "/products", bytes.NewReader(body), "application/json", &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Update sends a partial update.
func (c *Client) Update(ctx context.Context, id uuid.UUID, fields product.UpdateFields) (*product.Product, error) {
	body, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encoding update: %w", err)
	}
	var p product.Product
	if err := c.do(ctx, http.MethodPatch, "/products/"+id.String(), bytes.NewReader(body), "application/json", &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Delete removes a product.
func (c *Client) Delete(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/products/"+id.String(), nil, "", nil)
}

// UploadImage uploads an image and returns its hosted URL. productID names the
// product being edited; the product keeps its image until the URL is saved.
func (c *Client) UploadImage(ctx context.Context, filename string, r io.Reader, productID *uuid.UUID) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if productID != nil {
		if err := mw.WriteField("productId", productID.String()); err != nil {
			return "", fmt.Errorf("writing form: %w", err)
		}
	}
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("writing form: %w", err)
	}
	if _, err := io.Copy(fw, r); err != nil {
		return "", fmt.Errorf("reading image: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("writing form: %w", err)
	}

	var out struct {
		URL string `json:"url"`
	}
	if err := c.do(ctx, http.MethodPost, "/products/images", &buf, mw.FormDataContentType(), &out); err != nil {
		return "", err
	}
	return out.URL, nil
}

// Refresh triggers a deployment status sync and returns how many products changed.
func (c *Client) Refresh(ctx context.Context) (int, error) {
	var out struct {
		Enabled bool `json:"enabled"`
		Updated int  `json:"updated"`
	}
	if err := c.do(ctx, http.MethodPost, "/products/refresh", nil, "", &out); err != nil {
		return 0, err
	}
	return out.Updated, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode >= 300 {
			return &APIError{Status: resp.StatusCode}
		}
		return fmt.Errorf("decoding response: %w", err)
	}

	if resp.StatusCode >= 300 || env.Error != nil {
		apiErr := &APIError{Status: resp.StatusCode}
		if env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
			apiErr.Details = env.Error.Details
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decoding response data: %w", err)
	}
	return nil
}
