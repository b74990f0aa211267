package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/centralelevate/elevate/internal/api/middleware"
	"github.com/centralelevate/elevate/internal/api/response"
	"github.com/centralelevate/elevate/internal/api/validation"
	"github.com/centralelevate/elevate/internal/catalog"
	"github.com/centralelevate/elevate/internal/product"
	"github.com/centralelevate/elevate/internal/storage"
)

// ProductService is the subset of catalog.Service the handlers need.
type ProductService interface {
	LoadAll(ctx context.Context) ([]product.Product, error)
	List(ctx context.Context, filter product.ListFilter) ([]product.Product, error)
	Get(ctx context.Context, id uuid.UUID) (*product.Product, error)
	Create(ctx context.Context, d product.Draft) (*product.Product, error)
	Update(ctx context.Context, id uuid.UUID, fields product.UpdateFields) (*product.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	UploadImage(ctx context.Context, r io.Reader, in storage.PutInput, productID *uuid.UUID) (string, error)
}

// Refresher runs one deployment status sync pass and reports how many
// products changed.
type Refresher interface {
	SyncOnce(ctx context.Context) int
}

type imageResponse struct {
	URL string `json:"url"`
}

type refreshResponse struct {
	Enabled bool `json:"enabled"`
	Updated int  `json:"updated"`
}

// multipartOverhead is allowed on top of the image size for form framing.
const multipartOverhead = 1 << 20

// ProductHandler handles product CRUD, image upload and status refresh.
type ProductHandler struct {
	svc           ProductService
	refresher     Refresher
	maxImageBytes int64
}

// NewProductHandler creates a new ProductHandler. refresher may be nil when
// deployment sync is disabled.
func NewProductHandler(svc ProductService, refresher Refresher, maxImageBytes int64) *ProductHandler {
	return &ProductHandler{
		svc:           svc,
		refresher:     refresher,
		maxImageBytes: maxImageBytes,
	}
}

// List handles GET /products. ?filter=starred narrows to starred products,
// ?filter=linked to products with a deployment project.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	filterParam := r.URL.Query().Get("filter")

	var (
		products []product.Product
		err      error
	)
	switch filterParam {
	case "", "all":
		filterParam = ""
		products, err = h.svc.LoadAll(r.Context())
	case "starred":
		products, err = h.svc.List(r.Context(), product.ListFilter{StarredOnly: true})
	case "linked":
		products, err = h.svc.List(r.Context(), product.ListFilter{LinkedOnly: true})
	default:
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed",
			[]validation.FieldError{{Field: "filter", Message: "filter must be one of: all, starred, linked"}}, requestID)
		return
	}
	if err != nil {
		slog.Error("failed to list products", "error", err, "filter", filterParam)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list products", requestID)
		return
	}

	if products == nil {
		products = []product.Product{}
	}
	response.SuccessList(w, http.StatusOK, products, len(products), filterParam, requestID)
}

// GetByID handles GET /products/{id}.
func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := parseID(w, r, requestID)
	if !ok {
		return
	}

	p, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err, "Failed to get product", id, requestID)
		return
	}

	response.Success(w, http.StatusOK, p, requestID)
}

// Create handles POST /products.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var d product.Draft
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	if fieldErrors := validation.ValidateDraft(d); len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	p, err := h.svc.Create(r.Context(), d)
	if err != nil {
		h.writeServiceError(w, err, "Failed to create product", uuid.Nil, requestID)
		return
	}

	response.Success(w, http.StatusCreated, p, requestID)
}

// Update handles PATCH /products/{id}. Only fields present in the body change.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := parseID(w, r, requestID)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var fields product.UpdateFields
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	if fieldErrors := validation.ValidateUpdate(fields); len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	p, err := h.svc.Update(r.Context(), id, fields)
	if err != nil {
		h.writeServiceError(w, err, "Failed to update product", id, requestID)
		return
	}

	response.Success(w, http.StatusOK, p, requestID)
}

// Delete handles DELETE /products/{id}.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := parseID(w, r, requestID)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		h.writeServiceError(w, err, "Failed to delete product", id, requestID)
		return
	}

	response.NoContent(w)
}

// UploadImage handles POST /products/images. The multipart form carries the
// image in "file" and optionally, in "productId", the product being edited.
// The product itself is not changed until the returned URL is saved.
func (h *ProductHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.maxImageBytes+multipartOverhead)
	if err := r.ParseMultipartForm(multipartOverhead); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			response.Err(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Image exceeds the size limit", requestID)
			return
		}
		response.Err(w, http.StatusBadRequest, "VALIDATION_ERROR", "Request must be multipart/form-data", requestID)
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	var productID *uuid.UUID
	if raw := strings.TrimSpace(r.FormValue("productId")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.Err(w, http.StatusBadRequest, "INVALID_ID", "productId must be a valid UUID", requestID)
			return
		}
		productID = &id
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed",
			[]validation.FieldError{{Field: "file", Message: "file is required"}}, requestID)
		return
	}
	defer file.Close()

	body, contentType, err := sniffContentType(file, header)
	if err != nil {
		slog.Error("failed to read upload", "error", err)
		response.Err(w, http.StatusBadRequest, "VALIDATION_ERROR", "Failed to read uploaded file", requestID)
		return
	}

	url, err := h.svc.UploadImage(r.Context(), body, storage.PutInput{
		Filename:    header.Filename,
		ContentType: contentType,
		Size:        header.Size,
	}, productID)
	if err != nil {
		id := uuid.Nil
		if productID != nil {
			id = *productID
		}
		h.writeServiceError(w, err, "Failed to upload image", id, requestID)
		return
	}

	response.Success(w, http.StatusCreated, imageResponse{URL: url}, requestID)
}

// Refresh handles POST /products/refresh.
func (h *ProductHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	if h.refresher == nil {
		response.Success(w, http.StatusOK, refreshResponse{}, requestID)
		return
	}

	n := h.refresher.SyncOnce(r.Context())
	response.Success(w, http.StatusOK, refreshResponse{Enabled: true, Updated: n}, requestID)
}

func (h *ProductHandler) writeServiceError(w http.ResponseWriter, err error, msg string, id uuid.UUID, requestID string) {
	switch {
	case errors.Is(err, product.ErrNotFound):
		response.Err(w, http.StatusNotFound, "NOT_FOUND", "Product not found", requestID)
	case errors.Is(err, catalog.ErrInvalidName):
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed",
			[]validation.FieldError{{Field: "name", Message: "name is required"}}, requestID)
	case errors.Is(err, catalog.ErrDuplicateFeature):
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed",
			[]validation.FieldError{{Field: "features", Message: err.Error()}}, requestID)
	case errors.Is(err, storage.ErrUnsupportedType):
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed",
			[]validation.FieldError{{Field: "file", Message: "file must be a PNG, JPEG, WebP or GIF image"}}, requestID)
	case errors.Is(err, catalog.ErrImageTooLarge):
		response.Err(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Image exceeds the size limit", requestID)
	default:
		slog.Error(strings.ToLower(msg), "error", err, "id", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", msg, requestID)
	}
}

func parseID(w http.ResponseWriter, r *http.Request, requestID string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_ID", "id must be a valid UUID", requestID)
		return uuid.Nil, false
	}
	return id, true
}

// sniffContentType prefers the detected type over the client-declared one.
func sniffContentType(f multipart.File, header *multipart.FileHeader) (io.Reader, string, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, "", err
	}
	head = head[:n]

	contentType := http.DetectContentType(head)
	if contentType == "application/octet-stream" {
		contentType = header.Header.Get("Content-Type")
	}

	return io.MultiReader(bytes.NewReader(head), f), contentType, nil
}
