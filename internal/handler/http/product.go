package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Ak-theArtist/A-Kart-mobile-backend/internal/repository"
	"github.com/Ak-theArtist/A-Kart-mobile-backend/internal/service"
	apperrors "github.com/Ak-theArtist/A-Kart-mobile-backend/pkg/errors"
	"github.com/Ak-theArtist/A-Kart-mobile-backend/pkg/httputil"
	"github.com/Ak-theArtist/A-Kart-mobile-backend/pkg/middleware"
	"github.com/Ak-theArtist/A-Kart-mobile-backend/pkg/pagination"
	"github.com/Ak-theArtist/A-Kart-mobile-backend/pkg/validator"
)

// ProductHandler serves catalog and review endpoints.
type ProductHandler struct {
	products *service.ProductService
	users    *service.UserService
	log      *slog.Logger
}

// NewProductHandler creates a product handler.
func NewProductHandler(products *service.ProductService, users *service.UserService, log *slog.Logger) *ProductHandler {
	return &ProductHandler{products: products, users: users, log: log}
}

type imageUploadRequest struct {
	Filename string `json:"filename" validate:"required"`
	// Data is base64 in JSON; encoding/json decodes it into raw bytes.
	Data []byte `json:"data" validate:"required"`
}

type createProductRequest struct {
	Name        string               `json:"name" validate:"required,min=2,max=200"`
	Description string               `json:"description" validate:"max=5000"`
	Price       float64              `json:"price" validate:"required,gt=0"`
	Stock       int                  `json:"stock" validate:"gte=0"`
	CategoryID  *string              `json:"categoryId"`
	Images      []imageUploadRequest `json:"images" validate:"dive"`
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	input := service.CreateProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Images:      toImageUploads(req.Images),
	}

	if req.CategoryID != nil && *req.CategoryID != "" {
		categoryID, ok := httputil.ParseObjectID(w, *req.CategoryID)
		if !ok {
			return
		}
		input.CategoryID = &categoryID
	}

	product, err := h.products.Create(r.Context(), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.log)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: product})
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseObjectID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	product, err := h.products.GetByID(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.log)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: product})
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)

	filter := repository.ProductFilter{
		Name: r.URL.Query().Get("search"),
	}
	if raw := r.URL.Query().Get("category"); raw != "" {
		categoryID, ok := httputil.ParseObjectID(w, raw)
		if !ok {
			return
		}
		filter.CategoryID = &categoryID
	}
	if raw := r.URL.Query().Get("min_price"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			filter.MinPrice = v
		}
	}
	if raw := r.URL.Query().Get("max_price"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			filter.MaxPrice = v
		}
	}

	products, total, err := h.products.List(r.Context(), filter, params)
	if err != nil {
		httputil.WriteError(w, r, err, h.log)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: pagination.NewResult(products, total, params),
	})
}

func (h *ProductHandler) TopRated(w http.ResponseWriter, r *http.Request) {
	limit := 5
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			limit = v
		}
	}

	products, err := h.products.TopRated(r.Context(), limit)
	if err != nil {
		httputil.WriteError(w, r, err, h.log)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: products})
}

type updateProductRequest struct {
	Name        *string              `json:"name" validate:"omitempty,min=2,max=200"`
	Description *string              `json:"description" validate:"omitempty,max=5000"`
	Price       *float64             `json:"price" validate:"omitempty,gt=0"`
	Stock       *int                 `json:"stock" validate:"omitempty,gte=0"`
	CategoryID  *string              `json:"categoryId"`
	AddImages   []imageUploadRequest `json:"addImages" validate:"dive"`
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseObjectID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req updateProductRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	input := service.UpdateProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		AddImages:   toImageUploads(req.AddImages),
	}

	// An explicit categoryId field switches the category; an empty string
	// clears it.
	if req.CategoryID != nil {
		input.SetCategory = true
		if *req.CategoryID != "" {
			categoryID, ok := httputil.ParseObjectID(w, *req.CategoryID)
			if !ok {
				return
			}
			input.CategoryID = &categoryID
		}
	}

	product, err := h.products.Update(r.Context(), id, input)
	if err != nil {
		httputil.WriteError(w, r, err, h.log)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: product})
}

// DeleteImage removes a single product image identified by its publicId
// query parameter.
func (h *ProductHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseObjectID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	publicID := r.URL.Query().Get("publicId")
	if publicID == "" {
		httputil.WriteError(w, r, apperrors.InvalidInput("publicId query parameter is required"), h.log)
		return
	}

	product, err := h.products.RemoveImage(r.Context(), id, publicID)
	if err != nil {
		httputil.WriteError(w, r, err, h.log)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: product})
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseObjectID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.products.Delete(r.Context(), id); err != nil {
		httputil.WriteError(w, r, err, h.log)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type addReviewRequest struct {
	Rating  float64 `json:"rating" validate:"gte=0,lte=5"`
	Comment string  `json:"comment" validate:"max=2000"`
}

func (h *ProductHandler) AddReview(w http.ResponseWriter, r *http.Request) {
	productID, ok := httputil.ParseObjectID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	userID, ok := httputil.ParseObjectID(w, middleware.UserIDFromContext(r.Context()))
	if !ok {
		return
	}

	var req addReviewRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	// The reviewer's display name is snapshotted into the review.
	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		httputil.WriteError(w, r, err, h.log)
		return
	}

	product, err := h.products.AddReview(r.Context(), productID, service.AddReviewInput{
		UserID:   userID,
		UserName: user.Name,
		Rating:   req.Rating,
		Comment:  req.Comment,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.log)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: product})
}

func toImageUploads(reqs []imageUploadRequest) []service.ImageUpload {
	if len(reqs) == 0 {
		return nil
	}
	uploads := make([]service.ImageUpload, len(reqs))
	for i, req := range reqs {
		uploads[i] = service.ImageUpload{Filename: req.Filename, Data: req.Data}
	}
	return uploads
}
