package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Ak-theArtist/A-Kart-mobile-backend/internal/service"
	"github.com/Ak-theArtist/A-Kart-mobile-backend/pkg/httputil"
	"github.com/Ak-theArtist/A-Kart-mobile-backend/pkg/validator"
)

// CategoryHandler serves category endpoints.
type CategoryHandler struct {
	categories *service.CategoryService
	log        *slog.Logger
}

// NewCategoryHandler creates a category handler.
func NewCategoryHandler(categories *service.CategoryService, log *slog.Logger) *CategoryHandler {
	return &CategoryHandler{categories: categories, log: log}
}

type categoryRequest struct {
	Name string `json:"name" validate:"required,min=2,max=100"`
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	category, err := h.categories.Create(r.Context(), req.Name)
	if err != nil {
		httputil.WriteError(w, r, err, h.log)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: category})
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.List(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.log)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: categories})
}

func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseObjectID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	category, err := h.categories.GetByID(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.log)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: category})
}

func (h *CategoryHandler) Rename(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseObjectID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req categoryRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	category, err := h.categories.Rename(r.Context(), id, req.Name)
	if err != nil {
		httputil.WriteError(w, r, err, h.log)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: category})
}

func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseObjectID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.categories.Delete(r.Context(), id); err != nil {
		httputil.WriteError(w, r, err, h.log)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
