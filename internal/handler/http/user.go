package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Ak-theArtist/A-Kart-mobile-backend/internal/auth"
	"github.com/Ak-theArtist/A-Kart-mobile-backend/internal/domain"
	"github.com/Ak-theArtist/A-Kart-mobile-backend/internal/service"
	apperrors "github.com/Ak-theArtist/A-Kart-mobile-backend/pkg/errors"
	"github.com/Ak-theArtist/A-Kart-mobile-backend/pkg/httputil"
	"github.com/Ak-theArtist/A-Kart-mobile-backend/pkg/middleware"
	"github.com/Ak-theArtist/A-Kart-mobile-backend/pkg/pagination"
	"github.com/Ak-theArtist/A-Kart-mobile-backend/pkg/validator"
)

// UserHandler serves account and session endpoints.
type UserHandler struct {
	users  *service.UserService
	tokens *auth.JWTManager
	secure bool
	log    *slog.Logger
}

// NewUserHandler creates a user handler. secure controls the Secure flag on
// session cookies and should be true everywhere except local development.
func NewUserHandler(users *service.UserService, tokens *auth.JWTManager, secure bool, log *slog.Logger) *UserHandler {
	return &UserHandler{users: users, tokens: tokens, secure: secure, log: log}
}

type registerRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Address  string `json:"address" validate:"required"`
	City     string `json:"city" validate:"required"`
	Country  string `json:"country" validate:"required"`
	Phone    string `json:"phone" validate:"required"`
	Answer   string `json:"answer" validate:"required"`
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	user, token, err := h.users.Register(r.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Address:  req.Address,
		City:     req.City,
		Country:  req.Country,
		Phone:    req.Phone,
		Answer:   req.Answer,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.log)
		return
	}

	h.setSessionCookie(w, token)
	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: user})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	user, token, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		httputil.WriteError(w, r, err, h.log)
		return
	}

	h.setSessionCookie(w, token)
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: user})
}

func (h *UserHandler) Logout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"message": "logged out"}})
}

// Me returns the authenticated user's own profile.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseObjectID(w, middleware.UserIDFromContext(r.Context()))
	if !ok {
		return
	}

	user, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.log)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: user})
}

type updateProfileRequest struct {
	Name    *string `json:"name" validate:"omitempty,min=2,max=100"`
	Email   *string `json:"email" validate:"omitempty,email"`
	Address *string `json:"address"`
	City    *string `json:"city"`
	Country *string `json:"country"`
	Phone   *string `json:"phone"`
}

func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseObjectID(w, middleware.UserIDFromContext(r.Context()))
	if !ok {
		return
	}

	var req updateProfileRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	user, err := h.users.UpdateProfile(r.Context(), id, service.UpdateProfileInput{
		Name:    req.Name,
		Email:   req.Email,
		Address: req.Address,
		City:    req.City,
		Country: req.Country,
		Phone:   req.Phone,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.log)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: user})
}

type updatePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8,max=72"`
}

func (h *UserHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseObjectID(w, middleware.UserIDFromContext(r.Context()))
	if !ok {
		return
	}

	var req updatePasswordRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	if err := h.users.UpdatePassword(r.Context(), id, req.OldPassword, req.NewPassword); err != nil {
		httputil.WriteError(w, r, err, h.log)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"message": "password updated"}})
}

type resetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Answer      string `json:"answer" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8,max=72"`
}

func (h *UserHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	if err := h.users.ResetPassword(r.Context(), req.Email, req.Answer, req.NewPassword); err != nil {
		httputil.WriteError(w, r, err, h.log)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"message": "password reset"}})
}

func (h *UserHandler) UpdateProfilePic(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseObjectID(w, middleware.UserIDFromContext(r.Context()))
	if !ok {
		return
	}

	var req imageUploadRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	user, err := h.users.UpdateProfilePic(r.Context(), id, service.ImageUpload{
		Filename: req.Filename,
		Data:     req.Data,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.log)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: user})
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)

	users, total, err := h.users.List(r.Context(), params)
	if err != nil {
		httputil.WriteError(w, r, err, h.log)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: pagination.NewResult(users, total, params),
	})
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseObjectID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	user, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.log)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: user})
}

type updateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=customer admin"`
}

func (h *UserHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseObjectID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req updateRoleRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	user, err := h.users.UpdateRole(r.Context(), id, domain.Role(req.Role))
	if err != nil {
		httputil.WriteError(w, r, err, h.log)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: user})
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseObjectID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	// Admins cannot delete their own account through this endpoint.
	if middleware.UserIDFromContext(r.Context()) == id.Hex() {
		httputil.WriteError(w, r, apperrors.InvalidInput("cannot delete your own account"), h.log)
		return
	}

	if err := h.users.Delete(r.Context(), id); err != nil {
		httputil.WriteError(w, r, err, h.log)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.tokens.Expiry().Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
