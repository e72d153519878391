package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Ak-theArtist/A-Kart-mobile-backend/internal/domain"
	"github.com/Ak-theArtist/A-Kart-mobile-backend/internal/service"
	"github.com/Ak-theArtist/A-Kart-mobile-backend/pkg/httputil"
	"github.com/Ak-theArtist/A-Kart-mobile-backend/pkg/middleware"
	"github.com/Ak-theArtist/A-Kart-mobile-backend/pkg/pagination"
	"github.com/Ak-theArtist/A-Kart-mobile-backend/pkg/validator"
)

// OrderHandler serves order endpoints.
type OrderHandler struct {
	orders *service.OrderService
	log    *slog.Logger
}

// NewOrderHandler creates an order handler.
func NewOrderHandler(orders *service.OrderService, log *slog.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, log: log}
}

type orderItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

type shippingInfoRequest struct {
	Address string `json:"address" validate:"required"`
	City    string `json:"city" validate:"required"`
	State   string `json:"state" validate:"required"`
	Country string `json:"country" validate:"required"`
	PinCode string `json:"pinCode" validate:"required"`
	PhoneNo string `json:"phoneNo" validate:"required"`
}

type paymentInfoRequest struct {
	ID     string `json:"id" validate:"required"`
	Status string `json:"status" validate:"required"`
}

type placeOrderRequest struct {
	Items         []orderItemRequest  `json:"items" validate:"required,min=1,dive"`
	ShippingInfo  shippingInfoRequest `json:"shippingInfo" validate:"required"`
	PaymentMethod string              `json:"paymentMethod" validate:"required,oneof=COD ONLINE"`
	PaymentInfo   paymentInfoRequest  `json:"paymentInfo" validate:"required"`
	TaxPrice      float64             `json:"taxPrice" validate:"gte=0"`
	ShippingPrice float64             `json:"shippingPrice" validate:"gte=0"`
}

func (h *OrderHandler) Place(w http.ResponseWriter, r *http.Request) {
	userID, ok := httputil.ParseObjectID(w, middleware.UserIDFromContext(r.Context()))
	if !ok {
		return
	}

	var req placeOrderRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	items := make([]service.OrderItemInput, len(req.Items))
	for i, item := range req.Items {
		productID, ok := httputil.ParseObjectID(w, item.ProductID)
		if !ok {
			return
		}
		items[i] = service.OrderItemInput{ProductID: productID, Quantity: item.Quantity}
	}

	order, err := h.orders.PlaceOrder(r.Context(), service.PlaceOrderInput{
		UserID: userID,
		Items:  items,
		ShippingInfo: domain.ShippingInfo{
			Address: req.ShippingInfo.Address,
			City:    req.ShippingInfo.City,
			State:   req.ShippingInfo.State,
			Country: req.ShippingInfo.Country,
			PinCode: req.ShippingInfo.PinCode,
			PhoneNo: req.ShippingInfo.PhoneNo,
		},
		PaymentMethod: domain.PaymentMethod(req.PaymentMethod),
		PaymentInfo: domain.PaymentInfo{
			ID:     req.PaymentInfo.ID,
			Status: req.PaymentInfo.Status,
		},
		TaxPrice:      req.TaxPrice,
		ShippingPrice: req.ShippingPrice,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.log)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: order})
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseObjectID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	requesterID, ok := httputil.ParseObjectID(w, middleware.UserIDFromContext(r.Context()))
	if !ok {
		return
	}
	isAdmin := middleware.RoleFromContext(r.Context()) == string(domain.RoleAdmin)

	order, err := h.orders.GetByID(r.Context(), id, requesterID, isAdmin)
	if err != nil {
		httputil.WriteError(w, r, err, h.log)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: order})
}

func (h *OrderHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := httputil.ParseObjectID(w, middleware.UserIDFromContext(r.Context()))
	if !ok {
		return
	}

	orders, err := h.orders.ListMine(r.Context(), userID)
	if err != nil {
		httputil.WriteError(w, r, err, h.log)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: orders})
}

func (h *OrderHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)

	orders, total, err := h.orders.ListAll(r.Context(), params)
	if err != nil {
		httputil.WriteError(w, r, err, h.log)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: pagination.NewResult(orders, total, params),
	})
}

// AdvanceStatus moves the order to the next fulfillment state. The request
// carries no body; the next state is implied by the current one.
func (h *OrderHandler) AdvanceStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseObjectID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	order, err := h.orders.AdvanceStatus(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.log)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: order})
}

func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseObjectID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.orders.Delete(r.Context(), id); err != nil {
		httputil.WriteError(w, r, err, h.log)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
