package order

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/mohirdev/delivery-api/internal/auth"
	"github.com/mohirdev/delivery-api/internal/errs"
	"github.com/mohirdev/delivery-api/internal/order/entity"
)

// OrderService is the service surface the handler needs; satisfied by
// *Service and by fakes in tests.
type OrderService interface {
	Place(ctx context.Context, userID, productID, quantity int64) (*entity.Detail, error)
	ListAll(ctx context.Context) ([]entity.Detail, error)
	Get(ctx context.Context, id int64) (*entity.Detail, error)
}

// Handler exposes the /order HTTP endpoints.
type Handler struct {
	svc    OrderService
	logger *zap.SugaredLogger
}

func NewHandler(svc OrderService, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// MakeRequest request body for order placement.
type MakeRequest struct {
	Quantity  int64 `json:"quantity"`
	ProductID int64 `json:"product_id"`
}

// Make places an order for the authenticated caller.
func (h *Handler) Make(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.IdentityFrom(r.Context())
	if !ok {
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	var req MakeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debugw("invalid order payload", "err", err)
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	if req.Quantity <= 0 {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "quantity must be positive"})
		return
	}
	d, err := h.svc.Place(r.Context(), u.ID, req.ProductID, req.Quantity)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "product not found"})
			return
		}
		h.logger.Errorw("place order", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "place order failed"})
		return
	}
	h.writeJSON(w, http.StatusCreated, d)
}

// List returns every order; staff only.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.ListAll(r.Context())
	if err != nil {
		h.logger.Errorw("list orders", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "list orders failed"})
		return
	}
	h.writeJSON(w, http.StatusOK, orders)
}

// Get returns one order by ID; staff only.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order id"})
		return
	}
	d, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		h.logger.Errorw("get order", "id", id, "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "get order failed"})
		return
	}
	h.writeJSON(w, http.StatusOK, d)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
