package catalog

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/asysta-erp/asysta-erp/internal/platform/httpx"
)

// Handler exposes inventory and order lifecycle endpoints.
type Handler struct {
	logger   *slog.Logger
	store    *Store
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, store *Store) *Handler {
	return &Handler{logger: logger, store: store, validate: validator.New()}
}

// MountRoutes registers catalog routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/inventory", h.handleInventory)
	r.Get("/orders/in-delivery", h.handleOrdersInDelivery)
	r.Get("/orders/deletable", h.handleDeletableOrders)
	r.Post("/orders/{id}/ship", h.handleShip)
	r.Post("/orders/{id}/deliver", h.handleDeliver)
	r.Delete("/orders/{id}", h.handleDelete)
}

func (h *Handler) handleInventory(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]any{"inventory": h.store.InventoryStatus()})
}

func (h *Handler) handleOrdersInDelivery(w http.ResponseWriter, r *http.Request) {
	orders, err := h.store.OrdersInDelivery()
	if err != nil {
		h.logger.Error("list orders in delivery", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"orders": orders})
}

func (h *Handler) handleDeletableOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.store.DeletableOrders()
	if err != nil {
		h.logger.Error("list deletable orders", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"orders": orders})
}

func (h *Handler) handleShip(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.store.UpdateDeliveryStatus(id, StatusInTransit, 0); err != nil {
		h.respondOrderError(w, err, id)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"order_id": id, "status": StatusInTransit})
}

type deliverRequest struct {
	Quantity int `json:"quantity" validate:"required,gt=0"`
}

func (h *Handler) handleDeliver(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req deliverRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "quantity must be a positive integer")
		return
	}
	if err := h.store.UpdateDeliveryStatus(id, StatusDelivered, req.Quantity); err != nil {
		h.respondOrderError(w, err, id)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"order_id": id, "status": StatusDelivered})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.store.DeleteOrder(id); err != nil {
		h.respondOrderError(w, err, id)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"order_id": id, "deleted": true})
}

func (h *Handler) respondOrderError(w http.ResponseWriter, err error, id string) {
	switch {
	case errors.Is(err, ErrOrderNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrOrderNotDeletable), errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrDuplicateOrder):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	default:
		h.logger.Error("order operation failed", slog.String("order_id", id), slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
