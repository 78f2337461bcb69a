package requests

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/asysta-erp/asysta-erp/internal/catalog"
	"github.com/asysta-erp/asysta-erp/internal/platform/httpx"
)

// Handler exposes the manual request flow.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers request-flow routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/classify", h.handleClassify)
	r.Post("/orders", h.handleCreateOrder)
}

type classifyRequest struct {
	Text string `json:"text" validate:"required"`
}

func (h *Handler) handleClassify(w http.ResponseWriter, r *http.Request) {
	var req classifyRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "text is required")
		return
	}
	httpx.JSON(w, http.StatusOK, h.service.Analyze(req.Text))
}

type createOrderRequest struct {
	Text      string `json:"text" validate:"required"`
	OrderType string `json:"order_type" validate:"omitempty,oneof=Standard Production"`
}

func (h *Handler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "text is required and order_type must be Standard or Production")
		return
	}

	outcome, err := h.service.CreateOrder(r.Context(), req.Text, catalog.OrderType(req.OrderType))
	switch {
	case errors.Is(err, ErrNoProductName):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Unprocessable", err.Error())
		return
	case errors.Is(err, catalog.ErrDuplicateOrder):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
		return
	case err != nil:
		h.logger.Error("manual order creation failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusCreated, outcome)
}
