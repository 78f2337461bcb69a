package reorder

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/asysta-erp/asysta-erp/internal/catalog"
	"github.com/asysta-erp/asysta-erp/internal/platform/httpx"
)

// Handler exposes the auto-reorder scan and order creation endpoints.
type Handler struct {
	logger   *slog.Logger
	engine   *Engine
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, engine *Engine) *Handler {
	return &Handler{logger: logger, engine: engine, validate: validator.New()}
}

// MountRoutes registers reorder routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/candidates", h.handleCandidates)
	r.Post("/orders", h.handleCreateOrder)
}

func (h *Handler) handleCandidates(w http.ResponseWriter, r *http.Request) {
	candidates := h.engine.CheckProductionNeeds()
	httpx.JSON(w, http.StatusOK, map[string]any{
		"count":      len(candidates),
		"candidates": candidates,
	})
}

type createOrderRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"omitempty,gt=0"`
}

func (h *Handler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "product_id is required")
		return
	}

	var candidate *Candidate
	for _, c := range h.engine.CheckProductionNeeds() {
		if c.ProductID == req.ProductID {
			copied := c
			candidate = &copied
			break
		}
	}
	if candidate == nil {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "product is not a reorder candidate")
		return
	}

	order, docPath, err := h.engine.CreateOrder(r.Context(), *candidate, req.Quantity)
	if err != nil {
		if errors.Is(err, catalog.ErrDuplicateOrder) {
			httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
			return
		}
		h.logger.Error("create production order failed",
			slog.String("product_id", req.ProductID),
			slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"order":    order,
		"document": docPath,
	})
}
