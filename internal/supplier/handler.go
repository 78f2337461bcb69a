package supplier

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/asysta-erp/asysta-erp/internal/platform/httpx"
)

// Handler exposes supplier resolution endpoints.
type Handler struct {
	logger   *slog.Logger
	resolver *Resolver
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, resolver *Resolver) *Handler {
	return &Handler{logger: logger, resolver: resolver, validate: validator.New()}
}

// MountRoutes registers supplier routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/resolve", h.handleResolve)
}

type resolveRequest struct {
	ProductName string `json:"product_name" validate:"required_without=Category"`
	Category    string `json:"category"`
}

func (h *Handler) handleResolve(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "product_name or category is required")
		return
	}
	match := h.resolver.FindSupplier(req.ProductName, req.Category)
	response := map[string]any{"match": match}
	if !match.Found {
		response["similar_products"] = h.resolver.FindSimilarProducts(req.ProductName, DefaultTopN)
	}
	httpx.JSON(w, http.StatusOK, response)
}
