package simulate

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/asysta-erp/asysta-erp/internal/catalog"
	"github.com/asysta-erp/asysta-erp/internal/platform/httpx"
)

// Handler exposes the simulation clock endpoints.
type Handler struct {
	logger    *slog.Logger
	simulator *Simulator
	validate  *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, simulator *Simulator) *Handler {
	return &Handler{logger: logger, simulator: simulator, validate: validator.New()}
}

// MountRoutes registers simulation routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleInfo)
	r.Post("/advance", h.handleAdvance)
	r.Post("/reset", h.handleReset)
}

func (h *Handler) handleInfo(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.simulator.Info())
}

type advanceRequest struct {
	Days int `json:"days" validate:"omitempty,gte=1,lte=365"`
}

func (h *Handler) handleAdvance(w http.ResponseWriter, r *http.Request) {
	var req advanceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "days must be between 1 and 365")
		return
	}
	days := req.Days
	if days == 0 {
		days = 1
	}
	// the clock moves in one step; the daily operations then replay once per
	// skipped day, all at the new date
	h.simulator.AdvanceTime(days)
	for i := 0; i < days; i++ {
		h.simulator.RunDailyOperations()
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"advanced_days":   days,
		"simulation_date": h.simulator.Today().Format(catalog.DateLayout),
	})
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	h.simulator.Reset()
	httpx.JSON(w, http.StatusOK, h.simulator.Info())
}
