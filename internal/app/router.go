package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/asysta-erp/asysta-erp/internal/catalog"
	"github.com/asysta-erp/asysta-erp/internal/reorder"
	"github.com/asysta-erp/asysta-erp/internal/requests"
	"github.com/asysta-erp/asysta-erp/internal/simulate"
	"github.com/asysta-erp/asysta-erp/internal/supplier"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger *slog.Logger
	Config *Config

	CatalogHandler  *catalog.Handler
	RequestsHandler *requests.Handler
	SupplierHandler *supplier.Handler
	ReorderHandler  *reorder.Handler
	SimulateHandler *simulate.Handler
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	params.CatalogHandler.MountRoutes(r)
	r.Route("/requests", params.RequestsHandler.MountRoutes)
	r.Route("/supplier", params.SupplierHandler.MountRoutes)
	r.Route("/reorder", params.ReorderHandler.MountRoutes)
	r.Route("/simulation", params.SimulateHandler.MountRoutes)

	return r
}
