package simulate

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/asysta-erp/asysta-erp/internal/catalog"
)

func newTestRouter(t *testing.T, store *stubStore) (*chi.Mux, *Simulator) {
	t.Helper()
	sim := newTestSimulator(t, store, 1)
	h := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), sim)
	r := chi.NewRouter()
	r.Route("/simulation", h.MountRoutes)
	return r, sim
}

func TestHandleAdvanceRunsDailyOperationsAtTheNewDate(t *testing.T) {
	store := &stubStore{
		inventory: []catalog.InventoryRecord{
			{ProductID: "P-001", ProductName: "Stal nierdzewna", Stock: 100, ClosingStock: 100},
		},
		orders: []catalog.Order{
			{
				ID:                "ORD-AAAA1111",
				ProductID:         "P-001",
				ProductName:       "Stal nierdzewna",
				Quantity:          40,
				Status:            catalog.StatusOrdered,
				EstimatedDelivery: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
			},
		},
	}
	router, sim := newTestRouter(t, store)

	req := httptest.NewRequest(http.MethodPost, "/simulation/advance", strings.NewReader(`{"days":9}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		AdvancedDays   int    `json:"advanced_days"`
		SimulationDate string `json:"simulation_date"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, 9, body.AdvancedDays)
	require.Equal(t, "2024-01-12", body.SimulationDate)
	require.Equal(t, time.Date(2024, 1, 12, 0, 0, 0, 0, time.UTC), sim.Today())

	// the clock jumps first, so the order due on the 10th is received at the
	// date the simulation landed on, not at its estimated delivery date
	require.Equal(t, catalog.StatusDelivered, store.orders[0].Status)
	require.Equal(t, time.Date(2024, 1, 12, 0, 0, 0, 0, time.UTC), store.orders[0].DeliveryDate)
	require.Equal(t, 40, store.orders[0].DeliveredQuantity)
}

func TestHandleAdvanceDefaultsToOneDay(t *testing.T) {
	router, sim := newTestRouter(t, &stubStore{})

	req := httptest.NewRequest(http.MethodPost, "/simulation/advance", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC), sim.Today())
}

func TestHandleAdvanceRejectsOutOfRangeDays(t *testing.T) {
	router, sim := newTestRouter(t, &stubStore{})

	req := httptest.NewRequest(http.MethodPost, "/simulation/advance", strings.NewReader(`{"days":400}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), sim.Today())
}
