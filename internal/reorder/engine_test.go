package reorder

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/asysta-erp/asysta-erp/internal/catalog"
	"github.com/asysta-erp/asysta-erp/internal/supplier"
)

type stubStore struct {
	records   []catalog.InventoryRecord
	recordsOK bool
	products  map[string]catalog.Product
	orders    []catalog.Order
	ordersErr error
	saved     []catalog.Order
	saveErr   error
}

func (s *stubStore) ReorderInventory() ([]catalog.InventoryRecord, bool) {
	return s.records, s.recordsOK
}

func (s *stubStore) ProductByID(id string) (catalog.Product, bool) {
	p, ok := s.products[id]
	return p, ok
}

func (s *stubStore) Orders() ([]catalog.Order, error) {
	return s.orders, s.ordersErr
}

func (s *stubStore) SaveOrder(order catalog.Order) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = append(s.saved, order)
	s.orders = append(s.orders, order)
	return nil
}

type stubResolver struct {
	result supplier.MatchResult
}

func (s stubResolver) FindSupplier(productName, category string) supplier.MatchResult {
	return s.result
}

type fixedClock struct {
	day time.Time
}

func (c fixedClock) Today() time.Time {
	return c.day
}

type stubRenderer struct {
	path string
	err  error
}

func (s stubRenderer) Render(ctx context.Context, order catalog.Order) (string, error) {
	return s.path, s.err
}

func testEngine(store *stubStore, resolver SupplierPort, renderer RendererPort) *Engine {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	clock := fixedClock{day: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)}
	return NewEngine(store, resolver, clock, renderer, logger)
}

func TestSuggestQuantity(t *testing.T) {
	// stock 5, minimum 20: restock to 40, minus 5 on hand, plus max(10, 10).
	require.Equal(t, 45, SuggestQuantity(5, 20))
	// small minimum levels fall back to the flat safety buffer of 10.
	require.Equal(t, 17, SuggestQuantity(1, 4))
	// the suggestion never drops below the minimum level.
	require.GreaterOrEqual(t, SuggestQuantity(100, 10), 10)
}

func TestCheckProductionNeedsFailsClosedWithoutInventory(t *testing.T) {
	store := &stubStore{recordsOK: false}
	engine := testEngine(store, stubResolver{}, stubRenderer{})

	require.Empty(t, engine.CheckProductionNeeds())
}

func TestCheckProductionNeedsFlagsLowStock(t *testing.T) {
	store := &stubStore{
		recordsOK: true,
		records: []catalog.InventoryRecord{
			{ProductID: "P-001", ProductName: "Stal nierdzewna", Unit: "kg", Stock: 5, MinStockLevel: 20},
			{ProductID: "P-002", ProductName: "Smar przemyslowy", Unit: "l", Stock: 80, MinStockLevel: 20},
		},
		products: map[string]catalog.Product{
			"P-001": {ID: "P-001", Name: "Stal nierdzewna", Category: "Production", Unit: "kg", LeadTimeDays: 4},
		},
	}
	resolver := stubResolver{result: supplier.MatchResult{
		Found:        true,
		SupplierName: "Huta Centrum",
		Price:        decimal.RequireFromString("12.40"),
		DeliveryTime: "2-3 days",
		ContractType: catalog.ContractFramework,
	}}
	engine := testEngine(store, resolver, stubRenderer{})

	candidates := engine.CheckProductionNeeds()
	require.Len(t, candidates, 1)

	c := candidates[0]
	require.Equal(t, "P-001", c.ProductID)
	require.Equal(t, "Production", c.Category)
	require.Equal(t, 45, c.SuggestedQuantity)
	require.Equal(t, 4, c.LeadTimeDays)
	require.Equal(t, time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC), c.EstimatedDelivery)
	require.True(t, c.SupplierFound)
	require.Equal(t, "Huta Centrum", c.SupplierName)
}

func TestCheckProductionNeedsDefaultLeadTime(t *testing.T) {
	store := &stubStore{
		recordsOK: true,
		records: []catalog.InventoryRecord{
			{ProductID: "P-009", ProductName: "Tasma pakowa", Unit: "szt", Stock: 0, MinStockLevel: 10},
		},
	}
	engine := testEngine(store, stubResolver{result: supplier.MatchResult{Reason: "no purchase history data"}}, stubRenderer{})

	candidates := engine.CheckProductionNeeds()
	require.Len(t, candidates, 1)
	require.Equal(t, defaultLeadTimeDays, candidates[0].LeadTimeDays)
	require.False(t, candidates[0].SupplierFound)
	require.Equal(t, "no purchase history data", candidates[0].Reason)
}

func TestCheckProductionNeedsSkipsOpenProductionOrders(t *testing.T) {
	store := &stubStore{
		recordsOK: true,
		records: []catalog.InventoryRecord{
			{ProductID: "P-001", ProductName: "Stal nierdzewna", Stock: 5, MinStockLevel: 20},
		},
		orders: []catalog.Order{
			{ID: "PROD-AAAA1111", ProductID: "P-001", Type: catalog.OrderTypeProduction, Status: catalog.StatusInTransit},
		},
	}
	engine := testEngine(store, stubResolver{}, stubRenderer{})

	require.Empty(t, engine.CheckProductionNeeds())

	// a delivered production order no longer suppresses the candidate
	store.orders[0].Status = catalog.StatusDelivered
	require.Len(t, engine.CheckProductionNeeds(), 1)

	// standard orders for the same product do not suppress either
	store.orders[0].Status = catalog.StatusOrdered
	store.orders[0].Type = catalog.OrderTypeStandard
	require.Len(t, engine.CheckProductionNeeds(), 1)
}

func TestCheckProductionNeedsSkipsNamelessRows(t *testing.T) {
	store := &stubStore{
		recordsOK: true,
		records: []catalog.InventoryRecord{
			{ProductID: "P-404", ProductName: "", Stock: 0, MinStockLevel: 5},
		},
	}
	engine := testEngine(store, stubResolver{}, stubRenderer{})

	require.Empty(t, engine.CheckProductionNeeds())
}

func TestCreateOrderPersistsProductionOrder(t *testing.T) {
	store := &stubStore{recordsOK: true}
	engine := testEngine(store, stubResolver{}, stubRenderer{path: "orders/order_PROD-X_20240103.pdf"})

	candidate := Candidate{
		ProductID:         "P-001",
		ProductName:       "Stal nierdzewna",
		Category:          "Production",
		Unit:              "kg",
		SuggestedQuantity: 45,
		EstimatedDelivery: time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC),
		SupplierName:      "Huta Centrum",
		Price:             decimal.RequireFromString("12.40"),
		ContractType:      catalog.ContractFramework,
	}

	order, docPath, err := engine.CreateOrder(context.Background(), candidate, 0)
	require.NoError(t, err)
	require.Equal(t, "orders/order_PROD-X_20240103.pdf", docPath)
	require.Len(t, store.saved, 1)

	require.Regexp(t, `^PROD-[0-9A-F]{8}$`, order.ID)
	require.Equal(t, "Automatyczne zamowienie produkcyjne - Stal nierdzewna", order.SourceText)
	require.Equal(t, 45, order.Quantity)
	require.Equal(t, catalog.OrderTypeProduction, order.Type)
	require.Equal(t, catalog.StatusOrdered, order.Status)
	require.Equal(t, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), order.CreatedAt)
	require.Equal(t, candidate.EstimatedDelivery, order.EstimatedDelivery)
}

func TestCreateOrderQuantityOverride(t *testing.T) {
	store := &stubStore{recordsOK: true}
	engine := testEngine(store, stubResolver{}, stubRenderer{path: "doc.html"})

	order, _, err := engine.CreateOrder(context.Background(), Candidate{ProductName: "Stal", SuggestedQuantity: 45}, 60)
	require.NoError(t, err)
	require.Equal(t, 60, order.Quantity)
}

func TestCreateOrderRenderFailureLeavesStoreUntouched(t *testing.T) {
	store := &stubStore{recordsOK: true}
	engine := testEngine(store, stubResolver{}, stubRenderer{err: errors.New("gotenberg unreachable")})

	_, _, err := engine.CreateOrder(context.Background(), Candidate{ProductName: "Stal", SuggestedQuantity: 45}, 0)
	require.Error(t, err)
	require.Empty(t, store.saved)
}

func TestCreatedOrderSuppressesFurtherCandidates(t *testing.T) {
	store := &stubStore{
		recordsOK: true,
		records: []catalog.InventoryRecord{
			{ProductID: "P-001", ProductName: "Stal nierdzewna", Stock: 5, MinStockLevel: 20},
		},
	}
	engine := testEngine(store, stubResolver{}, stubRenderer{path: "doc.html"})

	candidates := engine.CheckProductionNeeds()
	require.Len(t, candidates, 1)

	_, _, err := engine.CreateOrder(context.Background(), candidates[0], 0)
	require.NoError(t, err)

	require.Empty(t, engine.CheckProductionNeeds())
}
