// Package reorder scans inventory for under-stocked products and proposes
// production replenishment orders.
package reorder

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/asysta-erp/asysta-erp/internal/catalog"
	"github.com/asysta-erp/asysta-erp/internal/supplier"
)

// defaultLeadTimeDays applies when the catalog has no usable lead time.
const defaultLeadTimeDays = 7

// safetyFloor is the minimum safety buffer added on top of the restock target.
const safetyFloor = 10

// StorePort describes catalog store operations used by the engine.
type StorePort interface {
	ReorderInventory() ([]catalog.InventoryRecord, bool)
	ProductByID(id string) (catalog.Product, bool)
	Orders() ([]catalog.Order, error)
	SaveOrder(order catalog.Order) error
}

// SupplierPort resolves a product to a contracted supplier.
type SupplierPort interface {
	FindSupplier(productName, category string) supplier.MatchResult
}

// ClockPort supplies the (possibly simulated) current date.
type ClockPort interface {
	Today() time.Time
}

// RendererPort produces the printable order document.
type RendererPort interface {
	Render(ctx context.Context, order catalog.Order) (string, error)
}

// Candidate is one proposed replenishment, resolvable or not.
type Candidate struct {
	ProductID         string          `json:"product_id"`
	ProductName       string          `json:"product_name"`
	Category          string          `json:"category,omitempty"`
	Unit              string          `json:"unit"`
	CurrentStock      float64         `json:"current_stock"`
	MinStock          float64         `json:"min_stock"`
	SuggestedQuantity int             `json:"suggested_quantity"`
	LeadTimeDays      int             `json:"lead_time_days"`
	EstimatedDelivery time.Time       `json:"estimated_delivery"`
	SupplierFound     bool            `json:"supplier_found"`
	SupplierName      string          `json:"supplier_name,omitempty"`
	Price             decimal.Decimal `json:"price"`
	DeliveryTime      string          `json:"delivery_time,omitempty"`
	ContractType      string          `json:"contract_type,omitempty"`
	Reason            string          `json:"reason,omitempty"`
}

// Engine runs the low-stock scan and converts candidates into orders.
type Engine struct {
	store    StorePort
	resolver SupplierPort
	clock    ClockPort
	renderer RendererPort
	logger   *slog.Logger
}

// NewEngine builds an Engine.
func NewEngine(store StorePort, resolver SupplierPort, clock ClockPort, renderer RendererPort, logger *slog.Logger) *Engine {
	return &Engine{store: store, resolver: resolver, clock: clock, renderer: renderer, logger: logger}
}

// CheckProductionNeeds returns a candidate for every product at or below its
// minimum stock level that has no open production order. The open-order set
// is read once at the start of the scan.
func (e *Engine) CheckProductionNeeds() []Candidate {
	records, ok := e.store.ReorderInventory()
	if !ok {
		e.logger.Warn("inventory unavailable for reorder scan")
		return []Candidate{}
	}

	active := e.activeProductionOrders()
	today := e.clock.Today()

	candidates := []Candidate{}
	for _, rec := range records {
		if rec.Stock > rec.MinStockLevel {
			continue
		}
		if rec.ProductName == "" {
			e.logger.Warn("skipping low-stock row without product name",
				slog.String("product_id", rec.ProductID))
			continue
		}
		if active[rec.ProductID] {
			e.logger.Info("skipping product with open production order",
				slog.String("product", rec.ProductName))
			continue
		}

		category := ""
		unit := rec.Unit
		leadTime := defaultLeadTimeDays
		if product, found := e.store.ProductByID(rec.ProductID); found {
			category = product.Category
			if product.Unit != "" {
				unit = product.Unit
			}
			if product.LeadTimeDays > 0 {
				leadTime = product.LeadTimeDays
			}
		}

		candidate := Candidate{
			ProductID:         rec.ProductID,
			ProductName:       rec.ProductName,
			Category:          category,
			Unit:              unit,
			CurrentStock:      rec.Stock,
			MinStock:          rec.MinStockLevel,
			SuggestedQuantity: SuggestQuantity(rec.Stock, rec.MinStockLevel),
			LeadTimeDays:      leadTime,
			EstimatedDelivery: today.AddDate(0, 0, leadTime),
		}

		match := e.resolver.FindSupplier(rec.ProductName, category)
		if match.Found {
			candidate.SupplierFound = true
			candidate.SupplierName = match.SupplierName
			candidate.Price = match.Price
			candidate.DeliveryTime = match.DeliveryTime
			candidate.ContractType = match.ContractType
		} else {
			candidate.Reason = match.Reason
			if candidate.Reason == "" {
				candidate.Reason = "supplier not found"
			}
		}
		candidates = append(candidates, candidate)
	}

	e.logger.Info("reorder scan finished", slog.Int("candidates", len(candidates)))
	return candidates
}

func (e *Engine) activeProductionOrders() map[string]bool {
	orders, err := e.store.Orders()
	if err != nil {
		e.logger.Warn("could not read orders for duplicate suppression", slog.Any("error", err))
		return map[string]bool{}
	}
	active := make(map[string]bool)
	for _, order := range orders {
		if order.Type != catalog.OrderTypeProduction {
			continue
		}
		if order.Status == catalog.StatusOrdered || order.Status == catalog.StatusInTransit {
			active[order.ProductID] = true
		}
	}
	return active
}

// CreateOrder turns a candidate into a persisted production order with its
// document. Quantity zero means "use the suggestion". The document is
// rendered before the order is appended, so a renderer failure leaves the
// order table untouched.
func (e *Engine) CreateOrder(ctx context.Context, candidate Candidate, quantity int) (catalog.Order, string, error) {
	if quantity <= 0 {
		quantity = candidate.SuggestedQuantity
	}
	order := catalog.Order{
		ID:                catalog.NewOrderID(catalog.ProductionOrderPrefix),
		SourceText:        fmt.Sprintf("Automatyczne zamowienie produkcyjne - %s", candidate.ProductName),
		ProductID:         candidate.ProductID,
		ProductName:       candidate.ProductName,
		Category:          candidate.Category,
		Quantity:          quantity,
		Unit:              candidate.Unit,
		SupplierName:      candidate.SupplierName,
		Price:             candidate.Price,
		ContractType:      candidate.ContractType,
		Type:              catalog.OrderTypeProduction,
		CreatedAt:         e.clock.Today(),
		EstimatedDelivery: candidate.EstimatedDelivery,
		Status:            catalog.StatusOrdered,
	}

	docPath, err := e.renderer.Render(ctx, order)
	if err != nil {
		return catalog.Order{}, "", fmt.Errorf("reorder: render order document: %w", err)
	}
	if err := e.store.SaveOrder(order); err != nil {
		return catalog.Order{}, "", err
	}
	return order, docPath, nil
}

// SuggestQuantity restocks to double the minimum level net of current stock,
// plus a safety buffer of at least safetyFloor units, never suggesting less
// than the minimum level itself.
func SuggestQuantity(currentStock, minStock float64) int {
	safety := math.Max(0.5*minStock, safetyFloor)
	suggested := math.Round(2*minStock - currentStock + safety)
	if suggested < minStock {
		suggested = minStock
	}
	return int(suggested)
}
