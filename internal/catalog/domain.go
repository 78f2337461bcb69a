package catalog

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Delivery lifecycle statuses.
type OrderStatus string

const (
	StatusOrdered   OrderStatus = "ordered"
	StatusInTransit OrderStatus = "in_transit"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

// Order origin.
type OrderType string

const (
	OrderTypeStandard   OrderType = "Standard"
	OrderTypeProduction OrderType = "Production"
)

// Contract types attached to orders.
const (
	ContractFramework = "framework"
	ContractOffer     = "offer"
)

// Date layouts used across the flat tables.
const (
	DateLayout      = "2006-01-02"
	TimestampLayout = "2006-01-02 15:04:05"
)

// Product is immutable reference data loaded once from the catalog table.
type Product struct {
	ID           string
	Name         string
	Category     string
	Unit         string
	LeadTimeDays int
}

// InventoryRecord is one post-aggregation stock row per product.
type InventoryRecord struct {
	ProductID     string
	ProductName   string
	Unit          string
	Stock         float64
	ClosingStock  float64
	MinStockLevel float64
}

// InventoryStatus joins an inventory record with its catalog category.
type InventoryStatus struct {
	InventoryRecord
	Category string
}

// HistoryEntry is one purchase-history line, optionally flagged as a
// framework agreement.
type HistoryEntry struct {
	SupplierName string
	ProductName  string
	Category1    string
	Category2    string
	UnitPrice    decimal.Decimal
	Framework    bool
}

// PurchaseHistory carries the history table together with its load state,
// so the resolver can distinguish "no data" from "no framework column".
type PurchaseHistory struct {
	Present            bool
	HasFrameworkColumn bool
	Entries            []HistoryEntry
}

// Order is a persisted purchase order created by the manual request flow
// or the auto-reorder engine.
type Order struct {
	ID                string
	SourceText        string
	ProductID         string
	ProductName       string
	Category          string
	Quantity          int
	Unit              string
	SupplierName      string
	Price             decimal.Decimal
	ContractType      string
	Type              OrderType
	CreatedAt         time.Time
	EstimatedDelivery time.Time
	Status            OrderStatus
	DeliveredQuantity int
	DeliveryDate      time.Time
}

// RequestRecord is one entry of the user request log.
type RequestRecord struct {
	ID               string
	Text             string
	DetectedProduct  string
	DetectedCategory string
	Timestamp        time.Time
}

var (
	// ErrOrderNotFound indicates the order id is not in the order table.
	ErrOrderNotFound = errors.New("catalog: order not found")
	// ErrDuplicateOrder occurs when an insert collides on order id.
	ErrDuplicateOrder = errors.New("catalog: order id already exists")
	// ErrOrderNotDeletable occurs when deleting an order past the ordered status.
	ErrOrderNotDeletable = errors.New("catalog: only ordered orders can be deleted")
	// ErrInvalidTransition occurs when a status update skips the workflow.
	ErrInvalidTransition = errors.New("catalog: invalid delivery status transition")
	// ErrProductNotFound indicates the inventory join found no row.
	ErrProductNotFound = errors.New("catalog: product not found in inventory")
)

// canTransition encodes the manual delivery workflow. The simulator's
// overdue promotion writes statuses directly and does not pass through here.
func canTransition(from, to OrderStatus) bool {
	switch from {
	case StatusOrdered:
		return to == StatusInTransit
	case StatusInTransit:
		return to == StatusDelivered
	default:
		return false
	}
}
