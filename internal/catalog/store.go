package catalog

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/asysta-erp/asysta-erp/internal/platform/tabular"
)

// Table file names under the data directory.
const (
	productsFile  = "products.csv"
	inventoryFile = "inventory.csv"
	suppliersFile = "suppliers.csv"
	historyFile   = "purchase_order_history.csv"
	ordersFile    = "orders.csv"
	requestsFile  = "user_requests.csv"
)

// frameworkFlag is the affirmative value of the framework-agreement column.
const frameworkFlag = "tak"

var ordersHeader = []string{
	"order_id", "user_input", "product_name", "product_id", "category",
	"quantity", "unit", "supplier_name", "price", "contract_type",
	"order_type", "timestamp", "estimated_delivery", "delivery_status",
	"delivered_quantity", "delivery_date",
}

var inventoryHeader = []string{
	"Product_ID", "Product_Name", "Stock", "Closing_Stock", "Min_stock_level", "Unit",
}

var requestsHeader = []string{
	"Request_ID", "User_Text", "Detected_Product", "Detected_Category", "Timestamp",
}

// Store loads and aggregates the reference tables and persists order and
// inventory mutations. Reference data (products, suppliers, history) is read
// once; orders are re-read from disk on every operation.
type Store struct {
	dataDir string
	docsDir string
	logger  *slog.Logger
	now     func() time.Time

	products     []Product
	inventory    []InventoryRecord
	suppliers    []string
	history      PurchaseHistory
	invReorderOK bool
}

// NewStore builds a Store rooted at dataDir. Order documents are removed
// from docsDir on order deletion.
func NewStore(dataDir, docsDir string, logger *slog.Logger) *Store {
	return &Store{dataDir: dataDir, docsDir: docsDir, logger: logger, now: time.Now}
}

// SetClock overrides the wall clock used for timestamps and defaults.
func (s *Store) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dataDir, name)
}

// Load reads all reference tables. Absent tables degrade to empty data and a
// warning; only genuine I/O failures are returned.
func (s *Store) Load() error {
	if err := s.loadProducts(); err != nil {
		return err
	}
	if err := s.loadInventory(); err != nil {
		return err
	}
	if err := s.loadSuppliers(); err != nil {
		return err
	}
	return s.loadHistory()
}

func (s *Store) loadProducts() error {
	table, err := tabular.Load(s.path(productsFile))
	if errors.Is(err, tabular.ErrAbsent) {
		s.logger.Warn("products table absent", slog.String("path", s.path(productsFile)))
		s.products = nil
		return nil
	}
	if err != nil {
		return err
	}
	products := make([]Product, 0, len(table.Rows))
	for _, row := range table.Rows {
		lead, ok := row.Int("Average_Lead_Time_Days")
		if !ok {
			lead = 7
		}
		products = append(products, Product{
			ID:           row.Get("Product_ID"),
			Name:         row.Get("Product_Name"),
			Category:     row.Get("Category"),
			Unit:         row.Get("Unit"),
			LeadTimeDays: lead,
		})
	}
	s.products = products
	s.logger.Info("loaded products", slog.Int("count", len(products)))
	return nil
}

func (s *Store) loadInventory() error {
	table, err := tabular.Load(s.path(inventoryFile))
	if errors.Is(err, tabular.ErrAbsent) {
		s.logger.Warn("inventory table absent", slog.String("path", s.path(inventoryFile)))
		s.inventory = nil
		s.invReorderOK = false
		return nil
	}
	if err != nil {
		return err
	}
	s.invReorderOK = table.HasColumn("Stock") && table.HasColumn("Min_stock_level")
	s.inventory = AggregateInventory(table.Rows)
	s.logger.Info("loaded inventory",
		slog.Int("raw_rows", len(table.Rows)),
		slog.Int("products", len(s.inventory)))
	return nil
}

func (s *Store) loadSuppliers() error {
	table, err := tabular.Load(s.path(suppliersFile))
	if errors.Is(err, tabular.ErrAbsent) {
		s.logger.Warn("suppliers table absent", slog.String("path", s.path(suppliersFile)))
		s.suppliers = nil
		return nil
	}
	if err != nil {
		return err
	}
	names := make([]string, 0, len(table.Rows))
	for _, row := range table.Rows {
		name := row.Get("Supplier")
		if name == "" {
			name = row.Get("Supplier_Name")
		}
		if name != "" {
			names = append(names, name)
		}
	}
	s.suppliers = names
	return nil
}

func (s *Store) loadHistory() error {
	table, err := tabular.Load(s.path(historyFile))
	if errors.Is(err, tabular.ErrAbsent) {
		s.logger.Warn("purchase history absent", slog.String("path", s.path(historyFile)))
		s.history = PurchaseHistory{}
		return nil
	}
	if err != nil {
		return err
	}
	history := PurchaseHistory{
		Present:            true,
		HasFrameworkColumn: table.HasColumn("Umowa_ramowa"),
	}
	for _, row := range table.Rows {
		price, perr := decimal.NewFromString(row.Get("Unit_Price"))
		if perr != nil {
			price = decimal.Zero
		}
		history.Entries = append(history.Entries, HistoryEntry{
			SupplierName: row.Get("Supplier"),
			ProductName:  row.Get("Product_Name"),
			Category1:    row.Get("Category1"),
			Category2:    row.Get("Category2"),
			UnitPrice:    price,
			Framework:    row.Get("Umowa_ramowa") == frameworkFlag,
		})
	}
	s.history = history
	s.logger.Info("loaded purchase history", slog.Int("count", len(history.Entries)))
	return nil
}

// AggregateInventory collapses raw inventory rows to one record per product.
// Quantity columns are summed; descriptive columns take the value of the
// first row encountered, so input ordering decides ties.
func AggregateInventory(rows []tabular.Row) []InventoryRecord {
	index := make(map[string]int)
	records := make([]InventoryRecord, 0)
	for _, row := range rows {
		id := row.Get("Product_ID")
		if id == "" {
			continue
		}
		stock, _ := row.Float("Stock")
		closing, _ := row.Float("Closing_Stock")
		if pos, seen := index[id]; seen {
			records[pos].Stock += stock
			records[pos].ClosingStock += closing
			continue
		}
		minLevel, _ := row.Float("Min_stock_level")
		index[id] = len(records)
		records = append(records, InventoryRecord{
			ProductID:     id,
			ProductName:   row.Get("Product_Name"),
			Unit:          row.Get("Unit"),
			Stock:         stock,
			ClosingStock:  closing,
			MinStockLevel: minLevel,
		})
	}
	return records
}

// Products returns the loaded product catalog.
func (s *Store) Products() []Product {
	return append([]Product(nil), s.products...)
}

// ProductByID looks a product up in the catalog.
func (s *Store) ProductByID(id string) (Product, bool) {
	for _, p := range s.products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

// Inventory returns the aggregated inventory records.
func (s *Store) Inventory() []InventoryRecord {
	return append([]InventoryRecord(nil), s.inventory...)
}

// ReorderInventory returns the aggregated inventory for the reorder scan.
// ok is false when the table is absent or lacks the stock/threshold columns,
// so the scan can fail closed instead of treating every row as low.
func (s *Store) ReorderInventory() ([]InventoryRecord, bool) {
	if !s.invReorderOK {
		return nil, false
	}
	return s.Inventory(), true
}

// InventoryStatus joins inventory records with catalog categories.
func (s *Store) InventoryStatus() []InventoryStatus {
	statuses := make([]InventoryStatus, 0, len(s.inventory))
	for _, rec := range s.inventory {
		status := InventoryStatus{InventoryRecord: rec}
		if product, ok := s.ProductByID(rec.ProductID); ok {
			status.Category = product.Category
		}
		statuses = append(statuses, status)
	}
	return statuses
}

// SupplierNames returns the supplier reference list.
func (s *Store) SupplierNames() []string {
	return append([]string(nil), s.suppliers...)
}

// PurchaseHistory returns the purchase history with its load state.
func (s *Store) PurchaseHistory() PurchaseHistory {
	return s.history
}

// FrameworkContracts filters history entries flagged as framework
// agreements. Empty when the flag column is absent.
func (s *Store) FrameworkContracts() []HistoryEntry {
	if !s.history.Present || !s.history.HasFrameworkColumn {
		return nil
	}
	var contracts []HistoryEntry
	for _, entry := range s.history.Entries {
		if entry.Framework {
			contracts = append(contracts, entry)
		}
	}
	return contracts
}

// SaveOrder backfills defaults and appends the order, rejecting duplicate ids.
func (s *Store) SaveOrder(order Order) error {
	if order.ID == "" {
		return errors.New("catalog: order id required")
	}
	order = s.withDefaults(order)
	err := tabular.Append(s.path(ordersFile), ordersHeader, s.orderToRow(order), "order_id")
	if errors.Is(err, tabular.ErrDuplicateKey) {
		return fmt.Errorf("%w: %s", ErrDuplicateOrder, order.ID)
	}
	if err != nil {
		return err
	}
	s.logger.Info("order saved",
		slog.String("order_id", order.ID),
		slog.String("product", order.ProductName),
		slog.Int("quantity", order.Quantity))
	return nil
}

func (s *Store) withDefaults(order Order) Order {
	now := s.now()
	if order.Category == "" {
		order.Category = "Other"
	}
	if order.ContractType == "" {
		order.ContractType = ContractOffer
	}
	if order.Type == "" {
		order.Type = OrderTypeStandard
	}
	if order.Status == "" {
		order.Status = StatusOrdered
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	if order.EstimatedDelivery.IsZero() {
		order.EstimatedDelivery = now.AddDate(0, 0, 7)
	}
	return order
}

// Orders reads the full order table. An absent table reads as empty.
func (s *Store) Orders() ([]Order, error) {
	table, err := tabular.Load(s.path(ordersFile))
	if errors.Is(err, tabular.ErrAbsent) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	orders := make([]Order, 0, len(table.Rows))
	for _, row := range table.Rows {
		orders = append(orders, s.rowToOrder(row))
	}
	return orders, nil
}

// WriteOrders replaces the order table in full. Used by the simulator's
// delivery promotion, which rewrites statuses in bulk.
func (s *Store) WriteOrders(orders []Order) error {
	table := &tabular.Table{Header: ordersHeader}
	for _, order := range orders {
		table.Rows = append(table.Rows, s.orderToRow(order))
	}
	return table.Save(s.path(ordersFile))
}

// OrdersInDelivery returns orders still underway (ordered or in transit).
func (s *Store) OrdersInDelivery() ([]Order, error) {
	return s.filterOrders(func(o Order) bool {
		return o.Status == StatusOrdered || o.Status == StatusInTransit
	})
}

// DeletableOrders returns orders still in the ordered status.
func (s *Store) DeletableOrders() ([]Order, error) {
	return s.filterOrders(func(o Order) bool {
		return o.Status == StatusOrdered
	})
}

func (s *Store) filterOrders(keep func(Order) bool) ([]Order, error) {
	orders, err := s.Orders()
	if err != nil {
		return nil, err
	}
	var out []Order
	for _, o := range orders {
		if keep(o) {
			out = append(out, o)
		}
	}
	return out, nil
}

// UpdateDeliveryStatus advances an order through the manual delivery
// workflow. Transitioning to delivered with a quantity credits the matching
// inventory record and stamps the delivery date.
func (s *Store) UpdateDeliveryStatus(orderID string, status OrderStatus, deliveredQty int) error {
	orders, err := s.Orders()
	if err != nil {
		return err
	}
	pos := -1
	for i, o := range orders {
		if o.ID == orderID {
			pos = i
			break
		}
	}
	if pos < 0 {
		return fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
	}
	if !canTransition(orders[pos].Status, status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, orders[pos].Status, status)
	}
	orders[pos].Status = status
	if status == StatusDelivered && deliveredQty > 0 {
		if err := s.CreditInventory(orders[pos].ProductID, orders[pos].ProductName, deliveredQty); err != nil {
			s.logger.Warn("inventory credit on delivery failed",
				slog.String("order_id", orderID),
				slog.Any("error", err))
		}
		orders[pos].DeliveredQuantity = deliveredQty
		orders[pos].DeliveryDate = s.now()
	}
	if err := s.WriteOrders(orders); err != nil {
		return err
	}
	s.logger.Info("delivery status updated",
		slog.String("order_id", orderID),
		slog.String("status", string(status)))
	return nil
}

// DeleteOrder removes an order that has not yet shipped, together with any
// generated order documents (best effort).
func (s *Store) DeleteOrder(orderID string) error {
	orders, err := s.Orders()
	if err != nil {
		return err
	}
	pos := -1
	for i, o := range orders {
		if o.ID == orderID {
			pos = i
			break
		}
	}
	if pos < 0 {
		return fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
	}
	if orders[pos].Status != StatusOrdered {
		return fmt.Errorf("%w: %s is %s", ErrOrderNotDeletable, orderID, orders[pos].Status)
	}
	orders = append(orders[:pos], orders[pos+1:]...)
	if err := s.WriteOrders(orders); err != nil {
		return err
	}
	s.removeOrderDocuments(orderID)
	s.logger.Info("order deleted", slog.String("order_id", orderID))
	return nil
}

// RemoveOrderDocument deletes a single generated document, best effort.
// Used to clean up after a failed order save.
func (s *Store) RemoveOrderDocument(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil {
		s.logger.Warn("failed to remove order document",
			slog.String("path", path),
			slog.Any("error", err))
	}
}

func (s *Store) removeOrderDocuments(orderID string) {
	if s.docsDir == "" {
		return
	}
	matches, err := filepath.Glob(filepath.Join(s.docsDir, "order_"+orderID+"_*"))
	if err != nil {
		return
	}
	for _, match := range matches {
		if err := os.Remove(match); err != nil {
			s.logger.Warn("failed to remove order document",
				slog.String("path", match),
				slog.Any("error", err))
		}
	}
}

// CreditInventory increases a product's stock after delivery. The lookup
// prefers product id and falls back to the historical join by name.
func (s *Store) CreditInventory(productID, productName string, qty int) error {
	pos := -1
	if productID != "" {
		for i, rec := range s.inventory {
			if rec.ProductID == productID {
				pos = i
				break
			}
		}
	}
	if pos < 0 && productName != "" {
		for i, rec := range s.inventory {
			if rec.ProductName == productName {
				pos = i
				break
			}
		}
	}
	if pos < 0 {
		return fmt.Errorf("%w: %s", ErrProductNotFound, productName)
	}
	s.inventory[pos].Stock += float64(qty)
	s.inventory[pos].ClosingStock += float64(qty)
	if err := s.saveInventory(); err != nil {
		return err
	}
	s.logger.Info("inventory credited",
		slog.String("product", s.inventory[pos].ProductName),
		slog.Int("quantity", qty))
	return nil
}

// WriteInventory replaces the aggregated inventory and persists it.
func (s *Store) WriteInventory(records []InventoryRecord) error {
	s.inventory = append([]InventoryRecord(nil), records...)
	s.invReorderOK = true
	return s.saveInventory()
}

func (s *Store) saveInventory() error {
	table := &tabular.Table{Header: inventoryHeader}
	for _, rec := range s.inventory {
		table.Rows = append(table.Rows, tabular.Row{
			"Product_ID":      rec.ProductID,
			"Product_Name":    rec.ProductName,
			"Stock":           formatFloat(rec.Stock),
			"Closing_Stock":   formatFloat(rec.ClosingStock),
			"Min_stock_level": formatFloat(rec.MinStockLevel),
			"Unit":            rec.Unit,
		})
	}
	return table.Save(s.path(inventoryFile))
}

// AppendRequest appends one entry to the user request log.
func (s *Store) AppendRequest(req RequestRecord) error {
	return tabular.Append(s.path(requestsFile), requestsHeader, tabular.Row{
		"Request_ID":        req.ID,
		"User_Text":         req.Text,
		"Detected_Product":  req.DetectedProduct,
		"Detected_Category": req.DetectedCategory,
		"Timestamp":         req.Timestamp.Format("2006-01-02 15:04"),
	}, "Request_ID")
}

func (s *Store) orderToRow(order Order) tabular.Row {
	row := tabular.Row{
		"order_id":          order.ID,
		"user_input":        order.SourceText,
		"product_name":      order.ProductName,
		"product_id":        order.ProductID,
		"category":          order.Category,
		"quantity":          strconv.Itoa(order.Quantity),
		"unit":              order.Unit,
		"supplier_name":     order.SupplierName,
		"price":             order.Price.String(),
		"contract_type":     order.ContractType,
		"order_type":        string(order.Type),
		"timestamp":         order.CreatedAt.Format(TimestampLayout),
		"estimated_delivery": order.EstimatedDelivery.Format(DateLayout),
		"delivery_status":   string(order.Status),
	}
	if order.DeliveredQuantity > 0 {
		row["delivered_quantity"] = strconv.Itoa(order.DeliveredQuantity)
	}
	if !order.DeliveryDate.IsZero() {
		row["delivery_date"] = order.DeliveryDate.Format(DateLayout)
	}
	return row
}

func (s *Store) rowToOrder(row tabular.Row) Order {
	order := Order{
		ID:           row.Get("order_id"),
		SourceText:   row.Get("user_input"),
		ProductName:  row.Get("product_name"),
		ProductID:    row.Get("product_id"),
		Category:     row.Get("category"),
		Unit:         row.Get("unit"),
		SupplierName: row.Get("supplier_name"),
		ContractType: row.Get("contract_type"),
		Type:         OrderType(row.Get("order_type")),
		Status:       OrderStatus(row.Get("delivery_status")),
	}
	order.Quantity, _ = row.Int("quantity")
	order.DeliveredQuantity, _ = row.Int("delivered_quantity")
	if price, err := decimal.NewFromString(row.Get("price")); err == nil {
		order.Price = price
	}
	if ts, err := time.Parse(TimestampLayout, row.Get("timestamp")); err == nil {
		order.CreatedAt = ts
	}
	est, err := time.Parse(DateLayout, row.Get("estimated_delivery"))
	if err != nil {
		est = s.now().AddDate(0, 0, 7)
		s.logger.Warn("unparseable estimated delivery, defaulting",
			slog.String("order_id", order.ID),
			slog.String("raw", row.Get("estimated_delivery")))
	}
	order.EstimatedDelivery = est
	if dd, err := time.Parse(DateLayout, row.Get("delivery_date")); err == nil {
		order.DeliveryDate = dd
	}
	return order
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
