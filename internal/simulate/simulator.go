// Package simulate advances a persisted simulation clock and replays the
// daily business operations: stock consumption, overdue delivery promotion
// and synthetic user demand.
package simulate

import (
	"errors"
	"log/slog"
	"math/rand"
	"path/filepath"
	"time"

	"github.com/asysta-erp/asysta-erp/internal/catalog"
	"github.com/asysta-erp/asysta-erp/internal/platform/tabular"
)

const stateFile = "simulation_state.csv"

// demandChance is the per-day probability of an injected user request.
const demandChance = 0.3

var stateHeader = []string{"current_date", "last_updated"}

// sampleRequests feed the synthetic demand generator.
var sampleRequests = []string{
	"Potrzebuję 5 laptopów Dell dla nowych pracowników",
	"Zamów 20 opakowań papieru A4 do drukarki",
	"Potrzebujemy 3 nowych monitorów 24 cali",
	"Zamów materiały biurowe: długopisy, notesy, spinacze",
	"Potrzebuję 2 sztuki Siemens Sensors dla produkcji",
	"Zamów części zamienne do maszyn produkcyjnych",
}

// StorePort describes the catalog store operations the simulator mutates.
type StorePort interface {
	Inventory() []catalog.InventoryRecord
	WriteInventory(records []catalog.InventoryRecord) error
	Orders() ([]catalog.Order, error)
	WriteOrders(orders []catalog.Order) error
	CreditInventory(productID, productName string, qty int) error
	AppendRequest(req catalog.RequestRecord) error
}

// Info describes the simulation clock relative to the real calendar.
type Info struct {
	CurrentSimulationDate string `json:"current_simulation_date"`
	RealWorldDate         string `json:"real_world_date"`
	DaysAhead             int    `json:"days_ahead"`
	IsFuture              bool   `json:"is_future"`
}

// Simulator owns the simulation date and runs daily operations against the
// store. The rand source is injectable for reproducible runs.
type Simulator struct {
	dataDir   string
	store     StorePort
	logger    *slog.Logger
	rng       *rand.Rand
	wallClock func() time.Time
	current   time.Time
}

// NewSimulator builds a Simulator and restores the persisted clock; an
// absent or unreadable state file starts the simulation at today's date.
func NewSimulator(dataDir string, store StorePort, rng *rand.Rand, logger *slog.Logger) *Simulator {
	s := &Simulator{
		dataDir:   dataDir,
		store:     store,
		logger:    logger,
		rng:       rng,
		wallClock: time.Now,
	}
	s.loadState()
	return s
}

// SetWallClock overrides the real-world clock.
func (s *Simulator) SetWallClock(now func() time.Time) {
	if now != nil {
		s.wallClock = now
	}
}

func (s *Simulator) statePath() string {
	return filepath.Join(s.dataDir, stateFile)
}

func (s *Simulator) realToday() time.Time {
	return truncateToDay(s.wallClock())
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *Simulator) loadState() {
	table, err := tabular.Load(s.statePath())
	if errors.Is(err, tabular.ErrAbsent) {
		s.current = s.realToday()
		s.saveState()
		s.logger.Info("started new simulation",
			slog.String("date", s.current.Format(catalog.DateLayout)))
		return
	}
	if err != nil {
		s.logger.Warn("could not restore simulation state", slog.Any("error", err))
		s.current = s.realToday()
		return
	}
	if len(table.Rows) == 0 {
		s.logger.Warn("empty simulation state file, starting fresh")
		s.current = s.realToday()
		return
	}
	parsed, perr := time.Parse(catalog.DateLayout, table.Rows[0].Get("current_date"))
	if perr != nil {
		s.logger.Warn("unparseable simulation date, starting fresh",
			slog.String("raw", table.Rows[0].Get("current_date")))
		s.current = s.realToday()
		return
	}
	s.current = parsed
	s.logger.Info("restored simulation state",
		slog.String("date", s.current.Format(catalog.DateLayout)))
}

func (s *Simulator) saveState() {
	table := &tabular.Table{
		Header: stateHeader,
		Rows: []tabular.Row{{
			"current_date": s.current.Format(catalog.DateLayout),
			"last_updated": s.wallClock().Format(catalog.TimestampLayout),
		}},
	}
	if err := table.Save(s.statePath()); err != nil {
		s.logger.Error("failed to persist simulation state", slog.Any("error", err))
	}
}

// Today returns the current simulation date. It doubles as the store clock
// so order timestamps follow the simulated calendar.
func (s *Simulator) Today() time.Time {
	return s.current
}

// AdvanceTime moves the simulation clock forward and persists it.
func (s *Simulator) AdvanceTime(days int) time.Time {
	old := s.current
	s.current = s.current.AddDate(0, 0, days)
	s.saveState()
	s.logger.Info("simulation time advanced",
		slog.String("from", old.Format(catalog.DateLayout)),
		slog.String("to", s.current.Format(catalog.DateLayout)),
		slog.Int("days", days))
	return s.current
}

// Reset snaps the simulation clock back to the real current date.
func (s *Simulator) Reset() {
	s.current = s.realToday()
	s.saveState()
	s.logger.Info("simulation reset",
		slog.String("date", s.current.Format(catalog.DateLayout)))
}

// Info reports the simulation clock against the real calendar.
func (s *Simulator) Info() Info {
	real := s.realToday()
	days := int(s.current.Sub(real).Hours() / 24)
	info := Info{
		CurrentSimulationDate: s.current.Format(catalog.DateLayout),
		RealWorldDate:         real.Format(catalog.DateLayout),
		IsFuture:              days > 0,
	}
	if days > 0 {
		info.DaysAhead = days
	}
	return info
}

// RunDailyOperations replays one simulated day: random stock consumption,
// promotion of overdue orders to delivered, and occasional injected demand.
func (s *Simulator) RunDailyOperations() {
	s.logger.Info("simulating daily operations",
		slog.String("date", s.current.Format(catalog.DateLayout)))
	s.consumeStock()
	s.promoteOverdueOrders()
	s.injectDemand()
}

// consumeStock removes a random one to ten percent of each product's stock.
// The day's base rate is drawn once, each row gets its own jitter.
func (s *Simulator) consumeStock() {
	records := s.store.Inventory()
	if len(records) == 0 {
		return
	}
	factor := 0.01 + s.rng.Float64()*0.09
	for i := range records {
		if records[i].Stock <= 0 {
			continue
		}
		jitter := 0.5 + s.rng.Float64()
		consumed := int(records[i].Stock * factor * jitter)
		if consumed < 1 {
			consumed = 1
		}
		newStock := records[i].Stock - float64(consumed)
		if newStock < 0 {
			newStock = 0
		}
		records[i].Stock = newStock
		records[i].ClosingStock = newStock
	}
	if err := s.store.WriteInventory(records); err != nil {
		s.logger.Error("failed to persist consumed inventory", slog.Any("error", err))
		return
	}
	s.logger.Info("simulated stock consumption", slog.Float64("factor", factor))
}

// promoteOverdueOrders marks every open order whose estimated delivery date
// has passed as delivered, crediting its quantity back to inventory. This
// bypasses the manual ship step on purpose: the simulated warehouse receives
// whatever is due.
func (s *Simulator) promoteOverdueOrders() {
	orders, err := s.store.Orders()
	if err != nil {
		s.logger.Error("failed to read orders for delivery promotion", slog.Any("error", err))
		return
	}
	updated := 0
	for i := range orders {
		if orders[i].Status != catalog.StatusOrdered && orders[i].Status != catalog.StatusInTransit {
			continue
		}
		if orders[i].EstimatedDelivery.After(s.current) {
			continue
		}
		orders[i].Status = catalog.StatusDelivered
		orders[i].DeliveryDate = s.current
		orders[i].DeliveredQuantity = orders[i].Quantity
		if err := s.store.CreditInventory(orders[i].ProductID, orders[i].ProductName, orders[i].Quantity); err != nil {
			s.logger.Warn("delivery credit failed",
				slog.String("order_id", orders[i].ID),
				slog.Any("error", err))
		}
		updated++
	}
	if updated == 0 {
		return
	}
	if err := s.store.WriteOrders(orders); err != nil {
		s.logger.Error("failed to persist promoted orders", slog.Any("error", err))
		return
	}
	s.logger.Info("orders promoted to delivered", slog.Int("count", updated))
}

// injectDemand sometimes appends a synthetic user request to the request log.
func (s *Simulator) injectDemand() {
	if s.rng.Float64() > demandChance {
		return
	}
	text := sampleRequests[s.rng.Intn(len(sampleRequests))]
	req := catalog.RequestRecord{
		ID:        catalog.NewRequestID(s.wallClock()),
		Text:      text,
		Timestamp: s.current,
	}
	if err := s.store.AppendRequest(req); err != nil {
		s.logger.Warn("failed to append synthetic request", slog.Any("error", err))
		return
	}
	s.logger.Info("injected synthetic demand", slog.String("text", text))
}
