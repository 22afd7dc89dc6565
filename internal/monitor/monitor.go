// Package monitor periodically recomputes low-stock alerts for every
// organization.
package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/erazemk/foodbank/internal/events"
	"github.com/erazemk/foodbank/internal/metrics"
	"github.com/erazemk/foodbank/internal/store"
)

// Monitor runs the low-stock sweep on a cron schedule.
type Monitor struct {
	cron    *cron.Cron
	orgs    store.OrganizationRepository
	inv     store.InventoryRepository
	events  events.Publisher
	metrics *metrics.Metrics
}

// New creates a monitor. Events and metrics may be nil.
func New(st *store.Store, pub events.Publisher, m *metrics.Metrics) *Monitor {
	if pub == nil {
		pub = events.Nop{}
	}
	return &Monitor{
		// Create cron with UTC timezone and seconds precision
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		orgs:    st.Organizations,
		inv:     st.Inventory,
		events:  pub,
		metrics: m,
	}
}

// Schedule registers the sweep. spec uses six fields, seconds first.
func (m *Monitor) Schedule(spec string) error {
	if _, err := m.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		m.Sweep(ctx)
	}); err != nil {
		return fmt.Errorf("scheduling low stock sweep: %w", err)
	}
	return nil
}

// Start begins the cron scheduler.
func (m *Monitor) Start() {
	m.cron.Start()
	slog.Info("low stock monitor started")
}

// Stop waits for a running sweep to finish.
func (m *Monitor) Stop() {
	ctx := m.cron.Stop()
	<-ctx.Done()
	slog.Info("low stock monitor stopped")
}

// Sweep builds the alert list of every organization. A failing organization
// is logged and skipped. It returns the number of low items per organization id.
func (m *Monitor) Sweep(ctx context.Context) map[string]int {
	orgs, err := m.orgs.List(ctx)
	if err != nil {
		slog.Error("low stock sweep: listing organizations", "error", err)
		return nil
	}

	counts := make(map[string]int, len(orgs))
	for _, org := range orgs {
		alerts, err := store.LowStockAlerts(ctx, m.inv, org.ID)
		if err != nil {
			slog.Error("low stock sweep failed", "organization", org.ID, "error", err)
			continue
		}

		counts[org.ID] = len(alerts)
		m.metrics.SetLowStock(org.ID, len(alerts))
		if len(alerts) == 0 {
			continue
		}

		slog.Info("low stock items", "organization", org.ID, "count", len(alerts), "worst", alerts[0].Name)
		if err := m.events.Publish(ctx, events.LowStock, alerts); err != nil {
			slog.Warn("failed to publish event", "type", events.LowStock, "error", err)
		}
	}
	return counts
}
