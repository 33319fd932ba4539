package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/mise-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/mise-backend/pkg/errors"
	"github.com/angelmondragon/mise-backend/pkg/logger"
	"github.com/angelmondragon/mise-backend/pkg/metrics"
)

// Read bounds for the recency-ordered collections.
const (
	StockEventLimit    = 100
	PurchaseOrderLimit = 50
	WasteEntryLimit    = 50
)

// Aggregator reads a tenant's snapshot. Any failed read fails the whole
// snapshot; a partial snapshot is never returned.
type Aggregator struct {
	source   Source
	validate *validator.Validate
	metrics  *metrics.InsightMetrics
	logg     *logger.Logger
}

func NewAggregator(source Source, m *metrics.InsightMetrics, logg *logger.Logger) (*Aggregator, error) {
	if source == nil {
		return nil, fmt.Errorf("inventory source required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Aggregator{
		source:   source,
		validate: validator.New(),
		metrics:  m,
		logg:     logg,
	}, nil
}

// FetchSnapshot runs the four reads concurrently. The first failure cancels
// the rest and is returned as an upstream error.
func (a *Aggregator) FetchSnapshot(ctx context.Context, tenantID uuid.UUID) (*Snapshot, error) {
	start := time.Now()

	var (
		ingredients []models.Ingredient
		events      []models.StockEvent
		orders      []models.PurchaseOrder
		waste       []models.WasteEntry
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := a.source.ListIngredients(gctx, tenantID)
		if err != nil {
			return fmt.Errorf("list ingredients: %w", err)
		}
		ingredients = rows
		return nil
	})
	g.Go(func() error {
		rows, err := a.source.RecentStockEvents(gctx, tenantID, StockEventLimit)
		if err != nil {
			return fmt.Errorf("recent stock events: %w", err)
		}
		events = rows
		return nil
	})
	g.Go(func() error {
		rows, err := a.source.RecentPurchaseOrders(gctx, tenantID, PurchaseOrderLimit)
		if err != nil {
			return fmt.Errorf("recent purchase orders: %w", err)
		}
		orders = rows
		return nil
	})
	g.Go(func() error {
		rows, err := a.source.RecentWasteEntries(gctx, tenantID, WasteEntryLimit)
		if err != nil {
			return fmt.Errorf("recent waste entries: %w", err)
		}
		waste = rows
		return nil
	})

	err := g.Wait()
	a.metrics.ObserveSnapshot(time.Since(start), err)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "read inventory snapshot")
	}

	return &Snapshot{
		TenantID:             tenantID,
		Items:                a.snapshotItems(ctx, ingredients),
		RecentStockEvents:    stockEventsFromModels(capRows(events, StockEventLimit)),
		RecentPurchaseOrders: purchaseOrdersFromModels(capRows(orders, PurchaseOrderLimit)),
		RecentWasteEntries:   wasteEntriesFromModels(capRows(waste, WasteEntryLimit)),
	}, nil
}

// snapshotItems keeps every tenant row. Rows that fail validation are logged
// and passed through; an empty name gets a placeholder so the row can still
// be listed and matched.
func (a *Aggregator) snapshotItems(ctx context.Context, rows []models.Ingredient) []Item {
	items := make([]Item, 0, len(rows))
	for _, row := range rows {
		item := itemFromModel(row)
		if err := a.validate.Struct(item); err != nil {
			a.logg.Warn(a.logg.WithFields(ctx, map[string]any{
				"ingredient_id": row.ID.String(),
				"reason":        err.Error(),
			}), "inventory.item.invalid")
		}
		if strings.TrimSpace(item.Name) == "" {
			item.Name = unnamedItem(item.ID)
		}
		items = append(items, item)
	}
	return items
}

func unnamedItem(id uuid.UUID) string {
	return "Unnamed ingredient " + id.String()[:8]
}

// capRows guards the bounds against a source that ignores the limit.
func capRows[T any](rows []T, limit int) []T {
	if len(rows) > limit {
		return rows[:limit]
	}
	return rows
}
