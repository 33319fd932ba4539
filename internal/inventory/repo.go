package inventory

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/mise-backend/internal/repo"
	"github.com/angelmondragon/mise-backend/pkg/db/models"
)

// Source is the tenant-scoped read surface the aggregator needs.
type Source interface {
	ListIngredients(ctx context.Context, tenantID uuid.UUID) ([]models.Ingredient, error)
	RecentStockEvents(ctx context.Context, tenantID uuid.UUID, limit int) ([]models.StockEvent, error)
	RecentPurchaseOrders(ctx context.Context, tenantID uuid.UUID, limit int) ([]models.PurchaseOrder, error)
	RecentWasteEntries(ctx context.Context, tenantID uuid.UUID, limit int) ([]models.WasteEntry, error)
}

// Repository reads inventory tables. Every query is tenant scoped.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// ListIngredients returns every ingredient of the tenant ordered by name.
func (r *Repository) ListIngredients(ctx context.Context, tenantID uuid.UUID) ([]models.Ingredient, error) {
	var rows []models.Ingredient
	err := r.Tenant(ctx, tenantID).
		Order("name ASC").
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *Repository) RecentStockEvents(ctx context.Context, tenantID uuid.UUID, limit int) ([]models.StockEvent, error) {
	var rows []models.StockEvent
	err := r.Tenant(ctx, tenantID).Scopes(repo.RecentScope(limit)).Find(&rows).Error
	return rows, err
}

func (r *Repository) RecentPurchaseOrders(ctx context.Context, tenantID uuid.UUID, limit int) ([]models.PurchaseOrder, error) {
	var rows []models.PurchaseOrder
	err := r.Tenant(ctx, tenantID).Scopes(repo.RecentScope(limit)).Find(&rows).Error
	return rows, err
}

func (r *Repository) RecentWasteEntries(ctx context.Context, tenantID uuid.UUID, limit int) ([]models.WasteEntry, error) {
	var rows []models.WasteEntry
	err := r.Tenant(ctx, tenantID).Scopes(repo.RecentScope(limit)).Find(&rows).Error
	return rows, err
}
