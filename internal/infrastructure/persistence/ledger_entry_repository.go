package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/homeshare/backend/internal/domain/ledger"
	"github.com/homeshare/backend/internal/domain/shared"
	"github.com/homeshare/backend/internal/infrastructure/persistence/models"
)

// GormEntryRepository implements ledger.EntryRepository using GORM.
// The ForUpdate methods take SELECT ... FOR UPDATE row locks; callers must
// run them inside a transaction or the locks are released immediately.
type GormEntryRepository struct {
	db *gorm.DB
}

// NewGormEntryRepository creates a new GormEntryRepository
func NewGormEntryRepository(db *gorm.DB) *GormEntryRepository {
	return &GormEntryRepository{db: db}
}

// Get fetches an entry without locking it
func (r *GormEntryRepository) Get(ctx context.Context, roomID, userID uuid.UUID) (*ledger.Entry, error) {
	var model models.LedgerEntryModel
	if err := r.db.WithContext(ctx).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// GetForUpdate fetches an entry and locks its row until the enclosing
// transaction ends
func (r *GormEntryRepository) GetForUpdate(ctx context.Context, roomID, userID uuid.UUID) (*ledger.Entry, error) {
	var model models.LedgerEntryModel
	if err := r.lockingDB(ctx).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// GetOrCreateForUpdate fetches and locks the entry, inserting an empty one
// first if none exists. The insert ignores conflicts on (room_id, user_id)
// so two racing creators converge on the same row.
func (r *GormEntryRepository) GetOrCreateForUpdate(ctx context.Context, roomID, userID uuid.UUID) (*ledger.Entry, error) {
	entry, err := r.GetForUpdate(ctx, roomID, userID)
	if err == nil {
		return entry, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	model := models.LedgerEntryModelFromDomain(ledger.NewEntry(roomID, userID))
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "room_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		Create(model).Error; err != nil {
		return nil, err
	}

	return r.GetForUpdate(ctx, roomID, userID)
}

// Save persists the entry's current owes/debts state
func (r *GormEntryRepository) Save(ctx context.Context, entry *ledger.Entry) error {
	return r.db.WithContext(ctx).
		Model(&models.LedgerEntryModel{}).
		Where("id = ?", entry.ID).
		Updates(map[string]interface{}{
			"owes":       entry.Owes,
			"debts":      entry.Debts,
			"updated_at": time.Now(),
		}).Error
}

// ListByRoom returns every entry in the room
func (r *GormEntryRepository) ListByRoom(ctx context.Context, roomID uuid.UUID) ([]*ledger.Entry, error) {
	var rows []models.LedgerEntryModel
	if err := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	entries := make([]*ledger.Entry, len(rows))
	for i := range rows {
		entries[i] = rows[i].ToDomain()
	}
	return entries, nil
}

// DeleteByRoom removes every entry in the room
func (r *GormEntryRepository) DeleteByRoom(ctx context.Context, roomID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Delete(&models.LedgerEntryModel{})
	return result.RowsAffected, result.Error
}

// lockingDB adds the FOR UPDATE clause on databases that support it.
// SQLite (tests) has a single writer and no FOR UPDATE syntax.
func (r *GormEntryRepository) lockingDB(ctx context.Context) *gorm.DB {
	db := r.db.WithContext(ctx)
	if r.db.Dialector.Name() == "sqlite" {
		return db
	}
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}
