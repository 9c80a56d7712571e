package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/homeshare/backend/internal/domain/ledger"
	"github.com/homeshare/backend/internal/domain/shared"
	"github.com/homeshare/backend/internal/infrastructure/persistence/models"
)

// GormBillRepository implements ledger.BillRepository using GORM
type GormBillRepository struct {
	db *gorm.DB
}

// NewGormBillRepository creates a new GormBillRepository
func NewGormBillRepository(db *gorm.DB) *GormBillRepository {
	return &GormBillRepository{db: db}
}

// Create persists a new bill
func (r *GormBillRepository) Create(ctx context.Context, bill *ledger.Bill) error {
	return r.db.WithContext(ctx).Create(models.BillModelFromDomain(bill)).Error
}

// FindByID finds a bill by its ID
func (r *GormBillRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Bill, error) {
	var model models.BillModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ListByRoom returns every bill in the room, newest scheduled date first
func (r *GormBillRepository) ListByRoom(ctx context.Context, roomID uuid.UUID) ([]*ledger.Bill, error) {
	var rows []models.BillModel
	if err := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("scheduled_date DESC, created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return billsToDomain(rows), nil
}

// ListByRoomAndDate returns the bills scheduled on the given calendar day
func (r *GormBillRepository) ListByRoomAndDate(ctx context.Context, roomID uuid.UUID, date time.Time) ([]*ledger.Bill, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	var rows []models.BillModel
	if err := r.db.WithContext(ctx).
		Where("room_id = ? AND scheduled_date >= ? AND scheduled_date < ?", roomID, dayStart, dayEnd).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return billsToDomain(rows), nil
}

// Delete removes a bill by ID
func (r *GormBillRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.BillModel{}, "id = ?", id).Error
}

// DeleteByRoom removes every bill in the room
func (r *GormBillRepository) DeleteByRoom(ctx context.Context, roomID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Delete(&models.BillModel{})
	return result.RowsAffected, result.Error
}

func billsToDomain(rows []models.BillModel) []*ledger.Bill {
	bills := make([]*ledger.Bill, len(rows))
	for i := range rows {
		bills[i] = rows[i].ToDomain()
	}
	return bills
}
