package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/homeshare/backend/internal/domain/room"
	"github.com/homeshare/backend/internal/domain/shared"
	"github.com/homeshare/backend/internal/infrastructure/persistence/models"
)

// GormRoomRepository implements room.Repository using GORM
type GormRoomRepository struct {
	db *gorm.DB
}

// NewGormRoomRepository creates a new GormRoomRepository
func NewGormRoomRepository(db *gorm.DB) *GormRoomRepository {
	return &GormRoomRepository{db: db}
}

// FindByID finds a room by its ID
func (r *GormRoomRepository) FindByID(ctx context.Context, roomID uuid.UUID) (*room.Room, error) {
	var model models.RoomModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", roomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// IsMember reports whether the user belongs to the room
func (r *GormRoomRepository) IsMember(ctx context.Context, userID, roomID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.RoomMemberModel{}).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// AreMembers reports whether every given user belongs to the room.
// Duplicate IDs in the input are counted once.
func (r *GormRoomRepository) AreMembers(ctx context.Context, userIDs []uuid.UUID, roomID uuid.UUID) (bool, error) {
	if len(userIDs) == 0 {
		return true, nil
	}
	unique := make(map[uuid.UUID]struct{}, len(userIDs))
	for _, id := range userIDs {
		unique[id] = struct{}{}
	}
	distinct := make([]uuid.UUID, 0, len(unique))
	for id := range unique {
		distinct = append(distinct, id)
	}

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.RoomMemberModel{}).
		Where("room_id = ? AND user_id IN ?", roomID, distinct).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count == int64(len(distinct)), nil
}

// ListMembers returns the users belonging to the room
func (r *GormRoomRepository) ListMembers(ctx context.Context, roomID uuid.UUID) ([]*room.User, error) {
	var rows []models.UserModel
	if err := r.db.WithContext(ctx).
		Joins("JOIN room_members ON room_members.user_id = users.id").
		Where("room_members.room_id = ?", roomID).
		Order("users.username ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	users := make([]*room.User, len(rows))
	for i := range rows {
		users[i] = rows[i].ToDomain()
	}
	return users, nil
}
