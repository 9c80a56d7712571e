package models

import (
	"github.com/google/uuid"

	"github.com/homeshare/backend/internal/domain/room"
)

// RoomModel is the GORM model for rooms
type RoomModel struct {
	BaseModel
	Name       string `gorm:"type:varchar(255);not null"`
	PictureURL string `gorm:"type:varchar(512)"`
}

// TableName returns the table name for GORM
func (RoomModel) TableName() string {
	return "rooms"
}

// ToDomain converts the model to a domain room
func (m *RoomModel) ToDomain() *room.Room {
	return &room.Room{
		BaseEntity: m.BaseModel.ToDomain(),
		Name:       m.Name,
		PictureURL: m.PictureURL,
	}
}

// UserModel is the GORM model for users
type UserModel struct {
	BaseModel
	Username  string `gorm:"type:varchar(100);not null;uniqueIndex"`
	FirstName string `gorm:"type:varchar(100)"`
	LastName  string `gorm:"type:varchar(100)"`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the model to a domain user
func (m *UserModel) ToDomain() *room.User {
	return &room.User{
		BaseEntity: m.BaseModel.ToDomain(),
		Username:   m.Username,
		FirstName:  m.FirstName,
		LastName:   m.LastName,
	}
}

// RoomMemberModel is the GORM join row linking users to rooms
type RoomMemberModel struct {
	BaseModel
	RoomID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_room_member"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_room_member"`
}

// TableName returns the table name for GORM
func (RoomMemberModel) TableName() string {
	return "room_members"
}
