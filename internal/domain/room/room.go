// Package room holds the minimal room and user read models the debt ledger
// consumes. Full room/user management lives upstream; the ledger only needs
// membership answers and member listings.
package room

import (
	"context"

	"github.com/google/uuid"

	"github.com/homeshare/backend/internal/domain/shared"
)

// Room is a shared household
type Room struct {
	shared.BaseEntity
	Name       string `json:"name"`
	PictureURL string `json:"picture_url,omitempty"`
}

// User is the public slice of a user record exposed in member listings
type User struct {
	shared.BaseEntity
	Username  string `json:"username"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// Membership answers whether users belong to a room. The ledger consumes
// this; it never mutates membership.
type Membership interface {
	IsMember(ctx context.Context, userID, roomID uuid.UUID) (bool, error)
	AreMembers(ctx context.Context, userIDs []uuid.UUID, roomID uuid.UUID) (bool, error)
}

// Repository provides room and member reads
type Repository interface {
	Membership
	FindByID(ctx context.Context, roomID uuid.UUID) (*Room, error)
	ListMembers(ctx context.Context, roomID uuid.UUID) ([]*User, error)
}
