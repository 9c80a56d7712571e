package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/homeshare/backend/internal/application/finance"
)

// UsersHandler serves the member-facing ledger views
type UsersHandler struct {
	BaseHandler
	queries      *finance.QueryService
	debugEnabled bool
}

// NewUsersHandler creates a new UsersHandler
func NewUsersHandler(queries *finance.QueryService, debugEnabled bool) *UsersHandler {
	return &UsersHandler{queries: queries, debugEnabled: debugEnabled}
}

// RegisterRoutes registers the user routes
func (h *UsersHandler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/users")
	{
		group.GET("/room_members_with_debts/:room_id", h.RoomMembersWithDebts)

		if h.debugEnabled {
			group.POST("/cleanup_room_debts/:room_id", h.CleanupRoomDebts)
		}
	}
}

// RoomMembersWithDebts handles GET /users/room_members_with_debts/:room_id
func (h *UsersHandler) RoomMembersWithDebts(c *gin.Context) {
	roomID, err := parseUUIDParam(c, "room_id")
	if err != nil {
		h.BadRequest(c, "invalid room_id")
		return
	}

	members, err := h.queries.GetRoomMembersWithDebts(c.Request.Context(), roomID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, members)
}

// CleanupRoomDebts handles POST /users/cleanup_room_debts/:room_id
func (h *UsersHandler) CleanupRoomDebts(c *gin.Context) {
	roomID, err := parseUUIDParam(c, "room_id")
	if err != nil {
		h.BadRequest(c, "invalid room_id")
		return
	}

	if err := h.queries.Cleanup(c.Request.Context(), roomID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"cleaned": true})
}
