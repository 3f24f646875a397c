package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/autoapprove/internal/middleware"
	"go.uber.org/zap"
)

const defaultUsersLimit = 50

// UserHandler serves the set of users who pressed /start.
type UserHandler struct {
	st     StateReader
	logger *zap.Logger
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(st StateReader, logger *zap.Logger) *UserHandler {
	return &UserHandler{st: st, logger: logger}
}

type usersResponse struct {
	Total int     `json:"total"`
	Users []int64 `json:"users"`
}

// List handles GET /v1/users?limit=50
//
// Users are returned in the order they first started the bot. Total is the
// full count, so a client can tell when the list was cut.
func (h *UserHandler) List(c *gin.Context) {
	limit, ok := parseLimit(c, defaultUsersLimit)
	if !ok {
		return
	}

	ids, total := h.st.Users(limit)
	c.JSON(http.StatusOK, usersResponse{Total: total, Users: ids})
}

type meResponse struct {
	AdminID int64 `json:"admin_id"`
}

// GetMe handles GET /v1/users/me and echoes the admin id from the token.
func (h *UserHandler) GetMe(c *gin.Context) {
	c.JSON(http.StatusOK, meResponse{AdminID: middleware.GetAdminID(c)})
}
