package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/autoapprove/internal/models"
)

// StateReader is the read side of state.State. Handlers never mutate bot
// state; every write goes through the dispatcher.
type StateReader interface {
	Stats() models.Stats
	RecentJoins(n int) []models.JoinRecord
	RecentRequests(n int) []models.ContentRequest
	Channels() []models.ChannelInfo
	Channel(id int64) (models.ChannelInfo, bool)
	Users(limit int) ([]int64, int)
}

const maxLimit = 100

// parseLimit reads ?limit=, falling back to def and capping at maxLimit.
// ok is false when the caller already wrote a 400.
func parseLimit(c *gin.Context, def int) (limit int, ok bool) {
	l := c.Query("limit")
	if l == "" {
		return def, true
	}

	limit, err := strconv.Atoi(l)
	if err != nil || limit < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'limit' parameter"})
		return 0, false
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return limit, true
}
