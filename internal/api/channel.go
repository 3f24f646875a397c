package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ChannelHandler exposes the channels the bot has seen join requests for.
type ChannelHandler struct {
	st     StateReader
	logger *zap.Logger
}

// NewChannelHandler creates a ChannelHandler.
func NewChannelHandler(st StateReader, logger *zap.Logger) *ChannelHandler {
	return &ChannelHandler{st: st, logger: logger}
}

// List handles GET /v1/channels
//
// Channels come back in the order they were first seen, each with its
// approval counter. An empty set serializes to [], never null.
func (h *ChannelHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, h.st.Channels())
}

// GetByID handles GET /v1/channels/:id
func (h *ChannelHandler) GetByID(c *gin.Context) {
	// Telegram channel ids are negative, e.g. -1001234567890.
	channelID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid channel id"})
		return
	}

	ch, ok := h.st.Channel(channelID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "channel not found"})
		return
	}

	c.JSON(http.StatusOK, ch)
}
