package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const defaultRequestsLimit = 20

// MessageHandler serves content requests, the free text users send after
// pressing "Request Content".
type MessageHandler struct {
	st     StateReader
	logger *zap.Logger
}

// NewMessageHandler creates a MessageHandler.
func NewMessageHandler(st StateReader, logger *zap.Logger) *MessageHandler {
	return &MessageHandler{st: st, logger: logger}
}

// ListRequests handles GET /v1/requests?limit=20
func (h *MessageHandler) ListRequests(c *gin.Context) {
	limit, ok := parseLimit(c, defaultRequestsLimit)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, h.st.RecentRequests(limit))
}
