package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const defaultApprovalsLimit = 20

// MembershipHandler serves the join approval log.
type MembershipHandler struct {
	st     StateReader
	logger *zap.Logger
}

// NewMembershipHandler creates a MembershipHandler.
func NewMembershipHandler(st StateReader, logger *zap.Logger) *MembershipHandler {
	return &MembershipHandler{st: st, logger: logger}
}

// ListApprovals handles GET /v1/approvals?limit=20
//
// Newest first. limit defaults to 20 and is capped at 100.
func (h *MembershipHandler) ListApprovals(c *gin.Context) {
	limit, ok := parseLimit(c, defaultApprovalsLimit)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, h.st.RecentJoins(limit))
}
