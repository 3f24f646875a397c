package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/autoapprove/internal/auth"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 24 * time.Hour

// AuthHandler issues admin tokens. It is the only public endpoint that
// produces credentials.
type AuthHandler struct {
	adminID      int64
	passwordHash string
	jwtSecret    string
	logger       *zap.Logger
}

// NewAuthHandler creates an AuthHandler. An empty passwordHash disables login.
func NewAuthHandler(adminID int64, passwordHash, jwtSecret string, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		adminID:      adminID,
		passwordHash: passwordHash,
		jwtSecret:    jwtSecret,
		logger:       logger,
	}
}

type loginRequest struct {
	AdminID  int64  `json:"admin_id" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type authResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Login handles POST /v1/auth/login
//
// Login is switched off (404) until ADMIN_PASSWORD_HASH is set.
func (h *AuthHandler) Login(c *gin.Context) {
	if h.passwordHash == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "login disabled"})
		return
	}

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Same response for wrong id and wrong password.
	if req.AdminID != h.adminID {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid admin id or password"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(h.passwordHash), []byte(req.Password)); err != nil {
		h.logger.Warn("admin login rejected", zap.String("client_ip", c.ClientIP()))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid admin id or password"})
		return
	}

	token, err := auth.GenerateToken(h.adminID, h.jwtSecret, tokenTTL)
	if err != nil {
		h.logger.Error("failed to generate token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	c.JSON(http.StatusOK, authResponse{Token: token, ExpiresAt: time.Now().Add(tokenTTL).UTC()})
}
