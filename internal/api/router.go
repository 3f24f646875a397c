package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/autoapprove/internal/middleware"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

// RouterConfig carries everything the admin HTTP surface is built from.
// Webhook and Events are optional.
type RouterConfig struct {
	State        StateReader
	Validator    middleware.TokenValidator
	AdminID      int64
	PasswordHash string
	JWTSecret    string
	CORSOrigins  []string
	HealthChecks map[string]HealthCheck
	Webhook      *WebhookHandler
	Events       gin.HandlerFunc
	Logger       *zap.Logger
}

// NewRouter builds the gin engine and wraps it in CORS.
func NewRouter(cfg RouterConfig) http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(cfg.Logger))

	statsHandler := NewStatsHandler(cfg.State, cfg.HealthChecks, cfg.Logger)
	authHandler := NewAuthHandler(cfg.AdminID, cfg.PasswordHash, cfg.JWTSecret, cfg.Logger)
	channelHandler := NewChannelHandler(cfg.State, cfg.Logger)
	membershipHandler := NewMembershipHandler(cfg.State, cfg.Logger)
	messageHandler := NewMessageHandler(cfg.State, cfg.Logger)
	userHandler := NewUserHandler(cfg.State, cfg.Logger)

	// Public.
	r.GET("/v1/health", statsHandler.Health)
	r.POST("/v1/auth/login", authHandler.Login)
	if cfg.Webhook != nil {
		r.POST("/telegram/webhook/:secret", cfg.Webhook.Receive)
	}
	// Without a password hash there is no way to obtain a token, so the
	// protected routes are not mounted at all.
	if cfg.PasswordHash == "" {
		return withCORS(r, cfg.CORSOrigins)
	}

	// The websocket authenticates with ?token= itself; browsers cannot set
	// headers on the upgrade request.
	if cfg.Events != nil {
		r.GET("/v1/events", cfg.Events)
	}

	v1 := r.Group("/v1")
	v1.Use(middleware.AuthMiddleware(cfg.Validator))
	v1.GET("/stats", statsHandler.Stats)
	v1.GET("/approvals", membershipHandler.ListApprovals)
	v1.GET("/requests", messageHandler.ListRequests)
	v1.GET("/channels", channelHandler.List)
	v1.GET("/channels/:id", channelHandler.GetByID)
	v1.GET("/users", userHandler.List)
	v1.GET("/users/me", userHandler.GetMe)

	return withCORS(r, cfg.CORSOrigins)
}

func withCORS(h http.Handler, origins []string) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}).Handler(h)
}

// requestLogger logs one line per request through zap instead of gin's
// default stdout writer.
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		logger.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}
