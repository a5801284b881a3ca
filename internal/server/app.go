package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"healthcompanion/internal/auth"
	"healthcompanion/internal/companion"
	"healthcompanion/internal/config"
	"healthcompanion/internal/logger"
	"healthcompanion/internal/metrics"
	"healthcompanion/internal/store"
)

type App struct {
	cfg       config.Config
	store     store.Store
	chat      *companion.Service
	passwords *auth.PasswordManager
	tokens    *auth.TokenIssuer
	metrics   *metrics.Metrics
	log       *logger.Logger
}

// Deps are the collaborators the HTTP layer needs. Passwords, Tokens, Metrics
// and Logger default when nil.
type Deps struct {
	Store     store.Store
	Chat      *companion.Service
	Passwords *auth.PasswordManager
	Tokens    *auth.TokenIssuer
	Metrics   *metrics.Metrics
	Logger    *logger.Logger
}

type AuthUser struct {
	ID       string
	Username string
	Role     string
	FullName string
}

func New(cfg config.Config, deps Deps) *App {
	app := &App{
		cfg:       cfg,
		store:     deps.Store,
		chat:      deps.Chat,
		passwords: deps.Passwords,
		tokens:    deps.Tokens,
		metrics:   deps.Metrics,
		log:       deps.Logger,
	}
	if app.passwords == nil {
		app.passwords = auth.NewPasswordManager()
	}
	if app.tokens == nil {
		app.tokens = auth.NewTokenIssuer(cfg)
	}
	if app.log == nil {
		app.log = logger.Discard()
	}
	if app.chat == nil {
		app.chat = companion.NewService(deps.Store, nil,
			companion.WithReportLimit(cfg.ReportLimit),
			companion.WithLogger(app.log),
			companion.WithMetrics(app.metrics),
		)
	}
	return app
}

func (a *App) Router() *gin.Engine {
	router := gin.New()
	router.Use(a.requestLogger(), gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     a.cfg.CORSAllowOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", a.health)
	router.GET("/metrics", gin.WrapH(a.metrics.Handler()))

	api := router.Group(a.cfg.APIPrefix)
	api.POST("/auth/signup", a.signup)
	api.POST("/auth/login", a.login)

	protected := api.Group("")
	protected.Use(a.authMiddleware())
	protected.GET("/me", a.me)
	protected.POST("/ingest", a.ingestVital)
	protected.POST("/chat", a.chatMessage)
	protected.GET("/dashboard/:username", a.dashboard)
	protected.GET("/vitals/:username/report", a.vitalsReport)
	protected.POST("/alerts/:id/resolve", a.resolveAlert)

	return router
}

func (a *App) health(c *gin.Context) {
	status := "ok"
	code := http.StatusOK
	if a.store != nil {
		if err := a.store.Ping(c.Request.Context()); err != nil {
			a.log.WithComponent("health").WithError(err).Warn("database ping failed")
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
	}
	c.JSON(code, gin.H{
		"status":    status,
		"service":   "health-companion-api",
		"generator": a.chat.HasGenerator(),
	})
}

func (a *App) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := c.Writer.Status()
		a.log.HTTPRequest(c.Request.Method, c.Request.URL.Path, c.ClientIP(), status, time.Since(started).Milliseconds())
		a.metrics.RecordHTTPRequest(c.Request.Method, path, status)
	}
}

func (a *App) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
			writeError(c, http.StatusUnauthorized, "Bearer token required")
			return
		}
		tokenString := strings.TrimSpace(authHeader[len("Bearer "):])
		if tokenString == "" {
			writeError(c, http.StatusUnauthorized, "Bearer token required")
			return
		}

		claims, err := a.tokens.Parse(tokenString)
		if errors.Is(err, auth.ErrMissingSubject) {
			writeError(c, http.StatusUnauthorized, "Token subject missing")
			return
		}
		if err != nil {
			writeError(c, http.StatusUnauthorized, "Invalid bearer token")
			return
		}

		user, err := a.store.GetUserByUsername(c.Request.Context(), claims.Username)
		if errors.Is(err, store.ErrNotFound) {
			writeError(c, http.StatusUnauthorized, "User not found")
			return
		}
		if err != nil {
			a.log.WithComponent("auth").WithError(err).Error("load token user failed")
			writeError(c, http.StatusInternalServerError, "Failed to load user")
			return
		}

		c.Set("authUser", AuthUser{
			ID:       user.ID,
			Username: user.Username,
			Role:     user.Role,
			FullName: user.FullName,
		})
		c.Next()
	}
}

func authUserFromContext(c *gin.Context) (AuthUser, bool) {
	raw, ok := c.Get("authUser")
	if !ok {
		return AuthUser{}, false
	}
	user, ok := raw.(AuthUser)
	return user, ok
}

func writeError(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, gin.H{"detail": detail})
}

func mustJSON(c *gin.Context, payload any) bool {
	if err := c.ShouldBindJSON(payload); err != nil {
		writeError(c, http.StatusBadRequest, "Invalid request payload")
		return false
	}
	return true
}
