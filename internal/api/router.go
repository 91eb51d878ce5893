package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/veilchat/chat-server/internal/api/handler"
	"github.com/veilchat/chat-server/internal/api/middleware"
	"github.com/veilchat/chat-server/internal/core/ports"
	"github.com/veilchat/chat-server/internal/core/service"
	"github.com/veilchat/chat-server/internal/infrastructure/config"
	mongodb "github.com/veilchat/chat-server/internal/infrastructure/db/mongo"
	redisdb "github.com/veilchat/chat-server/internal/infrastructure/db/redis"
	"github.com/veilchat/chat-server/internal/realtime"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(cfg *config.Config, db *mongo.Database, rdb *redis.Client, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("veilchat"))

	// --- Repositories ---
	identityRepo := mongodb.NewIdentityRepository(db)
	messageRepo := mongodb.NewMessageRepository(db)
	settingsRepo := mongodb.NewDuressSettingsRepository(db)
	genLock := redisdb.NewGenerationLock(rdb)

	// --- Services ---
	authService := service.NewAuthService(identityRepo, cfg.JWTSecret, cfg.TokenTTL)
	messageService := service.NewMessageService(identityRepo, messageRepo, log)
	fabricator := service.NewFabricator(identityRepo, messageRepo, log)
	duressService := service.NewDuressService(
		identityRepo, messageRepo, settingsRepo, genLock, fabricator,
		cfg.JWTSecret, cfg.TokenTTL, log,
	)

	// --- Realtime ---
	hub := realtime.NewHub(log)
	dispatcher := realtime.NewDispatcher(hub, messageService, log)

	authMiddleware := middleware.Auth(cfg.JWTSecret)

	registerRoutes(e, routes{
		auth:       handler.NewAuthHandler(authService),
		messages:   handler.NewMessageHandler(messageService),
		duress:     handler.NewDuressHandler(duressService),
		health:     handler.NewHealthHandler(),
		readiness:  handler.NewReadinessHandler(db, rdb),
		socket:     realtime.ServeWS(dispatcher, log),
		authorized: authMiddleware,
	})

	return e
}

type routes struct {
	auth       *handler.AuthHandler
	messages   *handler.MessageHandler
	duress     *handler.DuressHandler
	health     *handler.HealthHandler
	readiness  *handler.ReadinessHandler
	socket     echo.HandlerFunc
	authorized echo.MiddlewareFunc
}

func registerRoutes(e *echo.Echo, r routes) {
	// --- Auth (no token required) ---
	e.POST("/auth/register", r.auth.Register)
	e.POST("/auth/login", r.auth.Login)

	// --- Socket channel (bearer token on the upgrade request) ---
	e.GET("/ws", r.socket, r.authorized)

	// --- Conversation read path ---
	msgGroup := e.Group("/v1/messages", r.authorized)
	msgGroup.GET("/chats", r.messages.Chats)
	msgGroup.GET("/:other_id", r.messages.History)

	// --- Duress companion endpoints ---
	duressGroup := e.Group("/v1/duress", r.authorized)
	duressGroup.GET("/settings", r.duress.GetSettings)
	duressGroup.PUT("/settings", r.duress.UpdateSettings)
	duressGroup.POST("/switch", r.duress.Switch)

	// --- Health probes and metrics (no auth required) ---
	e.GET("/health", r.health.Liveness)             // liveness  – is the process alive?
	e.GET("/health/ready", r.readiness.Readiness)   // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())
}

// compile-time wiring checks
var (
	_ ports.AuthService              = (*service.AuthService)(nil)
	_ ports.GenerationGuard          = (*redisdb.GenerationLock)(nil)
	_ ports.ConversationFabricator   = (*service.Fabricator)(nil)
	_ ports.IdentityRepository       = (*mongodb.IdentityRepository)(nil)
	_ ports.MessageRepository        = (*mongodb.MessageRepository)(nil)
	_ ports.DuressSettingsRepository = (*mongodb.DuressSettingsRepository)(nil)
)
