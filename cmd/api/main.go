// Package main is the entrypoint for the Relay API server.
package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	_ "github.com/lib/pq"

	"github.com/relaychat/relay/internal/auth"
	"github.com/relaychat/relay/internal/cache"
	"github.com/relaychat/relay/internal/config"
	"github.com/relaychat/relay/internal/handler"
	"github.com/relaychat/relay/internal/metrics"
	"github.com/relaychat/relay/internal/middleware"
	"github.com/relaychat/relay/internal/notify"
	"github.com/relaychat/relay/internal/repository"
	"github.com/relaychat/relay/internal/server"
	"github.com/relaychat/relay/internal/service"
)

func main() {
	// Initialize context
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg)

	// Initialize database
	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	defer repo.Close()
	logger.Info("connected to database")

	// Separate database/sql pool for the notification repository
	notifyDB, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open notification database pool",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	defer notifyDB.Close()

	// Initialize cache
	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	defer cacheClient.Close()
	logger.Info("connected to Redis")

	// Initialize notification publisher
	notifyRepo := notify.NewRepository(notifyDB)
	notifier := notify.NewPublisher(notifyRepo, logger)

	// Initialize services
	recorder := metrics.NewInMemory()
	githubClient := auth.NewGitHubClient(cfg.GitHubClientID, cfg.GitHubClientSecret)
	states := auth.NewStateStore(cfg.OAuthStateTTL)

	authService := service.NewAuthService(repo, cacheClient, githubClient, states, cfg.OAuthRedirectURI, cfg.SessionTTL, recorder)
	chatService := service.NewChatService(repo, recorder)
	memberService := service.NewMemberService(repo, recorder)
	inviteService := service.NewInviteService(repo, notifier, cfg.InviteTTL, recorder)

	// Initialize handlers
	h := handler.New()
	healthHandler := handler.NewHealthHandler(repo, cacheClient)
	metricsHandler := handler.NewMetricsHandler(recorder)
	authHandler := handler.NewAuthHandler(authService, logger)
	chatHandler := handler.NewChatHandler(chatService, logger)
	memberHandler := handler.NewMemberHandler(memberService, logger)
	inviteHandler := handler.NewInviteHandler(inviteService, logger)
	notificationHandler := handler.NewNotificationHandler(notifyRepo, logger)

	// Setup router
	r := setupRouter(routerDeps{
		base:          h,
		health:        healthHandler,
		metrics:       metricsHandler,
		auth:          authHandler,
		chats:         chatHandler,
		members:       memberHandler,
		invites:       inviteHandler,
		notifications: notificationHandler,
		repo:          repo,
		cache:         cacheClient,
		cfg:           cfg,
		logger:        logger,
	})

	// Create and run server
	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	logger.Info("starting server",
		"port", cfg.AppPort,
		"base_url", cfg.BaseURL,
		"env", cfg.AppEnv,
		"github_login", githubClient.Enabled(),
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	level := parseLogLevel(cfg.LogLevel)

	opts := &slog.HandlerOptions{
		Level: level,
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type routerDeps struct {
	base          *handler.Handler
	health        *handler.HealthHandler
	metrics       *handler.MetricsHandler
	auth          *handler.AuthHandler
	chats         *handler.ChatHandler
	members       *handler.MemberHandler
	invites       *handler.InviteHandler
	notifications *handler.NotificationHandler
	repo          *repository.Repository
	cache         *cache.Cache
	cfg           *config.Config
	logger        *slog.Logger
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(deps routerDeps) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(deps.logger))
	r.Use(middleware.Recoverer(deps.logger))
	r.Use(middleware.Security(middleware.SecurityConfig{
		IsDevelopment:  deps.cfg.IsDevelopment(),
		AllowedOrigins: deps.cfg.GetCORSAllowedOrigins(),
	}))
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: deps.cfg.GetCORSAllowedOrigins(),
	}))
	r.Use(middleware.MaxBodySize(deps.cfg.MaxRequestBodySize))

	// Health endpoints (no auth required)
	r.Get("/healthz", deps.health.Healthz)
	r.Get("/readyz", deps.health.Readyz)
	r.Get("/metrics", deps.metrics.Metrics)

	// Root info endpoint
	r.Get("/", deps.base.Hello)

	// Auth middleware configuration
	authCfg := middleware.AuthConfig{
		Logger:     deps.logger,
		Repository: deps.repo,
		Cache:      deps.cache,
	}

	// Rate limit middleware configuration
	rateLimitCfg := middleware.RateLimitConfig{
		Logger:       deps.logger,
		Cache:        deps.cache,
		LoginEnabled: deps.cfg.RateLimitLoginEnabled,
		LoginPerMin:  deps.cfg.RateLimitLoginPerMin,
		LoginBurst:   deps.cfg.RateLimitLoginBurst,
	}

	r.Route("/v1", func(r chi.Router) {
		// Login flow (unauthenticated, rate limited per IP)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimitLogin(rateLimitCfg))
			r.Get("/auth/github", deps.auth.GitHubLogin)
			r.Get("/auth/github/callback", deps.auth.GitHubCallback)
			r.Post("/auth/register", deps.auth.Register)
			r.Post("/auth/login", deps.auth.Login)
		})

		// Everything else requires a session
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(authCfg))

			r.Post("/auth/logout", deps.auth.Logout)
			r.Get("/auth/me", deps.auth.Me)

			r.Route("/chats", func(r chi.Router) {
				r.Get("/", deps.chats.List)
				r.Post("/", deps.chats.Create)
				r.Get("/{chatID}", deps.chats.Get)
				r.Patch("/{chatID}", deps.chats.Update)
				r.Delete("/{chatID}", deps.chats.Delete)

				r.Route("/{chatID}/members", func(r chi.Router) {
					r.Get("/", deps.members.List)
					r.Post("/", deps.members.Add)
					r.Patch("/{userID}", deps.members.UpdateRole)
					r.Delete("/{userID}", deps.members.Remove)
				})

				r.Route("/{chatID}/invites", func(r chi.Router) {
					r.Get("/", deps.invites.ListForChat)
					r.Post("/", deps.invites.Create)
				})
			})

			r.Route("/invites", func(r chi.Router) {
				r.Get("/", deps.invites.ListMine)
				r.Post("/{inviteID}/respond", deps.invites.Respond)
				r.Delete("/{inviteID}", deps.invites.Cancel)
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", deps.notifications.List)
				r.Post("/read-all", deps.notifications.MarkAllRead)
				r.Post("/{notificationID}/read", deps.notifications.MarkRead)
			})
		})
	})

	// 404 and 405 handlers
	r.NotFound(deps.base.NotFound)
	r.MethodNotAllowed(deps.base.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
