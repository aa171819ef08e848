package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/cyberguardian/platform/internal/auth"
	"github.com/cyberguardian/platform/internal/auth/jwt"
	"github.com/cyberguardian/platform/internal/badge"
	"github.com/cyberguardian/platform/internal/catalog"
	"github.com/cyberguardian/platform/internal/config"
	"github.com/cyberguardian/platform/internal/contact"
	"github.com/cyberguardian/platform/internal/dashboard"
	"github.com/cyberguardian/platform/internal/db"
	"github.com/cyberguardian/platform/internal/db/repository"
	"github.com/cyberguardian/platform/internal/feedback"
	"github.com/cyberguardian/platform/internal/logging"
	"github.com/cyberguardian/platform/internal/metrics"
	"github.com/cyberguardian/platform/internal/outcome"
	"github.com/cyberguardian/platform/internal/play"
	"github.com/cyberguardian/platform/internal/server"
	"github.com/cyberguardian/platform/internal/tutor"
	"github.com/cyberguardian/platform/internal/users"
	"github.com/cyberguardian/platform/internal/validation"
)

// Application aggregates shared infrastructure (DB, cache, HTTP server).
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	pool  *pgxpool.Pool
	redis *redis.Client
	http  *http.Server
}

// New bootstraps logger, Postgres, Redis, every domain service and the HTTP server.
func New(ctx context.Context, cfg *config.App) (*Application, error) {
	logger := logging.New(cfg.Name, cfg.Env, cfg.LogLevel)
	logger.Info().Msg("starting application bootstrap")

	pool, err := db.NewPostgresPool(ctx, cfg.Postgres, logger)
	if err != nil {
		return nil, err
	}
	redisClient, err := db.NewRedisClient(ctx, cfg.Redis, logger)
	if err != nil {
		pool.Close()
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)
	validator := validation.New()

	userRepo := repository.NewUserRepository(pool)
	quizRepo := repository.NewQuizRepository(pool)
	resultRepo := repository.NewResultRepository(pool)
	badgeRepo := repository.NewBadgeRepository(pool)
	feedbackRepo := repository.NewFeedbackRepository(pool)
	chatRepo := repository.NewChatRepository(pool)

	// Accounts
	authSvc := auth.NewService(userRepo, jwt.TokenConfig{
		AccessSecret: []byte(cfg.Security.JWTSecret),
		AccessTTL:    cfg.Security.AccessTTL,
		RefreshTTL:   cfg.Security.RefreshTTL,
		Issuer:       cfg.Name,
	}, logger)

	var oauthSvc *auth.OAuthService
	if cfg.OAuth.GoogleClientID != "" && cfg.OAuth.GoogleClientSecret != "" {
		redirectURL := cfg.OAuth.GoogleRedirectURL
		if redirectURL == "" {
			redirectURL = fmt.Sprintf("http://%s/v1/oauth/google/callback", cfg.HTTPAddr)
		}
		oauthSvc = auth.NewOAuthService(cfg.OAuth.GoogleClientID, cfg.OAuth.GoogleClientSecret, redirectURL, logger)
		logger.Info().Msg("OAuth service initialized")
	} else {
		logger.Warn().Msg("OAuth not configured (missing GOOGLE_OAUTH_CLIENT_ID or GOOGLE_OAUTH_CLIENT_SECRET)")
	}

	// Quizzes, play and results
	catalogSvc := catalog.NewService(quizRepo, resultRepo, validator, logger)
	evaluator := badge.NewEvaluator(badgeRepo, quizRepo, resultRepo, badge.Options{
		Rules:   badge.DefaultRules(cfg.Badge.MasteryThreshold),
		Metrics: m,
	}, logger)
	recorder := outcome.NewRecorder(resultRepo, evaluator, m, logger)
	playSvc := play.NewService(
		play.NewStore(redisClient, cfg.Session, logger),
		catalogSvc,
		recorder,
		play.Options{Metrics: m},
		logger,
	)

	// Tutor
	if cfg.AI.APIKey == "" {
		logger.Warn().Msg("AI_API_KEY not set; tutor answers disabled and quiz feedback uses fixed messages")
	}
	tutorSvc := tutor.NewService(
		tutor.NewClient(cfg.AI, m, logger),
		chatRepo,
		tutor.Options{
			Cache:        tutor.NewFeedbackCache(redisClient, cfg.AI.FeedbackCacheTTL),
			Limiter:      tutor.NewRateLimiter(redisClient, cfg.Tutor.RequestsPerWindow, cfg.Tutor.Window),
			HistoryLimit: cfg.Tutor.HistoryLimit,
			Metrics:      m,
		},
		logger,
	)

	dashboardSvc := dashboard.NewService(dashboard.Stores{
		Results:  resultRepo,
		Badges:   badgeRepo,
		Users:    userRepo,
		Quizzes:  quizRepo,
		Feedback: feedbackRepo,
	}, logger)

	mailer := contact.NewMailer(cfg.SMTP, logger)
	if !mailer.Configured() {
		logger.Warn().Msg("SMTP not configured; contact form disabled")
	}

	handlers := server.Handlers{
		Auth:      auth.NewHTTPHandlers(authSvc, oauthSvc, validator, cfg.Security.SecureCookies, logger),
		Catalog:   catalog.NewHTTPHandlers(catalogSvc, logger),
		Play:      play.NewHTTPHandlers(playSvc, validator, logger),
		Tutor:     tutor.NewHTTPHandlers(tutorSvc, validator, logger),
		Feedback:  feedback.NewHTTPHandlers(feedback.NewService(feedbackRepo, logger), validator, logger),
		Dashboard: dashboard.NewHTTPHandlers(dashboardSvc, logger),
		Users:     users.NewHTTPHandlers(users.NewService(userRepo, dashboardSvc, logger), validator, logger),
		Contact:   contact.NewHTTPHandlers(mailer, validator, logger),
	}

	apiServer := server.NewHTTPServer(server.Options{
		Addr:     cfg.HTTPAddr,
		Tokens:   authSvc,
		Metrics:  m,
		Gatherer: reg,
		Dependency: map[string]server.Pinger{
			"postgres": pool.Ping,
			"redis":    func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		},
	}, handlers, logger)

	return &Application{
		cfg:    cfg,
		logger: logger,
		pool:   pool,
		redis:  redisClient,
		http:   apiServer,
	}, nil
}

// Run starts the HTTP server and waits for termination signals.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info().Str("addr", a.cfg.HTTPAddr).Msg("http server listening")
		if err := a.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	var runErr error
	select {
	case sig := <-sigCh:
		a.logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		runErr = fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
		a.logger.Warn().Msg("context canceled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.GracefulShutdownTimeout)
	defer cancel()

	if err := a.http.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("http shutdown error")
	}

	a.pool.Close()
	if err := a.redis.Close(); err != nil {
		a.logger.Error().Err(err).Msg("redis shutdown error")
	}

	a.logger.Info().Msg("shutdown complete")
	return runErr
}
