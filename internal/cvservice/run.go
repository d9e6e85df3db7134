package cvservice

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	apihttp "github.com/husainf4l/rolekits/internal/api/http"
	"github.com/husainf4l/rolekits/internal/auth"
	"github.com/husainf4l/rolekits/internal/broker"
	"github.com/husainf4l/rolekits/internal/config"
	"github.com/husainf4l/rolekits/internal/gql"
	"github.com/husainf4l/rolekits/internal/platform/logger"
	"github.com/husainf4l/rolekits/internal/services"
	"github.com/husainf4l/rolekits/internal/store"
	"github.com/husainf4l/rolekits/internal/store/postgres"
	"github.com/husainf4l/rolekits/internal/store/sqlite"
)

// Run starts the CV service HTTP server and blocks until shutdown or error.
func Run() error {
	log := logger.New("rolekits-service")

	cfg, err := config.New()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return err
	}

	ctx, stop := newServerContext()
	defer stop()

	st, health, err := newStore(ctx, cfg, log)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Store unavailable")
		return err
	}

	handler, err := buildHandler(cfg, st, health, log)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Failed to assemble handlers")
		return err
	}

	server := newHTTPServer(ctx, cfg, handler)
	errCh := serveHTTP(server, log, cfg)

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down server")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			log.Error().Stack().Err(err).Msg("Server forced to shutdown")
			return err
		}
		log.Info().Msg("Server exited")
		return nil
	case err := <-errCh:
		log.Error().Stack().Err(err).Msg("HTTP server failed")
		return err
	}
}

// newStore opens the configured driver. SQLite applies its schema on
// open; Postgres expects migrations to have run and only verifies
// connectivity.
func newStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (store.Store, apihttp.HealthPinger, error) {
	switch cfg.DBDriver {
	case "postgres":
		if err := postgres.Bootstrap(ctx, cfg.PostgresDSN); err != nil {
			return nil, nil, fmt.Errorf("postgres bootstrap: %w", err)
		}
		db, err := postgres.Open(cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		st := postgres.NewWithDB(db)
		log.Info().Msg("Postgres store ready")
		return st, st.(apihttp.HealthPinger), nil
	case "sqlite":
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		st := sqlite.NewWithDB(db)
		log.Info().Str("path", cfg.SQLitePath).Msg("SQLite store ready")
		return st, st.(apihttp.HealthPinger), nil
	default:
		return nil, nil, fmt.Errorf("unsupported DB_DRIVER: %s", cfg.DBDriver)
	}
}

// buildHandler wires auth, services, the update broker and both API
// surfaces (REST+SSE and GraphQL) into one router.
func buildHandler(cfg *config.Config, st store.Store, health apihttp.HealthPinger, log zerolog.Logger) (http.Handler, error) {
	authz := auth.NewJWTAuthorizer(cfg.JWTSecret, st.Users())
	b := broker.New(cfg.SubscriberQueueSize, log)
	cvSvc := services.NewCVService(st, b, log)
	userSvc := services.NewUserService(st)

	resolver := gql.NewResolver(authz, cvSvc, cfg.KeepAliveInterval, log)
	gqlPost, gqlWS, err := gql.NewHandlers(resolver)
	if err != nil {
		return nil, fmt.Errorf("graphql schema: %w", err)
	}

	return apihttp.NewRouter(apihttp.RouterDeps{
		Authorizer: authz,
		CVService:  cvSvc,
		Users:      userSvc,
		Health:     health,
		GraphQL:    gqlPost,
		GraphQLWS:  gqlWS,
		KeepAlive:  cfg.KeepAliveInterval,
		Log:        log,
	}), nil
}

func newHTTPServer(ctx context.Context, cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.GetHTTPAddr(),
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		// Streaming responses (SSE) hold the connection open, so no
		// write deadline.
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}
}

func serveHTTP(server *http.Server, log zerolog.Logger, cfg *config.Config) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	return errCh
}

// newServerContext returns a cancellable context that is cancelled on SIGINT/SIGTERM.
func newServerContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
