package agent

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/husainf4l/rolekits/internal/agent/handlers"
	"github.com/husainf4l/rolekits/pkg/client"
)

// Configuration for the agent tool bridge
type config struct {
	ServiceURL       string
	BearerToken      string
	LogLevel         zerolog.Level
	ServerName       string
	ServerVersion    string
	ListenAddr       string
	ShutdownTimeout  time.Duration
	HTTPReadTimeout  time.Duration
	HTTPIdleTimeout  time.Duration
}

// loadConfig loads configuration from environment variables and flags
func loadConfig() *config {
	cfg := &config{
		ServiceURL:      getEnvOrDefault("ROLEKITS_SERVICE_URL", "http://localhost:4003"),
		BearerToken:     os.Getenv("ROLEKITS_AGENT_TOKEN"),
		ServerName:      getEnvOrDefault("MCP_SERVER_NAME", "rolekits-mcp-server"),
		ServerVersion:   getEnvOrDefault("MCP_SERVER_VERSION", "0.1.0"),
		ListenAddr:      getEnvOrDefault("MCP_LISTEN_ADDR", ":4004"),
		ShutdownTimeout: parseDurationOrDefault("SHUTDOWN_TIMEOUT", "10s"),
		HTTPReadTimeout: parseDurationOrDefault("HTTP_READ_TIMEOUT", "5s"),
		HTTPIdleTimeout: parseDurationOrDefault("HTTP_IDLE_TIMEOUT", "120s"),
	}
	cfg.LogLevel = parseLogLevel(getEnvOrDefault("LOG_LEVEL", "info"))

	var rawLogLevel string
	flag.StringVar(&cfg.ServiceURL, "service-url", cfg.ServiceURL, "Base URL of the rolekits CV service")
	flag.StringVar(&cfg.BearerToken, "token", cfg.BearerToken, "Bearer token used for CV service requests")
	flag.StringVar(&rawLogLevel, "log-level", cfg.LogLevel.String(), "Log level: debug|info|warn|error")
	flag.Parse()

	if rawLogLevel != "" {
		cfg.LogLevel = parseLogLevel(rawLogLevel)
	}
	return cfg
}

func (c *config) initLogger() {
	zerolog.SetGlobalLevel(c.LogLevel)
	log.Logger = log.With().Caller().Logger()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(envKey, defaultValue string) time.Duration {
	if value := os.Getenv(envKey); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	d, _ := time.ParseDuration(defaultValue)
	return d
}

func parseLogLevel(levelStr string) zerolog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

type toolRegisterer interface {
	RegisterTools(s *server.MCPServer) error
}

func registerHandler(s *server.MCPServer, handler toolRegisterer, name string) {
	if err := handler.RegisterTools(s); err != nil {
		log.Fatal().Err(err).Msgf("Failed to register %s tools", name)
	}
}

// RunMCPServer starts the agent tool bridge with the given configuration.
func RunMCPServer() error {
	cfg := loadConfig()
	cfg.initLogger()

	// The bridge never talks to storage directly. Tool calls go through
	// the REST API so agent writes are merged, persisted and broadcast
	// by the service exactly like edits from the web UI.
	var cvClient *client.Client
	if cfg.BearerToken == "" {
		log.Warn().Msg("No bearer token configured; CV tools will return errors until one is set")
	} else {
		cvClient = client.New(cfg.ServiceURL, cfg.BearerToken)
		log.Info().Str("service_url", cfg.ServiceURL).Msg("CV service client created")
	}

	s := server.NewMCPServer(
		cfg.ServerName,
		cfg.ServerVersion,
		server.WithToolCapabilities(true),
	)

	registerHandler(s, handlers.NewCVHandler(cvClient), "cv")

	if shouldUseStdio() {
		log.Info().Msg("Starting rolekits MCP server (stdio transport)")
		if err := server.ServeStdio(s); err != nil {
			log.Fatal().Err(err).Msg("Stdio server error")
		}
		return nil
	}

	log.Info().Str("addr", cfg.ListenAddr).Msg("Starting rolekits MCP server (Streamable HTTP)")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	shutdownComplete := make(chan struct{})

	streamSrv := server.NewStreamableHTTPServer(
		s,
		server.WithEndpointPath("/mcp"),
		server.WithHeartbeatInterval(30*time.Second),
	)

	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      streamSrv,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: 0, // no deadline, required for streaming responses
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	go func() {
		defer close(shutdownComplete)

		sig := <-sigChan
		log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Error during HTTP server shutdown")
		}
		if err := streamSrv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Error during MCP server shutdown")
		}
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("HTTP server error")
	}

	<-shutdownComplete
	log.Info().Msg("MCP server shutdown complete")
	return nil
}

// shouldUseStdio determines whether to use stdio transport based on environment
func shouldUseStdio() bool {
	if os.Getenv("MCP_STDIO") == "true" {
		return true
	}
	if os.Getenv("MCP_HTTP") == "true" {
		return false
	}
	// Use stdio when launched by another process (stdin is not a terminal).
	if fileInfo, err := os.Stdin.Stat(); err == nil {
		return (fileInfo.Mode() & os.ModeCharDevice) == 0
	}
	return false
}
