// Package main runs a small web app that walks an operator through one OAuth2
// authorization code flow and shows the resulting tokens.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/go-training/oauth-playground/pkg/core"
	"github.com/go-training/oauth-playground/pkg/logger"
	"github.com/go-training/oauth-playground/pkg/oauthflow"
	"github.com/go-training/oauth-playground/pkg/operation"
	"github.com/go-training/oauth-playground/pkg/store"

	"github.com/appleboy/graceful"
	"github.com/gin-gonic/gin"
	"github.com/mark3labs/mcp-go/server"
)

const version = "1.0.0"

// newMCPServer exposes the flow helpers as MCP tools over streamable HTTP.
func newMCPServer(provider oauthflow.Provider) *server.StreamableHTTPServer {
	mcpServer := server.NewMCPServer(
		"oauth-playground",
		version,
		server.WithToolCapabilities(true),
		server.WithLogging(),
		server.WithRecovery(),
	)
	operation.RegisterFlowTools(mcpServer, provider)

	return server.NewStreamableHTTPServer(mcpServer,
		server.WithHeartbeatInterval(30*time.Second),
		server.WithHTTPContextFunc(func(ctx context.Context, r *http.Request) context.Context {
			return core.WithRequestID(ctx)
		}),
	)
}

func main() {
	cfg, err := parseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Invalid flags", "error", err)
		os.Exit(2)
	}

	// Initialize logger with the specified log level
	logger.NewWithLevel(cfg.logLevel)
	if os.Getenv("ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	flowStore, err := store.NewStore(cfg.storeConfig())
	if err != nil {
		slog.Error("Failed to create store", "type", cfg.storeType, "error", err)
		os.Exit(1)
	}
	switch s := flowStore.(type) {
	case *store.MemoryStore:
		slog.Info("Using in-memory store", "ttl", cfg.credentialTTL)
		defer s.Close()
	case *store.RedisStore:
		slog.Info("Using Redis store", "addr", cfg.redisAddr, "db", cfg.redisDB, "ttl", cfg.credentialTTL)
		defer s.Close()
	}

	provider := cfg.provider()
	slog.Info("Using OAuth provider", "auth_url", provider.AuthURL, "token_url", provider.TokenURL)

	a := &app{
		store:        flowStore,
		builder:      oauthflow.NewBuilder(provider),
		exchange:     oauthflow.NewHandler(provider, &http.Client{Timeout: cfg.exchangeTimeout}),
		baseURL:      cfg.baseURL,
		cookieMaxAge: int(cfg.credentialTTL.Seconds()),
	}

	srv := &http.Server{
		Addr:         cfg.addr,
		Handler:      newRouter(a, newMCPServer(provider)),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.exchangeTimeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ln, err := net.Listen("tcp", cfg.addr)
	if err != nil {
		slog.Error("Failed to listen", "addr", cfg.addr, "error", err)
		os.Exit(1)
	}
	slog.Info("OAuth playground listening", "addr", ln.Addr().String())

	m := graceful.NewManager()
	m.AddRunningJob(func(ctx context.Context) error {
		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.Serve(ln)
		}()
		select {
		case <-ctx.Done():
			return nil
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			slog.Error("Server error", "error", err)
			return err
		}
	})
	m.AddShutdownJob(func() error {
		slog.Info("Shutdown signal received, shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			slog.Error("Server forced to shutdown", "error", err)
			return err
		}
		slog.Info("Server shutdown gracefully")
		return nil
	})

	<-m.Done()
}
