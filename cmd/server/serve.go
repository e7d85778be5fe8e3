package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-tenant-auth/auth"
	"github.com/jrsteele09/go-tenant-auth/internal/config"
	"github.com/jrsteele09/go-tenant-auth/internal/logging"
	"github.com/jrsteele09/go-tenant-auth/internal/metrics"
	"github.com/jrsteele09/go-tenant-auth/server"
	"github.com/jrsteele09/go-tenant-auth/token"
	"github.com/jrsteele09/go-tenant-auth/token/refresh"
	"github.com/jrsteele09/go-tenant-auth/users"
	"github.com/jrsteele09/go-tenant-auth/users/directoryfake"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type adminOptions struct {
	tenantID int64
	password string
}

func newServeCmd(loadConfig configLoader) *cobra.Command {
	admin := adminOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := loadConfig()
			if err != nil {
				return err
			}
			return run(cmd.Context(), c, admin)
		},
	}
	cmd.Flags().Int64Var(&admin.tenantID, "admin-tenant", 1, "tenant the bootstrap admin belongs to")
	cmd.Flags().StringVar(&admin.password, "admin-password", config.GetEnv("ADMIN_PASSWORD", ""), "bootstrap admin password, generated when empty (env ADMIN_PASSWORD)")
	return cmd
}

func run(ctx context.Context, c config.Config, admin adminOptions) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	logger := logging.Setup(c, os.Stderr)
	displayAppname(c.GetAppName())

	repo, closeRepo, err := openRefreshRepo(ctx, c, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeRepo(); err != nil {
			logger.Err(err).Msg("failed to close refresh token store")
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder, err := metrics.New(registry)
	if err != nil {
		return err
	}

	tokens, err := newTokenService(c, repo, logger, recorder)
	if err != nil {
		return err
	}

	directory := directoryfake.NewFakeDirectory()
	generated, err := users.BootstrapAdmin(ctx, directory, admin.tenantID, admin.password)
	if err != nil {
		return err
	}
	if generated != "" {
		logger.Warn().
			Str("username", users.DefaultAdminUsername).
			Str("password", generated).
			Int64("tenant_id", admin.tenantID).
			Msg("bootstrap admin created, this password will not be displayed again")
	}

	handler, err := server.New(c, tokens, directory, server.WithLogger(logger), server.WithMetrics(recorder))
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              c.GetPort(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- listenAndServe(httpServer, logger)
	}()

	if err := waitForStopSignal(serverErr); err != nil {
		return err
	}
	returnError = shutdown(httpServer)
	logger.Info().Msg("Server stopped")
	return returnError
}

func newCodec(c config.JWTConfig) (*token.Codec, error) {
	signer, err := token.NewHMACSigner(c.GetSecret())
	if err != nil {
		return nil, fmt.Errorf("JWT_SECRET: %w", err)
	}
	return token.NewCodec(signer, token.WithLeeway(c.GetLeeway())), nil
}

func newTokenService(c config.JWTConfig, repo refresh.Repo, logger zerolog.Logger, recorder *metrics.Recorder) (*auth.TokenService, error) {
	codec, err := newCodec(c)
	if err != nil {
		return nil, err
	}
	store, err := refresh.NewStore(repo)
	if err != nil {
		return nil, err
	}
	return auth.NewTokenService(codec, store,
		auth.WithTokenExpiry(c.GetAccessTokenExpiry(), c.GetRefreshTokenExpiry()),
		auth.WithLogger(logger),
		auth.WithMetrics(recorder),
		auth.WithRevokedTokens(token.NewRevocationCache(time.Minute, nil)),
	)
}

func listenAndServe(server *http.Server, logger zerolog.Logger) error {
	logger.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

// waitForStopSignal blocks until SIGINT/SIGTERM or the server fails to start
func waitForStopSignal(serverErr <-chan error) error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case <-stop:
		return nil
	case err := <-serverErr:
		return err
	}
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
