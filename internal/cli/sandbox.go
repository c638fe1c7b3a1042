package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"quizctl/internal/config"
	"quizctl/internal/domain"
	"quizctl/internal/logging"
	"quizctl/internal/sandbox"
)

func newSandboxCmd(flags *rootFlags) *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "sandbox",
		Short: "Serve an in-memory quiz service for local use",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Sandbox.Port = port
			}
			return runSandbox(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&port, "port", os.Getenv("PORT"), "port to listen on")
	return cmd
}

func runSandbox(ctx context.Context, cfg config.Config) error {
	logger, err := logging.NewServer(cfg.Log.Level)
	if err != nil {
		return err
	}
	defer logger.Sync()

	opts := sandbox.Options{
		Secret:   cfg.Sandbox.Secret,
		TokenTTL: config.TTLDuration(cfg.Sandbox.TokenTTL, 24*time.Hour),
	}
	if cfg.Sandbox.AdminEmail != "" {
		opts.Admin = &domain.RegisterRequest{
			Name:     "Administrator",
			Email:    cfg.Sandbox.AdminEmail,
			Password: cfg.Sandbox.AdminPassword,
			Role:     domain.RoleAdmin,
		}
	}
	srv, err := sandbox.New(opts, logger)
	if err != nil {
		return err
	}

	gin.SetMode(gin.ReleaseMode)
	server := &http.Server{
		Addr:         ":" + cfg.Sandbox.Port,
		Handler:      srv.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting sandbox quiz service", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Info("shutting down sandbox")
	case <-ctx.Done():
		logger.Info("context canceled, shutting down sandbox")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
