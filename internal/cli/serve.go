package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"outlay/internal/amqp"
	"outlay/internal/auth"
	"outlay/internal/cache"
	"outlay/internal/config"
	apphttp "outlay/internal/http"
	"outlay/internal/log"
)

const (
	shutdownTimeout = 30 * time.Second
	cleanupInterval = time.Minute
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := bootstrap(cmd.OutOrStdout(), (*config.Config).Validate)
			if err != nil {
				return err
			}
			ctx, stop := signalContext(cmd.Context())
			defer stop()
			return serve(ctx, cfg, logger)
		},
	}
}

// newProvider returns the auth provider named by the configuration.
func newProvider(cfg *config.Config) (auth.Provider, error) {
	switch cfg.AuthProvider {
	case "google":
		return auth.NewGoogle(auth.GoogleConfig{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.OAuthRedirectURL,
		}), nil
	case "dev":
		return auth.NewDev(cfg.DevUID), nil
	default:
		return nil, fmt.Errorf("unknown auth provider %q", cfg.AuthProvider)
	}
}

// serve runs the HTTP server, and the AMQP bridge when configured, until ctx
// is done or one of them fails.
func serve(ctx context.Context, cfg *config.Config, logger *log.Logger) error {
	logger = logger.WithComponent(log.ComponentApp)

	db, err := OpenDatabase(ctx, logger, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Cleanup(); err != nil {
			logger.Error("Failed to close database", log.FieldError, err)
		}
	}()

	provider, err := newProvider(cfg)
	if err != nil {
		return err
	}

	sessions := auth.NewSessions(cfg.SessionMax, cfg.SessionTTL)
	caches := cache.NewManager(logger)
	caches.Register(sessions.Cleaners()...)
	caches.StartCleanup(cleanupInterval)
	defer caches.Stop()

	srv, err := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		DB:                 db.Database,
		Sessions:           sessions,
		Provider:           provider,
		Logger:             logger,
		CookieSecure:       cfg.CookieSecure,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})
	if err != nil {
		return fmt.Errorf("create http server: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			return fmt.Errorf("connect to amqp: %w", err)
		}
		defer client.Close()

		bridge := amqp.NewBridge(client, db.Hub)
		bridge.Attach()
		logger.Info("AMQP bridge attached",
			"exchange", cfg.AMQPExchange,
			"origin", bridge.Origin())
		g.Go(func() error {
			if err := bridge.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("amqp bridge: %w", err)
			}
			return nil
		})
	} else {
		logger.Info("AMQP_URL not set, running single-instance")
	}

	g.Go(func() error {
		logger.Info("Starting HTTP server",
			log.FieldOperation, log.OpStartup,
			"addr", srv.Addr,
			"backend", cfg.DataBackend,
			log.FieldProvider, provider.Name())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down", log.FieldOperation, log.OpShutdown)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server stopped with error", log.FieldError, err)
		return err
	}
	logger.Info("Shutdown complete")
	return nil
}
