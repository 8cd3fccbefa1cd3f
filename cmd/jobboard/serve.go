package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gartstein/jobboard/internal/jobboard/auth"
	"github.com/gartstein/jobboard/internal/jobboard/config"
	"github.com/gartstein/jobboard/internal/jobboard/controller"
	"github.com/gartstein/jobboard/internal/jobboard/db"
	"github.com/gartstein/jobboard/internal/jobboard/events"
	"github.com/gartstein/jobboard/internal/jobboard/handlers"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

var skipMigrate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and gRPC health server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "Do not migrate the schema on startup")
}

func runServe(ctx context.Context) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer syncLogger(logger)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, err := connectDatabase(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeDatabase(repo, logger)

	if !skipMigrate {
		if err := repo.Migrate(ctx); err != nil {
			return err
		}
	}

	dispatcher, closeDispatcher, err := startDispatcher(ctx, cfg, repo, logger)
	if err != nil {
		return err
	}
	defer closeDispatcher()

	handler := handlers.NewHandler(handlers.Services{
		Applications:  controller.NewApplicationService(repo, dispatcher, logger),
		Notifications: controller.NewNotificationService(repo, dispatcher, logger),
		Profiles:      controller.NewProfileService(repo, logger),
		Offers:        controller.NewOfferService(repo, logger),
		Requests:      controller.NewRequestService(repo, logger),
		Health:        repo,
	}, logger)

	authInterceptor := auth.NewAuthInterceptor(cfg.JWTSecret)
	server := handlers.NewServer(cfg.GRPCPort, cfg.HTTPPort, logger, grpc.UnaryInterceptor(authInterceptor.Unary()))
	if err := server.RegisterHTTPGateway(handler, cfg.JWTSecret, cfg.RequestTimeout); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("Server failed", zap.Error(err))
			server.Stop()
			return err
		}
	case <-ctx.Done():
		server.Stop()
	}
	logger.Info("Servers stopped properly")
	return nil
}

// startDispatcher wires the notification outbox to Kafka. Without brokers
// no dispatcher runs and notifications are only served from the database.
func startDispatcher(ctx context.Context, cfg *config.Config, repo *db.Repository, logger *zap.Logger) (controller.EventDispatcher, func(), error) {
	if !cfg.KafkaEnabled() {
		logger.Info("Kafka disabled, notifications are not pushed")
		return nil, func() {}, nil
	}

	producer, err := events.NewKafkaProducer(cfg.Producer(), logger)
	if err != nil {
		return nil, nil, err
	}

	dispatcher := events.NewDispatcher(repo, producer, cfg.DispatchInterval, cfg.DispatchBatchSize, logger)
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		dispatcher.Run(runCtx)
	}()
	// Pick up notifications committed before the last shutdown.
	dispatcher.Wake()

	return dispatcher, func() {
		cancel()
		<-done
		producer.Close()
	}, nil
}
