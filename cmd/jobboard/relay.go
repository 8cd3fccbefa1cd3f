package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gartstein/jobboard/internal/jobboard/events"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var relayCmd = &cobra.Command{
	Use:   "relay",
	Short: "Consume pushed notifications from Kafka",
	Long: `Join the relay consumer group on the notification topic and hand every
event to the push handler. Offsets are committed only after the handler
succeeds.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runRelay(cmd.Context())
	},
}

func runRelay(ctx context.Context) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer syncLogger(logger)

	if !cfg.KafkaEnabled() {
		return fmt.Errorf("relay needs KAFKA_BROKERS")
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	consumer := events.NewConsumer(cfg.KafkaBrokers, cfg.RelayGroupID, cfg.Topic, logger)
	consumer.RegisterHandler(events.LogHandler(logger))
	consumer.Start(ctx)
	logger.Info("Relay started",
		zap.Strings("brokers", cfg.KafkaBrokers),
		zap.String("topic", cfg.Topic),
		zap.String("group_id", cfg.RelayGroupID))

	<-ctx.Done()
	<-consumer.Done()
	consumer.Close()
	logger.Info("Relay stopped")
	return nil
}
