package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"outlay/internal/amqp"
	"outlay/internal/config"
	"outlay/internal/log"
	"outlay/internal/sheets/google"
	"outlay/internal/worker"
)

func newMirrorCommand() *cobra.Command {
	var syncUIDs []string
	cmd := &cobra.Command{
		Use:   "mirror",
		Short: "Copy every changed expense collection to Google Sheets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := bootstrap(cmd.OutOrStdout(), (*config.Config).ValidateMirror)
			if err != nil {
				return err
			}
			ctx, stop := signalContext(cmd.Context())
			defer stop()
			return runMirror(ctx, cfg, logger, syncUIDs)
		},
	}
	cmd.Flags().StringSliceVar(&syncUIDs, "sync", nil, "users to mirror once at startup, before waiting for changes")
	return cmd
}

func runMirror(ctx context.Context, cfg *config.Config, logger *log.Logger, syncUIDs []string) error {
	logger = logger.WithComponent(log.ComponentWorker)

	db, err := OpenDatabase(ctx, logger, cfg)
	if err != nil {
		return err
	}
	defer db.Cleanup()

	sheet, err := google.New(ctx, google.Config{
		SpreadsheetID:      cfg.GoogleSpreadsheetID,
		ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
		ServiceAccountFile: cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		return fmt.Errorf("create sheets client: %w", err)
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange)
	if err != nil {
		return fmt.Errorf("connect to amqp: %w", err)
	}
	defer client.Close()

	w := worker.NewMirrorWorker(db.Database, sheet, cfg.AMQPMirrorQueue)
	for _, uid := range syncUIDs {
		if err := w.Sync(ctx, uid); err != nil {
			return fmt.Errorf("initial sync of %s: %w", uid, err)
		}
		logger.Info("Initial sync complete", log.FieldUID, uid)
	}

	return w.Run(ctx, client)
}
