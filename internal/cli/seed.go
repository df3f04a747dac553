package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"outlay/internal/config"
	"outlay/internal/database"
	"outlay/internal/log"
)

// seedFile is the YAML layout read by the seed command:
//
//	expenses:
//	  gum:
//	    description: Gum
//	    amount: 195
//	    createdAt: 0
type seedFile struct {
	Expenses map[string]database.Document `yaml:"expenses"`
}

// LoadSeed reads and validates a seed file.
func LoadSeed(r io.Reader) (map[string]database.Document, error) {
	var f seedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]database.Document{}, nil
		}
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	docs := make(map[string]database.Document, len(f.Expenses))
	for key, doc := range f.Expenses {
		if err := database.ValidateKey(key); err != nil {
			return nil, fmt.Errorf("expense %q: %w", key, err)
		}
		if err := database.ToExpense(key, doc).Validate(); err != nil {
			return nil, fmt.Errorf("expense %q: %w", key, err)
		}
		docs[key] = doc
	}
	return docs, nil
}

func newSeedCommand() *cobra.Command {
	var uid, file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Replace a user's expenses with the ones in a YAML file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := bootstrap(cmd.OutOrStdout(), (*config.Config).ValidateDatabase)
			if err != nil {
				return err
			}
			logger = logger.WithComponent(log.ComponentDatabase)

			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()
			docs, err := LoadSeed(f)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			db, err := OpenDatabase(ctx, logger, cfg)
			if err != nil {
				return err
			}
			defer db.Cleanup()

			if err := db.Database.ReplaceAll(ctx, database.ExpensesPath(uid), docs); err != nil {
				return fmt.Errorf("seed %s: %w", uid, err)
			}
			logger.Info("Seeded expenses", log.FieldUID, uid, "count", len(docs))
			return nil
		},
	}
	cmd.Flags().StringVar(&uid, "uid", "", "user whose collection is replaced")
	cmd.Flags().StringVar(&file, "file", "", "YAML file with the expenses")
	_ = cmd.MarkFlagRequired("uid")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
