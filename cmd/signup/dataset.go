package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mkrupp/homecase-signup/internal/infra/logging"
	"github.com/mkrupp/homecase-signup/internal/repo/dataset"
)

func newDatasetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dataset",
		Short: "Inspect and maintain the validation dataset",
	}

	cmd.AddCommand(newDatasetShowCmd())
	cmd.AddCommand(newDatasetImportCmd())

	return cmd
}

func newDatasetShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Fetch the configured dataset and print it as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig(ctx, "dataset")
			if err != nil {
				return err
			}

			src, closeSource, err := newSource(cfg.Dataset)
			if err != nil {
				return err
			}
			defer closeSource()

			return runDatasetShow(ctx, src, cmd.OutOrStdout())
		},
	}
}

func runDatasetShow(ctx context.Context, src dataset.Source, out io.Writer) error {
	ds, err := src.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("fetch dataset: %w", err)
	}

	if err := dataset.Encode(out, ds); err != nil {
		return fmt.Errorf("encode dataset: %w", err)
	}

	return nil
}

func newDatasetImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.json>",
		Short: "Replace the SQLite dataset with the contents of a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig(ctx, "dataset")
			if err != nil {
				return err
			}

			store, err := dataset.NewSQLiteSource(cfg.Dataset.SQLite)
			if err != nil {
				return fmt.Errorf("open dataset store: %w", err)
			}
			defer store.Close()

			return runDatasetImport(ctx, dataset.NewFileSource(dataset.FileSourceConfig{Path: args[0]}), store, cmd.OutOrStdout())
		},
	}
}

func runDatasetImport(ctx context.Context, src dataset.Source, store *dataset.SQLiteSource, out io.Writer) (err error) {
	log := logging.GetLogger("cmd.signup.dataset")

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "import failed", "err", err)
		} else {
			log.DebugContext(ctx, "import done")
		}
	}()

	ds, err := src.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("read dataset: %w", err)
	}

	if err := store.Replace(ctx, ds); err != nil {
		return fmt.Errorf("replace dataset: %w", err)
	}

	fmt.Fprintf(out, "imported %d usernames, %d passwords, %d insecure passwords\n",
		len(ds.TakenUsernames()), len(ds.TakenPasswords()), len(ds.InsecurePasswords()))

	return nil
}
