package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mkrupp/homecase-signup/internal/infra/logging"
	"github.com/mkrupp/homecase-signup/internal/infra/transport/http"
	"github.com/mkrupp/homecase-signup/internal/svc/signupsvc"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the validation endpoints over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, err := loadConfig(ctx, "serve")
			if err != nil {
				return err
			}

			return runServe(ctx, cfg)
		},
	}
}

func runServe(ctx context.Context, cfg Config) (err error) {
	log := logging.GetLogger("cmd.signup.serve")

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "error", "err", err)
		} else {
			log.InfoContext(ctx, "shutdown")
		}
	}()

	src, closeSource, err := newSource(cfg.Dataset)
	if err != nil {
		return err
	}
	defer closeSource()

	validator := signupsvc.NewCredentialValidator(ctx, src, cfg.Validator)
	httpTransport := signupsvc.NewHTTPTransport(validator, cfg.HTTP)

	if err := http.ListenAndServe(ctx, httpTransport, cfg.HTTP.HTTPTransportConfig); err != nil {
		return fmt.Errorf("listen and serve: %w", err)
	}

	return nil
}
