package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/mkrupp/homecase-signup/internal/infra/logging"
	"github.com/mkrupp/homecase-signup/internal/svc/signupsvc"
)

// ErrInvalidCredentials is returned by check when a value fails validation.
var ErrInvalidCredentials = errors.New("invalid credentials")

type checkConfig struct {
	username    string
	password    string
	waitTimeout time.Duration
}

func newCheckCmd() *cobra.Command {
	var checkCfg checkConfig

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate a username and password once",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("username") && !cmd.Flags().Changed("password") {
				return errors.New("at least one of --username or --password is required")
			}

			ctx := cmd.Context()

			cfg, err := loadConfig(ctx, "check")
			if err != nil {
				return err
			}

			src, closeSource, err := newSource(cfg.Dataset)
			if err != nil {
				return err
			}
			defer closeSource()

			validator := signupsvc.NewCredentialValidator(ctx, src, cfg.Validator)

			waitCtx, cancel := context.WithTimeout(ctx, checkCfg.waitTimeout)
			defer cancel()

			if err := validator.WaitReady(waitCtx); err != nil {
				return fmt.Errorf("wait for dataset: %w", err)
			}

			return runCheck(ctx, validator, checkCfg, cmd.Flags().Changed("username"),
				cmd.Flags().Changed("password"), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&checkCfg.username, "username", "", "username to validate")
	cmd.Flags().StringVar(&checkCfg.password, "password", "", "password to validate")
	cmd.Flags().DurationVar(&checkCfg.waitTimeout, "wait", 10*time.Second, "how long to wait for the dataset")

	return cmd
}

func runCheck(
	ctx context.Context,
	validator signupsvc.Validator,
	checkCfg checkConfig,
	checkUsername, checkPassword bool,
	out io.Writer,
) error {
	log := logging.GetLogger("cmd.signup.check")

	var failed bool

	report := func(field string, err error) {
		if err != nil {
			failed = true

			fmt.Fprintf(out, "%s: %v\n", field, err)

			return
		}

		fmt.Fprintf(out, "%s: ok\n", field)
	}

	if checkUsername {
		_, err := validator.ValidateUsername(ctx, checkCfg.username)
		report(signupsvc.FieldUsername, err)
	}

	if checkPassword {
		_, err := validator.ValidatePassword(ctx, checkCfg.password)
		report(signupsvc.FieldPassword, err)
	}

	if failed {
		log.DebugContext(ctx, "check failed")
		return ErrInvalidCredentials
	}

	return nil
}
