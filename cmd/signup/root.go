package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mkrupp/homecase-signup/internal/infra/config"
	"github.com/mkrupp/homecase-signup/internal/infra/logging"
	"github.com/mkrupp/homecase-signup/internal/repo/dataset"
	"github.com/mkrupp/homecase-signup/internal/svc/signupsvc"
)

const appName = "signup"

// Config is shared by all subcommands. Variables are looked up as
// SIGNUP_<COMMAND>_<NAME>, then SIGNUP_<NAME>.
type Config struct {
	config.EnvConfig

	Log       logging.LoggerConfig          `envPrefix:"LOG_"`
	Dataset   dataset.Config                `envPrefix:"DATASET_"`
	Validator signupsvc.ValidatorConfig     `envPrefix:"VALIDATOR_"`
	Pipeline  signupsvc.PipelineConfig      `envPrefix:"PIPELINE_"`
	HTTP      signupsvc.HTTPTransportConfig `envPrefix:"HTTP_"`
}

// Global flags available to all subcommands.
var envFile string

// NewRootCmd creates the root command of the signup CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   appName,
		Short: "Validate sign-up credentials",
		Long: `signup checks usernames and passwords against length rules and a
remote dataset of taken and insecure credentials.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newCheckCmd())
	cmd.AddCommand(newFormCmd())
	cmd.AddCommand(newDatasetCmd())

	return cmd
}

// loadConfig reads the configuration of the named subcommand and configures logging.
func loadConfig(ctx context.Context, cmdName string) (Config, error) {
	var (
		cfg Config

		configPrefix = strings.ToUpper(strings.Join([]string{appName, cmdName}, "_"))
		loggerName   = strings.ToLower(strings.Join([]string{appName, cmdName}, "."))
	)

	if err := config.Load(ctx, &cfg, configPrefix, envFile); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}

	logging.Configure(ctx, cfg.Log, loggerName)

	return cfg, nil
}

// newSource creates the configured dataset source.
// The returned close function releases it and is never nil.
func newSource(cfg dataset.Config) (dataset.Source, func(), error) {
	factory, err := dataset.NewSourceFactory(cfg, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("new source factory: %w", err)
	}

	src, err := factory()
	if err != nil {
		return nil, nil, fmt.Errorf("new source: %w", err)
	}

	closeFn := func() {
		if closer, ok := src.(io.Closer); ok {
			_ = closer.Close()
		}
	}

	return src, closeFn, nil
}
