package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	context_ "github.com/mkrupp/homecase-signup/internal/infra/context"
	"github.com/mkrupp/homecase-signup/internal/infra/logging"
	http_ "github.com/mkrupp/homecase-signup/internal/infra/transport/http"
	"github.com/mkrupp/homecase-signup/internal/svc/signupsvc"
)

func newFormCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "form",
		Short: "Fill in the sign-up form interactively",
		Long: `form reads edits from stdin, one per line:

  username <text>   set the username field
  password <text>   set the password field
  submit            report whether the form can be submitted
  quit              leave the form

Field errors are printed as soon as a field has been validated.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := context_.WithTraceID(cmd.Context(), http_.NewTraceID())

			cfg, err := loadConfig(ctx, "form")
			if err != nil {
				return err
			}

			src, closeSource, err := newSource(cfg.Dataset)
			if err != nil {
				return err
			}
			defer closeSource()

			validator := signupsvc.NewCredentialValidator(ctx, src, cfg.Validator)

			return runForm(ctx, validator, cfg.Pipeline, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

// formPrinter reports field errors whenever they change.
type formPrinter struct {
	mu   sync.Mutex
	out  io.Writer
	last signupsvc.FormState
}

func (fp *formPrinter) observe(s signupsvc.FormState) {
	fp.mu.Lock()
	defer fp.mu.Unlock()

	if s.UsernameError != fp.last.UsernameError {
		fp.printField(signupsvc.FieldUsername, s.UsernameError, s.HasUsernameError())
	}

	if s.PasswordError != fp.last.PasswordError {
		fp.printField(signupsvc.FieldPassword, s.PasswordError, s.HasPasswordError())
	}

	if s.GeneralError != nil && fp.last.GeneralError == nil {
		fmt.Fprintf(fp.out, "error: %v\n", s.GeneralError)
	}

	fp.last = s
}

func (fp *formPrinter) printField(field string, fieldErr error, failed bool) {
	if failed {
		fmt.Fprintf(fp.out, "%s: %v\n", field, fieldErr)
	} else {
		fmt.Fprintf(fp.out, "%s: ok\n", field)
	}
}

func (fp *formPrinter) printf(format string, args ...any) {
	fp.mu.Lock()
	defer fp.mu.Unlock()

	fmt.Fprintf(fp.out, format, args...)
}

func runForm(
	ctx context.Context,
	validator signupsvc.Validator,
	cfg signupsvc.PipelineConfig,
	in io.Reader,
	out io.Writer,
) (err error) {
	log := logging.GetLogger("cmd.signup.form")

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "error", "err", err)
		} else {
			log.DebugContext(ctx, "form closed")
		}
	}()

	printer := &formPrinter{out: out}

	pipeline := signupsvc.NewInputPipeline(validator, cfg, signupsvc.WithObserver(printer.observe))
	pipeline.Start(ctx)
	defer pipeline.Stop()

	scanner := bufio.NewScanner(in)

	for scanner.Scan() {
		command, value, _ := strings.Cut(strings.TrimSpace(scanner.Text()), " ")

		switch command {
		case "":
		case signupsvc.FieldUsername:
			pipeline.SetUsername(value)
		case signupsvc.FieldPassword:
			pipeline.SetPassword(value)
		case "submit":
			if state := pipeline.State(); state.CanSubmit() {
				printer.printf("form can be submitted for %q\n", state.Username)
			} else {
				printer.printf("form cannot be submitted\n")
			}
		case "quit":
			return nil
		default:
			printer.printf("unknown command %q\n", command)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	return nil
}
