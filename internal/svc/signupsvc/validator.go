package signupsvc

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rivo/uniseg"

	"github.com/mkrupp/homecase-signup/internal/domain"
	"github.com/mkrupp/homecase-signup/internal/infra/logging"
	"github.com/mkrupp/homecase-signup/internal/repo/dataset"
)

// Default length bounds, in user-perceived characters (grapheme clusters).
const (
	DefaultMinUsernameLength = 4
	DefaultMaxUsernameLength = 16
	DefaultMinPasswordLength = 8
	DefaultMaxPasswordLength = 32
)

// ValidatorConfig contains the length rules applied before dataset lookups.
type ValidatorConfig struct {
	MinUsernameLength int `env:"MIN_USERNAME_LENGTH" default:"4" validate:"min=1"`
	MaxUsernameLength int `env:"MAX_USERNAME_LENGTH" default:"16" validate:"gtefield=MinUsernameLength"`
	MinPasswordLength int `env:"MIN_PASSWORD_LENGTH" default:"8" validate:"min=1"`
	MaxPasswordLength int `env:"MAX_PASSWORD_LENGTH" default:"32" validate:"gtefield=MinPasswordLength"`
}

// DefaultValidatorConfig returns the standard sign-up rules.
func DefaultValidatorConfig() ValidatorConfig {
	return ValidatorConfig{
		MinUsernameLength: DefaultMinUsernameLength,
		MaxUsernameLength: DefaultMaxUsernameLength,
		MinPasswordLength: DefaultMinPasswordLength,
		MaxPasswordLength: DefaultMaxPasswordLength,
	}
}

// Validator checks sign-up candidates.
// On success the candidate is returned unchanged.
type Validator interface {
	// ValidateUsername returns a domain.UsernameError if username is not acceptable.
	ValidateUsername(ctx context.Context, username string) (string, error)
	// ValidatePassword returns a domain.PasswordError if password is not acceptable.
	ValidatePassword(ctx context.Context, password string) (string, error)
}

// DatasetState describes how far the validator got loading its dataset.
type DatasetState int32

const (
	StateUninitialized DatasetState = iota
	StateLoading
	StateReady
)

func (s DatasetState) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	default:
		return "uninitialized"
	}
}

// CredentialValidator validates usernames and passwords against length rules
// and the best dataset known so far.
//
// It starts on the default dataset and refreshes it once, in the background,
// from its source. A failed refresh is not fatal: the default dataset stays in
// use and the failure is available through Err.
type CredentialValidator struct {
	cfg ValidatorConfig
	log logging.Logger

	dataset atomic.Pointer[domain.ValidationDataset]
	state   atomic.Int32
	ready   chan struct{}

	errMu sync.RWMutex
	err   error
}

var _ Validator = (*CredentialValidator)(nil)

// NewCredentialValidator creates a validator and starts loading its dataset from source.
// Validation is usable immediately; until the load completes the default dataset applies.
// Cancelling ctx abandons the load.
func NewCredentialValidator(ctx context.Context, source dataset.Source, cfg ValidatorConfig) *CredentialValidator {
	v := &CredentialValidator{
		cfg:   cfg,
		log:   logging.GetLogger("svc.signupsvc.validator"),
		ready: make(chan struct{}),
	}

	initial := domain.DefaultValidationDataset()
	v.dataset.Store(&initial)
	v.state.Store(int32(StateLoading))

	go v.refresh(ctx, source)

	return v
}

func (v *CredentialValidator) refresh(ctx context.Context, source dataset.Source) {
	defer func() {
		v.state.Store(int32(StateReady))
		close(v.ready)
	}()

	ds, err := source.Fetch(ctx)
	if err != nil {
		v.errMu.Lock()
		v.err = fmt.Errorf("refresh dataset: %w", err)
		v.errMu.Unlock()

		v.log.WarnContext(ctx, "dataset refresh failed, keeping default dataset", "error", err)

		return
	}

	v.dataset.Store(&ds)

	v.log.DebugContext(ctx, "dataset refreshed", logging.Group("dataset",
		"usernames", len(ds.TakenUsernames()),
		"passwords", len(ds.TakenPasswords()),
		"insecure", len(ds.InsecurePasswords()),
	))
}

// State returns the current dataset state.
func (v *CredentialValidator) State() DatasetState {
	return DatasetState(v.state.Load())
}

// Ready returns a channel closed once the dataset refresh has finished, successfully or not.
func (v *CredentialValidator) Ready() <-chan struct{} {
	return v.ready
}

// WaitReady blocks until the dataset refresh has finished or ctx is done.
func (v *CredentialValidator) WaitReady(ctx context.Context) error {
	select {
	case <-v.ready:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("wait dataset: %w", ctx.Err())
	}
}

// Err returns the dataset refresh failure, if any.
// It is nil while loading and after a successful refresh.
func (v *CredentialValidator) Err() error {
	v.errMu.RLock()
	defer v.errMu.RUnlock()

	return v.err
}

// Dataset returns the dataset currently used for validation.
func (v *CredentialValidator) Dataset() domain.ValidationDataset {
	return *v.dataset.Load()
}

// Rules returns the length rules in use.
func (v *CredentialValidator) Rules() ValidatorConfig {
	return v.cfg
}

// ValidateUsername implements Validator.ValidateUsername.
// Checks, first failure wins: too short, too long, already taken (ignoring case).
func (v *CredentialValidator) ValidateUsername(ctx context.Context, username string) (string, error) {
	ds := v.dataset.Load()

	err := func() error {
		switch n := uniseg.GraphemeClusterCount(username); {
		case n < v.cfg.MinUsernameLength:
			return domain.UsernameTooShort
		case n > v.cfg.MaxUsernameLength:
			return domain.UsernameTooLong
		case ds.IsUsernameTaken(username):
			return domain.UsernameAlreadyExists
		default:
			return nil
		}
	}()

	v.logResult(ctx, "username", err)

	if err != nil {
		return "", err
	}

	return username, nil
}

// ValidatePassword implements Validator.ValidatePassword.
// Checks, first failure wins: too short, too long, already taken, insecure (both ignoring case).
func (v *CredentialValidator) ValidatePassword(ctx context.Context, password string) (string, error) {
	ds := v.dataset.Load()

	err := func() error {
		switch n := uniseg.GraphemeClusterCount(password); {
		case n < v.cfg.MinPasswordLength:
			return domain.PasswordTooShort
		case n > v.cfg.MaxPasswordLength:
			return domain.PasswordTooLong
		case ds.IsPasswordTaken(password):
			return domain.PasswordAlreadyExists
		case ds.IsPasswordInsecure(password):
			return domain.PasswordInsecure
		default:
			return nil
		}
	}()

	v.logResult(ctx, "password", err)

	if err != nil {
		return "", err
	}

	return password, nil
}

// logResult never logs the candidate itself.
func (v *CredentialValidator) logResult(ctx context.Context, field string, err error) {
	if err != nil {
		var coder interface{ Code() string }
		if errors.As(err, &coder) {
			v.log.DebugContext(ctx, "candidate rejected", "field", field, "reason", coder.Code())
		}

		return
	}

	v.log.DebugContext(ctx, "candidate accepted", "field", field, "state", v.State().String())
}
