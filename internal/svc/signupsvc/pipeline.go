package signupsvc

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mkrupp/homecase-signup/internal/domain"
	context_ "github.com/mkrupp/homecase-signup/internal/infra/context"
	"github.com/mkrupp/homecase-signup/internal/infra/logging"
)

// DefaultDebounce is the quiet period after which an edited value is validated.
const DefaultDebounce = 800 * time.Millisecond

// PipelineConfig contains configuration parameters for the input pipeline.
type PipelineConfig struct {
	// Debounce is the quiet period after the last edit before a field is validated
	Debounce time.Duration `env:"DEBOUNCE" default:"800ms" validate:"gt=0"`

	// SurfaceDatasetErrors reports a failed dataset refresh as the form's general error
	SurfaceDatasetErrors bool `env:"SURFACE_DATASET_ERRORS" default:"false"`
}

// Dispatcher runs state updates on the execution context the UI requires.
// Updates of one field are dispatched in order; a Dispatcher must preserve that order.
//
// Stop waits for updates that are being dispatched. A Dispatcher that blocks
// until the UI goroutine runs the update must therefore not be paired with a
// Stop call made from that same goroutine; queue the update and return instead.
type Dispatcher func(update func())

// InlineDispatcher runs updates on the calling goroutine.
func InlineDispatcher(update func()) {
	update()
}

// PipelineOption configures an InputPipeline.
type PipelineOption func(*InputPipeline)

// WithDispatcher sets the Dispatcher used to deliver state updates.
func WithDispatcher(dispatch Dispatcher) PipelineOption {
	return func(p *InputPipeline) {
		p.dispatch = dispatch
	}
}

// WithObserver registers fn to receive a FormState snapshot after every change.
// Observers run inside the Dispatcher, one notification at a time, and must not
// edit the form themselves.
func WithObserver(fn func(FormState)) PipelineOption {
	return func(p *InputPipeline) {
		p.observers = append(p.observers, fn)
	}
}

// datasetStatus is implemented by validators that load their dataset asynchronously.
type datasetStatus interface {
	Ready() <-chan struct{}
	Err() error
}

// InputPipeline turns username and password edits into debounced validations
// and publishes the resulting field errors.
//
// Each field is handled by its own goroutine: debounce, validate, publish,
// strictly in that order. The two fields are independent of each other.
type InputPipeline struct {
	validator Validator
	cfg       PipelineConfig
	log       logging.Logger
	dispatch  Dispatcher
	observers []func(FormState)

	username *mailbox
	password *mailbox

	notifyMu sync.Mutex
	stateMu  sync.Mutex
	state    FormState

	runMu   sync.Mutex
	started bool
	cancel  context.CancelFunc
	group   *errgroup.Group
}

// NewInputPipeline creates a pipeline validating through validator.
// The pipeline is idle until Start is called.
func NewInputPipeline(validator Validator, cfg PipelineConfig, opts ...PipelineOption) *InputPipeline {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}

	p := &InputPipeline{
		validator: validator,
		cfg:       cfg,
		log:       logging.GetLogger("svc.signupsvc.pipeline"),
		dispatch:  InlineDispatcher,
		username:  newMailbox(),
		password:  newMailbox(),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// SetUsername records an edit of the username field. It never blocks.
func (p *InputPipeline) SetUsername(value string) {
	p.username.Put(value)
	p.update(func(s *FormState) { s.Username = value })
}

// SetPassword records an edit of the password field. It never blocks.
func (p *InputPipeline) SetPassword(value string) {
	p.password.Put(value)
	p.update(func(s *FormState) { s.Password = value })
}

// State returns the current form snapshot.
func (p *InputPipeline) State() FormState {
	p.stateMu.Lock()
	defer p.stateMu.Unlock()

	return p.state
}

// Start begins validating edits until ctx is done or Stop is called.
// Edits made before Start are not validated. Calling Start again is a no-op.
func (p *InputPipeline) Start(ctx context.Context) {
	p.runMu.Lock()
	defer p.runMu.Unlock()

	if p.started {
		return
	}

	p.started = true

	ctx, p.cancel = context.WithCancel(ctx)
	p.group, ctx = errgroup.WithContext(ctx)

	p.username.Drain()
	p.password.Drain()

	p.group.Go(func() error {
		return p.runField(ctx, FieldUsername, p.username, p.validateUsername)
	})
	p.group.Go(func() error {
		return p.runField(ctx, FieldPassword, p.password, p.validatePassword)
	})

	if status, ok := p.validator.(datasetStatus); ok && p.cfg.SurfaceDatasetErrors {
		p.group.Go(func() error {
			return p.watchDataset(ctx, status)
		})
	}

	p.log.DebugContext(ctx, "pipeline started", "debounce", p.cfg.Debounce.String())
}

// Stop cancels both field subscriptions and waits for them to finish.
// No validation is started once Stop returns. Other pipeline methods stay
// usable while Stop waits.
func (p *InputPipeline) Stop() {
	p.runMu.Lock()
	cancel, group := p.cancel, p.group
	p.cancel = nil
	p.runMu.Unlock()

	if cancel == nil {
		return
	}

	cancel()
	_ = group.Wait()

	p.log.Debug("pipeline stopped")
}

func (p *InputPipeline) runField(
	ctx context.Context,
	field string,
	box *mailbox,
	validate func(ctx context.Context, value string),
) error {
	ctx = context_.WithFormField(ctx, field)

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)

	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-box.C():
			if timer != nil {
				timer.Stop()
			}

			timer = time.NewTimer(p.cfg.Debounce)
			fire = timer.C
		case <-fire:
			fire = nil

			if ctx.Err() != nil {
				return nil
			}

			validate(ctx, box.Get())
		}
	}
}

func (p *InputPipeline) validateUsername(ctx context.Context, value string) {
	_, err := p.validator.ValidateUsername(ctx, value)

	var fieldErr domain.UsernameError

	switch {
	case err == nil:
		p.update(func(s *FormState) { s.UsernameError = 0 })
	case errors.As(err, &fieldErr):
		p.update(func(s *FormState) { s.UsernameError = fieldErr })
	default:
		p.log.WarnContext(ctx, "unexpected validation error", "error", err)
	}
}

func (p *InputPipeline) validatePassword(ctx context.Context, value string) {
	_, err := p.validator.ValidatePassword(ctx, value)

	var fieldErr domain.PasswordError

	switch {
	case err == nil:
		p.update(func(s *FormState) { s.PasswordError = 0 })
	case errors.As(err, &fieldErr):
		p.update(func(s *FormState) { s.PasswordError = fieldErr })
	default:
		p.log.WarnContext(ctx, "unexpected validation error", "error", err)
	}
}

func (p *InputPipeline) watchDataset(ctx context.Context, status datasetStatus) error {
	select {
	case <-ctx.Done():
		return nil
	case <-status.Ready():
	}

	if err := status.Err(); err != nil {
		p.update(func(s *FormState) { s.GeneralError = err })
	}

	return nil
}

// update applies fn to the form state and notifies observers, through the dispatcher.
func (p *InputPipeline) update(fn func(s *FormState)) {
	p.dispatch(func() {
		p.notifyMu.Lock()
		defer p.notifyMu.Unlock()

		p.stateMu.Lock()
		fn(&p.state)
		snapshot := p.state
		p.stateMu.Unlock()

		for _, observe := range p.observers {
			observe(snapshot)
		}
	})
}
