package signupsvc

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/mkrupp/homecase-signup/internal/domain"
	"github.com/mkrupp/homecase-signup/internal/infra/logging"
	http_ "github.com/mkrupp/homecase-signup/internal/infra/transport/http"
)

// ErrNoValue is returned when the candidate value is missing from the request.
var ErrNoValue = errors.New("no value")

// HTTPTransportConfig contains configuration parameters for the HTTP transport layer.
type HTTPTransportConfig struct {
	http_.HTTPTransportConfig
}

// HTTPTransport exposes the credential validator over HTTP.
type HTTPTransport struct {
	validator *CredentialValidator
	log       logging.Logger
	cfg       HTTPTransportConfig
	mux       *http.ServeMux
}

var _ http_.HTTPTransport = (*HTTPTransport)(nil)

// NewHTTPTransport creates a new HTTPTransport instance with the given configuration.
func NewHTTPTransport(validator *CredentialValidator, cfg HTTPTransportConfig) *HTTPTransport {
	ht := &HTTPTransport{
		validator: validator,
		log:       logging.GetLogger("svc.signupsvc.http_transport"),
		cfg:       cfg,
		mux:       http.NewServeMux(),
	}

	ht.mux.HandleFunc("POST /signup/validate/username", ht.HandleValidateUsername)
	ht.mux.HandleFunc("POST /signup/validate/password", ht.HandleValidatePassword)
	ht.mux.HandleFunc("GET /signup/dataset", ht.HandleDatasetStatus)

	return ht
}

// ServeHTTP implements http.Handler with the sign-up endpoints:
// - POST /signup/validate/username: validate the form value "value" as a username
// - POST /signup/validate/password: validate the form value "value" as a password
// - GET /signup/dataset: report the dataset state.
func (ht *HTTPTransport) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ht.mux.ServeHTTP(w, r)
}

// HandleValidateUsername validates a username candidate.
// Answers 200 when valid and 422 with the failure code otherwise.
func (ht *HTTPTransport) HandleValidateUsername(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleValidate(w, r, FieldUsername, ht.validator.ValidateUsername)
}

// HandleValidatePassword validates a password candidate.
// Answers 200 when valid and 422 with the failure code otherwise.
func (ht *HTTPTransport) HandleValidatePassword(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleValidate(w, r, FieldPassword, ht.validator.ValidatePassword)
}

func (ht *HTTPTransport) handleValidate(
	w http.ResponseWriter,
	r *http.Request,
	field string,
	validate func(ctx context.Context, value string) (string, error),
) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "validate "+field+" failed", "error", err)
		} else {
			log.DebugContext(ctx, field+" validated")
		}
	}(r.Context())

	// Parse form
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)

		return fmt.Errorf("parse form: %w", err)
	}

	if !r.Form.Has("value") {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)

		return ErrNoValue
	}

	value := r.FormValue("value")

	// Validate candidate
	resp := domain.ValidationResponse{Field: field}
	status := http.StatusOK

	validated, verr := validate(r.Context(), value)

	var coder interface{ Code() string }

	switch {
	case verr == nil:
		resp.Valid = true
		resp.Value = validated
	case errors.As(verr, &coder):
		resp.Code = coder.Code()
		resp.Message = verr.Error()
		status = http.StatusUnprocessableEntity
	default:
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)

		return fmt.Errorf("validate: %w", verr)
	}

	return writeJSON(w, status, resp)
}

// HandleDatasetStatus reports the state and size of the dataset in use.
func (ht *HTTPTransport) HandleDatasetStatus(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleDatasetStatus(w, r)
}

func (ht *HTTPTransport) handleDatasetStatus(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "dataset status failed", "error", err)
		}
	}(r.Context())

	ds := ht.validator.Dataset()
	resp := domain.DatasetStatusResponse{
		State:             ht.validator.State().String(),
		TakenUsernames:    len(ds.TakenUsernames()),
		TakenPasswords:    len(ds.TakenPasswords()),
		InsecurePasswords: len(ds.InsecurePasswords()),
	}

	if err := ht.validator.Err(); err != nil {
		resp.Error = err.Error()
	}

	return writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		return fmt.Errorf("encode response: %w", err)
	}

	return nil
}
