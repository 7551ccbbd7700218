package dataset

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/mkrupp/homecase-signup/internal/domain"
	context_ "github.com/mkrupp/homecase-signup/internal/infra/context"
	"github.com/mkrupp/homecase-signup/internal/infra/logging"
)

// TraceIDHeader carries the caller's trace ID to the dataset endpoint.
const TraceIDHeader = "X-Request-ID"

// ErrUnexpectedStatus is returned when the dataset endpoint answers with a non-2xx status.
var ErrUnexpectedStatus = errors.New("unexpected status")

// HTTPSourceConfig holds configuration for the remote dataset source.
type HTTPSourceConfig struct {
	// URL is the endpoint serving the dataset document
	URL string `env:"URL" default:"https://pastebin.com/raw/ZAYJS8zh" validate:"required,url"`
}

// HTTPSource fetches the dataset with a single GET request.
// It neither retries nor caches; timeouts are those of the underlying client.
type HTTPSource struct {
	httpClient *http.Client
	log        logging.Logger
	cfg        HTTPSourceConfig
}

var _ Source = (*HTTPSource)(nil)

// HTTPSourceFactory creates a factory function that returns a new HTTPSource.
func HTTPSourceFactory(cfg HTTPSourceConfig, httpClient *http.Client) SourceFactory {
	return func() (Source, error) {
		return NewHTTPSource(cfg, httpClient), nil
	}
}

// NewHTTPSource creates a new HTTPSource with the given configuration.
// If httpClient is nil, http.DefaultClient will be used.
func NewHTTPSource(cfg HTTPSourceConfig, httpClient *http.Client) *HTTPSource {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &HTTPSource{
		httpClient: httpClient,
		log:        logging.GetLogger("repo.dataset.http_source").With(logging.Group("http", "url", cfg.URL)),
		cfg:        cfg,
	}
}

// Fetch implements Source.Fetch.
// Transport failures and non-2xx answers wrap domain.ErrRequestFailed,
// undecodable bodies wrap domain.ErrParsingFailed.
func (s *HTTPSource) Fetch(ctx context.Context) (ds domain.ValidationDataset, err error) {
	log := s.log

	defer func() {
		switch {
		case errors.Is(err, domain.ErrParsingFailed):
			log.WarnContext(ctx, "dataset parsing failed", "error", err)
		case err != nil:
			log.WarnContext(ctx, "dataset request failed", "error", err)
		default:
			log.DebugContext(ctx, "dataset fetched", logging.Group("dataset",
				"usernames", len(ds.TakenUsernames()),
				"passwords", len(ds.TakenPasswords()),
				"insecure", len(ds.InsecurePasswords()),
			))
		}
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.URL, nil)
	if err != nil {
		return domain.ValidationDataset{}, errors.Join(domain.ErrRequestFailed, fmt.Errorf("new request: %w", err))
	}

	req.Header.Set("Accept", "application/json")

	if traceID, ok := context_.TraceIDFromContext(ctx); ok {
		req.Header.Set(TraceIDHeader, traceID)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return domain.ValidationDataset{}, errors.Join(domain.ErrRequestFailed, fmt.Errorf("get: %w", err))
	}
	defer resp.Body.Close()

	log = log.With(logging.Group("http", "status", resp.StatusCode))

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return domain.ValidationDataset{}, errors.Join(domain.ErrRequestFailed, fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status))
	}

	ds, err = Decode(resp.Body)
	if err != nil {
		return domain.ValidationDataset{}, fmt.Errorf("read body: %w", err)
	}

	return ds, nil
}
