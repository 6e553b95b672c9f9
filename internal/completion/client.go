package completion

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/NikitaCOEUR/snipcomplete/internal/cerrors"
	"github.com/NikitaCOEUR/snipcomplete/internal/logger"
	"github.com/NikitaCOEUR/snipcomplete/internal/timing"
)

const (
	// DefaultTimeout bounds a single suggestion request
	DefaultTimeout = 5 * time.Second
	// MaxResponseSize caps the body read from a suggestion endpoint (1MB)
	MaxResponseSize = 1024 * 1024
	// RequestIDHeader carries the widget's correlation id
	RequestIDHeader = "X-Request-ID"
)

// Options configures a provider. It is copied at construction.
type Options struct {
	Endpoint   string         // Absolute URL or path resolved against BaseURL
	MinLength  int            // Minimum term length the widget forwards
	BaseURL    string         // Scheme and host prepended to relative endpoints
	HTTPClient *http.Client   // Defaults to a client with DefaultTimeout
	Logger     *logger.Logger // Defaults to a discarding logger
}

func (o Options) withDefaults(endpoint string) Options {
	if o.Endpoint == "" {
		o.Endpoint = endpoint
	}
	if o.MinLength <= 0 {
		o.MinLength = DefaultMinLength
	}
	if o.HTTPClient == nil {
		o.HTTPClient = &http.Client{Timeout: DefaultTimeout}
	}
	o.Logger = logger.OrDiscard(o.Logger)
	return o
}

// resolve joins BaseURL and Endpoint unless Endpoint is already absolute
func (o Options) resolve() (*url.URL, error) {
	endpoint, err := url.Parse(o.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint %q: %w", o.Endpoint, err)
	}
	if endpoint.IsAbs() || o.BaseURL == "" {
		return endpoint, nil
	}

	base, err := url.Parse(strings.TrimSuffix(o.BaseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", o.BaseURL, err)
	}
	return base.ResolveReference(endpoint), nil
}

// URL returns the endpoint the provider queries
func (o Options) URL() (string, error) {
	u, err := o.resolve()
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

// getJSON issues GET <endpoint>?q=<q> and decodes the JSON body into out
func getJSON(ctx context.Context, opts Options, q string, out interface{}) error {
	timer := timing.NewTimer()

	target, err := opts.resolve()
	if err != nil {
		return cerrors.NewTransportError(opts.Endpoint, 0, "failed to build request", err)
	}
	query := target.Query()
	query.Set("q", q)
	target.RawQuery = query.Encode()
	endpoint := target.String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return cerrors.NewTransportError(endpoint, 0, "failed to build request", err)
	}
	req.Header.Set("Accept", "application/json")
	if id := RequestID(ctx); id != "" {
		req.Header.Set(RequestIDHeader, id)
	}

	resp, err := opts.HTTPClient.Do(req)
	if err != nil {
		return cerrors.NewTransportError(endpoint, 0, "request failed", err)
	}
	defer resp.Body.Close()
	timer.Mark("request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, MaxResponseSize))
		return cerrors.NewTransportError(endpoint, resp.StatusCode, fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, MaxResponseSize)).Decode(out); err != nil {
		return cerrors.NewTransportError(endpoint, resp.StatusCode, "malformed response", err)
	}
	timer.Mark("decode")

	request, _ := timer.Get("request")
	opts.Logger.Debug().
		Str("endpoint", endpoint).
		Str("request_id", RequestID(ctx)).
		Int("status", resp.StatusCode).
		Dur("request_ms", request).
		Dur("total_ms", timer.Elapsed()).
		Msg("Fetched suggestions")

	return nil
}

// bindSource adapts fetch into a widget source. Failures are logged and
// swallowed so the widget keeps showing its previous list.
func bindSource(log *logger.Logger, fetch func(context.Context, string) ([]Suggestion, error)) SourceFunc {
	return func(ctx context.Context, req Request, respond Respond) {
		items, err := fetch(ctx, req.Term)
		if err != nil {
			log.Debug().
				Str("term", req.Term).
				Str("request_id", RequestID(ctx)).
				Err(err).
				Msg("Suggestion request failed")
			return
		}
		respond(items)
	}
}
