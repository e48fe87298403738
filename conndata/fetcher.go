package conndata

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/mardens-inc/dbcommon/httperr"
)

const (
	// DefaultBaseURL is the production configuration service.
	DefaultBaseURL = "https://lib.mardens.com"

	// DatabaseEnvVar selects the database name when no explicit
	// WithDatabase option is given.
	DatabaseEnvVar = "MARDENS_DATABASE"

	// DefaultDatabase is used when DatabaseEnvVar is unset.
	DefaultDatabase = "pricing"

	fetchTimeout = 15 * time.Second
)

// DatabaseFromEnv resolves the database name from the environment,
// falling back to DefaultDatabase. This is the only place the
// environment is consulted; the Fetcher itself only sees the resolved
// name.
func DatabaseFromEnv() string {
	if name := os.Getenv(DatabaseEnvVar); name != "" {
		return name
	}
	return DefaultDatabase
}

// Fetcher retrieves DatabaseConnectionData from the remote endpoint.
// Every Fetch call re-fetches; there is no caching and no retry —
// callers wanting retries wrap Fetch in their own policy.
type Fetcher struct {
	baseURL  string
	database string
	client   *http.Client
	log      *zap.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithBaseURL overrides the configuration service base URL.
func WithBaseURL(url string) Option {
	return func(f *Fetcher) { f.baseURL = url }
}

// WithDatabase sets the database name used to derive the endpoint URL.
func WithDatabase(name string) Option {
	return func(f *Fetcher) { f.database = name }
}

// WithInsecureTLS accepts the endpoint's certificate without
// verification. The config service historically runs on self-signed
// internal certificates; this relaxation is security-relevant and
// therefore opt-in, never the default.
func WithInsecureTLS(insecure bool) Option {
	return func(f *Fetcher) {
		if insecure {
			f.client = &http.Client{
				Timeout: fetchTimeout,
				Transport: &http.Transport{
					TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
				},
			}
		}
	}
}

// WithHTTPClient substitutes the HTTP client, mainly for tests.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) { f.client = c }
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(f *Fetcher) { f.log = logger }
}

// NewFetcher builds a Fetcher. The database name defaults to
// DatabaseFromEnv() unless WithDatabase is given.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		baseURL:  DefaultBaseURL,
		database: DatabaseFromEnv(),
		client:   &http.Client{Timeout: fetchTimeout},
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// URL reports the endpoint the Fetcher targets.
func (f *Fetcher) URL() string {
	return fmt.Sprintf("%s/%s/config.json", f.baseURL, f.database)
}

// Fetch issues a single GET to the derived endpoint and decodes the
// credential document. Transport failures, non-2xx statuses, and
// malformed bodies all surface as config-fetch errors.
func (f *Fetcher) Fetch(ctx context.Context) (*DatabaseConnectionData, error) {
	url := f.URL()
	f.log.Debug("fetching database configuration", zap.String("url", url))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, httperr.ConfigFetch(err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, httperr.ConfigFetch(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, httperr.ConfigFetch(fmt.Errorf("config endpoint returned %s", resp.Status))
	}

	var data DatabaseConnectionData
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, httperr.ConfigFetch(fmt.Errorf("decoding config document: %w", err))
	}

	f.log.Debug("database configuration fetched", zap.String("host", data.Host))
	return &data, nil
}
