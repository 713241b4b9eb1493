package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"github.com/meenmo/multicurve/market"
)

// Source supplies quote records from somewhere: a file, an HTTP feed, a
// database. Implementations must be safe for concurrent use.
type Source interface {
	Fetch(ctx context.Context) ([]QuoteRecord, error)
}

// SourceFunc adapts a plain function to the Source interface.
type SourceFunc func(ctx context.Context) ([]QuoteRecord, error)

// Fetch calls f.
func (f SourceFunc) Fetch(ctx context.Context) ([]QuoteRecord, error) { return f(ctx) }

// FileSource re-reads a key,value[,as_of] CSV file on every Fetch.
type FileSource struct {
	Path string
}

// Fetch reads the file.
func (s *FileSource) Fetch(ctx context.Context) ([]QuoteRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("FileSource: %w", err)
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("FileSource: %w", err)
	}
	defer f.Close()
	return ReadQuotesCSV(f)
}

// HTTPSourceOptions tunes an HTTPSource. Zero values mean one request
// per second with burst one, a ten second timeout and no logging.
type HTTPSourceOptions struct {
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	Logger            *zerolog.Logger
}

// HTTPSource polls a JSON quote endpoint of the form
//
//	{"quotes":[{"key":"EUR-OIS-1Y","value":0.0125}]}
//
// Each quote may carry an RFC 3339 as_of; quotes without one are
// stamped with the fetch time. Fetches are rate limited per source.
type HTTPSource struct {
	url     string
	client  *http.Client
	limiter *rate.Limiter
	log     *zerolog.Logger
}

// NewHTTPSource builds a source polling the given URL.
func NewHTTPSource(url string, opts HTTPSourceOptions) *HTTPSource {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = 1
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}
	if opts.Logger == nil {
		nop := zerolog.Nop()
		opts.Logger = &nop
	}
	return &HTTPSource{
		url:     url,
		client:  &http.Client{Timeout: opts.Timeout},
		limiter: rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), opts.Burst),
		log:     opts.Logger,
	}
}

type quotePayload struct {
	Quotes []struct {
		Key   string          `json:"key"`
		Value decimal.Decimal `json:"value"`
		AsOf  time.Time       `json:"as_of"`
	} `json:"quotes"`
}

// Fetch performs one rate-limited poll of the endpoint.
func (s *HTTPSource) Fetch(ctx context.Context) ([]QuoteRecord, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("HTTPSource: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("HTTPSource: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTPSource: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTPSource: %s returned %s", s.url, resp.Status)
	}

	var payload quotePayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("HTTPSource: decode %s: %w", s.url, err)
	}

	now := time.Now().UTC()
	records := make([]QuoteRecord, 0, len(payload.Quotes))
	for i, q := range payload.Quotes {
		if q.Key == "" {
			return nil, fmt.Errorf("HTTPSource: quote %d has no key", i)
		}
		asOf := q.AsOf
		if asOf.IsZero() {
			asOf = now
		}
		records = append(records, QuoteRecord{Key: market.QuoteKey(q.Key), Value: q.Value, AsOf: asOf})
	}
	s.log.Debug().
		Str("url", s.url).
		Int("quotes", len(records)).
		Dur("elapsed", time.Since(start)).
		Msg("fetched quotes")
	return records, nil
}
