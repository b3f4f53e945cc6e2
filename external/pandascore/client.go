package pandascore

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/sourcegraph/conc/pool"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/clutchpoint/arena/internal/domain/match"
	"github.com/clutchpoint/arena/internal/platform/logging"
	"github.com/clutchpoint/arena/internal/platform/resilience"
	"github.com/clutchpoint/arena/internal/usecase"
)

const (
	defaultBaseURL  = "https://api.pandascore.co"
	defaultPageSize = 50
	maxBodyBytes    = 4 << 20
)

var errPandaScoreTransient = crerr.New("pandascore transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Token          string
	Timeout        time.Duration
	MaxRetries     int
	PageSize       int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client talks to the PandaScore esports API. It implements
// usecase.MatchFeedProvider; upcoming, running and recently finished
// matches are fetched in parallel and merged into one snapshot.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	token          string
	maxRetries     int
	pageSize       int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 15 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		token:          strings.TrimSpace(cfg.Token),
		maxRetries:     max(cfg.MaxRetries, 0),
		pageSize:       pageSize,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg),
		circuitEnabled: breakerCfg.Enabled,
	}
}

// FetchMatches returns the provider's current match set across the
// upcoming, running and past windows, de-duplicated by match ID and
// ordered by start time.
func (c *Client) FetchMatches(ctx context.Context) ([]match.Match, error) {
	paths := []string{"/matches/upcoming", "/matches/running", "/matches/past"}

	fetches := pool.NewWithResults[[]providerMatch]().WithContext(ctx).WithCancelOnError()
	for _, path := range paths {
		path := path
		fetches.Go(func(ctx context.Context) ([]providerMatch, error) {
			return c.fetchMatchPage(ctx, path)
		})
	}
	pages, err := fetches.Wait()
	if err != nil {
		return nil, err
	}

	byID := make(map[string]match.Match)
	order := make([]string, 0, c.pageSize)
	for _, page := range pages {
		for _, item := range page {
			mapped, ok := mapProviderMatch(item)
			if !ok {
				continue
			}
			if _, seen := byID[mapped.ID]; !seen {
				order = append(order, mapped.ID)
			}
			byID[mapped.ID] = mapped
		}
	}

	out := make([]match.Match, 0, len(order))
	for _, id := range order {
		out = append(out, byID[id])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartTime.Before(out[j].StartTime)
	})

	return out, nil
}

func (c *Client) fetchMatchPage(ctx context.Context, path string) ([]providerMatch, error) {
	query := map[string]string{
		"page[size]": strconv.Itoa(c.pageSize),
		"sort":       "begin_at",
	}

	var page []providerMatch
	if err := c.doJSON(ctx, path, query, &page); err != nil {
		return nil, fmt.Errorf("fetch %s: %w", path, err)
	}
	return page, nil
}

func (c *Client) doJSON(ctx context.Context, path string, query map[string]string, target any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "pandascore circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("%w: match data provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}

	fullURL := c.baseURL + path
	if encoded := values.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	out, err, _ := c.flight.Do(fullURL, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && crerr.Is(reqErr, errPandaScoreTransient) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return err
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("unexpected response payload type %T", out)
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode provider payload: %w", err)
	}

	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		raw, err := c.requestOnce(ctx, fullURL)
		if err == nil {
			return raw, nil
		}
		lastErr = err
		if !crerr.Is(err, errPandaScoreTransient) {
			return nil, err
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	c.logger.WarnContext(ctx, "pandascore request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func (c *Client) requestOnce(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, crerr.Wrapf(errPandaScoreTransient, "send request: %v", err)
	}
	defer resp.Body.Close()

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if _, err := buf.ReadFrom(io.LimitReader(resp.Body, maxBodyBytes)); err != nil {
		return nil, crerr.Wrapf(errPandaScoreTransient, "read response body: %v", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if isRetryableStatus(resp.StatusCode) {
			return nil, crerr.Wrapf(errPandaScoreTransient, "provider status=%d", resp.StatusCode)
		}
		return nil, fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviate(buf.B))
	}

	raw := make([]byte, len(buf.B))
	copy(raw, buf.B)
	return raw, nil
}

func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

func abbreviate(body []byte) string {
	const limit = 256
	if len(body) <= limit {
		return string(body)
	}
	return string(body[:limit]) + "..."
}
