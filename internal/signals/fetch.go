package signals

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"trendforge/internal/metrics"
)

// Fetcher is the shared HTTP getter for trend sources: rate limited, with
// retries on 429 and 5xx.
type Fetcher struct {
	httpClient  *http.Client
	limiter     *rate.Limiter
	maxAttempts int
	baseBackoff time.Duration
	userAgent   string
}

// NewFetcher builds a fetcher. rps <= 0 uses TRENDFORGE_FETCH_RPS or 2 req/s.
func NewFetcher(rps float64) *Fetcher {
	return &Fetcher{
		httpClient:  &http.Client{Timeout: 15 * time.Second},
		limiter:     newDefaultLimiter(rps),
		maxAttempts: getEnvInt("TRENDFORGE_FETCH_MAX_ATTEMPTS", 4),
		baseBackoff: time.Duration(getEnvInt("TRENDFORGE_FETCH_BASE_BACKOFF_MS", 500)) * time.Millisecond,
		userAgent:   "trendforge/1.0",
	}
}

// WithHTTPClient swaps the underlying client, e.g. for httptest servers.
func (f *Fetcher) WithHTTPClient(c *http.Client) *Fetcher {
	f.httpClient = c
	return f
}

func newDefaultLimiter(rps float64) *rate.Limiter {
	burst := 5
	if rps <= 0 {
		rps = 2.0
		if v := os.Getenv("TRENDFORGE_FETCH_RPS"); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
				rps = f
			}
		}
	}
	if v := os.Getenv("TRENDFORGE_FETCH_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			burst = n
		}
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

// Get returns the body of url.
func (f *Fetcher) Get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.userAgent)
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	resp, err := f.doWithRetry(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 8<<20))
}

func (f *Fetcher) doWithRetry(ctx context.Context, req *http.Request) (*http.Response, error) {
	backoff := f.baseBackoff
	var lastErr error
	for attempt := 1; attempt <= f.maxAttempts; attempt++ {
		if attempt > 1 {
			metrics.IncFetchRetry(req.URL.Host)
		}
		resp, err := f.httpClient.Do(req.Clone(ctx))
		if err == nil {
			if resp.StatusCode == http.StatusTooManyRequests || (resp.StatusCode >= 500 && resp.StatusCode <= 599) {
				ra := resp.Header.Get("Retry-After")
				_ = resp.Body.Close()
				lastErr = fmt.Errorf("status %d", resp.StatusCode)
				if attempt == f.maxAttempts {
					break
				}
				wait := backoff
				if ra != "" {
					if secs, err := strconv.Atoi(ra); err == nil {
						wait = time.Duration(secs) * time.Second
					} else if t, err := http.ParseTime(ra); err == nil {
						if d := time.Until(t); d > 0 {
							wait = d
						}
					}
				}
				// jitter +/-20%
				jitter := time.Duration(float64(wait) * 0.2)
				if jitter > 0 {
					wait = wait - jitter + time.Duration(time.Now().UnixNano()%int64(2*jitter))
				}
				select {
				case <-time.After(wait):
				case <-ctx.Done():
					return nil, ctx.Err()
				}
				backoff *= 2
				continue
			}
			return resp, nil
		}
		lastErr = err
		if attempt == f.maxAttempts {
			break
		}
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		backoff *= 2
	}
	return nil, fmt.Errorf("request %s failed after %d attempts: %w", req.URL.Redacted(), f.maxAttempts, lastErr)
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if i, err := strconv.Atoi(v); err == nil && i > 0 {
		return i
	}
	return def
}
