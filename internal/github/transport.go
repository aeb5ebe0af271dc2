package github

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"orgscan/internal/logging"
)

const requestAttempts = 3

// do issues one GET against the directory service through the shared request
// primitive. A rate-limit response with zero remaining quota sleeps until the
// advertised reset time (minimum one second) and retries without consuming
// the attempt budget; network errors back off exponentially across at most
// three attempts. When the budget is exhausted ok is false and the caller
// degrades to "no result".
func (c *Client) do(ctx context.Context, path string, params url.Values) (int, []byte, bool) {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	for attempt := 0; attempt < requestAttempts; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return 0, nil, false
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			c.logger.Error("directory request build failed", logging.String("url", endpoint), logging.Error(err))
			return 0, nil, false
		}
		req.Header.Set("Accept", "application/vnd.github.v3+json")
		if c.token != "" {
			req.Header.Set("Authorization", "token "+c.token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.logger.Warn("directory request failed",
				logging.String("url", endpoint),
				logging.Int("attempt", attempt+1),
				logging.Error(err),
			)
			if attempt < requestAttempts-1 {
				c.sleep(time.Duration(1<<attempt) * time.Second)
			}
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			c.logger.Warn("directory response read failed",
				logging.String("url", endpoint),
				logging.Int("attempt", attempt+1),
				logging.Error(readErr),
			)
			if attempt < requestAttempts-1 {
				c.sleep(time.Duration(1<<attempt) * time.Second)
			}
			continue
		}

		if wait, limited := c.rateLimitWait(resp); limited {
			c.logger.Warn("directory rate limit exceeded",
				logging.String("url", endpoint),
				logging.Duration("sleep", wait),
			)
			c.sleep(wait)
			// The wait is bounded by the server's own clock, so it does not
			// count against the attempt budget.
			attempt--
			continue
		}

		return resp.StatusCode, body, true
	}

	return 0, nil, false
}

// rateLimitWait reports how long to sleep when the service signals an
// exhausted quota. GitHub uses 403 plus X-RateLimit headers for this.
func (c *Client) rateLimitWait(resp *http.Response) (time.Duration, bool) {
	if resp.StatusCode != http.StatusForbidden {
		return 0, false
	}
	remaining := resp.Header.Get("X-RateLimit-Remaining")
	if remaining != "0" {
		return 0, false
	}
	reset, err := strconv.ParseInt(resp.Header.Get("X-RateLimit-Reset"), 10, 64)
	if err != nil {
		return time.Second, true
	}
	wait := time.Duration(reset-c.now().Unix()) * time.Second
	if wait < time.Second {
		wait = time.Second
	}
	return wait, true
}
