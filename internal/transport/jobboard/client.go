// Package jobboard implements the external job search providers: Adzuna, SerpAPI Google Jobs and Remotive.
// Each provider normalises its response into job.Posting values tagged with the provider name.
package jobboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/jobmatch/internal/domain"
)

// maxBodyBytes caps provider responses.
const maxBodyBytes = 4 << 20

const userAgent = "jobmatch/1.0 (+https://github.com/kailas-cloud/jobmatch)"

// client performs provider GET requests and classifies failures.
type client struct {
	name string
	http *http.Client
}

func newClient(name string, hc *http.Client) client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return client{name: name, http: hc}
}

// statusError carries a non-2xx response so providers can inspect the body before classifying it.
type statusError struct {
	status int
	header http.Header
	body   []byte
}

func (e *statusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.status, truncate(string(e.body), 200))
}

// getJSON issues GET endpoint?params and decodes a 2xx JSON body into out.
// Non-2xx responses come back as *statusError; transport failures keep the context error in the chain.
func (c client) getJSON(ctx context.Context, endpoint string, params url.Values, out any) error {
	u := endpoint
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return fmt.Errorf("%s: build request: %w: %w", c.name, domain.ErrProviderUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: request: %w: %w", c.name, domain.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%s: read body: %w: %w", c.name, domain.ErrProviderUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &statusError{status: resp.StatusCode, header: resp.Header, body: body}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s: decode: %w: %w", c.name, domain.ErrProviderUnavailable, err)
	}
	return nil
}

// classify turns a getJSON error into the domain taxonomy. 429 is always throttling;
// extra reports provider-specific throttling signals on other statuses.
func (c client) classify(err error, extra func(*statusError) bool) error {
	var se *statusError
	if !errors.As(err, &se) {
		return err
	}
	if se.status == http.StatusTooManyRequests || (extra != nil && extra(se)) {
		return domain.NewThrottled(c.name, parseRetryAfter(se.header.Get("Retry-After"), time.Now()))
	}
	return fmt.Errorf("%s: %w: %w", c.name, domain.ErrProviderUnavailable, se)
}

// parseRetryAfter reads delta-seconds or an HTTP date. Unparseable or past values yield zero.
func parseRetryAfter(v string, now time.Time) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs <= 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := t.Sub(now); d > 0 {
			return d
		}
	}
	return 0
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

func queryString(terms []string) string {
	return strings.Join(terms, " ")
}
