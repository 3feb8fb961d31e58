// Package crowdin is an HTTP client for a Crowdin-style translation project
// API: describe the project tree, create directories and branches, add and
// update source files, build exports, download archives and fetch status.
package crowdin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const DefaultBaseURL = "https://api.crowdin.com/api"

// Options configures an HTTPClient.
type Options struct {
	BaseURL    string
	Project    string
	APIKey     string
	HTTPClient *http.Client
	// ResponseHeaderTimeout bounds the wait for response headers when
	// HTTPClient is nil. Bodies, such as translation archives, are never cut
	// off. Zero waits indefinitely.
	ResponseHeaderTimeout time.Duration
	// MaxRetries bounds retries of 429 and 5xx responses and transport
	// failures. Zero disables retrying.
	MaxRetries int
	Logger     *zap.Logger
}

type HTTPClient struct {
	baseURL    string
	project    string
	apiKey     string
	httpClient *http.Client
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

func NewHTTPClient(opts Options) (*HTTPClient, error) {
	project := strings.TrimSpace(opts.Project)
	if project == "" {
		return nil, fmt.Errorf("project identifier is required")
	}
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("api key is required")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.ResponseHeaderTimeout = opts.ResponseHeaderTimeout
		httpClient = &http.Client{Transport: transport}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	maxRetries := opts.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &HTTPClient{
		baseURL:    baseURL,
		project:    project,
		apiKey:     apiKey,
		httpClient: httpClient,
		maxRetries: maxRetries,
		baseDelay:  250 * time.Millisecond,
		maxDelay:   5 * time.Second,
		logger:     logger,
		now:        time.Now,
	}, nil
}

// request is a fully encoded call. body is kept as bytes so retries can
// replay it.
type request struct {
	op          string
	method      string
	endpoint    string
	query       url.Values
	body        []byte
	contentType string
}

// send performs r and returns the successful response with its body still
// open. Failures are returned as *RemoteProtocolError unless the context or
// transport failed.
func (c *HTTPClient) send(ctx context.Context, r request) (*http.Response, error) {
	query := url.Values{}
	for k, v := range r.query {
		query[k] = v
	}
	query.Set("key", c.apiKey)
	query.Set("json", "1")
	target := fmt.Sprintf("%s/project/%s/%s?%s", c.baseURL, url.PathEscape(c.project), r.endpoint, query.Encode())

	for attempt := 0; ; attempt++ {
		var bodyReader io.Reader
		if r.body != nil {
			bodyReader = bytes.NewReader(r.body)
		}
		req, err := http.NewRequestWithContext(ctx, r.method, target, bodyReader)
		if err != nil {
			return nil, err
		}
		req.Header.Set("X-Correlation-Id", correlationID(c.now()))
		if r.contentType != "" {
			req.Header.Set("Content-Type", r.contentType)
		}

		c.logger.Debug("remote call", zap.String("op", r.op), zap.String("endpoint", r.endpoint), zap.Int("attempt", attempt))
		resp, err := c.httpClient.Do(req)
		if err != nil {
			if attempt < c.maxRetries && ctx.Err() == nil {
				if waitErr := waitWithContext(ctx, c.retryDelay(attempt+1, "")); waitErr != nil {
					return nil, waitErr
				}
				continue
			}
			return nil, fmt.Errorf("%s: %w", r.op, err)
		}
		if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
			return resp, nil
		}

		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		_ = resp.Body.Close()
		if (resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500) && attempt < c.maxRetries {
			if waitErr := waitWithContext(ctx, c.retryDelay(attempt+1, resp.Header.Get("Retry-After"))); waitErr != nil {
				return nil, waitErr
			}
			continue
		}
		perr := &RemoteProtocolError{Op: r.op, StatusCode: resp.StatusCode}
		if code, message, ok := parseServiceError(payload); ok {
			perr.Code, perr.Message = code, message
		} else {
			perr.Message = strings.TrimSpace(http.StatusText(resp.StatusCode))
		}
		return nil, perr
	}
}

// call performs r and returns the whole body, treating an explicit service
// error in a 2xx body as a failure.
func (c *HTTPClient) call(ctx context.Context, r request) ([]byte, error) {
	resp, err := c.send(ctx, r)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: read response: %w", r.op, err)
	}
	if code, message, ok := parseServiceError(payload); ok {
		return nil, &RemoteProtocolError{Op: r.op, StatusCode: resp.StatusCode, Code: code, Message: message}
	}
	return payload, nil
}

func (c *HTTPClient) callJSON(ctx context.Context, r request, out any) error {
	payload, err := c.call(ctx, r)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return &RemoteProtocolError{Op: r.op, StatusCode: http.StatusOK, Message: "unparsable response: " + err.Error()}
	}
	return nil
}

func correlationID(now time.Time) string {
	return fmt.Sprintf("crowdinsync_%d", now.UnixNano())
}

func (c *HTTPClient) retryDelay(attempt int, retryAfterHeader string) time.Duration {
	maxDelay := c.maxDelay
	if maxDelay <= 0 {
		maxDelay = 5 * time.Second
	}
	if retryAfter := parseRetryAfter(retryAfterHeader); retryAfter > 0 {
		if retryAfter > maxDelay {
			return maxDelay
		}
		return retryAfter
	}
	delay := c.baseDelay
	if delay <= 0 {
		delay = 250 * time.Millisecond
	}
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= maxDelay {
			return maxDelay
		}
	}
	return delay
}

func parseRetryAfter(header string) time.Duration {
	header = strings.TrimSpace(header)
	if header == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(header); err == nil && seconds >= 0 {
		return time.Duration(seconds) * time.Second
	}
	if ts, err := time.Parse(time.RFC1123, header); err == nil {
		if delta := time.Until(ts); delta > 0 {
			return delta
		}
	}
	return 0
}

func waitWithContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
