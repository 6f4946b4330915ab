// Package probe issues the single negotiation request against a vetted target.
package probe

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"mdcheck/internal/domain"
	"mdcheck/internal/target"
)

const (
	DefaultTimeout  = 10 * time.Second
	DefaultMaxChars = 50_000

	AcceptMarkdown = "text/markdown"
)

type Options struct {
	Timeout  time.Duration
	MaxChars int
}

// Executor performs exactly one GET per Probe call. Redirects are returned
// to the caller, never followed, and nothing is retried.
type Executor struct {
	client   *http.Client
	timeout  time.Duration
	maxChars int
}

func NewExecutor(transport http.RoundTripper, opts Options) *Executor {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxChars <= 0 {
		opts.MaxChars = DefaultMaxChars
	}
	return &Executor{
		client: &http.Client{
			Transport: transport,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		timeout:  opts.Timeout,
		maxChars: opts.MaxChars,
	}
}

// Probe fetches t with Accept: text/markdown. The timeout covers the whole
// exchange including the body read; when it fires the transfer is aborted
// and the connection closed.
func (e *Executor) Probe(ctx context.Context, t *target.Target, userAgent string) (domain.ProbeResult, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.String(), nil)
	if err != nil {
		return domain.ProbeResult{}, domain.NewProbeError(domain.KindFetchFailed, err)
	}
	req.Header.Set("Accept", AcceptMarkdown)
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	resp, err := e.client.Do(req)
	latency := time.Since(start)
	if err != nil {
		return domain.ProbeResult{}, transportError(ctx, err)
	}
	// Closing before EOF drops the connection instead of draining it.
	defer resp.Body.Close()

	result := domain.ProbeResult{
		StatusCode: resp.StatusCode,
		StatusText: statusText(resp),
		Headers:    flattenHeaders(resp.Header),
		LatencyMs:  latency.Milliseconds(),
	}

	body, truncated, err := readBody(resp.Body, resp.Header.Get("Content-Type"), e.maxChars)
	if err != nil {
		return domain.ProbeResult{}, transportError(ctx, err)
	}
	result.BodyText = body
	result.BodyTruncated = truncated

	return result, nil
}

func transportError(ctx context.Context, err error) error {
	// Safety rejections raised by the dialer keep their own kind.
	var checkErr *domain.CheckError
	if errors.As(err, &checkErr) && checkErr.Kind != domain.KindDNSResolutionFailed {
		return checkErr
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return domain.NewProbeError(domain.KindTimeout, err)
	}
	return domain.NewProbeError(domain.KindFetchFailed, err)
}

func statusText(resp *http.Response) string {
	prefix := strconv.Itoa(resp.StatusCode)
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, prefix))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}

// flattenHeaders lowercases keys and keeps the last value of repeated headers.
func flattenHeaders(header http.Header) map[string]string {
	flat := make(map[string]string, len(header))
	for key, values := range header {
		if len(values) == 0 {
			continue
		}
		flat[strings.ToLower(key)] = values[len(values)-1]
	}
	return flat
}
