// Package check sequences a single markdown negotiation check:
// rate limit, validate, resolve, probe, classify.
package check

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"mdcheck/internal/api/dto"
	"mdcheck/internal/domain"
	"mdcheck/internal/target"
	"mdcheck/internal/verdict"
)

const (
	MaxPayloadBytes   = 64 << 10
	MaxUserAgentChars = 256
)

type RateLimiter interface {
	Check(ctx context.Context, identifier string) domain.RateLimitDecision
}

type SafetyGuard interface {
	AssertSafe(ctx context.Context, t *target.Target) error
}

type Prober interface {
	Probe(ctx context.Context, t *target.Target, userAgent string) (domain.ProbeResult, error)
}

type Service struct {
	limiter          RateLimiter
	guard            SafetyGuard
	prober           Prober
	defaultUserAgent string
}

func NewService(limiter RateLimiter, guard SafetyGuard, prober Prober, defaultUserAgent string) *Service {
	return &Service{
		limiter:          limiter,
		guard:            guard,
		prober:           prober,
		defaultUserAgent: defaultUserAgent,
	}
}

// Run performs one check for clientID. The rate-limit decision is always
// returned, even when a later stage fails; the first failing stage ends the
// check and no stage is retried.
func (s *Service) Run(ctx context.Context, clientID string, body io.Reader) (domain.RateLimitDecision, *dto.CheckResponse, error) {
	decision := s.limiter.Check(ctx, clientID)
	if !decision.Allowed {
		return decision, nil, domain.NewCheckError(domain.KindRateLimitExceeded, nil)
	}

	req, err := s.decodeRequest(body)
	if err != nil {
		return decision, nil, err
	}

	tgt, err := target.Validate(req.URL)
	if err != nil {
		return decision, nil, err
	}

	if err := s.guard.AssertSafe(ctx, tgt); err != nil {
		return decision, nil, err
	}

	log.Debug("probing target", "url", tgt.String(), "client", clientID)
	result, err := s.prober.Probe(ctx, tgt, req.UserAgent)
	if err != nil {
		log.Warn("probe failed", "url", tgt.String(), "kind", domain.KindOf(err), "error", err)
		return decision, nil, err
	}

	v := verdict.Classify(result)
	log.Info("check complete", "url", tgt.String(), "status", result.StatusCode, "found", v.Found, "latency_ms", result.LatencyMs)

	return decision, buildResponse(tgt, req, result, v), nil
}

func (s *Service) decodeRequest(body io.Reader) (domain.CheckRequest, error) {
	if body == nil {
		return domain.CheckRequest{}, domain.NewCheckError(domain.KindInvalidJSON, errors.New("empty body"))
	}

	raw, err := io.ReadAll(io.LimitReader(body, MaxPayloadBytes+1))
	if err != nil {
		return domain.CheckRequest{}, domain.NewCheckError(domain.KindInvalidJSON, err)
	}
	if len(raw) > MaxPayloadBytes {
		return domain.CheckRequest{}, domain.NewCheckError(domain.KindInvalidJSON, fmt.Errorf("body exceeds %d bytes", MaxPayloadBytes))
	}

	var payload dto.CheckPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return domain.CheckRequest{}, domain.NewCheckError(domain.KindInvalidJSON, err)
	}
	if payload.URL == nil || strings.TrimSpace(*payload.URL) == "" {
		return domain.CheckRequest{}, domain.NewCheckError(domain.KindMissingURL, nil)
	}

	userAgent := ""
	if payload.UserAgent != nil {
		userAgent = *payload.UserAgent
	}

	return domain.CheckRequest{
		URL:       strings.TrimSpace(*payload.URL),
		UserAgent: SanitizeUserAgent(userAgent, s.defaultUserAgent),
	}, nil
}

// SanitizeUserAgent strips control characters, trims, and caps the length.
// An empty result falls back to defaultUA.
func SanitizeUserAgent(raw, defaultUA string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, raw)
	cleaned = strings.TrimSpace(cleaned)

	if utf8.RuneCountInString(cleaned) > MaxUserAgentChars {
		cleaned = strings.TrimSpace(string([]rune(cleaned)[:MaxUserAgentChars]))
	}
	if cleaned == "" {
		return defaultUA
	}
	return cleaned
}

func buildResponse(tgt *target.Target, req domain.CheckRequest, result domain.ProbeResult, v domain.Verdict) *dto.CheckResponse {
	headers := result.Headers
	if headers == nil {
		headers = map[string]string{}
	}

	resp := &dto.CheckResponse{
		Found:  v.Found,
		Reason: v.Reason,
		Request: dto.CheckedRequest{
			URL:       tgt.String(),
			UserAgent: req.UserAgent,
		},
		Response: dto.ProbeResponse{
			Status:          result.StatusCode,
			StatusText:      result.StatusText,
			ContentType:     optionalHeader(result, "content-type"),
			ContentLength:   optionalHeader(result, "content-length"),
			Location:        optionalHeader(result, "location"),
			XMarkdownTokens: optionalHeader(result, "x-markdown-tokens"),
			LatencyMs:       result.LatencyMs,
			Headers:         headers,
		},
		Truncated: result.BodyTruncated,
	}
	if v.Found {
		resp.Markdown = result.BodyText
	}
	return resp
}

func optionalHeader(result domain.ProbeResult, name string) *string {
	value, ok := result.Header(name)
	if !ok {
		return nil
	}
	return &value
}
