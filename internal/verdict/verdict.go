// Package verdict decides whether a probe found a Markdown representation.
package verdict

import (
	"strings"

	"mdcheck/internal/domain"
)

const (
	ReasonFound              = "Markdown detected: 2xx response with Content-Type text/markdown."
	ReasonRedirect           = "Redirect response received and redirects are intentionally disabled."
	ReasonNon2xx             = "Target returned a non-2xx status."
	ReasonIgnoredNegotiation = "Target ignored markdown negotiation or returned a different content type."
)

// Classify is a pure function of the status code and Content-Type header.
func Classify(result domain.ProbeResult) domain.Verdict {
	is2xx := result.StatusCode >= 200 && result.StatusCode < 300

	switch {
	case is2xx && IsMarkdownContentType(result.ContentType()):
		return domain.Verdict{Found: true, Reason: ReasonFound}
	case result.StatusCode >= 300 && result.StatusCode < 400:
		return domain.Verdict{Reason: ReasonRedirect}
	case !is2xx:
		return domain.Verdict{Reason: ReasonNon2xx}
	default:
		return domain.Verdict{Reason: ReasonIgnoredNegotiation}
	}
}

// IsMarkdownContentType matches text/markdown case-insensitively, ignoring
// any parameters such as charset.
func IsMarkdownContentType(contentType string) bool {
	mediaType, _, _ := strings.Cut(contentType, ";")
	return strings.Contains(strings.ToLower(mediaType), "text/markdown")
}
