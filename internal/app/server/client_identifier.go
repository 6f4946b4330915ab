package server

import (
	"net/http"
	"strings"

	"mdcheck/internal/ratelimit"
)

// ClientIdentifier derives the rate-limit key from forwarding headers: the
// first X-Forwarded-For entry, then X-Real-IP, then "unknown".
func ClientIdentifier(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}
	return ratelimit.UnknownIdentifier
}
