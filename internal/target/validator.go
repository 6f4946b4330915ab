package target

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/net/idna"

	"mdcheck/internal/domain"
)

const maxPort = 65535

// Target is a URL that passed structural validation. Only a Target that has
// also passed Guard.AssertSafe is handed to the probe.
type Target struct {
	URL *url.URL
	// Host is the lowercased ASCII hostname without brackets, port or trailing dot.
	Host string
}

// String returns the canonical form echoed back to clients.
func (t *Target) String() string {
	if t == nil || t.URL == nil {
		return ""
	}
	return t.URL.String()
}

// Validate parses raw as an absolute http(s) URL without embedded credentials.
// It never touches the network.
func Validate(raw string) (*Target, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, domain.NewCheckError(domain.KindMissingURL, nil)
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return nil, domain.NewCheckError(domain.KindInvalidURL, err)
	}
	if !parsed.IsAbs() {
		return nil, domain.NewCheckError(domain.KindInvalidURL, fmt.Errorf("url %q is not absolute", trimmed))
	}

	parsed.Scheme = strings.ToLower(parsed.Scheme)
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, domain.NewCheckError(domain.KindUnsupportedScheme, fmt.Errorf("scheme %q", parsed.Scheme))
	}

	if parsed.User != nil {
		password, _ := parsed.User.Password()
		if parsed.User.Username() != "" || password != "" {
			return nil, domain.NewCheckError(domain.KindCredentialsNotAllowed, nil)
		}
		parsed.User = nil
	}

	host, err := normalizeHost(parsed.Hostname())
	if err != nil {
		return nil, domain.NewCheckError(domain.KindInvalidURL, err)
	}

	port := parsed.Port()
	if port != "" {
		if n, err := strconv.Atoi(port); err != nil || n < 0 || n > maxPort {
			return nil, domain.NewCheckError(domain.KindInvalidURL, fmt.Errorf("port %q out of range", port))
		}
	}

	if port != "" {
		parsed.Host = net.JoinHostPort(host, port)
	} else if strings.Contains(host, ":") {
		parsed.Host = "[" + host + "]"
	} else {
		parsed.Host = host
	}
	parsed.Fragment = ""
	parsed.RawFragment = ""

	return &Target{URL: parsed, Host: host}, nil
}

func normalizeHost(hostname string) (string, error) {
	host := strings.TrimSuffix(strings.TrimSpace(hostname), ".")
	if host == "" {
		return "", fmt.Errorf("missing host")
	}

	if !isASCII(host) {
		ascii, err := idna.Lookup.ToASCII(host)
		if err != nil {
			return "", fmt.Errorf("invalid internationalized host %q: %w", host, err)
		}
		host = ascii
	}

	return strings.ToLower(host), nil
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}
