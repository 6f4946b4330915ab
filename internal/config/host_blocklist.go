package config

import (
	"net/url"
	"sort"
	"strings"
)

// HostBlocklist holds normalized hostnames that should never be probed.
// A nil *HostBlocklist blocks nothing.
type HostBlocklist struct {
	hosts map[string]struct{}
}

// NewHostBlocklist builds a lookup set from the provided entries.
func NewHostBlocklist(entries []string) *HostBlocklist {
	normalized := NormalizeHostEntries(entries)
	set := make(map[string]struct{}, len(normalized))
	for _, host := range normalized {
		set[host] = struct{}{}
	}
	return &HostBlocklist{hosts: set}
}

// NormalizeHostEntries trims, lowercases, and deduplicates host entries.
func NormalizeHostEntries(entries []string) []string {
	unique := make(map[string]struct{}, len(entries))
	normalized := make([]string, 0, len(entries))

	for _, raw := range entries {
		host := normalizeHostname(raw)
		if host == "" {
			continue
		}
		if _, exists := unique[host]; exists {
			continue
		}
		unique[host] = struct{}{}
		normalized = append(normalized, host)
	}

	return normalized
}

// IsBlocked reports whether the URL or hostname matches an entry or is a
// subdomain of one.
func (b *HostBlocklist) IsBlocked(rawURLOrHost string) bool {
	if b == nil || len(b.hosts) == 0 {
		return false
	}

	host := normalizeHostname(rawURLOrHost)
	if host == "" {
		return false
	}

	if _, ok := b.hosts[host]; ok {
		return true
	}
	for blocked := range b.hosts {
		if strings.HasSuffix(host, "."+blocked) {
			return true
		}
	}
	return false
}

// Hosts returns the blocked hostnames in sorted order.
func (b *HostBlocklist) Hosts() []string {
	if b == nil {
		return nil
	}
	hosts := make([]string, 0, len(b.hosts))
	for host := range b.hosts {
		hosts = append(hosts, host)
	}
	sort.Strings(hosts)
	return hosts
}

func normalizeHostname(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	// Allow bare hostnames by prefixing a scheme for URL parsing.
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return ""
	}

	host := strings.ToLower(parsed.Hostname())
	return strings.Trim(host, ".")
}
