package domain

import "strings"

// ProbeResult captures a single negotiation probe. Header keys are lowercased;
// when a header repeats, the last value wins.
type ProbeResult struct {
	StatusCode    int
	StatusText    string
	Headers       map[string]string
	BodyText      string
	BodyTruncated bool
	LatencyMs     int64
}

// Header returns the value for name and whether it was present.
func (p ProbeResult) Header(name string) (string, bool) {
	if p.Headers == nil {
		return "", false
	}
	v, ok := p.Headers[strings.ToLower(name)]
	return v, ok
}

// ContentType returns the raw Content-Type header, or "" if absent.
func (p ProbeResult) ContentType() string {
	v, _ := p.Header("content-type")
	return v
}
