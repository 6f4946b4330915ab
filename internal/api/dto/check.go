package dto

// CheckPayload is the body of POST /api/check.
type CheckPayload struct {
	URL       *string `json:"url"`
	UserAgent *string `json:"userAgent"`
}

// CheckedRequest echoes the sanitized request; URL is the canonical form of
// the validated target.
type CheckedRequest struct {
	URL       string `json:"url"`
	UserAgent string `json:"userAgent"`
}

// ProbeResponse carries the diagnostic view of the probe. Nullable headers
// are serialized as null when the target did not send them.
type ProbeResponse struct {
	Status          int               `json:"status"`
	StatusText      string            `json:"statusText"`
	ContentType     *string           `json:"contentType"`
	ContentLength   *string           `json:"contentLength"`
	Location        *string           `json:"location"`
	XMarkdownTokens *string           `json:"xMarkdownTokens"`
	LatencyMs       int64             `json:"latencyMs"`
	Headers         map[string]string `json:"headers"`
}

type CheckResponse struct {
	Found     bool           `json:"found"`
	Reason    string         `json:"reason"`
	Request   CheckedRequest `json:"request"`
	Response  ProbeResponse  `json:"response"`
	Markdown  string         `json:"markdown"`
	Truncated bool           `json:"truncated"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
