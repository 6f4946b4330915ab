package domain

// CheckRequest is the sanitized inbound check payload.
type CheckRequest struct {
	URL       string
	UserAgent string
}

// Verdict is derived solely from the probe status code and Content-Type.
type Verdict struct {
	Found  bool
	Reason string
}
