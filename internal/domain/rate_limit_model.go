package domain

// RateLimitDecision is produced once per inbound request.
type RateLimitDecision struct {
	Allowed        bool
	Limit          int
	Remaining      int
	ResetAtEpochMs int64
}
