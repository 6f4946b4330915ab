package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"

	"mdcheck/internal/api/dto"
	"mdcheck/internal/domain"
)

// Checker runs one markdown negotiation check.
type Checker interface {
	Run(ctx context.Context, clientID string, body io.Reader) (domain.RateLimitDecision, *dto.CheckResponse, error)
}

func handleCheck(checker Checker) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		decision, resp, err := checker.Run(r.Context(), ClientIdentifier(r), r.Body)
		writeRateLimitHeaders(w, decision)

		if err != nil {
			writeCheckError(w, decision, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	})
}

func writeRateLimitHeaders(w http.ResponseWriter, decision domain.RateLimitDecision) {
	if decision.Limit <= 0 {
		return
	}
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(decision.ResetAtEpochMs, 10))
}

func writeCheckError(w http.ResponseWriter, decision domain.RateLimitDecision, err error) {
	var checkErr *domain.CheckError
	if !errors.As(err, &checkErr) {
		log.Error("check failed unexpectedly", "error", err)
		writeError(w, "Internal server error.", http.StatusInternalServerError)
		return
	}

	status := checkErr.Kind.HTTPStatus()
	if status == http.StatusTooManyRequests {
		w.Header().Set("Retry-After", strconv.FormatInt(retryAfterSeconds(decision), 10))
	}

	body := dto.ErrorResponse{Error: checkErr.Message}
	if status == http.StatusBadGateway || status == http.StatusGatewayTimeout {
		body.Details = checkErr.Details
	}
	writeJSON(w, status, body)
}

func retryAfterSeconds(decision domain.RateLimitDecision) int64 {
	wait := time.Until(time.UnixMilli(decision.ResetAtEpochMs))
	seconds := int64((wait + time.Second - 1) / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	return seconds
}
