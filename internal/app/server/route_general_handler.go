package server

import (
	"net/http"

	"mdcheck/internal/api/dto"
)

func handleHealth(backend string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, dto.HealthResponse{Status: "ok", RateLimitBackend: backend})
	}
}
