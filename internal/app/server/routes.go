package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"mdcheck/internal/api/dto"
)

const readHeaderTimeout = 10 * time.Second

// Dependencies are the components the HTTP layer talks to.
type Dependencies struct {
	Checker          Checker
	RateLimitBackend string
	AllowOrigin      string
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, status, dto.ErrorResponse{Error: msg})
}

func enableCORS(allowOrigin string, next http.Handler) http.Handler {
	if allowOrigin == "" {
		allowOrigin = "*"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", allowOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Expose-Headers", "X-RateLimit-Limit, X-RateLimit-Remaining, X-RateLimit-Reset, Retry-After")

		// Handle preflight request
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// NewRouter registers the API routes.
func NewRouter(deps Dependencies) http.Handler {
	router := http.NewServeMux()
	router.Handle("POST /api/check", handleCheck(deps.Checker))
	router.HandleFunc("GET /healthz", handleHealth(deps.RateLimitBackend))
	router.HandleFunc("GET /version", getVersion)

	log.Debug("Routes opened")
	return enableCORS(deps.AllowOrigin, router)
}

// NewServer builds the API server; the caller owns its lifecycle.
func NewServer(port int, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}
