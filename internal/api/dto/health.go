package dto

type HealthResponse struct {
	Status           string `json:"status"`
	RateLimitBackend string `json:"rateLimitBackend"`
}
