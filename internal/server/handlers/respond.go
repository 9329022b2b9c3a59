// internal/server/handlers/respond.go

package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"math"
	"net/http"
	"strconv"

	"socialpulse/internal/domain/content"
)

// Helper for JSON responses
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Failed to marshal response: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Failed to marshal response"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// Helper for error responses
func respondWithError(w http.ResponseWriter, code int, message string, err error) {
	response := map[string]string{"error": message}

	if err != nil && code >= 500 {
		log.Printf("HTTP %d: %s: %v", code, message, err)
	}

	jsonResponse, _ := json.Marshal(response)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(jsonResponse)
}

// respondWithRateLimit writes a 429, with Retry-After when the upstream
// reported one
func respondWithRateLimit(w http.ResponseWriter, err error) {
	response := map[string]interface{}{"error": err.Error()}

	var rle *content.RateLimitError
	if errors.As(err, &rle) && rle.RetryAfter > 0 {
		seconds := int(math.Ceil(rle.RetryAfter.Seconds()))
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
		response["retry_after"] = seconds
	}

	respondWithJSON(w, http.StatusTooManyRequests, response)
}
