// internal/server/handlers/pulse.go

package handlers

import (
	"context"
	"errors"
	"net/http"

	"socialpulse/internal/domain/content"
	"socialpulse/internal/service/relevance"
)

// PulseService is the part of the pulse service the HTTP API uses
type PulseService interface {
	Pulse(ctx context.Context) (content.AggregationResult, error)
	Refresh(ctx context.Context) (content.AggregationResult, error)
	Trends(ctx context.Context) ([]content.ScoredItem, error)
	Volume(ctx context.Context) (relevance.VolumeReport, error)
}

// PulseHandler handles pulse-related HTTP requests
type PulseHandler struct {
	service PulseService
}

// NewPulseHandler creates a new pulse handler
func NewPulseHandler(service PulseService) *PulseHandler {
	return &PulseHandler{
		service: service,
	}
}

type pulseResponse struct {
	content.AggregationResult
	Warning string `json:"warning,omitempty"`
}

type trendsResponse struct {
	Trends  []content.ScoredItem `json:"trends"`
	Warning string               `json:"warning,omitempty"`
}

type volumeResponse struct {
	relevance.VolumeReport
	Warning string `json:"warning,omitempty"`
}

// GetPulse returns the aggregated content, reusing cached sections while
// they are fresh
func (h *PulseHandler) GetPulse(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Pulse(r.Context())
	h.respondWithPulse(w, result, err)
}

// RefreshPulse recomputes the aggregated content
func (h *PulseHandler) RefreshPulse(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Refresh(r.Context())
	h.respondWithPulse(w, result, err)
}

// GetTrends returns the ranked trends
func (h *PulseHandler) GetTrends(w http.ResponseWriter, r *http.Request) {
	trends, err := h.service.Trends(r.Context())
	warning, ok := handlePulseError(w, err)
	if !ok {
		return
	}
	if trends == nil {
		trends = []content.ScoredItem{}
	}

	respondWithJSON(w, http.StatusOK, trendsResponse{Trends: trends, Warning: warning})
}

// GetVolume returns the volume analysis of the ranked trends
func (h *PulseHandler) GetVolume(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Volume(r.Context())
	warning, ok := handlePulseError(w, err)
	if !ok {
		return
	}

	respondWithJSON(w, http.StatusOK, volumeResponse{VolumeReport: report, Warning: warning})
}

func (h *PulseHandler) respondWithPulse(w http.ResponseWriter, result content.AggregationResult, err error) {
	warning, ok := handlePulseError(w, err)
	if !ok {
		return
	}

	respondWithJSON(w, http.StatusOK, pulseResponse{AggregationResult: result, Warning: warning})
}

// handlePulseError writes the error response for err and reports false,
// or returns the warning to attach to a successful response
func handlePulseError(w http.ResponseWriter, err error) (string, bool) {
	switch {
	case err == nil:
		return "", true
	case errors.Is(err, content.ErrNoProfile):
		return "No profile loaded. Set one with PUT /api/v1/profile.", true
	case content.IsRateLimited(err):
		respondWithRateLimit(w, err)
		return "", false
	case content.IsConfiguration(err):
		respondWithError(w, http.StatusServiceUnavailable, err.Error(), err)
		return "", false
	default:
		respondWithError(w, http.StatusInternalServerError, "Failed to aggregate content", err)
		return "", false
	}
}
