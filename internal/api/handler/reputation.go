package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/saferoute/saferoute/internal/api/models"
	"github.com/saferoute/saferoute/internal/api/response"
	"github.com/saferoute/saferoute/internal/reputation"
)

// ReputationHandler handles reputation endpoints.
type ReputationHandler struct {
	service *reputation.Service
}

// NewReputationHandler creates a new ReputationHandler.
func NewReputationHandler(service *reputation.Service) *ReputationHandler {
	return &ReputationHandler{service: service}
}

// ComputeWilsonScore handles POST /v1/reputation/wilson-score - compute a
// Wilson score lower bound for arbitrary event counts.
func (h *ReputationHandler) ComputeWilsonScore(w http.ResponseWriter, r *http.Request) {
	var input models.WilsonScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	score, err := h.service.Compute(input.PositiveEvents, input.TotalEvents)
	if err != nil {
		if errors.Is(err, reputation.ErrInvalidEventCounts) {
			response.BadRequest(w, r, "event counts must be non-negative and positive must not exceed total", []models.FieldError{
				{Field: "positiveEvents", Message: "must be >= 0 and <= totalEvents", Code: "INVALID"},
			})
			return
		}
		response.InternalError(w, r, "failed to compute score")
		return
	}

	response.JSON(w, r, http.StatusOK, models.WilsonScoreResponse{
		Score:          score,
		PositiveEvents: input.PositiveEvents,
		TotalEvents:    input.TotalEvents,
	})
}

// RecordEvent handles POST /v1/reputation/events - record a verification
// outcome against a user's history.
func (h *ReputationHandler) RecordEvent(w http.ResponseWriter, r *http.Request) {
	var input models.ReputationEventRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	if input.UserID == "" {
		response.BadRequest(w, r, "userId is required", []models.FieldError{
			{Field: "userId", Message: "required", Code: "REQUIRED"},
		})
		return
	}

	rep, err := h.service.ApplyEvent(r.Context(), input.UserID, input.Positive)
	if err != nil {
		response.InternalError(w, r, "failed to record reputation event")
		return
	}

	response.JSON(w, r, http.StatusOK, reputationResponse(rep))
}

// GetReputation handles GET /v1/reputation/{userId} - fetch a user's
// reputation record. Users with no history get a zero-valued record.
func (h *ReputationHandler) GetReputation(w http.ResponseWriter, r *http.Request) {
	userID := pathParam(r, "userId")

	rep, err := h.service.Get(r.Context(), userID)
	if err != nil {
		response.InternalError(w, r, "failed to load reputation")
		return
	}

	response.JSON(w, r, http.StatusOK, reputationResponse(rep))
}

// reputationResponse converts a domain record to the API shape.
func reputationResponse(rep *reputation.Reputation) models.ReputationResponse {
	resp := models.ReputationResponse{
		UserID:         rep.UserID,
		Score:          rep.Score,
		Standing:       string(rep.Standing),
		PositiveEvents: rep.PositiveEvents,
		TotalEvents:    rep.TotalEvents,
	}
	if !rep.UpdatedAt.IsZero() {
		updatedAt := models.Timestamp(rep.UpdatedAt)
		resp.UpdatedAt = &updatedAt
	}
	return resp
}
