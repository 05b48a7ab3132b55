package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/saferoute/saferoute/internal/api/models"
	"github.com/saferoute/saferoute/internal/api/response"
	"github.com/saferoute/saferoute/internal/safety"
	"github.com/saferoute/saferoute/pkg/geo"
)

// SafetyHandler handles safety score endpoints.
type SafetyHandler struct {
	engine     *safety.Engine
	repository safety.Repository
	logger     zerolog.Logger
}

// NewSafetyHandler creates a new SafetyHandler. The repository may be nil,
// in which case scores are not persisted and the latest-score endpoint
// returns 404.
func NewSafetyHandler(engine *safety.Engine, repository safety.Repository, logger zerolog.Logger) *SafetyHandler {
	return &SafetyHandler{engine: engine, repository: repository, logger: logger}
}

// GetScore handles GET /v1/safety/score - compute the safety score for a point.
//
// Query parameters: lat, lon (required), userType, timeOfDay (optional).
func (h *SafetyHandler) GetScore(w http.ResponseWriter, r *http.Request) {
	lat, lon, fieldErrs := parseLatLon(r)
	if len(fieldErrs) > 0 {
		response.BadRequest(w, r, "invalid coordinates", fieldErrs)
		return
	}

	req := safety.Request{
		Location:  geo.Point{Lat: lat, Lon: lon},
		UserType:  userTypeFromAPI(models.UserType(r.URL.Query().Get("userType"))),
		TimeOfDay: timeOfDayFromAPI(models.TimeOfDay(r.URL.Query().Get("timeOfDay"))),
	}

	result, err := h.engine.Score(r.Context(), req)
	if err != nil {
		if errors.Is(err, safety.ErrInvalidCoordinates) {
			response.BadRequest(w, r, "coordinates out of range", nil)
			return
		}
		response.InternalError(w, r, "failed to compute safety score")
		return
	}

	// Persist the snapshot best-effort; a storage hiccup should not fail
	// the score request.
	if h.repository != nil {
		if err := h.repository.Save(r.Context(), scoreRecord(result)); err != nil {
			h.logger.Error().Err(err).Msg("failed to persist safety score")
		}
	}

	w.Header().Set("Cache-Control", "private, max-age=60")
	response.JSON(w, r, http.StatusOK, safetyScoreResponse(result))
}

// GetLatest handles GET /v1/safety/latest - return the most recent persisted
// score near a point.
//
// Query parameters: lat, lon (required), radiusMeters (default 500).
func (h *SafetyHandler) GetLatest(w http.ResponseWriter, r *http.Request) {
	lat, lon, fieldErrs := parseLatLon(r)
	if len(fieldErrs) > 0 {
		response.BadRequest(w, r, "invalid coordinates", fieldErrs)
		return
	}

	radius := 500.0
	if raw := r.URL.Query().Get("radiusMeters"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed <= 0 {
			response.BadRequest(w, r, "radiusMeters must be a positive number", []models.FieldError{
				{Field: "radiusMeters", Message: "must be a positive number", Code: "INVALID"},
			})
			return
		}
		radius = parsed
	}

	if h.repository == nil {
		response.NotFound(w, r, "no score recorded near this location")
		return
	}

	record, err := h.repository.LatestNear(r.Context(), lat, lon, radius)
	if err != nil {
		if errors.Is(err, safety.ErrScoreNotFound) {
			response.NotFound(w, r, "no score recorded near this location")
			return
		}
		response.InternalError(w, r, "failed to load safety score")
		return
	}

	response.JSON(w, r, http.StatusOK, scoreSnapshotResponse(record))
}

// scoreRecord converts an engine result into a persistable snapshot.
func scoreRecord(result *safety.Result) *safety.Record {
	return &safety.Record{
		ID:             uuid.NewString(),
		Lat:            result.Location.Lat,
		Lon:            result.Location.Lon,
		OverallScore:   result.OverallScore,
		LightingScore:  result.Factors.Lighting.Score,
		FootfallScore:  result.Factors.Footfall.Score,
		HazardsScore:   result.Factors.Hazards.Score,
		ProximityScore: result.Factors.Proximity.Score,
		Confidence:     result.Confidence,
		UserType:       result.UserType,
		TimeOfDay:      result.TimeOfDay,
		ComputedAt:     result.ComputedAt,
	}
}

// scoreSnapshotResponse converts a stored snapshot to the API shape.
func scoreSnapshotResponse(record *safety.Record) models.SafetyScoreSnapshot {
	return models.SafetyScoreSnapshot{
		ID:             record.ID,
		Location:       models.Point{Lat: record.Lat, Lon: record.Lon},
		OverallScore:   record.OverallScore,
		LightingScore:  record.LightingScore,
		FootfallScore:  record.FootfallScore,
		HazardsScore:   record.HazardsScore,
		ProximityScore: record.ProximityScore,
		Confidence:     record.Confidence,
		UserType:       userTypeToAPI(record.UserType),
		TimeOfDay:      timeOfDayToAPI(record.TimeOfDay),
		ComputedAt:     models.Timestamp(record.ComputedAt),
	}
}

// parseLatLon extracts and validates lat/lon query parameters.
func parseLatLon(r *http.Request) (lat, lon float64, errs []models.FieldError) {
	var err error

	lat, err = strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	if err != nil {
		errs = append(errs, models.FieldError{Field: "lat", Message: "must be a number", Code: "INVALID"})
	}

	lon, err = strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if err != nil {
		errs = append(errs, models.FieldError{Field: "lon", Message: "must be a number", Code: "INVALID"})
	}

	return lat, lon, errs
}

// safetyScoreResponse converts a domain result to the API shape.
func safetyScoreResponse(result *safety.Result) models.SafetyScoreResponse {
	return models.SafetyScoreResponse{
		OverallScore: result.OverallScore,
		Factors: models.SafetyFactors{
			Lighting:  safetyFactor(result.Factors.Lighting),
			Footfall:  safetyFactor(result.Factors.Footfall),
			Hazards:   safetyFactor(result.Factors.Hazards),
			Proximity: safetyFactor(result.Factors.Proximity),
		},
		Weights: models.SafetyWeights{
			Lighting:  result.Weights.Lighting,
			Footfall:  result.Weights.Footfall,
			Hazards:   result.Weights.Hazards,
			Proximity: result.Weights.Proximity,
		},
		Confidence: result.Confidence,
		Degraded:   result.Degraded,
		Location:   models.Point{Lat: result.Location.Lat, Lon: result.Location.Lon},
		UserType:   userTypeToAPI(result.UserType),
		TimeOfDay:  timeOfDayToAPI(result.TimeOfDay),
		ComputedAt: models.Timestamp(result.ComputedAt),
	}
}

func safetyFactor(f safety.Factor) models.SafetyFactor {
	return models.SafetyFactor{
		Score:       f.Score,
		Weight:      f.Weight,
		Description: f.Description,
	}
}

func userTypeFromAPI(t models.UserType) safety.UserType {
	switch t {
	case models.UserTypeTwoWheeler:
		return safety.UserTypeTwoWheeler
	case models.UserTypeCyclist:
		return safety.UserTypeCyclist
	default:
		return safety.UserTypePedestrian
	}
}

func userTypeToAPI(t safety.UserType) models.UserType {
	switch t {
	case safety.UserTypeTwoWheeler:
		return models.UserTypeTwoWheeler
	case safety.UserTypeCyclist:
		return models.UserTypeCyclist
	default:
		return models.UserTypePedestrian
	}
}

func timeOfDayFromAPI(t models.TimeOfDay) safety.TimeOfDay {
	switch t {
	case models.TimeOfDayEvening:
		return safety.TimeOfDayEvening
	case models.TimeOfDayNight:
		return safety.TimeOfDayNight
	default:
		return safety.TimeOfDayDay
	}
}

func timeOfDayToAPI(t safety.TimeOfDay) models.TimeOfDay {
	switch t {
	case safety.TimeOfDayEvening:
		return models.TimeOfDayEvening
	case safety.TimeOfDayNight:
		return models.TimeOfDayNight
	default:
		return models.TimeOfDayDay
	}
}
