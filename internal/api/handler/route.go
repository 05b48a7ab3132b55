package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/saferoute/saferoute/internal/api/models"
	"github.com/saferoute/saferoute/internal/api/response"
	"github.com/saferoute/saferoute/internal/routeplan"
	"github.com/saferoute/saferoute/pkg/geo"
)

// RouteHandler handles route calculation endpoints.
type RouteHandler struct {
	optimizer  *routeplan.Optimizer
	repository routeplan.Repository
	logger     zerolog.Logger
}

// NewRouteHandler creates a new RouteHandler. The repository may be nil, in
// which case plans are not persisted.
func NewRouteHandler(optimizer *routeplan.Optimizer, repository routeplan.Repository, logger zerolog.Logger) *RouteHandler {
	return &RouteHandler{
		optimizer:  optimizer,
		repository: repository,
		logger:     logger.With().Str("component", "route_handler").Logger(),
	}
}

// CalculateRoute handles POST /v1/routes:calculate - compute safety-aware
// route options between two points.
func (h *RouteHandler) CalculateRoute(w http.ResponseWriter, r *http.Request) {
	var input models.RouteCalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	if input.Start == nil || input.End == nil {
		response.BadRequest(w, r, "start and end are required", []models.FieldError{
			{Field: "start", Message: "required", Code: "REQUIRED"},
			{Field: "end", Message: "required", Code: "REQUIRED"},
		})
		return
	}

	preference := 50
	if input.SafetyPreference != nil {
		preference = *input.SafetyPreference
	}

	req := routeplan.Request{
		Start:            geo.Point{Lat: input.Start.Lat, Lon: input.Start.Lon},
		End:              geo.Point{Lat: input.End.Lat, Lon: input.End.Lon},
		UserType:         userTypeFromAPI(input.UserType),
		TimeOfDay:        timeOfDayFromAPI(input.TimeOfDay),
		SafetyPreference: preference,
	}

	plan, err := h.optimizer.Plan(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, routeplan.ErrInvalidCoordinates):
			response.BadRequest(w, r, "coordinates out of range", nil)
		case errors.Is(err, routeplan.ErrInvalidPreference):
			response.BadRequest(w, r, "safetyPreference must be between 0 and 100", []models.FieldError{
				{Field: "safetyPreference", Message: "must be between 0 and 100", Code: "OUT_OF_RANGE"},
			})
		default:
			response.InternalError(w, r, "failed to calculate route")
		}
		return
	}

	// Persistence is best effort; a computed plan is worth returning even if
	// the write fails.
	if h.repository != nil {
		if err := h.repository.Save(r.Context(), plan); err != nil {
			h.logger.Error().Err(err).Str("plan_id", plan.ID).Msg("failed to persist route plan")
		}
	}

	w.Header().Set("Cache-Control", "private, max-age=60")
	response.JSON(w, r, http.StatusOK, routePlanResponse(plan))
}

// GetRoute handles GET /v1/routes/{routeId} - retrieve a previously computed
// plan.
func (h *RouteHandler) GetRoute(w http.ResponseWriter, r *http.Request) {
	if h.repository == nil {
		response.NotFound(w, r, "route plan not found")
		return
	}

	id := pathParam(r, "routeId")
	plan, err := h.repository.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, routeplan.ErrPlanNotFound) {
			response.NotFound(w, r, "route plan not found")
			return
		}
		response.InternalError(w, r, "failed to load route plan")
		return
	}

	response.JSON(w, r, http.StatusOK, routePlanResponse(plan))
}

// routePlanResponse converts a domain plan to the API shape.
func routePlanResponse(plan *routeplan.Plan) models.RouteCalculateResponse {
	options := make([]models.RouteOption, 0, len(plan.Options))
	for _, opt := range plan.Options {
		options = append(options, models.RouteOption{
			Kind:             routeKindToAPI(opt.Kind),
			GeometryPolyline: opt.GeometryPolyline,
			Waypoints:        pointsToAPI(opt.Waypoints),
			DistanceMeters:   opt.DistanceMeters,
			DurationSeconds:  opt.DurationSeconds,
			SafetyScore:      opt.SafetyScore,
			Cost:             opt.Cost,
		})
	}

	return models.RouteCalculateResponse{
		ID:               plan.ID,
		Start:            models.Point{Lat: plan.Start.Lat, Lon: plan.Start.Lon},
		End:              models.Point{Lat: plan.End.Lat, Lon: plan.End.Lon},
		Options:          options,
		Recommended:      routeKindToAPI(plan.Recommended),
		TimeWeight:       plan.TimeWeight,
		SafetyWeight:     plan.SafetyWeight,
		Fallback:         plan.Fallback,
		SampledWaypoints: plan.SampledWaypoints,
		Confidence:       plan.Confidence,
		ComputedAt:       models.Timestamp(plan.ComputedAt),
	}
}

func routeKindToAPI(kind routeplan.OptionKind) models.RouteKind {
	switch kind {
	case routeplan.OptionSafest:
		return models.RouteKindSafest
	case routeplan.OptionFastest:
		return models.RouteKindFastest
	default:
		return models.RouteKindBalanced
	}
}

func pointsToAPI(points []geo.Point) []models.Point {
	if len(points) == 0 {
		return nil
	}
	out := make([]models.Point, 0, len(points))
	for _, p := range points {
		out = append(out, models.Point{Lat: p.Lat, Lon: p.Lon})
	}
	return out
}
