package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/saferoute/saferoute/internal/api/models"
	"github.com/saferoute/saferoute/internal/api/response"
	"github.com/saferoute/saferoute/internal/report"
	"github.com/saferoute/saferoute/pkg/geo"
)

// ReportHandler handles hazard report endpoints.
type ReportHandler struct {
	service *report.Service
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(service *report.Service) *ReportHandler {
	return &ReportHandler{service: service}
}

// CreateReport handles POST /v1/reports - submit a hazard report.
func (h *ReportHandler) CreateReport(w http.ResponseWriter, r *http.Request) {
	var input models.ReportCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	created, err := h.service.Create(r.Context(), report.CreateRequest{
		UserID:      GetUserID(r.Context()),
		Location:    geo.Point{Lat: input.Location.Lat, Lon: input.Location.Lon},
		HazardType:  report.HazardType(input.HazardType),
		Description: input.Description,
	})
	if err != nil {
		switch {
		case errors.Is(err, report.ErrInvalidCoordinates):
			response.BadRequest(w, r, "coordinates out of range", nil)
		case errors.Is(err, report.ErrInvalidHazardType):
			response.BadRequest(w, r, "unknown hazard type", []models.FieldError{
				{Field: "hazardType", Message: "unknown hazard type", Code: "INVALID"},
			})
		default:
			response.InternalError(w, r, "failed to create report")
		}
		return
	}

	response.Created(w, r, "/v1/reports/"+created.ID, reportResponse(created))
}

// GetReport handles GET /v1/reports/{reportId} - fetch a single report.
func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	rep, err := h.service.Get(r.Context(), pathParam(r, "reportId"))
	if err != nil {
		if errors.Is(err, report.ErrReportNotFound) {
			response.NotFound(w, r, "report not found")
			return
		}
		response.InternalError(w, r, "failed to load report")
		return
	}

	response.JSON(w, r, http.StatusOK, reportResponse(rep))
}

// ListReports handles GET /v1/reports - list reports near a point.
//
// Query parameters: lat, lon (required), radiusMeters (default 1000),
// status, hazardType (optional filters).
func (h *ReportHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	lat, lon, fieldErrs := parseLatLon(r)
	if len(fieldErrs) > 0 {
		response.BadRequest(w, r, "invalid coordinates", fieldErrs)
		return
	}

	radius := 1000.0
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

	filter := report.ListFilter{
		Status:     report.Status(r.URL.Query().Get("status")),
		HazardType: report.HazardType(r.URL.Query().Get("hazardType")),
	}

	reports, err := h.service.ListNear(r.Context(), lat, lon, radius, filter)
	if err != nil {
		if errors.Is(err, report.ErrInvalidCoordinates) {
			response.BadRequest(w, r, "coordinates out of range", nil)
			return
		}
		response.InternalError(w, r, "failed to list reports")
		return
	}

	resp := models.ReportListResponse{Reports: make([]models.ReportResponse, 0, len(reports))}
	for _, rep := range reports {
		resp.Reports = append(resp.Reports, reportResponse(rep))
	}

	response.JSON(w, r, http.StatusOK, resp)
}

// VerifyReport handles POST /v1/reports/{reportId}:verify - confirm or reject
// a pending report. The outcome feeds the reporter's reputation.
func (h *ReportHandler) VerifyReport(w http.ResponseWriter, r *http.Request) {
	var input models.ReportVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	resolved, err := h.service.Resolve(r.Context(), pathParam(r, "reportId"), GetUserID(r.Context()), input.Verified)
	if err != nil {
		switch {
		case errors.Is(err, report.ErrReportNotFound):
			response.NotFound(w, r, "report not found")
		case errors.Is(err, report.ErrAlreadyResolved):
			response.Conflict(w, r, "report already resolved")
		case errors.Is(err, report.ErrSelfVerification):
			response.Conflict(w, r, "cannot verify your own report")
		default:
			response.InternalError(w, r, "failed to verify report")
		}
		return
	}

	response.JSON(w, r, http.StatusOK, reportResponse(resolved))
}

// reportResponse converts a domain report to the API shape.
func reportResponse(rep *report.Report) models.ReportResponse {
	resp := models.ReportResponse{
		ID:          rep.ID,
		UserID:      rep.UserID,
		Location:    models.Point{Lat: rep.Location.Lat, Lon: rep.Location.Lon},
		HazardType:  string(rep.HazardType),
		Description: rep.Description,
		Status:      string(rep.Status),
		ResolvedBy:  rep.ResolvedBy,
		CreatedAt:   models.Timestamp(rep.CreatedAt),
	}
	if rep.ResolvedAt != nil {
		resolvedAt := models.Timestamp(*rep.ResolvedAt)
		resp.ResolvedAt = &resolvedAt
	}
	return resp
}
