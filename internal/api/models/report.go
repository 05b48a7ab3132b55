package models

// ReportCreateRequest is the request body for submitting a hazard report.
type ReportCreateRequest struct {
	Location    Point  `json:"location"`
	HazardType  string `json:"hazardType" validate:"required"`
	Description string `json:"description,omitempty"`
}

// ReportVerifyRequest is the request body for resolving a hazard report.
type ReportVerifyRequest struct {
	// Verified is true to confirm the report, false to reject it.
	Verified bool `json:"verified"`
}

// ReportResponse is a hazard report.
type ReportResponse struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	Location    Point      `json:"location"`
	HazardType  string     `json:"hazardType"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status"`
	ResolvedBy  string     `json:"resolvedBy,omitempty"`
	CreatedAt   Timestamp  `json:"createdAt"`
	ResolvedAt  *Timestamp `json:"resolvedAt,omitempty"`
}

// ReportListResponse is a list of hazard reports.
type ReportListResponse struct {
	Reports []ReportResponse `json:"reports"`
}
