// Package report manages community hazard reports and their verification
// lifecycle. Resolved reports feed the reporter's reputation.
package report

import (
	"errors"
	"time"

	"github.com/saferoute/saferoute/pkg/geo"
)

// Sentinel errors for report operations.
var (
	// ErrReportNotFound indicates the report does not exist.
	ErrReportNotFound = errors.New("report not found")
	// ErrInvalidCoordinates indicates the report location is out of range.
	ErrInvalidCoordinates = errors.New("invalid coordinates")
	// ErrInvalidHazardType indicates an unknown hazard type.
	ErrInvalidHazardType = errors.New("invalid hazard type")
	// ErrAlreadyResolved indicates the report was already verified or rejected.
	ErrAlreadyResolved = errors.New("report already resolved")
	// ErrSelfVerification indicates a user tried to verify their own report.
	ErrSelfVerification = errors.New("cannot verify own report")
)

// HazardType classifies what a report is about.
type HazardType string

const (
	HazardPoorLighting   HazardType = "poor_lighting"
	HazardBrokenPavement HazardType = "broken_pavement"
	HazardOpenDrain      HazardType = "open_drain"
	HazardStrayAnimals   HazardType = "stray_animals"
	HazardHarassment     HazardType = "harassment"
	HazardAccidentProne  HazardType = "accident_prone"
	HazardConstruction   HazardType = "construction"
	HazardOther          HazardType = "other"
)

// Valid reports whether t is a known hazard type.
func (t HazardType) Valid() bool {
	switch t {
	case HazardPoorLighting, HazardBrokenPavement, HazardOpenDrain,
		HazardStrayAnimals, HazardHarassment, HazardAccidentProne,
		HazardConstruction, HazardOther:
		return true
	default:
		return false
	}
}

// Status is a report's position in the verification lifecycle.
type Status string

const (
	StatusPending  Status = "pending"
	StatusVerified Status = "verified"
	StatusRejected Status = "rejected"
)

// Report is a community hazard report.
type Report struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Location    geo.Point  `json:"location"`
	HazardType  HazardType `json:"hazard_type"`
	Description string     `json:"description,omitempty"`
	Status      Status     `json:"status"`

	// ResolvedBy is the user who verified or rejected the report.
	ResolvedBy string `json:"resolved_by,omitempty"`

	CreatedAt  time.Time  `json:"created_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}

// CreateRequest holds the input for a new report.
type CreateRequest struct {
	UserID      string
	Location    geo.Point
	HazardType  HazardType
	Description string
}
