// Package models provides request and response models for the SafeRoute API.
package models

import "time"

// Point represents a geographic coordinate.
type Point struct {
	Lat float64 `json:"lat" validate:"required,gte=-90,lte=90"`
	Lon float64 `json:"lon" validate:"required,gte=-180,lte=180"`
}

// UserType represents the kind of traveler being scored or routed.
type UserType string

const (
	UserTypePedestrian UserType = "PEDESTRIAN"
	UserTypeTwoWheeler UserType = "TWO_WHEELER"
	UserTypeCyclist    UserType = "CYCLIST"
)

// TimeOfDay represents the lighting period a score applies to.
type TimeOfDay string

const (
	TimeOfDayDay     TimeOfDay = "DAY"
	TimeOfDayEvening TimeOfDay = "EVENING"
	TimeOfDayNight   TimeOfDay = "NIGHT"
)

// RouteKind identifies a route alternative.
type RouteKind string

const (
	RouteKindSafest   RouteKind = "SAFEST"
	RouteKindBalanced RouteKind = "BALANCED"
	RouteKindFastest  RouteKind = "FASTEST"
)

// HealthStatus represents the health status of a service.
type HealthStatus string

const (
	HealthStatusOK       HealthStatus = "OK"
	HealthStatusDegraded HealthStatus = "DEGRADED"
	HealthStatusFail     HealthStatus = "FAIL"
)

// Timestamp is a helper type for time.Time with custom JSON formatting.
type Timestamp time.Time

// MarshalJSON implements json.Marshaler for Timestamp.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Time(t).Format(time.RFC3339) + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler for Timestamp.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	// Remove quotes
	s := string(data[1 : len(data)-1])
	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return err
	}
	*t = Timestamp(parsed)
	return nil
}

// Time returns the underlying time.Time.
func (t Timestamp) Time() time.Time {
	return time.Time(t)
}
