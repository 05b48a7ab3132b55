// Package worker provides background job processing for SafeRoute.
package worker

import (
	"time"
)

// Point is a geographic coordinate.
type Point struct {
	Lat float64
	Lon float64
}

// RefreshTarget is a named group of points to keep warm, typically the
// neighborhood centers and transit hubs of one area.
type RefreshTarget struct {
	Name string

	// Points to refresh within the target area.
	Points []Point

	// Priority orders refresh work, lower first.
	Priority int
}

// RefreshConfig holds configuration for the factor source refresh job. The
// per-source flags and InvalidateDarkSpots all default to true in
// DefaultRefreshConfig.
type RefreshConfig struct {
	// Targets are the areas to refresh. Empty falls back to
	// DefaultRefreshTargets.
	Targets []RefreshTarget

	// Concurrency is the number of points refreshed in parallel (default 3).
	Concurrency int

	// Timeout bounds the refresh of a single point (default 30s).
	Timeout time.Duration

	RefreshLighting bool
	RefreshPOI      bool
	RefreshWeather  bool

	// InvalidateDarkSpots drops the cached dark spot counts after a refresh
	// pass so newly verified hazard reports show up in scores.
	InvalidateDarkSpots bool
}

// DefaultRefreshConfig returns the default refresh configuration.
func DefaultRefreshConfig() RefreshConfig {
	return RefreshConfig{
		Targets:             DefaultRefreshTargets(),
		Concurrency:         3,
		Timeout:             30 * time.Second,
		RefreshLighting:     true,
		RefreshPOI:          true,
		RefreshWeather:      true,
		InvalidateDarkSpots: true,
	}
}

// DefaultRefreshTargets covers the Chennai metropolitan area, weighted
// toward dense residential neighborhoods and the corridors pedestrians
// actually walk after dark.
func DefaultRefreshTargets() []RefreshTarget {
	return []RefreshTarget{
		{
			Name:     "Chennai Central",
			Priority: 1,
			Points: []Point{
				{Lat: 13.0827, Lon: 80.2707}, // Chennai Central station
				{Lat: 13.0732, Lon: 80.2609}, // Egmore
				{Lat: 13.0569, Lon: 80.2425}, // Nungambakkam
				{Lat: 13.0500, Lon: 80.2824}, // Marina Beach
			},
		},
		{
			Name:     "T. Nagar",
			Priority: 1,
			Points: []Point{
				{Lat: 13.0418, Lon: 80.2341}, // Pondy Bazaar
				{Lat: 13.0339, Lon: 80.2693}, // Mylapore
			},
		},
		{
			Name:     "Anna Nagar",
			Priority: 1,
			Points: []Point{
				{Lat: 13.0850, Lon: 80.2101}, // Anna Nagar Tower Park
				{Lat: 13.1143, Lon: 80.2329}, // Perambur
			},
		},
		{
			Name:     "Adyar",
			Priority: 1,
			Points: []Point{
				{Lat: 13.0067, Lon: 80.2572}, // Adyar signal
				{Lat: 13.0002, Lon: 80.2668}, // Besant Nagar
			},
		},
		{
			Name:     "Guindy",
			Priority: 2,
			Points: []Point{
				{Lat: 13.0102, Lon: 80.2123}, // Guindy station
				{Lat: 12.9791, Lon: 80.2212}, // Velachery
			},
		},
		{
			Name:     "OMR",
			Priority: 2,
			Points: []Point{
				{Lat: 12.9010, Lon: 80.2279}, // Sholinganallur
			},
		},
		{
			Name:     "Porur",
			Priority: 3,
			Points: []Point{
				{Lat: 13.0382, Lon: 80.1565}, // Porur junction
			},
		},
		{
			Name:     "Tambaram",
			Priority: 3,
			Points: []Point{
				{Lat: 12.9249, Lon: 80.1000}, // Tambaram station
			},
		},
		{
			Name:     "Avadi",
			Priority: 3,
			Points: []Point{
				{Lat: 13.1147, Lon: 80.1098}, // Avadi
			},
		},
	}
}

// AllPoints flattens every target's points in configuration order.
func (c RefreshConfig) AllPoints() []Point {
	var points []Point
	for _, target := range c.Targets {
		points = append(points, target.Points...)
	}
	return points
}

// TotalPoints counts the points across all targets.
func (c RefreshConfig) TotalPoints() int {
	total := 0
	for _, target := range c.Targets {
		total += len(target.Points)
	}
	return total
}
