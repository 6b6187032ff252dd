package tracker

import (
	"time"

	"github.com/amirkokoaa-byte/kabten/internal/ledger"
	"github.com/amirkokoaa-byte/kabten/internal/shared/geo"
)

// TripSnapshot is the read-only view of the current trip.
type TripSnapshot struct {
	ID           string          `json:"id,omitempty"`
	Active       bool            `json:"active"`
	DistanceKm   float64         `json:"distance_km"`
	StartedAt    *time.Time      `json:"started_at,omitempty"`
	LastPosition *geo.Coordinate `json:"last_position,omitempty"`
}

// WorkSnapshot is the read-only view of the current work session.
type WorkSnapshot struct {
	Active       bool            `json:"active"`
	DistanceKm   float64         `json:"distance_km"`
	LastPosition *geo.Coordinate `json:"last_position,omitempty"`
}

// Snapshot bundles everything a presentation layer needs to render the
// tracker, including projected earnings at the configured rate.
type Snapshot struct {
	Trip            TripSnapshot  `json:"trip"`
	Work            WorkSnapshot  `json:"work"`
	Ledger          ledger.Ledger `json:"ledger"`
	RatePerKm       float64       `json:"rate_per_km"`
	TripEarnings    float64       `json:"trip_earnings"`
	DayTripEarnings float64       `json:"day_trip_earnings"`
	DayWorkEarnings float64       `json:"day_work_earnings"`
}
