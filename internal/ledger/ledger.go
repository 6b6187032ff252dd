// Package ledger holds the single per-day aggregate of driven distance and
// trip counts. Prior days are discarded on rollover, not archived.
package ledger

import "time"

// Ledger is the durable daily summary. It is the only unit of persisted
// state; it is saved after every mutation and loaded once at startup.
type Ledger struct {
	TotalTripDistanceKm float64 `json:"total_trip_distance_km"`
	TripCount           int     `json:"trip_count"`
	TotalWorkDistanceKm float64 `json:"total_work_distance_km"`
	DateKey             string  `json:"date_key"`
}

// New returns a zeroed ledger stamped with the given day key.
func New(dateKey string) Ledger {
	return Ledger{DateKey: dateKey}
}

// DateKey renders t as a local-calendar day identifier, "YYYY-MM-DD".
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// Stale reports whether the ledger belongs to a day other than todayKey.
// A stale ledger is discarded wholesale, exactly as a rollover would.
func (l Ledger) Stale(todayKey string) bool {
	return l.DateKey != todayKey
}
