// Package tracker owns the dual-mode distance accumulation state machine:
// a user-delimited trip and a longer-lived work session, both fed by one
// shared location sample subscription.
package tracker

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/amirkokoaa-byte/kabten/internal/fare"
	"github.com/amirkokoaa-byte/kabten/internal/ledger"
	"github.com/amirkokoaa-byte/kabten/internal/shared/geo"
	"github.com/amirkokoaa-byte/kabten/internal/source"
	"github.com/amirkokoaa-byte/kabten/internal/stream"
)

// MinTripDistanceKm gates trip counting: stopping a trip below it folds the
// distance into the ledger but does not count the trip.
const MinTripDistanceKm = 0.01

// RebasePolicy controls what anchors the next delta after a rejected
// sub-threshold move.
type RebasePolicy int

const (
	// RebaseAlways advances the anchor on every sample, so consecutive
	// sub-threshold moves are each measured against the immediately
	// preceding fix and slow cumulative drift is lost. This matches the
	// historical behavior.
	RebaseAlways RebasePolicy = iota
	// AccumulateUntilThreshold holds the anchor until a delta clears the
	// threshold, so slow drift eventually integrates into distance.
	AccumulateUntilThreshold
)

// ParseRebasePolicy maps a config string to a policy; unknown values fall
// back to RebaseAlways.
func ParseRebasePolicy(s string) RebasePolicy {
	if s == "accumulate" {
		return AccumulateUntilThreshold
	}
	return RebaseAlways
}

// Options configures an Engine.
type Options struct {
	Store  ledger.Store
	Source source.Source
	Hub    *stream.Hub

	RatePerKm                  float64
	RebasePolicy               RebasePolicy
	StopTripOnPermissionDenied bool

	// Now is the clock used for trip start times and day keys. Defaults to
	// time.Now.
	Now    func() time.Time
	Logger zerolog.Logger
}

// modeState is the per-mode running distance and delta anchor.
type modeState struct {
	distanceKm   float64
	lastPosition *geo.Coordinate
}

// advance integrates a sample and returns the accepted delta, or 0 when the
// move was discarded as jitter.
func (m *modeState) advance(pos geo.Coordinate, policy RebasePolicy) float64 {
	if m.lastPosition == nil {
		p := pos
		m.lastPosition = &p
		return 0
	}

	delta := geo.DeltaKm(*m.lastPosition, pos)
	if geo.Accepted(delta) {
		m.distanceKm += delta
		p := pos
		m.lastPosition = &p
		return delta
	}
	if policy == RebaseAlways {
		p := pos
		m.lastPosition = &p
	}
	return 0
}

func (m *modeState) reset() {
	m.distanceKm = 0
	m.lastPosition = nil
}

// Engine serializes all tracking state behind one mutex; sample delivery,
// rollover ticks and HTTP handlers interleave but never overlap.
type Engine struct {
	mu sync.Mutex

	tripActive    bool
	tripID        string
	tripStartedAt time.Time
	trip          modeState

	workActive bool
	work       modeState

	led ledger.Ledger

	store  ledger.Store
	source source.Source
	sub    source.Subscription
	hub    *stream.Hub

	rate                       float64
	policy                     RebasePolicy
	stopTripOnPermissionDenied bool
	now                        func() time.Time
	log                        zerolog.Logger
}

// NewEngine loads the persisted ledger, discarding it when it is missing,
// unreadable or stamped with a day other than today.
func NewEngine(ctx context.Context, opts Options) *Engine {
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	e := &Engine{
		store:                      opts.Store,
		source:                     opts.Source,
		hub:                        opts.Hub,
		rate:                       opts.RatePerKm,
		policy:                     opts.RebasePolicy,
		stopTripOnPermissionDenied: opts.StopTripOnPermissionDenied,
		now:                        now,
		log:                        opts.Logger,
	}

	today := ledger.DateKey(now())
	loaded, ok, err := opts.Store.Load(ctx)
	switch {
	case err != nil:
		e.log.Warn().Err(err).Msg("ledger load failed, starting fresh")
		e.led = ledger.New(today)
	case !ok || loaded.Stale(today):
		e.led = ledger.New(today)
	default:
		e.led = loaded
	}
	return e
}

// StartTrip zeroes the trip counters and activates trip tracking. It fails
// only when no sample subscription can be established.
func (e *Engine) StartTrip(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.trip.reset()
	e.tripID = uuid.NewString()
	e.tripStartedAt = e.now()
	e.tripActive = true

	if err := e.ensureSubscribedLocked(); err != nil {
		e.tripActive = false
		e.log.Error().Err(err).Msg("trip start failed")
		return err
	}

	e.log.Info().Str("trip_id", e.tripID).Msg("trip started")
	e.broadcastLocked()
	return nil
}

// StopTrip folds the running trip distance into the daily ledger and
// deactivates trip tracking. The subscription is released when work mode is
// inactive too.
func (e *Engine) StopTrip(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopTripLocked(ctx)
}

func (e *Engine) stopTripLocked(ctx context.Context) {
	if !e.tripActive {
		return
	}

	e.led.TotalTripDistanceKm += e.trip.distanceKm
	if e.trip.distanceKm > MinTripDistanceKm {
		e.led.TripCount++
	}
	e.tripActive = false
	// distance and lastPosition stay as last-known values until the next
	// StartTrip; active=false gates further accumulation

	e.releaseIfIdleLocked()
	e.saveLocked(ctx)
	e.log.Info().
		Str("trip_id", e.tripID).
		Float64("distance_km", e.trip.distanceKm).
		Int("trip_count", e.led.TripCount).
		Msg("trip stopped")
	e.broadcastLocked()
}

// StartWork zeroes the work-session counters and activates work tracking.
// The ledger's day total is untouched.
func (e *Engine) StartWork(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.work.reset()
	e.workActive = true

	if err := e.ensureSubscribedLocked(); err != nil {
		e.workActive = false
		e.log.Error().Err(err).Msg("work session start failed")
		return err
	}

	e.log.Info().Msg("work session started")
	e.broadcastLocked()
	return nil
}

// StopWork deactivates work tracking. Work distance is already resident in
// the ledger, so nothing is folded here.
func (e *Engine) StopWork(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.workActive {
		return
	}
	e.workActive = false
	e.releaseIfIdleLocked()
	e.log.Info().Float64("distance_km", e.work.distanceKm).Msg("work session stopped")
	e.broadcastLocked()
}

// ToggleWork flips work mode and reports the resulting activation state.
func (e *Engine) ToggleWork(ctx context.Context) (bool, error) {
	e.mu.Lock()
	active := e.workActive
	e.mu.Unlock()

	if active {
		e.StopWork(ctx)
		return false, nil
	}
	if err := e.StartWork(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// onSample integrates one location fix into every active mode. Work-mode
// distance is folded into the ledger immediately so the daily total is live
// mid-session.
func (e *Engine) onSample(pos geo.Coordinate, at time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.tripActive && !e.workActive {
		return
	}

	if e.tripActive {
		if added := e.trip.advance(pos, e.policy); added > 0 {
			e.log.Debug().Time("at", at).Float64("delta_km", added).Msg("trip distance accepted")
		}
	}
	if e.workActive {
		if added := e.work.advance(pos, e.policy); added > 0 {
			e.led.TotalWorkDistanceKm += added
			e.saveLocked(context.Background())
		}
	}
	e.broadcastLocked()
}

// onSourceError logs an advisory; running totals are unaffected. A
// permission-denied failure may stop the active trip when that policy is
// enabled.
func (e *Engine) onSourceError(kind source.ErrorKind) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.log.Warn().Str("kind", kind.String()).Msg("sample delivery failure")

	if kind == source.PermissionDenied && e.stopTripOnPermissionDenied && e.tripActive {
		e.stopTripLocked(context.Background())
	}
}

// CheckRollover replaces the ledger with a zeroed one when the calendar day
// changed, and zeroes the live work-session counter so it cannot
// desynchronize from the reset ledger.
func (e *Engine) CheckRollover(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	today := ledger.DateKey(e.now())
	if !e.led.Stale(today) {
		return
	}

	previous := e.led.DateKey
	e.led = ledger.New(today)
	e.work.distanceKm = 0
	e.saveLocked(ctx)
	e.log.Info().Str("from", previous).Str("to", today).Msg("daily ledger rolled over")
	e.broadcastLocked()
}

// SetRate updates the per-kilometer rate used for earnings projections.
func (e *Engine) SetRate(ratePerKm float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if ratePerKm <= 0 {
		return
	}
	e.rate = ratePerKm
	e.broadcastLocked()
}

// Close releases the sample subscription regardless of mode state. Tracking
// state is not mutated; the persisted ledger already reflects it.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.sub == nil {
		return
	}
	if err := e.sub.Unsubscribe(); err != nil {
		e.log.Warn().Err(err).Msg("subscription release failed")
	}
	e.sub = nil
}

func (e *Engine) ensureSubscribedLocked() error {
	if e.sub != nil {
		return nil
	}
	sub, err := e.source.Subscribe(source.Handler{
		OnSample: e.onSample,
		OnError:  e.onSourceError,
	})
	if err != nil {
		return err
	}
	e.sub = sub
	return nil
}

// releaseIfIdleLocked drops the subscription iff both modes are inactive, so
// no further samples are delivered once nothing consumes them.
func (e *Engine) releaseIfIdleLocked() {
	if e.sub == nil || e.tripActive || e.workActive {
		return
	}
	if err := e.sub.Unsubscribe(); err != nil {
		e.log.Warn().Err(err).Msg("subscription release failed")
	}
	e.sub = nil
}

// saveLocked persists the ledger best-effort; the in-memory ledger stays
// authoritative when the write fails.
func (e *Engine) saveLocked(ctx context.Context) {
	if err := e.store.Save(ctx, e.led); err != nil {
		e.log.Warn().Err(err).Msg("ledger save failed")
	}
}

func (e *Engine) broadcastLocked() {
	if e.hub == nil {
		return
	}
	payload, err := json.Marshal(e.snapshotLocked())
	if err != nil {
		return
	}
	e.hub.Broadcast(stream.TopicSnapshot, payload)
}

func (e *Engine) snapshotLocked() Snapshot {
	s := Snapshot{
		Trip: TripSnapshot{
			ID:         e.tripID,
			Active:     e.tripActive,
			DistanceKm: e.trip.distanceKm,
		},
		Work: WorkSnapshot{
			Active:     e.workActive,
			DistanceKm: e.work.distanceKm,
		},
		Ledger:          e.led,
		RatePerKm:       e.rate,
		TripEarnings:    fare.Fare(e.trip.distanceKm, e.rate),
		DayTripEarnings: fare.Fare(e.led.TotalTripDistanceKm, e.rate),
		DayWorkEarnings: fare.Fare(e.led.TotalWorkDistanceKm, e.rate),
	}
	if !e.tripStartedAt.IsZero() {
		at := e.tripStartedAt
		s.Trip.StartedAt = &at
	}
	if e.trip.lastPosition != nil {
		p := *e.trip.lastPosition
		s.Trip.LastPosition = &p
	}
	if e.work.lastPosition != nil {
		p := *e.work.lastPosition
		s.Work.LastPosition = &p
	}
	return s
}

// Snapshot returns a read-only copy of the full tracking state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}
