// Package source defines the location sample stream consumed by the tracker
// and the MQTT implementation of it. Delivery failures are advisory; they
// never stop the consumer on their own.
package source

import (
	"errors"
	"time"

	"github.com/amirkokoaa-byte/kabten/internal/shared/geo"
)

// ErrUnsupported is returned by Subscribe when no sample source is available
// in this environment. Callers report it once and fail the activation.
var ErrUnsupported = errors.New("sample source unavailable")

// ErrorKind classifies delivery failures surfaced to the consumer.
type ErrorKind int

const (
	PermissionDenied ErrorKind = iota
	PositionUnavailable
	Timeout
	Unsupported
)

func (k ErrorKind) String() string {
	switch k {
	case PermissionDenied:
		return "permission-denied"
	case PositionUnavailable:
		return "position-unavailable"
	case Timeout:
		return "timeout"
	default:
		return "unsupported-environment"
	}
}

// Handler receives samples and delivery failures from a subscription.
type Handler struct {
	OnSample func(pos geo.Coordinate, at time.Time)
	OnError  func(kind ErrorKind)
}

// Subscription is the opaque handle for an active stream registration.
// Unsubscribe must stop delivery synchronously.
type Subscription interface {
	Unsubscribe() error
}

// Source supplies a continuous stream of location samples.
type Source interface {
	Subscribe(h Handler) (Subscription, error)
}
