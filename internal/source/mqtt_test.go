package source

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/amirkokoaa-byte/kabten/internal/shared/geo"
)

func TestSubscribeNilClient(t *testing.T) {
	src := NewMQTTSource(nil, "kabten/location", zerolog.Nop())
	if _, err := src.Subscribe(Handler{OnSample: func(geo.Coordinate, time.Time) {}}); err != ErrUnsupported {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestHandleValidPayload(t *testing.T) {
	src := NewMQTTSource(nil, "kabten/location", zerolog.Nop())

	var gotPos geo.Coordinate
	var gotAt time.Time
	h := Handler{
		OnSample: func(pos geo.Coordinate, at time.Time) {
			gotPos = pos
			gotAt = at
		},
		OnError: func(ErrorKind) { t.Fatalf("unexpected error callback") },
	}

	src.handle(h, []byte(`{"latitude":30.0444,"longitude":31.2357,"recorded_at":1704153600}`))

	if gotPos.Latitude != 30.0444 || gotPos.Longitude != 31.2357 {
		t.Fatalf("unexpected position: %+v", gotPos)
	}
	if gotAt.Unix() != 1704153600 {
		t.Fatalf("unexpected timestamp: %v", gotAt)
	}
}

func TestHandleMissingTimestampUsesNow(t *testing.T) {
	src := NewMQTTSource(nil, "kabten/location", zerolog.Nop())

	var gotAt time.Time
	h := Handler{OnSample: func(_ geo.Coordinate, at time.Time) { gotAt = at }}

	before := time.Now()
	src.handle(h, []byte(`{"latitude":1,"longitude":2}`))
	if gotAt.Before(before) {
		t.Fatalf("expected current timestamp, got %v", gotAt)
	}
}

func TestHandleMalformedPayload(t *testing.T) {
	src := NewMQTTSource(nil, "kabten/location", zerolog.Nop())

	var gotKind ErrorKind
	called := false
	h := Handler{
		OnSample: func(geo.Coordinate, time.Time) { t.Fatalf("unexpected sample") },
		OnError: func(kind ErrorKind) {
			called = true
			gotKind = kind
		},
	}

	src.handle(h, []byte(`not-json`))
	if !called || gotKind != PositionUnavailable {
		t.Fatalf("expected position-unavailable, got called=%v kind=%v", called, gotKind)
	}
}

func TestHandleOutOfRangePayload(t *testing.T) {
	src := NewMQTTSource(nil, "kabten/location", zerolog.Nop())

	called := false
	h := Handler{
		OnSample: func(geo.Coordinate, time.Time) { t.Fatalf("unexpected sample") },
		OnError:  func(ErrorKind) { called = true },
	}

	src.handle(h, []byte(`{"latitude":120,"longitude":0}`))
	if !called {
		t.Fatalf("expected error callback for latitude out of range")
	}
}

func TestErrorKindString(t *testing.T) {
	cases := map[ErrorKind]string{
		PermissionDenied:    "permission-denied",
		PositionUnavailable: "position-unavailable",
		Timeout:             "timeout",
		Unsupported:         "unsupported-environment",
	}
	for kind, want := range cases {
		if kind.String() != want {
			t.Fatalf("unexpected string for %d: %q", kind, kind.String())
		}
	}
}

func TestConnectEmptyBroker(t *testing.T) {
	client, err := Connect("", "kabten-test")
	if err != nil {
		t.Fatalf("empty broker must not fail: %v", err)
	}
	if client != nil {
		t.Fatalf("expected nil client for empty broker")
	}
}
