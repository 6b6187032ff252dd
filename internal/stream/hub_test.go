package stream

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func TestHubBroadcast(t *testing.T) {
	hub := NewHub(nil, zerolog.Nop())
	client := hub.Register(TopicSnapshot)
	defer hub.Unregister(client)

	payload := []byte(`{"trip":{"active":true}}`)
	hub.Broadcast(TopicSnapshot, payload)

	select {
	case msg := <-client.Send:
		if string(msg) != string(payload) {
			t.Fatalf("unexpected message")
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatalf("timeout waiting for message")
	}
}

func TestHubBroadcastOtherTopicIgnored(t *testing.T) {
	hub := NewHub(nil, zerolog.Nop())
	client := hub.Register(TopicSnapshot)
	defer hub.Unregister(client)

	hub.Broadcast("other", []byte("x"))

	select {
	case <-client.Send:
		t.Fatalf("unexpected message for other topic")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubRedisPublish(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})

	hub := NewHub(client, zerolog.Nop())
	hub.Broadcast(TopicSnapshot, []byte("payload"))
	// publish is fire-and-forget; just make sure nothing panics with redis wired
}

func TestHubHelpers(t *testing.T) {
	ch := redisChannel("abc")
	if ch == "" {
		t.Fatalf("expected channel")
	}
	if topicFromChannel(ch) != "abc" {
		t.Fatalf("unexpected topic")
	}
	if topicFromChannel("bad") != "" {
		t.Fatalf("expected empty topic")
	}
}
