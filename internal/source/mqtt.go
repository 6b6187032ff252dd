package source

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/amirkokoaa-byte/kabten/internal/shared/geo"
)

const subscribeTimeout = 5 * time.Second

// Connect dials the MQTT broker. An empty broker URL returns a nil client,
// which MQTTSource treats as an unsupported environment.
func Connect(broker, clientID string) (mqtt.Client, error) {
	if broker == "" {
		return nil, nil
	}

	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}
	return client, nil
}

type sampleMessage struct {
	Latitude   float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude  float64 `json:"longitude" validate:"gte=-180,lte=180"`
	RecordedAt int64   `json:"recorded_at" validate:"gte=0"`
}

// MQTTSource delivers location samples published on a single topic.
type MQTTSource struct {
	client   mqtt.Client
	topic    string
	validate *validator.Validate
	log      zerolog.Logger
}

func NewMQTTSource(client mqtt.Client, topic string, logger zerolog.Logger) *MQTTSource {
	return &MQTTSource{
		client:   client,
		topic:    topic,
		validate: validator.New(),
		log:      logger,
	}
}

func (s *MQTTSource) Subscribe(h Handler) (Subscription, error) {
	if s.client == nil {
		return nil, ErrUnsupported
	}

	token := s.client.Subscribe(s.topic, 1, func(_ mqtt.Client, msg mqtt.Message) {
		s.handle(h, msg.Payload())
	})
	if !token.WaitTimeout(subscribeTimeout) {
		return nil, fmt.Errorf("mqtt subscribe %s: %w", s.topic, ErrUnsupported)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt subscribe %s: %w", s.topic, err)
	}

	s.log.Info().Str("topic", s.topic).Msg("location stream subscribed")
	return &mqttSubscription{source: s}, nil
}

func (s *MQTTSource) handle(h Handler, payload []byte) {
	var raw sampleMessage
	if err := json.Unmarshal(payload, &raw); err != nil {
		s.log.Warn().Err(err).Msg("invalid location payload")
		if h.OnError != nil {
			h.OnError(PositionUnavailable)
		}
		return
	}
	if err := s.validate.Struct(raw); err != nil {
		s.log.Warn().Err(err).Msg("location payload out of range")
		if h.OnError != nil {
			h.OnError(PositionUnavailable)
		}
		return
	}

	at := time.Now()
	if raw.RecordedAt > 0 {
		at = time.Unix(raw.RecordedAt, 0)
	}
	h.OnSample(geo.Coordinate{Latitude: raw.Latitude, Longitude: raw.Longitude}, at)
}

type mqttSubscription struct {
	source *MQTTSource
}

func (sub *mqttSubscription) Unsubscribe() error {
	token := sub.source.client.Unsubscribe(sub.source.topic)
	if !token.WaitTimeout(subscribeTimeout) {
		return fmt.Errorf("mqtt unsubscribe %s: timeout", sub.source.topic)
	}
	sub.source.log.Info().Str("topic", sub.source.topic).Msg("location stream released")
	return token.Error()
}
