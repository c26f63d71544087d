package kafka_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roombooking/config"
	"roombooking/infras/kafka"
)

func TestMessage_ToKafkaMessage(t *testing.T) {
	msg := kafka.Message{Key: "42", Value: map[string]any{"status": "approved"}}

	km, err := msg.ToKafkaMessage("booking.lifecycle")
	require.NoError(t, err)

	assert.Equal(t, "booking.lifecycle", km.Topic)
	assert.Equal(t, []byte("42"), km.Key)
	assert.JSONEq(t, `{"status":"approved"}`, string(km.Value))
}

func TestMessage_ToKafkaMessage_MarshalError(t *testing.T) {
	msg := kafka.Message{Key: "1", Value: math.Inf(1)}

	_, err := msg.ToKafkaMessage("t")
	assert.Error(t, err)
}

func TestProvide_DisabledReturnsNoop(t *testing.T) {
	cfg := &config.Config{}

	client := kafka.Provide(cfg)
	assert.IsType(t, kafka.Noop{}, client)
	assert.NoError(t, client.SendMessages(context.Background(), "t", kafka.Message{Key: "k", Value: 1}))
	assert.NoError(t, client.Close())
}

func TestProvide_EnabledWithoutBrokersReturnsNoop(t *testing.T) {
	cfg := &config.Config{}
	cfg.Kafka.Enable = true

	assert.IsType(t, kafka.Noop{}, kafka.Provide(cfg))
}
