package event_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"roombooking/config"
	"roombooking/infras/kafka"
	kafkaMocks "roombooking/infras/kafka/mocks"
	otelMocks "roombooking/infras/otel/mocks"
	"roombooking/internal/domains/booking/event"
)

func newPublisher(t *testing.T) (event.Publisher, *kafkaMocks.MockClient) {
	t.Helper()

	ctrl := gomock.NewController(t)
	client := kafkaMocks.NewMockClient(ctrl)

	cfg := &config.Config{}
	cfg.Kafka.Topics.BookingLifecycle = "booking.lifecycle"

	return event.New(client, cfg, otelMocks.NewOtel()), client
}

func TestPublish_KeyedByBooking(t *testing.T) {
	publisher, client := newPublisher(t)

	evt := event.BookingEvent{
		Type:      event.TypeApproved,
		BookingID: 42,
		Status:    "approved",
		Actor:     "admin@example.com",
		Note:      "ok",
		At:        time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
	}

	client.EXPECT().
		SendMessages(gomock.Any(), "booking.lifecycle", kafka.Message{Key: "42", Value: evt}).
		Return(nil)

	publisher.Publish(context.Background(), evt)
}

func TestPublish_FailureIsSwallowed(t *testing.T) {
	publisher, client := newPublisher(t)

	client.EXPECT().
		SendMessages(gomock.Any(), "booking.lifecycle", gomock.Any()).
		Return(errors.New("broker unreachable"))

	assert.NotPanics(t, func() {
		publisher.Publish(context.Background(), event.BookingEvent{Type: event.TypeDeleted, BookingID: 1})
	})
}
