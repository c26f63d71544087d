// Package event announces booking lifecycle changes on the message bus.
package event

//go:generate go run go.uber.org/mock/mockgen -source=./event.go -destination=../mocks/event_mock.go -package=mocks

import (
	"context"
	"fmt"
	"roombooking/config"
	"roombooking/infras/kafka"
	"roombooking/infras/otel"
	"roombooking/shared/constant"
	"time"

	"github.com/rs/zerolog/log"
)

type Type string

const (
	TypeCreated    Type = "booking.created"
	TypeUpdated    Type = "booking.updated"
	TypeDeleted    Type = "booking.deleted"
	TypeApproved   Type = "booking.approved"
	TypeRejected   Type = "booking.rejected"
	TypeCheckedIn  Type = "booking.checked_in"
	TypeCheckedOut Type = "booking.checked_out"
)

type BookingEvent struct {
	Type      Type      `json:"type"`
	BookingID int64     `json:"booking_id"`
	Status    string    `json:"status"`
	Actor     string    `json:"actor"`
	Note      string    `json:"note,omitempty"`
	At        time.Time `json:"at"`
}

// Publisher emits events after the change is committed. Delivery is best effort: a failure is logged and
// never reaches the caller.
type Publisher interface {
	Publish(ctx context.Context, event BookingEvent)
}

type publisherImpl struct {
	client kafka.Client
	topic  string
	otel   otel.Otel
}

func New(client kafka.Client, cfg *config.Config, otel otel.Otel) Publisher {
	return &publisherImpl{
		client: client,
		topic:  cfg.Kafka.Topics.BookingLifecycle,
		otel:   otel,
	}
}

func (p *publisherImpl) Publish(ctx context.Context, event BookingEvent) {
	ctx, scope := p.otel.NewScope(ctx, constant.OtelEventScopeName, constant.OtelEventScopeName+".Publish")
	defer scope.End()

	scope.SetAttributes(map[string]any{
		"event.type":       string(event.Type),
		"event.booking_id": event.BookingID,
	})

	// keyed by booking so one booking's events stay ordered within a partition
	err := p.client.SendMessages(ctx, p.topic, kafka.Message{
		Key:   fmt.Sprint(event.BookingID),
		Value: event,
	})
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("type", string(event.Type)).Int64("bookingID", event.BookingID).Msg("failed to publish booking event")
	}
}
