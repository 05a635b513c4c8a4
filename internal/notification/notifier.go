package notification

//go:generate go run go.uber.org/mock/mockgen -source=./notifier.go -destination=./mocks/notifier_mock.go -package=mocks

import (
	"context"
	"fmt"

	"confbook/config"
	"confbook/infras/kafka"
	"confbook/infras/mailer"
	"confbook/infras/otel"
	"confbook/shared/constant"

	"github.com/rs/zerolog/log"
)

// BookingEvent is the payload published to the booking topic and rendered
// into the decision mail.
type BookingEvent struct {
	BookingID       string `json:"booking_id"`
	ConferenceID    string `json:"conference_id"`
	ConferenceTitle string `json:"conference_title"`
	UserEmail       string `json:"user_email"`
	Status          string `json:"status"`
	Notes           string `json:"notes,omitempty"`
	RejectionReason string `json:"rejection_reason,omitempty"`
}

type Notifier interface {
	BookingApproved(ctx context.Context, event BookingEvent) error
	BookingRejected(ctx context.Context, event BookingEvent) error
}

type notifierImpl struct {
	cfg    *config.Config
	mailer mailer.Mailer
	kafka  kafka.Client
	otel   otel.Otel
}

func New(cfg *config.Config, mailer mailer.Mailer, kafkaClient kafka.Client, ot otel.Otel) Notifier {
	return &notifierImpl{
		cfg:    cfg,
		mailer: mailer,
		kafka:  kafkaClient,
		otel:   ot,
	}
}

// BookingApproved implements Notifier.
func (n *notifierImpl) BookingApproved(ctx context.Context, event BookingEvent) (err error) {
	ctx, scope := n.otel.NewScope(ctx, constant.OtelNotificationScope, constant.OtelNotificationScope+".BookingApproved")
	defer scope.End()
	defer scope.TraceIfError(err)

	subject := fmt.Sprintf("Booking approved: %s", event.ConferenceTitle)
	body := fmt.Sprintf("Your booking for %s has been approved.", event.ConferenceTitle)

	if event.Notes != constant.Empty {
		body = fmt.Sprintf("%s\n\nNotes: %s", body, event.Notes)
	}

	return n.deliver(ctx, event, subject, body)
}

// BookingRejected implements Notifier.
func (n *notifierImpl) BookingRejected(ctx context.Context, event BookingEvent) (err error) {
	ctx, scope := n.otel.NewScope(ctx, constant.OtelNotificationScope, constant.OtelNotificationScope+".BookingRejected")
	defer scope.End()
	defer scope.TraceIfError(err)

	subject := fmt.Sprintf("Booking rejected: %s", event.ConferenceTitle)
	body := fmt.Sprintf("Your booking for %s has been rejected.", event.ConferenceTitle)

	if event.RejectionReason != constant.Empty {
		body = fmt.Sprintf("%s\n\nReason: %s", body, event.RejectionReason)
	}

	return n.deliver(ctx, event, subject, body)
}

func (n *notifierImpl) deliver(ctx context.Context, event BookingEvent, subject, body string) error {
	if err := n.mailer.Send(ctx, event.UserEmail, subject, body); err != nil {
		log.Error().Err(err).Str("booking_id", event.BookingID).Msg("failed to send booking mail")

		return fmt.Errorf("failed to send booking mail: %w", err)
	}

	err := n.kafka.SendMessages(ctx, n.cfg.Kafka.BookingTopic, kafka.Message{
		Key:   event.BookingID,
		Value: event,
	})
	if err != nil {
		log.Error().Err(err).Str("booking_id", event.BookingID).Msg("failed to publish booking event")

		return fmt.Errorf("failed to publish booking event: %w", err)
	}

	return nil
}
