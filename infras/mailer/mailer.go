package mailer

//go:generate go run go.uber.org/mock/mockgen -source=./mailer.go -destination=./mocks/mailer_mock.go -package=mocks

import (
	"confbook/config"
	"confbook/infras/otel"
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	gomail "github.com/wneessen/go-mail"
)

const otelScopeName = "mailer"

type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

type smtpMailer struct {
	config *config.Config
	otel   otel.Otel
}

func New(config *config.Config, ot otel.Otel) Mailer {
	return &smtpMailer{
		config: config,
		otel:   ot,
	}
}

// Send implements Mailer.
func (m *smtpMailer) Send(ctx context.Context, to, subject, body string) (err error) {
	ctx, scope := m.otel.NewScope(ctx, otelScopeName, otelScopeName+".Send")
	defer scope.End()
	defer scope.TraceIfError(err)

	scope.SetAttribute("mail.to", to)

	msg := gomail.NewMsg()
	if err = msg.From(m.config.Mail.From); err != nil {
		log.Error().Err(err).Str("Mailer", "Send").Msg("invalid sender address")

		return fmt.Errorf("failed to set mail sender: %w", err)
	}

	if err = msg.To(to); err != nil {
		log.Error().Err(err).Str("Mailer", "Send").Msg("invalid recipient address")

		return fmt.Errorf("failed to set mail recipient: %w", err)
	}

	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, body)

	client, err := gomail.NewClient(
		m.config.Mail.Host,
		gomail.WithPort(m.config.Mail.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(m.config.Mail.Username),
		gomail.WithPassword(m.config.Mail.Password),
	)
	if err != nil {
		log.Error().Err(err).Str("Mailer", "Send").Msg("failed to create mail client")

		return fmt.Errorf("failed to create mail client: %w", err)
	}

	if err = client.DialAndSendWithContext(ctx, msg); err != nil {
		log.Error().Err(err).Str("to", to).Str("Mailer", "Send").Msg("failed to send mail")

		return fmt.Errorf("failed to send mail: %w", err)
	}

	log.Info().Str("to", to).Str("Mailer", "Send").Msg("mail sent")

	return nil
}
