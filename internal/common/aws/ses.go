package aws

import (
	"context"
	"fmt"
	"strings"

	apperrors "foodlens/internal/common/errors"
	"foodlens/internal/common/logger"
	"foodlens/internal/common/validation"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// SESAPI is the subset of the SES client the mailer needs.
type SESAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

func NewSESClient(ctx context.Context, region string) (*ses.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return ses.NewFromConfig(cfg), nil
}

// Mailer delivers plain-text analysis reports.
type Mailer struct {
	client SESAPI
	from   string
	logger logger.Logger
}

func NewMailer(client SESAPI, from string, log logger.Logger) *Mailer {
	return &Mailer{
		client: client,
		from:   from,
		logger: logger.Component(log, "mailer"),
	}
}

// SendReport emails body to a single recipient and returns the SES message id.
func (m *Mailer) SendReport(ctx context.Context, to, subject, body string) (string, error) {
	to = strings.TrimSpace(to)
	if !validation.ValidateEmail(to) {
		return "", apperrors.NewValidationError(fmt.Sprintf("recipient %q is not an email address", to))
	}
	if strings.TrimSpace(body) == "" {
		return "", apperrors.NewValidationError("report body is empty")
	}

	out, err := m.client.SendEmail(ctx, &ses.SendEmailInput{
		Source: awssdk.String(m.from),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: awssdk.String(subject), Charset: awssdk.String("UTF-8")},
			Body: &types.Body{
				Text: &types.Content{Data: awssdk.String(body), Charset: awssdk.String("UTF-8")},
			},
		},
	})
	if err != nil {
		m.logger.Error("failed to send report", map[string]interface{}{
			"to":    to,
			"error": err,
		})
		return "", apperrors.NewTransportError("ses", err)
	}

	messageID := awssdk.ToString(out.MessageId)
	m.logger.Info("report sent", map[string]interface{}{
		"to":        to,
		"messageId": messageID,
	})
	return messageID, nil
}
