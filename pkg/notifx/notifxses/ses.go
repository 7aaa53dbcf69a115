// Package notifxses delivers mail through AWS SES.
package notifxses

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"github.com/gatehouse-dev/gatehouse/pkg/errx"
	"github.com/gatehouse-dev/gatehouse/pkg/notifx"
)

var sesErrors = errx.NewRegistry("NOTIFX_SES")

var ErrSendFailed = sesErrors.Register("SEND_FAILED", errx.TypeExternal, 502, "SES send email failed")

// SESProvider implements notifx.Sender on AWS SES.
type SESProvider struct {
	client      *ses.Client
	fromAddress string
}

// NewSESProvider creates an SES email provider. fromAddress is the verified
// sender identity used when the message sets none.
func NewSESProvider(client *ses.Client, fromAddress string) *SESProvider {
	return &SESProvider{client: client, fromAddress: fromAddress}
}

func (p *SESProvider) SendEmail(ctx context.Context, msg notifx.EmailMessage) error {
	from := msg.From
	if from == "" {
		from = p.fromAddress
	}

	body := &types.Body{}
	if msg.TextBody != "" {
		body.Text = &types.Content{Data: aws.String(msg.TextBody), Charset: aws.String("UTF-8")}
	}
	if msg.HTMLBody != "" {
		body.Html = &types.Content{Data: aws.String(msg.HTMLBody), Charset: aws.String("UTF-8")}
	}

	input := &ses.SendEmailInput{
		Source:      aws.String(from),
		Destination: &types.Destination{ToAddresses: msg.To},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(msg.Subject), Charset: aws.String("UTF-8")},
			Body:    body,
		},
	}
	if msg.ReplyTo != "" {
		input.ReplyToAddresses = []string{msg.ReplyTo}
	}

	if _, err := p.client.SendEmail(ctx, input); err != nil {
		return sesErrors.NewWithCause(ErrSendFailed, err).
			WithDetail("to", msg.To).
			WithDetail("subject", msg.Subject)
	}
	return nil
}
