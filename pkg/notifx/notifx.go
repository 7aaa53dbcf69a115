// Package notifx sends the plugin's transactional mail: welcome messages on
// registration and confirmations after a password change. Delivery is
// best-effort; the identity flows never fail on a mail error.
package notifx

import (
	"context"
	"net/http"

	"github.com/gatehouse-dev/gatehouse/pkg/errx"
)

var notifxErrors = errx.NewRegistry("NOTIFX")

var (
	ErrSendFailed       = notifxErrors.Register("SEND_FAILED", errx.TypeExternal, http.StatusBadGateway, "Failed to send email")
	ErrInvalidMessage   = notifxErrors.Register("INVALID_MESSAGE", errx.TypeValidation, http.StatusBadRequest, "Invalid email message")
	ErrTemplateNotFound = notifxErrors.Register("TEMPLATE_NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Email template not found")
	ErrTemplateParse    = notifxErrors.Register("TEMPLATE_PARSE", errx.TypeValidation, http.StatusBadRequest, "Failed to parse email template")
	ErrTemplateRender   = notifxErrors.Register("TEMPLATE_RENDER", errx.TypeInternal, http.StatusInternalServerError, "Failed to render email template")
)

// EmailMessage is one outbound email.
type EmailMessage struct {
	From     string   `json:"from"`
	To       []string `json:"to"`
	ReplyTo  string   `json:"reply_to,omitempty"`
	Subject  string   `json:"subject"`
	TextBody string   `json:"text_body,omitempty"`
	HTMLBody string   `json:"html_body,omitempty"`
}

// Sender delivers a single email.
type Sender interface {
	SendEmail(ctx context.Context, msg EmailMessage) error
}

// Client is the entry point for sending notifications. It validates the
// message, renders templates and hands delivery to the configured provider.
type Client struct {
	provider  Sender
	templates *TemplateRegistry
	from      string
}

// NewClient creates a notification client. The from address is used for
// every message that does not set its own.
func NewClient(provider Sender, from string) *Client {
	return &Client{
		provider:  provider,
		templates: NewTemplateRegistry(),
		from:      from,
	}
}

// SendEmail sends an email through the configured provider.
func (c *Client) SendEmail(ctx context.Context, msg EmailMessage) error {
	if len(msg.To) == 0 {
		return notifxErrors.New(ErrInvalidMessage).WithDetail("reason", "no recipients")
	}
	if msg.Subject == "" {
		return notifxErrors.New(ErrInvalidMessage).WithDetail("reason", "empty subject")
	}
	if msg.From == "" {
		msg.From = c.from
	}
	return c.provider.SendEmail(ctx, msg)
}

// RegisterTemplate parses and stores a named template for later use.
func (c *Client) RegisterTemplate(name, tmplString string) error {
	return c.templates.Register(name, tmplString)
}

// SendTemplatedEmail renders a template into the HTML body and sends the
// resulting email.
func (c *Client) SendTemplatedEmail(ctx context.Context, templateName string, data any, msg EmailMessage) error {
	body, err := c.templates.Render(templateName, data)
	if err != nil {
		return err
	}
	msg.HTMLBody = body
	return c.SendEmail(ctx, msg)
}
