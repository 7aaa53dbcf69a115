// Package notifxconsole provides the development mail provider.
package notifxconsole

import (
	"context"
	"strings"

	"github.com/gatehouse-dev/gatehouse/pkg/logx"
	"github.com/gatehouse-dev/gatehouse/pkg/notifx"
)

// ConsoleProvider prints emails to the log instead of delivering them.
type ConsoleProvider struct{}

// NewConsoleProvider creates a console email provider.
func NewConsoleProvider() *ConsoleProvider {
	return &ConsoleProvider{}
}

func (p *ConsoleProvider) SendEmail(_ context.Context, msg notifx.EmailMessage) error {
	logx.WithFields(logx.Fields{
		"from":    msg.From,
		"to":      strings.Join(msg.To, ", "),
		"subject": msg.Subject,
	}).Info("notifx/console: email sent (dev mode)")

	if msg.TextBody != "" {
		logx.Debugf("notifx/console: text body:\n%s", msg.TextBody)
	}
	if msg.HTMLBody != "" {
		logx.Debugf("notifx/console: html body:\n%s", msg.HTMLBody)
	}
	return nil
}
