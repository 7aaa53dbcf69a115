package notifx

import (
	"context"

	"github.com/gatehouse-dev/gatehouse/pkg/identity"
	"github.com/gatehouse-dev/gatehouse/pkg/logx"
)

// Built-in mail templates. Deployments override them by registering a
// template under the same name before serving.
const (
	TemplateWelcome         = "welcome"
	TemplatePasswordChanged = "password_changed"

	defaultWelcomeTemplate = `<p>Hi {{.Name}},</p>
<p>Welcome to {{.AppName}}! Your account is ready.</p>`

	defaultPasswordChangedTemplate = `<p>Hi {{.Name}},</p>
<p>The password for your {{.AppName}} account was just changed.
If this was not you, reset your password immediately.</p>`
)

// Mailer turns identity lifecycle events into transactional mail. It hangs
// off the identity hooks as an observer; send failures are logged and
// swallowed so a mail outage never blocks registration.
type Mailer struct {
	client  *Client
	appName string
	log     *logx.Logger
}

// NewMailer creates a mailer with the built-in templates registered.
func NewMailer(client *Client, appName string) (*Mailer, error) {
	if appName == "" {
		appName = "Gatehouse"
	}
	if err := client.RegisterTemplate(TemplateWelcome, defaultWelcomeTemplate); err != nil {
		return nil, err
	}
	if err := client.RegisterTemplate(TemplatePasswordChanged, defaultPasswordChangedTemplate); err != nil {
		return nil, err
	}
	return &Mailer{
		client:  client,
		appName: appName,
		log:     logx.GetDefaultLogger(),
	}, nil
}

var _ identity.Observer = (*Mailer)(nil)

type mailData struct {
	Name    string
	AppName string
}

// OnPrincipalCreated sends the welcome mail.
func (m *Mailer) OnPrincipalCreated(ctx context.Context, p *identity.Principal) {
	m.send(ctx, TemplateWelcome, "Welcome to "+m.appName, p)
}

// OnPrincipalUpdated is a no-op; profile edits do not produce mail.
func (m *Mailer) OnPrincipalUpdated(context.Context, *identity.Principal) {}

// OnPrincipalDeleted is a no-op.
func (m *Mailer) OnPrincipalDeleted(context.Context, *identity.Principal) {}

// SendPasswordChanged confirms a completed password reset. Called from the
// reset flow rather than the update hook, which cannot tell a password
// change from a profile edit.
func (m *Mailer) SendPasswordChanged(ctx context.Context, p *identity.Principal) {
	m.send(ctx, TemplatePasswordChanged, m.appName+" password changed", p)
}

func (m *Mailer) send(ctx context.Context, tmpl, subject string, p *identity.Principal) {
	err := m.client.SendTemplatedEmail(ctx, tmpl, mailData{
		Name:    p.DisplayName(),
		AppName: m.appName,
	}, EmailMessage{
		To:      []string{p.Email},
		Subject: subject,
	})
	if err != nil {
		m.log.WithError(err).WithFields(logx.Fields{
			"template": tmpl,
			"to":       p.Email,
		}).Error("failed to send notification email")
	}
}
