package notifx_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/gatehouse-dev/gatehouse/pkg/identity"
	"github.com/gatehouse-dev/gatehouse/pkg/kernel"
	"github.com/gatehouse-dev/gatehouse/pkg/notifx"
)

type captureSender struct {
	sent []notifx.EmailMessage
	err  error
}

func (s *captureSender) SendEmail(_ context.Context, msg notifx.EmailMessage) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func TestClientValidatesAndDefaults(t *testing.T) {
	sender := &captureSender{}
	client := notifx.NewClient(sender, "noreply@example.com")
	ctx := context.Background()

	if err := client.SendEmail(ctx, notifx.EmailMessage{Subject: "hi"}); err == nil {
		t.Fatal("message without recipients was accepted")
	}
	if err := client.SendEmail(ctx, notifx.EmailMessage{To: []string{"r@example.com"}}); err == nil {
		t.Fatal("message without subject was accepted")
	}

	err := client.SendEmail(ctx, notifx.EmailMessage{To: []string{"r@example.com"}, Subject: "hi"})
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if sender.sent[0].From != "noreply@example.com" {
		t.Fatalf("from not defaulted: %q", sender.sent[0].From)
	}
}

func TestTemplatedEmail(t *testing.T) {
	sender := &captureSender{}
	client := notifx.NewClient(sender, "noreply@example.com")

	if err := client.RegisterTemplate("greet", "<p>Hello {{.Name}}</p>"); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if err := client.RegisterTemplate("broken", "{{.Name"); err == nil {
		t.Fatal("malformed template was accepted")
	}

	err := client.SendTemplatedEmail(context.Background(), "greet",
		struct{ Name string }{"Randall"},
		notifx.EmailMessage{To: []string{"r@example.com"}, Subject: "hi"})
	if err != nil {
		t.Fatalf("templated send failed: %v", err)
	}
	if !strings.Contains(sender.sent[0].HTMLBody, "Hello Randall") {
		t.Fatalf("template not rendered: %q", sender.sent[0].HTMLBody)
	}

	err = client.SendTemplatedEmail(context.Background(), "missing", nil,
		notifx.EmailMessage{To: []string{"r@example.com"}, Subject: "hi"})
	if err == nil {
		t.Fatal("unknown template was accepted")
	}
}

func TestMailerSendsWelcomeOnCreate(t *testing.T) {
	sender := &captureSender{}
	mailer, err := notifx.NewMailer(notifx.NewClient(sender, "noreply@example.com"), "Example")
	if err != nil {
		t.Fatalf("mailer init failed: %v", err)
	}

	p := &identity.Principal{
		ID:       kernel.NewAccountID("https://dir.test/v1/accounts/a1"),
		Email:    "r@example.com",
		Username: "rdegges",
		Status:   identity.StatusEnabled,
	}
	mailer.OnPrincipalCreated(context.Background(), p)

	if len(sender.sent) != 1 {
		t.Fatalf("expected one mail, got %d", len(sender.sent))
	}
	msg := sender.sent[0]
	if msg.To[0] != "r@example.com" || !strings.Contains(msg.Subject, "Welcome") {
		t.Fatalf("unexpected welcome mail: %+v", msg)
	}
	if !strings.Contains(msg.HTMLBody, "rdegges") || !strings.Contains(msg.HTMLBody, "Example") {
		t.Fatalf("template data missing: %q", msg.HTMLBody)
	}
}

func TestMailerSwallowsProviderFailure(t *testing.T) {
	sender := &captureSender{err: errors.New("ses down")}
	mailer, err := notifx.NewMailer(notifx.NewClient(sender, "noreply@example.com"), "")
	if err != nil {
		t.Fatalf("mailer init failed: %v", err)
	}

	p := &identity.Principal{Email: "r@example.com", Status: identity.StatusEnabled}

	// Must not panic or propagate; registration goes on without the mail.
	mailer.OnPrincipalCreated(context.Background(), p)
	mailer.SendPasswordChanged(context.Background(), p)
}
