// Package auditinfra provides the audit trail backends.
package auditinfra

import (
	"context"

	"github.com/gatehouse-dev/gatehouse/pkg/audit"
	"github.com/gatehouse-dev/gatehouse/pkg/logx"
)

// LogxRecorder writes audit events to the structured log. It is the default
// trail; deployments that need a queryable history layer the Postgres
// recorder on top.
type LogxRecorder struct {
	log *logx.Logger
}

// NewLogxRecorder creates a log-backed recorder. A nil logger uses the
// process default.
func NewLogxRecorder(log *logx.Logger) *LogxRecorder {
	if log == nil {
		log = logx.GetDefaultLogger()
	}
	return &LogxRecorder{log: log}
}

func (r *LogxRecorder) Record(_ context.Context, ev audit.Event) {
	fields := logx.Fields{
		"audit_event": string(ev.Kind),
		"event_id":    ev.ID,
		"timestamp":   ev.At,
	}
	if !ev.Account.IsEmpty() {
		fields["account"] = ev.Account.String()
	}
	if ev.Email != "" {
		fields["email"] = ev.Email
	}
	if ev.IP != "" {
		fields["ip"] = ev.IP
	}
	if ev.UserAgent != "" {
		fields["user_agent"] = ev.UserAgent
	}
	for k, v := range ev.Detail {
		fields[k] = v
	}
	r.log.WithFields(fields).Info("Audit: " + string(ev.Kind))
}
