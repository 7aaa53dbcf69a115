package auditinfra

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/gatehouse-dev/gatehouse/pkg/audit"
	"github.com/gatehouse-dev/gatehouse/pkg/logx"
)

// PostgresRecorder persists audit events to the auth_events table:
//
//	CREATE TABLE auth_events (
//	    id         UUID PRIMARY KEY,
//	    kind       TEXT        NOT NULL,
//	    account    TEXT        NOT NULL DEFAULT '',
//	    email      TEXT        NOT NULL DEFAULT '',
//	    ip         TEXT        NOT NULL DEFAULT '',
//	    user_agent TEXT        NOT NULL DEFAULT '',
//	    detail     JSONB       NOT NULL DEFAULT '{}',
//	    at         TIMESTAMPTZ NOT NULL
//	);
//
// Insert failures are logged and dropped; the trail is best-effort by
// contract.
type PostgresRecorder struct {
	db  *sqlx.DB
	log *logx.Logger
}

// NewPostgresRecorder creates a Postgres-backed recorder.
func NewPostgresRecorder(db *sqlx.DB) *PostgresRecorder {
	return &PostgresRecorder{db: db, log: logx.GetDefaultLogger()}
}

type eventRow struct {
	ID        string    `db:"id"`
	Kind      string    `db:"kind"`
	Account   string    `db:"account"`
	Email     string    `db:"email"`
	IP        string    `db:"ip"`
	UserAgent string    `db:"user_agent"`
	Detail    []byte    `db:"detail"`
	At        time.Time `db:"at"`
}

func (r *PostgresRecorder) Record(ctx context.Context, ev audit.Event) {
	detail := []byte("{}")
	if len(ev.Detail) > 0 {
		if data, err := json.Marshal(ev.Detail); err == nil {
			detail = data
		}
	}

	row := eventRow{
		ID:        ev.ID,
		Kind:      string(ev.Kind),
		Account:   ev.Account.String(),
		Email:     ev.Email,
		IP:        ev.IP,
		UserAgent: ev.UserAgent,
		Detail:    detail,
		At:        ev.At,
	}

	query := `
		INSERT INTO auth_events (id, kind, account, email, ip, user_agent, detail, at)
		VALUES (:id, :kind, :account, :email, :ip, :user_agent, :detail, :at)`

	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		r.log.WithError(err).WithFields(logx.Fields{
			"audit_event": string(ev.Kind),
			"event_id":    ev.ID,
		}).Error("failed to persist audit event")
	}
}
