package auditinfra_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/gatehouse-dev/gatehouse/pkg/audit"
	"github.com/gatehouse-dev/gatehouse/pkg/audit/auditinfra"
	"github.com/gatehouse-dev/gatehouse/pkg/kernel"
	"github.com/gatehouse-dev/gatehouse/pkg/logx"
)

func TestLogxRecorderWritesStructuredEvent(t *testing.T) {
	var buf bytes.Buffer
	log := logx.NewLogger(&logx.Config{
		Level:  logx.LevelInfo,
		Format: logx.FormatJSON,
		Output: &buf,
	})
	rec := auditinfra.NewLogxRecorder(log)

	ev := audit.NewEvent(audit.KindLoginFailed).
		WithEmail("r@example.com").
		WithRequest("203.0.113.9", "curl/8.0").
		WithDetail("method", "password")
	rec.Record(context.Background(), ev)

	line := strings.TrimSpace(buf.String())
	var record map[string]any
	if err := json.Unmarshal([]byte(line), &record); err != nil {
		t.Fatalf("log line is not JSON: %v\n%s", err, line)
	}

	if record["audit_event"] != "login_failed" || record["email"] != "r@example.com" {
		t.Fatalf("event fields missing: %v", record)
	}
	if record["method"] != "password" {
		t.Fatalf("detail not flattened into fields: %v", record)
	}
	if record["message"] != "Audit: login_failed" {
		t.Fatalf("unexpected message: %v", record["message"])
	}
}

func TestLogxRecorderSkipsEmptyAccount(t *testing.T) {
	var buf bytes.Buffer
	log := logx.NewLogger(&logx.Config{
		Level:  logx.LevelInfo,
		Format: logx.FormatJSON,
		Output: &buf,
	})
	rec := auditinfra.NewLogxRecorder(log)

	rec.Record(context.Background(), audit.NewEvent(audit.KindLogout))
	if strings.Contains(buf.String(), `"account"`) {
		t.Fatalf("empty account should be omitted: %s", buf.String())
	}

	buf.Reset()
	ev := audit.NewEvent(audit.KindLogout).WithAccount(kernel.NewAccountID("https://dir.test/v1/accounts/a1"))
	rec.Record(context.Background(), ev)
	if !strings.Contains(buf.String(), "accounts/a1") {
		t.Fatalf("account missing from log: %s", buf.String())
	}
}
