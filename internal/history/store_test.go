package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	logx "bdaybot/pkg/logx"
)

func TestOpenDisabled(t *testing.T) {
	t.Parallel()
	for _, driver := range []string{"", "none", "  NONE  "} {
		st, err := Open(Config{Driver: driver}, logx.Nop())
		if err != nil {
			t.Fatalf("Open(%q): %v", driver, err)
		}
		if st != nil {
			t.Fatalf("Open(%q) returned a store, want nil", driver)
		}
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	t.Parallel()
	if _, err := Open(Config{Driver: "postgres"}, logx.Nop()); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestSQLiteAppendRecent(t *testing.T) {
	t.Parallel()
	st, err := Open(Config{
		Driver:      "sqlite",
		Path:        filepath.Join(t.TempDir(), "runs.db"),
		BusyTimeout: time.Second,
	}, logx.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	base := time.Date(2026, time.June, 15, 8, 0, 0, 0, time.UTC)
	entries := []Entry{
		{RunID: "run-1", At: base, Status: "skipped", Reason: "nothing_to_report"},
		{RunID: "run-2", At: base.Add(24 * time.Hour), Status: "sent", Birthdays: 2, Anniversaries: 1},
		{RunID: "run-3", At: base.Add(48 * time.Hour), Status: "failed", Reason: "http_error", Detail: "status 503"},
	}
	for _, e := range entries {
		if err := st.Append(ctx, e); err != nil {
			t.Fatalf("Append(%s): %v", e.RunID, err)
		}
	}

	got, err := st.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Recent(2) = %d entries, want 2", len(got))
	}
	// Newest first.
	if got[0].RunID != "run-3" || got[1].RunID != "run-2" {
		t.Fatalf("unexpected order: %s, %s", got[0].RunID, got[1].RunID)
	}
	if got[0].Reason != "http_error" || got[0].Detail != "status 503" {
		t.Fatalf("failure fields lost: %+v", got[0])
	}
	if !got[1].At.Equal(base.Add(24 * time.Hour)) {
		t.Fatalf("timestamp round-trip: got %v", got[1].At)
	}
	if got[1].Birthdays != 2 || got[1].Anniversaries != 1 {
		t.Fatalf("counts lost: %+v", got[1])
	}
}

func TestSQLiteRequiresPath(t *testing.T) {
	t.Parallel()
	if _, err := Open(Config{Driver: "sqlite"}, logx.Nop()); err == nil {
		t.Fatal("expected error when sqlite path is empty")
	}
}
