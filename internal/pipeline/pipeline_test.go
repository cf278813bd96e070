package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/olegiv/netsyslog-go/internal/config"
	"github.com/olegiv/netsyslog-go/internal/history"
)

var reportDate = time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)

const deviceLog = "2026-08-30T03:12:44 10.0.0.1 local7.notice 116: %LINK-3-UPDOWN: Interface Gi0/1, changed state to down\n" +
	"2026-08-30T03:12:49 10.0.0.1 local7.notice 117: %LINK-3-UPDOWN: Interface Gi0/1, changed state to up\n" +
	"2026-08-30T04:01:02 10.0.0.1 local7.info 118: %SYS-5-CONFIG_I: Configured from console by admin\n"

// testEnv wires a full run against temp dirs: inventory with one switch,
// its log file for the report date, and a fresh history database.
type testEnv struct {
	cfg   *config.Config
	store *history.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dir := t.TempDir()
	logPath := filepath.Join(dir, "devices")
	if err := os.MkdirAll(logPath, 0700); err != nil {
		t.Fatalf("Failed to create log dir: %v", err)
	}

	inventory := filepath.Join(dir, "inventory.yml")
	if err := os.WriteFile(inventory, []byte(`
switches:
  - name: core-sw1
    ip: 10.0.0.1
`), 0600); err != nil {
		t.Fatalf("Failed to write inventory: %v", err)
	}

	store, err := history.Open(filepath.Join(dir, "history.db"))
	if err != nil {
		t.Fatalf("Failed to open history store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	return &testEnv{
		cfg: &config.Config{
			InventoryPath:       inventory,
			LogPath:             logPath,
			HistoryDBPath:       filepath.Join(dir, "history.db"),
			StalenessWindowDays: 7,
			ExceptionsPath:      filepath.Join(dir, "exceptions.json"),
			Notify:              "stdout",
			LogLevel:            "info",
		},
		store: store,
	}
}

func (e *testEnv) writeLog(t *testing.T, content string) {
	t.Helper()

	path := filepath.Join(e.cfg.LogPath, "2026-08-30.010.000.000.001.txt")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write device log: %v", err)
	}
}

func (e *testEnv) runner() *Runner {
	return New(e.cfg, e.store, zerolog.Nop())
}

func TestRunEndToEnd(t *testing.T) {
	env := newTestEnv(t)
	env.writeLog(t, deviceLog)

	reports, err := env.runner().Run(context.Background(), reportDate)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(reports) != 1 {
		t.Fatalf("Expected 1 device report, got %d", len(reports))
	}

	rep := reports[0]
	if rep.Type != "switches" || rep.Name != "core-sw1" || rep.IP != "10.0.0.1" {
		t.Errorf("Report header mismatch: %+v", rep)
	}
	if rep.Unavailable {
		t.Fatal("Expected report rows, not an unavailable notice")
	}
	if len(rep.Rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(rep.Rows))
	}

	// Fresh history: both codes are first-ever sightings.
	for _, row := range rep.Rows {
		if !row.Attention {
			t.Errorf("Expected attention=true for %s on a fresh history", row.Code)
		}
	}

	// %LINK-3-UPDOWN appeared twice and leads the table.
	if rep.Rows[0].Code != "%LINK-3-UPDOWN" || rep.Rows[0].Count != 2 {
		t.Errorf("Expected %%LINK-3-UPDOWN with count 2 first, got %+v", rep.Rows[0])
	}
	if rep.Rows[1].Code != "%SYS-5-CONFIG_I" || rep.Rows[1].Count != 1 {
		t.Errorf("Expected %%SYS-5-CONFIG_I with count 1 second, got %+v", rep.Rows[1])
	}
}

func TestRunTwiceSameDay(t *testing.T) {
	env := newTestEnv(t)
	env.writeLog(t, deviceLog)
	runner := env.runner()

	first, err := runner.Run(context.Background(), reportDate)
	if err != nil {
		t.Fatalf("First run failed: %v", err)
	}
	for _, row := range first[0].Rows {
		if !row.Attention {
			t.Errorf("First run: expected attention=true for %s", row.Code)
		}
	}

	// Same input again: every code is now inside the window, which proves
	// the history store mutated between runs.
	second, err := runner.Run(context.Background(), reportDate)
	if err != nil {
		t.Fatalf("Second run failed: %v", err)
	}
	for _, row := range second[0].Rows {
		if row.Attention {
			t.Errorf("Second run: expected attention=false for %s", row.Code)
		}
	}
}

func TestRunMissingLogFile(t *testing.T) {
	env := newTestEnv(t)
	// No log file written for the report date.

	reports, err := env.runner().Run(context.Background(), reportDate)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(reports) != 1 {
		t.Fatalf("Expected 1 device report, got %d", len(reports))
	}
	if !reports[0].Unavailable {
		t.Error("Expected an unavailable report for the missing log")
	}
	if len(reports[0].Rows) != 0 {
		t.Error("Unavailable report must carry no rows")
	}
}

func TestRunAppliesExceptions(t *testing.T) {
	env := newTestEnv(t)
	env.writeLog(t, deviceLog)

	if err := os.WriteFile(env.cfg.ExceptionsPath, []byte(`["%SYS-5-CONFIG_I"]`), 0600); err != nil {
		t.Fatalf("Failed to write exceptions: %v", err)
	}

	reports, err := env.runner().Run(context.Background(), reportDate)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	rows := reports[0].Rows
	if len(rows) != 1 {
		t.Fatalf("Expected 1 surviving row, got %d", len(rows))
	}
	if rows[0].Code != "%LINK-3-UPDOWN" {
		t.Errorf("Expected only %%LINK-3-UPDOWN to survive, got %s", rows[0].Code)
	}
}

func TestRunCancelled(t *testing.T) {
	env := newTestEnv(t)
	env.writeLog(t, deviceLog)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := env.runner().Run(ctx, reportDate); err == nil {
		t.Error("Expected error from a cancelled run")
	}
}
