package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/olegiv/netsyslog-go/internal/novelty"
	"github.com/olegiv/netsyslog-go/internal/syslog"
)

func writeExceptions(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "exceptions.json")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write exceptions file: %v", err)
	}
	return path
}

func TestLoadExceptions(t *testing.T) {
	path := writeExceptions(t, `["%SYS-5-CONFIG_I", "%LINK-3-UPDOWN"]`)

	set, err := LoadExceptions(path)
	if err != nil {
		t.Fatalf("LoadExceptions failed: %v", err)
	}
	if len(set) != 2 {
		t.Fatalf("Expected 2 codes, got %d", len(set))
	}
	if !set.Contains("%SYS-5-CONFIG_I") || !set.Contains("%LINK-3-UPDOWN") {
		t.Errorf("Missing expected codes in %v", set)
	}
}

func TestLoadExceptionsIgnoresMalformedEntries(t *testing.T) {
	path := writeExceptions(t, `["%SYS-5-CONFIG_I", 42, null, {"code": "x"}, ""]`)

	set, err := LoadExceptions(path)
	if err != nil {
		t.Fatalf("LoadExceptions failed: %v", err)
	}
	if len(set) != 1 {
		t.Errorf("Expected only the string code to survive, got %v", set)
	}
}

func TestLoadExceptionsDegradesToEmpty(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{
			name: "Missing file",
			path: filepath.Join(t.TempDir(), "missing.json"),
		},
		{
			name: "Unparsable content",
			path: writeExceptions(t, `{not json`),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := LoadExceptions(tt.path)
			if err == nil {
				t.Error("Expected an explanatory error")
			}
			if set == nil || len(set) != 0 {
				t.Errorf("Expected usable empty set, got %v", set)
			}
		})
	}
}

func TestFilterRemovesSuppressedCodes(t *testing.T) {
	events := map[string]*novelty.Annotated{
		"%SYS-5-CONFIG_I": {
			Event:     syslog.Event{Identity: "%SYS-5-CONFIG_I", Count: 1, Coded: true},
			Attention: true,
		},
		"%LINK-3-UPDOWN": {
			Event:     syslog.Event{Identity: "%LINK-3-UPDOWN", Count: 4, Coded: true},
			Attention: false,
		},
		"%OSPF-5-ADJCHG": {
			Event:     syslog.Event{Identity: "%OSPF-5-ADJCHG", Count: 2, Coded: true},
			Attention: true,
		},
	}

	// Suppression applies regardless of attention status.
	Filter(events, ExceptionSet{
		"%SYS-5-CONFIG_I": {},
		"%LINK-3-UPDOWN":  {},
	})

	if len(events) != 1 {
		t.Fatalf("Expected 1 surviving event, got %d", len(events))
	}
	if events["%OSPF-5-ADJCHG"] == nil {
		t.Error("Unsuppressed code must survive filtering")
	}
}

func TestFilterLeavesUnparsedIdentities(t *testing.T) {
	raw := "console session started\n"
	events := map[string]*novelty.Annotated{
		raw: {Event: syslog.Event{Identity: raw, Count: 1}},
	}

	Filter(events, ExceptionSet{"%SYS-5-CONFIG_I": {}})

	if events[raw] == nil {
		t.Error("Unparsed identities never match configured codes")
	}
}
