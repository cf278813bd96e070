package syslog

import "testing"

func TestClassifyCodedLines(t *testing.T) {
	tests := []struct {
		name        string
		line        string
		wantCode    string
		wantLevel   string
		wantMessage string
	}{
		{
			name:        "Link state change",
			line:        "2026-08-30T03:12:44 10.0.0.1 local7.notice 116: %LINK-3-UPDOWN: Interface GigabitEthernet0/1, changed state to up",
			wantCode:    "%LINK-3-UPDOWN",
			wantLevel:   "local7.notice",
			wantMessage: "Interface GigabitEthernet0/1, changed state to up",
		},
		{
			name:        "Config event with trailing newline",
			line:        "2026-08-30T04:01:02 10.0.0.1 local7.info 117: %SYS-5-CONFIG_I: Configured from console by admin\n",
			wantCode:    "%SYS-5-CONFIG_I",
			wantLevel:   "local7.info",
			wantMessage: "Configured from console by admin",
		},
		{
			name:        "Message containing colons",
			line:        "2026-08-30T10:00:01 core-sw1 user.warning 9: %DUAL-5-NBRCHANGE: EIGRP-IPv4 1: Neighbor 10.0.0.2 is down: holding time expired",
			wantCode:    "%DUAL-5-NBRCHANGE",
			wantLevel:   "user.warning",
			wantMessage: "EIGRP-IPv4 1: Neighbor 10.0.0.2 is down: holding time expired",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.line)

			if !got.Coded() {
				t.Fatalf("Expected line to be coded: %q", tt.line)
			}
			if got.Code != tt.wantCode {
				t.Errorf("Code mismatch: got %q, want %q", got.Code, tt.wantCode)
			}
			if got.Level != tt.wantLevel {
				t.Errorf("Level mismatch: got %q, want %q", got.Level, tt.wantLevel)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("Message mismatch: got %q, want %q", got.Message, tt.wantMessage)
			}
			if got.Identity() != tt.wantCode {
				t.Errorf("Identity mismatch: got %q, want %q", got.Identity(), tt.wantCode)
			}
		})
	}
}

func TestClassifyUnparsedLines(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{
			name: "Free-form text",
			line: "console session started\n",
		},
		{
			name: "Missing dotted level token",
			line: "2026-08-30T03:12:44 10.0.0.1 notice 116: %LINK-3-UPDOWN: Interface up",
		},
		{
			name: "Missing event code",
			line: "2026-08-30T03:12:44 10.0.0.1 local7.notice 116: interface flap detected",
		},
		{
			name: "Empty line",
			line: "\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.line)

			if got.Coded() {
				t.Fatalf("Expected line to stay unparsed: %q", tt.line)
			}
			// Unparsed identity is the verbatim text, trailing newline and all.
			if got.Identity() != tt.line {
				t.Errorf("Identity mismatch: got %q, want %q", got.Identity(), tt.line)
			}
			if got.Level != "" || got.Message != "" || got.Code != "" {
				t.Errorf("Unparsed line must not carry extracted fields: %+v", got)
			}
		})
	}
}
