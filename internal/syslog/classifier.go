// Package syslog classifies and aggregates the per-device syslog files
// written by the collector. Classification is total: every input line yields
// either a coded event or an unparsed line, never an error.
package syslog

import "regexp"

// lineGrammar is the fixed collector line format:
// <timestamp> <host> <facility.severity> <seq> %FACILITY-D-MNEMONIC: <message>
var lineGrammar = regexp.MustCompile(`^\S+\s+\S+\s+(\w+\.\w+)\s+.+\s+(%\w+-\d-\w+):\s+(.+)`)

// Line is one classified log line. A line that matched the grammar carries
// Code, Level and Message; anything else carries only its verbatim text.
type Line struct {
	Code    string
	Level   string
	Message string
	Raw     string
}

// Coded reports whether the line matched the event grammar.
func (l Line) Coded() bool { return l.Code != "" }

// Identity returns the grouping key for aggregation: the event code for
// coded lines, the verbatim text (trailing newline included) for the rest.
func (l Line) Identity() string {
	if l.Coded() {
		return l.Code
	}
	return l.Raw
}

// Classify parses one raw log line against the line grammar.
func Classify(raw string) Line {
	m := lineGrammar.FindStringSubmatch(raw)
	if m == nil {
		return Line{Raw: raw}
	}
	return Line{Level: m[1], Code: m[2], Message: m[3], Raw: raw}
}
