package syslog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrNotFound marks a device log file that does not exist for the requested
// date. Callers match it with errors.Is and degrade to an "unavailable"
// report for that device instead of failing the run.
var ErrNotFound = errors.New("log file not found")

// Event is one aggregated entry of a device's log file: an identity (event
// code or verbatim unparsed line) with its occurrence count. Level and
// Message come from the first occurrence of a coded identity and stay empty
// for unparsed lines.
type Event struct {
	Identity string
	Count    int
	Level    string
	Message  string
	Coded    bool
}

// Aggregate folds classified lines from r into a mapping keyed by identity.
// The first occurrence of an identity creates the entry; every repeat only
// increments its count. Empty input yields an empty mapping.
func Aggregate(r io.Reader) (map[string]*Event, error) {
	events := make(map[string]*Event)
	br := bufio.NewReader(r)
	for {
		raw, err := br.ReadString('\n')
		if raw != "" {
			fold(events, Classify(raw))
		}
		if errors.Is(err, io.EOF) {
			return events, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read log line: %w", err)
		}
	}
}

func fold(events map[string]*Event, line Line) {
	id := line.Identity()
	if ev, ok := events[id]; ok {
		ev.Count++
		return
	}
	events[id] = &Event{
		Identity: id,
		Count:    1,
		Level:    line.Level,
		Message:  line.Message,
		Coded:    line.Coded(),
	}
}

// AggregateFile reads and folds one device's log file. A missing file is
// reported as ErrNotFound; any other failure is a genuine I/O error.
func AggregateFile(path string) (map[string]*Event, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	return Aggregate(f)
}
