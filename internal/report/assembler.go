package report

import (
	"sort"

	"github.com/olegiv/netsyslog-go/internal/novelty"
)

// Placeholder fills the level and code columns for unparsed entries.
const Placeholder = "-"

// Row is one line of a device's report table.
type Row struct {
	Count     int
	Level     string
	Code      string
	Message   string
	Attention bool
}

// DeviceReport is the per-device result of one run, grouped under its
// inventory device type.
type DeviceReport struct {
	Type string
	Name string
	IP   string
	Rows []Row

	// Unavailable marks a device whose log file was missing for the report
	// date; Rows is empty in that case.
	Unavailable bool
}

// Rows converts the surviving annotated events into report rows sorted
// descending by the full (count, level, code, message) tuple: the most
// frequent events lead and ties break deterministically by field order.
// Unparsed entries render their verbatim text in the message column.
func Rows(events map[string]*novelty.Annotated) []Row {
	rows := make([]Row, 0, len(events))
	for _, ev := range events {
		row := Row{Count: ev.Count, Attention: ev.Attention}
		if ev.Coded {
			row.Level = ev.Level
			row.Code = ev.Identity
			row.Message = ev.Message
		} else {
			row.Level = Placeholder
			row.Code = Placeholder
			row.Message = ev.Identity
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool { return rows[j].less(rows[i]) })
	return rows
}

func (r Row) less(other Row) bool {
	if r.Count != other.Count {
		return r.Count < other.Count
	}
	if r.Level != other.Level {
		return r.Level < other.Level
	}
	if r.Code != other.Code {
		return r.Code < other.Code
	}
	return r.Message < other.Message
}
