// Package notification delivers rendered reports to the configured sink.
package notification

import (
	"fmt"
	"io"
)

// Sink delivers one run's rendered report. Delivery failure is the sink's
// concern: the history store has already been updated by the time Send runs,
// exactly as a failed mail in the original workflow left history intact.
type Sink interface {
	// Send delivers the report. dateLabel is the report date as yyyy-mm-dd;
	// sinks pick the html or text body as their medium requires.
	Send(dateLabel, htmlBody, textBody string) error
}

// StdoutSink prints the plain-text report; used by -stdout runs.
type StdoutSink struct {
	W io.Writer
}

// Send implements Sink.
func (s *StdoutSink) Send(_, _, textBody string) error {
	if _, err := fmt.Fprint(s.W, textBody); err != nil {
		return fmt.Errorf("failed to print report: %w", err)
	}
	return nil
}
