// Package novelty decides which aggregated events deserve operator
// attention by comparing each event code against the device's persistent
// history.
package novelty

import (
	"time"

	"github.com/olegiv/netsyslog-go/internal/history"
	"github.com/olegiv/netsyslog-go/internal/syslog"
)

// Annotated is an aggregated event plus the attention decision for this run.
// Attention is a first-class flag; renderers must never infer it from the
// identity or message text.
type Annotated struct {
	syslog.Event
	Attention bool
}

// Annotator marks events as attention-worthy against a staleness window.
// now and cutoff are fixed at construction so every device in the same run
// is judged against the same instant.
type Annotator struct {
	store  *history.Store
	now    time.Time
	cutoff time.Time
}

// New creates an annotator for one run. window is the staleness window: a
// code silent for at least this long counts as reawakened.
func New(store *history.Store, now time.Time, window time.Duration) *Annotator {
	return &Annotator{
		store:  store,
		now:    now,
		cutoff: now.Add(-window),
	}
}

// Annotate computes the attention flag for one device's aggregated events
// and refreshes the device's history as a side effect.
//
// For each coded event the decision uses the stored timestamp before it is
// overwritten: never seen, or last seen before the cutoff, means attention.
// The timestamp is then refreshed to now in every branch. Unparsed
// identities never touch the store and pass through with Attention=false.
//
// A store failure aborts the run: without history the decision would
// silently report false positives.
func (a *Annotator) Annotate(device string, events map[string]*syslog.Event) (map[string]*Annotated, error) {
	annotated := make(map[string]*Annotated, len(events))

	for id, ev := range events {
		entry := &Annotated{Event: *ev}
		if ev.Coded {
			previous, seen, err := a.store.Lookup(device, ev.Identity)
			if err != nil {
				return nil, err
			}
			entry.Attention = !seen || previous.Before(a.cutoff)

			if err := a.store.Record(device, ev.Identity, a.now); err != nil {
				return nil, err
			}
		}
		annotated[id] = entry
	}

	return annotated, nil
}
