// Package pipeline orchestrates one report run across the inventory:
// aggregate each device's log, annotate against history, filter exceptions
// and assemble the per-device report tables.
package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/olegiv/netsyslog-go/internal/config"
	"github.com/olegiv/netsyslog-go/internal/history"
	"github.com/olegiv/netsyslog-go/internal/novelty"
	"github.com/olegiv/netsyslog-go/internal/report"
	"github.com/olegiv/netsyslog-go/internal/syslog"
)

// Runner executes report runs. The history store is the only stateful
// dependency; inventory and exceptions are read fresh every run.
type Runner struct {
	cfg   *config.Config
	store *history.Store
	log   zerolog.Logger
}

// New creates a runner.
func New(cfg *config.Config, store *history.Store, log zerolog.Logger) *Runner {
	return &Runner{
		cfg:   cfg,
		store: store,
		log:   log,
	}
}

// Run produces the ordered device reports for one report date. Devices are
// processed strictly sequentially, and one now snapshot drives every novelty
// decision across the whole run.
func (r *Runner) Run(ctx context.Context, date time.Time) ([]report.DeviceReport, error) {
	groups, skipped, err := config.LoadInventory(r.cfg.InventoryPath)
	if err != nil {
		return nil, err
	}
	for _, entry := range skipped {
		r.log.Warn().Str("entry", entry).Msg("Skipping malformed inventory entry")
	}

	exceptions := r.loadExceptions()
	annotator := novelty.New(r.store, time.Now(), r.cfg.StalenessWindow())

	var reports []report.DeviceReport
	for _, group := range groups {
		for _, device := range group.Devices {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			rep, err := r.reportDevice(group.Type, device, date, annotator, exceptions)
			if err != nil {
				return nil, err
			}
			if rep != nil {
				reports = append(reports, *rep)
			}
		}
	}
	return reports, nil
}

// loadExceptions reloads the operator's exception set. Failure degrades to
// suppressing nothing; the run never aborts over exceptions.
func (r *Runner) loadExceptions() report.ExceptionSet {
	if r.cfg.ExceptionsPath == "" {
		return report.ExceptionSet{}
	}

	exceptions, err := report.LoadExceptions(r.cfg.ExceptionsPath)
	if err != nil {
		r.log.Warn().Err(err).Msg("No exceptions loaded, suppressing nothing")
	}
	return exceptions
}

func (r *Runner) reportDevice(
	deviceType string,
	device config.Device,
	date time.Time,
	annotator *novelty.Annotator,
	exceptions report.ExceptionSet,
) (*report.DeviceReport, error) {
	name, err := syslog.FileName(device.IP, date)
	if err != nil {
		r.log.Warn().
			Str("device", device.Name).
			Str("ip", device.IP).
			Msg("Skipping device with malformed ip")
		return nil, nil
	}

	if err := r.store.EnsureDevice(device.IP); err != nil {
		return nil, err
	}

	rep := &report.DeviceReport{Type: deviceType, Name: device.Name, IP: device.IP}

	events, err := syslog.AggregateFile(filepath.Join(r.cfg.LogPath, name))
	if err != nil {
		if errors.Is(err, syslog.ErrNotFound) {
			r.log.Info().
				Str("device", device.Name).
				Str("ip", device.IP).
				Str("date", date.Format("2006-01-02")).
				Msg("Log file not found for report date")
			rep.Unavailable = true
			return rep, nil
		}
		return nil, err
	}

	annotated, err := annotator.Annotate(device.IP, events)
	if err != nil {
		return nil, err
	}

	report.Filter(annotated, exceptions)
	rep.Rows = report.Rows(annotated)

	r.log.Debug().
		Str("device", device.Name).
		Int("events", len(rep.Rows)).
		Msg("Device report assembled")
	return rep, nil
}
