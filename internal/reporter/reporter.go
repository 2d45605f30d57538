package reporter

import (
	"context"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jonboulle/clockwork"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/RezaEskandarii/jobboard/internal/logger"
	"github.com/RezaEskandarii/jobboard/internal/state"
)

const reportTimeout = 15 * time.Second

// StatusCounter is satisfied by the job store.
type StatusCounter interface {
	CountJobsGroupedByStatus(ctx context.Context) (map[state.JobStatus]int, error)
}

// Reporter periodically logs how many jobs sit in each status.
type Reporter struct {
	counter  StatusCounter
	schedule cron.Schedule
	clock    clockwork.Clock
	logger   *zap.SugaredLogger
}

// New parses spec as a standard cron expression or descriptor (e.g. "@every 1h").
// An empty spec yields a reporter whose Run only waits for cancellation.
func New(counter StatusCounter, spec string, clock clockwork.Clock, log *zap.SugaredLogger) (*Reporter, error) {
	r := &Reporter{counter: counter, clock: clock, logger: log.With(logger.FieldComponent, "reporter")}
	if spec = strings.TrimSpace(spec); spec == "" {
		return r, nil
	}
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, errors.Wrapf(err, "parse report schedule %q", spec)
	}
	r.schedule = schedule
	return r, nil
}

// Run reports on every tick of the schedule until ctx is done.
func (r *Reporter) Run(ctx context.Context) error {
	if r.schedule == nil {
		r.logger.Infow("Status report disabled")
		<-ctx.Done()
		return nil
	}

	for {
		now := r.clock.Now()
		wait := r.schedule.Next(now).Sub(now)
		// fire right away when the next run is already due
		if wait < 0 {
			wait = 0
		}

		timer := r.clock.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.Chan():
		}

		reportCtx, cancel := context.WithTimeout(ctx, reportTimeout)
		_ = r.Report(reportCtx)
		cancel()
	}
}

// Report logs the current status counts once.
func (r *Reporter) Report(ctx context.Context) error {
	counts, err := r.counter.CountJobsGroupedByStatus(ctx)
	if err != nil {
		r.logger.Errorw("Status report failed", logger.FieldError, err)
		return err
	}

	total := 0
	fields := make([]any, 0, 2*len(state.AllStatuses)+2)
	for _, status := range state.AllStatuses {
		total += counts[status]
		fields = append(fields, status.String(), counts[status])
	}
	fields = append(fields, "total", total)
	r.logger.Infow("Job status report", fields...)
	return nil
}
