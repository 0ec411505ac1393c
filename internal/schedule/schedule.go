// Package schedule runs render jobs on a cron schedule.
package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	appLog "agendacal/internal/log"
)

// JobFunc performs one scheduled run.
type JobFunc func(ctx context.Context) error

// Scheduler triggers a JobFunc on a standard five-field cron spec. Runs never
// overlap: a tick that arrives while the previous run is still busy is
// skipped.
type Scheduler struct {
	c   *cron.Cron
	id  cron.EntryID
	ctx context.Context
}

// New parses spec and prepares a scheduler in loc. The job receives ctx.
func New(ctx context.Context, spec string, loc *time.Location, job JobFunc) (*Scheduler, error) {
	if loc == nil {
		loc = time.Local
	}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithChain(cron.Recover(cronLogger{}), cron.SkipIfStillRunning(cronLogger{})),
	)
	s := &Scheduler{c: c, ctx: ctx}

	id, err := c.AddFunc(spec, func() {
		if ctx.Err() != nil {
			return
		}
		if err := job(ctx); err != nil {
			appLog.Error("schedule: run failed", err, "spec", spec)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("schedule: %q: %w", spec, err)
	}
	s.id = id
	return s, nil
}

// Next returns the next activation time after Start.
func (s *Scheduler) Next() time.Time {
	return s.c.Entry(s.id).Next
}

// Run starts the scheduler and blocks until ctx is done, then waits for a
// running job to return.
func (s *Scheduler) Run() {
	s.c.Start()
	appLog.Info("schedule: started", "next", s.Next().Format(time.RFC3339))
	<-s.ctx.Done()
	<-s.c.Stop().Done()
	appLog.Info("schedule: stopped")
}

// cronLogger routes cron's own messages into the application log.
type cronLogger struct{}

func (cronLogger) Info(msg string, kv ...any) {
	appLog.Debug("cron: "+msg, kv...)
}

func (cronLogger) Error(err error, msg string, kv ...any) {
	appLog.Error("cron: "+msg, err, kv...)
}
