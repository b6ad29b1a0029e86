package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"CatalogSync/internal/ports"
)

// CronScheduler triggers jobs on a standard five-field cron expression.
// A trigger that fires while the previous run is still going is skipped.
type CronScheduler struct {
	spec     string
	location *time.Location
	logger   *log.Logger

	mu     sync.Mutex
	cron   *cron.Cron
	cancel context.CancelFunc
}

var _ ports.Scheduler = (*CronScheduler)(nil)

// NewCronScheduler validates the expression and builds a stopped scheduler.
func NewCronScheduler(spec string, loc *time.Location, logger *log.Logger) (*CronScheduler, error) {
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("invalid cron expression %q: %w", spec, err)
	}
	if loc == nil {
		loc = time.Local
	}
	return &CronScheduler{spec: spec, location: loc, logger: logger}, nil
}

// Next reports the next activation after t.
func (c *CronScheduler) Next(t time.Time) time.Time {
	schedule, err := cron.ParseStandard(c.spec)
	if err != nil {
		return time.Time{}
	}
	return schedule.Next(t.In(c.location))
}

// Start registers job and starts the cron loop; it stops when ctx is done.
func (c *CronScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cron != nil {
		return nil
	}

	var cronLogger cron.Logger = cron.DiscardLogger
	if c.logger != nil {
		cronLogger = cron.PrintfLogger(c.logger)
	}

	cr := cron.New(
		cron.WithLocation(c.location),
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)
	if _, err := cr.AddFunc(c.spec, func() { job(time.Now().In(c.location)) }); err != nil {
		return fmt.Errorf("register job: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	c.cron = cr
	c.cancel = cancel
	cr.Start()

	go func() {
		<-runCtx.Done()
		_ = c.halt(context.Background())
	}()

	return nil
}

// Stop halts the cron loop and waits for a running job or ctx, whichever ends first.
func (c *CronScheduler) Stop(ctx context.Context) error {
	return c.halt(ctx)
}

func (c *CronScheduler) halt(ctx context.Context) error {
	c.mu.Lock()
	cr, cancel := c.cron, c.cancel
	c.cron, c.cancel = nil, nil
	c.mu.Unlock()

	if cr == nil {
		return nil
	}
	cancel()

	done := cr.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
