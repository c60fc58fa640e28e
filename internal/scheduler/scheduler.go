package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/atomic"

	"github.com/i474232898/weather-subscription-bot/internal/reconcile"
)

const (
	defaultInterval = 6 * time.Hour
	runTimeout      = 30 * time.Minute
	jobTag          = "reconcile"
)

// Runner performs one reconciliation pass.
type Runner interface {
	Run(ctx context.Context) (reconcile.Result, error)
}

// Scheduler periodically reconciles all subscriptions and runs an extra pass
// on demand. At most one pass is in flight at a time.
type Scheduler struct {
	scheduler *gocron.Scheduler
	runner    Runner
	interval  time.Duration
	cronSpec  string

	running *atomic.Bool
	wg      sync.WaitGroup

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a new Scheduler. A non-empty cronSpec takes precedence over interval.
func New(runner Runner, interval time.Duration, cronSpec string) *Scheduler {
	if interval <= 0 {
		interval = defaultInterval
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		runner:    runner,
		interval:  interval,
		cronSpec:  cronSpec,
		running:   atomic.NewBool(false),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start schedules the recurring job and starts the underlying scheduler.
// The first recurring pass fires after one full period.
func (s *Scheduler) Start() error {
	var job *gocron.Scheduler
	if s.cronSpec != "" {
		job = s.scheduler.Cron(s.cronSpec)
		log.Printf("scheduler: reconciling on cron %q", s.cronSpec)
	} else {
		job = s.scheduler.Every(s.interval).WaitForSchedule()
		log.Printf("scheduler: reconciling every %s", s.interval)
	}

	_, err := job.Tag(jobTag).Do(func() {
		s.RunOnce(s.ctx)
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// TriggerNow requests an immediate pass in the background. The request is
// dropped if a pass is already running.
func (s *Scheduler) TriggerNow() {
	if s.ctx.Err() != nil {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.RunOnce(s.ctx)
	}()
}

// RunOnce runs a pass synchronously. It reports false without running when
// another pass is in flight.
func (s *Scheduler) RunOnce(ctx context.Context) (reconcile.Result, bool) {
	if !s.running.CAS(false, true) {
		log.Println("scheduler: reconciliation already running; skipping")
		return reconcile.Result{}, false
	}
	defer s.running.Store(false)

	ctx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	res, err := s.runner.Run(ctx)
	if err != nil {
		log.Printf("ERROR: scheduler: reconciliation failed: %v", err)
	}
	return res, true
}

// Running reports whether a pass is in flight.
func (s *Scheduler) Running() bool {
	return s.running.Load()
}

// Stop stops the scheduler, cancels an in-flight pass and waits for triggered
// passes to return.
func (s *Scheduler) Stop() {
	s.cancel()
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
	s.wg.Wait()
}
