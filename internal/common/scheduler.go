package common

import (
	"clubbot/internal/metrics"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// A task the scheduler runs every interval. Run receives a context
// carrying a logger with the task name and a unique run id
type Task struct {
	Name      string
	Interval  time.Duration
	Immediate bool // Run once right away instead of waiting for the first tick
	Run       func(ctx context.Context) error
}

// The scheduler drives each task from its own ticker. A tick of a task
// runs to completion before the next tick of that same task is taken,
// and ticks that arrive meanwhile are dropped. Different tasks run concurrently
type Scheduler struct {
	clock  Clock
	logger zerolog.Logger
	tasks  []Task
	wg     sync.WaitGroup
}

func NewScheduler(clock Clock, logger zerolog.Logger) *Scheduler {
	return &Scheduler{clock: clock, logger: logger}
}

func (s *Scheduler) Add(task Task) {
	s.tasks = append(s.tasks, task)
}

// Start every task. Tickers exist by the time Start returns
func (s *Scheduler) Start(ctx context.Context) {
	for _, task := range s.tasks {
		ticker := s.clock.NewTicker(task.Interval)
		s.wg.Add(1)
		go func(task Task, ticker Ticker) {
			defer s.wg.Done()
			defer ticker.Stop()
			s.loop(ctx, task, ticker)
		}(task, ticker)
		s.logger.Info().Str("task", task.Name).Dur("interval", task.Interval).Msg("Task scheduled")
	}
}

// Wait until every task has returned after the context passed to Start is done
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

func (s *Scheduler) Run(ctx context.Context) {
	s.Start(ctx)
	s.Wait()
}

func (s *Scheduler) loop(ctx context.Context, task Task, ticker Ticker) {
	if task.Immediate {
		s.execute(ctx, task)
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			if ctx.Err() != nil {
				return
			}
			s.execute(ctx, task)
		}
	}
}

func (s *Scheduler) execute(ctx context.Context, task Task) {

	logger := s.logger.With().Str("task", task.Name).Str("run", uuid.NewString()).Logger()
	ctx = logger.WithContext(ctx)

	start := s.clock.Now()
	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("task panicked: %v", r)
			}
		}()
		return task.Run(ctx)
	}()
	elapsed := s.clock.Now().Sub(start)
	metrics.ObserveTaskRun(task.Name, elapsed, err)

	if err != nil {
		logger.Error().Err(err).Dur("elapsed", elapsed).Msg("Task failed")
		return
	}
	logger.Debug().Dur("elapsed", elapsed).Msg("Task finished")
}
