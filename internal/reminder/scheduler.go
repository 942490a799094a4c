// Package reminder periodically notifies owners about their overdue tasks.
package reminder

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/yukikurage/todo-reminder-api/internal/models"
	"github.com/yukikurage/todo-reminder-api/internal/notify"
	"github.com/yukikurage/todo-reminder-api/internal/repository"
	"go.uber.org/zap"
)

// ErrCycleInProgress is returned by RunCycle while another cycle is running.
var ErrCycleInProgress = errors.New("reminder cycle already in progress")

const notificationTitle = "Task overdue"

// Options configures a Scheduler.
type Options struct {
	Interval time.Duration
	// Cooldown is the minimum gap between two reminders for one task.
	// Zero reminds on every cycle.
	Cooldown time.Duration
	Workers  int
}

// CycleResult summarises one reminder cycle.
type CycleResult struct {
	Overdue int
	Sent    int
	Skipped int
	Failed  int
	// Dropped counts tasks never handed to a worker because ctx ended.
	Dropped int
}

// Scheduler runs reminder cycles on a fixed interval.
type Scheduler struct {
	tasks    repository.TaskRepository
	users    repository.UserRepository
	notifier notify.Notifier
	logger   *zap.Logger
	opts     Options
	now      func() time.Time

	running  atomic.Bool
	wg       sync.WaitGroup
	stop     chan struct{}
	stopOnce sync.Once
}

// NewScheduler creates a Scheduler. Workers below one is treated as one.
func NewScheduler(tasks repository.TaskRepository, users repository.UserRepository, notifier notify.Notifier, opts Options, logger *zap.Logger) *Scheduler {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Scheduler{
		tasks:    tasks,
		users:    users,
		notifier: notifier,
		logger:   logger,
		opts:     opts,
		now:      time.Now,
		stop:     make(chan struct{}),
	}
}

// Start launches the ticking loop. It returns immediately.
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Starting reminder scheduler",
		zap.Duration("interval", s.opts.Interval),
		zap.Duration("cooldown", s.opts.Cooldown),
		zap.Int("workers", s.opts.Workers),
	)

	s.wg.Add(1)
	go s.loop(ctx)
}

// Stop ends the loop and waits for a running cycle to finish.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.logger.Info("Stopping reminder scheduler...")
		close(s.stop)
	})
	s.wg.Wait()
	s.logger.Info("Reminder scheduler stopped")
}

func (s *Scheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	// Overlapping ticks are dropped by RunCycle. A started cycle outlives
	// ctx; Stop waits for it.
	cycleCtx := context.WithoutCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		result, err := s.RunCycle(cycleCtx)
		switch {
		case errors.Is(err, ErrCycleInProgress):
			s.logger.Warn("Skipping reminder tick, previous cycle still running")
		case err != nil:
			s.logger.Error("Reminder cycle failed", zap.Error(err))
		case result.Overdue > 0:
			s.logger.Info("Reminder cycle finished",
				zap.Int("overdue", result.Overdue),
				zap.Int("sent", result.Sent),
				zap.Int("skipped", result.Skipped),
				zap.Int("failed", result.Failed),
				zap.Int("dropped", result.Dropped),
			)
		}
	}()
}

type job struct {
	task  models.Task
	token string
}

// RunCycle notifies owners of every overdue task that is due for a reminder.
// A failure on one task is logged and does not stop the others.
func (s *Scheduler) RunCycle(ctx context.Context) (CycleResult, error) {
	if !s.running.CompareAndSwap(false, true) {
		return CycleResult{}, ErrCycleInProgress
	}
	defer s.running.Store(false)

	now := s.now().UTC()
	var notifiedBefore *time.Time
	if s.opts.Cooldown > 0 {
		t := now.Add(-s.opts.Cooldown)
		notifiedBefore = &t
	}

	overdue, err := s.tasks.FindOverdue(ctx, now, notifiedBefore)
	if err != nil {
		return CycleResult{}, fmt.Errorf("failed to find overdue tasks: %w", err)
	}

	result := CycleResult{Overdue: len(overdue)}
	if len(overdue) == 0 {
		return result, nil
	}

	tokens, err := s.ownerTokens(ctx, overdue)
	if err != nil {
		return result, err
	}

	jobs := make([]job, 0, len(overdue))
	for _, t := range overdue {
		token, ok := tokens[t.OwnerID]
		if !ok {
			result.Skipped++
			continue
		}
		jobs = append(jobs, job{task: t, token: token})
	}

	result.Sent, result.Failed, result.Dropped = s.dispatch(ctx, jobs)
	if result.Dropped > 0 {
		s.logger.Warn("Reminder cycle interrupted",
			zap.Int("dropped", result.Dropped),
			zap.Error(ctx.Err()),
		)
	}
	return result, nil
}

// ownerTokens loads each distinct owner once and keeps those with a device.
func (s *Scheduler) ownerTokens(ctx context.Context, tasks []models.Task) (map[uint64]string, error) {
	seen := make(map[uint64]struct{}, len(tasks))
	ids := make([]uint64, 0, len(tasks))
	for _, t := range tasks {
		if _, ok := seen[t.OwnerID]; ok {
			continue
		}
		seen[t.OwnerID] = struct{}{}
		ids = append(ids, t.OwnerID)
	}

	owners, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load task owners: %w", err)
	}

	tokens := make(map[uint64]string, len(owners))
	for _, u := range owners {
		if u.HasDeviceToken() {
			tokens[u.ID] = *u.DeviceToken
		}
	}
	return tokens, nil
}

// dispatch returns how many jobs were sent, failed and never started.
func (s *Scheduler) dispatch(ctx context.Context, jobs []job) (int, int, int) {
	if len(jobs) == 0 {
		return 0, 0, 0
	}

	queue := make(chan job)
	var sent, failed atomic.Int64
	var wg sync.WaitGroup

	workers := min(s.opts.Workers, len(jobs))
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := range queue {
				if err := s.remind(ctx, j); err != nil {
					failed.Add(1)
					s.logger.Error("Failed to send reminder",
						zap.Int("worker", id),
						zap.Uint64("task_id", j.task.ID),
						zap.Uint64("owner_id", j.task.OwnerID),
						zap.Error(err),
					)
					continue
				}
				sent.Add(1)
			}
		}(i)
	}

	dropped := 0
feed:
	for i, j := range jobs {
		if ctx.Err() != nil {
			dropped = len(jobs) - i
			break
		}
		select {
		case queue <- j:
		case <-ctx.Done():
			dropped = len(jobs) - i
			break feed
		}
	}
	close(queue)
	wg.Wait()

	return int(sent.Load()), int(failed.Load()), dropped
}

func (s *Scheduler) remind(ctx context.Context, j job) error {
	body := fmt.Sprintf("%q was due %s", j.task.Title, j.task.DueDate.UTC().Format(time.RFC1123))
	if err := s.notifier.Send(ctx, j.token, notificationTitle, body); err != nil {
		return err
	}

	if err := s.tasks.MarkNotified(ctx, j.task.ID, s.now()); err != nil {
		return fmt.Errorf("reminder sent but not recorded: %w", err)
	}

	s.logger.Debug("Reminder sent", zap.Uint64("task_id", j.task.ID))
	return nil
}
