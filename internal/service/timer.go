package service

import (
	"context"
	"fmt"
	"time"

	"order-sla-bot/internal/logging"
	"order-sla-bot/internal/models"
	"order-sla-bot/pkg/clock"
	"order-sla-bot/pkg/workhours"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// TaskTimer is the evaluated clock of one task at one instant.
type TaskTimer struct {
	Task     *models.Task
	Deadline models.Deadline
	Snapshot workhours.Snapshot
	// Running is false when no deadline applies (waiting on review, held, resolved).
	Running bool
	Urgent  bool
}

// InitialBudget is the working time the deadline was originally placed with.
func (t TaskTimer) InitialBudget() time.Duration {
	return time.Duration(t.Deadline.BudgetMinutes) * time.Minute
}

// Overdue reports whether the running deadline has passed.
func (t TaskTimer) Overdue() bool {
	return t.Running && t.Snapshot.State == workhours.StateOverdueAccruing
}

// Badge renders the clock for chat. Live badges tick seconds while the shift is on.
func (t TaskTimer) Badge(live bool, slaHoursPerDay float64) string {
	if !t.Running {
		return statusBadge(t.Task)
	}

	label := t.Deadline.Kind.Label()
	if t.Snapshot.State == workhours.StateOverdueAccruing {
		// Total time the task has been open: the original budget plus working time overdue.
		text := t.Snapshot.Format(workhours.FormatOptions{
			Live:           live,
			SLAHoursPerDay: slaHoursPerDay,
			InitialBudget:  t.InitialBudget(),
		})
		return fmt.Sprintf("🔥 %s overdue, open for %s", label, text)
	}

	text := t.Snapshot.Format(workhours.FormatOptions{Live: live, SLAHoursPerDay: slaHoursPerDay})
	icon := "⏳"
	if t.Urgent {
		icon = "⚠️"
	}
	return fmt.Sprintf("%s %s: %s left", icon, label, text)
}

func statusBadge(task *models.Task) string {
	switch task.Status {
	case models.TaskOnHold:
		return "⏸ On hold"
	case models.TaskApproved:
		return "✅ Approved"
	case models.TaskCancelled:
		return "❌ Cancelled"
	case models.TaskCompleted:
		return "🕵 Awaiting final review"
	default:
		if phase := task.Phase(); phase != nil && phase.AwaitingReview() {
			return "🕵 Awaiting review"
		}
		return "⏹ No running deadline"
	}
}

type TimerService struct {
	schedules       *ScheduleResolver
	clock           clock.Clock
	urgentThreshold time.Duration
	logger          *logrus.Logger
}

func NewTimerService(schedules *ScheduleResolver, clk clock.Clock, urgentThreshold time.Duration) *TimerService {
	return &TimerService{
		schedules:       schedules,
		clock:           clk,
		urgentThreshold: urgentThreshold,
		logger:          logging.New(),
	}
}

// Timer evaluates the task's active deadline against the assignee's schedule at the current instant.
func (s *TimerService) Timer(ctx context.Context, task *models.Task) (TaskTimer, error) {
	return s.TimerAt(ctx, task, s.clock.Now())
}

// TimerAt is Timer with an explicit instant. Nothing is cached: every call reads the schedule afresh.
func (s *TimerService) TimerAt(ctx context.Context, task *models.Task, now time.Time) (TaskTimer, error) {
	timer := TaskTimer{Task: task}

	deadline, ok := task.ActiveDeadline()
	if !ok {
		return timer, nil
	}
	timer.Deadline = deadline
	timer.Running = true

	schedule, err := s.schedules.Resolve(ctx, task.AssigneeID, now, deadline.At)
	if err != nil {
		return timer, fmt.Errorf("failed to resolve schedule of task %d: %w", task.ID, err)
	}
	if schedule.Calendar != nil && len(schedule.Calendar.WorkingDays) == 0 {
		s.logger.WithFields(logrus.Fields{
			"task_id":     task.ID,
			"assignee_id": task.AssigneeID,
		}).Warn("Calendar has no working days, timer is frozen")
	}

	timer.Snapshot = workhours.Evaluate(now, deadline.At, schedule.Calendar, schedule.Leaves)
	timer.Urgent = timer.Snapshot.Urgent(s.urgentThreshold)
	return timer, nil
}

// Timers evaluates several tasks concurrently at one shared instant.
func (s *TimerService) Timers(ctx context.Context, tasks []*models.Task) ([]TaskTimer, error) {
	now := s.clock.Now()
	timers := make([]TaskTimer, len(tasks))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, task := range tasks {
		i, task := i, task
		g.Go(func() error {
			timer, err := s.TimerAt(ctx, task, now)
			if err != nil {
				return err
			}
			timers[i] = timer
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return timers, nil
}
