package service

import (
	"context"
	"fmt"
	"time"

	"order-sla-bot/internal/logging"
	"order-sla-bot/internal/models"
	"order-sla-bot/internal/repository"
	"order-sla-bot/pkg/clock"
	"order-sla-bot/pkg/telegram"

	"github.com/sirupsen/logrus"
)

// Sender delivers a chat message. The Telegram client satisfies it.
type Sender interface {
	Send(chatID int64, text string) (int, error)
}

// Watcher periodically scans open tasks and reports each breached deadline once.
type Watcher struct {
	tasks    repository.TaskRepository
	users    *UserService
	timers   *TimerService
	sender   Sender
	clock    clock.Clock
	interval time.Duration

	slaHoursPerDay float64
	logger         *logrus.Logger
}

func NewWatcher(
	tasks repository.TaskRepository,
	users *UserService,
	timers *TimerService,
	sender Sender,
	clk clock.Clock,
	interval time.Duration,
	slaHoursPerDay float64,
) *Watcher {
	return &Watcher{
		tasks:          tasks,
		users:          users,
		timers:         timers,
		sender:         sender,
		clock:          clk,
		interval:       interval,
		slaHoursPerDay: slaHoursPerDay,
		logger:         logging.New(),
	}
}

// Run scans immediately and then every interval until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.WithField("interval", w.interval).Info("Escalation watcher started")

	for {
		if _, err := w.Scan(ctx); err != nil {
			w.logger.WithError(err).Error("Escalation scan failed")
		}

		select {
		case <-ctx.Done():
			w.logger.Info("Escalation watcher stopped")
			return
		case <-ticker.C:
		}
	}
}

// Scan escalates every open task whose active deadline has been breached and not yet reported.
// It returns the number of escalations sent.
func (w *Watcher) Scan(ctx context.Context) (int, error) {
	tasks, err := w.tasks.GetOpen()
	if err != nil {
		return 0, fmt.Errorf("failed to get open tasks: %w", err)
	}

	escalated := 0
	for _, task := range tasks {
		if err := ctx.Err(); err != nil {
			return escalated, err
		}

		timer, err := w.timers.Timer(ctx, task)
		if err != nil {
			w.logger.WithError(err).WithField("task_id", task.ID).Warn("Failed to evaluate task timer")
			continue
		}
		if !timer.Overdue() || task.WasEscalated(timer.Deadline.At) {
			continue
		}

		// The snapshot may be stale by now: re-read and stamp only if the
		// breached deadline still applies.
		current, err := w.tasks.GetByID(task.ID)
		if err != nil {
			w.logger.WithError(err).WithField("task_id", task.ID).Warn("Failed to reload task")
			continue
		}
		if current == nil {
			continue
		}
		active, ok := current.ActiveDeadline()
		if !ok || active.Kind != timer.Deadline.Kind || !active.At.Equal(timer.Deadline.At) || current.WasEscalated(active.At) {
			continue
		}

		now := w.clock.Now()
		stamped, err := w.tasks.MarkEscalated(current.ID, current.Status, active.At, now)
		if err != nil {
			w.logger.WithError(err).WithField("task_id", task.ID).Error("Failed to stamp escalation")
			continue
		}
		if !stamped {
			continue
		}
		current.EscalatedFor = &active.At
		current.EscalatedAt = &now
		timer.Task = current

		w.notify(current, timer)
		escalated++
	}

	return escalated, nil
}

func (w *Watcher) notify(task *models.Task, timer TaskTimer) {
	recipients := map[int64]struct{}{}
	for _, id := range []uint{task.AssigneeID, task.CreatedByID} {
		user, err := w.users.GetByID(id)
		if err != nil {
			w.logger.WithError(err).WithField("user_id", id).Warn("Escalation recipient not found")
			continue
		}
		recipients[user.ChatID] = struct{}{}
	}

	managers, err := w.users.Managers()
	if err != nil {
		w.logger.WithError(err).Warn("Failed to list managers for escalation")
	}
	for _, m := range managers {
		recipients[m.ChatID] = struct{}{}
	}

	text := fmt.Sprintf("🚨 *Deadline breached*\nTask #%d %s\n%s",
		task.ID, telegram.EscapeMarkdown(task.Title), timer.Badge(false, w.slaHoursPerDay))

	for chatID := range recipients {
		if _, err := w.sender.Send(chatID, text); err != nil {
			w.logger.WithError(err).WithField("chat_id", chatID).Warn("Failed to send escalation")
		}
	}

	w.logger.WithFields(logrus.Fields{
		"task_id":    task.ID,
		"kind":       timer.Deadline.Kind,
		"deadline":   timer.Deadline.At,
		"recipients": len(recipients),
	}).Info("Deadline escalated")
}
