package handler

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"order-sla-bot/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const dashboardLimit = 30

func (h *Handler) showDashboard(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	actor, ok := h.currentUser(chatID)
	if !ok {
		return
	}

	tasks, err := h.taskService.ListForUser(actor)
	if err != nil {
		h.sendError(chatID, "load orders", err)
		return
	}
	if len(tasks) == 0 {
		h.send(chatID, "📭 No open orders.")
		return
	}

	timers, err := h.timerService.Timers(ctx, tasks)
	if err != nil {
		h.sendError(chatID, "evaluate deadlines", err)
		return
	}
	sortTimers(timers)

	var b strings.Builder
	fmt.Fprintf(&b, "📋 *Orders* (%d)\n", len(timers))
	for i, timer := range timers {
		if i == dashboardLimit {
			fmt.Fprintf(&b, "\n…and %d more", len(timers)-dashboardLimit)
			break
		}
		fmt.Fprintf(&b, "\n%s\n%s\n", taskHeader(timer.Task), timer.Badge(false, h.config.SLAHoursPerDay))
	}
	h.sendMarkdown(chatID, b.String())
}

// sortTimers puts overdue orders first, then urgent ones, then running clocks by
// remaining time; orders without a running clock go last.
func sortTimers(timers []service.TaskTimer) {
	rank := func(t service.TaskTimer) int {
		switch {
		case t.Overdue():
			return 0
		case t.Running && t.Urgent:
			return 1
		case t.Running:
			return 2
		default:
			return 3
		}
	}

	sort.SliceStable(timers, func(i, j int) bool {
		a, b := timers[i], timers[j]
		if ra, rb := rank(a), rank(b); ra != rb {
			return ra < rb
		}
		switch rank(a) {
		case 0:
			return a.Snapshot.Overdue > b.Snapshot.Overdue
		case 1, 2:
			return a.Snapshot.Remaining < b.Snapshot.Remaining
		default:
			return a.Task.ID < b.Task.ID
		}
	})
}
