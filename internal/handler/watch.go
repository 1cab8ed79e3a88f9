package handler

import (
	"context"
	"fmt"
	"time"

	"order-sla-bot/internal/service"
)

func watchKey(chatID int64, taskID uint) string {
	return fmt.Sprintf("%d:%d", chatID, taskID)
}

// watch posts a countdown message and keeps editing it until the clock stops.
func (h *Handler) watch(ctx context.Context, chatID int64, taskID uint) {
	actor, ok := h.currentUser(chatID)
	if !ok {
		return
	}

	task, err := h.taskService.Get(actor, taskID)
	if err != nil {
		h.sendError(chatID, "watch the order", err)
		return
	}
	timer, err := h.timerService.Timer(ctx, task)
	if err != nil {
		h.sendError(chatID, "evaluate the deadline", err)
		return
	}
	if !timer.Running {
		h.sendMarkdown(chatID, fmt.Sprintf("%s\n%s", taskHeader(task), timer.Badge(false, h.config.SLAHoursPerDay)))
		return
	}

	var (
		messageID int
		last      string
	)
	render := func(ctx context.Context, now time.Time) (bool, error) {
		task, err := h.taskService.Get(actor, taskID)
		if err != nil {
			return true, err
		}
		timer, err := h.timerService.TimerAt(ctx, task, now)
		if err != nil {
			return true, err
		}

		text := watchText(timer, h.config.SLAHoursPerDay)
		if text == last {
			return !timer.Running, nil
		}

		if messageID == 0 {
			messageID, err = h.client.Send(chatID, text)
		} else {
			err = h.client.Edit(chatID, messageID, text)
		}
		if err != nil {
			return true, err
		}
		last = text
		return !timer.Running, nil
	}

	h.countdowns.Start(watchKey(chatID, taskID), render)
}

func (h *Handler) unwatch(chatID int64, taskID uint) {
	if h.countdowns.Stop(watchKey(chatID, taskID)) {
		h.send(chatID, fmt.Sprintf("⏹ Stopped watching #%d.", taskID))
		return
	}
	h.send(chatID, fmt.Sprintf("Not watching #%d.", taskID))
}

func watchText(timer service.TaskTimer, slaHoursPerDay float64) string {
	text := fmt.Sprintf("%s\n%s", taskHeader(timer.Task), timer.Badge(true, slaHoursPerDay))
	if timer.Running {
		return text + fmt.Sprintf("\n\n/unwatch %d to stop", timer.Task.ID)
	}
	return text + "\n\n⏹ Countdown finished."
}
