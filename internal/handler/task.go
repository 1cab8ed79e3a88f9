package handler

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"order-sla-bot/internal/models"
	"order-sla-bot/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (h *Handler) newOrder(ctx context.Context, message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID
	actor, ok := h.currentUser(chatID)
	if !ok {
		return
	}

	parts := strings.Fields(args)
	if len(parts) < 3 {
		h.send(chatID, "❌ Usage: /neworder <post|logo|website> <developer chat id> <title>\nExample: /neworder logo 123456789 Bakery logo")
		return
	}

	orderType, ok := models.ParseOrderType(strings.ToLower(parts[0]))
	if !ok {
		h.send(chatID, "❌ Unknown order type. Available: post, logo, website")
		return
	}
	assigneeChatID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		h.send(chatID, "❌ Developer chat ID must be a number.")
		return
	}

	task, err := h.taskService.CreateOrder(ctx, actor, service.OrderInput{
		Type:           orderType,
		AssigneeChatID: assigneeChatID,
		Title:          strings.Join(parts[2:], " "),
	})
	if err != nil {
		h.sendError(chatID, "create the order", err)
		return
	}

	badge := h.badge(ctx, task)
	h.sendMarkdown(chatID, fmt.Sprintf("✅ Order created\n\n%s\n%s\n\nFollow it live with /watch %d",
		taskHeader(task), badge, task.ID))

	ackButton := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("✅ Acknowledge", fmt.Sprintf("ack:%d", task.ID)),
	))
	h.sendMarkdown(assigneeChatID, fmt.Sprintf("📦 New order for you\n\n%s\nFrom %s\n%s",
		taskHeader(task), escape(actor.DisplayName()), badge), ackButton)
}

func (h *Handler) acknowledge(ctx context.Context, chatID int64, taskID uint) {
	actor, ok := h.currentUser(chatID)
	if !ok {
		return
	}

	task, err := h.taskService.Acknowledge(ctx, actor, taskID)
	if err != nil {
		h.sendError(chatID, "acknowledge", err)
		return
	}

	badge := h.badge(ctx, task)
	h.sendMarkdown(chatID, fmt.Sprintf("👍 Acknowledged\n\n%s\n%s\n\nUse /startwork %d when you begin.", taskHeader(task), badge, task.ID))
	h.notifyUser(task.CreatedByID, fmt.Sprintf("👍 %s was acknowledged\n%s", taskHeader(task), badge))
}

func (h *Handler) startWork(chatID int64, taskID uint) {
	actor, ok := h.currentUser(chatID)
	if !ok {
		return
	}

	task, err := h.taskService.StartWork(actor, taskID)
	if err != nil {
		h.sendError(chatID, "start work", err)
		return
	}
	h.sendMarkdown(chatID, fmt.Sprintf("🛠 Work started on %s", taskHeader(task)))
}

func (h *Handler) submit(ctx context.Context, chatID int64, taskID uint) {
	actor, ok := h.currentUser(chatID)
	if !ok {
		return
	}

	task, err := h.taskService.Submit(ctx, actor, taskID)
	if err != nil {
		h.sendError(chatID, "submit", err)
		return
	}

	if !task.Phase().AwaitingReview() {
		// Changes to an approved phase close it without another review.
		text := fmt.Sprintf("✅ Changes accepted for %s\n%s", taskHeader(task), h.badge(ctx, task))
		h.sendMarkdown(chatID, text)
		h.notifyUser(task.CreatedByID, text)
		return
	}

	h.sendMarkdown(chatID, fmt.Sprintf("📤 Submitted %s for review.", taskHeader(task)))

	phase := task.Phase()
	buttons := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("✅ Approve", fmt.Sprintf("review:%d:%s", task.ID, service.DecisionApprove)),
		tgbotapi.NewInlineKeyboardButtonData("✏️ Changes", fmt.Sprintf("review:%d:%s", task.ID, service.DecisionChanges)),
		tgbotapi.NewInlineKeyboardButtonData("❌ Reject", fmt.Sprintf("review:%d:%s", task.ID, service.DecisionReject)),
	))
	managers, err := h.userService.Managers()
	if err != nil {
		h.logger.WithError(err).Warn("Failed to list reviewers")
		return
	}
	for _, m := range managers {
		h.sendMarkdown(m.ChatID, fmt.Sprintf("📥 Review requested\n\n%s\nPhase: %s", taskHeader(task), escape(phase.Name)), buttons)
	}
}

func (h *Handler) reviewCommand(ctx context.Context, message *tgbotapi.Message, args string) {
	parts := strings.Fields(args)
	if len(parts) != 2 {
		h.send(message.Chat.ID, "❌ Usage: /review <task id> <approve|changes|reject>")
		return
	}
	id, err := parseID(parts[0])
	if err != nil {
		h.send(message.Chat.ID, "❌ Invalid task id.")
		return
	}
	decision, ok := service.ParseReviewDecision(strings.ToLower(parts[1]))
	if !ok {
		h.send(message.Chat.ID, "❌ Decision must be approve, changes or reject.")
		return
	}
	h.review(ctx, message.Chat.ID, id, decision)
}

func (h *Handler) review(ctx context.Context, chatID int64, taskID uint, decision service.ReviewDecision) {
	actor, ok := h.currentUser(chatID)
	if !ok {
		return
	}

	task, err := h.taskService.Review(ctx, actor, taskID, decision)
	if err != nil {
		h.sendError(chatID, "review", err)
		return
	}

	var outcome string
	switch {
	case task.Status == models.TaskApproved:
		outcome = "🎉 Order approved"
	case decision == service.DecisionApprove:
		outcome = fmt.Sprintf("✅ Phase approved, next up: %s", escape(task.Phase().Name))
	case decision == service.DecisionChanges:
		outcome = "✏️ Approved with changes requested"
	default:
		outcome = "❌ Rejected, changes requested"
	}

	text := fmt.Sprintf("%s\n\n%s\n%s", outcome, taskHeader(task), h.badge(ctx, task))
	h.sendMarkdown(chatID, text)
	h.notifyUser(task.AssigneeID, text)
	if task.CreatedByID != actor.ID {
		h.notifyUser(task.CreatedByID, text)
	}
}

func (h *Handler) hold(chatID int64, taskID uint) {
	actor, ok := h.currentUser(chatID)
	if !ok {
		return
	}

	task, err := h.taskService.Hold(actor, taskID)
	if err != nil {
		h.sendError(chatID, "put the order on hold", err)
		return
	}

	text := fmt.Sprintf("⏸ %s is on hold. The clock is paused.", taskHeader(task))
	h.sendMarkdown(chatID, text)
	h.notifyUser(task.AssigneeID, text)
}

func (h *Handler) resume(ctx context.Context, chatID int64, taskID uint) {
	actor, ok := h.currentUser(chatID)
	if !ok {
		return
	}

	task, err := h.taskService.Resume(ctx, actor, taskID)
	if err != nil {
		h.sendError(chatID, "resume the order", err)
		return
	}

	text := fmt.Sprintf("▶️ %s resumed\n%s", taskHeader(task), h.badge(ctx, task))
	h.sendMarkdown(chatID, text)
	h.notifyUser(task.AssigneeID, text)
}

func (h *Handler) cancel(chatID int64, taskID uint) {
	actor, ok := h.currentUser(chatID)
	if !ok {
		return
	}

	task, err := h.taskService.Cancel(actor, taskID)
	if err != nil {
		h.sendError(chatID, "cancel the order", err)
		return
	}

	h.countdowns.Stop(watchKey(chatID, task.ID))
	text := fmt.Sprintf("❌ %s was cancelled.", taskHeader(task))
	h.sendMarkdown(chatID, text)
	h.notifyUser(task.AssigneeID, text)
}

func (h *Handler) showTask(ctx context.Context, chatID int64, taskID uint) {
	actor, ok := h.currentUser(chatID)
	if !ok {
		return
	}

	task, err := h.taskService.Get(actor, taskID)
	if err != nil {
		h.sendError(chatID, "load the order", err)
		return
	}

	timer, err := h.timerService.Timer(ctx, task)
	if err != nil {
		h.sendError(chatID, "evaluate the deadline", err)
		return
	}

	text := taskDetails(task, timer, h.userLocation(actor.ID), h.config.SLAHoursPerDay)
	if !timer.Running {
		h.sendMarkdown(chatID, text)
		return
	}
	watchButton := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⏱ Watch live", fmt.Sprintf("watch:%d", task.ID)),
	))
	h.sendMarkdown(chatID, text, watchButton)
}

// badge renders the task's clock, or a placeholder when the schedule cannot be read.
func (h *Handler) badge(ctx context.Context, task *models.Task) string {
	timer, err := h.timerService.Timer(ctx, task)
	if err != nil {
		h.logger.WithError(err).WithField("task_id", task.ID).Warn("Failed to evaluate task timer")
		return "⏰ deadline unavailable"
	}
	return timer.Badge(false, h.config.SLAHoursPerDay)
}

func (h *Handler) notifyUser(userID uint, text string) {
	user, err := h.userService.GetByID(userID)
	if err != nil {
		h.logger.WithError(err).WithField("user_id", userID).Warn("Failed to notify user")
		return
	}
	h.sendMarkdown(user.ChatID, text)
}
