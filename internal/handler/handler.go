package handler

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"order-sla-bot/internal/config"
	"order-sla-bot/internal/logging"
	"order-sla-bot/internal/models"
	"order-sla-bot/internal/service"
	"order-sla-bot/pkg/telegram"
	"order-sla-bot/pkg/workhours"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	client          *telegram.Client
	userService     *service.UserService
	calendarService *service.CalendarService
	leaveService    *service.LeaveService
	holidayService  *service.NonWorkingDayService
	taskService     *service.TaskService
	timerService    *service.TimerService
	countdowns      *service.CountdownManager
	config          *config.BotConfig
	logger          *logrus.Logger
}

func NewHandler(
	client *telegram.Client,
	userService *service.UserService,
	calendarService *service.CalendarService,
	leaveService *service.LeaveService,
	holidayService *service.NonWorkingDayService,
	taskService *service.TaskService,
	timerService *service.TimerService,
	countdowns *service.CountdownManager,
	cfg *config.BotConfig,
) *Handler {
	return &Handler{
		client:          client,
		userService:     userService,
		calendarService: calendarService,
		leaveService:    leaveService,
		holidayService:  holidayService,
		taskService:     taskService,
		timerService:    timerService,
		countdowns:      countdowns,
		config:          cfg,
		logger:          logging.New(),
	}
}

// HandleUpdates processes updates until the channel closes or ctx is cancelled.
func (h *Handler) HandleUpdates(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}

			if update.CallbackQuery != nil {
				h.handleCallbackQuery(ctx, update.CallbackQuery)
				continue
			}
			if update.Message == nil {
				continue
			}
			h.handleMessage(ctx, update.Message)
		}
	}
}

// handleCallbackQuery serves the inline buttons attached to order notifications.
// Data is "<action>:<task id>[:<argument>]".
func (h *Handler) handleCallbackQuery(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	defer func() {
		if _, err := h.client.Bot.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
			h.logger.WithError(err).Debug("Failed to answer callback")
		}
	}()

	if callback.Message == nil {
		return
	}
	chatID := callback.Message.Chat.ID

	// Drop the keyboard so a button cannot be pressed twice.
	edit := tgbotapi.NewEditMessageReplyMarkup(chatID, callback.Message.MessageID, tgbotapi.NewInlineKeyboardMarkup())
	if _, err := h.client.Bot.Request(edit); err != nil {
		h.logger.WithError(err).Debug("Failed to remove inline keyboard")
	}

	parts := strings.Split(callback.Data, ":")
	if len(parts) < 2 {
		return
	}
	taskID, err := parseID(parts[1])
	if err != nil {
		return
	}

	switch parts[0] {
	case "ack":
		h.acknowledge(ctx, chatID, taskID)
	case "review":
		if len(parts) == 3 {
			if decision, ok := service.ParseReviewDecision(parts[2]); ok {
				h.review(ctx, chatID, taskID, decision)
			}
		}
	case "watch":
		h.watch(ctx, chatID, taskID)
	case "unwatch":
		h.unwatch(chatID, taskID)
	}
}

func (h *Handler) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	if message.From != nil {
		h.logger.Infof("[%s] %s", message.From.UserName, message.Text)
	}

	if message.IsCommand() {
		h.handleCommand(ctx, message)
		return
	}

	h.send(message.Chat.ID, "Use /help to see the available commands.")
}

func (h *Handler) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.client.Bot.Send(msg); err != nil {
		h.logger.WithError(err).WithField("chat_id", chatID).Warn("Failed to send message")
	}
}

func (h *Handler) sendMarkdown(chatID int64, text string, markup ...tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if len(markup) > 0 {
		msg.ReplyMarkup = markup[0]
	}
	if _, err := h.client.Bot.Send(msg); err != nil {
		h.logger.WithError(err).WithField("chat_id", chatID).Warn("Failed to send message")
	}
}

// sendError reports a failed action. Known errors get a friendly message, the rest are logged.
func (h *Handler) sendError(chatID int64, action string, err error) {
	text, known := errorText(err)
	if !known {
		h.logger.WithError(err).WithField("chat_id", chatID).Errorf("Failed to %s", action)
	}
	h.send(chatID, "❌ Failed to "+action+": "+text)
}

func errorText(err error) (string, bool) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		return "user not found. Register first with /register <role>.", true
	case errors.Is(err, service.ErrTaskNotFound):
		return "no such task.", true
	case errors.Is(err, service.ErrLeaveNotFound):
		return "no such leave request.", true
	case errors.Is(err, service.ErrForbidden):
		return "your role does not allow this.", true
	case errors.Is(err, service.ErrInvalidTransition):
		return "not possible in the current state.", true
	case errors.Is(err, service.ErrLeaveConflict):
		return "it overlaps leave you already requested.", true
	case errors.Is(err, service.ErrInvalidInput):
		return err.Error(), true
	case errors.Is(err, workhours.ErrInvalidCalendar), errors.Is(err, workhours.ErrInvalidFormat):
		return "the working calendar is invalid, ask a manager to fix it.", true
	default:
		return "internal error, please try again later.", false
	}
}

// currentUser loads the sender's profile and reports a missing one to the chat.
func (h *Handler) currentUser(chatID int64) (*models.User, bool) {
	user, err := h.userService.GetUser(chatID)
	if err != nil {
		h.sendError(chatID, "load your profile", err)
		return nil, false
	}
	return user, true
}

func parseID(s string) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimPrefix(strings.TrimSpace(s), "#"), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(id), nil
}
