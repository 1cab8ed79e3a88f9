package handler

import (
	"fmt"
	"strconv"
	"strings"

	"order-sla-bot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (h *Handler) register(message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID

	role, ok := models.ParseRole(strings.ToLower(strings.TrimSpace(args)))
	if !ok {
		h.send(chatID, "❌ Usage: /register <dev|sales|pm>")
		return
	}

	var username, firstName, lastName string
	if message.From != nil {
		username, firstName, lastName = message.From.UserName, message.From.FirstName, message.From.LastName
	}

	user, err := h.userService.Register(chatID, username, firstName, lastName, role)
	if err != nil {
		h.sendError(chatID, "register", err)
		return
	}

	h.send(chatID, fmt.Sprintf("✅ Registered as %s with role %s.", user.DisplayName(), user.Role))
}

func (h *Handler) showProfile(message *tgbotapi.Message) {
	user, ok := h.currentUser(message.Chat.ID)
	if !ok {
		return
	}

	text := fmt.Sprintf("👤 %s\n🆔 Chat ID: %d\n🎭 Role: %s", user.DisplayName(), user.ChatID, user.Role)
	h.send(message.Chat.ID, text)
}

func (h *Handler) setRole(message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID
	actor, ok := h.currentUser(chatID)
	if !ok {
		return
	}

	parts := strings.Fields(args)
	if len(parts) != 2 {
		h.send(chatID, "❌ Usage: /setrole <chat id> <sales|pm|dev|admin>")
		return
	}

	targetChatID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		h.send(chatID, "❌ Chat ID must be a number.")
		return
	}
	role, ok := models.ParseRole(strings.ToLower(parts[1]))
	if !ok {
		h.send(chatID, "❌ Unknown role. Available: sales, pm, dev, admin")
		return
	}
	if targetChatID == h.config.BaseAdminChatID && role != models.RoleAdmin {
		h.send(chatID, "❌ The configured base admin keeps the admin role.")
		return
	}

	user, err := h.userService.SetRole(actor, targetChatID, role)
	if err != nil {
		h.sendError(chatID, "change the role", err)
		return
	}

	h.send(chatID, fmt.Sprintf("✅ %s is now %s.", user.DisplayName(), user.Role))
}
