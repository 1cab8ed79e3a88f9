package handler

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"order-sla-bot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	dateLayout     = "02.01.2006"
	dateTimeLayout = "02.01.2006 15:04"
)

func (h *Handler) requestLeave(message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID
	user, ok := h.currentUser(chatID)
	if !ok {
		return
	}

	loc := h.userLocation(user.ID)
	start, end, reason, err := parseLeavePeriod(args, loc)
	if err != nil {
		h.send(chatID, "❌ "+err.Error()+
			"\nUsage: /leave <dd.mm.yyyy> [hh:mm] <dd.mm.yyyy> [hh:mm] [reason]\nExample: /leave 21.10.2026 09:00 21.10.2026 13:00 dentist")
		return
	}

	leave, err := h.leaveService.RequestLeave(user, start, end, reason)
	if err != nil {
		h.sendError(chatID, "request leave", err)
		return
	}

	text := fmt.Sprintf("✅ Leave #%d requested\n🏖 %s\n📌 Status: %s", leave.ID, formatPeriod(leave, loc), leave.Status)
	h.send(chatID, text)

	if leave.Status == models.LeaveStatusPending {
		h.notifyManagers(fmt.Sprintf("🏖 Leave request #%d from %s\n%s\n%s\n\n/approveleave %d or /rejectleave %d",
			leave.ID, user.DisplayName(), formatPeriod(leave, loc), reason, leave.ID, leave.ID))
	}
}

func (h *Handler) reviewLeave(message *tgbotapi.Message, args string, approve bool) {
	chatID := message.Chat.ID
	actor, ok := h.currentUser(chatID)
	if !ok {
		return
	}

	id, err := parseID(args)
	if err != nil {
		h.send(chatID, fmt.Sprintf("❌ Usage: /%s <leave id>", message.Command()))
		return
	}

	review := h.leaveService.Reject
	if approve {
		review = h.leaveService.Approve
	}
	leave, err := review(actor, id)
	if err != nil {
		h.sendError(chatID, "review the leave request", err)
		return
	}

	h.send(chatID, fmt.Sprintf("✅ Leave #%d is now %s.", leave.ID, leave.Status))

	if owner, err := h.userService.GetByID(leave.UserID); err == nil {
		h.send(owner.ChatID, fmt.Sprintf("🏖 Your leave #%d (%s) was %s.",
			leave.ID, formatPeriod(leave, h.userLocation(owner.ID)), leave.Status))
	}
}

func (h *Handler) showMyLeaves(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	user, ok := h.currentUser(chatID)
	if !ok {
		return
	}

	leaves, err := h.leaveService.ListForUser(user.ID)
	if err != nil {
		h.sendError(chatID, "load your leave", err)
		return
	}
	if len(leaves) == 0 {
		h.send(chatID, "🏖 You have no leave requests.")
		return
	}

	loc := h.userLocation(user.ID)
	var b strings.Builder
	b.WriteString("🏖 Your leave:\n\n")
	for i := range leaves {
		fmt.Fprintf(&b, "#%d %s [%s]\n", leaves[i].ID, formatPeriod(&leaves[i], loc), leaves[i].Status)
	}
	h.send(chatID, b.String())
}

func (h *Handler) showPendingLeaves(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	user, ok := h.currentUser(chatID)
	if !ok {
		return
	}
	if !user.CanManage() {
		h.send(chatID, "❌ Only project managers review leave.")
		return
	}

	leaves, err := h.leaveService.Pending()
	if err != nil {
		h.sendError(chatID, "load pending leave", err)
		return
	}
	if len(leaves) == 0 {
		h.send(chatID, "🏖 No pending leave requests.")
		return
	}

	var b strings.Builder
	b.WriteString("🏖 Pending leave:\n\n")
	for i := range leaves {
		name := fmt.Sprintf("user %d", leaves[i].UserID)
		if owner, err := h.userService.GetByID(leaves[i].UserID); err == nil {
			name = owner.DisplayName()
		}
		fmt.Fprintf(&b, "#%d %s: %s\n", leaves[i].ID, name, formatPeriod(&leaves[i], h.userLocation(leaves[i].UserID)))
	}
	h.send(chatID, b.String())
}

// userLocation is the user's calendar zone, falling back to the configured default.
func (h *Handler) userLocation(userID uint) *time.Location {
	if cfg, err := h.calendarService.ForUser(userID); err == nil && cfg != nil {
		if loc, err := cfg.Location(); err == nil {
			return loc
		}
	}
	if loc, err := time.LoadLocation(h.config.DefaultTimezone); err == nil {
		return loc
	}
	return time.UTC
}

// parseLeavePeriod reads "<date> [time] <date> [time] [reason]" in loc.
// A start without time begins at midnight; an end without time covers the whole day.
func parseLeavePeriod(args string, loc *time.Location) (time.Time, time.Time, string, error) {
	parts := strings.Fields(args)

	start, rest, _, err := parsePoint(parts, loc)
	if err != nil {
		return time.Time{}, time.Time{}, "", fmt.Errorf("start: %w", err)
	}
	end, rest, endHasTime, err := parsePoint(rest, loc)
	if err != nil {
		return time.Time{}, time.Time{}, "", fmt.Errorf("end: %w", err)
	}
	if !endHasTime {
		end = end.AddDate(0, 0, 1)
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, "", errors.New("leave must end after it starts")
	}

	return start, end, strings.Join(rest, " "), nil
}

func parsePoint(parts []string, loc *time.Location) (time.Time, []string, bool, error) {
	if len(parts) == 0 {
		return time.Time{}, nil, false, errors.New("date is missing")
	}

	if len(parts) >= 2 {
		if t, err := time.ParseInLocation(dateTimeLayout, parts[0]+" "+parts[1], loc); err == nil {
			return t, parts[2:], true, nil
		}
	}

	t, err := time.ParseInLocation(dateLayout, parts[0], loc)
	if err != nil {
		return time.Time{}, nil, false, fmt.Errorf("invalid date %q, use dd.mm.yyyy", parts[0])
	}
	return t, parts[1:], false, nil
}

func formatPeriod(leave *models.Leave, loc *time.Location) string {
	return fmt.Sprintf("%s - %s (%s)",
		leave.StartAt.In(loc).Format(dateTimeLayout),
		leave.EndAt.In(loc).Format(dateTimeLayout),
		loc.String())
}

func (h *Handler) notifyManagers(text string) {
	managers, err := h.userService.Managers()
	if err != nil {
		h.logger.WithError(err).Warn("Failed to list managers")
		return
	}
	for _, m := range managers {
		h.send(m.ChatID, text)
	}
}

const upcomingHolidays = 10

func (h *Handler) showHolidays(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	user, ok := h.currentUser(chatID)
	if !ok {
		return
	}

	loc := h.userLocation(user.ID)
	days, err := h.holidayService.Upcoming(time.Now().In(loc), upcomingHolidays)
	if err != nil {
		h.sendError(chatID, "load holidays", err)
		return
	}
	if len(days) == 0 {
		h.send(chatID, "🎉 No upcoming public holidays.")
		return
	}

	var b strings.Builder
	b.WriteString("🎉 Upcoming public holidays:\n\n")
	for _, d := range days {
		start, _ := d.Span(loc)
		fmt.Fprintf(&b, "%s %s\n", start.Format(dateLayout), start.Weekday())
	}
	h.send(chatID, b.String())
}
