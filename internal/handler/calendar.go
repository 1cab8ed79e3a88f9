package handler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"order-sla-bot/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (h *Handler) showCalendar(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	user, ok := h.currentUser(chatID)
	if !ok {
		return
	}

	calendar, err := h.calendarService.Lookup(user.ID)
	if err != nil {
		h.sendError(chatID, "load your calendar", err)
		return
	}
	if calendar == nil {
		h.send(chatID, "📅 No calendar is set. Deadlines run on the wall clock.\nSet one with /setcalendar.")
		return
	}

	title := "📅 Your calendar"
	if calendar.IsDefault() {
		title = "📅 Team default calendar"
	}
	h.send(chatID, title+"\n\n"+calendar.Summary())
}

func (h *Handler) setCalendar(message *tgbotapi.Message, args string, teamDefault bool) {
	chatID := message.Chat.ID
	user, ok := h.currentUser(chatID)
	if !ok {
		return
	}

	in, err := parseCalendarArgs(args)
	if err != nil {
		h.send(chatID, "❌ "+err.Error()+"\nUsage: /"+message.Command()+
			" <days> <start> <end> [<sat start> <sat end>] [<timezone>]\nExample: /setcalendar 1-5 09:00 18:00 Asia/Karachi")
		return
	}

	save := h.calendarService.SetCalendar
	if teamDefault {
		save = h.calendarService.SetDefault
	}
	calendar, err := save(user, in)
	if err != nil {
		h.sendError(chatID, "save the calendar", err)
		return
	}

	h.send(chatID, "✅ Calendar saved!\n\n"+calendar.Summary())
}

// parseCalendarArgs reads "<days> <start> <end> [<sat start> <sat end>] [<timezone>]".
func parseCalendarArgs(args string) (service.CalendarInput, error) {
	parts := strings.Fields(args)
	if len(parts) < 3 || len(parts) > 6 {
		return service.CalendarInput{}, errors.New("wrong number of arguments")
	}

	days, err := parseDays(parts[0])
	if err != nil {
		return service.CalendarInput{}, err
	}
	in := service.CalendarInput{WorkingDays: days, StartTime: parts[1], EndTime: parts[2]}

	rest := parts[3:]
	if len(rest) >= 2 {
		satStart, satEnd := rest[0], rest[1]
		in.SaturdayStartTime, in.SaturdayEndTime = &satStart, &satEnd
		rest = rest[2:]
	}
	switch len(rest) {
	case 0:
	case 1:
		in.Timezone = rest[0]
	default:
		return service.CalendarInput{}, errors.New("wrong number of arguments")
	}
	return in, nil
}

// parseDays accepts ISO weekdays as a list and/or ranges: "1-5", "1,3,5", "1-4,6".
func parseDays(s string) ([]int, error) {
	seen := map[int]bool{}
	var days []int

	for _, part := range strings.Split(s, ",") {
		from, to, isRange := strings.Cut(part, "-")
		if !isRange {
			to = from
		}

		start, err1 := strconv.Atoi(from)
		end, err2 := strconv.Atoi(to)
		if err1 != nil || err2 != nil || start < 1 || end > 7 || start > end {
			return nil, fmt.Errorf("invalid working days %q, use 1=Mon .. 7=Sun", s)
		}
		for d := start; d <= end; d++ {
			if !seen[d] {
				seen[d] = true
				days = append(days, d)
			}
		}
	}
	return days, nil
}
