package handler

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (h *Handler) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	command := message.Command()
	args := message.CommandArguments()

	switch command {
	case "start":
		h.sendStartMessage(message)
	case "help":
		h.sendHelpMessage(message)

	// Profile
	case "register":
		h.register(message, args)
	case "profile", "myprofile":
		h.showProfile(message)
	case "setrole":
		h.setRole(message, args)

	// Calendars
	case "calendar":
		h.showCalendar(message)
	case "setcalendar":
		h.setCalendar(message, args, false)
	case "setdefaultcalendar":
		h.setCalendar(message, args, true)

	// Leave
	case "leave":
		h.requestLeave(message, args)
	case "approveleave":
		h.reviewLeave(message, args, true)
	case "rejectleave":
		h.reviewLeave(message, args, false)
	case "myleaves":
		h.showMyLeaves(message)
	case "pendingleaves":
		h.showPendingLeaves(message)
	case "holidays":
		h.showHolidays(message)

	// Orders
	case "neworder":
		h.newOrder(ctx, message, args)
	case "ack":
		h.withTaskID(message, args, func(id uint) { h.acknowledge(ctx, message.Chat.ID, id) })
	case "startwork":
		h.withTaskID(message, args, func(id uint) { h.startWork(message.Chat.ID, id) })
	case "submit":
		h.withTaskID(message, args, func(id uint) { h.submit(ctx, message.Chat.ID, id) })
	case "review":
		h.reviewCommand(ctx, message, args)
	case "hold":
		h.withTaskID(message, args, func(id uint) { h.hold(message.Chat.ID, id) })
	case "resume":
		h.withTaskID(message, args, func(id uint) { h.resume(ctx, message.Chat.ID, id) })
	case "cancel":
		h.withTaskID(message, args, func(id uint) { h.cancel(message.Chat.ID, id) })
	case "task":
		h.withTaskID(message, args, func(id uint) { h.showTask(ctx, message.Chat.ID, id) })
	case "dashboard":
		h.showDashboard(ctx, message)

	// Live countdowns
	case "watch":
		h.withTaskID(message, args, func(id uint) { h.watch(ctx, message.Chat.ID, id) })
	case "unwatch":
		h.withTaskID(message, args, func(id uint) { h.unwatch(message.Chat.ID, id) })

	default:
		h.sendUnknownCommand(message)
	}
}

func (h *Handler) withTaskID(message *tgbotapi.Message, args string, fn func(id uint)) {
	id, err := parseID(args)
	if err != nil {
		h.send(message.Chat.ID, fmt.Sprintf("❌ Usage: /%s <task id>", message.Command()))
		return
	}
	fn(id)
}

func (h *Handler) sendUnknownCommand(message *tgbotapi.Message) {
	h.send(message.Chat.ID, "❌ Unknown command. Use /help for the list of commands.")
}

func (h *Handler) sendStartMessage(message *tgbotapi.Message) {
	text := `👋 Order SLA bot

Every order gets a deadline measured in working time: only the
assignee's shift hours count, and leave or public holidays pause the clock.

Register first:
/register dev - developer
/register sales - front sales
/register pm - project manager

Then see /help for everything else.`

	h.send(message.Chat.ID, text)
}

func (h *Handler) sendHelpMessage(message *tgbotapi.Message) {
	text := `📋 Commands:

👤 Profile:
/register <dev|sales|pm> - Register or change your role
/profile - Show your profile
/setrole <chat id> <role> - Change a role (admin)

📅 Working calendar:
/calendar - Show the calendar that applies to you
/setcalendar <days> <start> <end> [<sat start> <sat end>] [<timezone>]
    Example: /setcalendar 1-5 09:00 18:00 Asia/Karachi
    Example: /setcalendar 1-6 09:00 18:00 10:00 14:00 Europe/Berlin
/setdefaultcalendar ... - Same, for the whole team (PM)

🏖 Leave:
/leave <dd.mm.yyyy> [hh:mm] <dd.mm.yyyy> [hh:mm] [reason]
    Example: /leave 21.10.2026 21.10.2026 dentist
/myleaves - Your leave requests
/pendingleaves - Requests waiting for approval (PM)
/approveleave <id>, /rejectleave <id> - Decide a request (PM)
/holidays - Upcoming public holidays

📦 Orders:
/neworder <post|logo|website> <developer chat id> <title>
/ack <id> - Acknowledge an assigned order
/startwork <id> - Start working on it
/submit <id> - Submit the current phase for review
/review <id> <approve|changes|reject> - Review a submission (PM)
/hold <id>, /resume <id> - Pause and resume the clock (PM)
/cancel <id> - Cancel an order
/task <id> - Order details
/dashboard - Your open orders with their clocks

⏱ Live countdown:
/watch <id> - Keep a ticking countdown message
/unwatch <id> - Stop it`

	h.send(message.Chat.ID, text)
}
