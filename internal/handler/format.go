package handler

import (
	"fmt"
	"strings"
	"time"

	"order-sla-bot/internal/models"
	"order-sla-bot/internal/service"
	"order-sla-bot/pkg/telegram"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// orderTypeLabel turns "social_media_post" into "Social Media Post".
func orderTypeLabel(t models.OrderType) string {
	// A Caser keeps state, so one is made per call; renders run on several goroutines.
	return cases.Title(language.English).String(strings.ReplaceAll(string(t), "_", " "))
}

func escape(text string) string {
	return telegram.EscapeMarkdown(text)
}

func taskHeader(task *models.Task) string {
	return fmt.Sprintf("*#%d %s* (%s)", task.ID, escape(task.Title), orderTypeLabel(task.OrderType))
}

func phaseLine(task *models.Task, i int, loc *time.Location) string {
	phase := &task.Phases[i]

	marker := "▫️"
	switch {
	case phase.ReviewStatus == models.ReviewApproved:
		marker = "✅"
	case i == task.CurrentPhase:
		marker = "▶️"
	}

	line := fmt.Sprintf("%s %s", marker, escape(phase.Name))
	if phase.SLADeadline != nil {
		line += ", SLA " + phase.SLADeadline.In(loc).Format(dateTimeLayout)
	}
	if phase.ReviewStatus != models.ReviewPending && phase.ReviewStatus != models.ReviewApproved {
		line += ", " + strings.ReplaceAll(string(phase.ReviewStatus), "_", " ")
	}
	return line
}

// taskDetails renders a task with its phases and live clock.
func taskDetails(task *models.Task, timer service.TaskTimer, loc *time.Location, slaHoursPerDay float64) string {
	var b strings.Builder
	b.WriteString(taskHeader(task))
	fmt.Fprintf(&b, "\n📌 Status: %s", strings.ReplaceAll(string(task.Status), "_", " "))
	fmt.Fprintf(&b, "\n🆔 %s", task.Reference)
	fmt.Fprintf(&b, "\n📨 Assigned %s", task.AssignedAt.In(loc).Format(dateTimeLayout))
	if timer.Running {
		fmt.Fprintf(&b, "\n⏰ Due %s", timer.Deadline.At.In(loc).Format(dateTimeLayout))
	}

	if task.OrderType.IsMultiPhase() {
		b.WriteString("\n\nPhases:")
		for i := range task.Phases {
			b.WriteString("\n" + phaseLine(task, i, loc))
		}
	}

	b.WriteString("\n\n" + timer.Badge(false, slaHoursPerDay))
	return b.String()
}
