package service

import (
	"context"
	"testing"
	"time"

	"order-sla-bot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) newOrder(t *testing.T, orderType models.OrderType) *models.Task {
	t.Helper()
	task, err := e.taskService.CreateOrder(context.Background(), e.sales, OrderInput{
		Type:           orderType,
		AssigneeChatID: e.dev.ChatID,
		Title:          "Autumn campaign",
	})
	require.NoError(t, err)
	return task
}

func TestCreateOrder(t *testing.T) {
	e := newTestEnv(t)
	task := e.newOrder(t, models.OrderLogoDesign)

	assert.NotEmpty(t, task.Reference)
	assert.Equal(t, models.TaskAssigned, task.Status)
	assert.Equal(t, e.dev.ID, task.AssigneeID)
	assert.Equal(t, e.sales.ID, task.CreatedByID)
	assert.True(t, utc(19, 10, 30).Equal(task.AckDeadline), task.AckDeadline.String())
	require.Len(t, task.Phases, 1)
	assert.Equal(t, 540, task.Phases[0].SLAMinutes)

	deadline, ok := task.ActiveDeadline()
	require.True(t, ok)
	assert.Equal(t, models.DeadlineAck, deadline.Kind)
	assert.Equal(t, 30, deadline.BudgetMinutes)
}

func TestCreateOrderAckWindowSkipsClosedHours(t *testing.T) {
	e := newTestEnv(t)
	e.clock.Set(utc(23, 17, 50)) // Friday
	task := e.newOrder(t, models.OrderSocialMediaPost)

	assert.True(t, utc(26, 9, 20).Equal(task.AckDeadline), task.AckDeadline.String())
}

func TestCreateOrderWebsiteHasOnePhasePerStage(t *testing.T) {
	e := newTestEnv(t)
	task := e.newOrder(t, models.OrderWebsite)

	require.Len(t, task.Phases, 2)
	assert.Equal(t, "Design", task.Phases[0].Name)
	assert.Equal(t, "Development", task.Phases[1].Name)
	assert.Equal(t, 1, task.Phases[1].Position)
}

func TestCreateOrderRejections(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	_, err := e.taskService.CreateOrder(ctx, e.dev, OrderInput{Type: models.OrderLogoDesign, AssigneeChatID: e.dev.ChatID, Title: "x"})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = e.taskService.CreateOrder(ctx, e.sales, OrderInput{Type: models.OrderLogoDesign, AssigneeChatID: 999, Title: "x"})
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = e.taskService.CreateOrder(ctx, e.sales, OrderInput{Type: models.OrderLogoDesign, AssigneeChatID: e.pm.ChatID, Title: "x"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = e.taskService.CreateOrder(ctx, e.sales, OrderInput{Type: models.OrderLogoDesign, AssigneeChatID: e.dev.ChatID})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = e.taskService.CreateOrder(ctx, e.sales, OrderInput{Type: "mural", AssigneeChatID: e.dev.ChatID, Title: "x"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSingleDeliverableLifecycle(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	task := e.newOrder(t, models.OrderLogoDesign)

	_, err := e.taskService.Acknowledge(ctx, e.pm, task.ID)
	assert.ErrorIs(t, err, ErrForbidden, "only the assignee acknowledges")

	e.clock.Advance(10 * time.Minute)
	task, err = e.taskService.Acknowledge(ctx, e.dev, task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskAcknowledged, task.Status)
	require.NotNil(t, task.Phases[0].SLADeadline)
	// 470 minutes left on Monday, 70 on Tuesday.
	assert.True(t, utc(20, 10, 10).Equal(*task.Phases[0].SLADeadline), task.Phases[0].SLADeadline.String())

	_, err = e.taskService.Acknowledge(ctx, e.dev, task.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	task, err = e.taskService.StartWork(e.dev, task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskInProgress, task.Status)

	e.clock.Advance(2 * time.Hour)
	task, err = e.taskService.Submit(ctx, e.dev, task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskCompleted, task.Status)
	_, running := task.ActiveDeadline()
	assert.False(t, running, "no clock while awaiting review")

	_, err = e.taskService.Submit(ctx, e.dev, task.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = e.taskService.Review(ctx, e.dev, task.ID, DecisionApprove)
	assert.ErrorIs(t, err, ErrForbidden)

	task, err = e.taskService.Review(ctx, e.pm, task.ID, DecisionChanges)
	require.NoError(t, err)
	assert.Equal(t, models.TaskInProgress, task.Status)
	assert.Equal(t, models.ReviewApprovedWithChanges, task.Phases[0].ReviewStatus)
	deadline, ok := task.ActiveDeadline()
	require.True(t, ok)
	assert.Equal(t, models.DeadlineChange, deadline.Kind)
	assert.True(t, utc(19, 15, 10).Equal(deadline.At), deadline.At.String())

	task, err = e.taskService.Submit(ctx, e.dev, task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskApproved, task.Status, "approved with changes closes on resubmission")
	assert.Equal(t, models.ReviewApproved, task.Phases[0].ReviewStatus)
}

func TestWebsiteLifecycle(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	task := e.newOrder(t, models.OrderWebsite)

	task, err := e.taskService.Acknowledge(ctx, e.dev, task.ID)
	require.NoError(t, err)

	task, err = e.taskService.Submit(ctx, e.dev, task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskInProgress, task.Status, "earlier phases keep the task in progress")
	assert.True(t, task.Phases[0].AwaitingReview())

	e.clock.Advance(time.Hour)
	task, err = e.taskService.Review(ctx, e.pm, task.ID, DecisionApprove)
	require.NoError(t, err)
	assert.Equal(t, 1, task.CurrentPhase)
	phase := task.Phase()
	require.NotNil(t, phase.StartedAt)
	assert.True(t, utc(19, 11, 0).Equal(*phase.StartedAt))
	assert.True(t, utc(20, 11, 0).Equal(*phase.SLADeadline), phase.SLADeadline.String())

	task, err = e.taskService.Submit(ctx, e.dev, task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskCompleted, task.Status)

	task, err = e.taskService.Review(ctx, e.pm, task.ID, DecisionReject)
	require.NoError(t, err)
	assert.Equal(t, models.ReviewDisapprovedWithChanges, task.Phase().ReviewStatus)
	assert.Equal(t, 180, task.Phase().ChangeMinutes)

	task, err = e.taskService.Submit(ctx, e.dev, task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskCompleted, task.Status, "rejected work goes back to review")
	assert.True(t, task.Phase().AwaitingReview())

	task, err = e.taskService.Review(ctx, e.pm, task.ID, DecisionApprove)
	require.NoError(t, err)
	assert.Equal(t, models.TaskApproved, task.Status)
}

func TestHoldAndResumeMovesDeadline(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	task := e.newOrder(t, models.OrderLogoDesign)
	task, err := e.taskService.Acknowledge(ctx, e.dev, task.ID)
	require.NoError(t, err)
	require.True(t, utc(20, 10, 0).Equal(*task.Phases[0].SLADeadline))

	_, err = e.taskService.Hold(e.dev, task.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	e.clock.Set(utc(19, 12, 0))
	task, err = e.taskService.Hold(e.pm, task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskOnHold, task.Status)
	_, running := task.ActiveDeadline()
	assert.False(t, running)

	_, err = e.taskService.Hold(e.pm, task.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// Six working hours on hold; the evening does not count.
	e.clock.Set(utc(19, 21, 0))
	task, err = e.taskService.Resume(ctx, e.pm, task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskAcknowledged, task.Status)
	assert.Nil(t, task.HeldAt)
	assert.True(t, utc(20, 16, 0).Equal(*task.Phases[0].SLADeadline), task.Phases[0].SLADeadline.String())
}

func TestHoldDuringAcknowledgementWindow(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	task := e.newOrder(t, models.OrderLogoDesign)

	e.clock.Set(utc(19, 10, 10))
	_, err := e.taskService.Hold(e.pm, task.ID)
	require.NoError(t, err)

	e.clock.Set(utc(19, 10, 50))
	task, err = e.taskService.Resume(ctx, e.pm, task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskAssigned, task.Status)
	assert.True(t, utc(19, 11, 10).Equal(task.AckDeadline), task.AckDeadline.String())
}

func TestCancel(t *testing.T) {
	e := newTestEnv(t)
	task := e.newOrder(t, models.OrderSocialMediaPost)

	_, err := e.taskService.Cancel(e.dev, task.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	task, err = e.taskService.Cancel(e.sales, task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskCancelled, task.Status)

	_, err = e.taskService.Cancel(e.pm, task.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = e.taskService.Cancel(e.pm, 42)
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestListForUserIsRoleScoped(t *testing.T) {
	e := newTestEnv(t)
	e.newOrder(t, models.OrderLogoDesign)
	e.newOrder(t, models.OrderWebsite)

	other, err := e.userService.Register(4, "", "Bilal", "", models.RoleDeveloper)
	require.NoError(t, err)
	_, err = e.taskService.CreateOrder(context.Background(), e.pm, OrderInput{
		Type: models.OrderLogoDesign, AssigneeChatID: other.ChatID, Title: "Badge",
	})
	require.NoError(t, err)

	devTasks, err := e.taskService.ListForUser(e.dev)
	require.NoError(t, err)
	assert.Len(t, devTasks, 2)

	salesTasks, err := e.taskService.ListForUser(e.sales)
	require.NoError(t, err)
	assert.Len(t, salesTasks, 2)

	pmTasks, err := e.taskService.ListForUser(e.pm)
	require.NoError(t, err)
	assert.Len(t, pmTasks, 3)

	_, err = e.taskService.Get(other, devTasks[0].ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestParseReviewDecision(t *testing.T) {
	d, ok := ParseReviewDecision("changes")
	assert.True(t, ok)
	assert.Equal(t, DecisionChanges, d)

	_, ok = ParseReviewDecision("maybe")
	assert.False(t, ok)
}
