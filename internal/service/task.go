package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"order-sla-bot/internal/logging"
	"order-sla-bot/internal/models"
	"order-sla-bot/internal/repository"
	"order-sla-bot/pkg/clock"
	"order-sla-bot/pkg/workhours"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// leaveHorizon bounds how far past the start leave is read when placing a deadline.
const leaveHorizon = 90 * 24 * time.Hour

// TaskSettings are the working-time budgets new tasks are created with.
type TaskSettings struct {
	AckMinutes       int
	TaskSLAMinutes   int
	PhaseSLAMinutes  int
	ChangeSLAMinutes int
	WebsitePhases    []string
}

type OrderInput struct {
	Type           models.OrderType `validate:"required,oneof=social_media_post logo_design website"`
	AssigneeChatID int64            `validate:"required"`
	Title          string           `validate:"required,max=200"`
}

type ReviewDecision string

const (
	DecisionApprove ReviewDecision = "approve"
	DecisionChanges ReviewDecision = "changes"
	DecisionReject  ReviewDecision = "reject"
)

func ParseReviewDecision(s string) (ReviewDecision, bool) {
	switch ReviewDecision(s) {
	case DecisionApprove, DecisionChanges, DecisionReject:
		return ReviewDecision(s), true
	}
	return "", false
}

type TaskService struct {
	tasks     repository.TaskRepository
	users     repository.UserRepository
	schedules *ScheduleResolver
	clock     clock.Clock
	settings  TaskSettings
	logger    *logrus.Logger
}

func NewTaskService(
	tasks repository.TaskRepository,
	users repository.UserRepository,
	schedules *ScheduleResolver,
	clk clock.Clock,
	settings TaskSettings,
) *TaskService {
	return &TaskService{
		tasks:     tasks,
		users:     users,
		schedules: schedules,
		clock:     clk,
		settings:  settings,
		logger:    logging.New(),
	}
}

// CreateOrder opens a task for a developer and starts the acknowledgement window.
func (s *TaskService) CreateOrder(ctx context.Context, actor *models.User, in OrderInput) (*models.Task, error) {
	if !actor.CanCreateOrders() {
		return nil, ErrForbidden
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	assignee, err := s.users.GetByChatID(in.AssigneeChatID)
	if err != nil {
		return nil, fmt.Errorf("failed to get assignee: %w", err)
	}
	if assignee == nil {
		return nil, ErrUserNotFound
	}
	if assignee.Role != models.RoleDeveloper {
		return nil, fmt.Errorf("%w: orders are assigned to developers", ErrInvalidInput)
	}

	now := s.clock.Now()
	ackDeadline, err := s.placeDeadline(ctx, assignee.ID, now, s.settings.AckMinutes)
	if err != nil {
		return nil, err
	}

	task := &models.Task{
		Reference:   uuid.NewString(),
		OrderType:   in.Type,
		Title:       in.Title,
		CreatedByID: actor.ID,
		AssigneeID:  assignee.ID,
		Status:      models.TaskAssigned,
		AssignedAt:  now,
		AckMinutes:  s.settings.AckMinutes,
		AckDeadline: ackDeadline,
		Phases:      s.phasesFor(in.Type),
	}

	if err := s.tasks.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"task_id":      task.ID,
		"reference":    task.Reference,
		"order_type":   task.OrderType,
		"assignee_id":  assignee.ID,
		"ack_deadline": ackDeadline,
	}).Info("Order created")

	return task, nil
}

func (s *TaskService) phasesFor(orderType models.OrderType) []models.Phase {
	if !orderType.IsMultiPhase() {
		return []models.Phase{{
			Position:     0,
			Name:         "Delivery",
			ReviewStatus: models.ReviewPending,
			SLAMinutes:   s.settings.TaskSLAMinutes,
		}}
	}

	phases := make([]models.Phase, 0, len(s.settings.WebsitePhases))
	for i, name := range s.settings.WebsitePhases {
		phases = append(phases, models.Phase{
			Position:     i,
			Name:         name,
			ReviewStatus: models.ReviewPending,
			SLAMinutes:   s.settings.PhaseSLAMinutes,
		})
	}
	return phases
}

// Acknowledge stops the acknowledgement clock and starts the first phase's SLA.
func (s *TaskService) Acknowledge(ctx context.Context, actor *models.User, taskID uint) (*models.Task, error) {
	task, err := s.load(taskID)
	if err != nil {
		return nil, err
	}
	if task.AssigneeID != actor.ID {
		return nil, ErrForbidden
	}
	if task.Status != models.TaskAssigned {
		return nil, ErrInvalidTransition
	}

	now := s.clock.Now()
	task.AcknowledgedAt = &now
	task.Status = models.TaskAcknowledged
	task.CurrentPhase = 0
	if err := s.startPhase(ctx, task, now); err != nil {
		return nil, err
	}

	return task, s.save(task, "Task acknowledged")
}

// StartWork marks an acknowledged task as being worked on. The SLA clock is already running.
func (s *TaskService) StartWork(actor *models.User, taskID uint) (*models.Task, error) {
	task, err := s.load(taskID)
	if err != nil {
		return nil, err
	}
	if task.AssigneeID != actor.ID {
		return nil, ErrForbidden
	}
	if task.Status != models.TaskAcknowledged {
		return nil, ErrInvalidTransition
	}

	task.Status = models.TaskInProgress
	return task, s.save(task, "Work started")
}

// Submit hands the current phase to the reviewers. A phase approved with changes
// is approved on resubmission and the next phase starts immediately.
func (s *TaskService) Submit(ctx context.Context, actor *models.User, taskID uint) (*models.Task, error) {
	task, err := s.load(taskID)
	if err != nil {
		return nil, err
	}
	if task.AssigneeID != actor.ID {
		return nil, ErrForbidden
	}
	if task.Status != models.TaskAcknowledged && task.Status != models.TaskInProgress {
		return nil, ErrInvalidTransition
	}

	phase := task.Phase()
	if phase == nil || !phase.IsStarted() || phase.AwaitingReview() || phase.ReviewStatus == models.ReviewApproved {
		return nil, ErrInvalidTransition
	}

	now := s.clock.Now()
	phase.SubmittedAt = &now

	if phase.ReviewStatus == models.ReviewApprovedWithChanges {
		phase.ReviewStatus = models.ReviewApproved
		phase.ReviewedAt = &now
		if err := s.advance(ctx, task, now); err != nil {
			return nil, err
		}
		return task, s.save(task, "Changes submitted, phase approved")
	}

	phase.ReviewStatus = models.ReviewPending
	if task.IsLastPhase() {
		task.Status = models.TaskCompleted
	} else {
		task.Status = models.TaskInProgress
	}
	return task, s.save(task, "Phase submitted for review")
}

// Review records a reviewer's decision on the submitted phase.
func (s *TaskService) Review(ctx context.Context, actor *models.User, taskID uint, decision ReviewDecision) (*models.Task, error) {
	if !actor.CanManage() {
		return nil, ErrForbidden
	}

	task, err := s.load(taskID)
	if err != nil {
		return nil, err
	}
	if task.Status == models.TaskOnHold || task.Status.IsResolved() {
		return nil, ErrInvalidTransition
	}
	phase := task.Phase()
	if phase == nil || !phase.AwaitingReview() {
		return nil, ErrInvalidTransition
	}

	now := s.clock.Now()
	phase.ReviewedAt = &now

	switch decision {
	case DecisionApprove:
		phase.ReviewStatus = models.ReviewApproved
		if err := s.advance(ctx, task, now); err != nil {
			return nil, err
		}

	case DecisionChanges, DecisionReject:
		phase.ReviewStatus = models.ReviewApprovedWithChanges
		if decision == DecisionReject {
			phase.ReviewStatus = models.ReviewDisapprovedWithChanges
		}
		changeDeadline, err := s.placeDeadline(ctx, task.AssigneeID, now, s.settings.ChangeSLAMinutes)
		if err != nil {
			return nil, err
		}
		phase.ChangeMinutes = s.settings.ChangeSLAMinutes
		phase.ChangeDeadline = &changeDeadline
		task.Status = models.TaskInProgress

	default:
		return nil, fmt.Errorf("%w: unknown decision %q", ErrInvalidInput, decision)
	}

	return task, s.save(task, "Phase reviewed")
}

// advance closes the current phase: the task is approved after the last one,
// otherwise the next phase starts with a fresh SLA.
func (s *TaskService) advance(ctx context.Context, task *models.Task, now time.Time) error {
	if task.IsLastPhase() {
		task.Status = models.TaskApproved
		return nil
	}

	task.CurrentPhase++
	task.Status = models.TaskInProgress
	return s.startPhase(ctx, task, now)
}

func (s *TaskService) startPhase(ctx context.Context, task *models.Task, now time.Time) error {
	phase := task.Phase()
	if phase == nil {
		return fmt.Errorf("task %d has no phase %d", task.ID, task.CurrentPhase)
	}

	deadline, err := s.placeDeadline(ctx, task.AssigneeID, now, phase.SLAMinutes)
	if err != nil {
		return err
	}
	phase.StartedAt = &now
	phase.SLADeadline = &deadline
	return nil
}

// Hold freezes the task. The time spent on hold is added back on Resume.
func (s *TaskService) Hold(actor *models.User, taskID uint) (*models.Task, error) {
	if !actor.CanManage() {
		return nil, ErrForbidden
	}

	task, err := s.load(taskID)
	if err != nil {
		return nil, err
	}
	if !task.Status.IsActive() {
		return nil, ErrInvalidTransition
	}

	now := s.clock.Now()
	task.HeldStatus = task.Status
	task.HeldAt = &now
	task.Status = models.TaskOnHold
	return task, s.save(task, "Task put on hold")
}

// Resume restores the held state and moves the active deadline forward by the
// working time that passed while the task was on hold.
func (s *TaskService) Resume(ctx context.Context, actor *models.User, taskID uint) (*models.Task, error) {
	if !actor.CanManage() {
		return nil, ErrForbidden
	}

	task, err := s.load(taskID)
	if err != nil {
		return nil, err
	}
	if task.Status != models.TaskOnHold || task.HeldAt == nil {
		return nil, ErrInvalidTransition
	}

	now := s.clock.Now()
	heldAt := *task.HeldAt

	task.Status = task.HeldStatus
	if task.Status == "" {
		task.Status = models.TaskInProgress
	}
	task.HeldStatus = ""
	task.HeldAt = nil

	deadline, ok := task.ActiveDeadline()
	if ok {
		from := heldAt
		if deadline.At.Before(from) {
			from = deadline.At
		}
		schedule, err := s.schedules.Resolve(ctx, task.AssigneeID, from, now.Add(leaveHorizon))
		if err != nil {
			return nil, err
		}
		paused := schedule.WorkingMinutes(heldAt, now)
		shifted, err := schedule.AddWorkingMinutes(deadline.At, paused)
		if errors.Is(err, workhours.ErrNoWorkingTime) {
			shifted = deadline.At.Add(time.Duration(paused) * time.Minute)
		} else if err != nil {
			return nil, err
		}

		switch deadline.Kind {
		case models.DeadlineAck:
			task.AckDeadline = shifted
		case models.DeadlineSLA:
			task.Phase().SLADeadline = &shifted
		case models.DeadlineChange:
			task.Phase().ChangeDeadline = &shifted
		}

		s.logger.WithFields(logrus.Fields{
			"task_id":        task.ID,
			"kind":           deadline.Kind,
			"paused_minutes": paused,
			"deadline":       shifted,
		}).Debug("Deadline moved after hold")
	}

	return task, s.save(task, "Task resumed")
}

// Cancel closes the task for good. Managers and the order's creator may cancel.
func (s *TaskService) Cancel(actor *models.User, taskID uint) (*models.Task, error) {
	task, err := s.load(taskID)
	if err != nil {
		return nil, err
	}
	if !actor.CanManage() && task.CreatedByID != actor.ID {
		return nil, ErrForbidden
	}
	if task.Status.IsResolved() {
		return nil, ErrInvalidTransition
	}

	task.Status = models.TaskCancelled
	task.HeldStatus = ""
	task.HeldAt = nil
	return task, s.save(task, "Task cancelled")
}

// Get returns a task the actor is involved in.
func (s *TaskService) Get(actor *models.User, taskID uint) (*models.Task, error) {
	task, err := s.load(taskID)
	if err != nil {
		return nil, err
	}
	if !actor.CanManage() && task.AssigneeID != actor.ID && task.CreatedByID != actor.ID {
		return nil, ErrForbidden
	}
	return task, nil
}

// ListForUser returns the open tasks on the actor's dashboard: developers see their
// assignments, sales their orders, managers everything.
func (s *TaskService) ListForUser(actor *models.User) ([]*models.Task, error) {
	switch actor.Role {
	case models.RoleDeveloper:
		return s.tasks.GetByAssignee(actor.ID, false)
	case models.RoleFrontSales:
		return s.tasks.GetByCreator(actor.ID, false)
	default:
		return s.tasks.GetOpen()
	}
}

func (s *TaskService) load(taskID uint) (*models.Task, error) {
	task, err := s.tasks.GetByID(taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	if task == nil {
		return nil, ErrTaskNotFound
	}
	return task, nil
}

func (s *TaskService) save(task *models.Task, msg string) error {
	if err := s.tasks.Update(task); err != nil {
		s.logger.WithError(err).WithField("task_id", task.ID).Error("Failed to save task")
		return fmt.Errorf("failed to save task: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"task_id": task.ID,
		"status":  task.Status,
		"phase":   task.CurrentPhase,
	}).Info(msg)
	return nil
}

// placeDeadline puts a deadline minutes of the user's working time after start.
// A calendar without any working time falls back to the wall clock.
func (s *TaskService) placeDeadline(ctx context.Context, userID uint, start time.Time, minutes int) (time.Time, error) {
	schedule, err := s.schedules.Resolve(ctx, userID, start, start.Add(leaveHorizon))
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to resolve schedule: %w", err)
	}

	deadline, err := schedule.AddWorkingMinutes(start, minutes)
	if errors.Is(err, workhours.ErrNoWorkingTime) {
		s.logger.WithField("user_id", userID).Warn("Calendar has no working time, deadline placed on the wall clock")
		return start.Add(time.Duration(minutes) * time.Minute), nil
	}
	return deadline, err
}
