package service

import (
	"sync"
	"testing"
	"time"

	"order-sla-bot/internal/models"
	"order-sla-bot/internal/repository"
	"order-sla-bot/pkg/clock"

	"github.com/stretchr/testify/require"
)

// Week of 2026-10-19: Monday 19 .. Sunday 25.
func utc(day, hour, minute int) time.Time {
	return time.Date(2026, time.October, day, hour, minute, 0, 0, time.UTC)
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uint]*models.User
	next  uint
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uint]*models.User{}}
}

func (f *fakeUserRepo) Create(user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ChatID == user.ChatID {
			return repository.ErrAlreadyExists
		}
	}
	f.next++
	user.ID = f.next
	c := *user
	f.users[user.ID] = &c
	return nil
}

func (f *fakeUserRepo) Update(user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	c := *user
	f.users[user.ID] = &c
	return nil
}

func (f *fakeUserRepo) GetByID(id uint) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		c := *u
		return &c, nil
	}
	return nil, nil
}

func (f *fakeUserRepo) GetByChatID(chatID int64) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ChatID == chatID {
			c := *u
			return &c, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) GetByRole(role models.Role) ([]*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.User
	for id := uint(1); id <= f.next; id++ {
		if u, ok := f.users[id]; ok && u.Role == role {
			c := *u
			out = append(out, &c)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) GetAll() ([]*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.User
	for id := uint(1); id <= f.next; id++ {
		if u, ok := f.users[id]; ok {
			c := *u
			out = append(out, &c)
		}
	}
	return out, nil
}

type fakeCalendarRepo struct {
	mu     sync.Mutex
	byUser map[uint]models.Calendar
}

func newFakeCalendarRepo() *fakeCalendarRepo {
	return &fakeCalendarRepo{byUser: map[uint]models.Calendar{}}
}

func (f *fakeCalendarRepo) GetByUserID(userID uint) (*models.Calendar, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.byUser[userID]; ok {
		return &c, nil
	}
	return nil, nil
}

func (f *fakeCalendarRepo) GetDefault() (*models.Calendar, error) {
	return f.GetByUserID(0)
}

func (f *fakeCalendarRepo) Upsert(calendar *models.Calendar) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byUser[calendar.UserID] = *calendar
	return nil
}

func (f *fakeCalendarRepo) Delete(userID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byUser[userID]; !ok {
		return repository.ErrNotFound
	}
	delete(f.byUser, userID)
	return nil
}

type fakeLeaveRepo struct {
	mu     sync.Mutex
	leaves []models.Leave
}

func (f *fakeLeaveRepo) Create(leave *models.Leave) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	leave.ID = uint(len(f.leaves) + 1)
	f.leaves = append(f.leaves, *leave)
	return nil
}

func (f *fakeLeaveRepo) Update(leave *models.Leave) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.leaves {
		if f.leaves[i].ID == leave.ID {
			f.leaves[i] = *leave
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeLeaveRepo) GetByID(id uint) (*models.Leave, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.leaves {
		if l.ID == id {
			return &l, nil
		}
	}
	return nil, nil
}

func (f *fakeLeaveRepo) GetByUserID(userID uint) ([]models.Leave, error) {
	return f.filter(func(l models.Leave) bool { return l.UserID == userID }), nil
}

func (f *fakeLeaveRepo) GetPending() ([]models.Leave, error) {
	return f.filter(func(l models.Leave) bool { return l.Status == models.LeaveStatusPending }), nil
}

func (f *fakeLeaveRepo) GetApprovedOverlapping(userID uint, from, to time.Time) ([]models.Leave, error) {
	return f.filter(func(l models.Leave) bool {
		return l.UserID == userID && l.IsApproved() && !l.StartAt.After(to) && !l.EndAt.Before(from)
	}), nil
}

func (f *fakeLeaveRepo) CheckPeriodConflict(userID uint, start, end time.Time) (bool, error) {
	found := f.filter(func(l models.Leave) bool {
		return l.UserID == userID && l.Status != models.LeaveStatusRejected && l.StartAt.Before(end) && l.EndAt.After(start)
	})
	return len(found) > 0, nil
}

func (f *fakeLeaveRepo) filter(keep func(models.Leave) bool) []models.Leave {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Leave
	for _, l := range f.leaves {
		if keep(l) {
			out = append(out, l)
		}
	}
	return out
}

type fakeNonWorkingDayRepo struct {
	days []models.NonWorkingDay
}

func (f *fakeNonWorkingDayRepo) GetAll() ([]models.NonWorkingDay, error) { return f.days, nil }

func (f *fakeNonWorkingDayRepo) GetBetween(from, to time.Time) ([]models.NonWorkingDay, error) {
	var out []models.NonWorkingDay
	for _, d := range f.days {
		if !d.Date.Before(from.AddDate(0, 0, -2)) && !d.Date.After(to.AddDate(0, 0, 1)) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeNonWorkingDayRepo) BulkCreate(days []models.NonWorkingDay) error {
	f.days = append(f.days, days...)
	return nil
}

func (f *fakeNonWorkingDayRepo) DeleteAll() error {
	f.days = nil
	return nil
}

// fakeTaskRepo hands out copies so unsaved changes never leak into the store.
type fakeTaskRepo struct {
	mu      sync.Mutex
	tasks   map[uint]*models.Task
	next    uint
	updates int

	// afterGetOpen runs once the open tasks have been copied out.
	afterGetOpen func()
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: map[uint]*models.Task{}}
}

func copyTask(t *models.Task) *models.Task {
	c := *t
	c.Phases = append([]models.Phase(nil), t.Phases...)
	return &c
}

func (f *fakeTaskRepo) Create(task *models.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	task.ID = f.next
	for i := range task.Phases {
		task.Phases[i].TaskID = task.ID
	}
	f.tasks[task.ID] = copyTask(task)
	return nil
}

func (f *fakeTaskRepo) Update(task *models.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tasks[task.ID]; !ok {
		return repository.ErrNotFound
	}
	f.updates++
	f.tasks[task.ID] = copyTask(task)
	return nil
}

func (f *fakeTaskRepo) GetByID(id uint) (*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t, ok := f.tasks[id]; ok {
		return copyTask(t), nil
	}
	return nil, nil
}

func (f *fakeTaskRepo) list(keep func(*models.Task) bool) []*models.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Task
	for id := uint(1); id <= f.next; id++ {
		if t, ok := f.tasks[id]; ok && keep(t) {
			out = append(out, copyTask(t))
		}
	}
	return out
}

func (f *fakeTaskRepo) GetByAssignee(assigneeID uint, includeResolved bool) ([]*models.Task, error) {
	return f.list(func(t *models.Task) bool {
		return t.AssigneeID == assigneeID && (includeResolved || !t.Status.IsResolved())
	}), nil
}

func (f *fakeTaskRepo) GetByCreator(creatorID uint, includeResolved bool) ([]*models.Task, error) {
	return f.list(func(t *models.Task) bool {
		return t.CreatedByID == creatorID && (includeResolved || !t.Status.IsResolved())
	}), nil
}

func (f *fakeTaskRepo) GetOpen() ([]*models.Task, error) {
	open := f.list(func(t *models.Task) bool { return !t.Status.IsResolved() })
	if f.afterGetOpen != nil {
		f.afterGetOpen()
	}
	return open, nil
}

func (f *fakeTaskRepo) MarkEscalated(id uint, status models.TaskStatus, deadline, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tasks[id]
	if !ok || t.Status != status {
		return false, nil
	}
	t.EscalatedFor = &deadline
	t.EscalatedAt = &at
	return true, nil
}

type sentMessage struct {
	chatID int64
	text   string
}

type fakeSender struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (f *fakeSender) Send(chatID int64, text string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{chatID: chatID, text: text})
	return len(f.sent), nil
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

// testEnv wires every service over in-memory fakes. The team default calendar
// is Mon-Fri 09:00-18:00 UTC and the clock starts Monday 10:00.
type testEnv struct {
	clock     *clock.Manual
	users     *fakeUserRepo
	calendars *fakeCalendarRepo
	leaves    *fakeLeaveRepo
	holidays  *fakeNonWorkingDayRepo
	tasks     *fakeTaskRepo
	sender    *fakeSender

	userService     *UserService
	calendarService *CalendarService
	leaveService    *LeaveService
	schedules       *ScheduleResolver
	taskService     *TaskService
	timerService    *TimerService
	watcher         *Watcher

	sales, pm, dev *models.User
}

var testSettings = TaskSettings{
	AckMinutes:       30,
	TaskSLAMinutes:   540,
	PhaseSLAMinutes:  540,
	ChangeSLAMinutes: 180,
	WebsitePhases:    []string{"Design", "Development"},
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	e := &testEnv{
		clock:     clock.NewManual(utc(19, 10, 0)),
		users:     newFakeUserRepo(),
		calendars: newFakeCalendarRepo(),
		leaves:    &fakeLeaveRepo{},
		holidays:  &fakeNonWorkingDayRepo{},
		tasks:     newFakeTaskRepo(),
		sender:    &fakeSender{},
	}

	require.NoError(t, e.calendars.Upsert(&models.Calendar{
		UserID:      0,
		WorkingDays: "1,2,3,4,5",
		StartTime:   "09:00",
		EndTime:     "18:00",
		Timezone:    "UTC",
	}))

	e.userService = NewUserService(e.users)
	e.calendarService = NewCalendarService(e.calendars, "UTC")
	e.leaveService = NewLeaveService(e.leaves, e.clock)
	e.schedules = NewScheduleResolver(e.calendarService, e.leaves, NewNonWorkingDayService(e.holidays))
	e.taskService = NewTaskService(e.tasks, e.users, e.schedules, e.clock, testSettings)
	e.timerService = NewTimerService(e.schedules, e.clock, time.Hour)
	e.watcher = NewWatcher(e.tasks, e.userService, e.timerService, e.sender, e.clock, time.Minute, 9)

	var err error
	e.sales, err = e.userService.Register(1, "sana", "Sana", "", models.RoleFrontSales)
	require.NoError(t, err)
	e.pm, err = e.userService.Register(2, "omar", "Omar", "", models.RoleProjectManager)
	require.NoError(t, err)
	e.dev, err = e.userService.Register(3, "ayesha", "Ayesha", "", models.RoleDeveloper)
	require.NoError(t, err)

	return e
}
