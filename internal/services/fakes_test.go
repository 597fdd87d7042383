package services

import (
	"context"
	"sync"
	"time"

	"janmitra/internal/models"
	"janmitra/internal/repositories"
)

// In-memory repository doubles used across the service tests. They mimic
// the SQL layer's contract: not-found reads return nil, nil and every read
// hands out copies so service-side mutation never leaks into the store.

type fakeTaskRepo struct {
	mu     sync.Mutex
	tasks  map[int64]*models.Task
	steps  map[int64][]models.TaskStep
	nextID int64

	// forces the next ApplyStepCompletion to fail with this error
	applyErr error
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{
		tasks: map[int64]*models.Task{},
		steps: map[int64][]models.TaskStep{},
	}
}

func copyTask(t *models.Task) *models.Task {
	cp := *t
	cp.Steps = nil
	return &cp
}

func (r *fakeTaskRepo) CreateWithSteps(ctx context.Context, task *models.Task, steps []models.TaskStep) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	task.ID = r.nextID
	for i := range steps {
		r.nextID++
		steps[i].ID = r.nextID
		steps[i].TaskID = task.ID
	}
	r.tasks[task.ID] = copyTask(task)
	r.steps[task.ID] = append([]models.TaskStep(nil), steps...)
	task.Steps = steps
	return nil
}

func (r *fakeTaskRepo) FindByID(ctx context.Context, id, officeID int64) (*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[id]
	if !ok || t.DeletedAt != nil {
		return nil, nil
	}
	if officeID != 0 && t.OfficeID != officeID {
		return nil, nil
	}
	return copyTask(t), nil
}

func (r *fakeTaskRepo) FindByTrackingCode(ctx context.Context, code string) (*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range r.tasks {
		if t.TrackingCode == code && t.DeletedAt == nil {
			return copyTask(t), nil
		}
	}
	return nil, nil
}

func (r *fakeTaskRepo) FindAll(ctx context.Context, officeID int64, filter models.TaskFilter) ([]models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.Task
	for _, t := range r.tasks {
		if t.DeletedAt != nil {
			continue
		}
		if officeID != 0 && t.OfficeID != officeID {
			continue
		}
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		if filter.Priority != nil && t.Priority != *filter.Priority {
			continue
		}
		if filter.Category != nil && t.Category != *filter.Category {
			continue
		}
		if filter.Source != nil && t.Source != *filter.Source {
			continue
		}
		if filter.AssigneeID != nil && t.AssigneeID != *filter.AssigneeID {
			continue
		}
		out = append(out, *copyTask(t))
	}
	return out, nil
}

func (r *fakeTaskRepo) FindSteps(ctx context.Context, taskID int64) ([]models.TaskStep, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.TaskStep(nil), r.steps[taskID]...), nil
}

func (r *fakeTaskRepo) Update(ctx context.Context, task *models.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if stored, ok := r.tasks[task.ID]; ok && stored.DeletedAt == nil {
		cp := copyTask(task)
		cp.Version = stored.Version
		r.tasks[task.ID] = cp
	}
	return nil
}

func (r *fakeTaskRepo) UpdateStatus(ctx context.Context, id int64, to models.TaskStatus, progress int, completedAt *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t, ok := r.tasks[id]; ok && t.DeletedAt == nil {
		t.Status = to
		t.Progress = progress
		t.CompletedAt = completedAt
		t.Version++
		t.UpdatedAt = time.Now()
	}
	return nil
}

func (r *fakeTaskRepo) ApplyStepCompletion(ctx context.Context, step *models.TaskStep, task *models.Task, expectedVersion int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.applyErr != nil {
		err := r.applyErr
		r.applyErr = nil
		return err
	}

	stored, ok := r.tasks[task.ID]
	if !ok || stored.Version != expectedVersion {
		return repositories.ErrVersionConflict
	}
	stored.Status = task.Status
	stored.Progress = task.Progress
	stored.CompletedAt = task.CompletedAt
	stored.Version = expectedVersion + 1
	stored.UpdatedAt = time.Now()

	steps := r.steps[step.TaskID]
	for i := range steps {
		if steps[i].ID == step.ID {
			steps[i] = *step
			break
		}
	}
	task.Version = expectedVersion + 1
	return nil
}

func (r *fakeTaskRepo) SoftDelete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t, ok := r.tasks[id]; ok {
		now := time.Now()
		t.DeletedAt = &now
	}
	return nil
}

func (r *fakeTaskRepo) CountByStatus(ctx context.Context, officeID int64) (map[string]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := map[string]int{}
	for _, t := range r.tasks {
		if t.DeletedAt != nil {
			continue
		}
		if officeID != 0 && t.OfficeID != officeID {
			continue
		}
		out[string(t.Status)]++
	}
	return out, nil
}

func (r *fakeTaskRepo) CountByCategory(ctx context.Context, officeID int64) (map[string]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := map[string]int{}
	for _, t := range r.tasks {
		if t.DeletedAt != nil {
			continue
		}
		if officeID != 0 && t.OfficeID != officeID {
			continue
		}
		out[t.Category]++
	}
	return out, nil
}

func (r *fakeTaskRepo) ListOverdue(ctx context.Context, officeID int64, limit int) ([]models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	var out []models.Task
	for _, t := range r.tasks {
		if t.DeletedAt != nil || t.Status == models.StatusCompleted {
			continue
		}
		if t.DueDate == nil || t.DueDate.After(now) {
			continue
		}
		if officeID != 0 && t.OfficeID != officeID {
			continue
		}
		out = append(out, *copyTask(t))
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeTaskRepo) ListAtRisk(ctx context.Context, officeID int64, warnPercent, limit int) ([]models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	var out []models.Task
	for _, t := range r.tasks {
		if t.DeletedAt != nil || t.Status == models.StatusCompleted || t.DueDate == nil {
			continue
		}
		if officeID != 0 && t.OfficeID != officeID {
			continue
		}
		window := t.DueDate.Sub(t.CreatedAt)
		elapsed := now.Sub(t.CreatedAt)
		if !t.DueDate.Before(now) && float64(elapsed)*100 < float64(window)*float64(warnPercent) {
			continue
		}
		out = append(out, *copyTask(t))
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

type fakeUserRepo struct {
	mu     sync.Mutex
	users  map[int]*models.User
	points map[int]int

	addPointsErr error
	tgChatID     int64
	tgAllow      bool
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[int]*models.User{}, points: map[int]int{}}
}

func (r *fakeUserRepo) Create(ctx context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u.ID = len(r.users) + 1
	r.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.users[id], nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) List(ctx context.Context, officeID int64, limit, offset int) ([]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.User
	for _, u := range r.users {
		if officeID != 0 && u.OfficeID != officeID {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

func (r *fakeUserRepo) Update(ctx context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) AddPoints(ctx context.Context, userID, points int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.addPointsErr != nil {
		return r.addPointsErr
	}
	r.points[userID] += points
	return nil
}

func (r *fakeUserRepo) Leaderboard(ctx context.Context, officeID int64, limit int) ([]*models.User, error) {
	return r.List(ctx, officeID, limit, 0)
}

func (r *fakeUserRepo) GetTelegramSettings(ctx context.Context, userID int) (int64, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tgChatID, r.tgAllow, nil
}

func (r *fakeUserRepo) UpdateRefresh(ctx context.Context, userID int, token string, expiresAt time.Time) error {
	return nil
}

func (r *fakeUserRepo) GetByRefreshToken(ctx context.Context, token string) (*models.User, error) {
	return nil, nil
}

func (r *fakeUserRepo) RotateRefresh(ctx context.Context, oldToken, newToken string, expiresAt time.Time) (*models.User, error) {
	return nil, nil
}

type fakeWorkflowRepo struct {
	mu        sync.Mutex
	templates []*models.WorkflowTemplate
	nextID    int64
}

func newFakeWorkflowRepo() *fakeWorkflowRepo {
	return &fakeWorkflowRepo{}
}

func (r *fakeWorkflowRepo) Store(ctx context.Context, t *models.WorkflowTemplate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	t.ID = r.nextID
	for i := range t.Steps {
		r.nextID++
		t.Steps[i].ID = r.nextID
		t.Steps[i].TemplateID = t.ID
	}
	cp := *t
	cp.Steps = append([]models.StepTemplate(nil), t.Steps...)
	r.templates = append(r.templates, &cp)
	return nil
}

func (r *fakeWorkflowRepo) FindByID(ctx context.Context, id int64) (*models.WorkflowTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.templates {
		if t.ID == id {
			cp := *t
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeWorkflowRepo) FindByScope(ctx context.Context, categoryID int64, subCategory string) (*models.WorkflowTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.templates {
		if t.CategoryID == categoryID && t.SubCategory == subCategory {
			cp := *t
			cp.Steps = append([]models.StepTemplate(nil), t.Steps...)
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeWorkflowRepo) FindByCategory(ctx context.Context, categoryID int64) ([]models.WorkflowTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.WorkflowTemplate
	for _, t := range r.templates {
		if t.CategoryID == categoryID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *fakeWorkflowRepo) FindAll(ctx context.Context) ([]models.WorkflowTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.WorkflowTemplate
	for _, t := range r.templates {
		out = append(out, *t)
	}
	return out, nil
}

type fakeCategoryRepo struct {
	mu         sync.Mutex
	categories map[int64]*models.Category
	taskCounts map[string]int
	nextID     int64
}

func newFakeCategoryRepo() *fakeCategoryRepo {
	return &fakeCategoryRepo{
		categories: map[int64]*models.Category{},
		taskCounts: map[string]int{},
	}
}

func (r *fakeCategoryRepo) Store(ctx context.Context, c *models.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	c.ID = r.nextID
	cp := *c
	r.categories[c.ID] = &cp
	return nil
}

func (r *fakeCategoryRepo) FindByID(ctx context.Context, id int64) (*models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.categories[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCategoryRepo) FindByValue(ctx context.Context, value string) (*models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.categories {
		if c.Value == value {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeCategoryRepo) FindAll(ctx context.Context) ([]models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Category
	for _, c := range r.categories {
		out = append(out, *c)
	}
	return out, nil
}

func (r *fakeCategoryRepo) Update(ctx context.Context, c *models.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *c
	r.categories[c.ID] = &cp
	return nil
}

func (r *fakeCategoryRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.categories, id)
	return nil
}

func (r *fakeCategoryRepo) CountTasksByValue(ctx context.Context, value string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.taskCounts[value], nil
}

type fakeEventRepo struct {
	mu     sync.Mutex
	events map[int64]*models.Event
	nextID int64
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{events: map[int64]*models.Event{}}
}

func copyEvent(e *models.Event) *models.Event {
	cp := *e
	cp.Approvals = append([]models.ApprovalRecord(nil), e.Approvals...)
	return &cp
}

func (r *fakeEventRepo) CreateWithApprovals(ctx context.Context, event *models.Event, approvals []models.ApprovalRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	event.ID = r.nextID
	for i := range approvals {
		r.nextID++
		approvals[i].ID = r.nextID
		approvals[i].EventID = event.ID
	}
	event.Approvals = approvals
	r.events[event.ID] = copyEvent(event)
	return nil
}

func (r *fakeEventRepo) FindByID(ctx context.Context, id, officeID int64) (*models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok {
		return nil, nil
	}
	if officeID != 0 && e.OfficeID != officeID {
		return nil, nil
	}
	return copyEvent(e), nil
}

func (r *fakeEventRepo) FindAll(ctx context.Context, officeID int64) ([]models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Event
	for _, e := range r.events {
		if officeID != 0 && e.OfficeID != officeID {
			continue
		}
		out = append(out, *copyEvent(e))
	}
	return out, nil
}

func (r *fakeEventRepo) FindApprovals(ctx context.Context, eventID int64) ([]models.ApprovalRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.events[eventID]; ok {
		return append([]models.ApprovalRecord(nil), e.Approvals...), nil
	}
	return nil, nil
}

func (r *fakeEventRepo) ApplyDecision(ctx context.Context, record *models.ApprovalRecord, event *models.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.events[event.ID]
	if !ok {
		return nil
	}
	stored.Status = event.Status
	stored.CurrentStage = event.CurrentStage
	stored.UpdatedAt = event.UpdatedAt
	for i := range stored.Approvals {
		if stored.Approvals[i].ID == record.ID {
			stored.Approvals[i] = *record
			break
		}
	}
	return nil
}

type fakeEmail struct {
	mu          sync.Mutex
	acks        []string
	resolutions []string
	failErr     error
}

func (f *fakeEmail) SendGrievanceAck(email, citizenName, trackingCode, title string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failErr != nil {
		return f.failErr
	}
	f.acks = append(f.acks, trackingCode)
	return nil
}

func (f *fakeEmail) SendResolutionNotice(email, citizenName, trackingCode string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failErr != nil {
		return f.failErr
	}
	f.resolutions = append(f.resolutions, trackingCode)
	return nil
}
