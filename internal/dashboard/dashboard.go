package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/yukikurage/taskboard/internal/client"
	"github.com/yukikurage/taskboard/internal/dto"
	"github.com/yukikurage/taskboard/internal/models"
	"github.com/yukikurage/taskboard/internal/repository"
)

// API is the subset of the REST client the dashboard drives.
type API interface {
	ListTasks(ctx context.Context, params client.ListParams) ([]dto.TaskDTO, error)
	Stats(ctx context.Context) (*dto.TaskStats, error)
	CreateTask(ctx context.Context, in client.TaskInput) (*dto.TaskDTO, error)
	UpdateTask(ctx context.Context, id uint64, in client.TaskInput) (*dto.TaskDTO, error)
	DeleteTask(ctx context.Context, id uint64) error
}

// Notifier shows short success and failure messages.
type Notifier interface {
	Success(message string)
	Error(message string)
}

// Snapshot is a copy of the dashboard state for rendering.
type Snapshot struct {
	Phase  Phase
	Filter FilterState
	Tasks  []dto.TaskDTO
	Total  int
	Stats  *dto.TaskStats
	User   *dto.UserDTO
}

// Dashboard owns the task list and applies the optimistic edit protocol:
// local state is patched first, then a full refetch replaces it whether the
// request succeeded or not.
type Dashboard struct {
	mu       sync.Mutex
	api      API
	store    *Store
	notify   Notifier
	logger   *slog.Logger
	now      func() time.Time
	pageSize int
	onChange func(Snapshot)

	phase   Phase
	loaded  bool
	tasks   []dto.TaskDTO
	visible []dto.TaskDTO
	stats   *dto.TaskStats
	cache   StatsCache
}

type Option func(*Dashboard)

func WithClock(now func() time.Time) Option {
	return func(d *Dashboard) { d.now = now }
}

func WithLogger(logger *slog.Logger) Option {
	return func(d *Dashboard) { d.logger = logger }
}

// WithPageSize sets the list limit sent to the server. Zero leaves it to the
// server default.
func WithPageSize(n int) Option {
	return func(d *Dashboard) { d.pageSize = n }
}

// OnChange registers fn to receive a snapshot after every state change.
func OnChange(fn func(Snapshot)) Option {
	return func(d *Dashboard) { d.onChange = fn }
}

func New(api API, store *Store, notify Notifier, opts ...Option) *Dashboard {
	d := &Dashboard{
		api:    api,
		store:  store,
		notify: notify,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Dashboard) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()

	snap := Snapshot{
		Phase:  d.phase,
		Filter: d.store.Filter(),
		Tasks:  append([]dto.TaskDTO(nil), d.visible...),
		Total:  len(d.tasks),
		User:   d.store.User(),
	}
	if d.stats != nil {
		stats := *d.stats
		snap.Stats = &stats
	}
	return snap
}

func (d *Dashboard) emit() {
	if d.onChange != nil {
		d.onChange(d.Snapshot())
	}
}

func (d *Dashboard) rerenderLocked() {
	d.visible = Render(d.tasks, d.store.Filter())
}

// Refresh loads stats (through the cache) and the task list. A call made
// while a refresh is in flight returns immediately.
func (d *Dashboard) Refresh(ctx context.Context) error {
	if !d.store.LoggedIn() {
		return ErrNotLoggedIn
	}

	d.mu.Lock()
	if d.phase == PhaseLoading {
		d.mu.Unlock()
		return nil
	}
	d.phase = PhaseLoading
	filter := d.store.Filter()
	started := d.now()
	stats, cached := d.cache.Get(started)
	d.mu.Unlock()
	d.emit()

	tasks, stats, err := d.fetch(ctx, filter, stats, cached, started)

	d.mu.Lock()
	if err != nil {
		if d.loaded {
			d.phase = PhaseReady
		} else {
			d.phase = PhaseIdle
		}
		d.mu.Unlock()
		d.emit()
		return d.syncFailed(err)
	}
	d.tasks = tasks
	d.stats = stats
	d.loaded = true
	d.phase = PhaseReady
	d.rerenderLocked()
	d.mu.Unlock()
	d.emit()
	return nil
}

func (d *Dashboard) fetch(ctx context.Context, filter FilterState, stats *dto.TaskStats, cached bool, started time.Time) ([]dto.TaskDTO, *dto.TaskStats, error) {
	if !cached {
		fresh, err := d.api.Stats(ctx)
		if err != nil {
			return nil, nil, err
		}
		d.mu.Lock()
		d.cache.Put(fresh, started)
		d.mu.Unlock()
		stats = fresh
	}

	params := client.ListParams{Limit: d.pageSize}
	if filter.Priority != FilterAll {
		params.Priority = filter.Priority
	}
	tasks, err := d.api.ListTasks(ctx, params)
	if err != nil {
		return nil, nil, err
	}
	return tasks, stats, nil
}

func (d *Dashboard) syncFailed(err error) error {
	if errors.Is(err, client.ErrUnauthorized) {
		d.notify.Error(err.Error())
		return fmt.Errorf("%w: %w", ErrNotLoggedIn, err)
	}
	d.logger.Warn("dashboard sync failed", "error", err)
	d.notify.Error(syncFailedMsg)
	return err
}

// SubmitEdit patches the local copy of the task, sends the update and then
// refetches. The refetch also runs when the update fails, which reverts the
// local patch.
func (d *Dashboard) SubmitEdit(ctx context.Context, id uint64, in client.TaskInput) error {
	if !d.store.LoggedIn() {
		return ErrNotLoggedIn
	}

	d.mu.Lock()
	if i := d.indexLocked(id); i >= 0 {
		d.tasks[i] = applyInput(d.tasks[i], in)
		d.rerenderLocked()
	}
	d.mu.Unlock()
	d.emit()

	_, err := d.api.UpdateTask(ctx, id, in)
	if err != nil {
		d.notify.Error(err.Error())
	} else {
		d.notify.Success("Changes saved")
	}

	d.resync(ctx)
	return err
}

// Create sends a new task and refetches. There is no optimistic step.
func (d *Dashboard) Create(ctx context.Context, in client.TaskInput) (*dto.TaskDTO, error) {
	if !d.store.LoggedIn() {
		return nil, ErrNotLoggedIn
	}

	task, err := d.api.CreateTask(ctx, in)
	if err != nil {
		d.notify.Error(err.Error())
	} else {
		d.notify.Success("Task created")
	}

	d.resync(ctx)
	return task, err
}

// Delete removes the task locally, sends the delete and refetches.
func (d *Dashboard) Delete(ctx context.Context, id uint64) error {
	if !d.store.LoggedIn() {
		return ErrNotLoggedIn
	}

	d.mu.Lock()
	if i := d.indexLocked(id); i >= 0 {
		d.tasks = append(d.tasks[:i:i], d.tasks[i+1:]...)
		d.rerenderLocked()
	}
	d.mu.Unlock()
	d.emit()

	err := d.api.DeleteTask(ctx, id)
	if err != nil {
		d.notify.Error("Failed to delete task")
	} else {
		d.notify.Success("Task removed")
	}

	d.resync(ctx)
	return err
}

// resync refetches after a mutation. Its own failure has already been
// reported through the notifier.
func (d *Dashboard) resync(ctx context.Context) {
	if err := d.Refresh(ctx); err != nil && !errors.Is(err, ErrNotLoggedIn) {
		d.logger.Debug("refetch after mutation failed", "error", err)
	}
}

func (d *Dashboard) indexLocked(id uint64) int {
	for i, t := range d.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (d *Dashboard) SetStatus(status string) error {
	if !validStatusFilter(status) {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	return d.updateFilter(func(f *FilterState) { f.Status = status })
}

func (d *Dashboard) SetSearch(query string) error {
	return d.updateFilter(func(f *FilterState) { f.Search = normalizeSearch(query) })
}

func (d *Dashboard) SetSort(field string) error {
	if !repository.IsSortableField(field) {
		return fmt.Errorf("%w: %q", ErrInvalidSort, field)
	}
	return d.updateFilter(func(f *FilterState) { f.SortBy = field })
}

func (d *Dashboard) ToggleOrder() error {
	return d.updateFilter(func(f *FilterState) {
		if f.Order == repository.OrderAsc {
			f.Order = repository.OrderDesc
		} else {
			f.Order = repository.OrderAsc
		}
	})
}

// SetOrder accepts ASC or DESC in any case.
func (d *Dashboard) SetOrder(order string) error {
	var normalized string
	switch {
	case strings.EqualFold(order, repository.OrderAsc):
		normalized = repository.OrderAsc
	case strings.EqualFold(order, repository.OrderDesc):
		normalized = repository.OrderDesc
	default:
		return fmt.Errorf("%w: order %q", ErrInvalidSort, order)
	}
	return d.updateFilter(func(f *FilterState) { f.Order = normalized })
}

// SetPriority stores the priority preference. It is applied by the server,
// so it takes effect on the next Refresh.
func (d *Dashboard) SetPriority(priority string) error {
	if !validPriorityFilter(priority) {
		return fmt.Errorf("%w: %q", ErrInvalidPriority, priority)
	}
	return d.updateFilter(func(f *FilterState) { f.Priority = priority })
}

func (d *Dashboard) updateFilter(change func(*FilterState)) error {
	d.mu.Lock()
	f := d.store.Filter()
	change(&f)
	err := d.store.SetFilter(f)
	d.rerenderLocked()
	d.mu.Unlock()
	d.emit()
	return err
}

// Logout forgets the credentials and everything loaded with them.
func (d *Dashboard) Logout() error {
	d.mu.Lock()
	d.tasks = nil
	d.visible = nil
	d.stats = nil
	d.cache = StatsCache{}
	d.loaded = false
	d.phase = PhaseIdle
	d.mu.Unlock()
	return d.store.ClearAuth()
}

func applyInput(t dto.TaskDTO, in client.TaskInput) dto.TaskDTO {
	if in.Title != nil {
		t.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		t.Description = strings.TrimSpace(*in.Description)
	}
	if in.Status != nil {
		t.Status = models.TaskStatus(*in.Status)
	}
	if in.Priority != nil {
		t.Priority = models.TaskPriority(*in.Priority)
	}
	switch {
	case in.ClearDueDate:
		t.DueDate = nil
	case in.DueDate != nil:
		if due, err := time.Parse(time.DateOnly, *in.DueDate); err == nil {
			t.DueDate = &due
		}
	}
	return t
}
