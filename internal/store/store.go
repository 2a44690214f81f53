package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/balkashynov/todo/internal/models"
	"github.com/balkashynov/todo/internal/storage"
)

var (
	ErrNotFound        = errors.New("task not found")
	ErrEmptyText       = errors.New("text is empty")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrInvalidTheme    = errors.New("theme must be light or dark")
)

// Themes understood by the interactive views
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Store owns the task collection. Every mutation is written through to the backend
// before it returns; if the write fails the collection is rolled back.
type Store struct {
	mu      sync.Mutex
	backend storage.Storage
	tasks   []models.Task
	lastID  int64
	now     func() time.Time
	logger  *log.Logger

	version uint64 // bumped under mu by every committed mutation

	subMu   sync.Mutex
	subs    map[int]func([]models.Task)
	nextSub int

	pubMu     sync.Mutex
	published uint64
}

// Option configures a Store
type Option func(*Store)

// WithClock replaces the id clock
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets where the store reports persistence activity
func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// AddInput holds the data needed to create a new task
type AddInput struct {
	Text     string
	Priority models.Priority
	DueDate  string
	Category string
}

// DetailsInput changes task metadata; nil fields are left alone
type DetailsInput struct {
	Priority *models.Priority
	DueDate  *string
	Category *string
}

// UpdateInput changes any mix of a task's fields in a single write
type UpdateInput struct {
	Text      *string
	Completed *bool
	DetailsInput
}

// SubtaskInput changes one subtask in a single write; nil fields are left alone
type SubtaskInput struct {
	Completed *bool
	To        *int // move the subtask to this index
}

// New loads the collection from backend. A missing record is an empty list.
func New(backend storage.Storage, opts ...Option) (*Store, error) {
	s := &Store{
		backend: backend,
		now:     time.Now,
		logger:  log.New(io.Discard, "", 0),
		subs:    make(map[int]func([]models.Task)),
	}
	for _, opt := range opts {
		opt(s)
	}

	raw, ok, err := backend.Get(storage.KeyTasks)
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}
	s.tasks = []models.Task{}
	if ok && strings.TrimSpace(raw) != "" {
		if err := json.Unmarshal([]byte(raw), &s.tasks); err != nil {
			return nil, fmt.Errorf("stored tasks are corrupt: %w", err)
		}
	}
	for _, t := range s.tasks {
		if t.ID > s.lastID {
			s.lastID = t.ID
		}
	}
	s.logger.Printf("loaded %d tasks", len(s.tasks))
	return s, nil
}

// Snapshot returns a deep copy of the collection in display order
func (s *Store) Snapshot() []models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.CloneTasks(s.tasks)
}

// Len returns the number of tasks
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Get returns a copy of the task with id
func (s *Store) Get(id int64) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return models.Task{}, fmt.Errorf("task #%d: %w", id, ErrNotFound)
	}
	return s.tasks[i].Clone(), nil
}

// Add appends a new task. Blank text creates nothing.
func (s *Store) Add(in AddInput) (models.Task, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return models.Task{}, ErrEmptyText
	}

	var created models.Task
	err := s.mutate(func(tasks []models.Task) ([]models.Task, error) {
		created = models.Task{
			ID:       s.nextID(),
			Text:     text,
			Priority: in.Priority,
			DueDate:  strings.TrimSpace(in.DueDate),
			Category: strings.TrimSpace(in.Category),
		}
		return append(tasks, created), nil
	})
	if err != nil {
		return models.Task{}, err
	}
	return created.Clone(), nil
}

// Edit replaces a task's text. Blank text keeps the old value.
func (s *Store) Edit(id int64, text string) (models.Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Task{}, ErrEmptyText
	}
	return s.update(id, func(t *models.Task) error {
		t.Text = text
		return nil
	})
}

// SetDetails changes priority, due date or category
func (s *Store) SetDetails(id int64, in DetailsInput) (models.Task, error) {
	return s.update(id, func(t *models.Task) error {
		in.apply(t)
		return nil
	})
}

func (in DetailsInput) apply(t *models.Task) {
	if in.Priority != nil {
		t.Priority = *in.Priority
	}
	if in.DueDate != nil {
		t.DueDate = strings.TrimSpace(*in.DueDate)
	}
	if in.Category != nil {
		t.Category = strings.TrimSpace(*in.Category)
	}
}

// Update applies text, details and completion together. If any part is
// invalid nothing is written.
func (s *Store) Update(id int64, in UpdateInput) (models.Task, error) {
	return s.update(id, func(t *models.Task) error {
		if in.Text != nil {
			text := strings.TrimSpace(*in.Text)
			if text == "" {
				return ErrEmptyText
			}
			t.Text = text
		}
		in.DetailsInput.apply(t)
		if in.Completed != nil {
			t.Completed = *in.Completed
		}
		return nil
	})
}

// SetCompleted sets a task's completion flag
func (s *Store) SetCompleted(id int64, value bool) (models.Task, error) {
	return s.update(id, func(t *models.Task) error {
		t.Completed = value
		return nil
	})
}

// Toggle flips a task's completion flag
func (s *Store) Toggle(id int64) (models.Task, error) {
	return s.update(id, func(t *models.Task) error {
		t.Completed = !t.Completed
		return nil
	})
}

// Delete removes the task with id. Deleting an unknown id is a no-op.
func (s *Store) Delete(id int64) error {
	s.mu.Lock()
	i := s.indexOf(id)
	s.mu.Unlock()
	if i < 0 {
		return nil
	}

	return s.mutate(func(tasks []models.Task) ([]models.Task, error) {
		i := indexOf(tasks, id)
		if i < 0 {
			return tasks, nil
		}
		return append(tasks[:i], tasks[i+1:]...), nil
	})
}

// Reorder moves the task at from to position to, shifting the others
func (s *Store) Reorder(from, to int) error {
	return s.mutate(func(tasks []models.Task) ([]models.Task, error) {
		if err := checkMove(len(tasks), from, to); err != nil {
			return nil, err
		}
		return move(tasks, from, to), nil
	})
}

// AddSubtask appends a subtask to task id
func (s *Store) AddSubtask(id int64, text string) (models.Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Task{}, ErrEmptyText
	}
	return s.update(id, func(t *models.Task) error {
		t.Subtasks = append(t.Subtasks, models.Subtask{Text: text})
		return nil
	})
}

// SetSubtaskCompleted sets the completion flag of one subtask
func (s *Store) SetSubtaskCompleted(id int64, index int, value bool) (models.Task, error) {
	return s.update(id, func(t *models.Task) error {
		if index < 0 || index >= len(t.Subtasks) {
			return fmt.Errorf("subtask %d of task #%d: %w", index+1, id, ErrIndexOutOfRange)
		}
		t.Subtasks[index].Completed = value
		return nil
	})
}

// ReorderSubtask moves one subtask within its task
func (s *Store) ReorderSubtask(id int64, from, to int) (models.Task, error) {
	return s.update(id, func(t *models.Task) error {
		if err := checkMove(len(t.Subtasks), from, to); err != nil {
			return err
		}
		t.Subtasks = move(t.Subtasks, from, to)
		return nil
	})
}

// UpdateSubtask sets completion and moves one subtask in a single write.
// An out of range index or target leaves the task untouched.
func (s *Store) UpdateSubtask(id int64, index int, in SubtaskInput) (models.Task, error) {
	return s.update(id, func(t *models.Task) error {
		if index < 0 || index >= len(t.Subtasks) {
			return fmt.Errorf("subtask %d of task #%d: %w", index+1, id, ErrIndexOutOfRange)
		}
		if in.To != nil {
			if err := checkMove(len(t.Subtasks), index, *in.To); err != nil {
				return err
			}
		}
		if in.Completed != nil {
			t.Subtasks[index].Completed = *in.Completed
		}
		if in.To != nil {
			t.Subtasks = move(t.Subtasks, index, *in.To)
		}
		return nil
	})
}

// DeleteSubtask removes one subtask
func (s *Store) DeleteSubtask(id int64, index int) (models.Task, error) {
	return s.update(id, func(t *models.Task) error {
		if index < 0 || index >= len(t.Subtasks) {
			return fmt.Errorf("subtask %d of task #%d: %w", index+1, id, ErrIndexOutOfRange)
		}
		t.Subtasks = append(t.Subtasks[:index], t.Subtasks[index+1:]...)
		return nil
	})
}

// ClearAll empties the collection
func (s *Store) ClearAll() error {
	return s.mutate(func([]models.Task) ([]models.Task, error) {
		return []models.Task{}, nil
	})
}

// Import replaces the collection wholesale. Invalid input leaves it unchanged.
func (s *Store) Import(tasks []models.Task) error {
	if err := models.ValidateTasks(tasks); err != nil {
		return err
	}
	incoming := models.CloneTasks(tasks)
	return s.mutate(func([]models.Task) ([]models.Task, error) {
		for _, t := range incoming {
			if t.ID > s.lastID {
				s.lastID = t.ID
			}
		}
		return incoming, nil
	})
}

// ImportJSON decodes a JSON export and imports it
func (s *Store) ImportJSON(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read import: %w", err)
	}
	tasks, err := models.DecodeTasks(data)
	if err != nil {
		return err
	}
	return s.Import(tasks)
}

// Subscribe registers fn to receive a snapshot after every successful mutation.
// fn runs on the mutating goroutine, after the store lock is released, and may
// read the store but must not mutate it. Deliveries are serialized and never go
// backwards: a snapshot older than one already delivered is dropped.
func (s *Store) Subscribe(fn func([]models.Task)) (cancel func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

// update applies fn to a copy of one task and writes the result through
func (s *Store) update(id int64, fn func(t *models.Task) error) (models.Task, error) {
	var updated models.Task
	err := s.mutate(func(tasks []models.Task) ([]models.Task, error) {
		i := indexOf(tasks, id)
		if i < 0 {
			return nil, fmt.Errorf("task #%d: %w", id, ErrNotFound)
		}
		t := tasks[i].Clone()
		if err := fn(&t); err != nil {
			return nil, err
		}
		tasks[i] = t
		updated = t
		return tasks, nil
	})
	if err != nil {
		return models.Task{}, err
	}
	return updated.Clone(), nil
}

// mutate runs fn on a working copy, persists the result, then swaps it in.
// Nothing is persisted or published when fn fails.
func (s *Store) mutate(fn func([]models.Task) ([]models.Task, error)) error {
	s.mu.Lock()
	prevLastID := s.lastID
	next, err := fn(models.CloneTasks(s.tasks))
	if err != nil {
		s.lastID = prevLastID
		s.mu.Unlock()
		return err
	}
	if err := s.persist(next); err != nil {
		s.lastID = prevLastID
		s.mu.Unlock()
		return err
	}
	s.tasks = next
	s.version++
	version := s.version
	snapshot := models.CloneTasks(next)
	s.mu.Unlock()

	s.publish(version, snapshot)
	return nil
}

func (s *Store) persist(tasks []models.Task) error {
	b, err := json.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("failed to encode tasks: %w", err)
	}
	if err := s.backend.Set(storage.KeyTasks, string(b)); err != nil {
		s.logger.Printf("persist failed: %v", err)
		return fmt.Errorf("failed to save tasks: %w", err)
	}
	s.logger.Printf("saved %d tasks", len(tasks))
	return nil
}

// publish delivers snapshot unless a newer version already went out
func (s *Store) publish(version uint64, snapshot []models.Task) {
	s.pubMu.Lock()
	defer s.pubMu.Unlock()
	if version <= s.published {
		return
	}
	s.published = version

	s.subMu.Lock()
	fns := make([]func([]models.Task), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(models.CloneTasks(snapshot))
	}
}

// nextID derives an id from the clock, bumping past the last one handed out.
// Caller holds s.mu.
func (s *Store) nextID() int64 {
	id := s.now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}

func (s *Store) indexOf(id int64) int {
	return indexOf(s.tasks, id)
}

func indexOf(tasks []models.Task, id int64) int {
	for i, t := range tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func checkMove(n, from, to int) error {
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("move %d -> %d with %d items: %w", from+1, to+1, n, ErrIndexOutOfRange)
	}
	return nil
}

// move returns items with the element at from relocated to to
func move[T any](items []T, from, to int) []T {
	if from == to {
		return items
	}
	item := items[from]
	items = append(items[:from], items[from+1:]...)
	items = append(items[:to], append([]T{item}, items[to:]...)...)
	return items
}
