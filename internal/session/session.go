// Package session binds an authenticated user to the habit services.
package session

import (
	goerrors "errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/julianstephens/habitual/internal/catalog"
	"github.com/julianstephens/habitual/internal/errors"
	"github.com/julianstephens/habitual/internal/identity"
	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/progress"
	"github.com/julianstephens/habitual/internal/storage"
	"github.com/julianstephens/habitual/internal/transfer"
)

type Manager struct {
	store      storage.Provider
	identity   *identity.Manager
	engineOpts []progress.Option
	backup     transfer.Backuper
}

type Option func(*Manager)

// WithEngineOptions passes clock and location settings to bound engines.
func WithEngineOptions(opts ...progress.Option) Option {
	return func(m *Manager) { m.engineOpts = append(m.engineOpts, opts...) }
}

// WithBackup makes imports snapshot the database first.
func WithBackup(b transfer.Backuper) Option {
	return func(m *Manager) { m.backup = b }
}

func NewManager(store storage.Provider, id *identity.Manager, opts ...Option) *Manager {
	m := &Manager{store: store, identity: id}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) Identity() *identity.Manager { return m.identity }

// Authenticate checks credentials and returns the user's id.
func (m *Manager) Authenticate(username, password string) (int64, error) {
	u, err := m.identity.Login(username, password)
	if err != nil {
		return 0, err
	}
	return u.ID, nil
}

// Bind starts a session for userID. Constructing the engine reconciles the
// user's progress with today's date.
func (m *Manager) Bind(userID int64) (*Handle, error) {
	engine, err := progress.New(m.store, userID, m.engineOpts...)
	if err != nil {
		return nil, err
	}
	cat := catalog.New(m.store, engine)

	var transferOpts []transfer.Option
	if m.backup != nil {
		transferOpts = append(transferOpts, transfer.WithBackup(m.backup))
	}
	return &Handle{
		engine:   engine,
		catalog:  cat,
		transfer: transfer.New(m.store, cat, transferOpts...),
	}, nil
}

// Close ends the user's session: today becomes the last login and any
// remembered session token is dropped.
func (m *Manager) Close(userID int64) error {
	if err := m.identity.UpdateLastLogin(userID); err != nil {
		return fmt.Errorf("failed to record last login: %w", err)
	}
	if err := m.store.SetSessionToken(userID, ""); err != nil {
		return fmt.Errorf("failed to clear session token: %w", err)
	}
	logger.Info("Closed session", "user_id", userID)
	return nil
}

// IssueToken remembers the session under a new random token.
func (m *Manager) IssueToken(userID int64) (string, error) {
	token := uuid.NewString()
	if err := m.store.SetSessionToken(userID, token); err != nil {
		return "", err
	}
	return token, nil
}

// Resume finds the user a session token was issued to.
func (m *Manager) Resume(token string) (int64, error) {
	u, err := m.store.GetUserBySessionToken(token)
	if err != nil {
		if goerrors.Is(err, errors.ErrNotFound) {
			return 0, fmt.Errorf("session expired: %w", errors.ErrInvalidCredentials)
		}
		return 0, err
	}
	return u.ID, nil
}

// Handle exposes a bound user's habits by name.
type Handle struct {
	engine   *progress.Engine
	catalog  *catalog.Catalog
	transfer *transfer.Adapter
}

func (h *Handle) UserID() int64 { return h.engine.UserID() }

func (h *Handle) Engine() *progress.Engine { return h.engine }

func (h *Handle) ListHabits(category string) ([]models.HabitStatus, error) {
	return h.catalog.ListHabits(category)
}

func (h *Handle) AddHabit(name, category string, frequency int) (models.Habit, error) {
	return h.catalog.AddHabit(name, category, frequency)
}

func (h *Handle) RemoveHabit(name string) error {
	return h.catalog.RemoveHabit(name)
}

func (h *Handle) Categories() ([]string, error) {
	return h.catalog.Categories()
}

// Habit resolves a name, failing with ErrHabitNotFound for unknown habits.
func (h *Handle) Habit(name string) (models.Habit, error) {
	return h.catalog.Habit(name)
}

// Mark records one completion of the named habit.
func (h *Handle) Mark(name string) (models.MarkResult, error) {
	habit, err := h.catalog.Habit(name)
	if err != nil {
		return models.MarkResult{}, err
	}
	return h.engine.ToggleMarkHabit(habit.ID)
}

// ProgressOf returns today's progress and target; an unknown name reports (0, 0).
func (h *Handle) ProgressOf(name string) (progress, target int, err error) {
	id, err := h.lookup(name)
	if err != nil {
		return 0, 0, err
	}
	return h.engine.GetProgressAndTarget(id)
}

func (h *Handle) DailySeries(name string) ([]models.ProgressPoint, error) {
	id, err := h.lookup(name)
	if err != nil {
		return nil, err
	}
	return h.engine.DailySeries(id)
}

func (h *Handle) SeriesForDays(name string, n int) ([]models.DayStatus, error) {
	id, err := h.lookup(name)
	if err != nil {
		return nil, err
	}
	return h.engine.SeriesForDays(id, n)
}

func (h *Handle) Export(path string, opts transfer.ExportOptions) (int, error) {
	return h.transfer.ExportHabits(path, opts)
}

func (h *Handle) Import(path string) (transfer.Result, error) {
	return h.transfer.ImportHabits(path)
}

// lookup resolves a name for read paths, mapping a missing habit to id 0.
func (h *Handle) lookup(name string) (int64, error) {
	habit, err := h.catalog.Habit(name)
	if err != nil {
		if goerrors.Is(err, errors.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return habit.ID, nil
}
