// Package progress reconciles a user's daily habit progress with the calendar.
//
// An Engine is bound to one user. On construction it prunes expired monthly
// history and, when a new day has begun since the user's last session, starts
// a fresh zero-progress entry for every habit.
package progress

import (
	goerrors "errors"
	"fmt"
	"time"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/errors"
	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/storage"
	"github.com/julianstephens/habitual/internal/utils"
)

type Engine struct {
	store         storage.Provider
	userID        int64
	now           func() time.Time
	loc           *time.Location
	retentionDays int

	// day for which the new-day decision has been made in this process
	decidedDay string
	newDay     bool
}

type Option func(*Engine)

// WithClock overrides the source of the current time.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLocation sets the location calendar days are computed in.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.loc = loc
		}
	}
}

// WithRetentionDays sets how many days of monthly history are kept.
func WithRetentionDays(days int) Option {
	return func(e *Engine) {
		if days > 0 {
			e.retentionDays = days
		}
	}
}

// New binds an engine to userID and reconciles the user's progress for today.
func New(store storage.Provider, userID int64, opts ...Option) (*Engine, error) {
	e := &Engine{
		store:         store,
		userID:        userID,
		now:           time.Now,
		loc:           time.Local,
		retentionDays: constants.MonthlyRetentionDays,
	}
	for _, opt := range opts {
		opt(e)
	}

	if _, err := e.CleanupOldMonthlyProgress(); err != nil {
		return nil, fmt.Errorf("failed to clean up monthly history: %w", err)
	}
	isNew, err := e.IsNewDay()
	if err != nil {
		return nil, err
	}
	if isNew {
		if err := e.ResetDailyProgress(); err != nil {
			return nil, fmt.Errorf("failed to reset daily progress: %w", err)
		}
	}
	return e, nil
}

func (e *Engine) UserID() int64 { return e.userID }

func (e *Engine) Location() *time.Location { return e.loc }

// Today returns the current calendar date in the engine's location.
func (e *Engine) Today() string {
	return utils.DateIn(e.now(), e.loc)
}

// IsNewDay reports whether the user's daily counters still have to be
// started for today. A day with any recorded entry is never new.
func (e *Engine) IsNewDay() (bool, error) {
	today := e.Today()
	if e.decidedDay == today {
		return e.newDay, nil
	}

	hasEntry, err := e.store.HasProgressOnDay(e.userID, today)
	if err != nil {
		return false, fmt.Errorf("failed to check today's progress: %w", err)
	}
	if hasEntry {
		e.decide(today, false)
		return false, nil
	}

	user, err := e.store.GetUser(e.userID)
	if err != nil {
		return false, err
	}
	// YYYY-MM-DD strings order like the dates they name
	isNew := user.LastLogin == "" || user.LastLogin < today
	logger.Debug("Checked day boundary", "user_id", e.userID, "today", today, "last_login", user.LastLogin, "new_day", isNew)
	e.decide(today, isNew)
	return isNew, nil
}

func (e *Engine) decide(day string, isNew bool) {
	e.decidedDay = day
	e.newDay = isNew
}

// ResetDailyProgress drops the user's progress log from earlier days and
// starts today's counters, in one transaction.
func (e *Engine) ResetDailyProgress() error {
	today := e.Today()
	var removed int64
	err := e.store.InTx(func(tx storage.Provider) error {
		var err error
		removed, err = tx.DeleteProgressBefore(e.userID, today)
		if err != nil {
			return err
		}
		return e.initProgress(tx, today)
	})
	if err != nil {
		return err
	}

	e.decide(today, false)
	logger.Info("Started new day", "user_id", e.userID, "day", today, "pruned_entries", removed)
	return nil
}

// InitNewProgressForHabits appends a zero-progress entry for each of the
// user's habits and makes sure each has a monthly entry for today.
func (e *Engine) InitNewProgressForHabits() error {
	today := e.Today()
	return e.store.InTx(func(tx storage.Provider) error {
		return e.initProgress(tx, today)
	})
}

func (e *Engine) initProgress(tx storage.Provider, today string) error {
	habits, err := tx.GetHabits(e.userID)
	if err != nil {
		return err
	}
	for _, h := range habits {
		if err := e.initHabit(tx, h, today); err != nil {
			return err
		}
	}
	return nil
}

// InitHabit starts today's counter for a single habit. tx may be the
// engine's store or a transaction bound to it.
func (e *Engine) InitHabit(tx storage.Provider, h models.Habit) error {
	return e.initHabit(tx, h, e.Today())
}

func (e *Engine) initHabit(tx storage.Provider, h models.Habit, today string) error {
	if _, err := tx.AddProgressEntry(models.ProgressEntry{
		HabitID:    h.ID,
		RecordedAt: e.now(),
		Day:        today,
		Progress:   0,
		Target:     h.DailyFrequency,
	}); err != nil {
		return fmt.Errorf("failed to start progress for %q: %w", h.Name, err)
	}
	if err := tx.EnsureMonthlyEntry(h.ID, today); err != nil {
		return fmt.Errorf("failed to start history for %q: %w", h.Name, err)
	}
	return nil
}

// ToggleMarkHabit records one more completion of the habit for today. Once
// the daily goal is met further marks are refused and reported as Capped.
func (e *Engine) ToggleMarkHabit(habitID int64) (models.MarkResult, error) {
	today := e.Today()
	var result models.MarkResult

	err := e.store.InTx(func(tx storage.Provider) error {
		h, err := e.ownHabit(tx, habitID)
		if err != nil {
			return err
		}

		current, target, err := e.latest(tx, h, today)
		if err != nil {
			return err
		}
		if current >= target {
			result = models.MarkResult{Progress: current, Target: target, Completed: true, Capped: true}
			return nil
		}

		next := current + 1
		if _, err := tx.AddProgressEntry(models.ProgressEntry{
			HabitID:    h.ID,
			RecordedAt: e.now(),
			Day:        today,
			Progress:   next,
			Target:     target,
		}); err != nil {
			return err
		}
		if next >= target {
			if err := tx.MarkMonthlyCompleted(h.ID, today); err != nil {
				return err
			}
		}
		result = models.MarkResult{Progress: next, Target: target, Completed: next >= target}
		return nil
	})
	if err != nil {
		return models.MarkResult{}, err
	}

	logger.Debug("Marked habit", "habit_id", habitID, "progress", result.Progress, "target", result.Target, "capped", result.Capped)
	return result, nil
}

// RestoreProgress appends an entry setting today's progress for the habit,
// clamped to its daily frequency. It never lowers progress already made.
func (e *Engine) RestoreProgress(habitID int64, progress int) (models.MarkResult, error) {
	today := e.Today()
	var result models.MarkResult

	err := e.store.InTx(func(tx storage.Provider) error {
		h, err := e.ownHabit(tx, habitID)
		if err != nil {
			return err
		}
		current, _, err := e.latest(tx, h, today)
		if err != nil {
			return err
		}

		target := h.DailyFrequency
		next := min(max(progress, current), target)
		result = models.MarkResult{Progress: next, Target: target, Completed: next >= target}
		if next == current {
			return nil
		}
		if _, err := tx.AddProgressEntry(models.ProgressEntry{
			HabitID:    h.ID,
			RecordedAt: e.now(),
			Day:        today,
			Progress:   next,
			Target:     target,
		}); err != nil {
			return err
		}
		if result.Completed {
			return tx.MarkMonthlyCompleted(h.ID, today)
		}
		return nil
	})
	if err != nil {
		return models.MarkResult{}, err
	}
	return result, nil
}

// IsHabitCompletedToday reports whether today's latest entry has reached its target.
func (e *Engine) IsHabitCompletedToday(habitID int64) (bool, error) {
	if _, err := e.ownHabit(e.store, habitID); err != nil {
		if goerrors.Is(err, errors.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	entry, err := e.store.GetLatestProgress(habitID, e.Today())
	if err != nil {
		if goerrors.Is(err, errors.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return entry.Completed(), nil
}

// GetProgressAndTarget returns today's progress and target for the habit.
// A habit with no entry today reports (0, daily frequency); an unknown habit (0, 0).
func (e *Engine) GetProgressAndTarget(habitID int64) (progress, target int, err error) {
	h, err := e.ownHabit(e.store, habitID)
	if err != nil {
		if goerrors.Is(err, errors.ErrNotFound) {
			return 0, 0, nil
		}
		return 0, 0, err
	}
	return e.latest(e.store, h, e.Today())
}

func (e *Engine) latest(q storage.Provider, h models.Habit, today string) (progress, target int, err error) {
	entry, err := q.GetLatestProgress(h.ID, today)
	if err != nil {
		if goerrors.Is(err, errors.ErrNotFound) {
			return 0, h.DailyFrequency, nil
		}
		return 0, 0, err
	}
	return entry.Progress, entry.Target, nil
}

// ownHabit loads a habit, treating other users' habits as missing.
func (e *Engine) ownHabit(q storage.Provider, habitID int64) (models.Habit, error) {
	h, err := q.GetHabit(habitID)
	if err != nil {
		return models.Habit{}, err
	}
	if h.UserID != e.userID {
		return models.Habit{}, errors.ErrHabitNotFound
	}
	return h, nil
}

// CleanupOldMonthlyProgress deletes monthly history older than the
// retention window for every user and returns how many entries went.
func (e *Engine) CleanupOldMonthlyProgress() (int64, error) {
	cutoff, err := utils.AddDays(e.Today(), -e.retentionDays)
	if err != nil {
		return 0, err
	}
	n, err := e.store.DeleteMonthlyBefore(cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		logger.Info("Pruned monthly history", "before", cutoff, "entries", n)
	}
	return n, nil
}
