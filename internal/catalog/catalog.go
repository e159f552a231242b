// Package catalog manages the habits a user tracks.
package catalog

import (
	goerrors "errors"
	"fmt"
	"strings"

	"github.com/julianstephens/habitual/internal/errors"
	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/progress"
	"github.com/julianstephens/habitual/internal/storage"
)

// Catalog is scoped to the user its engine is bound to.
type Catalog struct {
	store  storage.Provider
	engine *progress.Engine
}

func New(store storage.Provider, engine *progress.Engine) *Catalog {
	return &Catalog{store: store, engine: engine}
}

func (c *Catalog) UserID() int64 { return c.engine.UserID() }

func (c *Catalog) Engine() *progress.Engine { return c.engine }

// AddHabit creates a habit for today and starts its daily counter.
func (c *Catalog) AddHabit(name, category string, frequency int) (models.Habit, error) {
	return c.AddHabitAt(models.Habit{
		Name:           name,
		Category:       category,
		DailyFrequency: frequency,
	})
}

// AddHabitAt creates a habit keeping its CreatedAt date when set.
func (c *Catalog) AddHabitAt(h models.Habit) (models.Habit, error) {
	h.UserID = c.engine.UserID()
	h.Name = strings.TrimSpace(h.Name)
	h.Category = strings.TrimSpace(h.Category)
	if h.CreatedAt == "" {
		h.CreatedAt = c.engine.Today()
	}
	if err := h.Validate(); err != nil {
		return models.Habit{}, err
	}

	var created models.Habit
	err := c.store.InTx(func(tx storage.Provider) error {
		var err error
		created, err = tx.AddHabit(h)
		if err != nil {
			return err
		}
		return c.engine.InitHabit(tx, created)
	})
	if err != nil {
		if goerrors.Is(err, errors.ErrDuplicate) {
			return models.Habit{}, fmt.Errorf("%q: %w", h.Name, err)
		}
		return models.Habit{}, err
	}

	logger.Info("Added habit", "user_id", h.UserID, "habit", created.Name, "frequency", created.DailyFrequency)
	return created, nil
}

// RemoveHabit deletes a habit with its progress log and history.
func (c *Catalog) RemoveHabit(name string) error {
	h, err := c.Habit(name)
	if err != nil {
		return err
	}

	err = c.store.InTx(func(tx storage.Provider) error {
		if err := tx.DeleteProgressForHabit(h.ID); err != nil {
			return err
		}
		if err := tx.DeleteMonthlyForHabit(h.ID); err != nil {
			return err
		}
		return tx.DeleteHabit(h.ID)
	})
	if err != nil {
		return fmt.Errorf("failed to remove habit %q: %w", h.Name, err)
	}

	logger.Info("Removed habit", "user_id", h.UserID, "habit", h.Name)
	return nil
}

// Habit resolves one of the user's habits by name.
func (c *Catalog) Habit(name string) (models.Habit, error) {
	name = strings.TrimSpace(name)
	h, err := c.store.GetHabitByName(c.engine.UserID(), name)
	if err != nil {
		if goerrors.Is(err, errors.ErrNotFound) {
			return models.Habit{}, fmt.Errorf("%q: %w", name, errors.ErrHabitNotFound)
		}
		return models.Habit{}, err
	}
	return h, nil
}

func (c *Catalog) Categories() ([]string, error) {
	return c.store.GetCategories(c.engine.UserID())
}

// ListHabits returns the user's habits with today's progress. An empty
// category lists every habit.
func (c *Catalog) ListHabits(category string) ([]models.HabitStatus, error) {
	habits, err := c.store.GetHabits(c.engine.UserID())
	if err != nil {
		return nil, err
	}

	category = strings.TrimSpace(category)
	statuses := make([]models.HabitStatus, 0, len(habits))
	for _, h := range habits {
		if category != "" && !strings.EqualFold(h.Category, category) {
			continue
		}
		p, target, err := c.engine.GetProgressAndTarget(h.ID)
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, models.HabitStatus{
			Habit:     h,
			Progress:  p,
			Target:    target,
			Completed: target > 0 && p >= target,
		})
	}
	return statuses, nil
}
