package models

import (
	"strings"
	"time"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/errors"
)

// Habit represents a practice a user wants to repeat every day
type Habit struct {
	ID             int64  `json:"id"`
	UserID         int64  `json:"user_id"`
	Name           string `json:"name"`
	Category       string `json:"category"`
	DailyFrequency int    `json:"daily_frequency"` // target marks per day, at least 1
	CreatedAt      string `json:"created_at"`      // YYYY-MM-DD format
}

// Validate checks the fields a user supplies when defining a habit
func (h Habit) Validate() error {
	if strings.TrimSpace(h.Name) == "" {
		return errors.Validationf("habit name cannot be empty")
	}
	if h.DailyFrequency < 1 {
		return errors.Validationf("daily frequency must be at least 1, got %d", h.DailyFrequency)
	}
	if h.CreatedAt != "" {
		if _, err := time.Parse(constants.DateFormat, h.CreatedAt); err != nil {
			return errors.Validationf("invalid created_at %q (expected YYYY-MM-DD)", h.CreatedAt)
		}
	}
	return nil
}

// ProgressEntry is one row of the append-only daily progress log.
// The current value for a day is the entry with the highest ID on that day.
type ProgressEntry struct {
	ID         int64     `json:"id"`
	HabitID    int64     `json:"habit_id"`
	RecordedAt time.Time `json:"recorded_at"`
	Day        string    `json:"day"` // YYYY-MM-DD format, local to the session
	Progress   int       `json:"progress"`
	Target     int       `json:"target"` // daily frequency in effect when written
}

// Completed reports whether the entry reached its target.
func (e ProgressEntry) Completed() bool {
	return e.Target > 0 && e.Progress >= e.Target
}

// MonthlyEntry records whether a habit's daily goal was met on a date
type MonthlyEntry struct {
	ID        int64  `json:"id"`
	HabitID   int64  `json:"habit_id"`
	Date      string `json:"date"` // YYYY-MM-DD format
	Completed bool   `json:"completed"`
}

// HabitStatus is a habit joined with today's progress
type HabitStatus struct {
	Habit
	Progress  int  `json:"progress"`
	Target    int  `json:"target"`
	Completed bool `json:"completed"`
}
