package storage

import (
	"github.com/julianstephens/habitual/internal/errors"
	"github.com/julianstephens/habitual/internal/models"
)

const habitColumns = "id, user_id, name, category, daily_frequency, created_at"

func (s *Store) AddHabit(h models.Habit) (models.Habit, error) {
	err := s.queryRow(`
		INSERT INTO habits (user_id, name, category, daily_frequency, created_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id`,
		[]any{h.UserID, h.Name, h.Category, h.DailyFrequency, h.CreatedAt},
		&h.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return models.Habit{}, errors.ErrDuplicateHabit
		}
		return models.Habit{}, err
	}
	return h, nil
}

func (s *Store) GetHabit(id int64) (models.Habit, error) {
	var h models.Habit
	err := s.queryRow("SELECT "+habitColumns+" FROM habits WHERE id = ?", []any{id}, habitDest(&h)...)
	if err != nil {
		return models.Habit{}, notFound(err, errors.ErrHabitNotFound)
	}
	return h, nil
}

func (s *Store) GetHabitByName(userID int64, name string) (models.Habit, error) {
	var h models.Habit
	err := s.queryRow("SELECT "+habitColumns+" FROM habits WHERE user_id = ? AND name = ?",
		[]any{userID, name}, habitDest(&h)...)
	if err != nil {
		return models.Habit{}, notFound(err, errors.ErrHabitNotFound)
	}
	return h, nil
}

// GetHabits returns the user's habits in creation order
func (s *Store) GetHabits(userID int64) ([]models.Habit, error) {
	rows, err := s.query("SELECT "+habitColumns+" FROM habits WHERE user_id = ? ORDER BY id", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var habits []models.Habit
	for rows.Next() {
		var h models.Habit
		if err := rows.Scan(habitDest(&h)...); err != nil {
			return nil, err
		}
		habits = append(habits, h)
	}
	return habits, rows.Err()
}

// GetCategories returns the distinct non-empty categories of the user's habits, sorted
func (s *Store) GetCategories(userID int64) ([]string, error) {
	rows, err := s.query(`
		SELECT DISTINCT category FROM habits
		WHERE user_id = ? AND category <> ''
		ORDER BY category`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// DeleteHabit removes the habit row only. Callers clear its progress and
// monthly history first.
func (s *Store) DeleteHabit(id int64) error {
	res, err := s.exec("DELETE FROM habits WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.ErrHabitNotFound
	}
	return nil
}

func habitDest(h *models.Habit) []any {
	return []any{&h.ID, &h.UserID, &h.Name, &h.Category, &h.DailyFrequency, &h.CreatedAt}
}
