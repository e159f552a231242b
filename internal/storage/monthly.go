package storage

import (
	"fmt"

	"github.com/julianstephens/habitual/internal/errors"
	"github.com/julianstephens/habitual/internal/models"
)

func (s *Store) GetMonthlyEntry(habitID int64, date string) (models.MonthlyEntry, error) {
	var e models.MonthlyEntry
	var completed int
	err := s.queryRow(`
		SELECT id, habit_id, date, completed FROM habits_progress_monthly
		WHERE habit_id = ? AND date = ?`,
		[]any{habitID, date}, &e.ID, &e.HabitID, &e.Date, &completed)
	if err != nil {
		return models.MonthlyEntry{}, notFound(err, fmt.Errorf("no history for habit %d on %s: %w", habitID, date, errors.ErrNotFound))
	}
	e.Completed = completed != 0
	return e, nil
}

// GetMonthlyEntries returns entries with fromDate <= date <= toDate, oldest first.
// Empty bounds are open.
func (s *Store) GetMonthlyEntries(habitID int64, fromDate, toDate string) ([]models.MonthlyEntry, error) {
	query := "SELECT id, habit_id, date, completed FROM habits_progress_monthly WHERE habit_id = ?"
	args := []any{habitID}
	if fromDate != "" {
		query += " AND date >= ?"
		args = append(args, fromDate)
	}
	if toDate != "" {
		query += " AND date <= ?"
		args = append(args, toDate)
	}
	query += " ORDER BY date"

	rows, err := s.query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.MonthlyEntry
	for rows.Next() {
		var e models.MonthlyEntry
		var completed int
		if err := rows.Scan(&e.ID, &e.HabitID, &e.Date, &completed); err != nil {
			return nil, err
		}
		e.Completed = completed != 0
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *Store) EnsureMonthlyEntry(habitID int64, date string) error {
	_, err := s.exec(`
		INSERT INTO habits_progress_monthly (habit_id, date, completed)
		VALUES (?, ?, 0)
		ON CONFLICT (habit_id, date) DO NOTHING`,
		habitID, date)
	return err
}

func (s *Store) MarkMonthlyCompleted(habitID int64, date string) error {
	_, err := s.exec(`
		INSERT INTO habits_progress_monthly (habit_id, date, completed)
		VALUES (?, ?, 1)
		ON CONFLICT (habit_id, date) DO UPDATE SET completed = 1`,
		habitID, date)
	return err
}

func (s *Store) AddMonthlyEntry(e models.MonthlyEntry) error {
	_, err := s.exec(`
		INSERT INTO habits_progress_monthly (habit_id, date, completed)
		VALUES (?, ?, ?)
		ON CONFLICT (habit_id, date) DO NOTHING`,
		e.HabitID, e.Date, boolToInt(e.Completed))
	return err
}

// DeleteMonthlyBefore prunes history older than date for every user
func (s *Store) DeleteMonthlyBefore(date string) (int64, error) {
	res, err := s.exec("DELETE FROM habits_progress_monthly WHERE date < ?", date)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) DeleteMonthlyForHabit(habitID int64) error {
	_, err := s.exec("DELETE FROM habits_progress_monthly WHERE habit_id = ?", habitID)
	return err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
