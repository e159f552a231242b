package storage

import (
	"fmt"
	"time"

	"github.com/julianstephens/habitual/internal/errors"
	"github.com/julianstephens/habitual/internal/models"
)

const progressColumns = "id, habit_id, recorded_at, day, progress, target"

func (s *Store) AddProgressEntry(e models.ProgressEntry) (models.ProgressEntry, error) {
	if e.RecordedAt.IsZero() {
		e.RecordedAt = time.Now()
	}
	err := s.queryRow(`
		INSERT INTO habit_progress (habit_id, recorded_at, day, progress, target)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id`,
		[]any{e.HabitID, e.RecordedAt.Format(time.RFC3339Nano), e.Day, e.Progress, e.Target},
		&e.ID)
	if err != nil {
		return models.ProgressEntry{}, err
	}
	return e, nil
}

func (s *Store) GetLatestProgress(habitID int64, day string) (models.ProgressEntry, error) {
	q, err := s.conn()
	if err != nil {
		return models.ProgressEntry{}, err
	}
	row := q.QueryRow(s.rebind(`
		SELECT `+progressColumns+` FROM habit_progress
		WHERE habit_id = ? AND day = ?
		ORDER BY id DESC
		LIMIT 1`), habitID, day)

	var e models.ProgressEntry
	var recordedAt string
	if err := row.Scan(&e.ID, &e.HabitID, &recordedAt, &e.Day, &e.Progress, &e.Target); err != nil {
		return models.ProgressEntry{}, notFound(err, fmt.Errorf("no progress for habit %d on %s: %w", habitID, day, errors.ErrNotFound))
	}
	if e.RecordedAt, err = time.Parse(time.RFC3339Nano, recordedAt); err != nil {
		return models.ProgressEntry{}, fmt.Errorf("failed to parse recorded_at for entry %d: %w", e.ID, err)
	}
	return e, nil
}

// GetProgressForDay returns the day's entries in insertion order
func (s *Store) GetProgressForDay(habitID int64, day string) ([]models.ProgressEntry, error) {
	return s.listProgress(`
		SELECT `+progressColumns+` FROM habit_progress
		WHERE habit_id = ? AND day = ?
		ORDER BY id`, habitID, day)
}

func (s *Store) GetProgressForHabit(habitID int64) ([]models.ProgressEntry, error) {
	return s.listProgress(`
		SELECT `+progressColumns+` FROM habit_progress
		WHERE habit_id = ?
		ORDER BY id`, habitID)
}

func (s *Store) listProgress(query string, args ...any) ([]models.ProgressEntry, error) {
	rows, err := s.query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.ProgressEntry
	for rows.Next() {
		var e models.ProgressEntry
		var recordedAt string
		if err := rows.Scan(&e.ID, &e.HabitID, &recordedAt, &e.Day, &e.Progress, &e.Target); err != nil {
			return nil, err
		}
		if e.RecordedAt, err = time.Parse(time.RFC3339Nano, recordedAt); err != nil {
			return nil, fmt.Errorf("failed to parse recorded_at for entry %d: %w", e.ID, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// HasProgressOnDay reports whether any of the user's habits has a log entry for day
func (s *Store) HasProgressOnDay(userID int64, day string) (bool, error) {
	var count int
	err := s.queryRow(`
		SELECT COUNT(*) FROM habit_progress p
		JOIN habits h ON h.id = p.habit_id
		WHERE h.user_id = ? AND p.day = ?`,
		[]any{userID, day}, &count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// DeleteProgressBefore removes the user's log entries recorded on days before day
func (s *Store) DeleteProgressBefore(userID int64, day string) (int64, error) {
	res, err := s.exec(`
		DELETE FROM habit_progress
		WHERE day < ?
		  AND habit_id IN (SELECT id FROM habits WHERE user_id = ?)`,
		day, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) DeleteProgressForHabit(habitID int64) error {
	_, err := s.exec("DELETE FROM habit_progress WHERE habit_id = ?", habitID)
	return err
}
