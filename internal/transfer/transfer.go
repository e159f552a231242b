// Package transfer moves a user's habits to and from interchange files.
package transfer

import (
	"encoding/json"
	goerrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/julianstephens/habitual/internal/catalog"
	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/errors"
	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/storage"
	"github.com/julianstephens/habitual/internal/utils"
)

// Backuper snapshots the database before an import writes to it.
type Backuper interface {
	CreateBackup() (string, error)
}

type Adapter struct {
	store   storage.Provider
	catalog *catalog.Catalog
	backup  Backuper
	now     func() time.Time
}

type Option func(*Adapter)

func WithBackup(b Backuper) Option {
	return func(a *Adapter) { a.backup = b }
}

func WithClock(now func() time.Time) Option {
	return func(a *Adapter) { a.now = now }
}

// New returns an adapter for the user the catalog is bound to.
func New(store storage.Provider, cat *catalog.Catalog, opts ...Option) *Adapter {
	a := &Adapter{store: store, catalog: cat, now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

type ExportOptions struct {
	// Extended adds habit ids, the progress log, monthly history and settings.
	// Importing it restores history and today's progress for new habits.
	Extended bool
}

// RecordError describes a habit record that was not imported.
type RecordError struct {
	Index int
	Name  string
	Err   error
}

func (e RecordError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("record %d (%s): %v", e.Index, e.Name, e.Err)
	}
	return fmt.Sprintf("record %d: %v", e.Index, e.Err)
}

func (e RecordError) Unwrap() error { return e.Err }

type Result struct {
	Imported int
	Skipped  int
	Problems []RecordError
}

var errAlreadyExists = goerrors.New("name already in use")

// ExportHabits writes the user's habits to path. Files ending in .yaml or
// .yml are written as YAML, anything else as JSON.
func (a *Adapter) ExportHabits(path string, opts ExportOptions) (int, error) {
	userID := a.catalog.UserID()
	habits, err := a.store.GetHabits(userID)
	if err != nil {
		return 0, err
	}

	doc := Document{Habits: make([]HabitRecord, 0, len(habits))}
	for _, h := range habits {
		rec := HabitRecord{
			Name:           h.Name,
			Category:       h.Category,
			DailyFrequency: h.DailyFrequency,
			CreatedAt:      h.CreatedAt,
		}
		if opts.Extended {
			rec.ID = h.ID
			if err := a.appendHistory(&doc, h); err != nil {
				return 0, err
			}
		}
		doc.Habits = append(doc.Habits, rec)
	}

	if opts.Extended {
		u, err := a.store.GetUser(userID)
		if err != nil {
			return 0, err
		}
		doc.Version = constants.ExportVersion
		doc.ExportDate = a.now().Format(time.RFC3339)
		doc.Theme = string(u.Theme)
	}

	data, err := encode(doc, isYAML(path))
	if err != nil {
		return 0, fmt.Errorf("failed to encode export: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return 0, fmt.Errorf("failed to create export directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return 0, fmt.Errorf("failed to write export: %w", err)
	}

	logger.Info("Exported habits", "user_id", userID, "path", path, "habits", len(doc.Habits), "extended", opts.Extended)
	return len(doc.Habits), nil
}

func (a *Adapter) appendHistory(doc *Document, h models.Habit) error {
	entries, err := a.store.GetProgressForHabit(h.ID)
	if err != nil {
		return err
	}
	for _, e := range entries {
		doc.Progress = append(doc.Progress, ProgressRecord{HabitID: h.ID, Date: e.Day, Progress: e.Progress, Target: e.Target})
	}

	monthly, err := a.store.GetMonthlyEntries(h.ID, "", "")
	if err != nil {
		return err
	}
	for _, m := range monthly {
		doc.Monthly = append(doc.Monthly, MonthlyRecord{HabitID: h.ID, Date: m.Date, Completed: m.Completed})
	}
	return nil
}

// ImportHabits adds the habits in path whose names the user does not have
// yet. Malformed records are skipped and reported in the result; only an
// unreadable file fails the whole import.
func (a *Adapter) ImportHabits(path string) (Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{}, fmt.Errorf("%s: %w", path, errors.ErrFileNotFound)
		}
		return Result{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	doc, err := decode(data, isYAML(path))
	if err != nil {
		return Result{}, err
	}

	if a.backup != nil {
		if backupPath, err := a.backup.CreateBackup(); err != nil {
			logger.Warn("Failed to back up database before import", "error", err)
		} else {
			logger.Info("Backed up database before import", "path", backupPath)
		}
	}

	existing, err := a.store.GetHabits(a.catalog.UserID())
	if err != nil {
		return Result{}, err
	}
	seen := make(map[string]bool, len(existing))
	for _, h := range existing {
		seen[h.Name] = true
	}

	var res Result
	// exported habit id -> id of the habit created by this import
	imported := map[int64]int64{}

	for i, raw := range doc.Habits {
		rec, err := parseHabit(raw)
		if err != nil {
			res.skip(RecordError{Index: i, Name: rec.Name, Err: err})
			continue
		}
		if seen[rec.Name] {
			res.skip(RecordError{Index: i, Name: rec.Name, Err: errAlreadyExists})
			continue
		}

		h, err := a.catalog.AddHabitAt(models.Habit{
			Name:           rec.Name,
			Category:       rec.Category,
			DailyFrequency: rec.DailyFrequency,
			CreatedAt:      rec.CreatedAt,
		})
		if err != nil {
			if errors.IsFatal(err) {
				return res, err
			}
			res.skip(RecordError{Index: i, Name: rec.Name, Err: err})
			continue
		}

		seen[rec.Name] = true
		res.Imported++
		if rec.ID != 0 {
			imported[rec.ID] = h.ID
		}
	}

	restored := a.restoreMonthly(doc.Monthly, imported)
	restored += a.restoreToday(doc.Progress, imported)

	for _, p := range res.Problems {
		logger.Warn("Skipped habit record", "index", p.Index, "name", p.Name, "reason", p.Err)
	}
	logger.Info("Imported habits", "user_id", a.catalog.UserID(), "path", path,
		"imported", res.Imported, "skipped", res.Skipped, "history_entries", restored)
	return res, nil
}

func (r *Result) skip(e RecordError) {
	r.Skipped++
	r.Problems = append(r.Problems, e)
}

// parseHabit decodes and checks one habit record. A missing daily_frequency
// means once a day.
func parseHabit(raw json.RawMessage) (HabitRecord, error) {
	var named struct {
		Name *string `json:"name"`
	}
	_ = json.Unmarshal(raw, &named)

	rec := HabitRecord{DailyFrequency: 1}
	if err := json.Unmarshal(raw, &rec); err != nil {
		if named.Name != nil {
			rec.Name = strings.TrimSpace(*named.Name)
		}
		return rec, fmt.Errorf("%w: %v", errors.ErrFormat, err)
	}

	rec.Name = strings.TrimSpace(rec.Name)
	rec.Category = strings.TrimSpace(rec.Category)
	if rec.Name == "" {
		return rec, errors.Validationf("missing name")
	}
	if rec.DailyFrequency < 1 {
		return rec, errors.Validationf("daily_frequency must be at least 1, got %d", rec.DailyFrequency)
	}
	if rec.CreatedAt != "" && !utils.ValidateDate(rec.CreatedAt) {
		return rec, errors.Validationf("invalid created_at %q", rec.CreatedAt)
	}
	return rec, nil
}

// restoreToday replays the last progress recorded today for habits created
// by this import. Earlier days are covered by the monthly history.
func (a *Adapter) restoreToday(records []json.RawMessage, imported map[int64]int64) int {
	engine := a.catalog.Engine()
	today := engine.Today()

	latest := map[int64]int{}
	var order []int64
	for _, raw := range records {
		var rec ProgressRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			logger.Warn("Skipped progress record", "error", err)
			continue
		}
		habitID, ok := imported[rec.HabitID]
		if !ok || rec.Date != today || rec.Progress < 0 {
			continue
		}
		if _, seen := latest[habitID]; !seen {
			order = append(order, habitID)
		}
		latest[habitID] = rec.Progress
	}

	restored := 0
	for _, habitID := range order {
		if _, err := engine.RestoreProgress(habitID, latest[habitID]); err != nil {
			logger.Warn("Failed to restore progress", "habit_id", habitID, "error", err)
			continue
		}
		restored++
	}
	return restored
}

// restoreMonthly copies history for habits created by this import. Dates
// already present are left alone.
func (a *Adapter) restoreMonthly(records []json.RawMessage, imported map[int64]int64) int {
	restored := 0
	for _, raw := range records {
		var rec MonthlyRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			logger.Warn("Skipped history record", "error", err)
			continue
		}
		habitID, ok := imported[rec.HabitID]
		if !ok || !utils.ValidateDate(rec.Date) {
			continue
		}
		if err := a.store.AddMonthlyEntry(models.MonthlyEntry{HabitID: habitID, Date: rec.Date, Completed: rec.Completed}); err != nil {
			logger.Warn("Failed to restore history record", "habit_id", habitID, "date", rec.Date, "error", err)
			continue
		}
		restored++
	}
	return restored
}
