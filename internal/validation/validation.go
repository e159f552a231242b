package validation

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/utils"
)

// ConflictType represents the type of validation conflict
type ConflictType string

const (
	ConflictSimilarHabitName  ConflictType = "similar_habit_name"
	ConflictInvalidFrequency  ConflictType = "invalid_frequency"
	ConflictInvalidDate       ConflictType = "invalid_date"
	ConflictFutureDate        ConflictType = "future_date"
	ConflictStaleTarget       ConflictType = "stale_target"
	ConflictProgressOverLimit ConflictType = "progress_over_target"
	ConflictMissingToday      ConflictType = "missing_today"
)

// Conflict represents a problem detected in a user's habit data
type Conflict struct {
	Type        ConflictType
	Description string
	Date        string   // YYYY-MM-DD format (if applicable)
	Items       []string // habit names involved
	HabitIDs    []int64
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

// HasConflicts returns true if there are any conflicts
func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// Merge appends other's conflicts.
func (vr *ValidationResult) Merge(other ValidationResult) {
	vr.Conflicts = append(vr.Conflicts, other.Conflicts...)
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	var b strings.Builder
	b.WriteString("Conflicts detected:\n")
	for _, conflict := range vr.Conflicts {
		fmt.Fprintf(&b, "- %s\n", conflict.Description)
	}
	return b.String()
}

// Validator checks habit data against the rules the engine relies on.
type Validator struct {
	today string
	loc   *time.Location
	// midnight starting today in loc; zero if today is malformed
	start time.Time
}

// Option configures a Validator.
type Option func(*Validator)

// WithLocation sets the timezone dates are read in. Defaults to UTC.
func WithLocation(loc *time.Location) Option {
	return func(v *Validator) {
		if loc != nil {
			v.loc = loc
		}
	}
}

// New creates a Validator that treats today as the latest valid date.
func New(today string, opts ...Option) *Validator {
	v := &Validator{today: today, loc: time.UTC}
	for _, opt := range opts {
		opt(v)
	}
	v.start, _ = utils.ParseDateInLocation(today, v.loc)
	return v
}

// ValidateHabits checks habit definitions.
func (v *Validator) ValidateHabits(habits []models.Habit) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	// names are unique per user, but case variants read as the same habit
	byFolded := make(map[string][]models.Habit)
	for _, h := range habits {
		if h.Name == "" {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(h.Name))
		byFolded[key] = append(byFolded[key], h)
	}
	keys := make([]string, 0, len(byFolded))
	for k := range byFolded {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		group := byFolded[k]
		if len(group) < 2 {
			continue
		}
		names := make([]string, 0, len(group))
		ids := make([]int64, 0, len(group))
		for _, h := range group {
			names = append(names, h.Name)
			ids = append(ids, h.ID)
		}
		result.Conflicts = append(result.Conflicts, Conflict{
			Type:        ConflictSimilarHabitName,
			Description: fmt.Sprintf("Habits differ only by case: %s", strings.Join(quoteAll(names), ", ")),
			Items:       names,
			HabitIDs:    ids,
		})
	}

	for _, h := range habits {
		if h.DailyFrequency < 1 {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictInvalidFrequency,
				Description: fmt.Sprintf("Habit %q has daily frequency %d (must be at least 1)", h.Name, h.DailyFrequency),
				Items:       []string{h.Name},
				HabitIDs:    []int64{h.ID},
			})
		}
		if h.CreatedAt == "" {
			continue
		}
		created, ok := v.parseDate(h.CreatedAt)
		if !ok {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictInvalidDate,
				Description: fmt.Sprintf("Habit %q has invalid created_at: %s", h.Name, h.CreatedAt),
				Date:        h.CreatedAt,
				Items:       []string{h.Name},
				HabitIDs:    []int64{h.ID},
			})
		} else if v.isFuture(created) {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictFutureDate,
				Description: fmt.Sprintf("Habit %q was created in the future (%s)", h.Name, h.CreatedAt),
				Date:        h.CreatedAt,
				Items:       []string{h.Name},
				HabitIDs:    []int64{h.ID},
			})
		}
	}
	return result
}

// ValidateHistory checks one habit's monthly entries and today's progress
// log. today holds the entries recorded for the validator's date.
func (v *Validator) ValidateHistory(h models.Habit, monthly []models.MonthlyEntry, today []models.ProgressEntry) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	for _, m := range monthly {
		day, ok := v.parseDate(m.Date)
		switch {
		case !ok:
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictInvalidDate,
				Description: fmt.Sprintf("Habit %q has a history entry with invalid date: %s", h.Name, m.Date),
				Date:        m.Date,
				Items:       []string{h.Name},
				HabitIDs:    []int64{h.ID},
			})
		case v.isFuture(day):
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictFutureDate,
				Description: fmt.Sprintf("Habit %q has a history entry in the future: %s", h.Name, m.Date),
				Date:        m.Date,
				Items:       []string{h.Name},
				HabitIDs:    []int64{h.ID},
			})
		}
	}

	if len(today) == 0 {
		result.Conflicts = append(result.Conflicts, Conflict{
			Type:        ConflictMissingToday,
			Description: fmt.Sprintf("Habit %q has no progress entry for %s", h.Name, v.today),
			Date:        v.today,
			Items:       []string{h.Name},
			HabitIDs:    []int64{h.ID},
		})
		return result
	}

	latest := today[0]
	for _, e := range today[1:] {
		if e.ID > latest.ID {
			latest = e
		}
	}
	if latest.Target != h.DailyFrequency {
		result.Conflicts = append(result.Conflicts, Conflict{
			Type:        ConflictStaleTarget,
			Description: fmt.Sprintf("Habit %q tracks target %d today but its frequency is %d", h.Name, latest.Target, h.DailyFrequency),
			Date:        v.today,
			Items:       []string{h.Name},
			HabitIDs:    []int64{h.ID},
		})
	}
	if latest.Progress > latest.Target {
		result.Conflicts = append(result.Conflicts, Conflict{
			Type:        ConflictProgressOverLimit,
			Description: fmt.Sprintf("Habit %q has progress %d above its target %d", h.Name, latest.Progress, latest.Target),
			Date:        v.today,
			Items:       []string{h.Name},
			HabitIDs:    []int64{h.ID},
		})
	}
	return result
}

func (v *Validator) parseDate(s string) (time.Time, bool) {
	t, err := utils.ParseDateInLocation(s, v.loc)
	return t, err == nil
}

func (v *Validator) isFuture(day time.Time) bool {
	return !v.start.IsZero() && day.After(v.start)
}

func quoteAll(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = fmt.Sprintf("%q", n)
	}
	return out
}
