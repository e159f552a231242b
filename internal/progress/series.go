package progress

import (
	goerrors "errors"

	"github.com/julianstephens/habitual/internal/errors"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/utils"
)

// DailySeries returns the habit's progress steps for today, in the order they were recorded.
func (e *Engine) DailySeries(habitID int64) ([]models.ProgressPoint, error) {
	if _, err := e.ownHabit(e.store, habitID); err != nil {
		if goerrors.Is(err, errors.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	entries, err := e.store.GetProgressForDay(habitID, e.Today())
	if err != nil {
		return nil, err
	}
	points := make([]models.ProgressPoint, 0, len(entries))
	for _, entry := range entries {
		points = append(points, models.ProgressPoint{
			At:       entry.RecordedAt.In(e.loc),
			Progress: entry.Progress,
			Target:   entry.Target,
		})
	}
	return points, nil
}

// SeriesForDays returns one point per day for the n days ending today,
// oldest first. Days without history have HasData unset. n is clamped to
// the retention window.
func (e *Engine) SeriesForDays(habitID int64, n int) ([]models.DayStatus, error) {
	n = max(1, min(n, e.retentionDays+1))

	today := e.Today()
	from, err := utils.AddDays(today, -(n - 1))
	if err != nil {
		return nil, err
	}

	byDate := map[string]bool{}
	if _, err := e.ownHabit(e.store, habitID); err == nil {
		entries, err := e.store.GetMonthlyEntries(habitID, from, today)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			byDate[entry.Date] = entry.Completed
		}
	} else if !goerrors.Is(err, errors.ErrNotFound) {
		return nil, err
	}

	series := make([]models.DayStatus, 0, n)
	for i := 0; i < n; i++ {
		date, err := utils.AddDays(from, i)
		if err != nil {
			return nil, err
		}
		completed, ok := byDate[date]
		series = append(series, models.DayStatus{Date: date, Completed: completed, HasData: ok})
	}
	return series, nil
}
