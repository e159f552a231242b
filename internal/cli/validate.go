package cli

import (
	"fmt"

	"github.com/julianstephens/habitual/internal/validation"
)

type ValidateCmd struct{}

func (cmd *ValidateCmd) Run(ctx *Context) error {
	h, err := ctx.Session()
	if err != nil {
		return err
	}
	today := h.Engine().Today()

	habits, err := ctx.Store.GetHabits(h.UserID())
	if err != nil {
		return fmt.Errorf("failed to load habits: %w", err)
	}

	validator := validation.New(today, validation.WithLocation(ctx.Location))
	ctx.println("Validating habits...")
	result := validator.ValidateHabits(habits)

	ctx.println("Validating history...")
	for _, habit := range habits {
		monthly, err := ctx.Store.GetMonthlyEntries(habit.ID, "", "")
		if err != nil {
			return fmt.Errorf("failed to load history for %q: %w", habit.Name, err)
		}
		entries, err := ctx.Store.GetProgressForDay(habit.ID, today)
		if err != nil {
			return fmt.Errorf("failed to load progress for %q: %w", habit.Name, err)
		}
		result.Merge(validator.ValidateHistory(habit, monthly, entries))
	}

	ctx.println()
	ctx.println(result.FormatReport())
	return nil
}
