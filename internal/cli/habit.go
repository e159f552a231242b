package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/errors"
	"github.com/julianstephens/habitual/internal/models"
)

const barWidth = 10

type HabitAddCmd struct {
	Name      string `arg:"" help:"Habit name."`
	Category  string `short:"c" help:"Category to file the habit under."`
	Frequency int    `short:"f" default:"1" help:"Times per day the habit should be done."`
}

func (c *HabitAddCmd) Run(ctx *Context) error {
	h, err := ctx.Session()
	if err != nil {
		return err
	}
	habit, err := h.AddHabit(c.Name, c.Category, c.Frequency)
	if err != nil {
		return err
	}
	ctx.printf("✓ Added habit %q (%s a day)\n", habit.Name, pluralize(habit.DailyFrequency, "time"))
	return nil
}

type HabitListCmd struct {
	Category string `short:"c" help:"Only show habits in this category."`
}

func (c *HabitListCmd) Run(ctx *Context) error {
	h, err := ctx.Session()
	if err != nil {
		return err
	}
	habits, err := h.ListHabits(c.Category)
	if err != nil {
		return err
	}
	if len(habits) == 0 {
		if c.Category != "" {
			ctx.printf("No habits in category %q.\n", c.Category)
			return nil
		}
		ctx.println("No habits yet. Add one with 'habitual habit add <name>'.")
		return nil
	}
	ctx.println(renderHabitTable(habits, stylesFor(ctx.theme(h.UserID()))))
	return nil
}

func renderHabitTable(habits []models.HabitStatus, s palette) string {
	rows := make([][]string, 0, len(habits))
	for _, hs := range habits {
		category := hs.Category
		if category == "" {
			category = "-"
		}
		status := s.todo.Render(progressBar(hs.Progress, hs.Target, barWidth))
		if hs.Completed {
			status = s.done.Render(progressBar(hs.Progress, hs.Target, barWidth))
		}
		rows = append(rows, []string{
			hs.Name,
			category,
			fmt.Sprintf("%d/%d", hs.Progress, hs.Target),
			status,
		})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(s.muted).
		Headers("HABIT", "CATEGORY", "TODAY", "PROGRESS").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return s.title.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Rows(rows...).
		String()
}

type HabitRemoveCmd struct {
	Name string `arg:"" help:"Habit to remove."`
	Yes  bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *HabitRemoveCmd) Run(ctx *Context) error {
	h, err := ctx.Session()
	if err != nil {
		return err
	}
	if !c.Yes && ctx.Interactive {
		ok, err := confirm(fmt.Sprintf("Remove %q and all of its history?", c.Name), ctx.theme(h.UserID()))
		if err != nil {
			return err
		}
		if !ok {
			ctx.println("Removal cancelled.")
			return nil
		}
	}
	if err := h.RemoveHabit(c.Name); err != nil {
		return err
	}
	ctx.printf("✓ Removed habit %q\n", c.Name)
	return nil
}

type HabitMarkCmd struct {
	Name string `arg:"" help:"Habit to mark as done once."`
}

func (c *HabitMarkCmd) Run(ctx *Context) error {
	h, err := ctx.Session()
	if err != nil {
		return err
	}
	res, err := h.Mark(c.Name)
	if err != nil {
		return err
	}
	s := stylesFor(ctx.theme(h.UserID()))
	switch {
	case res.Capped:
		ctx.printf("%s already completed today (%d/%d)\n", c.Name, res.Progress, res.Target)
	case res.Completed:
		ctx.printf("%s %s completed for today (%d/%d)\n", s.done.Render("✓"), c.Name, res.Progress, res.Target)
	default:
		ctx.printf("%s %s %d/%d\n", s.todo.Render(progressBar(res.Progress, res.Target, barWidth)), c.Name, res.Progress, res.Target)
	}
	return nil
}

type HabitProgressCmd struct {
	Name string `arg:"" help:"Habit to inspect."`
}

func (c *HabitProgressCmd) Run(ctx *Context) error {
	h, err := ctx.Session()
	if err != nil {
		return err
	}
	habit, err := h.Habit(c.Name)
	if err != nil {
		return err
	}
	progress, target, err := h.Engine().GetProgressAndTarget(habit.ID)
	if err != nil {
		return err
	}

	s := stylesFor(ctx.theme(h.UserID()))
	ctx.printf("%s %d/%d\n", s.title.Render(habit.Name), progress, target)
	points, err := h.Engine().DailySeries(habit.ID)
	if err != nil {
		return err
	}
	for _, p := range points {
		ctx.printf("  %s  %s %d/%d\n",
			s.muted.Render(p.At.In(ctx.Location).Format("15:04:05")),
			progressBar(p.Progress, p.Target, barWidth), p.Progress, p.Target)
	}
	return nil
}

type HabitCategoriesCmd struct{}

func (c *HabitCategoriesCmd) Run(ctx *Context) error {
	h, err := ctx.Session()
	if err != nil {
		return err
	}
	categories, err := h.Categories()
	if err != nil {
		return err
	}
	if len(categories) == 0 {
		ctx.println("No categories yet.")
		return nil
	}
	for _, category := range categories {
		ctx.println(category)
	}
	return nil
}

type HabitStatsCmd struct {
	Name string `arg:"" help:"Habit to summarize."`
	Days int    `short:"d" default:"7" help:"Number of days to show, ending today."`
}

func (c *HabitStatsCmd) Run(ctx *Context) error {
	if c.Days < 1 || c.Days > constants.MonthlyRetentionDays+1 {
		return errors.Validationf("days must be between 1 and %d", constants.MonthlyRetentionDays+1)
	}
	h, err := ctx.Session()
	if err != nil {
		return err
	}
	habit, err := h.Habit(c.Name)
	if err != nil {
		return err
	}
	days, err := h.Engine().SeriesForDays(habit.ID, c.Days)
	if err != nil {
		return err
	}

	s := stylesFor(ctx.theme(h.UserID()))
	ctx.println(s.title.Render(habit.Name))
	ctx.println(renderHistory(days, s))
	ctx.printf("Completed %d of %s\n", completedDays(days), pluralize(recordedDays(days), "recorded day"))
	return nil
}
