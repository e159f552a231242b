package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/habitual/internal/models"
)

type palette struct {
	title lipgloss.Style
	label lipgloss.Style
	done  lipgloss.Style
	todo  lipgloss.Style
	muted lipgloss.Style
	warn  lipgloss.Style
}

func stylesFor(theme models.Theme) palette {
	if theme == models.ThemeLight {
		return palette{
			title: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("25")),
			label: lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
			done:  lipgloss.NewStyle().Foreground(lipgloss.Color("28")),
			todo:  lipgloss.NewStyle().Foreground(lipgloss.Color("130")),
			muted: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
			warn:  lipgloss.NewStyle().Foreground(lipgloss.Color("160")),
		}
	}
	return palette{
		title: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")),
		label: lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		done:  lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		todo:  lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		muted: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		warn:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	}
}

// progressBar renders progress out of target in width cells.
func progressBar(progress, target, width int) string {
	if target <= 0 || width <= 0 {
		return ""
	}
	filled := min(progress, target) * width / target
	bar := make([]rune, width)
	for i := range bar {
		if i < filled {
			bar[i] = '█'
		} else {
			bar[i] = '░'
		}
	}
	return string(bar)
}
