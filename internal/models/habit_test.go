package models

import (
	goerrors "errors"
	"testing"

	"github.com/julianstephens/habitual/internal/errors"
)

func TestHabit_Validate(t *testing.T) {
	tests := []struct {
		name    string
		habit   Habit
		wantErr bool
	}{
		{
			name:  "valid habit",
			habit: Habit{Name: "Water", Category: "Health", DailyFrequency: 8},
		},
		{
			name:  "valid with created date",
			habit: Habit{Name: "Read", DailyFrequency: 1, CreatedAt: "2026-01-15"},
		},
		{
			name:    "empty name",
			habit:   Habit{Name: "", DailyFrequency: 1},
			wantErr: true,
		},
		{
			name:    "whitespace name",
			habit:   Habit{Name: "   ", DailyFrequency: 1},
			wantErr: true,
		},
		{
			name:    "zero frequency",
			habit:   Habit{Name: "Stretch", DailyFrequency: 0},
			wantErr: true,
		},
		{
			name:    "bad created date",
			habit:   Habit{Name: "Stretch", DailyFrequency: 2, CreatedAt: "15/01/2026"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.habit.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !goerrors.Is(err, errors.ErrValidation) {
				t.Errorf("Validate() error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestProgressEntry_Completed(t *testing.T) {
	tests := []struct {
		entry ProgressEntry
		want  bool
	}{
		{ProgressEntry{Progress: 0, Target: 8}, false},
		{ProgressEntry{Progress: 8, Target: 8}, true},
		{ProgressEntry{Progress: 9, Target: 8}, true},
		{ProgressEntry{Progress: 0, Target: 0}, false},
	}
	for _, tt := range tests {
		if got := tt.entry.Completed(); got != tt.want {
			t.Errorf("Completed(%d/%d) = %v, want %v", tt.entry.Progress, tt.entry.Target, got, tt.want)
		}
	}
}

func TestParseTheme(t *testing.T) {
	tests := []struct {
		input   string
		want    Theme
		wantErr bool
	}{
		{"dark", ThemeDark, false},
		{" Light ", ThemeLight, false},
		{"solarized", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseTheme(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseTheme(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseTheme(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
