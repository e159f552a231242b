package models

import "time"

// ProgressPoint is one step of a habit's progress during a single day
type ProgressPoint struct {
	At       time.Time `json:"at"`
	Progress int       `json:"progress"`
	Target   int       `json:"target"`
}

// DayStatus is one day of completion history.
// HasData is false when no monthly entry exists for the date.
type DayStatus struct {
	Date      string `json:"date"`
	Completed bool   `json:"completed"`
	HasData   bool   `json:"has_data"`
}

// MarkResult describes the outcome of marking a habit once
type MarkResult struct {
	Progress  int  `json:"progress"`
	Target    int  `json:"target"`
	Completed bool `json:"completed"`
	// Capped is set when the goal was already met and nothing was recorded.
	Capped bool `json:"capped"`
}
