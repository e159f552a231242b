package models

import (
	"fmt"
	"strings"
	"time"
)

// Theme is the user's UI color preference
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// DefaultTheme is assigned at registration.
const DefaultTheme = ThemeDark

func (t Theme) IsValid() bool {
	switch t {
	case ThemeDark, ThemeLight:
		return true
	default:
		return false
	}
}

// ParseTheme normalizes user input into a Theme.
func ParseTheme(input string) (Theme, error) {
	t := Theme(strings.TrimSpace(strings.ToLower(input)))
	if !t.IsValid() {
		return "", fmt.Errorf("invalid theme: %q (expected dark or light)", input)
	}
	return t, nil
}

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	LastLogin    string    `json:"last_login,omitempty"` // YYYY-MM-DD format, empty if never recorded
	Theme        Theme     `json:"theme"`
	SessionToken string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
