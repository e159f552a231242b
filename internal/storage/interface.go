package storage

import "github.com/julianstephens/habitual/internal/models"

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error
	// InTx runs fn against a transaction-bound Provider. Calls made on a
	// Provider that is already inside a transaction join it.
	InTx(fn func(Provider) error) error

	// Users
	CreateUser(models.User) (models.User, error)
	GetUser(id int64) (models.User, error)
	GetUserByUsername(username string) (models.User, error)
	GetUserBySessionToken(token string) (models.User, error)
	UpdatePasswordHash(userID int64, hash string) error
	UpdateTheme(userID int64, theme models.Theme) error
	UpdateLastLogin(userID int64, day string) error
	// SetSessionToken stores token for the user; an empty token clears it.
	SetSessionToken(userID int64, token string) error

	// Habits
	AddHabit(models.Habit) (models.Habit, error)
	GetHabit(id int64) (models.Habit, error)
	GetHabitByName(userID int64, name string) (models.Habit, error)
	GetHabits(userID int64) ([]models.Habit, error)
	GetCategories(userID int64) ([]string, error)
	DeleteHabit(id int64) error

	// Progress log
	AddProgressEntry(models.ProgressEntry) (models.ProgressEntry, error)
	// GetLatestProgress returns the most recently inserted entry for the day,
	// or an ErrNotFound error when there is none.
	GetLatestProgress(habitID int64, day string) (models.ProgressEntry, error)
	GetProgressForDay(habitID int64, day string) ([]models.ProgressEntry, error)
	GetProgressForHabit(habitID int64) ([]models.ProgressEntry, error)
	HasProgressOnDay(userID int64, day string) (bool, error)
	DeleteProgressBefore(userID int64, day string) (int64, error)
	DeleteProgressForHabit(habitID int64) error

	// Monthly history
	GetMonthlyEntry(habitID int64, date string) (models.MonthlyEntry, error)
	GetMonthlyEntries(habitID int64, fromDate, toDate string) ([]models.MonthlyEntry, error)
	// EnsureMonthlyEntry inserts an incomplete entry unless one exists for the date.
	EnsureMonthlyEntry(habitID int64, date string) error
	// MarkMonthlyCompleted sets completed for the date, creating the entry if needed.
	MarkMonthlyCompleted(habitID int64, date string) error
	// AddMonthlyEntry inserts a history entry, ignoring dates already recorded.
	AddMonthlyEntry(models.MonthlyEntry) error
	DeleteMonthlyBefore(date string) (int64, error)
	DeleteMonthlyForHabit(habitID int64) error

	// Utils
	GetConfigPath() string
	Driver() string
}
