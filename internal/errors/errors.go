package errors

import (
	goerrors "errors"
	"fmt"
	"os"

	"github.com/julianstephens/habitual/internal/logger"
)

// Error categories. Callers match them with errors.Is.
var (
	ErrValidation         = goerrors.New("invalid input")
	ErrDuplicate          = goerrors.New("already exists")
	ErrNotFound           = goerrors.New("not found")
	ErrInvalidCredentials = goerrors.New("invalid username or password")
	ErrStorageUnavailable = goerrors.New("storage unavailable")
	ErrFileNotFound       = goerrors.New("file not found")
	ErrFormat             = goerrors.New("malformed data")
)

// Specific errors wrap a category so both can be matched.
var (
	ErrDuplicateUsername = fmt.Errorf("username %w", ErrDuplicate)
	ErrDuplicateHabit    = fmt.Errorf("habit name %w", ErrDuplicate)
	ErrUserNotFound      = fmt.Errorf("user %w", ErrNotFound)
	ErrHabitNotFound     = fmt.Errorf("habit %w", ErrNotFound)
)

// Validationf returns an ErrValidation carrying a user-facing message.
func Validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// IsFatal reports whether err should end the current session.
func IsFatal(err error) bool {
	return goerrors.Is(err, ErrStorageUnavailable)
}

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(1)
}
