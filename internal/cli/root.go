package cli

import (
	goerrors "errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitual/internal/backup"
	"github.com/julianstephens/habitual/internal/errors"
	"github.com/julianstephens/habitual/internal/keyring"
	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/session"
	"github.com/julianstephens/habitual/internal/storage"
)

var errNotLoggedIn = goerrors.New("not logged in, run 'habitual login' first")

// Context is passed to every command's Run method.
type Context struct {
	Store    storage.Provider
	Sessions *session.Manager
	// Backup is nil when the store is not a local SQLite file.
	Backup   *backup.Manager
	Location *time.Location
	// Timezone is the name Location was loaded from.
	Timezone string
	Username string
	Password string
	// Interactive allows prompting on the terminal for missing input.
	Interactive bool
	Out         io.Writer
}

func (ctx *Context) out() io.Writer {
	if ctx.Out == nil {
		return os.Stdout
	}
	return ctx.Out
}

func (ctx *Context) printf(format string, args ...any) {
	fmt.Fprintf(ctx.out(), format, args...)
}

func (ctx *Context) println(args ...any) {
	fmt.Fprintln(ctx.out(), args...)
}

// Session binds the invoking user. Explicit credentials win over a
// remembered session token.
func (ctx *Context) Session() (*session.Handle, error) {
	userID, err := ctx.resolveUser()
	if err != nil {
		return nil, err
	}
	return ctx.Sessions.Bind(userID)
}

func (ctx *Context) resolveUser() (int64, error) {
	if ctx.Username != "" {
		password := ctx.Password
		if password == "" {
			if !ctx.Interactive {
				return 0, errors.Validationf("password required for user %q", ctx.Username)
			}
			var err error
			if password, err = promptPassword("Password", models.DefaultTheme); err != nil {
				return 0, err
			}
		}
		return ctx.Sessions.Authenticate(ctx.Username, password)
	}

	token, err := keyring.GetSessionToken()
	if err != nil {
		if goerrors.Is(err, keyring.ErrNotFound) {
			return 0, errNotLoggedIn
		}
		return 0, err
	}
	userID, err := ctx.Sessions.Resume(token)
	if err != nil {
		if goerrors.Is(err, errors.ErrInvalidCredentials) {
			// the token outlived its row; forget it so the next run asks for a login
			if delErr := keyring.DeleteSessionToken(); delErr != nil {
				logger.Warn("Failed to forget stale session token", "error", delErr)
			}
		}
		return 0, err
	}
	return userID, nil
}

// theme returns the user's saved theme, falling back to the default.
func (ctx *Context) theme(userID int64) models.Theme {
	theme, err := ctx.Sessions.Identity().Theme(userID)
	if err != nil {
		return models.DefaultTheme
	}
	return theme
}

func formTheme(theme models.Theme) *huh.Theme {
	if theme == models.ThemeLight {
		return huh.ThemeBase()
	}
	return huh.ThemeDracula()
}

func promptPassword(title string, theme models.Theme) (string, error) {
	var password string
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(title).
				EchoMode(huh.EchoModePassword).
				Value(&password),
		),
	).WithTheme(formTheme(theme)).Run()
	if err != nil {
		return "", fmt.Errorf("prompt cancelled: %w", err)
	}
	return password, nil
}

// promptNewPassword asks for a password twice.
func promptNewPassword(theme models.Theme) (string, string, error) {
	var password, confirm string
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&password),
			huh.NewInput().
				Title("Confirm password").
				EchoMode(huh.EchoModePassword).
				Value(&confirm),
		),
	).WithTheme(formTheme(theme)).Run()
	if err != nil {
		return "", "", fmt.Errorf("prompt cancelled: %w", err)
	}
	return password, confirm, nil
}

func confirm(title string, theme models.Theme) (bool, error) {
	var ok bool
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative("Yes").
				Negative("No").
				Value(&ok),
		),
	).WithTheme(formTheme(theme)).Run()
	if err != nil {
		return false, fmt.Errorf("prompt cancelled: %w", err)
	}
	return ok, nil
}

func pluralize(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
