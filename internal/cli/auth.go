package cli

import (
	goerrors "errors"
	"fmt"
	"strings"

	"github.com/julianstephens/habitual/internal/errors"
	"github.com/julianstephens/habitual/internal/identity"
	"github.com/julianstephens/habitual/internal/keyring"
	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/utils"
)

type RegisterCmd struct {
	Username string `arg:"" help:"Name of the new account."`
}

func (c *RegisterCmd) Run(ctx *Context) error {
	username := strings.TrimSpace(c.Username)
	password, confirmation := ctx.Password, ctx.Password
	if password == "" {
		if !ctx.Interactive {
			return errors.Validationf("password required")
		}
		var err error
		if password, confirmation, err = promptNewPassword(models.DefaultTheme); err != nil {
			return err
		}
	}
	if err := identity.ValidateRegistration(username, password, confirmation); err != nil {
		return err
	}

	u, err := ctx.Sessions.Identity().Register(username, password)
	if err != nil {
		return err
	}
	ctx.printf("✓ Registered %s\n", u.Username)
	ctx.println("Run 'habitual login' to start a session.")
	return nil
}

type LoginCmd struct {
	Username string `arg:"" optional:"" help:"Account to log in as (defaults to --user)."`
}

func (c *LoginCmd) Run(ctx *Context) error {
	username := c.Username
	if username == "" {
		username = ctx.Username
	}
	if username == "" {
		return errors.Validationf("username required")
	}
	password := ctx.Password
	if password == "" {
		if !ctx.Interactive {
			return errors.Validationf("password required")
		}
		var err error
		if password, err = promptPassword("Password", models.DefaultTheme); err != nil {
			return err
		}
	}

	userID, err := ctx.Sessions.Authenticate(username, password)
	if err != nil {
		return err
	}
	// reconcile now so the first command of the day does not pay for it
	if _, err := ctx.Sessions.Bind(userID); err != nil {
		return err
	}

	token, err := ctx.Sessions.IssueToken(userID)
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	if err := keyring.SetSessionToken(token); err != nil {
		return fmt.Errorf("failed to remember session: %w", err)
	}
	ctx.printf("✓ Logged in as %s\n", username)
	return nil
}

type LogoutCmd struct{}

func (c *LogoutCmd) Run(ctx *Context) error {
	userID, err := ctx.resolveUser()
	if err != nil {
		if goerrors.Is(err, errNotLoggedIn) {
			ctx.println("Not logged in.")
			return nil
		}
		return err
	}
	if err := ctx.Sessions.Close(userID); err != nil {
		return err
	}
	if err := keyring.DeleteSessionToken(); err != nil {
		logger.Warn("Failed to remove session token from keyring", "error", err)
	}
	ctx.println("✓ Logged out")
	return nil
}

type WhoamiCmd struct{}

func (c *WhoamiCmd) Run(ctx *Context) error {
	userID, err := ctx.resolveUser()
	if err != nil {
		return err
	}
	u, err := ctx.Sessions.Identity().User(userID)
	if err != nil {
		return err
	}
	s := stylesFor(u.Theme)
	ctx.println(s.title.Render(u.Username))
	ctx.printf("%s %s\n", s.label.Render("Theme:"), u.Theme)
	lastLogin := u.LastLogin
	if lastLogin == "" {
		lastLogin = "never"
	}
	ctx.printf("%s %s\n", s.label.Render("Last login:"), lastLogin)
	ctx.printf("%s %s\n", s.label.Render("Member since:"), utils.DateIn(u.CreatedAt, ctx.Location))
	return nil
}
