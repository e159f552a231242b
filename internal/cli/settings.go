package cli

import (
	"github.com/julianstephens/habitual/internal/errors"
	"github.com/julianstephens/habitual/internal/models"
)

type SettingsThemeCmd struct {
	Theme string `arg:"" optional:"" help:"dark or light; omit to show the current theme."`
}

func (c *SettingsThemeCmd) Run(ctx *Context) error {
	userID, err := ctx.resolveUser()
	if err != nil {
		return err
	}
	id := ctx.Sessions.Identity()
	if c.Theme == "" {
		theme, err := id.Theme(userID)
		if err != nil {
			return err
		}
		ctx.printf("Theme: %s\n", theme)
		return nil
	}

	theme, err := models.ParseTheme(c.Theme)
	if err != nil {
		return errors.Validationf("%v", err)
	}
	if err := id.SaveTheme(userID, theme); err != nil {
		return err
	}
	ctx.printf("✓ Theme set to %s\n", theme)
	return nil
}

type SettingsPasswordCmd struct {
	Current string `help:"Current password (prompted when omitted)." env:"HABITUAL_CURRENT_PASSWORD"`
	New     string `name:"new" help:"New password (prompted when omitted)." env:"HABITUAL_NEW_PASSWORD"`
}

func (c *SettingsPasswordCmd) Run(ctx *Context) error {
	userID, err := ctx.resolveUser()
	if err != nil {
		return err
	}
	theme := ctx.theme(userID)

	current := c.Current
	if current == "" {
		current = ctx.Password
	}
	next, confirmation := c.New, c.New
	if current == "" || next == "" {
		if !ctx.Interactive {
			return errors.Validationf("current and new password required")
		}
		if current == "" {
			if current, err = promptPassword("Current password", theme); err != nil {
				return err
			}
		}
		if next == "" {
			if next, confirmation, err = promptNewPassword(theme); err != nil {
				return err
			}
		}
	}
	if next != confirmation {
		return errors.Validationf("passwords do not match")
	}

	if err := ctx.Sessions.Identity().ChangePassword(userID, current, next); err != nil {
		return err
	}
	ctx.println("✓ Password changed")
	return nil
}
