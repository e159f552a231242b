package cli

import (
	"fmt"
	"os"

	"github.com/julianstephens/habitual/internal/keyring"
	"github.com/julianstephens/habitual/internal/storage"
	"github.com/julianstephens/habitual/internal/utils"
)

type InitCmd struct {
	Force bool `help:"Reinitialize even if the database already exists (a backup is taken first)."`
}

func (c *InitCmd) Run(ctx *Context) error {
	if ctx.Store.Driver() == storage.DriverSQLite {
		path := ctx.Store.GetConfigPath()
		if _, err := os.Stat(path); err == nil {
			if !c.Force {
				return fmt.Errorf("database already exists at %s (use --force to reinitialize)", path)
			}
			if ctx.Backup != nil {
				backupPath, err := ctx.Backup.CreateBackup()
				if err != nil {
					return fmt.Errorf("failed to back up existing database: %w", err)
				}
				ctx.printf("✓ Backed up existing database to %s\n", backupPath)
			}
			if err := os.Remove(path); err != nil {
				return fmt.Errorf("failed to remove existing database: %w", err)
			}
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	ctx.printf("Initialized habitual storage at: %s\n", ctx.Store.GetConfigPath())
	ctx.println("Next: run 'habitual register' to create an account.")
	return nil
}

type DoctorCmd struct{}

func (cmd *DoctorCmd) Run(ctx *Context) error {
	ctx.println("Running diagnostics...")
	ctx.println()

	hasError := false

	ctx.printf("  Storage: %s (%s)\n", ctx.Store.GetConfigPath(), ctx.Store.Driver())

	dbReachable := true
	if err := ctx.Store.Load(); err != nil {
		ctx.printf("❌ Database reachable: FAIL\n")
		ctx.printf("   Error: %v\n", err)
		hasError = true
		dbReachable = false
	} else {
		ctx.printf("✓ Database reachable: OK\n")
	}

	if store, ok := ctx.Store.(*storage.Store); ok && dbReachable {
		current, latest, err := store.SchemaStatus()
		switch {
		case err != nil:
			ctx.printf("❌ Schema version: FAIL\n")
			ctx.printf("   Error: %v\n", err)
			hasError = true
		case current != latest:
			ctx.printf("❌ Schema version: FAIL\n")
			ctx.printf("   Database at version %d, expected %d\n", current, latest)
			hasError = true
		default:
			ctx.printf("✓ Schema version: OK (v%d)\n", current)
		}
	} else if !dbReachable {
		ctx.printf("⊘ Schema version: SKIPPED (database not reachable)\n")
	}

	if ctx.Backup != nil {
		backups, err := ctx.Backup.ListBackups()
		switch {
		case err != nil:
			ctx.printf("⚠ Backups present: WARNING\n")
			ctx.printf("   %v\n", err)
		case len(backups) == 0:
			ctx.printf("⚠ Backups present: WARNING\n")
			ctx.printf("   No backups found in %s\n", ctx.Backup.GetBackupDir())
		default:
			ctx.printf("✓ Backups present: OK (%s)\n", pluralize(len(backups), "backup"))
		}
	}

	if keyring.IsAvailable() {
		ctx.printf("✓ OS keyring: OK\n")
	} else {
		ctx.printf("⚠ OS keyring: WARNING\n")
		ctx.printf("   Sessions cannot be remembered; pass --user/--password instead\n")
	}

	switch {
	case ctx.Timezone == "" || utils.ValidateTimezone(ctx.Timezone):
		ctx.printf("✓ Timezone: OK (%s)\n", ctx.Location)
	default:
		ctx.printf("❌ Timezone: FAIL\n")
		ctx.printf("   %q is not an IANA timezone name, days fall back to %s\n", ctx.Timezone, ctx.Location)
		hasError = true
	}

	ctx.println()
	if hasError {
		return fmt.Errorf("diagnostics found problems")
	}
	ctx.println("All checks passed.")
	return nil
}
