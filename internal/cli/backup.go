package cli

import (
	goerrors "errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/habitual/internal/models"
)

var errNoBackups = goerrors.New("backups are only available for a local SQLite database")

type BackupCreateCmd struct{}

func (c *BackupCreateCmd) Run(ctx *Context) error {
	if ctx.Backup == nil {
		return errNoBackups
	}
	backupPath, err := ctx.Backup.CreateBackup()
	if err != nil {
		return fmt.Errorf("backup failed: %w", err)
	}
	ctx.printf("✓ Backup created: %s\n", filepath.Base(backupPath))
	return nil
}

type BackupListCmd struct{}

func (c *BackupListCmd) Run(ctx *Context) error {
	if ctx.Backup == nil {
		return errNoBackups
	}
	backups, err := ctx.Backup.ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}

	if len(backups) == 0 {
		ctx.println("No backups found.")
		ctx.printf("Backups are stored in: %s\n", ctx.Backup.GetBackupDir())
		return nil
	}

	ctx.printf("Available backups (%d total):\n\n", len(backups))
	for _, b := range backups {
		sizeKB := float64(b.Size) / 1024.0
		timestamp := b.Timestamp.In(ctx.Location).Format("2006-01-02 15:04:05")
		ctx.printf("  %s  %s  (%.1f KB)\n", timestamp, b.Name(), sizeKB)
	}
	ctx.printf("\nBackup directory: %s\n", ctx.Backup.GetBackupDir())
	return nil
}

type BackupRestoreCmd struct {
	BackupFile string `arg:"" help:"Path or filename of the backup to restore."`
	Yes        bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *BackupRestoreCmd) Run(ctx *Context) error {
	if ctx.Backup == nil {
		return errNoBackups
	}
	backupPath := ctx.Backup.Resolve(c.BackupFile)
	if _, err := os.Stat(backupPath); os.IsNotExist(err) {
		return fmt.Errorf("backup file not found: %s", backupPath)
	}

	if !c.Yes {
		if !ctx.Interactive {
			return fmt.Errorf("refusing to restore without confirmation (use --yes)")
		}
		ctx.println("⚠️  WARNING: This will replace your current database with the backup.")
		ctx.println("A backup of your current database will be created before restoring.")
		ok, err := confirm(fmt.Sprintf("Restore from %s?", filepath.Base(backupPath)), models.DefaultTheme)
		if err != nil {
			return err
		}
		if !ok {
			ctx.println("Restore cancelled.")
			return nil
		}
	}

	// the file is replaced underneath the connection otherwise
	if err := ctx.Store.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to close database connection: %v\n", err)
	}

	safety, err := ctx.Backup.RestoreBackup(backupPath)
	if err != nil {
		return fmt.Errorf("restore failed: %w", err)
	}

	ctx.println("✓ Database restored successfully!")
	if safety != "" {
		ctx.printf("Previous database saved as %s\n", filepath.Base(safety))
	}
	return nil
}
