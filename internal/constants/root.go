package constants

import "time"

const (
	AppName             = "habitual"
	Version             = "v0.3.0"
	DefaultDBFileName   = "habitual.db"
	SessionKeyringUser  = "session"
	ConnStringKeyringID = "database-connection"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// MonthlyRetentionDays is how long monthly completion history is kept.
	MonthlyRetentionDays = 30

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "habitual-"
	BackupFileSuffix = ".db"

	// Log constants
	LogDirName    = "logs"
	LogFileName   = "habitual.log"
	LogMaxSizeMB  = 10
	LogMaxBackups = 3
	LogMaxAgeDays = 28

	// Credential rules
	MinUsernameLength = 3
	MaxUsernameLength = 32
	MinPasswordLength = 6

	// ExportVersion is written into extended exports.
	ExportVersion = "1.0"

	DefaultTimezone = "Local"

	// SQLiteBusyTimeout bounds how long a write waits on a locked database file.
	SQLiteBusyTimeout = 5 * time.Second
)
