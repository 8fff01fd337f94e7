package journal

import (
	"path/filepath"

	"codeberg.org/mutker/sysmond/internal/errors"
)

const (
	defaultDirPerm = 0o755
	backupDirName  = "backups"
)

type Config struct {
	// DBPath is the sqlite database file. Empty disables the journal.
	DBPath string
	// BackupDir receives a copy of the database before an incompatible
	// schema is replaced. Defaults to "backups" next to DBPath.
	BackupDir string
}

func (c Config) Enabled() bool {
	return c.DBPath != ""
}

func (c Config) backupDir() string {
	if c.BackupDir != "" {
		return c.BackupDir
	}
	return filepath.Join(filepath.Dir(c.DBPath), backupDirName)
}

func (c Config) Validate() error {
	if c.Enabled() && filepath.Base(c.DBPath) == "." {
		return errors.New().New(ErrInvalidDBPath)
	}
	return nil
}
