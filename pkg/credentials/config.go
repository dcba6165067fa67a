package credentials

import (
	"os"
	"path/filepath"
)

// Config locates the credential database. Profile separates tokens for
// different hubs or users sharing one database.
type Config struct {
	Path    string `env:"NOTIFY_CREDENTIALS_PATH"`
	Profile string `env:"NOTIFY_PROFILE" envDefault:"default"`
}

// ResolvedPath returns Path, or the default location under the user config
// directory when Path is empty.
func (c Config) ResolvedPath() string {
	if c.Path != "" {
		return c.Path
	}
	return DefaultPath()
}

// DefaultPath is <user config dir>/storefront/credentials.db, falling back to
// the working directory when no config dir is known.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "credentials.db"
	}
	return filepath.Join(dir, "storefront", "credentials.db")
}
