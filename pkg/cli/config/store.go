package config

import (
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// Store holds persistence configuration
type Store struct {
	Path    string
	QuotaMB int64
}

// Flags returns CLI flags for persistence configuration
func (c *Store) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "store-path",
			Usage:       "Content database path (default: user cache dir)",
			Destination: &c.Path,
			Sources:     cli.EnvVars("CARREL_STORE_PATH"),
		},
		&cli.Int64Flag{
			Name:        "store-quota-mb",
			Usage:       "Maximum persisted package size in MiB (0 = unlimited)",
			Value:       200,
			Destination: &c.QuotaMB,
			Sources:     cli.EnvVars("CARREL_STORE_QUOTA_MB"),
		},
	}
}

// ResolvePath returns the database path, defaulting to a carrel directory
// under the user cache dir when no explicit path is configured.
func (c *Store) ResolvePath() (string, error) {
	if c.Path != "" {
		return c.Path, nil
	}

	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", goerr.Wrap(err, "failed to determine user cache dir; set --store-path")
	}

	dir := filepath.Join(cacheDir, "carrel")
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", goerr.Wrap(err, "failed to create store directory", goerr.V("dir", dir))
	}
	return filepath.Join(dir, "content.db"), nil
}

// Quota returns the configured quota in bytes, 0 when unlimited.
func (c *Store) Quota() int64 {
	if c.QuotaMB <= 0 {
		return 0
	}
	return c.QuotaMB << 20
}
