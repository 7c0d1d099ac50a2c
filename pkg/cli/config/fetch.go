package config

import "github.com/urfave/cli/v3"

// Fetch holds remote package download configuration. AuthHeader is tagged
// for masking so the credential never reaches log output.
type Fetch struct {
	MaxDownloadMB int64
	AuthHeader    string `masq:"secret"`
}

// Flags returns CLI flags for download configuration
func (c *Fetch) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.Int64Flag{
			Name:        "fetch-max-mb",
			Usage:       "Maximum remote package size in MiB",
			Value:       512,
			Destination: &c.MaxDownloadMB,
			Sources:     cli.EnvVars("CARREL_FETCH_MAX_MB"),
		},
		&cli.StringFlag{
			Name:        "fetch-auth-header",
			Usage:       "Authorization header value sent when downloading remote packages",
			Destination: &c.AuthHeader,
			Sources:     cli.EnvVars("CARREL_FETCH_AUTH_HEADER"),
		},
	}
}
