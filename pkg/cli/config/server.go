package config

import "github.com/urfave/cli/v3"

// Server holds server configuration
type Server struct {
	Addr        string
	MaxUploadMB int64
}

// Flags returns CLI flags for server configuration
func (c *Server) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "Server address",
			Value:       "localhost:8080",
			Destination: &c.Addr,
			Sources:     cli.EnvVars("CARREL_ADDR"),
		},
		&cli.Int64Flag{
			Name:        "max-upload-mb",
			Usage:       "Maximum accepted package archive size in MiB",
			Value:       512,
			Destination: &c.MaxUploadMB,
			Sources:     cli.EnvVars("CARREL_MAX_UPLOAD_MB"),
		},
	}
}
