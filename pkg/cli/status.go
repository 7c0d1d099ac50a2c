package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/carrel-app/carrel/pkg/domain/model"
)

func cmdStatus() *cli.Command {
	var addr string

	return &cli.Command{
		Name:  "status",
		Usage: "Show the serving state of a running server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "Server address",
				Value:       "localhost:8080",
				Destination: &addr,
				Sources:     cli.EnvVars("CARREL_ADDR"),
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			url := fmt.Sprintf("http://%s/api/status", addr)

			reqCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()

			req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
			if err != nil {
				return goerr.Wrap(err, "failed to create status request")
			}

			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return goerr.Wrap(err, "server unreachable", goerr.V("addr", addr))
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				return goerr.New("unexpected status response",
					goerr.V("status", resp.StatusCode),
				)
			}

			var status model.Status
			if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
				return goerr.Wrap(err, "failed to decode status response")
			}

			if status.Ready {
				color.Green("ready: %d files loaded (server %s)", status.FileCount, status.Version)
			} else {
				color.Yellow("no package loaded (server %s)", status.Version)
			}
			return nil
		},
	}
}
