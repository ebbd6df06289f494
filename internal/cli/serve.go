package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/sortgroup/internal/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		flags   sceneFlags
		addr    string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve order assignment and rendering over HTTP",
		Long: `Start an HTTP server that assigns sort orders to uploaded scenes.

  GET  /healthz              liveness and version
  POST /v1/assign            scene body in, assigned orders out as JSON
  POST /v1/render/{format}   scene body in, one artifact out

Scene bodies are JSON, YAML, or TOML, chosen by Content-Type. Query
parameters mirror the visualize flags (mode, layer, detailed, groups_only,
root, scale, refresh). Renders share the configured artifact cache.`,
		Example: `  sortgroup serve --addr :8350
  curl --data-binary @level.yaml -H 'Content-Type: application/yaml' localhost:8350/v1/assign`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.sceneOptions(cmd, &flags)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("addr") {
				addr = c.Config.Serve.Addr
			}
			if !cmd.Flags().Changed("timeout") {
				timeout = c.Config.Serve.Timeout
			}

			runner, err := c.newRunner(cmd.Context())
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			srv := server.New(runner, c.Logger, server.Options{
				Defaults:     opts,
				Timeout:      timeout,
				MaxBodyBytes: c.Config.Serve.MaxBodyBytes,
			})
			printInfo(c.out, "Listening on %s (Ctrl-C to stop)", addr)
			return srv.Run(cmd.Context(), addr)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, localhost:8350)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "per-request timeout (default from config, 30s)")

	return cmd
}
