package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/sortgroup/internal/config"
)

// configCommand creates the config command and its path subcommand.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.Config
			source := "built-in defaults"
			if c.configPath != "" {
				source = c.configPath
			} else if path, err := config.UserPath(); err == nil && fileExists(path) {
				source = path
			}

			fmt.Fprintln(c.out, StyleTitle.Render("Configuration"))
			printDetail(c.out, "Source: %s", source)
			fmt.Fprintln(c.out)
			printKeyValue(c.out, "defaults.mode", cfg.Defaults.Mode)
			printKeyValue(c.out, "defaults.layer", orDash(cfg.Defaults.Layer))
			printKeyValue(c.out, "output.format", cfg.Output.Format)
			printKeyValue(c.out, "output.detailed", strconv.FormatBool(cfg.Output.Detailed))
			printKeyValue(c.out, "watch.debounce", cfg.Watch.Debounce.String())
			printKeyValue(c.out, "cache.dir", orDash(cfg.Cache.Dir))
			printKeyValue(c.out, "cache.redis_url", orDash(cfg.Cache.RedisURL))
			printKeyValue(c.out, "serve.addr", cfg.Serve.Addr)
			printKeyValue(c.out, "serve.timeout", cfg.Serve.Timeout.String())
			printKeyValue(c.out, "logging.level", cfg.Logging.Level)
			return nil
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the user config file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.UserPath()
			if err != nil {
				return fmt.Errorf("get config dir: %w", err)
			}
			fmt.Fprintln(c.out, path)
			return nil
		},
	})
	return cmd
}
