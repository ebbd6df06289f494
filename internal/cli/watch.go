package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/sortgroup/internal/config"
	sgerrors "github.com/matzehuels/sortgroup/pkg/errors"
	"github.com/matzehuels/sortgroup/pkg/pipeline"
	"github.com/matzehuels/sortgroup/pkg/watch"
)

// watchCommand creates the watch command.
func (c *CLI) watchCommand() *cobra.Command {
	var (
		flags    sceneFlags
		format   string
		debounce time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch [scene]",
		Short: "Re-assign sort orders whenever the scene file changes",
		Long: `Watch a scene file and print fresh sort orders after every save.

A broken edit prints its error and keeps watching, so it can be fixed in
place. Stop with Ctrl-C.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.sceneOptions(cmd, &flags)
			if err != nil {
				return err
			}
			format, err := c.outputFormat(cmd, format)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("debounce") {
				debounce = c.Config.Watch.Debounce
			}
			return c.runWatch(cmd.Context(), args[0], opts, format, debounce)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", config.FormatTable, "output format: table, json")
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "quiet period before a change is picked up")

	return cmd
}

// runWatch prints orders once and after every change until ctx ends.
func (c *CLI) runWatch(ctx context.Context, input string, opts pipeline.Options, format string, debounce time.Duration) error {
	runner := pipeline.NewRunner(nil, nil, c.Logger)
	defer runner.Close()

	reload := func(ctx context.Context) error {
		res, err := runner.Execute(ctx, input, opts)
		if format == config.FormatTable {
			fmt.Fprintln(c.out, StyleTitle.Render(input)+" "+StyleDim.Render(time.Now().Format("15:04:05")))
		}
		if err != nil {
			printWarning(c.out, "%s", sgerrors.UserMessage(err))
			return err
		}
		return printOrders(c.out, res, format, opts.Detailed)
	}

	if format == config.FormatTable {
		printInfo(c.out, "Watching %s (Ctrl-C to stop)", input)
	}
	return watch.Run(ctx, input, reload, watch.WithDebounce(debounce), watch.WithLogger(c.Logger))
}
