package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/sortgroup/internal/config"
	sgerrors "github.com/matzehuels/sortgroup/pkg/errors"
	sgio "github.com/matzehuels/sortgroup/pkg/io"
	"github.com/matzehuels/sortgroup/pkg/pipeline"
	"github.com/matzehuels/sortgroup/pkg/sorting"
)

// sceneFlags are the load and display flags shared by scene commands. Unset
// flags fall back to the config file.
type sceneFlags struct {
	mode     string
	layer    string
	detailed bool
}

func (f *sceneFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.mode, "mode", "", "mode for groups that name none: manual, hierarchy, isometric")
	cmd.Flags().StringVar(&f.layer, "layer", "", "sorting layer for groups that name none")
	cmd.Flags().BoolVar(&f.detailed, "detailed", false, "show node IDs, group modes, and order ranges")
}

// sceneOptions merges config defaults with the flags set on cmd.
func (c *CLI) sceneOptions(cmd *cobra.Command, f *sceneFlags) (pipeline.Options, error) {
	opts := c.baseOptions()
	if cmd.Flags().Changed("mode") {
		m, err := sorting.ParseMode(f.mode)
		if err != nil {
			return opts, err
		}
		opts.Mode = m
	}
	if cmd.Flags().Changed("layer") {
		opts.Layer = sorting.Layer(f.layer)
	}
	if cmd.Flags().Changed("detailed") {
		opts.Detailed = f.detailed
	}
	return opts, nil
}

// outputFormat returns the --format flag if set, else the configured one.
func (c *CLI) outputFormat(cmd *cobra.Command, flag string) (string, error) {
	format := c.Config.Output.Format
	if cmd.Flags().Changed("format") {
		format = flag
	}
	switch format {
	case config.FormatTable, config.FormatJSON:
		return format, nil
	}
	return "", sgerrors.New(sgerrors.ErrCodeInvalidFormat, "output format %q (want table or json)", format)
}

// assignCommand creates the assign command.
func (c *CLI) assignCommand() *cobra.Command {
	var (
		flags  sceneFlags
		format string
	)

	cmd := &cobra.Command{
		Use:   "assign [scene]",
		Short: "Assign sort orders and print them",
		Long: `Assign sort orders to every renderer in a scene file and print them.

The scene is loaded from JSON, TOML, or YAML (chosen by file extension), every
sorting group is reconciled, and one assignment pass runs from each enabled
root group. Renderers are listed by sorting layer, highest order first, so
the table reads from front to back.

Use --format json for machine-readable output.`,
		Example: `  sortgroup assign level.yaml
  sortgroup assign level.json --format json --mode isometric`,
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
			return c.runAssign(cmd.Context(), args[0], opts, format)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", config.FormatTable, "output format: table, json")

	return cmd
}

// runAssign loads the scene, assigns orders, and prints them.
func (c *CLI) runAssign(ctx context.Context, input string, opts pipeline.Options, format string) error {
	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(loggerFromContext(ctx))
	res, err := runner.Execute(ctx, input, opts)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Assigned %d sort orders", res.Stats.Written()))

	if err := printOrders(c.out, res, format, opts.Detailed); err != nil {
		return err
	}
	if format == config.FormatTable {
		fmt.Fprintln(c.out)
		printNextStep(c.out, "Render the group tree", appName+" visualize "+input)
	}
	return nil
}

// printOrders writes a run's orders as JSON or as a table with a stats line.
func printOrders(w io.Writer, res *pipeline.Result, format string, detailed bool) error {
	if format == config.FormatJSON {
		return sgio.WriteOrders(w, res.Scene.World)
	}
	if len(res.Orders) == 0 {
		printInfo(w, "Scene has no renderers")
	} else {
		fmt.Fprintln(w, orderTable(res.Orders, detailed))
	}
	printStats(w, res.Stats.Renderers, res.Stats.Groups, res.Stats.Written(), res.CacheHit)
	return nil
}
