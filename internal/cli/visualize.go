package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/sortgroup/pkg/pipeline"
	"github.com/matzehuels/sortgroup/pkg/sorting"
)

// visualizeCommand creates the visualize command for rendering group trees.
func (c *CLI) visualizeCommand() *cobra.Command {
	var (
		flags      sceneFlags
		formatsStr string
		output     string
		roots      []string
		pick       bool
		groupsOnly bool
		refresh    bool
		scale      float64
	)

	cmd := &cobra.Command{
		Use:   "visualize [scene]",
		Short: "Render sorting group trees",
		Long: `Render the sorting group trees of a scene after one assignment pass.

Each group points at its members in member-list order, left to right, so the
leftmost child draws on top. Renderers show their assigned sort order.

Formats: dot (Graphviz source), svg, pdf, png (pdf and png need
rsvg-convert), and json (the assigned orders). Results are cached locally
until the scene file changes.`,
		Example: `  sortgroup visualize level.yaml
  sortgroup visualize level.yaml -f svg,png --root ui --detailed
  sortgroup visualize level.yaml --pick -o -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.sceneOptions(cmd, &flags)
			if err != nil {
				return err
			}
			opts.Formats = pipeline.ParseFormats(formatsStr)
			if len(opts.Formats) == 0 {
				opts.Formats = []string{pipeline.FormatSVG}
			}
			opts.Roots = roots
			opts.GroupsOnly = groupsOnly
			opts.Refresh = refresh
			opts.Scale = scale
			if err := opts.Validate(); err != nil {
				return err
			}

			if pick {
				id, ok, err := c.pickGroup(cmd.Context(), args[0], opts)
				if err != nil || !ok {
					return err
				}
				opts.Roots = []string{id}
			}
			return c.runVisualize(cmd.Context(), args[0], opts, output)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), dot, pdf, png, json (comma-separated)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format), base path (multiple), or - for stdout")
	cmd.Flags().StringSliceVar(&roots, "root", nil, "render only the tree below these group node IDs")
	cmd.Flags().BoolVar(&pick, "pick", false, "choose the group to render interactively")
	cmd.Flags().BoolVar(&groupsOnly, "groups-only", false, "leave renderers out of the diagram")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "ignore cached artifacts")
	cmd.Flags().Float64Var(&scale, "scale", pipeline.DefaultScale, "PNG scale factor")
	cmd.MarkFlagsMutuallyExclusive("pick", "root")

	return cmd
}

// pickGroup loads the scene and lets the user choose a group. The bool is
// false when the picker was closed without a choice.
func (c *CLI) pickGroup(ctx context.Context, input string, opts pipeline.Options) (string, bool, error) {
	opts.Formats = nil
	res, err := pipeline.NewRunner(nil, nil, c.Logger).Execute(ctx, input, opts)
	if err != nil {
		return "", false, err
	}

	final, err := tea.NewProgram(NewGroupListModel(res.Scene.World), tea.WithContext(ctx)).Run()
	if err != nil {
		return "", false, fmt.Errorf("group picker: %w", err)
	}
	g := selectedGroup(final)
	if g == nil {
		printInfo(c.out, "No group selected")
		return "", false, nil
	}
	return string(g.Node()), true, nil
}

func selectedGroup(m tea.Model) *sorting.Group {
	if list, ok := m.(GroupListModel); ok {
		return list.Selected
	}
	return nil
}

// runVisualize renders the scene and writes one file per format.
func (c *CLI) runVisualize(ctx context.Context, input string, opts pipeline.Options, output string) error {
	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Rendering group tree...")
	spinner.Start()
	res, err := runner.Execute(ctx, input, opts)
	if err != nil {
		spinner.StopWithError("Visualization failed")
		return err
	}
	spinner.Stop()

	paths, err := c.writeArtifacts(res.Artifacts, opts.Formats, input, output)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return nil
	}
	printSuccess(c.out, "Rendered %d group tree artifact(s)", len(paths))
	for _, p := range paths {
		printFile(c.out, p)
	}
	printStats(c.out, res.Stats.Renderers, res.Stats.Groups, res.Stats.Written(), res.CacheHit)
	return nil
}
