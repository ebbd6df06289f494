package cli

import (
	"github.com/spf13/cobra"

	sgio "github.com/matzehuels/sortgroup/pkg/io"
	"github.com/matzehuels/sortgroup/pkg/sorting"
)

// convertCommand creates the convert command.
func (c *CLI) convertCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "convert [scene] [output]",
		Short: "Rewrite a scene file in another format",
		Long: `Load a scene file and write it back out, choosing both formats by file
extension (.json, .toml, .yaml, .yml).

Nodes without an ID get a generated one, and manual groups record their
current member order, so converting also normalizes a hand-written file.`,
		Example: `  sortgroup convert level.json level.yaml`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			prog := newProgress(loggerFromContext(cmd.Context()))
			s, err := sgio.Load(args[0], sgio.WithWorldOptions(sorting.WithLogger(c.Logger)))
			if err != nil {
				return err
			}
			if err := sgio.Export(s, args[1]); err != nil {
				return err
			}
			prog.done("Converted " + args[0])
			printSuccess(c.out, "Wrote %d nodes", s.Tree.Len())
			printFile(c.out, args[1])
			return nil
		},
	}
}
