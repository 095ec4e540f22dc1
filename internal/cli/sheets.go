package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tanakamasayuki/kicad-diff-visualizer/pkg/sheet"
)

// sheetsCommand creates the sheets command: render a schematic's sheet
// hierarchy as an SVG graph.
func (c *CLI) sheetsCommand() *cobra.Command {
	var output string
	var dotOnly bool

	cmd := &cobra.Command{
		Use:   "sheets FILE.kicad_sch",
		Short: "Render the schematic sheet hierarchy as a graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dot, err := sheet.ToDOT(args[0])
			if err != nil {
				return err
			}
			if dotOnly {
				fmt.Print(dot)
				return nil
			}

			prog := newProgress(c.Logger)
			sp := newSpinnerWithContext(cmd.Context(), "Rendering sheet hierarchy...")
			sp.Start()
			rendered, err := sheet.RenderSVG(dot)
			sp.Stop()
			if err != nil {
				return err
			}
			prog.done("Rendered sheet hierarchy")

			if output == "" {
				fmt.Print(string(rendered))
				return nil
			}
			if err := os.WriteFile(output, rendered, 0644); err != nil {
				return err
			}
			printSuccess("Sheet hierarchy rendered")
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the SVG to a file instead of stdout")
	cmd.Flags().BoolVar(&dotOnly, "dot", false, "print the DOT graph instead of rendering it")

	return cmd
}
