package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tanakamasayuki/kicad-diff-visualizer/pkg/svg"
)

// overlayCommand creates the overlay command: compose two SVG files into a
// single red/cyan diff image on stdout.
func (c *CLI) overlayCommand() *cobra.Command {
	var onlySVGTag bool

	cmd := &cobra.Command{
		Use:   "overlay OLD.svg NEW.svg",
		Short: "Overlay two SVG files into one diff image",
		Long: `Overlay recolors OLD.svg red and NEW.svg cyan and stacks them in a
single SVG written to stdout. Geometry only present in OLD shows red,
geometry only present in NEW shows cyan, unchanged geometry blends dark.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			oldSVG, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			newSVG, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}

			composite, err := svg.NewEngine(c.Logger).ComposeOverlay(string(oldSVG), string(newSVG), onlySVGTag)
			if err != nil {
				return err
			}
			fmt.Println(composite)
			return nil
		},
	}

	cmd.Flags().BoolVar(&onlySVGTag, "only-svg-tag", false,
		"start the output at the <svg> tag, without xml or doctype declarations")

	return cmd
}
