// Package render drives the external kicad-cli renderer.
//
// The renderer is treated as an opaque collaborator: given a design file it
// writes one SVG per board layer (pcb mode) or one per sheet (sch mode) into
// an output directory. Invocation is blocking with no timeout and no retry;
// a failure aborts the in-flight request only.
package render

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/tanakamasayuki/kicad-diff-visualizer/pkg/errors"
)

// Mode selects the kicad-cli export subcommand.
type Mode string

const (
	// ModePCB exports board layers.
	ModePCB Mode = "pcb"
	// ModeSch exports schematic sheets.
	ModeSch Mode = "sch"
)

// Renderer invokes kicad-cli to export SVG artifacts.
type Renderer struct {
	// CLI is the path to the kicad-cli executable.
	CLI string

	logger *log.Logger
}

// New creates a Renderer for the given kicad-cli path. A nil logger falls
// back to log.Default().
func New(cli string, logger *log.Logger) *Renderer {
	if logger == nil {
		logger = log.Default()
	}
	return &Renderer{CLI: cli, logger: logger}
}

// LayerArtifactName returns the SVG file name kicad-cli produces for one
// board layer: the board file's stem plus the layer with dots replaced by
// underscores (F.Cu -> <stem>-F_Cu.svg).
func LayerArtifactName(pcbFileName, layer string) string {
	stem := strings.TrimSuffix(filepath.Base(pcbFileName), filepath.Ext(pcbFileName))
	return stem + "-" + strings.ReplaceAll(layer, ".", "_") + ".svg"
}

// ExportSVGs renders filePath into dstDir. In pcb mode one SVG per layer is
// produced; in sch mode one SVG per sheet, renamed afterwards so each sheet
// file is addressable by its own stem (see renameSheetOutputs). A non-zero
// exit from the renderer is a RENDERER_FAILED error.
func (r *Renderer) ExportSVGs(dstDir string, mode Mode, filePath string, layers []string) error {
	if err := os.MkdirAll(dstDir, 0755); err != nil {
		return errors.Wrap(errors.ErrCodeRenderer, err, "create output directory %s", dstDir)
	}

	args := []string{string(mode), "export", "svg", "--black-and-white", "--output", dstDir}
	switch mode {
	case ModePCB:
		args = append(args, "--fit-page-to-board", "--mode-multi",
			"--layers", strings.Join(layers, ","))
	case ModeSch:
		args = append(args, "--no-background-color")
	}
	args = append(args, filePath)

	r.logger.Debug("invoking renderer", "cli", r.CLI, "args", strings.Join(args, " "))

	cmd := exec.Command(r.CLI, args...)
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	if err := cmd.Run(); err != nil {
		r.logger.Error("renderer failed", "args", strings.Join(args, " "), "output", output.String())
		return errors.Wrap(errors.ErrCodeRenderer, err, "kicad-cli %s export svg %s", mode, filePath)
	}

	if mode == ModeSch {
		return r.renameSheetOutputs(dstDir, filePath)
	}
	return nil
}

// renameSheetOutputs normalizes sch export file names. kicad-cli writes
// <stem>.svg for the top sheet and <stem>-<sheet>.svg for sub-sheets; the
// top sheet keeps its name and sub-sheets are renamed to <sheet>.svg so
// both versions of a sheet land on the same artifact name.
func (r *Renderer) renameSheetOutputs(dstDir, filePath string) error {
	stem := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
	svgs, err := filepath.Glob(filepath.Join(dstDir, stem+"*.svg"))
	if err != nil {
		return errors.Wrap(errors.ErrCodeRenderer, err, "scan renderer output in %s", dstDir)
	}
	r.logger.Debug("renderer outputs", "dir", dstDir, "files", svgs)

	for _, svg := range svgs {
		name := filepath.Base(svg)
		rest := name[len(stem):]

		var newName string
		switch {
		case rest == ".svg":
			// Top sheet keeps the schematic's own stem.
			newName = name
		case strings.HasPrefix(rest, "-"):
			newName = rest[1:]
		default:
			r.logger.Warn("unknown renderer output name", "file", name)
			continue
		}
		if newName == name {
			continue
		}

		renamed := filepath.Join(dstDir, newName)
		if err := os.Rename(svg, renamed); err != nil {
			return errors.Wrap(errors.ErrCodeRenderer, err, "rename %s", svg)
		}
		r.logger.Debug("renderer output renamed", "from", svg, "to", renamed)
	}
	return nil
}
