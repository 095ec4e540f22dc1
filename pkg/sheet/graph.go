package sheet

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/tanakamasayuki/kicad-diff-visualizer/pkg/errors"
)

// ToDOT converts the sheet hierarchy rooted at path to Graphviz DOT format.
// Nodes are keyed by file path so a sheet included from two parents appears
// once with two incoming edges. The resulting DOT string can be rendered
// with [RenderSVG].
func ToDOT(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeExtraction, err, "resolve %s", path)
	}

	var buf bytes.Buffer
	buf.WriteString("digraph sheets {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("\n")

	root := filepath.Base(abs)
	fmt.Fprintf(&buf, "  %q [label=%q];\n", root, strings.TrimSuffix(root, filepath.Ext(root)))

	if err := dotEdges(&buf, abs, root, []string{abs}); err != nil {
		return "", err
	}

	buf.WriteString("}\n")
	return buf.String(), nil
}

func dotEdges(buf *bytes.Buffer, path, parentID string, visiting []string) error {
	children, err := DirectChildren(path)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	for _, child := range children {
		fmt.Fprintf(buf, "  %q [label=%q];\n", child.File, child.Name)
		fmt.Fprintf(buf, "  %q -> %q;\n", parentID, child.File)

		childPath := filepath.Clean(filepath.Join(dir, child.File))
		if slices.Contains(visiting, childPath) {
			return errors.New(errors.ErrCodeStructuralParse,
				"sheet reference cycle through %s", child.File)
		}
		if err := dotEdges(buf, childPath, child.File, append(visiting, childPath)); err != nil {
			return err
		}
	}
	return nil
}

// RenderSVG renders a DOT graph to SVG using Graphviz in-process.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the Graphviz <svg> tag so the image scales from
// origin with explicit pixel dimensions.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
