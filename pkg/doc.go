// Package pkg provides the core libraries for kidivis KiCad diff
// visualization.
//
// # Overview
//
// Kidivis compares two versions of a KiCad design file by rendering both
// through kicad-cli and overlaying the SVGs so removed geometry shows red
// and added geometry cyan. The pkg directory is organized into these areas:
//
//  1. [vcs] - Version resolution (git working tree, git history, KiCad backup archives)
//  2. [sheet] - Schematic sheet hierarchy scanning and graphing
//  3. [render] - External kicad-cli invocation
//  4. [svg] - SVG dissection, recoloring and overlay composition
//  5. [cache] - Keyed completion store over the scratch directory
//  6. [errors] - Structured error codes shared across the packages
//
// # Architecture
//
// The typical data flow through kidivis:
//
//	SourceID (WORK, git ref, backup label)
//	         |
//	    [vcs] package (materialize both versions on disk)
//	         |
//	    [render] package (kicad-cli export svg per layer or sheet)
//	         |
//	    [svg] package (recolor and stack the two renders)
//	         |
//	    composite SVG
//
// # Quick Start
//
// Compose a diff image for one board layer:
//
//	import (
//	    "github.com/tanakamasayuki/kicad-diff-visualizer/pkg/render"
//	    "github.com/tanakamasayuki/kicad-diff-visualizer/pkg/svg"
//	)
//
//	// 1. Render both versions (one SVG per layer)
//	r := render.New("kicad-cli", nil)
//	_ = r.ExportSVGs("old/pcb", render.ModePCB, "old/board.kicad_pcb", layers)
//	_ = r.ExportSVGs("new/pcb", render.ModePCB, "new/board.kicad_pcb", layers)
//
//	// 2. Overlay the two renders
//	engine := svg.NewEngine(nil)
//	composite, _ := engine.ComposeOverlay(oldSVG, newSVG, false)
//
// The internal/diff package wires these steps together for the web server
// and resolves versions lazily per request.
package pkg
