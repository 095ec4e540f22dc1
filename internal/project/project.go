// Package project locates the KiCad project descriptor and derives the
// board and schematic paths a diff request can target.
package project

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tanakamasayuki/kicad-diff-visualizer/pkg/errors"
)

// Project describes one KiCad project on disk. PCB and Sch are empty when
// the project has no board or no schematic.
type Project struct {
	// Dir is the project directory containing the design files.
	Dir string
	// Pro is the path to the .kicad_pro descriptor, empty if none was given.
	Pro string
	// PCB is the path to the board file.
	PCB string
	// Sch is the path to the top schematic file.
	Sch string
}

// HasPCB reports whether the project has a board file.
func (p *Project) HasPCB() bool { return p.PCB != "" }

// HasSch reports whether the project has a schematic file.
func (p *Project) HasSch() bool { return p.Sch != "" }

// Discover resolves the project from command-line inputs: either a single
// project directory, or one or more .kicad_pro/.kicad_pcb/.kicad_sch files
// that all live in the same directory. Paths named by a descriptor are only
// adopted when they exist on disk.
func Discover(inputs []string) (*Project, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("no input files given")
	}

	abs := make([]string, len(inputs))
	for i, in := range inputs {
		a, err := filepath.Abs(in)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", in, err)
		}
		abs[i] = a
	}

	if len(abs) == 1 {
		if info, err := os.Stat(abs[0]); err == nil && info.IsDir() {
			return fromDir(abs[0])
		}
	}

	dir := filepath.Dir(abs[0])
	for _, f := range abs[1:] {
		if filepath.Dir(f) != dir {
			return nil, fmt.Errorf("all input files must be in the same directory")
		}
	}

	p := &Project{Dir: dir}
	for _, f := range abs {
		switch filepath.Ext(f) {
		case ".kicad_pro":
			p.Pro = f
		case ".kicad_pcb":
			p.PCB = f
		case ".kicad_sch":
			p.Sch = f
		}
	}

	if p.Pro != "" {
		pcb, sch := fromPro(p.Pro)
		if p.PCB == "" {
			p.PCB = pcb
		}
		if p.Sch == "" {
			p.Sch = sch
		}
	}
	return p, nil
}

// fromDir locates the descriptor in dir and derives the design files.
func fromDir(dir string) (*Project, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.kicad_pro"))
	if err != nil || len(matches) == 0 {
		return nil, errors.New(errors.ErrCodeProjectNotFound, "no .kicad_pro file in %s", dir)
	}
	pro := matches[0]
	pcb, sch := fromPro(pro)
	return &Project{Dir: dir, Pro: pro, PCB: pcb, Sch: sch}, nil
}

// fromPro derives the sibling board and schematic paths from a descriptor,
// returning only those that exist.
func fromPro(proPath string) (pcb, sch string) {
	stem := proPath[:len(proPath)-len(".kicad_pro")]

	get := func(ext string) string {
		p := stem + ext
		if _, err := os.Stat(p); err == nil {
			return p
		}
		return ""
	}
	return get(".kicad_pcb"), get(".kicad_sch")
}
