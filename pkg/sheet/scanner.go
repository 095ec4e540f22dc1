// Package sheet discovers the hierarchical sheet structure of a KiCad
// schematic without parsing the full s-expression grammar.
//
// A schematic references its sub-sheets through (sheet ...) blocks whose
// "Sheetname" and "Sheetfile" properties name the child document. The
// scanner walks the raw text with a cursor, matching the fixed tokens the
// format guarantees, which is enough to materialize every file the external
// renderer needs.
package sheet

import (
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"unicode"

	"github.com/tanakamasayuki/kicad-diff-visualizer/pkg/errors"
)

const (
	// docMarker must open every schematic document.
	docMarker = "(kicad_sch"

	// sheetToken opens a child-sheet block. The token must be followed by
	// whitespace so that longer tokens sharing the prefix, like
	// "(sheet_instances", are not mistaken for sheet blocks.
	sheetToken = "(sheet"
)

// propertyRe matches one name/value property pair inside a sheet block.
var propertyRe = regexp.MustCompile(`\(property\s+"([^"]+)"\s+"([^"]+)"`)

// Ref is one child sheet discovered in a parent schematic: its display name
// and its file path relative to the parent document's directory.
type Ref struct {
	Name string
	File string
}

// cursor walks a schematic source string.
type cursor struct {
	src string
	pos int
}

// nextSheetBlock advances to the next accepted (sheet ...) block and returns
// its property span [start, end). ok is false when no further block exists.
// An opened block whose parentheses never balance is a structural error.
func (c *cursor) nextSheetBlock() (start, end int, ok bool, err error) {
	for c.pos < len(c.src) {
		i := strings.Index(c.src[c.pos:], sheetToken)
		if i < 0 {
			return 0, 0, false, nil
		}
		c.pos += i + len(sheetToken)
		if c.pos >= len(c.src) {
			return 0, 0, false, nil
		}
		if !unicode.IsSpace(rune(c.src[c.pos])) {
			// A longer token such as "(sheet_instances"; keep scanning.
			continue
		}

		start = c.pos
		depth := 1
		for j := start; j < len(c.src); j++ {
			switch c.src[j] {
			case '(':
				depth++
			case ')':
				depth--
			}
			if depth == 0 {
				// Resume strictly after the closed block; blocks nested in
				// its byte range are reached through recursion on the child
				// file, not through this scan.
				c.pos = j + 1
				return start, j, true, nil
			}
		}
		return 0, 0, false, errors.New(errors.ErrCodeStructuralParse, "sheet block is not closed")
	}
	return 0, 0, false, nil
}

// scan extracts every child reference from schematic source text, in
// left-to-right order of the accepted sheet blocks.
func scan(src string) ([]Ref, error) {
	if !strings.HasPrefix(src, docMarker) {
		return nil, errors.New(errors.ErrCodeStructuralParse, "document does not start with %s", docMarker)
	}

	var refs []Ref
	c := &cursor{src: src}
	for {
		start, end, ok, err := c.nextSheetBlock()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}

		var name, file string
		var hasName, hasFile bool
		for _, m := range propertyRe.FindAllStringSubmatch(src[start:end], -1) {
			switch m[1] {
			case "Sheetname", "Sheet name":
				name, hasName = m[2], true
			case "Sheetfile", "Sheet file":
				file, hasFile = m[2], true
			}
		}
		if !hasName || !hasFile {
			return nil, errors.New(errors.ErrCodeStructuralParse,
				`no "Sheetname" or "Sheetfile" in sheet object`)
		}
		refs = append(refs, Ref{Name: name, File: file})
	}
	return refs, nil
}

// DirectChildren returns the child sheets referenced directly by the
// schematic at path, in document order. It does not recurse.
func DirectChildren(path string) ([]Ref, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeExtraction, err, "read schematic %s", path)
	}
	return scan(string(src))
}

// Descendants returns every sheet reachable from the schematic at path,
// depth-first: each direct child is appended, then its own descendants,
// before the next sibling. File paths in the result stay relative to their
// own parent's directory, matching how the documents reference each other.
//
// A sheet graph that references one of its ancestors is reported as a
// structural error instead of recursing forever. Diamond-shaped graphs are
// not deduplicated; a sheet included twice is listed twice.
func Descendants(path string) ([]Ref, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeExtraction, err, "resolve %s", path)
	}
	return descend(abs, []string{abs})
}

func descend(path string, visiting []string) ([]Ref, error) {
	children, err := DirectChildren(path)
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(path)
	var refs []Ref
	for _, child := range children {
		refs = append(refs, child)

		childPath := filepath.Clean(filepath.Join(dir, child.File))
		if slices.Contains(visiting, childPath) {
			return nil, errors.New(errors.ErrCodeStructuralParse,
				"sheet reference cycle through %s", child.File)
		}
		sub, err := descend(childPath, append(visiting, childPath))
		if err != nil {
			return nil, err
		}
		refs = append(refs, sub...)
	}
	return refs, nil
}
