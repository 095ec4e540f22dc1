package diff

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/tanakamasayuki/kicad-diff-visualizer/internal/project"
	kerrors "github.com/tanakamasayuki/kicad-diff-visualizer/pkg/errors"
	"github.com/tanakamasayuki/kicad-diff-visualizer/pkg/render"
	"github.com/tanakamasayuki/kicad-diff-visualizer/pkg/vcs"
)

// fakeExtractor records extractions and writes a placeholder design file.
type fakeExtractor struct {
	calls []string
}

func (f *fakeExtractor) Extract(id vcs.SourceID, relName, dst string) error {
	f.calls = append(f.calls, id.String()+":"+relName)
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	return os.WriteFile(dst, []byte("(kicad_pcb)"), 0644)
}

// fakeExporter writes one well-formed SVG per expected artifact, tagging the
// body with the version directory so composites can be inspected.
type fakeExporter struct {
	layers []string
	sheets []string
	runs   int
}

func (f *fakeExporter) ExportSVGs(dstDir string, mode render.Mode, filePath string, layers []string) error {
	f.runs++
	if err := os.MkdirAll(dstDir, 0755); err != nil {
		return err
	}
	version := filepath.Base(filepath.Dir(dstDir))

	var names []string
	if mode == render.ModePCB {
		for _, layer := range f.layers {
			names = append(names, render.LayerArtifactName(filePath, layer))
		}
	} else {
		for _, sh := range f.sheets {
			names = append(names, sh+".svg")
		}
	}
	for _, name := range names {
		doc := fmt.Sprintf("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n"+
			"<svg xmlns=\"http://www.w3.org/2000/svg\" width=\"10\" height=\"10\">\n"+
			"<path d=\"M0 0\" data-version=\"%s\"/>\n</svg>\n", version)
		if err := os.WriteFile(filepath.Join(dstDir, name), []byte(doc), 0644); err != nil {
			return err
		}
	}
	return nil
}

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func pcbProject(t *testing.T) *project.Project {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "board.kicad_pcb")
	if err := os.WriteFile(path, []byte("(kicad_pcb)"), 0644); err != nil {
		t.Fatal(err)
	}
	return &project.Project{Dir: dir, PCB: path}
}

func schProject(t *testing.T) *project.Project {
	t.Helper()
	dir := t.TempDir()
	top := `(kicad_sch
  (sheet
    (property "Sheetname" "Sub Block" (at 0 0 0))
    (property "Sheetfile" "sub.kicad_sch" (at 0 0 0))
  )
)`
	topPath := filepath.Join(dir, "top.kicad_sch")
	if err := os.WriteFile(topPath, []byte(top), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "sub.kicad_sch"), []byte("(kicad_sch)"), 0644); err != nil {
		t.Fatal(err)
	}
	return &project.Project{Dir: dir, Sch: topPath}
}

func TestComposeDiffLayer(t *testing.T) {
	layers := []string{"F.Cu", "B.Cu"}
	extractor := &fakeExtractor{}
	exporter := &fakeExporter{layers: layers}

	o := New(pcbProject(t), extractor, exporter, nil, t.TempDir(), layers, quietLogger())

	base := vcs.ParseSourceID("HEAD")
	composite, err := o.ComposeDiff(base, vcs.WorkingTreeID(), "F.Cu")
	if err != nil {
		t.Fatalf("ComposeDiff: %v", err)
	}

	for _, want := range []string{
		`id="overlayed_svg"`,
		`<g id="bottom-g">`,
		`<g id="top-g" style="mix-blend-mode:normal;">`,
		`data-version="HEAD"`,
		`data-version="WORK"`,
		"fill:#ff0000",
		"fill:#00ffff",
	} {
		if !strings.Contains(composite, want) {
			t.Errorf("composite missing %q", want)
		}
	}
	if strings.Index(composite, `data-version="HEAD"`) > strings.Index(composite, `data-version="WORK"`) {
		t.Error("base version should be composed below the target version")
	}
	if exporter.runs != 2 {
		t.Errorf("exporter runs = %d, want 2", exporter.runs)
	}
}

func TestComposeDiffReusesArtifacts(t *testing.T) {
	layers := []string{"F.Cu", "B.Cu"}
	exporter := &fakeExporter{layers: layers}
	o := New(pcbProject(t), &fakeExtractor{}, exporter, nil, t.TempDir(), layers, quietLogger())

	base := vcs.ParseSourceID("HEAD")
	if _, err := o.ComposeDiff(base, vcs.WorkingTreeID(), "F.Cu"); err != nil {
		t.Fatalf("first ComposeDiff: %v", err)
	}
	// The first run produced every layer, so a second layer needs no render.
	if _, err := o.ComposeDiff(base, vcs.WorkingTreeID(), "B.Cu"); err != nil {
		t.Fatalf("second ComposeDiff: %v", err)
	}
	if exporter.runs != 2 {
		t.Errorf("exporter runs = %d, want 2 (artifacts reused)", exporter.runs)
	}
}

func TestComposeDiffSheet(t *testing.T) {
	layers := []string{"F.Cu"}
	extractor := &fakeExtractor{}
	exporter := &fakeExporter{layers: layers, sheets: []string{"top", "sub"}}
	o := New(schProject(t), extractor, exporter, nil, t.TempDir(), layers, quietLogger())

	base := vcs.ParseSourceID("HEAD")
	composite, err := o.ComposeDiff(base, vcs.WorkingTreeID(), "sub")
	if err != nil {
		t.Fatalf("ComposeDiff: %v", err)
	}
	if !strings.Contains(composite, `id="overlayed_svg"`) {
		t.Error("composite missing root id")
	}

	// Sub-sheets must be materialized for both versions alongside the top
	// sheet so hierarchical rendering sees them.
	for _, want := range []string{"HEAD:sub.kicad_sch", "WORK:sub.kicad_sch"} {
		found := false
		for _, call := range extractor.calls {
			if call == want {
				found = true
			}
		}
		if !found {
			t.Errorf("extractor calls %v missing %q", extractor.calls, want)
		}
	}
}

func TestComposeDiffMissingFile(t *testing.T) {
	// A schematic-only project cannot diff board layers.
	o := New(schProject(t), &fakeExtractor{}, &fakeExporter{}, nil, t.TempDir(),
		[]string{"F.Cu"}, quietLogger())

	_, err := o.ComposeDiff(vcs.WorkingTreeID(), vcs.WorkingTreeID(), "F.Cu")
	if err == nil {
		t.Fatal("expected error for layer diff without a board file")
	}
	if !kerrors.NotFound(err) {
		t.Errorf("expected a not-found error, got %v", err)
	}
}

func TestObjects(t *testing.T) {
	layers := []string{"F.Cu", "B.Cu"}
	o := New(schProject(t), &fakeExtractor{}, &fakeExporter{}, nil, t.TempDir(), layers, quietLogger())

	objects, err := o.Objects()
	if err != nil {
		t.Fatalf("Objects: %v", err)
	}
	want := []string{"F.Cu", "B.Cu", "sub", "top"}
	if len(objects) != len(want) {
		t.Fatalf("objects = %v, want %v", objects, want)
	}
	for i := range want {
		if objects[i] != want[i] {
			t.Errorf("objects[%d] = %q, want %q", i, objects[i], want[i])
		}
	}
}

func TestObjectsPCBOnly(t *testing.T) {
	layers := []string{"F.Cu"}
	o := New(pcbProject(t), &fakeExtractor{}, &fakeExporter{}, nil, t.TempDir(), layers, quietLogger())

	objects, err := o.Objects()
	if err != nil {
		t.Fatalf("Objects: %v", err)
	}
	if len(objects) != 1 || objects[0] != "F.Cu" {
		t.Errorf("objects = %v, want [F.Cu]", objects)
	}
}

func TestIsLayer(t *testing.T) {
	o := New(pcbProject(t), &fakeExtractor{}, &fakeExporter{}, nil, t.TempDir(),
		[]string{"F.Cu", "Edge.Cuts"}, quietLogger())

	if !o.IsLayer("F.Cu") {
		t.Error("F.Cu should be a layer")
	}
	if o.IsLayer("top") {
		t.Error("top should not be a layer")
	}
}
