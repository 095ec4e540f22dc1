package render

import (
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/charmbracelet/log"

	kerrors "github.com/tanakamasayuki/kicad-diff-visualizer/pkg/errors"
)

func TestLayerArtifactName(t *testing.T) {
	tests := []struct {
		pcb   string
		layer string
		want  string
	}{
		{"sample.kicad_pcb", "F.Cu", "sample-F_Cu.svg"},
		{"sample.kicad_pcb", "Edge.Cuts", "sample-Edge_Cuts.svg"},
		{"/path/to/board.kicad_pcb", "B.Silkscreen", "board-B_Silkscreen.svg"},
	}
	for _, tt := range tests {
		if got := LayerArtifactName(tt.pcb, tt.layer); got != tt.want {
			t.Errorf("LayerArtifactName(%q, %q) = %q, want %q", tt.pcb, tt.layer, got, tt.want)
		}
	}
}

func newTestRenderer(cli string) *Renderer {
	return New(cli, log.New(io.Discard))
}

// writeStub writes an executable shell script standing in for kicad-cli.
func writeStub(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub renderer requires a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "kicad-cli")
	script := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(path, []byte(script), 0755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestExportSVGsFailure(t *testing.T) {
	cli := writeStub(t, "exit 3")
	r := newTestRenderer(cli)

	err := r.ExportSVGs(t.TempDir(), ModePCB, "sample.kicad_pcb", []string{"F.Cu"})
	if err == nil {
		t.Fatal("expected an error on non-zero exit")
	}
	if !kerrors.Is(err, kerrors.ErrCodeRenderer) {
		t.Errorf("error code = %q, want RENDERER_FAILED", kerrors.GetCode(err))
	}
}

func TestExportSVGsSuccess(t *testing.T) {
	cli := writeStub(t, "exit 0")
	r := newTestRenderer(cli)

	if err := r.ExportSVGs(t.TempDir(), ModePCB, "sample.kicad_pcb", []string{"F.Cu"}); err != nil {
		t.Fatalf("ExportSVGs error: %v", err)
	}
}

func TestExportSVGsCreatesOutputDir(t *testing.T) {
	cli := writeStub(t, "exit 0")
	r := newTestRenderer(cli)

	dst := filepath.Join(t.TempDir(), "WORK", "pcb")
	if err := r.ExportSVGs(dst, ModePCB, "sample.kicad_pcb", []string{"F.Cu"}); err != nil {
		t.Fatalf("ExportSVGs error: %v", err)
	}
	if _, err := os.Stat(dst); err != nil {
		t.Error("output directory should be created")
	}
}

func TestRenameSheetOutputs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"main.svg", "main-display.svg", "main-power.svg"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("<svg/>"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	r := newTestRenderer("kicad-cli")
	if err := r.renameSheetOutputs(dir, "/proj/main.kicad_sch"); err != nil {
		t.Fatalf("renameSheetOutputs error: %v", err)
	}

	for _, want := range []string{"main.svg", "display.svg", "power.svg"} {
		if _, err := os.Stat(filepath.Join(dir, want)); err != nil {
			t.Errorf("expected %s to exist", want)
		}
	}
	for _, gone := range []string{"main-display.svg", "main-power.svg"} {
		if _, err := os.Stat(filepath.Join(dir, gone)); err == nil {
			t.Errorf("%s should have been renamed away", gone)
		}
	}
}
