// Package diff orchestrates the version-to-composite pipeline.
//
// A diff request names two versions and one object (a board layer or a
// schematic sheet). The orchestrator materializes the design file for both
// versions into per-version scratch directories, renders any missing SVG
// artifacts through the external renderer, and composes the two renders
// into one overlaid image.
package diff

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/tanakamasayuki/kicad-diff-visualizer/internal/project"
	"github.com/tanakamasayuki/kicad-diff-visualizer/pkg/cache"
	"github.com/tanakamasayuki/kicad-diff-visualizer/pkg/errors"
	"github.com/tanakamasayuki/kicad-diff-visualizer/pkg/render"
	"github.com/tanakamasayuki/kicad-diff-visualizer/pkg/sheet"
	"github.com/tanakamasayuki/kicad-diff-visualizer/pkg/svg"
	"github.com/tanakamasayuki/kicad-diff-visualizer/pkg/vcs"
)

// RootElementID is the id attribute injected into every composite so the
// HTML page can address the image.
const RootElementID = "overlayed_svg"

// Extractor materializes one version of a project file at a destination
// path. *vcs.Repo is the production implementation.
type Extractor interface {
	Extract(id vcs.SourceID, relName, dst string) error
}

// Exporter renders a design file into SVG artifacts. *render.Renderer is
// the production implementation.
type Exporter interface {
	ExportSVGs(dstDir string, mode render.Mode, filePath string, layers []string) error
}

// Orchestrator wires the version resolver, the sheet scanner, the external
// renderer and the overlay engine together for one project.
type Orchestrator struct {
	project  *project.Project
	repo     Extractor
	renderer Exporter
	engine   *svg.Engine
	store    *cache.Store
	scratch  string
	layers   []string
	logger   *log.Logger
}

// New creates an orchestrator. scratch is the per-process scratch directory
// acting as the render cache; layers is the configured board layer list.
func New(p *project.Project, repo Extractor, renderer Exporter,
	store *cache.Store, scratch string, layers []string, logger *log.Logger) *Orchestrator {
	if store == nil {
		store = cache.NewStore()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Orchestrator{
		project:  p,
		repo:     repo,
		renderer: renderer,
		engine:   svg.NewEngine(logger),
		store:    store,
		scratch:  scratch,
		layers:   layers,
		logger:   logger,
	}
}

// Layers returns the configured board layer list.
func (o *Orchestrator) Layers() []string {
	return o.layers
}

// IsLayer reports whether obj names a board layer (as opposed to a sheet).
func (o *Orchestrator) IsLayer(obj string) bool {
	return slices.Contains(o.layers, obj)
}

// Objects returns every diffable object: the configured board layers,
// followed by the stems of all schematic sheets (descendants first, top
// sheet last) when the project has a schematic.
func (o *Orchestrator) Objects() ([]string, error) {
	objects := slices.Clone(o.layers)
	if !o.project.HasSch() {
		return objects, nil
	}

	sheets, err := sheet.Descendants(o.project.Sch)
	if err != nil {
		return nil, err
	}
	for _, sh := range sheets {
		objects = append(objects, stem(sh.File))
	}
	return append(objects, stem(o.project.Sch)), nil
}

// ComposeDiff produces the composite SVG for obj between the two versions.
// Both artifacts are rendered on demand; everything already materialized in
// the scratch directory is reused as-is.
func (o *Orchestrator) ComposeDiff(base, target vcs.SourceID, obj string) (string, error) {
	mode := render.ModeSch
	filePath := o.project.Sch
	if o.IsLayer(obj) {
		mode = render.ModePCB
		filePath = o.project.PCB
	}
	if filePath == "" {
		return "", errors.New(errors.ErrCodeNotFound, "project has no %s file", mode)
	}

	o.logger.Debug("compose diff",
		"obj", obj, "mode", string(mode), "base", base.String(), "target", target.String())

	baseDir := filepath.Join(o.scratch, base.String())
	targetDir := filepath.Join(o.scratch, target.String())

	fileName := filepath.Base(filePath)
	if err := o.repo.Extract(base, fileName, filepath.Join(baseDir, fileName)); err != nil {
		return "", err
	}
	if err := o.repo.Extract(target, fileName, filepath.Join(targetDir, fileName)); err != nil {
		return "", err
	}

	if mode == render.ModeSch {
		// Sub-sheet schematics must be present next to the top sheet or the
		// renderer emits empty SVGs for the hierarchical sheets.
		sheets, err := sheet.Descendants(o.project.Sch)
		if err != nil {
			return "", err
		}
		for _, sh := range sheets {
			if err := o.repo.Extract(base, sh.File, filepath.Join(baseDir, sh.File)); err != nil {
				return "", err
			}
			if err := o.repo.Extract(target, sh.File, filepath.Join(targetDir, sh.File)); err != nil {
				return "", err
			}
		}
	}

	baseArtifact := o.artifactPath(baseDir, mode, fileName, obj)
	targetArtifact := o.artifactPath(targetDir, mode, fileName, obj)

	if err := o.renderIfAbsent(baseArtifact, baseDir, mode, fileName); err != nil {
		return "", err
	}
	if err := o.renderIfAbsent(targetArtifact, targetDir, mode, fileName); err != nil {
		return "", err
	}

	baseSVG, err := os.ReadFile(baseArtifact)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeRenderer, err, "read rendered artifact %s", baseArtifact)
	}
	targetSVG, err := os.ReadFile(targetArtifact)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeRenderer, err, "read rendered artifact %s", targetArtifact)
	}

	composite, err := o.engine.ComposeOverlay(string(baseSVG), string(targetSVG), false)
	if err != nil {
		return "", err
	}
	return svg.WithRootID(composite, RootElementID)
}

// artifactPath returns the deterministic location of one rendered SVG under
// a version's scratch directory.
func (o *Orchestrator) artifactPath(verDir string, mode render.Mode, fileName, obj string) string {
	if mode == render.ModePCB {
		return filepath.Join(verDir, string(mode), render.LayerArtifactName(fileName, obj))
	}
	return filepath.Join(verDir, string(mode), obj+".svg")
}

// renderIfAbsent invokes the renderer for a version unless the requested
// artifact already exists. Renders for the same artifact are serialized by
// the store, so concurrent requests share one renderer run.
func (o *Orchestrator) renderIfAbsent(artifact, verDir string, mode render.Mode, fileName string) error {
	return o.store.Once(artifact, func() error {
		return o.renderer.ExportSVGs(filepath.Join(verDir, string(mode)), mode,
			filepath.Join(verDir, fileName), o.layers)
	})
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
