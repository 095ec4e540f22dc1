package vcs

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/tanakamasayuki/kicad-diff-visualizer/pkg/errors"
)

// Git extracts files from the working tree and from git history.
//
// Historical content is retrieved by shelling out to `git show`, never
// through a porcelain wrapper: the diff must be computed on byte-identical
// input, and convenience APIs that normalize line endings on retrieval
// would silently change the bytes.
type Git struct {
	// projDir is the KiCad project directory (where the design files live).
	projDir string
	// root is the top-level directory of the repository containing projDir.
	root string
}

// NewGit creates a Git extractor for the project at projDir. The repository
// root is discovered with `git rev-parse --show-toplevel`, which works for
// both regular checkouts and worktrees.
func NewGit(projDir string) (*Git, error) {
	out, err := runGit(projDir, "rev-parse", "--show-toplevel")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeExtraction, err, "%s is not inside a git repository", projDir)
	}
	return &Git{projDir: projDir, root: strings.TrimSpace(string(out))}, nil
}

// Root returns the repository's top-level directory.
func (g *Git) Root() string {
	return g.root
}

// ExtractWorkingTree copies the live file at relName (relative to the
// project directory) byte-for-byte to dst.
func (g *Git) ExtractWorkingTree(relName, dst string) error {
	src := filepath.Join(g.projDir, relName)
	data, err := os.ReadFile(src)
	if err != nil {
		return errors.Wrap(errors.ErrCodeExtraction, err, "read working tree file %s", src)
	}
	if err := os.WriteFile(dst, data, 0644); err != nil {
		return errors.Wrap(errors.ErrCodeExtraction, err, "write %s", dst)
	}
	return nil
}

// ExtractRef writes the content of relName at the given git reference to
// dst, verbatim including line endings.
func (g *Git) ExtractRef(ref, relName, dst string) error {
	abs := filepath.Join(g.projDir, relName)
	relToRoot, err := filepath.Rel(g.root, abs)
	if err != nil {
		return errors.Wrap(errors.ErrCodeExtraction, err, "compute repository path for %s", abs)
	}
	// git object paths always use forward slashes.
	spec := ref + ":" + filepath.ToSlash(relToRoot)

	data, err := runGit(g.root, "show", spec)
	if err != nil {
		return errors.Wrap(errors.ErrCodeRefNotFound, err, "git show %s", spec)
	}
	if err := os.WriteFile(dst, data, 0644); err != nil {
		return errors.Wrap(errors.ErrCodeExtraction, err, "write %s", dst)
	}
	return nil
}

// runGit executes a git command in dir and returns its raw stdout bytes.
// Stdout and stderr are captured separately so error messages carry the
// diagnostics without polluting the payload.
func runGit(dir string, args ...string) ([]byte, error) {
	fullArgs := append([]string{"-C", dir}, args...)
	cmd := exec.Command("git", fullArgs...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := "git " + strings.Join(args, " ") + " failed"
		if s := strings.TrimSpace(stderr.String()); s != "" {
			msg += ": " + s
		}
		return nil, errors.Wrap(errors.ErrCodeExtraction, err, "%s", msg)
	}
	return stdout.Bytes(), nil
}
