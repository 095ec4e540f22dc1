package vcs

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tanakamasayuki/kicad-diff-visualizer/pkg/errors"
)

// Backups extracts files from KiCad's dated backup archives.
//
// KiCad stores backups as zip files under <project>-backups/, named
// <project>-<label>.zip where <project> is the stem of the .kicad_pro
// descriptor and <label> is a timestamp like 2025-07-19_113432. Entries
// keep their original relative names.
type Backups struct {
	projDir    string
	proStem    string
	backupsDir string
}

// NewBackups creates a Backups extractor for the project at projDir.
// The single project descriptor (*.kicad_pro) in the directory determines
// the archive naming scheme.
func NewBackups(projDir string) (*Backups, error) {
	matches, err := filepath.Glob(filepath.Join(projDir, "*.kicad_pro"))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeProjectNotFound, err, "scan %s", projDir)
	}
	if len(matches) == 0 {
		return nil, errors.New(errors.ErrCodeProjectNotFound, "no .kicad_pro file in %s", projDir)
	}

	stem := strings.TrimSuffix(filepath.Base(matches[0]), ".kicad_pro")
	return &Backups{
		projDir:    projDir,
		proStem:    stem,
		backupsDir: filepath.Join(projDir, stem+"-backups"),
	}, nil
}

// ArchivePath returns the path of the backup archive for a label.
func (b *Backups) ArchivePath(label string) string {
	return filepath.Join(b.backupsDir, fmt.Sprintf("%s-%s.zip", b.proStem, label))
}

// Extract copies the archive entry named relName from the labeled backup
// to dst, verbatim.
func (b *Backups) Extract(label, relName, dst string) error {
	archive := b.ArchivePath(label)
	zr, err := zip.OpenReader(archive)
	if err != nil {
		return errors.Wrap(errors.ErrCodeRefNotFound, err, "open backup archive %s", archive)
	}
	defer zr.Close()

	entry, err := zr.Open(relName)
	if err != nil {
		return errors.Wrap(errors.ErrCodeArchiveEntryNotFound, err,
			"no entry %s in %s", relName, filepath.Base(archive))
	}
	defer entry.Close()

	out, err := os.Create(dst)
	if err != nil {
		return errors.Wrap(errors.ErrCodeExtraction, err, "create %s", dst)
	}
	defer out.Close()

	if _, err := io.Copy(out, entry); err != nil {
		return errors.Wrap(errors.ErrCodeExtraction, err, "extract %s", relName)
	}
	return nil
}
