package vcs

import (
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/tanakamasayuki/kicad-diff-visualizer/pkg/cache"
	"github.com/tanakamasayuki/kicad-diff-visualizer/pkg/errors"
)

// Repo is the version resolver: it dispatches extraction to the source a
// SourceID names and memoizes results by destination path.
type Repo struct {
	git     *Git
	backups *Backups
	store   *cache.Store
	logger  *log.Logger
}

// NewRepo combines the git and backup extractors behind one memoizing
// facade. A nil store gets a fresh one; a nil logger falls back to
// log.Default().
func NewRepo(git *Git, backups *Backups, store *cache.Store, logger *log.Logger) *Repo {
	if store == nil {
		store = cache.NewStore()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Repo{git: git, backups: backups, store: store, logger: logger}
}

// Extract materializes the file relName of the version id at dst.
//
// A destination that already exists is returned immediately without
// re-extraction or content validation: the scratch directory acts as a
// process-lifetime cache keyed by path. Concurrent extractions of the same
// destination are serialized by the store. Parent directories of dst are
// created on demand.
func (r *Repo) Extract(id SourceID, relName, dst string) error {
	r.logger.Debug("extract", "version", id.String(), "file", relName, "dst", dst)

	return r.store.Once(dst, func() error {
		if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
			return errors.Wrap(errors.ErrCodeExtraction, err, "create directory for %s", dst)
		}

		switch id.Kind() {
		case WorkingTree:
			return r.git.ExtractWorkingTree(relName, dst)
		case HistoryRef:
			return r.git.ExtractRef(id.Ref(), relName, dst)
		case BackupLabel:
			if r.backups == nil {
				return errors.New(errors.ErrCodeRefNotFound,
					"no project descriptor, backup %s is not addressable", id.Ref())
			}
			return r.backups.Extract(id.Ref(), relName, dst)
		default:
			return errors.New(errors.ErrCodeInternal, "unknown source kind %d", id.Kind())
		}
	})
}
