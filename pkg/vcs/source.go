// Package vcs resolves an opaque version identifier plus a relative file
// name into concrete bytes on disk.
//
// Three heterogeneous sources back a version: the live working tree, git
// history, and KiCad's dated backup archives. A [SourceID] names which one,
// and [Repo] extracts from it, materializing each destination path at most
// once.
package vcs

import "regexp"

// WorkSentinel is the literal identifier that stands in for the working
// tree in request paths and scratch directory names.
const WorkSentinel = "WORK"

// backupLabelRe matches the timestamp shape of a KiCad backup label,
// e.g. "2025-07-19_113432". The match is anchored at the start only,
// mirroring how the labels are classified upstream.
var backupLabelRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}_\d{6}`)

// SourceKind discriminates the three version sources.
type SourceKind int

const (
	// WorkingTree is the live, possibly uncommitted project directory.
	WorkingTree SourceKind = iota
	// HistoryRef is a git reference (commit hash, branch, HEAD^, ...).
	HistoryRef
	// BackupLabel is a dated KiCad backup archive snapshot.
	BackupLabel
)

// SourceID identifies one version of the project. Immutable once
// constructed; build one with the constructors or [ParseSourceID].
type SourceID struct {
	kind SourceKind
	ref  string
}

// WorkingTreeID returns the identifier for the live working tree.
func WorkingTreeID() SourceID {
	return SourceID{kind: WorkingTree}
}

// HistoryRefID returns the identifier for a git reference.
func HistoryRefID(ref string) SourceID {
	return SourceID{kind: HistoryRef, ref: ref}
}

// BackupLabelID returns the identifier for a backup archive label.
func BackupLabelID(label string) SourceID {
	return SourceID{kind: BackupLabel, ref: label}
}

// ParseSourceID classifies a raw identifier string. An empty string or the
// WORK sentinel names the working tree; a token shaped like a backup label
// names a backup archive; anything else is passed opaquely to git.
func ParseSourceID(raw string) SourceID {
	switch {
	case raw == "" || raw == WorkSentinel:
		return WorkingTreeID()
	case backupLabelRe.MatchString(raw):
		return BackupLabelID(raw)
	default:
		return HistoryRefID(raw)
	}
}

// Kind returns the source discriminator.
func (id SourceID) Kind() SourceKind {
	return id.kind
}

// Ref returns the git reference or backup label, empty for the working tree.
func (id SourceID) Ref() string {
	return id.ref
}

// String returns the identifier as used in request paths and directory
// names: the WORK sentinel for the working tree, the raw token otherwise.
func (id SourceID) String() string {
	if id.kind == WorkingTree {
		return WorkSentinel
	}
	return id.ref
}
