// Package apperr defines the sentinel errors shared across drifty components.
package apperr

import "errors"

var (
	// ErrNoMatch is returned when a path spec resolves to nothing: a glob
	// with zero matches or a literal path that does not exist.
	ErrNoMatch = errors.New("matches no files")

	// ErrNoProjectRoot is returned when a $ROOT/ spec is used but no
	// repository marker directory is found walking up from the document.
	ErrNoProjectRoot = errors.New("no project root")

	// ErrAlreadyInitialized is returned by init when the document already
	// carries a driftwatcher key.
	ErrAlreadyInitialized = errors.New("driftwatcher already initialized")

	// ErrNotInitialized is returned by add when the document has no
	// driftwatcher key yet.
	ErrNotInitialized = errors.New("driftwatcher not initialized")

	// ErrAlreadyTracked is returned by add when the pattern is already
	// present in the document's frontmatter.
	ErrAlreadyTracked = errors.New("pattern already tracked")

	// ErrTargetUnresolvable is returned by add when the watch target
	// cannot be resolved at the moment the entry is created.
	ErrTargetUnresolvable = errors.New("target unresolvable")

	// ErrNotMarkdown is returned when a scan target file is not a
	// markdown document.
	ErrNotMarkdown = errors.New("not a markdown file")
)
