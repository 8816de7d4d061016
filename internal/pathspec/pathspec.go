// Package pathspec expands frontmatter path specs into concrete files and
// fingerprints them.
//
// A spec is resolved against the directory of the document that declares
// it, or against the project root when prefixed with $ROOT/. Specs
// containing glob metacharacters are expanded against the filesystem;
// anything else is treated as a literal path.
package pathspec

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/corporealshift/driftwatcher/internal/apperr"
	"github.com/corporealshift/driftwatcher/internal/checksum"
)

// RootPrefix anchors a spec to the project root instead of the document.
const RootPrefix = "$ROOT/"

// Resolver expands path specs for one documentation file.
type Resolver struct {
	docDir  string
	root    string
	rootErr error
}

// NewResolver builds a Resolver for the document at docPath. The project
// root is the nearest ancestor of the document's directory containing
// marker (".git" by convention); discovery failure is deferred until a
// $ROOT/ spec actually needs the root.
func NewResolver(docPath, marker string) (*Resolver, error) {
	docDir, err := filepath.Abs(filepath.Dir(docPath))
	if err != nil {
		return nil, fmt.Errorf("pathspec: resolve document dir: %w", err)
	}
	r := &Resolver{docDir: docDir}
	r.root, r.rootErr = FindRoot(docDir, marker)
	return r, nil
}

// Root returns the discovered project root.
func (r *Resolver) Root() (string, error) {
	return r.root, r.rootErr
}

// Resolve expands spec into a sorted list of absolute paths. Zero matches
// is a failure, not an empty success: a glob that matches nothing and a
// literal path that does not exist both yield an error wrapping
// apperr.ErrNoMatch, with messages telling the two apart.
func (r *Resolver) Resolve(spec string) ([]string, error) {
	base := r.docDir
	rel := spec
	if strings.HasPrefix(spec, RootPrefix) {
		if r.rootErr != nil {
			return nil, r.rootErr
		}
		base = r.root
		rel = strings.TrimPrefix(spec, RootPrefix)
	}
	joined := filepath.Join(base, rel)

	if !isGlob(rel) {
		if _, err := os.Stat(joined); err != nil {
			return nil, fmt.Errorf("pathspec: path %q does not exist: %w", spec, apperr.ErrNoMatch)
		}
		return []string{joined}, nil
	}

	globBase, pattern := doublestar.SplitPattern(filepath.ToSlash(joined))
	matches, err := doublestar.Glob(os.DirFS(globBase), pattern)
	if err != nil {
		return nil, fmt.Errorf("pathspec: invalid pattern %q: %w", spec, err)
	}

	var paths []string
	for _, m := range matches {
		if isHidden(m) {
			continue
		}
		paths = append(paths, filepath.Join(globBase, m))
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("pathspec: pattern %q matches no files: %w", spec, apperr.ErrNoMatch)
	}
	sort.Strings(paths)
	return paths, nil
}

// HashSpec resolves spec and fingerprints the result: a single directory
// is hashed as a tree, a single file directly, and multiple matches as a
// sorted set of regular files. It returns the digest and the number of
// paths the spec resolved to.
func (r *Resolver) HashSpec(spec string) (string, int, error) {
	paths, err := r.Resolve(spec)
	if err != nil {
		return "", 0, err
	}

	if len(paths) == 1 {
		info, err := os.Stat(paths[0])
		if err != nil {
			return "", 0, fmt.Errorf("pathspec: stat %s: %w", paths[0], err)
		}
		var sum string
		if info.IsDir() {
			sum, err = checksum.SumDir(paths[0])
		} else {
			sum, err = checksum.SumFile(paths[0])
		}
		if err != nil {
			return "", 0, err
		}
		return sum, 1, nil
	}

	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return "", 0, fmt.Errorf("pathspec: stat %s: %w", p, err)
		}
		if info.Mode().IsRegular() {
			files = append(files, p)
		}
	}
	if len(files) == 0 {
		return "", 0, fmt.Errorf("pathspec: pattern %q matches no files: %w", spec, apperr.ErrNoMatch)
	}
	sum, err := checksum.SumFiles(files)
	if err != nil {
		return "", 0, err
	}
	return sum, len(paths), nil
}

// FindRoot walks upward from start until a directory containing marker
// is found. Reaching the filesystem root without a hit is a failure
// wrapping apperr.ErrNoProjectRoot.
func FindRoot(start, marker string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("pathspec: resolve %s: %w", start, err)
	}
	for {
		if _, lerr := os.Lstat(filepath.Join(dir, marker)); lerr == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("pathspec: no %s found above %s: %w", marker, start, apperr.ErrNoProjectRoot)
		}
		dir = parent
	}
}

// isGlob reports whether the spec needs filesystem expansion.
func isGlob(spec string) bool {
	return strings.ContainsAny(spec, "*?[")
}

// isHidden reports whether any component of the slash-separated path
// starts with a dot. "." and ".." themselves do not count.
func isHidden(path string) bool {
	for _, c := range strings.Split(path, "/") {
		if strings.HasPrefix(c, ".") && c != "." && c != ".." {
			return true
		}
	}
	return false
}
