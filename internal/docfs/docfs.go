// Package docfs reads, writes, and discovers documentation files on disk.
package docfs

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/corporealshift/driftwatcher/internal/apperr"
)

// ReadDocument returns the raw bytes of a documentation file.
func ReadDocument(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("docfs: read %s: %w", path, err)
	}
	return data, nil
}

// WriteDocument atomically replaces a documentation file:
// tmp file → fsync → rename.
func WriteDocument(path string, content []byte) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, ".drifty-tmp-*")
	if err != nil {
		return fmt.Errorf("docfs: create temp: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up on any failure path.
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("docfs: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("docfs: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("docfs: close temp: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("docfs: rename: %w", err)
	}
	success = true
	return nil
}

// FindDocs resolves target to a sorted list of documentation files. A file
// target must carry one of the given extensions; a directory target is
// walked recursively, skipping hidden directories. Extensions are matched
// without their leading dot, case-insensitively.
func FindDocs(target string, extensions []string) ([]string, error) {
	info, err := os.Stat(target)
	if err != nil {
		return nil, fmt.Errorf("docfs: stat %s: %w", target, err)
	}

	if !info.IsDir() {
		if !hasExtension(target, extensions) {
			return nil, fmt.Errorf("docfs: %s: %w", target, apperr.ErrNotMarkdown)
		}
		return []string{target}, nil
	}

	var docs []string
	err = filepath.WalkDir(target, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && p != target {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() && hasExtension(p, extensions) {
			docs = append(docs, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("docfs: walk %s: %w", target, err)
	}
	sort.Strings(docs)
	return docs, nil
}

func hasExtension(path string, extensions []string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	for _, e := range extensions {
		if ext == strings.ToLower(strings.TrimPrefix(e, ".")) {
			return true
		}
	}
	return false
}
