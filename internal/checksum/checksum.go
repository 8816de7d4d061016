// Package checksum computes deterministic content fingerprints for files,
// file sets, and directory trees.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// SumFile returns the hex-encoded SHA-256 digest of the file's contents.
func SumFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("checksum: open %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("checksum: read %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// SumFiles returns one digest covering all the given files. Paths are
// sorted by their normalized (cleaned, slash-separated) form before their
// contents are fed to the hash, so the result does not depend on the order
// the caller discovered them in. The digest covers the raw content bytes
// alone; a single-element set therefore matches SumFile for that file.
func SumFiles(paths []string) (string, error) {
	sorted := make([]string, len(paths))
	copy(sorted, paths)
	sort.Slice(sorted, func(i, j int) bool {
		return normalize(sorted[i]) < normalize(sorted[j])
	})

	h := sha256.New()
	for _, p := range sorted {
		f, err := os.Open(p)
		if err != nil {
			return "", fmt.Errorf("checksum: open %s: %w", p, err)
		}
		_, err = io.Copy(h, f)
		f.Close()
		if err != nil {
			return "", fmt.Errorf("checksum: read %s: %w", p, err)
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// SumDir hashes every regular file under dir, recursively, excluding any
// file or directory whose name starts with a dot. An empty directory
// yields the digest of zero bytes.
func SumDir(dir string) (string, error) {
	files, err := CollectFiles(dir)
	if err != nil {
		return "", err
	}
	return SumFiles(files)
}

// CollectFiles returns all regular files under dir, recursively, skipping
// hidden files and hidden directories.
func CollectFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if strings.HasPrefix(d.Name(), ".") && p != dir {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("checksum: walk %s: %w", dir, err)
	}
	return files, nil
}

func normalize(p string) string {
	return filepath.ToSlash(filepath.Clean(p))
}
