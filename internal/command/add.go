package command

import (
	"fmt"
	"os"

	"github.com/corporealshift/driftwatcher/internal/apperr"
	"github.com/corporealshift/driftwatcher/internal/docfs"
	"github.com/corporealshift/driftwatcher/internal/frontmatter"
	"github.com/corporealshift/driftwatcher/internal/pathspec"
)

// Add records a new watch target in the document's frontmatter with its
// hash computed now. The target must resolve to at least one file at the
// moment of the call.
func Add(env *Env, docPath, target string) error {
	if _, err := os.Stat(docPath); err != nil {
		return fmt.Errorf("invalid file: %s", docPath)
	}

	content, err := docfs.ReadDocument(docPath)
	if err != nil {
		return err
	}
	doc, err := frontmatter.Parse(content)
	if err != nil {
		return err
	}
	if !doc.HasTracking {
		return fmt.Errorf("%s: %w; run 'drifty init %s' first", docPath, apperr.ErrNotInitialized, docPath)
	}
	for _, e := range doc.Entries {
		if e.Pattern == target {
			return fmt.Errorf("pattern %q in %s: %w", target, docPath, apperr.ErrAlreadyTracked)
		}
	}

	resolver, err := pathspec.NewResolver(docPath, env.Config.Scan.RootMarker)
	if err != nil {
		return err
	}
	hash, n, err := resolver.HashSpec(target)
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrTargetUnresolvable, err)
	}

	if err := doc.AddEntry(target, hash); err != nil {
		return fmt.Errorf("%s: %w", docPath, err)
	}
	if err := docfs.WriteDocument(docPath, doc.Serialize()); err != nil {
		return err
	}

	fmt.Fprintf(env.Stdout, "Added '%s' to %s (%d file(s), hash: %s...)\n", target, docPath, n, hash[:12])
	return nil
}
