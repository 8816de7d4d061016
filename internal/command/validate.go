package command

import (
	"fmt"

	"github.com/corporealshift/driftwatcher/internal/docfs"
	"github.com/corporealshift/driftwatcher/internal/frontmatter"
	"github.com/corporealshift/driftwatcher/internal/pathspec"
)

// Validate checks every tracked document under target without hashing
// anything: frontmatter must parse, every entry must carry a hash, and
// every path spec must resolve to at least one file. Any violation is
// printed and the run returns ErrProblemsFound.
func Validate(env *Env, target string) error {
	docs, err := docfs.FindDocs(target, env.Config.Scan.DocExtensions)
	if err != nil {
		return err
	}

	checked := 0
	allValid := true
	for _, doc := range docs {
		content, err := docfs.ReadDocument(doc)
		if err != nil {
			fmt.Fprintf(env.Stderr, "%s: %v\n", doc, err)
			allValid = false
			continue
		}
		parsed, err := frontmatter.Parse(content)
		if err != nil {
			fmt.Fprintf(env.Stderr, "%s: invalid YAML: %v\n", doc, err)
			allValid = false
			continue
		}
		if !parsed.HasTracking {
			continue
		}
		checked++

		resolver, err := pathspec.NewResolver(doc, env.Config.Scan.RootMarker)
		if err != nil {
			fmt.Fprintf(env.Stderr, "%s: %v\n", doc, err)
			allValid = false
			continue
		}
		for _, entry := range parsed.Entries {
			if entry.Hash == "" {
				fmt.Fprintf(env.Stderr, "%s: entry %q has no hash\n", doc, entry.Pattern)
				allValid = false
			}
			if _, err := resolver.Resolve(entry.Pattern); err != nil {
				fmt.Fprintf(env.Stderr, "%s: pattern %q: %v\n", doc, entry.Pattern, err)
				allValid = false
			}
		}
	}

	if checked == 0 {
		fmt.Fprintln(env.Stdout, "No driftwatcher entries found.")
		return nil
	}
	if !allValid {
		return ErrProblemsFound
	}
	fmt.Fprintf(env.Stdout, "All driftwatcher entries are valid (%d file(s) checked).\n", checked)
	return nil
}
