package command

import (
	"fmt"
	"os"

	"github.com/corporealshift/driftwatcher/internal/docfs"
	"github.com/corporealshift/driftwatcher/internal/frontmatter"
)

// Init adds an empty driftwatcher key to the document's frontmatter,
// creating the block when the file has none. Running it against an
// already initialized document fails without touching the file.
func Init(env *Env, docPath string) error {
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

	hadBlock := doc.HasBlock
	if err := doc.InitTracking(); err != nil {
		return fmt.Errorf("%s: %w", docPath, err)
	}
	if err := docfs.WriteDocument(docPath, doc.Serialize()); err != nil {
		return err
	}

	if hadBlock {
		fmt.Fprintf(env.Stdout, "Added driftwatcher to existing frontmatter in %s\n", docPath)
	} else {
		fmt.Fprintf(env.Stdout, "Initialized driftwatcher in %s\n", docPath)
	}
	return nil
}
