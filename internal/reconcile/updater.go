package reconcile

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/corporealshift/driftwatcher/internal/docfs"
	"github.com/corporealshift/driftwatcher/internal/drift"
	"github.com/corporealshift/driftwatcher/internal/frontmatter"
)

// Updater applies accepted choices: drifted entries get their stored
// hash replaced with the scan's computed hash, missing entries are
// removed. Each document is rewritten once, atomically. A failure on one
// document never stops the others; all failures come back joined.
type Updater struct {
	log *slog.Logger
}

// NewUpdater builds an Updater logging through log, or the default
// logger when nil.
func NewUpdater(log *slog.Logger) *Updater {
	if log == nil {
		log = slog.Default()
	}
	return &Updater{log: log}
}

// Apply groups the items by document and commits them.
func (u *Updater) Apply(selected []Item) error {
	byDoc := make(map[string][]Item)
	var order []string
	for _, it := range selected {
		if _, seen := byDoc[it.Doc]; !seen {
			order = append(order, it.Doc)
		}
		byDoc[it.Doc] = append(byDoc[it.Doc], it)
	}

	var errs []error
	for _, doc := range order {
		if err := u.applyDoc(doc, byDoc[doc]); err != nil {
			errs = append(errs, err)
			u.log.Error("failed to update document", "doc", doc, "error", err)
			continue
		}
		u.log.Info("updated document", "doc", doc, "entries", len(byDoc[doc]))
	}
	return errors.Join(errs...)
}

func (u *Updater) applyDoc(doc string, items []Item) error {
	content, err := docfs.ReadDocument(doc)
	if err != nil {
		return err
	}
	parsed, err := frontmatter.Parse(content)
	if err != nil {
		return fmt.Errorf("reconcile: %s: %w", doc, err)
	}

	for _, it := range items {
		switch it.Record.Status {
		case drift.StatusDrifted:
			err = parsed.UpdateHash(it.Record.Spec, it.Record.ComputedHash)
		case drift.StatusMissing:
			err = parsed.RemoveEntry(it.Record.Spec)
		default:
			err = fmt.Errorf("reconcile: record %q is not actionable (status %s)", it.Record.Spec, it.Record.Status)
		}
		if err != nil {
			return fmt.Errorf("reconcile: %s: %w", doc, err)
		}
	}

	return docfs.WriteDocument(doc, parsed.Serialize())
}
