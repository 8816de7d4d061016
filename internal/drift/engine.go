// Package drift scans documentation files and classifies every tracked
// entry against the current content on disk.
package drift

import (
	"context"
	"errors"
	"log/slog"
	"runtime"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	"github.com/corporealshift/driftwatcher/internal/apperr"
	"github.com/corporealshift/driftwatcher/internal/docfs"
	"github.com/corporealshift/driftwatcher/internal/frontmatter"
	"github.com/corporealshift/driftwatcher/internal/pathspec"
)

// Record is the comparison result for one tracked entry of one document.
// It is derived on every scan and never persisted.
type Record struct {
	Spec         string
	Status       Status
	StoredHash   string
	ComputedHash string
}

// DocReport collects the records of one document. Err is set when the
// document could not be read or its frontmatter could not be parsed; such
// documents carry no records but stay in the result so callers can
// surface them.
type DocReport struct {
	Doc     string
	Records []Record
	Err     error
}

// Result is one scan over a set of documents. Documents without a
// tracking key are omitted entirely.
type Result struct {
	Docs []DocReport
}

// Summary aggregates a Result by status.
type Summary struct {
	Current int `json:"current"`
	Drifted int `json:"drifted"`
	Missing int `json:"missing"`
	Invalid int `json:"invalid"`
	Broken  int `json:"broken"`
}

// HasProblems reports whether any entry drifted or went missing.
func (s Summary) HasProblems() bool {
	return s.Drifted > 0 || s.Missing > 0
}

// Summary tallies the result's records by status. Broken counts whole
// documents that failed to read or parse.
func (r *Result) Summary() Summary {
	var s Summary
	for _, d := range r.Docs {
		if d.Err != nil {
			s.Broken++
			continue
		}
		for _, rec := range d.Records {
			switch rec.Status {
			case StatusCurrent:
				s.Current++
			case StatusDrifted:
				s.Drifted++
			case StatusMissing:
				s.Missing++
			case StatusInvalid:
				s.Invalid++
			}
		}
	}
	return s
}

// Engine runs scans. Configure it with functional options; the zero
// option set scans Markdown files against a .git project root using one
// worker per CPU.
type Engine struct {
	marker      string
	extensions  []string
	parallelism int
	log         *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithMarker sets the directory name whose presence marks the project
// root for $ROOT/ specs.
func WithMarker(marker string) Option {
	return func(e *Engine) {
		e.marker = marker
	}
}

// WithExtensions sets the file extensions recognized as documentation.
func WithExtensions(exts []string) Option {
	return func(e *Engine) {
		if len(exts) > 0 {
			e.extensions = exts
		}
	}
}

// WithParallelism caps the number of documents scanned concurrently.
// Zero or negative means one worker per CPU.
func WithParallelism(n int) Option {
	return func(e *Engine) {
		e.parallelism = n
	}
}

// WithLogger sets the engine's logger.
func WithLogger(log *slog.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// NewEngine builds an Engine with the given options applied over the
// defaults.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		marker:     ".git",
		extensions: []string{"md", "markdown"},
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.parallelism <= 0 {
		e.parallelism = runtime.GOMAXPROCS(0)
	}
	return e
}

// Extensions returns the file extensions recognized as documentation.
func (e *Engine) Extensions() []string {
	return e.extensions
}

// Scan discovers documentation under target (a file or a directory) and
// classifies every tracked entry. Documents are scanned concurrently;
// per-document failures land in their DocReport and never abort the
// scan. Records are deterministic regardless of worker interleaving
// because each document's report keeps its discovery slot.
func (e *Engine) Scan(ctx context.Context, target string) (*Result, error) {
	docs, err := docfs.FindDocs(target, e.extensions)
	if err != nil {
		return nil, err
	}

	reports := make([]*DocReport, len(docs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.parallelism)
	for i, doc := range docs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			reports[i] = e.scanDoc(doc)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{}
	for _, rep := range reports {
		if rep != nil {
			res.Docs = append(res.Docs, *rep)
		}
	}
	return res, nil
}

// scanDoc classifies one document, or returns nil when the document has
// no tracking key and should be left out of the result.
func (e *Engine) scanDoc(doc string) *DocReport {
	content, err := docfs.ReadDocument(doc)
	if err != nil {
		return &DocReport{Doc: doc, Err: err}
	}
	parsed, err := frontmatter.Parse(content)
	if err != nil {
		return &DocReport{Doc: doc, Err: err}
	}
	if !parsed.HasTracking {
		return nil
	}

	resolver, err := pathspec.NewResolver(doc, e.marker)
	if err != nil {
		return &DocReport{Doc: doc, Err: err}
	}

	rep := &DocReport{Doc: doc}
	for _, entry := range parsed.Entries {
		rec := e.classify(resolver, entry)
		rep.Records = append(rep.Records, rec)
		e.log.Debug("classified entry", "doc", doc, "spec", rec.Spec, "status", rec.Status)
	}
	return rep
}

// classify derives the status of one entry. A missing stored hash is
// INVALID before anything touches the filesystem; resolution failures are
// INVALID except a plain no-match, which means the tracked content is
// gone and yields MISSING. Hash-time read failures also degrade to
// MISSING rather than aborting the scan.
func (e *Engine) classify(resolver *pathspec.Resolver, entry frontmatter.WatchEntry) Record {
	rec := Record{Spec: entry.Pattern, StoredHash: entry.Hash}
	if entry.Hash == "" {
		rec.Status = StatusInvalid
		return rec
	}

	sum, _, err := resolver.HashSpec(entry.Pattern)
	switch {
	case err == nil:
		rec.ComputedHash = sum
		if sum == entry.Hash {
			rec.Status = StatusCurrent
		} else {
			rec.Status = StatusDrifted
		}
	case errors.Is(err, apperr.ErrNoMatch):
		rec.Status = StatusMissing
	case errors.Is(err, apperr.ErrNoProjectRoot), errors.Is(err, doublestar.ErrBadPattern):
		rec.Status = StatusInvalid
	default:
		rec.Status = StatusMissing
	}
	return rec
}

// Eligible returns the records a reconciliation session can act on,
// paired with their owning document, in result order.
func (r *Result) Eligible() []EligibleRecord {
	var out []EligibleRecord
	for _, d := range r.Docs {
		if d.Err != nil {
			continue
		}
		for _, rec := range d.Records {
			if rec.Status.IsProblem() {
				out = append(out, EligibleRecord{Doc: d.Doc, Record: rec})
			}
		}
	}
	return out
}

// EligibleRecord is a DRIFTED or MISSING record with its owning document.
type EligibleRecord struct {
	Doc    string
	Record Record
}

// Broken returns the documents that failed to read or parse.
func (r *Result) Broken() []DocReport {
	var out []DocReport
	for _, d := range r.Docs {
		if d.Err != nil {
			out = append(out, d)
		}
	}
	return out
}
