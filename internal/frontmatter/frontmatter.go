// Package frontmatter parses and rewrites the YAML tracking block at the
// top of a documentation file.
//
// The tracking block lives under a single "driftwatcher" key whose value is
// a sequence of single-key mappings, pattern to hash:
//
//	---
//	title: Architecture notes
//	driftwatcher:
//	  - "src/parser.go": 3a7bd3e2360a...
//	  - "$ROOT/proto/**/*.proto": 9f86d081884c...
//	---
//
// Mutations are line edits against the raw block, so sibling keys,
// comments, and formatting survive a rewrite byte for byte.
package frontmatter

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/corporealshift/driftwatcher/internal/apperr"
)

const delim = "---"

// WatchEntry is one declared tracking relation: a path spec as written in
// the frontmatter and the hash recorded for it. An empty Hash means the
// entry never had a baseline recorded.
type WatchEntry struct {
	Pattern string
	Hash    string

	line int // 1-based line of the entry within the raw block
}

// Document is one documentation file split into its frontmatter block and
// body. The zero value describes a file with no frontmatter at all.
type Document struct {
	// Entries are the tracked patterns in file order.
	Entries []WatchEntry
	// HasBlock reports whether the file opens with a frontmatter block.
	HasBlock bool
	// HasTracking reports whether the block contains the driftwatcher key.
	HasTracking bool

	keyLine  int    // 1-based line of the driftwatcher key within rawBlock
	rawBlock string // verbatim text between the delimiters, leading newline included
	body     string // verbatim text after the closing delimiter
}

// Parse splits a documentation file into frontmatter and body. A file
// without a leading block yields a Document with no entries, not an
// error; a block that opens but never closes, or whose YAML is malformed,
// is an error localized to this document.
func Parse(content []byte) (*Document, error) {
	text := string(content)
	if !strings.HasPrefix(text, delim) {
		return &Document{body: text}, nil
	}

	rest := text[len(delim):]
	idx := strings.Index(rest, "\n"+delim)
	if idx < 0 {
		return nil, fmt.Errorf("frontmatter: block not closed (missing %s)", delim)
	}

	doc := &Document{
		HasBlock: true,
		rawBlock: rest[:idx],
		body:     rest[idx+1+len(delim):],
	}
	if err := doc.parseBlock(); err != nil {
		return nil, err
	}
	return doc, nil
}

// parseBlock extracts the driftwatcher entries from rawBlock, recording
// the source line of the key and of each entry for later line edits.
func (d *Document) parseBlock() error {
	var root yaml.Node
	if err := yaml.Unmarshal([]byte(d.rawBlock), &root); err != nil {
		return fmt.Errorf("frontmatter: parse YAML: %w", err)
	}
	if root.Kind == 0 || len(root.Content) == 0 {
		// Blank block, nothing tracked.
		return nil
	}

	top := root.Content[0]
	if top.Kind == yaml.ScalarNode && top.Tag == "!!null" {
		return nil
	}
	if top.Kind != yaml.MappingNode {
		return fmt.Errorf("frontmatter: block is not a mapping")
	}

	for i := 0; i+1 < len(top.Content); i += 2 {
		key, value := top.Content[i], top.Content[i+1]
		if key.Kind != yaml.ScalarNode || key.Value != "driftwatcher" {
			continue
		}
		d.HasTracking = true
		d.keyLine = key.Line
		return d.parseEntries(value)
	}
	return nil
}

func (d *Document) parseEntries(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode && value.Tag == "!!null" {
		// "driftwatcher:" with no entries yet.
		return nil
	}
	if value.Kind != yaml.SequenceNode {
		return fmt.Errorf("frontmatter: driftwatcher value is not a sequence (line %d)", value.Line)
	}

	for _, item := range value.Content {
		if item.Kind != yaml.MappingNode || len(item.Content) < 2 {
			return fmt.Errorf("frontmatter: entry is not a pattern-to-hash mapping (line %d)", item.Line)
		}
		keyNode, hashNode := item.Content[0], item.Content[1]
		if keyNode.Kind != yaml.ScalarNode {
			return fmt.Errorf("frontmatter: entry pattern is not a scalar (line %d)", keyNode.Line)
		}
		hash := ""
		switch {
		case hashNode.Kind == yaml.ScalarNode && hashNode.Tag == "!!null":
			// No baseline recorded.
		case hashNode.Kind == yaml.ScalarNode:
			hash = hashNode.Value
		default:
			return fmt.Errorf("frontmatter: entry hash is not a scalar (line %d)", hashNode.Line)
		}
		if keyNode.Value == "" {
			continue
		}
		d.Entries = append(d.Entries, WatchEntry{
			Pattern: keyNode.Value,
			Hash:    hash,
			line:    keyNode.Line,
		})
	}
	return nil
}

// InitTracking adds the driftwatcher key. A file without frontmatter gains
// a fresh block holding only the key; an existing block gains the key as
// its last line. Fails if tracking is already set up.
func (d *Document) InitTracking() error {
	if d.HasTracking {
		return apperr.ErrAlreadyInitialized
	}
	if !d.HasBlock {
		d.HasBlock = true
		d.rawBlock = "\ndriftwatcher:"
		d.keyLine = 2
		d.body = "\n" + d.body
	} else {
		d.rawBlock += "\ndriftwatcher:"
		d.keyLine = len(d.lines())
	}
	d.HasTracking = true
	return nil
}

// AddEntry appends a new pattern with its hash to the end of the tracked
// sequence; with no entries yet it lands directly under the driftwatcher
// key. Entries stay in file order, so the last one sits on the highest
// line and insertion after it never shifts another entry.
func (d *Document) AddEntry(pattern, hash string) error {
	if !d.HasTracking {
		return apperr.ErrNotInitialized
	}
	for _, e := range d.Entries {
		if e.Pattern == pattern {
			return fmt.Errorf("frontmatter: pattern %q: %w", pattern, apperr.ErrAlreadyTracked)
		}
	}

	at := d.keyLine
	if n := len(d.Entries); n > 0 {
		at = d.Entries[n-1].line
	}
	lines := d.lines()
	entryLine := fmt.Sprintf("  - %q: %s", pattern, hash)
	lines = append(lines[:at], append([]string{entryLine}, lines[at:]...)...)
	d.rawBlock = strings.Join(lines, "\n")

	d.Entries = append(d.Entries, WatchEntry{Pattern: pattern, Hash: hash, line: at + 1})
	return nil
}

// UpdateHash replaces the hash recorded for pattern, preserving the
// entry's indentation and position.
func (d *Document) UpdateHash(pattern, hash string) error {
	i := d.find(pattern)
	if i < 0 {
		return fmt.Errorf("frontmatter: no entry for pattern %q", pattern)
	}
	lines := d.lines()
	old := lines[d.Entries[i].line-1]
	indent := old[:len(old)-len(strings.TrimLeft(old, " \t"))]
	lines[d.Entries[i].line-1] = fmt.Sprintf("%s- %q: %s", indent, pattern, hash)
	d.rawBlock = strings.Join(lines, "\n")
	d.Entries[i].Hash = hash
	return nil
}

// RemoveEntry deletes the entry for pattern from the block.
func (d *Document) RemoveEntry(pattern string) error {
	i := d.find(pattern)
	if i < 0 {
		return fmt.Errorf("frontmatter: no entry for pattern %q", pattern)
	}
	removed := d.Entries[i].line
	lines := d.lines()
	lines = append(lines[:removed-1], lines[removed:]...)
	d.rawBlock = strings.Join(lines, "\n")

	d.Entries = append(d.Entries[:i], d.Entries[i+1:]...)
	for j := range d.Entries {
		if d.Entries[j].line > removed {
			d.Entries[j].line--
		}
	}
	return nil
}

// Serialize renders the document back to file content. A document parsed
// and serialized without mutation reproduces its input byte for byte.
func (d *Document) Serialize() []byte {
	if !d.HasBlock {
		return []byte(d.body)
	}
	return []byte(delim + d.rawBlock + "\n" + delim + d.body)
}

func (d *Document) find(pattern string) int {
	for i, e := range d.Entries {
		if e.Pattern == pattern {
			return i
		}
	}
	return -1
}

// lines splits the raw block for line edits; YAML line numbers are
// 1-based, so line n lives at index n-1.
func (d *Document) lines() []string {
	return strings.Split(d.rawBlock, "\n")
}
