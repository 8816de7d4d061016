package frontmatter

import (
	"errors"
	"strings"
	"testing"

	"github.com/corporealshift/driftwatcher/internal/apperr"
)

const sampleDoc = `---
title: Parser internals
driftwatcher:
  - "src/parser.go": abc123
  - "lib/**/*.go": def456
---
# Parser

Body text.
`

func mustParse(t *testing.T, content string) *Document {
	t.Helper()
	doc, err := Parse([]byte(content))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return doc
}

func TestParse_NoFrontmatter(t *testing.T) {
	doc := mustParse(t, "# Just a doc\nNo block here.\n")
	if doc.HasBlock {
		t.Error("HasBlock = true, want false")
	}
	if doc.HasTracking {
		t.Error("HasTracking = true, want false")
	}
	if len(doc.Entries) != 0 {
		t.Errorf("Entries = %v, want none", doc.Entries)
	}
}

func TestParse_WithEntries(t *testing.T) {
	doc := mustParse(t, sampleDoc)
	if !doc.HasBlock || !doc.HasTracking {
		t.Fatalf("HasBlock = %v, HasTracking = %v, want both true", doc.HasBlock, doc.HasTracking)
	}
	if len(doc.Entries) != 2 {
		t.Fatalf("len(Entries) = %d, want 2", len(doc.Entries))
	}
	if doc.Entries[0].Pattern != "src/parser.go" || doc.Entries[0].Hash != "abc123" {
		t.Errorf("Entries[0] = %+v", doc.Entries[0])
	}
	if doc.Entries[1].Pattern != "lib/**/*.go" || doc.Entries[1].Hash != "def456" {
		t.Errorf("Entries[1] = %+v", doc.Entries[1])
	}
}

func TestParse_EmptyTrackingKey(t *testing.T) {
	doc := mustParse(t, "---\ndriftwatcher:\n---\n# Doc\n")
	if !doc.HasTracking {
		t.Error("HasTracking = false, want true")
	}
	if len(doc.Entries) != 0 {
		t.Errorf("Entries = %v, want none", doc.Entries)
	}
}

func TestParse_EntryWithoutHash(t *testing.T) {
	doc := mustParse(t, "---\ndriftwatcher:\n  - \"src/a.go\":\n---\n")
	if len(doc.Entries) != 1 {
		t.Fatalf("len(Entries) = %d, want 1", len(doc.Entries))
	}
	if doc.Entries[0].Hash != "" {
		t.Errorf("Hash = %q, want empty", doc.Entries[0].Hash)
	}
}

func TestParse_NumericLookingHash(t *testing.T) {
	doc := mustParse(t, "---\ndriftwatcher:\n  - \"a.go\": 123456\n---\n")
	if doc.Entries[0].Hash != "123456" {
		t.Errorf("Hash = %q, want %q", doc.Entries[0].Hash, "123456")
	}
}

func TestParse_SiblingKeysIgnored(t *testing.T) {
	content := "---\ntitle: Doc\nauthor: someone\ndriftwatcher:\n  - \"a.go\": x\n---\n"
	doc := mustParse(t, content)
	if len(doc.Entries) != 1 {
		t.Errorf("len(Entries) = %d, want 1", len(doc.Entries))
	}
}

func TestParse_Unclosed(t *testing.T) {
	if _, err := Parse([]byte("---\ntitle: Doc\n# never closed\n")); err == nil {
		t.Error("expected error for unclosed block")
	}
}

func TestParse_BadYAML(t *testing.T) {
	if _, err := Parse([]byte("---\nkey: [unclosed\n---\n")); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestParse_TrackingNotSequence(t *testing.T) {
	if _, err := Parse([]byte("---\ndriftwatcher: oops\n---\n")); err == nil {
		t.Error("expected error for scalar driftwatcher value")
	}
}

func TestParse_EntryNotMapping(t *testing.T) {
	if _, err := Parse([]byte("---\ndriftwatcher:\n  - just-a-string\n---\n")); err == nil {
		t.Error("expected error for non-mapping entry")
	}
}

func TestRoundTrip(t *testing.T) {
	cases := []string{
		sampleDoc,
		"---\ndriftwatcher:\n---\n# Doc\n",
		"---\ntitle: X\n\n# comment inside\ndriftwatcher:\n  - \"a\": b\n---\nbody\n",
		"# no block at all\n",
		"---\n---\nbare\n",
	}
	for _, content := range cases {
		doc, err := Parse([]byte(content))
		if err != nil {
			t.Fatalf("Parse(%q): %v", content, err)
		}
		if got := string(doc.Serialize()); got != content {
			t.Errorf("round trip changed content:\n got: %q\nwant: %q", got, content)
		}
	}
}

func TestInitTracking_NoBlock(t *testing.T) {
	doc := mustParse(t, "# My Doc\nSome content.\n")
	if err := doc.InitTracking(); err != nil {
		t.Fatalf("InitTracking: %v", err)
	}
	out := string(doc.Serialize())
	if !strings.HasPrefix(out, "---\ndriftwatcher:\n---\n") {
		t.Errorf("serialized = %q, want leading tracking block", out)
	}
	if !strings.Contains(out, "# My Doc") {
		t.Errorf("body lost: %q", out)
	}

	reparsed := mustParse(t, out)
	if !reparsed.HasTracking || len(reparsed.Entries) != 0 {
		t.Errorf("reparsed: HasTracking = %v, Entries = %v", reparsed.HasTracking, reparsed.Entries)
	}
}

func TestInitTracking_ExistingBlock(t *testing.T) {
	doc := mustParse(t, "---\ntitle: Doc\n---\nbody\n")
	if err := doc.InitTracking(); err != nil {
		t.Fatalf("InitTracking: %v", err)
	}
	out := string(doc.Serialize())
	want := "---\ntitle: Doc\ndriftwatcher:\n---\nbody\n"
	if out != want {
		t.Errorf("serialized = %q, want %q", out, want)
	}
}

func TestInitTracking_AlreadyInitialized(t *testing.T) {
	doc := mustParse(t, "---\ndriftwatcher:\n---\n")
	err := doc.InitTracking()
	if !errors.Is(err, apperr.ErrAlreadyInitialized) {
		t.Errorf("err = %v, want ErrAlreadyInitialized", err)
	}
}

func TestAddEntry(t *testing.T) {
	doc := mustParse(t, sampleDoc)
	if err := doc.AddEntry("cmd/main.go", "fresh789"); err != nil {
		t.Fatalf("AddEntry: %v", err)
	}
	out := string(doc.Serialize())
	want := `---
title: Parser internals
driftwatcher:
  - "src/parser.go": abc123
  - "lib/**/*.go": def456
  - "cmd/main.go": fresh789
---
# Parser

Body text.
`
	if out != want {
		t.Errorf("serialized:\n%s\nwant:\n%s", out, want)
	}

	reparsed := mustParse(t, out)
	if len(reparsed.Entries) != 3 || reparsed.Entries[2].Pattern != "cmd/main.go" {
		t.Errorf("reparsed entries = %+v", reparsed.Entries)
	}
}

func TestAddEntry_NotInitialized(t *testing.T) {
	doc := mustParse(t, "---\ntitle: Doc\n---\n")
	err := doc.AddEntry("a.go", "x")
	if !errors.Is(err, apperr.ErrNotInitialized) {
		t.Errorf("err = %v, want ErrNotInitialized", err)
	}
}

func TestAddEntry_Duplicate(t *testing.T) {
	doc := mustParse(t, sampleDoc)
	err := doc.AddEntry("src/parser.go", "whatever")
	if !errors.Is(err, apperr.ErrAlreadyTracked) {
		t.Errorf("err = %v, want ErrAlreadyTracked", err)
	}
}

func TestUpdateHash(t *testing.T) {
	doc := mustParse(t, sampleDoc)
	if err := doc.UpdateHash("lib/**/*.go", "newhash"); err != nil {
		t.Fatalf("UpdateHash: %v", err)
	}
	out := string(doc.Serialize())
	if !strings.Contains(out, "  - \"lib/**/*.go\": newhash\n") {
		t.Errorf("updated line missing:\n%s", out)
	}
	if !strings.Contains(out, "  - \"src/parser.go\": abc123\n") {
		t.Errorf("untouched line lost:\n%s", out)
	}
}

func TestUpdateHash_UnquotedPattern(t *testing.T) {
	doc := mustParse(t, "---\ndriftwatcher:\n  - src/a.go: old\n---\n")
	if err := doc.UpdateHash("src/a.go", "new"); err != nil {
		t.Fatalf("UpdateHash: %v", err)
	}
	out := string(doc.Serialize())
	if !strings.Contains(out, "  - \"src/a.go\": new\n") {
		t.Errorf("rewrite = %q", out)
	}
}

func TestUpdateHash_Unknown(t *testing.T) {
	doc := mustParse(t, sampleDoc)
	if err := doc.UpdateHash("nope.go", "x"); err == nil {
		t.Error("expected error for unknown pattern")
	}
}

func TestRemoveEntry(t *testing.T) {
	doc := mustParse(t, sampleDoc)
	if err := doc.RemoveEntry("src/parser.go"); err != nil {
		t.Fatalf("RemoveEntry: %v", err)
	}
	out := string(doc.Serialize())
	if strings.Contains(out, "src/parser.go") {
		t.Errorf("entry still present:\n%s", out)
	}
	if !strings.Contains(out, "lib/**/*.go") {
		t.Errorf("sibling entry lost:\n%s", out)
	}

	reparsed := mustParse(t, out)
	if len(reparsed.Entries) != 1 {
		t.Errorf("reparsed entries = %+v", reparsed.Entries)
	}
}

func TestRemoveThenUpdate_LineShift(t *testing.T) {
	doc := mustParse(t, sampleDoc)
	if err := doc.RemoveEntry("src/parser.go"); err != nil {
		t.Fatalf("RemoveEntry: %v", err)
	}
	// The surviving entry moved up one line; the edit must still land on it.
	if err := doc.UpdateHash("lib/**/*.go", "shifted"); err != nil {
		t.Fatalf("UpdateHash: %v", err)
	}
	out := string(doc.Serialize())
	want := `---
title: Parser internals
driftwatcher:
  - "lib/**/*.go": shifted
---
# Parser

Body text.
`
	if out != want {
		t.Errorf("serialized:\n%s\nwant:\n%s", out, want)
	}
}

func TestMutationsPreserveSiblings(t *testing.T) {
	content := "---\ntitle: Keep me\ntags:\n  - one\n  - two\ndriftwatcher:\n  - \"a.go\": h1\nauthor: also kept\n---\nbody\n"
	doc := mustParse(t, content)
	if err := doc.UpdateHash("a.go", "h2"); err != nil {
		t.Fatalf("UpdateHash: %v", err)
	}
	out := string(doc.Serialize())
	for _, keep := range []string{"title: Keep me", "tags:\n  - one\n  - two", "author: also kept", "body\n"} {
		if !strings.Contains(out, keep) {
			t.Errorf("lost %q in:\n%s", keep, out)
		}
	}
}
