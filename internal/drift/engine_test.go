package drift

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/corporealshift/driftwatcher/internal/checksum"
	"github.com/corporealshift/driftwatcher/internal/testutil"
)

func scanProject(t *testing.T, files map[string]string) *Result {
	t.Helper()
	root := testutil.Project(t, files)
	res, err := NewEngine().Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	return res
}

func findDoc(t *testing.T, res *Result, name string) DocReport {
	t.Helper()
	for _, d := range res.Docs {
		if filepath.Base(d.Doc) == name {
			return d
		}
	}
	t.Fatalf("document %s not in result: %+v", name, res.Docs)
	return DocReport{}
}

func TestScan_StatusClassification(t *testing.T) {
	fooHash := checksum.Sum([]byte("foo"))
	res := scanProject(t, map[string]string{
		"src/current.go": "foo",
		"src/drifted.go": "bar",
		"docs/guide.md": "---\n" +
			"driftwatcher:\n" +
			"  - \"../src/current.go\": " + fooHash + "\n" +
			"  - \"../src/drifted.go\": " + fooHash + "\n" +
			"  - \"../src/gone.go\": " + fooHash + "\n" +
			"  - \"../src/current.go*extra\": " + fooHash + "\n" +
			"  - \"../src/nohash.go\":\n" +
			"---\n",
	})

	doc := findDoc(t, res, "guide.md")
	if doc.Err != nil {
		t.Fatalf("doc error: %v", doc.Err)
	}
	want := []Status{StatusCurrent, StatusDrifted, StatusMissing, StatusMissing, StatusInvalid}
	if len(doc.Records) != len(want) {
		t.Fatalf("len(Records) = %d, want %d", len(doc.Records), len(want))
	}
	for i, rec := range doc.Records {
		if rec.Status != want[i] {
			t.Errorf("Records[%d] (%s) = %s, want %s", i, rec.Spec, rec.Status, want[i])
		}
	}
	if doc.Records[1].ComputedHash != checksum.Sum([]byte("bar")) {
		t.Errorf("drifted ComputedHash = %q", doc.Records[1].ComputedHash)
	}
}

func TestScan_GlobZeroMatches(t *testing.T) {
	hash := checksum.Sum([]byte("x"))
	res := scanProject(t, map[string]string{
		"docs/guide.md": "---\n" +
			"driftwatcher:\n" +
			"  - \"../src/**/*.nomatch\": " + hash + "\n" +
			"  - \"../src/**/*.alsonothing\":\n" +
			"---\n",
	})

	doc := findDoc(t, res, "guide.md")
	if got := doc.Records[0].Status; got != StatusMissing {
		t.Errorf("zero-match glob with hash = %s, want MISSING", got)
	}
	if got := doc.Records[1].Status; got != StatusInvalid {
		t.Errorf("zero-match glob without hash = %s, want INVALID", got)
	}
}

func TestScan_BadPatternInvalid(t *testing.T) {
	hash := checksum.Sum([]byte("x"))
	res := scanProject(t, map[string]string{
		"docs/guide.md": "---\ndriftwatcher:\n  - \"src/[unclosed.go\": " + hash + "\n---\n",
	})
	doc := findDoc(t, res, "guide.md")
	if got := doc.Records[0].Status; got != StatusInvalid {
		t.Errorf("malformed pattern = %s, want INVALID", got)
	}
}

func TestScan_RootSpec(t *testing.T) {
	res := scanProject(t, map[string]string{
		"src/main.go":        "package main",
		"docs/deep/guide.md": "---\ndriftwatcher:\n  - \"$ROOT/src/main.go\": " + checksum.Sum([]byte("package main")) + "\n---\n",
	})
	doc := findDoc(t, res, "guide.md")
	if got := doc.Records[0].Status; got != StatusCurrent {
		t.Errorf("status = %s, want CURRENT", got)
	}
}

func TestScan_SkipsUntrackedDocs(t *testing.T) {
	res := scanProject(t, map[string]string{
		"plain.md":   "# No frontmatter\n",
		"other.md":   "---\ntitle: has block, no tracking\n---\n",
		"tracked.md": "---\ndriftwatcher:\n---\n",
	})
	if len(res.Docs) != 1 {
		t.Fatalf("len(Docs) = %d, want 1: %+v", len(res.Docs), res.Docs)
	}
	if filepath.Base(res.Docs[0].Doc) != "tracked.md" {
		t.Errorf("Docs[0] = %s", res.Docs[0].Doc)
	}
}

func TestScan_BrokenDocCollected(t *testing.T) {
	res := scanProject(t, map[string]string{
		"broken.md": "---\nnever closed\n",
		"good.md":   "---\ndriftwatcher:\n  - \"src.go\":\n---\n",
		"src.go":    "x",
	})

	broken := res.Broken()
	if len(broken) != 1 || filepath.Base(broken[0].Doc) != "broken.md" {
		t.Fatalf("Broken() = %+v", broken)
	}
	if !strings.Contains(broken[0].Err.Error(), "not closed") {
		t.Errorf("Err = %v", broken[0].Err)
	}

	good := findDoc(t, res, "good.md")
	if good.Err != nil || len(good.Records) != 1 {
		t.Errorf("good doc not scanned: %+v", good)
	}
}

func TestScan_SingleFileTarget(t *testing.T) {
	root := testutil.Project(t, map[string]string{
		"a.go":    "alpha",
		"note.md": "---\ndriftwatcher:\n  - \"a.go\": " + checksum.Sum([]byte("alpha")) + "\n---\n",
	})
	res, err := NewEngine().Scan(context.Background(), filepath.Join(root, "note.md"))
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(res.Docs) != 1 || len(res.Docs[0].Records) != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Docs[0].Records[0].Status != StatusCurrent {
		t.Errorf("status = %s, want CURRENT", res.Docs[0].Records[0].Status)
	}
}

func TestSummaryAndEligible(t *testing.T) {
	fooHash := checksum.Sum([]byte("foo"))
	res := scanProject(t, map[string]string{
		"src/a.go": "foo",
		"src/b.go": "changed",
		"one.md": "---\ndriftwatcher:\n" +
			"  - \"src/a.go\": " + fooHash + "\n" +
			"  - \"src/b.go\": " + fooHash + "\n" +
			"---\n",
		"two.md": "---\ndriftwatcher:\n" +
			"  - \"src/gone.go\": " + fooHash + "\n" +
			"  - \"src/a.go\":\n" +
			"---\n",
		"broken.md": "---\noops: [\n---\n",
	})

	sum := res.Summary()
	want := Summary{Current: 1, Drifted: 1, Missing: 1, Invalid: 1, Broken: 1}
	if sum != want {
		t.Errorf("Summary = %+v, want %+v", sum, want)
	}
	if !sum.HasProblems() {
		t.Error("HasProblems = false, want true")
	}

	elig := res.Eligible()
	if len(elig) != 2 {
		t.Fatalf("Eligible = %+v, want 2 records", elig)
	}
	for _, er := range elig {
		if !er.Record.Status.IsProblem() {
			t.Errorf("ineligible record included: %+v", er)
		}
	}
}

func TestSummary_NoProblems(t *testing.T) {
	res := scanProject(t, map[string]string{
		"src/a.go": "foo",
		"doc.md":   "---\ndriftwatcher:\n  - \"src/a.go\": " + checksum.Sum([]byte("foo")) + "\n---\n",
	})
	sum := res.Summary()
	if sum.HasProblems() {
		t.Errorf("HasProblems = true for %+v", sum)
	}
}
