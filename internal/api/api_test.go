package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/corporealshift/driftwatcher/internal/checksum"
	"github.com/corporealshift/driftwatcher/internal/drift"
	"github.com/corporealshift/driftwatcher/internal/testutil"
)

// testEnv builds a temp project with one current and one drifted entry
// and returns its root plus a router.
// authToken="" means disabled mode; a non-empty token means token mode.
func testEnv(t *testing.T, authToken string) (string, http.Handler) {
	t.Helper()

	hash := checksum.Sum([]byte("package main\n"))
	root := testutil.Project(t, map[string]string{
		"src/same.go":    "package main\n",
		"src/changed.go": "package main\n\nfunc changed() {}\n",
		"docs/api.md": "---\ndriftwatcher:\n" +
			"  - \"../src/same.go\": " + hash + "\n" +
			"  - \"../src/changed.go\": " + hash + "\n" +
			"---\n# API\n",
	})

	router := NewRouter(drift.NewEngine(), root, authToken != "", authToken, nil)
	return root, router
}

func TestReport_ReturnsStatusMap(t *testing.T) {
	root, router := testEnv(t, "")

	req := httptest.NewRequest(http.MethodGet, "/report", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("report status = %d, body = %s", w.Code, w.Body.String())
	}

	var got map[string]map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	doc := filepath.Join(root, "docs", "api.md")
	entries, ok := got[doc]
	if !ok {
		t.Fatalf("report has no entry for %s: %v", doc, got)
	}
	if entries["../src/same.go"] != "CURRENT" {
		t.Errorf("same.go status = %q, want CURRENT", entries["../src/same.go"])
	}
	if entries["../src/changed.go"] != "DRIFTED" {
		t.Errorf("changed.go status = %q, want DRIFTED", entries["../src/changed.go"])
	}
}

func TestSummary_Counts(t *testing.T) {
	_, router := testEnv(t, "")

	req := httptest.NewRequest(http.MethodGet, "/summary", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("summary status = %d, body = %s", w.Code, w.Body.String())
	}

	var got drift.Summary
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Current != 1 || got.Drifted != 1 {
		t.Errorf("summary = %+v, want 1 current and 1 drifted", got)
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	_, router := testEnv(t, "secret123")

	req := httptest.NewRequest(http.MethodGet, "/summary", nil)
	req.Header.Set("Authorization", "Bearer secret123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("authed summary = %d, want 200", w.Code)
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	_, router := testEnv(t, "secret123")

	req := httptest.NewRequest(http.MethodGet, "/summary", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unauthed = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_WrongToken(t *testing.T) {
	_, router := testEnv(t, "secret123")

	req := httptest.NewRequest(http.MethodGet, "/report", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	_, router := testEnv(t, "")

	req := httptest.NewRequest(http.MethodGet, "/report", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("no auth = %d, want 200", w.Code)
	}
}

// SSE endpoint auth tests.

func TestSSEEvents_AuthProtected(t *testing.T) {
	router := testEnvWithSSE(t, true, "secret")

	// No token → 401.
	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("SSE no auth = %d, want 401", w.Code)
	}
}

func TestSSEEvents_ValidToken(t *testing.T) {
	router := testEnvWithSSE(t, true, "tok")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	req.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code == http.StatusUnauthorized {
		t.Error("SSE with valid token should not 401")
	}
}

// testEnvWithSSE creates a router with a stub SSE handler to test auth
// on /events.
func testEnvWithSSE(t *testing.T, authEnabled bool, token string) http.Handler {
	t.Helper()

	root := testutil.Project(t, map[string]string{})

	// Minimal SSE handler stub; writes headers and blocks until context done.
	sseHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		<-r.Context().Done()
	})

	return NewRouter(drift.NewEngine(), root, authEnabled, token, sseHandler)
}
