package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/starford/kyuubi/internal/document"
	"github.com/starford/kyuubi/internal/storage"
	"github.com/starford/kyuubi/internal/testutil"
	"github.com/starford/kyuubi/internal/transform"
)

// testEnv sets up a loaded holder on a memory store and a router. A
// non-empty authToken enables token mode.
func testEnv(t *testing.T, authToken string) (*document.Holder, *storage.Memory, http.Handler) {
	t.Helper()
	h, store := testutil.Holder(t)
	router := NewRouter(Config{
		Document:    h,
		Renderer:    testutil.Renderer(),
		AuthEnabled: authToken != "",
		Token:       authToken,
	})
	return h, store, router
}

func putDocument(t *testing.T, router http.Handler, content, clientID string) *httptest.ResponseRecorder {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"content": content})
	req := httptest.NewRequest(http.MethodPut, "/document", bytes.NewReader(body))
	if clientID != "" {
		req.Header.Set(ClientIDHeader, clientID)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGetDocument_Sample(t *testing.T) {
	_, _, router := testEnv(t, "")

	req := httptest.NewRequest(http.MethodGet, "/document", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	var doc Document
	_ = json.Unmarshal(w.Body.Bytes(), &doc)
	if doc.Raw != document.Sample() {
		t.Errorf("raw = %q, want the sample", doc.Raw)
	}
	if w.Header().Get("ETag") == "" {
		t.Error("missing ETag")
	}
}

func TestGetDocument_NotModified(t *testing.T) {
	_, _, router := testEnv(t, "")

	req := httptest.NewRequest(http.MethodGet, "/document", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	etag := w.Header().Get("ETag")

	req = httptest.NewRequest(http.MethodGet, "/document", nil)
	req.Header.Set("If-None-Match", etag)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotModified {
		t.Errorf("conditional get = %d, want 304", w.Code)
	}
}

func TestPutDocument(t *testing.T) {
	h, store, router := testEnv(t, "")

	w := putDocument(t, router, "see [[Page]] #go", "tab-1")
	if w.Code != http.StatusOK {
		t.Fatalf("put status = %d, body = %s", w.Code, w.Body.String())
	}
	var doc Document
	_ = json.Unmarshal(w.Body.Bytes(), &doc)
	if doc.Origin != "tab-1" || doc.Revision != 1 {
		t.Errorf("doc = %+v", doc)
	}
	if doc.Rendered != "see [Page](#page) "+transform.WrapTag("#go") {
		t.Errorf("rendered = %q", doc.Rendered)
	}
	if !strings.Contains(doc.HTML, "tag-badge") {
		t.Errorf("html = %q", doc.HTML)
	}
	if h.Get() != "see [[Page]] #go" {
		t.Errorf("holder = %q", h.Get())
	}
	if saved, _ := store.Load(context.Background()); saved != "see [[Page]] #go" {
		t.Errorf("persisted = %q", saved)
	}
}

func TestPutDocument_EmptyContentAllowed(t *testing.T) {
	h, _, router := testEnv(t, "")
	if w := putDocument(t, router, "", ""); w.Code != http.StatusOK {
		t.Fatalf("put empty = %d", w.Code)
	}
	if h.Get() != "" {
		t.Errorf("holder = %q, want empty", h.Get())
	}
}

func TestPutDocument_MissingContent(t *testing.T) {
	_, _, router := testEnv(t, "")
	req := httptest.NewRequest(http.MethodPut, "/document", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing content = %d, want 400", w.Code)
	}
}

func TestPutDocument_InvalidJSON(t *testing.T) {
	_, _, router := testEnv(t, "")
	req := httptest.NewRequest(http.MethodPut, "/document", strings.NewReader(`{"content":`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid json = %d, want 400", w.Code)
	}
}

func TestExportDocument(t *testing.T) {
	_, _, router := testEnv(t, "")
	putDocument(t, router, "# Raw [[link]] #tag", "")

	req := httptest.NewRequest(http.MethodGet, "/document/export", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("export = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/markdown; charset=utf-8" {
		t.Errorf("content type = %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); cd != `attachment; filename="document.md"` {
		t.Errorf("content disposition = %q", cd)
	}
	if w.Body.String() != "# Raw [[link]] #tag" {
		t.Errorf("export body = %q, want the raw text", w.Body.String())
	}
}

func TestExportDocument_ConfiguredFilename(t *testing.T) {
	h, _ := testutil.Holder(t)
	router := NewRouter(Config{Document: h, Renderer: testutil.Renderer(), ExportFilename: "notes.md"})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/document/export", nil))
	if cd := w.Header().Get("Content-Disposition"); cd != `attachment; filename="notes.md"` {
		t.Errorf("content disposition = %q", cd)
	}
}

func TestOutline(t *testing.T) {
	_, _, router := testEnv(t, "")
	putDocument(t, router, "---\ntitle: T\n---\n# H\n[[A]] ![[b.png]] #x", "")

	req := httptest.NewRequest(http.MethodGet, "/document/outline", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("outline = %d", w.Code)
	}
	var o Outline
	_ = json.Unmarshal(w.Body.Bytes(), &o)
	if o.Title != "T" || len(o.Links) != 1 || len(o.Embeds) != 1 || len(o.Tags) != 1 {
		t.Errorf("outline = %+v", o)
	}
}

func TestTransformEndpoint_Stateless(t *testing.T) {
	h, store, router := testEnv(t, "")

	body, _ := json.Marshal(map[string]string{"content": "![[x.png]] #t"})
	req := httptest.NewRequest(http.MethodPost, "/transform", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("transform = %d", w.Code)
	}
	var resp TransformResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Markdown != "![Embedded: x.png](#) "+transform.WrapTag("#t") {
		t.Errorf("markdown = %q", resp.Markdown)
	}
	if !strings.Contains(resp.HTML, `<span class="embed">Embedded: x.png</span>`) {
		t.Errorf("html = %q", resp.HTML)
	}
	if h.Snapshot().Revision != 0 || store.Saves() != 0 {
		t.Error("transform endpoint touched the document")
	}
}

func TestComplete(t *testing.T) {
	_, _, router := testEnv(t, "")
	putDocument(t, router, "[[Meeting Notes]] [[Roadmap]] #planning", "")

	req := httptest.NewRequest(http.MethodGet, "/complete?kind=link&q=meet", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("complete = %d", w.Code)
	}
	var resp CompleteResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Candidates) == 0 || resp.Candidates[0].Value != "Meeting Notes" {
		t.Errorf("candidates = %+v", resp.Candidates)
	}
}

func TestComplete_BadKind(t *testing.T) {
	_, _, router := testEnv(t, "")
	req := httptest.NewRequest(http.MethodGet, "/complete?kind=heading", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad kind = %d, want 400", w.Code)
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	_, _, router := testEnv(t, "secret123")

	req := httptest.NewRequest(http.MethodGet, "/document", nil)
	req.Header.Set("Authorization", "Bearer secret123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("authed get = %d, want 200", w.Code)
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	_, _, router := testEnv(t, "secret123")

	req := httptest.NewRequest(http.MethodGet, "/document", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unauthed = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_WrongToken(t *testing.T) {
	_, _, router := testEnv(t, "secret123")

	req := httptest.NewRequest(http.MethodGet, "/document", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token = %d, want 401", w.Code)
	}
}

// SSE endpoint auth tests.

func TestSSEEvents_AuthProtected(t *testing.T) {
	router := testEnvWithSSE(t, true, "secret")

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

func TestSSEEvents_QueryToken(t *testing.T) {
	router := testEnvWithSSE(t, true, "tok")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events?access_token=tok", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("SSE with query token = %d, want 200", w.Code)
	}
}

// testEnvWithSSE creates a router with a stub SSE handler to test auth on /events.
func testEnvWithSSE(t *testing.T, authEnabled bool, token string) http.Handler {
	t.Helper()
	h, _ := testutil.Holder(t)

	sseHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		<-r.Context().Done()
	})

	return NewRouter(Config{
		Document:    h,
		Renderer:    testutil.Renderer(),
		Events:      sseHandler,
		AuthEnabled: authEnabled,
		Token:       token,
	})
}
