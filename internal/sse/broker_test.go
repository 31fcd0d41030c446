package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/starford/kyuubi/internal/models"
)

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients")
	}
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}
	b.Unsubscribe(ch)
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after unsub")
	}
}

func TestPublishDocument_Delivery(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishDocument(models.Document{Raw: "hello", Revision: 3})

	select {
	case msg := <-ch:
		s := string(msg)
		if !strings.HasPrefix(s, "event: "+EventDocumentUpdated+"\n") {
			t.Errorf("missing event type in %q", s)
		}
		if !strings.Contains(s, `"raw":"hello"`) || !strings.HasSuffix(s, "\n\n") {
			t.Errorf("bad frame %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func TestPublishDocument_OutlineThrottle(t *testing.T) {
	b := NewBroker(500 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishDocument(models.Document{Raw: "a", Revision: 1, Origin: "tab-1"})
	b.PublishDocument(models.Document{Raw: "b", Revision: 2, Origin: "tab-1"})

	time.Sleep(50 * time.Millisecond)
	outlineCount := 0
	docCount := 0
loop:
	for {
		select {
		case msg := <-ch:
			s := string(msg)
			switch {
			case strings.Contains(s, "event: "+EventOutlineUpdated):
				outlineCount++
			case strings.Contains(s, "event: "+EventDocumentUpdated):
				docCount++
				if !strings.Contains(s, `"origin":"tab-1"`) {
					t.Errorf("document event lacks origin: %q", s)
				}
			}
		default:
			break loop
		}
	}

	if docCount != 2 {
		t.Errorf("document events = %d, want 2", docCount)
	}
	if outlineCount != 1 {
		t.Errorf("outline events = %d, want 1 (throttled)", outlineCount)
	}
}

func TestHandler_SendsInitialSnapshot(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil).WithContext(ctx)
	w := httptest.NewRecorder()

	current := func() models.Document { return models.Document{Raw: "hello", Revision: 7} }
	done := make(chan struct{})
	go func() {
		b.Handler(current).ServeHTTP(w, req)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client from handler")
	}

	b.PublishDocument(models.Document{Raw: "next", Revision: 8})
	time.Sleep(50 * time.Millisecond)

	cancel()
	<-done

	body := w.Body.String()
	if w.Header().Get("Content-Type") != "text/event-stream" {
		t.Errorf("content type = %q", w.Header().Get("Content-Type"))
	}
	first := strings.Index(body, `"raw":"hello"`)
	second := strings.Index(body, `"raw":"next"`)
	if first < 0 || second < 0 || first > second {
		t.Errorf("want initial snapshot before the update, got %q", body)
	}

	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 0 {
		t.Errorf("client not cleaned up after disconnect")
	}
}

func TestPublishDropsOnFullBuffer(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	// Buffer holds 64; the rest must be dropped without blocking.
	for i := 0; i < 70; i++ {
		b.PublishDocument(models.Document{Revision: uint64(i)})
	}
}

func TestCloseClosesSubscribersAndStopsOperations(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}

	b.Close()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected subscriber channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for channel close")
	}

	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after close")
	}

	// Safe no-ops after close.
	b.PublishDocument(models.Document{})
}
