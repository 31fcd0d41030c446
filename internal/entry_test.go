package internal

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/starford/kyuubi/internal/models"
	"github.com/starford/kyuubi/internal/sse"
)

func TestReadyHandler_ReportsClients(t *testing.T) {
	broker := sse.NewBroker(time.Second)
	defer broker.Close()
	ch := broker.Subscribe()
	defer broker.Unsubscribe(ch)

	snapshot := func() models.Document { return models.Document{Revision: 4} }
	w := httptest.NewRecorder()
	readyHandler(snapshot, broker.ClientCount)(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var body struct {
		Status   string `json:"status"`
		Revision uint64 `json:"revision"`
		Clients  int    `json:"clients"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	if body.Status != "ok" || body.Revision != 4 || body.Clients != 1 {
		t.Errorf("body = %+v", body)
	}
}
