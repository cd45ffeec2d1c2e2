package webhook

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/felixgeelhaar/goalgenie/pkg/application"
	"github.com/felixgeelhaar/goalgenie/pkg/domain/planning"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type recorder struct {
	mu       sync.Mutex
	payloads []Payload
	sigs     []string
	bodies   [][]byte
}

func (r *recorder) handler(status int) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		body, _ := io.ReadAll(req.Body)
		var p Payload
		_ = json.Unmarshal(body, &p)

		r.mu.Lock()
		r.payloads = append(r.payloads, p)
		r.sigs = append(r.sigs, req.Header.Get(SignatureHeader))
		r.bodies = append(r.bodies, body)
		r.mu.Unlock()
		w.WriteHeader(status)
	}
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, p := range r.payloads {
		out = append(out, p.EventType)
	}
	return out
}

func update(completed, total int, checked bool) application.ProgressUpdate {
	return application.ProgressUpdate{
		GoalID:   "g1",
		Key:      "0-0-0",
		Checked:  checked,
		Progress: planning.Progress{Completed: completed, Total: total},
	}
}

func TestNotifier_DeliversProgress(t *testing.T) {
	rec := &recorder{}
	server := httptest.NewServer(rec.handler(http.StatusOK))
	defer server.Close()

	n := NewNotifier([]Endpoint{{Name: "test", URL: server.URL}}, nil, quietLogger())
	n.NotifyProgress(update(1, 3, true))
	n.Wait()

	got := rec.types()
	if len(got) != 1 || got[0] != EventProgressUpdated {
		t.Fatalf("unexpected events %v", got)
	}

	var data application.ProgressUpdate
	raw, _ := json.Marshal(rec.payloads[0].Data)
	if err := json.Unmarshal(raw, &data); err != nil {
		t.Fatal(err)
	}
	if data.GoalID != "g1" || data.Progress.Completed != 1 {
		t.Errorf("unexpected payload data %+v", data)
	}
}

func TestNotifier_GoalCompleted(t *testing.T) {
	rec := &recorder{}
	server := httptest.NewServer(rec.handler(http.StatusOK))
	defer server.Close()

	n := NewNotifier([]Endpoint{{Name: "test", URL: server.URL, Events: []string{EventGoalCompleted}}}, nil, quietLogger())
	n.NotifyProgress(update(2, 3, true))
	n.NotifyProgress(update(3, 3, false)) // unchecking never completes
	n.Wait()
	if got := rec.types(); len(got) != 0 {
		t.Fatalf("expected no deliveries yet, got %v", got)
	}

	n.NotifyProgress(update(3, 3, true))
	n.Wait()
	if got := rec.types(); len(got) != 1 || got[0] != EventGoalCompleted {
		t.Fatalf("unexpected events %v", got)
	}
}

func TestNotifier_Reset(t *testing.T) {
	rec := &recorder{}
	server := httptest.NewServer(rec.handler(http.StatusOK))
	defer server.Close()

	n := NewNotifier([]Endpoint{{Name: "test", URL: server.URL}}, nil, quietLogger())
	n.NotifyProgress(application.ProgressUpdate{GoalID: "g1", Reset: true, Progress: planning.Progress{Total: 3}})
	n.Wait()

	if got := rec.types(); len(got) != 1 || got[0] != EventProgressReset {
		t.Fatalf("unexpected events %v", got)
	}
}

func TestNotifier_HMACSignature(t *testing.T) {
	rec := &recorder{}
	server := httptest.NewServer(rec.handler(http.StatusOK))
	defer server.Close()

	n := NewNotifier([]Endpoint{{Name: "test", URL: server.URL, Secret: "test-secret"}}, nil, quietLogger())
	n.Notify(EventProgressUpdated, map[string]string{"goal_id": "g1"})
	n.Wait()

	if len(rec.sigs) != 1 || rec.sigs[0] == "" {
		t.Fatalf("expected %s header", SignatureHeader)
	}
	if want := Sign(rec.bodies[0], "test-secret"); rec.sigs[0] != want {
		t.Errorf("signature mismatch: got %s, want %s", rec.sigs[0], want)
	}
}

func TestNotifier_RetryAndDeadLetter(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	store := NewDeadLetterStore(filepath.Join(t.TempDir(), DeadLetterFile))
	ep := Endpoint{Name: "flaky", URL: server.URL, MaxRetries: 2, RetryDelay: 5 * time.Millisecond}

	n := NewNotifier([]Endpoint{ep}, store, quietLogger())
	n.NotifyProgress(update(1, 3, true))
	n.Wait()

	if attempts.Load() != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts.Load())
	}
	entries, err := store.ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].WebhookName != "flaky" || entries[0].EventType != EventProgressUpdated || entries[0].Attempts != 3 {
		t.Errorf("unexpected dead letters %+v", entries)
	}
}

func TestDeadLetterStore_ReadAll_MissingFile(t *testing.T) {
	store := NewDeadLetterStore(filepath.Join(t.TempDir(), "nonexistent.jsonl"))

	entries, err := store.ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if entries != nil {
		t.Errorf("expected nil entries for missing file, got %v", entries)
	}
}
