package dashboard

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/felixgeelhaar/goalgenie/pkg/ai"
	"github.com/felixgeelhaar/goalgenie/pkg/application"
	"github.com/felixgeelhaar/goalgenie/pkg/storage"
)

const validGoalBody = `{"title":"Learn Go","startDate":"2026-05-01","numberOfDays":2,"hoursPerDay":1.5}`

type fixture struct {
	srv *Server
	ts  *httptest.Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := storage.NewFilesystemRepository(t.TempDir())
	if err := repo.Initialize(); err != nil {
		t.Fatal(err)
	}

	goals := application.NewGoalService(repo, application.NewPlanAssembler(&ai.MockProvider{Model: "m"}, logger), nil, nil, logger)
	progress := application.NewProgressService(repo, nil, logger)
	srv := New(goals, progress, Options{AllowedOrigins: []string{"http://allowed.example"}, Logger: logger})

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		srv.Hub().Close()
		ts.Close()
	})
	return &fixture{srv: srv, ts: ts}
}

func (f *fixture) do(t *testing.T, method, path, body string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, f.ts.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close() //nolint:errcheck // test
	data, _ := io.ReadAll(resp.Body)
	return resp, data
}

func (f *fixture) createGoal(t *testing.T) string {
	t.Helper()
	resp, body := f.do(t, http.MethodPost, "/api/goals", validGoalBody)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, body)
	}
	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &created); err != nil || created.ID == "" {
		t.Fatalf("unexpected create response %s", body)
	}
	return created.ID
}

func decodeErr(t *testing.T, body []byte) APIError {
	t.Helper()
	var payload apiErrorBody
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("decode error body %s: %v", body, err)
	}
	return payload.Error
}

func TestHealthz(t *testing.T) {
	f := newFixture(t)
	resp, body := f.do(t, http.MethodGet, "/healthz", "")
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), `"ok":true`) {
		t.Errorf("unexpected healthz response %d %s", resp.StatusCode, body)
	}
}

func TestCreateGoal(t *testing.T) {
	f := newFixture(t)
	resp, body := f.do(t, http.MethodPost, "/api/goals", validGoalBody)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, body)
	}

	var g struct {
		ID        string `json:"id"`
		Title     string `json:"title"`
		StartDate string `json:"startDate"`
		DailyPlan []struct {
			Day  int    `json:"day"`
			Task string `json:"task"`
		} `json:"dailyPlan"`
	}
	if err := json.Unmarshal(body, &g); err != nil {
		t.Fatal(err)
	}
	if g.Title != "Learn Go" || g.StartDate != "2026-05-01" || len(g.DailyPlan) != 2 {
		t.Errorf("unexpected goal %+v", g)
	}
}

func TestCreateGoal_Invalid(t *testing.T) {
	f := newFixture(t)

	tests := map[string]struct {
		body  string
		field string
	}{
		"missing title":  {`{"startDate":"2026-05-01","numberOfDays":2,"hoursPerDay":1}`, "title"},
		"zero days":      {`{"title":"x","startDate":"2026-05-01","numberOfDays":0,"hoursPerDay":1}`, "numberOfDays"},
		"too many hours": {`{"title":"x","startDate":"2026-05-01","numberOfDays":2,"hoursPerDay":25}`, "hoursPerDay"},
		"days as string": {`{"title":"x","startDate":"2026-05-01","numberOfDays":"2","hoursPerDay":1}`, "numberOfDays"},
		"blank title":    {`{"title":"   ","startDate":"2026-05-01","numberOfDays":2,"hoursPerDay":1}`, "title"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			resp, body := f.do(t, http.MethodPost, "/api/goals", tt.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", resp.StatusCode, body)
			}
			apiErr := decodeErr(t, body)
			if apiErr.Code != "invalid_request" {
				t.Errorf("unexpected code %q", apiErr.Code)
			}
			if !strings.Contains(string(body), `"field":"`+tt.field+`"`) {
				t.Errorf("expected field %s in %s", tt.field, body)
			}
		})
	}
}

func TestCreateGoal_MalformedBody(t *testing.T) {
	f := newFixture(t)
	for _, body := range []string{`{"title":`, `{"title":"x","startDate":"soon","numberOfDays":1,"hoursPerDay":1}`} {
		resp, data := f.do(t, http.MethodPost, "/api/goals", body)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("body %s: expected 400, got %d: %s", body, resp.StatusCode, data)
		}
	}
}

func TestGetGoal_NotFound(t *testing.T) {
	f := newFixture(t)
	resp, body := f.do(t, http.MethodGet, "/api/goals/missing", "")
	if resp.StatusCode != http.StatusNotFound || decodeErr(t, body).Code != "not_found" {
		t.Errorf("expected 404 not_found, got %d %s", resp.StatusCode, body)
	}
}

func TestListAndDeleteGoal(t *testing.T) {
	f := newFixture(t)
	id := f.createGoal(t)

	resp, body := f.do(t, http.MethodGet, "/api/goals", "")
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), id) {
		t.Errorf("expected goal in list, got %d %s", resp.StatusCode, body)
	}

	resp, _ = f.do(t, http.MethodDelete, "/api/goals/"+id, "")
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("expected 204, got %d", resp.StatusCode)
	}
	resp, _ = f.do(t, http.MethodGet, "/api/goals/"+id, "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", resp.StatusCode)
	}
}

func TestProgressEndpoints(t *testing.T) {
	f := newFixture(t)
	id := f.createGoal(t)
	base := "/api/goals/" + id

	resp, body := f.do(t, http.MethodPost, base+"/items/0-0-0/toggle", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("toggle: %d %s", resp.StatusCode, body)
	}
	var update application.ProgressUpdate
	_ = json.Unmarshal(body, &update)
	if !update.Checked || update.Progress.Completed != 1 {
		t.Errorf("unexpected toggle update %+v", update)
	}

	resp, body = f.do(t, http.MethodGet, base+"/progress", "")
	var progress progressResponse
	_ = json.Unmarshal(body, &progress)
	if resp.StatusCode != http.StatusOK || progress.Version != 1 || len(progress.Checked) != 1 || progress.Checked[0] != "0-0-0" {
		t.Errorf("unexpected progress %d %s", resp.StatusCode, body)
	}

	resp, body = f.do(t, http.MethodPut, base+"/items/0-0-0-1", `{"checked":true}`)
	_ = json.Unmarshal(body, &update)
	if resp.StatusCode != http.StatusOK || !update.Checked || update.Progress.Completed != 2 {
		t.Errorf("unexpected set update %d %s", resp.StatusCode, body)
	}

	resp, body = f.do(t, http.MethodGet, base, "")
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), `"checked":["0-0-0","0-0-0-1"]`) {
		t.Errorf("unexpected goal response %d %s", resp.StatusCode, body)
	}

	resp, body = f.do(t, http.MethodDelete, base+"/progress", "")
	_ = json.Unmarshal(body, &update)
	if resp.StatusCode != http.StatusOK || !update.Reset || update.Progress.Completed != 0 {
		t.Errorf("unexpected reset %d %s", resp.StatusCode, body)
	}
}

func TestProgressEndpoints_Errors(t *testing.T) {
	f := newFixture(t)
	id := f.createGoal(t)
	base := "/api/goals/" + id

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		code   string
	}{
		{"bad key", http.MethodPost, base + "/items/x/toggle", "", http.StatusBadRequest, "invalid_request"},
		{"unknown item", http.MethodPost, base + "/items/9-0-0/toggle", "", http.StatusNotFound, "unknown_item"},
		{"unknown goal", http.MethodPost, "/api/goals/nope/items/0-0-0/toggle", "", http.StatusNotFound, "not_found"},
		{"missing checked", http.MethodPut, base + "/items/0-0-0", `{}`, http.StatusBadRequest, "invalid_request"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := f.do(t, tt.method, tt.path, tt.body)
			if resp.StatusCode != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, resp.StatusCode, body)
			}
			if code := decodeErr(t, body).Code; code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, code)
			}
		})
	}
}

func TestCORS(t *testing.T) {
	f := newFixture(t)

	req, _ := http.NewRequest(http.MethodOptions, f.ts.URL+"/api/goals", nil)
	req.Header.Set("Origin", "http://allowed.example")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent || resp.Header.Get("Access-Control-Allow-Origin") != "http://allowed.example" {
		t.Errorf("unexpected preflight %d %v", resp.StatusCode, resp.Header)
	}

	req, _ = http.NewRequest(http.MethodGet, f.ts.URL+"/api/goals", nil)
	req.Header.Set("Origin", "http://evil.example")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()
	if resp.Header.Get("Access-Control-Allow-Origin") != "" {
		t.Error("disallowed origin received CORS headers")
	}
}

func noRedirectClient() *http.Client {
	return &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}
}

func TestHTMLFlow(t *testing.T) {
	f := newFixture(t)
	client := noRedirectClient()

	resp, body := f.do(t, http.MethodGet, "/", "")
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "No goals yet.") {
		t.Fatalf("unexpected index %d", resp.StatusCode)
	}

	form := url.Values{
		"title":        {"Learn <Go>"},
		"startDate":    {"2026-05-01"},
		"numberOfDays": {"2"},
		"hoursPerDay":  {"2"},
	}
	resp, err := client.PostForm(f.ts.URL+"/goals", form)
	if err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", resp.StatusCode)
	}
	location := resp.Header.Get("Location")
	if !strings.HasPrefix(location, "/goals/") {
		t.Fatalf("unexpected redirect %q", location)
	}

	resp, body = f.do(t, http.MethodGet, location, "")
	page := string(body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("goal page: %d", resp.StatusCode)
	}
	for _, want := range []string{"Learn &lt;Go&gt;", "2026-05-02", "Introduction", `value="0-0-0-1"`, "(2 tasks)", "0%"} {
		if !strings.Contains(page, want) {
			t.Errorf("goal page missing %q", want)
		}
	}

	resp, err = client.PostForm(f.ts.URL+location+"/toggle", url.Values{"key": {"0-0-0"}})
	if err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Errorf("expected 303 after toggle, got %d", resp.StatusCode)
	}

	_, body = f.do(t, http.MethodGet, location, "")
	if !strings.Contains(string(body), "1 of 17") {
		t.Error("expected toggled item to count towards progress")
	}
}

func TestHTMLCreate_Invalid(t *testing.T) {
	f := newFixture(t)
	resp, err := noRedirectClient().PostForm(f.ts.URL+"/goals", url.Values{
		"title":        {""},
		"startDate":    {"2026-05-01"},
		"numberOfDays": {"many"},
		"hoursPerDay":  {"1"},
	})
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close() //nolint:errcheck // test
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusBadRequest || !strings.Contains(string(body), "numberOfDays: must be a whole number") {
		t.Errorf("unexpected response %d %s", resp.StatusCode, body)
	}
}

func TestWebsocketReceivesProgress(t *testing.T) {
	f := newFixture(t)
	id := f.createGoal(t)

	wsURL := "ws" + strings.TrimPrefix(f.ts.URL, "http") + "/ws"
	ws, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial: %v", err)
	}
	defer func() { _ = ws.Close() }()

	deadline := time.Now().Add(2 * time.Second)
	for f.srv.Hub().ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	if resp, body := f.do(t, http.MethodPost, "/api/goals/"+id+"/items/1-0-0/toggle", ""); resp.StatusCode != http.StatusOK {
		t.Fatalf("toggle: %d %s", resp.StatusCode, body)
	}

	_ = ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg Message
	if err := ws.ReadJSON(&msg); err != nil {
		t.Fatalf("read message: %v", err)
	}
	if msg.Type != MessageProgress || msg.GoalID != id || msg.Key != "1-0-0" || !msg.Checked {
		t.Errorf("unexpected message %+v", msg)
	}
	if msg.Progress == nil || msg.Progress.Completed != 1 {
		t.Errorf("expected progress in message, got %+v", msg.Progress)
	}

	f.srv.Hub().BroadcastWorkspaceChange("/w/.goalgenie/goal-"+id+".json", id)
	if err := ws.ReadJSON(&msg); err != nil {
		t.Fatalf("read message: %v", err)
	}
	if msg.Type != MessageWorkspaceChanged || msg.GoalID != id {
		t.Errorf("unexpected message %+v", msg)
	}
}

func TestWebsocketRejectsForeignOrigin(t *testing.T) {
	f := newFixture(t)
	wsURL := "ws" + strings.TrimPrefix(f.ts.URL, "http") + "/ws"

	header := http.Header{"Origin": {"http://evil.example"}}
	if _, _, err := websocket.DefaultDialer.Dial(wsURL, header); err == nil {
		t.Error("expected handshake to fail for a foreign origin")
	}
}

func TestValidateGoalBody(t *testing.T) {
	if err := validateGoalBody([]byte(validGoalBody)); err != nil {
		t.Errorf("valid body rejected: %v", err)
	}
	if err := validateGoalBody(bytes.Repeat([]byte("{"), 3)); err == nil {
		t.Error("expected error for malformed JSON")
	}
}
