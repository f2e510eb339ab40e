package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"adclip/internal/infra"
	"adclip/internal/providers/runway"
)

// fakeRunway simulates the provider's submit and task endpoints: jobs report
// RUNNING for a configured number of polls and then succeed with the given
// output.
type fakeRunway struct {
	mu          sync.Mutex
	pollsNeeded int
	output      []string
	polls       int
	submissions []map[string]any
}

func (f *fakeRunway) handler() http.Handler {
	mux := http.NewServeMux()
	submit := func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var payload map[string]any
		_ = json.Unmarshal(body, &payload)
		f.mu.Lock()
		f.submissions = append(f.submissions, payload)
		f.mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "job-1"})
	}
	mux.HandleFunc("/text_to_image", submit)
	mux.HandleFunc("/image_to_video", submit)
	mux.HandleFunc("/tasks/", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.polls++
		done := f.polls > f.pollsNeeded
		f.mu.Unlock()
		resp := map[string]any{"id": "job-1", "status": "RUNNING"}
		if done {
			resp["status"] = "SUCCEEDED"
			resp["output"] = f.output
		}
		_ = json.NewEncoder(w).Encode(resp)
	})
	return mux
}

func (f *fakeRunway) lastSubmission(t *testing.T) map[string]any {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.submissions) == 0 {
		t.Fatalf("no submissions captured")
	}
	return f.submissions[len(f.submissions)-1]
}

func integrationApp(t *testing.T, provider *fakeRunway) (*App, *fakeRunway) {
	t.Helper()
	srv := httptest.NewServer(provider.handler())
	t.Cleanup(srv.Close)

	client, err := runway.NewClient(runway.Options{
		APIKey:     "test-key",
		BaseURL:    srv.URL,
		HTTPClient: srv.Client(),
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	cfg := &infra.Config{
		PollInterval:  time.Millisecond,
		ImageDeadline: 2 * time.Second,
		VideoDeadline: 2 * time.Second,
	}
	return NewApp(cfg, zerolog.New(io.Discard), stubScriptGen{}, stubSpeech{}, client), provider
}

func TestImagePipelineEndToEnd(t *testing.T) {
	app, provider := integrationApp(t, &fakeRunway{pollsNeeded: 2, output: []string{"http://img"}})

	req := httptest.NewRequest(http.MethodPost, "/api/runway/text_to_image",
		strings.NewReader(`{"promptText":"ad for shoes","ratio":"9:16"}`))
	rec := httptest.NewRecorder()
	app.TextToImage(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		ImageURL string `json:"imageUrl"`
		TaskID   string `json:"taskId"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.ImageURL != "http://img" {
		t.Fatalf("imageUrl = %q", resp.ImageURL)
	}
	if resp.TaskID != "job-1" {
		t.Fatalf("taskId = %q", resp.TaskID)
	}

	submitted := provider.lastSubmission(t)
	if submitted["ratio"] != "720:1280" {
		t.Fatalf("provider received ratio %v, want 720:1280", submitted["ratio"])
	}
	if submitted["model"] != "gen4_image" {
		t.Fatalf("provider received model %v", submitted["model"])
	}
}

func TestVideoPipelineNormalizesMalformedInput(t *testing.T) {
	app, provider := integrationApp(t, &fakeRunway{output: []string{"http://video.mp4"}})

	req := httptest.NewRequest(http.MethodPost, "/api/runway/image_to_video",
		strings.NewReader(`{"promptImage":"https://cdn/frame.png","duration":-5,"ratio":"bogus"}`))
	rec := httptest.NewRecorder()
	app.ImageToVideo(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d, body = %s", rec.Code, rec.Body.String())
	}

	submitted := provider.lastSubmission(t)
	if submitted["duration"] != float64(5) {
		t.Fatalf("provider received duration %v, want 5", submitted["duration"])
	}
	if submitted["ratio"] != "1280:720" {
		t.Fatalf("provider received ratio %v, want 1280:720", submitted["ratio"])
	}
	if submitted["model"] != "gen3_alpha" {
		t.Fatalf("provider received model %v, want gen3_alpha", submitted["model"])
	}
}
