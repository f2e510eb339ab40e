package runway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"adclip/internal/providers/upstream"
	"adclip/internal/task"
)

type captureTransport struct {
	status   int
	body     string
	lastReq  *http.Request
	lastBody []byte
}

func (t *captureTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.lastReq = req
	if req.Body != nil {
		t.lastBody, _ = io.ReadAll(req.Body)
	}
	status := t.status
	if status == 0 {
		status = http.StatusOK
	}
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(t.body)),
		Header:     make(http.Header),
		Request:    req,
	}, nil
}

func newTestClient(t *testing.T, transport *captureTransport) *Client {
	t.Helper()
	client, err := NewClient(Options{
		APIKey:     "test-key",
		HTTPClient: &http.Client{Transport: transport},
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestCreateTextToImageNormalizesAndSubmits(t *testing.T) {
	transport := &captureTransport{body: `{"id":"task-123"}`}
	client := newTestClient(t, transport)

	id, err := client.CreateTextToImage(context.Background(), TextToImageRequest{
		PromptText: "ad for shoes",
		Ratio:      "9:16",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id != "task-123" {
		t.Fatalf("task id = %q", id)
	}
	if got := transport.lastReq.URL.Path; !strings.HasSuffix(got, "/text_to_image") {
		t.Fatalf("path = %q", got)
	}
	if got := transport.lastReq.Header.Get("Authorization"); got != "Bearer test-key" {
		t.Fatalf("authorization = %q", got)
	}
	if got := transport.lastReq.Header.Get("X-Runway-Version"); got != "2024-11-06" {
		t.Fatalf("version header = %q", got)
	}

	var payload map[string]any
	if err := json.Unmarshal(transport.lastBody, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload["model"] != "gen4_image" {
		t.Fatalf("model = %v", payload["model"])
	}
	if payload["ratio"] != "720:1280" {
		t.Fatalf("ratio = %v, want 720:1280", payload["ratio"])
	}
}

func TestCreateImageToVideoAppliesDefaults(t *testing.T) {
	transport := &captureTransport{body: `{"id":"task-9"}`}
	client := newTestClient(t, transport)

	id, err := client.CreateImageToVideo(context.Background(), ImageToVideoRequest{
		PromptImage: "https://cdn.example.com/frame.png",
		Ratio:       "bogus",
		Duration:    float64(-5),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id != "task-9" {
		t.Fatalf("task id = %q", id)
	}

	var payload map[string]any
	if err := json.Unmarshal(transport.lastBody, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload["ratio"] != DefaultSize {
		t.Fatalf("ratio = %v, want %s", payload["ratio"], DefaultSize)
	}
	if payload["duration"] != float64(DefaultDuration) {
		t.Fatalf("duration = %v, want %d", payload["duration"], DefaultDuration)
	}
	if payload["model"] != "gen3_alpha" {
		t.Fatalf("model = %v, want gen3_alpha", payload["model"])
	}
}

func TestCreateImageToVideoRequiresPromptImage(t *testing.T) {
	client := newTestClient(t, &captureTransport{body: `{"id":"x"}`})
	_, err := client.CreateImageToVideo(context.Background(), ImageToVideoRequest{PromptText: "no frame"})
	if !errors.Is(err, ErrMissingPromptImage) {
		t.Fatalf("err = %v, want ErrMissingPromptImage", err)
	}
}

func TestCreateTextToImageRequiresPrompt(t *testing.T) {
	client := newTestClient(t, &captureTransport{body: `{"id":"x"}`})
	_, err := client.CreateTextToImage(context.Background(), TextToImageRequest{PromptText: "   "})
	if !errors.Is(err, ErrMissingPromptText) {
		t.Fatalf("err = %v, want ErrMissingPromptText", err)
	}
}

func TestUpstreamErrorCarriesStatusAndBody(t *testing.T) {
	transport := &captureTransport{status: http.StatusTooManyRequests, body: `{"error":"rate limited"}`}
	client := newTestClient(t, transport)

	_, err := client.CreateTextToImage(context.Background(), TextToImageRequest{PromptText: "x"})
	var ue *upstream.Error
	if !errors.As(err, &ue) {
		t.Fatalf("err = %v, want *upstream.Error", err)
	}
	if ue.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("status = %d", ue.StatusCode)
	}
	if !strings.Contains(string(ue.Body), "rate limited") {
		t.Fatalf("body = %s", ue.Body)
	}
}

func TestGetTaskDecodesSnapshot(t *testing.T) {
	raw := `{"id":"task-5","status":"SUCCEEDED","output":["https://cdn/video.mp4"],"progress":1}`
	transport := &captureTransport{body: raw}
	client := newTestClient(t, transport)

	snap, err := client.GetTask(context.Background(), "task-5")
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if snap.Status != task.StatusSucceeded {
		t.Fatalf("status = %s", snap.Status)
	}
	if snap.FirstOutput() != "https://cdn/video.mp4" {
		t.Fatalf("output = %v", snap.Output)
	}
	if string(snap.Raw) != raw {
		t.Fatalf("raw payload not preserved: %s", snap.Raw)
	}
	if got := transport.lastReq.URL.Path; !strings.HasSuffix(got, "/tasks/task-5") {
		t.Fatalf("path = %q", got)
	}
}

func TestClientRequiresAPIKey(t *testing.T) {
	client, err := NewClient(Options{})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if client.HasCredentials() {
		t.Fatalf("expected no credentials")
	}
	if _, err := client.GetTask(context.Background(), "t"); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("err = %v, want ErrMissingAPIKey", err)
	}
}
