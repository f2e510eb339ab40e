package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"adclip/internal/metrics"
	"adclip/internal/providers/runway"
	"adclip/internal/task"
)

type textToImageRequest struct {
	PromptText string `json:"promptText"`
	Ratio      string `json:"ratio"`
}

type textToImageResponse struct {
	ImageURL string `json:"imageUrl"`
	TaskID   string `json:"taskId"`
}

type imageToVideoRequest struct {
	PromptImage string `json:"promptImage"`
	PromptText  string `json:"promptText"`
	Ratio       string `json:"ratio"`
	Duration    any    `json:"duration"`
	Model       string `json:"model"`
	Wait        bool   `json:"wait"`
}

type imageToVideoAccepted struct {
	TaskID string `json:"taskId"`
}

type imageToVideoResult struct {
	VideoURL string   `json:"videoUrl"`
	Outputs  []string `json:"outputs"`
	TaskID   string   `json:"taskId"`
}

type taskStatusResponse struct {
	Status  task.Status     `json:"status"`
	Output  []string        `json:"output"`
	Details json.RawMessage `json:"details"`
}

// TextToImage submits an image generation job and waits for it to complete,
// returning the first output URL. The synthesized image becomes the first
// frame of the video pipeline.
func (a *App) TextToImage(w http.ResponseWriter, r *http.Request) {
	var req textToImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.plain(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if strings.TrimSpace(req.PromptText) == "" {
		a.plain(w, http.StatusBadRequest, "Missing promptText")
		return
	}

	taskID, err := a.Video.CreateTextToImage(r.Context(), runway.TextToImageRequest{
		PromptText: req.PromptText,
		Ratio:      req.Ratio,
	})
	if err != nil {
		metrics.ProviderCalls.WithLabelValues("runway", "text_to_image", "error").Inc()
		a.fail(w, err, "text_to_image")
		return
	}
	metrics.ProviderCalls.WithLabelValues("runway", "text_to_image", "ok").Inc()

	snap, err := a.pollTask(r, a.ImagePoller, taskID, "image")
	if err != nil {
		a.fail(w, err, "text_to_image")
		return
	}
	a.json(w, http.StatusOK, textToImageResponse{ImageURL: snap.FirstOutput(), TaskID: taskID})
}

// ImageToVideo submits a video generation job. By default it returns the task
// id immediately and leaves polling to the caller; with wait=true it blocks
// until the job resolves and returns the output URLs.
func (a *App) ImageToVideo(w http.ResponseWriter, r *http.Request) {
	var req imageToVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.plain(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if strings.TrimSpace(req.PromptImage) == "" {
		a.plain(w, http.StatusBadRequest, "Missing promptImage")
		return
	}

	taskID, err := a.Video.CreateImageToVideo(r.Context(), runway.ImageToVideoRequest{
		PromptImage: req.PromptImage,
		PromptText:  req.PromptText,
		Ratio:       req.Ratio,
		Duration:    req.Duration,
		Model:       req.Model,
	})
	if err != nil {
		metrics.ProviderCalls.WithLabelValues("runway", "image_to_video", "error").Inc()
		a.fail(w, err, "image_to_video")
		return
	}
	metrics.ProviderCalls.WithLabelValues("runway", "image_to_video", "ok").Inc()

	if !req.Wait {
		a.json(w, http.StatusOK, imageToVideoAccepted{TaskID: taskID})
		return
	}

	snap, err := a.pollTask(r, a.VideoPoller, taskID, "video")
	if err != nil {
		a.fail(w, err, "image_to_video")
		return
	}
	a.json(w, http.StatusOK, imageToVideoResult{
		VideoURL: snap.FirstOutput(),
		Outputs:  snap.Output,
		TaskID:   taskID,
	})
}

// TaskStatus relays one raw status snapshot. This is the primitive the
// browser polls while a video renders.
func (a *App) TaskStatus(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		a.plain(w, http.StatusBadRequest, "Missing id")
		return
	}
	snap, err := a.Video.GetTask(r.Context(), id)
	if err != nil {
		metrics.ProviderCalls.WithLabelValues("runway", "task", "error").Inc()
		a.fail(w, err, "task")
		return
	}
	metrics.ProviderCalls.WithLabelValues("runway", "task", "ok").Inc()
	details := json.RawMessage(snap.Raw)
	if len(details) == 0 {
		details = json.RawMessage("null")
	}
	a.json(w, http.StatusOK, taskStatusResponse{
		Status:  snap.Status,
		Output:  snap.Output,
		Details: details,
	})
}

func (a *App) pollTask(r *http.Request, poller *task.Poller, taskID, operation string) (*task.Snapshot, error) {
	start := time.Now()
	snap, err := poller.PollUntilDone(r.Context(), taskID, a.Video.GetTask)
	outcome := "ok"
	if err != nil {
		outcome = "error"
		var timeout *task.TimeoutError
		if errors.As(err, &timeout) {
			outcome = "timeout"
		}
	}
	metrics.PollDuration.WithLabelValues(operation, outcome).Observe(time.Since(start).Seconds())
	return snap, err
}
