package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"adclip/internal/infra"
	"adclip/internal/providers/openai"
	"adclip/internal/providers/runway"
	"adclip/internal/providers/upstream"
	"adclip/internal/task"
)

// ScriptGenerator produces ad copy from a free-text prompt.
type ScriptGenerator interface {
	GenerateScript(ctx context.Context, prompt string) (string, error)
}

// SpeechSynthesizer turns text into a voiceover asset.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text, voice string) (*openai.SpeechAsset, error)
}

// VideoAPI is the slice of the Runway client the handlers depend on.
type VideoAPI interface {
	CreateTextToImage(ctx context.Context, req runway.TextToImageRequest) (string, error)
	CreateImageToVideo(ctx context.Context, req runway.ImageToVideoRequest) (string, error)
	GetTask(ctx context.Context, id string) (*task.Snapshot, error)
}

// App bundles the handler dependencies: configuration, logging, the provider
// adapters, and one poller per asynchronous pipeline.
type App struct {
	Config      *infra.Config
	Logger      infra.Logger
	ScriptGen   ScriptGenerator
	Speech      SpeechSynthesizer
	Video       VideoAPI
	ImagePoller *task.Poller
	VideoPoller *task.Poller
}

// NewApp wires an App from loaded configuration and constructed providers.
func NewApp(cfg *infra.Config, logger infra.Logger, scriptGen ScriptGenerator, speech SpeechSynthesizer, video VideoAPI) *App {
	return &App{
		Config:    cfg,
		Logger:    logger,
		ScriptGen: scriptGen,
		Speech:    speech,
		Video:     video,
		ImagePoller: task.NewPoller(task.Options{
			Interval: cfg.PollInterval,
			Jitter:   cfg.PollJitter,
			Deadline: cfg.ImageDeadline,
			Logger:   &logger,
		}),
		VideoPoller: task.NewPoller(task.Options{
			Interval: cfg.PollInterval,
			Jitter:   cfg.PollJitter,
			Deadline: cfg.VideoDeadline,
			Logger:   &logger,
		}),
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) plain(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write([]byte(msg))
}

// fail translates adapter errors into the caller-facing taxonomy: upstream
// non-2xx responses are relayed verbatim, terminal task failures become 500
// with the provider payload, poll timeouts become 504 carrying the task id,
// and missing credentials become a 500 configuration error.
func (a *App) fail(w http.ResponseWriter, err error, label string) {
	var ue *upstream.Error
	if errors.As(err, &ue) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(ue.StatusCode)
		_, _ = w.Write(ue.Body)
		return
	}
	var timeout *task.TimeoutError
	if errors.As(err, &timeout) {
		a.json(w, http.StatusGatewayTimeout, map[string]any{
			"error":  "Timeout waiting for " + label,
			"taskId": timeout.TaskID,
		})
		return
	}
	var failure *task.FailureError
	if errors.As(err, &failure) {
		details := json.RawMessage(failure.Details)
		if len(details) == 0 {
			details = json.RawMessage("null")
		}
		a.json(w, http.StatusInternalServerError, map[string]any{
			"error":   label + " failed",
			"details": details,
		})
		return
	}
	a.Logger.Error().Err(err).Str("label", label).Msg("request failed")
	a.plain(w, http.StatusInternalServerError, err.Error())
}
