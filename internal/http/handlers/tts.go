package handlers

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"adclip/internal/metrics"
)

type ttsRequest struct {
	Text  string `json:"text"`
	Voice string `json:"voice"`
}

type ttsResponse struct {
	Base64 string `json:"base64"`
	MIME   string `json:"mime"`
}

// TTS synthesizes the current script into an MP3 voiceover and returns it
// base64-encoded so the browser can play it from a data URL.
func (a *App) TTS(w http.ResponseWriter, r *http.Request) {
	var req ttsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.plain(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		a.plain(w, http.StatusBadRequest, "Missing text")
		return
	}
	asset, err := a.Speech.Synthesize(r.Context(), req.Text, req.Voice)
	if err != nil {
		metrics.ProviderCalls.WithLabelValues("openai", "tts", "error").Inc()
		a.fail(w, err, "tts")
		return
	}
	metrics.ProviderCalls.WithLabelValues("openai", "tts", "ok").Inc()
	a.json(w, http.StatusOK, ttsResponse{
		Base64: base64.StdEncoding.EncodeToString(asset.Data),
		MIME:   asset.MIME,
	})
}
