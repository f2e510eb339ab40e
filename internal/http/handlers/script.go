package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"adclip/internal/metrics"
)

type scriptRequest struct {
	Prompt string `json:"prompt"`
}

type scriptResponse struct {
	Script string `json:"script"`
}

// Script generates voiceover ad copy from a free-text prompt.
func (a *App) Script(w http.ResponseWriter, r *http.Request) {
	var req scriptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.plain(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		a.plain(w, http.StatusBadRequest, "Missing prompt")
		return
	}
	script, err := a.ScriptGen.GenerateScript(r.Context(), req.Prompt)
	if err != nil {
		metrics.ProviderCalls.WithLabelValues("openai", "script", "error").Inc()
		a.fail(w, err, "script")
		return
	}
	metrics.ProviderCalls.WithLabelValues("openai", "script", "ok").Inc()
	a.json(w, http.StatusOK, scriptResponse{Script: script})
}
