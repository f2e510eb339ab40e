package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"adclip/internal/infra"
	"adclip/internal/providers/upstream"
)

// ErrMissingAPIKey indicates that the client was configured without credentials.
var ErrMissingAPIKey = errors.New("openai: api key is required")

// ErrMissingPrompt indicates a script request without a prompt.
var ErrMissingPrompt = errors.New("openai: prompt is required")

// ErrMissingText indicates a speech request without input text.
var ErrMissingText = errors.New("openai: text is required")

const (
	defaultModel   = "gpt-4o-mini"
	defaultVoice   = "alloy"
	ttsModel       = "gpt-4o-mini-tts"
	scriptPersona  = "You are a concise performance ad copywriter."
	scriptTemp     = 0.8
	defaultTimeout = 60 * time.Second
	speechMIMEType = "audio/mpeg"
)

// Options configures the OpenAI client.
type Options struct {
	APIKey         string
	BaseURL        string
	Model          string
	Voice          string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client wraps the two OpenAI capabilities this service consumes: chat
// completions for ad scripts and speech synthesis for voiceovers.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	voice      string
	httpClient *http.Client
	logger     infra.Logger
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type speechRequest struct {
	Model  string `json:"model"`
	Input  string `json:"input"`
	Voice  string `json:"voice"`
	Format string `json:"format"`
}

// SpeechAsset is a synthesized voiceover, fully materialized in memory.
type SpeechAsset struct {
	Data []byte
	MIME string
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) (*Client, error) {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultModel
	}
	voice := strings.TrimSpace(opts.Voice)
	if voice == "" {
		voice = defaultVoice
	}
	var logger infra.Logger
	if opts.Logger != nil {
		logger = *opts.Logger
	} else {
		logger = zerolog.New(io.Discard)
	}
	return &Client{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		model:      model,
		voice:      voice,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// HasCredentials reports whether the client can perform remote calls.
func (c *Client) HasCredentials() bool {
	return c.apiKey != ""
}

// GenerateScript asks the chat-completion API for ad copy under a fixed
// copywriter persona and returns the first completion, trimmed.
func (c *Client) GenerateScript(ctx context.Context, prompt string) (string, error) {
	if !c.HasCredentials() {
		return "", ErrMissingAPIKey
	}
	if strings.TrimSpace(prompt) == "" {
		return "", ErrMissingPrompt
	}
	payload := chatRequest{
		Model:       c.model,
		Temperature: scriptTemp,
		Messages: []chatMessage{
			{Role: "system", Content: scriptPersona},
			{Role: "user", Content: prompt},
		},
	}
	raw, err := c.post(ctx, "/chat/completions", payload)
	if err != nil {
		return "", err
	}
	var decoded chatResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("openai: decode response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return "", errors.New("openai: no completion choices")
	}
	script := strings.TrimSpace(decoded.Choices[0].Message.Content)
	c.logger.Debug().Str("model", c.model).Int("length", len(script)).Msg("openai: script generated")
	return script, nil
}

// Synthesize turns text into an MP3 voiceover. The whole audio buffer is
// read into memory before returning; there is no streaming.
func (c *Client) Synthesize(ctx context.Context, text, voice string) (*SpeechAsset, error) {
	if !c.HasCredentials() {
		return nil, ErrMissingAPIKey
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrMissingText
	}
	if strings.TrimSpace(voice) == "" {
		voice = c.voice
	}
	payload := speechRequest{
		Model:  ttsModel,
		Input:  text,
		Voice:  voice,
		Format: "mp3",
	}
	raw, err := c.post(ctx, "/audio/speech", payload)
	if err != nil {
		return nil, err
	}
	c.logger.Debug().Str("voice", voice).Int("bytes", len(raw)).Msg("openai: speech synthesized")
	return &SpeechAsset{Data: raw, MIME: speechMIMEType}, nil
}

func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("openai: encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("openai: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("openai: http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("openai: read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		c.logger.Warn().Int("status", resp.StatusCode).Str("path", path).Msg("openai: upstream error")
		return nil, &upstream.Error{StatusCode: resp.StatusCode, Body: raw}
	}
	return raw, nil
}
