package runway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"adclip/internal/infra"
	"adclip/internal/providers/upstream"
	"adclip/internal/task"
)

// ErrMissingAPIKey indicates that the client was configured without credentials.
var ErrMissingAPIKey = errors.New("runway: api key is required")

// ErrMissingPromptImage indicates an image-to-video request without a first frame.
var ErrMissingPromptImage = errors.New("runway: promptImage is required")

// ErrMissingPromptText indicates a text-to-image request without a prompt.
var ErrMissingPromptText = errors.New("runway: promptText is required")

// Options configures the Runway client.
type Options struct {
	APIKey         string
	BaseURL        string
	Version        string
	VideoModel     string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client performs HTTP calls against the Runway generation API: job
// submission for text_to_image and image_to_video, plus task status lookup.
type Client struct {
	apiKey     string
	baseURL    string
	version    string
	videoModel string
	httpClient *http.Client
	logger     infra.Logger
}

// TextToImageRequest captures the inputs for an image generation job.
type TextToImageRequest struct {
	PromptText string
	Ratio      string
}

// ImageToVideoRequest captures the inputs for a video generation job.
// PromptImage is the only required field; everything else is normalized to a
// safe default before submission.
type ImageToVideoRequest struct {
	PromptImage string
	PromptText  string
	Ratio       string
	Duration    any
	Model       string
}

type textToImagePayload struct {
	Model      string `json:"model"`
	PromptText string `json:"promptText"`
	Ratio      string `json:"ratio"`
}

type imageToVideoPayload struct {
	Model       string `json:"model"`
	PromptImage string `json:"promptImage"`
	PromptText  string `json:"promptText"`
	Ratio       string `json:"ratio"`
	Duration    int    `json:"duration"`
}

type submitResponse struct {
	ID string `json:"id"`
}

type taskResponse struct {
	ID     string   `json:"id"`
	Status string   `json:"status"`
	Output []string `json:"output"`
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) (*Client, error) {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.dev.runwayml.com/v1"
	}
	version := strings.TrimSpace(opts.Version)
	if version == "" {
		version = "2024-11-06"
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
		version:    version,
		videoModel: normalizeModel(opts.VideoModel, DefaultVideoModel),
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// HasCredentials reports whether the client can perform remote calls.
func (c *Client) HasCredentials() bool {
	return c.apiKey != ""
}

// CreateTextToImage submits an image generation job and returns its task id.
// The job runs asynchronously; callers poll GetTask for the result.
func (c *Client) CreateTextToImage(ctx context.Context, req TextToImageRequest) (string, error) {
	if !c.HasCredentials() {
		return "", ErrMissingAPIKey
	}
	prompt := strings.TrimSpace(req.PromptText)
	if prompt == "" {
		return "", ErrMissingPromptText
	}
	payload := textToImagePayload{
		Model:      imageModel,
		PromptText: prompt,
		Ratio:      NormalizeRatio(req.Ratio),
	}
	var out submitResponse
	if err := c.post(ctx, "/text_to_image", payload, &out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", errors.New("runway: submission returned no task id")
	}
	c.logger.Debug().Str("task_id", out.ID).Str("ratio", payload.Ratio).Msg("runway: text_to_image submitted")
	return out.ID, nil
}

// CreateImageToVideo submits a video generation job and returns its task id.
func (c *Client) CreateImageToVideo(ctx context.Context, req ImageToVideoRequest) (string, error) {
	if !c.HasCredentials() {
		return "", ErrMissingAPIKey
	}
	if strings.TrimSpace(req.PromptImage) == "" {
		return "", ErrMissingPromptImage
	}
	payload := imageToVideoPayload{
		Model:       normalizeModel(req.Model, c.videoModel),
		PromptImage: strings.TrimSpace(req.PromptImage),
		PromptText:  req.PromptText,
		Ratio:       NormalizeRatio(req.Ratio),
		Duration:    NormalizeDuration(req.Duration),
	}
	var out submitResponse
	if err := c.post(ctx, "/image_to_video", payload, &out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", errors.New("runway: submission returned no task id")
	}
	c.logger.Debug().
		Str("task_id", out.ID).
		Str("model", payload.Model).
		Int("duration", payload.Duration).
		Msg("runway: image_to_video submitted")
	return out.ID, nil
}

// GetTask fetches one status snapshot for a task. The raw provider payload is
// preserved on the snapshot so it can be relayed unmodified.
func (c *Client) GetTask(ctx context.Context, id string) (*task.Snapshot, error) {
	if !c.HasCredentials() {
		return nil, ErrMissingAPIKey
	}
	if strings.TrimSpace(id) == "" {
		return nil, errors.New("runway: task id is required")
	}
	endpoint := c.baseURL + "/tasks/" + url.PathEscape(id)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("runway: build request: %w", err)
	}
	c.setHeaders(httpReq)

	raw, err := c.do(httpReq)
	if err != nil {
		return nil, err
	}
	var decoded taskResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("runway: decode task: %w", err)
	}
	return &task.Snapshot{
		ID:     decoded.ID,
		Status: task.Status(decoded.Status),
		Output: decoded.Output,
		Raw:    raw,
	}, nil
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("runway: encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("runway: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	c.setHeaders(httpReq)

	raw, err := c.do(httpReq)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("runway: decode response: %w", err)
	}
	return nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("runway: http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("runway: read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		c.logger.Warn().Int("status", resp.StatusCode).Str("path", req.URL.Path).Msg("runway: upstream error")
		return nil, &upstream.Error{StatusCode: resp.StatusCode, Body: raw}
	}
	return raw, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("X-Runway-Version", c.version)
}
