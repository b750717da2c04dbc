// Package xai implements the oracle on top of the xAI chat completions API.
package xai

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

	"go.uber.org/zap"

	"github.com/spigell/skillmatch/internal/logger"
	"github.com/spigell/skillmatch/internal/utils"
)

const (
	// Provider is the name reported in logs for this oracle.
	Provider = "xai"

	apiURL       = "https://api.x.ai/v1/chat/completions"
	defaultModel = "grok-4-fast"
	contentType  = "application/json"
	userAgent    = "spigell/skillmatch"

	logPreviewLimit = 300
	errorBodyLimit  = 500
)

// Client sends prompts to the chat completions endpoint.
type Client struct {
	apiKey      string
	model       string
	temperature *float64
	logger      *zap.Logger

	HTTPClient *http.Client
	APIURL     string
	UserAgent  string
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature *float64  `json:"temperature,omitempty"`
}

type completionResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
}

// APIError is returned for non-2xx answers of the API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("xai api: bad status %d: %s", e.StatusCode, e.Body)
}

// New creates a Client. An empty model selects grok-4-fast.
func New(log *zap.Logger, apiKey, model string, timeout time.Duration) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("xai api key is required")
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}

	return &Client{
		apiKey: apiKey,
		model:  model,
		logger: logger.WithCommonFields(log, Provider, model),
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
		APIURL:    apiURL,
		UserAgent: userAgent,
	}, nil
}

// WithTemperature returns a copy of c that samples with the given temperature.
func (c *Client) WithTemperature(temperature float64) *Client {
	copied := *c
	copied.temperature = &temperature
	return &copied
}

// Classify implements ai.Oracle.
func (c *Client) Classify(ctx context.Context, system, prompt string) (string, error) {
	payload, err := json.Marshal(completionRequest{
		Model: c.model,
		Messages: []message{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		Temperature: c.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.APIURL, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req = c.setHeaders(req)

	resp, err := c.request(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", &APIError{StatusCode: resp.StatusCode, Body: utils.TruncateForLog(string(data), errorBodyLimit)}
	}

	var completion completionResponse
	if err := json.Unmarshal(data, &completion); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("xai api returned no choices")
	}

	content := strings.TrimSpace(completion.Choices[0].Message.Content)
	if content == "" {
		return "", errors.New("xai api returned empty response")
	}

	c.log().Debug("xai answered", zap.String("response_preview", utils.TruncateForLog(content, logPreviewLimit)))

	return content, nil
}

func (c *Client) request(req *http.Request) (*http.Response, error) {
	c.log().Debug("make request", zap.String("url", req.URL.String()))
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}

	return resp, nil
}

func (c *Client) setHeaders(req *http.Request) *http.Request {
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("User-Agent", c.UserAgent)

	return req
}

func (c *Client) log() *zap.Logger {
	if c.logger == nil {
		return zap.NewNop()
	}
	return c.logger
}

// Provider returns the oracle provider name.
func (c *Client) Provider() string { return Provider }

func (c *Client) Model() string { return c.model }
