// Package ai talks to OpenAI-compatible speech-to-text and chat completion
// APIs.
package ai

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrNotConfigured is returned by every call when no API key is set.
var ErrNotConfigured = errors.New("ai client not configured")

// APIError is a non-2xx answer from the upstream API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Body)
}

// Config holds connection settings for the OpenAI client.
type Config struct {
	APIKey             string
	BaseURL            string // default: https://api.openai.com
	TranscriptionModel string // default: whisper-1
	TranslationModel   string // default: gpt-3.5-turbo
	Timeout            time.Duration
}

// Client implements transcription and translation over raw HTTP.
type Client struct {
	apiKey             string
	baseURL            string
	transcriptionModel string
	translationModel   string
	httpClient         *http.Client
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com"
	}
	if cfg.TranscriptionModel == "" {
		cfg.TranscriptionModel = "whisper-1"
	}
	if cfg.TranslationModel == "" {
		cfg.TranslationModel = "gpt-3.5-turbo"
	}

	return &Client{
		apiKey:             cfg.APIKey,
		baseURL:            strings.TrimRight(cfg.BaseURL, "/"),
		transcriptionModel: cfg.TranscriptionModel,
		translationModel:   cfg.TranslationModel,
		httpClient:         newHTTPClient(cfg.Timeout),
	}
}

func (c *Client) configured() bool {
	return c.apiKey != ""
}

func (c *Client) setAuth(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	c.setAuth(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return resp, nil
}
