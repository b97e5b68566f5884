package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

const medicalSystemPrompt = "You are an expert medical translator. " +
	"Translate the provided medical phrase accurately and concisely. " +
	"Maintain a professional and empathetic tone suitable for healthcare interactions. " +
	"If the input is clearly not a medical phrase, you may indicate that you primarily translate medical content, " +
	"but still attempt a general translation if safe and appropriate. " +
	"Translate directly without adding conversational fluff unless it's part of the text to translate."

const (
	translationTemperature = 0.3
	translationMaxTokens   = 300
)

var errEmptyCompletion = errors.New("empty completion")

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
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

// Translate asks the chat model to translate text into target. An empty
// source lets the model detect the language.
func (c *Client) Translate(ctx context.Context, text, target, source string) (string, error) {
	if !c.configured() {
		return "", ErrNotConfigured
	}

	from := source
	if from == "" {
		from = "the detected language"
	}

	body, err := json.Marshal(chatRequest{
		Model: c.translationModel,
		Messages: []chatMessage{
			{Role: "system", Content: medicalSystemPrompt},
			{Role: "user", Content: fmt.Sprintf("Translate the following text from %s to %s: %q", from, target, text)},
		},
		MaxTokens:   translationMaxTokens,
		Temperature: translationTemperature,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if len(out.Choices) == 0 {
		return "", errEmptyCompletion
	}
	translated := strings.TrimSpace(out.Choices[0].Message.Content)
	if translated == "" {
		return "", errEmptyCompletion
	}

	return translated, nil
}
