// Package storygen drafts folktale text for the admin panel through an
// OpenAI-compatible chat completion API.
package storygen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/legendsansar/legendsansar/pkg/utils"
)

const requestTimeout = 30 * time.Second

// Generator calls the completion endpoint with a fixed prompt shape.
type Generator struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

func NewGenerator(apiKey, baseURL, model string) *Generator {
	return &Generator{
		apiKey:  apiKey,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: requestTimeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// GenerateStory asks the model for a titled folktale matching the given
// genre, region, and age group, returning the raw generated text.
func (g *Generator) GenerateStory(ctx context.Context, genre, region, ageGroup string) (string, error) {
	prompt := fmt.Sprintf(
		`Generate a %s folktale from %s suitable for %s. The story should be engaging, culturally relevant, and appropriate for the selected age group. Provide a title prefixed with "Title:" followed by the story content.`,
		genre, region, ageGroup)

	payload, err := json.Marshal(chatRequest{
		Model:       g.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens:   1000,
		Temperature: 0.7,
	})
	if err != nil {
		return "", utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to generate story")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to generate story")
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return "", utils.NewError(utils.ErrInternalServerError.Code, "Request timed out. Please try again later.")
		}
		return "", utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to generate story")
	}
	defer resp.Body.Close()

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to generate story")
	}

	if out.Error != nil && out.Error.Message != "" {
		return "", utils.NewError(utils.ErrInternalServerError.Code, out.Error.Message)
	}
	if resp.StatusCode != http.StatusOK || len(out.Choices) == 0 {
		return "", utils.NewError(utils.ErrInternalServerError.Code, "Failed to generate story")
	}

	return out.Choices[0].Message.Content, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || os.IsTimeout(err) {
		return true
	}
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}
