// Package ai turns an encoded photograph into a three-line haiku using the
// OpenAI chat completions API with vision input.
package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultAPIURL = "https://api.openai.com/v1/chat/completions"

const haikuPrompt = "Write a haiku inspired by this photograph. " +
	"Respond with only a JSON array of exactly 3 strings, one per line of the haiku."

type Captioner interface {
	Haiku(ctx context.Context, imageData []byte) ([]string, error)
}

type OpenAIClient struct {
	apiKey     string
	model      string
	apiURL     string
	httpClient *http.Client
}

func NewOpenAIClient(apiKey, model string) *OpenAIClient {
	return &OpenAIClient{
		apiKey: apiKey,
		model:  model,
		apiURL: defaultAPIURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type openAIRequest struct {
	Model    string          `json:"model"`
	Messages []openAIMessage `json:"messages"`
}

type openAIMessage struct {
	Role    string              `json:"role"`
	Content []openAIContentPart `json:"content"`
}

type openAIContentPart struct {
	Type     string          `json:"type"`
	Text     string          `json:"text,omitempty"`
	ImageURL *openAIImageURL `json:"image_url,omitempty"`
}

type openAIImageURL struct {
	URL string `json:"url"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Haiku requests a caption for the image and parses the model's reply into
// exactly three lines.
func (c *OpenAIClient) Haiku(ctx context.Context, imageData []byte) ([]string, error) {
	imageBase64 := base64.StdEncoding.EncodeToString(imageData)
	reqBody := openAIRequest{
		Model: c.model,
		Messages: []openAIMessage{
			{
				Role: "user",
				Content: []openAIContentPart{
					{
						Type: "text",
						Text: haikuPrompt,
					},
					{
						Type: "image_url",
						ImageURL: &openAIImageURL{
							URL: fmt.Sprintf("data:image/jpeg;base64,%s", imageBase64),
						},
					},
				},
			},
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, "POST", c.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	var openAIResp openAIResponse
	if err := json.Unmarshal(body, &openAIResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if openAIResp.Error != nil {
		return nil, fmt.Errorf("OpenAI API error: %s", openAIResp.Error.Message)
	}
	if len(openAIResp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}
	return ParseHaiku(openAIResp.Choices[0].Message.Content)
}

// ParseHaiku parses the model reply as a JSON array of 3 strings. Models
// sometimes wrap the array in a markdown code fence; that one decoration is
// stripped and the content reparsed before giving up.
func ParseHaiku(content string) ([]string, error) {
	lines, err := parseLines(content)
	if err != nil {
		stripped, ok := stripCodeFence(content)
		if !ok {
			return nil, err
		}
		if lines, err = parseLines(stripped); err != nil {
			return nil, err
		}
	}
	return lines, nil
}

func parseLines(content string) ([]string, error) {
	var lines []string
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &lines); err != nil {
		return nil, fmt.Errorf("caption is not a JSON string array: %w", err)
	}
	if len(lines) != 3 {
		return nil, fmt.Errorf("caption has %d lines, want 3", len(lines))
	}
	return lines, nil
}

func stripCodeFence(content string) (string, bool) {
	s := strings.TrimSpace(content)
	if !strings.HasPrefix(s, "```") || !strings.HasSuffix(s, "```") {
		return "", false
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s), true
}
