// Package classifier wraps the external vision service that reads a glycemic
// value off a glucometer photo. The adapter's whole contract is: one image
// in, one parsed float out, with transport faults and unparseable replies
// reported as distinct failures.
package classifier

import (
	"context"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"glycoanalyzer/internal/shared/config"
	"glycoanalyzer/internal/shared/errors"
	"glycoanalyzer/internal/shared/logger"
)

// extractionPrompt instructs the model to answer with the bare number only.
const extractionPrompt = "Extrait uniquement la valeur numérique de glycémie en g/L. " +
	"Réponds uniquement avec le chiffre. Exemple: 1.20"

const maxReplyTokens = 10

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []chatContent `json:"content"`
}

type chatContent struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// VisionClassifier calls an OpenAI-compatible chat completions endpoint.
type VisionClassifier struct {
	client *resty.Client
	model  string
	logger logger.Interface
}

func NewVisionClassifier(cfg *config.ClassifierConfig, log logger.Interface) *VisionClassifier {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout).
		SetAuthToken(cfg.APIKey).
		SetHeader("Content-Type", "application/json")

	return &VisionClassifier{
		client: client,
		model:  cfg.Model,
		logger: log,
	}
}

// Analyze submits one image and returns the glycemic value from the reply.
// Transport faults, timeouts and non-2xx responses are ServiceError; a reply
// with no parseable number is ParseError. Retries are the caller's policy,
// not this layer's.
func (c *VisionClassifier) Analyze(ctx context.Context, image []byte) (float64, error) {
	request := chatRequest{
		Model: c.model,
		Messages: []chatMessage{{
			Role: "user",
			Content: []chatContent{
				{Type: "text", Text: extractionPrompt},
				{Type: "image_url", ImageURL: &imageURL{
					URL: "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(image),
				}},
			},
		}},
		MaxTokens: maxReplyTokens,
	}

	var response chatResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(request).
		SetResult(&response).
		SetError(&response).
		Post("/chat/completions")
	if err != nil {
		c.logger.Warnw("classifier request failed", "error", err)
		return 0, errors.NewServiceError(err)
	}
	if resp.IsError() {
		msg := resp.Status()
		if response.Error != nil && response.Error.Message != "" {
			msg = response.Error.Message
		}
		c.logger.Warnw("classifier returned error status", "status", resp.StatusCode(), "message", msg)
		return 0, errors.NewServiceError(fmt.Errorf("classifier service: %s", msg))
	}
	if len(response.Choices) == 0 {
		return 0, errors.NewServiceError(fmt.Errorf("classifier reply has no choices"))
	}

	raw := response.Choices[0].Message.Content
	value, err := ExtractValue(raw)
	if err != nil {
		c.logger.Warnw("classifier reply not parseable", "reply", raw)
		return 0, err
	}

	c.logger.Debugw("photo classified", "value", value)
	return value, nil
}

// ExtractValue strips a free-text reply down to digits and decimal points
// and parses the remainder as a float. An empty or non-numeric remainder is
// a ParseError.
func ExtractValue(reply string) (float64, error) {
	var b strings.Builder
	for _, r := range strings.TrimSpace(reply) {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}

	cleaned := b.String()
	if cleaned == "" {
		return 0, errors.NewParseError(reply)
	}

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, errors.NewParseError(reply)
	}
	return value, nil
}
