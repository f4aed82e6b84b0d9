// Package moderation screens user-written text through an LLM before it is
// published. The model is asked for a strict JSON verdict; the verdict is
// advisory on transport failure (content passes) but binding on a malformed
// reply (content is rejected).
package moderation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"microsocial/internal/pkg/config"
	"microsocial/pkg/logger"
	"microsocial/pkg/metrics"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Result is the parsed moderation verdict.
type Result struct {
	IsClean        bool     `json:"isClean"`
	Reason         string   `json:"reason"`
	DetectedIssues []string `json:"detectedIssues"`
	Confidence     float64  `json:"confidence"`
}

// Moderator checks text content before publication.
type Moderator interface {
	Check(ctx context.Context, text string) (*Result, error)
}

const systemPrompt = `You are a content moderation system for a social platform.
Analyze the user's text for hate speech, harassment, explicit sexual content,
violence, self-harm and spam. Respond with ONLY a JSON object, no prose:
{"isClean": bool, "reason": "short explanation", "detectedIssues": ["..."], "confidence": 0.0-1.0}`

// OpenAIModerator asks a chat model for the verdict.
type OpenAIModerator struct {
	client *openai.Client
	model  string
}

func NewOpenAIModerator() *OpenAIModerator {
	cfg := config.GlobalConfig.Moderation
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	return &OpenAIModerator{
		client: openai.NewClientWithConfig(clientConfig),
		model:  cfg.Model,
	}
}

func (m *OpenAIModerator) Check(ctx context.Context, text string) (*Result, error) {
	resp, err := m.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       m.model,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
	})
	if err != nil {
		// The gateway being down must not take publishing down with it.
		logger.Log.Warn("moderation request failed, passing content", zap.Error(err))
		metrics.CountModeration("error")
		return &Result{IsClean: true, Reason: "moderation unavailable"}, nil
	}

	if len(resp.Choices) == 0 {
		metrics.CountModeration("error")
		return nil, fmt.Errorf("moderation: empty response")
	}

	result, err := ParseVerdict(resp.Choices[0].Message.Content)
	if err != nil {
		// A reply we cannot parse is treated as a rejection.
		logger.Log.Warn("moderation verdict unparsable, rejecting content",
			zap.String("raw", resp.Choices[0].Message.Content), zap.Error(err))
		metrics.CountModeration("error")
		return &Result{IsClean: false, Reason: "moderation verdict unreadable"}, nil
	}

	if result.IsClean {
		metrics.CountModeration("clean")
	} else {
		metrics.CountModeration("rejected")
	}
	return result, nil
}

// ParseVerdict decodes the model reply, tolerating a markdown code fence
// around the JSON.
func ParseVerdict(raw string) (*Result, error) {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
		s = strings.TrimSpace(s)
	}

	var result Result
	if err := json.Unmarshal([]byte(s), &result); err != nil {
		return nil, fmt.Errorf("decode verdict: %w", err)
	}
	return &result, nil
}

// disabledModerator passes everything; used when moderation is turned off.
type disabledModerator struct{}

func (disabledModerator) Check(ctx context.Context, text string) (*Result, error) {
	return &Result{IsClean: true, Reason: "moderation disabled", Confidence: 1}, nil
}

// Global is the process-wide moderator instance.
var Global Moderator = disabledModerator{}

// InitModerator installs the configured moderator.
func InitModerator() {
	if !config.GlobalConfig.Moderation.Enabled {
		Global = disabledModerator{}
		return
	}
	Global = NewOpenAIModerator()
}
