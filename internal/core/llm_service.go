package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/pttwnz/elie/internal/config"
)

const (
	defaultTemperature = 0.5
	defaultMaxTokens   = 150
)

// Completer is the completion capability: an ordered message sequence in,
// assistant text out. Keyed by the per-user API key supplied at call time.
type Completer interface {
	Complete(ctx context.Context, apiKey string, messages []ChatMessage, temperature float64, maxTokens int64) (string, error)
}

// LLMService implements Completer against the OpenAI chat completions API.
type LLMService struct {
	model   string
	baseURL string
	timeout time.Duration
}

func NewLLMService() *LLMService {
	return &LLMService{
		model:   config.AppConfig.OpenAIModel,
		baseURL: config.AppConfig.OpenAIBaseURL,
		timeout: config.AppConfig.LLMTimeout,
	}
}

// Complete sends the assembled messages and returns the assistant's reply.
//
// The client is built per call because each user brings their own API key.
// A missing key fails before any network traffic. There is no retry and no
// cancellation once the request is on the wire; the context timeout is the
// only bound on a stuck upstream.
func (s *LLMService) Complete(ctx context.Context, apiKey string, messages []ChatMessage, temperature float64, maxTokens int64) (string, error) {
	if apiKey == "" {
		return "", fmt.Errorf("%w: no API key configured", ErrCompletionFailed)
	}
	if len(messages) == 0 {
		return "", fmt.Errorf("%w: empty message sequence", ErrCompletionFailed)
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if s.baseURL != "" {
		opts = append(opts, option.WithBaseURL(s.baseURL))
	}
	client := openai.NewClient(opts...)

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(s.model),
		Messages:    toOpenAIMessages(messages),
		Temperature: openai.Float(temperature),
		MaxTokens:   openai.Int(maxTokens),
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	resp, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCompletionFailed, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: response contained no choices", ErrCompletionFailed)
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func toOpenAIMessages(messages []ChatMessage) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case "user":
			out = append(out, openai.UserMessage(m.Content))
		case "assistant":
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.SystemMessage(m.Content))
		}
	}
	return out
}
