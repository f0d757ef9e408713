package core

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/pttwnz/elie/internal/store"
)

// ChatService runs a full chat turn: assemble the message sequence, call the
// completion capability, and record the exchange.
type ChatService struct {
	sessions  *store.SessionStore
	prompts   *store.PromptStore
	assembler *Assembler
	llm       Completer
}

func NewChatService(sessions *store.SessionStore, prompts *store.PromptStore, assembler *Assembler, llm Completer) *ChatService {
	return &ChatService{
		sessions:  sessions,
		prompts:   prompts,
		assembler: assembler,
		llm:       llm,
	}
}

// AskRequest is one chat turn. Temperature and MaxTokens fall back to the
// service defaults (0.5, 150) when unset.
type AskRequest struct {
	Question    string
	Mode        Mode
	SearchWeb   bool
	Temperature float64
	MaxTokens   int64
}

// Ask assembles the prompt for the question, calls the completion capability
// with the session's API key, and on success appends the user question and
// the assistant reply to the chat history and persists the session. On any
// failure the history and the persisted record are left untouched.
func (s *ChatService) Ask(ctx context.Context, username string, session *store.Session, req AskRequest) (string, error) {
	if req.Question == "" {
		return "", fmt.Errorf("question must not be empty")
	}
	if req.Temperature == 0 {
		req.Temperature = defaultTemperature
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = defaultMaxTokens
	}

	userPrompts, err := s.prompts.List(username)
	if err != nil {
		return "", fmt.Errorf("load prompt library for %s: %w", username, err)
	}

	messages, err := s.assembler.Build(ctx, session, userPrompts, req.Question, req.Mode, req.SearchWeb)
	if err != nil {
		return "", err
	}

	reply, err := s.llm.Complete(ctx, session.APIKey, messages, req.Temperature, req.MaxTokens)
	if err != nil {
		return "", err
	}

	session.ChatHistory = append(session.ChatHistory,
		store.Message{ID: uuid.NewString(), Role: store.RoleUser, Content: req.Question},
		store.Message{ID: uuid.NewString(), Role: store.RoleAssistant, Content: reply},
	)
	if err := s.sessions.Save(username, session); err != nil {
		// The reply still reaches the caller; only the record is stale.
		log.Printf("Failed to persist session for %s after chat turn: %v", username, err)
		return reply, fmt.Errorf("persist session for %s: %w", username, err)
	}
	return reply, nil
}
