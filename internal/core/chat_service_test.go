package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pttwnz/elie/internal/store"
)

// fakeCompleter records what it was asked to complete.
type fakeCompleter struct {
	reply       string
	err         error
	calls       int
	apiKey      string
	messages    []ChatMessage
	temperature float64
	maxTokens   int64
}

func (f *fakeCompleter) Complete(ctx context.Context, apiKey string, messages []ChatMessage, temperature float64, maxTokens int64) (string, error) {
	f.calls++
	f.apiKey = apiKey
	f.messages = messages
	f.temperature = temperature
	f.maxTokens = maxTokens
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

type chatFixture struct {
	sessions  *store.SessionStore
	prompts   *store.PromptStore
	completer *fakeCompleter
	svc       *ChatService
}

func newChatFixture(t *testing.T) *chatFixture {
	t.Helper()
	dir := t.TempDir()
	sessions, err := store.NewSessionStore(dir)
	require.NoError(t, err)
	prompts, err := store.NewPromptStore(dir)
	require.NoError(t, err)

	completer := &fakeCompleter{reply: "hi"}
	svc := NewChatService(sessions, prompts, NewAssembler(&fakeLookup{}), completer)
	return &chatFixture{sessions: sessions, prompts: prompts, completer: completer, svc: svc}
}

func TestAskAppendsHistoryAndPersists(t *testing.T) {
	f := newChatFixture(t)

	session, err := f.sessions.Load("alice")
	require.NoError(t, err)
	session.APIKey = "sk-test"
	session.Files = append(session.Files, store.FileEntry{Name: "f.txt", Kind: store.KindText, Content: "hello world"})

	reply, err := f.svc.Ask(context.Background(), "alice", session, AskRequest{
		Question: "what?",
		Mode:     ModeGrounded,
	})
	require.NoError(t, err)
	require.Equal(t, "hi", reply)

	require.Len(t, session.ChatHistory, 2)
	require.Equal(t, store.RoleUser, session.ChatHistory[0].Role)
	require.Equal(t, "what?", session.ChatHistory[0].Content)
	require.Equal(t, store.RoleAssistant, session.ChatHistory[1].Role)
	require.Equal(t, "hi", session.ChatHistory[1].Content)
	require.NotEmpty(t, session.ChatHistory[0].ID)

	loaded, err := f.sessions.Load("alice")
	require.NoError(t, err)
	require.Len(t, loaded.ChatHistory, 2)

	// The assembled sequence reached the completer with the session's key.
	require.Equal(t, "sk-test", f.completer.apiKey)
	require.Len(t, f.completer.messages, 3)
	require.Equal(t, defaultTemperature, f.completer.temperature)
	require.EqualValues(t, defaultMaxTokens, f.completer.maxTokens)
}

func TestAskCompletionFailureLeavesHistoryUntouched(t *testing.T) {
	f := newChatFixture(t)
	f.completer.err = errors.New("upstream 500")

	session, err := f.sessions.Load("alice")
	require.NoError(t, err)
	session.APIKey = "sk-test"
	session.Files = append(session.Files, store.FileEntry{Name: "f.txt", Kind: store.KindText, Content: "x"})
	require.NoError(t, f.sessions.Save("alice", session))

	_, err = f.svc.Ask(context.Background(), "alice", session, AskRequest{
		Question: "what?",
		Mode:     ModeGrounded,
	})
	require.Error(t, err)

	require.Empty(t, session.ChatHistory)
	loaded, err := f.sessions.Load("alice")
	require.NoError(t, err)
	require.Empty(t, loaded.ChatHistory)
}

func TestAskGroundedWithoutSourceNeverCallsCompleter(t *testing.T) {
	f := newChatFixture(t)

	session, err := f.sessions.Load("alice")
	require.NoError(t, err)
	session.APIKey = "sk-test"

	_, err = f.svc.Ask(context.Background(), "alice", session, AskRequest{
		Question: "what?",
		Mode:     ModeGrounded,
	})
	require.ErrorIs(t, err, ErrNoGroundingSource)
	require.Zero(t, f.completer.calls)
	require.Empty(t, session.ChatHistory)
}

func TestAskFreeChatIgnoresSessionState(t *testing.T) {
	f := newChatFixture(t)

	session, err := f.sessions.Load("alice")
	require.NoError(t, err)
	session.APIKey = "sk-test"

	reply, err := f.svc.Ask(context.Background(), "alice", session, AskRequest{
		Question: "hola",
		Mode:     ModeFreeChat,
	})
	require.NoError(t, err)
	require.Equal(t, "hi", reply)
	require.Len(t, f.completer.messages, 2)
}

func TestAskPassesExplicitKnobs(t *testing.T) {
	f := newChatFixture(t)

	session, err := f.sessions.Load("alice")
	require.NoError(t, err)
	session.APIKey = "sk-test"

	_, err = f.svc.Ask(context.Background(), "alice", session, AskRequest{
		Question:    "hola",
		Mode:        ModeFreeChat,
		Temperature: 0.9,
		MaxTokens:   400,
	})
	require.NoError(t, err)
	require.Equal(t, 0.9, f.completer.temperature)
	require.EqualValues(t, 400, f.completer.maxTokens)
}

func TestAskSelectedPromptsReachCompleter(t *testing.T) {
	f := newChatFixture(t)
	require.NoError(t, f.prompts.Save("alice", "tone", "Responde formalmente."))

	session, err := f.sessions.Load("alice")
	require.NoError(t, err)
	session.APIKey = "sk-test"
	session.Files = append(session.Files, store.FileEntry{Name: "f.txt", Kind: store.KindText, Content: "x"})
	session.SelectedPrompts = []string{"tone", "gone"}

	_, err = f.svc.Ask(context.Background(), "alice", session, AskRequest{
		Question: "q",
		Mode:     ModeGrounded,
	})
	require.NoError(t, err)

	// persona, files, tone, question — the dangling "gone" selection skipped.
	require.Len(t, f.completer.messages, 4)
	require.Equal(t, "Responde formalmente.", f.completer.messages[2].Content)
}
