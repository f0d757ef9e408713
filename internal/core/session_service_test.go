package core

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pttwnz/elie/internal/store"
)

func newSessionFixture(t *testing.T) (*SessionService, *store.SessionStore) {
	t.Helper()
	sessions, err := store.NewSessionStore(t.TempDir())
	require.NoError(t, err)
	return NewSessionService(sessions), sessions
}

func TestUpdateProfilePersists(t *testing.T) {
	svc, sessions := newSessionFixture(t)

	info := store.PersonalInfo{FirstName: "Alice", Email: "alice@example.com"}
	require.NoError(t, svc.UpdateProfile("alice", "discord: alice#1", info))

	session, err := sessions.Load("alice")
	require.NoError(t, err)
	require.Equal(t, "discord: alice#1", session.ContactInfo)
	require.Equal(t, info, session.PersonalInfo)
}

func TestAPIKeyLifecycle(t *testing.T) {
	svc, sessions := newSessionFixture(t)

	require.NoError(t, svc.SetAPIKey("alice", "sk-test"))
	session, err := sessions.Load("alice")
	require.NoError(t, err)
	require.Equal(t, "sk-test", session.APIKey)

	require.NoError(t, svc.ClearAPIKey("alice"))
	session, err = sessions.Load("alice")
	require.NoError(t, err)
	require.Empty(t, session.APIKey)
}

func TestProfilePictureLifecycle(t *testing.T) {
	svc, sessions := newSessionFixture(t)

	raw := []byte{1, 2, 3, 4}
	require.NoError(t, svc.SetProfilePicture("alice", raw))

	session, err := sessions.Load("alice")
	require.NoError(t, err)
	decoded, err := session.ProfilePicBytes()
	require.NoError(t, err)
	require.Equal(t, raw, decoded)

	require.NoError(t, svc.ClearProfilePicture("alice"))
	session, err = sessions.Load("alice")
	require.NoError(t, err)
	require.Empty(t, session.ProfilePic)
}

func TestClearChatHistoryKeepsFilesAndSelections(t *testing.T) {
	svc, sessions := newSessionFixture(t)

	session, err := sessions.Load("alice")
	require.NoError(t, err)
	session.ChatHistory = append(session.ChatHistory, store.Message{Role: store.RoleUser, Content: "hola"})
	session.Files = append(session.Files, store.FileEntry{Name: "f.txt", Kind: store.KindText, Content: "x"})
	session.SelectedPrompts = append(session.SelectedPrompts, "tone")
	require.NoError(t, sessions.Save("alice", session))

	require.NoError(t, svc.ClearChatHistory("alice"))

	loaded, err := sessions.Load("alice")
	require.NoError(t, err)
	require.Empty(t, loaded.ChatHistory)
	require.Len(t, loaded.Files, 1)
	require.Equal(t, []string{"tone"}, loaded.SelectedPrompts)
}

func TestRemoveFileByIndex(t *testing.T) {
	svc, sessions := newSessionFixture(t)

	session, err := sessions.Load("alice")
	require.NoError(t, err)
	session.Files = append(session.Files,
		store.FileEntry{Name: "a.txt", Kind: store.KindText, Content: "a"},
		store.FileEntry{Name: "b.txt", Kind: store.KindText, Content: "b"},
	)
	require.NoError(t, sessions.Save("alice", session))

	require.NoError(t, svc.RemoveFile("alice", 0))

	loaded, err := sessions.Load("alice")
	require.NoError(t, err)
	require.Len(t, loaded.Files, 1)
	require.Equal(t, "b.txt", loaded.Files[0].Name)

	require.Error(t, svc.RemoveFile("alice", 5))
}
