package core

import (
	"fmt"

	"github.com/pttwnz/elie/internal/store"
)

// fileTokenLimit caps each ingested file's extracted text.
const fileTokenLimit = 1000

// ExtractFunc is the document-text extraction capability.
type ExtractFunc func(kind store.FileKind, data []byte) (string, error)

// Upload is one document handed to IngestBatch.
type Upload struct {
	Name string
	Kind store.FileKind
	Data []byte
}

// IngestResult reports what happened to one upload. Added is false either on
// error or when a file with the same name was already present (the silent
// dedup case: the first content wins, no error).
type IngestResult struct {
	Name  string
	Added bool
	Err   error
}

// IngestService turns uploaded documents into truncated plain text entries
// on the session's file list.
type IngestService struct {
	sessions *store.SessionStore
	extract  ExtractFunc
}

func NewIngestService(sessions *store.SessionStore, extract ExtractFunc) *IngestService {
	return &IngestService{sessions: sessions, extract: extract}
}

// IngestBatch processes the uploads in order, mutating session in place.
// A failing file is reported in its result and does not abort the rest of
// the batch. The session is persisted once, after the whole batch.
func (s *IngestService) IngestBatch(username string, session *store.Session, uploads []Upload) ([]IngestResult, error) {
	results := make([]IngestResult, 0, len(uploads))
	for _, up := range uploads {
		results = append(results, s.ingestOne(session, up))
	}
	if err := s.sessions.Save(username, session); err != nil {
		return results, fmt.Errorf("persist session after ingest: %w", err)
	}
	return results, nil
}

func (s *IngestService) ingestOne(session *store.Session, up Upload) IngestResult {
	if !up.Kind.Valid() {
		return IngestResult{Name: up.Name, Err: fmt.Errorf("%w: %s", ErrUnsupportedKind, up.Name)}
	}

	text, err := s.extract(up.Kind, up.Data)
	if err != nil {
		return IngestResult{Name: up.Name, Err: &ExtractionError{FileName: up.Name, Err: err}}
	}

	if session.HasFile(up.Name) {
		// Duplicate name: keep the existing entry, drop this one silently.
		return IngestResult{Name: up.Name}
	}

	session.Files = append(session.Files, store.FileEntry{
		Name:    up.Name,
		Kind:    up.Kind,
		Content: TruncateTokens(text, fileTokenLimit),
	})
	return IngestResult{Name: up.Name, Added: true}
}
