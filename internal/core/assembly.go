package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/pttwnz/elie/internal/store"
	"github.com/pttwnz/elie/internal/wiki"
)

// Mode selects how a chat turn is grounded.
type Mode string

const (
	// ModeFreeChat is unconstrained conversation: no files, no prompts.
	ModeFreeChat Mode = "free_chat"
	// ModeGrounded answers only from uploaded content and/or a web lookup.
	ModeGrounded Mode = "grounded"
)

// ChatMessage is one role-tagged entry of the sequence handed to the
// completion capability.
type ChatMessage struct {
	Role    string `json:"role"` // "system", "user" or "assistant"
	Content string `json:"content"`
}

const RoleSystem = "system"

// Assistant personas and injected-content templates. The service answers in
// Spanish; these strings are part of the observable behavior.
const (
	freeChatPersona = "Eres un asistente amigable y servicial que puede conversar libremente con el usuario."
	groundedPersona = "Eres un asistente amigable y servicial que responderá preguntas basándose específicamente en el contenido proporcionado."

	fileContentTemplate = "Contenido de los archivos (truncado):\n%s"
	wikiResultTemplate  = "Resultados de la búsqueda en Wikipedia:\n%s"
	wikiAmbiguousFormat = "La consulta es ambigua, podría referirse a uno de los siguientes: %s"
	wikiNotFoundNote    = "No se encontró ninguna página que coincida con la consulta"
)

// combinedFileTokenLimit caps the concatenation of all uploaded file
// contents in a grounded turn.
const combinedFileTokenLimit = 2000

// Lookup is the encyclopedia capability consumed by grounded assembly.
type Lookup interface {
	Lookup(ctx context.Context, query string) (wiki.Result, error)
}

// Assembler builds the ordered message sequence for a chat turn from the
// session state, the user's prompt library and an optional web lookup. It
// never calls the completion capability itself.
type Assembler struct {
	lookup Lookup
}

func NewAssembler(lookup Lookup) *Assembler {
	return &Assembler{lookup: lookup}
}

// Build assembles the messages for one turn.
//
// Free chat always yields exactly two messages. Grounded mode requires at
// least one uploaded file or searchWeb; otherwise it fails with
// ErrNoGroundingSource and the caller must not invoke the completion
// capability. Grounded order: persona, file content (possibly empty), the
// lookup result if requested, each resolvable selected prompt in selection
// order, and finally the user question. Selected prompts whose library entry
// was deleted are skipped silently.
func (a *Assembler) Build(
	ctx context.Context,
	session *store.Session,
	userPrompts map[string]string,
	question string,
	mode Mode,
	searchWeb bool,
) ([]ChatMessage, error) {
	if mode == ModeFreeChat {
		return []ChatMessage{
			{Role: RoleSystem, Content: freeChatPersona},
			{Role: store.RoleUser, Content: question},
		}, nil
	}

	if len(session.Files) == 0 && !searchWeb {
		return nil, ErrNoGroundingSource
	}

	contents := make([]string, 0, len(session.Files))
	for _, f := range session.Files {
		contents = append(contents, f.Content)
	}
	combined := TruncateTokens(strings.Join(contents, "\n"), combinedFileTokenLimit)

	messages := []ChatMessage{
		{Role: RoleSystem, Content: groundedPersona},
		{Role: RoleSystem, Content: fmt.Sprintf(fileContentTemplate, combined)},
	}

	if searchWeb {
		result, err := a.lookup.Lookup(ctx, question)
		if err != nil {
			return nil, fmt.Errorf("wikipedia lookup: %w", err)
		}
		messages = append(messages, ChatMessage{
			Role:    RoleSystem,
			Content: fmt.Sprintf(wikiResultTemplate, lookupText(result)),
		})
	}

	for _, title := range session.SelectedPrompts {
		if body, ok := userPrompts[title]; ok {
			messages = append(messages, ChatMessage{Role: RoleSystem, Content: body})
		}
	}

	messages = append(messages, ChatMessage{Role: store.RoleUser, Content: question})
	return messages, nil
}

// lookupText renders a lookup result as conversation content. Ambiguity and
// not-found are informational, never errors.
func lookupText(result wiki.Result) string {
	switch result.Kind {
	case wiki.KindDisambiguation:
		return fmt.Sprintf(wikiAmbiguousFormat, strings.Join(result.Options, ", "))
	case wiki.KindNotFound:
		return wikiNotFoundNote
	default:
		return result.Summary
	}
}
