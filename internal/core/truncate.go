package core

import "strings"

// Ellipsis marks content that was cut at a token limit.
const Ellipsis = "..."

// TruncateTokens cuts text to at most maxTokens whitespace-delimited tokens,
// appending an ellipsis marker when something was dropped. Text within the
// limit is returned unchanged, original whitespace included.
//
// Word-splitting is a deliberate approximation of token counting: the prompt
// budgets downstream (1000 per file, 2000 combined) are calibrated against
// it. Do not replace with a real tokenizer.
func TruncateTokens(text string, maxTokens int) string {
	tokens := strings.Fields(text)
	if len(tokens) <= maxTokens {
		return text
	}
	return strings.Join(tokens[:maxTokens], " ") + Ellipsis
}
