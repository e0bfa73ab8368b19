package service

import (
	"fmt"
	"strings"

	"github.com/nishcheyk/infinity-workspace/types"
)

const (
	// ScoreThreshold gates retrieved chunks before they reach the
	// prompt. Strictly greater than: a hit at exactly the threshold is
	// discarded.
	ScoreThreshold float32 = 0.20

	// HistoryPromptTurns is how many of the loaded messages are folded
	// into the prompt text.
	HistoryPromptTurns = 8
)

const conversationalTemplate = `You are 'Infinity', a highly advanced and elegant AI intelligence.
Your tone is sophisticated, direct, and slightly futuristic.
You are currently helping a user within their private intelligent workspace.

The user's query did not match any specific knowledge base documents.
Answer conversationally and with high-level intellect, using the provided history as your only context.
Avoid saying "I don't know" if the history allows for a meaningful logical inference.

Conversation History:
%s

Query: %s
Infinity:`

const groundedTemplate = `You are 'Infinity', a premier AI intelligence integrated into this private workspace.
Your primary directive is to provide elegant, precise, and highly intelligent insights based on the user's uploaded knowledge and conversation history.

Guidelines:
1. FLUIDITY OVER FORMALITY: Speak like a human expert, not a search engine.
2. SEAMLESS KNOWLEDGE: Use the provided Context to construct your reality. If the information is there, state it as a fact.
3. CITATION ETIQUETTE: Mention document names only when it adds necessary weight to an answer.
4. CONTEXTUAL MEMORY: Rely on the Conversation History to maintain the flow of the exchange.
5. NO REPETITION: Never repeat phrases like "Based on the information provided". Just speak.

Contextual Data:
%s

Conversation History:
%s

User Query: %s
Infinity:`

// FilterByScore keeps only hits with score strictly greater than min.
// Below-threshold hits are discarded, not errors.
func FilterByScore(chunks []types.RetrievedChunk, min float32) []types.RetrievedChunk {
	var kept []types.RetrievedChunk
	for _, chunk := range chunks {
		if chunk.Score > min {
			kept = append(kept, chunk)
		}
	}
	return kept
}

// BuildPrompt assembles the single flattened prompt sent to the LLM.
// With no qualifying context it falls back to the conversational,
// history-only template.
func BuildPrompt(query string, context []types.RetrievedChunk, history []types.ChatMessage) string {
	historyText := formatHistory(history, HistoryPromptTurns)

	if len(context) == 0 {
		return fmt.Sprintf(conversationalTemplate, historyText, query)
	}

	labeled := make([]string, 0, len(context))
	for _, chunk := range context {
		labeled = append(labeled, fmt.Sprintf("[Document: %s]: %s", chunk.Title, chunk.Text))
	}
	contextText := strings.Join(labeled, "\n\n")

	return fmt.Sprintf(groundedTemplate, contextText, historyText, query)
}

// BuildTitlePrompt asks for a short session title from the first query.
func BuildTitlePrompt(query string) string {
	return fmt.Sprintf("Summarize this user question into a 3-5 word title: %s", query)
}

func formatHistory(history []types.ChatMessage, turns int) string {
	if len(history) > turns {
		history = history[len(history)-turns:]
	}
	lines := make([]string, 0, len(history))
	for _, message := range history {
		lines = append(lines, fmt.Sprintf("%s: %s", capitalize(message.Role), message.Content))
	}
	return strings.Join(lines, "\n")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
