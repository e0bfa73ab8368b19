package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nishcheyk/infinity-workspace/types"
)

func TestFilterByScoreIsStrictlyGreater(t *testing.T) {
	chunks := []types.RetrievedChunk{
		{Text: "above", Score: 0.21},
		{Text: "exactly", Score: 0.20},
		{Text: "below", Score: 0.19},
		{Text: "high", Score: 0.95},
	}

	kept := FilterByScore(chunks, ScoreThreshold)

	require.Len(t, kept, 2)
	assert.Equal(t, "above", kept[0].Text)
	assert.Equal(t, "high", kept[1].Text)
}

func TestFilterByScoreAllBelow(t *testing.T) {
	chunks := []types.RetrievedChunk{
		{Text: "a", Score: 0.1},
		{Text: "b", Score: 0.05},
	}

	assert.Empty(t, FilterByScore(chunks, ScoreThreshold))
}

func TestBuildPromptConversationalWithoutContext(t *testing.T) {
	prompt := BuildPrompt("what is the capital of France?", nil, nil)

	assert.Contains(t, prompt, "did not match any specific knowledge base documents")
	assert.Contains(t, prompt, "Query: what is the capital of France?")
	assert.NotContains(t, prompt, "Contextual Data")
}

func TestBuildPromptGroundedWithContext(t *testing.T) {
	context := []types.RetrievedChunk{
		{Title: "report.pdf", Text: "Revenue grew 12% in Q3.", Score: 0.8},
		{Title: "notes.txt", Text: "Headcount is flat.", Score: 0.5},
	}

	prompt := BuildPrompt("how did we do?", context, nil)

	assert.Contains(t, prompt, "[Document: report.pdf]: Revenue grew 12% in Q3.")
	assert.Contains(t, prompt, "[Document: notes.txt]: Headcount is flat.")
	assert.Contains(t, prompt, "User Query: how did we do?")
	assert.Contains(t, prompt, "Contextual Data")
}

func TestBuildPromptHistoryWindow(t *testing.T) {
	var history []types.ChatMessage
	for i := 0; i < 12; i++ {
		role := types.RoleUser
		if i%2 == 1 {
			role = types.RoleAssistant
		}
		history = append(history, types.ChatMessage{
			Role:    role,
			Content: "x" + string(rune('a'+i)),
		})
	}

	prompt := BuildPrompt("next question", nil, history)

	// Only the last eight turns appear.
	assert.NotContains(t, prompt, "xa")
	assert.NotContains(t, prompt, "xd")
	assert.Contains(t, prompt, "xe")
	assert.Contains(t, prompt, "xl")
}

func TestBuildPromptHistoryRolesCapitalized(t *testing.T) {
	history := []types.ChatMessage{
		{Role: types.RoleUser, Content: "hello"},
		{Role: types.RoleAssistant, Content: "greetings"},
	}

	prompt := BuildPrompt("q", nil, history)

	assert.Contains(t, prompt, "User: hello")
	assert.Contains(t, prompt, "Assistant: greetings")
}

func TestBuildTitlePrompt(t *testing.T) {
	prompt := BuildTitlePrompt("how do I rotate my API keys?")

	assert.Equal(t, "Summarize this user question into a 3-5 word title: how do I rotate my API keys?", prompt)
}
