package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIEmbedderDimension(t *testing.T) {
	embedder := NewOpenAIEmbedder("http://localhost:1234/v1", "key", "all-MiniLM-L6-v2", 384)

	assert.Equal(t, 384, embedder.Dimension())
}

func TestOpenAIEmbedderEmptyBatch(t *testing.T) {
	embedder := NewOpenAIEmbedder("http://localhost:1234/v1", "key", "all-MiniLM-L6-v2", 384)

	vectors, err := embedder.EmbedTexts(context.Background(), nil)

	require.NoError(t, err)
	assert.Nil(t, vectors)
}
