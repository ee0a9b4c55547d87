package quizgen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleText = "Distributed consensus protocols coordinate replicated state machines across unreliable networks. " +
	"The Raft algorithm decomposes consensus into leader election and log replication phases. " +
	"Quorum intersection guarantees that committed entries survive minority failures. " +
	"Snapshot compaction prevents unbounded log growth in long running clusters. " +
	"Linearizable reads require either leader leases or explicit readindex confirmation. " +
	"Membership changes use joint configurations to avoid split brain scenarios."

func TestGenerateProducesOrderedQuestions(t *testing.T) {
	gen := NewClozeGenerator(5)

	questions, err := gen.Generate(sampleText)
	require.NoError(t, err)
	require.NotEmpty(t, questions)
	assert.LessOrEqual(t, len(questions), 5)

	for i, q := range questions {
		assert.Equalf(t, "q"+string(rune('1'+i)), q.QuestionID, "question %d", i)
		assert.Len(t, q.Options, 4)
		assert.GreaterOrEqual(t, q.CorrectAnswer, 0)
		assert.Less(t, q.CorrectAnswer, 4)
		assert.Contains(t, q.Question, "_____")
		// The blanked term must sit exactly at the correct index.
		assert.NotContains(t, q.Question, q.Options[q.CorrectAnswer])
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	gen := NewClozeGenerator(5)

	first, err := gen.Generate(sampleText)
	require.NoError(t, err)
	second, err := gen.Generate(sampleText)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestGenerateRejectsThinMaterial(t *testing.T) {
	gen := NewClozeGenerator(5)

	_, err := gen.Generate("Too short.")
	assert.ErrorIs(t, err, ErrNotEnoughMaterial)
}

func TestExtractBoundsText(t *testing.T) {
	extractor := NewDocumentTextExtractor()
	data := []byte(strings.Repeat("consensus protocols everywhere ", 1000))

	text, err := extractor.Extract(data, 500)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(text), 500)
	assert.Contains(t, text, "consensus")
}

func TestExtractRejectsBinaryOnly(t *testing.T) {
	extractor := NewDocumentTextExtractor()
	data := []byte{0x00, 0x01, 0x02, 0xff, 0xfe, 0x03}

	_, err := extractor.Extract(data, 1000)
	assert.ErrorIs(t, err, ErrNoText)
}
