package quizgen

import (
	"errors"
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/GavrielUnict/elearning-platform/internal/models"
)

// ErrNotEnoughMaterial is returned when the text cannot support a quiz.
var ErrNotEnoughMaterial = errors.New("not enough material to build a quiz")

// QuestionGenerator builds multiple-choice questions from plain text.
type QuestionGenerator interface {
	Generate(text string) ([]models.Question, error)
}

// ClozeGenerator produces fill-in-the-blank questions: each question blanks
// the most distinctive term of a sentence and offers terms from other
// sentences as distractors. Fully deterministic for a given text.
type ClozeGenerator struct {
	maxQuestions int
}

// NewClozeGenerator constructs ClozeGenerator.
func NewClozeGenerator(maxQuestions int) *ClozeGenerator {
	if maxQuestions <= 0 {
		maxQuestions = 5
	}
	return &ClozeGenerator{maxQuestions: maxQuestions}
}

const (
	minSentenceLength  = 40
	optionsPerQuestion = 4
)

// Generate builds up to maxQuestions ordered questions with IDs q1, q2, ...
func (g *ClozeGenerator) Generate(text string) ([]models.Question, error) {
	sentences := splitSentences(text)

	type candidate struct {
		sentence string
		term     string
	}
	var candidates []candidate
	seen := map[string]bool{}
	for _, sentence := range sentences {
		if len(sentence) < minSentenceLength {
			continue
		}
		term := distinctiveTerm(sentence)
		if term == "" || seen[strings.ToLower(term)] {
			continue
		}
		seen[strings.ToLower(term)] = true
		candidates = append(candidates, candidate{sentence: sentence, term: term})
	}

	if len(candidates) < optionsPerQuestion {
		return nil, ErrNotEnoughMaterial
	}

	count := g.maxQuestions
	if count > len(candidates) {
		count = len(candidates)
	}

	questions := make([]models.Question, 0, count)
	for i := 0; i < count; i++ {
		c := candidates[i]
		distractors := make([]string, 0, optionsPerQuestion-1)
		for j := 1; len(distractors) < optionsPerQuestion-1; j++ {
			other := candidates[(i+j)%len(candidates)]
			if other.term == c.term {
				continue
			}
			distractors = append(distractors, other.term)
		}

		correct := int(hashString(c.term) % optionsPerQuestion)
		options := make([]string, 0, optionsPerQuestion)
		options = append(options, distractors[:correct]...)
		options = append(options, c.term)
		options = append(options, distractors[correct:]...)

		questions = append(questions, models.Question{
			QuestionID:    fmt.Sprintf("q%d", i+1),
			Question:      blankTerm(c.sentence, c.term),
			Options:       options,
			CorrectAnswer: correct,
		})
	}
	return questions, nil
}

func splitSentences(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if trimmed := strings.TrimSpace(f); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// distinctiveTerm picks the longest alphabetic word of a sentence.
func distinctiveTerm(sentence string) string {
	best := ""
	for _, word := range strings.Fields(sentence) {
		cleaned := strings.TrimFunc(word, func(r rune) bool {
			return !isLetter(r)
		})
		if len(cleaned) > len(best) && allLetters(cleaned) {
			best = cleaned
		}
	}
	if len(best) < 5 {
		return ""
	}
	return best
}

func blankTerm(sentence, term string) string {
	return strings.Replace(sentence, term, "_____", 1) + "?"
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func allLetters(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !isLetter(r) {
			return false
		}
	}
	return true
}

func hashString(s string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(s))
	return h.Sum32()
}
