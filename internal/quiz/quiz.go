// Package quiz builds multiple-choice questions from the vocab catalog.
package quiz

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"github.com/BenWassa/vox/pkg/models"
)

// QuestionType represents different types of questions
type QuestionType string

const (
	// MultipleChoice shows the hanzi and asks for the English meaning
	MultipleChoice QuestionType = "multiple_choice"
	// ReverseChoice shows the English meaning and asks for the hanzi
	ReverseChoice QuestionType = "reverse_choice"
)

// ParseQuestionType converts raw input into a QuestionType. Empty means MultipleChoice.
func ParseQuestionType(raw string) (QuestionType, error) {
	switch QuestionType(raw) {
	case "", MultipleChoice:
		return MultipleChoice, nil
	case ReverseChoice:
		return ReverseChoice, nil
	default:
		return "", fmt.Errorf("unknown question type %q", raw)
	}
}

// Question represents a single quiz question
type Question struct {
	ItemID       string       `json:"id"`
	Type         QuestionType `json:"type"`
	Prompt       string       `json:"prompt"`
	Options      []string     `json:"options"`
	CorrectIndex int          `json:"correct_index"`
}

// Check reports whether the chosen option is the right one
func (q Question) Check(choice int) bool {
	return choice == q.CorrectIndex
}

// Source lists the vocab catalog
type Source interface {
	ListVocabItems(ctx context.Context) ([]models.VocabItem, error)
}

// Module generates questions. The random source is seeded explicitly.
type Module struct {
	source Source

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewModule creates a new quiz module
func NewModule(source Source, seed int64) *Module {
	return &Module{
		source: source,
		rnd:    rand.New(rand.NewSource(seed)),
	}
}

// Question builds a question for one vocab item with up to optionCount options.
// Fewer options are returned when the catalog has too few distinct answers.
func (m *Module) Question(ctx context.Context, id string, optionCount int, qt QuestionType) (Question, error) {
	items, err := m.source.ListVocabItems(ctx)
	if err != nil {
		return Question{}, fmt.Errorf("failed to list vocab: %w", err)
	}

	for _, item := range items {
		if item.ID == id {
			m.mu.Lock()
			defer m.mu.Unlock()
			return m.build(item, items, optionCount, qt), nil
		}
	}
	return Question{}, fmt.Errorf("%w: vocab item %q", models.ErrNotFound, id)
}

// CreateTest generates questionCount questions over randomly chosen items
func (m *Module) CreateTest(ctx context.Context, questionCount, optionCount int, qt QuestionType) ([]Question, error) {
	items, err := m.source.ListVocabItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list vocab: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	words := append([]models.VocabItem(nil), items...)
	m.rnd.Shuffle(len(words), func(i, j int) {
		words[i], words[j] = words[j], words[i]
	})

	// Limit to requested count
	if len(words) > questionCount {
		words = words[:questionCount]
	}

	questions := make([]Question, 0, len(words))
	for _, word := range words {
		questions = append(questions, m.build(word, items, optionCount, qt))
	}
	return questions, nil
}

// build must be called with m.mu held
func (m *Module) build(item models.VocabItem, all []models.VocabItem, optionCount int, qt QuestionType) Question {
	prompt, answer := item.Hanzi, item.Gloss
	if qt == ReverseChoice {
		prompt, answer = item.Gloss, item.Hanzi
	}

	options := append(m.distractors(item, all, answer, optionCount-1, qt), answer)
	correctIndex := len(options) - 1

	m.rnd.Shuffle(len(options), func(i, j int) {
		if i == correctIndex {
			correctIndex = j
		} else if j == correctIndex {
			correctIndex = i
		}
		options[i], options[j] = options[j], options[i]
	})

	return Question{
		ItemID:       item.ID,
		Type:         qt,
		Prompt:       prompt,
		Options:      options,
		CorrectIndex: correctIndex,
	}
}

// distractors picks count wrong answers that differ from answer and from each other
func (m *Module) distractors(item models.VocabItem, all []models.VocabItem, answer string, count int, qt QuestionType) []string {
	if count <= 0 {
		return []string{}
	}

	candidates := make([]string, 0, len(all))
	seen := map[string]bool{answer: true}
	for _, other := range all {
		value := other.Gloss
		if qt == ReverseChoice {
			value = other.Hanzi
		}
		if other.ID == item.ID || value == "" || seen[value] {
			continue
		}
		seen[value] = true
		candidates = append(candidates, value)
	}

	m.rnd.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	if len(candidates) > count {
		candidates = candidates[:count]
	}
	return candidates
}
