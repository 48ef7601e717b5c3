package models

import "time"

// Mastery boxes of the Leitner ladder.
const (
	MinBox      = 1
	MasteredBox = 6
)

// VocabProgress is the review state of one vocab item.
type VocabProgress struct {
	VocabID    string     `json:"vocab_id" db:"vocab_id"`
	Box        int        `json:"box" db:"box"`                 // 1..6, 6 means mastered
	LastReview *time.Time `json:"last_review" db:"last_review"` // nil until the first outcome
	NextReview time.Time  `json:"next_review" db:"next_review"` // Eligible for review from this instant
}

// Mastered reports whether the item sits in the top box.
func (p VocabProgress) Mastered() bool {
	return p.Box == MasteredBox
}

// NewVocabProgress returns the initial state for a freshly loaded item: box 1, due immediately.
func NewVocabProgress(id string, now time.Time) VocabProgress {
	return VocabProgress{
		VocabID:    id,
		Box:        MinBox,
		NextReview: now,
	}
}

// GrammarProgress is the learner's status for one grammar point
type GrammarProgress struct {
	GrammarID     string        `json:"grammar_id" db:"grammar_id"`
	Status        GrammarStatus `json:"status" db:"status"`
	PracticeCount int           `json:"practice_count" db:"practice_count"`
}

// NewGrammarProgress returns the initial state of a grammar point.
func NewGrammarProgress(id string) GrammarProgress {
	return GrammarProgress{GrammarID: id, Status: StatusUnseen}
}
