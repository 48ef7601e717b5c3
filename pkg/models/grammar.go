package models

import "fmt"

// GrammarItem is a catalog entry describing one grammar point
type GrammarItem struct {
	ID          string `json:"id" db:"id"`
	Structure   string `json:"structure" db:"structure"`
	Pattern     string `json:"pattern" db:"pattern"`
	Explanation string `json:"explanation" db:"explanation"`
}

// GrammarStatus is the learner-assigned label of a grammar point.
// Any status can be set from any other one.
type GrammarStatus string

const (
	StatusUnseen    GrammarStatus = "unseen"
	StatusSeen      GrammarStatus = "seen"
	StatusPracticed GrammarStatus = "practiced"
	StatusMastered  GrammarStatus = "mastered"
)

// GrammarStatuses lists every valid status in display order.
var GrammarStatuses = []GrammarStatus{StatusUnseen, StatusSeen, StatusPracticed, StatusMastered}

// Valid reports whether s is one of the known statuses.
func (s GrammarStatus) Valid() bool {
	for _, known := range GrammarStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// ParseGrammarStatus converts raw input into a GrammarStatus.
func ParseGrammarStatus(raw string) (GrammarStatus, error) {
	s := GrammarStatus(raw)
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
	return s, nil
}

// GrammarPoint joins a grammar item with its progress
type GrammarPoint struct {
	GrammarItem
	GrammarProgress
}
