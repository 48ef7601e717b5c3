package models

import "time"

// VocabItem is a catalog entry for a single word. It is loaded once and never changed.
type VocabItem struct {
	ID     string `json:"id" db:"id"`         // Stable external key, e.g. "v001"
	Hanzi  string `json:"hanzi" db:"hanzi"`   // Written form
	Pinyin string `json:"pinyin" db:"pinyin"` // Pronunciation
	Gloss  string `json:"english" db:"gloss"` // English meanings joined with ", "
}

// Card is what gets presented for review: the catalog item together with its progress.
type Card struct {
	VocabItem
	VocabProgress
}

// Due reports whether the card may be presented at the given instant.
func (c Card) Due(at time.Time) bool {
	return !c.NextReview.After(at)
}
