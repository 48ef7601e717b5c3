package models

// Summary holds the dashboard statistics.
// BoxCounts always has keys 1..6 and StatusCounts always has every status,
// so their sums equal VocabTotal and GrammarTotal.
type Summary struct {
	VocabTotal            int                   `json:"vocab_total"`
	VocabMastered         int                   `json:"vocab_mastered"`
	VocabMasteryPercent   float64               `json:"vocab_mastery_percent"`
	GrammarTotal          int                   `json:"grammar_total"`
	GrammarMastered       int                   `json:"grammar_mastered"`
	GrammarMasteryPercent float64               `json:"grammar_mastery_percent"`
	BoxCounts             map[int]int           `json:"box_counts"`
	StatusCounts          map[GrammarStatus]int `json:"status_counts"`
	DueNow                int                   `json:"due_now"`
}

// Percent returns part/total*100, or 0 when total is 0.
func Percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}
