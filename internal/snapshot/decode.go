package snapshot

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/BenWassa/vox/pkg/models"
)

// Incoming documents are read through pointer fields so that a missing key
// can be told apart from a zero value.
type rawPayload struct {
	Version         *int          `json:"version"`
	VocabProgress   *[]rawVocab   `json:"vocab_progress"`
	GrammarProgress *[]rawGrammar `json:"grammar_progress"`
}

type rawVocab struct {
	ID         string    `json:"id"`
	VocabID    legacyID  `json:"vocab_id"`
	Box        *int      `json:"box"`
	LastReview *flexTime `json:"last_review"`
	NextReview *flexTime `json:"next_review"`
}

type rawGrammar struct {
	ID            string   `json:"id"`
	GrammarID     legacyID `json:"grammar_id"`
	Status        *string  `json:"status"`
	PracticeCount *int     `json:"practice_count"`
}

// legacyID is the vocab_id/grammar_id key of older exports. Only catalog keys are
// accepted: exports that stored numeric row ids cannot be mapped back to catalog items.
type legacyID string

func (id *legacyID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("id %s is not a catalog key; numeric row ids are not supported", b)
	}
	*id = legacyID(s)
	return nil
}

// flexTime accepts RFC 3339 as well as the zone-less layouts of older exports, read as UTC
type flexTime struct {
	time.Time
}

var legacyLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05.999999999-07:00",
}

func (t *flexTime) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if parsed, err := time.Parse(time.RFC3339Nano, s); err == nil {
		t.Time = parsed.UTC()
		return nil
	}
	for _, layout := range legacyLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("cannot parse time %q", s)
}

// Decode parses and validates a payload
func Decode(data []byte) ([]models.VocabProgress, []models.GrammarProgress, error) {
	var raw rawPayload
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, invalid("cannot parse payload: %v", err)
	}

	if raw.Version == nil {
		return nil, nil, invalid("missing version")
	}
	if *raw.Version != Version {
		return nil, nil, invalid("unsupported version %d", *raw.Version)
	}
	if raw.VocabProgress == nil {
		return nil, nil, invalid("missing vocab_progress")
	}
	if raw.GrammarProgress == nil {
		return nil, nil, invalid("missing grammar_progress")
	}

	vocab, err := decodeVocab(*raw.VocabProgress)
	if err != nil {
		return nil, nil, err
	}
	grammar, err := decodeGrammar(*raw.GrammarProgress)
	if err != nil {
		return nil, nil, err
	}
	return vocab, grammar, nil
}

func decodeVocab(records []rawVocab) ([]models.VocabProgress, error) {
	seen := make(map[string]bool, len(records))
	out := make([]models.VocabProgress, 0, len(records))

	for i, r := range records {
		id := firstNonEmpty(r.ID, string(r.VocabID))
		switch {
		case id == "":
			return nil, invalid("vocab_progress[%d]: missing id", i)
		case id != strings.TrimSpace(id):
			return nil, invalid("vocab_progress[%d]: id %q has surrounding whitespace", i, id)
		case seen[id]:
			return nil, invalid("vocab_progress[%d]: duplicate id %q", i, id)
		case r.Box == nil:
			return nil, invalid("vocab_progress[%d]: missing box", i)
		case *r.Box < models.MinBox || *r.Box > models.MasteredBox:
			return nil, invalid("vocab_progress[%d]: box %d out of range", i, *r.Box)
		case r.NextReview == nil:
			return nil, invalid("vocab_progress[%d]: missing next_review", i)
		}
		seen[id] = true

		p := models.VocabProgress{
			VocabID:    id,
			Box:        *r.Box,
			NextReview: r.NextReview.Time,
		}
		if r.LastReview != nil {
			last := r.LastReview.Time
			p.LastReview = &last
		}
		out = append(out, p)
	}
	return out, nil
}

func decodeGrammar(records []rawGrammar) ([]models.GrammarProgress, error) {
	seen := make(map[string]bool, len(records))
	out := make([]models.GrammarProgress, 0, len(records))

	for i, r := range records {
		id := firstNonEmpty(r.ID, string(r.GrammarID))
		switch {
		case id == "":
			return nil, invalid("grammar_progress[%d]: missing id", i)
		case id != strings.TrimSpace(id):
			return nil, invalid("grammar_progress[%d]: id %q has surrounding whitespace", i, id)
		case seen[id]:
			return nil, invalid("grammar_progress[%d]: duplicate id %q", i, id)
		case r.Status == nil:
			return nil, invalid("grammar_progress[%d]: missing status", i)
		case !models.GrammarStatus(*r.Status).Valid():
			return nil, invalid("grammar_progress[%d]: unknown status %q", i, *r.Status)
		case r.PracticeCount != nil && *r.PracticeCount < 0:
			return nil, invalid("grammar_progress[%d]: negative practice_count", i)
		}
		seen[id] = true

		p := models.GrammarProgress{GrammarID: id, Status: models.GrammarStatus(*r.Status)}
		if r.PracticeCount != nil {
			p.PracticeCount = *r.PracticeCount
		}
		out = append(out, p)
	}
	return out, nil
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", models.ErrInvalidFormat, fmt.Sprintf(format, args...))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
