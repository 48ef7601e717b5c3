package database

import (
	"fmt"
	"time"

	"github.com/BenWassa/vox/pkg/models"
	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

// builder returns a statement builder using the placeholder style of the driver
func builder(db *sqlx.DB) squirrel.StatementBuilderType {
	if db.DriverName() == DriverPostgres {
		return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	}
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)
}

// storageErr wraps a driver error so callers can detect it with errors.Is(err, models.ErrStorage)
func storageErr(op string, err error) error {
	return fmt.Errorf("%w: failed to %s: %v", models.ErrStorage, op, err)
}

// dbTime normalizes an instant before it is written: UTC, microsecond precision
func dbTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

func dbTimePtr(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return dbTime(*t)
}

// normalizeVocab puts times read back from the driver into UTC
func normalizeVocab(p *models.VocabProgress) {
	p.NextReview = p.NextReview.UTC()
	if p.LastReview != nil {
		last := p.LastReview.UTC()
		p.LastReview = &last
	}
}

// Result rows of the GROUP BY count queries
type boxCount struct {
	Box   int `db:"box"`
	Count int `db:"n"`
}

type statusCount struct {
	Status models.GrammarStatus `db:"status"`
	Count  int                  `db:"n"`
}
