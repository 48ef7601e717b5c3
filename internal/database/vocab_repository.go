package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/BenWassa/vox/pkg/models"
	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

var cardColumns = []string{
	"v.id", "v.hanzi", "v.pinyin", "v.gloss",
	"p.vocab_id", "p.box", "p.last_review", "p.next_review",
}

// CatalogRepository handles the read-only catalog tables (vocab and grammar)
// and creates the initial progress record for every new item.
type CatalogRepository struct {
	db *sqlx.DB
	sb squirrel.StatementBuilderType
}

// NewCatalogRepository creates a new repository instance
func NewCatalogRepository(db *sqlx.DB) *CatalogRepository {
	return &CatalogRepository{db: db, sb: builder(db)}
}

// SeedVocab inserts catalog items that are not stored yet and gives every item
// without progress a fresh record due at now. Running it twice changes nothing.
// It returns the number of progress records created.
func (r *CatalogRepository) SeedVocab(ctx context.Context, items []models.VocabItem, now time.Time) (int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, storageErr("start transaction", err)
	}
	defer tx.Rollback()

	created := 0
	for _, item := range items {
		query, args, err := r.sb.Insert("vocab").
			Columns("id", "hanzi", "pinyin", "gloss").
			Values(item.ID, item.Hanzi, item.Pinyin, item.Gloss).
			Suffix("ON CONFLICT (id) DO NOTHING").
			ToSql()
		if err != nil {
			return 0, fmt.Errorf("failed to build vocab insert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return 0, storageErr("insert vocab "+item.ID, err)
		}

		p := models.NewVocabProgress(item.ID, now)
		query, args, err = r.sb.Insert("vocab_progress").
			Columns(vocabProgressColumns...).
			Values(p.VocabID, p.Box, nil, dbTime(p.NextReview)).
			Suffix("ON CONFLICT (vocab_id) DO NOTHING").
			ToSql()
		if err != nil {
			return 0, fmt.Errorf("failed to build vocab progress insert: %w", err)
		}
		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return 0, storageErr("insert vocab progress "+item.ID, err)
		}
		if n, err := result.RowsAffected(); err == nil {
			created += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, storageErr("commit transaction", err)
	}
	return created, nil
}

// GetCard returns a vocab item joined with its progress
func (r *CatalogRepository) GetCard(ctx context.Context, id string) (*models.Card, error) {
	query, args, err := r.cards().Where(squirrel.Eq{"v.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build card query: %w", err)
	}

	var card models.Card
	err = r.db.GetContext(ctx, &card, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: card %q", models.ErrNotFound, id)
	}
	if err != nil {
		return nil, storageErr("get card", err)
	}
	normalizeVocab(&card.VocabProgress)
	return &card, nil
}

// ListCards returns every card that has progress, ordered by identity
func (r *CatalogRepository) ListCards(ctx context.Context) ([]models.Card, error) {
	query, args, err := r.cards().OrderBy("v.id ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build card query: %w", err)
	}

	cards := []models.Card{}
	if err := r.db.SelectContext(ctx, &cards, query, args...); err != nil {
		return nil, storageErr("list cards", err)
	}
	for i := range cards {
		normalizeVocab(&cards[i].VocabProgress)
	}
	return cards, nil
}

// ListVocabItems returns the whole vocab catalog ordered by identity
func (r *CatalogRepository) ListVocabItems(ctx context.Context) ([]models.VocabItem, error) {
	query, args, err := r.sb.Select("id", "hanzi", "pinyin", "gloss").
		From("vocab").
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build vocab query: %w", err)
	}

	items := []models.VocabItem{}
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, storageErr("list vocab", err)
	}
	return items, nil
}

func (r *CatalogRepository) cards() squirrel.SelectBuilder {
	return r.sb.Select(cardColumns...).
		From("vocab v").
		Join("vocab_progress p ON p.vocab_id = v.id")
}
