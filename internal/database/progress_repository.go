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

var (
	vocabProgressColumns   = []string{"vocab_id", "box", "last_review", "next_review"}
	grammarProgressColumns = []string{"grammar_id", "status", "practice_count"}
)

// ProgressRepository handles database operations for vocab and grammar progress.
// It is the only writer of the progress tables.
type ProgressRepository struct {
	db *sqlx.DB
	sb squirrel.StatementBuilderType
}

// NewProgressRepository creates a new repository instance
func NewProgressRepository(db *sqlx.DB) *ProgressRepository {
	return &ProgressRepository{db: db, sb: builder(db)}
}

// GetDue returns the vocab item that should be reviewed next at the given instant:
// the earliest next_review not after at, ties broken by identity.
// It returns nil when nothing is due.
func (r *ProgressRepository) GetDue(ctx context.Context, at time.Time) (*models.VocabProgress, error) {
	due, err := r.ListDue(ctx, at, 1)
	if err != nil {
		return nil, err
	}
	if len(due) == 0 {
		return nil, nil
	}
	return &due[0], nil
}

// ListDue returns up to limit due items in review order. A limit of 0 means no limit.
func (r *ProgressRepository) ListDue(ctx context.Context, at time.Time, limit int) ([]models.VocabProgress, error) {
	q := r.sb.Select(vocabProgressColumns...).
		From("vocab_progress").
		Where(squirrel.LtOrEq{"next_review": dbTime(at)}).
		OrderBy("next_review ASC", "vocab_id ASC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build due query: %w", err)
	}

	var progress []models.VocabProgress
	if err := r.db.SelectContext(ctx, &progress, query, args...); err != nil {
		return nil, storageErr("get due words", err)
	}
	for i := range progress {
		normalizeVocab(&progress[i])
	}
	return progress, nil
}

// GetVocab returns progress for a specific vocab item
func (r *ProgressRepository) GetVocab(ctx context.Context, id string) (*models.VocabProgress, error) {
	query, args, err := r.sb.Select(vocabProgressColumns...).
		From("vocab_progress").
		Where(squirrel.Eq{"vocab_id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build vocab progress query: %w", err)
	}

	var progress models.VocabProgress
	err = r.db.GetContext(ctx, &progress, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: vocab progress %q", models.ErrNotFound, id)
	}
	if err != nil {
		return nil, storageErr("get vocab progress", err)
	}
	normalizeVocab(&progress)
	return &progress, nil
}

// UpdateVocab replaces the stored state of one vocab item
func (r *ProgressRepository) UpdateVocab(ctx context.Context, p models.VocabProgress) error {
	query, args, err := r.sb.Update("vocab_progress").
		Set("box", p.Box).
		Set("last_review", dbTimePtr(p.LastReview)).
		Set("next_review", dbTime(p.NextReview)).
		Where(squirrel.Eq{"vocab_id": p.VocabID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build vocab progress update: %w", err)
	}

	return r.execOne(ctx, "update vocab progress", "vocab progress "+p.VocabID, query, args...)
}

// GetGrammar returns progress for a specific grammar point
func (r *ProgressRepository) GetGrammar(ctx context.Context, id string) (*models.GrammarProgress, error) {
	query, args, err := r.sb.Select(grammarProgressColumns...).
		From("grammar_progress").
		Where(squirrel.Eq{"grammar_id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build grammar progress query: %w", err)
	}

	var progress models.GrammarProgress
	err = r.db.GetContext(ctx, &progress, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: grammar progress %q", models.ErrNotFound, id)
	}
	if err != nil {
		return nil, storageErr("get grammar progress", err)
	}
	return &progress, nil
}

// UpdateGrammar replaces the stored state of one grammar point
func (r *ProgressRepository) UpdateGrammar(ctx context.Context, p models.GrammarProgress) error {
	query, args, err := r.sb.Update("grammar_progress").
		Set("status", string(p.Status)).
		Set("practice_count", p.PracticeCount).
		Where(squirrel.Eq{"grammar_id": p.GrammarID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build grammar progress update: %w", err)
	}

	return r.execOne(ctx, "update grammar progress", "grammar progress "+p.GrammarID, query, args...)
}

// execOne runs a single-row statement and maps "no row touched" to ErrNotFound
func (r *ProgressRepository) execOne(ctx context.Context, op, what, query string, args ...interface{}) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return storageErr(op, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return storageErr("get rows affected", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", models.ErrNotFound, what)
	}
	return nil
}

// AllVocab returns every vocab progress record ordered by identity
func (r *ProgressRepository) AllVocab(ctx context.Context) ([]models.VocabProgress, error) {
	query, args, err := r.sb.Select(vocabProgressColumns...).
		From("vocab_progress").
		OrderBy("vocab_id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build vocab progress query: %w", err)
	}

	progress := []models.VocabProgress{}
	if err := r.db.SelectContext(ctx, &progress, query, args...); err != nil {
		return nil, storageErr("list vocab progress", err)
	}
	for i := range progress {
		normalizeVocab(&progress[i])
	}
	return progress, nil
}

// AllGrammar returns every grammar progress record ordered by identity
func (r *ProgressRepository) AllGrammar(ctx context.Context) ([]models.GrammarProgress, error) {
	query, args, err := r.sb.Select(grammarProgressColumns...).
		From("grammar_progress").
		OrderBy("grammar_id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build grammar progress query: %w", err)
	}

	progress := []models.GrammarProgress{}
	if err := r.db.SelectContext(ctx, &progress, query, args...); err != nil {
		return nil, storageErr("list grammar progress", err)
	}
	return progress, nil
}

// ReplaceAll drops every progress record and stores the given ones instead.
// Everything happens in one transaction: if any record refers to an unknown catalog
// item or any statement fails, the store is left exactly as it was.
func (r *ProgressRepository) ReplaceAll(ctx context.Context, vocab []models.VocabProgress, grammar []models.GrammarProgress) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return storageErr("start transaction", err)
	}
	defer tx.Rollback()

	vocabIDs, err := catalogIDs(ctx, tx, "vocab")
	if err != nil {
		return err
	}
	grammarIDs, err := catalogIDs(ctx, tx, "grammar")
	if err != nil {
		return err
	}
	for _, p := range vocab {
		if !vocabIDs[p.VocabID] {
			return fmt.Errorf("%w: vocab item %q", models.ErrNotFound, p.VocabID)
		}
	}
	for _, p := range grammar {
		if !grammarIDs[p.GrammarID] {
			return fmt.Errorf("%w: grammar item %q", models.ErrNotFound, p.GrammarID)
		}
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM vocab_progress"); err != nil {
		return storageErr("clear vocab progress", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM grammar_progress"); err != nil {
		return storageErr("clear grammar progress", err)
	}

	for _, p := range vocab {
		query, args, err := r.sb.Insert("vocab_progress").
			Columns(vocabProgressColumns...).
			Values(p.VocabID, p.Box, dbTimePtr(p.LastReview), dbTime(p.NextReview)).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build vocab progress insert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return storageErr("insert vocab progress "+p.VocabID, err)
		}
	}

	for _, p := range grammar {
		query, args, err := r.sb.Insert("grammar_progress").
			Columns(grammarProgressColumns...).
			Values(p.GrammarID, string(p.Status), p.PracticeCount).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build grammar progress insert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return storageErr("insert grammar progress "+p.GrammarID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return storageErr("commit transaction", err)
	}
	return nil
}

// catalogIDs loads the identity set of a catalog table inside a transaction
func catalogIDs(ctx context.Context, tx *sqlx.Tx, table string) (map[string]bool, error) {
	var ids []string
	if err := tx.SelectContext(ctx, &ids, "SELECT id FROM "+table); err != nil {
		return nil, storageErr("list "+table+" ids", err)
	}

	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}
