package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/BenWassa/vox/pkg/models"
	"github.com/Masterminds/squirrel"
)

var grammarPointColumns = []string{
	"g.id", "g.structure", "g.pattern", "g.explanation",
	"p.grammar_id", "p.status", "p.practice_count",
}

// SeedGrammar inserts grammar points that are not stored yet and creates an
// "unseen" progress record for each one that has none. It is idempotent.
func (r *CatalogRepository) SeedGrammar(ctx context.Context, items []models.GrammarItem) (int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, storageErr("start transaction", err)
	}
	defer tx.Rollback()

	created := 0
	for _, item := range items {
		query, args, err := r.sb.Insert("grammar").
			Columns("id", "structure", "pattern", "explanation").
			Values(item.ID, item.Structure, item.Pattern, item.Explanation).
			Suffix("ON CONFLICT (id) DO NOTHING").
			ToSql()
		if err != nil {
			return 0, fmt.Errorf("failed to build grammar insert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return 0, storageErr("insert grammar "+item.ID, err)
		}

		p := models.NewGrammarProgress(item.ID)
		query, args, err = r.sb.Insert("grammar_progress").
			Columns(grammarProgressColumns...).
			Values(p.GrammarID, string(p.Status), p.PracticeCount).
			Suffix("ON CONFLICT (grammar_id) DO NOTHING").
			ToSql()
		if err != nil {
			return 0, fmt.Errorf("failed to build grammar progress insert: %w", err)
		}
		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return 0, storageErr("insert grammar progress "+item.ID, err)
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

// ListGrammarPoints returns all grammar points with their current status
func (r *CatalogRepository) ListGrammarPoints(ctx context.Context) ([]models.GrammarPoint, error) {
	query, args, err := r.grammarPoints().OrderBy("g.id ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build grammar query: %w", err)
	}

	points := []models.GrammarPoint{}
	if err := r.db.SelectContext(ctx, &points, query, args...); err != nil {
		return nil, storageErr("list grammar points", err)
	}
	return points, nil
}

// GetGrammarPoint returns a single grammar point with its status
func (r *CatalogRepository) GetGrammarPoint(ctx context.Context, id string) (*models.GrammarPoint, error) {
	query, args, err := r.grammarPoints().Where(squirrel.Eq{"g.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build grammar query: %w", err)
	}

	var point models.GrammarPoint
	err = r.db.GetContext(ctx, &point, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: grammar point %q", models.ErrNotFound, id)
	}
	if err != nil {
		return nil, storageErr("get grammar point", err)
	}
	return &point, nil
}

func (r *CatalogRepository) grammarPoints() squirrel.SelectBuilder {
	return r.sb.Select(grammarPointColumns...).
		From("grammar g").
		Join("grammar_progress p ON p.grammar_id = g.id")
}
