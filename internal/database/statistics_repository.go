package database

import (
	"context"
	"fmt"
	"time"

	"github.com/BenWassa/vox/pkg/models"
	"github.com/Masterminds/squirrel"
)

// CountByBox returns how many vocab items sit in each box. Every box 1..6 has a key.
func (r *ProgressRepository) CountByBox(ctx context.Context) (map[int]int, error) {
	query, args, err := r.sb.Select("box", "COUNT(*) AS n").
		From("vocab_progress").
		GroupBy("box").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build box count query: %w", err)
	}

	var rows []boxCount
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, storageErr("count vocab by box", err)
	}

	counts := make(map[int]int, models.MasteredBox)
	for box := models.MinBox; box <= models.MasteredBox; box++ {
		counts[box] = 0
	}
	for _, row := range rows {
		counts[row.Box] = row.Count
	}
	return counts, nil
}

// CountByStatus returns how many grammar points have each status. Every status has a key.
func (r *ProgressRepository) CountByStatus(ctx context.Context) (map[models.GrammarStatus]int, error) {
	query, args, err := r.sb.Select("status", "COUNT(*) AS n").
		From("grammar_progress").
		GroupBy("status").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build status count query: %w", err)
	}

	var rows []statusCount
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, storageErr("count grammar by status", err)
	}

	counts := make(map[models.GrammarStatus]int, len(models.GrammarStatuses))
	for _, s := range models.GrammarStatuses {
		counts[s] = 0
	}
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// CountDue returns the number of vocab items due at the given instant
func (r *ProgressRepository) CountDue(ctx context.Context, at time.Time) (int, error) {
	query, args, err := r.sb.Select("COUNT(*)").
		From("vocab_progress").
		Where(squirrel.LtOrEq{"next_review": dbTime(at)}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build due count query: %w", err)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, storageErr("count due words", err)
	}
	return count, nil
}
