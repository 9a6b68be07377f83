package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/swiss-tournament/models"
)

var (
	ErrMatchPlayerInvalid = errors.New("match references an unknown player")
	ErrMatchSamePlayer    = errors.New("match winner and loser must differ")
)

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	List(ctx context.Context, exec SQLExecutor) ([]models.Match, error)
	Count(ctx context.Context, exec SQLExecutor) (int, error)
	DeleteAll(ctx context.Context) (int64, error)
}

type sqlMatchRepository struct {
	db *sql.DB
}

func NewMatchRepository(db *sql.DB) MatchRepository {
	return &sqlMatchRepository{db: db}
}

// Create records one outcome. Values always go through bound parameters.
func (r *sqlMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	executor := getExecutor(r.db, exec)
	query := `INSERT INTO matches (winner, loser, created_at) VALUES ($1, $2, $3) RETURNING id`

	if match.CreatedAt.IsZero() {
		match.CreatedAt = time.Now().UTC()
	}
	err := executor.QueryRowContext(ctx, query, match.WinnerID, match.LoserID, match.CreatedAt).Scan(&match.ID)
	return r.handleMatchError(err)
}

// List returns every recorded match in insertion order.
func (r *sqlMatchRepository) List(ctx context.Context, exec SQLExecutor) ([]models.Match, error) {
	executor := getExecutor(r.db, exec)
	query := `SELECT id, winner, loser, created_at FROM matches ORDER BY id ASC`

	rows, err := executor.QueryContext(ctx, query)
	if err != nil {
		return nil, WrapStorageError(fmt.Errorf("failed to query matches: %w", err))
	}
	defer rows.Close()

	matches := make([]models.Match, 0)
	for rows.Next() {
		var match models.Match
		if scanErr := rows.Scan(&match.ID, &match.WinnerID, &match.LoserID, &match.CreatedAt); scanErr != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", scanErr)
		}
		matches = append(matches, match)
	}

	if err = rows.Err(); err != nil {
		return nil, WrapStorageError(fmt.Errorf("error during match rows iteration: %w", err))
	}
	return matches, nil
}

func (r *sqlMatchRepository) Count(ctx context.Context, exec SQLExecutor) (int, error) {
	executor := getExecutor(r.db, exec)
	var count int
	if err := executor.QueryRowContext(ctx, `SELECT COUNT(*) FROM matches`).Scan(&count); err != nil {
		return 0, WrapStorageError(fmt.Errorf("failed to count matches: %w", err))
	}
	return count, nil
}

func (r *sqlMatchRepository) DeleteAll(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM matches`)
	if err != nil {
		return 0, WrapStorageError(fmt.Errorf("failed to delete matches: %w", err))
	}
	return result.RowsAffected()
}

func (r *sqlMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	switch classifyConstraint(err) {
	case constraintForeignKey:
		return ErrMatchPlayerInvalid
	case constraintCheck:
		return ErrMatchSamePlayer
	}
	return WrapStorageError(fmt.Errorf("failed to insert match: %w", err))
}
