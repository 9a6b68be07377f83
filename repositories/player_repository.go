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
	ErrPlayerNotFound = errors.New("player not found")
	ErrPlayersInUse   = errors.New("players cannot be deleted while matches reference them")
)

type PlayerRepository interface {
	Create(ctx context.Context, exec SQLExecutor, player *models.Player) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Player, error)
	List(ctx context.Context, exec SQLExecutor) ([]models.Player, error)
	Count(ctx context.Context) (int, error)
	DeleteAll(ctx context.Context) (int64, error)
}

type sqlPlayerRepository struct {
	db *sql.DB
}

// NewPlayerRepository works with both the postgres and sqlite3 drivers: every
// query sticks to $N placeholders and RETURNING, which both understand.
func NewPlayerRepository(db *sql.DB) PlayerRepository {
	return &sqlPlayerRepository{db: db}
}

func (r *sqlPlayerRepository) Create(ctx context.Context, exec SQLExecutor, player *models.Player) error {
	executor := getExecutor(r.db, exec)
	query := `INSERT INTO players (name, created_at) VALUES ($1, $2) RETURNING id`

	if player.CreatedAt.IsZero() {
		player.CreatedAt = time.Now().UTC()
	}
	err := executor.QueryRowContext(ctx, query, player.Name, player.CreatedAt).Scan(&player.ID)
	if err != nil {
		return WrapStorageError(fmt.Errorf("failed to insert player %q: %w", player.Name, err))
	}
	return nil
}

func (r *sqlPlayerRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Player, error) {
	executor := getExecutor(r.db, exec)
	query := `SELECT id, name, created_at FROM players WHERE id = $1`

	var player models.Player
	err := executor.QueryRowContext(ctx, query, id).Scan(&player.ID, &player.Name, &player.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, WrapStorageError(fmt.Errorf("failed to scan player by id %d: %w", id, err))
	}
	return &player, nil
}

// List returns every registered player ordered by id.
func (r *sqlPlayerRepository) List(ctx context.Context, exec SQLExecutor) ([]models.Player, error) {
	executor := getExecutor(r.db, exec)
	query := `SELECT id, name, created_at FROM players ORDER BY id ASC`

	rows, err := executor.QueryContext(ctx, query)
	if err != nil {
		return nil, WrapStorageError(fmt.Errorf("failed to query players: %w", err))
	}
	defer rows.Close()

	players := make([]models.Player, 0)
	for rows.Next() {
		var player models.Player
		if scanErr := rows.Scan(&player.ID, &player.Name, &player.CreatedAt); scanErr != nil {
			return nil, fmt.Errorf("failed to scan player row: %w", scanErr)
		}
		players = append(players, player)
	}

	if err = rows.Err(); err != nil {
		return nil, WrapStorageError(fmt.Errorf("error during player rows iteration: %w", err))
	}
	return players, nil
}

func (r *sqlPlayerRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM players`).Scan(&count)
	if err != nil {
		return 0, WrapStorageError(fmt.Errorf("failed to count players: %w", err))
	}
	return count, nil
}

func (r *sqlPlayerRepository) DeleteAll(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM players`)
	if err != nil {
		if classifyConstraint(err) == constraintForeignKey {
			return 0, ErrPlayersInUse
		}
		return 0, WrapStorageError(fmt.Errorf("failed to delete players: %w", err))
	}
	return result.RowsAffected()
}
