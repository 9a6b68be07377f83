package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/Dosada05/swiss-tournament/brackets"
	"github.com/Dosada05/swiss-tournament/models"
	"github.com/Dosada05/swiss-tournament/repositories"
	"github.com/google/uuid"
)

const maxPlayerNameLength = 200

// publishTimeout bounds one background publish, archive upload included.
const publishTimeout = 30 * time.Second

const (
	ReasonPlayerRegistered = "player_registered"
	ReasonMatchReported    = "match_reported"
	ReasonMatchesDeleted   = "matches_deleted"
	ReasonPlayersDeleted   = "players_deleted"
)

type RegisterPlayerInput struct {
	Name string `json:"name"`
}

type ReportMatchInput struct {
	WinnerID int `json:"winner_id"`
	LoserID  int `json:"loser_id"`
}

type TournamentService interface {
	RegisterPlayer(ctx context.Context, input RegisterPlayerInput) (*models.Player, error)
	ListPlayers(ctx context.Context) ([]models.Player, error)
	CountPlayers(ctx context.Context) (int, error)
	DeletePlayers(ctx context.Context) (int64, error)

	ReportMatch(ctx context.Context, input ReportMatchInput) (*models.Match, error)
	ListMatches(ctx context.Context) ([]models.Match, error)
	DeleteMatches(ctx context.Context) (int64, error)

	PlayerStandings(ctx context.Context) ([]models.Standing, error)
	SwissPairings(ctx context.Context) ([]models.Pairing, error)
	Snapshot(ctx context.Context, reason string) (*models.RoundSnapshot, error)

	// Flush waits for snapshots triggered by earlier writes to be published.
	Flush(ctx context.Context) error
}

type tournamentService struct {
	db         *sql.DB
	playerRepo repositories.PlayerRepository
	matchRepo  repositories.MatchRepository
	generator  brackets.PairingGenerator
	publisher  Publisher
	logger     *slog.Logger

	publishMu sync.Mutex
	pending   sync.WaitGroup
}

// NewTournamentService wires the storage collaborator to the standings and
// pairing core. publisher may be nil when nobody listens for updates.
func NewTournamentService(
	db *sql.DB,
	playerRepo repositories.PlayerRepository,
	matchRepo repositories.MatchRepository,
	generator brackets.PairingGenerator,
	publisher Publisher,
	logger *slog.Logger,
) TournamentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &tournamentService{
		db:         db,
		playerRepo: playerRepo,
		matchRepo:  matchRepo,
		generator:  generator,
		publisher:  publisher,
		logger:     logger,
	}
}

func (s *tournamentService) RegisterPlayer(ctx context.Context, input RegisterPlayerInput) (*models.Player, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrPlayerNameRequired
	}
	if utf8.RuneCountInString(name) > maxPlayerNameLength {
		return nil, fmt.Errorf("%w: %d characters max", ErrPlayerNameTooLong, maxPlayerNameLength)
	}

	player := &models.Player{Name: name}
	if err := s.playerRepo.Create(ctx, nil, player); err != nil {
		return nil, fmt.Errorf("failed to register player: %w", err)
	}

	s.logger.InfoContext(ctx, "player registered", slog.Int("player_id", player.ID), slog.String("name", player.Name))
	s.publish(ctx, ReasonPlayerRegistered)
	return player, nil
}

func (s *tournamentService) ListPlayers(ctx context.Context) ([]models.Player, error) {
	players, err := s.playerRepo.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	return players, nil
}

func (s *tournamentService) CountPlayers(ctx context.Context) (int, error) {
	count, err := s.playerRepo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count players: %w", err)
	}
	return count, nil
}

func (s *tournamentService) DeletePlayers(ctx context.Context) (int64, error) {
	deleted, err := s.playerRepo.DeleteAll(ctx)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayersInUse) {
			return 0, ErrPlayersHaveMatches
		}
		return 0, fmt.Errorf("failed to delete players: %w", err)
	}

	s.logger.InfoContext(ctx, "players deleted", slog.Int64("count", deleted))
	s.publish(ctx, ReasonPlayersDeleted)
	return deleted, nil
}

func (s *tournamentService) ReportMatch(ctx context.Context, input ReportMatchInput) (*models.Match, error) {
	if input.WinnerID <= 0 || input.LoserID <= 0 {
		return nil, fmt.Errorf("%w: winner_id=%d loser_id=%d", ErrInvalidPlayerID, input.WinnerID, input.LoserID)
	}
	if input.WinnerID == input.LoserID {
		return nil, ErrSelfMatch
	}

	match := &models.Match{WinnerID: input.WinnerID, LoserID: input.LoserID}
	if err := s.matchRepo.Create(ctx, nil, match); err != nil {
		switch {
		case errors.Is(err, repositories.ErrMatchPlayerInvalid):
			return nil, fmt.Errorf("%w: winner_id=%d loser_id=%d", ErrPlayerNotFound, input.WinnerID, input.LoserID)
		case errors.Is(err, repositories.ErrMatchSamePlayer):
			return nil, ErrSelfMatch
		default:
			return nil, fmt.Errorf("failed to report match: %w", err)
		}
	}

	s.logger.InfoContext(ctx, "match reported",
		slog.Int("match_id", match.ID), slog.Int("winner_id", match.WinnerID), slog.Int("loser_id", match.LoserID))
	s.publish(ctx, ReasonMatchReported)
	return match, nil
}

func (s *tournamentService) ListMatches(ctx context.Context) ([]models.Match, error) {
	matches, err := s.matchRepo.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	return matches, nil
}

func (s *tournamentService) DeleteMatches(ctx context.Context) (int64, error) {
	deleted, err := s.matchRepo.DeleteAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to delete matches: %w", err)
	}

	s.logger.InfoContext(ctx, "matches deleted", slog.Int64("count", deleted))
	s.publish(ctx, ReasonMatchesDeleted)
	return deleted, nil
}

func (s *tournamentService) PlayerStandings(ctx context.Context) ([]models.Standing, error) {
	players, matches, err := s.loadSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	return s.standings(ctx, players, matches), nil
}

func (s *tournamentService) SwissPairings(ctx context.Context) ([]models.Pairing, error) {
	standings, err := s.PlayerStandings(ctx)
	if err != nil {
		return nil, err
	}

	pairings, err := s.generator.GeneratePairings(brackets.GeneratePairingsParams{Standings: standings})
	if err != nil {
		return nil, fmt.Errorf("%s pairing failed: %w", s.generator.GetName(), err)
	}
	return pairings, nil
}

// Snapshot computes standings and pairings from one consistent read. An odd
// player count is reported in PairingError instead of failing the snapshot.
func (s *tournamentService) Snapshot(ctx context.Context, reason string) (*models.RoundSnapshot, error) {
	players, matches, err := s.loadSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	standings := s.standings(ctx, players, matches)
	snapshot := &models.RoundSnapshot{
		ID:          uuid.NewString(),
		Reason:      reason,
		Standings:   standings,
		Pairings:    []models.Pairing{},
		MatchCount:  len(matches),
		GeneratedAt: time.Now().UTC(),
	}

	pairings, err := s.generator.GeneratePairings(brackets.GeneratePairingsParams{Standings: standings})
	switch {
	case errors.Is(err, brackets.ErrOddCompetitorCount):
		snapshot.PairingError = err.Error()
	case err != nil:
		return nil, fmt.Errorf("%s pairing failed: %w", s.generator.GetName(), err)
	default:
		snapshot.Pairings = pairings
	}
	return snapshot, nil
}

func (s *tournamentService) standings(ctx context.Context, players []models.Player, matches []models.Match) []models.Standing {
	if len(players) == 0 {
		s.logger.WarnContext(ctx, "standings requested with no registered players")
	}
	return brackets.CalculateStandings(players, matches)
}

// loadSnapshot reads players and matches inside one read-only transaction so
// that a match reported mid-read cannot skew the counts.
func (s *tournamentService) loadSnapshot(ctx context.Context) ([]models.Player, []models.Match, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin snapshot transaction: %w", repositories.WrapStorageError(err))
	}
	// Nothing is written, so rollback is the normal way out.
	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			s.logger.WarnContext(ctx, "snapshot rollback failed", slog.Any("error", rbErr))
		}
	}()

	players, err := s.playerRepo.List(ctx, tx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load players: %w", err)
	}
	matches, err := s.matchRepo.List(ctx, tx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load matches: %w", err)
	}
	return players, matches, nil
}

// publish pushes a fresh snapshot to the publisher without holding up the
// write that triggered it. That write has already succeeded, so failures are
// only logged. Publishes run one at a time and each reads the current state,
// so the last snapshot out reflects every committed write.
func (s *tournamentService) publish(ctx context.Context, reason string) {
	if s.publisher == nil {
		return
	}
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		s.publishMu.Lock()
		defer s.publishMu.Unlock()

		// The request may end before the upload does.
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
		defer cancel()

		snapshot, err := s.Snapshot(ctx, reason)
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to build snapshot for publishing", slog.String("reason", reason), slog.Any("error", err))
			return
		}
		if err := s.publisher.Publish(ctx, snapshot); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish snapshot",
				slog.String("snapshot_id", snapshot.ID), slog.String("reason", reason), slog.Any("error", err))
		}
	}()
}

func (s *tournamentService) Flush(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("snapshots still publishing: %w", ctx.Err())
	}
}
