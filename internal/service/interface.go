package service

import (
	"context"

	"github.com/pong-stats-service/internal/domain"
)

// ScoreStore persists Elo score rows and rating history.
type ScoreStore interface {
	CreateScore(ctx context.Context, playerID, playerName string, eloScore int) (*domain.Score, error)
	ReplaceScore(ctx context.Context, playerID string, eloScore int, playerName string) (*domain.Score, error)
	GetScore(ctx context.Context, playerID string) (*domain.Score, error)
	ListScores(ctx context.Context) ([]domain.Score, error)
	ListRatingHistory(ctx context.Context, playerID string) ([]domain.RatingEvent, error)
}

// MatchStore persists the append-only match history ledger.
type MatchStore interface {
	RecordMatch(ctx context.Context, entry domain.MatchEntry) (*domain.RatingChange, error)
	RecordMatchesBulk(ctx context.Context, entries []domain.MatchEntry) (int, error)
	ListMatches(ctx context.Context) ([]domain.MatchEntry, error)
	ListMatchesByPlayer(ctx context.Context, playerID string) ([]domain.MatchEntry, error)
	ListMatchesByUsername(ctx context.Context, username string) ([]domain.MatchEntry, error)
	PlayerStats(ctx context.Context, playerID string) (*domain.PlayerStats, error)
}

// TournamentStore persists the append-only tournament bracket ledger.
type TournamentStore interface {
	RecordTournamentMatch(ctx context.Context, match domain.TournamentMatch) (*domain.TournamentMatch, error)
	RecordTournamentMatchesBulk(ctx context.Context, matches []domain.TournamentMatch) (int, error)
	ListTournamentMatches(ctx context.Context) ([]domain.TournamentMatch, error)
	ListTournamentMatchesByID(ctx context.Context, tournamentID string) ([]domain.TournamentMatch, error)
}

// RivalStore persists the directed rival graph.
type RivalStore interface {
	InsertRival(ctx context.Context, rival domain.Rival) (*domain.Rival, error)
	ListRivals(ctx context.Context, ownerID string) ([]domain.Rival, error)
	ListRivalsByUsername(ctx context.Context, ownerUsername string) ([]domain.Rival, error)
	DeleteRival(ctx context.Context, ownerID, rivalID string) error
	DeleteRivalByUsername(ctx context.Context, ownerID, rivalUsername string) error
}

// LeaderboardStore derives ranked views from the score rows.
type LeaderboardStore interface {
	ListRanked(ctx context.Context) ([]domain.RankedEntry, error)
	GetRanked(ctx context.Context, playerID string) (*domain.RankedEntry, error)
}

// Store is the full persistence surface, implemented by postgres.Repository.
type Store interface {
	ScoreStore
	MatchStore
	TournamentStore
	RivalStore
	LeaderboardStore
}

// Directory resolves identity gateway records for display enrichment and
// referential checks.
type Directory interface {
	ResolveUser(ctx context.Context, idOrUsername string) (*domain.User, error)
}

// RatingMirror is the realtime rating view feeding broadcasts.
type RatingMirror interface {
	SetRating(ctx context.Context, playerID string, elo int) error
	TopRatings(ctx context.Context, n int) ([]domain.RankedEntry, error)
	RatingCount(ctx context.Context) (int64, error)
}

// Broadcaster pushes realtime updates to connected clients.
type Broadcaster interface {
	BroadcastLeaderboardUpdate(entries []domain.RankedEntry, totalPlayers int64)
	BroadcastRatingUpdate(change domain.RatingChange)
}
