package service

import (
	"context"
	"errors"
	"time"

	"github.com/pong-stats-service/internal/domain"
)

// fakeStore is an in-memory Store for exercising the service layer without
// PostgreSQL.
type fakeStore struct {
	scores       map[string]*domain.Score
	history      []domain.RatingEvent
	matches      []domain.MatchEntry
	tournaments  []domain.TournamentMatch
	rivals       []domain.Rival
	ranked       []domain.RankedEntry
	stats        map[string]*domain.PlayerStats
	ratingChange *domain.RatingChange
	nextRivalID  int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		scores: make(map[string]*domain.Score),
		stats:  make(map[string]*domain.PlayerStats),
	}
}

func (f *fakeStore) CreateScore(_ context.Context, playerID, playerName string, eloScore int) (*domain.Score, error) {
	if _, ok := f.scores[playerID]; ok {
		return nil, domain.ErrScoreExists
	}
	score := &domain.Score{PlayerID: playerID, PlayerName: playerName, EloScore: eloScore, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	f.scores[playerID] = score
	return score, nil
}

func (f *fakeStore) ReplaceScore(_ context.Context, playerID string, eloScore int, playerName string) (*domain.Score, error) {
	score, ok := f.scores[playerID]
	if !ok {
		score = &domain.Score{PlayerID: playerID, CreatedAt: time.Now()}
		f.scores[playerID] = score
	}
	score.EloScore = eloScore
	if playerName != "" {
		score.PlayerName = playerName
	}
	score.UpdatedAt = time.Now()
	return score, nil
}

func (f *fakeStore) GetScore(_ context.Context, playerID string) (*domain.Score, error) {
	score, ok := f.scores[playerID]
	if !ok {
		return nil, domain.ErrPlayerNotFound
	}
	return score, nil
}

func (f *fakeStore) ListScores(context.Context) ([]domain.Score, error) {
	out := make([]domain.Score, 0, len(f.scores))
	for _, s := range f.scores {
		out = append(out, *s)
	}
	return out, nil
}

func (f *fakeStore) ListRatingHistory(_ context.Context, playerID string) ([]domain.RatingEvent, error) {
	out := []domain.RatingEvent{}
	for _, ev := range f.history {
		if ev.PlayerID == playerID {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (f *fakeStore) RecordMatch(_ context.Context, entry domain.MatchEntry) (*domain.RatingChange, error) {
	f.matches = append(f.matches, entry)
	if entry.IsGuestOpponent {
		return nil, nil
	}
	return f.ratingChange, nil
}

func (f *fakeStore) RecordMatchesBulk(_ context.Context, entries []domain.MatchEntry) (int, error) {
	f.matches = append(f.matches, entries...)
	return len(entries), nil
}

func (f *fakeStore) ListMatches(context.Context) ([]domain.MatchEntry, error) {
	return f.matches, nil
}

func (f *fakeStore) ListMatchesByPlayer(_ context.Context, playerID string) ([]domain.MatchEntry, error) {
	out := []domain.MatchEntry{}
	for _, m := range f.matches {
		if m.PlayerID == playerID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeStore) ListMatchesByUsername(_ context.Context, username string) ([]domain.MatchEntry, error) {
	out := []domain.MatchEntry{}
	for _, m := range f.matches {
		if m.PlayerUsername == username {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeStore) PlayerStats(_ context.Context, playerID string) (*domain.PlayerStats, error) {
	stats, ok := f.stats[playerID]
	if !ok {
		return &domain.PlayerStats{PlayerID: playerID}, nil
	}
	return stats, nil
}

func (f *fakeStore) RecordTournamentMatch(_ context.Context, match domain.TournamentMatch) (*domain.TournamentMatch, error) {
	match.ID = int64(len(f.tournaments) + 1)
	f.tournaments = append(f.tournaments, match)
	return &match, nil
}

func (f *fakeStore) RecordTournamentMatchesBulk(_ context.Context, matches []domain.TournamentMatch) (int, error) {
	f.tournaments = append(f.tournaments, matches...)
	return len(matches), nil
}

func (f *fakeStore) ListTournamentMatches(context.Context) ([]domain.TournamentMatch, error) {
	return f.tournaments, nil
}

func (f *fakeStore) ListTournamentMatchesByID(_ context.Context, tournamentID string) ([]domain.TournamentMatch, error) {
	out := []domain.TournamentMatch{}
	for _, m := range f.tournaments {
		if m.TournamentID == tournamentID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeStore) InsertRival(_ context.Context, rival domain.Rival) (*domain.Rival, error) {
	for _, r := range f.rivals {
		if r.OwnerID == rival.OwnerID && r.RivalID == rival.RivalID {
			return nil, domain.ErrRivalExists
		}
	}
	f.nextRivalID++
	rival.ID = f.nextRivalID
	rival.CreatedAt = time.Now()
	f.rivals = append(f.rivals, rival)
	return &rival, nil
}

func (f *fakeStore) ListRivals(_ context.Context, ownerID string) ([]domain.Rival, error) {
	out := []domain.Rival{}
	for _, r := range f.rivals {
		if r.OwnerID == ownerID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) ListRivalsByUsername(_ context.Context, ownerUsername string) ([]domain.Rival, error) {
	out := []domain.Rival{}
	for _, r := range f.rivals {
		if r.OwnerUsername == ownerUsername {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) DeleteRival(_ context.Context, ownerID, rivalID string) error {
	for i, r := range f.rivals {
		if r.OwnerID == ownerID && r.RivalID == rivalID {
			f.rivals = append(f.rivals[:i], f.rivals[i+1:]...)
			return nil
		}
	}
	return domain.ErrRivalNotFound
}

func (f *fakeStore) DeleteRivalByUsername(_ context.Context, ownerID, rivalUsername string) error {
	for i, r := range f.rivals {
		if r.OwnerID == ownerID && r.RivalUsername == rivalUsername {
			f.rivals = append(f.rivals[:i], f.rivals[i+1:]...)
			return nil
		}
	}
	return domain.ErrRivalNotFound
}

func (f *fakeStore) ListRanked(context.Context) ([]domain.RankedEntry, error) {
	return f.ranked, nil
}

func (f *fakeStore) GetRanked(_ context.Context, playerID string) (*domain.RankedEntry, error) {
	for _, e := range f.ranked {
		if e.PlayerID == playerID {
			entry := e
			return &entry, nil
		}
	}
	return nil, domain.ErrPlayerNotFound
}

// fakeDirectory serves canned identity records keyed by id and username.
type fakeDirectory struct {
	users map[string]*domain.User
	err   error
}

func newFakeDirectory(users ...*domain.User) *fakeDirectory {
	d := &fakeDirectory{users: make(map[string]*domain.User)}
	for _, u := range users {
		d.users[u.ID] = u
		d.users[u.Username] = u
	}
	return d
}

func (d *fakeDirectory) ResolveUser(_ context.Context, idOrUsername string) (*domain.User, error) {
	if d.err != nil {
		return nil, d.err
	}
	user, ok := d.users[idOrUsername]
	if !ok {
		return nil, domain.ErrPlayerNotFound
	}
	return user, nil
}

// fakeMirror records rating writes and serves a canned top slice.
type fakeMirror struct {
	ratings  map[string]int
	top      []domain.RankedEntry
	lastTopN int
	err      error
}

func newFakeMirror() *fakeMirror {
	return &fakeMirror{ratings: make(map[string]int)}
}

func (m *fakeMirror) SetRating(_ context.Context, playerID string, elo int) error {
	if m.err != nil {
		return m.err
	}
	m.ratings[playerID] = elo
	return nil
}

func (m *fakeMirror) TopRatings(_ context.Context, n int) ([]domain.RankedEntry, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.lastTopN = n
	return m.top, nil
}

func (m *fakeMirror) RatingCount(context.Context) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	return int64(len(m.ratings)), nil
}

// fakeHub counts broadcasts.
type fakeHub struct {
	leaderboardUpdates int
	ratingUpdates      []domain.RatingChange
}

func (h *fakeHub) BroadcastLeaderboardUpdate([]domain.RankedEntry, int64) {
	h.leaderboardUpdates++
}

func (h *fakeHub) BroadcastRatingUpdate(change domain.RatingChange) {
	h.ratingUpdates = append(h.ratingUpdates, change)
}

var errDirectoryDown = errors.New("identity gateway unreachable")
