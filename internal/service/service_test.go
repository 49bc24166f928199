package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pong-stats-service/internal/config"
	"github.com/pong-stats-service/internal/domain"
)

func intPtr(v int) *int {
	return &v
}

func newTestService(store *fakeStore, directory Directory, mirror RatingMirror) (*StatsService, *fakeHub) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.DefaultConfig()
	svc := NewStatsService(store, directory, mirror, &cfg.Leaderboard, logger)
	hub := &fakeHub{}
	svc.SetHub(hub)
	return svc, hub
}

func TestCreateScore(t *testing.T) {
	store := newFakeStore()
	mirror := newFakeMirror()
	svc, _ := newTestService(store, newFakeDirectory(), mirror)

	score, err := svc.CreateScore(context.Background(), domain.CreateScoreRequest{
		PlayerID:   "p-1",
		PlayerName: "alice",
		EloScore:   intPtr(1000),
	})
	require.NoError(t, err)
	assert.Equal(t, 1000, score.EloScore)
	assert.Equal(t, 1000, mirror.ratings["p-1"], "rating mirrored to the realtime view")

	_, err = svc.CreateScore(context.Background(), domain.CreateScoreRequest{
		PlayerID:   "p-1",
		PlayerName: "alice",
		EloScore:   intPtr(1200),
	})
	assert.ErrorIs(t, err, domain.ErrScoreExists, "second insert for the same player is a conflict")
}

func TestBroadcastUsesConfiguredLimit(t *testing.T) {
	store := newFakeStore()
	mirror := newFakeMirror()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.DefaultConfig()
	cfg.Leaderboard.DefaultLimit = 25
	svc := NewStatsService(store, newFakeDirectory(), mirror, &cfg.Leaderboard, logger)
	svc.SetHub(&fakeHub{})

	_, err := svc.CreateScore(context.Background(), domain.CreateScoreRequest{
		PlayerID:   "p-1",
		PlayerName: "alice",
		EloScore:   intPtr(1000),
	})
	require.NoError(t, err)
	assert.Equal(t, 25, mirror.lastTopN, "broadcast slice follows the configured default limit")
}

func TestCreateScore_Validation(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(store, newFakeDirectory(), newFakeMirror())

	_, err := svc.CreateScore(context.Background(), domain.CreateScoreRequest{PlayerName: "alice", EloScore: intPtr(1000)})
	assert.True(t, domain.IsValidationError(err))
	assert.Empty(t, store.scores)
}

func TestReplaceScore_KeepsNameWhenOmitted(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(store, newFakeDirectory(), newFakeMirror())

	_, err := svc.CreateScore(context.Background(), domain.CreateScoreRequest{
		PlayerID:   "p-1",
		PlayerName: "alice",
		EloScore:   intPtr(1000),
	})
	require.NoError(t, err)

	score, err := svc.ReplaceScore(context.Background(), "p-1", domain.ReplaceScoreRequest{EloScore: intPtr(1250)})
	require.NoError(t, err)
	assert.Equal(t, 1250, score.EloScore)
	assert.Equal(t, "alice", score.PlayerName)
}

func TestRecordMatch_GuestOpponent(t *testing.T) {
	store := newFakeStore()
	// Directory knows nobody; the guest flag must suppress the check.
	svc, hub := newTestService(store, newFakeDirectory(), newFakeMirror())

	sub := domain.MatchSubmission{
		OpponentID:      "guest-1",
		OpponentName:    "Guest",
		PlayerScore:     intPtr(11),
		OpponentScore:   intPtr(9),
		Duration:        "00:04:12",
		Result:          domain.ResultWin,
		IsGuestOpponent: true,
	}

	ack, err := svc.RecordMatch(context.Background(), domain.Principal{ID: "p-1", Username: "alice"}, sub)
	require.NoError(t, err)
	assert.Equal(t, "Match added to history successfully", ack.Message)
	assert.Len(t, store.matches, 1)
	assert.Empty(t, hub.ratingUpdates, "guest matches move no ratings")
}

func TestRecordMatch_UnknownOpponentRejected(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(store, newFakeDirectory(), newFakeMirror())

	sub := domain.MatchSubmission{
		OpponentID:    "nobody",
		OpponentName:  "Nobody",
		PlayerScore:   intPtr(11),
		OpponentScore: intPtr(9),
		Duration:      "00:04:12",
		Result:        domain.ResultWin,
	}

	_, err := svc.RecordMatch(context.Background(), domain.Principal{ID: "p-1", Username: "alice"}, sub)
	assert.True(t, domain.IsValidationError(err))
	assert.Empty(t, store.matches)
}

func TestRecordMatch_DirectoryOutageTolerated(t *testing.T) {
	store := newFakeStore()
	store.ratingChange = &domain.RatingChange{
		PlayerID: "p-1", OldRating: 1000, NewRating: 1015,
		OpponentID: "p-2", OpponentOld: 1000, OpponentNew: 985,
	}
	directory := newFakeDirectory()
	directory.err = errDirectoryDown
	svc, hub := newTestService(store, directory, newFakeMirror())

	sub := domain.MatchSubmission{
		OpponentID:    "p-2",
		OpponentName:  "bob",
		PlayerScore:   intPtr(11),
		OpponentScore: intPtr(9),
		Duration:      "00:04:12",
		Result:        domain.ResultWin,
	}

	_, err := svc.RecordMatch(context.Background(), domain.Principal{ID: "p-1", Username: "alice"}, sub)
	require.NoError(t, err, "gateway downtime must not block match recording")
	assert.Len(t, store.matches, 1)
	require.Len(t, hub.ratingUpdates, 1)
	assert.Equal(t, 1015, hub.ratingUpdates[0].NewRating)
}

func TestRecordMatchesBulk_AtomicValidation(t *testing.T) {
	store := newFakeStore()
	bob := &domain.User{ID: "p-2", Username: "bob"}
	svc, _ := newTestService(store, newFakeDirectory(bob), newFakeMirror())

	good := domain.MatchSubmission{
		OpponentID:    "p-2",
		OpponentName:  "bob",
		PlayerScore:   intPtr(11),
		OpponentScore: intPtr(9),
		Duration:      "00:04:12",
		Result:        domain.ResultWin,
	}
	bad := good
	bad.Duration = "busted"

	_, err := svc.RecordMatchesBulk(context.Background(), domain.Principal{ID: "p-1", Username: "alice"}, domain.BatchMatchSubmission{
		Matches: []domain.MatchSubmission{good, bad},
	})
	require.Error(t, err)
	assert.True(t, domain.IsValidationError(err))
	assert.Contains(t, err.Error(), "entry 1")
	assert.Empty(t, store.matches, "no rows written when any entry fails validation")

	result, err := svc.RecordMatchesBulk(context.Background(), domain.Principal{ID: "p-1", Username: "alice"}, domain.BatchMatchSubmission{
		Matches: []domain.MatchSubmission{good, good},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Inserted)
	assert.Len(t, store.matches, 2)
}

func TestRecordMatchesBulk_EmptyBatch(t *testing.T) {
	svc, _ := newTestService(newFakeStore(), newFakeDirectory(), newFakeMirror())

	_, err := svc.RecordMatchesBulk(context.Background(), domain.Principal{ID: "p-1"}, domain.BatchMatchSubmission{})
	assert.True(t, domain.IsValidationError(err))
}

func TestAddRival_ResolvesRegisteredUser(t *testing.T) {
	store := newFakeStore()
	bob := &domain.User{ID: "p-2", Username: "bob"}
	svc, _ := newTestService(store, newFakeDirectory(bob), newFakeMirror())

	rival, err := svc.AddRival(context.Background(), domain.Principal{ID: "p-1", Username: "alice"}, domain.AddRivalRequest{
		RivalUsername: "bob",
	})
	require.NoError(t, err)
	assert.Equal(t, "p-2", rival.RivalID)
	assert.Equal(t, "bob", rival.RivalUsername)
	assert.True(t, rival.Registered)

	// Same edge again is a conflict
	_, err = svc.AddRival(context.Background(), domain.Principal{ID: "p-1", Username: "alice"}, domain.AddRivalRequest{
		RivalUsername: "bob",
	})
	assert.ErrorIs(t, err, domain.ErrRivalExists)
}

func TestAddRival_OpaqueIdentity(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(store, newFakeDirectory(), newFakeMirror())

	rival, err := svc.AddRival(context.Background(), domain.Principal{ID: "p-1", Username: "alice"}, domain.AddRivalRequest{
		RivalID: "guest-7",
	})
	require.NoError(t, err)
	assert.Equal(t, "guest-7", rival.RivalID)
	assert.False(t, rival.Registered)
}

func TestAddRival_UnknownUsernameRejected(t *testing.T) {
	svc, _ := newTestService(newFakeStore(), newFakeDirectory(), newFakeMirror())

	_, err := svc.AddRival(context.Background(), domain.Principal{ID: "p-1", Username: "alice"}, domain.AddRivalRequest{
		RivalUsername: "ghost",
	})
	assert.ErrorIs(t, err, domain.ErrPlayerNotFound)
}

func TestAddRival_SelfRejected(t *testing.T) {
	bob := &domain.User{ID: "p-1", Username: "alice"}
	svc, _ := newTestService(newFakeStore(), newFakeDirectory(bob), newFakeMirror())

	_, err := svc.AddRival(context.Background(), domain.Principal{ID: "p-1", Username: "alice"}, domain.AddRivalRequest{
		RivalUsername: "alice",
	})
	assert.ErrorIs(t, err, domain.ErrSelfRival)
}

func TestListRivals_AvatarEnrichment(t *testing.T) {
	store := newFakeStore()
	avatar := "https://cdn.example.com/bob.png"
	bob := &domain.User{ID: "p-2", Username: "bob", AvatarURL: &avatar}
	svc, _ := newTestService(store, newFakeDirectory(bob), newFakeMirror())

	caller := domain.Principal{ID: "p-1", Username: "alice"}
	_, err := svc.AddRival(context.Background(), caller, domain.AddRivalRequest{RivalUsername: "bob"})
	require.NoError(t, err)
	_, err = svc.AddRival(context.Background(), caller, domain.AddRivalRequest{RivalID: "guest-7"})
	require.NoError(t, err)

	rivals, err := svc.ListRivals(context.Background(), "p-1")
	require.NoError(t, err)
	require.Len(t, rivals, 2)

	byID := make(map[string]domain.EnrichedRival)
	for _, r := range rivals {
		byID[r.RivalID] = r
	}
	require.NotNil(t, byID["p-2"].AvatarURL)
	assert.Equal(t, avatar, *byID["p-2"].AvatarURL)
	assert.Nil(t, byID["guest-7"].AvatarURL, "opaque rivals carry a null avatar")
}

func TestRemoveRival(t *testing.T) {
	store := newFakeStore()
	bob := &domain.User{ID: "p-2", Username: "bob"}
	svc, _ := newTestService(store, newFakeDirectory(bob), newFakeMirror())

	caller := domain.Principal{ID: "p-1", Username: "alice"}
	_, err := svc.AddRival(context.Background(), caller, domain.AddRivalRequest{RivalUsername: "bob"})
	require.NoError(t, err)

	require.NoError(t, svc.RemoveRival(context.Background(), caller, "p-2"))
	assert.ErrorIs(t, svc.RemoveRival(context.Background(), caller, "p-2"), domain.ErrRivalNotFound)
}

func TestGetRanked_UsernameFallback(t *testing.T) {
	store := newFakeStore()
	store.ranked = []domain.RankedEntry{
		{Rank: 1, PlayerID: "p-2", PlayerName: "bob", EloScore: 1200},
		{Rank: 2, PlayerID: "p-1", PlayerName: "alice", EloScore: 1100},
	}
	bob := &domain.User{ID: "p-2", Username: "bob"}
	svc, _ := newTestService(store, newFakeDirectory(bob), newFakeMirror())

	entry, err := svc.GetRanked(context.Background(), "p-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), entry.Rank)

	entry, err = svc.GetRanked(context.Background(), "bob")
	require.NoError(t, err)
	assert.Equal(t, int64(1), entry.Rank)

	_, err = svc.GetRanked(context.Background(), "nobody")
	assert.ErrorIs(t, err, domain.ErrPlayerNotFound)
}

func TestRecordTournamentMatchesBulk_AtomicValidation(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(store, newFakeDirectory(), newFakeMirror())

	good := domain.TournamentMatchSubmission{
		TournamentID: "t-1",
		StageNumber:  intPtr(1),
		MatchNumber:  intPtr(1),
		PlayerName:   "alice",
		OpponentName: "bob",
		Result:       domain.ResultWin,
	}
	bad := good
	bad.TournamentID = ""

	_, err := svc.RecordTournamentMatchesBulk(context.Background(), domain.BatchTournamentSubmission{
		Matches: []domain.TournamentMatchSubmission{good, bad},
	})
	require.Error(t, err)
	assert.Empty(t, store.tournaments)

	result, err := svc.RecordTournamentMatchesBulk(context.Background(), domain.BatchTournamentSubmission{
		Matches: []domain.TournamentMatchSubmission{good, good},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Inserted)
}
