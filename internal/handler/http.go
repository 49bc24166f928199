package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pong-stats-service/internal/domain"
	"github.com/pong-stats-service/internal/websocket"
)

// StatsAPI is the service surface the HTTP layer depends on, implemented by
// service.StatsService.
type StatsAPI interface {
	CreateScore(ctx context.Context, req domain.CreateScoreRequest) (*domain.Score, error)
	ReplaceScore(ctx context.Context, playerID string, req domain.ReplaceScoreRequest) (*domain.Score, error)
	GetScore(ctx context.Context, playerID string) (*domain.Score, error)
	ListScores(ctx context.Context) ([]domain.Score, error)
	RatingHistory(ctx context.Context, playerID string) ([]domain.RatingEvent, error)

	RecordMatch(ctx context.Context, caller domain.Principal, sub domain.MatchSubmission) (*domain.MatchAck, error)
	RecordMatchesBulk(ctx context.Context, caller domain.Principal, batch domain.BatchMatchSubmission) (*domain.BulkInsertResult, error)
	ListMatches(ctx context.Context) ([]domain.MatchEntry, error)
	ListMatchesByPlayer(ctx context.Context, playerID string) ([]domain.MatchEntry, error)
	ListMatchesByUsername(ctx context.Context, username string) ([]domain.MatchEntry, error)
	PlayerStats(ctx context.Context, playerID string) (*domain.PlayerStats, error)

	RecordTournamentMatch(ctx context.Context, sub domain.TournamentMatchSubmission) (*domain.TournamentMatch, error)
	RecordTournamentMatchesBulk(ctx context.Context, batch domain.BatchTournamentSubmission) (*domain.BulkInsertResult, error)
	ListTournamentMatches(ctx context.Context) ([]domain.TournamentMatch, error)
	ListTournamentMatchesByID(ctx context.Context, tournamentID string) ([]domain.TournamentMatch, error)

	AddRival(ctx context.Context, caller domain.Principal, req domain.AddRivalRequest) (*domain.Rival, error)
	ListRivals(ctx context.Context, ownerID string) ([]domain.EnrichedRival, error)
	ListRivalsByUsername(ctx context.Context, ownerUsername string) ([]domain.EnrichedRival, error)
	RemoveRival(ctx context.Context, caller domain.Principal, rivalID string) error
	RemoveRivalByUsername(ctx context.Context, caller domain.Principal, rivalUsername string) error

	ListRanked(ctx context.Context) ([]domain.RankedEntry, error)
	GetRanked(ctx context.Context, idOrUsername string) (*domain.RankedEntry, error)
}

// Handler provides HTTP handlers for the stats API
type Handler struct {
	service  StatsAPI
	verifier TokenVerifier
	hub      *websocket.Hub
	logger   *slog.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(service StatsAPI, verifier TokenVerifier, hub *websocket.Hub, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		verifier: verifier,
		hub:      hub,
		logger:   logger,
	}
}

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Router creates and configures the HTTP router
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(corsMiddleware)

	// Health check
	r.Get("/health", h.HealthCheck)
	r.Get("/ready", h.ReadyCheck)

	// WebSocket endpoint
	r.Get("/ws", h.HandleWebSocket)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Score operations
		r.Route("/scores", func(r chi.Router) {
			r.Get("/", h.ListScores)
			r.Get("/{playerID}", h.GetScore)
			r.Get("/{playerID}/history", h.GetRatingHistory)

			r.Group(func(r chi.Router) {
				r.Use(h.requireAuth)
				r.Post("/", h.CreateScore)
				r.Put("/{playerID}", h.ReplaceScore)
			})
		})

		// Match history ledger
		r.Route("/matches", func(r chi.Router) {
			r.Get("/", h.ListMatches)
			r.Get("/player/{playerID}", h.ListMatchesByPlayer)
			r.Get("/username/{username}", h.ListMatchesByUsername)

			r.Group(func(r chi.Router) {
				r.Use(h.requireAuth)
				r.Post("/", h.RecordMatch)
				r.Post("/bulk", h.RecordMatchesBulk)
			})
		})

		// Tournament history ledger
		r.Route("/tournaments", func(r chi.Router) {
			r.Get("/matches", h.ListTournamentMatches)
			r.Get("/{tournamentID}/matches", h.ListTournamentMatchesByID)

			r.Group(func(r chi.Router) {
				r.Use(h.requireAuth)
				r.Post("/matches", h.RecordTournamentMatch)
				r.Post("/matches/bulk", h.RecordTournamentMatchesBulk)
			})
		})

		// Rival graph
		r.Route("/rivals", func(r chi.Router) {
			r.Get("/{ownerID}", h.ListRivals)
			r.Get("/username/{username}", h.ListRivalsByUsername)

			r.Group(func(r chi.Router) {
				r.Use(h.requireAuth)
				r.Post("/", h.AddRival)
				r.Delete("/{rivalID}", h.RemoveRival)
				r.Delete("/username/{username}", h.RemoveRivalByUsername)
			})
		})

		// Derived leaderboard
		r.Get("/leaderboard", h.GetLeaderboard)
		r.Get("/leaderboard/{playerID}", h.GetLeaderboardEntry)

		// Per-player ledger aggregates
		r.Get("/players/{playerID}/stats", h.GetPlayerStats)

		// WebSocket info endpoint
		r.Get("/ws/stats", h.GetWebSocketStats)
	})

	return r
}

// corsMiddleware adds CORS headers
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type, X-Request-ID")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeSuccess writes a successful JSON response
func (h *Handler) writeSuccess(w http.ResponseWriter, data interface{}) {
	h.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
	})
}

// writeError writes an error JSON response
func (h *Handler) writeError(w http.ResponseWriter, status int, err error) {
	h.writeJSON(w, status, APIResponse{
		Success: false,
		Error:   err.Error(),
	})
}

// writeServiceError maps domain errors onto HTTP statuses.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error, msg string) {
	switch {
	case domain.IsValidationError(err):
		h.writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, domain.ErrUnauthorized):
		h.writeError(w, http.StatusUnauthorized, err)
	case errors.Is(err, domain.ErrForbidden):
		h.writeError(w, http.StatusForbidden, err)
	case domain.IsNotFoundError(err):
		h.writeError(w, http.StatusNotFound, err)
	case domain.IsConflictError(err):
		h.writeError(w, http.StatusConflict, err)
	default:
		h.logger.Error(msg, "error", err)
		h.writeError(w, http.StatusInternalServerError, domain.ErrInternalError)
	}
}

// HandleWebSocket handles WebSocket upgrade requests
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.ServeWs(h.hub, h.logger, w, r)
}

// GetWebSocketStats returns WebSocket connection statistics
func (h *Handler) GetWebSocketStats(w http.ResponseWriter, r *http.Request) {
	h.writeSuccess(w, map[string]interface{}{
		"total_connections": h.hub.GetTotalConnections(),
	})
}

// HealthCheck returns service health status
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	h.writeSuccess(w, map[string]string{"status": "healthy"})
}

// ReadyCheck returns service readiness status
func (h *Handler) ReadyCheck(w http.ResponseWriter, r *http.Request) {
	h.writeSuccess(w, map[string]string{"status": "ready"})
}

// CreateScore inserts a player's initial score row
func (h *Handler) CreateScore(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	score, err := h.service.CreateScore(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, err, "failed to create score")
		return
	}

	h.writeSuccess(w, score)
}

// ReplaceScore creates or overwrites the caller's score row
func (h *Handler) ReplaceScore(w http.ResponseWriter, r *http.Request) {
	playerID := chi.URLParam(r, "playerID")
	caller, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, domain.ErrUnauthorized)
		return
	}
	if caller.ID != playerID {
		h.writeError(w, http.StatusForbidden, domain.ErrForbidden)
		return
	}

	var req domain.ReplaceScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	score, err := h.service.ReplaceScore(r.Context(), playerID, req)
	if err != nil {
		h.writeServiceError(w, err, "failed to replace score")
		return
	}

	h.writeSuccess(w, score)
}

// GetScore returns one player's score row
func (h *Handler) GetScore(w http.ResponseWriter, r *http.Request) {
	playerID := chi.URLParam(r, "playerID")

	score, err := h.service.GetScore(r.Context(), playerID)
	if err != nil {
		h.writeServiceError(w, err, "failed to get score")
		return
	}

	h.writeSuccess(w, score)
}

// ListScores returns all score rows
func (h *Handler) ListScores(w http.ResponseWriter, r *http.Request) {
	scores, err := h.service.ListScores(r.Context())
	if err != nil {
		h.writeServiceError(w, err, "failed to list scores")
		return
	}

	h.writeSuccess(w, scores)
}

// GetRatingHistory returns a player's Elo adjustments, newest first
func (h *Handler) GetRatingHistory(w http.ResponseWriter, r *http.Request) {
	playerID := chi.URLParam(r, "playerID")

	events, err := h.service.RatingHistory(r.Context(), playerID)
	if err != nil {
		h.writeServiceError(w, err, "failed to get rating history")
		return
	}

	h.writeSuccess(w, events)
}

// RecordMatch appends one match to the caller's ledger
func (h *Handler) RecordMatch(w http.ResponseWriter, r *http.Request) {
	caller, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, domain.ErrUnauthorized)
		return
	}

	var sub domain.MatchSubmission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	ack, err := h.service.RecordMatch(r.Context(), caller, sub)
	if err != nil {
		h.writeServiceError(w, err, "failed to record match")
		return
	}

	h.writeSuccess(w, ack)
}

// RecordMatchesBulk appends a batch of matches atomically
func (h *Handler) RecordMatchesBulk(w http.ResponseWriter, r *http.Request) {
	caller, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, domain.ErrUnauthorized)
		return
	}

	var batch domain.BatchMatchSubmission
	if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	result, err := h.service.RecordMatchesBulk(r.Context(), caller, batch)
	if err != nil {
		h.writeServiceError(w, err, "failed to record match batch")
		return
	}

	h.writeSuccess(w, result)
}

// ListMatches returns the full match ledger
func (h *Handler) ListMatches(w http.ResponseWriter, r *http.Request) {
	matches, err := h.service.ListMatches(r.Context())
	if err != nil {
		h.writeServiceError(w, err, "failed to list matches")
		return
	}

	h.writeSuccess(w, matches)
}

// ListMatchesByPlayer returns one player's match rows
func (h *Handler) ListMatchesByPlayer(w http.ResponseWriter, r *http.Request) {
	playerID := chi.URLParam(r, "playerID")

	matches, err := h.service.ListMatchesByPlayer(r.Context(), playerID)
	if err != nil {
		h.writeServiceError(w, err, "failed to list matches by player")
		return
	}

	h.writeSuccess(w, matches)
}

// ListMatchesByUsername returns match rows recorded under a username
func (h *Handler) ListMatchesByUsername(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	matches, err := h.service.ListMatchesByUsername(r.Context(), username)
	if err != nil {
		h.writeServiceError(w, err, "failed to list matches by username")
		return
	}

	h.writeSuccess(w, matches)
}

// GetPlayerStats returns a player's aggregated ledger
func (h *Handler) GetPlayerStats(w http.ResponseWriter, r *http.Request) {
	playerID := chi.URLParam(r, "playerID")

	stats, err := h.service.PlayerStats(r.Context(), playerID)
	if err != nil {
		h.writeServiceError(w, err, "failed to get player stats")
		return
	}

	h.writeSuccess(w, stats)
}

// RecordTournamentMatch appends one bracket row
func (h *Handler) RecordTournamentMatch(w http.ResponseWriter, r *http.Request) {
	var sub domain.TournamentMatchSubmission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	match, err := h.service.RecordTournamentMatch(r.Context(), sub)
	if err != nil {
		h.writeServiceError(w, err, "failed to record tournament match")
		return
	}

	h.writeSuccess(w, match)
}

// RecordTournamentMatchesBulk appends a batch of bracket rows atomically
func (h *Handler) RecordTournamentMatchesBulk(w http.ResponseWriter, r *http.Request) {
	var batch domain.BatchTournamentSubmission
	if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	result, err := h.service.RecordTournamentMatchesBulk(r.Context(), batch)
	if err != nil {
		h.writeServiceError(w, err, "failed to record tournament batch")
		return
	}

	h.writeSuccess(w, result)
}

// ListTournamentMatches returns the full tournament ledger
func (h *Handler) ListTournamentMatches(w http.ResponseWriter, r *http.Request) {
	matches, err := h.service.ListTournamentMatches(r.Context())
	if err != nil {
		h.writeServiceError(w, err, "failed to list tournament matches")
		return
	}

	h.writeSuccess(w, matches)
}

// ListTournamentMatchesByID returns one tournament's bracket rows
func (h *Handler) ListTournamentMatchesByID(w http.ResponseWriter, r *http.Request) {
	tournamentID := chi.URLParam(r, "tournamentID")

	matches, err := h.service.ListTournamentMatchesByID(r.Context(), tournamentID)
	if err != nil {
		h.writeServiceError(w, err, "failed to list tournament matches by id")
		return
	}

	h.writeSuccess(w, matches)
}

// AddRival creates a rival edge for the caller
func (h *Handler) AddRival(w http.ResponseWriter, r *http.Request) {
	caller, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, domain.ErrUnauthorized)
		return
	}

	var req domain.AddRivalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	rival, err := h.service.AddRival(r.Context(), caller, req)
	if err != nil {
		h.writeServiceError(w, err, "failed to add rival")
		return
	}

	h.writeSuccess(w, map[string]interface{}{
		"message": "Rival added successfully",
		"rival":   rival,
	})
}

// ListRivals returns an owner's enriched rival list
func (h *Handler) ListRivals(w http.ResponseWriter, r *http.Request) {
	ownerID := chi.URLParam(r, "ownerID")

	rivals, err := h.service.ListRivals(r.Context(), ownerID)
	if err != nil {
		h.writeServiceError(w, err, "failed to list rivals")
		return
	}

	h.writeSuccess(w, rivals)
}

// ListRivalsByUsername returns an owner's rival list addressed by username
func (h *Handler) ListRivalsByUsername(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	rivals, err := h.service.ListRivalsByUsername(r.Context(), username)
	if err != nil {
		h.writeServiceError(w, err, "failed to list rivals by username")
		return
	}

	h.writeSuccess(w, rivals)
}

// RemoveRival deletes the caller's edge to a rival id
func (h *Handler) RemoveRival(w http.ResponseWriter, r *http.Request) {
	caller, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, domain.ErrUnauthorized)
		return
	}
	rivalID := chi.URLParam(r, "rivalID")

	if err := h.service.RemoveRival(r.Context(), caller, rivalID); err != nil {
		h.writeServiceError(w, err, "failed to remove rival")
		return
	}

	h.writeSuccess(w, map[string]string{"message": "Rival removed successfully"})
}

// RemoveRivalByUsername deletes the caller's edge to a rival username
func (h *Handler) RemoveRivalByUsername(w http.ResponseWriter, r *http.Request) {
	caller, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, domain.ErrUnauthorized)
		return
	}
	username := chi.URLParam(r, "username")

	if err := h.service.RemoveRivalByUsername(r.Context(), caller, username); err != nil {
		h.writeServiceError(w, err, "failed to remove rival by username")
		return
	}

	h.writeSuccess(w, map[string]string{"message": "Rival removed successfully"})
}

// GetLeaderboard returns the ranked standings
func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.ListRanked(r.Context())
	if err != nil {
		h.writeServiceError(w, err, "failed to get leaderboard")
		return
	}

	h.writeSuccess(w, entries)
}

// GetLeaderboardEntry returns one player's ranked entry, addressed by id or
// username
func (h *Handler) GetLeaderboardEntry(w http.ResponseWriter, r *http.Request) {
	playerID := chi.URLParam(r, "playerID")

	entry, err := h.service.GetRanked(r.Context(), playerID)
	if err != nil {
		h.writeServiceError(w, err, "failed to get leaderboard entry")
		return
	}

	h.writeSuccess(w, entry)
}
