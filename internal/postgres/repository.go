package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pong-stats-service/internal/config"
)

// uniqueViolation is the PostgreSQL error code for a unique constraint hit.
const uniqueViolation = "23505"

// Repository provides PostgreSQL-based data access
type Repository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewRepository creates a new PostgreSQL repository
func NewRepository(cfg *config.PostgresConfig, logger *slog.Logger) (*Repository, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConnections)
	poolConfig.MinConns = int32(cfg.MinConnections)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	return &Repository{
		pool:   pool,
		logger: logger,
	}, nil
}

// Close closes the database connection pool
func (r *Repository) Close() {
	r.pool.Close()
}

// Pool returns the underlying connection pool
func (r *Repository) Pool() *pgxpool.Pool {
	return r.pool
}

// isUniqueViolation reports whether err is a unique-constraint failure.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// RunMigrations executes database migrations
func (r *Repository) RunMigrations(ctx context.Context) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS scores (
			player_id VARCHAR(64) PRIMARY KEY,
			player_name VARCHAR(255) NOT NULL,
			elo_score INT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS match_history (
			id BIGSERIAL PRIMARY KEY,
			player_id VARCHAR(64) NOT NULL,
			player_username VARCHAR(255),
			player_name VARCHAR(255) NOT NULL,
			opponent_id VARCHAR(64) NOT NULL,
			opponent_username VARCHAR(255),
			opponent_name VARCHAR(255) NOT NULL,
			player_score INT NOT NULL,
			opponent_score INT NOT NULL,
			duration VARCHAR(8) NOT NULL,
			result VARCHAR(10) NOT NULL CHECK (result IN ('win', 'loss', 'draw')),
			is_guest_opponent BOOLEAN NOT NULL DEFAULT FALSE,
			played_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS tournament_history (
			id BIGSERIAL PRIMARY KEY,
			tournament_id VARCHAR(64) NOT NULL,
			stage_number INT NOT NULL,
			match_number INT NOT NULL,
			player_name VARCHAR(255) NOT NULL,
			opponent_name VARCHAR(255) NOT NULL,
			result VARCHAR(10) NOT NULL CHECK (result IN ('win', 'loss', 'draw')),
			played_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS rivals (
			id BIGSERIAL PRIMARY KEY,
			owner_id VARCHAR(64) NOT NULL,
			owner_username VARCHAR(255),
			rival_id VARCHAR(64) NOT NULL,
			rival_username VARCHAR(255) NOT NULL,
			registered BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(owner_id, rival_id)
		)`,
		`CREATE TABLE IF NOT EXISTS rating_history (
			id BIGSERIAL PRIMARY KEY,
			player_id VARCHAR(64) NOT NULL,
			player_username VARCHAR(255),
			elo_score INT NOT NULL,
			recorded_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_match_history_player ON match_history(player_id, played_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_match_history_username ON match_history(player_username)`,
		`CREATE INDEX IF NOT EXISTS idx_tournament_history_tournament ON tournament_history(tournament_id)`,
		`CREATE INDEX IF NOT EXISTS idx_rivals_owner ON rivals(owner_id)`,
		`CREATE INDEX IF NOT EXISTS idx_rating_history_player ON rating_history(player_id, recorded_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_scores_elo ON scores(elo_score DESC)`,
	}

	for _, migration := range migrations {
		_, err := r.pool.Exec(ctx, migration)
		if err != nil {
			return fmt.Errorf("executing migration: %w", err)
		}
	}

	r.logger.Info("database migrations completed")
	return nil
}
