package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pong-stats-service/internal/config"
	"github.com/pong-stats-service/internal/domain"
	"github.com/pong-stats-service/internal/redis"
)

// Client talks to the identity gateway: bearer verification and user
// directory resolution. When a JWT secret is configured tokens are verified
// locally without a network round trip; otherwise the gateway's verify
// endpoint is consulted per request.
type Client struct {
	cfg    *config.IdentityConfig
	http   *http.Client
	cache  *redis.Cache
	logger *slog.Logger
}

// NewClient creates a new identity gateway client. cache may be nil, in
// which case directory lookups always hit the gateway.
func NewClient(cfg *config.IdentityConfig, cache *redis.Cache, logger *slog.Logger) *Client {
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.RequestTimeout},
		cache:  cache,
		logger: logger,
	}
}

// VerifyToken validates a bearer token and returns the caller's identity.
// An invalid, expired or missing token maps to ErrUnauthorized.
func (c *Client) VerifyToken(ctx context.Context, token string) (*domain.Principal, error) {
	if token == "" {
		return nil, domain.ErrUnauthorized
	}
	if c.cfg.JWTSecret != "" {
		return c.verifyLocal(token)
	}
	return c.verifyRemote(ctx, token)
}

func (c *Client) verifyLocal(token string) (*domain.Principal, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		return []byte(c.cfg.JWTSecret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !parsed.Valid {
		return nil, domain.ErrUnauthorized
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	principal := domain.Principal{}
	if sub, ok := claims["sub"].(string); ok && sub != "" {
		principal.ID = sub
	} else if id, ok := claims["id"].(string); ok && id != "" {
		principal.ID = id
	}
	if username, ok := claims["username"].(string); ok {
		principal.Username = username
	} else if name, ok := claims["name"].(string); ok {
		principal.Username = name
	}
	if principal.ID == "" {
		return nil, domain.ErrUnauthorized
	}
	return &principal, nil
}

func (c *Client) verifyRemote(ctx context.Context, token string) (*domain.Principal, error) {
	endpoint := c.cfg.BaseURL + "/auth/verify-token"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building verify request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling identity gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, domain.ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("identity gateway returned status %d", resp.StatusCode)
	}

	var principal domain.Principal
	if err := json.NewDecoder(resp.Body).Decode(&principal); err != nil {
		return nil, fmt.Errorf("decoding verify response: %w", err)
	}
	if principal.ID == "" {
		return nil, domain.ErrUnauthorized
	}
	return &principal, nil
}

// ResolveUser looks up a directory record by id or username, consulting the
// Redis cache first. An unknown identity maps to ErrPlayerNotFound.
func (c *Client) ResolveUser(ctx context.Context, idOrUsername string) (*domain.User, error) {
	if idOrUsername == "" {
		return nil, domain.ErrPlayerNotFound
	}

	if c.cache != nil {
		user, err := c.cache.GetUser(ctx, idOrUsername)
		if err == nil {
			return user, nil
		}
		if !redis.IsCacheMiss(err) {
			c.logger.Warn("directory cache read failed", "error", err)
		}
	}

	endpoint := c.cfg.BaseURL + "/users/" + url.PathEscape(idOrUsername)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building directory request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling identity directory: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, domain.ErrPlayerNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("identity directory returned status %d", resp.StatusCode)
	}

	var user domain.User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("decoding directory response: %w", err)
	}

	if c.cache != nil {
		if err := c.cache.SetUser(ctx, &user, c.cfg.CacheTTL); err != nil {
			c.logger.Warn("directory cache write failed", "error", err)
		}
	}
	return &user, nil
}
