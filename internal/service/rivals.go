package service

import (
	"context"

	"github.com/pong-stats-service/internal/domain"
)

// AddRival creates a directed rival edge for the caller. The rival may be
// referenced by username (resolved through the identity directory) or by a
// raw id; ids that never resolve are stored as opaque identities so guest
// and synthetic rivals remain addressable.
func (s *StatsService) AddRival(ctx context.Context, caller domain.Principal, req domain.AddRivalRequest) (*domain.Rival, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	identity, err := s.resolveRival(ctx, req)
	if err != nil {
		return nil, err
	}
	if identity.ID == caller.ID {
		return nil, domain.ErrSelfRival
	}

	rival := domain.Rival{
		OwnerID:       caller.ID,
		OwnerUsername: caller.Username,
		RivalID:       identity.ID,
		RivalUsername: identity.Username,
		Registered:    identity.Registered,
	}
	return s.store.InsertRival(ctx, rival)
}

// resolveRival maps the request onto a rival identity, preferring the
// directory record when one exists.
func (s *StatsService) resolveRival(ctx context.Context, req domain.AddRivalRequest) (*domain.RivalIdentity, error) {
	lookup := req.RivalUsername
	if lookup == "" {
		lookup = req.RivalID
	}

	if s.directory != nil {
		user, err := s.directory.ResolveUser(ctx, lookup)
		if err == nil {
			return &domain.RivalIdentity{ID: user.ID, Username: user.Username, Registered: true}, nil
		}
		if !domain.IsNotFoundError(err) {
			s.logger.Warn("rival directory lookup failed", "rival", lookup, "error", err)
		}
	}

	// No directory record: a raw id is acceptable as an opaque identity, a
	// bare unknown username is not.
	if req.RivalID == "" {
		return nil, domain.ErrPlayerNotFound
	}
	username := req.RivalUsername
	if username == "" {
		username = req.RivalID
	}
	return &domain.RivalIdentity{ID: req.RivalID, Username: username, Registered: false}, nil
}

// ListRivals returns an owner's rivals enriched with directory avatars. The
// avatar_url key is always present; unresolvable rivals carry null.
func (s *StatsService) ListRivals(ctx context.Context, ownerID string) ([]domain.EnrichedRival, error) {
	rivals, err := s.store.ListRivals(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return s.enrichRivals(ctx, rivals), nil
}

// ListRivalsByUsername is ListRivals addressed by the owner's username.
func (s *StatsService) ListRivalsByUsername(ctx context.Context, ownerUsername string) ([]domain.EnrichedRival, error) {
	rivals, err := s.store.ListRivalsByUsername(ctx, ownerUsername)
	if err != nil {
		return nil, err
	}
	return s.enrichRivals(ctx, rivals), nil
}

func (s *StatsService) enrichRivals(ctx context.Context, rivals []domain.Rival) []domain.EnrichedRival {
	enriched := make([]domain.EnrichedRival, len(rivals))
	for i, rival := range rivals {
		enriched[i] = domain.EnrichedRival{Rival: rival}
		if !rival.Registered || s.directory == nil {
			continue
		}
		user, err := s.directory.ResolveUser(ctx, rival.RivalID)
		if err != nil {
			if !domain.IsNotFoundError(err) {
				s.logger.Warn("avatar enrichment failed", "rival_id", rival.RivalID, "error", err)
			}
			continue
		}
		enriched[i].AvatarURL = user.AvatarURL
	}
	return enriched
}

// RemoveRival deletes the caller's edge to rivalID; a missing edge is an
// error, not a silent success.
func (s *StatsService) RemoveRival(ctx context.Context, caller domain.Principal, rivalID string) error {
	if rivalID == "" {
		return domain.NewValidationError("rival_id is required")
	}
	return s.store.DeleteRival(ctx, caller.ID, rivalID)
}

// RemoveRivalByUsername deletes the caller's edge to the named rival.
func (s *StatsService) RemoveRivalByUsername(ctx context.Context, caller domain.Principal, rivalUsername string) error {
	if rivalUsername == "" {
		return domain.NewValidationError("rival_username is required")
	}
	return s.store.DeleteRivalByUsername(ctx, caller.ID, rivalUsername)
}
