package domain

import "time"

// RivalIdentity is the resolved target of a rival edge. A rival may be a
// registered user from the identity directory or an opaque identity (e.g. a
// guest or synthetic opponent) that never resolves through the gateway.
type RivalIdentity struct {
	ID         string
	Username   string
	Registered bool
}

// Rival is a directed owner-scoped edge marking another identity as a
// tracked competitor.
type Rival struct {
	ID            int64     `json:"id"`
	OwnerID       string    `json:"player_id"`
	OwnerUsername string    `json:"player_username,omitempty"`
	RivalID       string    `json:"rival_id"`
	RivalUsername string    `json:"rival_username"`
	Registered    bool      `json:"registered"`
	CreatedAt     time.Time `json:"created_at"`
}

// EnrichedRival is a rival row joined against the identity directory. The
// avatar_url key is always present; its value is null when the directory has
// no avatar for the rival.
type EnrichedRival struct {
	Rival
	AvatarURL *string `json:"avatar_url"`
}

// AddRivalRequest carries the rival reference, by username or raw id.
type AddRivalRequest struct {
	RivalID       string `json:"rival_id,omitempty"`
	RivalUsername string `json:"rival_username,omitempty"`
}

// Validate requires at least one way to address the rival.
func (r *AddRivalRequest) Validate() error {
	if r.RivalID == "" && r.RivalUsername == "" {
		return NewValidationError("rival_id or rival_username is required")
	}
	return nil
}
