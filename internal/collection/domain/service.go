package domain

import (
	"context"
	"errors"
)

// CommandResult is the outcome of a collect/upgrade command. Business
// preconditions that fail (not available, already collected, fully
// upgraded) are reported here, not as errors.
type CommandResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

const (
	MessageCollected        = "avatar collected"
	MessageUpgraded         = "avatar upgraded"
	MessageAlreadyCollected = "avatar already collected"
	MessageFullyUpgraded    = "avatar already fully upgraded"
	MessageNotCollected     = "avatar not collected yet"
)

type CollectRequest struct {
	AvatarID   string `json:"avatar_id"`
	ActivityID string `json:"activity_id"`
	UserID     int64  `json:"user_id"`
}

type UpgradeRequest struct {
	AvatarID   string `json:"avatar_id"`
	ActivityID string `json:"activity_id"`
	UserID     int64  `json:"user_id"`
}

type SetPrimaryRequest struct {
	AvatarID string `json:"avatar_id"`
	UserID   int64  `json:"user_id"`
}

type ProgressRequest struct {
	AvatarID string
	UserID   int64
}

// Stage is one variant slot in the progress indicator.
type Stage struct {
	Variant   int  `json:"variant"`
	Completed bool `json:"completed"`
}

type Progress struct {
	CanPick        bool    `json:"can_pick"`
	CanUpgrade     bool    `json:"can_upgrade"`
	CurrentVariant int     `json:"current_variant"`
	Stages         []Stage `json:"stages"`
	// SecretRevealed is true once the final variant is reached.
	SecretRevealed bool `json:"secret_revealed"`
}

type Service interface {
	Collect(ctx context.Context, req CollectRequest) (CommandResult, error)
	Upgrade(ctx context.Context, req UpgradeRequest) (CommandResult, error)
	SetPrimary(ctx context.Context, req SetPrimaryRequest) error
	Progress(ctx context.Context, req ProgressRequest) (Progress, error)
	ListByUser(ctx context.Context, userID int64) ([]Collection, error)
}

var (
	ErrNotFound    = errors.New("collection_not_found")
	ErrInvalidUser = errors.New("invalid_user")
)
