// Package profilesync pushes a user's primary avatar artwork into the host
// platform profile picture. The host integration is a collaborator; the
// default implementation only records the intent.
package profilesync

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Syncer interface {
	SyncProfilePicture(ctx context.Context, userID int64, avatarID snowflake.ID, variant int) error
}

type logSyncer struct {
	log *zap.Logger
}

func New(log *zap.Logger) Syncer {
	return &logSyncer{log: log.Named("profilesync")}
}

func (s *logSyncer) SyncProfilePicture(ctx context.Context, userID int64, avatarID snowflake.ID, variant int) error {
	s.log.Info("profile picture sync requested",
		zap.Int64("user_id", userID),
		zap.String("avatar_id", avatarID.String()),
		zap.Int("variant", variant),
	)
	return nil
}

var Module = fx.Module("profilesync",
	fx.Provide(New),
)
