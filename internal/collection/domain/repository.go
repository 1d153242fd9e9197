package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, collection *Collection) error
	FindByUserAndAvatar(ctx context.Context, db *gorm.DB, userID int64, avatarID snowflake.ID) (*Collection, error)
	ListByUser(ctx context.Context, db *gorm.DB, userID int64) ([]*Collection, error)

	// ClearPrimary drops the primary flag from all of the user's rows.
	ClearPrimary(ctx context.Context, db *gorm.DB, userID int64) error
	// UpdateProgress persists variant, owning activity, primary flag and
	// modification time for an existing row.
	UpdateProgress(ctx context.Context, db *gorm.DB, collection *Collection) error

	CountByAvatar(ctx context.Context, db *gorm.DB, avatarID snowflake.ID) (int, error)
	CountByActivity(ctx context.Context, db *gorm.DB, activityID snowflake.ID) (int, error)
	CountByUserAndActivity(ctx context.Context, db *gorm.DB, userID int64, activityID snowflake.ID) (int, error)
	// CountByUserInActivitySince counts the user's collections in the
	// activity with time_collected after the cutoff, regardless of avatar.
	CountByUserInActivitySince(ctx context.Context, db *gorm.DB, userID int64, activityID snowflake.ID, since time.Time) (int, error)
}
