package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// ListCursor points past the last row of the previous page in
// (created_at, id) order.
type ListCursor struct {
	ID        snowflake.ID
	CreatedAt time.Time
}

type ListFilter struct {
	Archived *bool
	Status   AvatarStatus
	Cursor   *ListCursor
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, avatar *Avatar, pro *AvatarPro) error
	Update(ctx context.Context, db *gorm.DB, avatar *Avatar, pro *AvatarPro) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Avatar, error)
	FindPro(ctx context.Context, db *gorm.DB, id snowflake.ID) (*AvatarPro, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter, limit int) ([]*Avatar, error)
	ListCollectible(ctx context.Context, db *gorm.DB) ([]*Avatar, error)
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}
