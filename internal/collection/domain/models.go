package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Collection is one user's progression on one avatar. A user holds at most
// one row per avatar and at most one primary row overall.
type Collection struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	UserID        int64        `gorm:"not null;uniqueIndex:idx_collections_user_avatar" json:"user_id"`
	AvatarID      snowflake.ID `gorm:"not null;uniqueIndex:idx_collections_user_avatar;index" json:"avatar_id"`
	ActivityID    snowflake.ID `gorm:"index" json:"activity_id,omitempty"`
	Variant       int          `gorm:"not null;default:1" json:"variant"`
	IsPrimary     bool         `gorm:"not null;default:false" json:"is_primary"`
	TimeCollected time.Time    `gorm:"not null;index" json:"time_collected"`
	TimeModified  time.Time    `gorm:"not null" json:"time_modified"`
}

func (Collection) TableName() string {
	return "collections"
}
