package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type Kind string

const (
	KindAvatarCreated   Kind = "avatar_created"
	KindAvatarChanged   Kind = "avatar_changed"
	KindAvatarViewed    Kind = "avatar_viewed"
	KindAvatarCollected Kind = "avatar_collected"
	KindAvatarAssigned  Kind = "avatar_assigned"
	KindAvatarUpgraded  Kind = "avatar_upgraded"
	KindAvatarCompleted Kind = "avatar_completed"
)

// Event is an append-only record of a domain occurrence. UserID is the
// affected user; the actor columns identify who caused it.
type Event struct {
	ID         snowflake.ID      `gorm:"primaryKey" json:"id"`
	Kind       Kind              `gorm:"not null;index" json:"kind"`
	ActorType  string            `gorm:"not null" json:"actor_type"`
	ActorID    int64             `json:"actor_id,omitempty"`
	UserID     int64             `gorm:"index" json:"user_id,omitempty"`
	AvatarID   snowflake.ID      `gorm:"index" json:"avatar_id,omitempty"`
	ActivityID snowflake.ID      `json:"activity_id,omitempty"`
	Variant    int               `json:"variant,omitempty"`
	Metadata   datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt  time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP;index" json:"created_at"`
}

func (Event) TableName() string {
	return "avatar_events"
}
