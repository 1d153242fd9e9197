package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type AvatarStatus string

const (
	AvatarStatusActive   AvatarStatus = "active"
	AvatarStatusInactive AvatarStatus = "inactive"
)

// Avatar is a catalog entry. Variants are sequential artwork stages a user
// upgrades through after collecting the avatar.
type Avatar struct {
	ID           snowflake.ID                `gorm:"primaryKey" json:"id"`
	Name         string                      `gorm:"not null" json:"name"`
	IDNumber     string                      `gorm:"column:idnumber;uniqueIndex;not null" json:"idnumber"`
	Description  string                      `json:"description,omitempty"`
	SecretInfo   string                      `json:"secret_info,omitempty"`
	Status       AvatarStatus                `gorm:"not null;default:active" json:"status"`
	VariantCount int                         `gorm:"not null;default:1" json:"variant_count"`
	Tags         datatypes.JSONSlice[string] `json:"tags,omitempty"`
	Archived     bool                        `gorm:"not null;default:false;index" json:"archived"`
	ArchivedAt   *time.Time                  `json:"archived_at,omitempty"`
	CreatedAt    time.Time                   `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time                   `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Avatar) TableName() string {
	return "avatars"
}

// AvatarPro carries the restriction and capacity columns. It shares the
// avatar's lifecycle and is keyed by the avatar id.
type AvatarPro struct {
	AvatarID             snowflake.ID               `gorm:"primaryKey" json:"avatar_id"`
	CategoryIDs          datatypes.JSONSlice[int64] `json:"category_ids,omitempty"`
	IncludeSubcategories bool                       `gorm:"not null;default:false" json:"include_subcategories"`
	CohortIDs            datatypes.JSONSlice[int64] `json:"cohort_ids,omitempty"`
	// TotalCapacity is the maximum distinct collectors. Zero means unlimited.
	TotalCapacity int `gorm:"not null;default:0" json:"total_capacity"`
}

func (AvatarPro) TableName() string {
	return "avatar_pro"
}

// HasTag reports whether the avatar carries the given tag.
func (a Avatar) HasTag(tag string) bool {
	for _, t := range a.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Collectible reports whether the avatar may surface in activity pools.
func (a Avatar) Collectible() bool {
	return !a.Archived && a.Status == AvatarStatusActive
}
