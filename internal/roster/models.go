// Package roster gives read-only access to the host platform tables the
// availability gates and the auto-assignment matcher consume: course
// enrollments, cohort membership and user profile fields.
package roster

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Enrollment places a user in a course. CategoryPath is the slash-separated
// ancestry of the owning category, e.g. "/12/34/56".
type Enrollment struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	UserID       int64        `gorm:"not null;index" json:"user_id"`
	CourseID     int64        `gorm:"not null;index" json:"course_id"`
	CategoryID   int64        `gorm:"not null" json:"category_id"`
	CategoryPath string       `json:"category_path"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}

type CohortMember struct {
	ID       snowflake.ID `gorm:"primaryKey" json:"id"`
	CohortID int64        `gorm:"not null;index" json:"cohort_id"`
	UserID   int64        `gorm:"not null;index" json:"user_id"`
}

func (CohortMember) TableName() string {
	return "cohort_members"
}

// ProfileField is a custom host profile field value for a user.
type ProfileField struct {
	ID     snowflake.ID `gorm:"primaryKey" json:"id"`
	UserID int64        `gorm:"not null;index" json:"user_id"`
	Field  string       `gorm:"not null;index" json:"field"`
	Value  string       `gorm:"not null" json:"value"`
}

func (ProfileField) TableName() string {
	return "user_profile_fields"
}

// MatchCandidate pairs a user with an avatar whose name or idnumber equals
// the user's configured profile field value. RowID orders candidates for
// cursor-based scanning.
type MatchCandidate struct {
	RowID    snowflake.ID `json:"row_id"`
	UserID   int64        `json:"user_id"`
	AvatarID snowflake.ID `json:"avatar_id"`
}
