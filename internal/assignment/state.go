package assignment

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

// State persists the scan cursor between runs so a restart resumes where
// the previous run stopped instead of rescanning from the top.
type State struct {
	ID        int          `gorm:"primaryKey" json:"id"`
	CursorRow snowflake.ID `gorm:"not null;default:0" json:"cursor_row"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (State) TableName() string {
	return "assignment_state"
}

// The cursor lives in a single well-known row.
const stateRowID = 1

func (s *Scheduler) loadCursor(ctx context.Context) (snowflake.ID, error) {
	var state State
	err := s.db.WithContext(ctx).Raw(
		`SELECT id, cursor_row FROM assignment_state WHERE id = ?`,
		stateRowID,
	).Scan(&state).Error
	if err != nil {
		return 0, err
	}
	return state.CursorRow, nil
}

func (s *Scheduler) saveCursor(ctx context.Context, cursor snowflake.ID) error {
	now := s.clock.Now()
	result := s.db.WithContext(ctx).Exec(
		`UPDATE assignment_state SET cursor_row = ?, updated_at = ? WHERE id = ?`,
		cursor, now, stateRowID,
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}
	return s.db.WithContext(ctx).Exec(
		`INSERT INTO assignment_state (id, cursor_row, updated_at) VALUES (?, ?, ?)`,
		stateRowID, cursor, now,
	).Error
}

func (s *Scheduler) resetCursor(ctx context.Context) error {
	return s.saveCursor(ctx, 0)
}
