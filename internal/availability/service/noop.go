package service

import (
	"context"

	availabilitydomain "github.com/bdecent/avatarhub/internal/availability/domain"
	"github.com/bwmarrin/snowflake"
)

// NoopPolicy approves every collect without quota information. It is the
// binding used when the restriction features are disabled.
type NoopPolicy struct{}

func (NoopPolicy) Evaluate(ctx context.Context, avatarID snowflake.ID, userID int64, activityID snowflake.ID) (availabilitydomain.Decision, error) {
	return availabilitydomain.Decision{Available: true}, nil
}
