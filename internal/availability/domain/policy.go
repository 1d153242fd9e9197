package domain

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
)

// Gate identifies one availability check. Gates run in declaration order
// and the first failure wins.
type Gate string

const (
	GateCategory      Gate = "category"
	GateCohort        Gate = "cohort"
	GateCapacity      Gate = "capacity"
	GateActivityTotal Gate = "activity_total"
	GatePerUser       Gate = "per_user"
	GatePerInterval   Gate = "per_interval"
)

// QuotaInfo reports a configured limit and how much of it is used.
type QuotaInfo struct {
	Limit     int `json:"limit"`
	Collected int `json:"collected"`
	Remaining int `json:"remaining"`
}

// Decision is the outcome of an availability evaluation. The quota fields
// are populated for whichever limits are configured, whether or not the
// avatar came out available; they feed user-facing messages.
type Decision struct {
	Available  bool `json:"available"`
	FailedGate Gate `json:"failed_gate,omitempty"`

	Capacity      *QuotaInfo `json:"capacity,omitempty"`
	ActivityTotal *QuotaInfo `json:"activity_total,omitempty"`
	PerUser       *QuotaInfo `json:"per_user,omitempty"`
	PerInterval   *QuotaInfo `json:"per_interval,omitempty"`
}

// Message renders the decision for the command surface.
func (d Decision) Message() string {
	if d.Available {
		return "avatar available"
	}
	switch d.FailedGate {
	case GateCategory:
		return "avatar not available: course category restriction"
	case GateCohort:
		return "avatar not available: cohort restriction"
	case GateCapacity:
		return "avatar not available: collection capacity reached"
	case GateActivityTotal:
		return "avatar not available: activity collection limit reached"
	case GatePerUser:
		return "avatar not available: your collection limit for this activity is reached"
	case GatePerInterval:
		return "avatar not available: collection limit for the current period is reached"
	default:
		return "avatar not available"
	}
}

func newQuota(limit, collected int) *QuotaInfo {
	remaining := limit - collected
	if remaining < 0 {
		remaining = 0
	}
	return &QuotaInfo{Limit: limit, Collected: collected, Remaining: remaining}
}

// NewQuota is exported for the evaluator implementation.
func NewQuota(limit, collected int) *QuotaInfo {
	return newQuota(limit, collected)
}

func (q *QuotaInfo) String() string {
	if q == nil {
		return ""
	}
	return fmt.Sprintf("%d of %d remaining", q.Remaining, q.Limit)
}

// Policy decides whether a user may collect an avatar. ActivityID zero
// means no activity context, which skips the activity-scoped gates.
// Implementations must not write.
type Policy interface {
	Evaluate(ctx context.Context, avatarID snowflake.ID, userID int64, activityID snowflake.ID) (Decision, error)
}
