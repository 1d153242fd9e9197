package service

import (
	"context"

	activitydomain "github.com/bdecent/avatarhub/internal/activity/domain"
	availabilitydomain "github.com/bdecent/avatarhub/internal/availability/domain"
	avatardomain "github.com/bdecent/avatarhub/internal/avatar/domain"
	"github.com/bdecent/avatarhub/internal/clock"
	collectiondomain "github.com/bdecent/avatarhub/internal/collection/domain"
	"github.com/bdecent/avatarhub/internal/roster"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB             *gorm.DB
	Log            *zap.Logger
	Clock          clock.Clock
	AvatarRepo     avatardomain.Repository
	ActivityRepo   activitydomain.Repository
	CollectionRepo collectiondomain.Repository
	Roster         roster.Repository
}

// Evaluator runs the full gate chain: category, cohort, avatar capacity,
// then the three activity limits. The first failing gate short-circuits.
// Evaluation never writes.
type Evaluator struct {
	db             *gorm.DB
	log            *zap.Logger
	clock          clock.Clock
	avatarRepo     avatardomain.Repository
	activityRepo   activitydomain.Repository
	collectionRepo collectiondomain.Repository
	roster         roster.Repository
}

func NewEvaluator(p Params) *Evaluator {
	return &Evaluator{
		db:             p.DB,
		log:            p.Log.Named("availability.evaluator"),
		clock:          p.Clock,
		avatarRepo:     p.AvatarRepo,
		activityRepo:   p.ActivityRepo,
		collectionRepo: p.CollectionRepo,
		roster:         p.Roster,
	}
}

func (e *Evaluator) Evaluate(ctx context.Context, avatarID snowflake.ID, userID int64, activityID snowflake.ID) (availabilitydomain.Decision, error) {
	pro, err := e.avatarRepo.FindPro(ctx, e.db, avatarID)
	if err != nil {
		return availabilitydomain.Decision{}, err
	}
	if pro == nil {
		// No restriction row means no restrictions.
		pro = &avatardomain.AvatarPro{AvatarID: avatarID}
	}

	decision := availabilitydomain.Decision{Available: true}

	if len(pro.CategoryIDs) > 0 {
		ok, err := e.categoryGate(ctx, pro, userID)
		if err != nil {
			return availabilitydomain.Decision{}, err
		}
		if !ok {
			return failed(availabilitydomain.GateCategory), nil
		}
	}

	if len(pro.CohortIDs) > 0 {
		ok, err := e.cohortGate(ctx, pro, userID)
		if err != nil {
			return availabilitydomain.Decision{}, err
		}
		if !ok {
			return failed(availabilitydomain.GateCohort), nil
		}
	}

	if pro.TotalCapacity > 0 {
		collected, err := e.collectionRepo.CountByAvatar(ctx, e.db, avatarID)
		if err != nil {
			return availabilitydomain.Decision{}, err
		}
		decision.Capacity = availabilitydomain.NewQuota(pro.TotalCapacity, collected)
		if collected >= pro.TotalCapacity {
			d := failed(availabilitydomain.GateCapacity)
			d.Capacity = decision.Capacity
			return d, nil
		}
	}

	if activityID == 0 {
		return decision, nil
	}

	activity, err := e.activityRepo.FindByID(ctx, e.db, activityID)
	if err != nil {
		return availabilitydomain.Decision{}, err
	}
	if activity == nil {
		return availabilitydomain.Decision{}, activitydomain.ErrNotFound
	}

	if activity.TotalLimit > 0 {
		collected, err := e.collectionRepo.CountByActivity(ctx, e.db, activityID)
		if err != nil {
			return availabilitydomain.Decision{}, err
		}
		decision.ActivityTotal = availabilitydomain.NewQuota(activity.TotalLimit, collected)
		if collected >= activity.TotalLimit {
			d := failed(availabilitydomain.GateActivityTotal)
			d.ActivityTotal = decision.ActivityTotal
			return d, nil
		}
	}

	if activity.PerUserLimit > 0 {
		collected, err := e.collectionRepo.CountByUserAndActivity(ctx, e.db, userID, activityID)
		if err != nil {
			return availabilitydomain.Decision{}, err
		}
		decision.PerUser = availabilitydomain.NewQuota(activity.PerUserLimit, collected)
		if collected >= activity.PerUserLimit {
			d := failed(availabilitydomain.GatePerUser)
			d.PerUser = decision.PerUser
			return d, nil
		}
	}

	if activity.IntervalLimit > 0 {
		// Any collection in the activity counts against the window,
		// not just collections of this avatar.
		cutoff := e.clock.Now().Add(-activity.Interval())
		collected, err := e.collectionRepo.CountByUserInActivitySince(ctx, e.db, userID, activityID, cutoff)
		if err != nil {
			return availabilitydomain.Decision{}, err
		}
		decision.PerInterval = availabilitydomain.NewQuota(activity.IntervalLimit, collected)
		if collected >= activity.IntervalLimit {
			d := failed(availabilitydomain.GatePerInterval)
			d.PerInterval = decision.PerInterval
			return d, nil
		}
	}

	return decision, nil
}

func (e *Evaluator) categoryGate(ctx context.Context, pro *avatardomain.AvatarPro, userID int64) (bool, error) {
	userCategories, err := e.roster.UserCategoryIDs(ctx, e.db, userID, pro.IncludeSubcategories)
	if err != nil {
		return false, err
	}
	return intersects(pro.CategoryIDs, userCategories), nil
}

func (e *Evaluator) cohortGate(ctx context.Context, pro *avatardomain.AvatarPro, userID int64) (bool, error) {
	userCohorts, err := e.roster.UserCohortIDs(ctx, e.db, userID)
	if err != nil {
		return false, err
	}
	return intersects(pro.CohortIDs, userCohorts), nil
}

func failed(gate availabilitydomain.Gate) availabilitydomain.Decision {
	return availabilitydomain.Decision{Available: false, FailedGate: gate}
}

func intersects(restriction []int64, membership []int64) bool {
	if len(restriction) == 0 {
		return true
	}
	set := make(map[int64]struct{}, len(membership))
	for _, id := range membership {
		set[id] = struct{}{}
	}
	for _, id := range restriction {
		if _, ok := set[id]; ok {
			return true
		}
	}
	return false
}
