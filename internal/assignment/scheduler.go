package assignment

import (
	"context"
	"errors"
	"time"

	"github.com/bdecent/avatarhub/internal/actorcontext"
	"github.com/bdecent/avatarhub/internal/clock"
	collectiondomain "github.com/bdecent/avatarhub/internal/collection/domain"
	obsmetrics "github.com/bdecent/avatarhub/internal/observability/metrics"
	"github.com/bdecent/avatarhub/internal/roster"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrInvalidConfig = errors.New("invalid_scheduler_config")

type Params struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	GenID         *snowflake.Node
	Clock         clock.Clock
	CollectionSvc collectiondomain.Service
	Roster        roster.Repository
	Config        Config              `optional:"true"`
	Metrics       *obsmetrics.Metrics `optional:"true"`
}

// Scheduler hands avatars to users whose configured profile field matches
// an avatar's name or idnumber. It scans the profile rows in cursor order,
// funnels each hit through the regular collect path, and persists the
// cursor so interrupted runs resume.
type Scheduler struct {
	db            *gorm.DB
	log           *zap.Logger
	cfg           Config
	genID         *snowflake.Node
	clock         clock.Clock
	collectionSvc collectiondomain.Service
	roster        roster.Repository
	metrics       *obsmetrics.Metrics
}

func New(p Params) (*Scheduler, error) {
	if p.DB == nil || p.Log == nil || p.GenID == nil || p.Clock == nil || p.CollectionSvc == nil || p.Roster == nil {
		return nil, ErrInvalidConfig
	}
	cfg := p.Config.withDefaults()
	return &Scheduler{
		db:            p.DB,
		log:           p.Log.Named("assignment").With(zap.String("component", "assignment")),
		cfg:           cfg,
		genID:         p.GenID,
		clock:         p.Clock,
		collectionSvc: p.CollectionSvc,
		roster:        p.Roster,
		metrics:       p.Metrics,
	}, nil
}

func (s *Scheduler) RunOnce(parent context.Context) error {
	if s.cfg.MatchField == "" {
		return nil
	}
	run := s.newJobRun("auto_assign")
	s.logJobStart(run)
	defer s.logJobFinish(run)

	ctx := actorcontext.WithSystem(parent)

	cursor, err := s.loadCursor(ctx)
	if err != nil {
		run.IncError()
		return err
	}

	var jobErr error
	for iteration := 0; iteration < s.cfg.MaxIterations; iteration++ {
		if ctx.Err() != nil {
			return errors.Join(jobErr, ctx.Err())
		}

		candidates, err := s.roster.MatchCandidates(ctx, s.db, s.cfg.MatchField, cursor, s.cfg.BatchSize)
		if err != nil {
			run.IncError()
			return errors.Join(jobErr, err)
		}
		if len(candidates) == 0 {
			// Scan finished; the next run starts from the top.
			if err := s.resetCursor(ctx); err != nil {
				run.IncError()
				return errors.Join(jobErr, err)
			}
			break
		}

		for _, candidate := range candidates {
			result, err := s.collectionSvc.Collect(ctx, collectiondomain.CollectRequest{
				AvatarID: candidate.AvatarID.String(),
				UserID:   candidate.UserID,
			})
			if err != nil {
				jobErr = errors.Join(jobErr, err)
				run.IncError()
				s.log.Error("assignment.collect.failed",
					zap.String("run_id", run.runID),
					zap.Int64("user_id", candidate.UserID),
					zap.String("avatar_id", candidate.AvatarID.String()),
					zap.Error(err),
				)
				continue
			}
			if result.Success {
				run.AddProcessed(1)
				continue
			}
			// A gate refusal is not an error. The cursor still advances
			// past the candidate; it is reconsidered on the next scan.
			s.log.Debug("assignment.collect.skipped",
				zap.String("run_id", run.runID),
				zap.Int64("user_id", candidate.UserID),
				zap.String("avatar_id", candidate.AvatarID.String()),
				zap.String("reason", result.Message),
			)
		}

		cursor = candidates[len(candidates)-1].RowID
		if err := s.saveCursor(ctx, cursor); err != nil {
			run.IncError()
			return errors.Join(jobErr, err)
		}
	}

	return jobErr
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("assignment run failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Reinitialize clears the scan cursor so the next run starts from the
// first profile row again.
func (s *Scheduler) Reinitialize(ctx context.Context) error {
	s.log.Info("assignment cursor reset")
	return s.resetCursor(ctx)
}
