package service

import (
	"context"
	"strings"

	"github.com/bdecent/avatarhub/internal/actorcontext"
	availabilitydomain "github.com/bdecent/avatarhub/internal/availability/domain"
	avatardomain "github.com/bdecent/avatarhub/internal/avatar/domain"
	"github.com/bdecent/avatarhub/internal/clock"
	collectiondomain "github.com/bdecent/avatarhub/internal/collection/domain"
	"github.com/bdecent/avatarhub/internal/config"
	eventsdomain "github.com/bdecent/avatarhub/internal/events/domain"
	"github.com/bdecent/avatarhub/internal/profilesync"
	"github.com/bdecent/avatarhub/pkg/db"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Cfg        config.Config
	Repo       collectiondomain.Repository
	AvatarRepo avatardomain.Repository
	Policy     availabilitydomain.Policy
	Events     eventsdomain.Service
	Syncer     profilesync.Syncer
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	repo        collectiondomain.Repository
	avatarRepo  avatardomain.Repository
	policy      availabilitydomain.Policy
	events      eventsdomain.Service
	syncer      profilesync.Syncer
	profileSync bool
}

func New(p Params) collectiondomain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("collection.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		repo:        p.Repo,
		avatarRepo:  p.AvatarRepo,
		policy:      p.Policy,
		events:      p.Events,
		syncer:      p.Syncer,
		profileSync: p.Cfg.ProfileSync,
	}
}

func (s *Service) Collect(ctx context.Context, req collectiondomain.CollectRequest) (collectiondomain.CommandResult, error) {
	if req.UserID == 0 {
		return collectiondomain.CommandResult{}, collectiondomain.ErrInvalidUser
	}
	avatar, err := s.loadAvatar(ctx, req.AvatarID)
	if err != nil {
		return collectiondomain.CommandResult{}, err
	}
	activityID, err := parseOptionalID(req.ActivityID)
	if err != nil {
		return collectiondomain.CommandResult{}, err
	}

	// Archived or deactivated avatars are never collectible, whatever
	// the policy says.
	if !avatar.Collectible() {
		return collectiondomain.CommandResult{Success: false, Message: "avatar not available"}, nil
	}

	decision, err := s.policy.Evaluate(ctx, avatar.ID, req.UserID, activityID)
	if err != nil {
		return collectiondomain.CommandResult{}, err
	}
	if !decision.Available {
		return collectiondomain.CommandResult{Success: false, Message: decision.Message()}, nil
	}

	now := s.clock.Now()
	collection := collectiondomain.Collection{
		ID:            s.genID.Generate(),
		UserID:        req.UserID,
		AvatarID:      avatar.ID,
		ActivityID:    activityID,
		Variant:       1,
		IsPrimary:     true,
		TimeCollected: now,
		TimeModified:  now,
	}

	// The first variant becomes the new primary; the flag swap and the
	// insert commit together. The unique (user_id, avatar_id) index is
	// the last line of defense against concurrent double collects.
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.ClearPrimary(ctx, tx, req.UserID); err != nil {
			return err
		}
		return s.repo.Insert(ctx, tx, &collection)
	})
	if txErr != nil {
		if db.IsDuplicateKeyErr(txErr) {
			return collectiondomain.CommandResult{Success: false, Message: collectiondomain.MessageAlreadyCollected}, nil
		}
		return collectiondomain.CommandResult{}, txErr
	}

	s.emit(ctx, s.collectKind(ctx, req.UserID), avatar.ID, activityID, req.UserID, 1)
	s.syncProfile(ctx, req.UserID, avatar.ID, 1)

	s.log.Info("avatar collected",
		zap.Int64("user_id", req.UserID),
		zap.String("avatar_id", avatar.ID.String()),
	)
	return collectiondomain.CommandResult{Success: true, Message: collectiondomain.MessageCollected}, nil
}

func (s *Service) Upgrade(ctx context.Context, req collectiondomain.UpgradeRequest) (collectiondomain.CommandResult, error) {
	if req.UserID == 0 {
		return collectiondomain.CommandResult{}, collectiondomain.ErrInvalidUser
	}
	avatar, err := s.loadAvatar(ctx, req.AvatarID)
	if err != nil {
		return collectiondomain.CommandResult{}, err
	}
	activityID, err := parseOptionalID(req.ActivityID)
	if err != nil {
		return collectiondomain.CommandResult{}, err
	}

	collection, err := s.repo.FindByUserAndAvatar(ctx, s.db, req.UserID, avatar.ID)
	if err != nil {
		return collectiondomain.CommandResult{}, err
	}
	if collection == nil {
		return collectiondomain.CommandResult{Success: false, Message: collectiondomain.MessageNotCollected}, nil
	}
	if collection.Variant >= avatar.VariantCount {
		return collectiondomain.CommandResult{Success: false, Message: collectiondomain.MessageFullyUpgraded}, nil
	}

	collection.Variant++
	collection.IsPrimary = true
	if activityID != 0 {
		collection.ActivityID = activityID
	}
	collection.TimeModified = s.clock.Now()

	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.ClearPrimary(ctx, tx, req.UserID); err != nil {
			return err
		}
		return s.repo.UpdateProgress(ctx, tx, collection)
	})
	if txErr != nil {
		return collectiondomain.CommandResult{}, txErr
	}

	s.emit(ctx, eventsdomain.KindAvatarUpgraded, avatar.ID, collection.ActivityID, req.UserID, collection.Variant)
	if collection.Variant == avatar.VariantCount {
		s.emit(ctx, eventsdomain.KindAvatarCompleted, avatar.ID, collection.ActivityID, req.UserID, collection.Variant)
	}
	s.syncProfile(ctx, req.UserID, avatar.ID, collection.Variant)

	s.log.Info("avatar upgraded",
		zap.Int64("user_id", req.UserID),
		zap.String("avatar_id", avatar.ID.String()),
		zap.Int("variant", collection.Variant),
	)
	return collectiondomain.CommandResult{Success: true, Message: collectiondomain.MessageUpgraded}, nil
}

func (s *Service) SetPrimary(ctx context.Context, req collectiondomain.SetPrimaryRequest) error {
	if req.UserID == 0 {
		return collectiondomain.ErrInvalidUser
	}
	avatar, err := s.loadAvatar(ctx, req.AvatarID)
	if err != nil {
		return err
	}

	collection, err := s.repo.FindByUserAndAvatar(ctx, s.db, req.UserID, avatar.ID)
	if err != nil {
		return err
	}
	// Reject before touching any flag so the user is never left with
	// zero primaries.
	if collection == nil {
		return collectiondomain.ErrNotFound
	}

	collection.IsPrimary = true
	collection.TimeModified = s.clock.Now()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.ClearPrimary(ctx, tx, req.UserID); err != nil {
			return err
		}
		return s.repo.UpdateProgress(ctx, tx, collection)
	})
	if err != nil {
		return err
	}

	s.emit(ctx, eventsdomain.KindAvatarChanged, avatar.ID, collection.ActivityID, req.UserID, collection.Variant)
	s.syncProfile(ctx, req.UserID, avatar.ID, collection.Variant)
	return nil
}

func (s *Service) Progress(ctx context.Context, req collectiondomain.ProgressRequest) (collectiondomain.Progress, error) {
	if req.UserID == 0 {
		return collectiondomain.Progress{}, collectiondomain.ErrInvalidUser
	}
	avatar, err := s.loadAvatar(ctx, req.AvatarID)
	if err != nil {
		return collectiondomain.Progress{}, err
	}

	collection, err := s.repo.FindByUserAndAvatar(ctx, s.db, req.UserID, avatar.ID)
	if err != nil {
		return collectiondomain.Progress{}, err
	}

	current := 0
	if collection != nil {
		current = collection.Variant
	}

	stages := make([]collectiondomain.Stage, 0, avatar.VariantCount)
	for i := 1; i <= avatar.VariantCount; i++ {
		stages = append(stages, collectiondomain.Stage{
			Variant:   i,
			Completed: i <= current,
		})
	}

	return collectiondomain.Progress{
		CanPick:        collection == nil,
		CanUpgrade:     collection != nil && current < avatar.VariantCount,
		CurrentVariant: current,
		Stages:         stages,
		SecretRevealed: current == avatar.VariantCount && current > 0,
	}, nil
}

func (s *Service) ListByUser(ctx context.Context, userID int64) ([]collectiondomain.Collection, error) {
	if userID == 0 {
		return nil, collectiondomain.ErrInvalidUser
	}
	items, err := s.repo.ListByUser(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	collections := make([]collectiondomain.Collection, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		collections = append(collections, *item)
	}
	return collections, nil
}

// collectKind distinguishes a self-service collect from an assignment by
// another actor (teacher, admin, background process).
func (s *Service) collectKind(ctx context.Context, targetUserID int64) eventsdomain.Kind {
	actorID, ok := actorcontext.UserIDFromContext(ctx)
	if ok && actorID == targetUserID {
		return eventsdomain.KindAvatarCollected
	}
	return eventsdomain.KindAvatarAssigned
}

func (s *Service) emit(ctx context.Context, kind eventsdomain.Kind, avatarID, activityID snowflake.ID, userID int64, variant int) {
	if err := s.events.Emit(ctx, eventsdomain.EmitRequest{
		Kind:       kind,
		UserID:     userID,
		AvatarID:   avatarID,
		ActivityID: activityID,
		Variant:    variant,
	}); err != nil {
		s.log.Warn("failed to emit event", zap.String("kind", string(kind)), zap.Error(err))
	}
}

func (s *Service) syncProfile(ctx context.Context, userID int64, avatarID snowflake.ID, variant int) {
	if !s.profileSync || s.syncer == nil {
		return
	}
	if err := s.syncer.SyncProfilePicture(ctx, userID, avatarID, variant); err != nil {
		s.log.Warn("profile sync failed", zap.Int64("user_id", userID), zap.Error(err))
	}
}

func (s *Service) loadAvatar(ctx context.Context, id string) (*avatardomain.Avatar, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || parsed == 0 {
		return nil, avatardomain.ErrInvalidID
	}
	avatar, err := s.avatarRepo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return nil, err
	}
	if avatar == nil {
		return nil, avatardomain.ErrNotFound
	}
	return avatar, nil
}

func parseOptionalID(value string) (snowflake.ID, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}
	id, err := snowflake.ParseString(value)
	if err != nil || id == 0 {
		return 0, avatardomain.ErrInvalidID
	}
	return id, nil
}
