package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bdecent/avatarhub/internal/actorcontext"
	availabilitydomain "github.com/bdecent/avatarhub/internal/availability/domain"
	avatardomain "github.com/bdecent/avatarhub/internal/avatar/domain"
	avatarrepo "github.com/bdecent/avatarhub/internal/avatar/repository"
	"github.com/bdecent/avatarhub/internal/clock"
	collectiondomain "github.com/bdecent/avatarhub/internal/collection/domain"
	collectionrepo "github.com/bdecent/avatarhub/internal/collection/repository"
	"github.com/bdecent/avatarhub/internal/config"
	eventsdomain "github.com/bdecent/avatarhub/internal/events/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type allowPolicy struct {
	decision availabilitydomain.Decision
}

func (p *allowPolicy) Evaluate(ctx context.Context, avatarID snowflake.ID, userID int64, activityID snowflake.ID) (availabilitydomain.Decision, error) {
	return p.decision, nil
}

type eventRecorder struct {
	emitted []eventsdomain.EmitRequest
}

func (r *eventRecorder) Emit(ctx context.Context, req eventsdomain.EmitRequest) error {
	r.emitted = append(r.emitted, req)
	return nil
}

func (r *eventRecorder) List(ctx context.Context, req eventsdomain.ListEventRequest) (eventsdomain.ListEventResponse, error) {
	return eventsdomain.ListEventResponse{}, nil
}

func (r *eventRecorder) kinds() []eventsdomain.Kind {
	kinds := make([]eventsdomain.Kind, 0, len(r.emitted))
	for _, event := range r.emitted {
		kinds = append(kinds, event.Kind)
	}
	return kinds
}

type syncRecorder struct {
	calls int
}

func (r *syncRecorder) SyncProfilePicture(ctx context.Context, userID int64, avatarID snowflake.ID, variant int) error {
	r.calls++
	return nil
}

type fixture struct {
	db      *gorm.DB
	node    *snowflake.Node
	clock   *clock.FakeClock
	policy  *allowPolicy
	events  *eventRecorder
	syncer  *syncRecorder
	service collectiondomain.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&avatardomain.Avatar{},
		&avatardomain.AvatarPro{},
		&collectiondomain.Collection{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fc := clock.NewFakeClock(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	policy := &allowPolicy{decision: availabilitydomain.Decision{Available: true}}
	events := &eventRecorder{}
	syncer := &syncRecorder{}

	svc := New(Params{
		DB:         db,
		Log:        zap.NewNop(),
		GenID:      node,
		Clock:      fc,
		Cfg:        config.Config{ProfileSync: true},
		Repo:       collectionrepo.Provide(),
		AvatarRepo: avatarrepo.Provide(),
		Policy:     policy,
		Events:     events,
		Syncer:     syncer,
	})

	return &fixture{
		db:      db,
		node:    node,
		clock:   fc,
		policy:  policy,
		events:  events,
		syncer:  syncer,
		service: svc,
	}
}

func (f *fixture) seedAvatar(t *testing.T, name string, variants int) avatardomain.Avatar {
	t.Helper()
	avatar := avatardomain.Avatar{
		ID:           f.node.Generate(),
		Name:         name,
		IDNumber:     name,
		Status:       avatardomain.AvatarStatusActive,
		VariantCount: variants,
		CreatedAt:    f.clock.Now(),
		UpdatedAt:    f.clock.Now(),
	}
	require.NoError(t, f.db.Create(&avatar).Error)
	return avatar
}

func userCtx(userID int64) context.Context {
	return actorcontext.WithUser(context.Background(), userID)
}

func TestCollectFirstVariantBecomesPrimary(t *testing.T) {
	f := newFixture(t)
	avatar := f.seedAvatar(t, "phoenix", 3)

	result, err := f.service.Collect(userCtx(7), collectiondomain.CollectRequest{
		AvatarID: avatar.ID.String(),
		UserID:   7,
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, collectiondomain.MessageCollected, result.Message)

	var row collectiondomain.Collection
	require.NoError(t, f.db.Where("user_id = ? AND avatar_id = ?", 7, avatar.ID).First(&row).Error)
	assert.Equal(t, 1, row.Variant)
	assert.True(t, row.IsPrimary)

	require.Len(t, f.events.emitted, 1)
	assert.Equal(t, eventsdomain.KindAvatarCollected, f.events.emitted[0].Kind)
	assert.Equal(t, 1, f.syncer.calls)
}

func TestCollectTwiceReportsAlreadyCollected(t *testing.T) {
	f := newFixture(t)
	avatar := f.seedAvatar(t, "phoenix", 3)

	first, err := f.service.Collect(userCtx(7), collectiondomain.CollectRequest{
		AvatarID: avatar.ID.String(),
		UserID:   7,
	})
	require.NoError(t, err)
	require.True(t, first.Success)

	second, err := f.service.Collect(userCtx(7), collectiondomain.CollectRequest{
		AvatarID: avatar.ID.String(),
		UserID:   7,
	})
	require.NoError(t, err)
	assert.False(t, second.Success)
	assert.Equal(t, collectiondomain.MessageAlreadyCollected, second.Message)

	var count int64
	require.NoError(t, f.db.Model(&collectiondomain.Collection{}).Where("user_id = ?", 7).Count(&count).Error)
	assert.EqualValues(t, 1, count)
	assert.Len(t, f.events.emitted, 1)
}

func TestCollectSwapsPrimary(t *testing.T) {
	f := newFixture(t)
	first := f.seedAvatar(t, "phoenix", 1)
	second := f.seedAvatar(t, "dragon", 1)

	_, err := f.service.Collect(userCtx(7), collectiondomain.CollectRequest{AvatarID: first.ID.String(), UserID: 7})
	require.NoError(t, err)
	_, err = f.service.Collect(userCtx(7), collectiondomain.CollectRequest{AvatarID: second.ID.String(), UserID: 7})
	require.NoError(t, err)

	var rows []collectiondomain.Collection
	require.NoError(t, f.db.Where("user_id = ?", 7).Order("time_collected asc, id asc").Find(&rows).Error)
	require.Len(t, rows, 2)
	assert.False(t, rows[0].IsPrimary)
	assert.True(t, rows[1].IsPrimary)
}

func TestCollectByAnotherActorEmitsAssigned(t *testing.T) {
	f := newFixture(t)
	avatar := f.seedAvatar(t, "phoenix", 1)

	ctx := actorcontext.WithSystem(context.Background())
	result, err := f.service.Collect(ctx, collectiondomain.CollectRequest{
		AvatarID: avatar.ID.String(),
		UserID:   7,
	})
	require.NoError(t, err)
	assert.True(t, result.Success)

	require.Len(t, f.events.emitted, 1)
	assert.Equal(t, eventsdomain.KindAvatarAssigned, f.events.emitted[0].Kind)
	assert.EqualValues(t, 7, f.events.emitted[0].UserID)
}

func TestCollectRefusedByPolicy(t *testing.T) {
	f := newFixture(t)
	avatar := f.seedAvatar(t, "phoenix", 1)

	f.policy.decision = availabilitydomain.Decision{
		Available:  false,
		FailedGate: availabilitydomain.GateCapacity,
		Capacity:   availabilitydomain.NewQuota(5, 5),
	}

	result, err := f.service.Collect(userCtx(7), collectiondomain.CollectRequest{
		AvatarID: avatar.ID.String(),
		UserID:   7,
	})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, f.policy.decision.Message(), result.Message)

	var count int64
	require.NoError(t, f.db.Model(&collectiondomain.Collection{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
	assert.Empty(t, f.events.emitted)
}

func TestCollectArchivedAvatarRefused(t *testing.T) {
	f := newFixture(t)
	avatar := f.seedAvatar(t, "phoenix", 1)
	require.NoError(t, f.db.Model(&avatardomain.Avatar{}).Where("id = ?", avatar.ID).Update("archived", true).Error)

	result, err := f.service.Collect(userCtx(7), collectiondomain.CollectRequest{
		AvatarID: avatar.ID.String(),
		UserID:   7,
	})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "avatar not available", result.Message)
}

func TestUpgradeRunsToCompletion(t *testing.T) {
	f := newFixture(t)
	avatar := f.seedAvatar(t, "phoenix", 3)

	_, err := f.service.Collect(userCtx(7), collectiondomain.CollectRequest{AvatarID: avatar.ID.String(), UserID: 7})
	require.NoError(t, err)

	for expected := 2; expected <= 3; expected++ {
		result, err := f.service.Upgrade(userCtx(7), collectiondomain.UpgradeRequest{AvatarID: avatar.ID.String(), UserID: 7})
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, collectiondomain.MessageUpgraded, result.Message)

		var row collectiondomain.Collection
		require.NoError(t, f.db.Where("user_id = ? AND avatar_id = ?", 7, avatar.ID).First(&row).Error)
		assert.Equal(t, expected, row.Variant)
		assert.True(t, row.IsPrimary)
	}

	assert.Equal(t, []eventsdomain.Kind{
		eventsdomain.KindAvatarCollected,
		eventsdomain.KindAvatarUpgraded,
		eventsdomain.KindAvatarUpgraded,
		eventsdomain.KindAvatarCompleted,
	}, f.events.kinds())

	result, err := f.service.Upgrade(userCtx(7), collectiondomain.UpgradeRequest{AvatarID: avatar.ID.String(), UserID: 7})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, collectiondomain.MessageFullyUpgraded, result.Message)
}

func TestUpgradeWithoutCollect(t *testing.T) {
	f := newFixture(t)
	avatar := f.seedAvatar(t, "phoenix", 3)

	result, err := f.service.Upgrade(userCtx(7), collectiondomain.UpgradeRequest{AvatarID: avatar.ID.String(), UserID: 7})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, collectiondomain.MessageNotCollected, result.Message)
}

func TestSetPrimaryRequiresExistingCollection(t *testing.T) {
	f := newFixture(t)
	avatar := f.seedAvatar(t, "phoenix", 1)

	err := f.service.SetPrimary(userCtx(7), collectiondomain.SetPrimaryRequest{AvatarID: avatar.ID.String(), UserID: 7})
	assert.ErrorIs(t, err, collectiondomain.ErrNotFound)
}

func TestSetPrimarySwapsFlag(t *testing.T) {
	f := newFixture(t)
	first := f.seedAvatar(t, "phoenix", 1)
	second := f.seedAvatar(t, "dragon", 1)

	_, err := f.service.Collect(userCtx(7), collectiondomain.CollectRequest{AvatarID: first.ID.String(), UserID: 7})
	require.NoError(t, err)
	_, err = f.service.Collect(userCtx(7), collectiondomain.CollectRequest{AvatarID: second.ID.String(), UserID: 7})
	require.NoError(t, err)

	require.NoError(t, f.service.SetPrimary(userCtx(7), collectiondomain.SetPrimaryRequest{AvatarID: first.ID.String(), UserID: 7}))

	var primaries []collectiondomain.Collection
	require.NoError(t, f.db.Where("user_id = ? AND is_primary = ?", 7, true).Find(&primaries).Error)
	require.Len(t, primaries, 1)
	assert.Equal(t, first.ID, primaries[0].AvatarID)
}

func TestProgressStages(t *testing.T) {
	f := newFixture(t)
	avatar := f.seedAvatar(t, "phoenix", 3)

	progress, err := f.service.Progress(userCtx(7), collectiondomain.ProgressRequest{AvatarID: avatar.ID.String(), UserID: 7})
	require.NoError(t, err)
	assert.True(t, progress.CanPick)
	assert.False(t, progress.CanUpgrade)
	assert.Equal(t, 0, progress.CurrentVariant)
	assert.False(t, progress.SecretRevealed)
	require.Len(t, progress.Stages, 3)
	for _, stage := range progress.Stages {
		assert.False(t, stage.Completed)
	}

	_, err = f.service.Collect(userCtx(7), collectiondomain.CollectRequest{AvatarID: avatar.ID.String(), UserID: 7})
	require.NoError(t, err)
	_, err = f.service.Upgrade(userCtx(7), collectiondomain.UpgradeRequest{AvatarID: avatar.ID.String(), UserID: 7})
	require.NoError(t, err)

	progress, err = f.service.Progress(userCtx(7), collectiondomain.ProgressRequest{AvatarID: avatar.ID.String(), UserID: 7})
	require.NoError(t, err)
	assert.False(t, progress.CanPick)
	assert.True(t, progress.CanUpgrade)
	assert.Equal(t, 2, progress.CurrentVariant)
	assert.False(t, progress.SecretRevealed)
	assert.True(t, progress.Stages[0].Completed)
	assert.True(t, progress.Stages[1].Completed)
	assert.False(t, progress.Stages[2].Completed)

	_, err = f.service.Upgrade(userCtx(7), collectiondomain.UpgradeRequest{AvatarID: avatar.ID.String(), UserID: 7})
	require.NoError(t, err)

	progress, err = f.service.Progress(userCtx(7), collectiondomain.ProgressRequest{AvatarID: avatar.ID.String(), UserID: 7})
	require.NoError(t, err)
	assert.False(t, progress.CanUpgrade)
	assert.True(t, progress.SecretRevealed)
}

func TestCollectUnknownAvatar(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Collect(userCtx(7), collectiondomain.CollectRequest{
		AvatarID: f.node.Generate().String(),
		UserID:   7,
	})
	assert.ErrorIs(t, err, avatardomain.ErrNotFound)
}
