package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	activitydomain "github.com/bdecent/avatarhub/internal/activity/domain"
	activityrepo "github.com/bdecent/avatarhub/internal/activity/repository"
	avatardomain "github.com/bdecent/avatarhub/internal/avatar/domain"
	avatarrepo "github.com/bdecent/avatarhub/internal/avatar/repository"
	collectiondomain "github.com/bdecent/avatarhub/internal/collection/domain"
	"github.com/bdecent/avatarhub/internal/roster"
	usagedomain "github.com/bdecent/avatarhub/internal/usage/domain"
	usagerepo "github.com/bdecent/avatarhub/internal/usage/repository"
	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type usageFixture struct {
	db      *gorm.DB
	node    *snowflake.Node
	service usagedomain.Service
}

func newUsageFixture(t *testing.T) *usageFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&avatardomain.Avatar{},
		&avatardomain.AvatarPro{},
		&activitydomain.Activity{},
		&collectiondomain.Collection{},
		&roster.CohortMember{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:           db,
		Log:          zap.NewNop(),
		Repo:         usagerepo.Provide(),
		AvatarRepo:   avatarrepo.Provide(),
		ActivityRepo: activityrepo.Provide(),
	})

	return &usageFixture{db: db, node: node, service: svc}
}

func (f *usageFixture) seedAvatar(t *testing.T, name string, tags ...string) avatardomain.Avatar {
	t.Helper()
	avatar := avatardomain.Avatar{
		ID:           f.node.Generate(),
		Name:         name,
		IDNumber:     name,
		Status:       avatardomain.AvatarStatusActive,
		VariantCount: 1,
		Tags:         datatypes.JSONSlice[string](tags),
	}
	require.NoError(t, f.db.Create(&avatar).Error)
	return avatar
}

func (f *usageFixture) seedActivity(t *testing.T, courseID int64, mode activitydomain.SelectionMode, tags ...string) activitydomain.Activity {
	t.Helper()
	activity := activitydomain.Activity{
		ID:            f.node.Generate(),
		CourseID:      courseID,
		Name:          fmt.Sprintf("picker %d", courseID),
		SelectionMode: mode,
		Tags:          datatypes.JSONSlice[string](tags),
		DisplayMode:   activitydomain.DisplayGrid,
	}
	require.NoError(t, f.db.Create(&activity).Error)
	return activity
}

func (f *usageFixture) seedCollection(t *testing.T, userID int64, avatarID, activityID snowflake.ID, collected time.Time) {
	t.Helper()
	require.NoError(t, f.db.Create(&collectiondomain.Collection{
		ID:            f.node.Generate(),
		UserID:        userID,
		AvatarID:      avatarID,
		ActivityID:    activityID,
		Variant:       1,
		TimeCollected: collected,
		TimeModified:  collected,
	}).Error)
}

func TestSnapshotZeroCollectors(t *testing.T) {
	f := newUsageFixture(t)
	avatar := f.seedAvatar(t, "phoenix", "fire")

	f.seedActivity(t, 100, activitydomain.SelectionAll)
	f.seedActivity(t, 200, activitydomain.SelectionAll)
	// Tag mismatch keeps the avatar out of this pool.
	f.seedActivity(t, 300, activitydomain.SelectionSpecific, "water")

	snapshot, err := f.service.Snapshot(context.Background(), avatar.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 2, snapshot.Activities)
	assert.Equal(t, 2, snapshot.Courses)
	assert.Equal(t, 0, snapshot.Users)
	assert.Nil(t, snapshot.FirstCollected)
	assert.Nil(t, snapshot.LastCollected)
	assert.Nil(t, snapshot.MostCollectedCourse)
	assert.Nil(t, snapshot.MostCollectedCohort)
}

func TestSnapshotCountsAndRankings(t *testing.T) {
	f := newUsageFixture(t)
	avatar := f.seedAvatar(t, "phoenix")

	a1 := f.seedActivity(t, 100, activitydomain.SelectionAll)
	a2 := f.seedActivity(t, 200, activitydomain.SelectionAll)

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	f.seedCollection(t, 1, avatar.ID, a1.ID, base)
	f.seedCollection(t, 2, avatar.ID, a2.ID, base.Add(time.Hour))
	f.seedCollection(t, 3, avatar.ID, a2.ID, base.Add(2*time.Hour))

	require.NoError(t, f.db.Create(&roster.CohortMember{ID: f.node.Generate(), CohortID: 5, UserID: 1}).Error)
	require.NoError(t, f.db.Create(&roster.CohortMember{ID: f.node.Generate(), CohortID: 5, UserID: 2}).Error)
	require.NoError(t, f.db.Create(&roster.CohortMember{ID: f.node.Generate(), CohortID: 9, UserID: 3}).Error)

	snapshot, err := f.service.Snapshot(context.Background(), avatar.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 2, snapshot.Activities)
	assert.Equal(t, 2, snapshot.Courses)
	assert.Equal(t, 3, snapshot.Users)

	require.NotNil(t, snapshot.FirstCollected)
	assert.EqualValues(t, 1, snapshot.FirstCollected.UserID)
	require.NotNil(t, snapshot.LastCollected)
	assert.EqualValues(t, 3, snapshot.LastCollected.UserID)

	require.NotNil(t, snapshot.MostCollectedCourse)
	assert.EqualValues(t, 200, snapshot.MostCollectedCourse.ID)
	assert.Equal(t, 2, snapshot.MostCollectedCourse.Collections)

	require.NotNil(t, snapshot.MostCollectedCohort)
	assert.EqualValues(t, 5, snapshot.MostCollectedCohort.ID)
	assert.Equal(t, 2, snapshot.MostCollectedCohort.Collections)
}

func TestSnapshotTieBreaksToLowestGroupID(t *testing.T) {
	f := newUsageFixture(t)
	avatar := f.seedAvatar(t, "phoenix")

	a1 := f.seedActivity(t, 200, activitydomain.SelectionAll)
	a2 := f.seedActivity(t, 100, activitydomain.SelectionAll)

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	f.seedCollection(t, 1, avatar.ID, a1.ID, base)
	f.seedCollection(t, 2, avatar.ID, a2.ID, base.Add(time.Minute))

	snapshot, err := f.service.Snapshot(context.Background(), avatar.ID.String())
	require.NoError(t, err)
	require.NotNil(t, snapshot.MostCollectedCourse)
	assert.EqualValues(t, 100, snapshot.MostCollectedCourse.ID)
	assert.Equal(t, 1, snapshot.MostCollectedCourse.Collections)
}

func TestSnapshotUnknownAvatar(t *testing.T) {
	f := newUsageFixture(t)

	_, err := f.service.Snapshot(context.Background(), f.node.Generate().String())
	assert.ErrorIs(t, err, avatardomain.ErrNotFound)
}
