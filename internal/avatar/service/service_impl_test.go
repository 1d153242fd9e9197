package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	avatardomain "github.com/bdecent/avatarhub/internal/avatar/domain"
	"github.com/bdecent/avatarhub/internal/avatar/repository"
	"github.com/bdecent/avatarhub/internal/clock"
	eventsdomain "github.com/bdecent/avatarhub/internal/events/domain"
	"github.com/bdecent/avatarhub/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type eventSink struct {
	emitted []eventsdomain.EmitRequest
	fail    error
}

func (s *eventSink) Emit(ctx context.Context, req eventsdomain.EmitRequest) error {
	s.emitted = append(s.emitted, req)
	return s.fail
}

func (s *eventSink) List(ctx context.Context, req eventsdomain.ListEventRequest) (eventsdomain.ListEventResponse, error) {
	return eventsdomain.ListEventResponse{}, nil
}

func (s *eventSink) kinds() []eventsdomain.Kind {
	out := make([]eventsdomain.Kind, 0, len(s.emitted))
	for _, req := range s.emitted {
		out = append(out, req.Kind)
	}
	return out
}

type avatarFixture struct {
	db      *gorm.DB
	events  *eventSink
	service avatardomain.Service
}

func newAvatarFixture(t *testing.T) *avatarFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&avatardomain.Avatar{},
		&avatardomain.AvatarPro{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	events := &eventSink{}
	svc := New(Params{
		DB:     db,
		Log:    zap.NewNop(),
		GenID:  node,
		Clock:  clock.NewFakeClock(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)),
		Repo:   repository.Provide(),
		Events: events,
	})

	return &avatarFixture{db: db, events: events, service: svc}
}

func TestCreateAvatarDefaults(t *testing.T) {
	f := newAvatarFixture(t)

	created, err := f.service.Create(context.Background(), avatardomain.CreateAvatarRequest{
		Name: "  Phoenix  ",
		Tags: []string{"Fire", "fire", " Legendary ", ""},
	})
	require.NoError(t, err)
	assert.Equal(t, "Phoenix", created.Name)
	assert.Equal(t, 1, created.VariantCount)
	assert.Equal(t, avatardomain.AvatarStatusActive, created.Status)
	assert.Equal(t, []string{"fire", "legendary"}, []string(created.Tags))
	assert.Equal(t, []eventsdomain.Kind{eventsdomain.KindAvatarCreated}, f.events.kinds())
}

func TestAvatarIDNumberRoundTrips(t *testing.T) {
	f := newAvatarFixture(t)

	created, err := f.service.Create(context.Background(), avatardomain.CreateAvatarRequest{
		Name:     "phoenix",
		IDNumber: " phx-001 ",
	})
	require.NoError(t, err)
	assert.Equal(t, "phx-001", created.IDNumber)

	// The raw lookup and the gorm-chained list must agree on the column.
	got, err := f.service.GetByID(context.Background(), avatardomain.GetAvatarRequest{ID: created.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, "phx-001", got.IDNumber)

	resp, err := f.service.List(context.Background(), avatardomain.ListAvatarRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Avatars, 1)
	assert.Equal(t, "phx-001", resp.Avatars[0].IDNumber)
}

func TestCreateAvatarSurvivesEventFailure(t *testing.T) {
	f := newAvatarFixture(t)
	f.events.fail = errors.New("event store offline")

	created, err := f.service.Create(context.Background(), avatardomain.CreateAvatarRequest{Name: "phoenix"})
	require.NoError(t, err)

	got, err := f.service.GetByID(context.Background(), avatardomain.GetAvatarRequest{ID: created.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, "phoenix", got.Name)
}

func TestCreateAvatarValidation(t *testing.T) {
	f := newAvatarFixture(t)

	_, err := f.service.Create(context.Background(), avatardomain.CreateAvatarRequest{Name: "   "})
	assert.ErrorIs(t, err, avatardomain.ErrInvalidName)

	_, err = f.service.Create(context.Background(), avatardomain.CreateAvatarRequest{
		Name:         "phoenix",
		VariantCount: avatardomain.MaxVariantCount + 1,
	})
	assert.ErrorIs(t, err, avatardomain.ErrInvalidVariantCount)
}

func TestUpdateAvatarReplacesRestrictions(t *testing.T) {
	f := newAvatarFixture(t)

	created, err := f.service.Create(context.Background(), avatardomain.CreateAvatarRequest{
		Name:        "phoenix",
		CategoryIDs: []int64{10},
	})
	require.NoError(t, err)

	updated, err := f.service.Update(context.Background(), avatardomain.UpdateAvatarRequest{
		ID: created.ID.String(),
		CreateAvatarRequest: avatardomain.CreateAvatarRequest{
			Name:          "phoenix reborn",
			VariantCount:  3,
			CohortIDs:     []int64{5},
			TotalCapacity: 7,
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "phoenix reborn", updated.Name)
	assert.Equal(t, 3, updated.VariantCount)
	assert.Empty(t, []int64(updated.Pro.CategoryIDs))
	assert.Equal(t, []int64{5}, []int64(updated.Pro.CohortIDs))
	assert.Equal(t, 7, updated.Pro.TotalCapacity)
}

func TestToggleStatusFlips(t *testing.T) {
	f := newAvatarFixture(t)

	created, err := f.service.Create(context.Background(), avatardomain.CreateAvatarRequest{Name: "phoenix"})
	require.NoError(t, err)

	toggled, err := f.service.ToggleStatus(context.Background(), created.ID.String())
	require.NoError(t, err)
	assert.Equal(t, avatardomain.AvatarStatusInactive, toggled.Status)

	toggled, err = f.service.ToggleStatus(context.Background(), created.ID.String())
	require.NoError(t, err)
	assert.Equal(t, avatardomain.AvatarStatusActive, toggled.Status)
}

func TestArchiveRestoreLifecycle(t *testing.T) {
	f := newAvatarFixture(t)

	created, err := f.service.Create(context.Background(), avatardomain.CreateAvatarRequest{Name: "phoenix"})
	require.NoError(t, err)
	id := created.ID.String()

	require.NoError(t, f.service.Archive(context.Background(), id))
	assert.ErrorIs(t, f.service.Archive(context.Background(), id), avatardomain.ErrAlreadyArchived)

	got, err := f.service.GetByID(context.Background(), avatardomain.GetAvatarRequest{ID: id})
	require.NoError(t, err)
	assert.True(t, got.Archived)
	require.NotNil(t, got.ArchivedAt)

	require.NoError(t, f.service.Restore(context.Background(), id))
	assert.ErrorIs(t, f.service.Restore(context.Background(), id), avatardomain.ErrNotArchived)

	got, err = f.service.GetByID(context.Background(), avatardomain.GetAvatarRequest{ID: id})
	require.NoError(t, err)
	assert.False(t, got.Archived)
	assert.Nil(t, got.ArchivedAt)
}

func TestDeleteRemovesAvatar(t *testing.T) {
	f := newAvatarFixture(t)

	created, err := f.service.Create(context.Background(), avatardomain.CreateAvatarRequest{Name: "phoenix"})
	require.NoError(t, err)

	require.NoError(t, f.service.Delete(context.Background(), created.ID.String()))

	_, err = f.service.GetByID(context.Background(), avatardomain.GetAvatarRequest{ID: created.ID.String()})
	assert.ErrorIs(t, err, avatardomain.ErrNotFound)
}

func TestGetByIDErrors(t *testing.T) {
	f := newAvatarFixture(t)

	_, err := f.service.GetByID(context.Background(), avatardomain.GetAvatarRequest{ID: "not-a-snowflake"})
	assert.ErrorIs(t, err, avatardomain.ErrInvalidID)

	_, err = f.service.GetByID(context.Background(), avatardomain.GetAvatarRequest{ID: "123456789"})
	assert.ErrorIs(t, err, avatardomain.ErrNotFound)
}

func TestListPaginatesWithCursor(t *testing.T) {
	f := newAvatarFixture(t)

	want := make([]snowflake.ID, 0, 3)
	for _, name := range []string{"phoenix", "dragon", "kraken"} {
		created, err := f.service.Create(context.Background(), avatardomain.CreateAvatarRequest{Name: name})
		require.NoError(t, err)
		want = append(want, created.ID)
	}

	first, err := f.service.List(context.Background(), avatardomain.ListAvatarRequest{
		Pagination: pagination.Pagination{PageSize: 2},
	})
	require.NoError(t, err)
	require.Len(t, first.Avatars, 2)
	assert.True(t, first.HasMore)
	require.NotEmpty(t, first.NextPageToken)

	second, err := f.service.List(context.Background(), avatardomain.ListAvatarRequest{
		Pagination: pagination.Pagination{PageSize: 2, PageToken: first.NextPageToken},
	})
	require.NoError(t, err)
	require.Len(t, second.Avatars, 1)
	assert.False(t, second.HasMore)

	got := []snowflake.ID{first.Avatars[0].ID, first.Avatars[1].ID, second.Avatars[0].ID}
	assert.ElementsMatch(t, want, got)
}

func TestListRejectsBadPageToken(t *testing.T) {
	f := newAvatarFixture(t)

	_, err := f.service.List(context.Background(), avatardomain.ListAvatarRequest{
		Pagination: pagination.Pagination{PageToken: "not base64!!"},
	})
	assert.ErrorIs(t, err, avatardomain.ErrInvalidPageToken)
}

func TestListFiltersByStatusAndArchived(t *testing.T) {
	f := newAvatarFixture(t)

	active, err := f.service.Create(context.Background(), avatardomain.CreateAvatarRequest{Name: "phoenix"})
	require.NoError(t, err)
	inactive, err := f.service.Create(context.Background(), avatardomain.CreateAvatarRequest{Name: "dragon"})
	require.NoError(t, err)
	archived, err := f.service.Create(context.Background(), avatardomain.CreateAvatarRequest{Name: "kraken"})
	require.NoError(t, err)

	_, err = f.service.ToggleStatus(context.Background(), inactive.ID.String())
	require.NoError(t, err)
	require.NoError(t, f.service.Archive(context.Background(), archived.ID.String()))

	notArchived := false
	resp, err := f.service.List(context.Background(), avatardomain.ListAvatarRequest{
		Archived: &notArchived,
		Status:   avatardomain.AvatarStatusActive,
	})
	require.NoError(t, err)
	require.Len(t, resp.Avatars, 1)
	assert.Equal(t, active.ID, resp.Avatars[0].ID)
}
