// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/noa10/mataresit-app-sub003/internal/logger"
	"github.com/noa10/mataresit-app-sub003/internal/mock"
	"github.com/noa10/mataresit-app-sub003/internal/store"
	"github.com/noa10/mataresit-app-sub003/models"
)

type reconcilerMocks struct {
	entities *mock.MockEntityRepository
	queue    *mock.MockQueueRepository
	settings *mock.MockSettingsRepository
	remote   *mock.MockRemoteAPI
}

func newTestReconciler(t *testing.T) (*reconciler, reconcilerMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := reconcilerMocks{
		entities: mock.NewMockEntityRepository(ctrl),
		queue:    mock.NewMockQueueRepository(ctrl),
		settings: mock.NewMockSettingsRepository(ctrl),
		remote:   mock.NewMockRemoteAPI(ctrl),
	}
	storages := &store.ClientStorages{
		Entities: m.entities,
		Queue:    m.queue,
		Settings: m.settings,
	}
	return newReconciler(storages, m.remote, logger.Nop()), m
}

func remoteReceipt(id string, updatedAt time.Time, merchant string) models.RemoteEntity {
	return models.RemoteEntity{
		ID:        id,
		UpdatedAt: updatedAt,
		Fields:    map[string]any{"merchant": merchant, "total": 10.0},
	}
}

func TestReconcile_AppliesNewRemoteRecord(t *testing.T) {
	r, m := newTestReconciler(t)

	watermark := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	record := remoteReceipt("r-1", watermark.Add(time.Hour), "Tesco")

	m.settings.EXPECT().Watermark(gomock.Any(), models.EntityTypeReceipt).Return(watermark, nil)
	m.remote.EXPECT().
		ListSince(gomock.Any(), models.EntityTypeReceipt, watermark, r.pageSize, 0).
		Return([]models.RemoteEntity{record}, nil)
	m.entities.EXPECT().Get(gomock.Any(), models.EntityTypeReceipt, "r-1").Return(models.Entity{}, store.ErrEntityNotFound)
	m.entities.EXPECT().
		Put(gomock.Any(), models.EntityTypeReceipt, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ models.EntityType, entity models.Entity) error {
			assert.Equal(t, "r-1", entity.ID)
			assert.Equal(t, "Tesco", entity.Fields["merchant"])
			assert.Equal(t, 10.0, entity.Fields["totalAmount"])
			return nil
		})
	m.settings.EXPECT().SetWatermark(gomock.Any(), models.EntityTypeReceipt, gomock.Any()).Return(nil)

	applied, err := r.reconcile(context.Background(), models.EntityTypeReceipt)
	require.NoError(t, err)
	assert.Equal(t, 1, applied)
}

func TestReconcile_LocalNewerSurvives(t *testing.T) {
	r, m := newTestReconciler(t)

	base := time.Date(2026, 8, 21, 12, 0, 0, 0, time.UTC)
	local := models.Entity{ID: "r-1", UpdatedAt: base.Add(time.Minute), Fields: map[string]any{"merchant": "local edit"}}

	m.settings.EXPECT().Watermark(gomock.Any(), models.EntityTypeReceipt).Return(time.Time{}, nil)
	m.remote.EXPECT().
		ListSince(gomock.Any(), models.EntityTypeReceipt, gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]models.RemoteEntity{remoteReceipt("r-1", base, "remote edit")}, nil)
	m.entities.EXPECT().Get(gomock.Any(), models.EntityTypeReceipt, "r-1").Return(local, nil)
	m.entities.EXPECT().
		Put(gomock.Any(), models.EntityTypeReceipt, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ models.EntityType, entity models.Entity) error {
			assert.Equal(t, "local edit", entity.Fields["merchant"])
			return nil
		})
	m.settings.EXPECT().SetWatermark(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	_, err := r.reconcile(context.Background(), models.EntityTypeReceipt)
	require.NoError(t, err)
}

func TestReconcile_PaginatesUntilShortPage(t *testing.T) {
	r, m := newTestReconciler(t)
	r.pageSize = 2

	stamp := time.Date(2026, 8, 21, 12, 0, 0, 0, time.UTC)
	page1 := []models.RemoteEntity{remoteReceipt("r-1", stamp, "a"), remoteReceipt("r-2", stamp, "b")}
	page2 := []models.RemoteEntity{remoteReceipt("r-3", stamp, "c")}

	m.settings.EXPECT().Watermark(gomock.Any(), models.EntityTypeReceipt).Return(time.Time{}, nil)
	gomock.InOrder(
		m.remote.EXPECT().ListSince(gomock.Any(), models.EntityTypeReceipt, gomock.Any(), 2, 0).Return(page1, nil),
		m.remote.EXPECT().ListSince(gomock.Any(), models.EntityTypeReceipt, gomock.Any(), 2, 2).Return(page2, nil),
	)
	m.entities.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(models.Entity{}, store.ErrEntityNotFound).Times(3)
	m.entities.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(3)
	m.settings.EXPECT().SetWatermark(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	applied, err := r.reconcile(context.Background(), models.EntityTypeReceipt)
	require.NoError(t, err)
	assert.Equal(t, 3, applied)
}

func TestReconcile_WatermarkCapturedBeforeFetch(t *testing.T) {
	r, m := newTestReconciler(t)

	before := time.Now().UTC()

	m.settings.EXPECT().Watermark(gomock.Any(), models.EntityTypeReceipt).Return(time.Time{}, nil)
	m.remote.EXPECT().
		ListSince(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, models.EntityType, time.Time, int, int) ([]models.RemoteEntity, error) {
			// A slow fetch must not push the watermark past the pass start.
			time.Sleep(20 * time.Millisecond)
			return nil, nil
		})

	var recorded time.Time
	m.settings.EXPECT().
		SetWatermark(gomock.Any(), models.EntityTypeReceipt, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ models.EntityType, t time.Time) error {
			recorded = t
			return nil
		})

	_, err := r.reconcile(context.Background(), models.EntityTypeReceipt)
	require.NoError(t, err)

	assert.False(t, recorded.Before(before))
	assert.True(t, time.Since(recorded) >= 20*time.Millisecond, "watermark must predate the fetch")
}

func TestSweep_ReenqueuesLocalOnlyEntities(t *testing.T) {
	r, m := newTestReconciler(t)

	local := models.Entity{
		ID:        "r-1",
		UpdatedAt: time.Date(2026, 8, 21, 9, 0, 0, 0, time.UTC),
		Fields:    map[string]any{"merchant": "Tesco"},
	}

	m.remote.EXPECT().ListIDs(gomock.Any(), gomock.Any(), gomock.Any(), 0).Return(models.RemoteIDPage{}, nil).Times(3)
	m.entities.EXPECT().GetAllIDs(gomock.Any(), models.EntityTypeReceipt).Return([]string{"r-1"}, nil)
	m.entities.EXPECT().GetAllIDs(gomock.Any(), models.EntityTypeTeam).Return(nil, nil)
	m.entities.EXPECT().GetAllIDs(gomock.Any(), models.EntityTypeProfile).Return(nil, nil)
	m.entities.EXPECT().Get(gomock.Any(), models.EntityTypeReceipt, "r-1").Return(local, nil)

	m.queue.EXPECT().
		Enqueue(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, item models.SyncQueueItem) error {
			assert.Equal(t, models.OperationCreate, item.Operation)
			assert.Equal(t, "r-1", item.EntityID)
			assert.Equal(t, "Tesco", item.Payload["merchant"])
			assert.Equal(t, local.UpdatedAt.Format(time.RFC3339Nano), item.Payload["updatedAt"])
			return nil
		})

	require.NoError(t, r.sweep(context.Background()))
}

func TestSweep_FetchesRemoteOnlyEntities(t *testing.T) {
	r, m := newTestReconciler(t)

	record := remoteReceipt("r-9", time.Date(2026, 8, 21, 9, 0, 0, 0, time.UTC), "Watsons")

	m.remote.EXPECT().ListIDs(gomock.Any(), models.EntityTypeReceipt, gomock.Any(), 0).Return(models.RemoteIDPage{IDs: []string{"r-9"}}, nil)
	m.remote.EXPECT().ListIDs(gomock.Any(), models.EntityTypeTeam, gomock.Any(), 0).Return(models.RemoteIDPage{}, nil)
	m.remote.EXPECT().ListIDs(gomock.Any(), models.EntityTypeProfile, gomock.Any(), 0).Return(models.RemoteIDPage{}, nil)
	m.entities.EXPECT().GetAllIDs(gomock.Any(), gomock.Any()).Return(nil, nil).Times(3)

	m.remote.EXPECT().Fetch(gomock.Any(), models.EntityTypeReceipt, []string{"r-9"}).Return([]models.RemoteEntity{record}, nil)
	m.entities.EXPECT().Get(gomock.Any(), models.EntityTypeReceipt, "r-9").Return(models.Entity{}, store.ErrEntityNotFound)
	m.entities.EXPECT().
		Put(gomock.Any(), models.EntityTypeReceipt, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ models.EntityType, entity models.Entity) error {
			assert.Equal(t, "r-9", entity.ID)
			assert.Equal(t, "Watsons", entity.Fields["merchant"])
			return nil
		})

	require.NoError(t, r.sweep(context.Background()))
}

func TestSweep_PaginatesRemoteIDListing(t *testing.T) {
	r, m := newTestReconciler(t)
	r.pageSize = 2

	gomock.InOrder(
		m.remote.EXPECT().ListIDs(gomock.Any(), models.EntityTypeReceipt, 2, 0).Return(models.RemoteIDPage{IDs: []string{"r-1", "r-2"}, More: true}, nil),
		m.remote.EXPECT().ListIDs(gomock.Any(), models.EntityTypeReceipt, 2, 2).Return(models.RemoteIDPage{IDs: []string{"r-3"}}, nil),
	)

	ids, err := r.listAllRemoteIDs(context.Background(), models.EntityTypeReceipt)
	require.NoError(t, err)
	assert.Equal(t, []string{"r-1", "r-2", "r-3"}, ids)
}
