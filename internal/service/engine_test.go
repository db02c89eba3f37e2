// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/noa10/mataresit-app-sub003/internal/adapter"
	"github.com/noa10/mataresit-app-sub003/internal/logger"
	"github.com/noa10/mataresit-app-sub003/internal/mock"
	"github.com/noa10/mataresit-app-sub003/internal/store"
	"github.com/noa10/mataresit-app-sub003/models"
)

type engineMocks struct {
	entities *mock.MockEntityRepository
	queue    *mock.MockQueueRepository
	settings *mock.MockSettingsRepository
	dead     *mock.MockDeadLetterRepository
	remote   *mock.MockRemoteAPI
	online   *mock.MockOnlineChecker
}

func newTestEngine(t *testing.T) (*syncEngine, engineMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := engineMocks{
		entities: mock.NewMockEntityRepository(ctrl),
		queue:    mock.NewMockQueueRepository(ctrl),
		settings: mock.NewMockSettingsRepository(ctrl),
		dead:     mock.NewMockDeadLetterRepository(ctrl),
		remote:   mock.NewMockRemoteAPI(ctrl),
		online:   mock.NewMockOnlineChecker(ctrl),
	}
	storages := &store.ClientStorages{
		Entities:    m.entities,
		Queue:       m.queue,
		Settings:    m.settings,
		DeadLetters: m.dead,
	}
	engine := NewSyncEngine(storages, m.remote, m.online, 5*time.Second, logger.Nop()).(*syncEngine)
	return engine, m
}

// expectQuietReconcile stubs the shared plumbing of a successful pass: a
// resolvable principal and no remote changes in any collection.
func expectQuietReconcile(m engineMocks) {
	m.remote.EXPECT().Principal().Return("user-1", nil).AnyTimes()
	m.settings.EXPECT().Watermark(gomock.Any(), gomock.Any()).Return(time.Time{}, nil).AnyTimes()
	m.remote.EXPECT().ListSince(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()
	m.settings.EXPECT().SetWatermark(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	m.settings.EXPECT().SetLastSyncAt(gomock.Any(), gomock.Any()).Return(nil)
}

func queuedCreate(id, entityID string, retries int) models.SyncQueueItem {
	return models.SyncQueueItem{
		ID:         id,
		Operation:  models.OperationCreate,
		EntityType: models.EntityTypeReceipt,
		EntityID:   entityID,
		Payload:    map[string]any{"merchant": "Tesco", "totalAmount": 12.5},
		EnqueuedAt: time.Date(2026, 8, 21, 8, 0, 0, 0, time.UTC),
		RetryCount: retries,
	}
}

func TestRunPass_DrainsQueueInOrder(t *testing.T) {
	engine, m := newTestEngine(t)

	first := queuedCreate("q-1", "r-1", 0)
	second := models.SyncQueueItem{
		ID:         "q-2",
		Operation:  models.OperationDelete,
		EntityType: models.EntityTypeTeam,
		EntityID:   "t-9",
		EnqueuedAt: time.Date(2026, 8, 21, 8, 1, 0, 0, time.UTC),
	}
	m.queue.EXPECT().PeekAll(gomock.Any()).Return([]models.SyncQueueItem{first, second}, nil)

	gomock.InOrder(
		m.remote.EXPECT().
			Upsert(gomock.Any(), models.EntityTypeReceipt, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ models.EntityType, record models.RemoteEntity) error {
				assert.Equal(t, "r-1", record.ID)
				assert.Equal(t, 12.5, record.Fields["total"])
				assert.True(t, record.UpdatedAt.Equal(first.EnqueuedAt))
				return nil
			}),
		m.queue.EXPECT().Remove(gomock.Any(), "q-1").Return(nil),
		m.remote.EXPECT().Delete(gomock.Any(), models.EntityTypeTeam, "t-9").Return(nil),
		m.queue.EXPECT().Remove(gomock.Any(), "q-2").Return(nil),
	)
	expectQuietReconcile(m)

	require.NoError(t, engine.RunPass(context.Background()))
}

func TestRunPass_RejectedMovesToDeadLettersImmediately(t *testing.T) {
	engine, m := newTestEngine(t)

	item := queuedCreate("q-1", "r-1", 0)
	m.queue.EXPECT().PeekAll(gomock.Any()).Return([]models.SyncQueueItem{item}, nil)
	m.remote.EXPECT().Upsert(gomock.Any(), gomock.Any(), gomock.Any()).Return(adapter.ErrRemoteRejected)

	var parked models.DeadLetterItem
	m.dead.EXPECT().
		Add(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, dl models.DeadLetterItem) error {
			parked = dl
			return nil
		})
	m.queue.EXPECT().Remove(gomock.Any(), "q-1").Return(nil)
	expectQuietReconcile(m)

	require.NoError(t, engine.RunPass(context.Background()))

	assert.Equal(t, "q-1", parked.QueueItemID)
	assert.Equal(t, 1, parked.Attempts)
	assert.Contains(t, parked.Reason, adapter.ErrRemoteRejected.Error())
	assert.Equal(t, item.Payload, parked.Payload)
	assert.False(t, parked.FailedAt.IsZero())
}

func TestRunPass_TransientFailureRetriesNextPass(t *testing.T) {
	engine, m := newTestEngine(t)

	item := queuedCreate("q-1", "r-1", 0)
	m.queue.EXPECT().PeekAll(gomock.Any()).Return([]models.SyncQueueItem{item}, nil)
	m.remote.EXPECT().Upsert(gomock.Any(), gomock.Any(), gomock.Any()).Return(adapter.ErrUnavailable)
	m.queue.EXPECT().IncrementRetry(gomock.Any(), "q-1").Return(1, nil)
	// No Remove, no dead letter: the item stays queued and the pass goes on.
	expectQuietReconcile(m)

	require.NoError(t, engine.RunPass(context.Background()))
}

func TestRunPass_RetryCeilingMovesToDeadLetters(t *testing.T) {
	engine, m := newTestEngine(t)

	item := queuedCreate("q-1", "r-1", 2)
	m.queue.EXPECT().PeekAll(gomock.Any()).Return([]models.SyncQueueItem{item}, nil)
	m.remote.EXPECT().Upsert(gomock.Any(), gomock.Any(), gomock.Any()).Return(adapter.ErrUnavailable)
	m.queue.EXPECT().IncrementRetry(gomock.Any(), "q-1").Return(3, nil)

	var parked models.DeadLetterItem
	m.dead.EXPECT().
		Add(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, dl models.DeadLetterItem) error {
			parked = dl
			return nil
		})
	m.queue.EXPECT().Remove(gomock.Any(), "q-1").Return(nil)
	expectQuietReconcile(m)

	require.NoError(t, engine.RunPass(context.Background()))
	assert.Equal(t, 3, parked.Attempts)
}

func TestRunPass_AuthFailureAbortsPass(t *testing.T) {
	engine, m := newTestEngine(t)

	statuses, cancel := engine.SubscribeStatus()
	defer cancel()

	m.remote.EXPECT().Principal().Return("user-1", nil)
	m.queue.EXPECT().PeekAll(gomock.Any()).Return([]models.SyncQueueItem{queuedCreate("q-1", "r-1", 0)}, nil)
	m.remote.EXPECT().Upsert(gomock.Any(), gomock.Any(), gomock.Any()).Return(adapter.ErrAuthRequired)
	// No reconcile, no retry bookkeeping: the item stays queued untouched.

	err := engine.RunPass(context.Background())
	require.ErrorIs(t, err, adapter.ErrAuthRequired)

	assert.Equal(t, models.SyncStatusSyncing, <-statuses)
	assert.Equal(t, models.SyncStatusFailed, <-statuses)
	assert.Equal(t, models.SyncStatusIdle, <-statuses)
}

func TestRunPass_UnresolvablePrincipalAbortsBeforePush(t *testing.T) {
	engine, m := newTestEngine(t)

	m.remote.EXPECT().Principal().Return("", adapter.ErrAuthRequired)
	// No PeekAll, no ListSince: nothing runs without a usable token.

	err := engine.RunPass(context.Background())
	require.ErrorIs(t, err, adapter.ErrAuthRequired)
}

func TestRunPass_StatusTransitionsOnSuccess(t *testing.T) {
	engine, m := newTestEngine(t)

	statuses, cancel := engine.SubscribeStatus()
	defer cancel()

	m.queue.EXPECT().PeekAll(gomock.Any()).Return(nil, nil)
	expectQuietReconcile(m)

	require.NoError(t, engine.RunPass(context.Background()))

	assert.Equal(t, models.SyncStatusSyncing, <-statuses)
	assert.Equal(t, models.SyncStatusCompleted, <-statuses)
	assert.Equal(t, models.SyncStatusIdle, <-statuses)
	assert.Equal(t, models.SyncStatusIdle, engine.Status())
}

func TestRunPass_SecondPassRejectedWhileInFlight(t *testing.T) {
	engine, _ := newTestEngine(t)

	engine.inFlight.Store(true)
	defer engine.inFlight.Store(false)

	err := engine.RunPass(context.Background())
	assert.ErrorIs(t, err, ErrPassInFlight)
}

func TestTriggerSync_DroppedWhileInFlight(t *testing.T) {
	engine, _ := newTestEngine(t)

	engine.inFlight.Store(true)
	defer engine.inFlight.Store(false)

	// Mocks have no expectations: a spawned pass would fail the test.
	engine.TriggerSync("enqueue")
}

func TestForceFullResync_ClearsWatermarks(t *testing.T) {
	engine, m := newTestEngine(t)

	m.settings.EXPECT().ResetWatermarks(gomock.Any()).Return(nil)

	// Suppress the follow-up pass so the test stays synchronous.
	engine.inFlight.Store(true)
	defer engine.inFlight.Store(false)

	require.NoError(t, engine.ForceFullResync(context.Background()))
}

func TestStartupSweep_RunsOnlyOnce(t *testing.T) {
	engine, m := newTestEngine(t)

	for _, entityType := range models.EntityTypes() {
		m.remote.EXPECT().ListIDs(gomock.Any(), entityType, gomock.Any(), 0).Return(models.RemoteIDPage{}, nil)
		m.entities.EXPECT().GetAllIDs(gomock.Any(), entityType).Return(nil, nil)
	}

	engine.inFlight.Store(true)
	defer engine.inFlight.Store(false)

	require.NoError(t, engine.StartupSweep(context.Background()))
	// Second call is a no-op; Times(1) expectations above enforce it.
	require.NoError(t, engine.StartupSweep(context.Background()))
}

func TestSnapshot(t *testing.T) {
	engine, m := newTestEngine(t)

	lastSync := time.Date(2026, 8, 21, 7, 45, 0, 0, time.UTC)
	m.queue.EXPECT().PendingCount(gomock.Any()).Return(2, nil)
	m.dead.EXPECT().Count(gomock.Any()).Return(1, nil)
	m.settings.EXPECT().LastSyncAt(gomock.Any()).Return(lastSync, nil)
	m.online.EXPECT().IsOnline().Return(true)

	snapshot, err := engine.Snapshot(context.Background())
	require.NoError(t, err)

	assert.Equal(t, models.SyncSnapshot{
		PendingCount:    2,
		DeadLetterCount: 1,
		LastSyncAt:      lastSync,
		IsOnline:        true,
	}, snapshot)
}
