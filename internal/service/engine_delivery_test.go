// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/noa10/mataresit-app-sub003/internal/adapter"
	"github.com/noa10/mataresit-app-sub003/internal/config"
	devhttp "github.com/noa10/mataresit-app-sub003/internal/handler/http"
	"github.com/noa10/mataresit-app-sub003/internal/logger"
	"github.com/noa10/mataresit-app-sub003/internal/mock"
	"github.com/noa10/mataresit-app-sub003/internal/store"
	"github.com/noa10/mataresit-app-sub003/models"
)

// lostAckHandler lets the first upsert through to the real handler but
// swallows its response, answering 503 instead. The write is applied
// remotely while the client believes it failed — exactly the situation
// at-least-once delivery has to survive.
type lostAckHandler struct {
	next http.Handler

	mu        sync.Mutex
	swallowed bool
}

func (l *lostAckHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPut {
		l.mu.Lock()
		first := !l.swallowed
		l.swallowed = true
		l.mu.Unlock()
		if first {
			l.next.ServeHTTP(httptest.NewRecorder(), r)
			http.Error(w, "gateway hiccup", http.StatusServiceUnavailable)
			return
		}
	}
	l.next.ServeHTTP(w, r)
}

// TestRunPass_LostAckRedeliveryConverges drives the engine against the real
// dev server. The first pass applies the upsert remotely but loses the ack,
// so the item stays queued; the second pass redelivers it. The redelivery is
// a no-op: the remote ends up with a single record identical to the state
// after the lost-ack push.
func TestRunPass_LostAckRedeliveryConverges(t *testing.T) {
	const (
		signKey = "delivery-sign-key"
		issuer  = "mataresit-dev"
	)

	h := devhttp.NewHandler(config.Server{
		TokenSignKey: signKey,
		TokenIssuer:  issuer,
	}, logger.Nop())
	srv := httptest.NewServer(&lostAckHandler{next: h.Init()})
	t.Cleanup(srv.Close)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1",
		"iss": issuer,
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(signKey))
	require.NoError(t, err)

	remote := adapter.NewHTTPRemoteAPI(adapter.HTTPClientConfig{
		BaseURL: srv.URL,
		Token:   token,
		Timeout: 5 * time.Second,
	})

	ctrl := gomock.NewController(t)
	queue := mock.NewMockQueueRepository(ctrl)
	settings := mock.NewMockSettingsRepository(ctrl)
	entities := mock.NewMockEntityRepository(ctrl)
	storages := &store.ClientStorages{
		Entities:    entities,
		Queue:       queue,
		Settings:    settings,
		DeadLetters: mock.NewMockDeadLetterRepository(ctrl),
	}
	engine := NewSyncEngine(storages, remote, mock.NewMockOnlineChecker(ctrl), 5*time.Second, logger.Nop())

	item := queuedCreate("q-1", "r-1", 0)
	retried := item
	retried.RetryCount = 1

	// First pass: 503 on the push, item retried instead of removed.
	queue.EXPECT().PeekAll(gomock.Any()).Return([]models.SyncQueueItem{item}, nil)
	queue.EXPECT().IncrementRetry(gomock.Any(), "q-1").Return(1, nil)
	// Second pass: redelivery succeeds and the item leaves the queue.
	queue.EXPECT().PeekAll(gomock.Any()).Return([]models.SyncQueueItem{retried}, nil)
	queue.EXPECT().Remove(gomock.Any(), "q-1").Return(nil)

	settings.EXPECT().Watermark(gomock.Any(), gomock.Any()).Return(time.Time{}, nil).AnyTimes()
	settings.EXPECT().SetWatermark(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	settings.EXPECT().SetLastSyncAt(gomock.Any(), gomock.Any()).Return(nil).Times(2)
	entities.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(models.Entity{}, store.ErrEntityNotFound).AnyTimes()
	entities.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	ctx := context.Background()
	listRemote := func() []models.RemoteEntity {
		records, err := remote.ListSince(ctx, models.EntityTypeReceipt, time.Time{}, 10, 0)
		require.NoError(t, err)
		return records
	}

	require.NoError(t, engine.RunPass(ctx))
	afterLostAck := listRemote()
	require.Len(t, afterLostAck, 1, "write must have been applied despite the lost ack")

	require.NoError(t, engine.RunPass(ctx))
	afterRedelivery := listRemote()
	require.Len(t, afterRedelivery, 1, "redelivery must not duplicate the record")

	assert.Equal(t, afterLostAck, afterRedelivery)
	assert.Equal(t, "r-1", afterRedelivery[0].ID)
	assert.Equal(t, 12.5, afterRedelivery[0].Fields["total"])
}
