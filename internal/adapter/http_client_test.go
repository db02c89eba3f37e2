// SPDX-License-Identifier: Apache-2.0

package adapter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noa10/mataresit-app-sub003/models"
)

func newTestAPI(t *testing.T, serverURL string) *httpRemoteAPI {
	t.Helper()
	api := NewHTTPRemoteAPI(HTTPClientConfig{BaseURL: serverURL, Token: "test-token"})
	return api.(*httpRemoteAPI)
}

func signedToken(t *testing.T, subject string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": subject})
	signed, err := token.SignedString([]byte("test-key"))
	require.NoError(t, err)
	return signed
}

// ── Upsert ──────────────────────────────────────────────────────────────────

func TestUpsert_Success(t *testing.T) {
	var gotPath string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	api := newTestAPI(t, srv.URL)
	err := api.Upsert(context.Background(), models.EntityTypeReceipt, models.RemoteEntity{
		ID:        "r1",
		UpdatedAt: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
		Fields:    map[string]any{"total": 12.5, "merchant": "Acme"},
	})

	require.NoError(t, err)
	assert.Equal(t, "/api/receipts/r1", gotPath)
	// The record is flattened on the wire: envelope columns sit beside
	// domain columns.
	assert.Equal(t, "r1", gotBody["id"])
	assert.Equal(t, 12.5, gotBody["total"])
	assert.Equal(t, "Acme", gotBody["merchant"])
}

func TestUpsert_RemoteRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte("total must be a number"))
	}))
	defer srv.Close()

	api := newTestAPI(t, srv.URL)
	err := api.Upsert(context.Background(), models.EntityTypeReceipt, models.RemoteEntity{ID: "r1"})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRemoteRejected)
}

func TestUpsert_AuthRequired(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	api := newTestAPI(t, srv.URL)
	err := api.Upsert(context.Background(), models.EntityTypeReceipt, models.RemoteEntity{ID: "r1"})

	assert.ErrorIs(t, err, ErrAuthRequired)
}

func TestUpsert_ServerErrorIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	api := newTestAPI(t, srv.URL)
	err := api.Upsert(context.Background(), models.EntityTypeReceipt, models.RemoteEntity{ID: "r1"})

	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestUpsert_ConnectionRefusedIsTransient(t *testing.T) {
	// Point at a server that is already closed.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	api := newTestAPI(t, srv.URL)
	err := api.Upsert(context.Background(), models.EntityTypeReceipt, models.RemoteEntity{ID: "r1"})

	assert.ErrorIs(t, err, ErrUnavailable)
}

// ── Delete ──────────────────────────────────────────────────────────────────

func TestDelete_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/teams/t1", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	api := newTestAPI(t, srv.URL)
	require.NoError(t, api.Delete(context.Background(), models.EntityTypeTeam, "t1"))
}

func TestDelete_NotFoundIsIdempotent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	api := newTestAPI(t, srv.URL)
	assert.NoError(t, api.Delete(context.Background(), models.EntityTypeTeam, "gone"))
}

// ── ListSince ───────────────────────────────────────────────────────────────

func TestListSince_Success(t *testing.T) {
	since := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/receipts", r.URL.Path)
		assert.Equal(t, since.Format(time.RFC3339Nano), r.URL.Query().Get("since"))
		assert.Equal(t, "100", r.URL.Query().Get("limit"))
		assert.Equal(t, "0", r.URL.Query().Get("offset"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"r2","updated_at":"2026-03-05T10:00:00Z","total":7.25,"merchant":"Beta"}]`))
	}))
	defer srv.Close()

	api := newTestAPI(t, srv.URL)
	records, err := api.ListSince(context.Background(), models.EntityTypeReceipt, since, 100, 0)

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "r2", records[0].ID)
	assert.Equal(t, time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC), records[0].UpdatedAt)
	assert.Equal(t, 7.25, records[0].Fields["total"])
	assert.Equal(t, "Beta", records[0].Fields["merchant"])
	// Envelope columns must not leak into the field map.
	assert.NotContains(t, records[0].Fields, "id")
	assert.NotContains(t, records[0].Fields, "updated_at")
}

func TestListSince_ZeroSinceOmitsParam(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.False(t, r.URL.Query().Has("since"))
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	api := newTestAPI(t, srv.URL)
	records, err := api.ListSince(context.Background(), models.EntityTypeReceipt, time.Time{}, 100, 0)

	require.NoError(t, err)
	assert.Empty(t, records)
}

// ── ListIDs / Fetch ─────────────────────────────────────────────────────────

func TestListIDs_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/profiles/ids", r.URL.Path)
		_, _ = w.Write([]byte(`{"ids":["p1","p2"],"more":true}`))
	}))
	defer srv.Close()

	api := newTestAPI(t, srv.URL)
	page, err := api.ListIDs(context.Background(), models.EntityTypeProfile, 2, 0)

	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, page.IDs)
	assert.True(t, page.More)
}

func TestFetch_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/receipts/fetch", r.URL.Path)

		var body map[string][]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []string{"r9"}, body["ids"])

		_, _ = w.Write([]byte(`[{"id":"r9","updated_at":"2026-03-05T10:00:00Z","total":3}]`))
	}))
	defer srv.Close()

	api := newTestAPI(t, srv.URL)
	records, err := api.Fetch(context.Background(), models.EntityTypeReceipt, []string{"r9"})

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "r9", records[0].ID)
}

// ── Principal / Ping ────────────────────────────────────────────────────────

func TestPrincipal_FromTokenSubject(t *testing.T) {
	api := newTestAPI(t, "http://localhost:0")
	api.SetToken(signedToken(t, "user-42"))

	principal, err := api.Principal()
	require.NoError(t, err)
	assert.Equal(t, "user-42", principal)
}

func TestPrincipal_NoToken(t *testing.T) {
	api := newTestAPI(t, "http://localhost:0")
	api.SetToken("")

	_, err := api.Principal()
	assert.ErrorIs(t, err, ErrAuthRequired)
}

func TestPrincipal_MalformedToken(t *testing.T) {
	api := newTestAPI(t, "http://localhost:0")
	api.SetToken("not-a-jwt")

	_, err := api.Principal()
	assert.ErrorIs(t, err, ErrAuthRequired)
}

func TestPing_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	api := newTestAPI(t, srv.URL)
	assert.NoError(t, api.Ping(context.Background()))
}

func TestPing_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	api := newTestAPI(t, srv.URL)
	assert.ErrorIs(t, api.Ping(context.Background()), ErrUnavailable)
}
