package appwrite

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"fieldops.service/internal/core/model"
	"fieldops.service/internal/ports/backend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{
		Endpoint:    srv.URL + "/v1",
		ProjectID:   "proj",
		DatabaseID:  "db1",
		Collections: map[string]string{backend.CheckIns: "col-checkins"},
	})
	require.NoError(t, err)
	return c
}

func TestListDocumentsEncodesQueries(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/databases/db1/collections/col-checkins/documents", r.URL.Path)
		assert.Equal(t, "proj", r.Header.Get("X-Appwrite-Project"))
		assert.Equal(t, []string{
			`{"method":"equal","attribute":"workerId","values":["w1"]}`,
			`{"method":"orderDesc","attribute":"timestamp"}`,
			`{"method":"limit","values":[10]}`,
		}, r.URL.Query()["queries[]"])

		w.Write([]byte(`{"total":12,"documents":[{
			"$id":"ci1","$collectionId":"col-checkins","$createdAt":"2024-04-18T08:30:00.000+00:00",
			"$updatedAt":"2024-04-18T08:30:00.000+00:00","workerId":"w1","workerName":"John Smith",
			"type":"check-in","timestamp":"2024-04-18T08:30:00Z","location":{"latitude":1,"longitude":2}}]}`))
	}))

	list, err := c.ListDocuments(context.Background(), backend.CheckIns,
		backend.NewQuery().Equal("workerId", "w1").OrderDesc("timestamp").WithLimit(10))
	require.NoError(t, err)
	assert.Equal(t, 12, list.Total)
	require.Len(t, list.Documents, 1)

	var ci model.CheckIn
	require.NoError(t, backend.Decode(list.Documents[0], &ci))
	assert.Equal(t, "ci1", ci.ID)
	assert.Equal(t, model.TypeCheckIn, ci.Type)
	assert.Equal(t, 2024, list.Documents[0].CreatedAt.Year())

	var data map[string]any
	require.NoError(t, json.Unmarshal(list.Documents[0].Data, &data))
	assert.NotContains(t, data, "$collectionId")
}

func TestCreateDocumentSendsDataWithoutSystemFields(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var body struct {
			DocumentID string         `json:"documentId"`
			Data       map[string]any `json:"data"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, backend.AutoID, body.DocumentID)
		assert.Equal(t, "Ann", body.Data["name"])
		assert.NotContains(t, body.Data, "$id")

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"$id":"new1","name":"Ann"}`))
	}))

	doc, err := c.CreateDocument(context.Background(), backend.Workers, backend.AutoID, model.Worker{ID: "ignored", Name: "Ann"})
	require.NoError(t, err)
	assert.Equal(t, "new1", doc.ID)
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"not found", http.StatusNotFound, backend.ErrNotFound},
		{"unauthorized", http.StatusUnauthorized, backend.ErrUnauthorized},
		{"forbidden", http.StatusForbidden, backend.ErrUnauthorized},
		{"conflict", http.StatusConflict, backend.ErrConflict},
		{"server error", http.StatusInternalServerError, backend.ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(`{"message":"boom","code":1,"type":"general"}`))
			}))
			err := c.DeleteDocument(context.Background(), backend.Workers, "w1")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSessionFallbackCookiesAreReplayed(t *testing.T) {
	var sawCookie atomic.Bool
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/account/sessions/email", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(fallbackCookiesHeader, `{"a_session_proj":"secret"}`)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"$id":"s1","userId":"u1","expire":"2030-01-01T00:00:00.000+00:00"}`))
	})
	mux.HandleFunc("/v1/account", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(fallbackCookiesHeader) == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		sawCookie.Store(true)
		w.Write([]byte(`{"$id":"u1","name":"Ann","email":"ann@example.com"}`))
	})
	mux.HandleFunc("/v1/account/sessions/current", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	c := newTestClient(t, mux)
	ctx := context.Background()

	_, err := c.CurrentUser(ctx)
	require.ErrorIs(t, err, backend.ErrUnauthorized)

	session, err := c.CreateSession(ctx, "ann@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "u1", session.UserID)

	user, err := c.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Ann", user.Name)
	assert.True(t, sawCookie.Load())

	require.NoError(t, c.DeleteSession(ctx))
	_, err = c.CurrentUser(ctx)
	assert.ErrorIs(t, err, backend.ErrUnauthorized)
}

func TestCircuitBreakerOpensOnServerErrors(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		_, err := c.GetDocument(ctx, backend.Workers, "w1")
		require.ErrorIs(t, err, backend.ErrUnavailable)
	}
	require.Equal(t, int32(10), hits.Load())

	_, err := c.GetDocument(ctx, backend.Workers, "w1")
	assert.ErrorIs(t, err, backend.ErrUnavailable)
	assert.Equal(t, int32(10), hits.Load(), "open breaker must not reach the server")
}

func TestNotFoundDoesNotTripBreaker(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))

	for i := 0; i < 15; i++ {
		_, err := c.GetDocument(context.Background(), backend.Workers, "missing")
		require.ErrorIs(t, err, backend.ErrNotFound)
	}
	assert.Equal(t, int32(15), hits.Load())
}
