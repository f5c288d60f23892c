package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dkeye/Tracklist/internal/adapters/signal"
	"github.com/dkeye/Tracklist/internal/app"
	"github.com/dkeye/Tracklist/internal/app/orch"
	"github.com/dkeye/Tracklist/internal/config"
	"github.com/dkeye/Tracklist/internal/domain"
	"github.com/dkeye/Tracklist/internal/ledger"
	"github.com/dkeye/Tracklist/internal/metrics"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	router *gin.Engine
	store  *ledger.Memory
	orch   *orch.Orchestrator
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store := ledger.NewMemory()
	reg := prometheus.NewRegistry()
	m, err := metrics.NewPrometheus(reg)
	require.NoError(t, err)
	o := &orch.Orchestrator{
		Registry: app.NewRegistry(),
		Rooms:    app.NewRoomManager(),
		Members:  app.NewMembershipTracker(),
		Ledger:   store,
		Policy:   app.SimplePolicy{},
		Metrics:  m,
	}
	cfg := &config.Config{Mode: "test", Secret: "test-secret"}
	r := SetupRouter(context.Background(), cfg, Deps{
		Orch:      o,
		Directory: store,
		Signal:    signal.NewSignalWSController(o, nil, m, signal.Options{}),
		Metrics:   promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	})
	return fixture{router: r, store: store, orch: o}
}

func (f fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestClientTokenSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(sessions.Sessions(sessionName, newSessionStore("test-secret")))
	r.Use(ClientTokenMiddleware())
	r.GET("/token", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(clientTokenKey))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/token", nil))
	require.Equal(t, http.StatusOK, w.Code)
	first := w.Body.String()
	require.NotEmpty(t, first)

	var session *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == sessionName {
			session = c
		}
	}
	require.NotNil(t, session, "session cookie is set")
	assert.True(t, session.HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/token", nil)
	req.AddCookie(session)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, first, w.Body.String(), "same browser keeps its token")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/token", nil))
	assert.NotEqual(t, first, w.Body.String(), "new browser gets a new token")
}

func TestCreateRoom(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/api/rooms", map[string]string{"hostId": "host-1"})
	require.Equal(t, http.StatusCreated, w.Code)
	var room domain.Room
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &room))
	_, err := domain.ParseRoomCode(string(room.Code))
	assert.NoError(t, err)
	assert.Len(t, string(room.Code), domain.GeneratedCodeLen)
	assert.Equal(t, domain.VoterID("host-1"), room.HostID)

	w = f.do(t, http.MethodPost, "/api/rooms", map[string]string{"hostId": "host-1", "code": "AB12"})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = f.do(t, http.MethodPost, "/api/rooms", map[string]string{"hostId": "host-2", "code": "AB12"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = f.do(t, http.MethodGet, "/api/rooms/AB12", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &room))
	assert.Equal(t, domain.VoterID("host-1"), room.HostID)
}

func TestCreateRoom_BadRequests(t *testing.T) {
	f := newFixture(t)
	cases := map[string]any{
		"missing host":   map[string]string{"code": "AB12"},
		"lowercase code": map[string]string{"hostId": "h", "code": "ab12"},
		"too long":       map[string]string{"hostId": "h", "code": "ABCDEFGHI"},
		"too short":      map[string]string{"hostId": "h", "code": "A"},
		"symbols":        map[string]string{"hostId": "h", "code": "AB-1"},
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			w := f.do(t, http.MethodPost, "/api/rooms", body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestGetRoom_NotFound(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodGet, "/api/rooms/NOPE", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLeaderboard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, v := range []struct{ track, voter string }{{"t1", "u1"}, {"t1", "u2"}, {"t2", "u1"}, {"t3", "u3"}} {
		_, err := f.store.CastVote(ctx, "AB12", domain.TrackID(v.track), domain.VoterID(v.voter))
		require.NoError(t, err)
	}

	w := f.do(t, http.MethodGet, "/api/rooms/AB12/leaderboard?limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"roomCode":"AB12","entries":[{"trackId":"t1","count":2},{"trackId":"t2","count":1}]}`, w.Body.String())

	w = f.do(t, http.MethodGet, "/api/rooms/EMPTY/leaderboard", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"roomCode":"EMPTY","entries":[]}`, w.Body.String())

	w = f.do(t, http.MethodGet, "/api/rooms/AB12/leaderboard?limit=zero", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMembersAndList(t *testing.T) {
	f := newFixture(t)
	f.orch.Members.Join("XY9", "u1", "Alice")

	w := f.do(t, http.MethodGet, "/api/rooms/XY9/members", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"roomCode":"XY9","users":[{"voterIdentity":"u1","label":"Alice"}]}`, w.Body.String())

	f.orch.Rooms.GetOrCreate("XY9")
	w = f.do(t, http.MethodGet, "/api/rooms", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"rooms":[{"roomCode":"XY9","connections":0}]}`, w.Body.String())
}

func TestEvictRoom(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodDelete, "/api/rooms/XY9", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t)
	f.orch.Metrics.VoteCast(metrics.OutcomeRecorded)

	w := f.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `tracklist_votes_total{outcome="recorded"} 1`)
}
