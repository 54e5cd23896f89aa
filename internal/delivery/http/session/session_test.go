package http_session_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	http_common "github.com/NicolasKocher/sprint-poker/internal/delivery/http/common"
	http_init "github.com/NicolasKocher/sprint-poker/internal/delivery/http/init"
	http_session "github.com/NicolasKocher/sprint-poker/internal/delivery/http/session"
	infra_memory_session "github.com/NicolasKocher/sprint-poker/internal/infra/memory/session"
	"github.com/NicolasKocher/sprint-poker/internal/model"
	usecase_session "github.com/NicolasKocher/sprint-poker/internal/usecase/session"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T) *gin.Engine {
	return newEngineWithStore(t, infra_memory_session.New())
}

func newEngineWithStore(t *testing.T, store usecase_session.SessionRepository) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	usecase := usecase_session.New(store, nil)
	pool := http_init.NewControllerPool()
	pool.Add(http_session.New(usecase))
	pool.Register()
	return pool.Engine()
}

// brokenStore fails every operation, standing in for an unreachable backend.
type brokenStore struct {
	err error
}

func (s brokenStore) Load(_ context.Context, _ model.RoomCode) (model.Session, error) {
	return model.Session{}, s.err
}

func (s brokenStore) Save(_ context.Context, _ model.Session) error {
	return s.err
}

func (s brokenStore) Delete(_ context.Context, _ model.RoomCode) error {
	return s.err
}

func do(engine *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func decodeSession(t *testing.T, rec *httptest.ResponseRecorder) model.Session {
	t.Helper()
	var session model.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))
	return session
}

func TestGetUnknownRoom(t *testing.T) {
	engine := newEngine(t)

	rec := do(engine, http.MethodGet, "/api/v1/sessions/ABC123", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Session not found")
}

func TestCreateNormalizesCode(t *testing.T) {
	engine := newEngine(t)

	rec := do(engine, http.MethodPost, "/api/v1/sessions/abc123",
		`{"action":"create","user":{"id":"HOST00000001","name":"Alice"}}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	session := decodeSession(t, rec)
	assert.Equal(t, model.RoomCode("ABC123"), session.ID)
	assert.Equal(t, "HOST00000001", session.HostID)
	assert.Equal(t, model.StateIdle, session.GameState)

	rec = do(engine, http.MethodGet, "/api/v1/sessions/ABC123", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestInvalidRoomCode(t *testing.T) {
	engine := newEngine(t)

	rec := do(engine, http.MethodGet, "/api/v1/sessions/nope", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid room code")
}

func TestMalformedBody(t *testing.T) {
	engine := newEngine(t)

	rec := do(engine, http.MethodPost, "/api/v1/sessions/ABC123", `{"action":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid request format")
}

func TestUnknownAction(t *testing.T) {
	engine := newEngine(t)

	rec := do(engine, http.MethodPost, "/api/v1/sessions/ABC123", `{"action":"explode"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unknown action")
}

func TestCreateRequiresUser(t *testing.T) {
	engine := newEngine(t)

	rec := do(engine, http.MethodPost, "/api/v1/sessions/ABC123", `{"action":"create"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid user data")
}

func TestVoteOutsideVotingNamesState(t *testing.T) {
	engine := newEngine(t)
	do(engine, http.MethodPost, "/api/v1/sessions/ABC123",
		`{"action":"create","user":{"id":"HOST00000001","name":"Alice"}}`)

	rec := do(engine, http.MethodPost, "/api/v1/sessions/ABC123",
		`{"action":"vote","userId":"HOST00000001","size":"M"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), string(model.StateIdle))
}

func TestFullRoundOverHTTP(t *testing.T) {
	engine := newEngine(t)

	rec := do(engine, http.MethodPost, "/api/v1/sessions/ABC123",
		`{"action":"create","user":{"id":"HOST00000001","name":"Alice"}}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(engine, http.MethodPost, "/api/v1/sessions/ABC123",
		`{"action":"join","user":{"id":"USER00000002","name":"Bob"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeSession(t, rec).Participants, 2)

	rec = do(engine, http.MethodPost, "/api/v1/sessions/ABC123", `{"action":"startVoting"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	session := decodeSession(t, rec)
	assert.Equal(t, model.StateVoting, session.GameState)
	assert.NotNil(t, session.VotingStartTime)

	rec = do(engine, http.MethodPost, "/api/v1/sessions/ABC123",
		`{"action":"vote","userId":"HOST00000001","size":"M"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(engine, http.MethodPost, "/api/v1/sessions/ABC123",
		`{"action":"vote","userId":"USER00000002","size":"L"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(engine, http.MethodPost, "/api/v1/sessions/ABC123", `{"action":"finishVoting"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	session = decodeSession(t, rec)
	assert.Equal(t, model.StateFinished, session.GameState)
	assert.Len(t, session.Votes, 2)
	assert.Nil(t, session.VotingStartTime)

	rec = do(engine, http.MethodPost, "/api/v1/sessions/ABC123", `{"action":"resetVoting"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	session = decodeSession(t, rec)
	assert.Equal(t, model.StateIdle, session.GameState)
	assert.Empty(t, session.Votes)
}

func TestLeaveLastParticipantDeletesRoom(t *testing.T) {
	engine := newEngine(t)
	do(engine, http.MethodPost, "/api/v1/sessions/ABC123",
		`{"action":"create","user":{"id":"HOST00000001","name":"Alice"}}`)

	rec := do(engine, http.MethodPost, "/api/v1/sessions/ABC123",
		`{"action":"leave","userId":"HOST00000001"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"deleted":true}`, rec.Body.String())

	rec = do(engine, http.MethodGet, "/api/v1/sessions/ABC123", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStoreFailureReportsDetails(t *testing.T) {
	engine := newEngineWithStore(t, brokenStore{err: errors.New("redis: connection refused")})

	rec := do(engine, http.MethodGet, "/api/v1/sessions/ABC123", "")

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var body http_common.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "internal error", body.Error)
	assert.Contains(t, body.Details, "connection refused")

	rec = do(engine, http.MethodPost, "/api/v1/sessions/ABC123",
		`{"action":"create","user":{"id":"HOST00000001","name":"Alice"}}`)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body = http_common.ErrorResponse{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Details)
}

func TestPreflight(t *testing.T) {
	engine := newEngine(t)

	rec := do(engine, http.MethodOptions, "/api/v1/sessions/ABC123", "")

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestUnsupportedMethod(t *testing.T) {
	engine := newEngine(t)

	rec := do(engine, http.MethodPut, "/api/v1/sessions/ABC123", "{}")

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Contains(t, rec.Body.String(), "method not allowed")
}
