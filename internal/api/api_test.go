package api_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/hangmanparty/internal/api"
	"github.com/mcoot/hangmanparty/internal/api/response"
	"github.com/mcoot/hangmanparty/internal/factory"
	"github.com/mcoot/hangmanparty/internal/services/words"
	"github.com/mcoot/hangmanparty/internal/ws"
)

// testServer hosts the full router, with the dictionary stubbed out so
// every looked-up word validates
type testServer struct {
	handler http.Handler
	server  *httptest.Server
	dict    *httptest.Server
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	dict := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"word":"stub"}]`))
	}))
	t.Cleanup(dict.Close)

	app, err := factory.New(factory.Config{
		Logger:      logger,
		WordsConfig: words.Config{BaseURL: dict.URL, Timeout: 2 * time.Second},
	})
	require.NoError(t, err)

	router := api.NewRouter(api.RouterConfig{
		Logger:         logger,
		AuthService:    app.AuthService,
		RoomController: app.RoomController,
		WSHandler:      app.WSHandler,
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &testServer{
		handler: router,
		server:  server,
		dict:    dict,
	}
}

func (ts *testServer) request(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		b, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(b)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func (ts *testServer) register(t *testing.T, username string) response.AuthResponse {
	t.Helper()

	body := map[string]string{"username": username, "password": "hunter22"}
	rr := ts.request(http.MethodPost, "/api/auth/register", body, "")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var resp response.AuthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

// dialWS opens an authenticated websocket connection to the test server
func (ts *testServer) dialWS(t *testing.T, token string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(ts.server.URL, "http") + "/ws?token=" + token
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func sendEvent(t *testing.T, conn *websocket.Conn, event string, data any) {
	t.Helper()

	raw, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(ws.Envelope{Event: event, Data: raw}))
}

func readEnvelope(t *testing.T, conn *websocket.Conn) ws.Envelope {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var env ws.Envelope
	require.NoError(t, conn.ReadJSON(&env))
	return env
}

func readRoomUpdate(t *testing.T, conn *websocket.Conn) ws.RoomView {
	t.Helper()

	env := readEnvelope(t, conn)
	require.Equal(t, ws.EventRoomUpdate, env.Event)

	var view ws.RoomView
	require.NoError(t, json.Unmarshal(env.Data, &view))
	return view
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/health", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "ok")
}

func TestRegisterAndLogin(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.register(t, "alice")
	assert.Equal(t, "alice", resp.Player.Username)
	assert.NotEmpty(t, resp.SessionToken)

	rr := ts.request(http.MethodPost, "/api/auth/login",
		map[string]string{"username": "alice", "password": "hunter22"}, "")
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(http.MethodPost, "/api/auth/login",
		map[string]string{"username": "alice", "password": "wrong"}, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRegisterValidation(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/auth/register",
		map[string]string{"username": "al", "password": "hunter22"}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = ts.request(http.MethodPost, "/api/auth/register",
		map[string]string{"username": "alice", "password": "short"}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "alice")

	rr := ts.request(http.MethodPost, "/api/auth/register",
		map[string]string{"username": "alice", "password": "hunter22"}, "")
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestGetMe(t *testing.T) {
	ts := newTestServer(t)
	resp := ts.register(t, "alice")

	rr := ts.request(http.MethodGet, "/api/auth/me", nil, resp.SessionToken)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "alice")

	rr = ts.request(http.MethodGet, "/api/auth/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestWebsocketRequiresAuth(t *testing.T) {
	ts := newTestServer(t)

	url := "ws" + strings.TrimPrefix(ts.server.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRealtimeGameFlow(t *testing.T) {
	ts := newTestServer(t)

	alice := ts.register(t, "alice")
	bob := ts.register(t, "bob")

	aliceConn := ts.dialWS(t, alice.SessionToken)
	bobConn := ts.dialWS(t, bob.SessionToken)

	// Alice creates the room by joining first
	sendEvent(t, aliceConn, ws.EventJoinRoom, ws.JoinRoomPayload{RoomID: "ab12cd"})
	view := readRoomUpdate(t, aliceConn)
	assert.Equal(t, "AB12CD", view.RoomID)
	assert.Equal(t, alice.Player.ID, view.Host)
	assert.Equal(t, "waiting", view.GameStatus)
	require.Len(t, view.Players, 1)

	// Bob joins; both get the two-player snapshot
	sendEvent(t, bobConn, ws.EventJoinRoom, ws.JoinRoomPayload{RoomID: "AB12CD"})
	view = readRoomUpdate(t, bobConn)
	require.Len(t, view.Players, 2)
	view = readRoomUpdate(t, aliceConn)
	require.Len(t, view.Players, 2)

	// Only the host can start
	sendEvent(t, bobConn, ws.EventStartGame, ws.StartGamePayload{RoomID: "AB12CD"})
	env := readEnvelope(t, bobConn)
	require.Equal(t, ws.EventError, env.Event)

	sendEvent(t, aliceConn, ws.EventStartGame, ws.StartGamePayload{RoomID: "AB12CD"})
	view = readRoomUpdate(t, aliceConn)
	assert.Equal(t, "selection", view.GameStatus)
	assert.Equal(t, alice.Player.ID, view.WordMaster)
	view = readRoomUpdate(t, bobConn)
	assert.Equal(t, "selection", view.GameStatus)

	// A too-short word is rejected point-to-point
	sendEvent(t, aliceConn, ws.EventSelectWord, ws.SelectWordPayload{RoomID: "AB12CD", Word: "at"})
	env = readEnvelope(t, aliceConn)
	require.Equal(t, ws.EventError, env.Event)
	var errMsg string
	require.NoError(t, json.Unmarshal(env.Data, &errMsg))
	assert.Equal(t, "Word too short", errMsg)

	// Alice picks the word; only she sees it in her snapshot
	sendEvent(t, aliceConn, ws.EventSelectWord, ws.SelectWordPayload{RoomID: "AB12CD", Word: "cat"})
	view = readRoomUpdate(t, aliceConn)
	assert.Equal(t, "guessing", view.GameStatus)
	assert.Equal(t, "CAT", view.CurrentWord)
	assert.Equal(t, "___", view.MaskedWord)

	view = readRoomUpdate(t, bobConn)
	assert.Equal(t, "guessing", view.GameStatus)
	assert.Empty(t, view.CurrentWord)
	assert.Equal(t, "___", view.MaskedWord)

	// Bob guesses a correct letter
	sendEvent(t, bobConn, ws.EventGuessLetter, ws.GuessLetterPayload{RoomID: "AB12CD", Letter: "a"})
	view = readRoomUpdate(t, bobConn)
	assert.Equal(t, "_A_", view.MaskedWord)
	assert.Equal(t, []string{"A"}, view.GuessedLetters)
	view = readRoomUpdate(t, aliceConn)
	assert.Equal(t, "_A_", view.MaskedWord)

	// The REST snapshot applies the same redaction rules
	rr := ts.request(http.MethodGet, "/api/rooms/AB12CD", nil, bob.SessionToken)
	require.Equal(t, http.StatusOK, rr.Code)
	var snapshot response.Room
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &snapshot))
	assert.Empty(t, snapshot.CurrentWord)
	assert.Equal(t, "_A_", snapshot.MaskedWord)

	rr = ts.request(http.MethodGet, "/api/rooms/ab12cd", nil, alice.SessionToken)
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &snapshot))
	assert.Equal(t, "CAT", snapshot.CurrentWord)
}

func TestSwitchingRoomsLeavesPrevious(t *testing.T) {
	ts := newTestServer(t)

	alice := ts.register(t, "alice")
	bob := ts.register(t, "bob")

	aliceConn := ts.dialWS(t, alice.SessionToken)
	bobConn := ts.dialWS(t, bob.SessionToken)

	sendEvent(t, aliceConn, ws.EventJoinRoom, ws.JoinRoomPayload{RoomID: "ROOM01"})
	readRoomUpdate(t, aliceConn)
	sendEvent(t, bobConn, ws.EventJoinRoom, ws.JoinRoomPayload{RoomID: "ROOM01"})
	readRoomUpdate(t, bobConn)
	readRoomUpdate(t, aliceConn)

	// Alice hops to another room without an explicit leave; her old
	// membership must not linger
	sendEvent(t, aliceConn, ws.EventJoinRoom, ws.JoinRoomPayload{RoomID: "ROOM02"})
	view := readRoomUpdate(t, aliceConn)
	assert.Equal(t, "ROOM02", view.RoomID)
	require.Len(t, view.Players, 1)

	// Bob sees the departure, and inherits the host seat
	view = readRoomUpdate(t, bobConn)
	assert.Equal(t, "ROOM01", view.RoomID)
	require.Len(t, view.Players, 1)
	assert.Equal(t, bob.Player.ID, view.Players[0].UserID)
	assert.Equal(t, bob.Player.ID, view.Host)

	// With nobody left behind, switching out of a solo room deletes it
	sendEvent(t, aliceConn, ws.EventJoinRoom, ws.JoinRoomPayload{RoomID: "ROOM03"})
	view = readRoomUpdate(t, aliceConn)
	assert.Equal(t, "ROOM03", view.RoomID)

	rr := ts.request(http.MethodGet, "/api/rooms/ROOM02", nil, alice.SessionToken)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRoomSnapshotRequiresAuth(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/rooms/AB12CD", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRoomSnapshotNotFound(t *testing.T) {
	ts := newTestServer(t)
	resp := ts.register(t, "alice")

	rr := ts.request(http.MethodGet, "/api/rooms/NOPE99", nil, resp.SessionToken)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
