package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizparty/internal/app"
	"quizparty/internal/config"
	"quizparty/internal/domain"
)

func newTestServer(t *testing.T) (*Server, *app.Registry) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	registry := app.NewRegistry(6, domain.DefaultRoomSettings(), logger)
	t.Cleanup(registry.Close)

	v := viper.New()
	config.SetDefaults(v)

	return NewServer(config.Load(v), registry, logger), registry
}

func doRequest(s *Server, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	s.server.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) *Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return &resp
}

func TestHealthEndpoint(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(s, http.MethodGet, "/api/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.True(t, resp.Success)
}

func TestCreateAndGetRoom(t *testing.T) {
	s, registry := newTestServer(t)

	rec := doRequest(s, http.MethodPost, "/api/rooms")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeResponse(t, rec)
	require.True(t, resp.Success)

	data := resp.Data.(map[string]interface{})
	code := data["roomCode"].(string)
	assert.Len(t, code, 6)
	assert.True(t, strings.HasSuffix(data["inviteLink"].(string), "/join/"+code))

	rec = doRequest(s, http.MethodGet, "/api/rooms/"+code)
	require.Equal(t, http.StatusOK, rec.Code)
	resp = decodeResponse(t, rec)
	info := resp.Data.(map[string]interface{})
	assert.Equal(t, code, info["roomCode"])
	assert.Equal(t, domain.PhaseLobby.String(), info["phase"])
	assert.Equal(t, true, info["canJoin"])
	assert.Equal(t, float64(0), info["playerCount"])

	assert.Equal(t, 1, registry.RoomCount())
}

func TestGetRoomNotFound(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(s, http.MethodGet, "/api/rooms/ZZZZ99")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	resp := decodeResponse(t, rec)
	assert.False(t, resp.Success)
	assert.Equal(t, "ROOM_NOT_FOUND", resp.Error.Code)
}

func TestRoomExists(t *testing.T) {
	s, registry := newTestServer(t)

	session, err := registry.CreateRoom()
	require.NoError(t, err)

	rec := doRequest(s, http.MethodGet, "/api/rooms/"+strings.ToLower(session.Code())+"/exists")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, true, data["exists"], "lookup is case-insensitive")

	rec = doRequest(s, http.MethodGet, "/api/rooms/ZZZZ99/exists")
	resp = decodeResponse(t, rec)
	data = resp.Data.(map[string]interface{})
	assert.Equal(t, false, data["exists"])
}

func TestRoomQR(t *testing.T) {
	s, registry := newTestServer(t)

	session, err := registry.CreateRoom()
	require.NoError(t, err)

	rec := doRequest(s, http.MethodGet, "/api/rooms/"+session.Code()+"/qr")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Body.Bytes())

	rec = doRequest(s, http.MethodGet, "/api/rooms/ZZZZ99/qr")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStats(t *testing.T) {
	s, registry := newTestServer(t)

	session, err := registry.CreateRoom()
	require.NoError(t, err)
	_, err = session.Join("p1", "alice")
	require.NoError(t, err)

	rec := doRequest(s, http.MethodGet, "/api/stats")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, float64(1), data["activeRooms"])
	assert.Equal(t, float64(1), data["totalPlayers"])
}
