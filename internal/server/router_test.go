package server_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"taskboard/internal/auth"
	"taskboard/internal/realtime"
	"taskboard/internal/repository/memory"
	"taskboard/internal/server"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type api struct {
	t        *testing.T
	router   *gin.Engine
	registry *realtime.Registry
}

func newAPI(t *testing.T) *api {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger, _ := test.NewNullLogger()
	registry := realtime.NewRegistry()
	router := server.NewRouter(server.Deps{
		Repo:      memory.New(),
		Tokens:    auth.NewTokenManager("test-secret", time.Hour),
		Registry:  registry,
		Publisher: realtime.NewBroadcaster(registry, logger),
		Logger:    logger,
	})
	return &api{t: t, router: router, registry: registry}
}

func (a *api) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	a.router.ServeHTTP(resp, req)
	return resp
}

func (a *api) decode(resp *httptest.ResponseRecorder, into any) {
	a.t.Helper()
	require.NoError(a.t, json.Unmarshal(resp.Body.Bytes(), into), resp.Body.String())
}

func (a *api) register(username string) string {
	a.t.Helper()
	resp := a.do(http.MethodPost, "/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
	})
	require.Equal(a.t, http.StatusCreated, resp.Code, resp.Body.String())
	var out struct {
		Token string `json:"token"`
	}
	a.decode(resp, &out)
	return out.Token
}

type entity struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Position int    `json:"position"`
	ListID   string `json:"list_id"`
}

func (a *api) create(path, token string, body any) entity {
	a.t.Helper()
	resp := a.do(http.MethodPost, path, token, body)
	require.Equal(a.t, http.StatusCreated, resp.Code, resp.Body.String())
	var e entity
	a.decode(resp, &e)
	return e
}

func TestAPI_BoardLifecycle(t *testing.T) {
	a := newAPI(t)
	owner := a.register("owner")
	member := a.register("member")
	stranger := a.register("stranger")

	board := a.create("/boards", owner, map[string]string{"title": "Roadmap"})
	require.Equal(t, http.StatusCreated, a.do(http.MethodPost, "/boards/"+board.ID+"/members", owner,
		map[string]string{"username": "member"}).Code)

	todo := a.create("/boards/"+board.ID+"/lists", member, map[string]string{"title": "Todo"})
	done := a.create("/boards/"+board.ID+"/lists", member, map[string]string{"title": "Done"})
	assert.Equal(t, 1, done.Position)

	c0 := a.create("/lists/"+todo.ID+"/cards", member, map[string]string{"title": "c0"})
	c1 := a.create("/lists/"+todo.ID+"/cards", member, map[string]string{"title": "c1"})
	c2 := a.create("/lists/"+todo.ID+"/cards", member, map[string]string{"title": "c2"})

	resp := a.do(http.MethodPost, "/cards/"+c1.ID+"/move", member, map[string]any{
		"destination_list_id": done.ID,
		"position":            0,
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var moved entity
	a.decode(resp, &moved)
	assert.Equal(t, done.ID, moved.ListID)
	assert.Equal(t, 0, moved.Position)

	resp = a.do(http.MethodGet, "/lists/"+todo.ID+"/cards", member, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	var remaining []entity
	a.decode(resp, &remaining)
	require.Len(t, remaining, 2)
	assert.Equal(t, []string{c0.ID, c2.ID}, []string{remaining[0].ID, remaining[1].ID})
	assert.Equal(t, []int{0, 1}, []int{remaining[0].Position, remaining[1].Position})

	resp = a.do(http.MethodGet, "/boards/"+board.ID, stranger, nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = a.do(http.MethodGet, "/boards/"+board.ID+"/activities", owner, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	var acts []struct {
		Kind        string `json:"kind"`
		Description string `json:"description"`
	}
	a.decode(resp, &acts)
	require.NotEmpty(t, acts)
	assert.Equal(t, "MOVE", acts[0].Kind)
}

func TestAPI_ReorderErrors(t *testing.T) {
	a := newAPI(t)
	owner := a.register("owner")
	board := a.create("/boards", owner, map[string]string{"title": "Roadmap"})
	l0 := a.create("/boards/"+board.ID+"/lists", owner, map[string]string{"title": "A"})
	l1 := a.create("/boards/"+board.ID+"/lists", owner, map[string]string{"title": "B"})

	resp := a.do(http.MethodPost, "/boards/"+board.ID+"/reorder_lists", owner, map[string]any{"lists": []string{l1.ID}})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), `"kind":"invalid_ordering"`)
	assert.Contains(t, resp.Body.String(), `"reason":"missing_id"`)

	resp = a.do(http.MethodPost, "/boards/"+board.ID+"/reorder_lists", owner, map[string]any{"lists": []string{l1.ID, "nope"}})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = a.do(http.MethodPost, "/boards/"+board.ID+"/reorder_lists", owner, map[string]any{"lists": []string{l1.ID, l0.ID}})
	require.Equal(t, http.StatusOK, resp.Code)
	var lists []entity
	a.decode(resp, &lists)
	assert.Equal(t, []string{l1.ID, l0.ID}, []string{lists[0].ID, lists[1].ID})
}

func TestAPI_RequiresAuthentication(t *testing.T) {
	a := newAPI(t)

	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodGet, "/boards", "", nil).Code)
	assert.Equal(t, http.StatusOK, a.do(http.MethodGet, "/health", "", nil).Code)
	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodGet, "/boards/not-a-uuid", a.register("owner"), nil).Code)
}

func TestAPI_WebsocketReceivesCommittedChanges(t *testing.T) {
	a := newAPI(t)
	owner := a.register("owner")
	board := a.create("/boards", owner, map[string]string{"title": "Roadmap"})

	srv := httptest.NewServer(a.router)
	t.Cleanup(srv.Close)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/boards/" + board.ID + "?token=" + owner
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	var frame struct {
		Type string         `json:"type"`
		Data map[string]any `json:"data"`
		User string         `json:"user"`
	}
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, "connection_established", frame.Type)
	boardID := uuid.MustParse(board.ID)
	require.Eventually(t, func() bool { return a.registry.Count(boardID) == 1 }, time.Second, 5*time.Millisecond)

	list := a.create("/boards/"+board.ID+"/lists", owner, map[string]string{"title": "Todo"})

	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, realtime.KindListCreated, frame.Type)
	assert.Equal(t, list.ID, frame.Data["id"])
	assert.Equal(t, "owner", frame.User)
}

func TestAPI_CommentEditAndProfile(t *testing.T) {
	a := newAPI(t)
	owner := a.register("owner")
	member := a.register("member")
	board := a.create("/boards", owner, map[string]string{"title": "Roadmap"})
	require.Equal(t, http.StatusCreated, a.do(http.MethodPost, "/boards/"+board.ID+"/members", owner,
		map[string]string{"username": "member"}).Code)
	list := a.create("/boards/"+board.ID+"/lists", owner, map[string]string{"title": "Todo"})
	card := a.create("/lists/"+list.ID+"/cards", owner, map[string]string{"title": "c0"})
	comment := a.create("/cards/"+card.ID+"/comments", member, map[string]string{"text": "draft"})

	resp := a.do(http.MethodPut, "/comments/"+comment.ID, owner, map[string]string{"text": "not mine"})
	assert.Equal(t, http.StatusForbidden, resp.Code)
	resp = a.do(http.MethodPut, "/comments/"+comment.ID, member, map[string]string{"text": "final"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, http.StatusNoContent, a.do(http.MethodDelete, "/comments/"+comment.ID, member, nil).Code)
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodDelete, "/comments/"+comment.ID, member, nil).Code)

	resp = a.do(http.MethodPut, "/profile", member, map[string]string{"full_name": "Mem Ber"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	resp = a.do(http.MethodGet, "/profile", member, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	var profile struct {
		Username string `json:"username"`
		FullName string `json:"full_name"`
	}
	a.decode(resp, &profile)
	assert.Equal(t, "member", profile.Username)
	assert.Equal(t, "Mem Ber", profile.FullName)
}
