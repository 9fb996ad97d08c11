package mazeapi

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/beka-birhanu/maze-solver/api"
	api_i "github.com/beka-birhanu/maze-solver/api/i"
	"github.com/beka-birhanu/maze-solver/api/identity"
	"github.com/beka-birhanu/maze-solver/domain"
	"github.com/beka-birhanu/maze-solver/game"
	pb "github.com/beka-birhanu/maze-solver/game/pb_encoder"
	"github.com/beka-birhanu/maze-solver/infrastruture/token"
	"github.com/beka-birhanu/maze-solver/maze"
	"github.com/beka-birhanu/maze-solver/service"
	"github.com/beka-birhanu/maze-solver/service/i"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Info(string)    {}
func (nopLogger) Warning(string) {}
func (nopLogger) Error(string)   {}

type memRunRepo struct {
	runs map[uuid.UUID]*domain.Run
	sync.Mutex
}

func (m *memRunRepo) Save(_ context.Context, run *domain.Run) error {
	m.Lock()
	defer m.Unlock()
	m.runs[run.ID] = run
	return nil
}

func (m *memRunRepo) ByID(_ context.Context, id uuid.UUID) (*domain.Run, error) {
	m.Lock()
	defer m.Unlock()
	r, ok := m.runs[id]
	if !ok {
		return nil, domain.ErrRunNotFound
	}
	return r, nil
}

func (m *memRunRepo) BySession(_ context.Context, id uuid.UUID, _ int64) ([]*domain.Run, error) {
	m.Lock()
	defer m.Unlock()
	out := []*domain.Run{}
	for _, r := range m.runs {
		if r.SessionID == id {
			out = append(out, r)
		}
	}
	return out, nil
}

type memLeaderboard struct {
	entries map[string][]i.Entry
	sync.Mutex
}

func (m *memLeaderboard) Add(_ context.Context, board string, score float64, member string) error {
	m.Lock()
	defer m.Unlock()
	m.entries[board] = append(m.entries[board], i.Entry{Member: member, Score: score})
	return nil
}

func (m *memLeaderboard) Top(_ context.Context, board string, n int64) ([]i.Entry, error) {
	m.Lock()
	defer m.Unlock()
	e := m.entries[board]
	if int64(len(e)) > n {
		e = e[:n]
	}
	return e, nil
}

type testAPI struct {
	engine *gin.Engine
	repo   *memRunRepo
	board  *memLeaderboard
}

func newTestAPI(t *testing.T, tickUnit time.Duration) *testAPI {
	t.Helper()
	repo := &memRunRepo{runs: map[uuid.UUID]*domain.Run{}}
	board := &memLeaderboard{entries: map[string][]i.Entry{}}

	sessions, err := service.NewSessionManager(&service.Config{
		RunRepo:      repo,
		Leaderboard:  board,
		Logger:       nopLogger{},
		Speed:        game.MaxSpeed,
		TickUnit:     tickUnit,
		NewGenerator: func() *maze.Generator { return maze.NewGenerator(rand.New(rand.NewSource(9))) },
	})
	require.NoError(t, err)
	t.Cleanup(sessions.StopAll)

	tokens := token.NewJwtService("test-secret", "maze-solver")
	c, err := NewController(Config{
		Sessions:    sessions,
		Tokenizer:   tokens,
		RunRepo:     repo,
		Leaderboard: board,
		Encoder:     &pb.Protobuf{},
		DefaultRows: 3,
		DefaultCols: 3,
	})
	require.NoError(t, err)

	router := api.NewRouter(api.Config{
		BaseURL:                 "/api",
		Mode:                    gin.TestMode,
		Controllers:             []api_i.Controller{c},
		AuthorizationMiddleware: identity.Authoriz(tokens),
	})
	return &testAPI{engine: router.Engine(), repo: repo, board: board}
}

func (a *testAPI) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, "/api/v1"+path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

func (a *testAPI) createSession(t *testing.T, body interface{}) *CreateSessionResponse {
	t.Helper()
	w := a.do(t, http.MethodPost, "/sessions", "", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp CreateSessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return &resp
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestCreateSession(t *testing.T) {
	a := newTestAPI(t, time.Microsecond)

	t.Run("defaults", func(t *testing.T) {
		resp := a.createSession(t, nil)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, 3, resp.State.Rows)
		assert.Equal(t, 3, resp.State.Cols)
	})

	t.Run("explicit size", func(t *testing.T) {
		resp := a.createSession(t, gin.H{"rows": 4, "cols": 6})
		assert.Equal(t, 6, resp.State.Cols)
		assert.Equal(t, maze.CellPosition{Row: 3, Col: 5}, *resp.State.End)
	})

	t.Run("too large", func(t *testing.T) {
		w := a.do(t, http.MethodPost, "/sessions", "", gin.H{"rows": 31, "cols": 4})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSessionAuthorization(t *testing.T) {
	a := newTestAPI(t, time.Microsecond)
	mine := a.createSession(t, nil)
	other := a.createSession(t, nil)

	assert.Equal(t, http.StatusUnauthorized, a.do(t, http.MethodGet, "/sessions/"+mine.ID, "", nil).Code)
	assert.Equal(t, http.StatusForbidden, a.do(t, http.MethodGet, "/sessions/"+mine.ID, other.Token, nil).Code)
	assert.Equal(t, http.StatusBadRequest, a.do(t, http.MethodGet, "/sessions/not-an-id", mine.Token, nil).Code)
	assert.Equal(t, http.StatusOK, a.do(t, http.MethodGet, "/sessions/"+mine.ID, mine.Token, nil).Code)

	assert.Equal(t, http.StatusNoContent, a.do(t, http.MethodDelete, "/sessions/"+mine.ID, mine.Token, nil).Code)
	assert.Equal(t, http.StatusNotFound, a.do(t, http.MethodGet, "/sessions/"+mine.ID, mine.Token, nil).Code)
}

func TestEditing(t *testing.T) {
	a := newTestAPI(t, time.Microsecond)
	s := a.createSession(t, nil)
	base := "/sessions/" + s.ID

	t.Run("toggle", func(t *testing.T) {
		w := a.do(t, http.MethodPost, base+"/cells/toggle", s.Token, gin.H{"row": 1, "col": 1})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		st := decode[game.State](t, w)
		assert.Equal(t, maze.Wall, st.Cells[1][1])

		w = a.do(t, http.MethodPost, base+"/cells/toggle", s.Token, gin.H{"row": 7, "col": 0})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		w = a.do(t, http.MethodPost, base+"/cells/toggle", s.Token, gin.H{"row": 0})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("endpoint on a wall is rejected", func(t *testing.T) {
		w := a.do(t, http.MethodPut, base+"/endpoints/start", s.Token, gin.H{"row": 1, "col": 1})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), game.ErrEndpointOnWall.Error())
		w = a.do(t, http.MethodPut, base+"/endpoints/middle", s.Token, gin.H{"row": 0, "col": 0})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		w = a.do(t, http.MethodPut, base+"/endpoints/end", s.Token, gin.H{"row": 0, "col": 2})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, maze.CellPosition{Row: 0, Col: 2}, *decode[game.State](t, w).End)
	})

	t.Run("paint", func(t *testing.T) {
		w := a.do(t, http.MethodPost, base+"/cells/paint", s.Token, gin.H{"cells": []gin.H{
			{"row": 2, "col": 0}, {"row": 2, "col": 1}, {"row": 9, "col": 9},
		}})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		resp := decode[PaintResponse](t, w)
		assert.Equal(t, 2, resp.Painted)
		assert.Equal(t, maze.Wall, resp.Value)

		w = a.do(t, http.MethodPost, base+"/cells/paint", s.Token, gin.H{"cells": []gin.H{}})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("render", func(t *testing.T) {
		w := a.do(t, http.MethodGet, base+"/render", s.Token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "S.E\n.#.\n##.\n", w.Body.String())
	})

	t.Run("generate", func(t *testing.T) {
		w := a.do(t, http.MethodPost, base+"/generate", s.Token, gin.H{"strategy": "maze", "complexity": 10})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		w = a.do(t, http.MethodPost, base+"/generate", s.Token, gin.H{"strategy": "carved", "complexity": 150})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		w = a.do(t, http.MethodPost, base+"/generate", s.Token, gin.H{"strategy": "sparse", "complexity": 0})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		st := decode[game.State](t, w)
		assert.Equal(t, maze.CellPosition{Row: 2, Col: 2}, *st.End)
	})

	t.Run("resize and clear", func(t *testing.T) {
		w := a.do(t, http.MethodPost, base+"/resize", s.Token, gin.H{"rows": 5, "cols": 4})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 5, decode[game.State](t, w).Rows)

		w = a.do(t, http.MethodPost, base+"/resize", s.Token, gin.H{"rows": 1, "cols": 4})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = a.do(t, http.MethodPost, base+"/clear", s.Token, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestSolve(t *testing.T) {
	a := newTestAPI(t, time.Microsecond)
	s := a.createSession(t, nil)
	base := "/sessions/" + s.ID

	assert.Equal(t, http.StatusNotFound, a.do(t, http.MethodGet, base+"/result", s.Token, nil).Code)

	w := a.do(t, http.MethodPut, base+"/algorithm", s.Token, gin.H{"algorithm": "astar"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = a.do(t, http.MethodPut, base+"/algorithm", s.Token, gin.H{"algorithm": "dfs"})
	require.Equal(t, http.StatusOK, w.Code)

	w = a.do(t, http.MethodPost, base+"/solve", s.Token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decode[ResultResponse](t, w)
	assert.Equal(t, "dfs", res.Algorithm)
	assert.True(t, res.Found)
	assert.Equal(t, []maze.CellPosition{{Row: 0, Col: 0}, {Row: 0, Col: 1}, {Row: 0, Col: 2}, {Row: 1, Col: 2}, {Row: 2, Col: 2}}, res.Path)

	t.Run("protobuf result", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1"+base+"/result", nil)
		req.Header.Set("Authorization", "Bearer "+s.Token)
		req.Header.Set("Accept", pb.ContentType)
		w := httptest.NewRecorder()
		a.engine.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, pb.ContentType, w.Header().Get("Content-Type"))

		got, err := (&pb.Protobuf{}).UnmarshalResult(w.Body.Bytes())
		require.NoError(t, err)
		assert.Equal(t, res.Path, got.Path)
		assert.Equal(t, res.Trace, got.Trace)
	})

	t.Run("run is recorded", func(t *testing.T) {
		w := a.do(t, http.MethodGet, base+"/runs", s.Token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		runs := decode[[]RunResponse](t, w)
		require.Len(t, runs, 1)
		assert.Equal(t, len(res.Trace), runs[0].TraceLength)

		w = a.do(t, http.MethodGet, "/runs/"+runs[0].ID, "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, s.ID, decode[RunResponse](t, w).SessionID)

		assert.Equal(t, http.StatusNotFound, a.do(t, http.MethodGet, "/runs/"+uuid.NewString(), "", nil).Code)
		assert.Equal(t, http.StatusBadRequest, a.do(t, http.MethodGet, "/runs/nope", "", nil).Code)

		w = a.do(t, http.MethodGet, "/runs/top?algorithm=dfs&rows=3&cols=3", "", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		top := decode[TopRunsResponse](t, w)
		assert.Equal(t, "dfs:3x3", top.Board)
		require.Len(t, top.Entries, 1)
		assert.Equal(t, runs[0].ID, top.Entries[0].Member)

		assert.Equal(t, http.StatusBadRequest, a.do(t, http.MethodGet, "/runs/top?rows=3&cols=3", "", nil).Code)
	})
}

func TestEditsConflictWhilePlaying(t *testing.T) {
	a := newTestAPI(t, time.Hour)
	s := a.createSession(t, nil)
	base := "/sessions/" + s.ID

	w := a.do(t, http.MethodPost, base+"/play", s.Token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, decode[game.State](t, w).Playing)

	w = a.do(t, http.MethodPost, base+"/cells/toggle", s.Token, gin.H{"row": 1, "col": 1})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), game.ErrAnimating.Error())
	w = a.do(t, http.MethodPost, base+"/cells/toggle", s.Token, gin.H{"row": 9, "col": 9})
	assert.Equal(t, http.StatusConflict, w.Code, "animation is checked before bounds")
	assert.Equal(t, http.StatusConflict, a.do(t, http.MethodPost, base+"/cells/paint", s.Token, gin.H{"cells": []gin.H{{"row": 1, "col": 1}}}).Code)
	assert.Equal(t, http.StatusConflict, a.do(t, http.MethodPut, base+"/endpoints/start", s.Token, gin.H{"row": 0, "col": 1}).Code)
	assert.Equal(t, http.StatusConflict, a.do(t, http.MethodPut, base+"/algorithm", s.Token, gin.H{"algorithm": "dfs"}).Code)
	assert.Equal(t, http.StatusConflict, a.do(t, http.MethodPost, base+"/solve", s.Token, nil).Code)
	assert.Equal(t, http.StatusConflict, a.do(t, http.MethodPost, base+"/clear", s.Token, nil).Code)

	w = a.do(t, http.MethodPut, base+"/speed", s.Token, gin.H{"speed": 80})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 80, decode[game.State](t, w).Speed)
	assert.Equal(t, http.StatusBadRequest, a.do(t, http.MethodPut, base+"/speed", s.Token, gin.H{"speed": 101}).Code)

	w = a.do(t, http.MethodPost, base+"/pause", s.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[game.State](t, w).Playing)
	assert.Equal(t, http.StatusOK, a.do(t, http.MethodPost, base+"/cells/toggle", s.Token, gin.H{"row": 1, "col": 1}).Code)
	w = a.do(t, http.MethodPost, base+"/cells/toggle", s.Token, gin.H{"row": 9, "col": 9})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), maze.ErrOutOfBounds.Error())

	w = a.do(t, http.MethodPost, base+"/reset", s.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[game.State](t, w).Visited)
}

func TestEventStream(t *testing.T) {
	a := newTestAPI(t, time.Microsecond)
	s := a.createSession(t, nil)
	srv := httptest.NewServer(a.engine)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/api/v1/sessions/%s/events", srv.URL, s.ID), nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+s.Token)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	lines := bufio.NewScanner(resp.Body)
	require.True(t, lines.Scan())
	assert.Equal(t, "event:state", lines.Text())

	w := a.do(t, http.MethodPost, "/sessions/"+s.ID+"/play", s.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	counts := map[string]int{}
	for lines.Scan() {
		line := lines.Text()
		if name, ok := strings.CutPrefix(line, "event:"); ok {
			counts[name]++
			continue
		}
		if strings.Contains(line, `"kind":"phase"`) && strings.Contains(line, `"phase":"complete"`) {
			break
		}
	}
	require.NoError(t, lines.Err())

	assert.Equal(t, 9, counts["visited"])
	assert.Equal(t, 5, counts["path"])
	assert.Equal(t, 2, counts["phase"])
}
