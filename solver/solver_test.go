package solver

import (
	"math/rand"
	"testing"

	"github.com/beka-birhanu/maze-solver/maze"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pos(row, col int) maze.CellPosition {
	return maze.CellPosition{Row: row, Col: col}
}

func mustParse(t *testing.T, layout string) *maze.Maze {
	t.Helper()
	m, err := maze.Parse(layout)
	require.NoError(t, err)
	return m
}

func TestSolveOpenGrid(t *testing.T) {
	m, err := maze.New(3, 3)
	require.NoError(t, err)

	t.Run("bfs", func(t *testing.T) {
		res, err := Solve(BFS, m, pos(0, 0), pos(2, 2))
		require.NoError(t, err)
		assert.Equal(t, []maze.CellPosition{pos(0, 0), pos(1, 0), pos(2, 0), pos(2, 1), pos(2, 2)}, res.Path)
		assert.Equal(t, []maze.CellPosition{
			pos(0, 0), pos(1, 0), pos(0, 1), pos(2, 0), pos(1, 1), pos(0, 2), pos(2, 1), pos(1, 2), pos(2, 2),
		}, res.Trace)
		assert.True(t, res.Found())
	})

	t.Run("dfs", func(t *testing.T) {
		res, err := Solve(DFS, m, pos(0, 0), pos(2, 2))
		require.NoError(t, err)
		assert.Equal(t, []maze.CellPosition{pos(0, 0), pos(0, 1), pos(0, 2), pos(1, 2), pos(2, 2)}, res.Path)
		assert.Equal(t, []maze.CellPosition{
			pos(0, 0), pos(1, 0), pos(0, 1), pos(1, 1), pos(0, 2), pos(1, 2), pos(2, 2),
		}, res.Trace)
	})
}

func TestSolveStartIsEnd(t *testing.T) {
	m := mustParse(t, "S#\n##")
	for _, alg := range []Algorithm{BFS, DFS} {
		res, err := Solve(alg, m, pos(1, 1), pos(1, 1))
		require.NoError(t, err)
		assert.Equal(t, []maze.CellPosition{pos(1, 1)}, res.Trace)
		assert.Equal(t, []maze.CellPosition{pos(1, 1)}, res.Path)
	}
}

func TestSolveUnreachable(t *testing.T) {
	m := mustParse(t, `
S.#.
..#.
###E
`)
	for _, alg := range []Algorithm{BFS, DFS} {
		res, err := SolveMaze(alg, m)
		require.NoError(t, err)
		assert.False(t, res.Found(), alg.String())
		assert.Empty(t, res.Path)
		assert.ElementsMatch(t, []maze.CellPosition{pos(0, 0), pos(0, 1), pos(1, 0), pos(1, 1)}, res.Trace)
		assert.Equal(t, pos(0, 0), res.Trace[0])
	}
}

func TestSolveBlockedEndpoints(t *testing.T) {
	m, err := maze.New(3, 3)
	require.NoError(t, err)

	m.SetCell(pos(2, 2), maze.Wall)
	res, err := Solve(BFS, m, pos(0, 0), pos(2, 2))
	require.NoError(t, err)
	assert.False(t, res.Found())
	assert.Len(t, res.Trace, 8)

	m.SetCell(pos(0, 0), maze.Wall)
	res, err = Solve(DFS, m, pos(0, 0), pos(1, 1))
	require.NoError(t, err)
	assert.False(t, res.Found())
	assert.Empty(t, res.Trace)
}

func TestSolveErrors(t *testing.T) {
	m, err := maze.New(2, 2)
	require.NoError(t, err)

	_, err = Solve(Algorithm(7), m, pos(0, 0), pos(1, 1))
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)

	_, err = Solve(BFS, m, pos(0, 0), pos(2, 1))
	assert.ErrorIs(t, err, ErrOutOfBounds)

	m.ClearEndpoint(maze.EndPoint)
	_, err = SolveMaze(BFS, m)
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestSolveProperties(t *testing.T) {
	for seed := int64(0); seed < 60; seed++ {
		rng := rand.New(rand.NewSource(seed))
		strategy := maze.Strategy(seed % 2)
		rows, cols := 2+rng.Intn(14), 2+rng.Intn(14)
		m, err := maze.NewGenerator(rng).Generate(strategy, rows, cols, rng.Intn(60))
		require.NoError(t, err)

		bfs, err := SolveMaze(BFS, m)
		require.NoError(t, err)
		dfs, err := SolveMaze(DFS, m)
		require.NoError(t, err)

		for _, res := range []*Result{bfs, dfs} {
			assertTrace(t, m, res)
			assertPath(t, m, res)
		}

		assert.Equal(t, bfs.Found(), dfs.Found(), "seed %d", seed)
		if bfs.Found() {
			assert.LessOrEqual(t, len(bfs.Path), len(dfs.Path), "seed %d", seed)
		}

		again, err := SolveMaze(DFS, m)
		require.NoError(t, err)
		assert.Equal(t, dfs, again, "seed %d", seed)
	}
}

func TestSolveCarvedWithoutNoiseIsReachable(t *testing.T) {
	m, err := maze.NewGenerator(rand.New(rand.NewSource(99))).Generate(maze.Carved, 5, 5, 0)
	require.NoError(t, err)
	res, err := Solve(BFS, m, pos(0, 0), pos(4, 4))
	require.NoError(t, err)
	assert.True(t, res.Found())
	assert.Len(t, res.Path, 9)
}

func assertTrace(t *testing.T, m *maze.Maze, res *Result) {
	t.Helper()
	start, _ := m.Start()
	require.NotEmpty(t, res.Trace)
	assert.Equal(t, start, res.Trace[0])
	assert.LessOrEqual(t, len(res.Trace), m.Rows()*m.Cols())

	seen := make(map[maze.CellPosition]bool, len(res.Trace))
	for _, p := range res.Trace {
		assert.False(t, seen[p], "duplicate %s in trace", p)
		seen[p] = true
		assert.True(t, m.IsOpen(p))
	}
}

func assertPath(t *testing.T, m *maze.Maze, res *Result) {
	t.Helper()
	if !res.Found() {
		return
	}
	start, _ := m.Start()
	end, _ := m.End()
	assert.Equal(t, start, res.Path[0])
	assert.Equal(t, end, res.Path[len(res.Path)-1])
	assert.Equal(t, end, res.Trace[len(res.Trace)-1])
	for i, p := range res.Path {
		assert.True(t, m.IsOpen(p))
		if i > 0 {
			assert.True(t, res.Path[i-1].Adjacent(p), "%s -> %s", res.Path[i-1], p)
		}
	}
}

func TestParseAlgorithm(t *testing.T) {
	a, err := ParseAlgorithm("dfs")
	assert.NoError(t, err)
	assert.Equal(t, DFS, a)
	_, err = ParseAlgorithm("astar")
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)
}
