package game

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/beka-birhanu/maze-solver/maze"
	"github.com/beka-birhanu/maze-solver/solver"
)

// Session-related errors.
var (
	ErrAnimating   = errors.New("edit rejected while the animation is running")
	ErrNoEndpoints = errors.New("start and end must both be set")

	ErrEndpointOnWall = errors.New("endpoint must be an open cell")
	ErrEmptyStroke    = errors.New("paint stroke has no cells")
)

// Session owns one maze together with its endpoints, the selected algorithm,
// the last solve result and the replay of that result.
//
// Edits are rejected while the replay is playing. Any grid mutation drops the
// result, so the next Play solves again. A Session is safe for concurrent use;
// Run drives the replay from its own goroutine.
type Session struct {
	maze      *maze.Maze
	generator *maze.Generator
	algorithm solver.Algorithm
	result    *solver.Result
	scheduler *Scheduler

	maxDimension int
	speed        int
	unit         time.Duration

	wake chan struct{} // nudges Run after Play, Pause, Reset or speed changes.
	sync.RWMutex
}

// SessionConfig holds the parameters for NewSession.
type SessionConfig struct {
	Rows         int
	Cols         int
	MaxDimension int             // 0 means maze.DefaultMaxDimension
	Speed        int             // 0 means DefaultSpeed
	TickUnit     time.Duration   // 0 means one millisecond
	Generator    *maze.Generator // nil means a time seeded generator
}

// NewSession creates a session over an all Open maze.
func NewSession(c SessionConfig) (*Session, error) {
	if c.MaxDimension == 0 {
		c.MaxDimension = maze.DefaultMaxDimension
	}
	if c.Speed == 0 {
		c.Speed = DefaultSpeed
	}
	if c.TickUnit == 0 {
		c.TickUnit = time.Millisecond
	}
	if c.Generator == nil {
		c.Generator = maze.NewGenerator(nil)
	}
	c.Generator.WithMaxDimension(c.MaxDimension)

	m, err := maze.NewWithLimit(c.Rows, c.Cols, c.MaxDimension)
	if err != nil {
		return nil, err
	}

	return &Session{
		maze:         m,
		generator:    c.Generator,
		algorithm:    solver.BFS,
		maxDimension: c.MaxDimension,
		speed:        max(MinSpeed, min(MaxSpeed, c.Speed)),
		unit:         c.TickUnit,
		wake:         make(chan struct{}, 1),
	}, nil
}

// animating reports whether the replay is playing. Callers hold the lock.
func (s *Session) animating() bool {
	return s.scheduler != nil && s.scheduler.Playing()
}

// invalidate drops the result and its replay after a grid change.
func (s *Session) invalidate() {
	s.result = nil
	s.scheduler = nil
}

// Animating reports whether the replay is playing.
func (s *Session) Animating() bool {
	s.RLock()
	defer s.RUnlock()
	return s.animating()
}

// ToggleWall flips the cell at pos. It returns ErrAnimating while the replay
// is playing and maze.ErrOutOfBounds for a position outside the grid; a
// rejected edit leaves the maze unchanged.
func (s *Session) ToggleWall(pos maze.CellPosition) error {
	s.Lock()
	defer s.Unlock()
	if s.animating() {
		return ErrAnimating
	}
	if !s.maze.InBound(pos) {
		return maze.ErrOutOfBounds
	}
	s.maze.Toggle(pos)
	s.invalidate()
	return nil
}

// PaintStroke applies one drag over cells. The painted value is the inverse
// of the first cell and is used for the whole stroke, so a stroke either
// carves or fills. Cells outside the grid after the first are skipped. The
// stroke runs under one lock so concurrent strokes never mix values.
func (s *Session) PaintStroke(cells []maze.CellPosition) (int, maze.State, error) {
	s.Lock()
	defer s.Unlock()
	if s.animating() {
		return 0, maze.Open, ErrAnimating
	}
	if len(cells) == 0 {
		return 0, maze.Open, ErrEmptyStroke
	}

	brush := maze.NewBrush(s.maze, cells[0])
	if brush == nil {
		return 0, maze.Open, maze.ErrOutOfBounds
	}
	painted := 1
	for _, pos := range cells[1:] {
		if brush.Apply(pos) {
			painted++
		}
	}
	s.invalidate()
	return painted, brush.Value(), nil
}

// SetEndpoint moves start or end to pos. It returns ErrAnimating while the
// replay is playing, maze.ErrOutOfBounds outside the grid and
// ErrEndpointOnWall when pos is a Wall.
func (s *Session) SetEndpoint(e maze.Endpoint, pos maze.CellPosition) error {
	s.Lock()
	defer s.Unlock()
	if s.animating() {
		return ErrAnimating
	}
	if !s.maze.InBound(pos) {
		return maze.ErrOutOfBounds
	}
	if !s.maze.SetEndpoint(e, pos) {
		return ErrEndpointOnWall
	}
	s.invalidate()
	return nil
}

// SetAlgorithm selects the search algorithm and drops any previous result.
func (s *Session) SetAlgorithm(a solver.Algorithm) error {
	s.Lock()
	defer s.Unlock()
	if s.animating() {
		return ErrAnimating
	}
	if a != solver.BFS && a != solver.DFS {
		return solver.ErrUnknownAlgorithm
	}
	s.algorithm = a
	s.invalidate()
	return nil
}

// Algorithm returns the selected search algorithm.
func (s *Session) Algorithm() solver.Algorithm {
	s.RLock()
	defer s.RUnlock()
	return s.algorithm
}

// Resize replaces the maze with an all Open one of the new size.
func (s *Session) Resize(rows, cols int) error {
	s.Lock()
	defer s.Unlock()
	if s.animating() {
		return ErrAnimating
	}
	m, err := maze.NewWithLimit(rows, cols, s.maxDimension)
	if err != nil {
		return err
	}
	s.maze = m
	s.invalidate()
	return nil
}

// Clear resets the maze to all Open at its current size.
func (s *Session) Clear() error {
	s.RLock()
	rows, cols := s.maze.Rows(), s.maze.Cols()
	s.RUnlock()
	return s.Resize(rows, cols)
}

// Generate replaces the maze with a generated one of the same size. Any
// running replay is stopped first.
func (s *Session) Generate(strategy maze.Strategy, complexity int) error {
	s.Lock()
	defer s.Unlock()
	m, err := s.generator.Generate(strategy, s.maze.Rows(), s.maze.Cols(), complexity)
	if err != nil {
		return err
	}
	s.maze = m
	s.invalidate()
	s.notify()
	return nil
}

// Solve runs the selected algorithm and prepares a fresh replay of the result.
func (s *Session) Solve() (*solver.Result, error) {
	s.Lock()
	defer s.Unlock()
	if s.animating() {
		return nil, ErrAnimating
	}
	return s.solve()
}

func (s *Session) solve() (*solver.Result, error) {
	start, okStart := s.maze.Start()
	end, okEnd := s.maze.End()
	if !okStart || !okEnd {
		return nil, ErrNoEndpoints
	}

	res, err := solver.Solve(s.algorithm, s.maze, start, end)
	if err != nil {
		return nil, err
	}

	s.result = res
	s.scheduler = NewScheduler(res.Trace, res.Path)
	s.scheduler.SetSpeed(s.speed)
	s.scheduler.SetUnit(s.unit)
	return res, nil
}

// Result returns the last solve result, or nil when none is current.
func (s *Session) Result() *solver.Result {
	s.RLock()
	defer s.RUnlock()
	return s.result
}

// Play starts or resumes the replay. Without a current result it solves first.
// It reports whether a solve happened and the result being replayed.
func (s *Session) Play() (*solver.Result, bool, error) {
	s.Lock()
	defer s.Unlock()

	solved := false
	if s.result == nil {
		if _, err := s.solve(); err != nil {
			return nil, false, err
		}
		solved = true
	}
	s.scheduler.Play()
	s.notify()
	return s.result, solved, nil
}

// Pause halts the replay at the current tick boundary.
func (s *Session) Pause() {
	s.Lock()
	defer s.Unlock()
	if s.scheduler != nil {
		s.scheduler.Pause()
	}
	s.notify()
}

// Reset rewinds the replay to its initial state, keeping the result.
func (s *Session) Reset() {
	s.Lock()
	defer s.Unlock()
	if s.scheduler != nil {
		s.scheduler.Reset()
	}
	s.notify()
}

// SetSpeed sets the replay speed, clamped to [MinSpeed, MaxSpeed].
func (s *Session) SetSpeed(speed int) {
	s.Lock()
	defer s.Unlock()
	s.speed = max(MinSpeed, min(MaxSpeed, speed))
	if s.scheduler != nil {
		s.scheduler.SetSpeed(s.speed)
	}
	s.notify()
}

// Tick advances the replay by one unit regardless of playback state.
func (s *Session) Tick() (Event, bool) {
	s.Lock()
	defer s.Unlock()
	if s.scheduler == nil {
		return Event{}, false
	}
	return s.scheduler.Tick()
}

// notify wakes Run without blocking. Callers hold the lock.
func (s *Session) notify() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// nextDelay returns the wait before the next tick and whether ticking is due.
func (s *Session) nextDelay() (time.Duration, bool) {
	s.RLock()
	defer s.RUnlock()
	if !s.animating() {
		return 0, false
	}
	return s.scheduler.Delay(), true
}

// tickIfPlaying applies one tick only if the replay is still playing.
func (s *Session) tickIfPlaying() (Event, bool) {
	s.Lock()
	defer s.Unlock()
	if !s.animating() {
		return Event{}, false
	}
	return s.scheduler.Tick()
}

// Run drives the replay until ctx is done. Every tick's event is handed to
// sink before the next tick starts; sink must not call back into s.
func (s *Session) Run(ctx context.Context, sink func(Event)) {
	for {
		delay, playing := s.nextDelay()
		if !playing {
			select {
			case <-ctx.Done():
				return
			case <-s.wake:
				continue
			}
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-s.wake:
			timer.Stop()
			continue
		case <-timer.C:
		}

		if ev, ok := s.tickIfPlaying(); ok {
			sink(ev)
		}
	}
}

// State is a point in time copy of a session for rendering.
type State struct {
	Rows      int                 `json:"rows"`
	Cols      int                 `json:"cols"`
	Cells     [][]maze.State      `json:"cells"`
	Start     *maze.CellPosition  `json:"start,omitempty"`
	End       *maze.CellPosition  `json:"end,omitempty"`
	Algorithm string              `json:"algorithm"`
	Speed     int                 `json:"speed"`
	Solved    bool                `json:"solved"`
	Found     bool                `json:"found"`
	Playing   bool                `json:"playing"`
	Phase     Phase               `json:"phase"`
	Visited   []maze.CellPosition `json:"visited"`
	Path      []maze.CellPosition `json:"path"`
}

// Snapshot copies the session state.
func (s *Session) Snapshot() State {
	s.RLock()
	defer s.RUnlock()

	st := State{
		Rows:      s.maze.Rows(),
		Cols:      s.maze.Cols(),
		Cells:     s.maze.Cells(),
		Algorithm: s.algorithm.String(),
		Speed:     s.speed,
		Phase:     PhaseSearch,
		Visited:   []maze.CellPosition{},
		Path:      []maze.CellPosition{},
	}
	if start, ok := s.maze.Start(); ok {
		st.Start = &start
	}
	if end, ok := s.maze.End(); ok {
		st.End = &end
	}
	if s.result != nil {
		st.Solved = true
		st.Found = s.result.Found()
	}
	if s.scheduler != nil {
		st.Playing = s.scheduler.Playing()
		st.Phase = s.scheduler.Phase()
		st.Visited = s.scheduler.RevealedVisited()
		st.Path = s.scheduler.RevealedPath()
	}
	return st
}

// Maze returns a copy of the current maze.
func (s *Session) Maze() *maze.Maze {
	s.RLock()
	defer s.RUnlock()
	return s.maze.Clone()
}
