package game

import (
	"fmt"
	"time"

	"github.com/beka-birhanu/maze-solver/maze"
)

// Scheduler constants.
const (
	MinSpeed     = 1
	MaxSpeed     = 100
	DefaultSpeed = 50

	// delayBase gives delay = delayBase - speed units, so speed 100 waits one unit.
	delayBase = MaxSpeed + 1
)

// Phase is the stage of a replay.
type Phase uint8

const (
	PhaseSearch   Phase = iota // revealing the trace
	PhasePath                  // revealing the path
	PhaseComplete              // nothing left to reveal
)

func (p Phase) String() string {
	switch p {
	case PhaseSearch:
		return "search"
	case PhasePath:
		return "path"
	case PhaseComplete:
		return "complete"
	}
	return fmt.Sprintf("phase(%d)", uint8(p))
}

// MarshalText implements encoding.TextMarshaler.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Phase) UnmarshalText(b []byte) error {
	for _, v := range []Phase{PhaseSearch, PhasePath, PhaseComplete} {
		if v.String() == string(b) {
			*p = v
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", b)
}

// EventKind tells what a tick revealed.
type EventKind uint8

const (
	EventVisited     EventKind = iota // a trace cell was revealed
	EventPath                         // a path cell was revealed
	EventPhaseChange                  // the phase advanced, nothing revealed
)

func (k EventKind) String() string {
	switch k {
	case EventVisited:
		return "visited"
	case EventPath:
		return "path"
	case EventPhaseChange:
		return "phase"
	}
	return fmt.Sprintf("event(%d)", uint8(k))
}

// MarshalText implements encoding.TextMarshaler.
func (k EventKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *EventKind) UnmarshalText(b []byte) error {
	for _, v := range []EventKind{EventVisited, EventPath, EventPhaseChange} {
		if v.String() == string(b) {
			*k = v
			return nil
		}
	}
	return fmt.Errorf("unknown event kind %q", b)
}

// Event is the incremental reveal produced by one tick.
type Event struct {
	Kind  EventKind         `json:"kind"`
	Cell  maze.CellPosition `json:"cell"`
	Step  int               `json:"step"`  // cursor value after the tick
	Phase Phase             `json:"phase"` // phase after the tick
	Found bool              `json:"found"` // set on phase changes: whether a path exists
}

// Scheduler replays a trace and a path one unit per tick. It moves through
// PhaseSearch, PhasePath and PhaseComplete and never rewinds except on Reset.
// It holds no timer; callers decide when to Tick.
type Scheduler struct {
	trace []maze.CellPosition
	path  []maze.CellPosition

	phase        Phase
	searchCursor int
	pathCursor   int
	visited      map[maze.CellPosition]struct{}
	revealed     []maze.CellPosition

	playing bool
	speed   int
	unit    time.Duration
}

// NewScheduler prepares a replay of trace and path at DefaultSpeed with one
// millisecond delay units.
func NewScheduler(trace, path []maze.CellPosition) *Scheduler {
	s := &Scheduler{
		trace: trace,
		path:  path,
		speed: DefaultSpeed,
		unit:  time.Millisecond,
	}
	s.Reset()
	return s
}

// Tick applies one reveal and returns the event it produced. It returns false
// once the replay is complete.
func (s *Scheduler) Tick() (Event, bool) {
	switch s.phase {
	case PhaseSearch:
		if s.searchCursor == len(s.trace) {
			s.phase = PhasePath
			return s.phaseEvent(), true
		}
		cell := s.trace[s.searchCursor]
		s.visited[cell] = struct{}{}
		s.searchCursor++
		return Event{Kind: EventVisited, Cell: cell, Step: s.searchCursor, Phase: s.phase}, true

	case PhasePath:
		if s.pathCursor == len(s.path) {
			s.phase = PhaseComplete
			s.playing = false
			return s.phaseEvent(), true
		}
		cell := s.path[s.pathCursor]
		s.revealed = append(s.revealed, cell)
		s.pathCursor++
		return Event{Kind: EventPath, Cell: cell, Step: s.pathCursor, Phase: s.phase}, true
	}
	return Event{}, false
}

func (s *Scheduler) phaseEvent() Event {
	return Event{Kind: EventPhaseChange, Phase: s.phase, Found: len(s.path) > 0}
}

// Play starts or resumes ticking from where the replay stopped.
// Playing a completed replay has no effect.
func (s *Scheduler) Play() {
	if s.phase != PhaseComplete {
		s.playing = true
	}
}

// Pause stops ticking without touching phase or cursors.
func (s *Scheduler) Pause() {
	s.playing = false
}

// Playing reports whether the replay is running.
func (s *Scheduler) Playing() bool {
	return s.playing
}

// Reset returns to the start of PhaseSearch with nothing revealed and
// stops playback. The trace and path are kept.
func (s *Scheduler) Reset() {
	s.phase = PhaseSearch
	s.searchCursor = 0
	s.pathCursor = 0
	s.visited = make(map[maze.CellPosition]struct{}, len(s.trace))
	s.revealed = make([]maze.CellPosition, 0, len(s.path))
	s.playing = false
}

// SetSpeed sets the speed, clamped to [MinSpeed, MaxSpeed].
func (s *Scheduler) SetSpeed(speed int) {
	s.speed = max(MinSpeed, min(MaxSpeed, speed))
}

// Speed returns the current speed.
func (s *Scheduler) Speed() int {
	return s.speed
}

// SetUnit sets the duration of one delay unit.
func (s *Scheduler) SetUnit(unit time.Duration) {
	if unit > 0 {
		s.unit = unit
	}
}

// Delay returns the wait before the next tick: (101 - speed) units.
func (s *Scheduler) Delay() time.Duration {
	return time.Duration(delayBase-s.speed) * s.unit
}

// Phase returns the current phase.
func (s *Scheduler) Phase() Phase {
	return s.phase
}

// SearchCursor returns how many trace cells have been revealed.
func (s *Scheduler) SearchCursor() int {
	return s.searchCursor
}

// PathCursor returns how many path cells have been revealed.
func (s *Scheduler) PathCursor() int {
	return s.pathCursor
}

// IsVisited reports whether cell has been revealed as visited.
func (s *Scheduler) IsVisited(cell maze.CellPosition) bool {
	_, ok := s.visited[cell]
	return ok
}

// RevealedVisited returns the revealed trace cells in reveal order.
func (s *Scheduler) RevealedVisited() []maze.CellPosition {
	return append([]maze.CellPosition(nil), s.trace[:s.searchCursor]...)
}

// RevealedPath returns the revealed path cells in order.
func (s *Scheduler) RevealedPath() []maze.CellPosition {
	return append([]maze.CellPosition(nil), s.revealed...)
}
