package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/beka-birhanu/maze-solver/domain"
	"github.com/beka-birhanu/maze-solver/game"
	"github.com/beka-birhanu/maze-solver/maze"
	"github.com/beka-birhanu/maze-solver/service/i"
	"github.com/beka-birhanu/maze-solver/solver"
	"github.com/google/uuid"
)

const (
	defaultSubscriberBuffer = 256
	defaultRecordTimeout    = 2 * time.Second
)

var (
	ErrSessionNotFound = errors.New("session not found")
)

var _ i.SessionManager = &SessionManager{}

// sessionEntry is a hosted session with its runner and subscribers.
type sessionEntry struct {
	session     *game.Session
	cancel      context.CancelFunc
	subscribers map[uint64]chan game.Event
	nextSubID   uint64
	expiry      *time.Timer
	sync.Mutex
}

// SessionManager hosts sessions in memory. Every session gets a runner
// goroutine that ticks its replay and broadcasts events to subscribers.
type SessionManager struct {
	sessions     map[uuid.UUID]*sessionEntry
	runRepo      i.RunRepo
	leaderboard  i.Leaderboard
	logger       i.Logger
	maxDimension int
	speed        int
	tickUnit     time.Duration
	bufferSize   int
	sessionTTL   time.Duration
	newGenerator func() *maze.Generator
	sync.RWMutex
}

// Config holds the dependencies and limits of a SessionManager.
// RunRepo and Leaderboard are optional. A zero SessionTTL keeps sessions
// until they are closed.
type Config struct {
	RunRepo          i.RunRepo
	Leaderboard      i.Leaderboard
	Logger           i.Logger
	MaxDimension     int
	Speed            int
	TickUnit         time.Duration
	SubscriberBuffer int
	SessionTTL       time.Duration
	NewGenerator     func() *maze.Generator
}

// NewSessionManager creates a SessionManager.
func NewSessionManager(c *Config) (*SessionManager, error) {
	if c.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if c.SubscriberBuffer <= 0 {
		c.SubscriberBuffer = defaultSubscriberBuffer
	}
	if c.NewGenerator == nil {
		c.NewGenerator = func() *maze.Generator { return maze.NewGenerator(nil) }
	}

	return &SessionManager{
		sessions:     make(map[uuid.UUID]*sessionEntry),
		runRepo:      c.RunRepo,
		leaderboard:  c.Leaderboard,
		logger:       c.Logger,
		maxDimension: c.MaxDimension,
		speed:        c.Speed,
		tickUnit:     c.TickUnit,
		bufferSize:   c.SubscriberBuffer,
		sessionTTL:   c.SessionTTL,
		newGenerator: c.NewGenerator,
	}, nil
}

// NewSession implements i.SessionManager.
func (g *SessionManager) NewSession(rows, cols int) (uuid.UUID, error) {
	session, err := game.NewSession(game.SessionConfig{
		Rows:         rows,
		Cols:         cols,
		MaxDimension: g.maxDimension,
		Speed:        g.speed,
		TickUnit:     g.tickUnit,
		Generator:    g.newGenerator(),
	})
	if err != nil {
		return uuid.Nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	entry := &sessionEntry{
		session:     session,
		cancel:      cancel,
		subscribers: make(map[uint64]chan game.Event),
	}

	id := g.saveSession(entry)
	go session.Run(ctx, func(ev game.Event) { g.broadcast(id, entry, ev) })
	if g.sessionTTL > 0 {
		entry.Lock()
		entry.expiry = time.AfterFunc(g.sessionTTL, func() { g.expire(id) })
		entry.Unlock()
	}
	g.logger.Info(fmt.Sprintf("started session %s (%dx%d)", id, rows, cols))
	return id, nil
}

// expire closes a session whose lifetime ran out.
func (g *SessionManager) expire(id uuid.UUID) {
	if err := g.Close(id); err == nil {
		g.logger.Info(fmt.Sprintf("session %s expired", id))
	}
}

func (g *SessionManager) saveSession(entry *sessionEntry) uuid.UUID {
	g.Lock()
	defer g.Unlock()

	sessionID := uuid.New()
	for {
		if _, ok := g.sessions[sessionID]; !ok {
			break
		}
		sessionID = uuid.New()
	}
	g.sessions[sessionID] = entry
	return sessionID
}

func (g *SessionManager) entry(id uuid.UUID) (*sessionEntry, error) {
	g.RLock()
	defer g.RUnlock()
	e, ok := g.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return e, nil
}

// Session implements i.SessionManager.
func (g *SessionManager) Session(id uuid.UUID) (*game.Session, error) {
	e, err := g.entry(id)
	if err != nil {
		return nil, err
	}
	return e.session, nil
}

// Solve implements i.SessionManager.
func (g *SessionManager) Solve(ctx context.Context, id uuid.UUID) (*solver.Result, error) {
	e, err := g.entry(id)
	if err != nil {
		return nil, err
	}

	res, err := e.session.Solve()
	if err != nil {
		return nil, err
	}
	g.record(ctx, id, e.session, res)
	return res, nil
}

// Play implements i.SessionManager.
func (g *SessionManager) Play(ctx context.Context, id uuid.UUID) (*solver.Result, error) {
	e, err := g.entry(id)
	if err != nil {
		return nil, err
	}

	res, solved, err := e.session.Play()
	if err != nil {
		return nil, err
	}
	if solved {
		g.record(ctx, id, e.session, res)
	}
	return res, nil
}

// record stores a run in the configured repo and leaderboard. Failures are
// logged and never fail the solve.
func (g *SessionManager) record(ctx context.Context, id uuid.UUID, s *game.Session, res *solver.Result) {
	m := s.Maze()
	run := domain.NewRun(domain.RunConfig{
		SessionID: id,
		Rows:      m.Rows(),
		Cols:      m.Cols(),
		Walls:     m.CountWalls(),
		Result:    res,
	})
	g.logger.Info(fmt.Sprintf("session %s solved with %s: explored %d, path %d", id, run.Algorithm, run.TraceLength, run.PathLength))

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), defaultRecordTimeout)
	defer cancel()

	if g.runRepo != nil {
		if err := g.runRepo.Save(ctx, run); err != nil {
			g.logger.Error(fmt.Sprintf("saving run %s: %s", run.ID, err))
		}
	}

	if g.leaderboard != nil && run.Found {
		if err := g.leaderboard.Add(ctx, run.Board(), float64(run.TraceLength), run.ID.String()); err != nil {
			g.logger.Error(fmt.Sprintf("adding run %s to leaderboard: %s", run.ID, err))
		}
	}
}

// Runs implements i.SessionManager.
func (g *SessionManager) Runs(ctx context.Context, id uuid.UUID, limit int64) ([]*domain.Run, error) {
	if _, err := g.entry(id); err != nil {
		return nil, err
	}
	if g.runRepo == nil {
		return []*domain.Run{}, nil
	}
	return g.runRepo.BySession(ctx, id, limit)
}

// Subscribe implements i.SessionManager.
func (g *SessionManager) Subscribe(id uuid.UUID) (<-chan game.Event, func(), error) {
	e, err := g.entry(id)
	if err != nil {
		return nil, nil, err
	}

	e.Lock()
	defer e.Unlock()
	subID := e.nextSubID
	e.nextSubID++
	ch := make(chan game.Event, g.bufferSize)
	e.subscribers[subID] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			e.Lock()
			defer e.Unlock()
			if sub, ok := e.subscribers[subID]; ok {
				delete(e.subscribers, subID)
				close(sub)
			}
		})
	}
	return ch, cancel, nil
}

// broadcast hands ev to every subscriber without blocking the runner.
func (g *SessionManager) broadcast(id uuid.UUID, e *sessionEntry, ev game.Event) {
	e.Lock()
	defer e.Unlock()
	for subID, ch := range e.subscribers {
		select {
		case ch <- ev:
		default:
			g.logger.Warning(fmt.Sprintf("session %s: subscriber %d is full, dropped %s event", id, subID, ev.Kind))
		}
	}
}

// Close implements i.SessionManager.
func (g *SessionManager) Close(id uuid.UUID) error {
	g.Lock()
	e, ok := g.sessions[id]
	if !ok {
		g.Unlock()
		return ErrSessionNotFound
	}
	delete(g.sessions, id)
	g.Unlock()

	g.stop(e)
	g.logger.Info(fmt.Sprintf("closed session %s", id))
	return nil
}

func (g *SessionManager) stop(e *sessionEntry) {
	e.cancel()
	e.Lock()
	defer e.Unlock()
	if e.expiry != nil {
		e.expiry.Stop()
	}
	for subID, ch := range e.subscribers {
		delete(e.subscribers, subID)
		close(ch)
	}
}

// StopAll stops every session.
func (g *SessionManager) StopAll() {
	g.Lock()
	defer g.Unlock()

	for id, e := range g.sessions {
		g.stop(e)
		delete(g.sessions, id)
	}
}
