package mazeapi

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/beka-birhanu/maze-solver/api/identity"
	"github.com/beka-birhanu/maze-solver/domain"
	"github.com/beka-birhanu/maze-solver/game"
	"github.com/beka-birhanu/maze-solver/maze"
	"github.com/beka-birhanu/maze-solver/service"
	"github.com/beka-birhanu/maze-solver/service/i"
	"github.com/beka-birhanu/maze-solver/solver"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	contextSession   = "session"
	contextSessionID = "sessionID"

	defaultTopLimit  = 10
	defaultRunsLimit = 20
)

// Controller serves maze sessions: editing, generation, solving and the
// replay stream.
type Controller struct {
	sessions    i.SessionManager
	tokenizer   i.Tokenizer
	runRepo     i.RunRepo
	leaderboard i.Leaderboard
	encoder     game.Encoder
	defaultRows int
	defaultCols int
	tokenTTL    time.Duration
}

// Config holds the dependencies of a Controller. RunRepo, Leaderboard and
// Encoder are optional.
type Config struct {
	Sessions    i.SessionManager
	Tokenizer   i.Tokenizer
	RunRepo     i.RunRepo
	Leaderboard i.Leaderboard
	Encoder     game.Encoder
	DefaultRows int
	DefaultCols int
	TokenTTL    time.Duration
}

// NewController initializes a Controller.
func NewController(c Config) (*Controller, error) {
	if c.Sessions == nil {
		return nil, errors.New("session manager is required")
	}
	if c.Tokenizer == nil {
		return nil, errors.New("tokenizer is required")
	}
	if c.DefaultRows == 0 {
		c.DefaultRows = 10
	}
	if c.DefaultCols == 0 {
		c.DefaultCols = 10
	}
	if c.TokenTTL == 0 {
		c.TokenTTL = time.Hour
	}

	return &Controller{
		sessions:    c.Sessions,
		tokenizer:   c.Tokenizer,
		runRepo:     c.RunRepo,
		leaderboard: c.Leaderboard,
		encoder:     c.Encoder,
		defaultRows: c.DefaultRows,
		defaultCols: c.DefaultCols,
		tokenTTL:    c.TokenTTL,
	}, nil
}

// RegisterPublic registers public routes.
func (mc *Controller) RegisterPublic(route *gin.RouterGroup) {
	route.POST("/sessions", mc.createSession)

	runs := route.Group("/runs")
	{
		runs.GET("/top", mc.topRuns)
		runs.GET("/:ID", mc.run)
	}
}

// RegisterProtected registers protected routes.
func (mc *Controller) RegisterProtected(route *gin.RouterGroup) {
	s := route.Group("/sessions/:ID", mc.sessionScope)
	{
		s.GET("", mc.state)
		s.DELETE("", mc.closeSession)
		s.GET("/render", mc.render)
		s.GET("/runs", mc.sessionRuns)

		s.POST("/resize", mc.resize)
		s.POST("/clear", mc.clear)
		s.POST("/cells/toggle", mc.toggle)
		s.POST("/cells/paint", mc.paint)
		s.PUT("/endpoints/:role", mc.setEndpoint)
		s.POST("/generate", mc.generate)
		s.PUT("/algorithm", mc.setAlgorithm)

		s.POST("/solve", mc.solve)
		s.GET("/result", mc.result)

		s.POST("/play", mc.play)
		s.POST("/pause", mc.pause)
		s.POST("/reset", mc.reset)
		s.PUT("/speed", mc.setSpeed)
		s.GET("/events", mc.events)
	}
}

// sessionScope resolves :ID and checks the bearer token was issued for it.
func (mc *Controller) sessionScope(ctx *gin.Context) {
	ID, err := uuid.Parse(ctx.Param("ID"))
	if err != nil {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return
	}

	claimed, ok := identity.SessionID(ctx)
	if !ok || claimed != ID.String() {
		ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "token does not grant access to this session"})
		return
	}

	s, err := mc.sessions.Session(ID)
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	ctx.Set(contextSessionID, ID)
	ctx.Set(contextSession, s)
	ctx.Next()
}

func sessionFrom(ctx *gin.Context) (uuid.UUID, *game.Session) {
	return ctx.MustGet(contextSessionID).(uuid.UUID), ctx.MustGet(contextSession).(*game.Session)
}

// statusOf maps service and engine errors to HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, service.ErrSessionNotFound), errors.Is(err, domain.ErrRunNotFound):
		return http.StatusNotFound
	case errors.Is(err, game.ErrAnimating):
		return http.StatusConflict
	case errors.Is(err, maze.ErrInvalidDimensions),
		errors.Is(err, maze.ErrInvalidComplexity),
		errors.Is(err, maze.ErrUnknownStrategy),
		errors.Is(err, maze.ErrOutOfBounds),
		errors.Is(err, solver.ErrUnknownAlgorithm),
		errors.Is(err, solver.ErrOutOfBounds),
		errors.Is(err, game.ErrNoEndpoints),
		errors.Is(err, game.ErrEndpointOnWall),
		errors.Is(err, game.ErrEmptyStroke):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(ctx *gin.Context, err error) {
	code := statusOf(err)
	msg := err.Error()
	if code == http.StatusInternalServerError {
		msg = "internal error"
	}
	ctx.AbortWithStatusJSON(code, gin.H{"error": msg})
}

func (mc *Controller) createSession(ctx *gin.Context) {
	var request CreateSessionRequest
	if err := ctx.ShouldBindJSON(&request); err != nil && !errors.Is(err, io.EOF) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if request.Rows == 0 {
		request.Rows = mc.defaultRows
	}
	if request.Cols == 0 {
		request.Cols = mc.defaultCols
	}

	ID, err := mc.sessions.NewSession(request.Rows, request.Cols)
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	token, err := mc.tokenizer.Generate(map[string]interface{}{identity.ClaimSessionID: ID.String()}, mc.tokenTTL)
	if err != nil {
		_ = mc.sessions.Close(ID)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "error while issuing session token"})
		return
	}

	s, err := mc.sessions.Session(ID)
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, &CreateSessionResponse{
		ID:    ID.String(),
		Token: token,
		State: s.Snapshot(),
	})
}

func (mc *Controller) state(ctx *gin.Context) {
	_, s := sessionFrom(ctx)
	ctx.JSON(http.StatusOK, s.Snapshot())
}

func (mc *Controller) closeSession(ctx *gin.Context) {
	ID, _ := sessionFrom(ctx)
	if err := mc.sessions.Close(ID); err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

func (mc *Controller) render(ctx *gin.Context) {
	_, s := sessionFrom(ctx)
	st := s.Snapshot()
	ctx.String(http.StatusOK, s.Maze().Render(st.Visited, st.Path))
}

func (mc *Controller) sessionRuns(ctx *gin.Context) {
	ID, _ := sessionFrom(ctx)
	runs, err := mc.sessions.Runs(ctx, ID, defaultRunsLimit)
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	response := make([]*RunResponse, 0, len(runs))
	for _, r := range runs {
		response = append(response, newRunResponse(r))
	}
	ctx.JSON(http.StatusOK, response)
}

func (mc *Controller) resize(ctx *gin.Context) {
	var request ResizeRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	_, s := sessionFrom(ctx)
	if err := s.Resize(request.Rows, request.Cols); err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, s.Snapshot())
}

func (mc *Controller) clear(ctx *gin.Context) {
	_, s := sessionFrom(ctx)
	if err := s.Clear(); err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, s.Snapshot())
}

func (mc *Controller) toggle(ctx *gin.Context) {
	var request CellRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	_, s := sessionFrom(ctx)
	if err := s.ToggleWall(request.position()); err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, s.Snapshot())
}

func (mc *Controller) paint(ctx *gin.Context) {
	var request PaintRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	_, s := sessionFrom(ctx)
	painted, value, err := s.PaintStroke(request.Cells)
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, &PaintResponse{
		Painted: painted,
		Value:   value,
	})
}

func (mc *Controller) setEndpoint(ctx *gin.Context) {
	role, err := maze.ParseEndpoint(ctx.Param("role"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var request CellRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	_, s := sessionFrom(ctx)
	if err := s.SetEndpoint(role, request.position()); err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, s.Snapshot())
}

func (mc *Controller) generate(ctx *gin.Context) {
	var request GenerateRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	strategy, err := maze.ParseStrategy(request.Strategy)
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	_, s := sessionFrom(ctx)
	if err := s.Generate(strategy, *request.Complexity); err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, s.Snapshot())
}

func (mc *Controller) setAlgorithm(ctx *gin.Context) {
	var request AlgorithmRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	alg, err := solver.ParseAlgorithm(request.Algorithm)
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	_, s := sessionFrom(ctx)
	if err := s.SetAlgorithm(alg); err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, s.Snapshot())
}

func (mc *Controller) solve(ctx *gin.Context) {
	ID, _ := sessionFrom(ctx)
	res, err := mc.sessions.Solve(ctx, ID)
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	mc.writeResult(ctx, res)
}

func (mc *Controller) result(ctx *gin.Context) {
	_, s := sessionFrom(ctx)
	res := s.Result()
	if res == nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "maze has not been solved"})
		return
	}
	mc.writeResult(ctx, res)
}

// writeResult answers in protobuf when the client asks for it and an
// encoder is configured, JSON otherwise.
func (mc *Controller) writeResult(ctx *gin.Context, res *solver.Result) {
	if mc.encoder != nil && strings.Contains(ctx.GetHeader("Accept"), mc.encoder.ContentType()) {
		b, err := mc.encoder.MarshalResult(res)
		if err != nil {
			abortWithError(ctx, err)
			return
		}
		ctx.Data(http.StatusOK, mc.encoder.ContentType(), b)
		return
	}
	ctx.JSON(http.StatusOK, newResultResponse(res))
}

func (mc *Controller) play(ctx *gin.Context) {
	ID, s := sessionFrom(ctx)
	if _, err := mc.sessions.Play(ctx, ID); err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, s.Snapshot())
}

func (mc *Controller) pause(ctx *gin.Context) {
	_, s := sessionFrom(ctx)
	s.Pause()
	ctx.JSON(http.StatusOK, s.Snapshot())
}

func (mc *Controller) reset(ctx *gin.Context) {
	_, s := sessionFrom(ctx)
	s.Reset()
	ctx.JSON(http.StatusOK, s.Snapshot())
}

func (mc *Controller) setSpeed(ctx *gin.Context) {
	var request SpeedRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	_, s := sessionFrom(ctx)
	s.SetSpeed(request.Speed)
	ctx.JSON(http.StatusOK, s.Snapshot())
}

// events streams replay events as server-sent events, starting with the
// current state.
func (mc *Controller) events(ctx *gin.Context) {
	ID, s := sessionFrom(ctx)
	ch, cancel, err := mc.sessions.Subscribe(ID)
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	defer cancel()

	ctx.SSEvent("state", s.Snapshot())
	ctx.Writer.Flush()

	done := ctx.Request.Context().Done()
	ctx.Stream(func(_ io.Writer) bool {
		select {
		case ev, ok := <-ch:
			if !ok {
				ctx.SSEvent("closed", gin.H{"id": ID.String()})
				return false
			}
			ctx.SSEvent(ev.Kind.String(), ev)
			return true
		case <-done:
			return false
		}
	})
}

func (mc *Controller) topRuns(ctx *gin.Context) {
	var query TopRunsQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	alg, err := solver.ParseAlgorithm(query.Algorithm)
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	if query.Limit == 0 {
		query.Limit = defaultTopLimit
	}

	board := domain.BoardName(alg.String(), query.Rows, query.Cols)
	response := &TopRunsResponse{Board: board, Entries: []i.Entry{}}
	if mc.leaderboard != nil {
		entries, err := mc.leaderboard.Top(ctx, board, query.Limit)
		if err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "error while reading leaderboard"})
			return
		}
		response.Entries = append(response.Entries, entries...)
	}
	ctx.JSON(http.StatusOK, response)
}

func (mc *Controller) run(ctx *gin.Context) {
	ID, err := uuid.Parse(ctx.Param("ID"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid run id"})
		return
	}
	if mc.runRepo == nil {
		abortWithError(ctx, domain.ErrRunNotFound)
		return
	}

	r, err := mc.runRepo.ByID(ctx, ID)
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, newRunResponse(r))
}
