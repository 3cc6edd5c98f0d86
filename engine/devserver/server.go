// Package devserver is a local game server that speaks the same HTTP API as
// the remote authority. It is used for offline play (-local) and in tests.
package devserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"connect3d/board"
	"connect3d/geometry"
	"connect3d/types"
)

// APIPrefix is the path prefix of every endpoint.
const APIPrefix = "/v1/api"

// Server holds one match: the board of the current game plus the running tally.
type Server struct {
	mu     sync.Mutex
	grid   *board.Grid
	over   bool
	scores types.ScoreSnapshot
	log    *zap.Logger
	router chi.Router
}

// New creates a server with an empty board of the given dimensions.
func New(dims geometry.Grid, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		grid: board.New(dims),
		log:  log,
	}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler serving the API.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Listen serves the API on addr in a background goroutine. It returns the
// running server and the base URL clients should use.
func (s *Server) Listen(addr string) (*http.Server, string, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, "", fmt.Errorf("listen on %s: %w", addr, err)
	}
	srv := &http.Server{Handler: s.router}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("devserver stopped", zap.Error(err))
		}
	}()
	base := fmt.Sprintf("http://%s%s", ln.Addr().String(), APIPrefix)
	s.log.Info("devserver listening", zap.String("url", base))
	return srv, base, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         60 * 15,
	}))

	r.Route(APIPrefix, func(rr chi.Router) {
		rr.Post("/players/{playerID}/moves", s.recordMove)
		rr.Post("/game/is_move_valid", s.isMoveValid)
		rr.Post("/game/{result}/reset", s.reset)
	})
	return r
}

type moveBody struct {
	Coordinates2D *types.BoardColumn `json:"coordinates_2d"`
}

type moveReply struct {
	Coordinates types.Placement `json:"coordinates"`
	State       int             `json:"state"`
}

var invalidPlacement = types.Placement{X: -1, Level: -1, Z: -1}

func (s *Server) recordMove(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "playerID"))
	if err != nil || (id != int(types.Player1) && id != int(types.Player2)) {
		writeError(w, http.StatusBadRequest, "Invalid player_id")
		return
	}
	col, ok := decodeColumn(w, r)
	if !ok {
		return
	}
	player := types.Player(id)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.over {
		writeJSON(w, http.StatusCreated, moveReply{Coordinates: invalidPlacement, State: types.OutcomeInvalid.Code()})
		return
	}
	pl, err := s.grid.Drop(col, player)
	if err != nil {
		s.log.Debug("move rejected", zap.Stringer("column", col), zap.Error(err))
		writeJSON(w, http.StatusCreated, moveReply{Coordinates: invalidPlacement, State: types.OutcomeInvalid.Code()})
		return
	}

	outcome := s.grid.Evaluate(pl)
	if outcome.Terminal() {
		s.over = true
	}
	s.log.Debug("move recorded",
		zap.Int("player", id),
		zap.Stringer("column", col),
		zap.Int("level", pl.Level),
		zap.Stringer("outcome", outcome))
	writeJSON(w, http.StatusCreated, moveReply{Coordinates: pl, State: outcome.Code()})
}

func (s *Server) isMoveValid(w http.ResponseWriter, r *http.Request) {
	col, ok := decodeColumn(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.grid.CanDrop(col) {
		writeJSON(w, http.StatusCreated, moveReply{Coordinates: invalidPlacement, State: types.OutcomeInvalid.Code()})
		return
	}
	pl := types.Placement{X: col.X, Level: s.grid.Height(col), Z: col.Z}
	writeJSON(w, http.StatusCreated, moveReply{Coordinates: pl, State: types.OutcomeContinue.Code()})
}

func (s *Server) reset(w http.ResponseWriter, r *http.Request) {
	tag := types.ResetTag(chi.URLParam(r, "result"))
	if !tag.Valid() {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Unknown result %q", tag))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch tag {
	case types.ResetPlayer1:
		s.scores.Player1Score++
	case types.ResetPlayer2:
		s.scores.Player2Score++
	}
	if tag.CountsGame() {
		s.scores.GamesPlayed++
	}
	s.grid.Clear()
	s.over = false

	s.log.Debug("game reset", zap.String("tag", string(tag)), zap.Int("games", s.scores.GamesPlayed))
	writeJSON(w, http.StatusOK, s.scores)
}

// Scores returns the current tally.
func (s *Server) Scores() types.ScoreSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scores
}

func decodeColumn(w http.ResponseWriter, r *http.Request) (types.BoardColumn, bool) {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		writeError(w, http.StatusBadRequest, "Request is not json!")
		return types.BoardColumn{}, false
	}
	var body moveBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Coordinates2D == nil {
		writeError(w, http.StatusBadRequest, "Missing coordinates_2d in request body")
		return types.BoardColumn{}, false
	}
	return *body.Coordinates2D, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
