// internal/handlers/server.go
package handlers

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/domino/internal/config"
	"github.com/jason-s-yu/domino/internal/game"
	"github.com/jason-s-yu/domino/internal/lobby"
	"github.com/jason-s-yu/domino/internal/models"
	log "github.com/sirupsen/logrus"
)

// FinishedGameRetention is how long a finished game stays readable by id.
const FinishedGameRetention = 5 * time.Minute

// PlayerIDHeader carries the caller's player id. Identity is trusted as sent.
const PlayerIDHeader = "X-Player-Id"

// Server wires the lobby manager, the game store and the hub to HTTP.
type Server struct {
	Games   game.Repository
	Lobbies *lobby.Manager
	Hub     *Hub
	Rules   game.HouseRules

	// InsecureOrigins disables the WebSocket origin check, for local clients.
	InsecureOrigins bool

	mux *http.ServeMux
}

// NewServer builds a Server from cfg and installs the lobby countdown callback.
func NewServer(cfg config.Config, games game.Repository, lobbies *lobby.Manager, hub *Hub) *Server {
	s := &Server{
		Games:   games,
		Lobbies: lobbies,
		Hub:     hub,
		Rules:   game.HouseRulesFromConfig(cfg),
		mux:     http.NewServeMux(),
	}
	lobbies.OnTimeout = s.lobbyExpired
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)

	s.mux.HandleFunc("GET /api/game/{id}", s.handleGetGame)
	s.mux.HandleFunc("GET /api/game/{id}/moves", s.handleGetMoves)
	s.mux.HandleFunc("POST /api/game/{id}/move", s.handleMove)
	s.mux.HandleFunc("POST /api/game/{id}/draw", s.handleSimpleAction(game.ActionDraw))
	s.mux.HandleFunc("POST /api/game/{id}/pass", s.handleSimpleAction(game.ActionPass))

	s.mux.HandleFunc("POST /api/lobby", s.handleCreateLobby)
	s.mux.HandleFunc("GET /api/lobby/{id}", s.handleGetLobby)
	s.mux.HandleFunc("POST /api/lobby/{id}/join", s.handleJoinLobby)
	s.mux.HandleFunc("POST /api/lobby/{id}/start", s.handleStartLobby)
	s.mux.HandleFunc("DELETE /api/lobby/{id}", s.handleCancelLobby)

	s.mux.HandleFunc("POST /api/test/create", s.handleCreateTestGame)
	s.mux.HandleFunc("GET /api/leaderboard/{group}", s.handleLeaderboard)

	s.mux.HandleFunc("GET /ws/{game}/{player}", s.handleWS)
}

// Handler returns the routed handler wrapped in request logging.
func (s *Server) Handler() http.Handler {
	return logRequests(s.mux)
}

// StartGame turns a roster into a running session for groupID.
func (s *Server) StartGame(groupID string, players []*models.Player) (*game.DominoGame, error) {
	g := game.NewDominoGame(groupID, players, s.Rules)
	if err := s.launch(g); err != nil {
		return nil, err
	}
	return g, nil
}

// launch attaches g to the hub, registers it and deals the first game.
func (s *Server) launch(g *game.DominoGame) error {
	s.Hub.Attach(g)
	g.OnSessionEnd = s.sessionEnded
	if err := s.Games.Add(g); err != nil {
		return err
	}
	if err := g.Start(); err != nil {
		s.Games.Remove(g.ID)
		return err
	}
	return nil
}

// sessionEnded frees the group and schedules the finished game for removal.
// Called with g's lock held; only touches the store and the hub.
func (s *Server) sessionEnded(g *game.DominoGame, _ []game.Standing) {
	s.Games.Release(g)
	id := g.ID
	time.AfterFunc(FinishedGameRetention, func() {
		s.Games.Remove(id)
		s.Hub.CloseGame(id)
	})
}

func (s *Server) lobbyExpired(l lobby.Lobby, started bool) {
	if !started {
		return
	}
	g, err := s.StartGame(l.GroupID, l.Players)
	if err != nil {
		log.Printf("Error: Lobby %s: Auto-start failed: %v", l.ID, err)
		return
	}
	log.Printf("Lobby %s: Auto-started game %s.", l.ID, g.ID)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ok", "games": len(s.Games.List())})
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

type errorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Debugf("HTTP: Encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, kind, msg string) {
	writeJSON(w, status, errorBody{Success: false, Error: kind, Message: msg})
}

// statusForResult maps a rejected action onto an HTTP status: malformed
// requests are 400, rule violations are 409.
func statusForResult(res game.ActionResult) int {
	switch {
	case res.Success:
		return http.StatusOK
	case res.Error == game.ErrInvalidAction:
		return http.StatusBadRequest
	}
	return http.StatusConflict
}

var errMissingPlayer = errors.New("missing " + PlayerIDHeader + " header")

// playerID reads the caller's id from the request header.
func playerID(r *http.Request) (uuid.UUID, error) {
	raw := r.Header.Get(PlayerIDHeader)
	if raw == "" {
		return uuid.Nil, errMissingPlayer
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s: %w", PlayerIDHeader, err)
	}
	return id, nil
}

func decodeBody(r *http.Request, dst interface{}) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<16))
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

// Hijack passes through so WebSocket upgrades work behind the logger.
func (sr *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := sr.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	sr.status = http.StatusSwitchingProtocols
	return hj.Hijack()
}

func (sr *statusRecorder) Unwrap() http.ResponseWriter { return sr.ResponseWriter }

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.WithFields(log.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start),
		}).Debug("http request")
	})
}
