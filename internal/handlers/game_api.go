// internal/handlers/game_api.go
package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/domino/internal/cache"
	"github.com/jason-s-yu/domino/internal/database"
	"github.com/jason-s-yu/domino/internal/game"
	"github.com/jason-s-yu/domino/internal/models"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// lookupGame resolves the {id} path value, writing the error response on failure.
func (s *Server) lookupGame(w http.ResponseWriter, r *http.Request) (*game.DominoGame, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "BadRequest", "invalid game id")
		return nil, false
	}
	g, ok := s.Games.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "NotFound", game.ErrGameNotFound.Error())
		return nil, false
	}
	return g, true
}

// handleGetGame returns the caller's view of the game. Without a player
// header the spectator view is returned. A game no longer held by this
// process is served from the Redis snapshot when one exists.
func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "BadRequest", "invalid game id")
		return
	}
	viewer := uuid.Nil
	if r.Header.Get(PlayerIDHeader) != "" {
		if viewer, err = playerID(r); err != nil {
			writeError(w, http.StatusBadRequest, "BadRequest", err.Error())
			return
		}
	}

	if g, ok := s.Games.Get(id); ok {
		g.Mu.Lock()
		state := g.GetCurrentObfuscatedGameState(viewer)
		g.Mu.Unlock()
		writeJSON(w, http.StatusOK, state)
		return
	}

	if cache.Rdb != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		var snap game.ObfGameState
		err := cache.LoadGameSnapshot(ctx, id, &snap)
		if err == nil {
			writeJSON(w, http.StatusOK, snap)
			return
		}
		if !errors.Is(err, redis.Nil) {
			log.Printf("Error: HTTP: Loading snapshot for game %s: %v", id, err)
		}
	}
	writeError(w, http.StatusNotFound, "NotFound", game.ErrGameNotFound.Error())
}

func (s *Server) handleGetMoves(w http.ResponseWriter, r *http.Request) {
	pid, err := playerID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "BadRequest", err.Error())
		return
	}
	g, ok := s.lookupGame(w, r)
	if !ok {
		return
	}
	g.Mu.Lock()
	moves := []game.MoveView{}
	if g.Started && !g.GameOver {
		moves = append(moves, g.LegalMovesFor(pid)...)
	}
	g.Mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]interface{}{"moves": moves})
}

type moveRequest struct {
	Tile interface{} `json:"tile"`
	Side interface{} `json:"side"`
}

// handleMove places a tile. Both tile and side are required here; the
// default side only applies to WebSocket actions.
func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	pid, err := playerID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "BadRequest", err.Error())
		return
	}
	var req moveRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, game.ErrInvalidAction, err.Error())
		return
	}
	if req.Tile == nil || req.Side == nil {
		writeError(w, http.StatusBadRequest, game.ErrInvalidAction, "missing tile or side")
		return
	}
	g, ok := s.lookupGame(w, r)
	if !ok {
		return
	}
	action := models.GameAction{
		ActionType: game.ActionPlay,
		Payload:    map[string]interface{}{"tile": req.Tile, "side": req.Side},
	}
	s.runAction(w, g, pid, action)
}

func (s *Server) handleSimpleAction(actionType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pid, err := playerID(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "BadRequest", err.Error())
			return
		}
		g, ok := s.lookupGame(w, r)
		if !ok {
			return
		}
		s.runAction(w, g, pid, models.GameAction{ActionType: actionType})
	}
}

func (s *Server) runAction(w http.ResponseWriter, g *game.DominoGame, pid uuid.UUID, action models.GameAction) {
	g.Mu.Lock()
	res := g.HandlePlayerAction(pid, action)
	g.Mu.Unlock()
	writeJSON(w, statusForResult(res), res)
}

type testGameRequest struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
	NumBots    int    `json:"num_bots"`
}

// handleCreateTestGame starts a practice game of one human against bots.
func (s *Server) handleCreateTestGame(w http.ResponseWriter, r *http.Request) {
	req := testGameRequest{PlayerName: "Test Player", NumBots: game.MinTestBots}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "BadRequest", err.Error())
		return
	}
	pid := uuid.New()
	if req.PlayerID != "" {
		var err error
		if pid, err = uuid.Parse(req.PlayerID); err != nil {
			writeError(w, http.StatusBadRequest, "BadRequest", "invalid player_id")
			return
		}
	}

	g := game.NewTestGame(models.NewPlayer(pid, req.PlayerName), req.NumBots, s.Rules)
	if err := s.launch(g); err != nil {
		status, kind := lobbyStatus(err)
		writeError(w, status, kind, err.Error())
		return
	}
	log.Printf("HTTP: Test game %s created for %s with %d bots.", g.ID, pid, len(g.Players)-1)
	writeJSON(w, http.StatusOK, map[string]interface{}{"game_id": g.ID, "player_id": pid})
}

// handleLeaderboard returns the group's all-time wins, fish included as one row.
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	store := database.DB
	if store == nil {
		writeError(w, http.StatusServiceUnavailable, "Unavailable", "persistence is disabled")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	rows, err := store.GroupLeaderboard(ctx, r.PathValue("group"))
	if err != nil {
		log.Printf("Error: HTTP: Leaderboard for group %s: %v", r.PathValue("group"), err)
		writeError(w, http.StatusInternalServerError, "Internal", "leaderboard unavailable")
		return
	}
	if rows == nil {
		rows = []database.LeaderboardRow{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"group": r.PathValue("group"), "leaderboard": rows})
}
