// internal/handlers/lobby_api.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/jason-s-yu/domino/internal/game"
	"github.com/jason-s-yu/domino/internal/lobby"
	"github.com/jason-s-yu/domino/internal/models"
)

type lobbyRequest struct {
	GroupID    string `json:"group_id"`
	PlayerName string `json:"player_name"`
}

// lobbyStatus maps lobby and store errors onto HTTP statuses.
func lobbyStatus(err error) (int, string) {
	switch {
	case errors.Is(err, lobby.ErrLobbyNotFound):
		return http.StatusNotFound, "NotFound"
	case errors.Is(err, lobby.ErrLobbyExists), errors.Is(err, lobby.ErrLobbyFull),
		errors.Is(err, lobby.ErrAlreadyJoined), errors.Is(err, lobby.ErrNotEnoughPlayers),
		errors.Is(err, game.ErrGroupBusy):
		return http.StatusConflict, "Conflict"
	}
	return http.StatusInternalServerError, "Internal"
}

// lobbyCaller reads the caller and the optional JSON body shared by lobby routes.
func lobbyCaller(w http.ResponseWriter, r *http.Request) (*models.Player, lobbyRequest, bool) {
	var req lobbyRequest
	pid, err := playerID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "BadRequest", err.Error())
		return nil, req, false
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "BadRequest", err.Error())
		return nil, req, false
	}
	return models.NewPlayer(pid, req.PlayerName), req, true
}

func lobbyPathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "BadRequest", "invalid lobby id")
		return uuid.Nil, false
	}
	return id, true
}

func (s *Server) handleCreateLobby(w http.ResponseWriter, r *http.Request) {
	p, req, ok := lobbyCaller(w, r)
	if !ok {
		return
	}
	if req.GroupID == "" {
		writeError(w, http.StatusBadRequest, "BadRequest", "group_id is required")
		return
	}
	if _, busy := s.Games.ForGroup(req.GroupID); busy {
		status, kind := lobbyStatus(game.ErrGroupBusy)
		writeError(w, status, kind, game.ErrGroupBusy.Error())
		return
	}
	l, err := s.Lobbies.Create(req.GroupID, p)
	if err != nil {
		status, kind := lobbyStatus(err)
		writeError(w, status, kind, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, l)
}

func (s *Server) handleGetLobby(w http.ResponseWriter, r *http.Request) {
	id, ok := lobbyPathID(w, r)
	if !ok {
		return
	}
	l, found := s.Lobbies.Get(id)
	if !found {
		writeError(w, http.StatusNotFound, "NotFound", lobby.ErrLobbyNotFound.Error())
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (s *Server) handleJoinLobby(w http.ResponseWriter, r *http.Request) {
	id, ok := lobbyPathID(w, r)
	if !ok {
		return
	}
	p, _, ok := lobbyCaller(w, r)
	if !ok {
		return
	}
	l, err := s.Lobbies.Join(id, p)
	if err != nil {
		status, kind := lobbyStatus(err)
		writeError(w, status, kind, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, l)
}

// handleStartLobby lets the host start the session before the countdown ends.
func (s *Server) handleStartLobby(w http.ResponseWriter, r *http.Request) {
	id, ok := lobbyPathID(w, r)
	if !ok {
		return
	}
	pid, err := playerID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "BadRequest", err.Error())
		return
	}
	l, found := s.Lobbies.Get(id)
	if !found {
		writeError(w, http.StatusNotFound, "NotFound", lobby.ErrLobbyNotFound.Error())
		return
	}
	if l.HostID != pid {
		writeError(w, http.StatusForbidden, "Forbidden", "only the host can start the lobby")
		return
	}
	if l, err = s.Lobbies.Start(id); err != nil {
		status, kind := lobbyStatus(err)
		writeError(w, status, kind, err.Error())
		return
	}
	g, err := s.StartGame(l.GroupID, l.Players)
	if err != nil {
		status, kind := lobbyStatus(err)
		writeError(w, status, kind, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"game_id": g.ID, "lobby_id": l.ID})
}

func (s *Server) handleCancelLobby(w http.ResponseWriter, r *http.Request) {
	id, ok := lobbyPathID(w, r)
	if !ok {
		return
	}
	pid, err := playerID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "BadRequest", err.Error())
		return
	}
	l, found := s.Lobbies.Get(id)
	if !found {
		writeError(w, http.StatusNotFound, "NotFound", lobby.ErrLobbyNotFound.Error())
		return
	}
	if l.HostID != pid {
		writeError(w, http.StatusForbidden, "Forbidden", "only the host can cancel the lobby")
		return
	}
	if err := s.Lobbies.Cancel(id); err != nil {
		status, kind := lobbyStatus(err)
		writeError(w, status, kind, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
