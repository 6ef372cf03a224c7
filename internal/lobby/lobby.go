// internal/lobby/lobby.go
package lobby

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/domino/internal/models"
	log "github.com/sirupsen/logrus"
)

var (
	ErrLobbyExists      = errors.New("group already has an open lobby")
	ErrLobbyNotFound    = errors.New("lobby not found")
	ErrLobbyFull        = errors.New("lobby is full")
	ErrAlreadyJoined    = errors.New("player already in lobby")
	ErrNotEnoughPlayers = errors.New("not enough players to start")
)

// Lobby gathers players for one group before a session starts.
type Lobby struct {
	ID        uuid.UUID        `json:"id"`
	GroupID   string           `json:"groupId"`
	HostID    uuid.UUID        `json:"hostId"`
	Players   []*models.Player `json:"players"`
	CreatedAt time.Time        `json:"createdAt"`
	Deadline  time.Time        `json:"deadline"` // auto-start or cancel at this instant

	timer *time.Timer
}

// hasPlayer reports whether id is already seated.
func (l *Lobby) hasPlayer(id uuid.UUID) bool {
	for _, p := range l.Players {
		if p.ID == id {
			return true
		}
	}
	return false
}

// snapshot copies the lobby so callers can read it without the manager lock.
func (l *Lobby) snapshot() Lobby {
	cp := *l
	cp.Players = append([]*models.Player(nil), l.Players...)
	cp.timer = nil
	return cp
}

// TimeoutFunc is called when a lobby's countdown expires. started is true when
// enough players had joined and the lobby should become a game.
type TimeoutFunc func(l Lobby, started bool)

// Manager owns every open lobby. There is at most one lobby per group.
type Manager struct {
	mu      sync.Mutex
	byID    map[uuid.UUID]*Lobby
	byGroup map[string]*Lobby

	MinPlayers int
	MaxPlayers int
	Timeout    time.Duration // 0 disables the countdown
	OnTimeout  TimeoutFunc
}

// NewManager creates an empty manager.
func NewManager(minPlayers, maxPlayers int, timeout time.Duration) *Manager {
	return &Manager{
		byID:       make(map[uuid.UUID]*Lobby),
		byGroup:    make(map[string]*Lobby),
		MinPlayers: minPlayers,
		MaxPlayers: maxPlayers,
		Timeout:    timeout,
	}
}

// Create opens a lobby for groupID with host as its first player and starts
// the countdown.
func (m *Manager) Create(groupID string, host *models.Player) (Lobby, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byGroup[groupID]; ok {
		return Lobby{}, ErrLobbyExists
	}
	now := time.Now()
	l := &Lobby{
		ID:        uuid.New(),
		GroupID:   groupID,
		HostID:    host.ID,
		Players:   []*models.Player{host},
		CreatedAt: now,
	}
	if m.Timeout > 0 {
		l.Deadline = now.Add(m.Timeout)
		id := l.ID
		l.timer = time.AfterFunc(m.Timeout, func() { m.expire(id) })
	}
	m.byID[l.ID] = l
	m.byGroup[groupID] = l
	log.Printf("Lobby %s: Created for group %s by %s.", l.ID, groupID, host.Name())
	return l.snapshot(), nil
}

// Join seats p in the lobby.
func (m *Manager) Join(lobbyID uuid.UUID, p *models.Player) (Lobby, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.byID[lobbyID]
	if !ok {
		return Lobby{}, ErrLobbyNotFound
	}
	if l.hasPlayer(p.ID) {
		return l.snapshot(), ErrAlreadyJoined
	}
	if m.MaxPlayers > 0 && len(l.Players) >= m.MaxPlayers {
		return l.snapshot(), ErrLobbyFull
	}
	l.Players = append(l.Players, p)
	log.Printf("Lobby %s: %s joined (%d/%d).", l.ID, p.Name(), len(l.Players), m.MaxPlayers)
	return l.snapshot(), nil
}

// Get returns a copy of the lobby.
func (m *Manager) Get(lobbyID uuid.UUID) (Lobby, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.byID[lobbyID]
	if !ok {
		return Lobby{}, false
	}
	return l.snapshot(), true
}

// ForGroup returns the open lobby of groupID, if any.
func (m *Manager) ForGroup(groupID string) (Lobby, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.byGroup[groupID]
	if !ok {
		return Lobby{}, false
	}
	return l.snapshot(), true
}

// CanStart reports whether the lobby has enough players.
func (m *Manager) CanStart(lobbyID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.byID[lobbyID]
	if !ok {
		return false, ErrLobbyNotFound
	}
	return len(l.Players) >= m.MinPlayers, nil
}

// Start closes the lobby and returns its final roster. The countdown is
// stopped; the caller owns creating the game.
func (m *Manager) Start(lobbyID uuid.UUID) (Lobby, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.byID[lobbyID]
	if !ok {
		return Lobby{}, ErrLobbyNotFound
	}
	if len(l.Players) < m.MinPlayers {
		return l.snapshot(), ErrNotEnoughPlayers
	}
	m.remove(l)
	log.Printf("Lobby %s: Started with %d players.", l.ID, len(l.Players))
	return l.snapshot(), nil
}

// Cancel closes the lobby without starting a game.
func (m *Manager) Cancel(lobbyID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.byID[lobbyID]
	if !ok {
		return ErrLobbyNotFound
	}
	m.remove(l)
	log.Printf("Lobby %s: Cancelled.", l.ID)
	return nil
}

// remove drops l from both indexes and stops its countdown.
// Assumes lock is held by caller.
func (m *Manager) remove(l *Lobby) {
	if l.timer != nil {
		l.timer.Stop()
		l.timer = nil
	}
	delete(m.byID, l.ID)
	if m.byGroup[l.GroupID] == l {
		delete(m.byGroup, l.GroupID)
	}
}

// expire runs when the countdown fires. The lobby is closed under the lock and
// OnTimeout is called after releasing it.
func (m *Manager) expire(lobbyID uuid.UUID) {
	m.mu.Lock()
	l, ok := m.byID[lobbyID]
	if !ok {
		m.mu.Unlock()
		return
	}
	started := len(l.Players) >= m.MinPlayers
	m.remove(l)
	snap := l.snapshot()
	cb := m.OnTimeout
	m.mu.Unlock()

	if started {
		log.Printf("Lobby %s: Countdown expired with %d players, starting.", lobbyID, len(snap.Players))
	} else {
		log.Printf("Lobby %s: Countdown expired with %d players, cancelling.", lobbyID, len(snap.Players))
	}
	if cb != nil {
		cb(snap, started)
	}
}
