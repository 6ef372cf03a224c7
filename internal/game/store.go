// internal/game/store.go
package game

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/jason-s-yu/domino/internal/models"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrGroupBusy    = errors.New("group already has a game in progress")
)

// Repository tracks live games. Handlers depend on this rather than on a
// package-level registry.
type Repository interface {
	Add(g *DominoGame) error
	Get(id uuid.UUID) (*DominoGame, bool)
	ForGroup(groupID string) (*DominoGame, bool)
	Release(g *DominoGame)
	Remove(id uuid.UUID)
	List() []*DominoGame
}

// GameStore is the in-memory Repository. It never takes a game's lock, so a
// game may call back into the store while holding its own.
type GameStore struct {
	mu      sync.RWMutex
	games   map[uuid.UUID]*DominoGame
	byGroup map[string]uuid.UUID
}

// NewGameStore creates an empty store.
func NewGameStore() *GameStore {
	return &GameStore{
		games:   make(map[uuid.UUID]*DominoGame),
		byGroup: make(map[string]uuid.UUID),
	}
}

// Add registers g. A group may only have one game in progress.
func (s *GameStore) Add(g *DominoGame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.byGroup[g.GroupID]; ok && id != g.ID {
		return fmt.Errorf("%w: %s", ErrGroupBusy, g.GroupID)
	}
	s.games[g.ID] = g
	s.byGroup[g.GroupID] = g.ID
	return nil
}

func (s *GameStore) Get(id uuid.UUID) (*DominoGame, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.games[id]
	return g, ok
}

// ForGroup returns the group's game in progress.
func (s *GameStore) ForGroup(groupID string) (*DominoGame, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byGroup[groupID]
	if !ok {
		return nil, false
	}
	g, ok := s.games[id]
	return g, ok
}

// Release frees g's group for a new game while keeping g readable by id.
func (s *GameStore) Release(g *DominoGame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.byGroup[g.GroupID] == g.ID {
		delete(s.byGroup, g.GroupID)
	}
}

// Remove forgets the game entirely.
func (s *GameStore) Remove(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.games[id]
	if !ok {
		return
	}
	delete(s.games, id)
	if s.byGroup[g.GroupID] == id {
		delete(s.byGroup, g.GroupID)
	}
}

func (s *GameStore) List() []*DominoGame {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*DominoGame, 0, len(s.games))
	for _, g := range s.games {
		out = append(out, g)
	}
	return out
}

// testBotNames are the opponents of a test game, in seat order.
var testBotNames = []string{"Bot Alice", "Bot Bob", "Bot Charlie", "Bot Diana"}

// Test games seat between 2 and 4 bots next to the human.
const (
	MinTestBots = 2
	MaxTestBots = 4
)

// NewTestGame builds (but does not start) a game of human against numBots
// bots, clamped to [MinTestBots, MaxTestBots]. It gets its own group so it
// never collides with a real lobby.
func NewTestGame(human *models.Player, numBots int, rules HouseRules) *DominoGame {
	numBots = max(MinTestBots, min(MaxTestBots, numBots))
	players := []*models.Player{human}
	for i := 0; i < numBots; i++ {
		players = append(players, models.NewBot(testBotNames[i]))
	}
	return NewDominoGame("test-"+uuid.NewString(), players, rules)
}
