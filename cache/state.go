package cache

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrNoData is returned by Query before the first game event arrives.
var ErrNoData = errors.New("no game status received yet")

// GameStatus is the payload of a "game" stream event.
type GameStatus struct {
	NickName string `json:"nick_name"`
	Level    int    `json:"level"`
	Text     string `json:"text"`
}

// Summary renders the three-line human-readable snapshot.
func (g GameStatus) Summary() string {
	return fmt.Sprintf("Nickname: %s\nLevel: %d\nStatus: %s", g.NickName, g.Level, g.Text)
}

// GameState holds the most recently decoded game status. Written only
// by the stream's event-processing path; safe for concurrent readers.
type GameState struct {
	sync.RWMutex
	status    *GameStatus
	updatedAt time.Time
}

func NewGameState() *GameState {
	return &GameState{}
}

// Record replaces the cached status with the latest decoded payload.
func (s *GameState) Record(status GameStatus) {
	s.Lock()
	defer s.Unlock()

	s.status = &status
	s.updatedAt = time.Now()
}

// Query returns a copy of the latest status, or ErrNoData when no game
// event has been received since startup.
func (s *GameState) Query() (GameStatus, error) {
	s.RLock()
	defer s.RUnlock()

	if s.status == nil {
		return GameStatus{}, ErrNoData
	}
	return *s.status, nil
}

// UpdatedAt reports when the snapshot was last replaced. Zero before
// the first game event.
func (s *GameState) UpdatedAt() time.Time {
	s.RLock()
	defer s.RUnlock()
	return s.updatedAt
}
