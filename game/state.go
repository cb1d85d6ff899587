package game

import (
	"sync"
)

// State 对局的权威共享数据。玩家切片是回合顺序，插入顺序即行动顺序，
// 整局不变；绝不能从无序结构推导。
type State struct {
	mu      sync.RWMutex
	players []*Player
	grid    Grid
	winner  *Player
	round   int
}

func NewState(grid Grid, players ...*Player) *State {
	return &State{
		grid:    grid,
		players: players,
	}
}

// AddPlayer appends a player to the turn order. Only valid before the game
// starts; the orchestrator never calls it mid-game.
func (s *State) AddPlayer(p *Player) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players = append(s.players, p)
}

// Players returns the turn order. The returned slice is a copy; the order is
// stable for the whole game.
func (s *State) Players() []*Player {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Player, len(s.players))
	copy(out, s.players)
	return out
}

// PlayerByID looks a player up by identity.
func (s *State) PlayerByID(id string) (*Player, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.players {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

func (s *State) Grid() Grid {
	return s.grid
}

func (s *State) Winner() *Player {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.winner
}

func (s *State) SetWinner(p *Player) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.winner = p
}

// Round 回合计数：0 表示开局布局阶段，之后每完整走完一圈加一
func (s *State) Round() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.round
}

func (s *State) SetRound(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// 回合数单调不减
	if n > s.round {
		s.round = n
	}
}
