package game

import (
	"errors"
	"fmt"
	"sync"
)

// ErrInsufficientResources is returned when a removal would leave a player
// with a negative resource count.
var ErrInsufficientResources = errors.New("insufficient resources")

// Player 玩家实体。资源、分数等数据只通过编排器或资源分发修改，
// 但外部观察者（广播、RPC）可能并发读取，所以用读写锁保护。
type Player struct {
	ID   string
	Name string
	AI   bool

	mu               sync.RWMutex
	resources        ResourceSet
	developmentCards map[DevelopmentCardType]int
	victoryPoints    int
	knightsPlayed    int
}

func NewPlayer(id, name string) *Player {
	return &Player{
		ID:               id,
		Name:             name,
		resources:        make(ResourceSet),
		developmentCards: make(map[DevelopmentCardType]int),
	}
}

// GetID implements the session-facing player interface.
func (p *Player) GetID() string {
	return p.ID
}

// AddResource grants n cards of the given type.
func (p *Player) AddResource(t ResourceType, n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resources[t] += n
}

// AddResources grants every entry of the set.
func (p *Player) AddResources(set ResourceSet) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for t, n := range set {
		p.resources[t] += n
	}
}

// RemoveResource removes n cards of the given type.
func (p *Player) RemoveResource(t ResourceType, n int) error {
	return p.RemoveResources(ResourceSet{t: n})
}

// RemoveResources removes every entry of the set atomically: either the
// whole set is removed or nothing is.
func (p *Player) RemoveResources(set ResourceSet) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for t, n := range set {
		if p.resources[t] < n {
			return fmt.Errorf("player %s: %d %s needed, %d held: %w",
				p.ID, n, t, p.resources[t], ErrInsufficientResources)
		}
	}
	for t, n := range set {
		p.resources[t] -= n
	}
	return nil
}

// HasResources reports whether the player holds at least the given set.
func (p *Player) HasResources(set ResourceSet) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for t, n := range set {
		if p.resources[t] < n {
			return false
		}
	}
	return true
}

// Resources returns a copy of the player's resource counts.
func (p *Player) Resources() ResourceSet {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.resources.Clone()
}

// TotalResources 手牌总数
func (p *Player) TotalResources() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.resources.Total()
}

func (p *Player) AddVictoryPoints(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.victoryPoints += n
}

func (p *Player) VictoryPoints() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.victoryPoints
}

func (p *Player) IncrementKnightsPlayed() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.knightsPlayed++
}

func (p *Player) KnightsPlayed() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.knightsPlayed
}

func (p *Player) AddDevelopmentCard(t DevelopmentCardType) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.developmentCards[t]++
}

// RemoveDevelopmentCard removes one card of the given type.
func (p *Player) RemoveDevelopmentCard(t DevelopmentCardType) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.developmentCards[t] < 1 {
		return fmt.Errorf("player %s holds no %s card", p.ID, t)
	}
	p.developmentCards[t]--
	return nil
}

// DevelopmentCards returns a copy of the player's development card holdings.
func (p *Player) DevelopmentCards() map[DevelopmentCardType]int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make(map[DevelopmentCardType]int, len(p.developmentCards))
	for t, n := range p.developmentCards {
		out[t] = n
	}
	return out
}

func (p *Player) TotalDevelopmentCards() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	total := 0
	for _, n := range p.developmentCards {
		total += n
	}
	return total
}
