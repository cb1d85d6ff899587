package game

import (
	"errors"
	"fmt"
	"sync"
)

// ListGrid 是 Grid 的一个简单实现：平铺的地块列表，不做六角几何。
// 服务器和测试用它；真实棋盘几何可以换成别的 Grid 实现。

var (
	ErrSlotOccupied  = errors.New("intersection already occupied")
	ErrEdgeOccupied  = errors.New("edge already occupied")
	ErrNotUpgradable = errors.New("only the owner may upgrade a village to a city")
	ErrNoSuchSlot    = errors.New("no such intersection")
	ErrNoSuchTile    = errors.New("no such tile")
)

type listIntersection struct {
	mu         sync.Mutex
	settlement *Settlement
}

func (i *listIntersection) Settlement() (*Settlement, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.settlement == nil {
		return nil, false
	}
	return i.settlement, true
}

func (i *listIntersection) PlaceSettlement(s *Settlement) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.settlement == nil {
		i.settlement = s
		return nil
	}
	// 村庄可以升级为城市，但只能由原主人升级
	if s.Kind == SettlementCity && i.settlement.Kind == SettlementVillage {
		if i.settlement.Owner != s.Owner {
			return ErrNotUpgradable
		}
		i.settlement = s
		return nil
	}
	return ErrSlotOccupied
}

type listTile struct {
	resource      ResourceType
	rollNumber    int
	intersections []Intersection
}

func (t *listTile) Resource() ResourceType        { return t.resource }
func (t *listTile) RollNumber() int               { return t.rollNumber }
func (t *listTile) Intersections() []Intersection { return t.intersections }

// TileSpec describes one tile of a ListGrid.
type TileSpec struct {
	Resource   ResourceType
	RollNumber int
	Slots      int
}

// ListGrid implements Grid over a flat list of tiles.
type ListGrid struct {
	tiles []*listTile

	mu    sync.Mutex
	roads map[string]*Player // edge id -> owner
}

// NewListGrid 根据地块描述构建棋盘
func NewListGrid(specs []TileSpec) *ListGrid {
	g := &ListGrid{roads: make(map[string]*Player)}
	for _, spec := range specs {
		slots := spec.Slots
		if slots <= 0 {
			slots = 6
		}
		tile := &listTile{resource: spec.Resource, rollNumber: spec.RollNumber}
		for i := 0; i < slots; i++ {
			tile.intersections = append(tile.intersections, &listIntersection{})
		}
		g.tiles = append(g.tiles, tile)
	}
	return g
}

func (g *ListGrid) TilesForRoll(roll int) []Tile {
	var out []Tile
	for _, t := range g.tiles {
		if t.rollNumber == roll {
			out = append(out, t)
		}
	}
	return out
}

// Tile returns the tile at the given index.
func (g *ListGrid) Tile(index int) (Tile, error) {
	if index < 0 || index >= len(g.tiles) {
		return nil, fmt.Errorf("tile %d: %w", index, ErrNoSuchTile)
	}
	return g.tiles[index], nil
}

// Intersection resolves a slot by tile index and slot index, for the wire
// protocol which addresses slots numerically.
func (g *ListGrid) Intersection(tileIndex, slotIndex int) (Intersection, error) {
	if tileIndex < 0 || tileIndex >= len(g.tiles) {
		return nil, fmt.Errorf("tile %d: %w", tileIndex, ErrNoSuchTile)
	}
	tile := g.tiles[tileIndex]
	if slotIndex < 0 || slotIndex >= len(tile.intersections) {
		return nil, fmt.Errorf("tile %d slot %d: %w", tileIndex, slotIndex, ErrNoSuchSlot)
	}
	return tile.intersections[slotIndex], nil
}

// PlaceRoad claims an edge for a player. Edges are opaque identifiers; the
// grid only prevents double claims.
func (g *ListGrid) PlaceRoad(owner *Player, edge string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, taken := g.roads[edge]; taken {
		return fmt.Errorf("edge %s: %w", edge, ErrEdgeOccupied)
	}
	g.roads[edge] = owner
	return nil
}

// RoadCount returns the number of edges claimed by the player.
func (g *ListGrid) RoadCount(owner *Player) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	count := 0
	for _, p := range g.roads {
		if p == owner {
			count++
		}
	}
	return count
}

// DefaultGrid 标准资源与数字分布的 19 格棋盘（沙漠格无产出，编号 0）
func DefaultGrid() *ListGrid {
	specs := []TileSpec{
		{Resource: ResourceOre, RollNumber: 10},
		{Resource: ResourceWool, RollNumber: 2},
		{Resource: ResourceLumber, RollNumber: 9},
		{Resource: ResourceGrain, RollNumber: 12},
		{Resource: ResourceBrick, RollNumber: 6},
		{Resource: ResourceWool, RollNumber: 4},
		{Resource: ResourceBrick, RollNumber: 10},
		{Resource: ResourceGrain, RollNumber: 9},
		{Resource: ResourceLumber, RollNumber: 11},
		{Resource: ResourceLumber, RollNumber: 3},
		{Resource: ResourceOre, RollNumber: 3},
		{Resource: ResourceGrain, RollNumber: 8},
		{Resource: ResourceLumber, RollNumber: 8},
		{Resource: ResourceOre, RollNumber: 5},
		{Resource: ResourceGrain, RollNumber: 4},
		{Resource: ResourceBrick, RollNumber: 5},
		{Resource: ResourceWool, RollNumber: 6},
		{Resource: ResourceWool, RollNumber: 11},
		{Resource: ResourceGrain, RollNumber: 12},
	}
	return NewListGrid(specs)
}
