package game

// 棋盘是外部协作者：核心只依赖这里的接口。
// 六角网格几何（邻接、路径长度）由 Grid 的实现负责。

// SettlementKind 定居点类型
type SettlementKind int

const (
	SettlementVillage SettlementKind = iota
	SettlementCity
)

// Yield 触发时的资源产出数量
func (k SettlementKind) Yield() int {
	if k == SettlementCity {
		return 2
	}
	return 1
}

func (k SettlementKind) String() string {
	if k == SettlementCity {
		return "city"
	}
	return "village"
}

// Settlement 建在交叉点上的定居点
type Settlement struct {
	Kind  SettlementKind
	Owner *Player
}

// Intersection is a settlement slot adjacent to one or more tiles.
type Intersection interface {
	// Settlement returns the settlement built on this slot, if any.
	Settlement() (*Settlement, bool)
	// PlaceSettlement builds or upgrades a settlement on this slot.
	PlaceSettlement(s *Settlement) error
}

// Tile is a single board hex.
type Tile interface {
	Resource() ResourceType
	RollNumber() int
	Intersections() []Intersection
}

// Grid is the board collaborator consumed by the orchestrator.
type Grid interface {
	// TilesForRoll returns every tile whose number token matches the roll.
	TilesForRoll(roll int) []Tile
}
