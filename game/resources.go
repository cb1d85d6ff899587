package game

// ResourceType 资源类型
type ResourceType int

const (
	ResourceLumber ResourceType = iota
	ResourceBrick
	ResourceWool
	ResourceGrain
	ResourceOre
)

var resourceNames = map[ResourceType]string{
	ResourceLumber: "lumber",
	ResourceBrick:  "brick",
	ResourceWool:   "wool",
	ResourceGrain:  "grain",
	ResourceOre:    "ore",
}

func (r ResourceType) String() string {
	if name, ok := resourceNames[r]; ok {
		return name
	}
	return "unknown"
}

// ResourceTypeFromName resolves a wire-format resource name.
func ResourceTypeFromName(name string) (ResourceType, bool) {
	for t, n := range resourceNames {
		if n == name {
			return t, true
		}
	}
	return 0, false
}

// ResourceSet 按资源类型计数的一组资源卡
type ResourceSet map[ResourceType]int

// Total returns the number of cards in the set.
func (s ResourceSet) Total() int {
	total := 0
	for _, n := range s {
		total += n
	}
	return total
}

// Clone returns an independent copy of the set.
func (s ResourceSet) Clone() ResourceSet {
	out := make(ResourceSet, len(s))
	for t, n := range s {
		out[t] = n
	}
	return out
}

// Names converts the set to a wire-friendly map keyed by resource name.
func (s ResourceSet) Names() map[string]int {
	out := make(map[string]int, len(s))
	for t, n := range s {
		if n != 0 {
			out[t.String()] = n
		}
	}
	return out
}

// ResourceSetFromNames is the inverse of Names. Unknown names are dropped.
func ResourceSetFromNames(m map[string]int) ResourceSet {
	out := make(ResourceSet, len(m))
	for name, n := range m {
		if t, ok := ResourceTypeFromName(name); ok && n > 0 {
			out[t] = n
		}
	}
	return out
}

// DevelopmentCardType 发展卡类型
type DevelopmentCardType int

const (
	CardKnight DevelopmentCardType = iota
	CardVictoryPoint
	CardRoadBuilding
	CardInvention
	CardMonopoly
)

var cardNames = map[DevelopmentCardType]string{
	CardKnight:       "knight",
	CardVictoryPoint: "victory_point",
	CardRoadBuilding: "road_building",
	CardInvention:    "invention",
	CardMonopoly:     "monopoly",
}

func (c DevelopmentCardType) String() string {
	if name, ok := cardNames[c]; ok {
		return name
	}
	return "unknown"
}

// DevelopmentCardTypeFromName resolves a wire-format card name.
func DevelopmentCardTypeFromName(name string) (DevelopmentCardType, bool) {
	for t, n := range cardNames {
		if n == name {
			return t, true
		}
	}
	return 0, false
}
