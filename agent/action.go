package agent

import (
	"github.com/wfunc/catan/game"
)

// ActionKind 动作类型标签
type ActionKind int

const (
	KindRollDice ActionKind = iota
	KindEndTurn
	KindAcceptTrade
	KindDeclineTrade
	KindPlaceBuilding
	KindSelectTile
	KindSelectCard
	KindDropCards
	KindOfferTrade
	KindBuyDevelopmentCard
	KindPlayDevelopmentCard
)

var actionKindNames = map[ActionKind]string{
	KindRollDice:            "roll_dice",
	KindEndTurn:             "end_turn",
	KindAcceptTrade:         "accept_trade",
	KindDeclineTrade:        "decline_trade",
	KindPlaceBuilding:       "place_building",
	KindSelectTile:          "select_tile",
	KindSelectCard:          "select_card",
	KindDropCards:           "drop_cards",
	KindOfferTrade:          "offer_trade",
	KindBuyDevelopmentCard:  "buy_development_card",
	KindPlayDevelopmentCard: "play_development_card",
}

func (k ActionKind) String() string {
	if name, ok := actionKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Action 玩家完成的一次决定，由动作来源（人类中继或自动策略）提交。
type Action interface {
	Kind() ActionKind
}

// BuildingKind 可放置的建筑类型
type BuildingKind int

const (
	BuildingVillage BuildingKind = iota
	BuildingCity
	BuildingRoad
)

func (k BuildingKind) String() string {
	switch k {
	case BuildingCity:
		return "city"
	case BuildingRoad:
		return "road"
	default:
		return "village"
	}
}

type RollDiceAction struct{}

func (RollDiceAction) Kind() ActionKind { return KindRollDice }

type EndTurnAction struct{}

func (EndTurnAction) Kind() ActionKind { return KindEndTurn }

type AcceptTradeAction struct{}

func (AcceptTradeAction) Kind() ActionKind { return KindAcceptTrade }

type DeclineTradeAction struct{}

func (DeclineTradeAction) Kind() ActionKind { return KindDeclineTrade }

// PlaceBuildingAction places a village, city or road. Villages and cities
// target an intersection; roads target an opaque edge identifier.
type PlaceBuildingAction struct {
	Building     BuildingKind
	Intersection game.Intersection
	Edge         string
}

func (PlaceBuildingAction) Kind() ActionKind { return KindPlaceBuilding }

// SelectTileAction answers a robber tile selection.
type SelectTileAction struct {
	Tile game.Tile
}

func (SelectTileAction) Kind() ActionKind { return KindSelectTile }

// SelectCardAction steals one card of the chosen type from the victim.
type SelectCardAction struct {
	Victim   *game.Player
	Resource game.ResourceType
}

func (SelectCardAction) Kind() ActionKind { return KindSelectCard }

// DropCardsAction discards the chosen cards. The player picks which cards
// go; the orchestrator only verifies the count and availability.
type DropCardsAction struct {
	Cards game.ResourceSet
}

func (DropCardsAction) Kind() ActionKind { return KindDropCards }

// OfferTradeAction starts a trade negotiation during a regular turn.
type OfferTradeAction struct {
	Offer   game.ResourceSet
	Request game.ResourceSet
}

func (OfferTradeAction) Kind() ActionKind { return KindOfferTrade }

type BuyDevelopmentCardAction struct{}

func (BuyDevelopmentCardAction) Kind() ActionKind { return KindBuyDevelopmentCard }

type PlayDevelopmentCardAction struct {
	Card game.DevelopmentCardType
}

func (PlayDevelopmentCardAction) Kind() ActionKind { return KindPlayDevelopmentCard }
