package room

import (
	"encoding/json"
	"fmt"

	"github.com/wfunc/catan/agent"
	"github.com/wfunc/catan/game"
)

// 线上动作的 JSON 封皮。数值字段按动作类型取用。
type wireAction struct {
	Type     string         `json:"type"`
	Building string         `json:"building,omitempty"`
	Tile     int            `json:"tile,omitempty"`
	Slot     int            `json:"slot,omitempty"`
	Edge     string         `json:"edge,omitempty"`
	Victim   string         `json:"victim,omitempty"`
	Resource string         `json:"resource,omitempty"`
	Card     string         `json:"card,omitempty"`
	Cards    map[string]int `json:"cards,omitempty"`
	Offer    map[string]int `json:"offer,omitempty"`
	Request  map[string]int `json:"request,omitempty"`
}

// decodeAction 把一个线上动作包解析为 Agent 动作，
// 地块、交叉点、玩家等引用借助棋盘和对局状态解析。
func (r *Room) decodeAction(playerID string, data []byte) (agent.Action, error) {
	var wire wireAction
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("failed to unmarshal action data: %w", err)
	}

	switch wire.Type {
	case "roll_dice":
		return agent.RollDiceAction{}, nil
	case "end_turn":
		return agent.EndTurnAction{}, nil
	case "accept_trade":
		return agent.AcceptTradeAction{}, nil
	case "decline_trade":
		return agent.DeclineTradeAction{}, nil
	case "place_building":
		return r.decodePlacement(&wire)
	case "select_tile":
		tile, err := r.grid.Tile(wire.Tile)
		if err != nil {
			return nil, err
		}
		return &agent.SelectTileAction{Tile: tile}, nil
	case "select_card":
		return r.decodeSteal(&wire)
	case "drop_cards":
		return &agent.DropCardsAction{Cards: game.ResourceSetFromNames(wire.Cards)}, nil
	case "offer_trade":
		return &agent.OfferTradeAction{
			Offer:   game.ResourceSetFromNames(wire.Offer),
			Request: game.ResourceSetFromNames(wire.Request),
		}, nil
	case "buy_development_card":
		return agent.BuyDevelopmentCardAction{}, nil
	case "play_development_card":
		card, ok := game.DevelopmentCardTypeFromName(wire.Card)
		if !ok {
			return nil, fmt.Errorf("unknown development card %q", wire.Card)
		}
		return &agent.PlayDevelopmentCardAction{Card: card}, nil
	default:
		return nil, fmt.Errorf("unknown action type %q", wire.Type)
	}
}

func (r *Room) decodePlacement(wire *wireAction) (agent.Action, error) {
	act := &agent.PlaceBuildingAction{}
	switch wire.Building {
	case "village", "":
		act.Building = agent.BuildingVillage
	case "city":
		act.Building = agent.BuildingCity
	case "road":
		act.Building = agent.BuildingRoad
		act.Edge = wire.Edge
		return act, nil
	default:
		return nil, fmt.Errorf("unknown building %q", wire.Building)
	}

	slot, err := r.grid.Intersection(wire.Tile, wire.Slot)
	if err != nil {
		return nil, err
	}
	act.Intersection = slot
	return act, nil
}

func (r *Room) decodeSteal(wire *wireAction) (agent.Action, error) {
	match := r.Match()
	if match == nil {
		return nil, ErrMatchNotRunning
	}
	victim, ok := match.State().PlayerByID(wire.Victim)
	if !ok {
		return nil, fmt.Errorf("victim %q: %w", wire.Victim, ErrUnknownPlayer)
	}
	resource, ok := game.ResourceTypeFromName(wire.Resource)
	if !ok {
		return nil, fmt.Errorf("unknown resource %q", wire.Resource)
	}
	return &agent.SelectCardAction{Victim: victim, Resource: resource}, nil
}
