package controller

import (
	"context"
	"errors"
	"fmt"

	"github.com/wfunc/catan/agent"
	"github.com/wfunc/catan/game"
	"github.com/wfunc/catan/logger"
)

// 建筑与发展卡成本
var buildingCosts = map[agent.BuildingKind]game.ResourceSet{
	agent.BuildingVillage: {
		game.ResourceLumber: 1,
		game.ResourceBrick:  1,
		game.ResourceWool:   1,
		game.ResourceGrain:  1,
	},
	agent.BuildingCity: {
		game.ResourceOre:   3,
		game.ResourceGrain: 2,
	},
	agent.BuildingRoad: {
		game.ResourceLumber: 1,
		game.ResourceBrick:  1,
	},
}

var developmentCardCost = game.ResourceSet{
	game.ResourceWool:  1,
	game.ResourceGrain: 1,
	game.ResourceOre:   1,
}

var errNoTarget = errors.New("placement has no target")

// roadPlacer is the optional grid capability for claiming road edges.
type roadPlacer interface {
	PlaceRoad(owner *game.Player, edge string) error
}

// applyPlacement 施加一次放置动作的效果。动作来源应当已经校验过
// 放置合法性；这里只防御性地复查资源与槽位。
func (c *GameController) applyPlacement(p *game.Player, act *agent.PlaceBuildingAction, charge bool) error {
	cost := buildingCosts[act.Building]
	if charge && !p.HasResources(cost) {
		return fmt.Errorf("player %s cannot afford %s: %w", p.ID, act.Building, game.ErrInsufficientResources)
	}

	switch act.Building {
	case agent.BuildingRoad:
		if act.Edge == "" {
			return errNoTarget
		}
		if placer, ok := c.state.Grid().(roadPlacer); ok {
			if err := placer.PlaceRoad(p, act.Edge); err != nil {
				return err
			}
		}
	case agent.BuildingVillage, agent.BuildingCity:
		if act.Intersection == nil {
			return errNoTarget
		}
		settlement := &game.Settlement{Owner: p, Kind: game.SettlementVillage}
		if act.Building == agent.BuildingCity {
			settlement.Kind = game.SettlementCity
		}
		if err := act.Intersection.PlaceSettlement(settlement); err != nil {
			return err
		}
		// 村庄 1 分；升级城市再得 1 分
		p.AddVictoryPoints(1)
	default:
		return fmt.Errorf("unknown building kind %d", act.Building)
	}

	if charge {
		if err := p.RemoveResources(cost); err != nil {
			return err
		}
	}

	logger.Log.Debugw("building placed", "player", p.ID, "building", act.Building.String())
	return nil
}

// buyDevelopmentCard 扣成本、从卡堆抽一张给玩家
func (c *GameController) buyDevelopmentCard(p *game.Player) error {
	if err := p.RemoveResources(developmentCardCost); err != nil {
		return err
	}
	card := c.drawCard()
	p.AddDevelopmentCard(card)
	if card == game.CardVictoryPoint {
		p.AddVictoryPoints(1)
	}
	logger.Log.Debugw("development card bought", "player", p.ID, "card", card.String())
	return nil
}

// playDevelopmentCard 打出一张发展卡。骑士会触发移动强盗的
// 选格与偷牌两步；其余进步卡目前只做持有数记账。
func (c *GameController) playDevelopmentCard(ctx context.Context, ag *agent.Agent, card game.DevelopmentCardType) error {
	p := ag.Player()
	if err := p.RemoveDevelopmentCard(card); err != nil {
		logger.Log.Warnw("development card not played", "player", p.ID, "error", err)
		return nil
	}

	if card == game.CardKnight {
		p.IncrementKnightsPlayed()
		return c.moveRobber(ctx, ag)
	}
	return nil
}
