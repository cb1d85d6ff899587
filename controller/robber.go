package controller

import (
	"context"
	"fmt"

	"github.com/wfunc/catan/agent"
	"github.com/wfunc/catan/game"
	"github.com/wfunc/catan/logger"
)

// rollSeven 掷出 7 的特殊流程：先让所有手牌超限的其他玩家弃一半牌，
// 再让原激活玩家选强盗格、选偷牌的目标。
// 原激活玩家在整个流程中保持可解析为"激活玩家"，绝不从已知
// Agent 集合中移除。
func (c *GameController) rollSeven(ctx context.Context, active *agent.Agent) error {
	for _, other := range c.turnOrder() {
		if other == active {
			continue
		}
		p := other.Player()
		total := p.TotalResources()
		if total <= c.cfg.DiscardThreshold {
			continue
		}

		// 弃牌后必须恰好剩下一半（向下取整）
		target := total / 2
		err := c.withActivePlayer(other, func() error {
			act, err := c.await(ctx, other, agent.ObjectiveDropCards)
			if err != nil {
				return err
			}
			drop, ok := act.(*agent.DropCardsAction)
			if !ok {
				return c.violation(other, agent.ObjectiveDropCards, act)
			}

			if got := drop.Cards.Total(); got != total-target {
				return &agent.ProtocolViolationError{
					PlayerID:  p.ID,
					Objective: agent.ObjectiveDropCards,
					Got:       act.Kind(),
					Reason:    fmt.Sprintf("must drop %d cards, tried to drop %d", total-target, got),
				}
			}
			if err := p.RemoveResources(drop.Cards); err != nil {
				return &agent.ProtocolViolationError{
					PlayerID:  p.ID,
					Objective: agent.ObjectiveDropCards,
					Got:       act.Kind(),
					Reason:    err.Error(),
				}
			}
			// 后置条件复核
			if post := p.TotalResources(); post != target {
				return &agent.ProtocolViolationError{
					PlayerID:  p.ID,
					Objective: agent.ObjectiveDropCards,
					Got:       act.Kind(),
					Reason:    fmt.Sprintf("post-discard count %d, want %d", post, target),
				}
			}

			if c.monitor != nil {
				c.monitor.CardsDiscarded(total - target)
			}
			logger.Log.Infow("cards discarded", "player", p.ID, "dropped", total-target, "kept", target)
			return nil
		})
		if err != nil {
			return err
		}
	}

	return c.moveRobber(ctx, active)
}

// moveRobber 激活玩家依次给出强盗落点和偷牌目标，各阻塞一次
func (c *GameController) moveRobber(ctx context.Context, active *agent.Agent) error {
	act, err := c.await(ctx, active, agent.ObjectiveSelectRobberTile)
	if err != nil {
		return err
	}
	tileAct, ok := act.(*agent.SelectTileAction)
	if !ok {
		return c.violation(active, agent.ObjectiveSelectRobberTile, act)
	}
	if tileAct.Tile != nil {
		logger.Log.Debugw("robber placed", "player", active.Player().ID, "roll_number", tileAct.Tile.RollNumber())
	}

	act, err = c.await(ctx, active, agent.ObjectiveSelectCardToSteal)
	if err != nil {
		return err
	}
	steal, ok := act.(*agent.SelectCardAction)
	if !ok {
		return c.violation(active, agent.ObjectiveSelectCardToSteal, act)
	}
	return c.applySteal(active.Player(), steal)
}

// applySteal 从受害者手里拿一张指定类型的牌给偷牌玩家。
// 受害者没有这张牌时偷取落空，不算错误。
func (c *GameController) applySteal(thief *game.Player, act *agent.SelectCardAction) error {
	if act.Victim == nil || act.Victim == thief {
		return nil
	}
	if err := act.Victim.RemoveResource(act.Resource, 1); err != nil {
		logger.Log.Debugw("steal missed", "thief", thief.ID, "victim", act.Victim.ID, "resource", act.Resource.String())
		return nil
	}
	thief.AddResource(act.Resource, 1)
	logger.Log.Infow("card stolen", "thief", thief.ID, "victim", act.Victim.ID)
	return nil
}
