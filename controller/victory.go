package controller

import (
	"github.com/wfunc/catan/game"
)

// RoadBonusSource 最长道路加分的外部计算。未接入时统一贡献 0。
type RoadBonusSource interface {
	// LongestRoadHolder returns the player holding the longest road, or
	// nil when nobody qualifies.
	LongestRoadHolder(players []*game.Player) *game.Player
}

// Winners 胜利判定：有效分 = 基础分
// + 2（骑士数唯一最多且达到阈值；并列则谁都不加）
// + 2（最长道路，由可插拔来源提供）。
// 有效分达到配置阈值的玩家即为赢家，保持回合顺序。
func (c *GameController) Winners() ([]*game.Player, error) {
	players := c.state.Players()
	if len(players) == 0 {
		return nil, ErrNoPlayers
	}

	knightHolder := c.mostKnightsPlayer(players)

	var roadHolder *game.Player
	if c.roadBonus != nil {
		roadHolder = c.roadBonus.LongestRoadHolder(players)
	}

	var winners []*game.Player
	for _, p := range players {
		score := p.VictoryPoints()
		if p == knightHolder {
			score += 2
		}
		if roadHolder != nil && p == roadHolder {
			score += 2
		}
		if score >= c.cfg.VictoryPoints {
			winners = append(winners, p)
		}
	}
	return winners, nil
}

// mostKnightsPlayer 骑士数最多且达到阈值的唯一玩家；并列时不发加分
func (c *GameController) mostKnightsPlayer(players []*game.Player) *game.Player {
	var best *game.Player
	bestCount := 0
	tied := false
	for _, p := range players {
		count := p.KnightsPlayed()
		if count < c.cfg.KnightBonusThreshold {
			continue
		}
		switch {
		case count > bestCount:
			best, bestCount, tied = p, count, false
		case count == bestCount:
			tied = true
		}
	}
	if tied {
		return nil
	}
	return best
}
