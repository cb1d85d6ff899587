package controller

import (
	"github.com/wfunc/catan/logger"
)

// DistributeResources 按骰子点数分发产出：每个被触发地块的每个
// 有定居点的交叉点，给所有者发 1（村庄）或 2（城市）张该地块资源。
// 地块之间的顺序无关紧要，分发只会往互不相干的玩家总数上加。
func (c *GameController) DistributeResources(roll int) {
	for _, tile := range c.state.Grid().TilesForRoll(roll) {
		for _, intersection := range tile.Intersections() {
			settlement, ok := intersection.Settlement()
			if !ok {
				continue
			}
			amount := settlement.Kind.Yield()
			settlement.Owner.AddResource(tile.Resource(), amount)
			logger.Log.Debugw("resources granted",
				"player", settlement.Owner.ID,
				"resource", tile.Resource().String(),
				"amount", amount,
			)
		}
	}
}
