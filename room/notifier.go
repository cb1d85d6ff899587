package room

import (
	"encoding/json"

	"github.com/wfunc/catan/agent"
	"github.com/wfunc/catan/logger"
	"github.com/wfunc/catan/network"
)

const (
	gameEndMsgID   = network.MsgTypeGameEnd
	roomStateMsgID = network.MsgTypeRoomState
)

// matchNotifier 订阅编排器的状态变化并广播到房间。
// 编排器拥有激活玩家槽位，外部只通过这种订阅观察它。
type matchNotifier struct {
	room *Room
}

func (n *matchNotifier) ActivePlayerChanged(playerID string) {
	n.broadcastSync(map[string]interface{}{
		"event":  "active_player",
		"player": playerID,
	})
}

func (n *matchNotifier) DiceRolled(playerID string, value int) {
	n.broadcastSync(map[string]interface{}{
		"event":  "dice_roll",
		"player": playerID,
		"value":  value,
	})
}

func (n *matchNotifier) RoundAdvanced(round int) {
	n.broadcastSync(map[string]interface{}{
		"event": "round",
		"round": round,
	})
}

func (n *matchNotifier) broadcastSync(payload map[string]interface{}) {
	n.room.Broadcast(network.MsgTypeGameSync, mustMarshal(payload))
}

// watchObjective 把一个玩家的 objective 变化推送给他自己的会话。
// 待答复的交易报价走单独的 trade_offer 消息，在 objective 之前送达。
func (r *Room) watchObjective(playerID string, ag *agent.Agent) {
	ag.OnObjectiveChanged(func(objective agent.Objective) {
		sess, ok := r.GetPlayer(playerID)
		if !ok {
			return
		}

		if offer := ag.TradeOffer(); offer != nil && objective == agent.ObjectiveAcceptTrade {
			payload := map[string]interface{}{
				"from":    offer.From.ID,
				"offer":   offer.Offer.Names(),
				"request": offer.Request.Names(),
			}
			if err := sess.SendJSON(network.MsgTypeTradeOffer, payload); err != nil {
				logger.Log.Warnf("Failed to push trade offer to session %s: %v", sess.ID, err)
			}
		}
		payload := map[string]interface{}{
			"objective": objective.String(),
		}
		if err := sess.SendJSON(network.MsgTypeObjective, payload); err != nil {
			logger.Log.Warnf("Failed to push objective to session %s: %v", sess.ID, err)
		}
	})
}

func mustMarshal(v interface{}) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		logger.Log.Errorf("Failed to marshal broadcast payload: %v", err)
		return []byte("{}")
	}
	return data
}
