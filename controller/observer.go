package controller

import (
	"time"
)

// Observer 订阅编排器的状态变化。编排器拥有激活玩家槽位；
// 外部观察者（广播、界面、自动策略）通过订阅获得变更通知，
// 而不是直接观察共享可变状态。
type Observer interface {
	// ActivePlayerChanged fires with the newly active player's ID, or ""
	// when the slot is cleared.
	ActivePlayerChanged(playerID string)
	// DiceRolled fires after every resolved dice roll.
	DiceRolled(playerID string, value int)
	// RoundAdvanced fires when the round counter changes.
	RoundAdvanced(round int)
}

// Recorder receives game flow metrics. Satisfied by *monitor.Monitor.
type Recorder interface {
	GameStarted()
	GameFinished()
	DiceRolled(robber bool)
	TradeAccepted()
	TradeRejected()
	CardsDiscarded(count int)
	ObserveTurnDuration(duration time.Duration)
}
