// state/interfaces.go
package state

// Player defines the minimal interface for a player entity that a state needs to interact with.
type Player interface {
	GetID() string
}

// RoomContext defines the interface that a Room must implement to be managed by the state machine.
// This breaks the import cycle between room and state.
type RoomContext interface {
	GetID() string
	PlayerCount() int
	GetMinPlayers() int
	GetMaxPlayers() int
	ChangeState(newState State) error
	Broadcast(msgID uint16, data []byte) error

	// StartMatch 构建对局并在自己的 goroutine 上启动编排器
	StartMatch() error
	// MatchDone reports whether the orchestrator has returned.
	MatchDone() bool
	// SubmitAction relays a decoded wire action to the player's agent.
	SubmitAction(playerID string, data []byte) error
	// FinishMatch 广播结果并持久化对局记录
	FinishMatch()
}
