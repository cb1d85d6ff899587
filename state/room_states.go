package state

import (
	"encoding/json"

	"github.com/wfunc/catan/logger"
	"github.com/wfunc/catan/network"
)

// 房间生命周期：等待 -> 对局中 -> 结算

// NewWaitingState creates a new waiting state.
func NewWaitingState(room RoomContext) *WaitingState {
	return &WaitingState{
		RoomStateBase: RoomStateBase{
			ID:   "waiting",
			Room: room,
		},
	}
}

// 等待状态：凑够最少人数后倒计时开局，满员立即开局
type WaitingState struct {
	RoomStateBase
	countdown int
}

func (s *WaitingState) OnEnter() {
	s.countdown = 100 // 10 seconds at 10fps
}

func (s *WaitingState) OnUpdate() {
	players := s.Room.PlayerCount()
	if players >= s.Room.GetMaxPlayers() {
		s.startMatch()
		return
	}
	if players >= s.Room.GetMinPlayers() {
		s.countdown--
		if s.countdown <= 0 {
			s.startMatch()
		}
		return
	}
	// 人不够，重置倒计时
	s.countdown = 100
}

func (s *WaitingState) startMatch() {
	if err := s.Room.StartMatch(); err != nil {
		logger.Log.Errorf("Failed to start match in room %s: %v", s.Room.GetID(), err)
		s.countdown = 100
		return
	}
	s.Room.ChangeState(NewPlayingState(s.Room))
}

// NewPlayingState creates the state driving a running match.
func NewPlayingState(room RoomContext) *PlayingState {
	return &PlayingState{
		RoomStateBase: RoomStateBase{
			ID:   "playing",
			Room: room,
		},
	}
}

// 对局中：编排器在自己的 goroutine 上跑，这里只负责把玩家的
// 动作包转交给对应的 Agent，并盯着对局结束。
type PlayingState struct {
	RoomStateBase
}

func (s *PlayingState) OnEnter() {
	logger.Log.Infof("房间 %s 对局开始", s.Room.GetID())
	s.Room.Broadcast(network.MsgTypeGameStart, mustJSON(map[string]string{"room_id": s.Room.GetID()}))
}

func (s *PlayingState) HandleAction(player Player, actionData []byte) error {
	return s.Room.SubmitAction(player.GetID(), actionData)
}

func (s *PlayingState) OnUpdate() {
	if s.Room.MatchDone() {
		s.Room.ChangeState(NewSettlementState(s.Room))
	}
}

// NewSettlementState creates the post-game settlement state.
func NewSettlementState(room RoomContext) *SettlementState {
	return &SettlementState{
		RoomStateBase: RoomStateBase{
			ID:   "settlement",
			Room: room,
		},
	}
}

// 结算状态
type SettlementState struct {
	RoomStateBase
}

func (s *SettlementState) OnEnter() {
	logger.Log.Infof("房间 %s 对局结束，进入结算", s.Room.GetID())
	s.Room.FinishMatch()
}

func mustJSON(v interface{}) []byte {
	data, _ := json.Marshal(v)
	return data
}
