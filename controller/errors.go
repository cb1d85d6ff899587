package controller

import (
	"errors"
	"fmt"

	"github.com/wfunc/catan/game"
)

// 启动类错误：在任何状态被修改之前返回给调用者
var (
	ErrNotEnoughPlayers   = errors.New("not enough players")
	ErrGameAlreadyStarted = errors.New("game already started")
	ErrNoPlayers          = errors.New("no players in game")
)

// RejectedTransferError 交易被接受但接受方拿不出被请求的资源。
// 局部恢复：交易作废、报价清除、继续询问下一个候选人，绝不致命。
type RejectedTransferError struct {
	Offerer  *game.Player
	Accepter *game.Player
	Cause    error
}

func (e *RejectedTransferError) Error() string {
	return fmt.Sprintf("trade between %s and %s rejected: %v",
		e.Offerer.ID, e.Accepter.ID, e.Cause)
}

func (e *RejectedTransferError) Unwrap() error {
	return e.Cause
}
