package agent

import (
	"fmt"
)

// ProtocolViolationError 表示动作来源违反了 objective 协议：
// 没有待处理 objective 却提交了动作，或动作类型与 objective 不符。
// 这类错误说明 Agent 契约已被破坏，应该中止当前子协议而不是静默继续。
type ProtocolViolationError struct {
	PlayerID  string
	Objective Objective
	Got       ActionKind
	Reason    string
}

func (e *ProtocolViolationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("protocol violation by player %s: %s", e.PlayerID, e.Reason)
	}
	return fmt.Sprintf("protocol violation by player %s: action %s not valid for objective %s",
		e.PlayerID, e.Got, e.Objective)
}
