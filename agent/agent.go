package agent

import (
	"context"
	"sync"

	"github.com/wfunc/catan/game"
)

// Agent 每个玩家一个，夹在编排器和动作来源之间。
// 编排器设置 objective 并阻塞等待；动作来源（人类输入中继或自动策略）
// 看到 objective 后提交一个匹配的动作，二者在无缓冲通道上会合。
// 主动权始终在编排器：同一时刻最多一个 Agent 处于激活状态。
type Agent struct {
	player *game.Player

	mu          sync.RWMutex
	objective   Objective
	epoch       uint64
	epochDone   chan struct{}
	tradeOffer  *game.TradeOffer
	onObjective func(Objective)

	actions chan submission
}

// submission 把动作和它所答复的 objective 纪元绑在一起投递。
// 投递和校验之间 objective 可能已经换代，接收方据此拒收过期动作。
type submission struct {
	act    Action
	epoch  uint64
	result chan error
}

func New(player *game.Player) *Agent {
	return &Agent{
		player:    player,
		epochDone: make(chan struct{}),
		actions:   make(chan submission),
	}
}

func (a *Agent) Player() *game.Player {
	return a.player
}

// SetObjective tells the agent what kind of action is expected next.
// The registered listener is notified after the change, so an action source
// can react by producing an action.
func (a *Agent) SetObjective(o Objective) {
	a.mu.Lock()
	a.objective = o
	a.epoch++
	close(a.epochDone) // 叫醒还停在旧 objective 上的提交
	a.epochDone = make(chan struct{})
	listener := a.onObjective
	a.mu.Unlock()

	if listener != nil {
		listener(o)
	}
}

func (a *Agent) Objective() Objective {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.objective
}

// OnObjectiveChanged registers the single listener invoked whenever the
// objective changes. Used by relays to prompt the action source.
func (a *Agent) OnObjectiveChanged(fn func(Objective)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onObjective = fn
}

// SetTradeOffer attaches the trade offer this agent is being asked to
// answer. Visible to exactly this one agent until cleared.
func (a *Agent) SetTradeOffer(offer *game.TradeOffer) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.tradeOffer = offer
}

func (a *Agent) TradeOffer() *game.TradeOffer {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.tradeOffer
}

func (a *Agent) ClearTradeOffer() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.tradeOffer = nil
}

// SubmitAction hands a completed decision to the orchestrator. It blocks
// until the orchestrator receives it. Submitting with no pending objective,
// with an action kind the objective does not allow, or after the objective
// has moved on is a protocol violation and the action is not delivered.
func (a *Agent) SubmitAction(act Action) error {
	a.mu.RLock()
	objective := a.objective
	epoch := a.epoch
	done := a.epochDone
	a.mu.RUnlock()

	if objective == ObjectiveIdle {
		return &ProtocolViolationError{
			PlayerID: a.player.ID,
			Got:      act.Kind(),
			Reason:   "no objective pending",
		}
	}
	if !objective.Allows(act.Kind()) {
		return &ProtocolViolationError{
			PlayerID:  a.player.ID,
			Objective: objective,
			Got:       act.Kind(),
		}
	}

	sub := submission{act: act, epoch: epoch, result: make(chan error, 1)}
	select {
	case a.actions <- sub:
		return <-sub.result
	case <-done:
		// objective 已经换代，本次提交作废，不能留给下一个 objective
		return &ProtocolViolationError{
			PlayerID:  a.player.ID,
			Objective: objective,
			Got:       act.Kind(),
			Reason:    "objective changed before the action was received",
		}
	}
}

// WaitForNextAction blocks the orchestrator until the action source submits
// an action, or the context is cancelled. Submissions answering a superseded
// objective are rejected back to the submitter, never delivered. The core
// models no timeouts; the context is the hook for the boundary to add them.
func (a *Agent) WaitForNextAction(ctx context.Context) (Action, error) {
	for {
		select {
		case sub := <-a.actions:
			a.mu.RLock()
			current := a.epoch
			objective := a.objective
			a.mu.RUnlock()

			if sub.epoch != current {
				sub.result <- &ProtocolViolationError{
					PlayerID:  a.player.ID,
					Objective: objective,
					Got:       sub.act.Kind(),
					Reason:    "action answered a superseded objective",
				}
				continue
			}
			sub.result <- nil
			return sub.act, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}
