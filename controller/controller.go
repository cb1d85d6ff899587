package controller

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/wfunc/catan/agent"
	"github.com/wfunc/catan/config"
	"github.com/wfunc/catan/game"
	"github.com/wfunc/catan/logger"
)

// GameController 回合编排器。单一逻辑控制流驱动整局游戏：
// 把一个 Agent 设为激活、下发 objective、阻塞等待动作、推进状态。
// 所有对局状态的修改都发生在编排器自己的 goroutine 上，两次等待之间
// 严格串行，不同玩家的动作绝不交错。
type GameController struct {
	state    *game.State
	cfg      config.GameConfig
	dice     func() int
	drawCard func() game.DevelopmentCardType

	roadBonus RoadBonusSource
	monitor   Recorder

	mu          sync.RWMutex
	agents      map[string]*agent.Agent
	order       []*agent.Agent
	active      *agent.Agent
	currentRoll int
	started     bool
	observers   []Observer
}

// NewGameController wires the orchestrator to its collaborators: the shared
// state, the rule parameters, and the two randomness suppliers.
func NewGameController(
	state *game.State,
	cfg config.GameConfig,
	dice func() int,
	drawCard func() game.DevelopmentCardType,
) *GameController {
	return &GameController{
		state:    state,
		cfg:      cfg,
		dice:     dice,
		drawCard: drawCard,
		agents:   make(map[string]*agent.Agent),
	}
}

// InitAgents 为对局中的每个玩家创建 Agent，保持回合顺序
func (c *GameController) InitAgents() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.order) > 0 {
		return
	}
	for _, p := range c.state.Players() {
		ag := agent.New(p)
		c.agents[p.ID] = ag
		c.order = append(c.order, ag)
	}
}

func (c *GameController) State() *game.State {
	return c.state
}

// AgentFor returns the agent owning the given player.
func (c *GameController) AgentFor(playerID string) (*agent.Agent, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ag, ok := c.agents[playerID]
	return ag, ok
}

// ActiveAgent returns the agent currently allowed to act, or nil between
// turns.
func (c *GameController) ActiveAgent() *agent.Agent {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.active
}

// CurrentRoll returns the most recently resolved dice value.
func (c *GameController) CurrentRoll() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.currentRoll
}

// AddObserver subscribes an observer to orchestrator state changes.
func (c *GameController) AddObserver(o Observer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, o)
}

// SetRoadBonusSource plugs in the longest-road computation. When absent the
// bonus contributes zero uniformly.
func (c *GameController) SetRoadBonusSource(src RoadBonusSource) {
	c.roadBonus = src
}

// SetRecorder plugs in the metrics sink.
func (c *GameController) SetRecorder(r Recorder) {
	c.monitor = r
}

// Run drives the whole game: opening placement, then full passes over the
// fixed player order until a victory condition is met. Fails before any
// state mutation when the player count is below the configured minimum or
// the game was already started.
func (c *GameController) Run(ctx context.Context) error {
	players := c.state.Players()
	if len(players) < c.cfg.MinPlayers {
		return fmt.Errorf("%w: have %d, need %d", ErrNotEnoughPlayers, len(players), c.cfg.MinPlayers)
	}

	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return ErrGameAlreadyStarted
	}
	c.started = true
	c.mu.Unlock()

	c.InitAgents()

	if c.monitor != nil {
		c.monitor.GameStarted()
		defer c.monitor.GameFinished()
	}

	if err := c.firstRound(ctx); err != nil {
		return err
	}

	c.state.SetRound(1)
	c.notifyRound(c.state.Round())

	for c.state.Winner() == nil {
		for _, ag := range c.turnOrder() {
			turnStart := time.Now()
			err := c.withActivePlayer(ag, func() error {
				act, err := c.await(ctx, ag, agent.ObjectiveDiceRoll)
				if err != nil {
					return err
				}
				if act.Kind() != agent.KindRollDice {
					return c.violation(ag, agent.ObjectiveDiceRoll, act)
				}
				roll := c.castDice(ag.Player())

				if roll == c.cfg.RobberRoll {
					if err := c.rollSeven(ctx, ag); err != nil {
						return err
					}
				} else {
					c.DistributeResources(roll)
				}

				return c.regularTurn(ctx, ag)
			})
			if err != nil {
				return err
			}
			if c.monitor != nil {
				c.monitor.ObserveTurnDuration(time.Since(turnStart))
			}
		}

		c.state.SetRound(c.state.Round() + 1)
		c.notifyRound(c.state.Round())

		winners, err := c.Winners()
		if err != nil {
			return err
		}
		if len(winners) > 0 {
			c.state.SetWinner(winners[0])
		}
	}

	logger.Log.Infow("game finished",
		"winner", c.state.Winner().ID,
		"rounds", c.state.Round(),
	)
	return nil
}

// firstRound 开局布局：按回合顺序走两圈，每个玩家激活时
// 恰好放一个村庄、再放一条路，不允许自由回合。
func (c *GameController) firstRound(ctx context.Context) error {
	for i := 0; i < 2; i++ {
		for _, ag := range c.turnOrder() {
			err := c.withActivePlayer(ag, func() error {
				if err := c.awaitPlacement(ctx, ag, agent.ObjectivePlaceVillage, agent.BuildingVillage); err != nil {
					return err
				}
				return c.awaitPlacement(ctx, ag, agent.ObjectivePlaceRoad, agent.BuildingRoad)
			})
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *GameController) awaitPlacement(ctx context.Context, ag *agent.Agent, objective agent.Objective, want agent.BuildingKind) error {
	act, err := c.await(ctx, ag, objective)
	if err != nil {
		return err
	}
	place, ok := act.(*agent.PlaceBuildingAction)
	if !ok || place.Building != want {
		return c.violation(ag, objective, act)
	}
	// 开局放置免费
	return c.applyPlacement(ag.Player(), place, false)
}

// regularTurn 自由回合：持续以 REGULAR_TURN objective 请求动作，
// 直到收到 EndTurn。其他动作由对应的处理器施加效果后继续循环。
func (c *GameController) regularTurn(ctx context.Context, ag *agent.Agent) error {
	for {
		act, err := c.await(ctx, ag, agent.ObjectiveRegularTurn)
		if err != nil {
			return err
		}

		switch act.Kind() {
		case agent.KindEndTurn:
			return nil
		case agent.KindPlaceBuilding:
			place, ok := act.(*agent.PlaceBuildingAction)
			if !ok {
				return c.violation(ag, agent.ObjectiveRegularTurn, act)
			}
			if err := c.applyPlacement(ag.Player(), place, true); err != nil {
				logger.Log.Warnw("placement not applied", "player", ag.Player().ID, "error", err)
			}
		case agent.KindOfferTrade:
			offer, ok := act.(*agent.OfferTradeAction)
			if !ok {
				return c.violation(ag, agent.ObjectiveRegularTurn, act)
			}
			if err := c.OfferTrade(ctx, ag.Player(), offer.Offer, offer.Request); err != nil {
				return err
			}
		case agent.KindBuyDevelopmentCard:
			if err := c.buyDevelopmentCard(ag.Player()); err != nil {
				logger.Log.Warnw("development card not bought", "player", ag.Player().ID, "error", err)
			}
		case agent.KindPlayDevelopmentCard:
			play, ok := act.(*agent.PlayDevelopmentCardAction)
			if !ok {
				return c.violation(ag, agent.ObjectiveRegularTurn, act)
			}
			if err := c.playDevelopmentCard(ctx, ag, play.Card); err != nil {
				return err
			}
		default:
			return c.violation(ag, agent.ObjectiveRegularTurn, act)
		}
	}
}

// withActivePlayer 把 ag 设为激活玩家并执行 fn。无论 fn 如何退出，
// objective 都会被重置为 IDLE、激活槽位恢复为之前的值。
// 这是资源获取配对，不是可选的清理步骤。
func (c *GameController) withActivePlayer(ag *agent.Agent, fn func() error) error {
	prev := c.setActive(ag)
	defer func() {
		ag.SetObjective(agent.ObjectiveIdle)
		c.setActive(prev)
	}()
	return fn()
}

// await 下发 objective 并阻塞到动作来源给出一个动作
func (c *GameController) await(ctx context.Context, ag *agent.Agent, objective agent.Objective) (agent.Action, error) {
	ag.SetObjective(objective)
	return ag.WaitForNextAction(ctx)
}

func (c *GameController) setActive(ag *agent.Agent) (prev *agent.Agent) {
	c.mu.Lock()
	prev = c.active
	c.active = ag
	observers := c.observers
	c.mu.Unlock()

	id := ""
	if ag != nil {
		id = ag.Player().ID
	}
	for _, o := range observers {
		o.ActivePlayerChanged(id)
	}
	return prev
}

func (c *GameController) castDice(roller *game.Player) int {
	roll := c.dice()

	c.mu.Lock()
	c.currentRoll = roll
	observers := c.observers
	c.mu.Unlock()

	if c.monitor != nil {
		c.monitor.DiceRolled(roll == c.cfg.RobberRoll)
	}
	for _, o := range observers {
		o.DiceRolled(roller.ID, roll)
	}
	return roll
}

func (c *GameController) notifyRound(round int) {
	c.mu.RLock()
	observers := c.observers
	c.mu.RUnlock()
	for _, o := range observers {
		o.RoundAdvanced(round)
	}
}

func (c *GameController) turnOrder() []*agent.Agent {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*agent.Agent, len(c.order))
	copy(out, c.order)
	return out
}

func (c *GameController) violation(ag *agent.Agent, objective agent.Objective, act agent.Action) error {
	return &agent.ProtocolViolationError{
		PlayerID:  ag.Player().ID,
		Objective: objective,
		Got:       act.Kind(),
	}
}

// DrawDevelopmentCard 从发展卡堆抽一张
func (c *GameController) DrawDevelopmentCard() game.DevelopmentCardType {
	return c.drawCard()
}
