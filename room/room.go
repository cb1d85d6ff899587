// room/room.go
package room

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/wfunc/catan/config"
	"github.com/wfunc/catan/controller"
	"github.com/wfunc/catan/dice"
	"github.com/wfunc/catan/game"
	"github.com/wfunc/catan/logger"
	"github.com/wfunc/catan/models"
	"github.com/wfunc/catan/session"
	"github.com/wfunc/catan/state"
)

// RoomStatus 表示房间的业务状态，例如等待、对局中等
type RoomStatus int

const (
	StatusIdle RoomStatus = iota
	StatusWaiting
	StatusGaming
	StatusSettlement
)

func (s RoomStatus) String() string {
	switch s {
	case StatusWaiting:
		return "waiting"
	case StatusGaming:
		return "gaming"
	case StatusSettlement:
		return "settlement"
	default:
		return "idle"
	}
}

var (
	ErrMatchNotRunning = errors.New("no match running in room")
	ErrUnknownPlayer   = errors.New("player not part of this room")
)

// Room 一个房间承载一场对局。加入顺序就是回合顺序。
type Room struct {
	ID        string
	Name      string
	Status    RoomStatus
	CreatedAt time.Time

	cfg          config.GameConfig
	broadcaster  Broadcaster
	recorder     Recorder
	metrics      controller.Recorder
	StateMachine state.StateMachine

	playerMutex sync.RWMutex
	sessions    map[string]*session.Session // sessionID -> session
	order       []string                    // 加入顺序，对局的回合顺序由它决定

	matchMutex  sync.RWMutex
	match       *controller.GameController
	grid        *game.ListGrid
	matchDone   bool
	matchErr    error
	cancelMatch context.CancelFunc

	statusMutex sync.RWMutex
	ticker      *time.Ticker
	closeChan   chan bool
}

// NewRoom 创建一个新房间
func NewRoom(id, name string, cfg config.GameConfig, broadcaster Broadcaster, recorder Recorder) *Room {
	room := &Room{
		ID:          id,
		Name:        name,
		Status:      StatusIdle,
		CreatedAt:   time.Now(),
		cfg:         cfg,
		broadcaster: broadcaster,
		recorder:    recorder,
		sessions:    make(map[string]*session.Session),
		closeChan:   make(chan bool),
	}

	// 初始化状态机，将房间自身(room)作为上下文传入
	initialState := state.NewWaitingState(room)
	room.StateMachine = state.NewBaseStateMachine(initialState)
	room.SetStatus(StatusWaiting)

	// 启动房间心跳
	room.ticker = time.NewTicker(100 * time.Millisecond) // 10 FPS
	go room.loop()

	return room
}

// SetMetrics plugs in the game flow metrics sink. Must be called before the match starts.
func (r *Room) SetMetrics(m controller.Recorder) {
	r.matchMutex.Lock()
	defer r.matchMutex.Unlock()
	r.metrics = m
}

// --- 实现 state.RoomContext 接口 ---

// GetID 返回房间ID
func (r *Room) GetID() string {
	return r.ID
}

// PlayerCount 当前人数
func (r *Room) PlayerCount() int {
	r.playerMutex.RLock()
	defer r.playerMutex.RUnlock()
	return len(r.sessions)
}

func (r *Room) GetMinPlayers() int {
	return r.cfg.MinPlayers
}

func (r *Room) GetMaxPlayers() int {
	return r.cfg.MaxPlayers
}

// ChangeState 改变房间的状态机状态
func (r *Room) ChangeState(newState state.State) error {
	return r.StateMachine.ChangeState(newState)
}

// Broadcast sends a message to all players in the room.
func (r *Room) Broadcast(msgID uint16, data []byte) error {
	return r.broadcaster.BroadcastToRoom(r.ID, msgID, data)
}

// StartMatch 按加入顺序构建玩家与对局，在独立 goroutine 上启动编排器
func (r *Room) StartMatch() error {
	r.matchMutex.Lock()
	defer r.matchMutex.Unlock()

	if r.match != nil {
		return controller.ErrGameAlreadyStarted
	}

	r.playerMutex.RLock()
	players := make([]*game.Player, 0, len(r.order))
	for _, id := range r.order {
		sess := r.sessions[id]
		players = append(players, game.NewPlayer(id, sess.PlayerName))
	}
	r.playerMutex.RUnlock()

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	r.grid = game.DefaultGrid()
	gameState := game.NewState(r.grid, players...)

	ctl := controller.NewGameController(
		gameState,
		r.cfg,
		dice.NewRoller(r.cfg.NumberOfDice, r.cfg.DiceSides, rng),
		dice.NewDeck(rng),
	)
	ctl.InitAgents()
	ctl.AddObserver(&matchNotifier{room: r})
	if r.metrics != nil {
		ctl.SetRecorder(r.metrics)
	}

	// 每个玩家的 objective 变化只推给自己的会话
	for _, p := range players {
		ag, _ := ctl.AgentFor(p.ID)
		r.watchObjective(p.ID, ag)
	}

	ctx, cancel := context.WithCancel(context.Background())
	r.match = ctl
	r.matchDone = false
	r.cancelMatch = cancel
	r.SetStatus(StatusGaming)

	go func() {
		err := ctl.Run(ctx)
		r.matchMutex.Lock()
		r.matchDone = true
		r.matchErr = err
		r.matchMutex.Unlock()
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Log.Errorf("Match in room %s aborted: %v", r.ID, err)
		}
	}()

	return nil
}

// MatchDone reports whether the orchestrator has returned.
func (r *Room) MatchDone() bool {
	r.matchMutex.RLock()
	defer r.matchMutex.RUnlock()
	return r.matchDone
}

// Match returns the running game controller, if any.
func (r *Room) Match() *controller.GameController {
	r.matchMutex.RLock()
	defer r.matchMutex.RUnlock()
	return r.match
}

// SubmitAction 解码动作包并转交给对应玩家的 Agent。
// Agent 的会合语义决定这里会阻塞到编排器收下动作为止。
func (r *Room) SubmitAction(playerID string, data []byte) error {
	match := r.Match()
	if match == nil {
		return ErrMatchNotRunning
	}
	ag, ok := match.AgentFor(playerID)
	if !ok {
		return ErrUnknownPlayer
	}
	act, err := r.decodeAction(playerID, data)
	if err != nil {
		return err
	}
	return ag.SubmitAction(act)
}

// FinishMatch 广播结算结果并写入对局记录
func (r *Room) FinishMatch() {
	match := r.Match()
	if match == nil {
		return
	}
	r.SetStatus(StatusSettlement)

	record := r.buildRecord(match)
	r.Broadcast(gameEndMsgID, mustMarshal(record))

	if r.recorder != nil {
		if err := r.recorder.RecordMatch(record); err != nil {
			logger.Log.Errorf("Failed to record match for room %s: %v", r.ID, err)
		}
	}
}

func (r *Room) buildRecord(match *controller.GameController) *models.MatchRecord {
	gameState := match.State()
	record := &models.MatchRecord{
		RoomID:    r.ID,
		Rounds:    gameState.Round(),
		CreatedAt: time.Now(),
	}
	winner := gameState.Winner()
	if winner != nil {
		record.Winner = winner.ID
	}
	for _, p := range gameState.Players() {
		outcome := "lose"
		if p == winner {
			outcome = "win"
		}
		record.Players = append(record.Players, models.PlayerScore{
			PlayerID:      p.ID,
			Name:          p.Name,
			VictoryPoints: p.VictoryPoints(),
			KnightsPlayed: p.KnightsPlayed(),
			Outcome:       outcome,
		})
	}
	return record
}

// --- 房间核心逻辑 ---

// AddPlayer 添加一个玩家到房间。对局开始后不再接受新玩家。
func (r *Room) AddPlayer(s *session.Session) bool {
	if r.GetStatus() != StatusWaiting {
		return false
	}

	r.playerMutex.Lock()
	if len(r.sessions) >= r.cfg.MaxPlayers {
		r.playerMutex.Unlock()
		return false
	}
	if _, exists := r.sessions[s.ID]; exists {
		r.playerMutex.Unlock()
		return false
	}

	r.sessions[s.ID] = s
	r.order = append(r.order, s.ID)
	s.RoomID = r.ID
	r.playerMutex.Unlock()

	r.broadcastRoomState()
	return true
}

// RemovePlayer 断开会话。对局中的玩家不会从回合顺序里消失：
// 回合顺序整局固定，掉线处理是边界层的事。
func (r *Room) RemovePlayer(sessionID string) {
	r.playerMutex.Lock()
	sess, exists := r.sessions[sessionID]
	if exists {
		sess.RoomID = ""
		delete(r.sessions, sessionID)
		if r.GetStatus() == StatusWaiting {
			for i, id := range r.order {
				if id == sessionID {
					r.order = append(r.order[:i], r.order[i+1:]...)
					break
				}
			}
		}
	}
	r.playerMutex.Unlock()

	if exists {
		r.broadcastRoomState()
	}
}

// broadcastRoomState 人员变动后把最新快照推给房间里剩下的人
func (r *Room) broadcastRoomState() {
	r.Broadcast(roomStateMsgID, mustMarshal(r.Snapshot()))
}

// GetPlayer 获取单个玩家会话
func (r *Room) GetPlayer(sessionID string) (*session.Session, bool) {
	r.playerMutex.RLock()
	defer r.playerMutex.RUnlock()

	sess, exists := r.sessions[sessionID]
	return sess, exists
}

// GetSessions returns a slice of all sessions in the room (thread-safe).
func (r *Room) GetSessions() []*session.Session {
	r.playerMutex.RLock()
	defer r.playerMutex.RUnlock()

	sessions := make([]*session.Session, 0, len(r.sessions))
	for _, id := range r.order {
		if s, ok := r.sessions[id]; ok {
			sessions = append(sessions, s)
		}
	}
	return sessions
}

// SetStatus 设置房间的业务状态
func (r *Room) SetStatus(status RoomStatus) {
	r.statusMutex.Lock()
	defer r.statusMutex.Unlock()
	r.Status = status
}

// GetStatus 获取房间的业务状态
func (r *Room) GetStatus() RoomStatus {
	r.statusMutex.RLock()
	defer r.statusMutex.RUnlock()
	return r.Status
}

// Snapshot 当前房间状态快照，用于周期性持久化
func (r *Room) Snapshot() *models.RoomState {
	snap := &models.RoomState{
		RoomID:    r.ID,
		State:     r.GetStatus().String(),
		CreatedAt: r.CreatedAt,
		UpdatedAt: time.Now(),
	}
	r.playerMutex.RLock()
	snap.Players = append(snap.Players, r.order...)
	r.playerMutex.RUnlock()

	if match := r.Match(); match != nil {
		snap.Round = match.State().Round()
	}
	return snap
}

// loop 是房间的主循环，定时驱动状态更新
func (r *Room) loop() {
	for {
		select {
		case <-r.ticker.C:
			r.Update()
		case <-r.closeChan:
			r.ticker.Stop()
			return
		}
	}
}

// Update 由主循环调用，驱动状态机更新
func (r *Room) Update() {
	if r.StateMachine != nil {
		currentState := r.StateMachine.GetCurrentState()
		if currentState != nil {
			currentState.OnUpdate()
		}
	}
}

// Close 关闭房间，停止主循环和对局
func (r *Room) Close() {
	r.matchMutex.Lock()
	if r.cancelMatch != nil {
		r.cancelMatch()
	}
	r.matchMutex.Unlock()
	close(r.closeChan)
}

// --- 房间管理器 ---

// Manager 管理所有房间
type Manager struct {
	rooms map[string]*Room
	mutex sync.RWMutex
}

// NewRoomManager 创建一个新的房间管理器
func NewRoomManager() *Manager {
	return &Manager{
		rooms: make(map[string]*Room),
	}
}

// CreateRoom 创建一个新房间并添加到管理器
func (m *Manager) CreateRoom(id, name string, cfg config.GameConfig, broadcaster Broadcaster, recorder Recorder) *Room {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	room := NewRoom(id, name, cfg, broadcaster, recorder)
	m.rooms[id] = room
	return room
}

// RemoveRoom 从管理器中移除并关闭一个房间
func (m *Manager) RemoveRoom(id string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if room, exists := m.rooms[id]; exists {
		room.Close()
		delete(m.rooms, id)
	}
}

// GetRoom 从管理器中获取一个房间
func (m *Manager) GetRoom(id string) (*Room, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	room, exists := m.rooms[id]
	return room, exists
}

// FindAvailableRoom 查找一个可用的房间
func (m *Manager) FindAvailableRoom() *Room {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	for _, room := range m.rooms {
		if room.PlayerCount() < room.GetMaxPlayers() && room.GetStatus() == StatusWaiting {
			return room
		}
	}
	return nil
}

// Rooms returns a snapshot of all managed rooms.
func (m *Manager) Rooms() []*Room {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	out := make([]*Room, 0, len(m.rooms))
	for _, room := range m.rooms {
		out = append(out, room)
	}
	return out
}

// Count 房间数量
func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.rooms)
}
