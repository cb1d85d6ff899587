package server

import (
	"net/http"
	"net/rpc"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/wfunc/catan/broadcast"
	"github.com/wfunc/catan/config"
	"github.com/wfunc/catan/logger"
	"github.com/wfunc/catan/monitor"
	"github.com/wfunc/catan/network"
	"github.com/wfunc/catan/persistence"
	"github.com/wfunc/catan/room"
	catan_rpc "github.com/wfunc/catan/rpc"
	"github.com/wfunc/catan/services"
	"github.com/wfunc/catan/session"
	"github.com/wfunc/catan/timer"
)

type GameServer struct {
	cfg            *config.Config
	upgrader       websocket.Upgrader
	roomManager    *room.Manager
	sessionManager *session.Manager
	playerService  *services.PlayerService
	broadcaster    broadcast.Broadcaster
	rpcServer      *catan_rpc.Server
	timers         *timer.Manager
	monitor        *monitor.Monitor
	db             persistence.Database
	mutex          sync.Mutex
	shutdownChan   chan struct{}
}

func NewGameServer(cfg *config.Config, db persistence.Database) *GameServer {
	s := &GameServer{
		cfg:            cfg,
		db:             db,
		roomManager:    room.NewRoomManager(),
		sessionManager: session.NewManager(),
		playerService:  services.NewPlayerService(db),
		timers:         timer.NewManager(),
		monitor:        monitor.NewMonitor("catan"),
		shutdownChan:   make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // 允许所有跨域请求
			},
		},
	}

	// 初始化广播器
	s.broadcaster = broadcast.NewRoomBroadcaster(s.roomManager, s.sessionManager)

	// 初始化RPC服务器
	rpcServer, err := catan_rpc.NewServer(cfg.Server.RPCAddress)
	if err != nil {
		logger.Log.Fatalf("Failed to create RPC server: %v", err)
	}
	s.rpcServer = rpcServer

	// 注册RPC服务
	gameService := catan_rpc.NewGameService(s.playerService)
	rpc.Register(gameService)

	// 周期任务：房间状态落库、闲置会话清理
	s.timers.AddTimer(30*time.Second, 30*time.Second, s.persistRoomStates)
	s.timers.AddTimer(time.Minute, time.Minute, s.sweepIdleSessions)

	return s
}

func (s *GameServer) Start() error {
	go s.rpcServer.Start()

	if s.cfg.Server.MetricsAddress != "" {
		s.monitor.StartServer(s.cfg.Server.MetricsAddress)
	}

	http.HandleFunc("/ws", s.handleWebSocket)
	logger.Log.Infof("Game server listening on %s", s.cfg.Server.HTTPAddress)
	return http.ListenAndServe(s.cfg.Server.HTTPAddress, nil)
}

func (s *GameServer) Shutdown() {
	close(s.shutdownChan)
	s.timers.Stop()
	s.rpcServer.Stop()
}

// persistRoomStates 把所有房间的快照写入数据库
func (s *GameServer) persistRoomStates() {
	for _, r := range s.roomManager.Rooms() {
		snap := r.Snapshot()
		if err := s.db.SaveRoomState(snap.RoomID, snap.State, snap.Players, snap.Round); err != nil {
			logger.Log.Warnf("Failed to persist room %s state: %v", snap.RoomID, err)
		}
	}
}

// sweepIdleSessions 清理长时间无心跳的会话
func (s *GameServer) sweepIdleSessions() {
	for _, sess := range s.sessionManager.All() {
		if sess.IdleSince() > 5*time.Minute {
			logger.Log.Infof("Closing idle session %s", sess.GetID())
			sess.Close()
		}
	}
}

func (s *GameServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}
	s.handleConnection(conn)
}

func (s *GameServer) handleConnection(conn *websocket.Conn) {
	wsConn := network.NewWSConnection(conn)
	sess := session.NewSession(uuid.New().String(), wsConn)
	s.sessionManager.Add(sess)
	s.monitor.IncOnlinePlayers()

	logger.Log.Infof("New connection from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())

	defer func() {
		logger.Log.Infof("Connection closed from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())
		s.sessionManager.Remove(sess.GetID())
		s.monitor.DecOnlinePlayers()
		if sess.RoomID != "" {
			s.leaveRoom(sess)
		}
		wsConn.Close()
	}()

	for {
		select {
		case <-s.shutdownChan:
			return
		default:
			packet, err := wsConn.ReadPacket()
			if err != nil {
				return
			}
			s.handlePacket(sess, packet)
		}
	}
}

func (s *GameServer) handlePacket(sess *session.Session, packet *network.Packet) {
	switch packet.MsgID {
	case network.MsgTypeHeartbeat:
		sess.Touch()
	case network.MsgTypeCreateRoom:
		s.handleCreateRoom(sess, packet)
	case network.MsgTypeJoinRoom:
		s.handleJoinRoom(sess, packet)
	case network.MsgTypeLeaveRoom:
		s.handleLeaveRoom(sess, packet)
	case network.MsgTypePlayerAction:
		s.handleGameAction(sess, packet)
	default:
		logger.Log.Infof("Unknown message type: %d", packet.MsgID)
	}
}
