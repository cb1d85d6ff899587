package server

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/wfunc/catan/logger"
	"github.com/wfunc/catan/network"
	"github.com/wfunc/catan/session"
)

func (s *GameServer) handleCreateRoom(sess *session.Session, packet *network.Packet) {
	var req map[string]string
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		s.sendError(sess, "invalid create room payload")
		return
	}
	if name := req["player_name"]; name != "" {
		sess.PlayerName = name
	}

	roomName := req["room_name"]
	if roomName == "" {
		roomName = "New Room"
	}

	roomID := uuid.New().String()
	r := s.roomManager.CreateRoom(roomID, roomName, s.cfg.Game, s.broadcaster, s.playerService)
	r.SetMetrics(s.monitor)
	if !r.AddPlayer(sess) {
		s.sendError(sess, "could not join new room")
		return
	}

	logger.Log.Infof("Session %s created room %s", sess.GetID(), roomID)

	resp := map[string]string{"room_id": roomID}
	data, _ := json.Marshal(resp)
	sess.Send(network.MsgTypeCreateRoom, data)
}

func (s *GameServer) handleJoinRoom(sess *session.Session, packet *network.Packet) {
	var req map[string]string
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		s.sendError(sess, "invalid join room payload")
		return
	}
	if name := req["player_name"]; name != "" {
		sess.PlayerName = name
	}

	roomID := req["room_id"]
	r, exists := s.roomManager.GetRoom(roomID)
	if !exists {
		// 未指定或找不到房间时尝试匹配一个等待中的房间
		if r = s.roomManager.FindAvailableRoom(); r == nil {
			s.sendError(sess, "room not found")
			return
		}
	}

	if r.AddPlayer(sess) {
		logger.Log.Infof("Session %s joined room %s", sess.GetID(), r.GetID())
	} else {
		s.sendError(sess, "room is full or already playing")
	}
}

func (s *GameServer) handleLeaveRoom(sess *session.Session, packet *network.Packet) {
	s.leaveRoom(sess)
}

func (s *GameServer) handleGameAction(sess *session.Session, packet *network.Packet) {
	if sess.RoomID == "" {
		logger.Log.Warnf("Session %s sent game action but is not in a room", sess.GetID())
		return
	}

	r, exists := s.roomManager.GetRoom(sess.RoomID)
	if !exists {
		logger.Log.Errorf("Room %s not found for session %s", sess.RoomID, sess.GetID())
		return
	}

	currentState := r.StateMachine.GetCurrentState()
	if currentState == nil {
		logger.Log.Errorf("Room %s has a nil state", r.GetID())
		return
	}

	if err := currentState.HandleAction(sess, packet.Data); err != nil {
		logger.Log.Errorf("Error handling action in room %s: %v", r.GetID(), err)
		s.sendError(sess, err.Error())
	}
}

func (s *GameServer) leaveRoom(sess *session.Session) {
	if sess.RoomID == "" {
		return
	}
	r, exists := s.roomManager.GetRoom(sess.RoomID)
	if !exists {
		sess.RoomID = ""
		return
	}

	r.RemovePlayer(sess.GetID())
	logger.Log.Infof("Session %s left room %s", sess.GetID(), r.GetID())

	if r.PlayerCount() == 0 {
		r.Close()
		s.roomManager.RemoveRoom(r.GetID())
		logger.Log.Infof("Room %s removed (empty)", r.GetID())
	}
}

func (s *GameServer) sendError(sess *session.Session, message string) {
	sess.SendJSON(network.MsgTypeError, map[string]string{"error": message})
}
