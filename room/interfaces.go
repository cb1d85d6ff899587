package room

import (
	"github.com/wfunc/catan/models"
)

// Broadcaster defines the interface for broadcasting messages to a room.
// This is defined here to break the import cycle between room and broadcast.
type Broadcaster interface {
	BroadcastToRoom(roomID string, msgID uint16, data []byte) error
}

// Recorder 结算时持久化对局结果。由 services 层实现。
type Recorder interface {
	RecordMatch(record *models.MatchRecord) error
}
