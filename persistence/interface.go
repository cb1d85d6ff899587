// persistence/interface.go
package persistence

import (
	"fmt"

	"gorm.io/gorm"
)

// Database 数据库接口
type Database interface {
	SavePlayerProfile(playerID string, data interface{}) error
	LoadPlayerProfile(playerID string, result interface{}) error
	SaveMatchRecord(record interface{}) error
	SaveRoomState(roomID, state string, players interface{}, round int) error
	LoadRoomState(roomID string, result interface{}) error
	Transaction(fn func(tx *gorm.DB) error) error
	GetPlayerStats(playerID string) (map[string]interface{}, error)
	Close() error
}

// 错误定义
var (
	ErrRecordNotFound = fmt.Errorf("record not found")
)
