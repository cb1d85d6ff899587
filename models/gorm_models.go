// models/gorm_models.go
package models

import (
	"gorm.io/gorm"
)

// GormPlayer 玩家模型
type GormPlayer struct {
	gorm.Model
	PlayerID string                 `gorm:"uniqueIndex;not null"`
	Name     string                 `gorm:"not null"`
	Rating   int                    `gorm:"default:1000"`
	Stats    map[string]interface{} `gorm:"type:jsonb"`
}

// GormMatchRecord 对局记录模型
type GormMatchRecord struct {
	gorm.Model
	RoomID  string                 `gorm:"index;not null"`
	Winner  string                 `gorm:"index"`
	Rounds  int                    `gorm:"default:0"`
	Players map[string]interface{} `gorm:"type:jsonb;not null"`
	Result  map[string]interface{} `gorm:"type:jsonb;not null"`
}

// GormRoom 房间模型
type GormRoom struct {
	gorm.Model
	RoomID  string                 `gorm:"uniqueIndex;not null"`
	State   string                 `gorm:"not null"`
	Players map[string]interface{} `gorm:"type:jsonb"`
	Round   int                    `gorm:"default:0"`
}

// PlayerStats 玩家统计信息
type PlayerStats struct {
	TotalGames int `json:"total_games"`
	Wins       int `json:"wins"`
	Losses     int `json:"losses"`
	BestScore  int `json:"best_score"`
}
