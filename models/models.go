// models/models.go
package models

import (
	"time"
)

// PlayerProfile 玩家档案模型
type PlayerProfile struct {
	PlayerID  string    `json:"player_id"`
	Name      string    `json:"name"`
	Rating    int       `json:"rating"`
	Wins      int       `json:"wins"`
	Losses    int       `json:"losses"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MatchRecord 对局记录模型
type MatchRecord struct {
	RoomID    string        `json:"room_id"`
	Winner    string        `json:"winner"`
	Rounds    int           `json:"rounds"`
	Players   []PlayerScore `json:"players"`
	CreatedAt time.Time     `json:"created_at"`
}

// PlayerScore 单个玩家的对局结果
type PlayerScore struct {
	PlayerID      string `json:"player_id"`
	Name          string `json:"name"`
	VictoryPoints int    `json:"victory_points"`
	KnightsPlayed int    `json:"knights_played"`
	Outcome       string `json:"outcome"` // win/lose
}

// RoomState 房间状态模型
type RoomState struct {
	RoomID    string    `json:"room_id"`
	State     string    `json:"state"`
	Players   []string  `json:"players"`
	Round     int       `json:"round"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
