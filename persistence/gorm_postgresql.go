// persistence/gorm_postgresql.go
package persistence

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/wfunc/catan/models"
)

// GormPostgreSQL 使用GORM的PostgreSQL实现
type GormPostgreSQL struct {
	db *gorm.DB
}

// NewGormPostgreSQL 创建GORM PostgreSQL数据库连接
func NewGormPostgreSQL(host string, port int, user, password, dbname string) (*GormPostgreSQL, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	// 配置GORM日志
	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags), // io writer
		logger.Config{
			SlowThreshold: time.Second,   // 慢SQL阈值
			LogLevel:      logger.Silent, // 日志级别
			Colorful:      false,         // 禁用彩色打印
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, err
	}

	// 获取通用数据库对象 sql.DB
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// 设置连接池
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	// 自动迁移表结构
	if err := autoMigrate(db); err != nil {
		return nil, err
	}

	return &GormPostgreSQL{db: db}, nil
}

// autoMigrate 自动迁移表结构
func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.GormPlayer{},
		&models.GormMatchRecord{},
		&models.GormRoom{},
	)
}

// SavePlayerProfile 保存玩家档案
func (p *GormPostgreSQL) SavePlayerProfile(playerID string, data interface{}) error {
	profile, ok := data.(map[string]interface{})
	if !ok {
		return fmt.Errorf("invalid player profile type")
	}

	// 使用UPSERT操作
	var player models.GormPlayer
	result := p.db.Where("player_id = ?", playerID).First(&player)

	if result.Error == gorm.ErrRecordNotFound {
		// 创建新记录
		player = models.GormPlayer{
			PlayerID: playerID,
			Stats:    profile,
		}
		if name, ok := profile["name"].(string); ok {
			player.Name = name
		}
		return p.db.Create(&player).Error
	} else if result.Error != nil {
		return result.Error
	}

	// 更新现有记录
	player.Stats = profile
	if name, ok := profile["name"].(string); ok {
		player.Name = name
	}
	return p.db.Save(&player).Error
}

// LoadPlayerProfile 加载玩家档案
func (p *GormPostgreSQL) LoadPlayerProfile(playerID string, result interface{}) error {
	var player models.GormPlayer
	if err := p.db.Where("player_id = ?", playerID).First(&player).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return ErrRecordNotFound
		}
		return err
	}

	// 将数据转换为目标类型
	data, ok := result.(*map[string]interface{})
	if ok {
		*data = player.Stats
		return nil
	}

	return fmt.Errorf("invalid result type")
}

// SaveMatchRecord 保存对局记录
func (p *GormPostgreSQL) SaveMatchRecord(record interface{}) error {
	matchRecord, ok := record.(*models.MatchRecord)
	if !ok {
		return fmt.Errorf("invalid match record type")
	}

	players := make(map[string]interface{}, len(matchRecord.Players))
	result := make(map[string]interface{}, len(matchRecord.Players))
	for _, score := range matchRecord.Players {
		players[score.PlayerID] = map[string]interface{}{
			"name": score.Name,
		}
		result[score.PlayerID] = map[string]interface{}{
			"outcome":        score.Outcome,
			"victory_points": score.VictoryPoints,
			"knights_played": score.KnightsPlayed,
		}
	}

	row := models.GormMatchRecord{
		RoomID:  matchRecord.RoomID,
		Winner:  matchRecord.Winner,
		Rounds:  matchRecord.Rounds,
		Players: players,
		Result:  result,
	}

	return p.db.Create(&row).Error
}

// SaveRoomState 保存房间状态
func (p *GormPostgreSQL) SaveRoomState(roomID, state string, players interface{}, round int) error {
	playerList, ok := players.([]string)
	if !ok {
		return fmt.Errorf("invalid players type")
	}
	playersData := make(map[string]interface{}, len(playerList))
	for i, id := range playerList {
		playersData[id] = map[string]interface{}{"seat": i}
	}

	var roomRow models.GormRoom
	result := p.db.Where("room_id = ?", roomID).First(&roomRow)

	if result.Error == gorm.ErrRecordNotFound {
		// 创建新记录
		roomRow = models.GormRoom{
			RoomID:  roomID,
			State:   state,
			Players: playersData,
			Round:   round,
		}
		return p.db.Create(&roomRow).Error
	} else if result.Error != nil {
		return result.Error
	}

	// 更新现有记录
	roomRow.State = state
	roomRow.Players = playersData
	roomRow.Round = round
	return p.db.Save(&roomRow).Error
}

// LoadRoomState 加载房间状态
func (p *GormPostgreSQL) LoadRoomState(roomID string, result interface{}) error {
	var roomRow models.GormRoom
	if err := p.db.Where("room_id = ?", roomID).First(&roomRow).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return ErrRecordNotFound
		}
		return err
	}

	data, ok := result.(*map[string]interface{})
	if ok {
		*data = roomRow.Players
		return nil
	}

	return fmt.Errorf("invalid result type")
}

// Close 关闭数据库连接
func (p *GormPostgreSQL) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// 添加事务支持
func (p *GormPostgreSQL) Transaction(fn func(tx *gorm.DB) error) error {
	return p.db.Transaction(fn)
}

// GetPlayerStats 汇总一个玩家的历史战绩
func (p *GormPostgreSQL) GetPlayerStats(playerID string) (map[string]interface{}, error) {
	var stats map[string]interface{}

	err := p.db.Raw(
		`
        SELECT
            COUNT(*) as total_games,
            SUM(CASE WHEN winner = ? THEN 1 ELSE 0 END) as wins,
            SUM(CASE WHEN winner <> ? THEN 1 ELSE 0 END) as losses
        FROM match_records
        WHERE players @> ?`,
		playerID, playerID, fmt.Sprintf(`{"%s": {}}`, playerID),
	).Scan(&stats).Error

	return stats, err
}
