// persistence/postgresql.go
package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	// PostgreSQL 驱动
	_ "github.com/lib/pq"
)

// PostgreSQL 不经过 ORM 的裸 database/sql 实现。
// 不支持 gorm 事务接口，需要事务时用 GormPostgreSQL。
type PostgreSQL struct {
	db *sql.DB
}

// NewPostgreSQL 创建 PostgreSQL 数据库连接
func NewPostgreSQL(host string, port int, user, password, dbname string) (*PostgreSQL, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	// 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	// 设置连接池参数
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	// 初始化表结构
	if err := initTables(db); err != nil {
		return nil, err
	}

	return &PostgreSQL{db: db}, nil
}

// initTables 初始化数据库表结构
func initTables(db *sql.DB) error {
	// 创建玩家表
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS players (
            id SERIAL PRIMARY KEY,
            player_id VARCHAR(255) UNIQUE NOT NULL,
            data JSONB NOT NULL,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        )
    `)
	if err != nil {
		return err
	}

	// 创建对局记录表
	_, err = db.Exec(`
        CREATE TABLE IF NOT EXISTS match_records (
            id SERIAL PRIMARY KEY,
            room_id VARCHAR(255) NOT NULL,
            winner VARCHAR(255),
            rounds INT NOT NULL DEFAULT 0,
            players JSONB NOT NULL,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        )
    `)
	if err != nil {
		return err
	}

	// 创建房间表
	_, err = db.Exec(`
        CREATE TABLE IF NOT EXISTS rooms (
            id SERIAL PRIMARY KEY,
            room_id VARCHAR(255) UNIQUE NOT NULL,
            state VARCHAR(50) NOT NULL,
            players JSONB NOT NULL,
            round INT NOT NULL DEFAULT 0,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        )
    `)
	if err != nil {
		return err
	}

	// 创建索引以提高查询性能
	_, err = db.Exec(`
        CREATE INDEX IF NOT EXISTS idx_players_player_id ON players(player_id);
        CREATE INDEX IF NOT EXISTS idx_match_records_room_id ON match_records(room_id);
        CREATE INDEX IF NOT EXISTS idx_match_records_winner ON match_records(winner);
        CREATE INDEX IF NOT EXISTS idx_rooms_room_id ON rooms(room_id);
    `)

	return err
}

// SavePlayerProfile 保存玩家档案
func (p *PostgreSQL) SavePlayerProfile(playerID string, data interface{}) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// 使用 UPSERT 操作 (PostgreSQL 9.5+)
	query := `
        INSERT INTO players (player_id, data)
        VALUES ($1, $2)
        ON CONFLICT (player_id)
        DO UPDATE SET data = $2, updated_at = CURRENT_TIMESTAMP
    `

	_, err = p.db.ExecContext(ctx, query, playerID, jsonData)
	return err
}

// LoadPlayerProfile 加载玩家档案
func (p *PostgreSQL) LoadPlayerProfile(playerID string, result interface{}) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var data []byte
	query := `SELECT data FROM players WHERE player_id = $1`
	err := p.db.QueryRowContext(ctx, query, playerID).Scan(&data)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrRecordNotFound
		}
		return err
	}

	return json.Unmarshal(data, result)
}

// SaveMatchRecord 保存对局记录
func (p *PostgreSQL) SaveMatchRecord(record interface{}) error {
	jsonData, err := json.Marshal(record)
	if err != nil {
		return err
	}

	// 将记录解析为map以提取字段
	var recordMap map[string]interface{}
	if err := json.Unmarshal(jsonData, &recordMap); err != nil {
		return err
	}
	playersJSON, err := json.Marshal(recordMap["players"])
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `
        INSERT INTO match_records (room_id, winner, rounds, players)
        VALUES ($1, $2, $3, $4)
    `

	_, err = p.db.ExecContext(ctx, query,
		recordMap["room_id"],
		recordMap["winner"],
		recordMap["rounds"],
		playersJSON)

	return err
}

// SaveRoomState 保存房间状态
func (p *PostgreSQL) SaveRoomState(roomID, state string, players interface{}, round int) error {
	playersJSON, err := json.Marshal(players)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `
        INSERT INTO rooms (room_id, state, players, round)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (room_id)
        DO UPDATE SET state = $2, players = $3, round = $4, updated_at = CURRENT_TIMESTAMP
    `

	_, err = p.db.ExecContext(ctx, query, roomID, state, playersJSON, round)
	return err
}

// LoadRoomState 加载房间状态
func (p *PostgreSQL) LoadRoomState(roomID string, result interface{}) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var data []byte
	query := `SELECT players FROM rooms WHERE room_id = $1`
	err := p.db.QueryRowContext(ctx, query, roomID).Scan(&data)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrRecordNotFound
		}
		return err
	}

	return json.Unmarshal(data, result)
}

// Close 关闭数据库连接
func (p *PostgreSQL) Close() error {
	return p.db.Close()
}
