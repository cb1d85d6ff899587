// services/player_service.go
package services

import (
	"fmt"

	"github.com/wfunc/catan/models"
	"github.com/wfunc/catan/persistence"
	"gorm.io/gorm"
)

type PlayerService struct {
	db persistence.Database
}

func NewPlayerService(db persistence.Database) *PlayerService {
	return &PlayerService{db: db}
}

// GetPlayerWithStats 获取玩家信息和统计
func (s *PlayerService) GetPlayerWithStats(playerID string) (map[string]interface{}, error) {
	var result map[string]interface{}

	// 使用事务确保数据一致性
	err := s.db.Transaction(func(tx *gorm.DB) error {
		// 获取玩家基本信息
		var player models.GormPlayer
		if err := tx.Where("player_id = ?", playerID).First(&player).Error; err != nil {
			return err
		}

		// 获取玩家统计信息
		stats, err := s.db.GetPlayerStats(playerID)
		if err != nil {
			return err
		}

		result = map[string]interface{}{
			"player": player,
			"stats":  stats,
		}

		return nil
	})

	return result, err
}

// RecordMatch 写入一条对局记录并更新参与玩家的战绩
func (s *PlayerService) RecordMatch(record *models.MatchRecord) error {
	if err := s.db.SaveMatchRecord(record); err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, score := range record.Players {
			delta := -10
			if score.Outcome == "win" {
				delta = 25
			}
			if err := s.adjustRating(tx, score, delta); err != nil {
				return err
			}
		}
		return nil
	})
}

// adjustRating 原子更新一个玩家的分数，没有档案时先建档
func (s *PlayerService) adjustRating(tx *gorm.DB, score models.PlayerScore, delta int) error {
	var player models.GormPlayer
	err := tx.Where("player_id = ?", score.PlayerID).First(&player).Error
	if err == gorm.ErrRecordNotFound {
		player = models.GormPlayer{
			PlayerID: score.PlayerID,
			Name:     score.Name,
		}
		if err := tx.Create(&player).Error; err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	// 分数不降到零以下
	if err := tx.Model(&player).Update("rating", gorm.Expr("GREATEST(rating + ?, 0)", delta)).Error; err != nil {
		return err
	}

	// 更新统计信息
	column := "losses"
	if score.Outcome == "win" {
		column = "wins"
	}
	if err := tx.Model(&player).Update("stats", gorm.Expr(`
            jsonb_set(
                COALESCE(stats, '{}'::jsonb),
                '{`+column+`}',
                to_jsonb(COALESCE((stats->>'`+column+`')::int, 0) + 1)
            )
        `)).Error; err != nil {
		return err
	}

	return nil
}

// UpdatePlayerRating 更新玩家分数（原子操作）
func (s *PlayerService) UpdatePlayerRating(playerID string, delta int) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var player models.GormPlayer
		if err := tx.Where("player_id = ?", playerID).First(&player).Error; err != nil {
			return err
		}

		// 检查分数是否足够（如果是减少）
		if delta < 0 && player.Rating+delta < 0 {
			return fmt.Errorf("insufficient rating")
		}

		return tx.Model(&player).Update("rating", gorm.Expr("rating + ?", delta)).Error
	})
}
