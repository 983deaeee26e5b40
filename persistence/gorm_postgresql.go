// persistence/gorm_postgresql.go
package persistence

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/wfunc/rpsls/models"
)

// GormPostgreSQL 使用GORM的PostgreSQL排行榜实现
type GormPostgreSQL struct {
	db *gorm.DB
}

// NewGormPostgreSQL 创建GORM PostgreSQL数据库连接
func NewGormPostgreSQL(host string, port int, user, password, dbname string) (*GormPostgreSQL, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	gormLogger := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold: time.Second,
			LogLevel:      gormlogger.Silent,
			Colorful:      false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// 设置连接池
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&models.GormLeaderboard{}, &models.GormMatchRecord{}); err != nil {
		return nil, err
	}

	return &GormPostgreSQL{db: db}, nil
}

// RecordMatch applies every participant's increment triple and archives the
// match inside one transaction.
func (p *GormPostgreSQL) RecordMatch(result models.MatchResult) error {
	return p.db.Transaction(func(tx *gorm.DB) error {
		for _, part := range result.Participants {
			var row models.GormLeaderboard
			err := tx.Where("username = ?", part.Username).First(&row).Error
			if err == gorm.ErrRecordNotFound {
				row = models.GormLeaderboard{
					Username: part.Username,
					Wins:     part.Wins,
					Losses:   part.Losses,
					Draws:    part.Draws,
				}
				if err := tx.Create(&row).Error; err != nil {
					return err
				}
				continue
			} else if err != nil {
				return err
			}

			updates := map[string]interface{}{
				"wins":   gorm.Expr("wins + ?", part.Wins),
				"losses": gorm.Expr("losses + ?", part.Losses),
				"draws":  gorm.Expr("draws + ?", part.Draws),
			}
			if err := tx.Model(&row).Updates(updates).Error; err != nil {
				return err
			}
		}

		participants := make(map[string]interface{}, len(result.Participants))
		for _, part := range result.Participants {
			participants[part.Username] = map[string]interface{}{
				"wins":   part.Wins,
				"losses": part.Losses,
				"draws":  part.Draws,
				"winner": part.Winner,
			}
		}

		record := models.GormMatchRecord{
			RoomID:       result.RoomID,
			Winner:       result.Winner,
			BestOf:       result.BestOf,
			RoundsPlayed: result.RoundsPlayed,
			Participants: participants,
		}
		return tx.Create(&record).Error
	})
}

// Leaderboard 获取排行榜
func (p *GormPostgreSQL) Leaderboard(limit int) ([]models.LeaderboardEntry, error) {
	var rows []models.GormLeaderboard
	err := p.db.Order("wins DESC").Order("losses ASC").Order("username ASC").
		Limit(limit).Find(&rows).Error
	if err != nil {
		return nil, err
	}

	entries := make([]models.LeaderboardEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, models.LeaderboardEntry{
			Username: row.Username,
			Wins:     row.Wins,
			Losses:   row.Losses,
			Draws:    row.Draws,
		})
	}
	return entries, nil
}

func (p *GormPostgreSQL) PlayerRecord(username string) (models.LeaderboardEntry, error) {
	var row models.GormLeaderboard
	if err := p.db.Where("username = ?", username).First(&row).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return models.LeaderboardEntry{}, ErrRecordNotFound
		}
		return models.LeaderboardEntry{}, err
	}
	return models.LeaderboardEntry{
		Username: row.Username,
		Wins:     row.Wins,
		Losses:   row.Losses,
		Draws:    row.Draws,
	}, nil
}

// Close 关闭数据库连接
func (p *GormPostgreSQL) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
