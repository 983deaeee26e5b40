package models

import (
	"gorm.io/gorm"
)

// GormLeaderboard 排行榜模型
type GormLeaderboard struct {
	gorm.Model
	Username string `gorm:"uniqueIndex;not null"`
	Wins     int    `gorm:"default:0"`
	Losses   int    `gorm:"default:0"`
	Draws    int    `gorm:"default:0"`
}

// GormMatchRecord 对局记录模型
type GormMatchRecord struct {
	gorm.Model
	RoomID       string                 `gorm:"index;not null"`
	Winner       string                 `gorm:"not null"`
	BestOf       int                    `gorm:"not null"`
	RoundsPlayed int                    `gorm:"default:0"`
	Participants map[string]interface{} `gorm:"serializer:json;type:jsonb"`
}
