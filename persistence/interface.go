// persistence/interface.go
package persistence

import (
	"fmt"

	"github.com/wfunc/rpsls/models"
)

// Store 排行榜存储接口
type Store interface {
	// RecordMatch applies one atomic win/loss/draw increment per
	// participant and archives the match record.
	RecordMatch(result models.MatchResult) error
	// Leaderboard returns entries ranked by wins, then fewest losses.
	Leaderboard(limit int) ([]models.LeaderboardEntry, error)
	// PlayerRecord returns one player's totals.
	PlayerRecord(username string) (models.LeaderboardEntry, error)
	Close() error
}

// 错误定义
var (
	ErrRecordNotFound = fmt.Errorf("record not found")
)
