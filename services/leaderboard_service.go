// services/leaderboard_service.go
package services

import (
	"github.com/wfunc/rpsls/logger"
	"github.com/wfunc/rpsls/models"
	"github.com/wfunc/rpsls/persistence"
)

// LeaderboardService is the collaborator the match core notifies at game
// over. Store failures are logged and swallowed; the state machine never
// sees them.
type LeaderboardService struct {
	store persistence.Store
}

func NewLeaderboardService(store persistence.Store) *LeaderboardService {
	return &LeaderboardService{store: store}
}

// ReportMatch implements room.ResultReporter.
func (s *LeaderboardService) ReportMatch(result models.MatchResult) {
	if err := s.store.RecordMatch(result); err != nil {
		logger.Log.Errorf("Failed to record match %s: %v", result.RoomID, err)
		return
	}
	logger.Log.Infof("Recorded match %s, winner %s", result.RoomID, result.Winner)
}

// Leaderboard 获取排行榜
func (s *LeaderboardService) Leaderboard(limit int) ([]models.LeaderboardEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	return s.store.Leaderboard(limit)
}

// PlayerRecord returns one player's cumulative totals.
func (s *LeaderboardService) PlayerRecord(username string) (models.LeaderboardEntry, error) {
	return s.store.PlayerRecord(username)
}
