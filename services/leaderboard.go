package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"campus-voice-server/models"
	"campus-voice-server/storage"
)

type RankedResponse struct {
	Rank        int       `json:"rank"`
	StudentName string    `json:"studentName"`
	Score       int       `json:"score"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// RankResponses orders quiz responses by score descending, breaking ties with
// the earlier submission, and assigns 1-based ranks. Pure; no store access.
func RankResponses(responses []models.QuizResponse) []RankedResponse {
	sorted := make([]models.QuizResponse, len(responses))
	copy(sorted, responses)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	ranked := make([]RankedResponse, len(sorted))
	for i, r := range sorted {
		ranked[i] = RankedResponse{
			Rank:        i + 1,
			StudentName: r.StudentName,
			Score:       r.Score,
			SubmittedAt: r.CreatedAt,
		}
	}
	return ranked
}

const leaderboardTTL = 60 * time.Second

var leaderboardCtx = context.Background()

func leaderboardKey(quizID uint) string {
	return fmt.Sprintf("leaderboard:%d", quizID)
}

// GetCachedLeaderboard returns the cached ranking for a quiz, or nil on miss.
func GetCachedLeaderboard(quizID uint) []RankedResponse {
	if storage.Redis == nil {
		return nil
	}
	raw, err := storage.Redis.Get(leaderboardCtx, leaderboardKey(quizID)).Result()
	if err != nil {
		return nil
	}
	var ranked []RankedResponse
	if err := json.Unmarshal([]byte(raw), &ranked); err != nil {
		return nil
	}
	return ranked
}

func CacheLeaderboard(quizID uint, ranked []RankedResponse) {
	if storage.Redis == nil {
		return
	}
	raw, err := json.Marshal(ranked)
	if err != nil {
		return
	}
	storage.Redis.Set(leaderboardCtx, leaderboardKey(quizID), string(raw), leaderboardTTL)
}

// InvalidateLeaderboard drops the cached ranking after a new response lands.
func InvalidateLeaderboard(quizID uint) {
	if storage.Redis == nil {
		return
	}
	storage.Redis.Del(leaderboardCtx, leaderboardKey(quizID))
}
