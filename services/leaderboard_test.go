package services

import (
	"testing"
	"time"

	"campus-voice-server/models"
	"gorm.io/gorm"
)

func response(name string, score int, submittedAt time.Time) models.QuizResponse {
	return models.QuizResponse{
		Model:       gorm.Model{CreatedAt: submittedAt},
		StudentName: name,
		Score:       score,
	}
}

func TestRankResponsesTieBreakByEarlierSubmission(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	responses := []models.QuizResponse{
		response("A", 8, day.Add(10*time.Hour)),
		response("B", 8, day.Add(9*time.Hour)),
		response("C", 5, day.Add(9*time.Hour+30*time.Minute)),
	}

	ranked := RankResponses(responses)
	if len(ranked) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(ranked))
	}

	want := []struct {
		rank int
		name string
	}{
		{1, "B"}, // tie on score, earlier submission wins
		{2, "A"},
		{3, "C"},
	}
	for i, w := range want {
		if ranked[i].Rank != w.rank || ranked[i].StudentName != w.name {
			t.Errorf("position %d: got rank=%d name=%s, want rank=%d name=%s",
				i, ranked[i].Rank, ranked[i].StudentName, w.rank, w.name)
		}
	}
}

func TestRankResponsesDoesNotMutateInput(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	responses := []models.QuizResponse{
		response("low", 1, day),
		response("high", 9, day),
	}

	RankResponses(responses)
	if responses[0].StudentName != "low" {
		t.Error("input slice order must not change")
	}
}

func TestRankResponsesEmpty(t *testing.T) {
	if got := RankResponses(nil); len(got) != 0 {
		t.Errorf("expected empty ranking, got %d entries", len(got))
	}
}
