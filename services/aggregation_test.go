package services

import (
	"testing"
	"time"

	"campus-voice-server/models"
	"gorm.io/gorm"
)

func concernAt(status, category string, createdAt time.Time) models.Concern {
	return models.Concern{
		Model:    gorm.Model{CreatedAt: createdAt},
		Status:   status,
		Category: category,
	}
}

func TestStatusCountsZeroFilledAndTotals(t *testing.T) {
	now := time.Now()
	snapshot := []models.Concern{
		concernAt(models.ConcernStatusNew, "Academic", now),
		concernAt(models.ConcernStatusNew, "Technical", now),
		concernAt(models.ConcernStatusSolved, "Academic", now),
	}

	counts := StatusCounts(snapshot)

	for _, s := range models.ConcernStatuses {
		if _, ok := counts[s]; !ok {
			t.Errorf("status %q missing from counts", s)
		}
	}
	if counts[models.ConcernStatusUnderReview] != 0 || counts[models.ConcernStatusIgnored] != 0 {
		t.Errorf("absent statuses should count 0, got %v", counts)
	}

	sum := 0
	for _, n := range counts {
		sum += n
	}
	if sum != len(snapshot) {
		t.Errorf("sum of status counts = %d, want %d", sum, len(snapshot))
	}
}

func TestStatusCountsEmptySnapshot(t *testing.T) {
	counts := StatusCounts(nil)
	if len(counts) != len(models.ConcernStatuses) {
		t.Fatalf("expected %d keys, got %d", len(models.ConcernStatuses), len(counts))
	}
	for s, n := range counts {
		if n != 0 {
			t.Errorf("empty snapshot should give 0 for %q, got %d", s, n)
		}
	}
}

func TestCategoryCountsOrdering(t *testing.T) {
	now := time.Now()
	snapshot := []models.Concern{
		concernAt(models.ConcernStatusNew, "Technical", now),
		concernAt(models.ConcernStatusNew, "Technical", now),
		concernAt(models.ConcernStatusNew, "Academic", now),
		concernAt(models.ConcernStatusNew, "General", now),
		concernAt(models.ConcernStatusNew, "Academic", now),
		concernAt(models.ConcernStatusNew, "Technical", now),
	}

	counts := CategoryCounts(snapshot)
	want := []CategoryCount{
		{Category: "Technical", Count: 3},
		{Category: "Academic", Count: 2},
		{Category: "General", Count: 1},
	}
	if len(counts) != len(want) {
		t.Fatalf("expected %d categories, got %d", len(want), len(counts))
	}
	for i := range want {
		if counts[i] != want[i] {
			t.Errorf("position %d: got %+v, want %+v", i, counts[i], want[i])
		}
	}
}

func TestRecentCountWindow(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	snapshot := []models.Concern{
		concernAt(models.ConcernStatusNew, "General", now.Add(-1*time.Hour)),
		concernAt(models.ConcernStatusNew, "General", now.Add(-23*time.Hour)),
		concernAt(models.ConcernStatusNew, "General", now.Add(-25*time.Hour)),
		concernAt(models.ConcernStatusNew, "General", now.Add(-30*24*time.Hour)),
	}
	if got := RecentCount(snapshot, now); got != 2 {
		t.Errorf("RecentCount = %d, want 2", got)
	}
}

func TestResolutionRate(t *testing.T) {
	if got := ResolutionRate(nil); got != 0 {
		t.Errorf("empty snapshot rate = %d, want 0", got)
	}

	now := time.Now()
	snapshot := []models.Concern{
		concernAt(models.ConcernStatusSolved, "General", now),
		concernAt(models.ConcernStatusNew, "General", now),
		concernAt(models.ConcernStatusIgnored, "General", now),
	}
	// 1/3 rounds to 33
	if got := ResolutionRate(snapshot); got != 33 {
		t.Errorf("rate = %d, want 33", got)
	}

	snapshot = append(snapshot, concernAt(models.ConcernStatusSolved, "General", now))
	// 2/4 = 50
	if got := ResolutionRate(snapshot); got != 50 {
		t.Errorf("rate = %d, want 50", got)
	}
}

func TestAverageResolutionHoursExcludesUnresolved(t *testing.T) {
	created := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	resolvedFast := concernAt(models.ConcernStatusSolved, "General", created)
	fastAt := created.Add(2 * time.Hour)
	resolvedFast.ResolvedAt = &fastAt

	resolvedSlow := concernAt(models.ConcernStatusSolved, "General", created)
	slowAt := created.Add(10 * time.Hour)
	resolvedSlow.ResolvedAt = &slowAt

	unresolved := concernAt(models.ConcernStatusNew, "General", created)

	avg := AverageResolutionHours([]models.Concern{resolvedFast, resolvedSlow, unresolved})
	if avg != 6 {
		t.Errorf("average = %v hours, want 6 (unresolved must be excluded, not zeroed)", avg)
	}

	if got := AverageResolutionHours([]models.Concern{unresolved}); got != 0 {
		t.Errorf("no resolved concerns should give 0, got %v", got)
	}
}

func TestBuildConcernStats(t *testing.T) {
	now := time.Now()
	snapshot := []models.Concern{
		concernAt(models.ConcernStatusNew, "Academic", now.Add(-time.Hour)),
		concernAt(models.ConcernStatusSolved, "Technical", now.Add(-48*time.Hour)),
	}

	stats := BuildConcernStats(snapshot, now)
	if stats.Total != 2 {
		t.Errorf("Total = %d, want 2", stats.Total)
	}
	if stats.RecentCount != 1 {
		t.Errorf("RecentCount = %d, want 1", stats.RecentCount)
	}
	if stats.ResolutionRate != 50 {
		t.Errorf("ResolutionRate = %d, want 50", stats.ResolutionRate)
	}
}
