package services

import (
	"math"
	"sort"
	"time"

	"campus-voice-server/models"
)

// The aggregation helpers below are pure: they take a snapshot of concern rows
// already loaded from the database plus a clock instant, and return derived
// numbers. Handlers do one select and feed the result here, so every list view
// shares the same arithmetic.

type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

type ConcernStats struct {
	Total              int             `json:"total"`
	StatusCounts       map[string]int  `json:"statusCounts"`
	CategoryCounts     []CategoryCount `json:"categoryCounts"`
	RecentCount        int             `json:"recentCount"`    // created in the trailing 24h
	ResolutionRate     int             `json:"resolutionRate"` // rounded percentage
	AvgResolutionHours float64         `json:"avgResolutionHours"`
}

// StatusCounts partitions the snapshot by status. Every configured status is
// present in the result, with zero for statuses the snapshot lacks, so charts
// can render empty slices.
func StatusCounts(snapshot []models.Concern) map[string]int {
	counts := make(map[string]int, len(models.ConcernStatuses))
	for _, s := range models.ConcernStatuses {
		counts[s] = 0
	}
	for _, c := range snapshot {
		counts[c.Status]++
	}
	return counts
}

// CategoryCounts partitions the snapshot by category, sorted by descending
// count with ties broken alphabetically.
func CategoryCounts(snapshot []models.Concern) []CategoryCount {
	byLabel := map[string]int{}
	for _, c := range snapshot {
		byLabel[c.Category]++
	}
	out := make([]CategoryCount, 0, len(byLabel))
	for label, n := range byLabel {
		out = append(out, CategoryCount{Category: label, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// RecentCount counts concerns created within the 24 hours before now.
func RecentCount(snapshot []models.Concern, now time.Time) int {
	cutoff := now.Add(-24 * time.Hour)
	n := 0
	for _, c := range snapshot {
		if c.CreatedAt.After(cutoff) {
			n++
		}
	}
	return n
}

// ResolutionRate returns solved/total as a rounded percentage, 0 for an empty
// snapshot.
func ResolutionRate(snapshot []models.Concern) int {
	if len(snapshot) == 0 {
		return 0
	}
	solved := 0
	for _, c := range snapshot {
		if c.Status == models.ConcernStatusSolved {
			solved++
		}
	}
	return int(math.Round(float64(solved) / float64(len(snapshot)) * 100))
}

// AverageResolutionHours averages resolved_at-created_at over concerns that
// have a recorded resolution time. Unresolved concerns are excluded from the
// mean, not counted as zero.
func AverageResolutionHours(snapshot []models.Concern) float64 {
	var total time.Duration
	n := 0
	for _, c := range snapshot {
		if c.ResolvedAt != nil {
			total += c.ResolvedAt.Sub(c.CreatedAt)
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return (total / time.Duration(n)).Hours()
}

// BuildConcernStats runs the full derivation for a snapshot.
func BuildConcernStats(snapshot []models.Concern, now time.Time) ConcernStats {
	return ConcernStats{
		Total:              len(snapshot),
		StatusCounts:       StatusCounts(snapshot),
		CategoryCounts:     CategoryCounts(snapshot),
		RecentCount:        RecentCount(snapshot, now),
		ResolutionRate:     ResolutionRate(snapshot),
		AvgResolutionHours: AverageResolutionHours(snapshot),
	}
}
