package scoring

import (
	"sort"
	"time"

	"github.com/heartlink/heartlink/internal/database"
)

// MaxRankedMatches bounds the ranked feed to the strongest candidates.
const MaxRankedMatches = 50

// ScoredCandidate pairs a profile with its feed-ranking score.
type ScoredCandidate struct {
	Profile   *database.UserProfile `json:"profile"`
	Score     int                   `json:"match_score"`
	Reasons   []string              `json:"match_reasons"`
	Breakdown Breakdown             `json:"detailed_scoring"`
	Level     string                `json:"match_level"`
}

// RankResult aggregates a ranked candidate pool.
type RankResult struct {
	Matches       []ScoredCandidate `json:"matches"`
	TotalMatches  int               `json:"total_matches"`
	HighMatches   int               `json:"high_matches"`
	MediumMatches int               `json:"medium_matches"`
	LowMatches    int               `json:"low_matches"`
	AverageScore  int               `json:"average_score"`
	BestMatch     *ScoredCandidate  `json:"best_match,omitempty"`
}

// Rank scores every candidate against the viewer with the feed weights,
// drops anything under MinQualifyingScore, sorts the rest descending and
// truncates to MaxRankedMatches. Ties break on profile id so pagination
// of equal scores stays stable.
func Rank(viewer *database.UserProfile, candidates []*database.UserProfile, now time.Time) RankResult {
	scored := make([]ScoredCandidate, 0, len(candidates))
	for _, candidate := range candidates {
		b := Score(viewer, candidate, now, FeedWeights)
		if b.Total < MinQualifyingScore {
			continue
		}
		scored = append(scored, ScoredCandidate{
			Profile:   candidate,
			Score:     b.Total,
			Reasons:   b.Reasons,
			Breakdown: b,
			Level:     MatchLevel(b.Total),
		})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Profile.ID < scored[j].Profile.ID
	})

	if len(scored) > MaxRankedMatches {
		scored = scored[:MaxRankedMatches]
	}

	result := RankResult{
		Matches:      scored,
		TotalMatches: len(scored),
	}

	var sum int
	for i := range scored {
		sum += scored[i].Score
		switch scored[i].Level {
		case "High":
			result.HighMatches++
		case "Medium":
			result.MediumMatches++
		case "Low":
			result.LowMatches++
		}
	}

	if len(scored) > 0 {
		result.AverageScore = roundScore(float64(sum) / float64(len(scored)))
		result.BestMatch = &scored[0]
	}

	return result
}
