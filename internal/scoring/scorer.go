// Package scoring implements the compatibility heuristic used to rank
// the candidate feed and to annotate confirmed matches. Everything in
// this package is a pure function of two profile snapshots; each factor
// only contributes when both profiles have the attribute populated.
package scoring

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/heartlink/heartlink/internal/database"
)

// Weights defines the contribution of each compatibility factor.
// The sum of all factors is 100.
type Weights struct {
	Interests     float64
	Location      float64
	Relationship  float64
	Age           float64
	Orientation   float64
	LifestyleEach float64 // per matching lifestyle attribute (smoking, alcohol)
}

// FeedWeights ranks the swipeable-candidate feed.
var FeedWeights = Weights{
	Interests:     40,
	Location:      25,
	Relationship:  15,
	Age:           10,
	Orientation:   7,
	LifestyleEach: 1.5,
}

// DetailWeights is the pairwise-detail granularity used when two
// specific profiles are compared head to head.
var DetailWeights = Weights{
	Interests:     40,
	Location:      25,
	Relationship:  20,
	Age:           15,
	Orientation:   10,
	LifestyleEach: 2.5,
}

// Score band thresholds.
const (
	MaxScore             = 100
	MinQualifyingScore   = 20
	HighMatchThreshold   = 70
	MediumMatchThreshold = 40
)

const maxReasonInterests = 3

// Breakdown holds the per-factor sub-scores behind a total.
type Breakdown struct {
	Total        int      `json:"total"`
	Interests    int      `json:"interests"`
	Location     int      `json:"location"`
	Relationship int      `json:"relationship"`
	Orientation  int      `json:"orientation"`
	Lifestyle    int      `json:"lifestyle"`
	Age          int      `json:"age"`
	Reasons      []string `json:"reasons"`
}

// Score computes the weighted compatibility of candidate as seen by
// viewer. The result is bounded to [0, MaxScore].
func Score(viewer, candidate *database.UserProfile, now time.Time, w Weights) Breakdown {
	var b Breakdown
	var total float64

	// Shared interests, proportional to the larger interest list.
	if common := MutualInterests(viewer, candidate); len(common) > 0 {
		longest := len(viewer.Interests)
		if len(candidate.Interests) > longest {
			longest = len(candidate.Interests)
		}
		interestScore := float64(len(common)) / float64(longest) * w.Interests
		total += interestScore
		b.Interests = roundScore(interestScore)
		b.Reasons = append(b.Reasons, interestReason(common))
	}

	if LocationsMatch(viewer.Location, candidate.Location) {
		total += w.Location
		b.Location = roundScore(w.Location)
		b.Reasons = append(b.Reasons, "Same location")
	}

	if age, ok := Age(candidate.DateOfBirth, now); ok && age > 0 {
		if viewer.AgeRangeOrDefault().Contains(age) {
			total += w.Age
			b.Age = roundScore(w.Age)
			b.Reasons = append(b.Reasons, fmt.Sprintf("Age compatible (%d)", age))
		}
	}

	if attributesMatch(viewer.Relationship, candidate.Relationship) {
		total += w.Relationship
		b.Relationship = roundScore(w.Relationship)
		b.Reasons = append(b.Reasons, "Same relationship goals")
	}

	if attributesMatch(viewer.Orientation, candidate.Orientation) {
		total += w.Orientation
		b.Orientation = roundScore(w.Orientation)
		b.Reasons = append(b.Reasons, "Compatible orientation")
	}

	var lifestyle float64
	if attributesMatch(viewer.Smoking, candidate.Smoking) {
		lifestyle += w.LifestyleEach
		b.Reasons = append(b.Reasons, "Same smoking preference")
	}
	if attributesMatch(viewer.Alcohol, candidate.Alcohol) {
		lifestyle += w.LifestyleEach
		b.Reasons = append(b.Reasons, "Same drinking preference")
	}
	total += lifestyle
	b.Lifestyle = roundScore(lifestyle)

	b.Total = roundScore(total)
	if b.Total > MaxScore {
		b.Total = MaxScore
	}
	return b
}

// MutualInterests returns the interests present in both profiles,
// preserving the viewer's ordering.
func MutualInterests(viewer, candidate *database.UserProfile) []string {
	if len(viewer.Interests) == 0 || len(candidate.Interests) == 0 {
		return nil
	}

	theirs := make(map[string]struct{}, len(candidate.Interests))
	for _, interest := range candidate.Interests {
		theirs[interest] = struct{}{}
	}

	var common []string
	for _, interest := range viewer.Interests {
		if _, ok := theirs[interest]; ok {
			common = append(common, interest)
		}
	}
	return common
}

// LocationsMatch reports whether either location string contains the
// other, case-insensitively. Both must be non-empty.
func LocationsMatch(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	la, lb := strings.ToLower(a), strings.ToLower(b)
	return strings.Contains(la, lb) || strings.Contains(lb, la)
}

// Age computes a person's age at now. The year difference is reduced by
// one when now precedes this year's birthday anniversary. A nil birth
// date yields no age.
func Age(dateOfBirth *time.Time, now time.Time) (int, bool) {
	if dateOfBirth == nil {
		return 0, false
	}

	dob := *dateOfBirth
	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	return age, true
}

// MatchLevel buckets a score into the reporting bands.
func MatchLevel(score int) string {
	switch {
	case score >= HighMatchThreshold:
		return "High"
	case score >= MediumMatchThreshold:
		return "Medium"
	case score >= MinQualifyingScore:
		return "Low"
	default:
		return "Poor"
	}
}

func attributesMatch(a, b string) bool {
	return a != "" && b != "" && strings.EqualFold(a, b)
}

func interestReason(common []string) string {
	plural := ""
	if len(common) > 1 {
		plural = "s"
	}
	shown := common
	if len(shown) > maxReasonInterests {
		shown = shown[:maxReasonInterests]
	}
	return fmt.Sprintf("%d common interest%s: %s", len(common), plural, strings.Join(shown, ", "))
}

func roundScore(v float64) int {
	return int(math.Round(v))
}
