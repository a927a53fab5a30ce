package scoring

import (
	"time"

	"github.com/heartlink/heartlink/internal/database"
)

// Compatibility is the pairwise-detail view of a score: per-factor
// sub-scores plus boolean match flags, not just the aggregate.
type Compatibility struct {
	OverallScore int                  `json:"overall_score"`
	Details      CompatibilityDetails `json:"details"`
}

type CompatibilityDetails struct {
	Interests    InterestDetail  `json:"interests"`
	Location     FactorDetail    `json:"location"`
	Age          AgeDetail       `json:"age"`
	Relationship FactorDetail    `json:"relationship"`
	Orientation  FactorDetail    `json:"orientation"`
	Lifestyle    LifestyleDetail `json:"lifestyle"`
}

type InterestDetail struct {
	Score  int      `json:"score"`
	Common []string `json:"common"`
	Total  int      `json:"total"`
}

type FactorDetail struct {
	Score int  `json:"score"`
	Match bool `json:"match"`
}

type AgeDetail struct {
	Score      int  `json:"score"`
	Compatible bool `json:"compatible"`
	Age        int  `json:"age,omitempty"`
}

type LifestyleDetail struct {
	Score   int  `json:"score"`
	Smoking bool `json:"smoking"`
	Alcohol bool `json:"alcohol"`
}

// DetailedCompatibility compares two specific profiles head to head
// using the pairwise-detail weights.
func DetailedCompatibility(viewer, candidate *database.UserProfile, now time.Time) Compatibility {
	var c Compatibility
	var total float64

	if common := MutualInterests(viewer, candidate); len(common) > 0 {
		longest := len(viewer.Interests)
		if len(candidate.Interests) > longest {
			longest = len(candidate.Interests)
		}
		interestScore := float64(len(common)) / float64(longest) * DetailWeights.Interests
		total += interestScore
		c.Details.Interests = InterestDetail{
			Score:  roundScore(interestScore),
			Common: common,
			Total:  len(common),
		}
	}

	if LocationsMatch(viewer.Location, candidate.Location) {
		total += DetailWeights.Location
		c.Details.Location = FactorDetail{Score: roundScore(DetailWeights.Location), Match: true}
	}

	if age, ok := Age(candidate.DateOfBirth, now); ok && age > 0 {
		if viewer.AgeRangeOrDefault().Contains(age) {
			total += DetailWeights.Age
			c.Details.Age = AgeDetail{Score: roundScore(DetailWeights.Age), Compatible: true, Age: age}
		} else {
			c.Details.Age = AgeDetail{Age: age}
		}
	}

	if attributesMatch(viewer.Relationship, candidate.Relationship) {
		total += DetailWeights.Relationship
		c.Details.Relationship = FactorDetail{Score: roundScore(DetailWeights.Relationship), Match: true}
	}

	if attributesMatch(viewer.Orientation, candidate.Orientation) {
		total += DetailWeights.Orientation
		c.Details.Orientation = FactorDetail{Score: roundScore(DetailWeights.Orientation), Match: true}
	}

	var lifestyle float64
	if attributesMatch(viewer.Smoking, candidate.Smoking) {
		lifestyle += DetailWeights.LifestyleEach
		c.Details.Lifestyle.Smoking = true
	}
	if attributesMatch(viewer.Alcohol, candidate.Alcohol) {
		lifestyle += DetailWeights.LifestyleEach
		c.Details.Lifestyle.Alcohol = true
	}
	total += lifestyle
	c.Details.Lifestyle.Score = roundScore(lifestyle)

	c.OverallScore = roundScore(total)
	if c.OverallScore > MaxScore {
		c.OverallScore = MaxScore
	}
	return c
}

// Bonus factor weights for the detailed-match listing.
const (
	bonusInterests = 20
	bonusLocation  = 15
	bonusEducation = 10
	bonusReligion  = 10
	bonusPolitics  = 5
)

// BonusCompatibility is the coarse additive score shown on the detailed
// match listing: flat bonuses for any shared interest and equal
// attributes, capped at MaxScore.
func BonusCompatibility(viewer, candidate *database.UserProfile) int {
	score := 0

	if len(MutualInterests(viewer, candidate)) > 0 {
		score += bonusInterests
	}
	if attributesMatch(viewer.Location, candidate.Location) {
		score += bonusLocation
	}
	if attributesMatch(viewer.Education, candidate.Education) {
		score += bonusEducation
	}
	if attributesMatch(viewer.Religion, candidate.Religion) {
		score += bonusReligion
	}
	if attributesMatch(viewer.Politics, candidate.Politics) {
		score += bonusPolitics
	}

	if score > MaxScore {
		score = MaxScore
	}
	return score
}
