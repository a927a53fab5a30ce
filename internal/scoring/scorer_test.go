package scoring

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartlink/heartlink/internal/database"
)

var scoreNow = time.Date(2026, time.June, 15, 12, 0, 0, 0, time.UTC)

func birthDate(year, month, day int) *time.Time {
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestScore_SharedInterests(t *testing.T) {
	viewer := &database.UserProfile{Interests: database.Interests{"hiking", "art"}}
	candidate := &database.UserProfile{Interests: database.Interests{"hiking", "music"}}

	b := Score(viewer, candidate, scoreNow, FeedWeights)

	// 1 shared of max(2,2) at weight 40 -> 20.
	assert.Equal(t, 20, b.Interests)
	assert.Equal(t, 20, b.Total)
	assert.Contains(t, b.Reasons, "1 common interest: hiking")
}

func TestScore_InterestReasonListsAtMostThree(t *testing.T) {
	shared := database.Interests{"hiking", "art", "music", "cooking"}
	viewer := &database.UserProfile{Interests: shared}
	candidate := &database.UserProfile{Interests: shared}

	b := Score(viewer, candidate, scoreNow, FeedWeights)

	assert.Equal(t, 40, b.Interests)
	assert.Contains(t, b.Reasons, "4 common interests: hiking, art, music")
}

func TestScore_LocationSubstring(t *testing.T) {
	viewer := &database.UserProfile{Location: "Brooklyn, NY"}
	candidate := &database.UserProfile{Location: "brooklyn"}

	b := Score(viewer, candidate, scoreNow, FeedWeights)

	assert.Equal(t, 25, b.Location)
	assert.Equal(t, 25, b.Total)
	assert.Contains(t, b.Reasons, "Same location")
}

func TestScore_AgeWithinPreferredRange(t *testing.T) {
	viewer := &database.UserProfile{PreferredAgeRange: &database.AgeRange{Min: 25, Max: 35}}
	candidate := &database.UserProfile{DateOfBirth: birthDate(1996, 3, 1)} // 30 at scoreNow

	b := Score(viewer, candidate, scoreNow, FeedWeights)

	assert.Equal(t, 10, b.Age)
	assert.Contains(t, b.Reasons, "Age compatible (30)")
}

func TestScore_AgeOutsideRangeContributesNothing(t *testing.T) {
	viewer := &database.UserProfile{PreferredAgeRange: &database.AgeRange{Min: 25, Max: 35}}
	candidate := &database.UserProfile{DateOfBirth: birthDate(2002, 3, 1)} // 24

	b := Score(viewer, candidate, scoreNow, FeedWeights)

	assert.Equal(t, 0, b.Age)
	assert.Equal(t, 0, b.Total)
}

func TestScore_LifestyleAndEnums(t *testing.T) {
	viewer := &database.UserProfile{
		Relationship: "Long-term",
		Orientation:  "Straight",
		Smoking:      "never",
		Alcohol:      "Socially",
	}
	candidate := &database.UserProfile{
		Relationship: "long-term",
		Orientation:  "straight",
		Smoking:      "Never",
		Alcohol:      "socially",
	}

	b := Score(viewer, candidate, scoreNow, FeedWeights)

	assert.Equal(t, 15, b.Relationship)
	assert.Equal(t, 7, b.Orientation)
	assert.Equal(t, 3, b.Lifestyle)
	assert.Equal(t, 25, b.Total)
}

func TestScore_MissingAttributesGateEachFactor(t *testing.T) {
	viewer := &database.UserProfile{
		Interests:    database.Interests{"hiking"},
		Location:     "Oslo",
		Relationship: "casual",
	}
	empty := &database.UserProfile{}

	b := Score(viewer, empty, scoreNow, FeedWeights)

	assert.Equal(t, 0, b.Total)
	assert.Empty(t, b.Reasons)
}

func TestScore_FullMatchIsExactly100(t *testing.T) {
	dob := birthDate(1996, 1, 1)
	viewer := &database.UserProfile{
		Interests:         database.Interests{"hiking", "art"},
		Location:          "Brooklyn",
		Relationship:      "long-term",
		Orientation:       "straight",
		Smoking:           "never",
		Alcohol:           "socially",
		DateOfBirth:       dob,
		PreferredAgeRange: &database.AgeRange{Min: 18, Max: 100},
	}
	candidate := &database.UserProfile{
		Interests:         viewer.Interests,
		Location:          viewer.Location,
		Relationship:      viewer.Relationship,
		Orientation:       viewer.Orientation,
		Smoking:           viewer.Smoking,
		Alcohol:           viewer.Alcohol,
		DateOfBirth:       dob,
		PreferredAgeRange: viewer.PreferredAgeRange,
	}

	b := Score(viewer, candidate, scoreNow, FeedWeights)
	assert.Equal(t, 100, b.Total)

	// Detail weights sum past 100 for identical profiles and must cap.
	c := DetailedCompatibility(viewer, candidate, scoreNow)
	assert.Equal(t, 100, c.OverallScore)
}

func TestScore_BoundsHoldForArbitraryPairs(t *testing.T) {
	profiles := []*database.UserProfile{
		{},
		{Interests: database.Interests{"a", "b", "c"}, Location: "x"},
		{
			Interests:         database.Interests{"a"},
			Location:          "X City",
			Relationship:      "casual",
			Orientation:       "bi",
			Smoking:           "often",
			Alcohol:           "never",
			DateOfBirth:       birthDate(1990, 12, 31),
			PreferredAgeRange: &database.AgeRange{Min: 20, Max: 40},
		},
	}

	for i, viewer := range profiles {
		for j, candidate := range profiles {
			for _, w := range []Weights{FeedWeights, DetailWeights} {
				b := Score(viewer, candidate, scoreNow, w)
				assert.GreaterOrEqual(t, b.Total, 0, "pair %d/%d", i, j)
				assert.LessOrEqual(t, b.Total, MaxScore, "pair %d/%d", i, j)
			}
		}
	}
}

func TestAge(t *testing.T) {
	tests := []struct {
		name     string
		dob      *time.Time
		expected int
		ok       bool
	}{
		{"Exactly on anniversary", birthDate(1996, 6, 15), 30, true},
		{"Day before anniversary", birthDate(1996, 6, 16), 29, true},
		{"Day after anniversary", birthDate(1996, 6, 14), 30, true},
		{"Earlier month", birthDate(1996, 2, 1), 30, true},
		{"Later month", birthDate(1996, 11, 1), 29, true},
		{"Nil birth date", nil, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			age, ok := Age(tt.dob, scoreNow)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, age)
		})
	}
}

func TestLocationsMatch(t *testing.T) {
	tests := []struct {
		a, b     string
		expected bool
	}{
		{"Brooklyn, NY", "brooklyn", true},
		{"brooklyn", "Brooklyn, NY", true},
		{"Oslo", "OSLO", true},
		{"Oslo", "Bergen", false},
		{"", "Oslo", false},
		{"Oslo", "", false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/%s", tt.a, tt.b), func(t *testing.T) {
			assert.Equal(t, tt.expected, LocationsMatch(tt.a, tt.b))
		})
	}
}

func TestMatchLevel(t *testing.T) {
	tests := []struct {
		score    int
		expected string
	}{
		{100, "High"},
		{70, "High"},
		{69, "Medium"},
		{40, "Medium"},
		{39, "Low"},
		{20, "Low"},
		{19, "Poor"},
		{0, "Poor"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, MatchLevel(tt.score), "score %d", tt.score)
	}
}

func TestMutualInterests_PreservesViewerOrder(t *testing.T) {
	viewer := &database.UserProfile{Interests: database.Interests{"art", "hiking", "music"}}
	candidate := &database.UserProfile{Interests: database.Interests{"music", "art"}}

	assert.Equal(t, []string{"art", "music"}, MutualInterests(viewer, candidate))
	assert.Nil(t, MutualInterests(viewer, &database.UserProfile{}))
}

func TestDetailedCompatibility_FlagsAndSubScores(t *testing.T) {
	viewer := &database.UserProfile{
		Interests:         database.Interests{"hiking", "art"},
		Location:          "Brooklyn, NY",
		Relationship:      "long-term",
		PreferredAgeRange: &database.AgeRange{Min: 25, Max: 35},
	}
	candidate := &database.UserProfile{
		Interests:    database.Interests{"hiking", "music"},
		Location:     "brooklyn",
		Relationship: "Long-term",
		Smoking:      "never",
		DateOfBirth:  birthDate(1996, 3, 1),
	}

	c := DetailedCompatibility(viewer, candidate, scoreNow)

	assert.Equal(t, InterestDetail{Score: 20, Common: []string{"hiking"}, Total: 1}, c.Details.Interests)
	assert.Equal(t, FactorDetail{Score: 25, Match: true}, c.Details.Location)
	assert.Equal(t, AgeDetail{Score: 15, Compatible: true, Age: 30}, c.Details.Age)
	assert.Equal(t, FactorDetail{Score: 20, Match: true}, c.Details.Relationship)
	assert.Equal(t, FactorDetail{}, c.Details.Orientation)
	assert.Equal(t, LifestyleDetail{}, c.Details.Lifestyle)
	assert.Equal(t, 80, c.OverallScore)
}

func TestBonusCompatibility(t *testing.T) {
	viewer := &database.UserProfile{
		Interests: database.Interests{"hiking"},
		Location:  "Oslo",
		Education: "Masters",
		Religion:  "none",
		Politics:  "center",
	}
	candidate := &database.UserProfile{
		Interests: database.Interests{"hiking", "art"},
		Location:  "oslo",
		Education: "masters",
		Religion:  "None",
		Politics:  "Center",
	}

	// 20 + 15 + 10 + 10 + 5
	assert.Equal(t, 60, BonusCompatibility(viewer, candidate))
	assert.Equal(t, 0, BonusCompatibility(&database.UserProfile{}, &database.UserProfile{}))
}

func TestRank(t *testing.T) {
	viewer := &database.UserProfile{
		Interests: database.Interests{"hiking", "art"},
		Location:  "Brooklyn",
	}

	perfect := &database.UserProfile{ID: "perfect", Interests: viewer.Interests, Location: "brooklyn"}
	decent := &database.UserProfile{ID: "decent", Location: "Brooklyn"}
	half := &database.UserProfile{ID: "half", Interests: database.Interests{"hiking", "music"}}
	poor := &database.UserProfile{ID: "poor", Interests: database.Interests{"chess"}}

	result := Rank(viewer, []*database.UserProfile{poor, half, decent, perfect}, scoreNow)

	require.Len(t, result.Matches, 3)
	assert.Equal(t, "perfect", result.Matches[0].Profile.ID) // 65
	assert.Equal(t, "decent", result.Matches[1].Profile.ID)  // 25
	assert.Equal(t, "half", result.Matches[2].Profile.ID)    // 20
	assert.Equal(t, 3, result.TotalMatches)
	assert.Equal(t, 0, result.HighMatches)
	assert.Equal(t, 1, result.MediumMatches)
	assert.Equal(t, 2, result.LowMatches)
	assert.Equal(t, 37, result.AverageScore) // round((65+25+20)/3)
	require.NotNil(t, result.BestMatch)
	assert.Equal(t, "perfect", result.BestMatch.Profile.ID)
}

func TestRank_EmptyPool(t *testing.T) {
	result := Rank(&database.UserProfile{}, nil, scoreNow)

	assert.Empty(t, result.Matches)
	assert.Equal(t, 0, result.TotalMatches)
	assert.Equal(t, 0, result.AverageScore)
	assert.Nil(t, result.BestMatch)
}

func TestRank_TruncatesToTop50(t *testing.T) {
	viewer := &database.UserProfile{Location: "Brooklyn"}

	candidates := make([]*database.UserProfile, 60)
	for i := range candidates {
		candidates[i] = &database.UserProfile{
			ID:       fmt.Sprintf("user-%03d", i),
			Location: "brooklyn",
		}
	}

	result := Rank(viewer, candidates, scoreNow)

	assert.Len(t, result.Matches, MaxRankedMatches)
	assert.Equal(t, MaxRankedMatches, result.TotalMatches)
	// Equal scores fall back to id order.
	assert.Equal(t, "user-000", result.Matches[0].Profile.ID)
}
