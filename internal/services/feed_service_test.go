package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/heartlink/heartlink/internal/database"
)

func TestIDSet(t *testing.T) {
	set := NewIDSet("a", "b")
	set.Add("c", "")

	assert.Equal(t, 3, set.Len())
	assert.True(t, set.Contains("a"))
	assert.False(t, set.Contains(""))
	assert.False(t, set.Contains("d"))

	set.Union(NewIDSet("b", "d"))
	assert.Equal(t, []string{"a", "b", "c", "d"}, set.Slice())
}

func TestGenderSought(t *testing.T) {
	tests := []struct {
		name       string
		lookingFor string
		gender     string
		expected   bool
	}{
		{"No preference", "", "female", true},
		{"Everyone", "everyone", "male", true},
		{"Everyone case-insensitive", "Everyone", "nonbinary", true},
		{"Exact", "female", "female", true},
		{"Case-insensitive", "Female", "female", true},
		{"Mismatch", "female", "male", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, genderSought(tt.lookingFor, tt.gender))
		})
	}
}

func TestInRankedPool(t *testing.T) {
	now := time.Date(2026, time.June, 15, 12, 0, 0, 0, time.UTC)
	dob30 := time.Date(1996, time.January, 10, 0, 0, 0, 0, time.UTC)
	dob45 := time.Date(1981, time.January, 10, 0, 0, 0, 0, time.UTC)

	viewer := &UserProfile{
		ID:                "viewer",
		LookingFor:        "female",
		PreferredAgeRange: &database.AgeRange{Min: 25, Max: 35},
	}

	tests := []struct {
		name      string
		candidate *UserProfile
		expected  bool
	}{
		{"Matches gender and age", &UserProfile{Gender: "female", DateOfBirth: &dob30}, true},
		{"Wrong gender", &UserProfile{Gender: "male", DateOfBirth: &dob30}, false},
		{"Too old", &UserProfile{Gender: "female", DateOfBirth: &dob45}, false},
		{"No birth date", &UserProfile{Gender: "female"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, inRankedPool(viewer, tt.candidate, now))
		})
	}
}

func TestInRankedPool_DefaultRange(t *testing.T) {
	now := time.Date(2026, time.June, 15, 12, 0, 0, 0, time.UTC)
	dob70 := time.Date(1956, time.January, 10, 0, 0, 0, 0, time.UTC)

	viewer := &UserProfile{ID: "viewer"}
	candidate := &UserProfile{Gender: "female", DateOfBirth: &dob70}

	// No stored preference falls back to the 18..100 default.
	assert.True(t, inRankedPool(viewer, candidate, now))
}
