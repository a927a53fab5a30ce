package database

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SwipeAction is the direction of a swipe.
type SwipeAction string

const (
	ActionLike    SwipeAction = "like"
	ActionDislike SwipeAction = "dislike"
)

// Valid reports whether the action is one of the known values.
func (a SwipeAction) Valid() bool {
	return a == ActionLike || a == ActionDislike
}

// LikeType is the optional emotion attached to a like swipe.
type LikeType string

const (
	LikeTypeCrush     LikeType = "crush"
	LikeTypeIntrigued LikeType = "intrigued"
	LikeTypeCurious   LikeType = "curious"
	LikeTypeFun       LikeType = "fun"
)

// Valid reports whether the like type is one of the known values.
func (t LikeType) Valid() bool {
	switch t {
	case LikeTypeCrush, LikeTypeIntrigued, LikeTypeCurious, LikeTypeFun:
		return true
	}
	return false
}

// Roles assigned to user profiles. Admin profiles never appear in
// candidate feeds or match listings.
const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

const (
	DefaultMinAge = 18
	DefaultMaxAge = 100
)

// AgeRange is a viewer's preferred candidate age range. Two wire shapes
// are accepted: the structured `{"min":25,"max":35}` object and the
// legacy `"25-35"` string. Internally it is always a normalized pair.
type AgeRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// DefaultAgeRange returns the range used when a profile has no stored
// preference or the stored one cannot be parsed.
func DefaultAgeRange() AgeRange {
	return AgeRange{Min: DefaultMinAge, Max: DefaultMaxAge}
}

// ParseAgeRangeString parses the legacy "min-max" form. Missing or
// unparsable components fall back to the defaults.
func ParseAgeRangeString(s string) AgeRange {
	r := DefaultAgeRange()
	parts := strings.SplitN(strings.TrimSpace(s), "-", 2)
	if len(parts) > 0 {
		if min, err := strconv.Atoi(strings.TrimSpace(parts[0])); err == nil && min > 0 {
			r.Min = min
		}
	}
	if len(parts) > 1 {
		if max, err := strconv.Atoi(strings.TrimSpace(parts[1])); err == nil && max > 0 {
			r.Max = max
		}
	}
	return r
}

// Contains reports whether age falls inside the range, inclusive.
func (r AgeRange) Contains(age int) bool {
	return age >= r.Min && age <= r.Max
}

// UnmarshalJSON accepts both the structured and the legacy string shape.
func (r *AgeRange) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*r = ParseAgeRangeString(s)
		return nil
	}

	var obj struct {
		Min *int `json:"min"`
		Max *int `json:"max"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("age range must be a \"min-max\" string or a {min,max} object: %w", err)
	}

	*r = DefaultAgeRange()
	if obj.Min != nil && *obj.Min > 0 {
		r.Min = *obj.Min
	}
	if obj.Max != nil && *obj.Max > 0 {
		r.Max = *obj.Max
	}
	return nil
}

// Value stores the normalized object form.
func (r AgeRange) Value() (driver.Value, error) {
	return json.Marshal(struct {
		Min int `json:"min"`
		Max int `json:"max"`
	}{r.Min, r.Max})
}

// Scan reads either shape back from the JSONB column.
func (r *AgeRange) Scan(value interface{}) error {
	if value == nil {
		*r = DefaultAgeRange()
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return r.UnmarshalJSON(v)
	case string:
		return r.UnmarshalJSON([]byte(v))
	default:
		return fmt.Errorf("cannot scan %T into AgeRange", value)
	}
}

// Interests is an ordered list of interest tags stored as JSON.
// Order is preserved for display; matching ignores it.
type Interests []string

func (i Interests) Value() (driver.Value, error) {
	if i == nil {
		return json.Marshal([]string{})
	}
	return json.Marshal(i)
}

func (i *Interests) Scan(value interface{}) error {
	if value == nil {
		*i = nil
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, i)
	case string:
		return json.Unmarshal([]byte(v), i)
	default:
		return fmt.Errorf("cannot scan %T into Interests", value)
	}
}

// UserProfile is a user's profile record. The swipe/match core treats
// profiles as read-only input owned by the user directory.
type UserProfile struct {
	ID                string     `json:"id" db:"id"`
	Email             string     `json:"email" db:"email"`
	FirstName         string     `json:"first_name" db:"first_name"`
	LastName          string     `json:"last_name" db:"last_name"`
	DateOfBirth       *time.Time `json:"date_of_birth" db:"date_of_birth"`
	Gender            string     `json:"gender" db:"gender"`
	LookingFor        string     `json:"looking_for" db:"looking_for"`
	Bio               string     `json:"bio" db:"bio"`
	Location          string     `json:"location" db:"location"`
	ProfilePic        string     `json:"profile_pic" db:"profile_pic"`
	Interests         Interests  `json:"interests" db:"interests"`
	PreferredAgeRange *AgeRange  `json:"preferred_age_range" db:"preferred_age_range"`
	Relationship      string     `json:"relationship" db:"relationship"`
	Orientation       string     `json:"orientation" db:"orientation"`
	Smoking           string     `json:"smoking" db:"smoking"`
	Alcohol           string     `json:"alcohol" db:"alcohol"`
	Education         string     `json:"education" db:"education"`
	Religion          string     `json:"religion" db:"religion"`
	Politics          string     `json:"politics" db:"politics"`
	Occupation        string     `json:"occupation" db:"occupation"`
	Height            string     `json:"height" db:"height"`
	Role              string     `json:"role" db:"role"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at" db:"updated_at"`
}

// FullName joins first and last name with a single space.
func (u *UserProfile) FullName() string {
	return u.FirstName + " " + u.LastName
}

// AgeRangeOrDefault normalizes the optional stored preference.
func (u *UserProfile) AgeRangeOrDefault() AgeRange {
	if u.PreferredAgeRange == nil {
		return DefaultAgeRange()
	}
	return *u.PreferredAgeRange
}

// SwipeRecord is one user's unilateral action toward another. At most
// one record exists per ordered (swiper, swiped) pair; records are
// never mutated or deleted.
type SwipeRecord struct {
	ID        string      `json:"id" db:"id"`
	SwiperID  string      `json:"swiper_id" db:"swiper_id"`
	SwipedID  string      `json:"swiped_id" db:"swiped_id"`
	Action    SwipeAction `json:"action" db:"action"`
	LikeType  *LikeType   `json:"like_type,omitempty" db:"like_type"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
}

// MatchRecord is the derived, symmetric confirmed-interest relationship.
// The pair is stored in canonical order (UserAID < UserBID) so the
// unordered pair maps onto exactly one row.
type MatchRecord struct {
	ID              string    `json:"id" db:"id"`
	UserAID         string    `json:"user_a_id" db:"user_a_id"`
	UserBID         string    `json:"user_b_id" db:"user_b_id"`
	UserALikeType   *LikeType `json:"user_a_like_type,omitempty" db:"user_a_like_type"`
	UserBLikeType   *LikeType `json:"user_b_like_type,omitempty" db:"user_b_like_type"`
	IsMutualEmotion bool      `json:"is_mutual_emotion" db:"is_mutual_emotion"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// OtherUser returns the match counterpart of userID.
func (m *MatchRecord) OtherUser(userID string) string {
	if m.UserAID == userID {
		return m.UserBID
	}
	return m.UserAID
}

// LikeTypeFor returns the like type recorded for userID's side of the match.
func (m *MatchRecord) LikeTypeFor(userID string) *LikeType {
	if m.UserAID == userID {
		return m.UserALikeType
	}
	return m.UserBLikeType
}

// CanonicalPair orders two user ids lexicographically.
func CanonicalPair(a, b string) (low, high string) {
	if a < b {
		return a, b
	}
	return b, a
}

// FriendRequest statuses.
const (
	FriendRequestPending  = "pending"
	FriendRequestAccepted = "accepted"
	FriendRequestDeclined = "declined"
)

// FriendRequest tracks the friend-request workflow. Accepted requests
// define the friendship set used for feed exclusion.
type FriendRequest struct {
	ID          string    `json:"id" db:"id"`
	RequesterID string    `json:"requester_id" db:"requester_id"`
	RecipientID string    `json:"recipient_id" db:"recipient_id"`
	Status      string    `json:"status" db:"status"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Message is a direct message between two users.
type Message struct {
	ID         string    `json:"id" db:"id"`
	SenderID   string    `json:"sender_id" db:"sender_id"`
	ReceiverID string    `json:"receiver_id" db:"receiver_id"`
	Text       string    `json:"text" db:"text"`
	ImageURL   string    `json:"image_url,omitempty" db:"image_url"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
