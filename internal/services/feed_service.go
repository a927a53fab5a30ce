package services

import (
	"context"
	"strings"
	"time"

	"github.com/heartlink/heartlink/internal/database"
	apperrors "github.com/heartlink/heartlink/internal/errors"
	"github.com/heartlink/heartlink/internal/scoring"
	"github.com/heartlink/heartlink/internal/telemetry"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Candidate is a feed entry: the profile plus display fields derived
// from it.
type Candidate struct {
	Profile  *UserProfile `json:"profile"`
	FullName string       `json:"full_name"`
	Age      *int         `json:"age,omitempty"`
}

// CandidatePage is one page of the candidate feed.
type CandidatePage struct {
	Items      []*Candidate `json:"items"`
	Page       int          `json:"page"`
	PageSize   int          `json:"page_size"`
	TotalCount int          `json:"total_count"`
	HasMore    bool         `json:"has_more"`
}

// FeedService selects who a user sees next. Exclusion is the union of
// self, everyone already swiped on, friends, and unanswered inbound
// likers; the last group reappears once the user answers them.
type FeedService struct {
	db    *database.DB
	users *UserService
}

func NewFeedService(db *database.DB, users *UserService) *FeedService {
	return &FeedService{db: db, users: users}
}

// Candidates returns one page of the user's feed. An exhausted feed is
// an empty page, never an error.
func (s *FeedService) Candidates(ctx context.Context, userID string, page, pageSize int) (*CandidatePage, error) {
	logger := telemetry.LogFromContext(ctx).WithFields(map[string]interface{}{
		"user_id":   userID,
		"page":      page,
		"operation": "feed_candidates",
	})

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	excluded, err := s.exclusionSet(ctx, userID)
	if err != nil {
		logger.WithError(err).Error("Failed to build feed exclusion set")
		return nil, err
	}

	excludedIDs := excluded.Slice()
	total, err := s.users.CountExcluding(ctx, excludedIDs)
	if err != nil {
		return nil, err
	}

	offset := (page - 1) * pageSize
	profiles, err := s.users.QueryExcluding(ctx, excludedIDs, offset, pageSize)
	if err != nil {
		return nil, err
	}

	items := make([]*Candidate, 0, len(profiles))
	now := time.Now()
	for _, profile := range profiles {
		candidate := &Candidate{Profile: profile, FullName: profile.FullName()}
		if age, ok := scoring.Age(profile.DateOfBirth, now); ok {
			candidate.Age = &age
		}
		items = append(items, candidate)
	}

	return &CandidatePage{
		Items:      items,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: total,
		HasMore:    offset+len(items) < total,
	}, nil
}

// RankedMatches scores the whole eligible pool against the viewer's
// preferences and returns the ranked result.
func (s *FeedService) RankedMatches(ctx context.Context, userID string) (*scoring.RankResult, error) {
	logger := telemetry.LogFromContext(ctx).WithFields(map[string]interface{}{
		"user_id":   userID,
		"operation": "ranked_matches",
	})

	viewer, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	profiles, err := s.users.AllProfilesExcept(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	pool := make([]*UserProfile, 0, len(profiles))
	for _, candidate := range profiles {
		if inRankedPool(viewer, candidate, now) {
			pool = append(pool, candidate)
		}
	}

	logger.WithFields(map[string]interface{}{
		"pool_size": len(pool),
	}).Info("Ranking candidate pool")

	result := scoring.Rank(viewer, pool, now)
	return &result, nil
}

// exclusionSet is self plus everyone already swiped on, friends, and
// unanswered inbound likers.
func (s *FeedService) exclusionSet(ctx context.Context, userID string) (IDSet, error) {
	excluded := NewIDSet(userID)

	swiped, err := s.swipedIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	friends, err := s.friendIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	likers, err := s.unansweredLikerIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	return excluded.Union(swiped).Union(friends).Union(likers), nil
}

func (s *FeedService) swipedIDs(ctx context.Context, userID string) (IDSet, error) {
	return s.idQuery(ctx, `SELECT swiped_id FROM swipes WHERE swiper_id = $1`, userID)
}

// unansweredLikerIDs are users whose inbound like is still pending.
// They stay out of the feed so the received surface owns them until the
// user answers.
func (s *FeedService) unansweredLikerIDs(ctx context.Context, userID string) (IDSet, error) {
	query := `
		SELECT s.swiper_id
		FROM swipes s
		WHERE s.swiped_id = $1 AND s.action = 'like'
		  AND NOT EXISTS (
			SELECT 1 FROM swipes b WHERE b.swiper_id = $1 AND b.swiped_id = s.swiper_id
		  )
	`
	return s.idQuery(ctx, query, userID)
}

func (s *FeedService) friendIDs(ctx context.Context, userID string) (IDSet, error) {
	query := `
		SELECT CASE WHEN requester_id = $1 THEN recipient_id ELSE requester_id END
		FROM friend_requests
		WHERE (requester_id = $1 OR recipient_id = $1) AND status = $2
	`
	return s.idQuery(ctx, query, userID, database.FriendRequestAccepted)
}

func (s *FeedService) idQuery(ctx context.Context, query string, args ...interface{}) (IDSet, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewDatabaseError("query exclusion ids", err)
	}
	defer rows.Close()

	set := NewIDSet()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, apperrors.NewDatabaseError("scan exclusion id", err)
		}
		set.Add(id)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewDatabaseError("iterate exclusion ids", err)
	}

	return set, nil
}

// inRankedPool applies the viewer's hard preferences: gender sought and
// preferred age window. Profiles without a birth date cannot satisfy an
// age window and stay out.
func inRankedPool(viewer, candidate *UserProfile, now time.Time) bool {
	if !genderSought(viewer.LookingFor, candidate.Gender) {
		return false
	}
	age, ok := scoring.Age(candidate.DateOfBirth, now)
	if !ok {
		return false
	}
	return viewer.AgeRangeOrDefault().Contains(age)
}

// genderSought reports whether a candidate's gender satisfies the
// viewer's lookingFor preference. An unset preference, or "everyone",
// accepts anyone.
func genderSought(lookingFor, gender string) bool {
	if lookingFor == "" || strings.EqualFold(lookingFor, "everyone") {
		return true
	}
	return strings.EqualFold(lookingFor, gender)
}
