package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/heartlink/heartlink/internal/database"
	apperrors "github.com/heartlink/heartlink/internal/errors"
	"github.com/heartlink/heartlink/internal/scoring"
	"github.com/heartlink/heartlink/internal/telemetry"
)

type MatchRecord = database.MatchRecord

// MatchSummary is a match as seen from one side: the record plus the
// other party's profile.
type MatchSummary struct {
	MatchID       string                `json:"match_id"`
	MatchedAt     time.Time             `json:"matched_at"`
	YourLikeType  *database.LikeType    `json:"your_like_type,omitempty"`
	TheirLikeType *database.LikeType    `json:"their_like_type,omitempty"`
	MutualEmotion bool                  `json:"mutual_emotion"`
	Profile       *UserProfile          `json:"profile"`
	Age           *int                  `json:"age,omitempty"`
}

// DetailedMatch layers the compatibility breakdown on a summary.
type DetailedMatch struct {
	MatchSummary
	Compatibility   scoring.Compatibility `json:"compatibility"`
	MutualInterests []string              `json:"mutual_interests"`
	BonusScore      int                   `json:"bonus_score"`
}

// MatchService owns the match store. Matches are immutable once created;
// the unique index on the canonical pair is the authority under races.
type MatchService struct {
	db    *database.DB
	users *UserService
}

func NewMatchService(db *database.DB, users *UserService) *MatchService {
	return &MatchService{db: db, users: users}
}

// CreateIfAbsent records a match for the unordered (userID, otherID)
// pair. When a concurrent caller wins the insert race the existing row
// is returned instead, so both callers observe the same single match.
func (s *MatchService) CreateIfAbsent(ctx context.Context, userID, otherID string, userLikeType, otherLikeType *database.LikeType) (*MatchRecord, error) {
	logger := telemetry.LogFromContext(ctx).WithFields(map[string]interface{}{
		"user_id":   userID,
		"other_id":  otherID,
		"operation": "create_match",
	})

	low, high := database.CanonicalPair(userID, otherID)
	lowLike, highLike := userLikeType, otherLikeType
	if low != userID {
		lowLike, highLike = otherLikeType, userLikeType
	}

	match := &MatchRecord{
		ID:              uuid.New().String(),
		UserAID:         low,
		UserBID:         high,
		UserALikeType:   lowLike,
		UserBLikeType:   highLike,
		IsMutualEmotion: mutualEmotion(userLikeType, otherLikeType),
		CreatedAt:       time.Now(),
	}

	query := `
		INSERT INTO matches (id, user_a_id, user_b_id, user_a_like_type, user_b_like_type, is_mutual_emotion, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := s.db.ExecContext(ctx, query,
		match.ID, match.UserAID, match.UserBID,
		match.UserALikeType, match.UserBLikeType,
		match.IsMutualEmotion, match.CreatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			logger.Info("Match already exists, returning existing record")
			return s.GetByPair(ctx, userID, otherID)
		}
		logger.WithError(err).Error("Failed to create match")
		return nil, apperrors.NewDatabaseError("create match", err)
	}

	logger.WithField("match_id", match.ID).Info("Match created")
	return match, nil
}

// GetByPair fetches the match for an unordered pair.
func (s *MatchService) GetByPair(ctx context.Context, userID, otherID string) (*MatchRecord, error) {
	low, high := database.CanonicalPair(userID, otherID)

	match := &MatchRecord{}
	query := `
		SELECT id, user_a_id, user_b_id, user_a_like_type, user_b_like_type, is_mutual_emotion, created_at
		FROM matches
		WHERE user_a_id = $1 AND user_b_id = $2
	`

	err := s.db.QueryRowContext(ctx, query, low, high).Scan(
		&match.ID, &match.UserAID, &match.UserBID,
		&match.UserALikeType, &match.UserBLikeType,
		&match.IsMutualEmotion, &match.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NewNotFoundError("match")
		}
		return nil, apperrors.NewDatabaseError("get match", err)
	}

	return match, nil
}

// ListForUser returns the user's matches, newest first, each with the
// other party's profile attached.
func (s *MatchService) ListForUser(ctx context.Context, userID string) ([]*MatchSummary, error) {
	logger := telemetry.LogFromContext(ctx).WithFields(map[string]interface{}{
		"user_id":   userID,
		"operation": "list_matches",
	})

	records, err := s.recordsForUser(ctx, userID)
	if err != nil {
		logger.WithError(err).Error("Failed to list matches")
		return nil, err
	}

	summaries := []*MatchSummary{}
	now := time.Now()
	for _, match := range records {
		profile, err := s.users.GetByID(ctx, match.OtherUser(userID))
		if err != nil {
			if apperrors.IsErrorType(err, apperrors.ErrorTypeNotFound) {
				continue
			}
			return nil, err
		}
		summaries = append(summaries, newMatchSummary(match, userID, profile, now))
	}

	return summaries, nil
}

// ListDetailed is ListForUser plus the full compatibility breakdown
// between the viewer and each matched profile.
func (s *MatchService) ListDetailed(ctx context.Context, userID string) ([]*DetailedMatch, error) {
	viewer, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	records, err := s.recordsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	detailed := []*DetailedMatch{}
	now := time.Now()
	for _, match := range records {
		profile, err := s.users.GetByID(ctx, match.OtherUser(userID))
		if err != nil {
			if apperrors.IsErrorType(err, apperrors.ErrorTypeNotFound) {
				continue
			}
			return nil, err
		}

		detailed = append(detailed, &DetailedMatch{
			MatchSummary:    *newMatchSummary(match, userID, profile, now),
			Compatibility:   scoring.DetailedCompatibility(viewer, profile, now),
			MutualInterests: scoring.MutualInterests(viewer, profile),
			BonusScore:      scoring.BonusCompatibility(viewer, profile),
		})
	}

	return detailed, nil
}

// CountForUser returns how many matches the user participates in.
func (s *MatchService) CountForUser(ctx context.Context, userID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM matches WHERE user_a_id = $1 OR user_b_id = $1`
	if err := s.db.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, apperrors.NewDatabaseError("count matches", err)
	}
	return count, nil
}

func (s *MatchService) recordsForUser(ctx context.Context, userID string) ([]*MatchRecord, error) {
	query := `
		SELECT id, user_a_id, user_b_id, user_a_like_type, user_b_like_type, is_mutual_emotion, created_at
		FROM matches
		WHERE user_a_id = $1 OR user_b_id = $1
		ORDER BY created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list matches", err)
	}
	defer rows.Close()

	records := []*MatchRecord{}
	for rows.Next() {
		match := &MatchRecord{}
		err := rows.Scan(
			&match.ID, &match.UserAID, &match.UserBID,
			&match.UserALikeType, &match.UserBLikeType,
			&match.IsMutualEmotion, &match.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.NewDatabaseError("scan match", err)
		}
		records = append(records, match)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewDatabaseError("iterate matches", err)
	}

	return records, nil
}

func newMatchSummary(match *MatchRecord, userID string, profile *UserProfile, now time.Time) *MatchSummary {
	summary := &MatchSummary{
		MatchID:       match.ID,
		MatchedAt:     match.CreatedAt,
		YourLikeType:  match.LikeTypeFor(userID),
		TheirLikeType: match.LikeTypeFor(match.OtherUser(userID)),
		MutualEmotion: match.IsMutualEmotion,
		Profile:       profile,
	}
	if age, ok := scoring.Age(profile.DateOfBirth, now); ok {
		summary.Age = &age
	}
	return summary
}

// mutualEmotion reports whether both sides attached the same like type.
func mutualEmotion(a, b *database.LikeType) bool {
	return a != nil && b != nil && *a == *b
}
