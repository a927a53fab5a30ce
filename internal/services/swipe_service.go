package services

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/heartlink/heartlink/internal/cache"
	"github.com/heartlink/heartlink/internal/database"
	apperrors "github.com/heartlink/heartlink/internal/errors"
	"github.com/heartlink/heartlink/internal/scoring"
	"github.com/heartlink/heartlink/internal/telemetry"
)

type SwipeRecord = database.SwipeRecord

// SwipeResult is the outcome of one swipe call. AlreadySwiped marks the
// idempotent replay of a previous decision; IsMatch carries the newly
// confirmed (or already existing) match.
type SwipeResult struct {
	Success        bool         `json:"success"`
	IsMatch        bool         `json:"is_match"`
	AlreadySwiped  bool         `json:"already_swiped"`
	MutualEmotion  bool         `json:"mutual_emotion,omitempty"`
	MatchedProfile *UserProfile `json:"matched_profile,omitempty"`
}

// SwipeStats aggregates one user's swipe activity.
type SwipeStats struct {
	TotalLikes    int     `json:"total_likes"`
	TotalDislikes int     `json:"total_dislikes"`
	TotalSwipes   int     `json:"total_swipes"`
	TotalMatches  int     `json:"total_matches"`
	LikesReceived int     `json:"likes_received"`
	MatchRate     float64 `json:"match_rate"`
}

// PendingLike is an inbound like the user has not answered yet.
type PendingLike struct {
	Profile  *UserProfile       `json:"profile"`
	Age      *int               `json:"age,omitempty"`
	LikeType *database.LikeType `json:"like_type,omitempty"`
	LikedAt  time.Time          `json:"liked_at"`
}

// LikedUser is an outbound like that has not become a match, with the
// status derived from the target's answer so far.
type LikedUser struct {
	Profile  *UserProfile       `json:"profile"`
	Age      *int               `json:"age,omitempty"`
	LikeType *database.LikeType `json:"like_type,omitempty"`
	Status   string             `json:"status"` // pending or rejected
	LikedAt  time.Time          `json:"liked_at"`
}

// SwipeService is the swipe ledger and the coordinator that turns
// reciprocal likes into matches. Swipe records are append-only; the
// unique (swiper, swiped) index makes replays idempotent.
type SwipeService struct {
	db      *database.DB
	users   *UserService
	matches *MatchService
	cache   *cache.RedisService
}

func NewSwipeService(db *database.DB, users *UserService, matches *MatchService, redis *cache.RedisService) *SwipeService {
	return &SwipeService{db: db, users: users, matches: matches, cache: redis}
}

// Swipe records swiperID's decision about targetID and reports whether
// it completed a match.
func (s *SwipeService) Swipe(ctx context.Context, swiperID, targetID string, action database.SwipeAction, likeType *database.LikeType) (*SwipeResult, error) {
	logger := telemetry.LogFromContext(ctx).WithFields(map[string]interface{}{
		"swiper_id": swiperID,
		"target_id": targetID,
		"action":    string(action),
		"operation": "swipe",
	})

	if targetID == "" {
		return nil, apperrors.NewValidationError("target_id", "target user is required")
	}
	if swiperID == targetID {
		return nil, apperrors.NewValidationError("target_id", "you cannot swipe on yourself")
	}
	if !action.Valid() {
		return nil, apperrors.NewValidationError("action", "action must be like or dislike")
	}
	if likeType != nil {
		if action != database.ActionLike {
			return nil, apperrors.NewValidationError("like_type", "like type only applies to likes")
		}
		if !likeType.Valid() {
			return nil, apperrors.NewValidationError("like_type", "like type must be crush, intrigued, curious or fun")
		}
	}

	target, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	record := &SwipeRecord{
		ID:        uuid.New().String(),
		SwiperID:  swiperID,
		SwipedID:  targetID,
		Action:    action,
		LikeType:  likeType,
		CreatedAt: time.Now(),
	}

	query := `
		INSERT INTO swipes (id, swiper_id, swiped_id, action, like_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err = s.db.ExecContext(ctx, query,
		record.ID, record.SwiperID, record.SwipedID,
		record.Action, record.LikeType, record.CreatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			logger.Info("Swipe already recorded, replaying previous outcome")
			return &SwipeResult{Success: true, AlreadySwiped: true}, nil
		}
		logger.WithError(err).Error("Failed to record swipe")
		return nil, apperrors.NewDatabaseError("record swipe", err)
	}

	s.invalidateStats(ctx, swiperID, targetID)

	if action == database.ActionDislike {
		return &SwipeResult{Success: true}, nil
	}

	reciprocal, err := s.reciprocalLike(ctx, targetID, swiperID)
	if err != nil {
		return nil, err
	}
	if reciprocal == nil || !likeTypesCompatible(likeType, reciprocal.LikeType) {
		return &SwipeResult{Success: true}, nil
	}

	match, err := s.matches.CreateIfAbsent(ctx, swiperID, targetID, likeType, reciprocal.LikeType)
	if err != nil {
		return nil, err
	}

	logger.WithField("match_id", match.ID).Info("Mutual like confirmed")
	return &SwipeResult{
		Success:        true,
		IsMatch:        true,
		MutualEmotion:  match.IsMutualEmotion,
		MatchedProfile: target,
	}, nil
}

// Stats returns the user's swipe statistics, served from a short-lived
// redis cache when available.
func (s *SwipeService) Stats(ctx context.Context, userID string) (*SwipeStats, error) {
	logger := telemetry.LogFromContext(ctx).WithFields(map[string]interface{}{
		"user_id":   userID,
		"operation": "swipe_stats",
	})

	key := statsCacheKey(userID)
	if s.cache != nil {
		cached := &SwipeStats{}
		if err := s.cache.GetJSON(ctx, key, cached); err == nil {
			return cached, nil
		} else if err != cache.ErrCacheMiss {
			logger.WithError(err).Warn("Stats cache read failed")
		}
	}

	stats := &SwipeStats{}
	query := `
		SELECT
			COUNT(*) FILTER (WHERE action = 'like'),
			COUNT(*) FILTER (WHERE action = 'dislike')
		FROM swipes WHERE swiper_id = $1
	`
	if err := s.db.QueryRowContext(ctx, query, userID).Scan(&stats.TotalLikes, &stats.TotalDislikes); err != nil {
		logger.WithError(err).Error("Failed to aggregate swipes")
		return nil, apperrors.NewDatabaseError("aggregate swipes", err)
	}
	stats.TotalSwipes = stats.TotalLikes + stats.TotalDislikes

	received := `SELECT COUNT(*) FROM swipes WHERE swiped_id = $1 AND action = 'like'`
	if err := s.db.QueryRowContext(ctx, received, userID).Scan(&stats.LikesReceived); err != nil {
		return nil, apperrors.NewDatabaseError("count received likes", err)
	}

	matches, err := s.matches.CountForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats.TotalMatches = matches
	stats.MatchRate = matchRate(matches, stats.TotalLikes)

	if s.cache != nil {
		ttl := time.Duration(cache.StatsTTL) * time.Second
		if err := s.cache.SetJSON(ctx, key, stats, ttl); err != nil {
			logger.WithError(err).Warn("Stats cache write failed")
		}
	}

	return stats, nil
}

// PendingLikes lists inbound likes the user has not swiped back on,
// newest first.
func (s *SwipeService) PendingLikes(ctx context.Context, userID string) ([]*PendingLike, error) {
	query := `
		SELECT s.swiper_id, s.like_type, s.created_at
		FROM swipes s
		WHERE s.swiped_id = $1 AND s.action = 'like'
		  AND NOT EXISTS (
			SELECT 1 FROM swipes b WHERE b.swiper_id = $1 AND b.swiped_id = s.swiper_id
		  )
		ORDER BY s.created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list pending likes", err)
	}
	defer rows.Close()

	type inbound struct {
		senderID string
		likeType *database.LikeType
		likedAt  time.Time
	}
	inbounds := []inbound{}
	for rows.Next() {
		var in inbound
		if err := rows.Scan(&in.senderID, &in.likeType, &in.likedAt); err != nil {
			return nil, apperrors.NewDatabaseError("scan pending like", err)
		}
		inbounds = append(inbounds, in)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewDatabaseError("iterate pending likes", err)
	}

	pending := []*PendingLike{}
	now := time.Now()
	for _, in := range inbounds {
		profile, err := s.users.GetByID(ctx, in.senderID)
		if err != nil {
			if apperrors.IsErrorType(err, apperrors.ErrorTypeNotFound) {
				continue
			}
			return nil, err
		}
		like := &PendingLike{Profile: profile, LikeType: in.likeType, LikedAt: in.likedAt}
		if age, ok := scoring.Age(profile.DateOfBirth, now); ok {
			like.Age = &age
		}
		pending = append(pending, like)
	}

	return pending, nil
}

// LikedUsers lists outbound likes that have not become matches. The
// status reflects the target's answer: pending while unanswered,
// rejected after a dislike back. Mutual likes are matches and excluded.
func (s *SwipeService) LikedUsers(ctx context.Context, userID string) ([]*LikedUser, error) {
	query := `
		SELECT s.swiped_id, s.like_type, s.created_at, b.action
		FROM swipes s
		LEFT JOIN swipes b ON b.swiper_id = s.swiped_id AND b.swiped_id = s.swiper_id
		WHERE s.swiper_id = $1 AND s.action = 'like'
		ORDER BY s.created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list liked users", err)
	}
	defer rows.Close()

	type outbound struct {
		targetID string
		likeType *database.LikeType
		likedAt  time.Time
		answer   sql.NullString
	}
	outbounds := []outbound{}
	for rows.Next() {
		var out outbound
		if err := rows.Scan(&out.targetID, &out.likeType, &out.likedAt, &out.answer); err != nil {
			return nil, apperrors.NewDatabaseError("scan liked user", err)
		}
		outbounds = append(outbounds, out)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewDatabaseError("iterate liked users", err)
	}

	liked := []*LikedUser{}
	now := time.Now()
	for _, out := range outbounds {
		status, include := likedStatus(out.answer)
		if !include {
			continue
		}
		profile, err := s.users.GetByID(ctx, out.targetID)
		if err != nil {
			if apperrors.IsErrorType(err, apperrors.ErrorTypeNotFound) {
				continue
			}
			return nil, err
		}
		user := &LikedUser{Profile: profile, LikeType: out.likeType, Status: status, LikedAt: out.likedAt}
		if age, ok := scoring.Age(profile.DateOfBirth, now); ok {
			user.Age = &age
		}
		liked = append(liked, user)
	}

	return liked, nil
}

func (s *SwipeService) reciprocalLike(ctx context.Context, swiperID, swipedID string) (*SwipeRecord, error) {
	record := &SwipeRecord{}
	query := `
		SELECT id, swiper_id, swiped_id, action, like_type, created_at
		FROM swipes
		WHERE swiper_id = $1 AND swiped_id = $2 AND action = 'like'
	`

	err := s.db.QueryRowContext(ctx, query, swiperID, swipedID).Scan(
		&record.ID, &record.SwiperID, &record.SwipedID,
		&record.Action, &record.LikeType, &record.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, apperrors.NewDatabaseError("lookup reciprocal like", err)
	}

	return record, nil
}

func (s *SwipeService) invalidateStats(ctx context.Context, userIDs ...string) {
	if s.cache == nil {
		return
	}
	logger := telemetry.LogFromContext(ctx)
	for _, id := range userIDs {
		if err := s.cache.Delete(ctx, statsCacheKey(id)); err != nil {
			logger.WithError(err).Warn("Failed to invalidate stats cache")
		}
	}
}

func statsCacheKey(userID string) string {
	return fmt.Sprintf("stats:%s", userID)
}

// likeTypesCompatible gates match creation on the optional like emotion.
// When both sides named one they must agree; an absent emotion on either
// side leaves any mutual like eligible.
func likeTypesCompatible(a, b *database.LikeType) bool {
	if a == nil || b == nil {
		return true
	}
	return *a == *b
}

// likedStatus derives the outbound like status from the target's answer.
// A mutual like is a match, not a liked-user entry.
func likedStatus(answer sql.NullString) (status string, include bool) {
	if !answer.Valid {
		return "pending", true
	}
	if answer.String == string(database.ActionDislike) {
		return "rejected", true
	}
	return "", false
}

// matchRate is matches per like, as a percentage with one decimal.
func matchRate(matches, likes int) float64 {
	if likes == 0 {
		return 0
	}
	return math.Round(float64(matches)/float64(likes)*1000) / 10
}
