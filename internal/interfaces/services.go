package interfaces

import (
	"context"

	"github.com/heartlink/heartlink/internal/database"
	"github.com/heartlink/heartlink/internal/scoring"
	"github.com/heartlink/heartlink/internal/services"
)

// UserService defines the user directory operations the handlers use
type UserService interface {
	GetByID(ctx context.Context, id string) (*services.UserProfile, error)
	CreateProfile(ctx context.Context, user *services.UserProfile) (*services.UserProfile, error)
	UpdateProfile(ctx context.Context, user *services.UserProfile) (*services.UserProfile, error)
}

// SwipeService defines the swipe ledger and coordinator operations
type SwipeService interface {
	Swipe(ctx context.Context, swiperID, targetID string, action database.SwipeAction, likeType *database.LikeType) (*services.SwipeResult, error)
	Stats(ctx context.Context, userID string) (*services.SwipeStats, error)
	PendingLikes(ctx context.Context, userID string) ([]*services.PendingLike, error)
	LikedUsers(ctx context.Context, userID string) ([]*services.LikedUser, error)
}

// FeedService defines candidate feed selection
type FeedService interface {
	Candidates(ctx context.Context, userID string, page, pageSize int) (*services.CandidatePage, error)
	RankedMatches(ctx context.Context, userID string) (*scoring.RankResult, error)
}

// MatchService defines the match store operations
type MatchService interface {
	ListForUser(ctx context.Context, userID string) ([]*services.MatchSummary, error)
	ListDetailed(ctx context.Context, userID string) ([]*services.DetailedMatch, error)
}

// FriendService defines the friend request workflow
type FriendService interface {
	SendRequest(ctx context.Context, requesterID, recipientID string) (*services.FriendRequest, error)
	Respond(ctx context.Context, requestID, userID string, accept bool) (*services.FriendRequest, error)
	ListRequests(ctx context.Context, userID string) (*services.FriendRequests, error)
	Friends(ctx context.Context, userID string) ([]*services.UserProfile, error)
}

// MessagingService defines direct messaging operations
type MessagingService interface {
	Send(ctx context.Context, senderID, receiverID, text, imageURL string) (*services.Message, error)
	Conversation(ctx context.Context, userID, otherID string) ([]*services.Message, error)
}
