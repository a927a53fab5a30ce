package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/heartlink/heartlink/internal/database"
	apperrors "github.com/heartlink/heartlink/internal/errors"
	"github.com/heartlink/heartlink/internal/telemetry"
)

type FriendRequest = database.FriendRequest

// FriendRequestView pairs a request with the counterpart's profile.
type FriendRequestView struct {
	Request *FriendRequest `json:"request"`
	Profile *UserProfile   `json:"profile"`
}

// FriendRequests groups a user's open requests by direction.
type FriendRequests struct {
	Incoming []*FriendRequestView `json:"incoming"`
	Outgoing []*FriendRequestView `json:"outgoing"`
}

// FriendService owns the friend-request workflow. Accepted requests
// define the friendship set the feed excludes.
type FriendService struct {
	db    *database.DB
	users *UserService
}

func NewFriendService(db *database.DB, users *UserService) *FriendService {
	return &FriendService{db: db, users: users}
}

// SendRequest creates a pending request from requester to recipient.
// A prior like in either direction is required; a friend request out of
// nowhere is not part of the product.
func (s *FriendService) SendRequest(ctx context.Context, requesterID, recipientID string) (*FriendRequest, error) {
	logger := telemetry.LogFromContext(ctx).WithFields(map[string]interface{}{
		"requester_id": requesterID,
		"recipient_id": recipientID,
		"operation":    "send_friend_request",
	})

	if recipientID == "" {
		return nil, apperrors.NewValidationError("recipient_id", "recipient is required")
	}
	if requesterID == recipientID {
		return nil, apperrors.NewValidationError("recipient_id", "you cannot send a friend request to yourself")
	}

	if _, err := s.users.GetByID(ctx, recipientID); err != nil {
		return nil, err
	}

	interacted, err := s.haveLikeInteraction(ctx, requesterID, recipientID)
	if err != nil {
		return nil, err
	}
	if !interacted {
		return nil, apperrors.NewValidationError("recipient_id", "a friend request requires a prior like between you")
	}

	if existing, err := s.requestBetween(ctx, requesterID, recipientID); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, apperrors.NewConflictError("A friend request already exists between these users")
	}

	request := &FriendRequest{
		ID:          uuid.New().String(),
		RequesterID: requesterID,
		RecipientID: recipientID,
		Status:      database.FriendRequestPending,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	query := `
		INSERT INTO friend_requests (id, requester_id, recipient_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err = s.db.ExecContext(ctx, query,
		request.ID, request.RequesterID, request.RecipientID,
		request.Status, request.CreatedAt, request.UpdatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperrors.NewConflictError("A friend request already exists between these users")
		}
		logger.WithError(err).Error("Failed to create friend request")
		return nil, apperrors.NewDatabaseError("create friend request", err)
	}

	logger.WithField("request_id", request.ID).Info("Friend request sent")
	return request, nil
}

// Respond lets the recipient accept or decline a pending request.
func (s *FriendService) Respond(ctx context.Context, requestID, userID string, accept bool) (*FriendRequest, error) {
	logger := telemetry.LogFromContext(ctx).WithFields(map[string]interface{}{
		"request_id": requestID,
		"user_id":    userID,
		"accept":     accept,
		"operation":  "respond_friend_request",
	})

	request := &FriendRequest{}

	// Lock the row for the check-then-update so two concurrent responses
	// cannot both see the request as pending.
	err := s.db.WithTransaction(func(tx *sql.Tx) error {
		query := `
			SELECT id, requester_id, recipient_id, status, created_at, updated_at
			FROM friend_requests WHERE id = $1
			FOR UPDATE
		`
		err := tx.QueryRowContext(ctx, query, requestID).Scan(
			&request.ID, &request.RequesterID, &request.RecipientID,
			&request.Status, &request.CreatedAt, &request.UpdatedAt,
		)
		if err != nil {
			if err == sql.ErrNoRows {
				return apperrors.NewNotFoundError("friend request")
			}
			return apperrors.NewDatabaseError("get friend request", err)
		}

		if request.RecipientID != userID {
			return apperrors.NewAuthorizationError("Only the recipient can respond to a friend request")
		}
		if request.Status != database.FriendRequestPending {
			return apperrors.NewConflictError("This friend request was already answered")
		}

		status := database.FriendRequestDeclined
		if accept {
			status = database.FriendRequestAccepted
		}

		update := `UPDATE friend_requests SET status = $1, updated_at = $2 WHERE id = $3`
		if _, err := tx.ExecContext(ctx, update, status, time.Now(), requestID); err != nil {
			return apperrors.NewDatabaseError("update friend request", err)
		}

		request.Status = status
		return nil
	})
	if err != nil {
		logger.WithError(err).Error("Failed to answer friend request")
		return nil, err
	}

	logger.Info("Friend request answered")
	return request, nil
}

// ListRequests returns the user's pending requests, split by direction.
func (s *FriendService) ListRequests(ctx context.Context, userID string) (*FriendRequests, error) {
	query := `
		SELECT id, requester_id, recipient_id, status, created_at, updated_at
		FROM friend_requests
		WHERE (requester_id = $1 OR recipient_id = $1) AND status = $2
		ORDER BY created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, userID, database.FriendRequestPending)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list friend requests", err)
	}
	defer rows.Close()

	requests := []*FriendRequest{}
	for rows.Next() {
		request := &FriendRequest{}
		err := rows.Scan(
			&request.ID, &request.RequesterID, &request.RecipientID,
			&request.Status, &request.CreatedAt, &request.UpdatedAt,
		)
		if err != nil {
			return nil, apperrors.NewDatabaseError("scan friend request", err)
		}
		requests = append(requests, request)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewDatabaseError("iterate friend requests", err)
	}

	result := &FriendRequests{Incoming: []*FriendRequestView{}, Outgoing: []*FriendRequestView{}}
	for _, request := range requests {
		otherID := request.RequesterID
		if otherID == userID {
			otherID = request.RecipientID
		}
		profile, err := s.users.GetByID(ctx, otherID)
		if err != nil {
			if apperrors.IsErrorType(err, apperrors.ErrorTypeNotFound) {
				continue
			}
			return nil, err
		}
		view := &FriendRequestView{Request: request, Profile: profile}
		if request.RecipientID == userID {
			result.Incoming = append(result.Incoming, view)
		} else {
			result.Outgoing = append(result.Outgoing, view)
		}
	}

	return result, nil
}

// Friends returns the profiles of everyone the user has an accepted
// request with, in either direction.
func (s *FriendService) Friends(ctx context.Context, userID string) ([]*UserProfile, error) {
	query := `
		SELECT CASE WHEN requester_id = $1 THEN recipient_id ELSE requester_id END
		FROM friend_requests
		WHERE (requester_id = $1 OR recipient_id = $1) AND status = $2
		ORDER BY updated_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, userID, database.FriendRequestAccepted)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list friends", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, apperrors.NewDatabaseError("scan friend id", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewDatabaseError("iterate friend ids", err)
	}

	return s.users.ProfilesByIDs(ctx, ids)
}

func (s *FriendService) requestBetween(ctx context.Context, a, b string) (*FriendRequest, error) {
	request := &FriendRequest{}
	query := `
		SELECT id, requester_id, recipient_id, status, created_at, updated_at
		FROM friend_requests
		WHERE (requester_id = $1 AND recipient_id = $2)
		   OR (requester_id = $2 AND recipient_id = $1)
	`

	err := s.db.QueryRowContext(ctx, query, a, b).Scan(
		&request.ID, &request.RequesterID, &request.RecipientID,
		&request.Status, &request.CreatedAt, &request.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, apperrors.NewDatabaseError("lookup friend request", err)
	}

	return request, nil
}

func (s *FriendService) haveLikeInteraction(ctx context.Context, a, b string) (bool, error) {
	var count int
	query := `
		SELECT COUNT(*)
		FROM swipes
		WHERE action = 'like'
		  AND ((swiper_id = $1 AND swiped_id = $2) OR (swiper_id = $2 AND swiped_id = $1))
	`
	if err := s.db.QueryRowContext(ctx, query, a, b).Scan(&count); err != nil {
		return false, apperrors.NewDatabaseError("check like interaction", err)
	}
	return count > 0, nil
}
