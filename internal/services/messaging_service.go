package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/heartlink/heartlink/internal/database"
	apperrors "github.com/heartlink/heartlink/internal/errors"
	"github.com/heartlink/heartlink/internal/telemetry"
)

type Message = database.Message

// MessagingService stores direct messages between users.
type MessagingService struct {
	db    *database.DB
	users *UserService
}

func NewMessagingService(db *database.DB, users *UserService) *MessagingService {
	return &MessagingService{db: db, users: users}
}

// Send records a message from sender to receiver. A message carries
// text, an image, or both.
func (s *MessagingService) Send(ctx context.Context, senderID, receiverID, text, imageURL string) (*Message, error) {
	logger := telemetry.LogFromContext(ctx).WithFields(map[string]interface{}{
		"sender_id":   senderID,
		"receiver_id": receiverID,
		"operation":   "send_message",
	})

	if receiverID == "" {
		return nil, apperrors.NewValidationError("receiver_id", "receiver is required")
	}
	if senderID == receiverID {
		return nil, apperrors.NewValidationError("receiver_id", "you cannot message yourself")
	}
	if strings.TrimSpace(text) == "" && strings.TrimSpace(imageURL) == "" {
		return nil, apperrors.NewValidationError("text", "a message needs text or an image")
	}

	if _, err := s.users.GetByID(ctx, receiverID); err != nil {
		return nil, err
	}

	message := &Message{
		ID:         uuid.New().String(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Text:       text,
		ImageURL:   imageURL,
		CreatedAt:  time.Now(),
	}

	query := `
		INSERT INTO messages (id, sender_id, receiver_id, text, image_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := s.db.ExecContext(ctx, query,
		message.ID, message.SenderID, message.ReceiverID,
		message.Text, message.ImageURL, message.CreatedAt,
	)
	if err != nil {
		logger.WithError(err).Error("Failed to store message")
		return nil, apperrors.NewDatabaseError("store message", err)
	}

	logger.WithField("message_id", message.ID).Info("Message sent")
	return message, nil
}

// Conversation returns every message between two users, oldest first.
func (s *MessagingService) Conversation(ctx context.Context, userID, otherID string) ([]*Message, error) {
	query := `
		SELECT id, sender_id, receiver_id, text, image_url, created_at
		FROM messages
		WHERE (sender_id = $1 AND receiver_id = $2)
		   OR (sender_id = $2 AND receiver_id = $1)
		ORDER BY created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, userID, otherID)
	if err != nil {
		return nil, apperrors.NewDatabaseError("load conversation", err)
	}
	defer rows.Close()

	messages := []*Message{}
	for rows.Next() {
		message := &Message{}
		err := rows.Scan(
			&message.ID, &message.SenderID, &message.ReceiverID,
			&message.Text, &message.ImageURL, &message.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.NewDatabaseError("scan message", err)
		}
		messages = append(messages, message)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewDatabaseError("iterate messages", err)
	}

	return messages, nil
}
