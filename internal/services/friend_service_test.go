package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/heartlink/heartlink/internal/errors"
)

func TestNewFriendService(t *testing.T) {
	service := NewFriendService(nil, nil)
	assert.NotNil(t, service)
}

func TestSendRequest_Validation(t *testing.T) {
	service := NewFriendService(nil, nil)
	ctx := context.Background()

	request, err := service.SendRequest(ctx, "user-1", "")
	assert.Nil(t, request)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeValidation))

	request, err = service.SendRequest(ctx, "user-1", "user-1")
	assert.Nil(t, request)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeValidation))
}
