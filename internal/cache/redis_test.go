package cache

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/heartlink/heartlink/internal/errors"
)

// MockClient is a testify mock of the Client interface.
type MockClient struct {
	mock.Mock
}

func (m *MockClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	args := m.Called(ctx, key, value, expiration)
	cmd := redis.NewStatusCmd(ctx)
	if args.Error(1) != nil {
		cmd.SetErr(args.Error(1))
	} else {
		cmd.SetVal(args.String(0))
	}
	return cmd
}

func (m *MockClient) Get(ctx context.Context, key string) *redis.StringCmd {
	args := m.Called(ctx, key)
	cmd := redis.NewStringCmd(ctx)
	if args.Error(1) != nil {
		cmd.SetErr(args.Error(1))
	} else {
		cmd.SetVal(args.String(0))
	}
	return cmd
}

func (m *MockClient) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	args := m.Called(ctx, keys)
	cmd := redis.NewIntCmd(ctx)
	if args.Error(1) != nil {
		cmd.SetErr(args.Error(1))
	} else {
		cmd.SetVal(args.Get(0).(int64))
	}
	return cmd
}

func (m *MockClient) Ping(ctx context.Context) *redis.StatusCmd {
	args := m.Called(ctx)
	cmd := redis.NewStatusCmd(ctx)
	if args.Error(1) != nil {
		cmd.SetErr(args.Error(1))
	} else {
		cmd.SetVal(args.String(0))
	}
	return cmd
}

func (m *MockClient) Close() error {
	return m.Called().Error(0)
}

func newTestService(client Client) *RedisService {
	return &RedisService{client: client, config: &RedisConfig{}}
}

func TestRedisService_SetDefaultsTTL(t *testing.T) {
	client := &MockClient{}
	service := newTestService(client)

	client.On("Set", mock.Anything, "key", "value", time.Duration(DefaultTTL)*time.Second).Return("OK", nil)

	err := service.Set(context.Background(), "key", "value", 0)

	assert.NoError(t, err)
	client.AssertExpectations(t)
}

func TestRedisService_Get(t *testing.T) {
	client := &MockClient{}
	service := newTestService(client)

	client.On("Get", mock.Anything, "key").Return("value", nil)

	value, err := service.Get(context.Background(), "key")

	assert.NoError(t, err)
	assert.Equal(t, "value", value)
	client.AssertExpectations(t)
}

func TestRedisService_GetMiss(t *testing.T) {
	client := &MockClient{}
	service := newTestService(client)

	client.On("Get", mock.Anything, "missing").Return("", redis.Nil)

	_, err := service.Get(context.Background(), "missing")

	assert.ErrorIs(t, err, ErrCacheMiss)
	client.AssertExpectations(t)
}

func TestRedisService_JSONRoundTrip(t *testing.T) {
	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	client := &MockClient{}
	service := newTestService(client)

	stored := `{"name":"stats","count":3}`
	client.On("Set", mock.Anything, "key", []byte(stored), time.Minute).Return("OK", nil)
	client.On("Get", mock.Anything, "key").Return(stored, nil)

	require.NoError(t, service.SetJSON(context.Background(), "key", payload{Name: "stats", Count: 3}, time.Minute))

	var out payload
	require.NoError(t, service.GetJSON(context.Background(), "key", &out))
	assert.Equal(t, payload{Name: "stats", Count: 3}, out)
	client.AssertExpectations(t)
}

func TestRedisService_Delete(t *testing.T) {
	client := &MockClient{}
	service := newTestService(client)

	client.On("Del", mock.Anything, []string{"key"}).Return(int64(1), nil)

	assert.NoError(t, service.Delete(context.Background(), "key"))
	client.AssertExpectations(t)
}

func TestRedisService_HealthCheck(t *testing.T) {
	client := &MockClient{}
	service := newTestService(client)

	client.On("Ping", mock.Anything).Return("PONG", nil)

	assert.True(t, service.HealthCheck(context.Background()))
	client.AssertExpectations(t)
}

func TestSessionStore_Resolve(t *testing.T) {
	client := &MockClient{}
	store := NewSessionStore(newTestService(client))

	client.On("Get", mock.Anything, "session:token-1").Return("user-1", nil)

	userID, err := store.Resolve(context.Background(), "token-1")

	assert.NoError(t, err)
	assert.Equal(t, "user-1", userID)
	client.AssertExpectations(t)
}

func TestSessionStore_ResolveUnknownToken(t *testing.T) {
	client := &MockClient{}
	store := NewSessionStore(newTestService(client))

	client.On("Get", mock.Anything, "session:bogus").Return("", redis.Nil)

	_, err := store.Resolve(context.Background(), "bogus")

	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeAuthentication))
	client.AssertExpectations(t)
}

func TestSessionStore_StoreAndRevoke(t *testing.T) {
	client := &MockClient{}
	store := NewSessionStore(newTestService(client))

	client.On("Set", mock.Anything, "session:token-1", "user-1", time.Duration(SessionTTL)*time.Second).Return("OK", nil)
	client.On("Del", mock.Anything, []string{"session:token-1"}).Return(int64(1), nil)

	assert.NoError(t, store.Store(context.Background(), "token-1", "user-1", 0))
	assert.NoError(t, store.Revoke(context.Background(), "token-1"))
	client.AssertExpectations(t)
}
