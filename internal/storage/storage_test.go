package storage_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"footybot/backend/internal/models"
	"footybot/backend/internal/roster"
	"footybot/backend/internal/storage"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockRoleLookup is a mock implementation of roster.RoleLookup.
type MockRoleLookup struct {
	mock.Mock
}

func (m *MockRoleLookup) LookupRole(ctx context.Context, chatID, userID int64) (roster.Role, error) {
	args := m.Called(chatID, userID)
	return args.Get(0).(roster.Role), args.Error(1)
}

// unreachableRedis returns a client whose every command fails fast.
func unreachableRedis(t *testing.T) *redis.Client {
	t.Helper()
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { rdb.Close() })
	return rdb
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "footybot:events:-1001", storage.EventChannel(-1001))
	assert.Equal(t, "footybot:role:-1001:42", storage.RoleKey(-1001, 42))
}

func TestService_WithoutBackends(t *testing.T) {
	ctx := context.Background()
	s := storage.NewStorageService(nil, nil)

	assert.ErrorIs(t, s.Migrate(), storage.ErrArchiveDisabled)
	assert.ErrorIs(t, s.ArchiveMatch(ctx, &models.MatchRecord{}), storage.ErrArchiveDisabled)
	_, err := s.RecentMatches(ctx, -1, 5)
	assert.ErrorIs(t, err, storage.ErrArchiveDisabled)

	assert.ErrorIs(t, s.Publish(ctx, roster.Event{ChatID: -1}), storage.ErrRedisDisabled)
	_, _, err = s.Subscribe(ctx, -1)
	assert.ErrorIs(t, err, storage.ErrRedisDisabled)
}

func TestService_PublishReportsRedisErrors(t *testing.T) {
	s := storage.NewStorageService(nil, unreachableRedis(t))

	err := s.Publish(context.Background(), roster.Event{Type: roster.EventSelectionOpened, ChatID: -1})

	assert.Error(t, err)
}

func TestCachedRoleLookup_NoRedisPassesThrough(t *testing.T) {
	next := new(MockRoleLookup)
	next.On("LookupRole", int64(-1), int64(7)).Return(roster.RoleAdministrator, nil).Twice()
	lookup := storage.NewCachedRoleLookup(next, nil, time.Minute)

	for i := 0; i < 2; i++ {
		role, err := lookup.LookupRole(context.Background(), -1, 7)
		require.NoError(t, err)
		assert.Equal(t, roster.RoleAdministrator, role)
	}
	next.AssertExpectations(t)
}

func TestCachedRoleLookup_RedisFailureFallsThrough(t *testing.T) {
	next := new(MockRoleLookup)
	next.On("LookupRole", int64(-1), int64(7)).Return(roster.RoleOwner, nil).Once()
	lookup := storage.NewCachedRoleLookup(next, unreachableRedis(t), time.Minute)

	role, err := lookup.LookupRole(context.Background(), -1, 7)

	require.NoError(t, err)
	assert.Equal(t, roster.RoleOwner, role)
	next.AssertExpectations(t)
}

func TestCachedRoleLookup_PropagatesLookupErrors(t *testing.T) {
	next := new(MockRoleLookup)
	next.On("LookupRole", int64(-1), int64(8)).Return(roster.RoleUnknown, errors.New("boom"))
	lookup := storage.NewCachedRoleLookup(next, nil, 0)

	role, err := lookup.LookupRole(context.Background(), -1, 8)

	assert.Error(t, err)
	assert.Equal(t, roster.RoleUnknown, role)
}
