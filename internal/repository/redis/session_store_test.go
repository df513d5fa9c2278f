package redis

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/trivia-engine/internal/domain/entity"
	apperrors "github.com/yourusername/trivia-engine/internal/pkg/errors"
)

// MockCacheRepo реализует repository.CacheRepository
type MockCacheRepo struct {
	mock.Mock
}

func (m *MockCacheRepo) Delete(ctx context.Context, keys ...string) error {
	args := m.Called(keys)
	return args.Error(0)
}

func (m *MockCacheRepo) SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	args := m.Called(key, value, expiration)
	return args.Error(0)
}

func (m *MockCacheRepo) GetJSON(ctx context.Context, key string, dest interface{}) error {
	args := m.Called(key, dest)
	return args.Error(0)
}

func (m *MockCacheRepo) DeleteIfEquals(ctx context.Context, key, value string) (bool, error) {
	args := m.Called(key, value)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheRepo) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
	args := m.Called(key, value, expiration)
	return args.Bool(0), args.Error(1)
}

func newStoredSession() entity.QuizSession {
	questions := []entity.Question{
		entity.NewQuestion("Q1", "A", []string{"B", "C"}, entity.NewSeededRand(1)),
		entity.NewQuestion("Q2", "D", []string{"E"}, entity.NewSeededRand(2)),
	}
	return entity.NewQuizSession(questions, entity.QuizSettings{QuestionCount: 2, Category: "Art"})
}

func TestSessionStore_Save(t *testing.T) {
	// Arrange
	cache := new(MockCacheRepo)
	store := NewSessionStore(cache)
	session := newStoredSession()
	cache.On("SetJSON", "quiz:session:abc", session.Snapshot(), 10*time.Minute).Return(nil)

	// Act
	err := store.Save(context.Background(), "abc", session, 10*time.Minute)

	// Assert
	require.NoError(t, err)
	cache.AssertExpectations(t)
}

func TestSessionStore_Get(t *testing.T) {
	// Arrange
	cache := new(MockCacheRepo)
	store := NewSessionStore(cache)
	session := newStoredSession()
	payload, err := json.Marshal(session.Snapshot())
	require.NoError(t, err)

	cache.On("GetJSON", "quiz:session:abc", mock.AnythingOfType("*entity.SessionSnapshot")).
		Run(func(args mock.Arguments) {
			require.NoError(t, json.Unmarshal(payload, args.Get(1)))
		}).
		Return(nil)

	// Act
	restored, err := store.Get(context.Background(), "abc")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, session.Step(), restored.Step())
	assert.Equal(t, session.Total(), restored.Total())
	assert.Equal(t, "Art", restored.Settings().Category)
	cache.AssertExpectations(t)
}

func TestSessionStore_Get_NotFound(t *testing.T) {
	cache := new(MockCacheRepo)
	store := NewSessionStore(cache)
	cache.On("GetJSON", "quiz:session:missing", mock.Anything).Return(apperrors.ErrNotFound)

	_, err := store.Get(context.Background(), "missing")

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

// fixedToken подменяет генератор токенов блокировки
func fixedToken(store *SessionStore, token string) {
	store.newToken = func() string { return token }
}

func TestSessionStore_Lock(t *testing.T) {
	// Arrange
	cache := new(MockCacheRepo)
	store := NewSessionStore(cache)
	fixedToken(store, "tok-1")
	cache.On("SetNX", "quiz:session:abc:lock", "tok-1", DefaultLockTTL).Return(true, nil).Once()
	cache.On("DeleteIfEquals", "quiz:session:abc:lock", "tok-1").Return(true, nil).Once()

	// Act
	unlock, err := store.Lock(context.Background(), "abc")
	require.NoError(t, err)
	unlock()

	// Assert
	cache.AssertExpectations(t)
}

func TestSessionStore_Lock_Busy(t *testing.T) {
	cache := new(MockCacheRepo)
	store := NewSessionStore(cache)
	cache.On("SetNX", "quiz:session:abc:lock", mock.AnythingOfType("string"), DefaultLockTTL).Return(false, nil)

	unlock, err := store.Lock(context.Background(), "abc")

	assert.Nil(t, unlock)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestSessionStore_Lock_RedisError(t *testing.T) {
	cache := new(MockCacheRepo)
	store := NewSessionStore(cache)
	cache.On("SetNX", "quiz:session:abc:lock", mock.AnythingOfType("string"), DefaultLockTTL).Return(false, errors.New("connection refused"))

	_, err := store.Lock(context.Background(), "abc")

	assert.Error(t, err)
	assert.NotErrorIs(t, err, apperrors.ErrConflict)
}

func TestSessionStore_Lock_TokensAreUnique(t *testing.T) {
	cache := new(MockCacheRepo)
	store := NewSessionStore(cache)
	var tokens []string
	cache.On("SetNX", "quiz:session:abc:lock", mock.AnythingOfType("string"), DefaultLockTTL).
		Run(func(args mock.Arguments) { tokens = append(tokens, args.String(1)) }).
		Return(true, nil)

	_, err := store.Lock(context.Background(), "abc")
	require.NoError(t, err)
	_, err = store.Lock(context.Background(), "abc")
	require.NoError(t, err)

	require.Len(t, tokens, 2)
	assert.NotEqual(t, tokens[0], tokens[1])
}

// expiringCache - CacheRepository в памяти с ручным истечением ключей
type expiringCache struct {
	MockCacheRepo
	mu     sync.Mutex
	values map[string]string
}

func newExpiringCache() *expiringCache {
	return &expiringCache{values: map[string]string{}}
}

func (c *expiringCache) SetNX(_ context.Context, key string, value interface{}, _ time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.values[key]; ok {
		return false, nil
	}
	c.values[key] = value.(string)
	return true, nil
}

func (c *expiringCache) DeleteIfEquals(_ context.Context, key, value string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.values[key] != value {
		return false, nil
	}
	delete(c.values, key)
	return true, nil
}

func (c *expiringCache) expire(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.values, key)
}

func TestSessionStore_Lock_StaleUnlockKeepsNewOwner(t *testing.T) {
	// Arrange: A захватил блокировку, TTL истек, блокировку взял B
	cache := newExpiringCache()
	store := NewSessionStore(cache)
	ctx := context.Background()

	unlockA, err := store.Lock(ctx, "abc")
	require.NoError(t, err)
	cache.expire(lockKey("abc"))
	unlockB, err := store.Lock(ctx, "abc")
	require.NoError(t, err)

	// Act: запоздавший A снимает "свою" блокировку
	unlockA()

	// Assert: блокировка B на месте, третий запрос не проходит
	_, err = store.Lock(ctx, "abc")
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	unlockB()
	unlockC, err := store.Lock(ctx, "abc")
	require.NoError(t, err, "После снятия владельцем блокировка свободна")
	unlockC()
}
