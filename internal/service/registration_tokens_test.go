package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"roomserve/internal/domain"
	"roomserve/internal/store"
)

func setupTokens(t *testing.T) (*miniredis.Miniredis, *RegistrationTokens) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewRegistrationTokens(store.NewRedisKV(client), zap.NewNop())
}

func TestRegistrationTokens_SingleUse(t *testing.T) {
	mr, tokens := setupTokens(t)
	ctx := context.Background()

	token, expiresAt, err := tokens.Issue(ctx, "u1", time.Hour)
	require.NoError(t, err)
	assert.Len(t, token, 32)
	assert.True(t, expiresAt.After(time.Now()))
	assert.True(t, mr.Exists(registrationKeyPrefix+token))

	userID, err := tokens.Consume(ctx, token, "guest@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)
	assert.False(t, mr.Exists(registrationKeyPrefix+token))

	_, err = tokens.Consume(ctx, token, "guest@example.com")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestRegistrationTokens_BadEmailKeepsToken(t *testing.T) {
	_, tokens := setupTokens(t)
	ctx := context.Background()
	token, _, err := tokens.Issue(ctx, "u1", time.Hour)
	require.NoError(t, err)

	_, err = tokens.Consume(ctx, token, "Guest <guest@example.com>")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	_, err = tokens.Consume(ctx, token, "not-an-email")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	userID, err := tokens.Consume(ctx, token, "guest@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)
}

func TestRegistrationTokens_Expiry(t *testing.T) {
	mr, tokens := setupTokens(t)
	ctx := context.Background()

	t.Run("kv ttl", func(t *testing.T) {
		token, _, err := tokens.Issue(ctx, "u1", time.Minute)
		require.NoError(t, err)
		mr.FastForward(2 * time.Minute)
		_, err = tokens.Consume(ctx, token, "a@example.com")
		assert.ErrorIs(t, err, domain.ErrInvalidToken)
	})

	t.Run("checked at read time", func(t *testing.T) {
		token, _, err := tokens.Issue(ctx, "u2", time.Minute)
		require.NoError(t, err)
		tokens.now = func() time.Time { return time.Now().Add(time.Hour) }
		defer func() { tokens.now = time.Now }()
		_, err = tokens.Consume(ctx, token, "a@example.com")
		assert.ErrorIs(t, err, domain.ErrInvalidToken)
	})
}

func TestRegistrationTokens_ReissueRevokesOlder(t *testing.T) {
	_, tokens := setupTokens(t)
	ctx := context.Background()

	first, _, err := tokens.Issue(ctx, "u1", time.Hour)
	require.NoError(t, err)
	other, _, err := tokens.Issue(ctx, "u2", time.Hour)
	require.NoError(t, err)
	second, _, err := tokens.Issue(ctx, "u1", time.Hour)
	require.NoError(t, err)

	_, err = tokens.Consume(ctx, first, "a@example.com")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
	userID, err := tokens.Consume(ctx, second, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)
	userID, err = tokens.Consume(ctx, other, "b@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u2", userID)
}

func TestRegistrationTokens_ConcurrentIssueLeavesOneLiveToken(t *testing.T) {
	mr, tokens := setupTokens(t)
	ctx := context.Background()

	const n = 8
	issued := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tok, _, err := tokens.Issue(ctx, "u1", time.Hour)
			assert.NoError(t, err)
			issued[i] = tok
		}(i)
	}
	wg.Wait()

	live := 0
	for _, tok := range issued {
		if mr.Exists(registrationKeyPrefix + tok) {
			live++
		}
	}
	assert.Equal(t, 1, live)

	current, err := mr.Get(registrationUserPrefix + "u1")
	require.NoError(t, err)
	assert.True(t, mr.Exists(registrationKeyPrefix+current))
}

func TestRegistrationTokens_RevokeForUser(t *testing.T) {
	mr, tokens := setupTokens(t)
	ctx := context.Background()

	require.NoError(t, tokens.RevokeForUser(ctx, "nobody"))

	token, _, err := tokens.Issue(ctx, "u1", time.Hour)
	require.NoError(t, err)
	require.NoError(t, tokens.RevokeForUser(ctx, "u1"))
	assert.False(t, mr.Exists(registrationUserPrefix+"u1"))

	_, err = tokens.Consume(ctx, token, "a@example.com")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestRegistrationTokens_IssueValidation(t *testing.T) {
	_, tokens := setupTokens(t)

	_, _, err := tokens.Issue(context.Background(), "", time.Hour)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	_, _, err = tokens.Issue(context.Background(), "u1", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	_, err = tokens.Consume(context.Background(), "", "a@example.com")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}
