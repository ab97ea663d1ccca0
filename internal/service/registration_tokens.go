package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"roomserve/internal/domain"
	"roomserve/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	registrationKeyPrefix = "registration:token:"
	// registration:user:<id> holds the user's current token
	registrationUserPrefix = "registration:user:"
)

type registrationEntry struct {
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// RegistrationTokens are one-time tokens handed to a new user to finish
// sign-up. They live in the shared KV so any instance can consume them.
type RegistrationTokens struct {
	kv     store.KV
	logger *zap.Logger
	now    func() time.Time
}

func NewRegistrationTokens(kv store.KV, logger *zap.Logger) *RegistrationTokens {
	return &RegistrationTokens{kv: kv, logger: logger, now: time.Now}
}

// Issue stores a fresh token for userID. Tokens issued earlier for the same
// user stop working; at most one token per user is live.
func (t *RegistrationTokens) Issue(ctx context.Context, userID string, ttl time.Duration) (string, time.Time, error) {
	if userID == "" {
		return "", time.Time{}, domain.Invalid("user id is required")
	}
	if ttl <= 0 {
		return "", time.Time{}, domain.Invalid("token ttl must be positive")
	}
	token := strings.ReplaceAll(uuid.NewString(), "-", "")
	expiresAt := t.now().Add(ttl).UTC()
	b, err := json.Marshal(registrationEntry{UserID: userID, ExpiresAt: expiresAt})
	if err != nil {
		return "", time.Time{}, err
	}
	if err := t.kv.Set(ctx, registrationKeyPrefix+token, string(b), ttl); err != nil {
		return "", time.Time{}, fmt.Errorf("store registration token: %w", err)
	}
	prev, err := t.kv.Swap(ctx, registrationUserPrefix+userID, token, ttl)
	if err != nil && !errors.Is(err, store.ErrMiss) {
		_ = t.kv.Del(ctx, registrationKeyPrefix+token)
		return "", time.Time{}, fmt.Errorf("record registration token: %w", err)
	}
	if prev != "" && prev != token {
		if err := t.kv.Del(ctx, registrationKeyPrefix+prev); err != nil {
			return "", time.Time{}, fmt.Errorf("revoke previous registration token: %w", err)
		}
	}
	return token, expiresAt, nil
}

// Consume redeems token once. Unknown, reused and expired tokens all fail
// with domain.ErrInvalidToken; a malformed email fails before the token is spent.
func (t *RegistrationTokens) Consume(ctx context.Context, token, email string) (string, error) {
	if err := domain.ValidateEmail(email); err != nil {
		return "", err
	}
	if token == "" {
		return "", domain.ErrInvalidToken
	}

	raw, err := t.kv.GetDel(ctx, registrationKeyPrefix+token)
	if err != nil {
		if errors.Is(err, store.ErrMiss) {
			return "", domain.ErrInvalidToken
		}
		return "", fmt.Errorf("load registration token: %w", err)
	}

	var entry registrationEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		t.logger.Warn("corrupt registration token entry", zap.Error(err))
		return "", domain.ErrInvalidToken
	}
	// the KV TTL is not trusted alone
	if !t.now().Before(entry.ExpiresAt) {
		return "", domain.ErrInvalidToken
	}
	return entry.UserID, nil
}

// RevokeForUser drops the outstanding token of userID, if any.
func (t *RegistrationTokens) RevokeForUser(ctx context.Context, userID string) error {
	token, err := t.kv.GetDel(ctx, registrationUserPrefix+userID)
	if err != nil {
		if errors.Is(err, store.ErrMiss) {
			return nil
		}
		return fmt.Errorf("load registration pointer: %w", err)
	}
	return t.kv.Del(ctx, registrationKeyPrefix+token)
}
