package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// ============================================
// JWT
// ============================================

func TestJWTProvider_IssueAndVerify(t *testing.T) {
	p := NewJWTProvider("s3cret", "roomserve")

	tok, err := p.Issue("u1", time.Hour)
	require.NoError(t, err)

	sub, err := p.Verify(context.Background(), tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", sub)
}

func TestJWTProvider_Rejects(t *testing.T) {
	p := NewJWTProvider("s3cret", "roomserve")
	ctx := context.Background()

	expired, err := p.Issue("u1", -time.Minute)
	require.NoError(t, err)
	_, err = p.Verify(ctx, expired)
	assert.ErrorIs(t, err, ErrInvalidCredential)

	other, _ := NewJWTProvider("other", "roomserve").Issue("u1", time.Hour)
	_, err = p.Verify(ctx, other)
	assert.ErrorIs(t, err, ErrInvalidCredential)

	wrongIssuer, _ := NewJWTProvider("s3cret", "elsewhere").Issue("u1", time.Hour)
	_, err = p.Verify(ctx, wrongIssuer)
	assert.ErrorIs(t, err, ErrInvalidCredential)

	_, err = p.Verify(ctx, "not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidCredential)

	noExp := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: "u1", Issuer: "roomserve"}})
	signed, err := noExp.SignedString([]byte("s3cret"))
	require.NoError(t, err)
	_, err = p.Verify(ctx, signed)
	assert.ErrorIs(t, err, ErrInvalidCredential)
}

func TestJWTProvider_IssueRequiresUser(t *testing.T) {
	_, err := NewJWTProvider("s", "i").Issue("", time.Hour)
	assert.Error(t, err)
}

// ============================================
// Remote
// ============================================

func TestRemoteProvider_Verify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body verifyRequest
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		switch body.Token {
		case "good":
			_ = json.NewEncoder(w).Encode(verifyResponse{Valid: true, UserID: "u1"})
		case "revoked":
			_ = json.NewEncoder(w).Encode(verifyResponse{Valid: false, Reason: "revoked"})
		default:
			w.WriteHeader(http.StatusUnauthorized)
		}
	}))
	defer srv.Close()

	p := NewRemoteProvider(srv.URL, time.Second, zap.NewNop())
	ctx := context.Background()

	sub, err := p.Verify(ctx, "good")
	require.NoError(t, err)
	assert.Equal(t, "u1", sub)

	_, err = p.Verify(ctx, "revoked")
	assert.ErrorIs(t, err, ErrInvalidCredential)

	_, err = p.Verify(ctx, "unknown")
	assert.ErrorIs(t, err, ErrInvalidCredential)
}

func TestRemoteProvider_ServerErrorRetriedThenFails(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	p := NewRemoteProvider(srv.URL, time.Second, zap.NewNop())
	_, err := p.Verify(context.Background(), "good")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredential)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}
