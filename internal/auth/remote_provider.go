package auth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

type verifyRequest struct {
	Token string `json:"token"`
}

type verifyResponse struct {
	Valid  bool   `json:"valid"`
	UserID string `json:"user_id"`
	Reason string `json:"reason,omitempty"`
}

// RemoteProvider asks an external auth service to verify the credential.
type RemoteProvider struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

func NewRemoteProvider(baseURL string, timeout time.Duration, logger *zap.Logger) *RemoteProvider {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(1 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	// only transport failures and 5xx are worth retrying
	client.AddRetryCondition(func(r *resty.Response, err error) bool {
		return err != nil || r.StatusCode() >= http.StatusInternalServerError
	})
	return &RemoteProvider{httpClient: client, logger: logger}
}

var _ Provider = (*RemoteProvider)(nil)

func (p *RemoteProvider) Verify(ctx context.Context, credential string) (string, error) {
	var out verifyResponse
	resp, err := p.httpClient.R().
		SetContext(ctx).
		SetBody(verifyRequest{Token: credential}).
		SetResult(&out).
		Post("/auth/verify")
	if err != nil {
		p.logger.Error("auth provider call failed", zap.Error(err))
		return "", fmt.Errorf("call auth provider: %w", err)
	}

	switch {
	case resp.StatusCode() == http.StatusUnauthorized || resp.StatusCode() == http.StatusForbidden:
		return "", ErrInvalidCredential
	case resp.IsError():
		p.logger.Error("auth provider returned error", zap.Int("status_code", resp.StatusCode()))
		return "", fmt.Errorf("auth provider status %d", resp.StatusCode())
	}

	if !out.Valid || out.UserID == "" {
		return "", fmt.Errorf("%w: %s", ErrInvalidCredential, out.Reason)
	}
	return out.UserID, nil
}
