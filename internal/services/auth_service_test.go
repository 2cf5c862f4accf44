package services

import (
	"context"
	"errors"
	"testing"
	"time"

	githubclient "github.com/alimgiray/reviewdesk/internal/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDeviceFlow struct {
	authorization *githubclient.DeviceAuthorization
	token         string
	pollErr       error
	pollCalls     int
}

func (f *fakeDeviceFlow) RequestCode(ctx context.Context) (*githubclient.DeviceAuthorization, error) {
	return f.authorization, nil
}

func (f *fakeDeviceFlow) PollToken(ctx context.Context, deviceCode string) (string, error) {
	f.pollCalls++
	return f.token, f.pollErr
}

func TestStartAuthenticationReturnsUserCode(t *testing.T) {
	flow := &fakeDeviceFlow{authorization: &githubclient.DeviceAuthorization{
		DeviceCode:      "dev-123",
		UserCode:        "ABCD-1234",
		VerificationURI: "https://github.com/login/device",
		ExpiresAt:       time.Now().Add(15 * time.Minute),
		Interval:        5,
	}}
	svc := NewAuthService(flow, nil, nil, nil, nil)

	auth, err := svc.StartAuthentication(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ABCD-1234", auth.UserCode)
	assert.Equal(t, "https://github.com/login/device", auth.VerificationURI)
}

func TestCompleteAuthenticationPending(t *testing.T) {
	flow := &fakeDeviceFlow{token: ""}
	svc := NewAuthService(flow, nil, nil, nil, nil)

	done, err := svc.CompleteAuthentication(context.Background(), "dev-123")
	require.NoError(t, err)
	assert.False(t, done, "a pending authorization is not an error")
	assert.False(t, svc.IsAuthenticated())
	assert.Equal(t, 1, flow.pollCalls)
}

func TestCompleteAuthenticationDenied(t *testing.T) {
	flow := &fakeDeviceFlow{pollErr: errors.New("access_denied: user cancelled")}
	svc := NewAuthService(flow, nil, nil, nil, nil)

	done, err := svc.CompleteAuthentication(context.Background(), "dev-123")
	require.Error(t, err)
	assert.False(t, done)
	assert.False(t, svc.IsAuthenticated())
}

func TestIsAuthenticatedTracksToken(t *testing.T) {
	svc := &AuthService{}
	assert.False(t, svc.IsAuthenticated())
	assert.Nil(t, svc.CurrentUser())

	svc.token = "gho_token"
	assert.True(t, svc.IsAuthenticated())
}

func TestOnAuthenticationChangedFires(t *testing.T) {
	svc := &AuthService{}
	var seen []bool
	svc.OnAuthenticationChanged(func(authenticated bool) {
		seen = append(seen, authenticated)
	})

	svc.notifyAuthChanged(true)
	svc.notifyAuthChanged(false)
	assert.Equal(t, []bool{true, false}, seen)
}
