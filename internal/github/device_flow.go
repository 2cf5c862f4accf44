package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	deviceCodeURL  = "https://github.com/login/device/code"
	accessTokenURL = "https://github.com/login/oauth/access_token"

	deviceGrantType = "urn:ietf:params:oauth:grant-type:device_code"
)

// DeviceAuthorization is the code pair a user needs to authorize the app
type DeviceAuthorization struct {
	DeviceCode      string    `json:"deviceCode"`
	UserCode        string    `json:"userCode"`
	VerificationURI string    `json:"verificationUri"`
	ExpiresAt       time.Time `json:"expiresAt"`
	Interval        int       `json:"interval"`
}

type deviceCodeResponse struct {
	DeviceCode      string `json:"device_code"`
	UserCode        string `json:"user_code"`
	VerificationURI string `json:"verification_uri"`
	ExpiresIn       int    `json:"expires_in"`
	Interval        int    `json:"interval"`
}

type accessTokenResponse struct {
	AccessToken      string `json:"access_token"`
	TokenType        string `json:"token_type"`
	Scope            string `json:"scope"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// DeviceFlow drives GitHub's OAuth device flow over plain HTTP
type DeviceFlow struct {
	clientID   string
	codeURL    string
	tokenURL   string
	httpClient *http.Client
}

func NewDeviceFlow(clientID string) *DeviceFlow {
	return &DeviceFlow{
		clientID:   clientID,
		codeURL:    deviceCodeURL,
		tokenURL:   accessTokenURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// RequestCode requests a device code / user code pair and verification URL
func (f *DeviceFlow) RequestCode(ctx context.Context) (*DeviceAuthorization, error) {
	form := url.Values{}
	form.Set("client_id", f.clientID)
	form.Set("scope", "repo read:user user:email")

	var resp deviceCodeResponse
	if err := f.postForm(ctx, f.codeURL, form, &resp); err != nil {
		return nil, fmt.Errorf("failed to request device code: %w", err)
	}
	if resp.DeviceCode == "" {
		return nil, fmt.Errorf("device code response missing device_code")
	}

	return &DeviceAuthorization{
		DeviceCode:      resp.DeviceCode,
		UserCode:        resp.UserCode,
		VerificationURI: resp.VerificationURI,
		ExpiresAt:       time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second),
		Interval:        resp.Interval,
	}, nil
}

// PollToken attempts one exchange of the device code for an access token.
// An "authorization pending" answer from GitHub is not an error: it returns
// an empty token, and the caller is expected to poll again after the
// authorization interval. "slow_down" is treated the same way.
func (f *DeviceFlow) PollToken(ctx context.Context, deviceCode string) (string, error) {
	form := url.Values{}
	form.Set("client_id", f.clientID)
	form.Set("device_code", deviceCode)
	form.Set("grant_type", deviceGrantType)

	var resp accessTokenResponse
	if err := f.postForm(ctx, f.tokenURL, form, &resp); err != nil {
		return "", fmt.Errorf("failed to poll for access token: %w", err)
	}

	switch resp.Error {
	case "":
		if resp.AccessToken == "" {
			return "", fmt.Errorf("token response missing access_token")
		}
		return resp.AccessToken, nil
	case "authorization_pending", "slow_down":
		return "", nil
	default:
		return "", fmt.Errorf("device flow failed: %s (%s)", resp.Error, resp.ErrorDescription)
	}
}

func (f *DeviceFlow) postForm(ctx context.Context, endpoint string, form url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GitHub returned status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	return json.Unmarshal(body, out)
}
