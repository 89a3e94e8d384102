package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const (
	DouyinExchangeURL = "https://open.douyin.com/oauth/access_token/"
	DouyinUserInfoURL = "https://open.douyin.com/oauth/userinfo/"
)

var (
	ErrDouyinConfigMissing = errors.New("douyin config missing")
	ErrExchangeFailed      = errors.New("douyin exchange failed")
)

type DouyinConfig struct {
	ClientKey    string
	ClientSecret string
	ExchangeURL  string
	UserInfoURL  string
	Timeout      time.Duration
}

// DouyinToken is the part of the code exchange response we use.
type DouyinToken struct {
	AccessToken string `json:"access_token"`
	OpenID      string `json:"open_id"`
	ExpiresIn   int64  `json:"expires_in,omitempty"`
}

type DouyinClient struct {
	cfg        DouyinConfig
	httpClient *http.Client
}

func NewDouyinClient(cfg DouyinConfig) *DouyinClient {
	if cfg.ExchangeURL == "" {
		cfg.ExchangeURL = DouyinExchangeURL
	}
	if cfg.UserInfoURL == "" {
		cfg.UserInfoURL = DouyinUserInfoURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &DouyinClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *DouyinClient) ExchangeCode(ctx context.Context, code string) (DouyinToken, error) {
	if c.cfg.ClientKey == "" || c.cfg.ClientSecret == "" {
		return DouyinToken{}, ErrDouyinConfigMissing
	}

	params := url.Values{}
	params.Set("client_key", c.cfg.ClientKey)
	params.Set("client_secret", c.cfg.ClientSecret)
	params.Set("code", code)
	params.Set("grant_type", "authorization_code")

	var token DouyinToken
	if err := c.get(ctx, c.cfg.ExchangeURL, params, &token); err != nil {
		return DouyinToken{}, fmt.Errorf("exchange code: %w", err)
	}

	if token.AccessToken == "" || token.OpenID == "" {
		return DouyinToken{}, ErrExchangeFailed
	}
	return token, nil
}

// UserInfo returns the raw profile object; nickname and avatar are the keys
// the app relies on.
func (c *DouyinClient) UserInfo(ctx context.Context, accessToken, openID string) (map[string]any, error) {
	params := url.Values{}
	params.Set("access_token", accessToken)
	params.Set("open_id", openID)

	profile := map[string]any{}
	if err := c.get(ctx, c.cfg.UserInfoURL, params, &profile); err != nil {
		return nil, fmt.Errorf("fetch userinfo: %w", err)
	}
	return profile, nil
}

// get issues a GET and decodes the "data" envelope when present, the body
// otherwise.
func (c *DouyinClient) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	raw := json.RawMessage{}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && hasObject(envelope.Data) {
		raw = envelope.Data
	}

	return json.Unmarshal(raw, out)
}

func hasObject(data json.RawMessage) bool {
	var probe map[string]any
	return len(data) > 0 && json.Unmarshal(data, &probe) == nil && len(probe) > 0
}
