package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const defaultTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"

// GoogleIdentity is the verified subset of a Google ID token.
type GoogleIdentity struct {
	Subject string
	Email   string
	Name    string
	Picture string
}

// GoogleVerifier checks a Google ID token.
type GoogleVerifier interface {
	Verify(ctx context.Context, credential string) (*GoogleIdentity, error)
}

// TokenInfoVerifier validates ID tokens with Google's tokeninfo endpoint.
type TokenInfoVerifier struct {
	ClientID string
	Endpoint string
	Client   *http.Client
}

func NewTokenInfoVerifier(clientID string) *TokenInfoVerifier {
	return &TokenInfoVerifier{
		ClientID: clientID,
		Endpoint: defaultTokenInfoURL,
		Client:   &http.Client{Timeout: 10 * time.Second},
	}
}

type tokenInfo struct {
	Audience      string `json:"aud"`
	Subject       string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified string `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

func (v *TokenInfoVerifier) Verify(ctx context.Context, credential string) (*GoogleIdentity, error) {
	endpoint := v.Endpoint + "?" + url.Values{"id_token": {credential}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build tokeninfo request: %w", err)
	}
	resp, err := v.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call tokeninfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tokeninfo rejected credential: status %d", resp.StatusCode)
	}
	var info tokenInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode tokeninfo: %w", err)
	}
	if info.Audience != v.ClientID {
		return nil, fmt.Errorf("token issued for another client")
	}
	if info.Subject == "" || info.Email == "" || info.EmailVerified != "true" {
		return nil, fmt.Errorf("token lacks a verified email")
	}
	return &GoogleIdentity{
		Subject: info.Subject,
		Email:   info.Email,
		Name:    info.Name,
		Picture: info.Picture,
	}, nil
}
