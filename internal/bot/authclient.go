package bot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"cashgram/internal/models"
)

// ErrInvalidCredentials is returned when the login endpoint rejects the
// phone/password pair.
var ErrInvalidCredentials = errors.New("invalid credentials")

// LoginResult is what a successful login yields.
type LoginResult struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
}

// Authenticator verifies credentials and issues a token.
type Authenticator interface {
	Login(ctx context.Context, phone, password string) (*LoginResult, error)
}

// HTTPAuthenticator calls the service's own POST /auth/login endpoint.
type HTTPAuthenticator struct {
	baseURL string
	client  *http.Client
}

// NewHTTPAuthenticator creates an authenticator for baseURL with the given
// request timeout.
func NewHTTPAuthenticator(baseURL string, timeout time.Duration) *HTTPAuthenticator {
	return &HTTPAuthenticator{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Login posts the credentials and decodes the {user, token} response.
func (a *HTTPAuthenticator) Login(ctx context.Context, phone, password string) (*LoginResult, error) {
	body, err := json.Marshal(map[string]string{"phone": phone, "password": password})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/auth/login", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("login request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusBadRequest:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, ErrInvalidCredentials
	case resp.StatusCode != http.StatusOK:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("login request: unexpected status %d", resp.StatusCode)
	}

	var result LoginResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode login response: %w", err)
	}
	if result.Token == "" || result.User.ID == 0 {
		return nil, errors.New("login response missing token or user")
	}
	return &result, nil
}
