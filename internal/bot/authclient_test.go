package bot

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loginServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPAuthenticatorSuccess(t *testing.T) {
	srv := loginServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/login", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "+6281111111111", body["phone"])
		assert.Equal(t, "abc12345", body["password"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"user":{"id":7,"phone":"+6281111111111","name":"Budi"},"token":"tok"}`))
	})

	a := NewHTTPAuthenticator(srv.URL+"/", time.Second)
	res, err := a.Login(context.Background(), "+6281111111111", "abc12345")
	require.NoError(t, err)
	assert.Equal(t, int64(7), res.User.ID)
	assert.Equal(t, "Budi", res.User.Name)
	assert.Equal(t, "tok", res.Token)
}

func TestHTTPAuthenticatorRejected(t *testing.T) {
	srv := loginServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"Invalid credentials"}`, http.StatusUnauthorized)
	})

	_, err := NewHTTPAuthenticator(srv.URL, time.Second).Login(context.Background(), "+62811", "x")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestHTTPAuthenticatorServerError(t *testing.T) {
	srv := loginServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"Database connection failed"}`, http.StatusServiceUnavailable)
	})

	_, err := NewHTTPAuthenticator(srv.URL, time.Second).Login(context.Background(), "+62811", "x")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrInvalidCredentials))
}

func TestHTTPAuthenticatorMissingToken(t *testing.T) {
	srv := loginServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"user":{"id":7}}`))
	})

	_, err := NewHTTPAuthenticator(srv.URL, time.Second).Login(context.Background(), "+62811", "x")
	assert.Error(t, err)
}

func TestHTTPAuthenticatorTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := loginServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	_, err := NewHTTPAuthenticator(srv.URL, 50*time.Millisecond).Login(context.Background(), "+62811", "x")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrInvalidCredentials))
}
