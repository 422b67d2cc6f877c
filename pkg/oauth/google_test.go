package oauth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenInfoServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.URL.Query().Get("id_token"))
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func TestGoogleVerify(t *testing.T) {
	srv := tokenInfoServer(t, http.StatusOK, `{
		"aud": "client-1",
		"sub": "google-sub-1",
		"email": "ana@example.com",
		"email_verified": "true",
		"name": "Ana",
		"picture": "https://lh3.example.com/p.jpg"
	}`)
	defer srv.Close()

	v := NewGoogleVerifier("client-1")
	v.baseURL = srv.URL

	id, err := v.Verify(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, ProviderGoogle, id.Provider)
	assert.Equal(t, "google-sub-1", id.Subject)
	assert.Equal(t, "ana@example.com", id.Email)
	assert.Equal(t, "Ana", id.Name)
	assert.Equal(t, "https://lh3.example.com/p.jpg", id.Picture)
}

func TestGoogleVerifyRejectsWrongAudience(t *testing.T) {
	srv := tokenInfoServer(t, http.StatusOK, `{
		"aud": "someone-else",
		"sub": "google-sub-1",
		"email": "ana@example.com",
		"email_verified": "true"
	}`)
	defer srv.Close()

	v := NewGoogleVerifier("client-1")
	v.baseURL = srv.URL

	_, err := v.Verify(context.Background(), "tok")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestGoogleVerifyRejectsUnverifiedEmail(t *testing.T) {
	srv := tokenInfoServer(t, http.StatusOK, `{
		"aud": "client-1",
		"sub": "google-sub-1",
		"email": "ana@example.com",
		"email_verified": "false"
	}`)
	defer srv.Close()

	v := NewGoogleVerifier("client-1")
	v.baseURL = srv.URL

	_, err := v.Verify(context.Background(), "tok")
	assert.ErrorIs(t, err, ErrEmailNotVerified)
}

func TestGoogleVerifyRejectsBadToken(t *testing.T) {
	srv := tokenInfoServer(t, http.StatusBadRequest, `{"error":"invalid_token"}`)
	defer srv.Close()

	v := NewGoogleVerifier("client-1")
	v.baseURL = srv.URL

	_, err := v.Verify(context.Background(), "tok")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
