package challenge

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyChallengeBypassWithoutSecret(t *testing.T) {
	verifier := NewTurnstileVerifier("", "http://unused.invalid")

	ok, err := verifier.VerifyChallenge(context.Background(), "any-token", "1.2.3.4")

	assert.NoError(t, err)
	assert.True(t, ok)
}

func TestVerifyChallengeSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "secret-key", r.PostForm.Get("secret"))
		assert.Equal(t, "token-123", r.PostForm.Get("response"))
		assert.Equal(t, "1.2.3.4", r.PostForm.Get("remoteip"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success": true}`))
	}))
	defer server.Close()

	verifier := NewTurnstileVerifier("secret-key", server.URL)

	ok, err := verifier.VerifyChallenge(context.Background(), "token-123", "1.2.3.4")

	assert.NoError(t, err)
	assert.True(t, ok)
}

func TestVerifyChallengeRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success": false, "error-codes": ["invalid-input-response"]}`))
	}))
	defer server.Close()

	verifier := NewTurnstileVerifier("secret-key", server.URL)

	ok, err := verifier.VerifyChallenge(context.Background(), "bad-token", "")

	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyChallengeServiceUnreachable(t *testing.T) {
	verifier := NewTurnstileVerifier("secret-key", "http://127.0.0.1:1/siteverify")

	ok, err := verifier.VerifyChallenge(context.Background(), "token", "")

	assert.Error(t, err)
	assert.False(t, ok)
}
