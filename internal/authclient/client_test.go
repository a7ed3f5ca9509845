package authclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefresh(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/refresh", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		rc, err := r.Cookie("refreshToken")
		switch {
		case err != nil || rc.Value == "revoked":
			w.WriteHeader(http.StatusUnauthorized)
		case rc.Value == "broken":
			w.WriteHeader(http.StatusBadGateway)
		case rc.Value == "empty":
			_, _ = w.Write([]byte(`{"access_exp": 10}`))
		default:
			_, _ = w.Write([]byte(`{"access_token":"a2","refresh_token":"r2","access_exp":10,"refresh_exp":20}`))
		}
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL + "/")

	got, err := c.Refresh(context.Background(), "r1", "a1")
	require.NoError(t, err)
	assert.Equal(t, "a2", got.Access)
	assert.Equal(t, "r2", got.Refresh)
	assert.True(t, got.AccessExpires.Equal(time.Unix(10, 0)))
	assert.True(t, got.RefreshExpires.Equal(time.Unix(20, 0)))

	_, err = c.Refresh(context.Background(), "revoked", "a1")
	assert.ErrorIs(t, err, ErrRejected)

	_, err = c.Refresh(context.Background(), "broken", "a1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrRejected)
	assert.Contains(t, err.Error(), "502")

	_, err = c.Refresh(context.Background(), "empty", "")
	assert.ErrorContains(t, err, "without tokens")
}
