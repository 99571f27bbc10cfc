package handlers

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/r2r72/newsletter/internal/startup"
)

// spawnApp runs the full router on a loopback ephemeral port and returns its
// base URL.
func spawnApp(t *testing.T) string {
	t.Helper()

	ln, err := startup.Listen(startup.DefaultAddr)
	require.NoError(t, err, "failed to bind random address")

	srv := startup.Run(ln, newTestRouter(nil, Options{MaxFormBytes: 16 << 10}), startup.Options{Logger: discardLogger()})
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	})
	return srv.URL()
}

func TestServer_HealthCheckWorks(t *testing.T) {
	addr := spawnApp(t)

	resp, err := http.Get(addr + "/health_check")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, body)
	assert.Equal(t, int64(0), resp.ContentLength)
}

func TestServer_SubscribeReturns200ForValidFormData(t *testing.T) {
	addr := spawnApp(t)

	resp, err := http.PostForm(addr+"/subscriptions", url.Values{
		"name":  {"le guin"},
		"email": {"ursula_le_guin@gmail.com"},
	})
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_SubscribeReturns400WhenDataIsMissing(t *testing.T) {
	addr := spawnApp(t)

	cases := map[string]url.Values{
		"missing the email": {"name": {"le guin"}},
		"missing the name":  {"email": {"ursula_le_guin@gmail.com"}},
		"missing both":      {},
	}
	for desc, form := range cases {
		resp, err := http.PostForm(addr+"/subscriptions", form)
		require.NoError(t, err)
		resp.Body.Close()

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "payload was %s", desc)
	}
}
