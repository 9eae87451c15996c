package metrics

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"instaapp/internal/config"
)

func TestNormalizePath(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"/api/posts":              "/api/posts",
		"/api/posts/me":           "/api/posts/me",
		"/api/posts/42":           "/api/posts/:id",
		"/api/posts/42/like":      "/api/posts/:id/like",
		"/api/posts/42/comment/7": "/api/posts/:id/comment/:id",
		"/api/posts/42/comments":  "/api/posts/:id/comments",
		"/":                       "/",
	}

	for in, want := range cases {
		require.Equal(t, want, normalizePath(in), in)
	}
}

func TestObserveAction(t *testing.T) {
	t.Parallel()

	before := testutil.ToFloat64(actions.WithLabelValues("test.like", "failure"))
	ObserveAction("test.like", errors.New("boom"))
	ObserveAction("test.like", nil)

	require.InDelta(t, before+1, testutil.ToFloat64(actions.WithLabelValues("test.like", "failure")), 0.001)
}

func TestServer(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("disabled", func(t *testing.T) {
		t.Parallel()

		s := &Server{Logger: logger, Config: &config.Config{}}
		require.NoError(t, s.Init(context.Background()))
		require.Empty(t, s.Addr())
		require.NoError(t, s.Shutdown(context.Background()))
	})

	t.Run("serves metrics", func(t *testing.T) {
		t.Parallel()

		s := &Server{Logger: logger, Config: &config.Config{MetricsAddr: "127.0.0.1:0"}}
		require.NoError(t, s.Init(context.Background()))
		t.Cleanup(func() { _ = s.Shutdown(context.Background()) })

		ObserveAction("test.serve", nil)

		res, err := http.Get("http://" + s.Addr() + "/metrics")
		require.NoError(t, err)
		defer res.Body.Close()

		body, err := io.ReadAll(res.Body)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, res.StatusCode)
		require.Contains(t, string(body), "instaapp_actions_total")
	})
}
