package gateway_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"instaapp/internal/apitest"
	"instaapp/internal/config"
	"instaapp/internal/core"
	"instaapp/internal/gateway"
	"instaapp/pkg/instaapi"

	"github.com/stretchr/testify/require"
)

var _ core.API = &gateway.Gateway{}

func TestGateway(t *testing.T) {
	t.Parallel()

	srv := apitest.New(t)
	user := srv.AddUser("Jane Doe", "jane")
	token := srv.Token(user.ID)

	g := &gateway.Gateway{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Config: &config.Config{APIURL: srv.URL, Timeout: time.Second},
	}
	require.NoError(t, g.Init(context.Background()))
	t.Cleanup(func() { _ = g.Shutdown(context.Background()) })

	g.SetTokenSource(instaapi.TokenFunc(func() string { return token }))

	me, err := g.Me(context.Background())
	require.NoError(t, err)
	require.Equal(t, user.ID, me.ID)
	require.Equal(t, 1, srv.Hits("GET /me"))
}
