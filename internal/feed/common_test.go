package feed_test

import (
	"context"
	"sync"
	"testing"

	"instaapp/internal/apitest"
	"instaapp/internal/feed"
	"instaapp/pkg/instaapi"

	"github.com/stretchr/testify/require"
)

type viewer struct {
	user *instaapi.User
}

func (v viewer) CurrentUser() *instaapi.User {
	return v.user
}

type notes struct {
	mu        sync.Mutex
	successes []string
	errors    []string
}

func (n *notes) Success(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.successes = append(n.successes, message)
}

func (n *notes) Error(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.errors = append(n.errors, message)
}

func (n *notes) Errors() []string {
	n.mu.Lock()
	defer n.mu.Unlock()

	return append([]string(nil), n.errors...)
}

func (n *notes) Successes() []string {
	n.mu.Lock()
	defer n.mu.Unlock()

	return append([]string(nil), n.successes...)
}

type fixture struct {
	srv   *apitest.Server
	user  instaapi.User
	other instaapi.User
	notes *notes
	feed  *feed.Feed
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	srv := apitest.New(t)
	user := srv.AddUser("Jane Doe", "jane")
	other := srv.AddUser("John Roe", "john")

	client := srv.Client(t)
	token := srv.Token(user.ID)
	client.SetTokenSource(instaapi.TokenFunc(func() string { return token }))

	f := &fixture{
		srv:   srv,
		user:  user,
		other: other,
		notes: &notes{},
	}
	f.feed = feed.New(client, viewer{user: &user}, f.notes)
	return f
}

func (f *fixture) mount(t *testing.T, mode feed.Mode) {
	t.Helper()

	require.NoError(t, f.feed.Mount(context.Background(), mode))
}
