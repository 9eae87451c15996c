package ui_test

import (
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"instaapp/internal/ui"

	"github.com/stretchr/testify/require"
)

func TestShell_Browse(t *testing.T) {
	t.Parallel()

	t.Run("renders the first page and stops at the end", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.srv.AddPost(f.other.ID, "hello world")
		f.run(t)

		f.eventually(t, "hello world")
		f.eventually(t, "No more posts.")

		f.in.send(t, "more")
		require.Eventually(t, func() bool {
			return strings.Count(f.out.String(), "No more posts.") == 2
		}, 5*time.Second, pollInterval)
		require.Equal(t, 1, f.srv.Hits("GET /posts"))

		f.in.send(t, "quit")
		require.NoError(t, f.wait(t))
	})

	t.Run("more renders the next page only", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.srv.AddPosts(f.other.ID, 12)
		f.run(t)

		f.eventually(t, "-- explore --")
		require.Eventually(t, func() bool {
			return strings.Count(f.out.String(), "@john") == 10
		}, 5*time.Second, pollInterval)

		f.in.send(t, "more")
		f.eventually(t, "No more posts.")
		require.Equal(t, 12, strings.Count(f.out.String(), "@john"))

		f.in.send(t, "exit")
		require.NoError(t, f.wait(t))
	})

	t.Run("finished loads are not kept around", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.srv.AddPosts(f.other.ID, 35)
		f.run(t)

		for page := 1; page <= 3; page++ {
			want := page * 10
			require.Eventually(t, func() bool {
				return strings.Count(f.out.String(), "@john") == want
			}, 5*time.Second, pollInterval)
			require.Equal(t, 1, f.shell.Jobs())

			f.in.send(t, "more")
		}

		f.eventually(t, "No more posts.")
		require.Equal(t, 1, f.shell.Jobs())

		f.in.send(t, "quit")
		require.NoError(t, f.wait(t))
	})

	t.Run("a second more while loading is refused", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.srv.AddPosts(f.other.ID, 12)
		f.run(t)
		f.eventually(t, "-- explore --")

		entered, release := f.srv.Block("GET /posts")
		f.in.send(t, "more")
		<-entered

		f.in.send(t, "more")
		f.eventually(t, "Already loading.")

		release()
		f.eventually(t, "No more posts.")
		require.Equal(t, 2, f.srv.Hits("GET /posts"))

		f.in.send(t, "quit")
		require.NoError(t, f.wait(t))
	})

	t.Run("switches to the user's posts", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.srv.AddPost(f.other.ID, "theirs")
		f.srv.AddPost(f.user.ID, "mine only")
		f.run(t)
		f.eventually(t, "theirs")

		f.in.send(t, "mode mine")
		f.eventually(t, "-- mine --")
		require.Eventually(t, func() bool {
			_, mine, _ := strings.Cut(f.out.String(), "-- mine --")
			return strings.Contains(mine, "mine only") && strings.Contains(mine, "(you)")
		}, 5*time.Second, pollInterval)

		_, mine, _ := strings.Cut(f.out.String(), "-- mine --")
		require.NotContains(t, mine, "theirs")

		f.in.send(t, "mode friends")
		f.eventually(t, "Usage: mode explore|mine")

		f.in.send(t, "quit")
		require.NoError(t, f.wait(t))
	})
}

func TestShell_Posts(t *testing.T) {
	t.Parallel()

	t.Run("likes a post", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		post := f.srv.AddPost(f.other.ID, "likeable")
		f.run(t)
		f.eventually(t, "likeable")

		f.in.send(t, fmt.Sprintf("like %d", post.ID))
		f.eventually(t, "♥ 1 like")

		got, ok := f.srv.Post(post.ID, f.user.ID)
		require.True(t, ok)
		require.True(t, got.IsLiked)

		f.in.send(t, "quit")
		require.NoError(t, f.wait(t))
	})

	t.Run("refuses to edit posts of other users", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		post := f.srv.AddPost(f.other.ID, "not yours")
		f.run(t)
		f.eventually(t, "not yours")

		f.in.send(t, fmt.Sprintf("edit %d mine now", post.ID))
		f.eventually(t, "You can only modify your own posts.")
		require.Equal(t, 0, f.srv.Hits("PUT /posts/{id}"))

		f.in.send(t, "edit 999 caption")
		f.eventually(t, "The post #999 is not loaded.")

		f.in.send(t, "edit x caption")
		f.eventually(t, `Expected an item id, got "x".`)

		f.in.send(t, "quit")
		require.NoError(t, f.wait(t))
	})

	t.Run("deletes only after confirmation", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		post := f.srv.AddPost(f.user.ID, "short lived")
		f.run(t)
		f.eventually(t, "short lived")

		f.in.send(t, fmt.Sprintf("delete %d", post.ID))
		f.in.send(t, "n")
		f.in.send(t, "help")
		f.eventually(t, "Commands:")
		require.Equal(t, 0, f.srv.Hits("DELETE /posts/{id}"))

		f.in.send(t, fmt.Sprintf("delete %d", post.ID))
		f.in.send(t, "y")
		f.eventually(t, "✓ Post deleted successfully")

		_, ok := f.srv.Post(post.ID, f.user.ID)
		require.False(t, ok)
		require.Equal(t, ui.Prompt, f.in.Prompt())

		f.in.send(t, "quit")
		require.NoError(t, f.wait(t))
	})

	t.Run("reports invalid posts", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.run(t)
		f.eventually(t, "No more posts.")

		f.in.send(t, "post")
		f.eventually(t, "Invalid input:")
		f.eventually(t, "Either caption or image is required.")
		require.Equal(t, 0, f.srv.Hits("POST /posts"))

		f.in.send(t, "post fresh caption")
		f.eventually(t, "fresh caption")
		f.eventually(t, "✓ Post created successfully")

		f.in.send(t, "quit")
		require.NoError(t, f.wait(t))
	})

	t.Run("unknown commands", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.run(t)

		f.in.send(t, "dance")
		f.eventually(t, `Unknown command "dance".`)

		f.in.send(t, "whoami")
		f.eventually(t, "Jane Doe @jane")

		f.in.send(t, "quit")
		require.NoError(t, f.wait(t))
	})
}

func TestShell_Comments(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	post := f.srv.AddPost(f.other.ID, "discussed")
	f.srv.AddComment(post.ID, f.other.ID, "first!")
	f.run(t)
	f.eventually(t, "discussed")

	f.in.send(t, fmt.Sprintf("comments %d", post.ID))
	f.eventually(t, fmt.Sprintf("-- comments on #%d (1) --", post.ID))
	f.eventually(t, "first!")
	require.Equal(t, fmt.Sprintf("comments #%d> ", post.ID), f.in.Prompt())

	f.in.send(t, "add")
	f.eventually(t, "Comment is required")

	f.in.send(t, "add nice shot")
	f.eventually(t, "nice shot")
	require.Len(t, f.srv.Comments(post.ID), 2)

	f.in.send(t, "back")
	f.in.send(t, "help")
	f.eventually(t, "Commands:")
	require.Equal(t, ui.Prompt, f.in.Prompt())

	got, ok := f.shell.Feed.Post(post.ID)
	require.True(t, ok)
	require.Equal(t, 2, got.CommentsCount)

	f.in.send(t, "quit")
	require.NoError(t, f.wait(t))
}

func TestShell_SessionExpired(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.srv.AddPosts(f.other.ID, 12)
	f.run(t)
	f.eventually(t, "-- explore --")

	f.srv.Fail("GET /posts", http.StatusUnauthorized, "Unauthenticated.")
	f.in.send(t, "more")

	require.ErrorIs(t, f.wait(t), ui.ErrSessionExpired)
	require.Contains(t, f.out.String(), "Session expired, please login again.")
}
