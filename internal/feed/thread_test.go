package feed_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"instaapp/internal/feed"
	"instaapp/internal/validation"
	"instaapp/pkg/instaapi"

	"github.com/stretchr/testify/require"
)

func openThread(t *testing.T, f *fixture, post instaapi.Post) *feed.Thread {
	t.Helper()

	thread, err := f.feed.Thread(post.ID)
	require.NoError(t, err)
	require.NoError(t, thread.Open(context.Background()))
	return thread
}

func TestThread_Paging(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	post := f.srv.AddPost(f.other.ID, "post")
	for i := range 7 {
		f.srv.AddComment(post.ID, f.other.ID, fmt.Sprintf("comment %d", i))
	}
	f.mount(t, feed.ModeExplore)

	thread := openThread(t, f, post)
	require.Len(t, thread.Comments(), 5)
	require.Equal(t, 7, thread.Count())
	require.False(t, thread.Exhausted())

	_, err := thread.LoadNext(context.Background())
	require.NoError(t, err)
	require.Len(t, thread.Comments(), 7)
	require.True(t, thread.Exhausted())

	require.NoError(t, thread.Open(context.Background()))
	require.Len(t, thread.Comments(), 5)

	f.srv.Fail("GET /posts/{id}/comments", http.StatusInternalServerError, "")
	_, err = thread.LoadNext(context.Background())
	require.Error(t, err)
	require.Equal(t, []string{"Failed to load comments."}, f.notes.Errors())
}

func TestThread_Create(t *testing.T) {
	t.Parallel()

	t.Run("prepends and counts on the parent post", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		post := f.srv.AddPost(f.other.ID, "post")
		f.srv.AddComment(post.ID, f.other.ID, "first")
		f.mount(t, feed.ModeExplore)

		thread := openThread(t, f, post)

		comment, err := thread.Create(context.Background(), validation.CommentForm{Content: "nice"})
		require.NoError(t, err)
		require.Equal(t, "jane", comment.User.Username)

		comments := thread.Comments()
		require.Len(t, comments, 2)
		require.Equal(t, comment.ID, comments[0].ID)
		require.Equal(t, 2, thread.Count())

		parent, _ := f.feed.Post(post.ID)
		require.Equal(t, 2, parent.CommentsCount)
		require.Equal(t, []string{"Comment created successfully"}, f.notes.Successes())
	})

	t.Run("counter is independent of the loaded page", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		post := f.srv.AddPost(f.other.ID, "post")
		for range 8 {
			f.srv.AddComment(post.ID, f.other.ID, "old")
		}
		f.mount(t, feed.ModeExplore)

		thread := openThread(t, f, post)
		_, err := thread.Create(context.Background(), validation.CommentForm{Content: "nice"})
		require.NoError(t, err)

		require.Len(t, thread.Comments(), 6)
		require.Equal(t, 9, thread.Count())

		parent, _ := f.feed.Post(post.ID)
		require.Equal(t, 9, parent.CommentsCount)
	})

	t.Run("empty comment never reaches the server", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		post := f.srv.AddPost(f.other.ID, "post")
		f.mount(t, feed.ModeExplore)
		thread := openThread(t, f, post)

		_, err := thread.Create(context.Background(), validation.CommentForm{})
		require.Equal(t, validation.Errors{"content": "Comment is required"}, validation.Fields(err))
		require.Zero(t, f.srv.Hits("POST /posts/{id}/comment"))
	})

	t.Run("failure", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		post := f.srv.AddPost(f.other.ID, "post")
		f.mount(t, feed.ModeExplore)
		thread := openThread(t, f, post)
		f.srv.Fail("POST /posts/{id}/comment", http.StatusInternalServerError, "")

		_, err := thread.Create(context.Background(), validation.CommentForm{Content: "nice"})
		require.Error(t, err)
		require.Empty(t, thread.Comments())
		require.Zero(t, thread.Count())
		require.Equal(t, []string{"Failed to post comment."}, f.notes.Errors())
	})
}

func TestThread_EditDelete(t *testing.T) {
	t.Parallel()

	setup := func(t *testing.T) (*fixture, *feed.Thread, instaapi.Post, instaapi.Comment) {
		t.Helper()

		f := newFixture(t)
		post := f.srv.AddPost(f.other.ID, "post")
		comment := f.srv.AddComment(post.ID, f.user.ID, "mine")
		f.srv.AddComment(post.ID, f.other.ID, "theirs")
		f.mount(t, feed.ModeExplore)
		return f, openThread(t, f, post), post, comment
	}

	t.Run("edit replaces the content", func(t *testing.T) {
		t.Parallel()

		f, thread, _, comment := setup(t)

		require.NoError(t, thread.Edit(context.Background(), comment.ID, validation.CommentForm{Content: "edited"}))

		got, _ := thread.Comment(comment.ID)
		require.Equal(t, "edited", got.Content)
		require.Equal(t, []string{"Comment updated successfully"}, f.notes.Successes())
	})

	t.Run("edit failure keeps the content", func(t *testing.T) {
		t.Parallel()

		f, thread, _, comment := setup(t)
		f.srv.Fail("PUT /posts/{id}/comment/{commentId}", http.StatusInternalServerError, "")

		require.Error(t, thread.Edit(context.Background(), comment.ID, validation.CommentForm{Content: "edited"}))

		got, _ := thread.Comment(comment.ID)
		require.Equal(t, "mine", got.Content)
		require.Equal(t, []string{"Failed to update comment."}, f.notes.Errors())
	})

	t.Run("foreign comment", func(t *testing.T) {
		t.Parallel()

		_, thread, _, _ := setup(t)
		theirs := thread.Comments()[0]

		require.ErrorIs(t, thread.Delete(context.Background(), theirs.ID), feed.ErrNotOwner)
	})

	t.Run("delete decrements both counters", func(t *testing.T) {
		t.Parallel()

		f, thread, post, comment := setup(t)

		require.NoError(t, thread.Delete(context.Background(), comment.ID))
		require.Len(t, thread.Comments(), 1)
		require.Equal(t, 1, thread.Count())

		parent, _ := f.feed.Post(post.ID)
		require.Equal(t, 1, parent.CommentsCount)
	})

	t.Run("deleting a comment that is already gone", func(t *testing.T) {
		t.Parallel()

		f, thread, _, comment := setup(t)
		require.NoError(t, thread.Delete(context.Background(), comment.ID))

		require.NoError(t, thread.Delete(context.Background(), comment.ID))
		require.Equal(t, 1, thread.Count())
		require.Empty(t, f.notes.Errors())
		require.Equal(t, 1, f.srv.Hits("DELETE /posts/{id}/comment/{commentId}"))
	})

	t.Run("delete failure keeps the comment", func(t *testing.T) {
		t.Parallel()

		f, thread, _, comment := setup(t)
		f.srv.Fail("DELETE /posts/{id}/comment/{commentId}", http.StatusInternalServerError, "")

		require.Error(t, thread.Delete(context.Background(), comment.ID))
		_, ok := thread.Comment(comment.ID)
		require.True(t, ok)
		require.Equal(t, 2, thread.Count())
		require.Equal(t, []string{"Failed to delete comment."}, f.notes.Errors())
	})
}

func TestFeed_AdjustComments(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	post := f.srv.AddPost(f.other.ID, "post")
	f.mount(t, feed.ModeExplore)

	f.feed.AdjustComments(post.ID, -3)
	got, _ := f.feed.Post(post.ID)
	require.Zero(t, got.CommentsCount)

	f.feed.AdjustComments(9999, 1)
	require.Len(t, f.feed.Posts(), 1)

	_, err := f.feed.Thread(9999)
	require.ErrorIs(t, err, feed.ErrNotFound)
}

func TestBusy(t *testing.T) {
	t.Parallel()

	var b feed.Busy[int64]
	require.True(t, b.Acquire(1))
	require.False(t, b.Acquire(1))
	require.True(t, b.Acquire(2))
	require.True(t, b.Busy(1))

	b.Release(1)
	require.False(t, b.Busy(1))
	require.True(t, b.Acquire(1))
}
