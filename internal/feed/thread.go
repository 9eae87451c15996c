package feed

import (
	"context"
	"errors"
	"sync"

	"instaapp/internal/core"
	"instaapp/internal/metrics"
	"instaapp/internal/paging"
	"instaapp/internal/validation"
	"instaapp/pkg/instaapi"
)

const (
	loadCommentsFailed  = "Failed to load comments."
	createCommentFailed = "Failed to post comment."
	updateCommentFailed = "Failed to update comment."
	deleteCommentFailed = "Failed to delete comment."
	commentDeleted      = "Comment deleted successfully."
)

func commentID(c instaapi.Comment) int64 {
	return c.ID
}

// Thread is the comment listing of one post. Its counter is kept apart from
// the loaded page size and reported to the parent through onCount.
type Thread struct {
	api    core.API
	viewer core.Viewer
	notify core.Notifier

	postID   int64
	comments *paging.Collection[instaapi.Comment, int64]
	busy     Busy[int64]

	mu      sync.Mutex
	count   int
	onCount func(delta int)
}

func NewThread(api core.API, viewer core.Viewer, notify core.Notifier, postID int64, count int, onCount func(delta int)) *Thread {
	t := &Thread{
		api:     api,
		viewer:  viewer,
		notify:  notify,
		postID:  postID,
		count:   count,
		onCount: onCount,
	}
	t.comments = paging.New(CommentsPerPage, commentID, t.fetch)
	return t
}

func (t *Thread) fetch(ctx context.Context, page, perPage int) ([]instaapi.Comment, bool, error) {
	res, err := t.api.ListComments(ctx, t.postID, page, perPage)
	if err != nil {
		return nil, false, err
	}
	return res.Items, res.HasNext, nil
}

func (t *Thread) PostID() int64 {
	return t.postID
}

// Open loads the first page, dropping whatever was loaded before.
func (t *Thread) Open(ctx context.Context) error {
	_, err := t.comments.Reset(ctx, nil)
	return t.loaded(err)
}

func (t *Thread) LoadNext(ctx context.Context) (bool, error) {
	loaded, err := t.comments.LoadNext(ctx)
	return loaded, t.loaded(err)
}

func (t *Thread) loaded(err error) error {
	metrics.ObserveAction("comments.load", err)
	if err != nil {
		t.notify.Error(instaapi.Message(err, loadCommentsFailed))
	}
	return err
}

func (t *Thread) Comments() []instaapi.Comment {
	return t.comments.Items()
}

func (t *Thread) Comment(id int64) (instaapi.Comment, bool) {
	return t.comments.Get(id)
}

func (t *Thread) Exhausted() bool {
	return t.comments.Exhausted()
}

func (t *Thread) Fetching() bool {
	return t.comments.Fetching()
}

// Count is the number of comments on the post, loaded or not.
func (t *Thread) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.count
}

func (t *Thread) adjust(delta int) {
	t.mu.Lock()
	t.count = max(t.count+delta, 0)
	t.mu.Unlock()

	if t.onCount != nil {
		t.onCount(delta)
	}
}

// Create posts a comment authored by the session user and prepends it.
func (t *Thread) Create(ctx context.Context, form validation.CommentForm) (*instaapi.Comment, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}

	comment, message, err := t.api.CreateComment(ctx, t.postID, form.Content)
	metrics.ObserveAction("comments.create", err)
	if err != nil {
		t.notify.Error(instaapi.Message(err, createCommentFailed))
		return nil, err
	}

	if user := t.viewer.CurrentUser(); user != nil {
		comment.User = user.Author()
	}

	t.comments.Append(*comment)
	t.adjust(1)
	if message != "" {
		t.notify.Success(message)
	}
	return comment, nil
}

func (t *Thread) Edit(ctx context.Context, id int64, form validation.CommentForm) error {
	_, release, err := t.acquire(id)
	if err != nil {
		return err
	}
	defer release()

	if err := form.Validate(); err != nil {
		return err
	}

	message, err := t.api.UpdateComment(ctx, t.postID, id, form.Content)
	metrics.ObserveAction("comments.edit", err)
	if err != nil {
		t.notify.Error(instaapi.Message(err, updateCommentFailed))
		return err
	}

	t.comments.Patch(id, func(c instaapi.Comment) instaapi.Comment {
		c.Content = form.Content
		return c
	})
	if message != "" {
		t.notify.Success(message)
	}
	return nil
}

// Delete removes a comment. A comment that is no longer loaded is not an error.
func (t *Thread) Delete(ctx context.Context, id int64) error {
	_, release, err := t.acquire(id)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	defer release()

	message, err := t.api.DeleteComment(ctx, t.postID, id)
	metrics.ObserveAction("comments.delete", err)
	if err != nil {
		t.notify.Error(instaapi.Message(err, deleteCommentFailed))
		return err
	}

	if t.comments.Remove(id) {
		t.adjust(-1)
	}
	if message == "" {
		message = commentDeleted
	}
	t.notify.Success(message)
	return nil
}

func (t *Thread) acquire(id int64) (instaapi.Comment, func(), error) {
	if !t.busy.Acquire(id) {
		return instaapi.Comment{}, nil, ErrBusy
	}
	release := func() { t.busy.Release(id) }

	comment, ok := t.comments.Get(id)
	if !ok {
		release()
		return comment, nil, ErrNotFound
	}
	if !ownedBy(t.viewer, comment.UserID) {
		release()
		return comment, nil, ErrNotOwner
	}
	return comment, release, nil
}
