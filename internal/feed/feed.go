// Package feed applies user actions to the loaded posts and comment threads,
// changing local state only once the server has confirmed them.
package feed

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"instaapp/internal/core"
	"instaapp/internal/metrics"
	"instaapp/internal/paging"
	"instaapp/internal/validation"
	"instaapp/pkg/instaapi"
)

const (
	PostsPerPage    = 10
	CommentsPerPage = 5
)

const (
	loadPostsFailed  = "Failed to load posts."
	likeFailed       = "Failed to update like."
	updatePostFailed = "Failed to update post."
	deletePostFailed = "Failed to delete post."
	createPostFailed = "Failed to create post."
	postCreated      = "Post created successfully."
)

// creating is the busy key of a post being submitted. Server ids start at 1.
const creating int64 = 0

var (
	ErrBusy     = errors.New("another action on this item is in progress")
	ErrNotFound = errors.New("item not loaded")
	ErrNotOwner = errors.New("item belongs to another user")
	ErrMode     = errors.New("unknown feed mode")
)

type Mode string

const (
	ModeExplore Mode = "explore"
	ModeMine    Mode = "mine"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeExplore, ModeMine:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrMode, s)
	}
}

func (m Mode) scope() instaapi.Scope {
	if m == ModeMine {
		return instaapi.ScopeMine
	}
	return instaapi.ScopeExplore
}

func postID(p instaapi.Post) int64 {
	return p.ID
}

// Feed is the posts listing of one mode. The mode is its data source: changing
// it starts a new lifecycle.
type Feed struct {
	api    core.API
	viewer core.Viewer
	notify core.Notifier

	mu    sync.RWMutex
	mode  Mode
	posts *paging.Collection[instaapi.Post, int64]
	busy  Busy[int64]
}

func New(api core.API, viewer core.Viewer, notify core.Notifier) *Feed {
	f := &Feed{
		api:    api,
		viewer: viewer,
		notify: notify,
		mode:   ModeExplore,
	}
	f.posts = paging.New(PostsPerPage, postID, f.fetcher(ModeExplore))
	return f
}

func (f *Feed) fetcher(mode Mode) paging.Fetcher[instaapi.Post] {
	return func(ctx context.Context, page, perPage int) ([]instaapi.Post, bool, error) {
		res, err := f.api.ListPosts(ctx, mode.scope(), page, perPage)
		if err != nil {
			return nil, false, err
		}
		return res.Items, res.HasNext, nil
	}
}

func (f *Feed) Mode() Mode {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return f.mode
}

// Mount starts the feed over in mode and loads its first page.
func (f *Feed) Mount(ctx context.Context, mode Mode) error {
	f.mu.Lock()
	f.mode = mode
	f.mu.Unlock()

	_, err := f.posts.Reset(ctx, f.fetcher(mode))
	return f.loaded(err)
}

// LoadNext requests the following page. It is the scroll-proximity signal: calls
// while a page is in flight or after the last page do nothing.
func (f *Feed) LoadNext(ctx context.Context) (bool, error) {
	loaded, err := f.posts.LoadNext(ctx)
	return loaded, f.loaded(err)
}

func (f *Feed) loaded(err error) error {
	metrics.ObserveAction("posts.load", err)
	if err != nil {
		f.notify.Error(instaapi.Message(err, loadPostsFailed))
	}
	return err
}

func (f *Feed) Posts() []instaapi.Post {
	return f.posts.Items()
}

func (f *Feed) Post(id int64) (instaapi.Post, bool) {
	return f.posts.Get(id)
}

func (f *Feed) Exhausted() bool {
	return f.posts.Exhausted()
}

func (f *Feed) Fetching() bool {
	return f.posts.Fetching()
}

func (f *Feed) Busy(id int64) bool {
	return f.busy.Busy(id)
}

// ToggleLike sends the opposite of the current like state and flips it locally
// once confirmed.
func (f *Feed) ToggleLike(ctx context.Context, id int64) error {
	post, release, err := f.acquire(id, false)
	if err != nil {
		return err
	}
	defer release()

	if post.IsLiked {
		_, err = f.api.Unlike(ctx, id)
	} else {
		_, err = f.api.Like(ctx, id)
	}
	metrics.ObserveAction("posts.like", err)
	if err != nil {
		f.notify.Error(instaapi.Message(err, likeFailed))
		return err
	}

	f.posts.Patch(id, func(p instaapi.Post) instaapi.Post {
		if p.IsLiked {
			p.LikesCount = max(p.LikesCount-1, 0)
		} else {
			p.LikesCount++
		}
		p.IsLiked = !p.IsLiked
		return p
	})
	return nil
}

// EditCaption replaces the caption with exactly the submitted text.
func (f *Feed) EditCaption(ctx context.Context, id int64, caption string) error {
	post, release, err := f.acquire(id, true)
	if err != nil {
		return err
	}
	defer release()

	form := validation.CaptionForm{Caption: caption, HasImage: post.ImagePath != nil}
	if err := form.Validate(); err != nil {
		return err
	}

	message, err := f.api.UpdatePost(ctx, id, caption)
	metrics.ObserveAction("posts.edit", err)
	if err != nil {
		f.notify.Error(instaapi.Message(err, updatePostFailed))
		return err
	}

	f.posts.Patch(id, func(p instaapi.Post) instaapi.Post {
		if caption == "" {
			p.Caption = nil
		} else {
			p.Caption = &caption
		}
		return p
	})
	f.success(message, "")
	return nil
}

func (f *Feed) Delete(ctx context.Context, id int64) error {
	_, release, err := f.acquire(id, true)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	defer release()

	message, err := f.api.DeletePost(ctx, id)
	metrics.ObserveAction("posts.delete", err)
	if err != nil {
		f.notify.Error(instaapi.Message(err, deletePostFailed))
		return err
	}

	f.posts.Remove(id)
	f.success(message, "")
	return nil
}

// Create publishes a post and puts it at the head of the feed. One submission
// runs at a time.
func (f *Feed) Create(ctx context.Context, form validation.PostForm) (*instaapi.Post, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}

	if !f.busy.Acquire(creating) {
		return nil, ErrBusy
	}
	defer f.busy.Release(creating)

	post, message, err := f.api.CreatePost(ctx, form.NewPost())
	metrics.ObserveAction("posts.create", err)
	if err != nil {
		f.notify.Error(instaapi.Message(err, createPostFailed))
		return nil, err
	}

	if post.User.ID == 0 {
		if user := f.viewer.CurrentUser(); user != nil {
			post.User = user.Author()
		}
	}

	f.posts.Append(*post)
	f.success(message, postCreated)
	return post, nil
}

// Creating reports whether a post submission is in flight.
func (f *Feed) Creating() bool {
	return f.busy.Busy(creating)
}

// AdjustComments moves the comment counter of a post by delta, never below zero.
func (f *Feed) AdjustComments(id int64, delta int) {
	f.posts.Patch(id, func(p instaapi.Post) instaapi.Post {
		p.CommentsCount = max(p.CommentsCount+delta, 0)
		return p
	})
}

// Thread opens the comments of a loaded post. Counter changes made in the
// thread are reported back to the post.
func (f *Feed) Thread(id int64) (*Thread, error) {
	post, ok := f.posts.Get(id)
	if !ok {
		return nil, ErrNotFound
	}

	return NewThread(f.api, f.viewer, f.notify, id, post.CommentsCount, func(delta int) {
		f.AdjustComments(id, delta)
	}), nil
}

// acquire marks the post busy and returns its current state with a release func.
func (f *Feed) acquire(id int64, owned bool) (instaapi.Post, func(), error) {
	if !f.busy.Acquire(id) {
		return instaapi.Post{}, nil, ErrBusy
	}
	release := func() { f.busy.Release(id) }

	post, ok := f.posts.Get(id)
	if !ok {
		release()
		return post, nil, ErrNotFound
	}
	if owned && !ownedBy(f.viewer, post.UserID) {
		release()
		return post, nil, ErrNotOwner
	}
	return post, release, nil
}

func (f *Feed) success(message, fallback string) {
	if message == "" {
		message = fallback
	}
	if message != "" {
		f.notify.Success(message)
	}
}

func ownedBy(viewer core.Viewer, userID int64) bool {
	user := viewer.CurrentUser()
	return user != nil && user.ID == userID
}
