package core

import (
	"context"

	"instaapp/pkg/instaapi"
)

// TokenStore persists the single bearer token under a fixed key.
type TokenStore interface {
	// Load returns ErrNoToken when nothing is stored.
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// Notifier surfaces the outcome of a user action, the terminal counterpart of a toast.
type Notifier interface {
	Success(message string)
	Error(message string)
}

type AuthAPI interface {
	Me(ctx context.Context) (*instaapi.User, error)
	Login(ctx context.Context, username, password string) (string, string, error)
	Register(ctx context.Context, reg instaapi.Registration) (string, error)
	Logout(ctx context.Context) (string, error)

	SetTokenSource(tokens instaapi.TokenSource)
	OnUnauthorized(fn func(error))
}

type PostsAPI interface {
	ListPosts(ctx context.Context, scope instaapi.Scope, page, perPage int) (*instaapi.Page[instaapi.Post], error)
	CreatePost(ctx context.Context, post instaapi.NewPost) (*instaapi.Post, string, error)
	UpdatePost(ctx context.Context, id int64, caption string) (string, error)
	DeletePost(ctx context.Context, id int64) (string, error)
	Like(ctx context.Context, id int64) (string, error)
	Unlike(ctx context.Context, id int64) (string, error)
}

type CommentsAPI interface {
	ListComments(ctx context.Context, postID int64, page, perPage int) (*instaapi.Page[instaapi.Comment], error)
	CreateComment(ctx context.Context, postID int64, content string) (*instaapi.Comment, string, error)
	UpdateComment(ctx context.Context, postID, commentID int64, content string) (string, error)
	DeleteComment(ctx context.Context, postID, commentID int64) (string, error)
}

// API is the whole consumed REST surface, implemented by *instaapi.Client.
type API interface {
	AuthAPI
	PostsAPI
	CommentsAPI
}

// Viewer exposes the session user to components rendering or mutating items.
type Viewer interface {
	CurrentUser() *instaapi.User
}
