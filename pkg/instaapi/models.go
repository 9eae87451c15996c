package instaapi

import "time"

type User struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Author is the author snapshot embedded in posts and comments.
type Author struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

func (u *User) Author() Author {
	return Author{ID: u.ID, Name: u.Name, Username: u.Username}
}

type Post struct {
	ID     int64 `json:"id"`
	UserID int64 `json:"user_id"`

	Caption   *string `json:"caption"`
	ImagePath *string `json:"image_path"`

	LikesCount    int  `json:"likes_count"`
	CommentsCount int  `json:"comments_count"`
	IsLiked       bool `json:"is_liked"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User Author `json:"user"`
}

type Comment struct {
	ID     int64 `json:"id"`
	UserID int64 `json:"user_id"`
	PostID int64 `json:"post_id"`

	Content string `json:"content"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User Author `json:"user"`
}

// Page is one page of a paginated listing.
type Page[T any] struct {
	Items   []T
	HasNext bool
}

type envelope[T any] struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

type listEnvelope[T any] struct {
	Data     []T `json:"data"`
	Paginate struct {
		IsNext bool `json:"is_next"`
	} `json:"paginate"`
}

func (e *listEnvelope[T]) page() *Page[T] {
	items := e.Data
	if items == nil {
		items = []T{}
	}
	return &Page[T]{Items: items, HasNext: e.Paginate.IsNext}
}
