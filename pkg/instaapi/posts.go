package instaapi

import (
	"bytes"
	"context"
	"net/http"
	"strconv"
)

const (
	postsPath    = "/posts"
	myPostsPath  = "/posts/me"
	postPath     = "/posts/{id}"
	postLikePath = "/posts/{id}/like"
)

// Scope selects which listing of posts to page through.
type Scope string

const (
	ScopeExplore Scope = postsPath
	ScopeMine    Scope = myPostsPath
)

type Upload struct {
	Name        string
	ContentType string
	Data        []byte
}

type NewPost struct {
	Caption string
	Image   *Upload
}

// ListPosts fetches one page of the given scope.
// GET /posts?page=N&paginate=M or GET /posts/me?page=N&paginate=M
func (c *Client) ListPosts(ctx context.Context, scope Scope, page, perPage int) (*Page[Post], error) {
	body := &listEnvelope[Post]{}

	_, err := c.do(
		c.r(ctx).
			SetQueryParams(pageParams(page, perPage)).
			SetResult(body),
		http.MethodGet, string(scope),
	)
	if err != nil {
		return nil, err
	}

	return body.page(), nil
}

// CreatePost uploads a post as multipart form data. Both parts are optional.
func (c *Client) CreatePost(ctx context.Context, post NewPost) (*Post, string, error) {
	body := &envelope[*Post]{}

	req := c.r(ctx).SetResult(body)
	if post.Caption != "" {
		req.SetMultipartFormData(map[string]string{"caption": post.Caption})
	}
	if post.Image != nil {
		req.SetMultipartField("image", post.Image.Name, post.Image.ContentType, bytes.NewReader(post.Image.Data))
	}

	_, err := c.do(req, http.MethodPost, postsPath)
	if err != nil {
		return nil, "", err
	}
	if body.Data == nil {
		return nil, "", &Error{StatusCode: body.Status, Message: body.Message}
	}

	return body.Data, body.Message, nil
}

func (c *Client) UpdatePost(ctx context.Context, id int64, caption string) (string, error) {
	req := c.r(ctx).
		SetPathParam("id", formatID(id)).
		SetBody(map[string]string{"caption": caption})

	return c.message(req, http.MethodPut, postPath)
}

func (c *Client) DeletePost(ctx context.Context, id int64) (string, error) {
	return c.message(c.r(ctx).SetPathParam("id", formatID(id)), http.MethodDelete, postPath)
}

func (c *Client) Like(ctx context.Context, id int64) (string, error) {
	return c.message(c.r(ctx).SetPathParam("id", formatID(id)), http.MethodPost, postLikePath)
}

func (c *Client) Unlike(ctx context.Context, id int64) (string, error) {
	return c.message(c.r(ctx).SetPathParam("id", formatID(id)), http.MethodDelete, postLikePath)
}

func pageParams(page, perPage int) map[string]string {
	return map[string]string{
		"page":     strconv.Itoa(page),
		"paginate": strconv.Itoa(perPage),
	}
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
