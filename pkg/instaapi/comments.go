package instaapi

import (
	"context"
	"net/http"
)

const (
	commentsPath  = "/posts/{id}/comments"
	commentPath   = "/posts/{id}/comment"
	commentIDPath = "/posts/{id}/comment/{commentId}"
)

// ListComments fetches one page of a post's comments.
// GET /posts/{id}/comments?page=N&paginate=M
func (c *Client) ListComments(ctx context.Context, postID int64, page, perPage int) (*Page[Comment], error) {
	body := &listEnvelope[Comment]{}

	_, err := c.do(
		c.r(ctx).
			SetPathParam("id", formatID(postID)).
			SetQueryParams(pageParams(page, perPage)).
			SetResult(body),
		http.MethodGet, commentsPath,
	)
	if err != nil {
		return nil, err
	}

	return body.page(), nil
}

// CreateComment posts a comment. The returned comment carries no author details.
func (c *Client) CreateComment(ctx context.Context, postID int64, content string) (*Comment, string, error) {
	body := &envelope[*Comment]{}

	_, err := c.do(
		c.r(ctx).
			SetPathParam("id", formatID(postID)).
			SetBody(map[string]string{"content": content}).
			SetResult(body),
		http.MethodPost, commentPath,
	)
	if err != nil {
		return nil, "", err
	}
	if body.Data == nil {
		return nil, "", &Error{StatusCode: body.Status, Message: body.Message}
	}

	return body.Data, body.Message, nil
}

func (c *Client) UpdateComment(ctx context.Context, postID, commentID int64, content string) (string, error) {
	req := c.r(ctx).
		SetPathParam("id", formatID(postID)).
		SetPathParam("commentId", formatID(commentID)).
		SetBody(map[string]string{"content": content})

	return c.message(req, http.MethodPut, commentIDPath)
}

func (c *Client) DeleteComment(ctx context.Context, postID, commentID int64) (string, error) {
	req := c.r(ctx).
		SetPathParam("id", formatID(postID)).
		SetPathParam("commentId", formatID(commentID))

	return c.message(req, http.MethodDelete, commentIDPath)
}
