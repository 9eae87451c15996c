package instaapi

import (
	"context"
	"net/http"
)

// UnexpectedResponse is reported when a successful login carries no token.
const UnexpectedResponse = "Unexpected response from server"

const (
	mePath       = "/me"
	loginPath    = "/login"
	registerPath = "/register"
	logoutPath   = "/logout"
)

type Registration struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// Me fetches the profile of the credential owner. Any status other than 200 in the
// body is reported as an error: the caller is not authenticated.
func (c *Client) Me(ctx context.Context) (*User, error) {
	body := &envelope[*User]{}

	_, err := c.do(c.r(ctx).SetResult(body), http.MethodGet, mePath)
	if err != nil {
		return nil, err
	}

	if body.Status != http.StatusOK || body.Data == nil {
		return nil, &Error{StatusCode: body.Status, Message: body.Message}
	}

	return body.Data, nil
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, username, password string) (string, string, error) {
	type token struct {
		Token string `json:"token"`
	}
	body := &envelope[token]{}

	res, err := c.do(
		c.r(ctx).
			SetBody(map[string]string{"username": username, "password": password}).
			SetResult(body),
		http.MethodPost, loginPath,
	)
	if err != nil {
		return "", "", err
	}

	if body.Status != http.StatusOK || body.Data.Token == "" {
		message := body.Message
		if message == "" {
			message = UnexpectedResponse
		}
		return "", "", &Error{StatusCode: res.StatusCode(), Message: message}
	}

	return body.Data.Token, body.Message, nil
}

func (c *Client) Register(ctx context.Context, reg Registration) (string, error) {
	body := &envelope[any]{}

	res, err := c.do(c.r(ctx).SetBody(reg).SetResult(body), http.MethodPost, registerPath)
	if err != nil {
		return "", err
	}

	if body.Status != http.StatusOK {
		return "", &Error{StatusCode: res.StatusCode(), Message: body.Message}
	}

	return body.Message, nil
}

func (c *Client) Logout(ctx context.Context) (string, error) {
	return c.message(c.r(ctx), http.MethodPost, logoutPath)
}
