package validation

import (
	"strings"

	"instaapp/pkg/instaapi"
)

type LoginForm struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (f LoginForm) Validate() error {
	return check(f)
}

func (LoginForm) messages() map[string]string {
	return map[string]string{
		"username.required": "Username is required",
		"password.required": "Password is required",
	}
}

type RegisterForm struct {
	Name     string `json:"name" validate:"required"`
	Username string `json:"username" validate:"min=3,nospace"`
	Password string `json:"password" validate:"min=6"`
}

func (f RegisterForm) Validate() error {
	return check(f)
}

func (RegisterForm) messages() map[string]string {
	return map[string]string{
		"name.required":    "Name is required",
		"username.min":     "Username must be at least 3 characters",
		"username.nospace": "Username must not contain spaces",
		"password.min":     "Password must be at least 6 characters",
	}
}

func (f RegisterForm) Registration() instaapi.Registration {
	return instaapi.Registration{Name: f.Name, Username: f.Username, Password: f.Password}
}

type CommentForm struct {
	Content string `json:"content" validate:"required,notblank"`
}

func (f CommentForm) Validate() error {
	return check(f)
}

func (CommentForm) messages() map[string]string {
	return map[string]string{
		"content.required": "Comment is required",
		"content.notblank": "Comment is required",
	}
}

// CaptionForm edits the caption of an existing post. The caption may only be
// emptied when the post still has an image.
type CaptionForm struct {
	Caption  string `json:"caption" validate:"required_if=HasImage false"`
	HasImage bool   `json:"-"`
}

func (f CaptionForm) Validate() error {
	return check(f)
}

func (CaptionForm) messages() map[string]string {
	return map[string]string{
		"caption.required_if": "Caption is required.",
	}
}

// PostForm creates a post. At least one of a non-blank caption or an image is required.
type PostForm struct {
	Caption string           `json:"caption"`
	Image   *instaapi.Upload `json:"image"`
}

func (f PostForm) Validate() error {
	if f.Image != nil {
		if err := ValidateImage(f.Image); err != nil {
			return err
		}
	}

	if strings.TrimSpace(f.Caption) == "" && f.Image == nil {
		return Errors{"caption": "Either caption or image is required."}
	}

	return nil
}

func (f PostForm) NewPost() instaapi.NewPost {
	return instaapi.NewPost{Caption: f.Caption, Image: f.Image}
}
