package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"

	"instaapp/internal/core"
	"instaapp/internal/validation"
	"instaapp/pkg/instaapi"
)

// Cards renders posts and comments relative to the session user.
type Cards struct {
	Viewer core.Viewer
	Now    func() time.Time
}

func (c Cards) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

func (c Cards) owned(userID int64) bool {
	if c.Viewer == nil {
		return false
	}
	user := c.Viewer.CurrentUser()
	return user != nil && user.ID == userID
}

func (c Cards) header(w io.Writer, indent string, id int64, author instaapi.Author, userID int64, at time.Time) {
	fmt.Fprintf(w, "%s#%d %s @%s · %s", indent, id, author.Name, author.Username, humanize.RelTime(at, c.now(), "ago", "from now"))
	if c.owned(userID) {
		fmt.Fprint(w, " (you)")
	}
	fmt.Fprintln(w)
}

func (c Cards) Post(w io.Writer, p instaapi.Post) {
	c.header(w, "", p.ID, p.User, p.UserID, p.CreatedAt)

	if p.Caption != nil && *p.Caption != "" {
		fmt.Fprintf(w, "  %s\n", *p.Caption)
	}
	if p.ImagePath != nil {
		fmt.Fprintf(w, "  [image] %s\n", *p.ImagePath)
	}

	like := "♡"
	if p.IsLiked {
		like = "♥"
	}
	fmt.Fprintf(w, "  %s %s · %s\n", like, plural(p.LikesCount, "like"), plural(p.CommentsCount, "comment"))
}

func (c Cards) Posts(w io.Writer, posts []instaapi.Post) {
	for _, p := range posts {
		c.Post(w, p)
		fmt.Fprintln(w)
	}
}

func (c Cards) Comment(w io.Writer, cm instaapi.Comment) {
	c.header(w, "  ", cm.ID, cm.User, cm.UserID, cm.CreatedAt)
	fmt.Fprintf(w, "    %s\n", cm.Content)
}

func (c Cards) Comments(w io.Writer, comments []instaapi.Comment) {
	for _, cm := range comments {
		c.Comment(w, cm)
	}
}

func (c Cards) User(w io.Writer, u *instaapi.User) {
	fmt.Fprintf(w, "%s @%s (id %d), joined %s\n", u.Name, u.Username, u.ID, humanize.RelTime(u.CreatedAt, c.now(), "ago", "from now"))
}

// FieldErrors prints validation messages one per line in field order.
func FieldErrors(w io.Writer, fields validation.Errors) {
	for _, field := range instaapi.SortedFields(fields) {
		fmt.Fprintf(w, "  %s: %s\n", field, fields[field])
	}
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%s %s", humanize.Comma(int64(n)), word)
	}
	return fmt.Sprintf("%s %ss", humanize.Comma(int64(n)), word)
}
