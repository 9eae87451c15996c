package apitest

import (
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"instaapp/pkg/instaapi"
)

const maxUpload = 2 << 20

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Malformed JSON body.", nil)
		return false
	}
	return true
}

func required(fields map[string]string) map[string][]string {
	missing := map[string][]string{}
	for name, value := range fields {
		if strings.TrimSpace(value) == "" {
			missing[name] = []string{"The " + name + " field is required."}
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return missing
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil
}

func pageQuery(r *http.Request, perPage int) (int, int) {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	size, err := strconv.Atoi(r.URL.Query().Get("paginate"))
	if err != nil || size < 1 {
		size = perPage
	}
	return page, size
}

func paginate[T any](items []T, page, size int) ([]T, bool) {
	start := min((page-1)*size, len(items))
	end := min(start+size, len(items))
	return items[start:end], end < len(items)
}

func writePage(w http.ResponseWriter, data any, hasNext bool) {
	body := listEnvelope{Data: data}
	body.Paginate.IsNext = hasNext
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if !decode(w, r, &req) {
		return
	}
	if fields := required(map[string]string{"username": req.Username, "password": req.Password}); fields != nil {
		writeError(w, http.StatusUnprocessableEntity, "The given data was invalid.", fields)
		return
	}

	s.mu.Lock()
	u, found := lo.Find(lo.Values(s.users), func(u *user) bool {
		return u.Username == req.Username && u.password == req.Password
	})
	s.mu.Unlock()

	if !found {
		writeError(w, http.StatusUnauthorized, "Invalid username or password.", nil)
		return
	}

	writeOK(w, "Login successful", map[string]string{"token": s.Token(u.ID)})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req instaapi.Registration
	if !decode(w, r, &req) {
		return
	}
	fields := required(map[string]string{"name": req.Name, "username": req.Username, "password": req.Password})
	if fields != nil {
		writeError(w, http.StatusUnprocessableEntity, "The given data was invalid.", fields)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	taken := lo.SomeBy(lo.Values(s.users), func(u *user) bool {
		return u.Username == req.Username
	})
	if taken {
		writeError(w, http.StatusUnprocessableEntity, "The username has already been taken.", map[string][]string{
			"username": {"The username has already been taken."},
		})
		return
	}

	u := s.addUser(req.Name, req.Username, req.Password)
	writeOK(w, "User registered successfully", u.User)
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	u := s.users[currentUser(r)].User
	s.mu.Unlock()

	writeOK(w, "User retrieved successfully", u)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.revoked[bearer(r)] = true
	s.mu.Unlock()

	writeOK(w, "Logout successful", nil)
}

func (s *Server) listPosts(mine bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer := currentUser(r)
		page, size := pageQuery(r, 10)

		s.mu.Lock()
		defer s.mu.Unlock()

		posts := s.posts
		if mine {
			posts = lo.Filter(posts, func(p *post, _ int) bool {
				return p.UserID == viewer
			})
		}

		chunk, hasNext := paginate(posts, page, size)
		writePage(w, lo.Map(chunk, func(p *post, _ int) instaapi.Post {
			return s.view(p, viewer)
		}), hasNext)
	}
}

func (s *Server) createPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUpload); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		writeError(w, http.StatusUnprocessableEntity, "The image failed to upload.", map[string][]string{
			"image": {"The image failed to upload."},
		})
		return
	}

	var caption, imagePath *string
	if value := r.FormValue("caption"); value != "" {
		caption = &value
	}

	file, header, err := r.FormFile("image")
	if err == nil {
		_ = file.Close()
		path := "posts/" + uuid.NewString() + strings.ToLower(filepath.Ext(header.Filename))
		imagePath = &path
	}

	if caption == nil && imagePath == nil {
		writeError(w, http.StatusUnprocessableEntity, "The caption field is required when image is not present.", map[string][]string{
			"caption": {"The caption field is required when image is not present."},
		})
		return
	}

	s.mu.Lock()
	p := s.addPost(currentUser(r), caption, imagePath)
	created := p.Post
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, envelope{Status: http.StatusCreated, Message: "Post created successfully", Data: created})
}

// ownPost resolves the {id} post and checks it belongs to the caller. The lock
// is held on success.
func (s *Server) ownPost(w http.ResponseWriter, r *http.Request) (*post, bool) {
	id, ok := pathID(r, "id")
	if !ok {
		writeNotFound(w)
		return nil, false
	}

	s.mu.Lock()
	p := s.findPost(id)
	if p == nil {
		s.mu.Unlock()
		writeNotFound(w)
		return nil, false
	}
	if p.UserID != currentUser(r) {
		s.mu.Unlock()
		writeForbidden(w)
		return nil, false
	}
	return p, true
}

func (s *Server) updatePost(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Caption string `json:"caption"`
	}
	if !decode(w, r, &req) {
		return
	}

	p, ok := s.ownPost(w, r)
	if !ok {
		return
	}
	defer s.mu.Unlock()

	if req.Caption == "" && p.ImagePath == nil {
		writeError(w, http.StatusUnprocessableEntity, "The caption field is required.", map[string][]string{
			"caption": {"The caption field is required."},
		})
		return
	}

	p.Caption = nil
	if req.Caption != "" {
		p.Caption = &req.Caption
	}
	p.UpdatedAt = s.now()
	writeOK(w, "Post updated successfully", nil)
}

func (s *Server) deletePost(w http.ResponseWriter, r *http.Request) {
	p, ok := s.ownPost(w, r)
	if !ok {
		return
	}
	defer s.mu.Unlock()

	s.posts = slices.DeleteFunc(s.posts, func(other *post) bool {
		return other == p
	})
	delete(s.comments, p.ID)
	writeOK(w, "Post deleted successfully", nil)
}

func (s *Server) toggleLike(w http.ResponseWriter, r *http.Request, liked bool) {
	id, ok := pathID(r, "id")
	if !ok {
		writeNotFound(w)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.findPost(id)
	if p == nil {
		writeNotFound(w)
		return
	}

	viewer := currentUser(r)
	if p.likes[viewer] == liked {
		message := "You already liked this post."
		if !liked {
			message = "You have not liked this post."
		}
		writeError(w, http.StatusUnprocessableEntity, message, nil)
		return
	}

	if liked {
		p.likes[viewer] = true
		writeOK(w, "Post liked", nil)
		return
	}
	delete(p.likes, viewer)
	writeOK(w, "Post unliked", nil)
}

func (s *Server) like(w http.ResponseWriter, r *http.Request) {
	s.toggleLike(w, r, true)
}

func (s *Server) unlike(w http.ResponseWriter, r *http.Request) {
	s.toggleLike(w, r, false)
}

func (s *Server) listComments(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeNotFound(w)
		return
	}
	page, size := pageQuery(r, 5)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findPost(id) == nil {
		writeNotFound(w)
		return
	}

	chunk, hasNext := paginate(s.comments[id], page, size)
	writePage(w, lo.Map(chunk, func(c *instaapi.Comment, _ int) instaapi.Comment {
		return s.commentView(c)
	}), hasNext)
}

func (s *Server) createComment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeNotFound(w)
		return
	}

	var req struct {
		Content string `json:"content"`
	}
	if !decode(w, r, &req) {
		return
	}
	if fields := required(map[string]string{"content": req.Content}); fields != nil {
		writeError(w, http.StatusUnprocessableEntity, "The content field is required.", fields)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findPost(id) == nil {
		writeNotFound(w)
		return
	}

	c := s.addComment(id, currentUser(r), req.Content)
	writeJSON(w, http.StatusCreated, envelope{Status: http.StatusCreated, Message: "Comment created successfully", Data: *c})
}

// ownComment resolves {id}/{commentId} and checks the comment belongs to the
// caller. The lock is held on success.
func (s *Server) ownComment(w http.ResponseWriter, r *http.Request) (*instaapi.Comment, bool) {
	postID, ok := pathID(r, "id")
	if !ok {
		writeNotFound(w)
		return nil, false
	}
	commentID, ok := pathID(r, "commentId")
	if !ok {
		writeNotFound(w)
		return nil, false
	}

	s.mu.Lock()
	c, found := lo.Find(s.comments[postID], func(c *instaapi.Comment) bool {
		return c.ID == commentID
	})
	if !found {
		s.mu.Unlock()
		writeNotFound(w)
		return nil, false
	}
	if c.UserID != currentUser(r) {
		s.mu.Unlock()
		writeForbidden(w)
		return nil, false
	}
	return c, true
}

func (s *Server) updateComment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Content string `json:"content"`
	}
	if !decode(w, r, &req) {
		return
	}

	c, ok := s.ownComment(w, r)
	if !ok {
		return
	}
	defer s.mu.Unlock()

	if fields := required(map[string]string{"content": req.Content}); fields != nil {
		writeError(w, http.StatusUnprocessableEntity, "The content field is required.", fields)
		return
	}

	c.Content = req.Content
	c.UpdatedAt = s.now()
	writeOK(w, "Comment updated successfully", nil)
}

func (s *Server) deleteComment(w http.ResponseWriter, r *http.Request) {
	c, ok := s.ownComment(w, r)
	if !ok {
		return
	}
	defer s.mu.Unlock()

	s.comments[c.PostID] = slices.DeleteFunc(s.comments[c.PostID], func(other *instaapi.Comment) bool {
		return other == c
	})
	writeOK(w, "Comment deleted successfully", nil)
}
