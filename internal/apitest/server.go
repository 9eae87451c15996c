// Package apitest runs an in-memory fake of the InstaApp REST API for tests.
package apitest

import (
	"net/http"
	"net/http/httptest"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/samber/lo"

	"instaapp/pkg/instaapi"
)

const (
	DefaultPassword = "password"

	secret = "apitest-secret"
)

type user struct {
	instaapi.User
	password string
}

type post struct {
	instaapi.Post
	likes map[int64]bool
}

type block struct {
	gate    chan struct{}
	entered chan struct{}
}

type failure struct {
	status  int
	message string
	fields  map[string][]string
}

// Server is safe for concurrent use. Route keys used by Fail, Block and Hits are
// "METHOD pattern", e.g. "GET /posts/{id}/comments".
type Server struct {
	*httptest.Server

	TokenTTL time.Duration

	mu       sync.Mutex
	now      func() time.Time
	lastID   int64
	users    map[int64]*user
	posts    []*post
	comments map[int64][]*instaapi.Comment
	revoked  map[string]bool
	failures map[string][]failure
	blocks   map[string]*block
	hits     map[string]int
}

func New(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		TokenTTL: time.Hour,
		now:      time.Now,
		users:    map[int64]*user{},
		comments: map[int64][]*instaapi.Comment{},
		revoked:  map[string]bool{},
		failures: map[string][]failure{},
		blocks:   map[string]*block{},
		hits:     map[string]int{},
	}
	s.Server = httptest.NewServer(s.router())
	t.Cleanup(func() {
		s.releaseAll()
		s.Close()
	})

	return s
}

func (s *Server) releaseAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for route, b := range s.blocks {
		delete(s.blocks, route)
		close(b.gate)
	}
}

// Client returns an API client pointed at the server.
func (s *Server) Client(t testing.TB) *instaapi.Client {
	t.Helper()

	client := instaapi.NewClient(&instaapi.ClientConfig{
		BaseURL: s.URL,
		Timeout: 5 * time.Second,
	})
	t.Cleanup(func() {
		_ = client.Close()
	})
	return client
}

func (s *Server) nextID() int64 {
	s.lastID++
	return s.lastID
}

// AddUser registers a user with DefaultPassword.
func (s *Server) AddUser(name, username string) instaapi.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.addUser(name, username, DefaultPassword).User
}

func (s *Server) addUser(name, username, password string) *user {
	now := s.now()
	u := &user{
		User: instaapi.User{
			ID:        s.nextID(),
			Name:      name,
			Username:  username,
			CreatedAt: now,
			UpdatedAt: now,
		},
		password: password,
	}
	s.users[u.ID] = u
	return u
}

// AddPost publishes a post on behalf of userID and returns it as its author sees it.
func (s *Server) AddPost(userID int64, caption string) instaapi.Post {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.addPost(userID, lo.ToPtr(caption), nil)
	return s.view(p, userID)
}

// AddPosts publishes n posts captioned "post N", oldest first.
func (s *Server) AddPosts(userID int64, n int) []instaapi.Post {
	return lo.Times(n, func(i int) instaapi.Post {
		return s.AddPost(userID, "post "+itoa(int64(i+1)))
	})
}

func (s *Server) addPost(userID int64, caption, imagePath *string) *post {
	now := s.now()
	p := &post{
		Post: instaapi.Post{
			ID:        s.nextID(),
			UserID:    userID,
			Caption:   caption,
			ImagePath: imagePath,
			CreatedAt: now,
			UpdatedAt: now,
		},
		likes: map[int64]bool{},
	}
	s.posts = slices.Insert(s.posts, 0, p)
	return p
}

func (s *Server) AddComment(postID, userID int64, content string) instaapi.Comment {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.commentView(s.addComment(postID, userID, content))
}

func (s *Server) addComment(postID, userID int64, content string) *instaapi.Comment {
	now := s.now()
	c := &instaapi.Comment{
		ID:        s.nextID(),
		UserID:    userID,
		PostID:    postID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.comments[postID] = slices.Insert(s.comments[postID], 0, c)
	return c
}

// Like records a like of postID by userID.
func (s *Server) Like(postID, userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p := s.findPost(postID); p != nil {
		p.likes[userID] = true
	}
}

// Post returns the stored post as viewer sees it.
func (s *Server) Post(id, viewer int64) (instaapi.Post, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.findPost(id)
	if p == nil {
		return instaapi.Post{}, false
	}
	return s.view(p, viewer), true
}

func (s *Server) Comments(postID int64) []instaapi.Comment {
	s.mu.Lock()
	defer s.mu.Unlock()

	return lo.Map(s.comments[postID], func(c *instaapi.Comment, _ int) instaapi.Comment {
		return s.commentView(c)
	})
}

// Fail makes the next request to route respond with status and message. Calls
// queue up, one failure per request.
func (s *Server) Fail(route string, status int, message string) {
	s.FailFields(route, status, message, nil)
}

func (s *Server) FailFields(route string, status int, message string, fields map[string][]string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failures[route] = append(s.failures[route], failure{status: status, message: message, fields: fields})
}

// Block holds every request to route until the returned release is called.
// Entered receives one value per request that reached the block.
func (s *Server) Block(route string) (entered <-chan struct{}, release func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := &block{
		gate:    make(chan struct{}),
		entered: make(chan struct{}, 16),
	}
	if prev, ok := s.blocks[route]; ok {
		close(prev.gate)
	}
	s.blocks[route] = b

	var once sync.Once
	return b.entered, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()

			if s.blocks[route] == b {
				delete(s.blocks, route)
				close(b.gate)
			}
		})
	}
}

// Hits counts requests that reached route, including failed ones.
func (s *Server) Hits(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.hits[route]
}

// Token issues a fresh credential for userID.
func (s *Server) Token(userID int64) string {
	return s.issue(userID, s.now().Add(s.TokenTTL))
}

// ExpiredToken issues a credential that expired a minute ago.
func (s *Server) ExpiredToken(userID int64) string {
	return s.issue(userID, s.now().Add(-time.Minute))
}

func (s *Server) findPost(id int64) *post {
	p, _ := lo.Find(s.posts, func(p *post) bool {
		return p.ID == id
	})
	return p
}

func (s *Server) author(userID int64) instaapi.Author {
	u, ok := s.users[userID]
	if !ok {
		return instaapi.Author{ID: userID}
	}
	return u.User.Author()
}

func (s *Server) view(p *post, viewer int64) instaapi.Post {
	v := p.Post
	v.LikesCount = len(p.likes)
	v.CommentsCount = len(s.comments[p.ID])
	v.IsLiked = p.likes[viewer]
	v.User = s.author(p.UserID)
	return v
}

func (s *Server) commentView(c *instaapi.Comment) instaapi.Comment {
	v := *c
	v.User = s.author(c.UserID)
	return v
}

func (s *Server) intercept(route string) (*failure, *block) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.hits[route]++

	var fail *failure
	if queued := s.failures[route]; len(queued) > 0 {
		fail = &queued[0]
		s.failures[route] = queued[1:]
	}

	return fail, s.blocks[route]
}

func (s *Server) wrap(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fail, b := s.intercept(route)

		if b != nil {
			select {
			case b.entered <- struct{}{}:
			default:
			}
			select {
			case <-b.gate:
			case <-r.Context().Done():
				return
			}
		}

		if fail != nil {
			writeError(w, fail.status, fail.message, fail.fields)
			return
		}

		next(w, r)
	}
}
