package apitest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (s *Server) router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	s.handle(r, http.MethodPost, "/login", s.login)
	s.handle(r, http.MethodPost, "/register", s.register)

	r.Group(func(r chi.Router) {
		r.Use(s.authenticate)

		s.handle(r, http.MethodGet, "/me", s.me)
		s.handle(r, http.MethodPost, "/logout", s.logout)

		s.handle(r, http.MethodGet, "/posts", s.listPosts(false))
		s.handle(r, http.MethodGet, "/posts/me", s.listPosts(true))
		s.handle(r, http.MethodPost, "/posts", s.createPost)
		s.handle(r, http.MethodPut, "/posts/{id}", s.updatePost)
		s.handle(r, http.MethodDelete, "/posts/{id}", s.deletePost)
		s.handle(r, http.MethodPost, "/posts/{id}/like", s.like)
		s.handle(r, http.MethodDelete, "/posts/{id}/like", s.unlike)

		s.handle(r, http.MethodGet, "/posts/{id}/comments", s.listComments)
		s.handle(r, http.MethodPost, "/posts/{id}/comment", s.createComment)
		s.handle(r, http.MethodPut, "/posts/{id}/comment/{commentId}", s.updateComment)
		s.handle(r, http.MethodDelete, "/posts/{id}/comment/{commentId}", s.deleteComment)
	})

	return r
}

func (s *Server) handle(r chi.Router, method, pattern string, h http.HandlerFunc) {
	r.Method(method, pattern, s.wrap(method+" "+pattern, h))
}
