package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/chzyer/readline"
	"github.com/samber/lo"

	"instaapp/internal/core"
	"instaapp/internal/feed"
	"instaapp/internal/validation"
	"instaapp/pkg/async"
	"instaapp/pkg/instaapi"
)

const (
	Prompt = "instaapp> "

	sessionExpired = "Session expired, please login again."
	noMorePosts    = "No more posts."
	noComments     = "No comments yet."
)

var (
	ErrSessionExpired = errors.New("session expired")
)

// LineReader is the line editor the shell reads commands from.
type LineReader interface {
	Readline() (string, error)
	SetPrompt(prompt string)
	Close() error
}

// Authority is the session as the shell sees it.
type Authority interface {
	core.Viewer
	OnTeardown(fn func(reason error))
}

// Shell is the interactive feed browser. Page loads run in the background so
// other commands stay available while they are in flight.
type Shell struct {
	Logger  *slog.Logger
	Feed    *feed.Feed
	Mode    feed.Mode
	Session Authority
	In      LineReader
	Out     io.Writer
	Cards   Cards

	outMu sync.Mutex

	mu     sync.Mutex
	thread *feed.Thread
	jobs   []*async.JobHandle[bool]
	wg     sync.WaitGroup

	expired atomic.Bool
}

func (s *Shell) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if s.Cards.Viewer == nil {
		s.Cards.Viewer = s.Session
	}

	s.Session.OnTeardown(func(error) {
		if s.expired.CompareAndSwap(false, true) {
			cancel()
			_ = s.In.Close()
		}
	})

	s.In.SetPrompt(Prompt)
	s.printf("Type 'help' for commands.\n")
	mode := s.Mode
	if mode == "" {
		mode = s.Feed.Mode()
	}
	s.mount(ctx, mode)

	err := s.loop(ctx)

	s.stopJobs()

	if s.expired.Load() {
		s.printf("%s\n", sessionExpired)
		return ErrSessionExpired
	}
	return err
}

func (s *Shell) loop(ctx context.Context) error {
	for {
		line, err := s.In.Readline()
		if s.expired.Load() {
			return nil
		}
		if errors.Is(err, readline.ErrInterrupt) {
			if line == "" {
				return nil
			}
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		if s.exec(ctx, strings.TrimSpace(line)) {
			return nil
		}
	}
}

func (s *Shell) printf(format string, args ...any) {
	s.outMu.Lock()
	defer s.outMu.Unlock()

	fmt.Fprintf(s.Out, format, args...)
}

// render runs fn with exclusive access to the output.
func (s *Shell) render(fn func(w io.Writer)) {
	s.outMu.Lock()
	defer s.outMu.Unlock()

	fn(s.Out)
}

func (s *Shell) currentThread() *feed.Thread {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.thread
}

func (s *Shell) setThread(t *feed.Thread) {
	s.mu.Lock()
	s.thread = t
	s.mu.Unlock()

	if t == nil {
		s.In.SetPrompt(Prompt)
		return
	}
	s.In.SetPrompt(fmt.Sprintf("comments #%d> ", t.PostID()))
}

// background runs fn as a job and calls done with its result once it returns.
func (s *Shell) background(ctx context.Context, fn func(ctx context.Context) (bool, error), done func(loaded bool)) {
	job := async.Job(ctx, fn)

	s.mu.Lock()
	s.jobs = append(lo.Filter(s.jobs, func(j *async.JobHandle[bool], _ int) bool {
		return j.Running()
	}), job)
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()

		loaded, err := job.Wait(context.Background())
		if err != nil {
			s.Logger.Debug("background load failed", "error", err)
			return
		}
		done(loaded)
	}()
}

// Jobs counts the page loads still tracked by the shell.
func (s *Shell) Jobs() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.jobs)
}

func (s *Shell) stopJobs() {
	s.mu.Lock()
	jobs := s.jobs
	s.jobs = nil
	s.mu.Unlock()

	for _, job := range jobs {
		job.Stop()
	}
	s.wg.Wait()
}

func (s *Shell) exec(ctx context.Context, line string) bool {
	name, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	if thread := s.currentThread(); thread != nil {
		return s.execThread(ctx, thread, name, rest)
	}

	switch name {
	case "":
	case "help":
		s.printf("%s", feedHelp)
	case "more":
		s.more(ctx)
	case "mode":
		mode, err := feed.ParseMode(rest)
		if err != nil {
			s.printf("Usage: mode explore|mine\n")
			return false
		}
		s.mount(ctx, mode)
	case "like":
		s.withID(rest, func(id int64, _ string) {
			err := s.Feed.ToggleLike(ctx, id)
			s.afterPost(id, err)
		})
	case "edit":
		s.withID(rest, func(id int64, caption string) {
			err := s.Feed.EditCaption(ctx, id, caption)
			s.afterPost(id, err)
		})
	case "delete":
		s.withID(rest, func(id int64, _ string) {
			if !s.confirm(fmt.Sprintf("Delete post #%d? [y/N] ", id)) {
				return
			}
			s.report(s.Feed.Delete(ctx, id), "post", id)
		})
	case "post":
		s.createPost(ctx, rest)
	case "comments":
		s.withID(rest, func(id int64, _ string) {
			s.openThread(ctx, id)
		})
	case "whoami":
		if user := s.Session.CurrentUser(); user != nil {
			s.render(func(w io.Writer) { s.Cards.User(w, user) })
		}
	case "quit", "exit":
		return true
	default:
		s.printf("Unknown command %q. Type 'help' for commands.\n", name)
	}

	return false
}

func (s *Shell) execThread(ctx context.Context, thread *feed.Thread, name, rest string) bool {
	switch name {
	case "":
	case "help":
		s.printf("%s", threadHelp)
	case "more":
		if thread.Fetching() {
			s.printf("Already loading.\n")
			return false
		}
		if thread.Exhausted() {
			s.printf("No more comments.\n")
			return false
		}
		prev := len(thread.Comments())
		s.background(ctx, thread.LoadNext, func(loaded bool) {
			if !loaded {
				return
			}
			comments := thread.Comments()
			s.render(func(w io.Writer) { s.Cards.Comments(w, comments[min(prev, len(comments)):]) })
		})
	case "add":
		comment, err := thread.Create(ctx, validation.CommentForm{Content: rest})
		if err != nil {
			s.report(err, "comment", 0)
			return false
		}
		s.render(func(w io.Writer) { s.Cards.Comment(w, *comment) })
	case "edit":
		s.withID(rest, func(id int64, content string) {
			err := thread.Edit(ctx, id, validation.CommentForm{Content: content})
			if err != nil {
				s.report(err, "comment", id)
				return
			}
			if c, ok := thread.Comment(id); ok {
				s.render(func(w io.Writer) { s.Cards.Comment(w, c) })
			}
		})
	case "delete":
		s.withID(rest, func(id int64, _ string) {
			if !s.confirm(fmt.Sprintf("Delete comment #%d? [y/N] ", id)) {
				return
			}
			s.report(thread.Delete(ctx, id), "comment", id)
		})
	case "back":
		s.setThread(nil)
	case "quit", "exit":
		return true
	default:
		s.printf("Unknown command %q. Type 'help' for commands.\n", name)
	}

	return false
}

func (s *Shell) mount(ctx context.Context, mode feed.Mode) {
	s.background(ctx, func(ctx context.Context) (bool, error) {
		return true, s.Feed.Mount(ctx, mode)
	}, func(bool) {
		if s.Feed.Mode() != mode {
			return
		}
		posts := s.Feed.Posts()
		s.render(func(w io.Writer) {
			fmt.Fprintf(w, "-- %s --\n", mode)
			s.Cards.Posts(w, posts)
			if s.Feed.Exhausted() {
				fmt.Fprintln(w, noMorePosts)
			}
		})
	})
}

func (s *Shell) more(ctx context.Context) {
	if s.Feed.Fetching() {
		s.printf("Already loading.\n")
		return
	}
	if s.Feed.Exhausted() {
		s.printf("%s\n", noMorePosts)
		return
	}

	prev := len(s.Feed.Posts())
	s.background(ctx, s.Feed.LoadNext, func(loaded bool) {
		if !loaded {
			return
		}
		posts := s.Feed.Posts()
		s.render(func(w io.Writer) {
			s.Cards.Posts(w, posts[min(prev, len(posts)):])
			if s.Feed.Exhausted() {
				fmt.Fprintln(w, noMorePosts)
			}
		})
	})
}

func (s *Shell) openThread(ctx context.Context, id int64) {
	thread, err := s.Feed.Thread(id)
	if err != nil {
		s.report(err, "post", id)
		return
	}
	if err := thread.Open(ctx); err != nil {
		return
	}

	s.setThread(thread)

	comments := thread.Comments()
	s.render(func(w io.Writer) {
		fmt.Fprintf(w, "-- comments on #%d (%d) --\n", id, thread.Count())
		if len(comments) == 0 {
			fmt.Fprintln(w, noComments)
			return
		}
		s.Cards.Comments(w, comments)
	})
}

func (s *Shell) createPost(ctx context.Context, rest string) {
	form := validation.PostForm{}

	words := strings.Fields(rest)
	if n := len(words); n > 0 && strings.HasPrefix(words[n-1], "@") {
		image, err := validation.LoadImage(strings.TrimPrefix(words[n-1], "@"))
		if err != nil {
			s.report(err, "post", 0)
			return
		}
		form.Image = image
		words = words[:n-1]
	}
	form.Caption = strings.Join(words, " ")

	post, err := s.Feed.Create(ctx, form)
	if err != nil {
		s.report(err, "post", 0)
		return
	}
	s.render(func(w io.Writer) { s.Cards.Post(w, *post) })
}

func (s *Shell) afterPost(id int64, err error) {
	if err != nil {
		s.report(err, "post", id)
		return
	}
	if post, ok := s.Feed.Post(id); ok {
		s.render(func(w io.Writer) { s.Cards.Post(w, post) })
	}
}

func (s *Shell) withID(rest string, fn func(id int64, rest string)) {
	raw, tail, _ := strings.Cut(rest, " ")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		s.printf("Expected an item id, got %q.\n", raw)
		return
	}
	fn(id, strings.TrimSpace(tail))
}

func (s *Shell) confirm(question string) bool {
	s.In.SetPrompt(question)
	defer s.setThread(s.currentThread())

	answer, err := s.In.Readline()
	if err != nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// report explains failures the handlers leave to the caller. Server and
// transport failures were already notified.
func (s *Shell) report(err error, kind string, id int64) {
	if err == nil {
		return
	}

	if fields := validation.Fields(err); fields != nil {
		s.render(func(w io.Writer) {
			fmt.Fprintln(w, "Invalid input:")
			FieldErrors(w, fields)
		})
		return
	}

	switch {
	case errors.Is(err, feed.ErrBusy) && id == 0:
		s.printf("A %s is already being submitted.\n", kind)
	case errors.Is(err, feed.ErrBusy):
		s.printf("The %s #%d is busy, wait for the current action to finish.\n", kind, id)
	case errors.Is(err, feed.ErrNotOwner):
		s.printf("You can only modify your own %ss.\n", kind)
	case errors.Is(err, feed.ErrNotFound):
		s.printf("The %s #%d is not loaded.\n", kind, id)
	case errors.Is(err, instaapi.ErrTransport), errors.As(err, new(*instaapi.Error)):
		s.Logger.Debug("action failed", "kind", kind, "id", id, "error", err)
	default:
		s.printf("%s\n", err)
	}
}

const feedHelp = `Commands:
  more                      load the next page
  mode explore|mine         switch between all posts and your posts
  like <id>                 like or unlike a post
  edit <id> <caption>       replace the caption of your post
  delete <id>               delete your post
  post <caption> [@image]   publish a post, the image is a local file
  comments <id>             open the comments of a post
  whoami                    show the logged in user
  quit                      leave
`

const threadHelp = `Comment commands:
  more                      load more comments
  add <text>                comment on the post
  edit <id> <text>          replace your comment
  delete <id>               delete your comment
  back                      return to the feed
`
