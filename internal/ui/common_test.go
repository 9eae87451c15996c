package ui_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"instaapp/internal/apitest"
	"instaapp/internal/feed"
	"instaapp/internal/session"
	"instaapp/internal/storage"
	"instaapp/internal/ui"
	"instaapp/pkg/instaapi"

	"github.com/stretchr/testify/require"
)

const pollInterval = 10 * time.Millisecond

type output struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (o *output) Write(p []byte) (int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.buf.Write(p)
}

func (o *output) String() string {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.buf.String()
}

// lines feeds the shell one line per send and reports EOF once closed.
type lines struct {
	ch     chan string
	closed chan struct{}
	once   sync.Once

	mu      sync.Mutex
	prompts []string
}

func newLines() *lines {
	return &lines{ch: make(chan string), closed: make(chan struct{})}
}

func (l *lines) Readline() (string, error) {
	select {
	case line := <-l.ch:
		return line, nil
	case <-l.closed:
		return "", io.EOF
	}
}

func (l *lines) SetPrompt(prompt string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.prompts = append(l.prompts, prompt)
}

func (l *lines) Prompt() string {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.prompts) == 0 {
		return ""
	}
	return l.prompts[len(l.prompts)-1]
}

func (l *lines) Close() error {
	l.once.Do(func() { close(l.closed) })
	return nil
}

func (l *lines) send(t *testing.T, line string) {
	t.Helper()

	select {
	case l.ch <- line:
	case <-l.closed:
		t.Fatalf("shell stopped reading before %q", line)
	case <-time.After(5 * time.Second):
		t.Fatalf("shell did not read %q", line)
	}
}

type fixture struct {
	srv   *apitest.Server
	user  instaapi.User
	other instaapi.User

	out   *output
	in    *lines
	shell *ui.Shell

	done chan error
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	srv := apitest.New(t)
	user := srv.AddUser("Jane Doe", "jane")
	other := srv.AddUser("John Roe", "john")

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := srv.Client(t)

	sess := &session.Session{
		Logger: logger,
		Tokens: storage.NewMemory(srv.Token(user.ID)),
		API:    client,
	}
	require.NoError(t, sess.Init(context.Background()))
	_, err := sess.Enter(context.Background())
	require.NoError(t, err)

	out := &output{}
	in := newLines()

	return &fixture{
		srv:   srv,
		user:  user,
		other: other,
		out:   out,
		in:    in,
		shell: &ui.Shell{
			Logger:  logger,
			Feed:    feed.New(client, sess, ui.NewToaster(out, logger)),
			Session: sess,
			In:      in,
			Out:     out,
		},
		done: make(chan error, 1),
	}
}

func (f *fixture) run(t *testing.T) {
	t.Helper()

	go func() {
		f.done <- f.shell.Run(context.Background())
	}()
	t.Cleanup(func() { _ = f.in.Close() })
}

func (f *fixture) wait(t *testing.T) error {
	t.Helper()

	select {
	case err := <-f.done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("shell did not stop")
		return nil
	}
}

func (f *fixture) eventually(t *testing.T, text string) {
	t.Helper()

	require.Eventually(t, func() bool {
		return bytes.Contains([]byte(f.out.String()), []byte(text))
	}, 5*time.Second, pollInterval, "output never contained %q:\n%s", text, f.out.String())
}
