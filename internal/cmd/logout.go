package cmd

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"
	"github.com/zhulik/pal"

	"instaapp/internal/session"
	"instaapp/internal/ui"
)

var logoutCmd = &cli.Command{
	Name:  "logout",
	Usage: "Invalidate the credential and forget it",
	Action: func(ctx context.Context, c *cli.Command) error {
		return run(ctx, c, pal.Provide(&logout{out: os.Stdout}))
	},
}

type logout struct {
	Logger  *slog.Logger
	Session *session.Session

	out io.Writer
}

func (l *logout) Run(ctx context.Context) error {
	notify := ui.NewToaster(l.out, l.Logger)

	message, err := l.Session.Logout(ctx)
	if errors.Is(err, session.ErrNoCredential) {
		return err
	}
	if err != nil {
		return fail(l.out, notify, err, session.LogoutFailed)
	}
	notify.Success(message)

	return nil
}
