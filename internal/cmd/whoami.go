package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"
	"github.com/zhulik/pal"

	"instaapp/internal/session"
	"instaapp/internal/ui"
)

var whoamiCmd = &cli.Command{
	Name:  "whoami",
	Usage: "Show the logged in user",
	Action: func(ctx context.Context, c *cli.Command) error {
		return run(ctx, c, pal.Provide(&whoami{out: os.Stdout}))
	},
}

type whoami struct {
	Logger  *slog.Logger
	Session *session.Session

	out io.Writer
}

func (w *whoami) Run(ctx context.Context) error {
	user, err := enter(ctx, w.Session, ui.NewToaster(w.out, w.Logger))
	if err != nil {
		return err
	}

	ui.Cards{Viewer: w.Session}.User(w.out, user)
	return nil
}
