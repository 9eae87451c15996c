package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/k0kubun/pp"
	"github.com/urfave/cli/v3"
	"github.com/zhulik/pal"

	"instaapp/internal/cmd/flags"
	"instaapp/internal/core"
	"instaapp/internal/feed"
	"instaapp/internal/session"
	"instaapp/internal/ui"
)

var feedCmd = &cli.Command{
	Name:  "feed",
	Usage: "Print the first pages of the feed",
	Flags: []cli.Flag{
		flags.Mode,
		flags.Pages,
		flags.Raw,
	},
	Action: func(ctx context.Context, c *cli.Command) error {
		mode, err := feed.ParseMode(c.String("mode"))
		if err != nil {
			return err
		}

		return run(ctx, c, pal.Provide(&feedDump{
			out:   os.Stdout,
			mode:  mode,
			pages: max(int(c.Int("pages")), 1),
			raw:   c.Bool("raw"),
		}))
	},
}

type feedDump struct {
	Logger  *slog.Logger
	Session *session.Session
	API     core.API

	out   io.Writer
	mode  feed.Mode
	pages int
	raw   bool
}

func (d *feedDump) Run(ctx context.Context) error {
	notify := ui.NewToaster(d.out, d.Logger)

	if _, err := enter(ctx, d.Session, notify); err != nil {
		return err
	}

	posts := feed.New(d.API, d.Session, notify)
	if err := posts.Mount(ctx, d.mode); err != nil {
		return reported(err)
	}
	for page := 1; page < d.pages && !posts.Exhausted(); page++ {
		if _, err := posts.LoadNext(ctx); err != nil {
			return reported(err)
		}
	}

	if d.raw {
		_, err := pp.Fprintln(d.out, posts.Posts())
		return err
	}

	ui.Cards{Viewer: d.Session}.Posts(d.out, posts.Posts())
	if posts.Exhausted() {
		fmt.Fprintln(d.out, "No more posts.")
	}
	return nil
}
