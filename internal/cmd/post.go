package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v3"
	"github.com/zhulik/pal"

	"instaapp/internal/cmd/flags"
	"instaapp/internal/core"
	"instaapp/internal/feed"
	"instaapp/internal/session"
	"instaapp/internal/ui"
	"instaapp/internal/validation"
)

var postCmd = &cli.Command{
	Name:      "post",
	Usage:     "Publish a post with a caption, an image or both",
	ArgsUsage: "[caption]",
	Flags: []cli.Flag{
		flags.Image,
	},
	Action: func(ctx context.Context, c *cli.Command) error {
		return run(ctx, c, pal.Provide(&post{
			out:     os.Stdout,
			caption: strings.Join(c.Args().Slice(), " "),
			image:   c.String("image"),
		}))
	},
}

type post struct {
	Logger  *slog.Logger
	Session *session.Session
	API     core.API

	out     io.Writer
	caption string
	image   string
}

func (p *post) Run(ctx context.Context) error {
	notify := ui.NewToaster(p.out, p.Logger)

	if _, err := enter(ctx, p.Session, notify); err != nil {
		return err
	}

	form := validation.PostForm{Caption: p.caption}
	if p.image != "" {
		image, err := validation.LoadImage(p.image)
		if err != nil {
			showFields(p.out, err)
			return reported(err)
		}
		form.Image = image
	}

	created, err := feed.New(p.API, p.Session, notify).Create(ctx, form)
	if err != nil {
		showFields(p.out, err)
		return reported(err)
	}

	ui.Cards{Viewer: p.Session}.Post(p.out, *created)
	return nil
}
