package cmd

import (
	"context"
	"errors"
	"log/slog"

	"github.com/chzyer/readline"
	"github.com/urfave/cli/v3"
	"github.com/zhulik/pal"

	"instaapp/internal/cmd/flags"
	"instaapp/internal/core"
	"instaapp/internal/feed"
	"instaapp/internal/session"
	"instaapp/internal/ui"
)

var browseCmd = &cli.Command{
	Name:  "browse",
	Usage: "Browse the feed interactively",
	Flags: []cli.Flag{
		flags.Mode,
	},
	Action: func(ctx context.Context, c *cli.Command) error {
		mode, err := feed.ParseMode(c.String("mode"))
		if err != nil {
			return err
		}

		return run(ctx, c, pal.Provide(&browse{mode: mode}))
	},
}

type browse struct {
	Logger  *slog.Logger
	Session *session.Session
	API     core.API

	mode feed.Mode
}

func (b *browse) Run(ctx context.Context) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          ui.Prompt,
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	// Readline's writer redraws the prompt around output from background loads.
	out := rl.Stdout()
	notify := ui.NewToaster(out, b.Logger)

	if _, err := enter(ctx, b.Session, notify); err != nil {
		return err
	}

	shell := &ui.Shell{
		Logger:  b.Logger.With("component", "ui.Shell"),
		Feed:    feed.New(b.API, b.Session, notify),
		Mode:    b.mode,
		Session: b.Session,
		In:      rl,
		Out:     out,
		Cards:   ui.Cards{Viewer: b.Session},
	}

	err = shell.Run(ctx)
	if errors.Is(err, ui.ErrSessionExpired) {
		return reported(err)
	}
	return err
}
