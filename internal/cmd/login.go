package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"
	"github.com/zhulik/pal"

	"instaapp/internal/cmd/flags"
	"instaapp/internal/session"
	"instaapp/internal/ui"
	"instaapp/internal/validation"
)

var loginCmd = &cli.Command{
	Name:  "login",
	Usage: "Log in and keep the credential for the following commands",
	Flags: []cli.Flag{
		flags.Username,
		flags.Password,
	},
	Action: func(ctx context.Context, c *cli.Command) error {
		return run(ctx, c, pal.Provide(&login{
			out: os.Stdout,
			form: validation.LoginForm{
				Username: c.String("username"),
				Password: c.String("password"),
			},
		}))
	},
}

type login struct {
	Logger  *slog.Logger
	Session *session.Session

	out    io.Writer
	form   validation.LoginForm
	prompt prompter
}

func (l *login) Run(ctx context.Context) error {
	defer l.prompt.Close()

	notify := ui.NewToaster(l.out, l.Logger)

	if err := l.Session.RequireGuest(); err != nil {
		return fmt.Errorf("%w, run 'instaapp logout' first", err)
	}

	if err := l.prompt.ask("Username", &l.form.Username); err != nil {
		return err
	}
	if err := l.prompt.secret("Password", &l.form.Password); err != nil {
		return err
	}

	message, err := l.Session.Login(ctx, l.form)
	if err != nil {
		return fail(l.out, notify, err, session.LoginFailed)
	}
	notify.Success(message)

	user, err := enter(ctx, l.Session, notify)
	if err != nil {
		return err
	}
	fmt.Fprintf(l.out, "Logged in as %s @%s.\n", user.Name, user.Username)

	return nil
}
