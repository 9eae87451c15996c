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

var registerCmd = &cli.Command{
	Name:  "register",
	Usage: "Create an account",
	Flags: []cli.Flag{
		flags.Name,
		flags.Username,
		flags.Password,
	},
	Action: func(ctx context.Context, c *cli.Command) error {
		return run(ctx, c, pal.Provide(&register{
			out: os.Stdout,
			form: validation.RegisterForm{
				Name:     c.String("name"),
				Username: c.String("username"),
				Password: c.String("password"),
			},
		}))
	},
}

type register struct {
	Logger  *slog.Logger
	Session *session.Session

	out    io.Writer
	form   validation.RegisterForm
	prompt prompter
}

func (r *register) Run(ctx context.Context) error {
	defer r.prompt.Close()

	notify := ui.NewToaster(r.out, r.Logger)

	if err := r.Session.RequireGuest(); err != nil {
		return fmt.Errorf("%w, run 'instaapp logout' first", err)
	}

	if err := r.prompt.ask("Name", &r.form.Name); err != nil {
		return err
	}
	if err := r.prompt.ask("Username", &r.form.Username); err != nil {
		return err
	}
	if err := r.prompt.secret("Password", &r.form.Password); err != nil {
		return err
	}

	message, err := r.Session.Register(ctx, r.form)
	if err != nil {
		return fail(r.out, notify, err, session.RegisterFailed)
	}
	notify.Success(message)
	fmt.Fprintln(r.out, "Run 'instaapp login' to sign in.")

	return nil
}
