package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
	"github.com/zhulik/pal"

	"instaapp/internal/cmd/flags"
	"instaapp/internal/config"
	"instaapp/internal/core"
	"instaapp/internal/gateway"
	"instaapp/internal/metrics"
	"instaapp/internal/session"
	"instaapp/internal/storage"
	"instaapp/pkg/clicfg"
)

const VERSION = "0.1.0"

var cmd = &cli.Command{
	Name:    "instaapp",
	Usage:   "InstaApp in the terminal: browse, post, like and comment",
	Version: VERSION,
	Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
		if err := initLogger(os.Stderr, c.String("log-level")); err != nil {
			return ctx, err
		}
		return ctx, nil
	},
	Flags: []cli.Flag{
		flags.APIURL,
		flags.Timeout,
		flags.TokenStore,
		flags.TokenPath,
		flags.NATSURL,
		flags.NATSBucket,
		flags.RedisURL,
		flags.MetricsAddr,
		flags.LogLevel,
	},
	Commands: []*cli.Command{
		loginCmd,
		registerCmd,
		logoutCmd,
		whoamiCmd,
		postCmd,
		feedCmd,
		browseCmd,
	},
}

func Run() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}

// run starts the shared services around runner and blocks until it returns.
func run(ctx context.Context, c *cli.Command, runner pal.ServiceDef) error {
	cfg := config.Config{}
	if err := clicfg.ParseFlags(c, &cfg); err != nil {
		return err
	}

	store, err := storage.Provide(cfg.TokenStore)
	if err != nil {
		return err
	}

	return pal.New(
		pal.Provide(&cfg),
		store,
		pal.Provide[core.API](&gateway.Gateway{}),
		pal.Provide(&session.Session{}),
		pal.Provide(&metrics.Server{}),
		runner,
	).
		InjectSlog().
		InitTimeout(5*time.Second).
		HealthCheckTimeout(1*time.Second).
		ShutdownTimeout(5*time.Second).
		Run(ctx, syscall.SIGINT, syscall.SIGTERM)
}
