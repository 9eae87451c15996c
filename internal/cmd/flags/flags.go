package flags

import (
	"fmt"
	"slices"
	"time"

	libnats "github.com/nats-io/nats.go"
	"github.com/urfave/cli/v3"

	"instaapp/internal/config"
	"instaapp/internal/feed"
	"instaapp/pkg/instaapi"
)

var (
	validLogLevels   = []string{"debug", "info", "warn", "error"}
	validTokenStores = []string{config.TokenStoreFile, config.TokenStoreNATS, config.TokenStoreRedis}
)

var APIURL = &cli.StringFlag{
	Name:    "api-url",
	Aliases: []string{"u"},
	Usage:   "The base URL of the InstaApp API",
	Value:   instaapi.DefaultConfig.BaseURL,
	Sources: cli.EnvVars("INSTAAPP_API_URL"),
}

var Timeout = &cli.DurationFlag{
	Name:    "timeout",
	Usage:   "The transport timeout of API requests",
	Value:   10 * time.Second,
	Sources: cli.EnvVars("INSTAAPP_TIMEOUT"),
}

var TokenStore = &cli.StringFlag{
	Name:      "token-store",
	Usage:     fmt.Sprintf("Where the credential is kept between runs: %v", validTokenStores),
	Value:     config.TokenStoreFile,
	Validator: oneOf("token store", validTokenStores),
	Sources:   cli.EnvVars("INSTAAPP_TOKEN_STORE"),
}

var TokenPath = &cli.StringFlag{
	Name:        "token-path",
	Usage:       "The credential file of the file token store",
	DefaultText: "$XDG_CONFIG_HOME/instaapp/auth-token",
	Sources:     cli.EnvVars("INSTAAPP_TOKEN_PATH"),
}

var NATSURL = &cli.StringFlag{
	Name:    "nats-url",
	Aliases: []string{"n"},
	Usage:   "The URL of the NATS server of the nats token store",
	Value:   libnats.DefaultURL,
	Sources: cli.EnvVars("NATS_URL"),
}

var NATSBucket = &cli.StringFlag{
	Name:    "nats-bucket",
	Usage:   "The JetStream key-value bucket of the nats token store",
	Value:   "instaapp",
	Sources: cli.EnvVars("NATS_BUCKET"),
}

var RedisURL = &cli.StringFlag{
	Name:    "redis-url",
	Usage:   "The URL of the Redis server of the redis token store",
	Value:   "redis://localhost:6379/0",
	Sources: cli.EnvVars("REDIS_URL"),
}

var MetricsAddr = &cli.StringFlag{
	Name:        "metrics-addr",
	Usage:       "Serve /metrics and /health on this address",
	DefaultText: "disabled",
	Sources:     cli.EnvVars("INSTAAPP_METRICS_ADDR"),
}

var LogLevel = &cli.StringFlag{
	Name:      "log-level",
	Aliases:   []string{"l"},
	Usage:     "The level of the logs",
	Value:     "info",
	Validator: oneOf("log level", validLogLevels),
	Sources:   cli.EnvVars("LOG_LEVEL"),
}

var Username = &cli.StringFlag{
	Name:  "username",
	Usage: "Prompted for when missing",
}

var Password = &cli.StringFlag{
	Name:    "password",
	Usage:   "Prompted for when missing",
	Sources: cli.EnvVars("INSTAAPP_PASSWORD"),
}

var Name = &cli.StringFlag{
	Name:  "name",
	Usage: "Prompted for when missing",
}

var Image = &cli.StringFlag{
	Name:    "image",
	Aliases: []string{"i"},
	Usage:   "A JPG, PNG or WebP file of at most 1MB",
}

var Mode = &cli.StringFlag{
	Name:      "mode",
	Aliases:   []string{"m"},
	Usage:     "explore lists every post, mine only yours",
	Value:     string(feed.ModeExplore),
	Validator: oneOf("mode", []string{string(feed.ModeExplore), string(feed.ModeMine)}),
}

var Pages = &cli.IntFlag{
	Name:    "pages",
	Aliases: []string{"p"},
	Usage:   "How many pages to load",
	Value:   1,
}

var Raw = &cli.BoolFlag{
	Name:  "raw",
	Usage: "Dump the loaded posts as Go values instead of cards",
}

func oneOf(what string, allowed []string) func(string) error {
	return func(value string) error {
		if !slices.Contains(allowed, value) {
			return fmt.Errorf("invalid %s: %s, allowed values are: %s", what, value, allowed)
		}
		return nil
	}
}
