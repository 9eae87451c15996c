package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
)

const (
	TokenStoreFile  = "file"
	TokenStoreNATS  = "nats"
	TokenStoreRedis = "redis"
)

type Config struct {
	APIURL  string        `flag:"api-url"`
	Timeout time.Duration `flag:"timeout"`

	TokenStore string `flag:"token-store"`
	TokenPath  string `flag:"token-path"`
	NATSURL    string `flag:"nats-url"`
	NATSBucket string `flag:"nats-bucket"`
	RedisURL   string `flag:"redis-url"`

	MetricsAddr string `flag:"metrics-addr"`
	LogLevel    string `flag:"log-level"`
}

// LoadDotEnv loads the given env files into the process environment without
// overriding variables that are already set. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}

	for _, file := range files {
		err := godotenv.Load(file)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", file, err)
		}
	}

	return nil
}
