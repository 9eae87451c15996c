package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	libnats "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"instaapp/internal/config"
	"instaapp/internal/core"
)

const defaultBucket = "instaapp"

// NATS keeps the token in a JetStream key-value bucket, shared by every
// machine connected to the same server.
type NATS struct {
	Logger *slog.Logger
	Config *config.Config

	js jetstream.JetStream
	kv jetstream.KeyValue
}

func (n *NATS) Init(ctx context.Context) error {
	n.Logger = n.Logger.With("component", "storage.NATS")

	url := n.Config.NATSURL
	if url == "" {
		url = libnats.DefaultURL
	}
	bucket := n.Config.NATSBucket
	if bucket == "" {
		bucket = defaultBucket
	}

	nc, err := libnats.Connect(url, libnats.Name("instaapp"))
	if err != nil {
		return fmt.Errorf("connecting to nats: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return err
	}
	n.js = js

	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket: bucket,
	})
	if err != nil {
		nc.Close()
		return fmt.Errorf("opening bucket %s: %w", bucket, err)
	}
	n.kv = kv

	n.Logger.Debug("KeyValue created or updated", "bucket", bucket)
	return nil
}

func (n *NATS) HealthCheck(context.Context) error {
	_, err := n.js.Conn().RTT()
	return err
}

func (n *NATS) Shutdown(context.Context) error {
	return n.js.Conn().Drain()
}

func (n *NATS) Load(ctx context.Context) (string, error) {
	entry, err := n.kv.Get(ctx, TokenKey)
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return "", core.ErrNoToken
	}
	if err != nil {
		return "", fmt.Errorf("reading token: %w", err)
	}

	if len(entry.Value()) == 0 {
		return "", core.ErrNoToken
	}
	return string(entry.Value()), nil
}

func (n *NATS) Save(ctx context.Context, token string) error {
	if _, err := n.kv.Put(ctx, TokenKey, []byte(token)); err != nil {
		return fmt.Errorf("failed to store key %s: %w", TokenKey, err)
	}
	return nil
}

func (n *NATS) Clear(ctx context.Context) error {
	err := n.kv.Delete(ctx, TokenKey)
	if err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
		return fmt.Errorf("deleting key %s: %w", TokenKey, err)
	}
	return nil
}
