// Package storage persists the session credential between runs.
package storage

import (
	"errors"
	"fmt"

	"github.com/zhulik/pal"

	"instaapp/internal/config"
	"instaapp/internal/core"
)

// TokenKey is the fixed key the credential is stored under in every backend.
const TokenKey = "auth-token"

var (
	ErrUnknownStore = errors.New("unknown token store")
)

// Provide returns the token store service for the configured backend.
func Provide(kind string) (pal.ServiceDef, error) {
	switch kind {
	case "", config.TokenStoreFile:
		return pal.Provide[core.TokenStore](&File{}), nil
	case config.TokenStoreNATS:
		return pal.Provide[core.TokenStore](&NATS{}), nil
	case config.TokenStoreRedis:
		return pal.Provide[core.TokenStore](&Redis{}), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownStore, kind)
	}
}
