package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"instaapp/internal/config"
	"instaapp/internal/core"
)

// File keeps the token in a single file readable by the owner only.
type File struct {
	Logger *slog.Logger
	Config *config.Config

	path string
}

func NewFile(path string) *File {
	return &File{path: path}
}

func (f *File) Init(_ context.Context) error {
	if f.Logger != nil {
		f.Logger = f.Logger.With("component", "storage.File")
	}

	if f.Config != nil && f.Config.TokenPath != "" {
		f.path = f.Config.TokenPath
	}
	if f.path != "" {
		return nil
	}

	path, err := DefaultTokenPath()
	if err != nil {
		return err
	}
	f.path = path

	return nil
}

func (f *File) Path() string {
	return f.path
}

func (f *File) Load(_ context.Context) (string, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", core.ErrNoToken
	}
	if err != nil {
		return "", fmt.Errorf("reading token: %w", err)
	}

	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", core.ErrNoToken
	}

	return token, nil
}

func (f *File) Save(_ context.Context, token string) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("creating token dir: %w", err)
	}

	if err := os.WriteFile(f.path, []byte(token), 0o600); err != nil {
		return fmt.Errorf("writing token: %w", err)
	}

	if f.Logger != nil {
		f.Logger.Debug("token saved", "path", f.path)
	}
	return nil
}

func (f *File) Clear(_ context.Context) error {
	err := os.Remove(f.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing token: %w", err)
	}
	return nil
}

// DefaultTokenPath is $XDG_CONFIG_HOME/instaapp/auth-token or its platform equivalent.
func DefaultTokenPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating config dir: %w", err)
	}
	return filepath.Join(dir, "instaapp", TokenKey), nil
}
