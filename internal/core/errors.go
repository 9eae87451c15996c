package core

import "errors"

var (
	ErrNoToken = errors.New("no token stored")
)
