package client

import "github.com/pkg/errors"

// ErrNotConnected indicates Run was called before Connect.
var ErrNotConnected = errors.New("not connected")

// ErrNotRegistered indicates the server has not assigned an identity yet.
var ErrNotRegistered = errors.New("not registered")
