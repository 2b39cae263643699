package session

import "github.com/pkg/errors"

// ErrSessionClosed indicates a send was attempted on a closed session.
var ErrSessionClosed = errors.New("session closed")

// ErrSendBufferFull indicates the session's consumer is too far behind and
// the message was dropped.
var ErrSendBufferFull = errors.New("send buffer full")
