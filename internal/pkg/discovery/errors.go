package discovery

import "github.com/pkg/errors"

// ErrNoServerFound indicates no wall server answered the LAN lookup.
var ErrNoServerFound = errors.New("no server found on the local network")
