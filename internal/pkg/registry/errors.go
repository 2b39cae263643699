package registry

import "github.com/pkg/errors"

// ErrUnknownIdentity indicates an update referenced an identity the registry does not hold.
var ErrUnknownIdentity = errors.New("unknown identity")
