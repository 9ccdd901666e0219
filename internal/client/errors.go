package client

import "errors"

// ErrNotConfigured is returned on the first call of a client whose credential
// or target is missing from the environment.
var ErrNotConfigured = errors.New("client not configured")
