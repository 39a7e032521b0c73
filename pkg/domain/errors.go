package domain

import (
	"errors"

	"github.com/aretw0/genson/pkg/tgl"
)

// ErrNodeNotFound is returned by loaders when a key has no definition.
// The Accessor itself never returns it; missing keys become sentinel descriptors.
var ErrNodeNotFound = errors.New("node not found")

// ErrRecursionLimit is returned when expansion or text evaluation nests
// deeper than the configured ceiling.
var ErrRecursionLimit = tgl.ErrRecursionLimit
