package divergence

import "errors"

// ErrSourceNotFound is returned when the source ref cannot be resolved
var ErrSourceNotFound = errors.New("source ref not found")
