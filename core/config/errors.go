package config

import "errors"

// ErrNilConfig is returned when Load is called with a nil destination.
var ErrNilConfig = errors.New("config: nil config pointer")
