package registry

import (
	"errors"
	"fmt"
)

// ErrNoSuchItem matches every *NoSuchItemError via errors.Is.
var ErrNoSuchItem = errors.New("registry: no such item")

// NoSuchItemError reports an access to a key that is not in the registry.
type NoSuchItemError struct {
	Key string
}

func (e *NoSuchItemError) Error() string {
	return fmt.Sprintf("registry: no such item: %q", e.Key)
}

func (e *NoSuchItemError) Is(target error) bool {
	return target == ErrNoSuchItem
}
