package registry

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/dmitrymomot/appkit/core/dispatch"
	"github.com/dmitrymomot/appkit/pkg/logger"
)

// Signals emitted on registry mutation. The sender is the *Registry instance
// itself, so subscribers can scope their interest to one registry via
// dispatch.WithSender.
const (
	// SignalItemSet fires after an item is inserted or replaced.
	// Data: {"key": string}.
	SignalItemSet dispatch.Signal = "registry.item_set"

	// SignalItemRemoved fires after an item is removed.
	// Data: {"key": string}.
	SignalItemRemoved dispatch.Signal = "registry.item_removed"
)

// Bus is the dispatch surface the registry needs for its mutation signals.
// *dispatch.Dispatcher and *dispatch.Proxy satisfy it.
type Bus interface {
	Send(ctx context.Context, signal dispatch.Signal, sender dispatch.Sender, data dispatch.Data) ([]dispatch.Outcome, error)
}

// Registry is a thread-safe, process-wide store of named objects. It is meant
// to be constructed once at application start-up and injected into whatever
// needs shared lookups; it is not a hidden global.
type Registry struct {
	mu     sync.RWMutex
	items  map[string]any
	bus    Bus
	logger *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithBus attaches a dispatch bus; the registry then emits SignalItemSet and
// SignalItemRemoved on every mutation. Without it, mutations are silent.
func WithBus(bus Bus) Option {
	return func(r *Registry) {
		if bus != nil {
			r.bus = bus
		}
	}
}

// WithLogger configures structured logging. If not set, logging is discarded.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New creates an empty registry.
//
// Example:
//
//	d := dispatch.New()
//	reg := registry.New(registry.WithBus(d))
func New(opts ...Option) *Registry {
	r := &Registry{
		items:  make(map[string]any),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Set stores a value under key, replacing any previous value.
func (r *Registry) Set(key string, value any) {
	r.mu.Lock()
	r.items[key] = value
	r.mu.Unlock()

	r.emit(SignalItemSet, key)
}

// Get returns the value stored under key.
func (r *Registry) Get(key string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	value, ok := r.items[key]
	return value, ok
}

// Lookup returns the value stored under key, or a *NoSuchItemError when the
// key is absent.
func (r *Registry) Lookup(key string) (any, error) {
	value, ok := r.Get(key)
	if !ok {
		return nil, &NoSuchItemError{Key: key}
	}
	return value, nil
}

// MustGet returns the value stored under key, panicking when absent. Use for
// items whose presence is an application start-up invariant.
func (r *Registry) MustGet(key string) any {
	value, err := r.Lookup(key)
	if err != nil {
		panic(err)
	}
	return value
}

// GetOrDefault returns the value stored under key, or def when absent. The
// registry is not modified.
func (r *Registry) GetOrDefault(key string, def any) any {
	if value, ok := r.Get(key); ok {
		return value
	}
	return def
}

// SetDefault stores value under key only when the key is absent, and returns
// the value now present.
func (r *Registry) SetDefault(key string, value any) any {
	r.mu.Lock()
	existing, ok := r.items[key]
	if !ok {
		r.items[key] = value
	}
	r.mu.Unlock()

	if ok {
		return existing
	}
	r.emit(SignalItemSet, key)
	return value
}

// Pop removes and returns the value stored under key.
func (r *Registry) Pop(key string) (any, bool) {
	r.mu.Lock()
	value, ok := r.items[key]
	if ok {
		delete(r.items, key)
	}
	r.mu.Unlock()

	if ok {
		r.emit(SignalItemRemoved, key)
	}
	return value, ok
}

// Del removes the value stored under key, returning a *NoSuchItemError when
// the key is absent.
func (r *Registry) Del(key string) error {
	if _, ok := r.Pop(key); !ok {
		return &NoSuchItemError{Key: key}
	}
	return nil
}

// Has reports whether key is present.
func (r *Registry) Has(key string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.items[key]
	return ok
}

// Len returns the number of stored items.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

// Keys returns the stored keys in unspecified order.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.items))
	for k := range r.items {
		keys = append(keys, k)
	}
	return keys
}

// emit runs outside the registry lock so a receiver may call back into the
// registry without deadlocking.
func (r *Registry) emit(signal dispatch.Signal, key string) {
	if r.bus == nil {
		return
	}

	outcomes, err := r.bus.Send(context.Background(), signal, r, dispatch.Data{"key": key})
	if err != nil {
		r.logger.Error("registry: failed to emit signal",
			logger.Signal(string(signal)),
			slog.String("key", key),
			logger.Error(err))
		return
	}
	for _, o := range outcomes {
		if o.Failed() {
			r.logger.Error("registry: signal receiver failed",
				logger.Signal(string(signal)),
				slog.String("key", key),
				logger.Error(o.Err))
		}
	}
}
