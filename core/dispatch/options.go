package dispatch

import "log/slog"

// defaultSweepEvery is how many Connect calls may pass between amortized
// sweeps of dead weak entries.
const defaultSweepEvery = 64

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger configures structured logging for dispatcher operations.
// If not set, logging is discarded.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithSweepEvery configures the amortized sweep: every n Connect calls the
// dispatcher purges dead weak entries from the whole table, bounding memory
// growth for signals that are connected to often but dispatched rarely.
// Defaults to 64. Zero or negative disables the amortized sweep, leaving
// lazy eviction and explicit PurgeDead calls.
func WithSweepEvery(n int) Option {
	return func(d *Dispatcher) {
		d.sweepEvery = n
	}
}

// ConnectOption configures a single Connect or Disconnect call.
type ConnectOption func(*connectConfig)

type connectConfig struct {
	sender Sender
	pinned bool
}

// WithSender scopes the registration to dispatches from one concrete sender.
// Without it the registration matches every sender.
//
// Example:
//
//	d.Connect("user.created", sendWelcomeEmail, dispatch.WithSender(userService))
func WithSender(sender Sender) ConnectOption {
	return func(c *connectConfig) {
		c.sender = sender
	}
}

// WithPinned makes the table hold a strong reference to a weak-capable
// receiver's referent, keeping it alive until Disconnect. Useful for
// short-lived closures that have no other owner. Has no effect on receivers
// the table already holds strongly.
func WithPinned() ConnectOption {
	return func(c *connectConfig) {
		c.pinned = true
	}
}

// Filter narrows a DisconnectAll call.
type Filter func(*filterConfig)

type filterConfig struct {
	signal *Signal
	sender *Sender
}

// BySignal restricts DisconnectAll to registrations for one signal.
func BySignal(signal Signal) Filter {
	return func(c *filterConfig) {
		c.signal = &signal
	}
}

// BySender restricts DisconnectAll to registrations scoped to one sender.
// Note that BySender(dispatch.Any) matches only Any-scoped registrations,
// not everything.
func BySender(sender Sender) Filter {
	return func(c *filterConfig) {
		c.sender = &sender
	}
}
