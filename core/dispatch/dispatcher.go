package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"sync"

	"github.com/dmitrymomot/appkit/pkg/logger"
)

// Dispatcher routes signals to connected receivers. The zero value is not
// usable; create instances with New. All methods are safe for concurrent use.
//
// The internal mutex guards table bookkeeping only. Receiver invocation
// happens outside the lock on the caller's goroutine, so a receiver may call
// Connect, Disconnect, or Send on the same dispatcher without deadlocking.
type Dispatcher struct {
	mu       sync.Mutex
	buckets  map[bucketKey]*bucket
	index    map[Signal]map[Sender]struct{}
	connects int

	sweepEvery int
	logger     *slog.Logger
}

// bucketKey addresses one (signal, sender) registration bucket.
type bucketKey struct {
	signal Signal
	sender Sender
}

// bucket holds registrations in connect order.
type bucket struct {
	entries []*entry
}

// entry is one registration. recv is the receiver as registered (possibly a
// weak wrapper); pinned, when non-nil, is a strong reference the table itself
// holds, either because the receiver is not weak-capable or because the
// caller asked for pinning.
type entry struct {
	key    receiverKey
	recv   Receiver
	pinned Receiver
}

func (e *entry) live() (Receiver, bool) {
	if e.pinned != nil {
		return e.pinned, true
	}
	if w, ok := e.recv.(weakable); ok {
		return w.strengthen()
	}
	return e.recv, true
}

func (e *entry) dead() bool {
	_, ok := e.live()
	return !ok
}

// liveEntry is a snapshot element: a strengthened receiver plus the identity
// it was registered under.
type liveEntry struct {
	key  receiverKey
	recv Receiver
}

// New creates a dispatcher.
//
// Example:
//
//	d := dispatch.New(
//	    dispatch.WithLogger(logger),
//	    dispatch.WithSweepEvery(128),
//	)
func New(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		buckets:    make(map[bucketKey]*bucket),
		index:      make(map[Signal]map[Sender]struct{}),
		sweepEvery: defaultSweepEvery,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Connect registers a receiver for a signal, scoped to the sender given via
// WithSender (Any when omitted). Registration is idempotent: reconnecting a
// receiver with the same identity for the same (signal, sender) refreshes the
// existing entry in place, keeping its original position in the invocation
// order. The refresh applies the new options, so the last registration wins
// when the pinned flag changes.
//
// Receivers built with Weak or Method are tracked weakly; anything else is
// held strongly by the table and must be removed with Disconnect.
func (d *Dispatcher) Connect(signal Signal, receiver Receiver, opts ...ConnectOption) error {
	cfg := connectConfig{sender: Any}
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := checkSignal(signal); err != nil {
		return err
	}
	key, err := identityOf(receiver)
	if err != nil {
		return err
	}
	if err := checkSender(cfg.sender); err != nil {
		return err
	}

	var pinned Receiver
	weakly := false
	if w, ok := receiver.(weakable); ok {
		target, alive := w.strengthen()
		if !alive {
			return ErrReceiverGone
		}
		if cfg.pinned {
			pinned = target
		} else {
			weakly = true
		}
	} else {
		pinned = receiver
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.maybeSweepLocked()

	bk := bucketKey{signal: signal, sender: cfg.sender}
	b := d.buckets[bk]
	if b == nil {
		b = &bucket{}
		d.buckets[bk] = b
		senders := d.index[signal]
		if senders == nil {
			senders = make(map[Sender]struct{})
			d.index[signal] = senders
		}
		senders[cfg.sender] = struct{}{}
	}

	for _, e := range b.entries {
		if e.key == key {
			e.recv = receiver
			e.pinned = pinned
			d.logger.Debug("dispatch: receiver registration refreshed",
				logger.Signal(string(signal)),
				logger.Receiver(receiver),
				slog.Bool("weak", weakly))
			return nil
		}
	}

	b.entries = append(b.entries, &entry{key: key, recv: receiver, pinned: pinned})
	d.logger.Debug("dispatch: receiver connected",
		logger.Signal(string(signal)),
		logger.Receiver(receiver),
		slog.Bool("weak", weakly))
	return nil
}

// Disconnect removes a receiver registration, matching by receiver identity
// rather than wrapper equality: a freshly built Weak or Method wrapper for
// the same referent matches the original registration. Reports whether an
// entry was removed.
func (d *Dispatcher) Disconnect(signal Signal, receiver Receiver, opts ...ConnectOption) (bool, error) {
	cfg := connectConfig{sender: Any}
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := checkSignal(signal); err != nil {
		return false, err
	}
	key, err := identityOf(receiver)
	if err != nil {
		return false, err
	}
	if err := checkSender(cfg.sender); err != nil {
		return false, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	bk := bucketKey{signal: signal, sender: cfg.sender}
	b := d.buckets[bk]
	if b == nil {
		return false, nil
	}

	for i, e := range b.entries {
		if e.key != key {
			continue
		}
		b.entries = append(b.entries[:i], b.entries[i+1:]...)
		if len(b.entries) == 0 {
			d.dropBucketLocked(bk)
		}
		d.logger.Debug("dispatch: receiver disconnected",
			logger.Signal(string(signal)),
			logger.Receiver(receiver))
		return true, nil
	}

	return false, nil
}

// DisconnectAll removes registrations in bulk, optionally narrowed with
// BySignal and BySender. With no filters it empties the dispatcher. Returns
// the number of entries removed, dead ones included.
func (d *Dispatcher) DisconnectAll(filters ...Filter) int {
	var cfg filterConfig
	for _, f := range filters {
		f(&cfg)
	}

	if cfg.sender != nil {
		if t := reflect.TypeOf(*cfg.sender); t != nil && !t.Comparable() {
			return 0
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	removed := 0
	for bk, b := range d.buckets {
		if cfg.signal != nil && bk.signal != *cfg.signal {
			continue
		}
		if cfg.sender != nil && bk.sender != *cfg.sender {
			continue
		}
		removed += len(b.entries)
		d.dropBucketLocked(bk)
	}

	if removed > 0 {
		d.logger.Debug("dispatch: receivers disconnected in bulk", logger.Count("removed", removed))
	}
	return removed
}

// LiveReceivers resolves the receivers a Send(signal, sender) would invoke,
// in invocation order: receivers connected for the concrete sender first, in
// connect order, then Any-connected receivers in connect order, deduplicated
// by identity. Dead weak entries discovered along the way are evicted.
func (d *Dispatcher) LiveReceivers(signal Signal, sender Sender) []Receiver {
	if checkSignal(signal) != nil || checkSender(sender) != nil {
		return nil
	}

	entries := d.snapshot(signal, sender)
	receivers := make([]Receiver, len(entries))
	for i, le := range entries {
		receivers[i] = le.recv
	}
	return receivers
}

// Send dispatches a signal to every live matching receiver, synchronously and
// in LiveReceivers order, on the calling goroutine. Each receiver's failure
// (returned error or panic) is captured in its Outcome; a failing receiver
// never prevents the remaining ones from running. The returned error reports
// caller misuse only (empty signal, uncomparable sender), never a receiver
// fault.
//
// The matching set is snapshotted before the first invocation, so a receiver
// that connects or disconnects receivers for the same signal affects the next
// dispatch, not the one invoking it.
func (d *Dispatcher) Send(ctx context.Context, signal Signal, sender Sender, data Data) ([]Outcome, error) {
	if err := checkSignal(signal); err != nil {
		return nil, err
	}
	if err := checkSender(sender); err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	meta := newMeta(signal, sender)
	ctx = WithMeta(ctx, meta)

	entries := d.snapshot(signal, sender)

	outcomes := make([]Outcome, 0, len(entries))
	for _, le := range entries {
		value, err := invoke(ctx, le.recv, sender, data)
		if err != nil {
			d.logger.ErrorContext(ctx, "dispatch: receiver failed",
				logger.Signal(string(signal)),
				slog.String("dispatch_id", meta.ID),
				logger.Receiver(le.recv),
				logger.Error(err))
			outcomes = append(outcomes, Outcome{
				Receiver: le.recv,
				Err:      &ReceiverError{Receiver: le.recv, Err: err},
			})
			continue
		}
		outcomes = append(outcomes, Outcome{Receiver: le.recv, Value: value})
	}

	return outcomes, nil
}

// SendStrict dispatches like Send but converts captured failures into a
// single *DispatchError after every receiver has run; it never short-circuits,
// so each matching receiver gets its one invocation even when an earlier one
// fails. On success it returns the receivers' values in invocation order.
func (d *Dispatcher) SendStrict(ctx context.Context, signal Signal, sender Sender, data Data) ([]any, error) {
	outcomes, err := d.Send(ctx, signal, sender, data)
	if err != nil {
		return nil, err
	}

	values := make([]any, 0, len(outcomes))
	var failures []*ReceiverError
	for _, o := range outcomes {
		if o.Err != nil {
			var re *ReceiverError
			if errors.As(o.Err, &re) {
				failures = append(failures, re)
			} else {
				failures = append(failures, &ReceiverError{Receiver: o.Receiver, Err: o.Err})
			}
			continue
		}
		values = append(values, o.Value)
	}

	if len(failures) > 0 {
		return nil, &DispatchError{Signal: signal, Failures: failures}
	}
	return values, nil
}

// PurgeDead walks the whole table and removes entries whose weak referent has
// been collected. Returns the number of entries removed. Dispatch correctness
// never depends on calling this: dead entries are also evicted lazily during
// Send/LiveReceivers and by the amortized sweep that runs every WithSweepEvery
// connects. PurgeDead exists for callers that register many short-lived weak
// receivers against rarely dispatched signals.
func (d *Dispatcher) PurgeDead() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.purgeLocked()
}

// snapshot collects the live matching receivers for one dispatch under the
// lock, evicting dead entries it passes over. The caller invokes the result
// with no lock held.
func (d *Dispatcher) snapshot(signal Signal, sender Sender) []liveEntry {
	d.mu.Lock()
	defer d.mu.Unlock()

	var out []liveEntry
	seen := make(map[receiverKey]struct{})

	collect := func(bk bucketKey) {
		b := d.buckets[bk]
		if b == nil {
			return
		}
		kept := b.entries[:0]
		for _, e := range b.entries {
			r, ok := e.live()
			if !ok {
				continue
			}
			kept = append(kept, e)
			if _, dup := seen[e.key]; dup {
				continue
			}
			seen[e.key] = struct{}{}
			out = append(out, liveEntry{key: e.key, recv: r})
		}
		for i := len(kept); i < len(b.entries); i++ {
			b.entries[i] = nil
		}
		b.entries = kept
		if len(b.entries) == 0 {
			d.dropBucketLocked(bk)
		}
	}

	collect(bucketKey{signal: signal, sender: sender})
	if sender != Any {
		collect(bucketKey{signal: signal, sender: Any})
	}

	return out
}

func (d *Dispatcher) maybeSweepLocked() {
	if d.sweepEvery <= 0 {
		return
	}
	d.connects++
	if d.connects < d.sweepEvery {
		return
	}
	d.connects = 0
	if n := d.purgeLocked(); n > 0 {
		d.logger.Debug("dispatch: swept dead receivers", logger.Count("removed", n))
	}
}

func (d *Dispatcher) purgeLocked() int {
	removed := 0
	for bk, b := range d.buckets {
		kept := b.entries[:0]
		for _, e := range b.entries {
			if e.dead() {
				removed++
				continue
			}
			kept = append(kept, e)
		}
		for i := len(kept); i < len(b.entries); i++ {
			b.entries[i] = nil
		}
		b.entries = kept
		if len(b.entries) == 0 {
			d.dropBucketLocked(bk)
		}
	}
	return removed
}

func (d *Dispatcher) dropBucketLocked(bk bucketKey) {
	delete(d.buckets, bk)
	if senders := d.index[bk.signal]; senders != nil {
		delete(senders, bk.sender)
		if len(senders) == 0 {
			delete(d.index, bk.signal)
		}
	}
}

func checkSignal(signal Signal) error {
	if signal == "" {
		return ErrEmptySignal
	}
	return nil
}

func checkSender(sender Sender) error {
	if sender == nil {
		return nil
	}
	if !reflect.TypeOf(sender).Comparable() {
		return ErrUncomparableSender
	}
	return nil
}

// invoke runs one receiver, converting a panic into an error so sibling
// receivers still get their turn.
func invoke(ctx context.Context, r Receiver, sender Sender, data Data) (value any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %v", ErrReceiverPanic, rec)
		}
	}()
	return r.Receive(ctx, sender, data)
}
