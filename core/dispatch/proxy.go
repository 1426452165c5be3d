package dispatch

import (
	"context"
	"sync"
)

// Bus is the dispatcher surface collaborators should depend on. *Dispatcher
// and *Proxy both implement it.
type Bus interface {
	Connect(signal Signal, receiver Receiver, opts ...ConnectOption) error
	Disconnect(signal Signal, receiver Receiver, opts ...ConnectOption) (bool, error)
	DisconnectAll(filters ...Filter) int
	LiveReceivers(signal Signal, sender Sender) []Receiver
	Send(ctx context.Context, signal Signal, sender Sender, data Data) ([]Outcome, error)
	SendStrict(ctx context.Context, signal Signal, sender Sender, data Data) ([]any, error)
	PurgeDead() int
}

// Proxy is a Bus that forwards to a swappable source. It lets long-lived
// references to a bus survive reconfiguration: hand out the proxy, then
// replace the backing dispatcher with SetSource (tests, app restarts).
type Proxy struct {
	mu     sync.RWMutex
	source Bus
}

// NewProxy creates a proxy around the given source. A nil source defaults to
// a fresh dispatcher with default options.
func NewProxy(source Bus) *Proxy {
	if source == nil {
		source = New()
	}
	return &Proxy{source: source}
}

// SetSource replaces the bus the proxy forwards to. A nil source is ignored.
// In-flight calls keep the source they started with.
func (p *Proxy) SetSource(source Bus) {
	if source == nil {
		return
	}
	p.mu.Lock()
	p.source = source
	p.mu.Unlock()
}

func (p *Proxy) src() Bus {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.source
}

func (p *Proxy) Connect(signal Signal, receiver Receiver, opts ...ConnectOption) error {
	return p.src().Connect(signal, receiver, opts...)
}

func (p *Proxy) Disconnect(signal Signal, receiver Receiver, opts ...ConnectOption) (bool, error) {
	return p.src().Disconnect(signal, receiver, opts...)
}

func (p *Proxy) DisconnectAll(filters ...Filter) int {
	return p.src().DisconnectAll(filters...)
}

func (p *Proxy) LiveReceivers(signal Signal, sender Sender) []Receiver {
	return p.src().LiveReceivers(signal, sender)
}

func (p *Proxy) Send(ctx context.Context, signal Signal, sender Sender, data Data) ([]Outcome, error) {
	return p.src().Send(ctx, signal, sender, data)
}

func (p *Proxy) SendStrict(ctx context.Context, signal Signal, sender Sender, data Data) ([]any, error) {
	return p.src().SendStrict(ctx, signal, sender, data)
}

func (p *Proxy) PurgeDead() int {
	return p.src().PurgeDead()
}
