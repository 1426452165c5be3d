package registry_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/appkit/core/dispatch"
	"github.com/dmitrymomot/appkit/core/registry"
)

// signalLog records emitted registry signals.
type signalLog struct {
	mu     sync.Mutex
	events []string
}

func (l *signalLog) record(event string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
}

func (l *signalLog) recorded() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}

type signalProbe struct {
	log *signalLog
}

func (p *signalProbe) Receive(ctx context.Context, sender dispatch.Sender, data dispatch.Data) (any, error) {
	meta, _ := dispatch.MetaFromContext(ctx)
	p.log.record(string(meta.Signal) + ":" + data["key"].(string))
	return nil, nil
}

func TestRegistry_SetGet(t *testing.T) {
	t.Parallel()

	reg := registry.New()

	reg.Set("answer", 42)

	value, ok := reg.Get("answer")
	require.True(t, ok)
	assert.Equal(t, 42, value)

	assert.True(t, reg.Has("answer"))
	assert.False(t, reg.Has("question"))
	assert.Equal(t, 1, reg.Len())
	assert.Equal(t, []string{"answer"}, reg.Keys())
}

func TestRegistry_LookupErrors(t *testing.T) {
	t.Parallel()

	reg := registry.New()

	_, err := reg.Lookup("missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, registry.ErrNoSuchItem)

	var nsi *registry.NoSuchItemError
	require.ErrorAs(t, err, &nsi)
	assert.Equal(t, "missing", nsi.Key)

	assert.PanicsWithError(t, `registry: no such item: "missing"`, func() {
		reg.MustGet("missing")
	})

	assert.ErrorIs(t, reg.Del("missing"), registry.ErrNoSuchItem)
}

func TestRegistry_Defaults(t *testing.T) {
	t.Parallel()

	reg := registry.New()

	assert.Equal(t, "fallback", reg.GetOrDefault("k", "fallback"))
	assert.False(t, reg.Has("k"), "GetOrDefault must not store")

	assert.Equal(t, "v1", reg.SetDefault("k", "v1"))
	assert.Equal(t, "v1", reg.SetDefault("k", "v2"), "existing value wins")
	assert.Equal(t, "v1", reg.GetOrDefault("k", "fallback"))
}

func TestRegistry_Pop(t *testing.T) {
	t.Parallel()

	reg := registry.New()
	reg.Set("k", "v")

	value, ok := reg.Pop("k")
	require.True(t, ok)
	assert.Equal(t, "v", value)

	_, ok = reg.Pop("k")
	assert.False(t, ok)
	assert.Equal(t, 0, reg.Len())
}

func TestRegistry_EmitsMutationSignals(t *testing.T) {
	t.Parallel()

	d := dispatch.New()
	reg := registry.New(registry.WithBus(d))
	log := &signalLog{}

	require.NoError(t, d.Connect(registry.SignalItemSet, &signalProbe{log: log}, dispatch.WithSender(reg)))
	require.NoError(t, d.Connect(registry.SignalItemRemoved, &signalProbe{log: log}, dispatch.WithSender(reg)))

	reg.Set("db", "pool")
	reg.SetDefault("db", "other") // no-op, no signal
	reg.SetDefault("cache", "lru")
	require.NoError(t, reg.Del("db"))
	_, _ = reg.Pop("cache")

	assert.Equal(t, []string{
		"registry.item_set:db",
		"registry.item_set:cache",
		"registry.item_removed:db",
		"registry.item_removed:cache",
	}, log.recorded())
}

func TestRegistry_SignalsAreSenderScoped(t *testing.T) {
	t.Parallel()

	d := dispatch.New()
	reg1 := registry.New(registry.WithBus(d))
	reg2 := registry.New(registry.WithBus(d))
	log := &signalLog{}

	require.NoError(t, d.Connect(registry.SignalItemSet, &signalProbe{log: log}, dispatch.WithSender(reg1)))

	reg2.Set("ignored", 1)
	reg1.Set("seen", 2)

	assert.Equal(t, []string{"registry.item_set:seen"}, log.recorded())
}

func TestRegistry_ReceiverMayCallBack(t *testing.T) {
	t.Parallel()

	d := dispatch.New()
	reg := registry.New(registry.WithBus(d))

	var observed any
	echo := dispatch.ReceiverFunc(func(ctx context.Context, sender dispatch.Sender, data dispatch.Data) (any, error) {
		// Reading back from the registry inside the mutation signal must not
		// deadlock.
		observed, _ = reg.Get(data["key"].(string))
		return nil, nil
	})
	require.NoError(t, d.Connect(registry.SignalItemSet, echo))

	reg.Set("k", "v")
	assert.Equal(t, "v", observed)
}
