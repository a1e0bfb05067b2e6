package client

import (
	"context"
	"errors"
	"testing"

	"github.com/cmlabs-hris/timeclock-go/internal/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedPinger struct {
	err error
}

func (p *scriptedPinger) Ping(ctx context.Context) error {
	return p.err
}

func TestMonitor_Transitions(t *testing.T) {
	pinger := &scriptedPinger{}
	m := NewMonitor(pinger)
	ctx := context.Background()

	onlineCalls := 0
	m.OnOnline(func(ctx context.Context) error {
		onlineCalls++
		return nil
	})

	assert.Equal(t, StateUnknown, m.State())
	assert.False(t, m.KnownOffline())

	require.NoError(t, m.Probe(ctx))
	assert.Equal(t, StateOnline, m.State())
	assert.Equal(t, 1, onlineCalls, "first successful probe counts as coming online")

	require.NoError(t, m.Probe(ctx))
	assert.Equal(t, 1, onlineCalls)

	pinger.err = apperror.New(apperror.KindNetwork, "ping")
	require.NoError(t, m.Probe(ctx))
	assert.True(t, m.KnownOffline())

	pinger.err = nil
	require.NoError(t, m.Probe(ctx))
	assert.Equal(t, 2, onlineCalls)
}

func TestMonitor_Observe(t *testing.T) {
	m := NewMonitor(&scriptedPinger{})
	require.NoError(t, m.Probe(context.Background()))

	m.Observe(nil)
	m.Observe(apperror.New(apperror.KindNotFound, "entry"))
	assert.Equal(t, StateOnline, m.State())

	m.Observe(apperror.Wrap(apperror.KindNetwork, "POST", errors.New("timeout")))
	assert.Equal(t, StateOffline, m.State())
}

func TestMonitor_CallbackError(t *testing.T) {
	m := NewMonitor(&scriptedPinger{})
	boom := errors.New("queue locked")
	m.OnOnline(func(ctx context.Context) error { return boom })

	assert.ErrorIs(t, m.Probe(context.Background()), boom)
	assert.Equal(t, StateOnline, m.State())
}
