package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/toolyhq/tooly-storefront/internal/cart"
)

func newTestCart(t *testing.T) *cart.Context {
	t.Helper()
	c, err := cart.NewContext(cartFacadeStub{}, nil)
	require.NoError(t, err)
	return c
}

func TestManagerGetIsLazyAndStable(t *testing.T) {
	m, err := NewManager(&fakeFacade{}, &fakeCollector{}, nil)
	require.NoError(t, err)
	require.Equal(t, 0, m.Len())

	cartCtx := newTestCart(t)
	first, err := m.Get("session-a", cartCtx)
	require.NoError(t, err)
	second, err := m.Get("session-a", cartCtx)
	require.NoError(t, err)
	require.Same(t, first, second)
	require.Equal(t, 1, m.Len())
}

func TestManagerGetRequiresSessionID(t *testing.T) {
	m, err := NewManager(&fakeFacade{}, &fakeCollector{}, nil)
	require.NoError(t, err)

	_, err = m.Get("", newTestCart(t))
	require.Error(t, err)
}

func TestManagerAbandonDiscardsStepState(t *testing.T) {
	facade := &fakeFacade{activeOrder: orderInCart(), methods: standardMethods()}
	m, err := NewManager(facade, &fakeCollector{}, nil)
	require.NoError(t, err)

	cartCtx := newTestCart(t)
	machine, err := m.Get("session-a", cartCtx)
	require.NoError(t, err)
	require.NoError(t, machine.Begin(context.Background()))
	require.NoError(t, machine.SubmitAddress(context.Background(), testCustomer(), testAddress()))
	require.Equal(t, StepShipping, machine.CurrentStep())

	m.Abandon("session-a")
	_, ok := m.Peek("session-a")
	require.False(t, ok)

	replacement, err := m.Get("session-a", cartCtx)
	require.NoError(t, err)
	require.Equal(t, StepAddress, replacement.CurrentStep(), "a fresh machine starts over")
}

func TestManagerSweepIdleDropsStaleMachines(t *testing.T) {
	m, err := NewManager(&fakeFacade{}, &fakeCollector{}, nil)
	require.NoError(t, err)

	stale, err := m.Get("stale", newTestCart(t))
	require.NoError(t, err)
	stale.mu.Lock()
	stale.lastActive = time.Now().Add(-2 * time.Hour)
	stale.mu.Unlock()

	_, err = m.Get("fresh", newTestCart(t))
	require.NoError(t, err)

	require.Equal(t, 1, m.SweepIdle(time.Hour))
	require.Equal(t, 1, m.Len())
}

func TestNewManagerValidatesDependencies(t *testing.T) {
	_, err := NewManager(nil, &fakeCollector{}, nil)
	require.Error(t, err)

	_, err = NewManager(&fakeFacade{}, nil, nil)
	require.Error(t, err)
}
