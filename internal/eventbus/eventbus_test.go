package eventbus

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type ping struct{ N int }
type pong struct{ N int }

func TestPublish_DispatchesByType(t *testing.T) {
	Use(New())
	t.Cleanup(func() { Use(nil) })

	var pings, pongs []int
	defer Subscribe(func(ctx context.Context, e ping) { pings = append(pings, e.N) })()
	defer Subscribe(func(ctx context.Context, e pong) { pongs = append(pongs, e.N) })()

	Publish(context.Background(), ping{N: 1})
	Publish(context.Background(), ping{N: 2})
	Publish(context.Background(), pong{N: 3})

	require.Equal(t, []int{1, 2}, pings)
	require.Equal(t, []int{3}, pongs)
}

func TestUnsubscribe(t *testing.T) {
	Use(New())
	t.Cleanup(func() { Use(nil) })

	var got int
	unsub := Subscribe(func(ctx context.Context, e ping) { got++ })
	Publish(context.Background(), ping{})
	unsub()
	unsub() // second call is harmless
	Publish(context.Background(), ping{})
	require.Equal(t, 1, got)
}

func TestPublish_NoBusInstalled(t *testing.T) {
	Use(nil)
	// Must not panic, and a subscribe attempt returns a no-op unsubscribe.
	unsub := Subscribe(func(ctx context.Context, e ping) {})
	Publish(context.Background(), ping{})
	unsub()
}

func TestPublish_MultipleHandlersInOrder(t *testing.T) {
	Use(New())
	t.Cleanup(func() { Use(nil) })

	var order []string
	defer Subscribe(func(ctx context.Context, e ping) { order = append(order, "first") })()
	defer Subscribe(func(ctx context.Context, e ping) { order = append(order, "second") })()

	Publish(context.Background(), ping{})
	require.Equal(t, []string{"first", "second"}, order)
}
