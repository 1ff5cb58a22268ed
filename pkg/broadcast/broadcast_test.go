package broadcast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTimeout = 2 * time.Second

// withTimeout fails the test when fn has not returned within the timeout,
// instead of letting a deadlocked bus hang the whole run.
func withTimeout(t *testing.T, name string, fn func()) {
	t.Helper()

	done := make(chan struct{})

	go func() {
		fn()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(testTimeout):
		t.Fatalf("%s did not return", name)
	}
}

func TestBroadcastDeliversToSubscribers(t *testing.T) {
	server := NewServer[int]()
	defer server.Close()

	a := server.Subscribe()
	b := server.Subscribe()

	server.Broadcast(42)

	assert.Equal(t, 42, <-a)
	assert.Equal(t, 42, <-b)
}

func TestBroadcastNeverBlocksOnStalledSubscriber(t *testing.T) {
	server := NewServer[int]()
	defer server.Close()

	// Subscribed but never read from.
	stalled := server.Subscribe()

	withTimeout(t, "Broadcast", func() {
		for i := 0; i < listenerBuffer*2; i++ {
			server.Broadcast(i)
		}
	})

	withTimeout(t, "Unsubscribe", func() {
		server.Unsubscribe(stalled)
	})

	// The bus still works for everyone else afterwards.
	live := server.Subscribe()
	defer server.Unsubscribe(live)

	server.Broadcast(99)

	select {
	case val := <-live:
		assert.Equal(t, 99, val)
	case <-time.After(testTimeout):
		t.Fatal("broadcast after stalled unsubscribe was not delivered")
	}
}

func TestBroadcastDropsOldestWhenBehind(t *testing.T) {
	server := NewServer[int]()
	defer server.Close()

	behind := server.Subscribe()
	defer server.Unsubscribe(behind)

	// A second subscriber, added after the first, is drained to confirm
	// every value has been fully delivered before we inspect the backlog.
	drained := server.Subscribe()
	defer server.Unsubscribe(drained)

	total := listenerBuffer + 2

	for i := 0; i < total; i++ {
		server.Broadcast(i)
		assert.Equal(t, i, <-drained)
	}

	// The two oldest values were evicted; the rest arrive in order.
	for i := 2; i < total; i++ {
		assert.Equal(t, i, <-behind)
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	server := NewServer[int]()
	defer server.Close()

	listener := server.Subscribe()
	server.Unsubscribe(listener)

	_, ok := <-listener
	assert.False(t, ok)
}

func TestCloseClosesSubscribers(t *testing.T) {
	server := NewServer[int]()

	listener := server.Subscribe()

	server.Close()

	select {
	case _, ok := <-listener:
		require.False(t, ok)
	case <-time.After(testTimeout):
		t.Fatal("subscriber channel was not closed")
	}

	// Operations on a closed server return instead of blocking.
	withTimeout(t, "Broadcast after Close", func() {
		server.Broadcast(1)
	})
	withTimeout(t, "Unsubscribe after Close", func() {
		server.Unsubscribe(listener)
	})
}
