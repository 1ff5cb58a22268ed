package internal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCloseCancelsContext(t *testing.T) {
	rb := newTestRoleboard(t)

	assert.NoError(t, rb.Close())
	assert.Error(t, rb.ctx.Err())
}

func TestPrometheusGathererStopsOnClose(t *testing.T) {
	rb := newTestRoleboard(t)

	done := make(chan struct{})

	go func() {
		rb.prometheusGatherer()
		close(done)
	}()

	assert.NoError(t, rb.Close())

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("gatherer kept running after close")
	}
}

func TestRunConsumerUnknownTypeReturns(t *testing.T) {
	rb := newTestRoleboard(t)

	rb.Configuration.Consumer.Type = "carrier-pigeon"
	rb.Configuration.Consumer.ChannelName = "state"

	done := make(chan struct{})

	go func() {
		rb.runConsumer()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("consumer loop kept running with an unknown backend")
	}
}
