package internal

import (
	"fmt"

	"github.com/roleboard/roleboard/discord"
	"github.com/roleboard/roleboard/pkg/jsonutil"
)

type DispatchHandler func(rb *Roleboard, payload discord.StatePayload) error

var dispatchHandlers = make(map[string]DispatchHandler)

func registerDispatch(eventType string, handler DispatchHandler) {
	dispatchHandlers[eventType] = handler
}

// OnConsumerMessage decodes a raw payload from the consumer and applies
// it to the guild state. Malformed payloads and handler failures are
// logged, never fatal; a bad event must not take the consumer loop down.
func (rb *Roleboard) OnConsumerMessage(data []byte) {
	var payload discord.StatePayload

	if err := jsonutil.Unmarshal(data, &payload); err != nil {
		rb.Logger.Warn().Err(err).Msg("Failed to unmarshal consumer payload")

		return
	}

	if err := rb.DispatchStateEvent(payload); err != nil {
		rb.Logger.Error().Err(err).Str("type", payload.Type).Msg("Failed to handle state event")
	}
}

// DispatchStateEvent routes a state payload to its registered handler.
// Events without a handler are counted and dropped.
func (rb *Roleboard) DispatchStateEvent(payload discord.StatePayload) error {
	handler, ok := dispatchHandlers[payload.Type]

	if !ok {
		roleboardDiscardedEvents.WithLabelValues(payload.Type).Inc()

		rb.Logger.Debug().Str("type", payload.Type).Msg("No handler for state event")

		return nil
	}

	roleboardStateEventCount.WithLabelValues(payload.Type).Inc()

	if err := handler(rb, payload); err != nil {
		return fmt.Errorf("dispatch %s: %w", payload.Type, err)
	}

	return nil
}
