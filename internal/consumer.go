package internal

import (
	"context"
	"errors"
	"strings"
)

// MQConsumers lists the names of all compiled-in consumer backends.
// Populated by init functions in the mq_*.go files.
var MQConsumers = []string{}

// MQConsumer consumes raw state payloads from the host's event pipeline.
type MQConsumer interface {
	String() string

	Connect(ctx context.Context, clientName string, args map[string]interface{}) error

	// Consume delivers every received payload to fn until ctx is
	// cancelled. fn is called from a single goroutine.
	Consume(ctx context.Context, channelName string, fn func(data []byte)) error

	IsClosed() bool
	Close()
}

func NewMQConsumer(mqType string) (MQConsumer, error) {
	switch mqType {
	case "redis":
		return &RedisMQConsumer{}, nil
	case "jetstream":
		return &JetStreamMQConsumer{}, nil
	case "stan":
		return &StanMQConsumer{}, nil
	case "kafka":
		return &KafkaMQConsumer{}, nil
	default:
		return nil, errors.New("no MQ consumer named " + mqType)
	}
}

// Returns first match from a map and handles keys as non case sensitive.
func GetEntry(m map[string]interface{}, key string) interface{} {
	key = strings.ToLower(key)
	for i, k := range m {
		if strings.ToLower(i) == key {
			return k
		}
	}

	return nil
}
