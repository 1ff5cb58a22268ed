package internal

import (
	"context"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/stan.go"
)

func init() {
	MQConsumers = append(MQConsumers, "stan")
}

type StanMQConsumer struct {
	NatsClient *nats.Conn `json:"-"`
	StanClient stan.Conn  `json:"-"`
}

func (stanMQ *StanMQConsumer) String() string {
	return "stan"
}

func (stanMQ *StanMQConsumer) Connect(ctx context.Context, clientName string, args map[string]interface{}) error {
	var ok bool

	var address string

	if address, ok = GetEntry(args, "Address").(string); !ok {
		return errors.New("stanMQ connect: string type assertion failed for Address")
	}

	var cluster string

	if cluster, ok = GetEntry(args, "Cluster").(string); !ok {
		return errors.New("stanMQ connect: string type assertion failed for Cluster")
	}

	nc, err := nats.Connect(address)
	if err != nil {
		return fmt.Errorf("stanMQ connect nats: %w", err)
	}

	stanMQ.NatsClient = nc

	stanMQ.StanClient, err = stan.Connect(cluster, clientName, stan.NatsConn(nc))
	if err != nil {
		return fmt.Errorf("stanMQ connect stan: %w", err)
	}

	return nil
}

func (stanMQ *StanMQConsumer) Consume(ctx context.Context, channelName string, fn func(data []byte)) error {
	sub, err := stanMQ.StanClient.Subscribe(channelName, func(msg *stan.Msg) {
		fn(msg.Data)
	})
	if err != nil {
		return fmt.Errorf("stanMQ subscribe: %w", err)
	}

	<-ctx.Done()

	if err = sub.Close(); err != nil {
		return fmt.Errorf("stanMQ subscription close: %w", err)
	}

	return nil
}

func (stanMQ *StanMQConsumer) IsClosed() bool {
	return stanMQ.StanClient == nil
}

func (stanMQ *StanMQConsumer) Close() {
	if stanMQ.StanClient != nil {
		stanMQ.StanClient.Close()
		stanMQ.StanClient = nil
	}

	if stanMQ.NatsClient != nil {
		stanMQ.NatsClient.Close()
		stanMQ.NatsClient = nil
	}
}
