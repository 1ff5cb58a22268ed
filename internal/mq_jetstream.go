package internal

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

func init() {
	MQConsumers = append(MQConsumers, "jetstream")
}

type JetStreamMQConsumer struct {
	NatsClient      *nats.Conn          `json:"-"`
	JetStreamClient jetstream.JetStream `json:"-"`
	JetStreamStream jetstream.Stream    `json:"-"`

	clientName string
	isClosed   bool
}

func (jetstreamMQ *JetStreamMQConsumer) String() string {
	return "jetstream"
}

func (jetstreamMQ *JetStreamMQConsumer) Connect(ctx context.Context, clientName string, args map[string]interface{}) error {
	var ok bool

	var address string

	if address, ok = GetEntry(args, "Address").(string); !ok {
		return errors.New("jetstreamMQ connect: string type assertion failed for Address")
	}

	var channel string

	if channel, ok = GetEntry(args, "Channel").(string); !ok {
		return errors.New("jetstreamMQ connect: string type assertion failed for Channel")
	}

	nc, err := nats.Connect(address)
	if err != nil {
		return fmt.Errorf("jetstreamMQ connect nats: %w", err)
	}

	jetstreamMQ.NatsClient = nc
	jetstreamMQ.clientName = clientName

	jetstreamMQ.JetStreamClient, err = jetstream.New(nc)
	if err != nil {
		return fmt.Errorf("jetstreamMQ new: %w", err)
	}

	jetstreamMQ.JetStreamStream, err = jetstreamMQ.JetStreamClient.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:              channel,
		Subjects:          []string{channel + ".*"},
		Retention:         jetstream.InterestPolicy,
		Discard:           jetstream.DiscardOld,
		MaxAge:            5 * time.Minute,
		Storage:           jetstream.MemoryStorage,
		MaxMsgsPerSubject: 1_000_000,
		MaxMsgSize:        math.MaxInt32,
	})
	if err != nil {
		return fmt.Errorf("jetstreamMQ create stream: %w", err)
	}

	jetstreamMQ.isClosed = false

	return nil
}

func (jetstreamMQ *JetStreamMQConsumer) Consume(ctx context.Context, channelName string, fn func(data []byte)) error {
	consumer, err := jetstreamMQ.JetStreamStream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		Durable:       jetstreamMQ.clientName,
		AckPolicy:     jetstream.AckExplicitPolicy,
		FilterSubject: jetstreamMQ.JetStreamStream.CachedInfo().Config.Name + "." + channelName,
	})
	if err != nil {
		return fmt.Errorf("jetstreamMQ create consumer: %w", err)
	}

	consumeCtx, err := consumer.Consume(func(msg jetstream.Msg) {
		fn(msg.Data())

		_ = msg.Ack()
	})
	if err != nil {
		return fmt.Errorf("jetstreamMQ consume: %w", err)
	}

	<-ctx.Done()

	consumeCtx.Stop()

	return nil
}

func (jetstreamMQ *JetStreamMQConsumer) IsClosed() bool {
	return jetstreamMQ.isClosed
}

func (jetstreamMQ *JetStreamMQConsumer) Close() {
	if jetstreamMQ.NatsClient != nil {
		jetstreamMQ.NatsClient.Close()
		jetstreamMQ.NatsClient = nil
	}

	jetstreamMQ.isClosed = true
}
