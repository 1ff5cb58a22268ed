package internal

import (
	"context"
	"errors"
	"strings"

	"github.com/segmentio/kafka-go"
)

func init() {
	MQConsumers = append(MQConsumers, "kafka")
}

type KafkaMQConsumer struct {
	KafkaReader *kafka.Reader

	brokers    []string
	clientName string
}

func (kafkaMQ *KafkaMQConsumer) String() string {
	return "kafka"
}

func (kafkaMQ *KafkaMQConsumer) Connect(ctx context.Context, clientName string, args map[string]interface{}) error {
	var ok bool

	var address string

	if address, ok = GetEntry(args, "Address").(string); !ok {
		return errors.New("kafkaMQ connect: string type assertion failed for Address")
	}

	kafkaMQ.brokers = strings.Split(address, ",")
	kafkaMQ.clientName = clientName

	return nil
}

func (kafkaMQ *KafkaMQConsumer) Consume(ctx context.Context, channelName string, fn func(data []byte)) error {
	kafkaMQ.KafkaReader = kafka.NewReader(kafka.ReaderConfig{
		Brokers: kafkaMQ.brokers,
		GroupID: kafkaMQ.clientName,
		Topic:   channelName,
	})

	for {
		msg, err := kafkaMQ.KafkaReader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}

			return err
		}

		fn(msg.Value)
	}
}

func (kafkaMQ *KafkaMQConsumer) IsClosed() bool {
	return kafkaMQ.KafkaReader == nil
}

func (kafkaMQ *KafkaMQConsumer) Close() {
	if kafkaMQ.KafkaReader != nil {
		kafkaMQ.KafkaReader.Close()
		kafkaMQ.KafkaReader = nil
	}
}
