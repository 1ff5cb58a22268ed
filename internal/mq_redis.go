package internal

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/go-redis/redis/v8"
)

func init() {
	MQConsumers = append(MQConsumers, "redis")
}

type RedisMQConsumer struct {
	redisClient *redis.Client
}

func (redisMQ *RedisMQConsumer) String() string {
	return "redis"
}

func (redisMQ *RedisMQConsumer) Connect(ctx context.Context, clientName string, args map[string]interface{}) error {
	var ok bool

	var address string

	if address, ok = GetEntry(args, "Address").(string); !ok {
		return errors.New("redisMQ connect: string type assertion failed for Address")
	}

	password, _ := GetEntry(args, "Password").(string)

	var db int

	if dbStr, ok := GetEntry(args, "DB").(string); ok {
		var err error

		db, err = strconv.Atoi(dbStr)
		if err != nil {
			return fmt.Errorf("redisMQ connect db atoi: %w", err)
		}
	}

	redisMQ.redisClient = redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})

	err := redisMQ.redisClient.Ping(ctx).Err()
	if err != nil {
		return fmt.Errorf("redisMQ connect ping: %w", err)
	}

	return nil
}

func (redisMQ *RedisMQConsumer) Consume(ctx context.Context, channelName string, fn func(data []byte)) error {
	pubsub := redisMQ.redisClient.Subscribe(ctx, channelName)
	defer pubsub.Close()

	ch := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}

			fn([]byte(msg.Payload))
		}
	}
}

func (redisMQ *RedisMQConsumer) IsClosed() bool {
	return redisMQ.redisClient == nil
}

func (redisMQ *RedisMQConsumer) Close() {
	if redisMQ.redisClient != nil {
		redisMQ.redisClient.Close()
		redisMQ.redisClient = nil
	}
}
