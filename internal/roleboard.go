package internal

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/roleboard/roleboard/discord"
	"github.com/roleboard/roleboard/pkg/broadcast"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
	"go.uber.org/atomic"
	"gopkg.in/yaml.v3"
)

// VERSION follows semantic versioning.
const VERSION = "0.4.0"

const (
	PermissionsDefault = 0o744
	PermissionWrite    = 0o600

	prometheusGatherInterval = 10 * time.Second
	consumerRetryInterval    = 5 * time.Second
)

// Roleboard is the daemon: a host-fed guild state plus the query and
// live-session surfaces that browse role membership over it.
type Roleboard struct {
	Logger zerolog.Logger `json:"-"`

	StartTime time.Time `json:"start_time" yaml:"start_time"`

	ctx    context.Context
	cancel func()

	State *GuildState `json:"-"`

	// Changes fans state-change signals out to open roster sessions.
	Changes *broadcast.Server[StateChange] `json:"-"`

	RouterHandler fasthttp.RequestHandler `json:"-"`

	SessionsOpen *atomic.Int32 `json:"-"`

	ConfigurationLocation string `json:"configuration_location"`

	Options RoleboardOptions `json:"options" yaml:"options"`

	Configuration RoleboardConfiguration `json:"configuration" yaml:"configuration"`

	configurationMu sync.RWMutex
}

// RoleboardConfiguration represents the configuration file.
type RoleboardConfiguration struct {
	Consumer struct {
		// Backend name, one of MQConsumers.
		Type string `json:"type" yaml:"type"`

		// ClientName identifies this daemon to the broker (consumer
		// group / durable name).
		ClientName string `json:"client_name" yaml:"client_name"`

		// ChannelName is the channel/topic state events arrive on.
		ChannelName string `json:"channel_name" yaml:"channel_name"`

		Configuration map[string]interface{} `json:"configuration" yaml:"configuration"`
	} `json:"consumer" yaml:"consumer"`
}

// RoleboardOptions represents any options passable when creating the
// roleboard service.
type RoleboardOptions struct {
	ConfigurationLocation string `json:"configuration_location" yaml:"configuration_location"`
	PrometheusAddress     string `json:"prometheus_address" yaml:"prometheus_address"`

	// HTTPHost serves the REST API.
	HTTPHost string `json:"http_host" yaml:"http_host"`

	// GatewayHost serves live roster websocket sessions.
	GatewayHost string `json:"gateway_host" yaml:"gateway_host"`
}

// NewRoleboard creates the application state and initializes it.
func NewRoleboard(logger io.Writer, options RoleboardOptions) (rb *Roleboard, err error) {
	rb = &Roleboard{
		Logger: zerolog.New(logger).With().Timestamp().Logger(),

		ConfigurationLocation: options.ConfigurationLocation,

		configurationMu: sync.RWMutex{},
		Configuration:   RoleboardConfiguration{},

		Options: options,

		State: NewGuildState(),

		Changes: broadcast.NewServer[StateChange](),

		SessionsOpen: atomic.NewInt32(0),
	}

	rb.ctx, rb.cancel = context.WithCancel(context.Background())

	configuration, err := rb.LoadConfiguration(rb.ConfigurationLocation)
	if err != nil {
		return nil, err
	}

	rb.configurationMu.Lock()
	defer rb.configurationMu.Unlock()

	rb.Configuration = configuration

	return rb, nil
}

// LoadConfiguration handles loading the configuration file.
func (rb *Roleboard) LoadConfiguration(path string) (configuration RoleboardConfiguration, err error) {
	rb.Logger.Debug().
		Str("path", path).
		Msg("Loading configuration")

	defer func() {
		if err == nil {
			rb.Logger.Info().Msg("Configuration loaded")
		}
	}()

	file, err := os.ReadFile(path)
	if err != nil {
		return configuration, ErrReadConfigurationFailure
	}

	err = yaml.Unmarshal(file, &configuration)
	if err != nil {
		return configuration, ErrLoadConfigurationFailure
	}

	if configuration.Consumer.Type == "" {
		return configuration, fmt.Errorf("consumer does not have a type: %w", ErrLoadConfigurationFailure)
	}

	if configuration.Consumer.ChannelName == "" {
		return configuration, fmt.Errorf("consumer does not have a channel name: %w", ErrLoadConfigurationFailure)
	}

	return configuration, nil
}

// Open starts up any listeners, configures services and starts the
// consumer.
func (rb *Roleboard) Open() {
	rb.StartTime = time.Now().UTC()
	rb.Logger.Info().Msgf("Starting roleboard. Version %s", VERSION)

	// Setup Prometheus
	go rb.setupPrometheus()

	// Setup HTTP
	go rb.setupHTTP()

	// Setup roster gateway
	go rb.setupRosterGateway()

	go rb.runConsumer()
}

// Close closes the consumer and change bus gracefully.
func (rb *Roleboard) Close() error {
	rb.Logger.Info().Msg("Closing roleboard")

	// Cancelling the context unwinds the consumer loop, which closes
	// its own client before returning.
	if rb.cancel != nil {
		rb.cancel()
	}

	rb.Changes.Close()

	return nil
}

// notifyChange broadcasts a state change to open roster sessions.
func (rb *Roleboard) notifyChange(guildID discord.GuildID, kind ChangeKind) {
	rb.Changes.Broadcast(StateChange{
		GuildID: guildID,
		Kind:    kind,
	})
}

// runConsumer connects the configured consumer backend and feeds state
// events into the dispatcher, reconnecting until the daemon closes.
func (rb *Roleboard) runConsumer() {
	rb.configurationMu.RLock()
	consumerType := rb.Configuration.Consumer.Type
	clientName := rb.Configuration.Consumer.ClientName
	channelName := rb.Configuration.Consumer.ChannelName
	args := rb.Configuration.Consumer.Configuration
	rb.configurationMu.RUnlock()

	if clientName == "" {
		clientName = "roleboard"
	}

	for {
		if rb.ctx.Err() != nil {
			return
		}

		consumer, err := NewMQConsumer(consumerType)
		if err != nil {
			rb.Logger.Error().Err(err).Msg("Failed to create consumer")

			return
		}

		err = consumer.Connect(rb.ctx, clientName, args)
		if err != nil {
			rb.Logger.Error().Err(err).Str("type", consumerType).Msg("Failed to connect consumer")

			time.Sleep(consumerRetryInterval)

			continue
		}

		rb.Logger.Info().
			Str("type", consumerType).
			Str("channel", channelName).
			Msg("Consuming state events")

		err = consumer.Consume(rb.ctx, channelName, rb.OnConsumerMessage)
		if err != nil {
			rb.Logger.Error().Err(err).Msg("Consumer stopped")
		}

		consumer.Close()

		if rb.ctx.Err() != nil {
			return
		}

		time.Sleep(consumerRetryInterval)
	}
}

func (rb *Roleboard) setupPrometheus() error {
	prometheus.MustRegister(roleboardStateEventCount)
	prometheus.MustRegister(roleboardDiscardedEvents)
	prometheus.MustRegister(roleboardRosterResolutions)
	prometheus.MustRegister(roleboardSessionsOpen)
	prometheus.MustRegister(roleboardStateGuildCount)
	prometheus.MustRegister(roleboardStateRoleCount)
	prometheus.MustRegister(roleboardStateMemberCount)
	prometheus.MustRegister(roleboardStateUserCount)

	http.Handle("/metrics", promhttp.HandlerFor(
		prometheus.DefaultGatherer,
		promhttp.HandlerOpts{},
	))

	go rb.prometheusGatherer()

	rb.Logger.Info().Msgf("Serving prometheus at %s", rb.Options.PrometheusAddress)

	err := http.ListenAndServe(rb.Options.PrometheusAddress, nil)
	if err != nil {
		rb.Logger.Error().Str("host", rb.Options.PrometheusAddress).Err(err).Msg("Failed to serve prometheus server")

		return fmt.Errorf("failed to serve prometheus: %w", err)
	}

	return nil
}

func (rb *Roleboard) setupHTTP() error {
	rb.Logger.Info().Msgf("Serving http at %s", rb.Options.HTTPHost)

	rb.RouterHandler = rb.NewRestRouter()

	err := fasthttp.ListenAndServe(rb.Options.HTTPHost, rb.HandleRequest)
	if err != nil {
		rb.Logger.Error().Str("host", rb.Options.HTTPHost).Err(err).Msg("Failed to serve http server")

		return fmt.Errorf("failed to serve webserver: %w", err)
	}

	return nil
}

func (rb *Roleboard) prometheusGatherer() {
	t := time.NewTicker(prometheusGatherInterval)
	defer t.Stop()

	for {
		select {
		case <-rb.ctx.Done():
			return
		case <-t.C:
		}

		stateGuilds := rb.State.Guilds.Count()
		stateRoles := rb.State.GuildRoles.TotalCount()
		stateMembers := rb.State.GuildMembers.TotalCount()
		stateUsers := rb.State.Users.Count()

		roleboardStateGuildCount.Set(float64(stateGuilds))
		roleboardStateRoleCount.Set(float64(stateRoles))
		roleboardStateMemberCount.Set(float64(stateMembers))
		roleboardStateUserCount.Set(float64(stateUsers))

		roleboardSessionsOpen.Set(float64(rb.SessionsOpen.Load()))

		rb.Logger.Debug().
			Int("guilds", stateGuilds).
			Int("roles", stateRoles).
			Int("members", stateMembers).
			Int("users", stateUsers).
			Int32("sessions", rb.SessionsOpen.Load()).
			Msg("Updated prometheus gauges")
	}
}
