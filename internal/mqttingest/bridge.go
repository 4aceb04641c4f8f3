// Package mqttingest subscribes to the tracker firmware's MQTT topics
// and feeds the same services as the HTTP ingest endpoints. It is an
// optional transport: the bridge only runs when a broker is configured.
package mqttingest

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Furqan3/bustracker/internal/gps"
	"github.com/Furqan3/bustracker/internal/tracker/service"
	"github.com/Furqan3/bustracker/internal/tracker/types"
)

type Config struct {
	Broker    string // e.g. "tcp://localhost:1883"; empty disables the bridge
	ClientID  string
	GPSTopic  string
	ScanTopic string
	QoS       byte
}

type Bridge struct {
	cfg       Config
	client    paho.Client
	ledger    *service.Ledger
	locations *service.LocationService
	logger    zerolog.Logger
}

func New(cfg Config, ledger *service.Ledger, locations *service.LocationService, logger zerolog.Logger) *Bridge {
	if cfg.ClientID == "" {
		cfg.ClientID = "bustracker-server"
	}
	return &Bridge{
		cfg:       cfg,
		ledger:    ledger,
		locations: locations,
		logger:    logger,
	}
}

// Start connects to the broker and subscribes to both topics.
func (b *Bridge) Start() error {
	// Unique suffix so a restarted server doesn't kick its own session.
	clientID := b.cfg.ClientID + "-" + uuid.New().String()

	opts := paho.NewClientOptions().
		AddBroker(b.cfg.Broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(b.onConnect)

	b.client = paho.NewClient(opts)

	token := b.client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return fmt.Errorf("mqtt connect timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt connect: %w", err)
	}

	b.logger.Info().
		Str("broker", b.cfg.Broker).
		Str("client_id", clientID).
		Msg("mqtt bridge connected")
	return nil
}

// onConnect (re)subscribes; auto-reconnect drops subscriptions made on
// a previous session.
func (b *Bridge) onConnect(client paho.Client) {
	subscribe := func(topic string, handler paho.MessageHandler) {
		token := client.Subscribe(topic, b.cfg.QoS, handler)
		if !token.WaitTimeout(5 * time.Second) {
			b.logger.Error().Str("topic", topic).Msg("mqtt subscribe timeout")
			return
		}
		if err := token.Error(); err != nil {
			b.logger.Error().Err(err).Str("topic", topic).Msg("mqtt subscribe failed")
			return
		}
		b.logger.Info().Str("topic", topic).Msg("mqtt subscribed")
	}

	subscribe(b.cfg.GPSTopic, func(_ paho.Client, msg paho.Message) {
		if err := b.IngestGPSPayload(context.Background(), msg.Payload()); err != nil {
			b.logger.Warn().Err(err).Str("topic", msg.Topic()).Msg("gps payload rejected")
		}
	})
	subscribe(b.cfg.ScanTopic, func(_ paho.Client, msg paho.Message) {
		if err := b.IngestScanPayload(context.Background(), msg.Payload()); err != nil {
			b.logger.Warn().Err(err).Str("topic", msg.Topic()).Msg("scan payload rejected")
		}
	})
}

func (b *Bridge) Close() {
	if b.client != nil && b.client.IsConnected() {
		b.client.Disconnect(250)
	}
}

// IngestGPSPayload accepts either a JSON fix or a raw NMEA GGA
// sentence (the firmware forwards the module's output verbatim).
func (b *Bridge) IngestGPSPayload(ctx context.Context, payload []byte) error {
	if len(payload) == 0 {
		return fmt.Errorf("empty gps payload")
	}

	if payload[0] == '$' {
		fix, err := gps.ParseGGA(string(payload))
		if err != nil {
			return err
		}
		sats := fix.Satellites
		_, err = b.locations.Ingest(ctx, types.GPSRequest{
			Latitude:   fix.Latitude,
			Longitude:  fix.Longitude,
			Timestamp:  time.Now().UTC().Unix(),
			Satellites: &sats,
		})
		return err
	}

	var req types.GPSRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return fmt.Errorf("decode gps payload: %w", err)
	}
	_, err := b.locations.Ingest(ctx, req)
	return err
}

// IngestScanPayload decodes one RFID scan and runs it through the
// ledger.
func (b *Bridge) IngestScanPayload(ctx context.Context, payload []byte) error {
	var req types.ScanRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return fmt.Errorf("decode scan payload: %w", err)
	}
	_, err := b.ledger.IngestScan(ctx, req)
	return err
}
