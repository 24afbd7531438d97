package mqtt

import (
	"encoding/json"
	"fmt"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// Publisher publica payloads JSON en el topic de telemetría. Lo usa el
// simulador de wearables; el backend solo consume.
type Publisher struct {
	client paho.Client
	topic  string
	qos    byte
}

func NewPublisher(cfg Config) (*Publisher, error) {
	if cfg.Topic == "" {
		cfg.Topic = DefaultTopic
	}

	opts := paho.NewClientOptions().
		AddBroker(cfg.BrokerURL).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true)

	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("mqtt connect to %s: timeout", cfg.BrokerURL)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect to %s: %w", cfg.BrokerURL, err)
	}

	return &Publisher{
		client: client,
		topic:  cfg.Topic,
		qos:    cfg.QoS,
	}, nil
}

func (p *Publisher) Publish(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}

	token := p.client.Publish(p.topic, p.qos, false, b)
	token.Wait()
	return token.Error()
}

func (p *Publisher) Close() {
	p.client.Disconnect(disconnectQuiesceMs)
}
