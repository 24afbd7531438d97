package mqtt

import (
	"context"
	"fmt"
	"time"

	"pet-telemetry/internal/platform/logger"

	paho "github.com/eclipse/paho.mqtt.golang"
)

const (
	DefaultTopic = "pet/health"

	connectTimeout = 10 * time.Second
	// ventana de gracia al desconectar, para que el handler en vuelo termine
	disconnectQuiesceMs = 500
)

// Handler procesa un mensaje crudo del topic. Se invoca de a uno por vez;
// el orden de entrega lo garantiza el broker, no este adapter.
type Handler func(ctx context.Context, payload []byte)

type Config struct {
	BrokerURL string
	ClientID  string
	Topic     string
	QoS       byte
}

// Subscriber mantiene la suscripción al topic de telemetría. Ante un corte
// de transporte paho reconecta solo, y la resuscripción va en el hook de
// OnConnect para que el consumo se reanude en cada (re)conexión.
type Subscriber struct {
	client paho.Client
	cfg    Config
	handle Handler
	log    logger.Logger

	ctx context.Context
}

func NewSubscriber(cfg Config, handle Handler, log logger.Logger) *Subscriber {
	if cfg.Topic == "" {
		cfg.Topic = DefaultTopic
	}

	s := &Subscriber{
		cfg:    cfg,
		handle: handle,
		log:    log,
		ctx:    context.Background(),
	}

	opts := paho.NewClientOptions().
		AddBroker(cfg.BrokerURL).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetOrderMatters(true).
		SetOnConnectHandler(s.onConnect).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			log.Warn("mqtt connection lost", map[string]any{"error": err.Error()})
		})

	s.client = paho.NewClient(opts)
	return s
}

// Start conecta con el broker. ctx acota la vida de los handlers.
func (s *Subscriber) Start(ctx context.Context) error {
	s.ctx = ctx

	token := s.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return fmt.Errorf("mqtt connect to %s: timeout", s.cfg.BrokerURL)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt connect to %s: %w", s.cfg.BrokerURL, err)
	}
	return nil
}

func (s *Subscriber) onConnect(c paho.Client) {
	token := c.Subscribe(s.cfg.Topic, s.cfg.QoS, func(_ paho.Client, m paho.Message) {
		s.handle(s.ctx, m.Payload())
	})
	token.Wait()
	if err := token.Error(); err != nil {
		s.log.Error("mqtt subscribe failed", map[string]any{
			"topic": s.cfg.Topic,
			"error": err.Error(),
		})
		return
	}

	s.log.Info("mqtt subscribed", map[string]any{"topic": s.cfg.Topic})
}

// Close drena de forma ordenada: primero corta la suscripción, después
// desconecta con una ventana de gracia para el mensaje en curso.
func (s *Subscriber) Close() {
	if t := s.client.Unsubscribe(s.cfg.Topic); t.Wait() && t.Error() != nil {
		s.log.Warn("mqtt unsubscribe failed", map[string]any{"error": t.Error().Error()})
	}
	s.client.Disconnect(disconnectQuiesceMs)
}
