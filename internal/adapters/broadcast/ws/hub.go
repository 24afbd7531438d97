package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"pet-telemetry/internal/domain/readings"
	"pet-telemetry/internal/platform/logger"

	"github.com/gorilla/websocket"
)

const (
	broadcastBuffer = 64
	clientBuffer    = 16
	writeWait       = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	// La demo no restringe orígenes; el frontend corre en otro puerto.
	CheckOrigin: func(*http.Request) bool { return true },
}

// Hub retransmite cada lectura recién persistida a todos los clientes
// websocket conectados. Un cliente que no drena su buffer se desconecta;
// el fanout es best-effort y nunca frena la ingesta.
type Hub struct {
	log logger.Logger

	register   chan *client
	unregister chan *client
	broadcast  chan []byte
	done       chan struct{}
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

func NewHub(log logger.Logger) *Hub {
	return &Hub{
		log:        log,
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan []byte, broadcastBuffer),
		done:       make(chan struct{}),
	}
}

// Run atiende registro, baja y fanout desde un único goroutine; no hay
// estado compartido que requiera locks. Retorna al cancelarse ctx, cerrando
// todas las conexiones.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	clients := make(map[*client]struct{})
	defer func() {
		for c := range clients {
			close(c.send)
			_ = c.conn.Close()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case c := <-h.register:
			clients[c] = struct{}{}

		case c := <-h.unregister:
			if _, ok := clients[c]; ok {
				delete(clients, c)
				close(c.send)
				_ = c.conn.Close()
			}

		case msg := <-h.broadcast:
			for c := range clients {
				select {
				case c.send <- msg:
				default:
					// cliente lento: se lo da de baja
					delete(clients, c)
					close(c.send)
					_ = c.conn.Close()
				}
			}
		}
	}
}

// wirePayload es la misma forma normalizada que viaja por el bus, con el
// timestamp ya en UTC.
type wirePayload struct {
	PetID             string   `json:"pet_id"`
	Timestamp         string   `json:"timestamp"`
	HeartRate         float64  `json:"heart_rate"`
	Temperature       float64  `json:"temperature"`
	ActivityLevel     float64  `json:"activity_level"`
	RespiratoryRate   float64  `json:"respiratory_rate"`
	HydrationLevel    float64  `json:"hydration_level"`
	SleepDuration     float64  `json:"sleep_duration"`
	HoursSinceFeeding float64  `json:"hours_since_feeding"`
	Latitude          *float64 `json:"latitude,omitempty"`
	Longitude         *float64 `json:"longitude,omitempty"`
}

// Publish implementa el sink del pipeline de ingesta.
func (h *Hub) Publish(r readings.Reading) error {
	b, err := json.Marshal(wirePayload{
		PetID:             r.PetID,
		Timestamp:         r.Timestamp.UTC().Format(time.RFC3339),
		HeartRate:         r.HeartRate,
		Temperature:       r.Temperature,
		ActivityLevel:     r.ActivityLevel,
		RespiratoryRate:   r.RespiratoryRate,
		HydrationLevel:    r.HydrationLevel,
		SleepDuration:     r.SleepDuration,
		HoursSinceFeeding: r.HoursSinceFeeding,
		Latitude:          r.Latitude,
		Longitude:         r.Longitude,
	})
	if err != nil {
		return err
	}

	select {
	case h.broadcast <- b:
		return nil
	case <-h.done:
		return errors.New("hub stopped")
	default:
		return errors.New("broadcast buffer full")
	}
}

// ServeHTTP sube la conexión a websocket y la engancha al hub.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", map[string]any{"error": err.Error()})
		return
	}

	c := &client{
		conn: conn,
		send: make(chan []byte, clientBuffer),
	}

	select {
	case h.register <- c:
	case <-h.done:
		_ = conn.Close()
		return
	}

	go c.writePump()
	c.readPump(h)
}

// readPump descarta todo lo que mande el cliente; solo nos interesa
// detectar el cierre de la conexión.
func (c *client) readPump(h *Hub) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *client) writePump() {
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}

	// send cerrado: el hub ya dio de baja al cliente
	_ = c.conn.WriteControl(websocket.CloseMessage, nil, time.Now().Add(time.Second))
}
