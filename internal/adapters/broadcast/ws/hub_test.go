package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"pet-telemetry/internal/domain/readings"
	"pet-telemetry/internal/platform/logger"

	"github.com/gorilla/websocket"
)

func TestHub_BroadcastsToConnectedClient(t *testing.T) {
	hub := NewHub(logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	ts := httptest.NewServer(hub)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	reading := readings.Reading{
		ID:        "r1",
		PetID:     "p1",
		Timestamp: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		HeartRate: 90,
	}

	// El registro del cliente corre en el goroutine del server; publicamos
	// periódicamente hasta que el fanout lo alcance.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		for {
			_ = hub.Publish(reading)
			select {
			case <-stop:
				return
			case <-time.After(50 * time.Millisecond):
			}
		}
	}()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var got struct {
		PetID     string  `json:"pet_id"`
		Timestamp string  `json:"timestamp"`
		HeartRate float64 `json:"heart_rate"`
	}
	if err := json.Unmarshal(msg, &got); err != nil {
		t.Fatal(err)
	}
	if got.PetID != "p1" || got.HeartRate != 90 {
		t.Errorf("unexpected payload: %s", msg)
	}
	if got.Timestamp != "2024-01-01T12:00:00Z" {
		t.Errorf("timestamp: got %s", got.Timestamp)
	}
}

func TestHub_PublishAfterStop(t *testing.T) {
	hub := NewHub(logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	cancel()

	<-hub.done

	// Con el hub parado y el buffer eventualmente lleno, Publish termina
	// devolviendo error en vez de bloquear la ingesta.
	var err error
	for i := 0; i < broadcastBuffer*2 && err == nil; i++ {
		err = hub.Publish(readings.Reading{ID: "r", PetID: "p"})
	}
	if err == nil {
		t.Error("expected an error publishing to a stopped hub")
	}
}
