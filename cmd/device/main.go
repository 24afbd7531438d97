package main

import (
	"flag"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	mqttbus "pet-telemetry/internal/adapters/bus/mqtt"
)

// Simulador de wearable: publica una instantánea de vitales por intervalo
// para una mascota dada. Es el "device" de la demo, nada más.
func main() {
	var (
		petID    = flag.String("pet", "", "pet id to report readings for (required)")
		broker   = flag.String("broker", "tcp://localhost:1883", "mqtt broker url")
		topic    = flag.String("topic", mqttbus.DefaultTopic, "mqtt topic")
		interval = flag.Duration("interval", 60*time.Second, "time between readings")
	)
	flag.Parse()

	if *petID == "" {
		flag.Usage()
		os.Exit(2)
	}

	pub, err := mqttbus.NewPublisher(mqttbus.Config{
		BrokerURL: *broker,
		ClientID:  "pet-device-" + *petID,
		Topic:     *topic,
		QoS:       1,
	})
	if err != nil {
		log.Fatalf("mqtt: %v", err)
	}
	defer pub.Close()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	t := time.NewTicker(*interval)
	defer t.Stop()

	log.Printf("device for pet %s publishing to %s every %s", *petID, *topic, *interval)

	send(pub, *petID)
	for {
		select {
		case <-sig:
			log.Println("stopping device")
			return
		case <-t.C:
			send(pub, *petID)
		}
	}
}

func send(pub *mqttbus.Publisher, petID string) {
	reading := generateReading(petID)
	if err := pub.Publish(reading); err != nil {
		log.Printf("publish failed: %v", err)
		return
	}
	log.Printf("sent reading: %v", reading)
}

func generateReading(petID string) map[string]any {
	r := map[string]any{
		"pet_id":              petID,
		"heart_rate":          round2(60 + rand.Float64()*60),
		"temperature":         round2(37.5 + rand.Float64()*2),
		"activity_level":      round2(rand.Float64() * 10),
		"respiratory_rate":    round2(15 + rand.Float64()*15),
		"hydration_level":     round2(60 + rand.Float64()*40),
		"sleep_duration":      round2(rand.Float64() * 12),
		"hours_since_feeding": round2(rand.Float64() * 10),
		"timestamp":           time.Now().UTC().Format(time.RFC3339),
	}

	// GPS intermitente, como un collar real con mala señal
	if rand.Float64() < 0.7 {
		r["latitude"] = round2(-34.60 + rand.Float64()*0.05)
		r["longitude"] = round2(-58.38 + rand.Float64()*0.05)
	}

	return r
}

func round2(f float64) float64 {
	return float64(int(f*100)) / 100
}
