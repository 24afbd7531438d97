package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"time"

	"pet-telemetry/internal/platform/httpclient"
)

// Carga el lote de mascotas demo contra la API. Pensado para levantar un
// entorno local con datos conocidos.

type createPetRequest struct {
	Name    string   `json:"name"`
	Species string   `json:"species"`
	Breed   string   `json:"breed,omitempty"`
	Age     *float64 `json:"age,omitempty"`
	Weight  *float64 `json:"weight,omitempty"`
}

type petResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Species string `json:"species"`
}

func f(v float64) *float64 { return &v }

var demoPets = []createPetRequest{
	{Name: "Max", Species: "Dog", Breed: "Labrador Retriever", Age: f(3.5), Weight: f(30.2)},
	{Name: "Luna", Species: "Cat", Breed: "Siamese", Age: f(2.0), Weight: f(4.5)},
	{Name: "Charlie", Species: "Dog", Breed: "Golden Retriever", Age: f(5.0), Weight: f(32.1)},
	{Name: "Bella", Species: "Cat", Breed: "Maine Coon", Age: f(4.5), Weight: f(6.8)},
	{Name: "Rocky", Species: "Dog", Breed: "German Shepherd", Age: f(2.5), Weight: f(28.7)},
}

func main() {
	baseURL := flag.String("api", "http://localhost:8080", "backend base url")
	flag.Parse()

	client, err := httpclient.NewWithBaseURL(*baseURL, 10*time.Second)
	if err != nil {
		log.Fatalf("client: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	for _, p := range demoPets {
		var created petResponse
		if err := client.DoJSON(ctx, http.MethodPost, "/pets", p, &created); err != nil {
			log.Fatalf("create pet %s: %v", p.Name, err)
		}
		log.Printf("created %s (%s): id=%s", created.Name, created.Species, created.ID)
	}

	log.Printf("%d pets seeded", len(demoPets))
}
