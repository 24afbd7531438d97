package readings

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"pet-telemetry/internal/domain/pets"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes monta el historial de lecturas bajo el recurso de mascotas.
// display es la zona horaria de presentación; el almacenamiento sigue en UTC.
func RegisterRoutes(r chi.Router, svc *Service, display *time.Location) {
	if display == nil {
		display = time.UTC
	}
	r.Get("/pets/{petID}/readings", historyHandler(svc, display))
}

type smoothedResponse struct {
	HeartRate         *float64 `json:"heart_rate"`
	Temperature       *float64 `json:"temperature"`
	ActivityLevel     *float64 `json:"activity_level"`
	RespiratoryRate   *float64 `json:"respiratory_rate"`
	HydrationLevel    *float64 `json:"hydration_level"`
	SleepDuration     *float64 `json:"sleep_duration"`
	HoursSinceFeeding *float64 `json:"hours_since_feeding"`
}

type readingResponse struct {
	ID                string            `json:"id"`
	PetID             string            `json:"pet_id"`
	Timestamp         string            `json:"timestamp"`
	HeartRate         float64           `json:"heart_rate"`
	Temperature       float64           `json:"temperature"`
	ActivityLevel     float64           `json:"activity_level"`
	RespiratoryRate   float64           `json:"respiratory_rate"`
	HydrationLevel    float64           `json:"hydration_level"`
	SleepDuration     float64           `json:"sleep_duration"`
	HoursSinceFeeding float64           `json:"hours_since_feeding"`
	Latitude          *float64          `json:"latitude,omitempty"`
	Longitude         *float64          `json:"longitude,omitempty"`
	Smoothed          *smoothedResponse `json:"smoothed,omitempty"`
}

func historyHandler(svc *Service, display *time.Location) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 0
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
				return
			}
			limit = n
		}

		smooth := true
		if v := r.URL.Query().Get("raw"); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				http.Error(w, "raw must be a boolean", http.StatusBadRequest)
				return
			}
			smooth = !b
		}

		entries, err := svc.History(r.Context(), chi.URLParam(r, "petID"), limit, smooth)
		if err != nil {
			if errors.Is(err, pets.ErrNotFound) {
				http.Error(w, "pet not found", http.StatusNotFound)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]readingResponse, 0, len(entries))
		for _, e := range entries {
			out = append(out, toReadingResponse(e, display))
		}

		writeJSON(w, http.StatusOK, out)
	}
}

func toReadingResponse(e HistoryEntry, display *time.Location) readingResponse {
	resp := readingResponse{
		ID:                e.Reading.ID,
		PetID:             e.Reading.PetID,
		Timestamp:         RenderTimestamp(e.Reading.Timestamp, display),
		HeartRate:         e.Reading.HeartRate,
		Temperature:       e.Reading.Temperature,
		ActivityLevel:     e.Reading.ActivityLevel,
		RespiratoryRate:   e.Reading.RespiratoryRate,
		HydrationLevel:    e.Reading.HydrationLevel,
		SleepDuration:     e.Reading.SleepDuration,
		HoursSinceFeeding: e.Reading.HoursSinceFeeding,
		Latitude:          e.Reading.Latitude,
		Longitude:         e.Reading.Longitude,
	}
	if e.Smoothed != nil {
		resp.Smoothed = &smoothedResponse{
			HeartRate:         e.Smoothed.HeartRate,
			Temperature:       e.Smoothed.Temperature,
			ActivityLevel:     e.Smoothed.ActivityLevel,
			RespiratoryRate:   e.Smoothed.RespiratoryRate,
			HydrationLevel:    e.Smoothed.HydrationLevel,
			SleepDuration:     e.Smoothed.SleepDuration,
			HoursSinceFeeding: e.Smoothed.HoursSinceFeeding,
		}
	}
	return resp
}

// RenderTimestamp convierte el instante UTC almacenado a la zona de
// presentación. Función pura de formateo: el core nunca depende de ella.
func RenderTimestamp(t time.Time, display *time.Location) string {
	if display == nil {
		display = time.UTC
	}
	return t.In(display).Format(time.RFC3339)
}

// writeJSON duplicado a propósito respecto de pets; ver nota allí.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
