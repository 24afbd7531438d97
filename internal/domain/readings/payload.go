package readings

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrMalformedPayload = errors.New("malformed payload")

// payload refleja el mensaje JSON del topic de telemetría. Todos los campos
// requeridos son punteros para distinguir "ausente" de "cero".
type payload struct {
	PetID             *string  `json:"pet_id"`
	HeartRate         *float64 `json:"heart_rate"`
	Temperature       *float64 `json:"temperature"`
	ActivityLevel     *float64 `json:"activity_level"`
	RespiratoryRate   *float64 `json:"respiratory_rate"`
	HydrationLevel    *float64 `json:"hydration_level"`
	SleepDuration     *float64 `json:"sleep_duration"`
	HoursSinceFeeding *float64 `json:"hours_since_feeding"`
	Timestamp         *string  `json:"timestamp"`

	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// ParsePayload valida un mensaje crudo del bus y lo normaliza a un Reading
// listo para insertar (sin ID; lo asigna el pipeline). Un campo requerido
// ausente o con tipo equivocado produce ErrMalformedPayload. Transformación
// pura: sin efectos secundarios.
func ParsePayload(raw []byte, source *time.Location) (Reading, error) {
	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return Reading{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	required := []struct {
		name string
		ok   bool
	}{
		{"pet_id", p.PetID != nil},
		{"heart_rate", p.HeartRate != nil},
		{"temperature", p.Temperature != nil},
		{"activity_level", p.ActivityLevel != nil},
		{"respiratory_rate", p.RespiratoryRate != nil},
		{"hydration_level", p.HydrationLevel != nil},
		{"sleep_duration", p.SleepDuration != nil},
		{"hours_since_feeding", p.HoursSinceFeeding != nil},
		{"timestamp", p.Timestamp != nil},
	}
	for _, f := range required {
		if !f.ok {
			return Reading{}, fmt.Errorf("%w: missing field %q", ErrMalformedPayload, f.name)
		}
	}

	if strings.TrimSpace(*p.PetID) == "" {
		return Reading{}, fmt.Errorf("%w: empty pet_id", ErrMalformedPayload)
	}

	ts, err := normalizeTimestamp(*p.Timestamp, source)
	if err != nil {
		return Reading{}, err
	}

	return Reading{
		PetID:             strings.TrimSpace(*p.PetID),
		Timestamp:         ts,
		HeartRate:         *p.HeartRate,
		Temperature:       *p.Temperature,
		ActivityLevel:     *p.ActivityLevel,
		RespiratoryRate:   *p.RespiratoryRate,
		HydrationLevel:    *p.HydrationLevel,
		SleepDuration:     *p.SleepDuration,
		HoursSinceFeeding: *p.HoursSinceFeeding,
		Latitude:          p.Latitude,
		Longitude:         p.Longitude,
	}, nil
}

// normalizeTimestamp acepta ISO-8601. Si el valor trae offset se respeta;
// si viene "naive" se interpreta en la zona de origen configurada.
// El resultado queda siempre en UTC.
func normalizeTimestamp(s string, source *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if source == nil {
		source = time.UTC
	}

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}

	for _, layout := range []string{
		"2006-01-02T15:04:05.999999999",
		"2006-01-02T15:04:05",
	} {
		if t, err := time.ParseInLocation(layout, s, source); err == nil {
			return t.UTC(), nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: invalid timestamp %q", ErrMalformedPayload, s)
}
