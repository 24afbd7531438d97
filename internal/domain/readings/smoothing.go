package readings

// Smoothed contiene el promedio móvil de cola de cada vital en una posición
// de la serie. Nil mientras la ventana todavía no se completó.
type Smoothed struct {
	HeartRate         *float64
	Temperature       *float64
	ActivityLevel     *float64
	RespiratoryRate   *float64
	HydrationLevel    *float64
	SleepDuration     *float64
	HoursSinceFeeding *float64
}

// Smooth aplica un promedio móvil de cola con ventana fija a cada vital,
// de forma independiente, sobre una serie en orden cronológico. Las primeras
// window-1 posiciones no tienen promedio definido. Función pura, ajena a
// zonas horarias y almacenamiento.
func Smooth(chronological []Reading, window int) []Smoothed {
	pick := func(f func(Reading) float64) []*float64 {
		series := make([]float64, len(chronological))
		for i, r := range chronological {
			series[i] = f(r)
		}
		return movingAverage(series, window)
	}

	hr := pick(func(r Reading) float64 { return r.HeartRate })
	temp := pick(func(r Reading) float64 { return r.Temperature })
	act := pick(func(r Reading) float64 { return r.ActivityLevel })
	resp := pick(func(r Reading) float64 { return r.RespiratoryRate })
	hyd := pick(func(r Reading) float64 { return r.HydrationLevel })
	sleep := pick(func(r Reading) float64 { return r.SleepDuration })
	feed := pick(func(r Reading) float64 { return r.HoursSinceFeeding })

	out := make([]Smoothed, len(chronological))
	for i := range out {
		out[i] = Smoothed{
			HeartRate:         hr[i],
			Temperature:       temp[i],
			ActivityLevel:     act[i],
			RespiratoryRate:   resp[i],
			HydrationLevel:    hyd[i],
			SleepDuration:     sleep[i],
			HoursSinceFeeding: feed[i],
		}
	}
	return out
}

// movingAverage deja nil en las posiciones sin ventana completa y el
// promedio aritmético de las últimas window muestras en el resto.
func movingAverage(series []float64, window int) []*float64 {
	out := make([]*float64, len(series))
	if window <= 0 || len(series) < window {
		return out
	}

	var sum float64
	for i, v := range series {
		sum += v
		if i >= window {
			sum -= series[i-window]
		}
		if i >= window-1 {
			avg := sum / float64(window)
			out[i] = &avg
		}
	}
	return out
}
