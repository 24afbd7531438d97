package readings

import (
	"testing"
	"time"
)

func chronoSeries(heartRates ...float64) []Reading {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]Reading, len(heartRates))
	for i, hr := range heartRates {
		out[i] = Reading{
			PetID:     "pet-1",
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			HeartRate: hr,
		}
	}
	return out
}

func TestSmooth_TrailingWindow(t *testing.T) {
	sm := Smooth(chronoSeries(1, 2, 3, 4, 5), 3)

	if len(sm) != 5 {
		t.Fatalf("expected 5 positions, got %d", len(sm))
	}

	// Las primeras window-1 posiciones no tienen promedio definido.
	for i := 0; i < 2; i++ {
		if sm[i].HeartRate != nil {
			t.Errorf("position %d: expected absent, got %v", i, *sm[i].HeartRate)
		}
	}

	want := []float64{2, 3, 4} // (1+2+3)/3, (2+3+4)/3, (3+4+5)/3
	for i, w := range want {
		got := sm[i+2].HeartRate
		if got == nil || *got != w {
			t.Errorf("position %d: got %v want %v", i+2, got, w)
		}
	}
}

func TestSmooth_DefinedCountIsNMinusWPlusOne(t *testing.T) {
	for _, tc := range []struct {
		n, w, defined int
	}{
		{5, 3, 3},
		{3, 3, 1},
		{2, 3, 0},
		{0, 3, 0},
		{4, 1, 4},
	} {
		series := make([]float64, tc.n)
		for i := range series {
			series[i] = float64(i)
		}

		sm := Smooth(chronoSeries(series...), tc.w)

		defined := 0
		for _, s := range sm {
			if s.HeartRate != nil {
				defined++
			}
		}
		if defined != tc.defined {
			t.Errorf("n=%d w=%d: got %d defined, want %d", tc.n, tc.w, defined, tc.defined)
		}
	}
}

func TestSmooth_WindowOneEqualsRaw(t *testing.T) {
	sm := Smooth(chronoSeries(7, 8, 9), 1)

	for i, want := range []float64{7, 8, 9} {
		got := sm[i].HeartRate
		if got == nil || *got != want {
			t.Errorf("position %d: got %v want %v", i, got, want)
		}
	}
}

func TestSmooth_EachVitalIndependent(t *testing.T) {
	rs := chronoSeries(1, 2, 3)
	for i := range rs {
		rs[i].Temperature = float64(10 * (i + 1))
	}

	sm := Smooth(rs, 3)

	if got := sm[2].HeartRate; got == nil || *got != 2 {
		t.Errorf("heart rate: got %v want 2", got)
	}
	if got := sm[2].Temperature; got == nil || *got != 20 {
		t.Errorf("temperature: got %v want 20", got)
	}
}
