package sensor

import (
	"arduinosim/internal/model"
	"math"
	"math/rand/v2"
	"sync"
	"testing"
	"time"
)

func newTestGenerator(seed uint64) *Generator {
	return New(WithRand(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))))
}

func TestPotentiometerStaysInRange(t *testing.T) {
	g := newTestGenerator(1)

	for pin := 0; pin < 4; pin++ {
		prev := -1
		for i := 0; i < 5000; i++ {
			v := g.Reading(model.Potentiometer, pin, 0)
			if v < 0 || v > ADCMax {
				t.Fatalf("pin %d read %d: value %d out of [0,%d]", pin, i, v, ADCMax)
			}
			if prev >= 0 && math.Abs(float64(v-prev)) > potentiometerStep {
				t.Fatalf("pin %d read %d: jumped from %d to %d", pin, i, prev, v)
			}
			prev = v
		}
	}
}

func TestPotentiometerStatePerPin(t *testing.T) {
	g := newTestGenerator(2)

	a := g.Reading(model.Potentiometer, 1, 0)
	g.Reading(model.Potentiometer, 2, 0)

	next := g.Reading(model.Potentiometer, 1, 0)
	if math.Abs(float64(next-a)) > potentiometerStep {
		t.Errorf("pin 1 drifted from %d to %d, reads of pin 2 leaked into it", a, next)
	}

	other := newTestGenerator(2)
	if _, ok := other.potentiometers[1]; ok {
		t.Error("new generator should start with empty potentiometer state")
	}
}

func TestUltrasonicRange(t *testing.T) {
	g := newTestGenerator(3)

	for i := 0; i < 2000; i++ {
		now := float64(i) * 1234.5
		v := g.Reading(model.Ultrasonic, 7, now)
		if v < minDistance || v > maxDistance {
			t.Fatalf("ultrasonic at %v = %d, want [%d,%d]", now, v, minDistance, maxDistance)
		}
		if v < 18 || v > 22 {
			t.Fatalf("ultrasonic at %v = %d, want 20+-2", now, v)
		}
	}
}

func TestPhotoresistorDayNight(t *testing.T) {
	g := newTestGenerator(4)

	tests := []struct {
		name   string
		hour   float64
		lo, hi int
	}{
		{"midnight", 0, 150, 250},
		{"early morning", 5.5, 150, 250},
		{"dawn", 6, 700, 900},
		{"noon", 12, 700, 900},
		{"dusk", 18, 700, 900},
		{"late evening", 22, 150, 250},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now := 20*secondsPerDay + tt.hour*secondsPerHour
			for i := 0; i < 200; i++ {
				v := g.Reading(model.Photoresistor, 0, now)
				if v < 0 || v > ADCMax {
					t.Fatalf("value %d out of ADC range", v)
				}
				if v < tt.lo || v > tt.hi {
					t.Fatalf("value %d not in [%d,%d]", v, tt.lo, tt.hi)
				}
			}
		})
	}
}

func TestPhotoresistorNegativeTime(t *testing.T) {
	g := newTestGenerator(10)

	tests := []struct {
		name   string
		now    float64
		lo, hi int
	}{
		{"18h before epoch is 06:00", -18 * secondsPerHour, 700, 900},
		{"12h before epoch is noon", -12 * secondsPerHour, 700, 900},
		{"1h before epoch is 23:00", -1 * secondsPerHour, 150, 250},
		{"days before epoch at 03:00", -5*secondsPerDay + 3*secondsPerHour, 150, 250},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i := 0; i < 100; i++ {
				v := g.Reading(model.Photoresistor, 0, tt.now)
				if v < tt.lo || v > tt.hi {
					t.Fatalf("value %d not in [%d,%d]", v, tt.lo, tt.hi)
				}
			}
		})
	}
}

func TestPhotoresistorRangeOverDay(t *testing.T) {
	g := newTestGenerator(5)

	for now := 0.0; now < 3*secondsPerDay; now += 97 {
		v := g.Reading(model.Photoresistor, 3, now)
		if v < 0 || v > ADCMax {
			t.Fatalf("photoresistor at %v = %d, out of range", now, v)
		}
	}
}

func TestTemperatureFormula(t *testing.T) {
	g := newTestGenerator(6)

	for _, now := range []float64{0, 3600, 86400 * math.Pi / 2, 1.7e9} {
		cycle := 5 * math.Sin(now/secondsPerDay)
		lo := int((25 - 2 + cycle) * 10)
		hi := int((25 + 2 + cycle) * 10)
		for i := 0; i < 200; i++ {
			v := g.Reading(model.Temperature, 0, now)
			if v < lo-1 || v > hi+1 {
				t.Fatalf("temperature at %v = %d, want [%d,%d]", now, v, lo, hi)
			}
		}
	}
}

func TestOtherKindRange(t *testing.T) {
	g := newTestGenerator(7)

	for i := 0; i < 1000; i++ {
		v := g.Reading(model.ParseSensorKind("humidity"), 0, 0)
		if v < 0 || v > ADCMax {
			t.Fatalf("value %d out of ADC range", v)
		}
	}
}

func TestReadUsesClock(t *testing.T) {
	noon := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	g := New(
		WithRand(rand.New(rand.NewPCG(8, 8))),
		WithClock(func() time.Time { return noon }),
	)

	if got := g.Now(); got != float64(noon.Unix()) {
		t.Fatalf("Now() = %v, want %v", got, float64(noon.Unix()))
	}

	v := g.Read(model.Photoresistor, 0)
	if v < 700 || v > 900 {
		t.Errorf("noon light reading = %d, want daytime level", v)
	}
}

func TestConcurrentPotentiometerReads(t *testing.T) {
	g := newTestGenerator(9)
	wg := &sync.WaitGroup{}

	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(pin int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				v := g.Read(model.Potentiometer, pin%3)
				if v < 0 || v > ADCMax {
					t.Errorf("value %d out of range", v)
					return
				}
			}
		}(w)
	}
	wg.Wait()

	if len(g.potentiometers) != 3 {
		t.Errorf("expected state for 3 pins, got %d", len(g.potentiometers))
	}
}
