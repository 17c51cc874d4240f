// Package sensor fabricates plausible readings for the sensor kinds a sketch
// can be wired to.
package sensor

import (
	"arduinosim/internal/model"
	"math"
	"math/rand/v2"
	"sync"
	"time"
)

const (
	ADCMax = 1023

	secondsPerDay  = 86400
	secondsPerHour = 3600

	minDistance = 2
	maxDistance = 400

	potentiometerStep = 10
)

type (
	// Generator produces readings. Potentiometer values are remembered per pin
	// for the lifetime of the Generator.
	Generator struct {
		mu             sync.Mutex
		rnd            *rand.Rand
		clock          func() time.Time
		potentiometers map[int]int
	}

	Option func(*Generator)
)

func WithRand(rnd *rand.Rand) Option {
	return func(g *Generator) {
		g.rnd = rnd
	}
}

func WithClock(clock func() time.Time) Option {
	return func(g *Generator) {
		g.clock = clock
	}
}

func New(opts ...Option) *Generator {
	g := &Generator{
		rnd:            rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64())),
		clock:          time.Now,
		potentiometers: make(map[int]int),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Now returns the generator clock as fractional Unix seconds.
func (g *Generator) Now() float64 {
	return Seconds(g.clock())
}

// Read returns a reading for kind on pin at the current clock time.
func (g *Generator) Read(kind model.SensorKind, pin int) int {
	return g.Reading(kind, pin, g.Now())
}

// Reading returns a reading for kind on pin at now, given in Unix seconds.
func (g *Generator) Reading(kind model.SensorKind, pin int, now float64) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch kind {
	case model.Temperature:
		return g.temperature(now)
	case model.Photoresistor:
		return g.light(now)
	case model.Ultrasonic:
		return g.distance()
	case model.Potentiometer:
		return g.potentiometer(pin)
	default:
		return g.randInt(0, ADCMax)
	}
}

// Daily sine cycle around 25C with +-2C noise, scaled by 10.
func (g *Generator) temperature(now float64) int {
	base := 25.0
	noise := g.uniform(-2, 2)
	cycle := 5 * math.Sin(now/secondsPerDay)
	return int((base + noise + cycle) * 10)
}

func (g *Generator) light(now float64) int {
	hour := math.Mod(now, secondsPerDay) / secondsPerHour
	if hour < 0 {
		hour += 24
	}

	var level float64
	if hour >= 6 && hour <= 18 {
		level = 800 + g.uniform(-100, 100)
	} else {
		level = 200 + g.uniform(-50, 50)
	}
	return int(clamp(level, 0, ADCMax))
}

func (g *Generator) distance() int {
	return int(clamp(20+g.uniform(-2, 2), minDistance, maxDistance))
}

func (g *Generator) potentiometer(pin int) int {
	value, ok := g.potentiometers[pin]
	if !ok {
		value = g.randInt(0, ADCMax)
	} else {
		value += g.randInt(-potentiometerStep, potentiometerStep)
		value = int(clamp(float64(value), 0, ADCMax))
	}
	g.potentiometers[pin] = value
	return value
}

func (g *Generator) uniform(lo, hi float64) float64 {
	return lo + g.rnd.Float64()*(hi-lo)
}

// randInt returns an integer in [lo, hi], both ends inclusive.
func (g *Generator) randInt(lo, hi int) int {
	return lo + g.rnd.IntN(hi-lo+1)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Seconds converts t to fractional Unix seconds.
func Seconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}
