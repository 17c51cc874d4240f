package probe

import (
	"arduinosim/internal/model"
	"time"

	"github.com/charmbracelet/log"
)

// Watcher polls one sensor on a fixed interval and forwards each reading.
type Watcher struct {
	client     *Client
	sensorType string
	pin        int
	ticker     *time.Ticker
	readings   chan<- model.SensorData
	done       <-chan bool
	err        chan<- error
}

func NewWatcher(client *Client, sensorType string, pin int, interval time.Duration, readings chan<- model.SensorData, done <-chan bool, err chan<- error) Watcher {
	return Watcher{
		client:     client,
		sensorType: sensorType,
		pin:        pin,
		ticker:     time.NewTicker(interval),
		readings:   readings,
		done:       done,
		err:        err,
	}
}

func (w Watcher) Start() {
	defer w.ticker.Stop()

	if !w.read() {
		return
	}

	for {
		select {
		case <-w.done:
			return
		case <-w.ticker.C:
			if !w.read() {
				return
			}
		}
	}
}

// read reports false once the watcher should stop.
func (w Watcher) read() bool {
	data, err := w.client.Sensor(w.sensorType, w.pin)
	if err != nil {
		select {
		case w.err <- err:
		case <-w.done:
		}
		return false
	}

	log.Debug("Sensor reading", "type", data.SensorType, "pin", data.Pin, "value", data.Value)

	select {
	case w.readings <- *data:
		return true
	case <-w.done:
		return false
	}
}
