package main

import (
	"arduinosim/internal/discovery"
	"arduinosim/internal/model"
	"arduinosim/internal/probe"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
)

const maxRetries = 5

func main() {
	var (
		debug      bool
		baseURL    string
		sketchFile string
		sensorType string
		pin        int
		watch      time.Duration
		timeout    time.Duration
	)
	flag.BoolVar(&debug, "debug", false, "Enable debug logging")
	flag.StringVar(&baseURL, "url", "", "Simulator base URL (skips mDNS discovery)")
	flag.StringVar(&sketchFile, "sketch", "", "Sketch file to simulate")
	flag.StringVar(&sensorType, "sensor", "", "Sensor type to read")
	flag.IntVar(&pin, "pin", 0, "Sensor pin")
	flag.DurationVar(&watch, "watch", 0, "Poll the sensor at this interval until interrupted")
	flag.DurationVar(&timeout, "timeout", 2*time.Second, "Discovery and request timeout")
	flag.Parse()

	if debug {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}

	if baseURL == "" {
		var service *discovery.Service
		var err error

	lookup:
		for range maxRetries {
			service, err = discovery.Discover(timeout)
			switch {
			case err == nil:
				break lookup
			case errors.Is(err, discovery.ErrTimeout):
				log.Info("Discovery timed out, will retry in a moment")
				time.Sleep(time.Second)
			default:
				log.Fatal(err)
			}
		}

		if err != nil {
			log.Fatal(err)
		}
		baseURL = service.BaseURL()
		log.Info("Found simulator", "instance", service.Instance, "url", baseURL)
	}

	client := probe.NewClient(baseURL, timeout)

	health, err := client.Health()
	if err != nil {
		log.Fatal(err)
	}
	log.Info("Simulator health", "status", health.Status, "running", health.SimulatorRunning)

	if sketchFile != "" {
		code, err := os.ReadFile(sketchFile)
		if err != nil {
			log.Fatal(err)
		}
		result, err := client.Simulate(model.SimulateRequest{Code: string(code)})
		if err != nil {
			log.Fatal(err)
		}
		for pin, high := range result.PinStates {
			log.Info("Pin state", "pin", pin, "high", high)
		}
		for _, line := range result.SerialOutput {
			log.Info("Serial", "text", line)
		}
		for _, e := range result.Errors {
			log.Warn(e)
		}
		log.Info("Simulated", "seconds", result.ExecutionTime)
	}

	if sensorType == "" {
		return
	}

	if watch <= 0 {
		data, err := client.Sensor(sensorType, pin)
		if err != nil {
			log.Fatal(err)
		}
		log.Info("Sensor reading", "type", data.SensorType, "pin", data.Pin, "value", data.Value)
		return
	}

	readings := make(chan model.SensorData)
	done := make(chan bool)
	errs := make(chan error)

	w := probe.NewWatcher(client, sensorType, pin, watch, readings, done, errs)
	go w.Start()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case data := <-readings:
			log.Info("Sensor reading", "type", data.SensorType, "pin", data.Pin, "value", data.Value)
		case <-sig:
			log.Info("Exiting...")
			close(done)
			os.Exit(0)
		case err := <-errs:
			log.Error(err)
			close(done)
			os.Exit(1)
		}
	}
}
