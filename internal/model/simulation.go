package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

var ErrMissingField = errors.New("missing field")

type (
	// ComponentID accepts both JSON strings and numbers.
	ComponentID string

	Component struct {
		ID   ComponentID `json:"id"`
		Type string      `json:"type"`
		Pin  int         `json:"pin"`

		// Set when the field was present in the decoded JSON.
		hasID   bool
		hasType bool
	}

	SimulateRequest struct {
		Code        string            `json:"code"`
		Components  []Component       `json:"components"`
		Connections []json.RawMessage `json:"connections"`
	}

	ScanResult struct {
		PinStates      map[int]bool        `json:"pin_states"`
		SerialOutput   []string            `json:"serial_output"`
		ExecutionTime  float64             `json:"execution_time"`
		Errors         []string            `json:"errors"`
		SensorReadings map[ComponentID]int `json:"sensor_readings,omitempty"`
	}

	SimulateResponse struct {
		Success bool        `json:"success"`
		Results *ScanResult `json:"results,omitempty"`
		Error   string      `json:"error,omitempty"`
	}

	Health struct {
		Status           string  `json:"status"`
		Timestamp        float64 `json:"timestamp"`
		SimulatorRunning bool    `json:"simulator_running"`
	}
)

func NewScanResult() *ScanResult {
	return &ScanResult{
		PinStates:    make(map[int]bool),
		SerialOutput: []string{},
		Errors:       []string{},
	}
}

// AddReading records a component reading, allocating the map on first use.
func (r *ScanResult) AddReading(id ComponentID, value int) {
	if r.SensorReadings == nil {
		r.SensorReadings = make(map[ComponentID]int)
	}
	r.SensorReadings[id] = value
}

func (id *ComponentID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ComponentID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("component id must be a string or number: %w", err)
	}
	if _, err := strconv.ParseFloat(n.String(), 64); err != nil {
		return fmt.Errorf("component id must be a string or number: %w", err)
	}
	*id = ComponentID(n.String())
	return nil
}

func (c *Component) UnmarshalJSON(data []byte) error {
	type plain Component
	var p plain
	err := json.Unmarshal(data, &p)
	if err != nil {
		return err
	}

	var fields map[string]json.RawMessage
	err = json.Unmarshal(data, &fields)
	if err != nil {
		return err
	}

	*c = Component(p)
	_, c.hasID = fields["id"]
	_, c.hasType = fields["type"]
	return nil
}

// Validate checks a decoded request. Every component needs a type, and
// components of a known sensor kind also need an id to key their reading.
func (r *SimulateRequest) Validate() error {
	for i, c := range r.Components {
		if !c.hasType {
			return fmt.Errorf("component %d: %w: type", i, ErrMissingField)
		}
		if SensorKind(c.Type).Known() && !c.hasID {
			return fmt.Errorf("component %d: %w: id", i, ErrMissingField)
		}
	}
	return nil
}
