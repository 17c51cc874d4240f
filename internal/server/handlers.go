package server

import (
	"arduinosim/internal/model"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
)

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func (s *Server) simulate(w http.ResponseWriter, r *http.Request) {
	var req *model.SimulateRequest

	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req)
	if err != nil {
		s.fail(w, r, fmt.Errorf("decode request: %w", err))
		return
	}
	if req == nil {
		s.fail(w, r, errors.New("request body must be a JSON object"))
		return
	}
	err = req.Validate()
	if err != nil {
		s.fail(w, r, err)
		return
	}

	start := time.Now()
	result := s.scanner.Scan(req.Code)
	s.metrics.Scan(time.Since(start), len(result.Errors) > 0)

	for _, component := range req.Components {
		kind := model.SensorKind(component.Type)
		if !kind.Known() {
			continue
		}
		result.AddReading(component.ID, s.sensors.Read(kind, component.Pin))
		s.metrics.Reading(kind)
	}

	s.logger.Debug("Simulated sketch",
		"request_id", requestIDFrom(r.Context()),
		"pins", len(result.PinStates),
		"output", len(result.SerialOutput),
		"errors", len(result.Errors),
		"components", len(req.Components),
	)

	s.writeJSON(w, r, http.StatusOK, model.SimulateResponse{Success: true, Results: result})
}

func (s *Server) sensorReading(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sensorType := vars["sensor_type"]

	pin, err := strconv.Atoi(vars["pin"])
	if err != nil {
		s.fail(w, r, fmt.Errorf("invalid pin: %w", err))
		return
	}

	kind := model.ParseSensorKind(sensorType)
	value := s.sensors.Read(kind, pin)
	s.metrics.Reading(kind)

	s.writeJSON(w, r, http.StatusOK, model.SensorData{
		Success:    true,
		SensorType: sensorType,
		Pin:        pin,
		Value:      value,
		Timestamp:  s.sensors.Now(),
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, model.Health{
		Status:           "healthy",
		Timestamp:        s.sensors.Now(),
		SimulatorRunning: s.running.Load(),
	})
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("Request failed", "path", r.URL.Path, "request_id", requestIDFrom(r.Context()), "err", err)
	s.writeJSON(w, r, http.StatusInternalServerError, errorResponse{Success: false, Error: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		s.logger.Error("Encode response", "path", r.URL.Path, "err", err)
	}
}
