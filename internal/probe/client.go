// Package probe talks to a running simulator over HTTP.
package probe

import (
	"arduinosim/internal/model"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
)

var ErrRequestFailed = errors.New("simulator reported failure")

type Client struct {
	BaseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) Health() (*model.Health, error) {
	var health model.Health
	err := c.do(http.MethodGet, "/api/health", nil, &health)
	if err != nil {
		return nil, err
	}
	return &health, nil
}

func (c *Client) Sensor(sensorType string, pin int) (*model.SensorData, error) {
	var data model.SensorData
	err := c.do(http.MethodGet, "/api/sensor/"+url.PathEscape(sensorType)+"/"+strconv.Itoa(pin), nil, &data)
	if err != nil {
		return nil, err
	}
	if !data.Success {
		return nil, ErrRequestFailed
	}
	return &data, nil
}

func (c *Client) Simulate(req model.SimulateRequest) (*model.ScanResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	var response model.SimulateResponse
	err = c.do(http.MethodPost, "/api/simulate", body, &response)
	if err != nil {
		return nil, err
	}
	if !response.Success || response.Results == nil {
		return nil, fmt.Errorf("%w: %s", ErrRequestFailed, response.Error)
	}
	return response.Results, nil
}

func (c *Client) do(method, path string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	log.Debug("Calling simulator", "method", method, "path", path)
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s %s: not found", method, path)
	}

	err = json.Unmarshal(data, out)
	if err != nil {
		return fmt.Errorf("%s %s: status %d: %w", method, path, resp.StatusCode, err)
	}

	if resp.StatusCode != http.StatusOK {
		var failure struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(data, &failure)
		return fmt.Errorf("%w: %s", ErrRequestFailed, failure.Error)
	}

	return nil
}
