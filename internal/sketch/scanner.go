package sketch

import (
	"arduinosim/internal/model"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Reader is the source of simulated analog values.
type Reader interface {
	Read(kind model.SensorKind, pin int) int
}

// LineResult is the outcome of classifying one line. Number is 1-based.
type LineResult struct {
	Number int
	Line   Line
	Err    error
}

// Lines classifies every line of code in order.
func Lines(code string) []LineResult {
	raw := strings.Split(code, "\n")
	results := make([]LineResult, 0, len(raw))
	for i, text := range raw {
		line, err := Classify(text)
		results = append(results, LineResult{Number: i + 1, Line: line, Err: err})
	}
	return results
}

type Scanner struct {
	sensors Reader
}

func NewScanner(sensors Reader) *Scanner {
	return &Scanner{sensors: sensors}
}

// Scan interprets code line by line. Interpretation stops at the first
// malformed line, which is reported as the single entry in Errors; output
// produced by earlier lines is kept.
func (s *Scanner) Scan(code string) *model.ScanResult {
	start := time.Now()
	result := model.NewScanResult()

	for _, lr := range Lines(code) {
		if lr.Err != nil {
			log.Debug("Malformed sketch line", "line", lr.Number, "err", lr.Err)
			result.Errors = append(result.Errors, fmt.Sprintf("Error processing code: line %d: %v", lr.Number, lr.Err))
			break
		}
		s.apply(result, lr.Line)
	}

	result.ExecutionTime = time.Since(start).Seconds()
	return result
}

func (s *Scanner) apply(result *model.ScanResult, line Line) {
	switch line.Kind {
	case PinWrite:
		result.PinStates[line.Pin] = line.High
	case AnalogRead:
		// Analog pins always read as a temperature sensor, whatever is wired.
		value := s.sensors.Read(model.Temperature, line.Pin)
		result.SerialOutput = append(result.SerialOutput, fmt.Sprintf("Analog pin A%d: %d", line.Pin, value))
	case SerialPrint:
		if line.HasText {
			result.SerialOutput = append(result.SerialOutput, line.Text)
		}
	}
}
