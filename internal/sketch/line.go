// Package sketch recognises a few Arduino calls in sketch source and turns
// them into fabricated pin and serial output.
package sketch

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

type Kind int

const (
	Unrecognized Kind = iota
	PinWrite
	AnalogRead
	SerialPrint
)

func (k Kind) String() string {
	switch k {
	case PinWrite:
		return "digitalWrite"
	case AnalogRead:
		return "analogRead"
	case SerialPrint:
		return "Serial.print"
	default:
		return "unrecognized"
	}
}

const (
	digitalWriteCall = "digitalwrite"
	analogReadCall   = "analogread"
	serialPrintCall  = "serial.print"
)

var errNoArguments = errors.New("missing argument list")

// Line is one classified sketch line. Which fields are set depends on Kind.
type Line struct {
	Kind Kind
	Pin  int
	High bool
	// Text is the quoted message of a Serial.print line. HasText is false when
	// the call had no quoted literal.
	Text    string
	HasText bool
}

// Classify matches a single source line against the recognised calls.
// digitalWrite takes priority over analogRead, which takes priority over
// Serial.print. Lines matching none of them are Unrecognized.
func Classify(raw string) (Line, error) {
	trimmed := strings.TrimSpace(raw)
	lower := strings.ToLower(trimmed)

	switch {
	case strings.Contains(lower, digitalWriteCall):
		return pinWrite(lower)
	case strings.Contains(lower, analogReadCall):
		return analogRead(lower)
	case strings.Contains(lower, serialPrintCall):
		return serialPrint(lower), nil
	default:
		return Line{Kind: Unrecognized}, nil
	}
}

func pinWrite(lower string) (Line, error) {
	args, err := callArgs(lower, digitalWriteCall)
	if err != nil {
		return Line{}, fmt.Errorf("digitalWrite: %w", err)
	}

	fields := strings.Split(args, ",")
	if len(fields) != 2 {
		return Line{}, fmt.Errorf("digitalWrite: expected 2 arguments, got %d", len(fields))
	}

	pin, err := strconv.Atoi(strings.TrimSpace(fields[0]))
	if err != nil {
		return Line{}, fmt.Errorf("digitalWrite: invalid pin: %w", err)
	}

	return Line{
		Kind: PinWrite,
		Pin:  pin,
		High: strings.TrimSpace(fields[1]) == "high",
	}, nil
}

func analogRead(lower string) (Line, error) {
	arg, err := callArgs(lower, analogReadCall)
	if err != nil {
		return Line{}, fmt.Errorf("analogRead: %w", err)
	}

	arg = strings.TrimSpace(arg)
	arg = strings.TrimPrefix(arg, "a")

	pin, err := strconv.Atoi(arg)
	if err != nil {
		return Line{}, fmt.Errorf("analogRead: invalid pin: %w", err)
	}

	return Line{Kind: AnalogRead, Pin: pin}, nil
}

// Matching runs on the lowercased line, so the message is lowercased too.
func serialPrint(lower string) Line {
	_, rest, found := strings.Cut(lower, `"`)
	if !found {
		return Line{Kind: SerialPrint}
	}
	text, _, _ := strings.Cut(rest, `"`)
	return Line{Kind: SerialPrint, Text: text, HasText: true}
}

// callArgs returns the text between the parenthesis following call and the
// next closing parenthesis.
func callArgs(lower, call string) (string, error) {
	_, rest, _ := strings.Cut(lower, call)
	rest = strings.TrimSpace(rest)
	if !strings.HasPrefix(rest, "(") {
		return "", errNoArguments
	}
	args, _, _ := strings.Cut(rest[1:], ")")
	return args, nil
}
