package model

type SensorKind string

const (
	Temperature   SensorKind = "temperature"
	Photoresistor SensorKind = "photoresistor"
	Ultrasonic    SensorKind = "ultrasonic"
	Potentiometer SensorKind = "potentiometer"
	Other         SensorKind = "other"
)

// ParseSensorKind maps a component type name onto a SensorKind. Matching is
// exact; unknown names become Other.
func ParseSensorKind(name string) SensorKind {
	switch kind := SensorKind(name); kind {
	case Temperature, Photoresistor, Ultrasonic, Potentiometer:
		return kind
	default:
		return Other
	}
}

// Known reports whether the kind has a dedicated reading formula.
func (k SensorKind) Known() bool {
	switch k {
	case Temperature, Photoresistor, Ultrasonic, Potentiometer:
		return true
	}
	return false
}

type SensorData struct {
	Success    bool    `json:"success"`
	SensorType string  `json:"sensor_type"`
	Pin        int     `json:"pin"`
	Value      int     `json:"value"`
	Timestamp  float64 `json:"timestamp"`
}
