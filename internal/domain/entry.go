package domain

import "time"

// LogEntry is the current-state record of a vessel as seen on one
// connection. Every field stays nil until a sentence provides a value; a
// later value overwrites the earlier one in place.
type LogEntry struct {
	TimestampUTC       *time.Time `json:"timestamp_utc"`
	Latitude           *float64   `json:"latitude"`
	Longitude          *float64   `json:"longitude"`
	CourseOverGround   *float64   `json:"course_over_ground"`
	SpeedOverGround    *float64   `json:"speed_over_ground"`
	Heading            *float64   `json:"heading"`
	RudderAngle        *float64   `json:"rudder_angle"`
	WindDirection      *float64   `json:"wind_direction"`
	WindSpeed          *float64   `json:"wind_speed"`
	BarometricPressure *float64   `json:"barometric_pressure"`
	AirTemp            *float64   `json:"air_temp"`
	WaterTemp          *float64   `json:"water_temp"`
	EngineRPM          *float64   `json:"engine_rpm"`
}

// Clone returns a deep copy of the entry. Mutating the original afterwards
// does not affect the copy.
func (e *LogEntry) Clone() LogEntry {
	return LogEntry{
		TimestampUTC:       cloneTime(e.TimestampUTC),
		Latitude:           cloneFloat(e.Latitude),
		Longitude:          cloneFloat(e.Longitude),
		CourseOverGround:   cloneFloat(e.CourseOverGround),
		SpeedOverGround:    cloneFloat(e.SpeedOverGround),
		Heading:            cloneFloat(e.Heading),
		RudderAngle:        cloneFloat(e.RudderAngle),
		WindDirection:      cloneFloat(e.WindDirection),
		WindSpeed:          cloneFloat(e.WindSpeed),
		BarometricPressure: cloneFloat(e.BarometricPressure),
		AirTemp:            cloneFloat(e.AirTemp),
		WaterTemp:          cloneFloat(e.WaterTemp),
		EngineRPM:          cloneFloat(e.EngineRPM),
	}
}

// Empty reports whether no field has been set.
func (e *LogEntry) Empty() bool {
	return *e == LogEntry{}
}

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneTime(p *time.Time) *time.Time {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
