package nmea

import (
	"strings"

	"github.com/bft-labs/shiplog/internal/domain"
)

// RMC: recommended minimum navigation information.
//
//	1: time (hhmmss.sss)
//	2: status (A/V), not checked
//	3,4: latitude, N/S
//	5,6: longitude, E/W
//	7: speed over ground (knots)
//	8: course over ground (deg true)
//	9: date (ddmmyy)
func applyRMC(e *domain.LogEntry, s Sentence) {
	setLatitude(e, s.Field(3), s.Field(4))
	setLongitude(e, s.Field(5), s.Field(6))
	setFloat(&e.SpeedOverGround, s.Field(7))
	setFloat(&e.CourseOverGround, s.Field(8))
	if t, ok := ParseRMCTime(s.Field(1), s.Field(9)); ok {
		e.TimestampUTC = &t
	}
}

// VTG: track made good and ground speed.
//
//	1: course (deg true)
//	5: speed (knots)
func applyVTG(e *domain.LogEntry, s Sentence) {
	setFloat(&e.CourseOverGround, s.Field(1))
	setFloat(&e.SpeedOverGround, s.Field(5))
}

// VHW: water speed and heading.
//
//	1: heading (deg true)
func applyVHW(e *domain.LogEntry, s Sentence) {
	setFloat(&e.Heading, s.Field(1))
}

// HDT: heading, true.
func applyHDT(e *domain.LogEntry, s Sentence) {
	setFloat(&e.Heading, s.Field(1))
}

// GLL: geographic position.
//
//	1,2: latitude, N/S
//	3,4: longitude, E/W
func applyGLL(e *domain.LogEntry, s Sentence) {
	setLatitude(e, s.Field(1), s.Field(2))
	setLongitude(e, s.Field(3), s.Field(4))
}

// GGA: fix data.
//
//	2,3: latitude, N/S
//	4,5: longitude, E/W
func applyGGA(e *domain.LogEntry, s Sentence) {
	setLatitude(e, s.Field(2), s.Field(3))
	setLongitude(e, s.Field(4), s.Field(5))
}

// ZDA: time and date.
//
//	1: time (hhmmss.sss)
//	2,3,4: day, month, year
func applyZDA(e *domain.LogEntry, s Sentence) {
	if t, ok := ParseZDATime(s.Field(1), s.Field(2), s.Field(3), s.Field(4)); ok {
		e.TimestampUTC = &t
	}
}

// VBW: dual ground/water speed. The longitudinal water speed is recorded as
// speed over ground.
func applyVBW(e *domain.LogEntry, s Sentence) {
	setFloat(&e.SpeedOverGround, s.Field(1))
}

// MWV: wind speed and angle.
//
//	1: wind angle (deg)
//	3: wind speed, in the unit of field 4
func applyMWV(e *domain.LogEntry, s Sentence) {
	setFloat(&e.WindDirection, s.Field(1))
	setFloat(&e.WindSpeed, s.Field(3))
}

// MDA: meteorological composite.
//
//	3,4: pressure, B (bars)
//	5: air temperature (C)
//	7: water temperature (C)
//	13: wind direction (deg true)
//	17: wind speed (knots)
func applyMDA(e *domain.LogEntry, s Sentence) {
	if strings.EqualFold(s.Field(4), "B") {
		if bars, ok := ParseFloat(s.Field(3)); ok {
			mbar := bars * 1000
			e.BarometricPressure = &mbar
		}
	}
	setFloat(&e.AirTemp, s.Field(5))
	setFloat(&e.WaterTemp, s.Field(7))
	setFloat(&e.WindDirection, s.Field(13))
	setFloat(&e.WindSpeed, s.Field(17))
}

// MTW: mean water temperature (C).
func applyMTW(e *domain.LogEntry, s Sentence) {
	setFloat(&e.WaterTemp, s.Field(1))
}

// MWD: wind direction and speed.
//
//	1: direction (deg true)
//	5: speed (knots)
func applyMWD(e *domain.LogEntry, s Sentence) {
	setFloat(&e.WindDirection, s.Field(1))
	setFloat(&e.WindSpeed, s.Field(5))
}

// RSA: rudder sensor angle. Only the starboard (or single) rudder is
// recorded, and only while its status is A.
func applyRSA(e *domain.LogEntry, s Sentence) {
	if !strings.EqualFold(s.Field(2), "A") {
		return
	}
	setFloat(&e.RudderAngle, s.Field(1))
}

// RPM: revolutions.
//
//	1: source, E engine or S shaft
//	3: speed (rev/min)
//	5: status (A/V)
func applyRPM(e *domain.LogEntry, s Sentence) {
	if !strings.EqualFold(s.Field(1), "E") || strings.EqualFold(s.Field(5), "V") {
		return
	}
	setFloat(&e.EngineRPM, s.Field(3))
}

func setFloat(dst **float64, field string) {
	if v, ok := ParseFloat(field); ok {
		*dst = &v
	}
}

func setLatitude(e *domain.LogEntry, v, hemi string) {
	if lat, ok := ParseLatitude(v, hemi); ok {
		e.Latitude = &lat
	}
}

func setLongitude(e *domain.LogEntry, v, hemi string) {
	if lon, ok := ParseLongitude(v, hemi); ok {
		e.Longitude = &lon
	}
}
