package nmea

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// ParseFloat parses a numeric field. Empty, malformed and non-finite values
// report false.
func ParseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// ParseLatitude converts ddmm.mmmm plus N/S into signed decimal degrees.
func ParseLatitude(v, hemi string) (float64, bool) {
	hemi = strings.ToUpper(strings.TrimSpace(hemi))
	if hemi != "N" && hemi != "S" {
		return 0, false
	}
	deg, ok := parseDegMin(v, 2, 90)
	if !ok {
		return 0, false
	}
	if hemi == "S" {
		deg = -deg
	}
	return deg, true
}

// ParseLongitude converts dddmm.mmmm plus E/W into signed decimal degrees.
func ParseLongitude(v, hemi string) (float64, bool) {
	hemi = strings.ToUpper(strings.TrimSpace(hemi))
	if hemi != "E" && hemi != "W" {
		return 0, false
	}
	deg, ok := parseDegMin(v, 3, 180)
	if !ok {
		return 0, false
	}
	if hemi == "W" {
		deg = -deg
	}
	return deg, true
}

// parseDegMin splits v after degDigits characters into whole degrees and
// decimal minutes.
func parseDegMin(v string, degDigits int, maxDeg float64) (float64, bool) {
	v = strings.TrimSpace(v)
	if len(v) < degDigits+2 {
		return 0, false
	}
	deg, err := strconv.Atoi(v[:degDigits])
	if err != nil || deg < 0 {
		return 0, false
	}
	mins, ok := ParseFloat(v[degDigits:])
	if !ok || mins < 0 || mins >= 60 {
		return 0, false
	}
	dec := float64(deg) + mins/60
	if dec > maxDeg {
		return 0, false
	}
	return dec, true
}

// ParseRMCTime combines an hhmmss[.sss] time and a ddmmyy date into a UTC
// instant. Two-digit years 00-68 are 20yy and 69-99 are 19yy, as with
// strptime's %y.
func ParseRMCTime(hms, dmy string) (time.Time, bool) {
	dmy = strings.TrimSpace(dmy)
	if len(dmy) != 6 {
		return time.Time{}, false
	}
	day, err1 := strconv.Atoi(dmy[0:2])
	month, err2 := strconv.Atoi(dmy[2:4])
	year, err3 := strconv.Atoi(dmy[4:6])
	if err1 != nil || err2 != nil || err3 != nil {
		return time.Time{}, false
	}
	return buildTime(hms, expandYear(year), month, day)
}

// ParseZDATime combines an hhmmss[.sss] time with separate day, month and
// four-digit year fields into a UTC instant. Local zone fields are ignored.
func ParseZDATime(hms, day, month, year string) (time.Time, bool) {
	d, err1 := strconv.Atoi(strings.TrimSpace(day))
	m, err2 := strconv.Atoi(strings.TrimSpace(month))
	y, err3 := strconv.Atoi(strings.TrimSpace(year))
	if err1 != nil || err2 != nil || err3 != nil || y < 1000 {
		return time.Time{}, false
	}
	return buildTime(hms, y, m, d)
}

func expandYear(yy int) int {
	if yy >= 69 {
		return 1900 + yy
	}
	return 2000 + yy
}

func buildTime(hms string, year, month, day int) (time.Time, bool) {
	hms = strings.TrimSpace(hms)
	if len(hms) < 6 {
		return time.Time{}, false
	}
	hh, err1 := strconv.Atoi(hms[0:2])
	mm, err2 := strconv.Atoi(hms[2:4])
	if err1 != nil || err2 != nil {
		return time.Time{}, false
	}
	secs, ok := ParseFloat(hms[4:])
	if !ok || secs < 0 || secs >= 60 {
		return time.Time{}, false
	}
	if hh > 23 || mm > 59 || month < 1 || month > 12 || day < 1 {
		return time.Time{}, false
	}
	whole := int(secs)
	nanos := int(math.Round((secs - float64(whole)) * 1e9))
	t := time.Date(year, time.Month(month), day, hh, mm, whole, nanos, time.UTC)
	if t.Day() != day {
		// Day overflowed the month, e.g. 31 February.
		return time.Time{}, false
	}
	return t, true
}
