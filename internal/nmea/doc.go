// Package nmea tokenizes NMEA 0183 sentences and applies their fields to a
// domain.LogEntry.
//
// A [Registry] maps three-letter sentence types (RMC, VTG, MWV, ...) to
// handlers. Handlers only ever overwrite the fields they successfully
// parse; a malformed or empty field leaves the previous value in place.
// Checksums are stripped but not validated.
package nmea
