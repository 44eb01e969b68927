// Package ais decodes the navigational status carried by AIS class A
// position reports (message types 1, 2 and 3) in !AIVDM sentences.
//
// Payloads use the 6-bit ASCII armor of ITU-R M.1371: each character carries
// six bits, most significant first. [Dearmor] unpacks a payload into a
// [BitReader] that extracts unsigned fields by bit offset and width.
//
// # Usage
//
//	frame, err := ais.Decode("!AIVDM,1,1,,A,13HOI:0P0000VOHLCnHQKwvL05Ip,0*23")
//	switch {
//	case errors.Is(err, ais.ErrNotApplicable):
//	    // multi-fragment sentence or not a position report
//	case err != nil:
//	    // malformed sentence
//	default:
//	    fmt.Println(frame.NavigationalStatus) // under way using engine
//	}
//
// Multi-fragment messages are not reassembled.
package ais
