package adsb

import (
	"encoding/json"
	"math"
)

// Altitude decoding for the 12-bit AC field of airborne position messages.
//
// With the Q bit (bit 4) set the field is a binary count of 25 ft steps
// offset by -1000 ft. With Q clear the field is the legacy Gillham (Gray
// coded) Mode C encoding at 100 ft resolution.

const (
	altitudeMinFt = -1200
	altitudeMaxFt = 126700
)

// AltitudeType distinguishes barometric from GNSS altitude sources.
type AltitudeType uint8

const (
	AltitudeBaro AltitudeType = iota
	AltitudeGNSS
)

func (t AltitudeType) String() string {
	if t == AltitudeGNSS {
		return "gnss"
	}
	return "baro"
}

// MarshalJSON renders the altitude type as "baro" or "gnss".
func (t AltitudeType) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

// UnmarshalJSON parses an altitude type name.
func (t *AltitudeType) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	if name == "gnss" {
		*t = AltitudeGNSS
	} else {
		*t = AltitudeBaro
	}
	return nil
}

// decodeBaroAltitude decodes a barometric AC-12 field to feet. Out of
// range Gillham results decode to the 0 sentinel rather than an error.
func decodeBaroAltitude(ac12 uint16) int {
	if ac12&0x10 != 0 {
		// Q=1: 25 ft binary encoding, Q bit removed
		n := int(ac12>>5)<<4 | int(ac12&0xF)
		return n*25 - 1000
	}
	return decodeGillham(ac12)
}

// decodeGNSSAltitude decodes the AC-12 field of a GNSS position message.
// GNSS altitude carries no Q bit; the whole field scales by 25 ft.
func decodeGNSSAltitude(ac12 uint16) int {
	return int(ac12)*25 - 1000
}

// gillham100 maps the Gray-decoded C group to its 100 ft increment.
var gillham100 = [8]int{0, 100, 200, 300, 400, -100, -200, -300}

// decodeGillham decodes a Q=0 AC-12 field. Bit order within the field is
// C1 A1 C2 A2 C4 A4 B1 Q B2 D2 B4 D4 (MSB first); the D-A-B sequence is
// an 8-bit Gray code counting 500 ft, the C group a 3-bit Gray code
// selecting the 100 ft increment.
func decodeGillham(ac12 uint16) int {
	c := grayToBinary(uint(ac12>>11&1)<<2 | uint(ac12>>9&1)<<1 | uint(ac12>>7&1))
	a := uint(ac12>>10&1)<<2 | uint(ac12>>8&1)<<1 | uint(ac12>>6&1)
	b := uint(ac12>>5&1)<<2 | uint(ac12>>3&1)<<1 | uint(ac12>>1&1)
	d := uint(ac12>>2&1)<<1 | uint(ac12&1)

	n500 := grayToBinary(d<<6 | a<<3 | b)
	alt := int(n500)*500 + gillham100[c&7] - 1300

	if alt < altitudeMinFt || alt > altitudeMaxFt {
		return 0
	}
	return alt
}

// grayToBinary converts a reflected binary (Gray) code to plain binary.
func grayToBinary(g uint) uint {
	b := g
	for g >>= 1; g > 0; g >>= 1 {
		b ^= g
	}
	return b
}

// encodeBaroAltitude packs an altitude in feet into the Q=1 form of the
// AC-12 field, rounding to the nearest 25 ft step. Assumes a well-formed
// caller (simulator ground truth).
func encodeBaroAltitude(ft float64) uint16 {
	n := int(math.Round((ft + 1000) / 25))
	if n < 0 {
		n = 0
	}
	if n > 0x7FF {
		n = 0x7FF
	}
	return uint16(n>>4)<<5 | 0x10 | uint16(n&0xF)
}
