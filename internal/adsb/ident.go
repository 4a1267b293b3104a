package adsb

import "strings"

// callsignCharset is the 64-entry 6-bit character set of identification
// messages. '#' marks unused code points; they render as spaces.
const callsignCharset = "#ABCDEFGHIJKLMNOPQRSTUVWXYZ##### ###############0123456789######"

// Identification is a decoded aircraft identification message.
type Identification struct {
	Callsign string `json:"callsign"`
	Category uint8  `json:"category"`
}

// decodeIdentification decodes the eight 6-bit callsign characters and
// the emitter category from an identification ME payload.
func decodeIdentification(me uint64) *Identification {
	tc := uint8(me >> 51 & 0x1F)
	cat := uint8(me >> 48 & 0x7)

	var sb strings.Builder
	for i := 0; i < 8; i++ {
		idx := me >> (42 - 6*i) & 0x3F
		ch := callsignCharset[idx]
		if ch == '#' {
			ch = ' '
		}
		sb.WriteByte(ch)
	}

	return &Identification{
		Callsign: strings.TrimRight(sb.String(), " "),
		Category: (tc-1)*8 + cat,
	}
}
