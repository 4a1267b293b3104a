package adsb

import (
	"errors"
	"fmt"
	"strconv"
)

// Frame layout of a 112-bit DF17/18 extended squitter, bit 0 = LSB:
// DF 107-111, CA 104-106, ICAO 80-103, ME 24-79, PI 0-23.
const (
	LongFrameHexLen  = 28 // 112 bits
	ShortFrameHexLen = 14 // 56 bits
)

var (
	ErrInvalidLength    = errors.New("adsb: invalid frame length")
	ErrUnsupportedFrame = errors.New("adsb: unsupported downlink format")
)

// word112 holds a 112-bit frame as two 64-bit words. hi carries bits
// 64-111 (48 significant bits), lo carries bits 0-63.
type word112 struct {
	hi uint64
	lo uint64
}

// bits extracts the inclusive bit range [lsb, msb] of the 112-bit value.
func (w word112) bits(msb, lsb int) uint64 {
	var v uint64
	switch {
	case lsb >= 64:
		v = w.hi >> (lsb - 64)
	case msb < 64:
		v = w.lo >> lsb
	default:
		v = w.lo>>lsb | w.hi<<(64-lsb)
	}
	return v & (1<<uint(msb-lsb+1) - 1)
}

// Frame is an immutable view of a parsed Mode-S frame.
type Frame struct {
	DF    uint8
	CA    uint8
	ICAO  uint32
	ME    uint64 // 56-bit message extension payload
	PI    uint32 // 24-bit parity field (not validated)
	Short bool   // true for 56-bit payload-only frames
}

// TypeCode returns the top five bits of the ME field.
func (f *Frame) TypeCode() uint8 {
	return uint8(f.ME >> 51 & 0x1F)
}

// ICAOString renders the 24-bit aircraft address as six uppercase hex chars.
func (f *Frame) ICAOString() string {
	return fmt.Sprintf("%06X", f.ICAO)
}

// ParseFrame parses a hex string of exactly 28 chars (112-bit frame) or
// 14 chars (56-bit payload-only frame). Any other length, or any non-hex
// character, is a hard reject.
func ParseFrame(hexMsg string) (*Frame, error) {
	switch len(hexMsg) {
	case LongFrameHexLen:
		hi, err := strconv.ParseUint(hexMsg[:12], 16, 64)
		if err != nil {
			return nil, fmt.Errorf("adsb: bad frame %q: %w", hexMsg, err)
		}
		lo, err := strconv.ParseUint(hexMsg[12:], 16, 64)
		if err != nil {
			return nil, fmt.Errorf("adsb: bad frame %q: %w", hexMsg, err)
		}
		w := word112{hi: hi, lo: lo}
		return &Frame{
			DF:   uint8(w.bits(111, 107)),
			CA:   uint8(w.bits(106, 104)),
			ICAO: uint32(w.bits(103, 80)),
			ME:   w.bits(79, 24),
			PI:   uint32(w.bits(23, 0)),
		}, nil

	case ShortFrameHexLen:
		lo, err := strconv.ParseUint(hexMsg, 16, 64)
		if err != nil {
			return nil, fmt.Errorf("adsb: bad frame %q: %w", hexMsg, err)
		}
		return &Frame{
			DF:    uint8(lo >> 51 & 0x1F),
			ME:    lo,
			Short: true,
		}, nil

	default:
		return nil, ErrInvalidLength
	}
}
