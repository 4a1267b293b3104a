package adsb

import (
	"fmt"
	"math"
	"strings"
)

// Frame synthesis for the traffic simulator.
//
// Altitude and velocity are packed in their real DO-260B forms so the
// decoder recovers them exactly, but the 17-bit CPR fields carry a
// simplified linear mapping of latitude and longitude instead of a true
// CPR encoding, every position frame is even parity, and the 24-bit
// parity field is a fixed stub. Frames from this path therefore resolve
// through the decoder's local/unresolved CPR branches only; the CPR
// decoder itself is verified against independent vectors.

// parityStub replaces the CRC of synthesized frames; parity validation
// is out of scope on the decode side as well.
const parityStub = 0xA5A5A5

const simulatorCA = 5 // airborne capability

// assembleFrame shifts the fields of a DF17/18 frame into place and
// renders 28 uppercase hex chars.
func assembleFrame(df, ca uint8, icao uint32, me uint64) string {
	hi := uint64(df&0x1F)<<43 | uint64(ca&0x7)<<40 | uint64(icao&0xFFFFFF)<<16 | me>>40
	lo := me<<24 | parityStub
	return fmt.Sprintf("%012X%016X", hi, lo)
}

// EncodePosition synthesizes an airborne position frame. The type code is
// chosen so the frame decodes back to the requested NIC.
func EncodePosition(icao uint32, lat, lon, altitudeFt float64, nic uint8) string {
	tc := typeCodeForNIC(nic)
	ac12 := encodeBaroAltitude(altitudeFt)
	cprLat := linearCPR(lat, 90, 180)
	cprLon := linearCPR(lon, 180, 360)

	me := uint64(tc)<<51 | uint64(ac12)<<36 | cprLat<<17 | cprLon
	return assembleFrame(17, simulatorCA, icao, me)
}

// linearCPR maps a coordinate onto the 17-bit CPR field as a plain
// fraction of its span. Not a real CPR encoding.
func linearCPR(v, offset, span float64) uint64 {
	n := int64((v + offset) / span * 131071)
	if n < 0 {
		n = 0
	}
	if n > 0x1FFFF {
		n = 0x1FFFF
	}
	return uint64(n)
}

// EncodeVelocity synthesizes a subtype 1 airborne velocity frame from
// ground speed in knots, heading in degrees and vertical rate in ft/min.
func EncodeVelocity(icao uint32, speedKt, headingDeg float64, verticalRate int) string {
	rad := headingDeg * math.Pi / 180
	ew := speedKt * math.Sin(rad)
	ns := speedKt * math.Cos(rad)

	var ewDir, nsDir uint64
	if ew < 0 {
		ewDir = 1
		ew = -ew
	}
	if ns < 0 {
		nsDir = 1
		ns = -ns
	}
	ewRaw := velocityField(ew)
	nsRaw := velocityField(ns)

	var vrSign uint64
	vr := verticalRate
	if vr < 0 {
		vrSign = 1
		vr = -vr
	}
	vrRaw := uint64(math.Round(float64(vr)/64)) + 1
	if vrRaw > 0x1FF {
		vrRaw = 0x1FF
	}

	me := uint64(19)<<51 | uint64(1)<<48 |
		ewDir<<42 | ewRaw<<32 |
		nsDir<<31 | nsRaw<<21 |
		vrSign<<19 | vrRaw<<10
	return assembleFrame(17, simulatorCA, icao, me)
}

// velocityField packs a component magnitude into the 10-bit +1 form.
func velocityField(v float64) uint64 {
	raw := uint64(math.Round(v)) + 1
	if raw > 0x3FF {
		raw = 0x3FF
	}
	return raw
}

// EncodeIdentification synthesizes an identification frame (type code 4)
// for a callsign of up to eight charset characters.
func EncodeIdentification(icao uint32, callsign string, category uint8) string {
	callsign = strings.ToUpper(callsign)
	me := uint64(4)<<51 | uint64(category&0x7)<<48
	for i := 0; i < 8; i++ {
		idx := 32 // space
		if i < len(callsign) {
			if j := strings.IndexByte(callsignCharset, callsign[i]); j >= 0 {
				idx = j
			}
		}
		me |= uint64(idx) << (42 - 6*i)
	}
	return assembleFrame(17, simulatorCA, icao, me)
}
