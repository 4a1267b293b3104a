package adsb

import "math"

// Velocity is a decoded airborne velocity message.
type Velocity struct {
	Speed        float64 `json:"speed"`        // knots
	Heading      float64 `json:"heading"`      // degrees, 0-360
	VerticalRate int     `json:"verticalRate"` // ft/min, signed
	SubType      uint8   `json:"subType"`
}

// decodeVelocity decodes subtypes 1/2 (ground speed as east/north
// components) and 3/4 (airspeed plus optional magnetic heading).
// Subtypes 2 and 4 are the supersonic variants, scaled by four.
// Other subtypes are unmodeled and return nil.
func decodeVelocity(me uint64) *Velocity {
	st := uint8(me >> 48 & 0x7)
	if st < 1 || st > 4 {
		return nil
	}

	v := &Velocity{SubType: st}

	// Vertical rate: sign at bit 19, 9-bit magnitude at bits 10-18.
	// Raw 0 means no data.
	if vr := int(me >> 10 & 0x1FF); vr != 0 {
		rate := (vr - 1) * 64
		if me>>19&1 == 1 {
			rate = -rate
		}
		v.VerticalRate = rate
	}

	switch st {
	case 1, 2:
		ewRaw := int(me >> 32 & 0x3FF)
		nsRaw := int(me >> 21 & 0x3FF)
		if ewRaw == 0 || nsRaw == 0 {
			// no data in one of the components
			return v
		}
		ew := float64(ewRaw - 1)
		ns := float64(nsRaw - 1)
		if me>>42&1 == 1 {
			ew = -ew
		}
		if me>>31&1 == 1 {
			ns = -ns
		}
		speed := math.Hypot(ew, ns)
		if st == 2 {
			speed *= 4
		}
		v.Speed = speed
		if speed > 0 {
			v.Heading = math.Mod(math.Atan2(ew, ns)*180/math.Pi+360, 360)
		}

	case 3, 4:
		if me>>42&1 == 1 {
			v.Heading = float64(me>>32&0x3FF) * 360 / 1024
		}
		if as := int(me >> 21 & 0x3FF); as != 0 {
			speed := float64(as)
			if st == 4 {
				speed *= 4
			}
			v.Speed = speed
		}
	}

	return v
}
