package adsb

import (
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"
)

// Kind tags the payload variant carried by a Result.
type Kind uint8

const (
	// KindUnmodeled marks a recognized DF17/18 frame whose type code has
	// no structured decoding; the ICAO address is still reported.
	KindUnmodeled Kind = iota
	KindPosition
	KindVelocity
	KindIdentification
)

func (k Kind) String() string {
	switch k {
	case KindPosition:
		return "position"
	case KindVelocity:
		return "velocity"
	case KindIdentification:
		return "identification"
	default:
		return "unmodeled"
	}
}

// MarshalJSON renders the kind tag as its name.
func (k Kind) MarshalJSON() ([]byte, error) {
	return []byte(`"` + k.String() + `"`), nil
}

// UnmarshalJSON parses a kind name; unknown names map to KindUnmodeled.
func (k *Kind) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	switch name {
	case "position":
		*k = KindPosition
	case "velocity":
		*k = KindVelocity
	case "identification":
		*k = KindIdentification
	default:
		*k = KindUnmodeled
	}
	return nil
}

// Position is a decoded airborne position message. Lat/Lng are the
// (0,0) sentinel until the CPR decoder has enough material to resolve
// them; the raw 17-bit CPR fields are always populated.
type Position struct {
	Lat          float64      `json:"lat"`
	Lng          float64      `json:"lng"`
	Altitude     int          `json:"altitude"` // feet
	AltitudeType AltitudeType `json:"altitudeType"`
	NIC          uint8        `json:"nic"`
	OddParity    bool         `json:"cprOddEven"`
	CPRLat       uint32       `json:"cprLat"`
	CPRLon       uint32       `json:"cprLon"`
}

// Resolved reports whether the CPR decode produced a usable position.
func (p *Position) Resolved() bool {
	return p.Lat != 0 || p.Lng != 0
}

// Result is the decoded form of one frame. Exactly one of the payload
// pointers matching Kind is non-nil; all are nil for KindUnmodeled.
type Result struct {
	ICAO           string          `json:"icao"`
	Kind           Kind            `json:"kind"`
	Position       *Position       `json:"position,omitempty"`
	Velocity       *Velocity       `json:"velocity,omitempty"`
	Identification *Identification `json:"identification,omitempty"`
}

// Decoder is the top-level message codec: it classifies frames by
// downlink format and type code and routes the ME payload to the
// sub-codecs. The only mutable state is the per-aircraft CPR cache.
type Decoder struct {
	logger  *logrus.Logger
	verbose bool
	cpr     *CPRDecoder
}

// NewDecoder creates a decoder with an empty CPR cache.
func NewDecoder(logger *logrus.Logger, verbose bool) *Decoder {
	return &Decoder{
		logger:  logger,
		verbose: verbose,
		cpr:     NewCPRDecoder(logger, verbose),
	}
}

// SetReferencePosition sets the receiver location used as the CPR
// local-decode fallback.
func (d *Decoder) SetReferencePosition(lat, lon float64) {
	d.cpr.SetReference(lat, lon)
}

// ClearCache drops all per-aircraft CPR state. Callers must invoke this
// before rewinding a replay or switching sessions.
func (d *Decoder) ClearCache() {
	d.cpr.Clear()
}

// Decode decodes a hex frame stamped with the current time.
func (d *Decoder) Decode(hexMsg string) *Result {
	return d.DecodeAt(hexMsg, time.Now())
}

// DecodeAt decodes a hex frame with an explicit receipt timestamp; replay
// uses this to preserve the logical temporal order the CPR pairing window
// depends on. Returns nil for malformed input and for downlink formats
// other than 17/18.
func (d *Decoder) DecodeAt(hexMsg string, at time.Time) *Result {
	frame, err := ParseFrame(hexMsg)
	if err != nil {
		if d.verbose {
			d.logger.WithError(err).Debug("rejected frame")
		}
		return nil
	}
	if frame.Short || (frame.DF != 17 && frame.DF != 18) {
		// expected traffic, not an error
		return nil
	}

	res := &Result{ICAO: frame.ICAOString()}
	tc := frame.TypeCode()

	switch {
	case tc >= 1 && tc <= 4:
		res.Kind = KindIdentification
		res.Identification = decodeIdentification(frame.ME)

	case tc >= 9 && tc <= 18:
		res.Kind = KindPosition
		res.Position = d.decodePosition(frame, AltitudeBaro, at)

	case tc == 19:
		if v := decodeVelocity(frame.ME); v != nil {
			res.Kind = KindVelocity
			res.Velocity = v
		}

	case tc >= 20 && tc <= 22:
		res.Kind = KindPosition
		res.Position = d.decodePosition(frame, AltitudeGNSS, at)
	}

	if d.verbose {
		d.logger.WithFields(logrus.Fields{
			"icao": res.ICAO,
			"df":   frame.DF,
			"tc":   tc,
			"kind": res.Kind.String(),
		}).Debug("decoded frame")
	}
	return res
}

// decodePosition extracts the airborne position fields of an ME payload:
// AC-12 altitude at bits 36-47, CPR parity at bit 34, 17-bit CPR latitude
// at bits 17-33 and longitude at bits 0-16.
func (d *Decoder) decodePosition(frame *Frame, altType AltitudeType, at time.Time) *Position {
	me := frame.ME
	ac12 := uint16(me >> 36 & 0xFFF)
	odd := me>>34&1 == 1
	cprLat := uint32(me >> 17 & 0x1FFFF)
	cprLon := uint32(me & 0x1FFFF)

	alt := decodeBaroAltitude(ac12)
	if altType == AltitudeGNSS {
		alt = decodeGNSSAltitude(ac12)
	}

	p := &Position{
		Altitude:     alt,
		AltitudeType: altType,
		NIC:          NICForTypeCode(frame.TypeCode()),
		OddParity:    odd,
		CPRLat:       cprLat,
		CPRLon:       cprLon,
	}
	if lat, lon, ok := d.cpr.Resolve(frame.ICAO, odd, cprLat, cprLon, at); ok {
		p.Lat, p.Lng = lat, lon
	}
	return p
}
