package adsb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildVelocityME assembles a subtype 1/2 velocity ME payload from its
// raw field values.
func buildVelocityME(st uint8, ewDir uint64, ewVel uint64, nsDir uint64, nsVel uint64, vrSign uint64, vr uint64) uint64 {
	return uint64(19)<<51 |
		uint64(st)<<48 |
		ewDir<<42 |
		ewVel<<32 |
		nsDir<<31 |
		nsVel<<21 |
		vrSign<<19 |
		vr<<10
}

func TestDecodeVelocityGroundSpeed(t *testing.T) {
	// east 100 kt, north 100 kt, climbing 1024 ft/min
	me := buildVelocityME(1, 0, 101, 0, 101, 0, 17)
	v := decodeVelocity(me)
	require.NotNil(t, v)
	assert.Equal(t, uint8(1), v.SubType)
	assert.InDelta(t, 141.42, v.Speed, 0.01)
	assert.InDelta(t, 45.0, v.Heading, 0.01)
	assert.Equal(t, 1024, v.VerticalRate)
}

func TestDecodeVelocityQuadrants(t *testing.T) {
	tests := []struct {
		name    string
		ewDir   uint64
		nsDir   uint64
		heading float64
	}{
		{"north-east", 0, 0, 45},
		{"south-east", 0, 1, 135},
		{"south-west", 1, 1, 225},
		{"north-west", 1, 0, 315},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			me := buildVelocityME(1, tt.ewDir, 101, tt.nsDir, 101, 0, 0)
			v := decodeVelocity(me)
			require.NotNil(t, v)
			assert.InDelta(t, tt.heading, v.Heading, 0.01)
		})
	}
}

func TestDecodeVelocityDueNorth(t *testing.T) {
	me := buildVelocityME(1, 0, 1, 0, 251, 0, 0)
	v := decodeVelocity(me)
	require.NotNil(t, v)
	assert.InDelta(t, 250.0, v.Speed, 0.01)
	assert.InDelta(t, 0.0, v.Heading, 0.01)
}

func TestDecodeVelocitySupersonic(t *testing.T) {
	me := buildVelocityME(2, 0, 101, 0, 101, 0, 0)
	v := decodeVelocity(me)
	require.NotNil(t, v)
	assert.Equal(t, uint8(2), v.SubType)
	assert.InDelta(t, 4*141.42, v.Speed, 0.05)
}

func TestDecodeVelocityDescent(t *testing.T) {
	me := buildVelocityME(1, 0, 2, 0, 2, 1, 9)
	v := decodeVelocity(me)
	require.NotNil(t, v)
	assert.Equal(t, -512, v.VerticalRate)
}

func TestDecodeVelocityNoComponentData(t *testing.T) {
	// ew raw 0 means no data; rate still decodes
	me := buildVelocityME(1, 0, 0, 0, 101, 0, 17)
	v := decodeVelocity(me)
	require.NotNil(t, v)
	assert.Zero(t, v.Speed)
	assert.Zero(t, v.Heading)
	assert.Equal(t, 1024, v.VerticalRate)
}

func TestDecodeVelocityAirspeed(t *testing.T) {
	// subtype 3, heading available, 512/1024 of a turn, 320 kt
	me := uint64(19)<<51 | uint64(3)<<48 | uint64(1)<<42 | uint64(512)<<32 | uint64(320)<<21
	v := decodeVelocity(me)
	require.NotNil(t, v)
	assert.Equal(t, uint8(3), v.SubType)
	assert.InDelta(t, 180.0, v.Heading, 0.01)
	assert.InDelta(t, 320.0, v.Speed, 0.01)
}

func TestDecodeVelocityAirspeedSupersonic(t *testing.T) {
	me := uint64(19)<<51 | uint64(4)<<48 | uint64(1)<<42 | uint64(256)<<32 | uint64(300)<<21
	v := decodeVelocity(me)
	require.NotNil(t, v)
	assert.InDelta(t, 90.0, v.Heading, 0.01)
	assert.InDelta(t, 1200.0, v.Speed, 0.01)
}

func TestDecodeVelocityHeadingUnavailable(t *testing.T) {
	me := uint64(19)<<51 | uint64(3)<<48 | uint64(512)<<32 | uint64(100)<<21
	v := decodeVelocity(me)
	require.NotNil(t, v)
	assert.Zero(t, v.Heading)
	assert.InDelta(t, 100.0, v.Speed, 0.01)
}

func TestDecodeVelocityUnknownSubtype(t *testing.T) {
	for _, st := range []uint64{0, 5, 6, 7} {
		me := uint64(19)<<51 | st<<48
		assert.Nil(t, decodeVelocity(me), "subtype %d", st)
	}
}
