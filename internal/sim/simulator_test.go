package sim

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sim1090/internal/adsb"
)

func newTestSim(count int) *Simulator {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewSimulator(logger, 22.5431, 114.0579, count, 1)
}

func TestFleetGeneration(t *testing.T) {
	s := newTestSim(10)
	fleet := s.Aircraft()
	require.Len(t, fleet, 10)

	seenICAO := make(map[string]bool)
	for i, a := range fleet {
		assert.False(t, seenICAO[a.ID], "duplicate ICAO %s", a.ID)
		seenICAO[a.ID] = true

		assert.InDelta(t, 22.5431, a.Lat, 0.7, "aircraft %d", i)
		assert.InDelta(t, 114.0579, a.Lng, 0.7, "aircraft %d", i)
		assert.GreaterOrEqual(t, a.Altitude, 5000.0)
		assert.Less(t, a.Altitude, 15000.0)
		assert.GreaterOrEqual(t, a.Speed, 400.0)
		assert.Less(t, a.Speed, 650.0)
		assert.GreaterOrEqual(t, a.NIC, uint8(5))
		assert.LessOrEqual(t, a.NIC, uint8(11))
		assert.NotEmpty(t, a.Callsign)
	}

	assert.Equal(t, "780000", fleet[0].ID)
	assert.Equal(t, "781111", fleet[1].ID)
	assert.Equal(t, "CZ1000", fleet[0].Callsign)
	assert.Equal(t, "CA1111", fleet[1].Callsign)
}

func TestFleetGenerationDeterministic(t *testing.T) {
	a := newTestSim(25).Aircraft()
	b := newTestSim(25).Aircraft()
	assert.Equal(t, a, b)
}

func TestStepMovesAircraft(t *testing.T) {
	s := newTestSim(5)
	before := s.Aircraft()
	s.Step(10 * time.Second)
	after := s.Aircraft()

	for i := range before {
		moved := before[i].Lat != after[i].Lat || before[i].Lng != after[i].Lng
		assert.True(t, moved, "aircraft %d did not move", i)

		assert.GreaterOrEqual(t, after[i].Altitude, float64(minAltitudeFt))
		assert.LessOrEqual(t, after[i].Altitude, float64(maxAltitudeFt))
		assert.GreaterOrEqual(t, after[i].Heading, 0.0)
		assert.Less(t, after[i].Heading, 360.0)
	}
}

func TestStepHeadingDirection(t *testing.T) {
	s := newTestSim(1)
	s.mu.Lock()
	s.aircraft[0].Heading = 0 // due north
	s.aircraft[0].Speed = 600
	s.mu.Unlock()

	before := s.Aircraft()[0]
	s.Step(time.Minute)
	after := s.Aircraft()[0]

	assert.Greater(t, after.Lat, before.Lat)
	assert.InDelta(t, before.Lng, after.Lng, 0.02)
}

// TestMessagesDecode runs every synthesized frame through the decoder
// and checks it comes back as the advertised message type with the
// advertised ICAO address.
func TestMessagesDecode(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	s := newTestSim(10)
	d := adsb.NewDecoder(logger, false)

	msgs := s.Messages()
	require.Len(t, msgs, 30)

	fleet := s.Aircraft()
	byID := make(map[string]Aircraft, len(fleet))
	for _, a := range fleet {
		byID[a.ID] = a
	}

	for _, m := range msgs {
		res := d.Decode(m.Hex)
		require.NotNil(t, res, "frame %s", m.Hex)
		assert.Equal(t, m.Aircraft, res.ICAO)
		assert.Equal(t, m.Kind, res.Kind.String())

		a := byID[m.Aircraft]
		switch m.Kind {
		case "position":
			require.NotNil(t, res.Position)
			assert.Equal(t, a.NIC, res.Position.NIC)
			assert.InDelta(t, a.Altitude, float64(res.Position.Altitude), 12.5)
		case "velocity":
			require.NotNil(t, res.Velocity)
			assert.InDelta(t, a.Speed, res.Velocity.Speed, 1.0)
		case "identification":
			require.NotNil(t, res.Identification)
			assert.Equal(t, a.Callsign, res.Identification.Callsign)
		}
	}
}
