package sim

import (
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"sim1090/internal/adsb"
)

// Aircraft is the mutable state of one simulated target.
type Aircraft struct {
	ICAO     uint32  `json:"-"`
	ID       string  `json:"id"` // ICAO address as six hex chars
	Callsign string  `json:"callsign"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Altitude float64 `json:"altitude"` // feet
	Speed    float64 `json:"speed"`    // knots
	Heading  float64 `json:"heading"`  // degrees
	NIC      uint8   `json:"nic"`
}

// Message is one synthesized frame with its provenance.
type Message struct {
	Hex      string `json:"hexMessage"`
	Aircraft string `json:"aircraftId"`
	Kind     string `json:"messageType"`
}

// airlines is the two-letter flight number prefix pool.
var airlines = []string{"CZ", "CA", "MU", "BZ", "FM", "ZH", "HU", "SC", "3U", "GS"}

const (
	minAltitudeFt = 3000
	maxAltitudeFt = 12000
)

// Simulator owns a fleet of aircraft scattered around a center point and
// advances them along their headings. Fleet generation is deterministic
// in the aircraft index; only the per-step jitter draws from the seeded
// random source.
type Simulator struct {
	mu        sync.Mutex
	aircraft  []Aircraft
	centerLat float64
	centerLng float64
	rng       *rand.Rand
	logger    *logrus.Logger
}

// NewSimulator creates a simulator centered on the given position with a
// fleet of count aircraft.
func NewSimulator(logger *logrus.Logger, centerLat, centerLng float64, count int, seed int64) *Simulator {
	s := &Simulator{
		centerLat: centerLat,
		centerLng: centerLng,
		rng:       rand.New(rand.NewSource(seed)),
		logger:    logger,
	}
	s.generateFleet(count)
	return s
}

// generateFleet places count aircraft on golden-angle rays from the
// center so they spread evenly without clustering. Distances, headings,
// altitudes and speeds are index-hashed with small primes, which keeps
// fleets reproducible across runs.
func (s *Simulator) generateFleet(count int) {
	goldenAngle := math.Pi * (3 - math.Sqrt(5))

	s.aircraft = make([]Aircraft, 0, count)
	for i := 0; i < count; i++ {
		angle := float64(i) * goldenAngle
		seed := (i*7919 + 104729) % 10000
		distance := 0.15 + float64(seed)/10000.0*0.45

		// NIC 8 has no barometric position type code, bump it to 9
		nic := uint8(5 + i%7)
		if nic == 8 {
			nic = 9
		}

		icao := uint32(0x780000 + i*0x1111)
		callsign := fmt.Sprintf("%s%d", airlines[i%len(airlines)], 1000+(i*111)%9000)

		s.aircraft = append(s.aircraft, Aircraft{
			ICAO:     icao,
			ID:       fmt.Sprintf("%06X", icao),
			Callsign: callsign,
			Lat:      s.centerLat + distance*math.Sin(angle),
			Lng:      s.centerLng + distance*math.Cos(angle),
			Altitude: 5000 + float64((i*2749)%10000),
			Speed:    400 + float64((i*3571)%250),
			Heading:  float64((i*6997 + 99991) % 360),
			NIC:      nic,
		})
	}
	s.logger.WithFields(logrus.Fields{
		"count":      count,
		"center_lat": s.centerLat,
		"center_lng": s.centerLng,
	}).Info("Generated simulated fleet")
}

// Step advances every aircraft along its heading by elapsed time and
// applies small jitter to altitude, heading and NIC.
func (s *Simulator) Step(elapsed time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	secs := elapsed.Seconds()
	for i := range s.aircraft {
		a := &s.aircraft[i]

		// heading 0 is due north; one degree of latitude is ~111 km
		degPerSec := a.Speed / 3600.0 / 111.0
		mathRad := (90 - a.Heading) * math.Pi / 180
		a.Lat += degPerSec * secs * math.Sin(mathRad)
		a.Lng += degPerSec * secs * math.Cos(mathRad)

		if s.rng.Float64() > 0.9 {
			nic := int(a.NIC) + s.rng.Intn(3) - 1
			if nic < 0 {
				nic = 0
			}
			if nic > 11 {
				nic = 11
			}
			a.NIC = uint8(nic)
		}

		a.Altitude += float64(s.rng.Intn(41) - 20)
		if a.Altitude < minAltitudeFt {
			a.Altitude = minAltitudeFt
		}
		if a.Altitude > maxAltitudeFt {
			a.Altitude = maxAltitudeFt
		}

		a.Heading += float64(s.rng.Intn(3) - 1)
		a.Heading = math.Mod(a.Heading+360, 360)
	}
}

// Aircraft returns a snapshot of the fleet.
func (s *Simulator) Aircraft() []Aircraft {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Aircraft, len(s.aircraft))
	copy(out, s.aircraft)
	return out
}

// Messages synthesizes one position, one velocity and one
// identification frame per aircraft.
func (s *Simulator) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Message, 0, 3*len(s.aircraft))
	for i := range s.aircraft {
		a := &s.aircraft[i]
		category := uint8(24 + i%8) // spread across the class A set
		out = append(out,
			Message{
				Hex:      adsb.EncodePosition(a.ICAO, a.Lat, a.Lng, a.Altitude, a.NIC),
				Aircraft: a.ID,
				Kind:     "position",
			},
			Message{
				Hex:      adsb.EncodeVelocity(a.ICAO, a.Speed, a.Heading, 0),
				Aircraft: a.ID,
				Kind:     "velocity",
			},
			Message{
				Hex:      adsb.EncodeIdentification(a.ICAO, a.Callsign, category),
				Aircraft: a.ID,
				Kind:     "identification",
			},
		)
	}
	return out
}
