package adsb

import (
	"math"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"
)

const (
	// cprPairWindow is the maximum age difference between an even and an
	// odd frame for the global decode to trust the pair.
	cprPairWindow = 10 * time.Second

	// cprScale is 2^17, the denominator of the 17-bit CPR fractions.
	cprScale = 131072.0

	// nzLat is the number of latitude zones per hemisphere (NZ).
	nzLat = 15.0

	// cprCacheSize bounds the per-aircraft CPR arena. Entries beyond
	// this evict least-recently-seen aircraft instead of growing the
	// cache without limit over long sessions.
	cprCacheSize = 4096
)

// cprFrame is one received 17-bit lat/lon pair of a given parity.
type cprFrame struct {
	lat, lon   uint32
	receivedAt time.Time
}

// aircraftState is the per-ICAO CPR cache entry: the most recent frame
// of each parity plus the last successfully resolved position.
type aircraftState struct {
	even, odd        *cprFrame
	lastLat, lastLon float64
	hasLast          bool
}

// CPRDecoder resolves compact position reports to geodetic coordinates.
// State is keyed by the 24-bit ICAO address; frames for the same aircraft
// must be applied in timestamp order, frames for different aircraft are
// independent.
type CPRDecoder struct {
	mu      sync.Mutex
	cache   *lru.Cache[uint32, *aircraftState]
	refLat  float64
	refLon  float64
	hasRef  bool
	logger  *logrus.Logger
	verbose bool
}

// NewCPRDecoder creates a CPR decoder with an empty aircraft cache.
func NewCPRDecoder(logger *logrus.Logger, verbose bool) *CPRDecoder {
	cache, _ := lru.New[uint32, *aircraftState](cprCacheSize)
	return &CPRDecoder{
		cache:   cache,
		logger:  logger,
		verbose: verbose,
	}
}

// SetReference sets the receiver position used as the local-decode
// fallback for aircraft without a previously resolved position.
func (c *CPRDecoder) SetReference(lat, lon float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.refLat = lat
	c.refLon = lon
	c.hasRef = true
}

// Clear drops all per-aircraft CPR state. Required before replay rewinds
// and session switches.
func (c *CPRDecoder) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Purge()
}

// Resolve records a position frame for icao and attempts to resolve it.
// The preferred path is the global two-frame decode; when no opposite
// parity frame exists within the pairing window, or the pair straddles a
// longitude zone boundary, it falls back to a local decode off the last
// known position or the receiver reference. Returns false when the frame
// cannot be resolved yet; the frame is still cached for later pairing.
func (c *CPRDecoder) Resolve(icao uint32, odd bool, cprLat, cprLon uint32, at time.Time) (float64, float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	st, ok := c.cache.Get(icao)
	if !ok {
		st = &aircraftState{}
		c.cache.Add(icao, st)
	}

	fr := &cprFrame{lat: cprLat, lon: cprLon, receivedAt: at}
	if odd {
		st.odd = fr
	} else {
		st.even = fr
	}

	if st.even != nil && st.odd != nil && pairAge(st.even, st.odd) <= cprPairWindow {
		if lat, lon, ok := decodeGlobal(st.even, st.odd, odd); ok {
			st.lastLat, st.lastLon, st.hasLast = lat, lon, true
			if c.verbose {
				c.logger.Debugf("CPR global: ICAO=%06X lat=%.6f lon=%.6f", icao, lat, lon)
			}
			return lat, lon, true
		}
		if c.verbose {
			c.logger.Debugf("CPR global: ICAO=%06X inconsistent pair, trying local", icao)
		}
	}

	refLat, refLon := st.lastLat, st.lastLon
	hasRef := st.hasLast
	if !hasRef && c.hasRef {
		refLat, refLon = c.refLat, c.refLon
		hasRef = true
	}
	if !hasRef {
		return 0, 0, false
	}

	lat, lon, ok := decodeLocal(cprLat, cprLon, odd, refLat, refLon)
	if !ok {
		return 0, 0, false
	}
	st.lastLat, st.lastLon, st.hasLast = lat, lon, true
	if c.verbose {
		c.logger.Debugf("CPR local: ICAO=%06X lat=%.6f lon=%.6f (ref %.4f,%.4f)", icao, lat, lon, refLat, refLon)
	}
	return lat, lon, true
}

func pairAge(even, odd *cprFrame) time.Duration {
	d := even.receivedAt.Sub(odd.receivedAt)
	if d < 0 {
		d = -d
	}
	return d
}

// decodeGlobal runs the two-frame decode. newestOdd selects which parity
// the result is reported for (the frame that arrived last).
func decodeGlobal(even, odd *cprFrame, newestOdd bool) (float64, float64, bool) {
	latEven := float64(even.lat) / cprScale
	latOdd := float64(odd.lat) / cprScale
	lonEven := float64(even.lon) / cprScale
	lonOdd := float64(odd.lon) / cprScale

	// latitude zone index
	j := math.Floor(59*latEven - 60*latOdd + 0.5)

	latE := (360.0 / 60.0) * (cprMod(j, 60) + latEven)
	latO := (360.0 / 59.0) * (cprMod(j, 59) + latOdd)
	if latE >= 270 {
		latE -= 360
	}
	if latO >= 270 {
		latO -= 360
	}
	if latE < -90 || latE > 90 || latO < -90 || latO > 90 {
		return 0, 0, false
	}

	// Both frames must fall in the same longitude zone band, otherwise
	// the pair straddles a zone boundary and is ambiguous.
	if cprNL(latE) != cprNL(latO) {
		return 0, 0, false
	}

	lat := latE
	lonCPR := lonEven
	parity := 0
	if newestOdd {
		lat = latO
		lonCPR = lonOdd
		parity = 1
	}

	nl := cprNL(lat)
	ni := nl - parity
	if ni < 1 {
		ni = 1
	}
	m := math.Floor(lonEven*float64(nl-1) - lonOdd*float64(nl) + 0.5)
	lon := (360.0 / float64(ni)) * (cprMod(m, float64(ni)) + lonCPR)

	return lat, normalizeLon(lon), true
}

// decodeLocal resolves a single frame against a reference position that
// is known to be within half a zone of the aircraft.
func decodeLocal(cprLat, cprLon uint32, odd bool, refLat, refLon float64) (float64, float64, bool) {
	latCPR := float64(cprLat) / cprScale
	lonCPR := float64(cprLon) / cprScale

	dLat := 360.0 / 60.0
	parity := 0
	if odd {
		dLat = 360.0 / 59.0
		parity = 1
	}

	j := math.Floor(refLat/dLat) + math.Floor(0.5+cprMod(refLat, dLat)/dLat-latCPR)
	lat := dLat * (j + latCPR)
	if lat < -90 || lat > 90 {
		return 0, 0, false
	}

	ni := cprNL(lat) - parity
	if ni < 1 {
		ni = 1
	}
	dLon := 360.0 / float64(ni)
	m := math.Floor(refLon/dLon) + math.Floor(0.5+cprMod(refLon, dLon)/dLon-lonCPR)
	lon := dLon * (m + lonCPR)

	return lat, normalizeLon(lon), true
}

// cprNL returns the number of longitude zones at a latitude. The zone
// count collapses to 1 near the poles; the equator is pinned to 59 to
// keep the floor off the 60-zone boundary.
func cprNL(lat float64) int {
	if lat == 0 {
		return 59
	}
	if math.Abs(lat) >= 87 {
		return 1
	}
	a := 1 - math.Cos(math.Pi/(2*nzLat))
	b := math.Cos(math.Pi / 180.0 * lat)
	x := 1 - a/(b*b)
	if x < -1 {
		x = -1
	} else if x > 1 {
		x = 1
	}
	return int(math.Floor(2 * math.Pi / math.Acos(x)))
}

// cprMod is the always-positive modulus used by the CPR arithmetic.
func cprMod(a, b float64) float64 {
	r := math.Mod(a, b)
	if r < 0 {
		r += b
	}
	return r
}

// normalizeLon wraps a longitude into (-180, 180].
func normalizeLon(lon float64) float64 {
	lon -= math.Ceil((lon-180)/360) * 360
	return lon
}
