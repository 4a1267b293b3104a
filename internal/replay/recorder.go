package replay

import "time"

// Recorder appends a live message stream to a fresh session, stamping
// each frame with its offset from the recorder's start.
type Recorder struct {
	store   *Store
	session int64
	start   time.Time
}

// NewRecorder creates a session and returns a recorder bound to it.
func NewRecorder(store *Store, name string, centerLat, centerLng float64) (*Recorder, error) {
	start := time.Now()
	id, err := store.CreateSession(name, centerLat, centerLng, start)
	if err != nil {
		return nil, err
	}
	return &Recorder{store: store, session: id, start: start}, nil
}

// SessionID returns the id of the session being written.
func (r *Recorder) SessionID() int64 {
	return r.session
}

// Record stores one frame at the current offset.
func (r *Recorder) Record(icao, kind, hexMsg string) error {
	return r.store.Append(r.session, time.Since(r.start), icao, kind, hexMsg)
}
