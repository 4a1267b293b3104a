package app

import "time"

// Default configuration constants
const (
	DefaultCenterLat = 22.5431 // Shenzhen
	DefaultCenterLng = 114.0579
	DefaultAircraft  = 20
	DefaultInterval  = time.Second
	DefaultDatabase  = "./sim1090.db"
)

// Config holds application configuration
type Config struct {
	// simulate
	CenterLat float64
	CenterLng float64
	Aircraft  int
	Interval  time.Duration
	Seed      int64
	Record    bool
	Session   string

	// decode
	RefLat float64
	RefLng float64
	HasRef bool

	// replay
	SessionID int64
	Seek      time.Duration
	Speed     float64

	Database string
	LogFile  string
	Verbose  bool
}
