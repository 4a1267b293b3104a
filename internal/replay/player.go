package replay

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"sim1090/internal/adsb"
)

// maxReplayRate caps frame delivery when a speed multiplier compresses
// the recorded timing into bursts.
const maxReplayRate = 2000 // frames per second

var ErrNoSession = errors.New("replay: session not found")

// Emit receives each decoded frame during playback. Result is nil when the
// stored frame no longer decodes.
type Emit func(msg Recorded, res *adsb.Result)

// Player replays a recorded session through a decoder, preserving the
// recorded inter-frame gaps. Play and Seek are mutually exclusive; a
// Seek issued mid-playback blocks until Play returns. Cancel the Play
// context first to seek promptly.
type Player struct {
	mu      sync.Mutex
	store   *Store
	decoder *adsb.Decoder
	logger  *logrus.Logger

	session  *Session
	messages []Recorded
	pos      int
}

// NewPlayer loads a session and positions playback at its start.
func NewPlayer(store *Store, decoder *adsb.Decoder, logger *logrus.Logger, sessionID int64) (*Player, error) {
	sess, err := store.Session(sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrNoSession
	}
	msgs, err := store.Messages(sessionID)
	if err != nil {
		return nil, err
	}
	return &Player{
		store:    store,
		decoder:  decoder,
		logger:   logger,
		session:  sess,
		messages: msgs,
	}, nil
}

// Session returns the loaded session.
func (p *Player) Session() *Session {
	return p.session
}

// Len returns the number of frames in the session.
func (p *Player) Len() int {
	return len(p.messages)
}

// Seek repositions playback at the given offset from session start.
// Decoded position state depends on frame order, so the decoder cache
// is dropped and every frame before the target is decoded again with
// its recorded logical timestamp. Two seeks to the same offset
// therefore produce identical decoder state.
func (p *Player) Seek(offset time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.decoder.ClearCache()
	p.pos = 0

	base := p.session.StartedAt
	for p.pos < len(p.messages) && p.messages[p.pos].Offset < offset {
		m := p.messages[p.pos]
		p.decoder.DecodeAt(m.Hex, base.Add(m.Offset))
		p.pos++
	}

	p.logger.WithFields(logrus.Fields{
		"session": p.session.ID,
		"offset":  offset,
		"frame":   p.pos,
	}).Debug("Seek complete")
	return nil
}

// Play delivers the remaining frames through emit, sleeping out the
// recorded gaps divided by speed. A speed of 0 replays as fast as the
// rate cap allows. Play returns when the session ends or ctx is done.
func (p *Player) Play(ctx context.Context, speed float64, emit Emit) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	limiter := rate.NewLimiter(maxReplayRate, 1)
	base := p.session.StartedAt

	var elapsed time.Duration
	if p.pos > 0 {
		elapsed = p.messages[p.pos-1].Offset
	}

	for p.pos < len(p.messages) {
		m := p.messages[p.pos]

		if speed > 0 {
			gap := time.Duration(float64(m.Offset-elapsed) / speed)
			if gap > 0 {
				timer := time.NewTimer(gap)
				select {
				case <-ctx.Done():
					timer.Stop()
					return ctx.Err()
				case <-timer.C:
				}
			}
		}
		if err := limiter.Wait(ctx); err != nil {
			return err
		}

		res := p.decoder.DecodeAt(m.Hex, base.Add(m.Offset))
		if emit != nil {
			emit(m, res)
		}
		elapsed = m.Offset
		p.pos++
	}

	p.logger.WithField("session", p.session.ID).Info("Replay finished")
	return nil
}
