// Package app wires the simulator, decoder and replay store behind the
// command-line surface.
package app

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"sim1090/internal/adsb"
	"sim1090/internal/logging"
	"sim1090/internal/replay"
	"sim1090/internal/sim"
)

// Application represents the main application
type Application struct {
	config  Config
	logger  *logrus.Logger
	logSink io.Closer
	decoder *adsb.Decoder
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	stdout io.Writer
	stdin  io.Reader
}

// NewApplication creates a new application instance
func NewApplication(config Config) *Application {
	ctx, cancel := context.WithCancel(context.Background())
	logger, sink := logging.New(config.Verbose, config.LogFile)

	app := &Application{
		config:  config,
		logger:  logger,
		logSink: sink,
		decoder: adsb.NewDecoder(logger, config.Verbose),
		ctx:     ctx,
		cancel:  cancel,
		stdout:  os.Stdout,
		stdin:   os.Stdin,
	}
	if config.HasRef {
		app.decoder.SetReferencePosition(config.RefLat, config.RefLng)
	}
	return app
}

// Close releases the log sink.
func (app *Application) Close() {
	app.cancel()
	if app.logSink != nil {
		_ = app.logSink.Close()
	}
}

// RunSimulate drives the simulated fleet on a fixed tick, emitting hex
// frames to stdout and, when recording is enabled, into a session.
func (app *Application) RunSimulate() error {
	app.logger.WithFields(logrus.Fields{
		"version":    Version,
		"center_lat": app.config.CenterLat,
		"center_lng": app.config.CenterLng,
		"aircraft":   app.config.Aircraft,
		"interval":   app.config.Interval,
	}).Info("Starting traffic simulator")

	simulator := sim.NewSimulator(app.logger, app.config.CenterLat, app.config.CenterLng,
		app.config.Aircraft, app.config.Seed)

	var recorder *replay.Recorder
	if app.config.Record {
		store, err := replay.Open(app.config.Database)
		if err != nil {
			return fmt.Errorf("failed to open recording store: %w", err)
		}
		defer store.Close()

		name := app.config.Session
		if name == "" {
			name = "sim-" + time.Now().UTC().Format("20060102-150405")
		}
		recorder, err = replay.NewRecorder(store, name, app.config.CenterLat, app.config.CenterLng)
		if err != nil {
			return fmt.Errorf("failed to create session: %w", err)
		}
		app.logger.WithFields(logrus.Fields{
			"session": recorder.SessionID(),
			"name":    name,
		}).Info("Recording session")
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	app.wg.Add(1)
	go func() {
		defer app.wg.Done()
		app.simulateLoop(simulator, recorder)
	}()

	select {
	case <-sigChan:
		app.logger.Info("Received shutdown signal")
	case <-app.ctx.Done():
	}
	app.shutdown()
	return nil
}

func (app *Application) simulateLoop(simulator *sim.Simulator, recorder *replay.Recorder) {
	ticker := time.NewTicker(app.config.Interval)
	defer ticker.Stop()

	emitted := 0
	lastReport := time.Now()

	for {
		select {
		case <-app.ctx.Done():
			app.logger.WithField("frames", emitted).Info("Simulator stopped")
			return
		case <-ticker.C:
			simulator.Step(app.config.Interval)
			for _, m := range simulator.Messages() {
				fmt.Fprintln(app.stdout, m.Hex)
				emitted++
				if recorder != nil {
					if err := recorder.Record(m.Aircraft, m.Kind, m.Hex); err != nil {
						app.logger.WithError(err).Error("Failed to record frame")
					}
				}
				if app.config.Verbose {
					// run our own frames back through the decoder
					if res := app.decoder.Decode(m.Hex); res != nil {
						app.logger.WithFields(logrus.Fields{
							"icao": res.ICAO,
							"kind": res.Kind.String(),
						}).Debug("Decoded own frame")
					}
				}
			}
			if time.Since(lastReport) >= 30*time.Second {
				app.logger.WithFields(logrus.Fields{
					"frames":   emitted,
					"aircraft": app.config.Aircraft,
				}).Info("Simulation statistics")
				lastReport = time.Now()
			}
		}
	}
}

// RunDecode reads hex frames from stdin, one per line, and writes each
// decoded result as a JSON line. Undecodable lines are counted and
// skipped.
func (app *Application) RunDecode() error {
	app.logger.WithFields(logrus.Fields{
		"version":   Version,
		"reference": app.config.HasRef,
	}).Info("Starting stream decoder")

	enc := json.NewEncoder(app.stdout)
	scanner := bufio.NewScanner(app.stdin)

	var total, decoded int
	for scanner.Scan() {
		select {
		case <-app.ctx.Done():
			return nil
		default:
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		total++

		res := app.decoder.Decode(line)
		if res == nil {
			if app.config.Verbose {
				app.logger.WithField("frame", line).Debug("Undecodable frame")
			}
			continue
		}
		decoded++
		if err := enc.Encode(res); err != nil {
			return fmt.Errorf("failed to write result: %w", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	app.logger.WithFields(logrus.Fields{
		"total":   total,
		"decoded": decoded,
	}).Info("Stream ended")
	return nil
}

// RunReplay plays a recorded session back through the decoder, writing
// decoded results as JSON lines with the recorded timing.
func (app *Application) RunReplay() error {
	store, err := replay.Open(app.config.Database)
	if err != nil {
		return fmt.Errorf("failed to open recording store: %w", err)
	}
	defer store.Close()

	sessionID := app.config.SessionID
	if sessionID == 0 {
		latest, err := store.LatestSession()
		if err != nil {
			return fmt.Errorf("failed to find latest session: %w", err)
		}
		if latest == nil {
			return fmt.Errorf("no recorded sessions in %s", app.config.Database)
		}
		sessionID = latest.ID
	}

	player, err := replay.NewPlayer(store, app.decoder, app.logger, sessionID)
	if err != nil {
		return fmt.Errorf("failed to load session %d: %w", sessionID, err)
	}

	app.logger.WithFields(logrus.Fields{
		"session": sessionID,
		"frames":  player.Len(),
		"seek":    app.config.Seek,
		"speed":   app.config.Speed,
	}).Info("Starting replay")

	if app.config.Seek > 0 {
		if err := player.Seek(app.config.Seek); err != nil {
			return fmt.Errorf("failed to seek: %w", err)
		}
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigChan:
			app.logger.Info("Received shutdown signal")
			app.cancel()
		case <-app.ctx.Done():
		}
	}()

	enc := json.NewEncoder(app.stdout)
	err = player.Play(app.ctx, app.config.Speed, func(m replay.Recorded, res *adsb.Result) {
		if res == nil {
			return
		}
		_ = enc.Encode(res)
	})
	if err == context.Canceled {
		return nil
	}
	return err
}

// ListSessions prints the recorded sessions in the store.
func (app *Application) ListSessions() error {
	store, err := replay.Open(app.config.Database)
	if err != nil {
		return fmt.Errorf("failed to open recording store: %w", err)
	}
	defer store.Close()

	sessions, err := store.Sessions()
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Fprintln(app.stdout, "no recorded sessions")
		return nil
	}
	for _, s := range sessions {
		fmt.Fprintf(app.stdout, "%d\t%s\t%s\t(%.4f, %.4f)\t%d frames\n",
			s.ID, s.StartedAt.Format(time.RFC3339), s.Name, s.CenterLat, s.CenterLng, s.Messages)
	}
	return nil
}

// shutdown gracefully shuts down the application
func (app *Application) shutdown() {
	app.logger.Info("Shutting down")
	app.cancel()

	done := make(chan struct{})
	go func() {
		app.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		app.logger.Warn("Shutdown timeout, forcing exit")
	}
}
