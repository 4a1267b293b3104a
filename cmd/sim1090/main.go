package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"sim1090/internal/app"
)

func main() {
	var config app.Config

	rootCmd := &cobra.Command{
		Use:   "sim1090",
		Short: "ADS-B traffic simulator and decoder",
		Long: `sim1090 synthesizes and decodes Mode-S extended squitter traffic.

The simulator scatters a fleet of aircraft around a center point and
emits their position, velocity and identification frames as hex lines.
The decoder turns a hex frame stream back into structured JSON, with
CPR position resolution. Simulated sessions can be recorded to SQLite
and replayed later with their original timing.

Example usage:
  sim1090 simulate --aircraft 20 --interval 1s --record
  sim1090 simulate | sim1090 decode
  sim1090 replay --session 3 --seek 30s`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&config.Verbose, "verbose", "v", false, "Verbose logging")
	rootCmd.PersistentFlags().StringVar(&config.LogFile, "log-file", "", "Mirror logs into a rotating file")
	rootCmd.PersistentFlags().StringVar(&config.Database, "database", app.DefaultDatabase, "Recording database path")

	simulateCmd := &cobra.Command{
		Use:   "simulate",
		Short: "Emit synthesized ADS-B frames for a simulated fleet",
		RunE: func(cmd *cobra.Command, args []string) error {
			application := app.NewApplication(config)
			defer application.Close()
			return application.RunSimulate()
		},
	}
	simulateCmd.Flags().Float64Var(&config.CenterLat, "center-lat", app.DefaultCenterLat, "Fleet center latitude")
	simulateCmd.Flags().Float64Var(&config.CenterLng, "center-lng", app.DefaultCenterLng, "Fleet center longitude")
	simulateCmd.Flags().IntVarP(&config.Aircraft, "aircraft", "n", app.DefaultAircraft, "Number of simulated aircraft")
	simulateCmd.Flags().DurationVarP(&config.Interval, "interval", "i", app.DefaultInterval, "Update interval")
	simulateCmd.Flags().Int64Var(&config.Seed, "seed", 1, "Jitter random seed")
	simulateCmd.Flags().BoolVar(&config.Record, "record", false, "Record frames into the database")
	simulateCmd.Flags().StringVar(&config.Session, "session-name", "", "Recording session name")

	decodeCmd := &cobra.Command{
		Use:   "decode",
		Short: "Decode hex frames from stdin to JSON lines",
		RunE: func(cmd *cobra.Command, args []string) error {
			config.HasRef = cmd.Flags().Changed("ref-lat") && cmd.Flags().Changed("ref-lng")
			application := app.NewApplication(config)
			defer application.Close()
			return application.RunDecode()
		},
	}
	decodeCmd.Flags().Float64Var(&config.RefLat, "ref-lat", 0, "Receiver latitude for single-frame position decode")
	decodeCmd.Flags().Float64Var(&config.RefLng, "ref-lng", 0, "Receiver longitude for single-frame position decode")

	replayCmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay a recorded session through the decoder",
		RunE: func(cmd *cobra.Command, args []string) error {
			application := app.NewApplication(config)
			defer application.Close()
			return application.RunReplay()
		},
	}
	replayCmd.Flags().Int64Var(&config.SessionID, "session", 0, "Session id (default: latest)")
	replayCmd.Flags().DurationVar(&config.Seek, "seek", 0, "Start playback at this offset")
	replayCmd.Flags().Float64Var(&config.Speed, "speed", 1, "Playback speed multiplier (0 = unpaced)")

	sessionsCmd := &cobra.Command{
		Use:   "sessions",
		Short: "List recorded sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			application := app.NewApplication(config)
			defer application.Close()
			return application.ListSessions()
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			app.ShowVersion()
		},
	}

	rootCmd.AddCommand(simulateCmd, decodeCmd, replayCmd, sessionsCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
