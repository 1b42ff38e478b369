package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/toiolab/toio"
	"github.com/toiolab/toio/internal/storage"
)

var eventsRecord bool

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Stream cube events to the terminal",
	Long: `Connect to the nearest cube and print every event it reports:
button presses, battery readings, motion detection and mat positions.

With --record the stream is also written to the trace database for
later replay with "toio replay".`,
	RunE: runEvents,
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.Flags().BoolVarP(&eventsRecord, "record", "r", false, "Record the stream to the trace database")
}

func runEvents(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	cube, err := connectNearest(context.Background(), cfg)
	if err != nil {
		return err
	}
	defer cube.Close()

	var rec *storage.Recorder
	if eventsRecord {
		db, err := openDB(cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		rec, err = storage.NewRecorder(db, cube.Name(), cube.Address())
		if err != nil {
			return err
		}
		defer rec.Close()
		fmt.Printf("Recording run %s\n", rec.RunID())
	}

	events, cancel := cube.Events()
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	fmt.Println("Streaming events, Ctrl-C to stop.")
	start := time.Now()
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				fmt.Println("Connection lost.")
				return nil
			}
			fmt.Printf("[%8.3fs] %s\n", time.Since(start).Seconds(), formatEvent(ev))
			if rec != nil {
				if err := rec.Record(ev); err != nil {
					return fmt.Errorf("recording failed: %w", err)
				}
			}
		case <-sig:
			fmt.Println()
			return nil
		}
	}
}

func formatEvent(ev toio.Event) string {
	switch e := ev.(type) {
	case toio.BatteryEvent:
		return fmt.Sprintf("battery %d%%", e.Level)
	case toio.ButtonEvent:
		if e.Pressed {
			return "button pressed"
		}
		return "button released"
	case toio.MotionEvent:
		return fmt.Sprintf("motion level=%v collision=%v doubletap=%v posture=%s",
			e.Level, e.Collision, e.DoubleTap, e.Posture)
	case toio.PositionEvent:
		return fmt.Sprintf("position (%d, %d) heading %d°", e.Position.X, e.Position.Y, e.Position.Angle)
	case toio.PositionMissedEvent:
		return "left the position area"
	case toio.StandardIDEvent:
		return fmt.Sprintf("standard id %d heading %d°", e.ID.Value, e.ID.Angle)
	case toio.StandardIDMissedEvent:
		return "left the standard id area"
	default:
		return fmt.Sprintf("%#v", ev)
	}
}
