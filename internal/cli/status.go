package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/toiolab/toio"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the nearest cube's status",
	Long: `Connect to the nearest cube and report its identity, battery level
and BLE protocol version.`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	cube, err := connectNearest(context.Background(), cfg)
	if err != nil {
		return err
	}
	defer cube.Close()

	ver, err := cube.Version(context.Background())
	if err != nil {
		return fmt.Errorf("version query failed: %w", err)
	}

	// The battery notification arrives shortly after subscribing.
	battery := cube.Battery()
	if battery < 0 {
		battery = awaitBattery(cube, 2*time.Second)
	}

	fmt.Printf("Name:     %s\n", cube.Name())
	fmt.Printf("Address:  %s\n", cube.Address())
	fmt.Printf("RSSI:     %d dBm\n", cube.RSSI())
	fmt.Printf("Protocol: %s\n", ver)
	if battery >= 0 {
		fmt.Printf("Battery:  %d%%\n", battery)
	} else {
		fmt.Printf("Battery:  unknown\n")
	}
	if pos, ok := cube.Position(); ok {
		fmt.Printf("Position: (%d, %d) heading %d°\n", pos.X, pos.Y, pos.Angle)
	}
	return nil
}

// awaitBattery waits for the first battery notification, up to the timeout.
func awaitBattery(cube *toio.Cube, timeout time.Duration) int {
	events, cancel := cube.Events()
	defer cancel()

	deadline := time.After(timeout)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return -1
			}
			if b, isBattery := ev.(toio.BatteryEvent); isBattery {
				return b.Level
			}
		case <-deadline:
			return -1
		}
	}
}
