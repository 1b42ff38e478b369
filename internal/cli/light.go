package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

var lightDuration time.Duration

var lightCmd = &cobra.Command{
	Use:   "light <red> <green> <blue>",
	Short: "Turn the cube's light on",
	Long: `Turn the nearest cube's light on with an RGB color (0-255 each).

  toio light 255 0 0            # red, until turned off
  toio light 0 255 0 -d 3s      # green for 3 seconds
  toio light off                # turn off`,
	Args: cobra.RangeArgs(1, 3),
	RunE: runLight,
}

func init() {
	rootCmd.AddCommand(lightCmd)
	lightCmd.Flags().DurationVarP(&lightDuration, "duration", "d", 0, "How long to keep the light on (0 = until turned off)")
}

func runLight(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	cube, err := connectNearest(context.Background(), cfg)
	if err != nil {
		return err
	}
	defer cube.Close()

	if len(args) == 1 && args[0] == "off" {
		return cube.LightOff()
	}
	if len(args) != 3 {
		return fmt.Errorf("expected three color components or \"off\"")
	}

	rgb := make([]uint8, 3)
	for i, arg := range args {
		v, err := strconv.ParseUint(arg, 10, 8)
		if err != nil {
			return fmt.Errorf("invalid color component %q: must be 0-255", arg)
		}
		rgb[i] = uint8(v)
	}

	if err := cube.LightOn(rgb[0], rgb[1], rgb[2]); err != nil {
		return err
	}
	if lightDuration > 0 {
		time.Sleep(lightDuration)
		return cube.LightOff()
	}
	return nil
}
