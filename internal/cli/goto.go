package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/toiolab/toio"
)

var gotoMaxSpeed uint8

var gotoCmd = &cobra.Command{
	Use:   "goto <x> <y> <angle>",
	Short: "Drive the cube to a mat position",
	Long: `Drive the nearest cube to a position on a toio play mat and wait
for the cube to confirm arrival.`,
	Args: cobra.ExactArgs(3),
	RunE: runGoto,
}

func init() {
	rootCmd.AddCommand(gotoCmd)
	gotoCmd.Flags().Uint8Var(&gotoMaxSpeed, "max-speed", 80, "Speed cap for the move")
}

func runGoto(cmd *cobra.Command, args []string) error {
	coords := make([]int, 3)
	for i, arg := range args {
		v, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("invalid coordinate %q", arg)
		}
		coords[i] = v
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	cube, err := connectNearest(context.Background(), cfg)
	if err != nil {
		return err
	}
	defer cube.Close()

	fmt.Printf("Moving to (%d, %d) heading %d°...\n", coords[0], coords[1], coords[2])
	err = cube.GoTo(context.Background(), coords[0], coords[1], coords[2],
		toio.WithMaxSpeed(gotoMaxSpeed))
	if err != nil {
		return err
	}
	fmt.Println("Arrived.")
	return nil
}
