package cli

import (
	"context"

	"github.com/spf13/cobra"
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the nearest cube",
	Long:  `Connect to the nearest cube and halt its motors, light and sound.`,
	RunE:  runStop,
}

func init() {
	rootCmd.AddCommand(stopCmd)
}

func runStop(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	cube, err := connectNearest(context.Background(), cfg)
	if err != nil {
		return err
	}
	defer cube.Close()

	if err := cube.Stop(); err != nil {
		return err
	}
	if err := cube.LightOff(); err != nil {
		return err
	}
	return cube.StopSound()
}
