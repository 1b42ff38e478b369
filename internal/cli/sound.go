package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/toiolab/toio/internal/protocol"
)

var soundPresets = map[string]protocol.SoundPresetID{
	"enter":    protocol.PresetEnter,
	"selected": protocol.PresetSelected,
	"cancel":   protocol.PresetCancel,
	"cursor":   protocol.PresetCursor,
	"mat-in":   protocol.PresetMatIn,
	"mat-out":  protocol.PresetMatOut,
	"get1":     protocol.PresetGet1,
	"get2":     protocol.PresetGet2,
	"get3":     protocol.PresetGet3,
	"effect1":  protocol.PresetEffect1,
	"effect2":  protocol.PresetEffect2,
}

var soundCmd = &cobra.Command{
	Use:   "sound <preset>",
	Short: "Play a built-in sound effect",
	Long:  `Play one of the cube's built-in sound effects.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runSound,
}

func init() {
	rootCmd.AddCommand(soundCmd)

	names := make([]string, 0, len(soundPresets))
	for name := range soundPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	soundCmd.Long += "\n\nPresets: " + strings.Join(names, ", ")
}

func runSound(cmd *cobra.Command, args []string) error {
	preset, ok := soundPresets[args[0]]
	if !ok {
		return fmt.Errorf("unknown preset %q", args[0])
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

	if err := cube.PlayPreset(preset); err != nil {
		return err
	}
	// Give the cube time to play before the connection drops.
	time.Sleep(time.Second)
	return nil
}
