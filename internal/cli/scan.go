package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/toiolab/toio"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for nearby toio cubes",
	Long: `Scan for toio cubes advertising nearby and list them by signal
strength, nearest first.`,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

var (
	scanHeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	scanDimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fmt.Printf("Scanning for %s...\n", cfg.Scan.Timeout)

	cubes, err := toio.Search(context.Background(), driverOptions(cfg)...)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if len(cubes) == 0 {
		fmt.Println("No cubes found. Is the cube switched on?")
		return nil
	}

	fmt.Println(scanHeaderStyle.Render(fmt.Sprintf("%-4s %-24s %-20s %s", "#", "NAME", "ADDRESS", "RSSI")))
	for i, c := range cubes {
		name := c.Name()
		if name == "" {
			name = scanDimStyle.Render("(unnamed)")
		}
		fmt.Printf("%-4d %-24s %-20s %d dBm\n", i+1, name, c.Address(), c.RSSI())
	}
	return nil
}
