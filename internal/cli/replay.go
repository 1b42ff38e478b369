package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/toiolab/toio/internal/storage"
)

var (
	replaySpeed  float64
	replayLatest bool
)

var replayCmd = &cobra.Command{
	Use:   "replay [run-id]",
	Short: "Replay a recorded event trace",
	Long: `Replay a run recorded with "toio events --record", reproducing the
original event timing.

If no run id is given, lists the recorded runs.

  toio replay                    # list recorded runs
  toio replay <run-id>           # replay a run
  toio replay --latest           # replay the most recent run
  toio replay <run-id> -s 2.0    # replay at double speed`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReplay,
}

func init() {
	rootCmd.AddCommand(replayCmd)
	replayCmd.Flags().Float64VarP(&replaySpeed, "speed", "s", 1.0, "Playback speed multiplier")
	replayCmd.Flags().BoolVar(&replayLatest, "latest", false, "Replay the most recent run")
}

func runReplay(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if replaySpeed <= 0 {
		return fmt.Errorf("speed must be > 0")
	}

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	runs := storage.NewRunRepository(db)

	if len(args) == 0 && !replayLatest {
		return listRuns(runs, storage.NewTraceRepository(db))
	}

	var run *storage.Run
	if replayLatest {
		run, err = runs.Latest()
	} else {
		run, err = runs.Get(args[0])
	}
	if err != nil {
		return err
	}

	events, err := storage.NewTraceRepository(db).ByRun(run.RunID)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		fmt.Println("Run has no events.")
		return nil
	}

	fmt.Printf("Replaying run %s (%s, %d events)\n", run.RunID, run.CubeName, len(events))

	last := int64(0)
	for _, row := range events {
		wait := time.Duration(float64(row.TsMs-last)/replaySpeed) * time.Millisecond
		time.Sleep(wait)
		last = row.TsMs

		ev, err := storage.DecodeEvent(row.EventType, row.PayloadJSON)
		if err != nil {
			return fmt.Errorf("corrupt trace at seq %d: %w", row.Seq, err)
		}
		fmt.Printf("[%8.3fs] %s\n", float64(row.TsMs)/1000, formatEvent(ev))
	}
	return nil
}

func listRuns(runs *storage.RunRepository, traces *storage.TraceRepository) error {
	all, err := runs.List(20)
	if err != nil {
		return err
	}
	if len(all) == 0 {
		fmt.Println("No recorded runs. Record one first with: toio events --record")
		return nil
	}

	for _, run := range all {
		n, err := traces.Count(run.RunID)
		if err != nil {
			return err
		}
		fmt.Printf("%s  %s  %-20s %d events\n",
			run.RunID, run.StartedAt.Local().Format("2006-01-02 15:04:05"), run.CubeName, n)
	}
	return nil
}
