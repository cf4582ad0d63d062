package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/promptbridge/promptbridge/internal/loop"
)

var (
	watchInterval int
	watchPolicy   string
	watchOnce     bool
	watchNoPush   bool
	watchNoColor  bool
)

// watchCmd runs the polling loop until interrupted.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the pending stage and claim arriving tasks",
	Long: `Watch polls the prompts/pending directory on a fixed interval. Each
cycle pulls remote state, claims eligible tasks into prompts/building,
commits and pushes every transition, and prints the claimed task
content for the external agent. The loop runs until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		if cmd.Flags().Changed("interval") {
			cfg.Watch.IntervalSeconds = watchInterval
		}
		if cmd.Flags().Changed("policy") {
			cfg.Watch.Policy = watchPolicy
		}
		if watchNoPush {
			cfg.Git.Push = false
			cfg.Git.Pull = false
		}

		eng, s, j, err := buildEngine(cfg, !watchNoColor)
		if err != nil {
			return err
		}
		if j != nil {
			defer func() { _ = j.Close() }()
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		maxCycles := 0
		if watchOnce {
			maxCycles = 1
		}

		w := loop.New(loop.Options{
			Engine:     eng,
			Interval:   time.Duration(cfg.Watch.IntervalSeconds) * time.Second,
			MaxCycles:  maxCycles,
			PendingDir: s.PendingDir(),
			Notify:     cfg.Watch.Notify,
			LockPath:   filepath.Join(cfg.Project.RootDir, ".promptbridge.lock"),
			Log:        os.Stdout,
		})
		result, err := w.Run(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Watcher stopped (%s) after %d cycles, %d tasks claimed\n",
			result.Reason, result.Cycles, result.Claimed)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().IntVarP(&watchInterval, "interval", "i", 5, "poll interval in seconds")
	watchCmd.Flags().StringVarP(&watchPolicy, "policy", "p", "all", "claim policy per cycle (all|first)")
	watchCmd.Flags().BoolVar(&watchOnce, "once", false, "run a single poll cycle and exit")
	watchCmd.Flags().BoolVar(&watchNoPush, "no-push", false, "skip git pull/push (local-only mode)")
	watchCmd.Flags().BoolVar(&watchNoColor, "no-color", false, "disable styled task output")
}
