package cmd

import (
	"errors"
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/promptbridge/promptbridge/internal/engine"
	"github.com/promptbridge/promptbridge/models"
	"github.com/promptbridge/promptbridge/store"
)

var claimNoColor bool

// claimCmd performs a single claim without starting the watch loop.
var claimCmd = &cobra.Command{
	Use:   "claim [task-file]",
	Short: "Claim one pending task into the building stage",
	Long: `Claim moves a single task file from prompts/pending into
prompts/building, commits and pushes the transition, and prints the
task content. Without an argument an interactive picker lists the
pending tasks.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		eng, s, j, err := buildEngine(cfg, !claimNoColor)
		if err != nil {
			return err
		}
		if j != nil {
			defer func() { _ = j.Close() }()
		}

		var name string
		if len(args) == 1 {
			name = args[0]
		} else {
			name, err = pickPendingTask(s)
			if err != nil {
				return err
			}
		}

		if err := eng.Claim(name); err != nil {
			if errors.Is(err, engine.ErrAlreadyClaimed) {
				return fmt.Errorf("task %s is no longer pending (claimed by another watcher?)", name)
			}
			return err
		}
		return nil
	},
}

// pickPendingTask prompts the user to select one of the pending tasks.
func pickPendingTask(s *store.FileStageStore) (string, error) {
	names, err := s.List(models.StagePending)
	if err != nil {
		return "", fmt.Errorf("list pending tasks: %w", err)
	}
	if len(names) == 0 {
		return "", errors.New("no pending tasks to claim")
	}

	prompt := promptui.Select{
		Label: "Select a task to claim",
		Items: names,
		Size:  10,
	}
	_, name, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("task selection cancelled: %w", err)
	}
	return name, nil
}

func init() {
	rootCmd.AddCommand(claimCmd)

	claimCmd.Flags().BoolVar(&claimNoColor, "no-color", false, "disable styled task output")
}
