package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/promptbridge/promptbridge/store"
)

// completeCmd marks a building task as finished.
var completeCmd = &cobra.Command{
	Use:   "complete <task-file>",
	Short: "Move a building task into the completed stage",
	Long: `Complete moves a task file from prompts/building into
prompts/completed and commits and pushes the transition. It is meant to
be run by the agent that finished working on the task.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		eng, _, j, err := buildEngine(cfg, true)
		if err != nil {
			return err
		}
		if j != nil {
			defer func() { _ = j.Close() }()
		}

		name := args[0]
		if err := eng.Complete(name); err != nil {
			if errors.Is(err, store.ErrTaskNotFound) {
				return fmt.Errorf("task %s is not in the building stage", name)
			}
			return err
		}
		fmt.Printf("Completed %s\n", name)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(completeCmd)
}
