package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/promptbridge/promptbridge/internal/journal"
	"github.com/promptbridge/promptbridge/internal/ui"
	"github.com/promptbridge/promptbridge/models"
	"github.com/promptbridge/promptbridge/types"
)

var (
	statusOutput string
	statusRecent int
)

// stageReport is the serializable shape of the status command output.
type stageReport struct {
	Pending   []string `json:"pending" yaml:"pending"`
	Building  []string `json:"building" yaml:"building"`
	Completed []string `json:"completed" yaml:"completed"`
}

// statusCmd reports the current contents of every stage.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the tasks in each stage",
	Long: `Status lists the task files currently in prompts/pending,
prompts/building and prompts/completed, plus the most recent stage
transitions from the journal when one exists.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		s := buildStore(cfg)

		report := stageReport{}
		var err error
		if report.Pending, err = s.List(models.StagePending); err != nil {
			return fmt.Errorf("list pending: %w", err)
		}
		if report.Building, err = s.List(models.StageBuilding); err != nil {
			return fmt.Errorf("list building: %w", err)
		}
		if report.Completed, err = s.List(models.StageCompleted); err != nil {
			return fmt.Errorf("list completed: %w", err)
		}

		switch statusOutput {
		case "json":
			data, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		case "yaml":
			data, err := yaml.Marshal(report)
			if err != nil {
				return err
			}
			fmt.Print(string(data))
			return nil
		case "text":
			printStatusTable(report)
			printRecentTransitions(cfg)
			return nil
		default:
			return fmt.Errorf("unknown output format %q (want text, json or yaml)", statusOutput)
		}
	},
}

func printStatusTable(report stageReport) {
	table := ui.StageTable{Rows: map[models.Stage][]string{
		models.StagePending:   report.Pending,
		models.StageBuilding:  report.Building,
		models.StageCompleted: report.Completed,
	}}
	fmt.Print(table.Render())
}

// printRecentTransitions shows the journal tail when a journal exists.
// A missing or unreadable journal is not an error for status.
func printRecentTransitions(cfg *types.AppConfig) {
	path := journalPath(cfg)
	if path == "" {
		return
	}
	if _, err := os.Stat(path); err != nil {
		return
	}
	j, err := journal.Open(path)
	if err != nil {
		return
	}
	defer func() { _ = j.Close() }()

	entries, err := j.Recent(statusRecent)
	if err != nil || len(entries) == 0 {
		return
	}

	fmt.Println()
	fmt.Println("Recent transitions:")
	for _, e := range entries {
		outcome := "pushed"
		if !e.Committed {
			outcome = "local only"
		}
		fmt.Printf("  %s  %s -> %s  (%s, %s)\n",
			e.Task, e.From, e.To, outcome, e.CreatedAt.Format("2006-01-02 15:04:05"))
	}
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().StringVarP(&statusOutput, "output", "o", "text", "output format (text|json|yaml)")
	statusCmd.Flags().IntVar(&statusRecent, "recent", 10, "number of recent transitions to show")
}
