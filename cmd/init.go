package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/promptbridge/promptbridge/models"
)

// starterConfig is written by `promptbridge init` when no config exists.
const starterConfig = `# PromptBridge configuration
project:
  rootDir: "."
  promptsDir: "prompts"
  taskExt: ".md"

watch:
  intervalSeconds: 5
  policy: "all" # all | first
  notify: true

git:
  remote: "origin"
  push: true
  pull: true

journal:
  path: ".promptbridge/journal.db"
`

// initCmd prepares a working tree for use as a task bridge.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the stage directories and a starter config file",
	Long: `Init creates the prompts/pending, prompts/building and
prompts/completed directories under the working-tree root and writes a
starter .promptbridge.yaml if none exists. It never overwrites an
existing config.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		s := buildStore(cfg)
		if err := s.EnsureStages(); err != nil {
			return fmt.Errorf("create stage directories: %w", err)
		}
		for _, stage := range models.Stages() {
			fmt.Printf("Ensured %s\n", s.StageDir(stage))
		}

		cfgPath := filepath.Join(cfg.Project.RootDir, configName+".yaml")
		if _, err := os.Stat(cfgPath); err == nil {
			fmt.Printf("Config already exists at %s, leaving it untouched\n", cfgPath)
			return nil
		}
		if err := os.WriteFile(cfgPath, []byte(starterConfig), 0o644); err != nil {
			return fmt.Errorf("write starter config: %w", err)
		}
		fmt.Printf("Wrote %s\n", cfgPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
