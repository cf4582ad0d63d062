package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/promptbridge/promptbridge/internal/logger"
)

var (
	// cfgFile is the path to the configuration file.
	cfgFile string
	// verbose enables verbose output.
	verbose bool
	// rootDir is the explicit working-tree root.
	rootDir string
	// version is the application version.
	version = "0.1.0"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "promptbridge",
	Short: "PromptBridge hands tasks off through a git-backed directory queue.",
	Long: `PromptBridge watches a prompts/pending directory inside a git working
tree, atomically claims newly arrived task files into prompts/building,
records every stage transition as a git commit and push, and surfaces
the claimed task content for an external agent to pick up.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg := GetConfig()
		logger.SetVersion(version)
		logger.SetCommand(cmd.Name())
		logger.SetBasePath(filepath.Join(cfg.Project.RootDir, ".promptbridge"))
	},
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			_ = cmd.Help()
			os.Exit(0)
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(InitConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./.promptbridge.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "root", "r", "", "working tree root (default is the current directory)")

	// Bind persistent flags to Viper
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("project.rootDir", rootCmd.PersistentFlags().Lookup("root"))

	rootCmd.Version = version
}
