package main

import (
	"fmt"
	"os"
	"os/user"

	"github.com/aaveggupta/cli-ai-code-editor/internal/config"
	"github.com/aaveggupta/cli-ai-code-editor/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	verbose    bool
	userID     string
	configFile string

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "cli-editor",
	Short: "Apply natural-language edits to a source tree",
	Long: `cli-editor turns an instruction into whole-file edits for a local
repository. It scans the tree, picks the files that look relevant, asks the
edit oracle for a plan, journals every proposed edit and then writes them.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configFile)
		if err != nil {
			return err
		}

		level := cfg.Log.Level
		if verbose {
			level = "debug"
		}
		logger, err = logging.New(level, cfg.Log.Development)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		if userID == "" {
			return fmt.Errorf("no user identity: pass --user or set CLI_EDITOR_USER")
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&userID, "user", "u", defaultUser(), "User identifier requests are recorded under (env CLI_EDITOR_USER)")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default $XDG_CONFIG_HOME/cli-editor/config.yaml)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(detailsCmd)
	rootCmd.AddCommand(reapplyCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(whoamiCmd)
}

func defaultUser() string {
	if id := os.Getenv("CLI_EDITOR_USER"); id != "" {
		return id
	}
	if u, err := user.Current(); err == nil {
		return u.Username
	}
	return ""
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
