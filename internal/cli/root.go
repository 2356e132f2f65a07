// Package cli wires the editor core to a cobra-based command line: flag
// parsing, config loading, logging, and the REPL loop, the way the
// teacher's cli/cmd package wires sqlcode's database/deployment commands.
package cli

import (
	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:          "prompt [flags] -- command line",
		Short:        "prompt",
		SilenceUsage: true,
		Long: `An interactive command-line editor with per-token semantic syntax
highlighting, context-aware value completion, and a duplicates mode for
pruning repeated flags.`,
		RunE: runEdit,
	}

	configFile   string
	configDir    string
	themeName    string
	granularity  int
	noColor      bool
	printOnExit  bool
	debug        bool
	printVersion bool
)

const version = "0.1.0"

// Execute parses flags and runs the editor. It is the sole export main
// calls into, mirroring the teacher's cli/cmd.Execute.
func Execute() error {
	rootCmd.Flags().StringVarP(&configFile, "config", "c", "", "main config file")
	rootCmd.Flags().StringVar(&configDir, "config-dir", "", "drop-in config directory")
	rootCmd.Flags().StringVarP(&themeName, "theme", "t", "", "named theme")
	rootCmd.Flags().IntVarP(&granularity, "granularity", "g", 0, "category-map expansion depth (0 = none)")
	rootCmd.Flags().BoolVar(&noColor, "no-color", false, "disable styling")
	rootCmd.Flags().BoolVarP(&printOnExit, "print", "p", false, "print edited line on normal exit")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "dump tokenized/matched structure of the initial line before editing")
	rootCmd.Flags().BoolVarP(&printVersion, "version", "V", false, "print version and exit")

	return rootCmd.Execute()
}
