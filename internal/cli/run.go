package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alecthomas/repr"
	"github.com/gofrs/uuid"
	"github.com/mprompt/promptline/internal/config"
	"github.com/mprompt/promptline/internal/editor"
	"github.com/mprompt/promptline/internal/match"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// runEdit is rootCmd's RunE: load configuration, build the editor for the
// positional command line, optionally dump its tokenized/matched
// structure, drive the REPL, and print the edited line if asked.
func runEdit(cmd *cobra.Command, args []string) error {
	if printVersion {
		fmt.Fprintln(cmd.OutOrStdout(), version)
		return nil
	}

	line := strings.TrimSpace(strings.Join(args, " "))
	if line == "" {
		return errors.New("no command line given to edit")
	}

	sessionID, err := uuid.NewV4()
	if err != nil {
		return fmt.Errorf("generating session id: %w", err)
	}

	logger := logrus.New()
	logger.SetOutput(cmd.ErrOrStderr())
	log := logger.WithFields(logrus.Fields{"session": sessionID.String()})

	cfgPath := configFile
	if cfgPath == "" {
		cfgPath = config.DefaultConfigPath()
	}
	cfgDir := configDir
	if cfgDir == "" {
		cfgDir = config.DefaultDropinDir()
	}

	cfg, err := config.Load(cfgPath, cfgDir)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	theme := cfg.GetTheme(themeName)

	var granularityPtr *int
	if granularity > 0 {
		granularityPtr = &granularity
	}

	ed := editor.New(line, cfg, theme, granularityPtr, noColor, log)

	if debug {
		dumpDebug(ed, cmd)
	}

	repl := editor.NewREPL(ed, cmd.OutOrStdout(), cmd.ErrOrStderr())
	finalText, err := repl.Run(cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("editor loop: %w", err)
	}

	if printOnExit {
		fmt.Fprintln(cmd.OutOrStdout(), finalText)
	}
	return nil
}

// dumpDebug pretty-prints the initial line's tokens and match results
// using repr, the teacher's debug-dump library of choice.
func dumpDebug(ed *editor.Editor, cmd *cobra.Command) {
	tokens := ed.Tokens()
	results := ed.MatchResults()

	fmt.Fprintln(cmd.ErrOrStderr(), "-- tokens --")
	for _, t := range tokens {
		repr.Println(t)
	}

	fmt.Fprintln(cmd.ErrOrStderr(), "-- matches --")
	for _, r := range results {
		fmt.Fprintf(cmd.ErrOrStderr(), "%-20s %s\n", r.Category, match.DescribeFlag(r.Flag))
	}

	if pm := ed.ProgramMatch(); pm != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "-- program --")
		repr.Println(*pm)
	}
}
