package commands

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/matchbook-dev/matchbook/internal/buildinfo"
	"github.com/matchbook-dev/matchbook/internal/logger"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:     "matchbook",
		Short:   "Match bank transactions to expense receipts",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log := logger.New().Level(zerolog.WarnLevel)
			if verbose {
				log = log.Level(zerolog.DebugLevel)
			}
			cmd.SetContext(logger.WithContext(cmd.Context(), log))
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().String("book", ".", "book directory")

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newImportCommand())
	rootCmd.AddCommand(newReceiptCommand())
	rootCmd.AddCommand(newMatchCommand())
	rootCmd.AddCommand(newSuggestCommand())
	rootCmd.AddCommand(newAcceptCommand())
	rootCmd.AddCommand(newDismissCommand())
	rootCmd.AddCommand(newLinkCommand())
	rootCmd.AddCommand(newUnlinkCommand())
	rootCmd.AddCommand(newIgnoreCommand())
	rootCmd.AddCommand(newUnignoreCommand())
	rootCmd.AddCommand(newStatsCommand())

	return rootCmd
}

// bookDir reads the persistent --book flag.
func bookDir(cmd *cobra.Command) string {
	dir, err := cmd.Flags().GetString("book")
	if err != nil || dir == "" {
		return "."
	}
	return dir
}
