package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRootCommand creates the tabsnap command tree
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tabsnap",
		Short: "Snapshot and diff the headers of tabular files",
		Long: `tabsnap inventories the CSV and XLSX files under a directory, infers the
header row of each file and writes a reference file. Two reference files can
then be compared to see which files appeared, disappeared or changed headers.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add global flags
	AddGlobalFlags(rootCmd)

	// Add commands
	rootCmd.AddCommand(NewBuildCommand())
	rootCmd.AddCommand(NewCompareCommand())
	rootCmd.AddCommand(NewDetectCommand())
	rootCmd.AddCommand(NewConfigCommand())
	rootCmd.AddCommand(NewVersionCommand())

	return rootCmd
}
