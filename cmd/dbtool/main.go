// Command dbtool is an operator diagnostics utility for a triekv database,
// outside the library's consumer contract: it exercises
// CompactAll/EstimatedSizes/Diagnostics against a real database directory.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/tclemos/triekv/kv"
	_ "github.com/tclemos/triekv/trie" // registers the trie tables
)

var logFormat string

var rootCmd = &cobra.Command{
	Use:   "dbtool",
	Short: "Operator diagnostics for a triekv database directory",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLog()
	},
}

func setupLog() {
	if logFormat == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

var sizesCmd = &cobra.Command{
	Use:   "sizes <path>",
	Short: "Print estimated on-disk size per table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := kv.Open(kv.DefaultOptions(args[0]))
		if err != nil {
			return err
		}
		defer db.Close()

		sizes, err := db.EstimatedSizes()
		if err != nil {
			return err
		}
		for table, size := range sizes {
			fmt.Printf("%-20s %d bytes\n", table, size)
		}
		return nil
	},
}

var compactCmd = &cobra.Command{
	Use:   "compact <path>",
	Short: "Force a full compaction",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := kv.Open(kv.DefaultOptions(args[0]))
		if err != nil {
			return err
		}
		defer db.Close()
		return db.CompactAll()
	},
}

var diagnosticsCmd = &cobra.Command{
	Use:   "diagnostics <path>",
	Short: "Print commit/cursor/disk-usage counters",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := kv.Open(kv.DefaultOptions(args[0]))
		if err != nil {
			return err
		}
		defer db.Close()

		d, err := db.Diagnostics()
		if err != nil {
			return err
		}
		fmt.Printf("commits:           %d\n", d.Commits)
		fmt.Printf("aborts:            %d\n", d.Aborts)
		fmt.Printf("avg commit (ns):   %d\n", d.AverageCommitNs)
		fmt.Printf("cursor operations: %d\n", d.CursorOperations)
		fmt.Printf("engine disk usage: %d bytes\n", d.EngineDiskUsage)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "json", "log output format: json or console")
	rootCmd.AddCommand(sizesCmd, compactCmd, diagnosticsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("dbtool failed")
		os.Exit(1)
	}
}
