package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tictactoe",
	Short: "Tic-tac-toe with move history and time-travel",
	Long: `Play tic-tac-toe in the browser (serve) or in the terminal (play).
Every move is kept so you can jump back to any earlier position and branch off.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to a YAML config file (environment only when empty)")
}
