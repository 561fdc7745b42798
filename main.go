// sqlchat – ask questions about a SQL database in plain English.
//
// Entry point: runs the Cobra root command, which launches the
// Bubble Tea TUI when no subcommand is given.
package main

import (
	"os"

	"github.com/DachengChen/sqlchat/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
