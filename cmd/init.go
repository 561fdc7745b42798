package cmd

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/DachengChen/sqlchat/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default ~/.sqlchat/config.json",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := config.Dir()
		if err != nil {
			return err
		}
		path := filepath.Join(dir, "config.json")

		if _, err := os.Stat(path); err == nil && !initForce {
			pterm.Warning.Printfln("%s already exists. Use --force to overwrite it.", path)
			return nil
		} else if err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}

		if err := config.SaveAppConfig(config.DefaultAppConfig()); err != nil {
			return err
		}
		pterm.Success.Printfln("Wrote %s", path)
		pterm.Println("Store an API key with: sqlchat key set groq")
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config file")
	rootCmd.AddCommand(initCmd)
}
