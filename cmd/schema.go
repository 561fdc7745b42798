package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/DachengChen/sqlchat/config"
	"github.com/DachengChen/sqlchat/db"
)

var schemaConn connFlags

// schemaCmd prints the schema text the model sees.
var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the schema description sent to the model",
	RunE: func(cmd *cobra.Command, args []string) error {
		conn, err := schemaConn.resolve()
		if err != nil {
			return err
		}
		cfg := config.FromConnection(conn)

		database, err := db.Open(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		info, err := database.TableInfo(cmd.Context())
		if err != nil {
			return err
		}
		pterm.Println(info)
		return nil
	},
}

func init() {
	schemaConn.register(schemaCmd)
	rootCmd.AddCommand(schemaCmd)
}
