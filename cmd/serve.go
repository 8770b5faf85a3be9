package cmd

import (
	"github.com/spf13/cobra"

	"github.com/roamkit/tripscope/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the tripscope HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		listenAddr, _ := cmd.Flags().GetString("listen")
		user, _ := cmd.Flags().GetString("auth-user")
		pass, _ := cmd.Flags().GetString("auth-pass")
		dbPath, _ := cmd.Flags().GetString("dbpath")

		db, err := openStore(dbPath)
		if err != nil {
			return err
		}
		defer db.Close()

		agg, err := buildAggregator(db)
		if err != nil {
			return err
		}

		srv := server.New(agg, db, user, pass)
		return srv.Start(listenAddr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("listen", ":8080", "HTTP listen address")
	serveCmd.Flags().String("auth-user", "", "Basic auth username (empty disables auth)")
	serveCmd.Flags().String("auth-pass", "", "Basic auth password")
	serveCmd.Flags().String("dbpath", "", "Path to SQLite cache file (default ~/.config/tripscope/tripscope.sqlite)")
}
