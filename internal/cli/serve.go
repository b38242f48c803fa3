package cli

import (
	"github.com/spf13/cobra"

	"github.com/forgeline/forgeline/internal/web"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve a read-only dashboard over recorded runs and events",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}

		// The dashboard degrades to runs-only when the event DB is missing.
		database, err := openDB(st)
		if err != nil {
			database = nil
		} else {
			defer database.Close()
		}

		return web.NewServer(st, database, servePort).Start()
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8736, "port to listen on")
}
