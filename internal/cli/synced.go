package cli

import (
	"github.com/spf13/cobra"

	"github.com/vietddude/nodehealth/internal/health"
)

var syncedCmd = &cobra.Command{
	Use:   "synced",
	Short: "Serve health checks that pass only while the node is synced",
	Long: `Serve health checks judged by block difference alone: healthy while the node is at
most --max-block-difference blocks behind the network, whether or not it is syncing.`,
	Run: func(cmd *cobra.Command, args []string) {
		serve(cmd, health.ModeSynced)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve health checks that pass while the node is synced or making sync progress",
	Run:   runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd, syncedCmd)
}
