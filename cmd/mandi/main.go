package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "mandi",
	Short: "Mandi wholesale grocery engine CLI",
	Long:  "Mandi is a wholesale grocery commerce engine. Use this CLI to run the server and inspect orders, notifications and routes.",
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(routeListCmd)

	rootCmd.AddCommand(ordersListCmd)
	rootCmd.AddCommand(notificationsTailCmd)
	rootCmd.AddCommand(ordersExportCmd)

	rootCmd.AddCommand(queueWorkCmd)
}
