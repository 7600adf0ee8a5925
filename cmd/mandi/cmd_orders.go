package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/mandi/app/models"
	"github.com/shashiranjanraj/mandi/app/services"
	"github.com/shashiranjanraj/mandi/pkg/storage"
	"github.com/shashiranjanraj/mandi/pkg/store"
)

var ordersStatusFlag string

// mandi orders:list — print stored orders.
var ordersListCmd = &cobra.Command{
	Use:   "orders:list",
	Short: "List stored orders",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := store.Connect(); err != nil {
			return err
		}

		st := store.Default()
		carts := services.NewCartService(st)
		notify := services.NewNotificationService(st)
		orders := services.NewOrderService(st, carts, notify)

		// The local operator has full visibility; List applies the same
		// case-insensitive status filter the HTTP API uses.
		all := orders.List(&models.User{Role: models.RoleAdmin}, ordersStatusFlag)

		if len(all) == 0 {
			fmt.Println("No orders.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ID\tDATE\tCUSTOMER\tSTATUS\tTOTAL")
		for _, o := range all {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				o.ID, o.OrderDate.Format("2006-01-02 15:04"), o.CustomerName, o.Status, o.Total.StringFixed(2))
		}
		return w.Flush()
	},
}

var (
	exportDiskFlag string
	exportPathFlag string
)

// mandi orders:export — write the CSV snapshot to an archive disk.
var ordersExportCmd = &cobra.Command{
	Use:   "orders:export",
	Short: "Export all orders as CSV to an archive disk",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := store.Connect(); err != nil {
			return err
		}
		storage.Connect()

		st := store.Default()
		carts := services.NewCartService(st)
		notify := services.NewNotificationService(st)
		orders := services.NewOrderService(st, carts, notify)
		export := services.NewExportService(orders)

		path, err := export.ExportToDisk(storage.Use(exportDiskFlag), exportPathFlag)
		if err != nil {
			return err
		}
		fmt.Println("Exported:", path)
		return nil
	},
}

func init() {
	ordersListCmd.Flags().StringVar(&ordersStatusFlag, "status", "all", "filter by order status")
	ordersExportCmd.Flags().StringVar(&exportDiskFlag, "disk", "", "archive disk (local or s3)")
	ordersExportCmd.Flags().StringVar(&exportPathFlag, "path", "", "destination path on the disk")
}
