package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/mandi/app/services"
	"github.com/shashiranjanraj/mandi/pkg/queue"
	"github.com/shashiranjanraj/mandi/pkg/storage"
	"github.com/shashiranjanraj/mandi/pkg/store"
)

var queueWorkersFlag int

// mandi queue:work — run queue workers without the HTTP surface.
var queueWorkCmd = &cobra.Command{
	Use:   "queue:work",
	Short: "Start the queue worker",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := store.Connect(); err != nil {
			return err
		}
		storage.Connect()

		queue.Register("*services.ExportOrdersJob", func() queue.Job { return &services.ExportOrdersJob{} })
		queue.UseStore(store.Default())

		workers := queueWorkersFlag
		if workers < 1 {
			workers = 5
		}

		fmt.Printf("Queue worker started (%d workers). Press Ctrl+C to stop.\n", workers)
		queue.StartWorkers(ctx, workers)

		<-ctx.Done()
		fmt.Println("\nQueue worker stopped.")
		return nil
	},
}

func init() {
	queueWorkCmd.Flags().IntVarP(&queueWorkersFlag, "workers", "w", 5, "Number of concurrent workers")
}
