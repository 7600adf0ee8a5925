package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/mandi/app/services"
	"github.com/shashiranjanraj/mandi/pkg/store"
)

var notifUnreadFlag bool

// mandi notifications:tail — print the admin notification queue, newest first.
var notificationsTailCmd = &cobra.Command{
	Use:   "notifications:tail",
	Short: "Show the admin notification queue",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := store.Connect(); err != nil {
			return err
		}

		notify := services.NewNotificationService(store.Default())
		queue := notify.List(notifUnreadFlag)
		if len(queue) == 0 {
			fmt.Println("No notifications.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ID\tTIME\tTYPE\tSTATUS\tMESSAGE")
		for _, n := range queue {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				n.ID, n.CreatedAt.Format("2006-01-02 15:04"), n.Type, n.Status, n.Message)
		}
		return w.Flush()
	},
}

func init() {
	notificationsTailCmd.Flags().BoolVar(&notifUnreadFlag, "unread", false, "unread notifications only")
}
