package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hobbyhub/hobbyhub/internal/client/notify"
	"github.com/hobbyhub/hobbyhub/internal/client/page"
	"github.com/hobbyhub/hobbyhub/internal/common/httpclient"
	"github.com/hobbyhub/hobbyhub/pkg/api"
)

// newNotificationsCmd creates and returns the notifications command group
func newNotificationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "notifications",
		Aliases: []string{"notif"},
		Short:   "List, acknowledge, and watch notifications",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}
	cmd.AddCommand(newNotificationsListCmd())
	cmd.AddCommand(newNotificationsCountCmd())
	cmd.AddCommand(newNotificationsReadCmd())
	cmd.AddCommand(newNotificationsWatchCmd())
	return cmd
}

// newNotificationsListCmd creates the notifications list command
func newNotificationsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your notifications, newest first",
		RunE:  runNotificationsList,
	}
	cmd.Flags().Int("size", 0, "Page size (default from settings)")
	cmd.Flags().Bool("all", false, "Fetch every page, not just the first")
	return cmd
}

// runNotificationsList handles the notifications list command execution
func runNotificationsList(cmd *cobra.Command, args []string) (retErr error) {
	size, _ := cmd.Flags().GetInt("size")
	all, _ := cmd.Flags().GetBool("all")

	client, store, _, err := newAPIClient()
	if err != nil {
		return err
	}
	defer persistSession(store, &retErr)

	pager := client.NotificationsPager(size)
	var notifications []api.Notification
	for {
		items, err := pager.Next(cmd.Context())
		if err != nil {
			if errors.Is(err, page.ErrExhausted) {
				break
			}
			return fmt.Errorf("failed to fetch notifications: %w", err)
		}
		notifications = append(notifications, items...)
		if !all || !pager.HasMore() {
			break
		}
	}

	if jsonOutput {
		printJSON(map[string]any{
			"result":        1,
			"notifications": notifications,
		})
		return nil
	}

	if len(notifications) == 0 {
		fmt.Println("No notifications")
		return nil
	}
	for _, n := range notifications {
		printNotificationLine(n)
	}
	return nil
}

// printNotificationLine prints one notification in a compact format.
func printNotificationLine(n api.Notification) {
	marker := "*"
	if n.Read {
		marker = " "
	}
	fmt.Printf("%s #%-6d [%s] %s: %s\n", marker, n.NotificationID, n.NotificationType, n.SenderNickname, n.Message)
}

// newNotificationsCountCmd creates the notifications count command
func newNotificationsCountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Show the number of unread notifications",
		RunE: func(cmd *cobra.Command, args []string) (retErr error) {
			client, store, _, err := newAPIClient()
			if err != nil {
				return err
			}
			defer persistSession(store, &retErr)

			count, err := client.UnreadNotificationCount(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to fetch notification count: %w", err)
			}

			if jsonOutput {
				printJSON(map[string]int{"count": count})
			} else {
				fmt.Printf("%d unread\n", count)
			}
			return nil
		},
	}
}

// newNotificationsReadCmd creates the notifications read command
func newNotificationsReadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "read <notification-id>",
		Short: "Acknowledge a notification",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (retErr error) {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid notification id: %s", args[0])
			}

			client, store, _, err := newAPIClient()
			if err != nil {
				return err
			}
			defer persistSession(store, &retErr)

			if err := client.MarkNotificationRead(cmd.Context(), id); err != nil {
				return fmt.Errorf("failed to acknowledge notification: %w", err)
			}

			if jsonOutput {
				printJSON(map[string]int{"result": 1})
			} else {
				okLabel.Printf("✓ Notification #%d acknowledged\n", id)
			}
			return nil
		},
	}
}

// newNotificationsWatchCmd creates the notifications watch command
func newNotificationsWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Stream notifications as they arrive",
		Long: `Subscribe to the push notification stream and print events as they
arrive. The stream reconnects automatically on transient failures; after the
reconnect budget is spent the command exits with an error. Press Ctrl-C to
stop.`,
		RunE: runNotificationsWatch,
	}
}

// runNotificationsWatch handles the notifications watch command execution
func runNotificationsWatch(cmd *cobra.Command, args []string) error {
	store, err := newSessionStore()
	if err != nil {
		return err
	}
	if !store.Authenticated() {
		return fmt.Errorf("not logged in. Log in with \"hobbyhub login\" first")
	}
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	hc := httpclient.NewClient(store)
	channel := notify.New(hc, notify.Options{
		MaxRetries: settings.Notify.MaxRetries,
		RetryDelay: settings.Notify.RetryDelay(),
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runErr := make(chan error, 1)
	go func() {
		runErr <- channel.Run(ctx)
	}()

	if !jsonOutput {
		fmt.Println("Watching notifications, Ctrl-C to stop")
	}

	for n := range channel.Events() {
		if jsonOutput {
			printJSON(n)
		} else {
			printNotificationLine(n)
		}
	}

	err = <-runErr
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func init() {
	rootCmd.AddCommand(newNotificationsCmd())
}
