package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/storefront/pkg/notifications"
	"github.com/dmitrymomot/storefront/pkg/notifyclient"
)

func newListCmd(a *app) *cobra.Command {
	var (
		opts   notifications.ListOptions
		unread bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your notifications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.newSession(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			if unread {
				read := false
				opts.Read = &read
			}
			opts.Priority = notifications.Priority(strings.ToLower(string(opts.Priority)))
			return renderList(cmd.OutOrStdout(), s.client.GetNotifications(cmd.Context(), opts))
		},
	}
	cmd.Flags().IntVar(&opts.Page, "page", 1, "page number")
	cmd.Flags().IntVar(&opts.Limit, "limit", notifications.DefaultPageLimit, "page size")
	cmd.Flags().StringVar(&opts.Type, "type", "", "only this notification type")
	cmd.Flags().StringVar((*string)(&opts.Priority), "priority", "", "only this priority (low, medium, high)")
	cmd.Flags().BoolVar(&unread, "unread", false, "only unread notifications")
	return cmd
}

func newUnreadCmd(a *app) *cobra.Command {
	var notifType string
	cmd := &cobra.Command{
		Use:   "unread",
		Short: "Print the number of unread notifications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.newSession(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			resp := s.client.GetUnreadCount(cmd.Context(), notifType)
			line := strconv.Itoa(resp.Count)
			if resp.Source == notifyclient.SourceFallback {
				line += " (" + string(resp.Source) + ")"
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), line)
			return err
		},
	}
	cmd.Flags().StringVar(&notifType, "type", "", "only this notification type")
	return cmd
}

func newReadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "read <id>",
		Short: "Mark a notification as read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.newSession(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			n, err := s.client.MarkAsRead(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("read: %w", err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Notification %s marked as read\n", n.ID)
			return err
		},
	}
}

func newReadAllCmd(a *app) *cobra.Command {
	var notifType string
	cmd := &cobra.Command{
		Use:   "read-all",
		Short: "Mark every notification as read",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.newSession(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			res, err := s.client.MarkAllAsRead(cmd.Context(), notifType)
			if err != nil {
				return fmt.Errorf("read-all: %w", err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%d notifications marked as read\n", res.Count)
			return err
		},
	}
	cmd.Flags().StringVar(&notifType, "type", "", "only this notification type")
	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a notification",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.newSession(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			if _, err := s.client.DeleteNotification(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("delete: %w", err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Notification %s deleted\n", args[0])
			return err
		},
	}
}

func newSendCmd(a *app) *cobra.Command {
	var (
		n        notifications.Notification
		priority string
	)
	cmd := &cobra.Command{
		Use:   "send <title>",
		Short: "Send a notification through the hub",
		Long: `Send a notification through the hub. Without --user it is sent to the
token's own user; sending to someone else needs an admin token.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.newSession(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			n.Title = args[0]
			n.Priority = notifications.Priority(strings.ToLower(priority))
			sent, err := s.api.Send(cmd.Context(), n)
			if err != nil {
				return fmt.Errorf("send: %w", err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Notification %s sent to %s\n", sent.ID, sent.UserID)
			return err
		},
	}
	cmd.Flags().StringVar(&n.UserID, "user", "", "recipient user id")
	cmd.Flags().StringVarP(&n.Message, "message", "m", "", "notification body")
	cmd.Flags().StringVar(&n.Type, "type", notifications.TypeSystem, "notification type")
	cmd.Flags().StringVar(&priority, "priority", string(notifications.PriorityMedium), "priority (low, medium, high)")
	return cmd
}
