package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/storefront/pkg/notifyclient"
)

var errNotLoggedIn = errors.New("not logged in, run notifyctl login first")

func newWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Show notifications as they arrive",
		Long: `Connect to the hub with the stored token and show a toast for every
notification pushed to you until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			s, err := a.newSession(cmd, notifyclient.WithPresenter(newToastPresenter(out)))
			if err != nil {
				return err
			}
			defer s.close()

			ctx := cmd.Context()
			if token, err := s.store.Token(ctx); err != nil || token == "" {
				return errNotLoggedIn
			}

			st := newStyles(out)
			s.client.OnUnreadCount(func(n int) {
				_, _ = fmt.Fprintln(out, st.dim.Render(fmt.Sprintf("%d unread", n)))
			})
			if err := s.client.Init(ctx, s.cfg.ServerURL); err != nil {
				return fmt.Errorf("watch: %w", err)
			}

			<-ctx.Done()
			return nil
		},
	}
}
