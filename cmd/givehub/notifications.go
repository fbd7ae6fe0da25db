package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/thegivehub/givehub-go"
)

func notificationsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "notifications", Short: "Read and stream notifications"}

	cmd.AddCommand(
		filterCmd(a, "list", "List stored notifications", cobra.NoArgs,
			func(cmd *cobra.Command, _ []string, filters givehub.Params) (givehub.Response, error) {
				return a.client.Notifications.List(cmd.Context(), filters)
			}),
		listenCmd(a),
	)

	return cmd
}

func listenCmd(a *app) *cobra.Command {
	var events []string

	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Stream push notifications until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return listen(ctx, a, events)
		},
	}

	cmd.Flags().StringSliceVarP(&events, "event", "e", nil, "Event types to print (repeatable or comma separated)")
	_ = cmd.MarkFlagRequired("event")

	return cmd
}

// listen prints every notification of the given types until ctx is done or
// the channel gives up reconnecting.
func listen(ctx context.Context, a *app, events []string) error {
	var mu sync.Mutex

	printer := givehub.NewListener(func(_ context.Context, n givehub.Notification) error {
		mu.Lock()
		defer mu.Unlock()

		return a.print(n.Data)
	})

	notes := a.client.Notifications

	for _, event := range events {
		notes.On(event, printer)
	}

	if err := notes.Connect(ctx); err != nil {
		return err
	}

	a.logger.Info("listening for notifications", "events", events)

	select {
	case <-ctx.Done():
		if err := notes.Disconnect(); err != nil {
			a.logger.Debug("disconnect", "error", err)
		}
		return nil
	case <-notes.Done():
		err := notes.Err()
		if err == nil {
			err = errors.New("notification channel closed")
		}
		return err
	}
}
